package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"rtsched/internal/logging"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "1.0.0"

// Execute runs the rtsched command line.
func Execute() error {
	loadEnvironment()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var engineLogLevel string

	rootCmd := &cobra.Command{
		Use:           "rtsched",
		Short:         "Offline real-time scheduling simulator",
		Long:          "Simulates RM, DM, EDF and Round Robin on a periodic task set over one hyperperiod",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				if err := logging.SetLogLevel(logLevel); err != nil {
					return fmt.Errorf("invalid log level: %w", err)
				}
			}
			if engineLogLevel != "" {
				if err := logging.SetEngineLogLevel(engineLogLevel); err != nil {
					return fmt.Errorf("invalid engine log level: %w", err)
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&engineLogLevel, "engine-log-level", "", "Set the simulation engine log level (trace logs every step)")

	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func loadEnvironment() {
	logger := logging.GetLogger()

	// Try to load .env file from current directory
	envFile := ".env"
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
		} else {
			logger.WithField("file", envFile).Debug("Loaded environment variables")
		}
		return
	}

	// Try to load from the application directory
	if execPath, err := os.Executable(); err == nil {
		envFile = filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				logger.WithField("file", envFile).WithError(err).Warn("Error loading .env file")
			} else {
				logger.WithField("file", envFile).Debug("Loaded environment variables")
			}
		}
	}
}
