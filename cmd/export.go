package cmd

import (
	"context"
	"fmt"

	"rtsched/internal/database"
	"rtsched/internal/logging"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var configFile, spoolDir string
	var opts runOptions
	var spoolOnly bool

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the schedule to InfluxDB, or spool it to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			run, err := runTaskSet(configFile, opts)
			if err != nil {
				return err
			}

			sr := &database.ScheduleRun{
				TaskSet:          run.config.TaskSet.Name,
				Checksum:         run.checksum,
				Algorithm:        run.policy.String(),
				SchedulerVersion: run.algorithm.GetVersion(),
				ConfigContent:    run.configContent,
				CreatedAt:        run.startedAt,
				Report:           run.report(true),
			}

			var writer database.ScheduleWriter
			db := run.config.TaskSet.Data.DB
			switch {
			case spoolOnly:
				logger.Debug("Spool only, skipping database")
			case !db.Configured():
				logger.Warn("No database configured, spooling to disk")
			default:
				client, err := database.NewInfluxDBClient(db)
				if err != nil {
					logger.WithError(err).Warn("Database unavailable, spooling to disk")
				} else {
					defer client.Close()
					writer = client
				}
			}

			if spoolDir == "" {
				spoolDir = database.DefaultSpoolDir()
			}
			path, err := database.Export(ctx, writer, sr, spoolDir)
			if err != nil {
				return err
			}
			if path != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "spooled %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s (%s) to %s\n", sr.TaskSet, sr.Algorithm, db.Name)
			}
			return nil
		},
	}

	exportCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to task set configuration file")
	exportCmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "Scheduling algorithm (rm, dm, edf, rr), overrides the config")
	exportCmd.Flags().StringVar(&opts.slice, "slice", "", "Round Robin slice length, overrides the config")
	exportCmd.Flags().StringVar(&spoolDir, "spool-dir", "", "Directory for spool artifacts (default $RTSCHED_SPOOL_DIR or ./spool)")
	exportCmd.Flags().BoolVar(&spoolOnly, "spool-only", false, "Skip the database and write a spool artifact")
	exportCmd.MarkFlagRequired("config")
	return exportCmd
}
