package cmd

import (
	"io"
	"os"

	"rtsched/internal/logging"
	"rtsched/internal/render"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var configFile, format, output string
	var opts runOptions

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the schedule as an Ipe document or TikZ picture",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			run, err := runTaskSet(configFile, opts)
			if err != nil {
				logger.WithField("config_file", configFile).WithError(err).Error("Scheduling failed")
				return err
			}

			rc := run.config.TaskSet.Render
			if format == "" {
				format = rc.Format
			}
			ro := render.OptionsFromConfig(rc)
			ro.Title = run.config.TaskSet.Name
			ro.Algorithm = run.algorithm.Name()

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					logger.WithField("output", output).WithError(err).Error("Failed to create output file")
					return err
				}
				defer f.Close()
				w = f
			}

			if err := render.Render(w, format, run.schedule, ro); err != nil {
				logger.WithField("format", format).WithError(err).Error("Rendering failed")
				return err
			}
			if output != "" {
				logger.WithFields(logrus.Fields{
					"output": output,
					"format": format,
				}).Info("Schedule drawing written")
			}
			return nil
		},
	}

	renderCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to task set configuration file")
	renderCmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "Scheduling algorithm (rm, dm, edf, rr), overrides the config")
	renderCmd.Flags().StringVar(&opts.slice, "slice", "", "Round Robin slice length, overrides the config")
	renderCmd.Flags().StringVarP(&format, "format", "f", "", "Output format (ipe, tikz), overrides the config")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	renderCmd.MarkFlagRequired("config")
	return renderCmd
}
