package cmd

import (
	"encoding/json"
	"fmt"

	"rtsched/internal/analysis"
	"rtsched/internal/config"
	"rtsched/internal/logging"
	"rtsched/internal/report"
	"rtsched/internal/scheduler"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newScheduleCmd() *cobra.Command {
	var configFile string
	var opts runOptions
	var compress, asJSON, trace bool

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule a task set over one hyperperiod",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			run, err := runTaskSet(configFile, opts)
			if err != nil {
				logger.WithField("config_file", configFile).WithError(err).Error("Scheduling failed")
				return err
			}
			rep := run.report(compress)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			if trace {
				s := run.schedule
				if compress {
					s = s.Compress()
				}
				report.WriteTable(out, s)
			}
			report.WriteSummary(out, rep)
			return nil
		},
	}

	scheduleCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to task set configuration file")
	scheduleCmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", "", "Scheduling algorithm (rm, dm, edf, rr), overrides the config")
	scheduleCmd.Flags().StringVar(&opts.slice, "slice", "", "Round Robin slice length, overrides the config")
	scheduleCmd.Flags().BoolVar(&compress, "compress", false, "Merge back-to-back instances of the same task")
	scheduleCmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	scheduleCmd.Flags().BoolVar(&trace, "trace", true, "Print the trace table")
	scheduleCmd.MarkFlagRequired("config")
	return scheduleCmd
}

func newCompareCmd() *cobra.Command {
	var configFile string

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Schedule a task set with every policy",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			cfg, _, tasks, err := loadTaskSet(configFile)
			if err != nil {
				logger.WithField("config_file", configFile).WithError(err).Error("Comparison failed")
				return err
			}
			checksum, _ := config.TaskSetChecksum(cfg)

			results := scheduler.RunAll(tasks, scheduler.SupportedPolicies(), cfg.SliceLength(), cfg.TaskSet.Scheduler.MaxHyperperiod)
			reports := make([]*report.Report, 0, len(results))
			for _, res := range results {
				if res.Err != nil {
					logger.WithFields(logrus.Fields{
						"algorithm": res.Policy.Name(),
					}).WithError(res.Err).Error("Scheduling failed")
					return fmt.Errorf("%s: %w", res.Policy, res.Err)
				}
				rep := report.Build(cfg.TaskSet.Name, res.Policy.String(), res.Schedule.Compress(), analysis.Analyze(tasks, res.Schedule))
				rep.Checksum = checksum
				reports = append(reports, rep)
			}

			report.WriteComparison(cmd.OutOrStdout(), reports)
			return nil
		},
	}

	compareCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to task set configuration file")
	compareCmd.MarkFlagRequired("config")
	return compareCmd
}

func newValidateCmd() *cobra.Command {
	var configFile string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a task set configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger()

			cfg, _, tasks, err := loadTaskSet(configFile)
			if err != nil {
				logger.WithField("config_file", configFile).WithError(err).Error("Configuration validation failed")
				return err
			}
			logger.WithFields(logrus.Fields{
				"config_file": configFile,
				"taskset":     cfg.TaskSet.Name,
				"tasks":       len(tasks),
			}).Info("Configuration is valid")
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d tasks, utilization %.3f\n", cfg.TaskSet.Name, len(tasks), analysis.Utilization(tasks))
			return nil
		},
	}

	validateCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to task set configuration file")
	validateCmd.MarkFlagRequired("config")
	return validateCmd
}
