package cmd

import (
	"fmt"
	"time"

	"rtsched/internal/analysis"
	"rtsched/internal/config"
	"rtsched/internal/logging"
	"rtsched/internal/model"
	"rtsched/internal/report"
	"rtsched/internal/scheduler"

	"github.com/sirupsen/logrus"
)

// taskSetRun is one task set file scheduled with one policy.
type taskSetRun struct {
	config        *config.TaskSetConfig
	configContent string
	checksum      string
	tasks         []model.Task
	policy        scheduler.Policy
	algorithm     scheduler.Algorithm
	schedule      *model.Schedule
	analysis      *analysis.Analysis
	startedAt     time.Time
}

type runOptions struct {
	algorithm string
	slice     string
}

func loadTaskSet(configFile string) (*config.TaskSetConfig, string, []model.Task, error) {
	logger := logging.GetLogger()

	cfg, content, err := config.LoadConfigWithContent(configFile)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.TaskSet.LogLevel != "" {
		if err := logging.SetLogLevel(cfg.TaskSet.LogLevel); err != nil {
			logger.WithField("log_level", cfg.TaskSet.LogLevel).WithError(err).Warn("Invalid log level in config, keeping current level")
		}
	}

	tasks, err := cfg.ModelTasks()
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, content, tasks, nil
}

// policyAndSlice resolves the policy and Round Robin slice, command line
// flags taking precedence over the task set file.
func policyAndSlice(cfg *config.TaskSetConfig, opts runOptions) (scheduler.Policy, model.Time, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return 0, 0, err
	}
	if opts.algorithm != "" {
		if policy, err = scheduler.ParsePolicy(opts.algorithm); err != nil {
			return 0, 0, err
		}
	}

	slice := cfg.SliceLength()
	if opts.slice != "" {
		if slice, err = model.ParseTime(opts.slice); err != nil {
			return 0, 0, fmt.Errorf("invalid slice: %w", err)
		}
	}
	return policy, slice, nil
}

func runTaskSet(configFile string, opts runOptions) (*taskSetRun, error) {
	logger := logging.GetLogger()

	cfg, content, tasks, err := loadTaskSet(configFile)
	if err != nil {
		return nil, err
	}
	policy, slice, err := policyAndSlice(cfg, opts)
	if err != nil {
		return nil, err
	}

	alg, err := scheduler.NewWithSlice(policy, slice)
	if err != nil {
		return nil, err
	}
	alg.SetMaxHyperperiod(cfg.TaskSet.Scheduler.MaxHyperperiod)

	checksum, err := config.TaskSetChecksum(cfg)
	if err != nil {
		logger.WithError(err).Warn("Failed to compute task set checksum")
	}

	run := &taskSetRun{
		config:        cfg,
		configContent: content,
		checksum:      checksum,
		tasks:         tasks,
		policy:        policy,
		algorithm:     alg,
		startedAt:     time.Now(),
	}

	run.schedule, err = alg.CreateSchedule(tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", cfg.TaskSet.Name, err)
	}
	run.analysis = analysis.Analyze(tasks, run.schedule)

	logger.WithFields(logrus.Fields{
		"taskset":   cfg.TaskSet.Name,
		"algorithm": alg.Name(),
		"feasible":  run.schedule.Feasible(),
		"instances": run.schedule.Len(),
	}).Debug("Task set scheduled")
	return run, nil
}

func (r *taskSetRun) report(compress bool) *report.Report {
	s := r.schedule
	if compress {
		s = s.Compress()
	}
	rep := report.Build(r.config.TaskSet.Name, r.policy.String(), s, r.analysis)
	rep.Checksum = r.checksum
	return rep
}
