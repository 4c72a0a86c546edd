package config

import (
	"sort"
	"strings"

	"rtsched/internal/model"
	"rtsched/internal/scheduler"
)

type TaskSetConfig struct {
	TaskSet TaskSetInfo           `yaml:"taskset"`
	Tasks   map[string]TaskConfig `yaml:",inline"`
}

type TaskSetInfo struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	LogLevel    string          `yaml:"log_level"`
	Scheduler   SchedulerConfig `yaml:"scheduler"`
	Render      RenderConfig    `yaml:"render"`
	Data        DataConfig      `yaml:"data"`
}

type SchedulerConfig struct {
	Algorithm      string     `yaml:"algorithm"`
	Slice          model.Time `yaml:"slice"`
	MaxHyperperiod model.Time `yaml:"max_hyperperiod"` // zero means unlimited
}

type RenderConfig struct {
	Format           string  `yaml:"format"`
	GridSize         float64 `yaml:"grid_size"`
	OffsetX          float64 `yaml:"offset_x"`
	OffsetY          float64 `yaml:"offset_y"`
	Padding          float64 `yaml:"padding"`
	Palette          string  `yaml:"palette"`
	Compress         *bool   `yaml:"compress"`
	ShowDeadlineMiss *bool   `yaml:"show_deadline_miss"`
	ShowTimeAxis     *bool   `yaml:"show_time_axis"`
	ShowTaskNames    *bool   `yaml:"show_task_names"`
}

type DataConfig struct {
	DB DatabaseConfig `yaml:"db"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Org      string `yaml:"org"`
}

type TaskConfig struct {
	Index     int         `yaml:"index"`
	Period    model.Time  `yaml:"period"`
	Deadline  *model.Time `yaml:"deadline,omitempty"`
	Execution model.Time  `yaml:"execution"`

	// KeyName is the YAML key and becomes the task name.
	KeyName string `yaml:"-"`
}

// Configured reports whether every required database field is set. Values
// still holding an unexpanded ${VAR} count as unset.
func (db DatabaseConfig) Configured() bool {
	for _, v := range []string{db.Host, db.Name, db.Password, db.Org} {
		if v == "" || strings.Contains(v, "${") {
			return false
		}
	}
	return true
}

// GetTasksSorted returns task configs ordered by index, then by name.
func (c *TaskSetConfig) GetTasksSorted() []TaskConfig {
	tasks := make([]TaskConfig, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Index != tasks[j].Index {
			return tasks[i].Index < tasks[j].Index
		}
		return tasks[i].KeyName < tasks[j].KeyName
	})
	return tasks
}

// ModelTasks converts the configuration into scheduler input, in index order.
// Round Robin rotates in this order.
func (c *TaskSetConfig) ModelTasks() ([]model.Task, error) {
	sorted := c.GetTasksSorted()
	tasks := make([]model.Task, 0, len(sorted))
	for _, tc := range sorted {
		t, err := tc.Task()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Task builds the model task. A missing deadline defaults to the period; an
// explicit zero is kept and rejected by model.NewTask.
func (tc TaskConfig) Task() (model.Task, error) {
	return model.NewTask(tc.KeyName, tc.Period, tc.RelativeDeadline(), tc.Execution)
}

// RelativeDeadline is the configured deadline, or the period when omitted.
func (tc TaskConfig) RelativeDeadline() model.Time {
	if tc.Deadline == nil {
		return tc.Period
	}
	return *tc.Deadline
}

// Policy returns the configured policy, Rate Monotonic when none is set.
func (c *TaskSetConfig) Policy() (scheduler.Policy, error) {
	if c.TaskSet.Scheduler.Algorithm == "" {
		return scheduler.RateMonotonic, nil
	}
	return scheduler.ParsePolicy(c.TaskSet.Scheduler.Algorithm)
}

// SliceLength returns the Round Robin slice, the scheduler default when unset.
func (c *TaskSetConfig) SliceLength() model.Time {
	if c.TaskSet.Scheduler.Slice <= 0 {
		return scheduler.DefaultSliceLength
	}
	return c.TaskSet.Scheduler.Slice
}
