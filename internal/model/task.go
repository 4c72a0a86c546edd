package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTask   = errors.New("invalid task")
	ErrEmptyTaskSet  = errors.New("task set is empty")
	ErrDuplicateTask = errors.New("duplicate task name")
)

// Task is one periodic task. Tasks are plain values: two tasks with the same
// attributes are interchangeable and compare equal with ==.
type Task struct {
	Name          string `json:"name" yaml:"name"`
	Period        Time   `json:"period" yaml:"period"`
	Deadline      Time   `json:"deadline" yaml:"deadline"`
	ExecutionTime Time   `json:"execution" yaml:"execution"`
}

// NewTask builds a validated task. The deadline is relative to the release.
func NewTask(name string, period, deadline, executionTime Time) (Task, error) {
	t := Task{
		Name:          name,
		Period:        period,
		Deadline:      deadline,
		ExecutionTime: executionTime,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidTask)
	}
	if t.Period <= 0 {
		return fmt.Errorf("%w: %s: period must be greater than 0, got %s", ErrInvalidTask, t.Name, t.Period)
	}
	if t.Deadline <= 0 {
		return fmt.Errorf("%w: %s: deadline must be greater than 0, got %s", ErrInvalidTask, t.Name, t.Deadline)
	}
	if t.ExecutionTime <= 0 {
		return fmt.Errorf("%w: %s: execution time must be greater than 0, got %s", ErrInvalidTask, t.Name, t.ExecutionTime)
	}
	return nil
}

// PeriodStart is the release time of the job whose period contains t.
func (t Task) PeriodStart(at Time) Time {
	return at - at.Mod(t.Period)
}

// AbsoluteDeadline is the deadline of the job whose period contains at.
func (t Task) AbsoluteDeadline(at Time) Time {
	return t.PeriodStart(at) + t.Deadline
}

// NextRelease is the first release strictly after at.
func (t Task) NextRelease(at Time) Time {
	return t.PeriodStart(at) + t.Period
}

func (t Task) ReleasedAt(at Time) bool {
	return at.Mod(t.Period) == 0
}

// Utilization is C/P.
func (t Task) Utilization() float64 {
	return float64(t.ExecutionTime) / float64(t.Period)
}

func (t Task) String() string {
	return fmt.Sprintf("Task %s (P=%s, D=%s, C=%s)", t.Name, t.Period, t.Deadline, t.ExecutionTime)
}

// ValidateTaskSet checks every task and returns the set with identical
// duplicates collapsed, in input order. Two different tasks sharing a name are
// rejected.
func ValidateTaskSet(tasks []Task) ([]Task, error) {
	if len(tasks) == 0 {
		return nil, ErrEmptyTaskSet
	}

	seen := make(map[string]Task, len(tasks))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if prev, ok := seen[t.Name]; ok {
			if prev != t {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, t.Name)
			}
			continue
		}
		seen[t.Name] = t
		out = append(out, t)
	}
	return out, nil
}

// Periods returns the raw tick counts of the task periods.
func Periods(tasks []Task) []int64 {
	periods := make([]int64, len(tasks))
	for i, t := range tasks {
		periods[i] = int64(t.Period)
	}
	return periods
}
