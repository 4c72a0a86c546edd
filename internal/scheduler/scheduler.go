package scheduler

import (
	"errors"
	"fmt"

	"rtsched/internal/logging"
	"rtsched/internal/model"

	"github.com/sirupsen/logrus"
)

var (
	ErrInvalidSlice        = errors.New("round robin slice length must be greater than 0")
	ErrHyperperiodTooLarge = errors.New("hyperperiod exceeds the simulation limit")
)

// Algorithm turns a task set into a schedule over one hyperperiod.
type Algorithm interface {
	CreateSchedule(tasks []model.Task) (*model.Schedule, error)
	Policy() Policy
	Name() string
	GetVersion() string
	SetMaxHyperperiod(limit model.Time)
}

// PriorityFunc rates the task at position index of count tasks at time now.
// Higher values run first.
type PriorityFunc func(task model.Task, index, count int, now model.Time) float64

// Engine is the single simulation loop shared by all policies. Policies differ
// only in the priority function and in when it is evaluated.
type Engine struct {
	name     string
	version  string
	policy   Policy
	priority PriorityFunc

	// dynamic engines evaluate priority at every job release, static engines
	// once per task before the simulation starts.
	dynamic          bool
	refreshEveryTick bool

	// maxHyperperiod of zero means unlimited.
	maxHyperperiod model.Time

	engineLogger *logrus.Logger
}

func newStaticEngine(policy Policy, priority PriorityFunc) *Engine {
	return &Engine{
		name:         policy.Name(),
		version:      "1.0.0",
		policy:       policy,
		priority:     priority,
		engineLogger: logging.GetEngineLogger(),
	}
}

func newDynamicEngine(policy Policy, priority PriorityFunc) *Engine {
	e := newStaticEngine(policy, priority)
	e.dynamic = true
	return e
}

// NewRateMonotonic gives shorter periods higher priority.
func NewRateMonotonic() *Engine {
	return newStaticEngine(RateMonotonic, func(task model.Task, _, _ int, _ model.Time) float64 {
		return -float64(task.Period)
	})
}

// NewDeadlineMonotonic gives shorter relative deadlines higher priority.
func NewDeadlineMonotonic() *Engine {
	return newStaticEngine(DeadlineMonotonic, func(task model.Task, _, _ int, _ model.Time) float64 {
		return -float64(task.Deadline)
	})
}

// NewEarliestDeadlineFirst gives the closest absolute deadline the highest priority.
func NewEarliestDeadlineFirst() *Engine {
	return newDynamicEngine(EarliestDeadlineFirst, func(task model.Task, _, _ int, now model.Time) float64 {
		return -float64(task.AbsoluteDeadline(now))
	})
}

// NewRoundRobin rotates the processor over the tasks in input order, one slice
// at a time. Priorities are refreshed on every step.
func NewRoundRobin(slice model.Time) (*Engine, error) {
	if slice <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidSlice, slice)
	}
	e := newDynamicEngine(RoundRobin, func(_ model.Task, index, count int, now model.Time) float64 {
		if index == roundRobinTurn(now, slice, count) {
			return 1
		}
		return 0
	})
	e.refreshEveryTick = true
	return e, nil
}

// roundRobinTurn is round(now/slice) mod count, rounding half up.
func roundRobinTurn(now, slice model.Time, count int) int {
	if count == 0 {
		return -1
	}
	turn := (2*int64(now) + int64(slice)) / (2 * int64(slice))
	return int(turn % int64(count))
}

func (e *Engine) Policy() Policy { return e.policy }

func (e *Engine) Name() string { return e.name }

func (e *Engine) GetVersion() string { return e.version }

func (e *Engine) RefreshEveryTick() bool { return e.refreshEveryTick }

// SetRefreshEveryTick makes the engine re-evaluate the priority of every queued
// job on each simulation step instead of only at release.
func (e *Engine) SetRefreshEveryTick(refresh bool) {
	e.refreshEveryTick = refresh
}

// SetMaxHyperperiod makes CreateSchedule refuse task sets whose hyperperiod is
// above limit, or that release more than limit/Unit jobs over it. Zero
// disables the limit.
func (e *Engine) SetMaxHyperperiod(limit model.Time) {
	e.maxHyperperiod = limit
}

func (e *Engine) MaxHyperperiod() model.Time { return e.maxHyperperiod }

func (e *Engine) SetLogger(logger *logrus.Logger) {
	e.engineLogger = logger
}

// CreateSchedule validates the task set and simulates it over one hyperperiod.
// A deadline miss is reported through the schedule, not as an error.
func (e *Engine) CreateSchedule(tasks []model.Task) (*model.Schedule, error) {
	r, err := newRun(e, tasks)
	if err != nil {
		return nil, err
	}
	return r.simulate()
}
