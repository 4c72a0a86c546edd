package model

import (
	"errors"
	"fmt"
	"sort"
)

var ErrOverlap = errors.New("task instances overlap")

// Miss describes the deadline miss that ended an infeasible run.
type Miss struct {
	Task Task `json:"task"`
	// Deadline is the absolute deadline of the job that could not finish.
	Deadline Time `json:"deadline"`
	// At is the simulation time the miss was detected.
	At Time `json:"at"`
}

// Schedule is the outcome of one scheduling run: a sorted, non-overlapping
// trace over at most one hyperperiod and a feasibility verdict. An infeasible
// schedule stops at the deadline miss and remembers the task that missed.
type Schedule struct {
	instances   []TaskInstance
	hyperperiod Time
	feasible    bool
	miss        Miss
}

// NewSchedule builds a feasible schedule.
func NewSchedule(instances []TaskInstance, hyperperiod Time) (*Schedule, error) {
	sorted, err := sortInstances(instances)
	if err != nil {
		return nil, err
	}
	return &Schedule{
		instances:   sorted,
		hyperperiod: hyperperiod,
		feasible:    true,
	}, nil
}

// NewInfeasibleSchedule builds a schedule that ended with the given miss.
func NewInfeasibleSchedule(instances []TaskInstance, hyperperiod Time, miss Miss) (*Schedule, error) {
	sorted, err := sortInstances(instances)
	if err != nil {
		return nil, err
	}
	return &Schedule{
		instances:   sorted,
		hyperperiod: hyperperiod,
		feasible:    false,
		miss:        miss,
	}, nil
}

func sortInstances(instances []TaskInstance) ([]TaskInstance, error) {
	sorted := make([]TaskInstance, len(instances))
	copy(sorted, instances)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Less(sorted[j])
	})

	for i, ti := range sorted {
		if ti.End <= ti.Start {
			return nil, fmt.Errorf("%w: empty interval %s", ErrOverlap, ti)
		}
		if i > 0 && sorted[i-1].End > ti.Start {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlap, sorted[i-1], ti)
		}
	}
	return sorted, nil
}

// Instances returns a copy of the trace.
func (s *Schedule) Instances() []TaskInstance {
	out := make([]TaskInstance, len(s.instances))
	copy(out, s.instances)
	return out
}

func (s *Schedule) Len() int {
	return len(s.instances)
}

func (s *Schedule) Hyperperiod() Time {
	return s.hyperperiod
}

func (s *Schedule) Feasible() bool {
	return s.feasible
}

// Tasks returns every task that appears in the trace, plus the task that
// missed its deadline, sorted by name.
func (s *Schedule) Tasks() []Task {
	seen := make(map[Task]bool)
	var tasks []Task
	add := func(t Task) {
		if !seen[t] {
			seen[t] = true
			tasks = append(tasks, t)
		}
	}
	for _, ti := range s.instances {
		add(ti.Task)
	}
	if !s.feasible {
		add(s.miss.Task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Name < tasks[j].Name
	})
	return tasks
}

// InstanceAt returns the instance occupying the processor at the given time.
func (s *Schedule) InstanceAt(at Time) (TaskInstance, bool) {
	i := sort.Search(len(s.instances), func(i int) bool {
		return s.instances[i].End > at
	})
	if i < len(s.instances) && s.instances[i].Contains(at) {
		return s.instances[i], true
	}
	return TaskInstance{}, false
}

// TaskAt returns the task running at the given time.
func (s *Schedule) TaskAt(at Time) (Task, bool) {
	ti, ok := s.InstanceAt(at)
	if !ok {
		return Task{}, false
	}
	return ti.Task, true
}

// NextInstance returns the first instance starting at or after the given time.
func (s *Schedule) NextInstance(at Time) (TaskInstance, bool) {
	i := sort.Search(len(s.instances), func(i int) bool {
		return s.instances[i].Start >= at
	})
	if i < len(s.instances) {
		return s.instances[i], true
	}
	return TaskInstance{}, false
}

func (s *Schedule) LastInstance() (TaskInstance, bool) {
	if len(s.instances) == 0 {
		return TaskInstance{}, false
	}
	return s.instances[len(s.instances)-1], true
}

func (s *Schedule) MissedTask() (Task, bool) {
	if s.feasible {
		return Task{}, false
	}
	return s.miss.Task, true
}

func (s *Schedule) Miss() (Miss, bool) {
	return s.miss, !s.feasible
}

// MissedAt is the time the deadline miss was detected. Zero for feasible schedules.
func (s *Schedule) MissedAt() Time {
	return s.miss.At
}

// MissedDeadline is the absolute deadline of the job that missed. Zero for
// feasible schedules.
func (s *Schedule) MissedDeadline() Time {
	return s.miss.Deadline
}

// LastMissedInstance returns the last instance of the task that missed its
// deadline. It is absent when the schedule is feasible or the task never ran.
func (s *Schedule) LastMissedInstance() (TaskInstance, bool) {
	if s.feasible {
		return TaskInstance{}, false
	}
	for i := len(s.instances) - 1; i >= 0; i-- {
		if s.instances[i].Task == s.miss.Task {
			return s.instances[i], true
		}
	}
	return TaskInstance{}, false
}

// ExecutionTime sums the processor time given to task.
func (s *Schedule) ExecutionTime(task Task) Time {
	var total Time
	for _, ti := range s.instances {
		if ti.Task == task {
			total += ti.Duration()
		}
	}
	return total
}

// CoveredTime sums the processor time of all instances.
func (s *Schedule) CoveredTime() Time {
	var total Time
	for _, ti := range s.instances {
		total += ti.Duration()
	}
	return total
}

// Compress merges back-to-back instances of the same task. The receiver is
// left untouched.
func (s *Schedule) Compress() *Schedule {
	merged := make([]TaskInstance, 0, len(s.instances))
	for _, ti := range s.instances {
		if n := len(merged); n > 0 && merged[n-1].Task == ti.Task && merged[n-1].End == ti.Start {
			merged[n-1].End = ti.End
			continue
		}
		merged = append(merged, ti)
	}
	return &Schedule{
		instances:   merged,
		hyperperiod: s.hyperperiod,
		feasible:    s.feasible,
		miss:        s.miss,
	}
}

func (s *Schedule) String() string {
	if s.feasible {
		return fmt.Sprintf("Schedule [%d instances, hyperperiod %s, feasible]", len(s.instances), s.hyperperiod)
	}
	return fmt.Sprintf("Schedule [%d instances, hyperperiod %s, %s missed its deadline at %s]",
		len(s.instances), s.hyperperiod, s.miss.Task.Name, s.miss.At)
}
