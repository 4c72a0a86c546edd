// Package report turns a schedule and its analysis into a JSON document and
// terminal tables.
package report

import (
	"rtsched/internal/analysis"
	"rtsched/internal/model"

	"github.com/markphelps/optional"
)

type Report struct {
	TaskSet   string `json:"taskset"`
	Algorithm string `json:"algorithm"`
	Checksum  string `json:"checksum,omitempty"`

	Feasible       bool             `json:"feasible"`
	Hyperperiod    model.Time       `json:"hyperperiod"`
	MissedTask     optional.String  `json:"missed_task"`
	MissedAt       optional.Float64 `json:"missed_at"`
	MissedDeadline optional.Float64 `json:"missed_deadline"`

	Utilization     float64    `json:"utilization"`
	LiuLaylandBound float64    `json:"liu_layland_bound"`
	RMGuaranteed    bool       `json:"rm_guaranteed"`
	EDFGuaranteed   bool       `json:"edf_guaranteed"`
	IdleTime        model.Time `json:"idle_time"`

	Tasks     []TaskSummary `json:"tasks"`
	Instances []Instance    `json:"instances"`
}

type TaskSummary struct {
	Name          string           `json:"name"`
	Period        model.Time       `json:"period"`
	Deadline      model.Time       `json:"deadline"`
	Execution     model.Time       `json:"execution"`
	Jobs          int              `json:"jobs"`
	CompletedJobs int              `json:"completed_jobs"`
	Executed      model.Time       `json:"executed"`
	Expected      model.Time       `json:"expected"`
	MeanResponse  optional.Float64 `json:"mean_response"`
	WorstResponse optional.Float64 `json:"worst_response"`
}

type Instance struct {
	Task  string     `json:"task"`
	Start model.Time `json:"start"`
	End   model.Time `json:"end"`
}

// Build assembles the report of one run. a may be nil, in which case the
// analysis figures are left at zero.
func Build(taskSet, algorithm string, s *model.Schedule, a *analysis.Analysis) *Report {
	r := &Report{
		TaskSet:     taskSet,
		Algorithm:   algorithm,
		Feasible:    s.Feasible(),
		Hyperperiod: s.Hyperperiod(),
		Instances:   make([]Instance, 0, s.Len()),
	}

	if m, ok := s.Miss(); ok {
		r.MissedTask = optional.NewString(m.Task.Name)
		r.MissedAt = optional.NewFloat64(m.At.Float64())
		r.MissedDeadline = optional.NewFloat64(m.Deadline.Float64())
	}

	for _, ti := range s.Instances() {
		r.Instances = append(r.Instances, Instance{
			Task:  ti.Task.Name,
			Start: ti.Start,
			End:   ti.End,
		})
	}

	if a == nil {
		return r
	}
	r.Utilization = a.Utilization
	r.LiuLaylandBound = a.LiuLaylandBound
	r.RMGuaranteed = a.RMGuaranteed
	r.EDFGuaranteed = a.EDFGuaranteed
	r.IdleTime = a.IdleTime

	for _, ts := range a.Tasks {
		sum := TaskSummary{
			Name:          ts.Task.Name,
			Period:        ts.Task.Period,
			Deadline:      ts.Task.Deadline,
			Execution:     ts.Task.ExecutionTime,
			Jobs:          ts.Jobs,
			CompletedJobs: ts.CompletedJobs,
			Executed:      ts.Executed,
			Expected:      ts.Expected,
		}
		if ts.CompletedJobs > 0 {
			sum.MeanResponse = optional.NewFloat64(ts.MeanResponse)
			sum.WorstResponse = optional.NewFloat64(ts.WorstResponse)
		}
		r.Tasks = append(r.Tasks, sum)
	}
	return r
}
