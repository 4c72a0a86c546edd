// Package analysis computes schedulability figures for a task set and the
// response times observed in a simulated schedule.
package analysis

import (
	"math"

	"rtsched/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type TaskStats struct {
	Task          model.Task `json:"task"`
	Utilization   float64    `json:"utilization"`
	Jobs          int        `json:"jobs"`
	CompletedJobs int        `json:"completed_jobs"`
	Executed      model.Time `json:"executed"`
	Expected      model.Time `json:"expected"`
	ResponseTimes []float64  `json:"response_times,omitempty"`
	MeanResponse  float64    `json:"mean_response"`
	WorstResponse float64    `json:"worst_response"`
}

type Analysis struct {
	Utilization     float64     `json:"utilization"`
	LiuLaylandBound float64     `json:"liu_layland_bound"`
	RMGuaranteed    bool        `json:"rm_guaranteed"`
	EDFGuaranteed   bool        `json:"edf_guaranteed"`
	IdleTime        model.Time  `json:"idle_time"`
	Tasks           []TaskStats `json:"tasks"`
}

// Utilization is the sum of C/P over all tasks.
func Utilization(tasks []model.Task) float64 {
	u := make([]float64, len(tasks))
	for i, t := range tasks {
		u[i] = t.Utilization()
	}
	return floats.Sum(u)
}

// LiuLaylandBound is n(2^(1/n) - 1), the Rate Monotonic utilization bound.
func LiuLaylandBound(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * (math.Pow(2, 1/float64(n)) - 1)
}

// Analyze combines the utilization tests with the response times of every job
// that completed in the schedule. tasks fixes the order of the per-task stats;
// identical duplicates count once, as they do for the schedulers.
func Analyze(tasks []model.Task, s *model.Schedule) *Analysis {
	if unique, err := model.ValidateTaskSet(tasks); err == nil {
		tasks = unique
	}
	a := &Analysis{
		Utilization:     Utilization(tasks),
		LiuLaylandBound: LiuLaylandBound(len(tasks)),
	}

	implicit := true
	constrainedOK := true
	for _, t := range tasks {
		if t.Deadline != t.Period {
			implicit = false
		}
		if t.Deadline < t.Period {
			constrainedOK = false
		}
	}
	a.RMGuaranteed = implicit && a.Utilization <= a.LiuLaylandBound
	a.EDFGuaranteed = constrainedOK && a.Utilization <= 1

	if s == nil {
		return a
	}
	a.IdleTime = s.Hyperperiod() - s.CoveredTime()

	byTask := make(map[model.Task][]model.TaskInstance)
	for _, ti := range s.Instances() {
		byTask[ti.Task] = append(byTask[ti.Task], ti)
	}

	for _, t := range tasks {
		ts := TaskStats{
			Task:        t,
			Utilization: t.Utilization(),
			Jobs:        int(s.Hyperperiod() / t.Period),
			Executed:    s.ExecutionTime(t),
		}
		ts.Expected = t.ExecutionTime * model.Time(ts.Jobs)
		ts.ResponseTimes = responseTimes(t, byTask[t])
		ts.CompletedJobs = len(ts.ResponseTimes)
		if len(ts.ResponseTimes) > 0 {
			ts.MeanResponse = stat.Mean(ts.ResponseTimes, nil)
			ts.WorstResponse = floats.Max(ts.ResponseTimes)
		}
		a.Tasks = append(a.Tasks, ts)
	}
	return a
}

// responseTimes walks the instances of one task in order. Jobs of a task run
// in release order, so the k-th completed job was released at k*P.
func responseTimes(t model.Task, instances []model.TaskInstance) []float64 {
	var out []float64
	var done model.Time
	job := 0
	for _, ti := range instances {
		done += ti.Duration()
		for done >= t.ExecutionTime {
			release := t.Period * model.Time(job)
			out = append(out, (ti.End - release).Float64())
			done -= t.ExecutionTime
			job++
		}
	}
	return out
}
