package scheduler

import (
	"container/heap"
	"fmt"

	"rtsched/internal/logging"
	"rtsched/internal/mathutil"
	"rtsched/internal/model"

	"github.com/sirupsen/logrus"
)

// job is the pending work of one task release.
type job struct {
	index     int
	remaining model.Time
	release   model.Time
	deadline  model.Time
	priority  float64
	seq       uint64
}

// jobQueue is a max-heap on priority. Equal priorities run in release order.
type jobQueue []*job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	if q[i].priority == q[j].priority {
		return q[i].seq < q[j].seq
	}
	return q[i].priority > q[j].priority
}

func (q jobQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *jobQueue) Push(x interface{}) {
	*q = append(*q, x.(*job))
}

func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return x
}

// run holds all mutable state of one simulation. Nothing in it outlives the
// call to CreateSchedule, so concurrent runs never share priorities.
type run struct {
	engine      *Engine
	tasks       []model.Task
	hyperperiod model.Time

	static    []float64
	queue     jobQueue
	queued    []bool
	seq       uint64
	now       model.Time
	instances []model.TaskInstance

	log   *logrus.Entry
	trace bool
}

func newRun(e *Engine, tasks []model.Task) (*run, error) {
	tasks, err := model.ValidateTaskSet(tasks)
	if err != nil {
		return nil, err
	}
	h, err := mathutil.LCMOf(model.Periods(tasks)...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute hyperperiod: %w", err)
	}
	if err := checkLimit(tasks, model.Time(h), e.maxHyperperiod); err != nil {
		return nil, err
	}

	r := &run{
		engine:      e,
		tasks:       tasks,
		hyperperiod: model.Time(h),
		queued:      make([]bool, len(tasks)),
		log:         logging.NewEngineRun(e.engineLogger, e.name, len(tasks)),
		trace:       e.engineLogger.IsLevelEnabled(logrus.TraceLevel),
	}
	if !e.dynamic {
		r.static = make([]float64, len(tasks))
		for i, t := range tasks {
			r.static[i] = e.priority(t, i, len(tasks), 0)
		}
	}
	return r, nil
}

// checkLimit bounds the work of a run before it starts. Every step lasts at
// most one unit and ends at the latest on a completion or a release, so the
// step count stays below h/Unit plus twice the releases.
func checkLimit(tasks []model.Task, h, maxH model.Time) error {
	if maxH <= 0 {
		return nil
	}
	if h > maxH {
		return fmt.Errorf("%w: %s > %s", ErrHyperperiodTooLarge, h, maxH)
	}
	var releases int64
	limit := int64(maxH / model.Unit)
	for _, t := range tasks {
		releases += int64(h / t.Period)
		if releases > limit {
			return fmt.Errorf("%w: more than %d job releases", ErrHyperperiodTooLarge, limit)
		}
	}
	return nil
}

func (r *run) priorityOf(index int, now model.Time) float64 {
	if r.static != nil {
		return r.static[index]
	}
	return r.engine.priority(r.tasks[index], index, len(r.tasks), now)
}

func (r *run) release(index int, at model.Time) {
	t := r.tasks[index]
	r.seq++
	heap.Push(&r.queue, &job{
		index:     index,
		remaining: t.ExecutionTime,
		release:   at,
		deadline:  at + t.Deadline,
		priority:  r.priorityOf(index, at),
		seq:       r.seq,
	})
	r.queued[index] = true
	if r.trace {
		r.log.WithFields(taskLogFields(t)).WithField("release", at.String()).Trace("Job released")
	}
}

func (r *run) refresh() {
	for _, j := range r.queue {
		j.priority = r.priorityOf(j.index, r.now)
	}
	heap.Init(&r.queue)
}

// nextReleaseBefore returns the earliest release after now that still lies
// inside the hyperperiod.
func (r *run) nextReleaseBefore(limit model.Time) (model.Time, bool) {
	found := false
	var next model.Time
	for _, t := range r.tasks {
		n := t.NextRelease(r.now)
		if n < limit && (!found || n < next) {
			next = n
			found = true
		}
	}
	return next, found
}

// untilNextRelease bounds a step so that no release is skipped.
func (r *run) untilNextRelease() model.Time {
	d := r.tasks[0].NextRelease(r.now) - r.now
	for _, t := range r.tasks[1:] {
		d = model.MinTime(d, t.NextRelease(r.now)-r.now)
	}
	return d
}

// overdue returns the queued job with the earliest deadline at or before at.
func (r *run) overdue(at model.Time) (*job, bool) {
	var worst *job
	for _, j := range r.queue {
		if j.deadline > at {
			continue
		}
		if worst == nil || j.deadline < worst.deadline || (j.deadline == worst.deadline && j.index < worst.index) {
			worst = j
		}
	}
	return worst, worst != nil
}

func (r *run) simulate() (*model.Schedule, error) {
	r.log.WithField("hyperperiod", r.hyperperiod.String()).Debug("Simulation started")

	for i := range r.tasks {
		r.release(i, 0)
	}

	for r.now < r.hyperperiod {
		if r.engine.refreshEveryTick {
			r.refresh()
		}

		if r.queue.Len() == 0 {
			next, ok := r.nextReleaseBefore(r.hyperperiod)
			if !ok {
				break
			}
			r.now = next
			for i, t := range r.tasks {
				if t.ReleasedAt(next) {
					r.release(i, next)
				}
			}
		}

		top := r.queue[0]
		step := model.MinTime(model.Unit, model.MinTime(top.remaining, r.untilNextRelease()))
		end := r.now + step

		task := r.tasks[top.index]
		r.instances = append(r.instances, model.TaskInstance{Task: task, Start: r.now, End: end})
		if r.trace {
			r.log.WithFields(taskLogFields(task)).WithFields(logrus.Fields{
				"start": r.now.String(),
				"end":   end.String(),
			}).Trace("Executed")
		}

		top.remaining -= step
		if top.remaining <= 0 {
			heap.Pop(&r.queue)
			r.queued[top.index] = false
		}

		// Work left on a job whose deadline has arrived can no longer finish in time.
		if j, ok := r.overdue(end); ok {
			return r.miss(j, end)
		}

		if end < r.hyperperiod {
			for i, t := range r.tasks {
				if !t.ReleasedAt(end) {
					continue
				}
				if r.queued[i] {
					return r.miss(r.pending(i), end)
				}
				r.release(i, end)
			}
		}

		r.now = end
	}

	if r.queue.Len() > 0 {
		return r.miss(r.queue[0], r.now)
	}

	r.log.WithField("instances", len(r.instances)).Debug("Simulation complete, schedule is feasible")
	return model.NewSchedule(r.instances, r.hyperperiod)
}

// pending returns the queued job of the task at index.
func (r *run) pending(index int) *job {
	for _, j := range r.queue {
		if j.index == index {
			return j
		}
	}
	return nil
}

func (r *run) miss(j *job, at model.Time) (*model.Schedule, error) {
	task := r.tasks[j.index]
	r.log.WithFields(taskLogFields(task)).WithFields(logrus.Fields{
		"at":        at.String(),
		"deadline":  j.deadline.String(),
		"instances": len(r.instances),
	}).Info("Deadline miss")
	return model.NewInfeasibleSchedule(r.instances, r.hyperperiod, model.Miss{
		Task:     task,
		Deadline: j.deadline,
		At:       at,
	})
}
