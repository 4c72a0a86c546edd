package analysis

import (
	"math"
	"testing"

	"rtsched/internal/model"
	"rtsched/internal/scheduler"

	"github.com/stretchr/testify/require"
)

func mustTask(t *testing.T, name string, period, deadline, exec int64) model.Task {
	t.Helper()
	task, err := model.NewTask(name, model.Units(period), model.Units(deadline), model.Units(exec))
	require.NoError(t, err)
	return task
}

func TestLiuLaylandBound(t *testing.T) {
	require.Equal(t, 0.0, LiuLaylandBound(0))
	require.InDelta(t, 1.0, LiuLaylandBound(1), 1e-12)
	require.InDelta(t, 0.8284, LiuLaylandBound(2), 1e-4)
	require.InDelta(t, 0.7798, LiuLaylandBound(3), 1e-4)
	// The bound tends to ln 2.
	require.InDelta(t, math.Ln2, LiuLaylandBound(10000), 1e-4)
}

func TestAnalyze_RateMonotonic(t *testing.T) {
	a := mustTask(t, "A", 4, 4, 2)
	b := mustTask(t, "B", 6, 6, 2)
	tasks := []model.Task{a, b}

	s, err := scheduler.CreateSchedule(tasks, scheduler.RateMonotonic)
	require.NoError(t, err)
	require.True(t, s.Feasible())

	res := Analyze(tasks, s)
	require.InDelta(t, 0.5+1.0/3.0, res.Utilization, 1e-12)
	require.False(t, res.RMGuaranteed, "U is above the two task bound")
	require.True(t, res.EDFGuaranteed)
	require.Equal(t, model.Units(2), res.IdleTime)
	require.Len(t, res.Tasks, 2)

	sa := res.Tasks[0]
	require.Equal(t, a, sa.Task)
	require.Equal(t, 3, sa.Jobs)
	require.Equal(t, 3, sa.CompletedJobs)
	require.Equal(t, sa.Expected, sa.Executed)
	require.Equal(t, []float64{2, 2, 2}, sa.ResponseTimes)
	require.Equal(t, 2.0, sa.WorstResponse)

	sb := res.Tasks[1]
	require.Equal(t, 2, sb.Jobs)
	require.Equal(t, []float64{4, 2}, sb.ResponseTimes)
	require.InDelta(t, 3.0, sb.MeanResponse, 1e-12)
	require.Equal(t, 4.0, sb.WorstResponse)
}

func TestAnalyze_Infeasible(t *testing.T) {
	a := mustTask(t, "A", 2, 2, 2)
	b := mustTask(t, "B", 3, 3, 2)
	tasks := []model.Task{a, b}

	s, err := scheduler.CreateSchedule(tasks, scheduler.EarliestDeadlineFirst)
	require.NoError(t, err)
	require.False(t, s.Feasible())

	res := Analyze(tasks, s)
	require.Greater(t, res.Utilization, 1.0)
	require.False(t, res.EDFGuaranteed)
	require.False(t, res.RMGuaranteed)

	require.Equal(t, 1, res.Tasks[0].CompletedJobs)
	require.Equal(t, 0, res.Tasks[1].CompletedJobs)
	require.Equal(t, model.Units(1), res.Tasks[1].Executed)
	require.Zero(t, res.Tasks[1].WorstResponse)
}

func TestAnalyze_ConstrainedDeadlines(t *testing.T) {
	tasks := []model.Task{
		mustTask(t, "A", 10, 5, 1),
		mustTask(t, "B", 20, 20, 1),
	}
	res := Analyze(tasks, nil)
	require.False(t, res.RMGuaranteed, "the utilization bound assumes deadlines equal periods")
	require.False(t, res.EDFGuaranteed)
	require.Empty(t, res.Tasks)
}

func TestAnalyze_DuplicateTasks(t *testing.T) {
	a := mustTask(t, "A", 4, 4, 2)
	tasks := []model.Task{a, a}

	s, err := scheduler.CreateSchedule(tasks, scheduler.RateMonotonic)
	require.NoError(t, err)

	res := Analyze(tasks, s)
	require.InDelta(t, 0.5, res.Utilization, 1e-12)
	require.InDelta(t, 1.0, res.LiuLaylandBound, 1e-12)
	require.True(t, res.RMGuaranteed)
	require.Equal(t, model.Units(2), res.IdleTime)
	require.Len(t, res.Tasks, 1)
	require.Equal(t, 1, res.Tasks[0].Jobs)

	require.InDelta(t, 0.5, Analyze(tasks, nil).Utilization, 1e-12)
}
