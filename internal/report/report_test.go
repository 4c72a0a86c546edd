package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"rtsched/internal/analysis"
	"rtsched/internal/model"
	"rtsched/internal/scheduler"

	"github.com/gookit/color"
	"github.com/stretchr/testify/require"
)

func init() {
	color.Disable()
}

func buildReport(t *testing.T, policy scheduler.Policy, tasks ...model.Task) *Report {
	t.Helper()
	s, err := scheduler.CreateSchedule(tasks, policy)
	require.NoError(t, err)
	return Build("example", policy.String(), s.Compress(), analysis.Analyze(tasks, s))
}

func units(t *testing.T, name string, p, d, c int64) model.Task {
	t.Helper()
	task, err := model.NewTask(name, model.Units(p), model.Units(d), model.Units(c))
	require.NoError(t, err)
	return task
}

func TestBuild_Feasible(t *testing.T) {
	r := buildReport(t, scheduler.RateMonotonic, units(t, "A", 4, 4, 2), units(t, "B", 6, 6, 2))

	require.True(t, r.Feasible)
	require.False(t, r.MissedTask.Present())
	require.Equal(t, model.Units(12), r.Hyperperiod)
	require.Len(t, r.Instances, 5)
	require.Equal(t, Instance{Task: "A", Start: 0, End: model.Units(2)}, r.Instances[0])
	require.Len(t, r.Tasks, 2)
	worst, err := r.Tasks[1].WorstResponse.Get()
	require.NoError(t, err)
	require.Equal(t, 4.0, worst)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Nil(t, decoded["missed_task"])
	require.Equal(t, true, decoded["feasible"])
	require.Equal(t, 12.0, decoded["hyperperiod"])
}

func TestBuild_Infeasible(t *testing.T) {
	r := buildReport(t, scheduler.EarliestDeadlineFirst, units(t, "A", 2, 2, 2), units(t, "B", 3, 3, 2))

	require.False(t, r.Feasible)
	require.Equal(t, "B", r.MissedTask.OrElse(""))
	at, err := r.MissedAt.Get()
	require.NoError(t, err)
	require.Equal(t, 3.0, at)

	// B never completed a job, so it has no response time.
	require.False(t, r.Tasks[1].WorstResponse.Present())

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.Contains(t, string(data), `"missed_task":"B"`)
	require.Contains(t, string(data), `"missed_deadline":3`)
}

func TestBuild_WithoutAnalysis(t *testing.T) {
	s, err := scheduler.CreateSchedule([]model.Task{units(t, "A", 2, 2, 1)}, scheduler.RateMonotonic)
	require.NoError(t, err)
	r := Build("x", "RM", s, nil)
	require.Empty(t, r.Tasks)
	require.Len(t, r.Instances, 1)
}

func TestWriteTable(t *testing.T) {
	s, err := scheduler.CreateSchedule([]model.Task{units(t, "A", 4, 4, 2), units(t, "B", 6, 6, 2)}, scheduler.RateMonotonic)
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteTable(&buf, s.Compress())
	out := buf.String()
	require.Contains(t, out, "| A    |")
	require.Contains(t, out, "| B    |")
	require.Contains(t, out, "10")
	require.Equal(t, 5, strings.Count(out, "| A")+strings.Count(out, "| B"))
}

func TestWriteSummaryAndComparison(t *testing.T) {
	ok := buildReport(t, scheduler.RateMonotonic, units(t, "A", 4, 4, 2), units(t, "B", 6, 6, 2))
	bad := buildReport(t, scheduler.EarliestDeadlineFirst, units(t, "A", 2, 2, 2), units(t, "B", 3, 3, 2))

	var buf bytes.Buffer
	WriteSummary(&buf, ok)
	require.Contains(t, buf.String(), "example (RM)")
	require.Contains(t, buf.String(), "Feasible")
	require.Contains(t, buf.String(), "0.833")

	buf.Reset()
	WriteSummary(&buf, bad)
	require.Contains(t, buf.String(), "Deadline miss: B (deadline 3, detected at 3)")

	buf.Reset()
	WriteComparison(&buf, []*Report{ok, bad})
	out := buf.String()
	require.Contains(t, out, "feasible")
	require.Contains(t, out, "infeasible")
	require.Contains(t, out, "EDF")
}
