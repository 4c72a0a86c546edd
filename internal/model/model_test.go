package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustTask(t *testing.T, name string, period, deadline, exec int64) Task {
	t.Helper()
	task, err := NewTask(name, Units(period), Units(deadline), Units(exec))
	require.NoError(t, err)
	return task
}

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want Time
	}{
		{"4", 4000},
		{"2.5", 2500},
		{"0.125", 125},
		{".5", 500},
		{"3.", 3000},
		{"1.2500", 1250},
		{"-1.5", -1500},
		{" 7 ", 7000},
	}
	for _, tc := range cases {
		got, err := ParseTime(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", ".", "abc", "1.2345", "1e3", "--1", "1.-2"} {
		_, err := ParseTime(bad)
		require.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestTimeString(t *testing.T) {
	require.Equal(t, "4", Units(4).String())
	require.Equal(t, "2.5", Time(2500).String())
	require.Equal(t, "0.125", Time(125).String())
	require.Equal(t, "-0.5", Time(-500).String())
	require.InDelta(t, 2.5, Time(2500).Float64(), 1e-12)
}

func TestTimeJSONAndYAML(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","period":2.5,"deadline":"2","execution":1}`), &task))
	require.Equal(t, Task{Name: "A", Period: 2500, Deadline: 2000, ExecutionTime: 1000}, task)

	out, err := json.Marshal(task)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"A","period":2.5,"deadline":2,"execution":1}`, string(out))

	var fromYAML Task
	require.NoError(t, yaml.Unmarshal([]byte("name: B\nperiod: 6\ndeadline: 5.5\nexecution: 0.25\n"), &fromYAML))
	require.Equal(t, Task{Name: "B", Period: 6000, Deadline: 5500, ExecutionTime: 250}, fromYAML)

	err = yaml.Unmarshal([]byte("name: C\nperiod: [1, 2]\n"), &fromYAML)
	require.Error(t, err)
}

func TestNewTask_RejectsInvalidValues(t *testing.T) {
	_, err := NewTask("", Units(4), Units(4), Units(1))
	require.ErrorIs(t, err, ErrInvalidTask)
	_, err = NewTask("A", 0, Units(4), Units(1))
	require.ErrorIs(t, err, ErrInvalidTask)
	_, err = NewTask("A", Units(4), -1, Units(1))
	require.ErrorIs(t, err, ErrInvalidTask)
	_, err = NewTask("A", Units(4), Units(4), 0)
	require.ErrorIs(t, err, ErrInvalidTask)
}

func TestTaskDeadlineArithmetic(t *testing.T) {
	task := mustTask(t, "A", 4, 3, 1)
	require.Equal(t, Units(3), task.AbsoluteDeadline(0))
	require.Equal(t, Units(3), task.AbsoluteDeadline(Time(3999)))
	require.Equal(t, Units(7), task.AbsoluteDeadline(Units(4)))
	require.Equal(t, Units(8), task.NextRelease(Units(5)))
	require.Equal(t, Units(8), task.NextRelease(Units(4)))
	require.True(t, task.ReleasedAt(Units(8)))
	require.False(t, task.ReleasedAt(Units(9)))
	require.InDelta(t, 0.25, task.Utilization(), 1e-12)
}

func TestTaskEquality(t *testing.T) {
	a := mustTask(t, "A", 4, 4, 2)
	b := mustTask(t, "A", 4, 4, 2)
	c := mustTask(t, "A", 4, 4, 1)
	require.True(t, a == b)
	require.False(t, a == c)

	set := map[Task]int{a: 1}
	set[b]++
	require.Len(t, set, 1)
}

func TestValidateTaskSet(t *testing.T) {
	_, err := ValidateTaskSet(nil)
	require.ErrorIs(t, err, ErrEmptyTaskSet)

	a := mustTask(t, "A", 4, 4, 2)
	b := mustTask(t, "B", 6, 6, 2)
	out, err := ValidateTaskSet([]Task{a, b, a})
	require.NoError(t, err)
	require.Equal(t, []Task{a, b}, out)

	conflicting := mustTask(t, "A", 5, 5, 1)
	_, err = ValidateTaskSet([]Task{a, conflicting})
	require.True(t, errors.Is(err, ErrDuplicateTask))

	_, err = ValidateTaskSet([]Task{a, {Name: "bad"}})
	require.ErrorIs(t, err, ErrInvalidTask)
}

func sampleSchedule(t *testing.T) (*Schedule, Task, Task) {
	t.Helper()
	a := mustTask(t, "A", 4, 4, 2)
	b := mustTask(t, "B", 6, 6, 2)
	instances := []TaskInstance{
		{Task: b, Start: Units(2), End: Units(3)},
		{Task: a, Start: Units(0), End: Units(1)},
		{Task: a, Start: Units(1), End: Units(2)},
		{Task: b, Start: Units(3), End: Units(4)},
		{Task: a, Start: Units(4), End: Units(5)},
		{Task: a, Start: Units(5), End: Units(6)},
	}
	s, err := NewSchedule(instances, Units(12))
	require.NoError(t, err)
	return s, a, b
}

func TestNewSchedule_SortsAndRejectsOverlap(t *testing.T) {
	s, a, _ := sampleSchedule(t)
	instances := s.Instances()
	for i := 1; i < len(instances); i++ {
		require.LessOrEqual(t, instances[i-1].End, instances[i].Start)
	}

	_, err := NewSchedule([]TaskInstance{
		{Task: a, Start: 0, End: Units(2)},
		{Task: a, Start: Units(1), End: Units(3)},
	}, Units(4))
	require.ErrorIs(t, err, ErrOverlap)

	_, err = NewSchedule([]TaskInstance{{Task: a, Start: Units(1), End: Units(1)}}, Units(4))
	require.ErrorIs(t, err, ErrOverlap)
}

func TestScheduleLookups(t *testing.T) {
	s, a, b := sampleSchedule(t)

	task, ok := s.TaskAt(Time(2500))
	require.True(t, ok)
	require.Equal(t, b, task)

	ti, ok := s.InstanceAt(Units(1))
	require.True(t, ok)
	require.Equal(t, Units(1), ti.Start)

	_, ok = s.InstanceAt(Units(7))
	require.False(t, ok)

	next, ok := s.NextInstance(Time(3500))
	require.True(t, ok)
	require.Equal(t, Units(4), next.Start)
	require.Equal(t, a, next.Task)

	_, ok = s.NextInstance(Units(6))
	require.False(t, ok)

	last, ok := s.LastInstance()
	require.True(t, ok)
	require.Equal(t, Units(6), last.End)

	_, ok = s.MissedTask()
	require.False(t, ok)
	_, ok = s.LastMissedInstance()
	require.False(t, ok)

	require.Equal(t, []Task{a, b}, s.Tasks())
	require.Equal(t, Units(4), s.ExecutionTime(a))
	require.Equal(t, Units(6), s.CoveredTime())
}

func TestCompress(t *testing.T) {
	s, a, b := sampleSchedule(t)

	c := s.Compress()
	require.Equal(t, 6, s.Len(), "compress must not mutate the receiver")
	require.Equal(t, []TaskInstance{
		{Task: a, Start: 0, End: Units(2)},
		{Task: b, Start: Units(2), End: Units(4)},
		{Task: a, Start: Units(4), End: Units(6)},
	}, c.Instances())

	require.Equal(t, c.Instances(), c.Compress().Instances())
	require.Equal(t, s.ExecutionTime(a), c.ExecutionTime(a))
	require.Equal(t, s.ExecutionTime(b), c.ExecutionTime(b))
	require.Equal(t, s.Feasible(), c.Feasible())
}

func TestCompress_KeepsGaps(t *testing.T) {
	a := mustTask(t, "A", 4, 4, 1)
	s, err := NewSchedule([]TaskInstance{
		{Task: a, Start: 0, End: Units(1)},
		{Task: a, Start: Units(4), End: Units(5)},
	}, Units(8))
	require.NoError(t, err)
	require.Equal(t, 2, s.Compress().Len())
}

func TestInfeasibleSchedule(t *testing.T) {
	a := mustTask(t, "A", 2, 2, 2)
	b := mustTask(t, "B", 3, 3, 2)
	s, err := NewInfeasibleSchedule([]TaskInstance{
		{Task: a, Start: 0, End: Units(1)},
		{Task: a, Start: Units(1), End: Units(2)},
		{Task: b, Start: Units(2), End: Units(3)},
	}, Units(6), Miss{Task: b, Deadline: Units(3), At: Units(3)})
	require.NoError(t, err)

	require.False(t, s.Feasible())
	missed, ok := s.MissedTask()
	require.True(t, ok)
	require.Equal(t, b, missed)
	require.Equal(t, Units(3), s.MissedAt())
	require.Equal(t, Units(3), s.MissedDeadline())
	m, ok := s.Miss()
	require.True(t, ok)
	require.Equal(t, b, m.Task)

	ti, ok := s.LastMissedInstance()
	require.True(t, ok)
	require.Equal(t, Units(2), ti.Start)

	c := s.Compress()
	require.False(t, c.Feasible())
	cm, _ := c.MissedTask()
	require.Equal(t, b, cm)
	require.Contains(t, s.String(), "B missed its deadline")
}
