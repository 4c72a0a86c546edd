package config

import (
	"testing"

	"rtsched/internal/model"
)

func TestTaskSetChecksum_DeterministicAcrossMapOrder(t *testing.T) {
	cfg1 := &TaskSetConfig{TaskSet: TaskSetInfo{Name: "t"}}
	cfg1.Tasks = map[string]TaskConfig{
		"b": {Index: 1, Period: model.Units(6), Execution: model.Units(2)},
		"a": {Index: 0, Period: model.Units(4), Deadline: timePtr(model.Units(3)), Execution: model.Units(1)},
	}

	cfg2 := &TaskSetConfig{TaskSet: TaskSetInfo{Name: "t"}}
	// Same tasks but inserted in opposite order.
	cfg2.Tasks = map[string]TaskConfig{
		"a": cfg1.Tasks["a"],
		"b": cfg1.Tasks["b"],
	}

	s1, err := TaskSetChecksum(cfg1)
	if err != nil {
		t.Fatalf("TaskSetChecksum(cfg1): %v", err)
	}
	s2, err := TaskSetChecksum(cfg2)
	if err != nil {
		t.Fatalf("TaskSetChecksum(cfg2): %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected same checksum, got %q vs %q", s1, s2)
	}
	if len(s1) != 6 {
		t.Fatalf("expected 6-char checksum, got %q (len=%d)", s1, len(s1))
	}
}

func TestTaskSetChecksum_ChangesWhenTasksChange(t *testing.T) {
	cfg := &TaskSetConfig{TaskSet: TaskSetInfo{Name: "t"}}
	cfg.Tasks = map[string]TaskConfig{
		"a": {Index: 0, Period: model.Units(4), Execution: model.Units(1)},
	}
	s1, err := TaskSetChecksum(cfg)
	if err != nil {
		t.Fatalf("TaskSetChecksum: %v", err)
	}

	c := cfg.Tasks["a"]
	c.Execution = model.Units(2)
	cfg.Tasks["a"] = c

	s2, err := TaskSetChecksum(cfg)
	if err != nil {
		t.Fatalf("TaskSetChecksum after change: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("expected checksum to change, got %q", s1)
	}
}

func TestTaskSetChecksum_IgnoresSchedulerChoice(t *testing.T) {
	cfg := &TaskSetConfig{TaskSet: TaskSetInfo{Name: "t", Scheduler: SchedulerConfig{Algorithm: "rm"}}}
	cfg.Tasks = map[string]TaskConfig{
		"a": {Index: 0, Period: model.Units(4), Execution: model.Units(1)},
	}
	s1, _ := TaskSetChecksum(cfg)
	cfg.TaskSet.Scheduler.Algorithm = "edf"
	s2, _ := TaskSetChecksum(cfg)
	if s1 != s2 {
		t.Fatalf("scheduler choice must not change the checksum: %q vs %q", s1, s2)
	}

	// An explicit deadline equal to the period is the same task set.
	c := cfg.Tasks["a"]
	c.Deadline = timePtr(c.Period)
	cfg.Tasks["a"] = c
	s3, _ := TaskSetChecksum(cfg)
	if s1 != s3 {
		t.Fatalf("implicit and explicit deadline differ: %q vs %q", s1, s3)
	}
}

func timePtr(t model.Time) *model.Time {
	return &t
}
