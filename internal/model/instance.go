package model

import "fmt"

// TaskInstance is one contiguous interval [Start, End) during which Task held
// the processor. A preempted job shows up as several instances.
type TaskInstance struct {
	Task  Task `json:"task"`
	Start Time `json:"start"`
	End   Time `json:"end"`
}

func (ti TaskInstance) Duration() Time {
	return ti.End - ti.Start
}

// Contains reports whether at lies in [Start, End).
func (ti TaskInstance) Contains(at Time) bool {
	return ti.Start <= at && at < ti.End
}

// Less orders instances by start time.
func (ti TaskInstance) Less(other TaskInstance) bool {
	return ti.Start < other.Start
}

func (ti TaskInstance) String() string {
	return fmt.Sprintf("TaskInstance [%s: %s, %s]", ti.Task.Name, ti.Start, ti.End)
}
