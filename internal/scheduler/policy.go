package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"rtsched/internal/model"
)

var ErrUnknownPolicy = errors.New("unknown scheduling policy")

type Policy int

const (
	RateMonotonic Policy = iota
	DeadlineMonotonic
	EarliestDeadlineFirst
	RoundRobin
)

// DefaultSliceLength is the Round Robin time slice used by New.
const DefaultSliceLength = model.Unit

var policyNames = map[Policy]string{
	RateMonotonic:         "rate_monotonic",
	DeadlineMonotonic:     "deadline_monotonic",
	EarliestDeadlineFirst: "earliest_deadline_first",
	RoundRobin:            "round_robin",
}

var policyShortNames = map[Policy]string{
	RateMonotonic:         "RM",
	DeadlineMonotonic:     "DM",
	EarliestDeadlineFirst: "EDF",
	RoundRobin:            "RR",
}

// SupportedPolicies lists every policy in a fixed order.
func SupportedPolicies() []Policy {
	return []Policy{RateMonotonic, DeadlineMonotonic, EarliestDeadlineFirst, RoundRobin}
}

func (p Policy) Name() string {
	if n, ok := policyNames[p]; ok {
		return n
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

func (p Policy) String() string {
	if n, ok := policyShortNames[p]; ok {
		return n
	}
	return p.Name()
}

// Dynamic reports whether the policy recomputes priorities over time.
func (p Policy) Dynamic() bool {
	return p == EarliestDeadlineFirst || p == RoundRobin
}

func (p Policy) MarshalText() ([]byte, error) {
	if _, ok := policyNames[p]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePolicy accepts the short names (rm, dm, edf, rr) and the long names in
// snake, kebab or upper case.
func ParsePolicy(s string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for p, short := range policyShortNames {
		if key == strings.ToLower(short) || key == policyNames[p] {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// New returns the engine for a policy, with the default Round Robin slice.
func New(policy Policy) (Algorithm, error) {
	return NewWithSlice(policy, DefaultSliceLength)
}

// NewWithSlice is New with an explicit Round Robin slice length. The slice is
// ignored by the other policies.
func NewWithSlice(policy Policy, slice model.Time) (Algorithm, error) {
	switch policy {
	case RateMonotonic:
		return NewRateMonotonic(), nil
	case DeadlineMonotonic:
		return NewDeadlineMonotonic(), nil
	case EarliestDeadlineFirst:
		return NewEarliestDeadlineFirst(), nil
	case RoundRobin:
		return NewRoundRobin(slice)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, int(policy))
}

// CreateSchedule schedules tasks with the given policy.
func CreateSchedule(tasks []model.Task, policy Policy) (*model.Schedule, error) {
	alg, err := New(policy)
	if err != nil {
		return nil, err
	}
	return alg.CreateSchedule(tasks)
}
