package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Resolution is the number of Time ticks in one time unit. Task parameters may
// therefore carry at most three fractional digits.
const Resolution = 1000

// Unit is one whole time unit.
const Unit Time = Resolution

var ErrInvalidTime = errors.New("invalid time value")

// Time is simulation time in fixed point (1/Resolution of a unit). Using integers
// keeps release and deadline comparisons exact across a whole hyperperiod.
type Time int64

// Units converts a whole number of time units to Time.
func Units(n int64) Time {
	return Time(n * Resolution)
}

// ParseTime parses a decimal such as "4", "2.5" or "0.125".
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidTime)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > 3 {
		return 0, fmt.Errorf("%w: %q has more than 3 fractional digits", ErrInvalidTime, s)
	}
	frac += strings.Repeat("0", 3-len(frac))

	var w int64
	if whole != "" {
		var err error
		w, err = strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidTime, err)
		}
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}
	if w > (math.MaxInt64-f)/Resolution {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTime, s)
	}

	v := Time(w*Resolution + f)
	if neg {
		v = -v
	}
	return v, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (t Time) Float64() float64 {
	return float64(t) / Resolution
}

func (t Time) String() string {
	v := int64(t)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / Resolution
	frac := v % Resolution
	if frac == 0 {
		return fmt.Sprintf("%s%d", sign, whole)
	}
	return strings.TrimRight(fmt.Sprintf("%s%d.%03d", sign, whole, frac), "0")
}

// Mod returns t mod p for non-negative t and positive p.
func (t Time) Mod(p Time) Time {
	return t % p
}

func MinTime(a, b Time) Time {
	if a < b {
		return a
	}
	return b
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (t *Time) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected a number", ErrInvalidTime, value.Line)
	}
	v, err := ParseTime(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = v
	return nil
}
