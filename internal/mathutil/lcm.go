package mathutil

import (
	"errors"
	"math"

	"golang.org/x/exp/constraints"
)

var (
	ErrEmpty    = errors.New("lcm of an empty set is undefined")
	ErrOverflow = errors.New("lcm overflows int64")
	ErrNegative = errors.New("lcm is only defined for positive values")
)

// GCD computes the greatest common divisor of two non-negative integers.
func GCD[T constraints.Integer](a, b T) T {
	for b > 0 {
		a, b = b, a%b
	}
	return a
}

// LCM computes a * (b / gcd(a, b)). Callers that need overflow detection use LCMOf.
func LCM[T constraints.Integer](a, b T) T {
	g := GCD(a, b)
	if g == 0 {
		return 0
	}
	return a * (b / g)
}

// LCMOf folds LCM over all values, left to right.
func LCMOf(values ...int64) (int64, error) {
	if len(values) == 0 {
		return 0, ErrEmpty
	}

	result := values[0]
	if result <= 0 {
		return 0, ErrNegative
	}
	for _, v := range values[1:] {
		if v <= 0 {
			return 0, ErrNegative
		}
		factor := v / GCD(result, v)
		if result > math.MaxInt64/factor {
			return 0, ErrOverflow
		}
		result *= factor
	}
	return result, nil
}
