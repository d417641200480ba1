// Package numconv implements the loose-value numeric conversions used
// at the boundaries where indexes and values arrive as doubles or
// arbitrary-precision integers: fractional and non-finite inputs are
// normalized, 32-bit integer kinds wrap modulo 2^32, and 64-bit kinds
// take the low 64 bits of the two's-complement representation.
package numconv

import (
	"errors"
	"fmt"
	"math"
)

// MaxSafeIndex is the largest value the index conversion accepts,
// 2^53-1, the last integer a double represents exactly.
const MaxSafeIndex = 1<<53 - 1

var ErrRange = errors.New("value out of range")

// ToIndex converts a double to a non-negative integer index.
// NaN and negative zero normalize to 0, fractions truncate toward
// zero. Negative values and values above MaxSafeIndex fail.
func ToIndex(v float64) (int, error) {
	if math.IsNaN(v) {
		return 0, nil
	}
	t := math.Trunc(v)
	if t < 0 {
		return 0, fmt.Errorf("%w: index is negative", ErrRange)
	}
	if t > MaxSafeIndex {
		return 0, fmt.Errorf("%w: index exceeds 2^53-1", ErrRange)
	}
	n := int64(t)
	if int64(int(n)) != n { // int is 32 bits on this platform
		return 0, fmt.Errorf("%w: index exceeds platform int", ErrRange)
	}
	return int(n), nil
}
