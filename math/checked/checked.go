/*
Package checked implements arithmetic operations and conversions
with underflow and overflow checks.
*/
package checked

import (
	"errors"
	"math"
)

var ErrOverflow = errors.New("arithmetic overflow")

// AddUint16 returns a + b
// with an integer overflow check.
func AddUint16(a, b uint16) (sum uint16, ok bool) {
	if math.MaxUint16-a < b {
		return 0, false
	}
	return a + b, true
}

// AddInt64 returns a + b
// with an integer overflow check.
func AddInt64(a, b int64) (sum int64, ok bool) {
	if (b > 0 && a > math.MaxInt64-b) ||
		(b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// Uint16 converts n to a uint16
// with a range check.
func Uint16(n int) (out uint16, ok bool) {
	if n < 0 || n > math.MaxUint16 {
		return 0, false
	}
	return uint16(n), true
}
