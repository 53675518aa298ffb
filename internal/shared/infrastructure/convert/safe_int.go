// Package convert holds bounded integer conversions used at driver and
// scheduling boundaries.
package convert

import "math"

// IntToInt32Clamped converts an int to int32, clamping out-of-range values.
func IntToInt32Clamped(v int) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// IntToUintClamped converts an int to uint, clamping negative values to 0.
func IntToUintClamped(v int) uint {
	if v < 0 {
		return 0
	}
	return uint(v)
}

// BackoffShift returns the exponent for a doubling backoff after attempt
// retries, capped so that 1<<shift never overflows a time.Duration.
func BackoffShift(attempt, maxShift int) uint {
	if attempt < 1 {
		return 0
	}
	if attempt-1 > maxShift {
		return IntToUintClamped(maxShift)
	}
	return IntToUintClamped(attempt - 1)
}
