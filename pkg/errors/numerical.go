package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, index int) error {
	var bad []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, v)
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(operation, bad, index)
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, index int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, index)
	}
	return nil
}

// RegularizedInvSqrt returns 1/sqrt(x+reg). The regularization keeps the
// result finite at x == 0; callers pick reg, typically 1e-6.
func RegularizedInvSqrt(x, reg float64) float64 {
	return 1 / math.Sqrt(x+reg)
}

