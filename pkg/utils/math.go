package utils

import "math"

// Sigmoid returns the logistic function of x, computed so that large |x| neither
// overflows nor loses the tail.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}
