package calculator

import "math"

// NanMean averages the finite values of xs. It returns NaN when there are none.
func NanMean(xs []float64) float64 {
	sum, n := 0.0, 0
	for _, x := range xs {
		if !isFinite(x) {
			continue
		}
		sum += x
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func nanAt(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return math.NaN()
}
