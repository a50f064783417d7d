package calculator

import (
	"errors"
	"sort"

	talib "github.com/markcheno/go-talib"
)

// ErrInvalidWindow is returned for a non-positive moving-average window.
var ErrInvalidWindow = errors.New("window must be positive")

// MovingAverage computes the trailing simple moving average of closes over window days.
// The first window-1 outputs are NaN, and so is any output whose window holds a missing value.
func MovingAverage(closes []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, ErrInvalidWindow
	}
	out := nanSlice(len(closes))

	// talib keeps a running sum, so feed it only runs of finite values.
	for start := 0; start < len(closes); {
		if !isFinite(closes[start]) {
			start++
			continue
		}
		end := start
		for end < len(closes) && isFinite(closes[end]) {
			end++
		}
		if end-start >= window {
			sma := talib.Sma(closes[start:end], window)
			for i := start + window - 1; i < end; i++ {
				out[i] = sma[i-start]
			}
		}
		start = end
	}
	return out, nil
}

// MovingAverages computes one moving average per distinct window.
func MovingAverages(closes []float64, windows []int) (map[int][]float64, error) {
	out := make(map[int][]float64, len(windows))
	for _, w := range windows {
		if _, ok := out[w]; ok {
			continue
		}
		ma, err := MovingAverage(closes, w)
		if err != nil {
			return nil, err
		}
		out[w] = ma
	}
	return out, nil
}

// NormalizeWindows sorts and deduplicates windows, rejecting non-positive values.
func NormalizeWindows(windows []int) ([]int, error) {
	seen := make(map[int]bool, len(windows))
	out := make([]int, 0, len(windows))
	for _, w := range windows {
		if w <= 0 {
			return nil, ErrInvalidWindow
		}
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	sort.Ints(out)
	return out, nil
}
