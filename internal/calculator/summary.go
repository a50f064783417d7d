package calculator

import (
	"errors"
	"math"
)

// ErrNoData is returned when a series has no finite value to summarize.
var ErrNoData = errors.New("no data to summarize")

// Summary holds the unrounded statistics of a price series.
type Summary struct {
	Min   float64
	Max   float64
	Mean  float64
	Last  float64
	Count int
}

// Summarize scans the finite values of prices and returns min, max, mean and the most recent value.
func Summarize(prices []float64) (Summary, error) {
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, p := range prices {
		if !isFinite(p) {
			continue
		}
		if p < s.Min {
			s.Min = p
		}
		if p > s.Max {
			s.Max = p
		}
		sum += p
		s.Last = p
		s.Count++
	}
	if s.Count == 0 {
		return Summary{}, ErrNoData
	}
	s.Mean = sum / float64(s.Count)
	return s, nil
}
