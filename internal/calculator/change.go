package calculator

// DailyChange returns close[i] - open[i] for every date. Missing inputs yield NaN.
func DailyChange(open, close []float64) []float64 {
	out := make([]float64, len(close))
	for i := range close {
		o := nanAt(open, i)
		out[i] = close[i] - o
	}
	return out
}

// DailyPercentChange returns the day-over-day change of closes in percent.
// Index 0 is NaN, as is any day whose previous close is zero or missing.
func DailyPercentChange(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 || !isFinite(prev) {
			continue
		}
		out[i] = (closes[i] - prev) / prev * 100
	}
	return out
}
