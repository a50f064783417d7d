package model

// SummaryRecord is the per-symbol statistic row of the Close column.
// Prices are rounded to two decimals.
type SummaryRecord struct {
	Symbol string  `json:"symbol"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Last   float64 `json:"last"`
}

// SectorAverageRecord is the average daily percentage change of one sector,
// rounded to four decimals. The value is NaN when no member has a finite change.
type SectorAverageRecord struct {
	Sector            string   `json:"sector"`
	Members           []string `json:"members"`
	AvgDailyPctChange float64  `json:"avg_daily_pct_change"`
}
