// Package sector groups symbols by a static classification and reduces
// their daily percentage changes to one average per sector.
package sector

import "strings"

// Unknown is the sector of every symbol missing from a Map.
const Unknown = "Unknown"

// Map is an immutable symbol to sector classification.
type Map struct {
	sectors map[string]string
}

// NewMap copies entries into a Map. Symbols are matched case-insensitively.
func NewMap(entries map[string]string) Map {
	m := Map{sectors: make(map[string]string, len(entries))}
	for sym, sec := range entries {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		sec = strings.TrimSpace(sec)
		if sym == "" || sec == "" {
			continue
		}
		m.sectors[sym] = sec
	}
	return m
}

// DefaultMap is the built-in classification of the dashboard's ticker universe.
func DefaultMap() Map {
	return NewMap(map[string]string{
		"AAPL":  "Technology",
		"MSFT":  "Technology",
		"NVDA":  "Technology",
		"GOOGL": "Communication Services",
		"META":  "Communication Services",
		"NFLX":  "Communication Services",
		"AMZN":  "Consumer Discretionary",
		"TSLA":  "Consumer Discretionary",
		"JPM":   "Financials",
		"BAC":   "Financials",
		"V":     "Financials",
		"JNJ":   "Healthcare",
		"PFE":   "Healthcare",
		"XOM":   "Energy",
		"CVX":   "Energy",
		"WMT":   "Consumer Staples",
		"KO":    "Consumer Staples",
	})
}

// Lookup returns the sector of symbol, or Unknown.
func (m Map) Lookup(symbol string) string {
	if sec, ok := m.sectors[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return sec
	}
	return Unknown
}

// Len returns the number of classified symbols.
func (m Map) Len() int { return len(m.sectors) }
