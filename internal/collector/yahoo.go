package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"StockDash/internal/model"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client         *http.Client
	BaseURL        string
	SymbolMap      map[string]string // maps internal symbol to Yahoo ticker
	Limiter        *rate.Limiter
	MaxConcurrency int
}

// YahooOptions tunes the Yahoo client.
type YahooOptions struct {
	Proxy             string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxConcurrency    int
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts YahooOptions) *YahooFetcher {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &YahooFetcher{
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		BaseURL: yahooBaseURL,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Limiter:        rate.NewLimiter(limit, 1),
		MaxConcurrency: opts.MaxConcurrency,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func valueAt(vs []*float64, i int) float64 {
	if i >= len(vs) || vs[i] == nil {
		return math.NaN()
	}
	return *vs[i]
}

// Fetch downloads every symbol concurrently and outer-joins the results.
// A symbol the API knows nothing about comes back as an all-missing column.
func (f *YahooFetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) (*model.Table, error) {
	var mu sync.Mutex
	series := make(map[string][]model.OHLCV, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	limit := f.MaxConcurrency
	if limit <= 0 {
		limit = len(symbols) + 1
	}
	g.SetLimit(limit)
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			bars, err := f.fetchChart(gctx, sym, start, end)
			if errors.Is(err, ErrNoData) {
				bars, err = nil, nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", sym, err)
			}
			mu.Lock()
			series[sym] = bars
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return model.NewTable(symbols, series), nil
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("period1", fmt.Sprint(model.DateOf(start).Unix()))
	q.Set("period2", fmt.Sprint(model.DateOf(end).AddDate(0, 0, 1).Unix()))
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s",
		strings.TrimRight(f.BaseURL, "/"), url.PathEscape(f.yahooSymbol(symbol)), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		c := valueAt(quote.Close, i)
		if math.IsNaN(c) {
			continue // skip null bars (holidays etc.)
		}
		// Exchange-local calendar day.
		t := model.DateOf(time.Unix(ts+result.Meta.GMTOffset, 0))
		if !inRange(t, start, end) {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   valueAt(quote.Open, i),
			High:   valueAt(quote.High, i),
			Low:    valueAt(quote.Low, i),
			Close:  c,
			Volume: valueAt(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
