package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockDash/internal/collector"
	"StockDash/internal/export"
	"StockDash/internal/pipeline"
	"StockDash/internal/sector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runPass(t *testing.T) *pipeline.Result {
	t.Helper()
	res, err := pipeline.New(&collector.MockFetcher{Price: 100}, sector.DefaultMap(), nil, nil).Run(context.Background(), pipeline.Request{
		Symbols: []string{"AAPL", "JPM"},
		Start:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		Windows: []int{5, 3},
	})
	require.NoError(t, err)
	return res
}

func TestWrite_AllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := runPass(t)

	paths, err := Write(dir, []string{FormatCSV, FormatXLSX, FormatHTML, FormatText}, res, FormFor(res))
	require.NoError(t, err)
	require.Len(t, paths, 4)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	f, err := os.Open(filepath.Join(dir, FileNames[FormatCSV]))
	require.NoError(t, err)
	defer f.Close()
	frame, err := export.ReadCSV(f)
	require.NoError(t, err)
	assert.Equal(t, res.Table.Dates, frame.Dates)
	assert.Equal(t, []string{"AAPL", "JPM"}, frame.Symbols())

	html, err := os.ReadFile(filepath.Join(dir, FileNames[FormatHTML]))
	require.NoError(t, err)
	assert.Contains(t, string(html), `value="AAPL,JPM"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "temp file left behind: %s", e.Name())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	_, err := Write(t.TempDir(), []string{"pdf"}, runPass(t), FormFor(runPass(t)))
	assert.Error(t, err)
}

func TestFormFor(t *testing.T) {
	form := FormFor(runPass(t))
	assert.Equal(t, "AAPL,JPM", form.Symbols)
	assert.Equal(t, "2024-05-01", form.Start)
	assert.Equal(t, "2024-05-31", form.End)
	assert.Equal(t, "3,5", form.MA)
}
