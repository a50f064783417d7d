package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2024, time.February, d, 0, 0, 0, 0, time.UTC) }

func TestDateOf(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	assert.Equal(t, day(3), DateOf(time.Date(2024, 2, 3, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, day(4), DateOf(time.Date(2024, 2, 3, 20, 0, 0, 0, ny)))
}

func TestNewTable_OuterJoin(t *testing.T) {
	table := NewTable([]string{"B", "A", "C"}, map[string][]OHLCV{
		"A": {{Time: day(2), Close: 10, Open: 9}, {Time: day(1).Add(15 * time.Hour), Close: 11}},
		"B": {{Time: day(3), Close: 20}},
	})

	assert.Equal(t, []time.Time{day(1), day(2), day(3)}, table.Dates)
	assert.Equal(t, []string{"B", "A", "C"}, table.Symbols)
	assert.Equal(t, 3, table.Len())
	assert.False(t, table.Empty())
	assert.True(t, table.Has("C"))
	assert.False(t, table.Has("D"))

	a := table.Closes("A")
	assert.Equal(t, 11.0, a[0])
	assert.Equal(t, 10.0, a[1])
	assert.True(t, math.IsNaN(a[2]))
	assert.Equal(t, 9.0, table.Opens("A")[1])

	for _, v := range table.Closes("C") {
		assert.True(t, math.IsNaN(v))
	}
	for _, v := range table.Volumes("unknown") {
		assert.True(t, math.IsNaN(v))
	}
}

func TestNewTable_Empty(t *testing.T) {
	table := NewTable([]string{"A"}, nil)
	assert.True(t, table.Empty())
	assert.Empty(t, table.Closes("A"))

	var nilTable *Table
	assert.Equal(t, 0, nilTable.Len())
}

func TestTable_Series(t *testing.T) {
	table := NewTable([]string{"A", "B"}, map[string][]OHLCV{
		"A": {{Time: day(1), Close: 1}, {Time: day(3), Close: 3}},
		"B": {{Time: day(2), Close: 2}},
	})
	series := table.Series("A")
	require.Len(t, series, 2)
	assert.Equal(t, day(1), series[0].Time)
	assert.Equal(t, day(3), series[1].Time)
}

func TestDerived_Columns(t *testing.T) {
	d := &Derived{
		Symbol:         "A",
		MovingAverages: map[int][]float64{50: {1}, 5: {2}},
		Change:         []float64{3},
		PctChange:      []float64{4},
	}
	assert.Equal(t, []int{5, 50}, d.Windows())

	var headers []string
	for _, c := range d.Columns() {
		headers = append(headers, c.Header())
	}
	assert.Equal(t, []string{"MA5_A", "MA50_A", "Change_A", "PctChange_A"}, headers)
}

func TestFrame_Lookup(t *testing.T) {
	table := NewTable([]string{"A", "B"}, map[string][]OHLCV{"A": {{Time: day(1), Close: 1}}})
	f := &Frame{Dates: table.Dates}
	f.Columns = append(f.Columns, RawColumns(table, "A")...)
	f.Columns = append(f.Columns, RawColumns(table, "B")...)

	assert.Equal(t, []string{"A", "B"}, f.Symbols())
	c, ok := f.Column(FieldClose, "A")
	require.True(t, ok)
	assert.Equal(t, []float64{1}, c.Values)
	_, ok = f.Column(MAField(20), "A")
	assert.False(t, ok)
}
