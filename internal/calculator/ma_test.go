package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverage_TrailingMean(t *testing.T) {
	closes := []float64{10, 11, 12, 13, 14, 15, 16}
	for _, w := range []int{1, 2, 3, 5, 7} {
		ma, err := MovingAverage(closes, w)
		require.NoError(t, err)
		require.Len(t, ma, len(closes))
		for i := range closes {
			if i < w-1 {
				assert.True(t, math.IsNaN(ma[i]), "window %d index %d should be undefined", w, i)
				continue
			}
			sum := 0.0
			for j := i - w + 1; j <= i; j++ {
				sum += closes[j]
			}
			assert.InDelta(t, sum/float64(w), ma[i], 1e-9, "window %d index %d", w, i)
		}
	}
}

func TestMovingAverage_WindowLongerThanSeries(t *testing.T) {
	ma, err := MovingAverage([]float64{1, 2, 3}, 5)
	require.NoError(t, err)
	for _, v := range ma {
		assert.True(t, math.IsNaN(v))
	}
}

func TestMovingAverage_MissingValueBreaksWindow(t *testing.T) {
	nan := math.NaN()
	closes := []float64{1, 2, nan, 4, 5, 6}
	ma, err := MovingAverage(closes, 2)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(ma[0]))
	assert.InDelta(t, 1.5, ma[1], 1e-9)
	assert.True(t, math.IsNaN(ma[2]))
	assert.True(t, math.IsNaN(ma[3]))
	assert.InDelta(t, 4.5, ma[4], 1e-9)
	assert.InDelta(t, 5.5, ma[5], 1e-9)
}

func TestMovingAverage_InvalidWindow(t *testing.T) {
	_, err := MovingAverage([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = MovingAverage([]float64{1, 2}, -3)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestMovingAverages_IndependentWindows(t *testing.T) {
	closes := []float64{2, 4, 6, 8}
	mas, err := MovingAverages(closes, []int{2, 3, 2})
	require.NoError(t, err)
	require.Len(t, mas, 2)
	assert.InDelta(t, 7.0, mas[2][3], 1e-9)
	assert.InDelta(t, 6.0, mas[3][3], 1e-9)
	assert.True(t, math.IsNaN(mas[3][1]))
}

func TestNormalizeWindows(t *testing.T) {
	ws, err := NormalizeWindows([]int{50, 20, 50, 200})
	require.NoError(t, err)
	assert.Equal(t, []int{20, 50, 200}, ws)

	_, err = NormalizeWindows([]int{20, 0})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
