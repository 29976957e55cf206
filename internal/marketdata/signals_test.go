package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)

	assert.Len(t, got, 4)
	assert.Equal(t, 0.0, got[0], "warm-up entry is zero")
	assert.InDelta(t, 1.5, got[1], 1e-9)
	assert.InDelta(t, 2.5, got[2], 1e-9)
	assert.InDelta(t, 3.5, got[3], 1e-9)
}

func TestGenerateSignals_TooFewPrices(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
	}

	assert.Nil(t, GenerateSignals(prices, 5, 20, 14, 30))
	assert.Nil(t, GenerateSignals(nil, 5, 20, 14, 30))
}

func TestGenerateSignals_FlatSeriesProducesNone(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}

	assert.Empty(t, GenerateSignals(prices, 5, 20, 14, 30))
}

func TestGenerateSignals_SteadyTrendProducesNone(t *testing.T) {
	// A monotone rise never crosses back, so no death cross fires, and the
	// golden cross at the start falls inside the warm-up window.
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	for _, s := range GenerateSignals(prices, 5, 20, 14, 30) {
		assert.NotEqual(t, ActionSell, s.Action)
	}
}

func TestLatestSignal_FlatSeries(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}

	_, ok := LatestSignal(prices, 5, 20, 14, 30)
	assert.False(t, ok)
}

func TestLatestSignal_TooFewPrices(t *testing.T) {
	_, ok := LatestSignal([]float64{100, 101, 102}, 5, 20, 14, 30)
	assert.False(t, ok)
}
