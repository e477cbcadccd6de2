package technical_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vega/internal/domain/technical"
)

func rising(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return closes
}

func falling(n int, start, step float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start - float64(i)*step
	}
	return closes
}

func TestCompute_EmptyHistoryIsNeutral(t *testing.T) {
	ctx := technical.Compute(nil)
	assert.Equal(t, technical.Neutral, ctx.Trend)
	assert.InDelta(t, 50.0, ctx.RSI, 1e-9)
}

func TestCompute_UptrendIsBullish(t *testing.T) {
	ctx := technical.Compute(rising(60, 100, 0.5))
	assert.Equal(t, technical.Bullish, ctx.Trend)
	assert.Greater(t, ctx.RSI, 70.0)
	assert.Greater(t, ctx.SMA20, ctx.SMA50)
}

func TestCompute_DowntrendIsBearish(t *testing.T) {
	ctx := technical.Compute(falling(60, 150, 0.5))
	assert.Equal(t, technical.Bearish, ctx.Trend)
	assert.Less(t, ctx.RSI, 30.0)
	assert.Less(t, ctx.SMA20, ctx.SMA50)
}

func TestCompute_FlatSeriesIsNeutral(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	ctx := technical.Compute(closes)
	assert.Equal(t, technical.Neutral, ctx.Trend)
}

func TestCompute_ShortHistoryFallsBack(t *testing.T) {
	// 10 closes: below the RSI period and both SMA periods.
	ctx := technical.Compute(rising(10, 100, 1))
	assert.InDelta(t, 50.0, ctx.RSI, 1e-9)
	assert.InDelta(t, 109.0, ctx.SMA20, 1e-9) // last close
	assert.InDelta(t, 109.0, ctx.SMA50, 1e-9)
}

func TestCompute_SupportResistanceFromRecentWindow(t *testing.T) {
	closes := rising(60, 100, 1) // last 20 closes are 140..159
	ctx := technical.Compute(closes)
	assert.InDelta(t, 140.0, ctx.Support, 1e-9)
	assert.InDelta(t, 159.0, ctx.Resistance, 1e-9)
}

func TestRSIExtreme(t *testing.T) {
	assert.True(t, technical.Context{RSI: 72}.RSIExtreme())
	assert.True(t, technical.Context{RSI: 28}.RSIExtreme())
	assert.False(t, technical.Context{RSI: 55}.RSIExtreme())
}
