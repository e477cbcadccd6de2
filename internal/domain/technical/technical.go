package technical

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Trend classifies the underlying's direction
type Trend string

const (
	Bullish Trend = "BULLISH"
	Bearish Trend = "BEARISH"
	Neutral Trend = "NEUTRAL"
)

// String returns string representation
func (t Trend) String() string {
	return string(t)
}

const (
	rsiPeriod   = 14
	smaShort    = 20
	smaLong     = 50
	srWindow    = 20
	trendBuffer = 1.002 // price must clear both SMAs by 0.2% to leave NEUTRAL
)

// Context is the technical backdrop derived once from a daily-close sequence
// (chronological, most recent last).
type Context struct {
	Trend      Trend
	RSI        float64
	SMA20      float64
	SMA50      float64
	Support    float64
	Resistance float64
}

// RSIExtreme reports an overbought/oversold RSI reading.
func (c Context) RSIExtreme() bool {
	return c.RSI >= 70 || c.RSI <= 30
}

// Compute derives the technical context from daily closes. With insufficient
// history every indicator falls back to its defined neutral value (RSI 50,
// SMA = last close) rather than being undefined.
func Compute(closes []float64) Context {
	if len(closes) == 0 {
		return Context{Trend: Neutral, RSI: 50}
	}

	price := closes[len(closes)-1]

	ctx := Context{
		RSI:   rsi(closes),
		SMA20: sma(closes, smaShort),
		SMA50: sma(closes, smaLong),
	}
	ctx.Support, ctx.Resistance = supportResistance(closes)
	ctx.Trend = classifyTrend(price, ctx.SMA20, ctx.SMA50)
	return ctx
}

// rsi computes Wilder's RSI(14). Requires period+1 closes; returns the
// neutral 50 below that — a documented fallback, not a bug.
func rsi(closes []float64) float64 {
	if len(closes) < rsiPeriod+1 {
		return 50
	}
	values := talib.Rsi(closes, rsiPeriod)
	v := values[len(values)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 50
	}
	return v
}

// sma computes the trailing n-close mean, falling back to the most recent
// close when history is shorter than the period. Keeps the indicator defined
// rather than null.
func sma(closes []float64, period int) float64 {
	if len(closes) < period {
		return closes[len(closes)-1]
	}
	values := talib.Sma(closes, period)
	return values[len(values)-1]
}

func supportResistance(closes []float64) (support, resistance float64) {
	window := closes
	if len(closes) > srWindow {
		window = closes[len(closes)-srWindow:]
	}
	support, resistance = window[0], window[0]
	for _, c := range window[1:] {
		if c < support {
			support = c
		}
		if c > resistance {
			resistance = c
		}
	}
	return support, resistance
}

func classifyTrend(price, sma20, sma50 float64) Trend {
	if price > sma20*trendBuffer && price > sma50*trendBuffer {
		return Bullish
	}
	if price < sma20/trendBuffer && price < sma50/trendBuffer {
		return Bearish
	}
	return Neutral
}
