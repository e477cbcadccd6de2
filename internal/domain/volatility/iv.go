package volatility

import (
	"vega/internal/domain/contract"
)

// Signal buckets the IV rank proxy
type Signal string

const (
	SignalLow      Signal = "LOW"
	SignalNormal   Signal = "NORMAL"
	SignalElevated Signal = "ELEVATED"
	SignalHigh     Signal = "HIGH"
)

// Recommendation is the premium stance implied by the IV environment
type Recommendation string

const (
	BuyPremium  Recommendation = "BUY_PREMIUM"
	SellPremium Recommendation = "SELL_PREMIUM"
	NeutralRec  Recommendation = "NEUTRAL"
)

const (
	ntmBandPct = 0.05 // near-the-money selection window
	fallbackIV = 0.30 // used when no contract on a side qualifies

	// Fixed empirical band for the rank proxy. ATM IV at or below the low end
	// maps to rank 0, at or above the high end to rank 100.
	rankBandLow  = 0.15
	rankBandHigh = 0.75
)

// Analysis aggregates near-the-money implied volatility for one underlying.
//
// RankProxy is a heuristic linear map of ATM IV against a fixed empirical
// band — NOT a true historical IV percentile, which would require history
// this system does not keep. Consumers must not conflate the two.
type Analysis struct {
	CallIV    float64 // near-the-money call-side average, fraction
	PutIV     float64 // near-the-money put-side average, fraction
	ATMIV     float64 // mean of the two sides
	Skew      float64 // put IV minus call IV
	RankProxy float64 // 0-100 heuristic band position

	Signal         Signal
	Recommendation Recommendation
}

// Extreme reports an IV environment worth alerting on.
func (a Analysis) Extreme() bool {
	return a.Signal == SignalHigh || a.Signal == SignalLow
}

// Analyze aggregates implied volatility from contracts near the money.
func Analyze(contracts []contract.Contract, underlying float64) Analysis {
	a := Analysis{
		CallIV: sideAverage(contracts, contract.Call, underlying),
		PutIV:  sideAverage(contracts, contract.Put, underlying),
	}
	a.ATMIV = (a.CallIV + a.PutIV) / 2
	a.Skew = a.PutIV - a.CallIV
	a.RankProxy = rankProxy(a.ATMIV)
	a.Signal, a.Recommendation = classify(a.RankProxy)
	return a
}

func sideAverage(contracts []contract.Contract, kind contract.Kind, underlying float64) float64 {
	if underlying <= 0 {
		return fallbackIV
	}
	lo := underlying * (1 - ntmBandPct)
	hi := underlying * (1 + ntmBandPct)

	var sum float64
	var n int
	for _, c := range contracts {
		if c.Kind != kind || c.IV <= 0 {
			continue
		}
		if c.Strike < lo || c.Strike > hi {
			continue
		}
		sum += c.IV
		n++
	}
	if n == 0 {
		return fallbackIV
	}
	return sum / float64(n)
}

func rankProxy(atmIV float64) float64 {
	rank := (atmIV - rankBandLow) / (rankBandHigh - rankBandLow) * 100
	if rank < 0 {
		return 0
	}
	if rank > 100 {
		return 100
	}
	return rank
}

func classify(rank float64) (Signal, Recommendation) {
	switch {
	case rank >= 70:
		return SignalHigh, SellPremium
	case rank >= 50:
		return SignalElevated, NeutralRec
	case rank <= 30:
		return SignalLow, BuyPremium
	default:
		return SignalNormal, NeutralRec
	}
}
