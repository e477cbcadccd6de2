package scoring

import (
	"math"

	"vega/internal/domain/contract"
	"vega/internal/domain/technical"
	"vega/internal/domain/volatility"
)

// Config holds the eligibility gate and timing window. Thresholds are
// observed heuristics surfaced as configuration.
type Config struct {
	MinDTE          int
	MaxDTE          int
	MaxSpreadPct    float64
	MinOpenInterest int64
	MinVolume       int64
	MinMidPrice     float64
}

// DefaultConfig returns the standard gate
func DefaultConfig() Config {
	return Config{
		MinDTE:          7,
		MaxDTE:          90,
		MaxSpreadPct:    10,
		MinOpenInterest: 100,
		MinVolume:       50,
		MinMidPrice:     0.05,
	}
}

// Rejection labels a gate failure, collected for the NO_TRADE fallback.
type Rejection string

const (
	RejectDTE       Rejection = "expiration outside the tradable window"
	RejectLiquidity Rejection = "failed the liquidity gate"
	RejectNoPrice   Rejection = "no tradable price"
	RejectDelta     Rejection = "delta outside the tradable band"
)

// Tradable absolute-delta band. Applied only when the feed reports a delta;
// a missing delta is not a gate failure.
const (
	minGateDelta = 0.15
	maxGateDelta = 0.85
)

// Breakdown is the named sub-score decomposition of a contract's total score.
// Each sub-score spans 0-2; Total is their sum.
type Breakdown struct {
	Delta     float64 `json:"delta"`
	IV        float64 `json:"iv"`
	Liquidity float64 `json:"liquidity"`
	Timing    float64 `json:"timing"`
	Trend     float64 `json:"trend"`
	Unusual   float64 `json:"unusual"`
	Total     float64 `json:"total"`
}

// Scored pairs a contract with its score breakdown
type Scored struct {
	Contract  contract.Contract
	Breakdown Breakdown
}

// Eligible applies the hard gate that precedes scoring. The returned
// rejection is meaningful only when ok is false.
func (cfg Config) Eligible(c contract.Contract) (ok bool, why Rejection) {
	if c.DTE < cfg.MinDTE || c.DTE > cfg.MaxDTE {
		return false, RejectDTE
	}
	if !c.HasMid || c.Mid < cfg.MinMidPrice {
		return false, RejectNoPrice
	}
	if c.SpreadPct > cfg.MaxSpreadPct {
		return false, RejectLiquidity
	}
	if c.OpenInterest < cfg.MinOpenInterest && c.Volume < cfg.MinVolume {
		return false, RejectLiquidity
	}
	if d := math.Abs(c.Delta); c.Delta != 0 && (d < minGateDelta || d > maxGateDelta) {
		return false, RejectDelta
	}
	return true, ""
}

// Score computes the multi-factor breakdown for an eligible contract.
// Deterministic: no randomness and no wall-clock reads — identical inputs
// must reproduce identical output for audit and backtesting.
func Score(c contract.Contract, tech technical.Context, iv volatility.Analysis) Breakdown {
	b := Breakdown{
		Delta:     deltaScore(c),
		IV:        ivScore(c.IV, iv.ATMIV),
		Liquidity: liquidityScore(c),
		Timing:    timingScore(c.DTE),
		Trend:     trendScore(c.Kind, tech.Trend),
		Unusual:   unusualBonus(c.UnusualScore),
	}
	b.Total = b.Delta + b.IV + b.Liquidity + b.Timing + b.Trend + b.Unusual
	return b
}

// Rank selects the single best call and best put among the contracts.
// Calls are suppressed in a bearish trend; puts are always considered, as
// directional bets or hedges. Ties keep the earlier-listed contract (stable,
// no randomization). Rejections count gate failures for the fallback path.
func Rank(contracts []contract.Contract, tech technical.Context, iv volatility.Analysis, cfg Config) (bestCall, bestPut *Scored, rejections map[Rejection]int) {
	rejections = make(map[Rejection]int)

	for _, c := range contracts {
		ok, why := cfg.Eligible(c)
		if !ok {
			rejections[why]++
			continue
		}

		s := Scored{Contract: c, Breakdown: Score(c, tech, iv)}
		switch c.Kind {
		case contract.Call:
			if tech.Trend == technical.Bearish {
				continue
			}
			if bestCall == nil || s.Breakdown.Total > bestCall.Breakdown.Total {
				sc := s
				bestCall = &sc
			}
		case contract.Put:
			if bestPut == nil || s.Breakdown.Total > bestPut.Breakdown.Total {
				sc := s
				bestPut = &sc
			}
		}
	}
	return bestCall, bestPut, rejections
}

// deltaScore peaks in the 0.35-0.65 absolute-delta band: enough directional
// exposure to matter, not so deep that premium is all intrinsic. When the
// feed omits delta, moneyness stands in for it.
func deltaScore(c contract.Contract) float64 {
	if c.Delta == 0 {
		switch {
		case c.Moneyness <= 5:
			return 2
		case c.Moneyness <= 12:
			return 1
		default:
			return 0
		}
	}
	d := math.Abs(c.Delta)
	switch {
	case d >= 0.35 && d <= 0.65:
		return 2
	case d >= 0.20 && d <= 0.80:
		return 1
	default:
		return 0
	}
}

// ivScore rewards below-average IV: cheaper premium for the same exposure.
func ivScore(iv, atmAvg float64) float64 {
	if atmAvg <= 0 || iv <= 0 {
		return 1
	}
	switch {
	case iv < atmAvg:
		return 2
	case iv < atmAvg*1.2:
		return 1
	default:
		return 0
	}
}

func liquidityScore(c contract.Contract) float64 {
	switch {
	case c.SpreadPct <= 3 && (c.Volume >= 500 || c.OpenInterest >= 1000):
		return 2
	case c.SpreadPct <= 6 && (c.Volume >= 100 || c.OpenInterest >= 250):
		return 1
	default:
		return 0.5
	}
}

// timingScore prefers the 21-45 DTE pocket: past the worst gamma risk,
// before the steepest theta decay.
func timingScore(dte int) float64 {
	switch {
	case dte >= 21 && dte <= 45:
		return 2
	case dte >= 14 && dte <= 60:
		return 1
	default:
		return 0.5
	}
}

// trendScore: alignment scores highest; a neutral trend gives a partial
// score to both sides.
func trendScore(kind contract.Kind, trend technical.Trend) float64 {
	if trend == technical.Neutral {
		return 1
	}
	aligned := (kind == contract.Call && trend == technical.Bullish) ||
		(kind == contract.Put && trend == technical.Bearish)
	if aligned {
		return 2
	}
	return 0
}

func unusualBonus(score int) float64 {
	switch {
	case score >= 80:
		return 2
	case score >= 60:
		return 1
	case score >= contract.UnusualThreshold:
		return 0.5
	default:
		return 0
	}
}
