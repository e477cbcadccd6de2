package classify

import (
	"fmt"

	"vega/internal/domain/contract"
	"vega/internal/domain/technical"
)

// Label is the directional-bet vs hedge verdict for an unusual contract
type Label string

const (
	Directional Label = "DIRECTIONAL"
	LikelyHedge Label = "LIKELY_HEDGE"
	Uncertain   Label = "UNCERTAIN"
)

// InsiderTier buckets the insider-probability accumulator
type InsiderTier string

const (
	InsiderHigh     InsiderTier = "HIGH"
	InsiderMedium   InsiderTier = "MEDIUM"
	InsiderLow      InsiderTier = "LOW"
	InsiderUnlikely InsiderTier = "UNLIKELY"
)

// Config carries the classification margins. The asymmetry (directional
// needs a wider lead than hedge) deliberately biases mixed evidence toward
// UNCERTAIN. Observed heuristics, tunable, not principled derivations.
type Config struct {
	DirectionalMargin int
	HedgeMargin       int
}

// DefaultConfig returns the observed margins
func DefaultConfig() Config {
	return Config{DirectionalMargin: 3, HedgeMargin: 2}
}

// Input is one unusual contract with its market context
type Input struct {
	Contract   contract.Contract
	Underlying float64
	Trend      technical.Trend

	// DaysToEarnings is calendar days until the next earnings event,
	// negative when unknown.
	DaysToEarnings int
}

// Result is the classification outcome with its full audit trail
type Result struct {
	Label            Label
	DirectionalScore int
	HedgeScore       int
	InsiderScore     int
	InsiderTier      InsiderTier
	Reasons          []string
}

// Classify labels an unusual contract as a directional bet or a likely hedge,
// and estimates an insider-probability tier.
//
// This is NOT a statistical model: it is a documented, auditable
// point-scoring rubric. The factor list and weights are calibration-sensitive
// and must not be changed casually.
func Classify(in Input, cfg Config) Result {
	c := in.Contract
	r := Result{}

	aligned := (c.Kind == contract.Call && in.Trend == technical.Bullish) ||
		(c.Kind == contract.Put && in.Trend == technical.Bearish)
	contra := (c.Kind == contract.Call && in.Trend == technical.Bearish) ||
		(c.Kind == contract.Put && in.Trend == technical.Bullish)

	otm := c.OTMPct(in.Underlying)
	aboveMid := c.HasMid && c.Last > c.Mid
	ratio := c.VolumeOIRatio

	// Directional factors: urgency, leverage, conviction.
	switch {
	case c.DTE <= 14:
		r.addDirectional(3, fmt.Sprintf("short-dated (%d DTE) leaves no time to be wrong", c.DTE))
	case c.DTE <= 30:
		r.addDirectional(1, fmt.Sprintf("near-dated (%d DTE)", c.DTE))
	}
	switch {
	case otm >= 20:
		r.addDirectional(2, fmt.Sprintf("deep OTM strike (%.0f%% out) is a leveraged bet", otm))
	case otm >= 10:
		r.addDirectional(1, fmt.Sprintf("OTM strike (%.0f%% out)", otm))
	}
	if aligned {
		r.addDirectional(2, "direction agrees with the prevailing trend")
	}
	if aboveMid {
		r.addDirectional(2, "filled above mid: buyer paid up for immediacy")
	}
	switch {
	case ratio >= 3:
		r.addDirectional(2, fmt.Sprintf("volume %.1fx open interest: fresh positioning", ratio))
	case c.OpenInterest > 0 && c.Volume >= c.OpenInterest:
		r.addDirectional(1, "volume exceeds open interest")
	}
	if in.DaysToEarnings >= 0 && in.DaysToEarnings <= 14 {
		r.addDirectional(2, fmt.Sprintf("earnings in %d days", in.DaysToEarnings))
	}

	// Hedge factors: patience, protection, passivity.
	if contra {
		r.addHedge(2, "direction contradicts the prevailing trend: protective profile")
	}
	switch {
	case c.DTE >= 60:
		r.addHedge(3, fmt.Sprintf("long-dated (%d DTE): portfolio insurance horizon", c.DTE))
	case c.DTE >= 45:
		r.addHedge(1, fmt.Sprintf("medium-dated (%d DTE)", c.DTE))
	}
	if c.OpenInterest > 0 && float64(c.Volume) <= 0.5*float64(c.OpenInterest) {
		r.addHedge(1, "volume well below open interest: no aggressive new position")
	}
	if c.HasMid && c.Last > 0 && c.Last <= c.Mid {
		r.addHedge(1, "filled at or below mid: passive execution")
	}

	r.Label = label(r.DirectionalScore, r.HedgeScore, cfg)

	// Insider-probability accumulator: separate weights, overlapping factors.
	if aboveMid {
		r.InsiderScore += 2
	}
	switch {
	case ratio >= 5:
		r.InsiderScore += 3
	case ratio >= 3:
		r.InsiderScore += 2
	}
	switch {
	case c.DTE <= 7:
		r.InsiderScore += 2
	case c.DTE <= 14:
		r.InsiderScore++
	}
	if otm >= 15 {
		r.InsiderScore += 2
	}
	switch {
	case in.DaysToEarnings >= 0 && in.DaysToEarnings <= 7:
		r.InsiderScore += 3
	case in.DaysToEarnings >= 0 && in.DaysToEarnings <= 14:
		r.InsiderScore++
	}
	if c.Premium() >= 250_000 {
		r.InsiderScore += 2
	}
	r.InsiderTier = insiderTier(r.InsiderScore)

	return r
}

func label(directional, hedge int, cfg Config) Label {
	if directional-hedge >= cfg.DirectionalMargin {
		return Directional
	}
	if hedge-directional >= cfg.HedgeMargin {
		return LikelyHedge
	}
	return Uncertain
}

func insiderTier(score int) InsiderTier {
	switch {
	case score >= 10:
		return InsiderHigh
	case score >= 7:
		return InsiderMedium
	case score >= 4:
		return InsiderLow
	default:
		return InsiderUnlikely
	}
}

func (r *Result) addDirectional(points int, reason string) {
	r.DirectionalScore += points
	r.Reasons = append(r.Reasons, reason)
}

func (r *Result) addHedge(points int, reason string) {
	r.HedgeScore += points
	r.Reasons = append(r.Reasons, reason)
}
