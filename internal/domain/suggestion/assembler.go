package suggestion

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"vega/internal/domain/confidence"
	"vega/internal/domain/contract"
	"vega/internal/domain/scoring"
	"vega/internal/domain/technical"
	"vega/internal/domain/volatility"
)

// Snapshot is everything the assembler needs for one underlying, already
// normalized and analyzed. Assembly over an unchanged snapshot is idempotent.
type Snapshot struct {
	Ticker     string
	Underlying float64
	Contracts  []contract.Contract
	Technical  technical.Context
	IV         volatility.Analysis
	Scoring    scoring.Config
}

// Assemble orchestrates scoring into an ordered suggestion list: at most one
// CALL and one PUT (best of eligible each), plus contextual alerts. When no
// CALL/PUT survives gating a single NO_TRADE suggestion carries the rejection
// reasons — an empty list is never emitted silently, because "no actionable
// trade" must be distinguishable from "the engine failed".
func Assemble(snap Snapshot) []Suggestion {
	bestCall, bestPut, rejections := scoring.Rank(snap.Contracts, snap.Technical, snap.IV, snap.Scoring)

	var out []Suggestion
	if bestCall != nil {
		out = append(out, buildTrade(KindCall, *bestCall, snap))
	}
	if bestPut != nil {
		out = append(out, buildTrade(KindPut, *bestPut, snap))
	}
	if bestCall == nil && bestPut == nil {
		out = append(out, buildNoTrade(snap, rejections))
	}

	out = append(out, buildAlerts(snap)...)
	return out
}

func buildTrade(kind Kind, s scoring.Scored, snap Snapshot) Suggestion {
	c := s.Contract
	aligned := (c.Kind == contract.Call && snap.Technical.Trend == technical.Bullish) ||
		(c.Kind == contract.Put && snap.Technical.Trend == technical.Bearish)

	conf := confidence.Calibrate(confidence.Input{
		TotalScore:   s.Breakdown.Total,
		Trend:        snap.Technical.Trend,
		TrendAligned: aligned,
		SpreadPct:    c.SpreadPct,
		OpenInterest: c.OpenInterest,
		Volume:       c.Volume,
	})

	breakdown := s.Breakdown
	return Suggestion{
		Kind:               kind,
		Contract:           newRef(c),
		Breakdown:          &breakdown,
		Confidence:         conf.Confidence,
		ConfidenceBucket:   conf.Bucket,
		CalibrationVersion: conf.Version,
		RiskTier:           riskTier(c, snap.Underlying, conf.Confidence),
		Reasons:            tradeReasons(c, breakdown, snap, aligned),
		Warnings:           tradeWarnings(c, snap),
	}
}

func tradeReasons(c contract.Contract, b scoring.Breakdown, snap Snapshot, aligned bool) []string {
	reasons := []string{
		fmt.Sprintf("$%.2f strike expiring in %d days, mid $%.2f", c.Strike, c.DTE, c.Mid),
	}
	if b.Delta >= 2 {
		reasons = append(reasons, fmt.Sprintf("delta %.2f sits in the 0.35-0.65 sweet spot", math.Abs(c.Delta)))
	}
	if b.IV >= 2 {
		reasons = append(reasons, fmt.Sprintf("IV %.0f%% is below the %.0f%% ATM average: premium is cheap", c.IV*100, snap.IV.ATMIV*100))
	}
	if b.Liquidity >= 2 {
		reasons = append(reasons, fmt.Sprintf("tight %.1f%% spread with volume %s and open interest %s",
			c.SpreadPct, humanize.Comma(c.Volume), humanize.Comma(c.OpenInterest)))
	}
	if b.Timing >= 2 {
		reasons = append(reasons, fmt.Sprintf("%d DTE sits in the preferred 21-45 day window", c.DTE))
	}
	if aligned {
		reasons = append(reasons, fmt.Sprintf("trade direction agrees with the %s trend", snap.Technical.Trend))
	}
	if b.Unusual > 0 {
		reasons = append(reasons, fmt.Sprintf("unusual activity score %d adds conviction", c.UnusualScore))
	}
	return reasons
}

func tradeWarnings(c contract.Contract, snap Snapshot) []string {
	var warnings []string
	if c.SpreadPct > 5 {
		warnings = append(warnings, fmt.Sprintf("spread is %.1f%% of mid: expect slippage", c.SpreadPct))
	}
	if c.OpenInterest < 250 {
		warnings = append(warnings, fmt.Sprintf("open interest is only %s: exits may be slow", humanize.Comma(c.OpenInterest)))
	}
	if c.DTE < 14 {
		warnings = append(warnings, fmt.Sprintf("%d DTE: time decay accelerates from here", c.DTE))
	}
	if snap.IV.Recommendation == volatility.SellPremium {
		warnings = append(warnings, fmt.Sprintf("IV rank proxy %.0f: buying premium in a rich-vol environment", snap.IV.RankProxy))
	}
	if snap.Technical.Trend == technical.Neutral {
		warnings = append(warnings, "trend is neutral: directional edge is limited")
	}
	return warnings
}

// buildNoTrade constructs the explicit no-trade fallback with the gate
// rejection causes and an expected-move figure for context.
func buildNoTrade(snap Snapshot, rejections map[scoring.Rejection]int) Suggestion {
	reasons := []string{"no contract passed the eligibility gate"}

	// Fixed emission order keeps the output deterministic.
	for _, rej := range []scoring.Rejection{scoring.RejectLiquidity, scoring.RejectDTE, scoring.RejectNoPrice} {
		if n := rejections[rej]; n > 0 {
			reasons = append(reasons, fmt.Sprintf("%d contracts %s", n, rej))
		}
	}
	if len(snap.Contracts) == 0 {
		reasons = append(reasons, "no contracts inside the moneyness window")
	}
	switch snap.Technical.Trend {
	case technical.Neutral:
		reasons = append(reasons, "neutral trend offers no directional edge")
	case technical.Bearish:
		reasons = append(reasons, "bearish trend suppresses call candidates")
	}

	dte := nearestDTE(snap.Contracts)
	move := snap.IV.ATMIV * math.Sqrt(float64(dte)/365) * 100
	reasons = append(reasons, fmt.Sprintf("expected move over %d days is %.1f%% at current IV", dte, move))

	return Suggestion{Kind: KindNoTrade, Reasons: reasons}
}

func nearestDTE(contracts []contract.Contract) int {
	for _, c := range contracts {
		if c.DTE > 0 {
			return c.DTE // contracts arrive sorted by DTE
		}
	}
	return 30
}

func buildAlerts(snap Snapshot) []Suggestion {
	var alerts []Suggestion

	if top, ok := topUnusual(snap.Contracts); ok {
		alerts = append(alerts, Suggestion{
			Kind:     KindAlert,
			Contract: newRef(top),
			Reasons: []string{
				fmt.Sprintf("unusual activity score %d on the $%.2f %s expiring in %d days", top.UnusualScore, top.Strike, top.Kind, top.DTE),
				fmt.Sprintf("volume %s against open interest %s", humanize.Comma(top.Volume), humanize.Comma(top.OpenInterest)),
			},
		})
	}

	if snap.IV.Extreme() {
		alerts = append(alerts, Suggestion{
			Kind: KindAlert,
			Reasons: []string{
				fmt.Sprintf("IV environment is %s (rank proxy %.0f)", snap.IV.Signal, snap.IV.RankProxy),
				fmt.Sprintf("premium stance: %s", snap.IV.Recommendation),
			},
		})
	}

	if snap.Technical.RSIExtreme() {
		state := "oversold"
		if snap.Technical.RSI >= 70 {
			state = "overbought"
		}
		alerts = append(alerts, Suggestion{
			Kind:    KindAlert,
			Reasons: []string{fmt.Sprintf("RSI %.0f is %s", snap.Technical.RSI, state)},
		})
	}

	return alerts
}

// topUnusual returns the highest-scoring unusual contract, first-listed on
// ties for determinism.
func topUnusual(contracts []contract.Contract) (contract.Contract, bool) {
	var best contract.Contract
	found := false
	for _, c := range contracts {
		if !c.IsUnusual() {
			continue
		}
		if !found || c.UnusualScore > best.UnusualScore {
			best = c
			found = true
		}
	}
	return best, found
}

func riskTier(c contract.Contract, underlying float64, conf int) RiskTier {
	if c.DTE < 14 || c.OTMPct(underlying) >= 15 || conf < 60 {
		return RiskHigh
	}
	if conf >= 75 && c.ITM && c.SpreadPct <= 3 {
		return RiskLow
	}
	return RiskModerate
}
