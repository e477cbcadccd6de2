package contract

import "math"

// Unusual sub-score point contributions. The table is calibration-sensitive:
// downstream classification expects exactly these weights.
const (
	ptsRatioHigh     = 30 // volume >= 3x open interest
	ptsRatioMed      = 15 // volume >= 1.5x open interest
	ptsVolumeHigh    = 20 // volume >= 1000
	ptsVolumeMed     = 10 // volume >= 500
	ptsNewPosition   = 25 // volume >= open interest with OI > 100
	ptsLargePremium  = 15 // premium notional >= $100k
	ptsSweetSpot     = 10 // abs delta in the directional-bet band
	premiumNotional  = 100_000.0
	sweetSpotDeltaLo = 0.25
	sweetSpotDeltaHi = 0.45
)

// Derive fills the derived fields of a contract from its quote data and the
// underlying price. Pure: same inputs always produce the same contract.
func Derive(c Contract, underlying float64) Contract {
	c.Mid, c.HasMid = midPrice(c)

	switch c.Kind {
	case Call:
		c.Intrinsic = math.Max(0, underlying-c.Strike)
	case Put:
		c.Intrinsic = math.Max(0, c.Strike-underlying)
	}
	if c.HasMid {
		c.Extrinsic = math.Max(0, c.Mid-c.Intrinsic)
	}

	if c.Bid > 0 && c.Ask >= c.Bid {
		c.Spread = c.Ask - c.Bid
	}
	if c.HasMid && c.Mid > 0 {
		c.SpreadPct = c.Spread / c.Mid * 100
	}

	c.Moneyness = c.OTMPct(underlying)
	c.VolumeOIRatio = volumeOIRatio(c.Volume, c.OpenInterest)
	c.UnusualScore = unusualScore(c)
	return c
}

// midPrice resolves a representative tradable price: the provider mark when
// positive, else the bid/ask midpoint, else whichever single side exists.
// ok=false means the contract has no tradable price at all.
func midPrice(c Contract) (mid float64, ok bool) {
	if c.Mark > 0 {
		return c.Mark, true
	}
	if c.Bid > 0 && c.Ask > 0 && c.Ask >= c.Bid {
		return (c.Bid + c.Ask) / 2, true
	}
	if c.Ask > 0 {
		return c.Ask, true
	}
	if c.Bid > 0 {
		return c.Bid, true
	}
	if c.Last > 0 {
		return c.Last, true
	}
	return 0, false
}

func volumeOIRatio(volume, oi int64) float64 {
	if oi <= 0 {
		if volume > 0 {
			return VolumeOIRatioCap
		}
		return 0
	}
	return float64(volume) / float64(oi)
}

// unusualScore accumulates fixed point contributions for activity signals.
// Monotone in each input; capped at 100 by construction (30+20+25+15+10).
func unusualScore(c Contract) int {
	score := 0

	switch {
	case c.VolumeOIRatio >= 3:
		score += ptsRatioHigh
	case c.VolumeOIRatio >= 1.5:
		score += ptsRatioMed
	}

	switch {
	case c.Volume >= 1000:
		score += ptsVolumeHigh
	case c.Volume >= 500:
		score += ptsVolumeMed
	}

	if c.Volume >= c.OpenInterest && c.OpenInterest > 100 {
		score += ptsNewPosition
	}

	if c.Premium() >= premiumNotional {
		score += ptsLargePremium
	}

	if d := math.Abs(c.Delta); d >= sweetSpotDeltaLo && d <= sweetSpotDeltaHi {
		score += ptsSweetSpot
	}

	return score
}
