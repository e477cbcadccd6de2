package confidence

import (
	"vega/internal/domain/technical"
)

// Version tags every emitted confidence with the calibration table that
// produced it, so historical suggestions can be matched back to their rubric
// after the table changes.
const Version = "2025.08-r1"

// Bucket groups confidence values for calibration feedback
type Bucket string

const (
	BucketHigh Bucket = "HIGH"
	BucketMed  Bucket = "MED"
	BucketLow  Bucket = "LOW"
	BucketNA   Bucket = "N/A"
)

// Bounds of every emitted confidence. The engine never expresses total
// dismissal (0%) or false certainty (100%).
const (
	Floor   = 5
	Ceiling = 95
)

// Input feeds the calibrator: the raw score plus tradability context.
type Input struct {
	TotalScore   float64
	Trend        technical.Trend
	TrendAligned bool
	SpreadPct    float64
	OpenInterest int64
	Volume       int64
}

// Result is a bounded, bucketed confidence with its calibration version
type Result struct {
	Confidence int
	Bucket     Bucket
	Version    string
}

// Calibrate maps raw score plus tradability context into a bounded
// confidence percentage. The base table is a deliberately coarse step
// function — continuous formulas would suggest precision the underlying
// heuristics cannot support.
func Calibrate(in Input) Result {
	conf := base(in.TotalScore)

	if in.Trend == technical.Neutral {
		conf -= 10
	}
	if in.TrendAligned {
		conf += 4
	}
	conf += tradability(in.SpreadPct, in.OpenInterest, in.Volume)

	if conf < Floor {
		conf = Floor
	}
	if conf > Ceiling {
		conf = Ceiling
	}

	return Result{Confidence: conf, Bucket: BucketFor(conf), Version: Version}
}

// BucketFor assigns the confidence bucket. Pure and deterministic in the
// numeric value; also applied to persisted confidences during aggregation.
func BucketFor(confidence int) Bucket {
	switch {
	case confidence >= 75:
		return BucketHigh
	case confidence >= 60:
		return BucketMed
	case confidence > 0:
		return BucketLow
	default:
		return BucketNA
	}
}

// base is the five-rung score-to-confidence table.
func base(score float64) int {
	switch {
	case score >= 9:
		return 80
	case score >= 7.5:
		return 72
	case score >= 6:
		return 64
	case score >= 4.5:
		return 55
	default:
		return 45
	}
}

func tradability(spreadPct float64, oi, volume int64) int {
	switch {
	case spreadPct <= 3 && (oi >= 1000 || volume >= 500):
		return 4
	case spreadPct >= 8 || (oi < 100 && volume < 100):
		return -6
	default:
		return 0
	}
}
