package contract

import (
	"time"
)

// Kind identifies the option side
type Kind string

const (
	Call Kind = "CALL"
	Put  Kind = "PUT"
)

// String returns string representation
func (k Kind) String() string {
	return string(k)
}

// Valid checks if the kind is known
func (k Kind) Valid() bool {
	return k == Call || k == Put
}

// VolumeOIRatioCap is the sentinel volume/open-interest ratio reported when
// open interest is zero but volume is positive. A finite stand-in for
// "all of today's volume is new", kept out of the scoring math's way.
const VolumeOIRatioCap = 999.0

// UnusualThreshold is the unusual sub-score at and above which a contract is
// flagged for activity classification.
const UnusualThreshold = 50

// Contract is the strict internal representation of one option contract,
// constructed fresh per request from a provider snapshot and immutable after
// construction. Prices are dollars, IV is a fraction (not a percentage).
type Contract struct {
	Symbol     string
	Kind       Kind
	Strike     float64
	Expiration time.Time
	DTE        int

	Bid  float64
	Ask  float64
	Last float64
	Mark float64

	Volume       int64
	OpenInterest int64
	Multiplier   float64

	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	IV    float64

	ITM bool

	// Derived fields, filled by Derive
	Mid           float64
	HasMid        bool
	Moneyness     float64 // OTM distance, percent of the underlying
	Intrinsic     float64
	Extrinsic     float64
	Spread        float64
	SpreadPct     float64
	VolumeOIRatio float64
	UnusualScore  int
}

// IsUnusual reports whether the contract's activity sub-score crosses the
// unusual threshold.
func (c Contract) IsUnusual() bool {
	return c.UnusualScore >= UnusualThreshold
}

// OTMPct returns how far out of the money the strike sits, as a percentage of
// the underlying price. Zero for in-the-money contracts.
func (c Contract) OTMPct(underlying float64) float64 {
	if underlying <= 0 {
		return 0
	}
	var dist float64
	switch c.Kind {
	case Call:
		dist = c.Strike - underlying
	case Put:
		dist = underlying - c.Strike
	}
	if dist <= 0 {
		return 0
	}
	return dist / underlying * 100
}

// Premium returns the notional premium traded today (mid x volume x multiplier),
// or zero when no tradable price exists.
func (c Contract) Premium() float64 {
	if !c.HasMid {
		return 0
	}
	mult := c.Multiplier
	if mult <= 0 {
		mult = 100
	}
	return c.Mid * float64(c.Volume) * mult
}
