package marketdata

import (
	"time"

	"vega/internal/domain/contract"
)

// Quote is the underlying quote from the market data provider
type Quote struct {
	Symbol      string  `json:"symbol"`
	Last        float64 `json:"last"`
	Mark        float64 `json:"mark"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	TotalVolume int64   `json:"totalVolume"`
}

// Price returns the best available underlying price
func (q Quote) Price() float64 {
	if q.Last > 0 {
		return q.Last
	}
	if q.Mark > 0 {
		return q.Mark
	}
	if q.Bid > 0 {
		return q.Bid
	}
	return 0
}

// Ratings is the analyst buy/hold/sell tally, best-effort
type Ratings struct {
	Buy  int `json:"buy"`
	Hold int `json:"hold"`
	Sell int `json:"sell"`
}

// Snapshot is one symbol's fetched market data, joined before the analysis
// pipeline runs. Quote and Chain are essential; everything else degrades to
// zero values when its feed fails.
type Snapshot struct {
	Symbol string
	Quote  Quote
	Chain  contract.ChainSnapshot

	Closes         []float64 // daily closes, most recent last
	Earnings       *time.Time
	Headlines      []string
	SentimentScore float64 // -1..1, naive headline score
	Ratings        *Ratings
}

// DaysToEarnings returns calendar days until the next earnings event, or -1
// when unknown or already past.
func (s *Snapshot) DaysToEarnings(now time.Time) int {
	if s.Earnings == nil {
		return -1
	}
	days := int(s.Earnings.Sub(now).Hours() / 24)
	if days < 0 {
		return -1
	}
	return days
}
