package contract

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// NormalizeOptions controls the moneyness window and the DTE reference time.
type NormalizeOptions struct {
	// BandPct keeps strikes within +/- this fraction of the underlying price.
	// Tighten for near-term views, widen for full-chain views.
	BandPct float64

	// Now anchors days-to-expiration. Zero value means time.Now().
	Now time.Time
}

// DefaultBandPct is the moneyness window used when none is configured.
const DefaultBandPct = 0.20

// Normalize converts a provider chain snapshot into a flat, sorted slice of
// Contract entities. Fails soft: an empty or malformed snapshot yields an
// empty slice, never an error — callers must treat "no contracts" as
// legitimate data.
func Normalize(snap ChainSnapshot, opts NormalizeOptions) []Contract {
	underlying := snap.UnderlyingPrice
	if underlying <= 0 {
		return nil
	}
	band := opts.BandPct
	if band <= 0 {
		band = DefaultBandPct
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	lo := underlying * (1 - band)
	hi := underlying * (1 + band)

	contracts := make([]Contract, 0, 64)
	contracts = appendSide(contracts, snap.Calls, Call, underlying, lo, hi, now)
	contracts = appendSide(contracts, snap.Puts, Put, underlying, lo, hi, now)

	sort.SliceStable(contracts, func(i, j int) bool {
		if contracts[i].DTE != contracts[j].DTE {
			return contracts[i].DTE < contracts[j].DTE
		}
		return contracts[i].Strike < contracts[j].Strike
	})

	return contracts
}

func appendSide(dst []Contract, side ExpDateMap, kind Kind, underlying, lo, hi float64, now time.Time) []Contract {
	for expKey, strikes := range side {
		expiration, ok := parseExpirationKey(expKey)
		if !ok {
			continue
		}
		dte := daysUntil(now, expiration)

		for strikeKey, cells := range strikes {
			strike, err := strconv.ParseFloat(strikeKey, 64)
			if err != nil || strike <= 0 {
				continue
			}
			if strike < lo || strike > hi {
				continue
			}
			if len(cells) == 0 {
				continue
			}
			// Front entry is the live quote by provider convention.
			raw := cells[0]

			c := Contract{
				Symbol:       raw.Symbol,
				Kind:         kind,
				Strike:       strike,
				Expiration:   expiration,
				DTE:          dte,
				Bid:          nonNegative(raw.Bid),
				Ask:          nonNegative(raw.Ask),
				Last:         nonNegative(raw.Last),
				Mark:         nonNegative(raw.Mark),
				Volume:       maxInt64(0, raw.TotalVolume),
				OpenInterest: maxInt64(0, raw.OpenInterest),
				Multiplier:   raw.Multiplier,
				Delta:        raw.Delta,
				Gamma:        raw.Gamma,
				Theta:        raw.Theta,
				Vega:         raw.Vega,
				IV:           nonNegative(raw.Volatility) / 100,
				ITM:          isITM(kind, strike, underlying),
			}
			dst = append(dst, Derive(c, underlying))
		}
	}
	return dst
}

// parseExpirationKey handles both "2025-09-19:22" and bare "2025-09-19" keys.
func parseExpirationKey(key string) (time.Time, bool) {
	datePart := key
	if idx := strings.IndexByte(key, ':'); idx >= 0 {
		datePart = key[:idx]
	}
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// daysUntil computes calendar days between now and the expiration date,
// floored at zero so stale snapshots never yield a negative DTE.
func daysUntil(now, expiration time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expDay := time.Date(expiration.Year(), expiration.Month(), expiration.Day(), 0, 0, 0, 0, time.UTC)
	days := int(expDay.Sub(nowDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func isITM(kind Kind, strike, underlying float64) bool {
	switch kind {
	case Call:
		return underlying > strike
	case Put:
		return underlying < strike
	}
	return false
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
