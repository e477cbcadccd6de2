package contract_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/internal/domain/contract"
)

var normalizeNow = time.Date(2025, 8, 1, 15, 30, 0, 0, time.UTC)

func chainFixture() contract.ChainSnapshot {
	return contract.ChainSnapshot{
		Symbol:          "ACME",
		UnderlyingPrice: 100,
		Calls: contract.ExpDateMap{
			"2025-08-29:28": {
				"105.0": {{Symbol: "ACME_082925C105", Bid: 1.90, Ask: 2.10, Volatility: 35, TotalVolume: 400, OpenInterest: 900, Delta: 0.40}},
				"150.0": {{Symbol: "ACME_082925C150", Bid: 0.05, Ask: 0.10}}, // outside band
			},
			"2025-08-15:14": {
				"100.0": {{Symbol: "ACME_081525C100", Mark: 3.20, Volatility: 40, Delta: 0.52}},
			},
			"not-a-date": {
				"100.0": {{Symbol: "BOGUS"}},
			},
		},
		Puts: contract.ExpDateMap{
			"2025-08-29:28": {
				"95.0":  {{Symbol: "ACME_082925P95", Bid: 1.10, Ask: 1.30, Volatility: 38, Delta: -0.35}},
				"junk":  {{Symbol: "BADSTRIKE"}},
				"90.0":  {},
			},
		},
	}
}

func TestNormalize_FlattensAndSorts(t *testing.T) {
	contracts := contract.Normalize(chainFixture(), contract.NormalizeOptions{Now: normalizeNow})
	require.Len(t, contracts, 3)

	// Sorted by DTE ascending, then strike ascending.
	assert.Equal(t, "ACME_081525C100", contracts[0].Symbol)
	assert.Equal(t, 14, contracts[0].DTE)
	assert.Equal(t, "ACME_082925P95", contracts[1].Symbol)
	assert.Equal(t, "ACME_082925C105", contracts[2].Symbol)
	assert.Equal(t, 28, contracts[2].DTE)
}

func TestNormalize_ConvertsIVToFraction(t *testing.T) {
	contracts := contract.Normalize(chainFixture(), contract.NormalizeOptions{Now: normalizeNow})
	require.Len(t, contracts, 3)
	assert.InDelta(t, 0.40, contracts[0].IV, 1e-9)
	assert.InDelta(t, 0.38, contracts[1].IV, 1e-9)
}

func TestNormalize_MoneynessWindow(t *testing.T) {
	contracts := contract.Normalize(chainFixture(), contract.NormalizeOptions{Now: normalizeNow})
	for _, c := range contracts {
		assert.GreaterOrEqual(t, c.Strike, 80.0)
		assert.LessOrEqual(t, c.Strike, 120.0)
	}

	// A wider band admits the far-out strike.
	wide := contract.Normalize(chainFixture(), contract.NormalizeOptions{Now: normalizeNow, BandPct: 0.60})
	assert.Len(t, wide, 4)
}

func TestNormalize_DerivesFields(t *testing.T) {
	contracts := contract.Normalize(chainFixture(), contract.NormalizeOptions{Now: normalizeNow})
	require.Len(t, contracts, 3)

	atm := contracts[0]
	assert.True(t, atm.HasMid)
	assert.InDelta(t, 3.20, atm.Mid, 1e-9)
	assert.False(t, atm.ITM) // strike 100 at underlying 100 is not ITM
}

func TestNormalize_NoUnderlyingYieldsNil(t *testing.T) {
	snap := chainFixture()
	snap.UnderlyingPrice = 0
	assert.Nil(t, contract.Normalize(snap, contract.NormalizeOptions{Now: normalizeNow}))
}

func TestNormalize_EmptySnapshotYieldsEmpty(t *testing.T) {
	contracts := contract.Normalize(contract.ChainSnapshot{UnderlyingPrice: 100}, contract.NormalizeOptions{Now: normalizeNow})
	assert.Empty(t, contracts)
}

func TestNormalize_StaleExpirationFloorsAtZeroDTE(t *testing.T) {
	snap := contract.ChainSnapshot{
		UnderlyingPrice: 100,
		Calls: contract.ExpDateMap{
			"2025-07-18:0": {
				"100.0": {{Symbol: "STALE", Mark: 1.00}},
			},
		},
	}
	contracts := contract.Normalize(snap, contract.NormalizeOptions{Now: normalizeNow})
	require.Len(t, contracts, 1)
	assert.Equal(t, 0, contracts[0].DTE)
}

func TestNormalize_BareDateKeyAccepted(t *testing.T) {
	snap := contract.ChainSnapshot{
		UnderlyingPrice: 100,
		Puts: contract.ExpDateMap{
			"2025-09-19": {
				"100.0": {{Symbol: "BARE", Mark: 2.00}},
			},
		},
	}
	contracts := contract.Normalize(snap, contract.NormalizeOptions{Now: normalizeNow})
	require.Len(t, contracts, 1)
	assert.Equal(t, 49, contracts[0].DTE)
}
