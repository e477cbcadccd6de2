package contract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/internal/domain/contract"
)

func TestDerive_MidPriceFallbackChain(t *testing.T) {
	tests := []struct {
		name    string
		c       contract.Contract
		wantMid float64
		wantOK  bool
	}{
		{
			name:    "mark wins when positive",
			c:       contract.Contract{Mark: 2.50, Bid: 2.00, Ask: 3.00, Last: 2.10},
			wantMid: 2.50,
			wantOK:  true,
		},
		{
			name:    "bid ask midpoint when mark missing",
			c:       contract.Contract{Bid: 2.00, Ask: 3.00, Last: 2.10},
			wantMid: 2.50,
			wantOK:  true,
		},
		{
			name:    "single ask side",
			c:       contract.Contract{Ask: 1.20},
			wantMid: 1.20,
			wantOK:  true,
		},
		{
			name:    "single bid side",
			c:       contract.Contract{Bid: 0.80},
			wantMid: 0.80,
			wantOK:  true,
		},
		{
			name:    "last as final fallback",
			c:       contract.Contract{Last: 1.75},
			wantMid: 1.75,
			wantOK:  true,
		},
		{
			name:   "no price at all",
			c:      contract.Contract{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := contract.Derive(tt.c, 100)
			assert.Equal(t, tt.wantOK, got.HasMid)
			if tt.wantOK {
				assert.InDelta(t, tt.wantMid, got.Mid, 1e-9)
			}
		})
	}
}

func TestDerive_IntrinsicExtrinsic(t *testing.T) {
	call := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 90, Mark: 12.00,
	}, 100)
	assert.InDelta(t, 10.0, call.Intrinsic, 1e-9)
	assert.InDelta(t, 2.0, call.Extrinsic, 1e-9)

	put := contract.Derive(contract.Contract{
		Kind: contract.Put, Strike: 110, Mark: 11.50,
	}, 100)
	assert.InDelta(t, 10.0, put.Intrinsic, 1e-9)
	assert.InDelta(t, 1.5, put.Extrinsic, 1e-9)

	// OTM call has no intrinsic; all premium is extrinsic.
	otm := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 120, Mark: 0.90,
	}, 100)
	assert.Zero(t, otm.Intrinsic)
	assert.InDelta(t, 0.90, otm.Extrinsic, 1e-9)
}

func TestDerive_SpreadPct(t *testing.T) {
	c := contract.Derive(contract.Contract{Bid: 1.90, Ask: 2.10}, 100)
	require.True(t, c.HasMid)
	assert.InDelta(t, 2.00, c.Mid, 1e-9)
	assert.InDelta(t, 0.20, c.Spread, 1e-9)
	assert.InDelta(t, 10.0, c.SpreadPct, 1e-9)
}

func TestDerive_VolumeOIRatioCap(t *testing.T) {
	c := contract.Derive(contract.Contract{Volume: 500, OpenInterest: 0}, 100)
	assert.Equal(t, contract.VolumeOIRatioCap, c.VolumeOIRatio)

	quiet := contract.Derive(contract.Contract{Volume: 0, OpenInterest: 0}, 100)
	assert.Zero(t, quiet.VolumeOIRatio)

	normal := contract.Derive(contract.Contract{Volume: 300, OpenInterest: 200}, 100)
	assert.InDelta(t, 1.5, normal.VolumeOIRatio, 1e-9)
}

func TestDerive_UnusualScoreMaxedOut(t *testing.T) {
	// 3x ratio (+30), volume >= 1000 (+20), volume >= OI with OI > 100 (+25),
	// premium 0.50 * 3000 * 100 = $150k (+15), delta in band (+10) = 100.
	c := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 120, Mark: 0.50,
		Volume: 3000, OpenInterest: 1000, Delta: 0.30,
	}, 100)
	assert.Equal(t, 100, c.UnusualScore)
	assert.True(t, c.IsUnusual())
}

func TestDerive_QuietContractScoresZero(t *testing.T) {
	c := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 105, Mark: 1.00,
		Volume: 10, OpenInterest: 5000, Delta: 0.60,
	}, 100)
	assert.Zero(t, c.UnusualScore)
	assert.False(t, c.IsUnusual())
}

func TestOTMPct(t *testing.T) {
	call := contract.Contract{Kind: contract.Call, Strike: 125}
	assert.InDelta(t, 25.0, call.OTMPct(100), 1e-9)

	itmCall := contract.Contract{Kind: contract.Call, Strike: 90}
	assert.Zero(t, itmCall.OTMPct(100))

	put := contract.Contract{Kind: contract.Put, Strike: 80}
	assert.InDelta(t, 20.0, put.OTMPct(100), 1e-9)

	assert.Zero(t, call.OTMPct(0))
}

func TestPremium(t *testing.T) {
	c := contract.Derive(contract.Contract{Mark: 2.00, Volume: 500, Multiplier: 100}, 100)
	assert.InDelta(t, 100_000, c.Premium(), 1e-9)

	// Default multiplier applies when the provider omits it.
	noMult := contract.Derive(contract.Contract{Mark: 2.00, Volume: 500}, 100)
	assert.InDelta(t, 100_000, noMult.Premium(), 1e-9)

	unpriced := contract.Contract{Volume: 500}
	assert.Zero(t, unpriced.Premium())
}
