package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vega/internal/domain/contract"
	"vega/internal/domain/scoring"
	"vega/internal/domain/technical"
	"vega/internal/domain/volatility"
)

func liquidCall(dte int) contract.Contract {
	return contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 100, DTE: dte,
		Bid: 2.94, Ask: 3.00, Delta: 0.50, IV: 0.25,
		Volume: 600, OpenInterest: 1500,
	}, 100)
}

func TestEligible_GateRejections(t *testing.T) {
	cfg := scoring.DefaultConfig()

	tests := []struct {
		name string
		c    contract.Contract
		why  scoring.Rejection
	}{
		{"too short dated", liquidCall(3), scoring.RejectDTE},
		{"too long dated", liquidCall(120), scoring.RejectDTE},
		{
			"no tradable price",
			contract.Derive(contract.Contract{Kind: contract.Call, Strike: 100, DTE: 30, Volume: 600, OpenInterest: 1500}, 100),
			scoring.RejectNoPrice,
		},
		{
			"spread too wide",
			contract.Derive(contract.Contract{Kind: contract.Call, Strike: 100, DTE: 30, Bid: 1.00, Ask: 2.00, Volume: 600, OpenInterest: 1500}, 100),
			scoring.RejectLiquidity,
		},
		{
			"illiquid on both volume and open interest",
			contract.Derive(contract.Contract{Kind: contract.Call, Strike: 100, DTE: 30, Bid: 2.94, Ask: 3.00, Volume: 10, OpenInterest: 20}, 100),
			scoring.RejectLiquidity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, why := cfg.Eligible(tt.c)
			assert.False(t, ok)
			assert.Equal(t, tt.why, why)
		})
	}

	ok, _ := cfg.Eligible(liquidCall(30))
	assert.True(t, ok)
}

func TestEligible_DeltaBand(t *testing.T) {
	cfg := scoring.DefaultConfig()

	deep := liquidCall(30)
	deep.Delta = 0.90
	ok, why := cfg.Eligible(deep)
	assert.False(t, ok)
	assert.Equal(t, scoring.RejectDelta, why)

	lottery := liquidCall(30)
	lottery.Delta = 0.10
	ok, why = cfg.Eligible(lottery)
	assert.False(t, ok)
	assert.Equal(t, scoring.RejectDelta, why)

	// A feed that omits delta is not gated on it.
	missing := liquidCall(30)
	missing.Delta = 0
	ok, _ = cfg.Eligible(missing)
	assert.True(t, ok)
}

func TestScore_MissingDeltaFallsBackToMoneyness(t *testing.T) {
	tech := technical.Context{Trend: technical.Neutral}
	iv := volatility.Analysis{ATMIV: 0.40}

	noDelta := func(strike float64) contract.Contract {
		return contract.Derive(contract.Contract{
			Kind: contract.Call, Strike: strike, DTE: 30,
			Bid: 2.94, Ask: 3.00, IV: 0.25,
			Volume: 600, OpenInterest: 1500,
		}, 100)
	}

	assert.InDelta(t, 2.0, scoring.Score(noDelta(104), tech, iv).Delta, 1e-9)
	assert.InDelta(t, 1.0, scoring.Score(noDelta(110), tech, iv).Delta, 1e-9)
	assert.Zero(t, scoring.Score(noDelta(118), tech, iv).Delta)
}

func TestScore_PerfectContractScoresTen(t *testing.T) {
	// Sweet-spot delta, IV below ATM average, tight spread with depth,
	// preferred DTE window, trend aligned. No unusual activity.
	c := liquidCall(30)
	tech := technical.Context{Trend: technical.Bullish}
	iv := volatility.Analysis{ATMIV: 0.40}

	b := scoring.Score(c, tech, iv)
	assert.InDelta(t, 2.0, b.Delta, 1e-9)
	assert.InDelta(t, 2.0, b.IV, 1e-9)
	assert.InDelta(t, 2.0, b.Liquidity, 1e-9)
	assert.InDelta(t, 2.0, b.Timing, 1e-9)
	assert.InDelta(t, 2.0, b.Trend, 1e-9)
	assert.Zero(t, b.Unusual)
	assert.InDelta(t, 10.0, b.Total, 1e-9)
}

func TestScore_Deterministic(t *testing.T) {
	c := liquidCall(30)
	tech := technical.Context{Trend: technical.Neutral}
	iv := volatility.Analysis{ATMIV: 0.30}

	first := scoring.Score(c, tech, iv)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, scoring.Score(c, tech, iv))
	}
}

func TestScore_ContraTrendScoresZeroTrend(t *testing.T) {
	b := scoring.Score(liquidCall(30), technical.Context{Trend: technical.Bearish}, volatility.Analysis{ATMIV: 0.40})
	assert.Zero(t, b.Trend)
}

func TestRank_BearishTrendSuppressesCalls(t *testing.T) {
	call := liquidCall(30)
	put := contract.Derive(contract.Contract{
		Kind: contract.Put, Strike: 100, DTE: 30,
		Bid: 2.94, Ask: 3.00, Delta: -0.50, IV: 0.25,
		Volume: 600, OpenInterest: 1500,
	}, 100)

	bestCall, bestPut, _ := scoring.Rank(
		[]contract.Contract{call, put},
		technical.Context{Trend: technical.Bearish},
		volatility.Analysis{ATMIV: 0.40},
		scoring.DefaultConfig(),
	)
	assert.Nil(t, bestCall)
	require.NotNil(t, bestPut)
	assert.Equal(t, put.Symbol, bestPut.Contract.Symbol)
}

func TestRank_TieKeepsEarlierContract(t *testing.T) {
	first := liquidCall(30)
	first.Symbol = "FIRST"
	second := liquidCall(30)
	second.Symbol = "SECOND"

	bestCall, _, _ := scoring.Rank(
		[]contract.Contract{first, second},
		technical.Context{Trend: technical.Bullish},
		volatility.Analysis{ATMIV: 0.40},
		scoring.DefaultConfig(),
	)
	require.NotNil(t, bestCall)
	assert.Equal(t, "FIRST", bestCall.Contract.Symbol)
}

func TestRank_CollectsRejections(t *testing.T) {
	_, _, rejections := scoring.Rank(
		[]contract.Contract{liquidCall(3), liquidCall(3)},
		technical.Context{Trend: technical.Neutral},
		volatility.Analysis{ATMIV: 0.30},
		scoring.DefaultConfig(),
	)
	assert.Equal(t, 2, rejections[scoring.RejectDTE])
}
