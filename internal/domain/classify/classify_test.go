package classify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vega/internal/domain/classify"
	"vega/internal/domain/contract"
	"vega/internal/domain/technical"
)

func TestClassify_ShortDatedOTMSweepIsDirectional(t *testing.T) {
	// 10 DTE call 25% OTM, volume 5x open interest, filled above mid,
	// against a bearish trend. Urgency and leverage dominate.
	c := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 125, DTE: 10,
		Bid: 0.95, Ask: 1.05, Last: 1.08,
		Volume: 500, OpenInterest: 100, Delta: 0.12,
	}, 100)

	r := classify.Classify(classify.Input{
		Contract:       c,
		Underlying:     100,
		Trend:          technical.Bearish,
		DaysToEarnings: -1,
	}, classify.DefaultConfig())

	assert.Equal(t, classify.Directional, r.Label)
	assert.Equal(t, 9, r.DirectionalScore)
	assert.Equal(t, 2, r.HedgeScore)
	assert.Equal(t, classify.InsiderMedium, r.InsiderTier)
	assert.NotEmpty(t, r.Reasons)
}

func TestClassify_LongDatedPassivePutIsHedge(t *testing.T) {
	// 90 DTE protective put against a bullish trend, volume well under open
	// interest, filled below mid.
	c := contract.Derive(contract.Contract{
		Kind: contract.Put, Strike: 80, DTE: 90,
		Bid: 1.95, Ask: 2.05, Last: 1.95,
		Volume: 100, OpenInterest: 1000, Delta: -0.15,
	}, 100)

	r := classify.Classify(classify.Input{
		Contract:       c,
		Underlying:     100,
		Trend:          technical.Bullish,
		DaysToEarnings: -1,
	}, classify.DefaultConfig())

	assert.Equal(t, classify.LikelyHedge, r.Label)
	assert.Equal(t, classify.InsiderUnlikely, r.InsiderTier)
}

func TestClassify_MixedEvidenceIsUncertain(t *testing.T) {
	// Mid-dated, near-the-money, neutral trend: nothing dominates.
	c := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 105, DTE: 35,
		Bid: 2.95, Ask: 3.05, Last: 3.00,
		Volume: 800, OpenInterest: 600, Delta: 0.45,
	}, 100)

	r := classify.Classify(classify.Input{
		Contract:       c,
		Underlying:     100,
		Trend:          technical.Neutral,
		DaysToEarnings: -1,
	}, classify.DefaultConfig())

	assert.Equal(t, classify.Uncertain, r.Label)
}

func TestClassify_EarningsProximityRaisesInsiderTier(t *testing.T) {
	build := func(daysToEarnings int) classify.Result {
		c := contract.Derive(contract.Contract{
			Kind: contract.Call, Strike: 120, DTE: 6,
			Bid: 0.90, Ask: 1.00, Last: 1.05,
			Volume: 2000, OpenInterest: 300, Delta: 0.15, Multiplier: 100,
		}, 100)
		return classify.Classify(classify.Input{
			Contract:       c,
			Underlying:     100,
			Trend:          technical.Bullish,
			DaysToEarnings: daysToEarnings,
		}, classify.DefaultConfig())
	}

	withEarnings := build(5)
	withoutEarnings := build(-1)
	assert.Greater(t, withEarnings.InsiderScore, withoutEarnings.InsiderScore)
	assert.Equal(t, classify.InsiderHigh, withEarnings.InsiderTier)
}

func TestClassify_MarginsRespectConfig(t *testing.T) {
	c := contract.Derive(contract.Contract{
		Kind: contract.Call, Strike: 112, DTE: 25,
		Bid: 1.00, Ask: 1.10, Last: 1.08,
		Volume: 300, OpenInterest: 500, Delta: 0.30,
	}, 100)
	in := classify.Input{Contract: c, Underlying: 100, Trend: technical.Neutral, DaysToEarnings: -1}

	// Directional lead: near-dated +1, OTM 12% +1, above mid +2 = 4 vs hedge 0.
	strict := classify.Classify(in, classify.Config{DirectionalMargin: 5, HedgeMargin: 5})
	assert.Equal(t, classify.Uncertain, strict.Label)

	loose := classify.Classify(in, classify.Config{DirectionalMargin: 3, HedgeMargin: 2})
	assert.Equal(t, classify.Directional, loose.Label)
}
