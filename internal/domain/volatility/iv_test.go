package volatility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vega/internal/domain/contract"
	"vega/internal/domain/volatility"
)

func ntm(kind contract.Kind, strike, iv float64) contract.Contract {
	return contract.Contract{Kind: kind, Strike: strike, IV: iv}
}

func TestAnalyze_NearTheMoneyAverages(t *testing.T) {
	contracts := []contract.Contract{
		ntm(contract.Call, 98, 0.20),
		ntm(contract.Call, 102, 0.24),
		ntm(contract.Call, 130, 0.90), // outside the 5% band, ignored
		ntm(contract.Put, 100, 0.30),
		ntm(contract.Put, 97, 0.34),
	}

	a := volatility.Analyze(contracts, 100)
	assert.InDelta(t, 0.22, a.CallIV, 1e-9)
	assert.InDelta(t, 0.32, a.PutIV, 1e-9)
	assert.InDelta(t, 0.27, a.ATMIV, 1e-9)
	assert.InDelta(t, 0.10, a.Skew, 1e-9)
}

func TestAnalyze_FallbackWhenNoQualifyingContracts(t *testing.T) {
	a := volatility.Analyze(nil, 100)
	assert.InDelta(t, 0.30, a.CallIV, 1e-9)
	assert.InDelta(t, 0.30, a.PutIV, 1e-9)
	assert.InDelta(t, 0.30, a.ATMIV, 1e-9)
	assert.Zero(t, a.Skew)
}

func TestAnalyze_ZeroIVContractsIgnored(t *testing.T) {
	contracts := []contract.Contract{
		ntm(contract.Call, 100, 0),
		ntm(contract.Call, 101, 0.40),
	}
	a := volatility.Analyze(contracts, 100)
	assert.InDelta(t, 0.40, a.CallIV, 1e-9)
}

func TestAnalyze_SignalMapping(t *testing.T) {
	tests := []struct {
		name    string
		iv      float64
		signal  volatility.Signal
		rec     volatility.Recommendation
		extreme bool
	}{
		{"cheap vol", 0.20, volatility.SignalLow, volatility.BuyPremium, true},
		{"normal vol", 0.40, volatility.SignalNormal, volatility.NeutralRec, false},
		{"elevated vol", 0.48, volatility.SignalElevated, volatility.NeutralRec, false},
		{"rich vol", 0.70, volatility.SignalHigh, volatility.SellPremium, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := volatility.Analyze([]contract.Contract{
				ntm(contract.Call, 100, tt.iv),
				ntm(contract.Put, 100, tt.iv),
			}, 100)
			assert.Equal(t, tt.signal, a.Signal)
			assert.Equal(t, tt.rec, a.Recommendation)
			assert.Equal(t, tt.extreme, a.Extreme())
		})
	}
}

func TestAnalyze_RankProxyClamped(t *testing.T) {
	low := volatility.Analyze([]contract.Contract{
		ntm(contract.Call, 100, 0.05), ntm(contract.Put, 100, 0.05),
	}, 100)
	assert.Zero(t, low.RankProxy)

	high := volatility.Analyze([]contract.Contract{
		ntm(contract.Call, 100, 1.50), ntm(contract.Put, 100, 1.50),
	}, 100)
	assert.InDelta(t, 100.0, high.RankProxy, 1e-9)
}
