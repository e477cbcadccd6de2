package analysis

import (
	"context"
	"math"
	"time"

	"vega/internal/adapters/config"
	"vega/internal/domain/classify"
	"vega/internal/domain/contract"
	"vega/internal/domain/marketdata"
	"vega/internal/domain/scoring"
	"vega/internal/domain/suggestion"
	"vega/internal/domain/technical"
	"vega/internal/domain/volatility"
	"vega/internal/metrics"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

// Response is the full per-ticker analysis payload. Suggestions carry their
// ordered reason trails; Unusual carries the classification audit for every
// flagged contract.
type Response struct {
	Ticker     string    `json:"ticker"`
	Underlying float64   `json:"underlying"`
	AsOf       time.Time `json:"asOf"`

	Technical TechnicalView       `json:"technical"`
	IV        volatility.Analysis `json:"iv"`
	Market    MarketView          `json:"market"`

	Suggestions []suggestion.Suggestion `json:"suggestions"`
	Unusual     []UnusualActivity       `json:"unusual,omitempty"`

	Sentiment float64             `json:"sentiment"`
	Ratings   *marketdata.Ratings `json:"ratings,omitempty"`
}

// TechnicalView is the technical context with JSON field names
type TechnicalView struct {
	Trend      technical.Trend `json:"trend"`
	RSI        float64         `json:"rsi"`
	SMA20      float64         `json:"sma20"`
	SMA50      float64         `json:"sma50"`
	Support    float64         `json:"support"`
	Resistance float64         `json:"resistance"`
}

// MarketView aggregates chain-wide flow statistics
type MarketView struct {
	CallVolume        int64   `json:"callVolume"`
	PutVolume         int64   `json:"putVolume"`
	PutCallRatio      float64 `json:"putCallRatio"`
	TotalOpenInterest int64   `json:"totalOpenInterest"`
	MaxPainStrike     float64 `json:"maxPainStrike"`
	ContractsAnalyzed int     `json:"contractsAnalyzed"`
}

// UnusualActivity is one flagged contract with its classification verdict
type UnusualActivity struct {
	Contract     ContractView         `json:"contract"`
	UnusualScore int                  `json:"unusualScore"`
	Label        classify.Label       `json:"label"`
	InsiderTier  classify.InsiderTier `json:"insiderTier"`
	Reasons      []string             `json:"reasons"`
}

// ContractView is the serialized contract summary
type ContractView struct {
	Symbol       string        `json:"symbol"`
	Kind         contract.Kind `json:"kind"`
	Strike       float64       `json:"strike"`
	DTE          int           `json:"dte"`
	Mid          float64       `json:"mid"`
	Volume       int64         `json:"volume"`
	OpenInterest int64         `json:"openInterest"`
}

// Service runs the full decision pipeline for one ticker: snapshot fetch,
// normalization, technicals, IV aggregation, scoring, classification, and
// suggestion assembly.
type Service struct {
	market      *marketdata.Service
	engine      config.EngineConfig
	scoringCfg  scoring.Config
	classifyCfg classify.Config
	log         *logger.Logger
	now         func() time.Time
}

// NewService constructs the analysis service from engine configuration
func NewService(market *marketdata.Service, engine config.EngineConfig) *Service {
	return &Service{
		market: market,
		engine: engine,
		scoringCfg: scoring.Config{
			MinDTE:          engine.MinDTE,
			MaxDTE:          engine.MaxDTE,
			MaxSpreadPct:    engine.MaxSpreadPct,
			MinOpenInterest: engine.MinOpenInterest,
			MinVolume:       engine.MinVolume,
			MinMidPrice:     engine.MinMidPrice,
		},
		classifyCfg: classify.Config{
			DirectionalMargin: engine.DirectionalMargin,
			HedgeMargin:       engine.HedgeMargin,
		},
		log: logger.Get(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Analyze runs the pipeline for one ticker.
func (s *Service) Analyze(ctx context.Context, ticker string) (*Response, error) {
	start := time.Now()

	resp, err := s.analyze(ctx, ticker)
	switch {
	case err == nil:
		metrics.RecordAnalysis(ticker, time.Since(start), "success")
	case errors.Is(err, errors.ErrNoTradableData):
		metrics.RecordAnalysis(ticker, time.Since(start), "no_data")
	default:
		metrics.RecordAnalysis(ticker, time.Since(start), "error")
	}
	return resp, err
}

func (s *Service) analyze(ctx context.Context, ticker string) (*Response, error) {
	snap, err := s.market.GetSnapshot(ctx, ticker)
	if err != nil {
		return nil, err
	}

	underlying := snap.Chain.UnderlyingPrice
	if underlying <= 0 {
		return nil, errors.Wrapf(errors.ErrNoTradableData, "no usable underlying price for %s", snap.Symbol)
	}

	contracts := contract.Normalize(snap.Chain, contract.NormalizeOptions{
		BandPct: s.engine.MoneynessBandPct,
	})

	tech := technical.Compute(snap.Closes)
	iv := volatility.Analyze(contracts, underlying)

	now := s.now()
	resp := &Response{
		Ticker:     snap.Symbol,
		Underlying: underlying,
		AsOf:       now,
		Technical: TechnicalView{
			Trend:      tech.Trend,
			RSI:        tech.RSI,
			SMA20:      tech.SMA20,
			SMA50:      tech.SMA50,
			Support:    tech.Support,
			Resistance: tech.Resistance,
		},
		IV:        iv,
		Market:    marketView(contracts),
		Sentiment: snap.SentimentScore,
		Ratings:   snap.Ratings,
	}

	resp.Suggestions = suggestion.Assemble(suggestion.Snapshot{
		Ticker:     snap.Symbol,
		Underlying: underlying,
		Contracts:  contracts,
		Technical:  tech,
		IV:         iv,
		Scoring:    s.scoringCfg,
	})

	daysToEarnings := snap.DaysToEarnings(now)
	for _, c := range contracts {
		if !c.IsUnusual() {
			continue
		}
		verdict := classify.Classify(classify.Input{
			Contract:       c,
			Underlying:     underlying,
			Trend:          tech.Trend,
			DaysToEarnings: daysToEarnings,
		}, s.classifyCfg)

		resp.Unusual = append(resp.Unusual, UnusualActivity{
			Contract: ContractView{
				Symbol:       c.Symbol,
				Kind:         c.Kind,
				Strike:       c.Strike,
				DTE:          c.DTE,
				Mid:          c.Mid,
				Volume:       c.Volume,
				OpenInterest: c.OpenInterest,
			},
			UnusualScore: c.UnusualScore,
			Label:        verdict.Label,
			InsiderTier:  verdict.InsiderTier,
			Reasons:      verdict.Reasons,
		})
	}

	s.log.Infow("analysis complete",
		"ticker", snap.Symbol,
		"contracts", len(contracts),
		"trend", tech.Trend,
		"suggestions", len(resp.Suggestions),
		"unusual", len(resp.Unusual),
	)
	return resp, nil
}

// marketView aggregates chain-wide flow statistics over the normalized window.
func marketView(contracts []contract.Contract) MarketView {
	v := MarketView{ContractsAnalyzed: len(contracts)}
	for _, c := range contracts {
		v.TotalOpenInterest += c.OpenInterest
		switch c.Kind {
		case contract.Call:
			v.CallVolume += c.Volume
		case contract.Put:
			v.PutVolume += c.Volume
		}
	}
	if v.CallVolume > 0 {
		v.PutCallRatio = float64(v.PutVolume) / float64(v.CallVolume)
	}
	v.MaxPainStrike = maxPain(contracts)
	return v
}

// maxPain finds the strike minimizing total in-the-money option value at
// expiration, the classic pin target. Approximate: uses the normalized window
// only, and weighs by open interest.
func maxPain(contracts []contract.Contract) float64 {
	strikes := map[float64]bool{}
	for _, c := range contracts {
		strikes[c.Strike] = true
	}
	if len(strikes) == 0 {
		return 0
	}

	bestStrike, bestPain := 0.0, math.Inf(1)
	for settle := range strikes {
		var pain float64
		for _, c := range contracts {
			switch c.Kind {
			case contract.Call:
				if settle > c.Strike {
					pain += (settle - c.Strike) * float64(c.OpenInterest)
				}
			case contract.Put:
				if settle < c.Strike {
					pain += (c.Strike - settle) * float64(c.OpenInterest)
				}
			}
		}
		if pain < bestPain || (pain == bestPain && settle < bestStrike) {
			bestStrike, bestPain = settle, pain
		}
	}
	return bestStrike
}
