package marketdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"vega/internal/domain/contract"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

const historyDays = 100 // enough closes for SMA50 with slack

// Service fetches and joins the per-symbol market data snapshot. Essential
// feeds (quote, chain) abort the request on failure; supplementary feeds
// degrade to empty values and never block the response.
type Service struct {
	provider Provider
	cache    Cache
	log      *logger.Logger
}

// NewService constructs a market data service
func NewService(provider Provider, cache Cache) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{provider: provider, cache: cache, log: logger.Get()}
}

// GetSnapshot fetches all feeds for a symbol concurrently and joins them.
func (s *Service) GetSnapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.ErrInvalidInput
	}

	snap := &Snapshot{Symbol: symbol}
	var quoteErr, chainErr error
	var earnings *time.Time
	var ratings *Ratings

	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		q, err := s.quote(ctx, symbol)
		if err != nil {
			quoteErr = err
			return
		}
		snap.Quote = *q
	}()
	go func() {
		defer wg.Done()
		c, err := s.chain(ctx, symbol)
		if err != nil {
			chainErr = err
			return
		}
		snap.Chain = *c
	}()
	go func() {
		defer wg.Done()
		closes, err := s.provider.DailyCloses(ctx, symbol, historyDays)
		if err != nil {
			s.log.Debugf("price history degraded for %s: %v", symbol, err)
			return
		}
		snap.Closes = closes
	}()
	go func() {
		defer wg.Done()
		e, err := s.provider.NextEarnings(ctx, symbol)
		if err != nil {
			s.log.Debugf("earnings feed degraded for %s: %v", symbol, err)
			return
		}
		earnings = e
	}()
	go func() {
		defer wg.Done()
		headlines, err := s.provider.Headlines(ctx, symbol)
		if err != nil {
			s.log.Debugf("news feed degraded for %s: %v", symbol, err)
			return
		}
		snap.Headlines = headlines
	}()
	go func() {
		defer wg.Done()
		r, err := s.provider.AnalystRatings(ctx, symbol)
		if err != nil {
			s.log.Debugf("analyst feed degraded for %s: %v", symbol, err)
			return
		}
		ratings = r
	}()

	wg.Wait()

	if quoteErr != nil {
		return nil, errors.Wrapf(quoteErr, "quote fetch for %s", symbol)
	}
	if chainErr != nil {
		return nil, errors.Wrapf(chainErr, "chain fetch for %s", symbol)
	}

	snap.Earnings = earnings
	snap.Ratings = ratings
	snap.SentimentScore = scoreHeadlines(snap.Headlines)

	// Chain payloads sometimes omit the underlying price; the quote fills it.
	if snap.Chain.UnderlyingPrice <= 0 {
		snap.Chain.UnderlyingPrice = snap.Quote.Price()
	}
	return snap, nil
}

func (s *Service) quote(ctx context.Context, symbol string) (*Quote, error) {
	if q, ok := s.cache.GetQuote(ctx, symbol); ok {
		return q, nil
	}
	q, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.cache.SetQuote(ctx, symbol, q)
	return q, nil
}

func (s *Service) chain(ctx context.Context, symbol string) (*contract.ChainSnapshot, error) {
	if c, ok := s.cache.GetChain(ctx, symbol); ok {
		return c, nil
	}
	c, err := s.provider.OptionChain(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.cache.SetChain(ctx, symbol, c)
	return c, nil
}

// StockPrice implements tracking.Pricer
func (s *Service) StockPrice(ctx context.Context, ticker string) (float64, error) {
	q, err := s.quote(ctx, strings.ToUpper(ticker))
	if err != nil {
		return 0, err
	}
	return q.Price(), nil
}

// OptionMid implements tracking.Pricer: looks the contract up in the live
// chain by its option symbol and returns its mid.
func (s *Service) OptionMid(ctx context.Context, ticker, optionSymbol string) (float64, error) {
	chain, err := s.chain(ctx, strings.ToUpper(ticker))
	if err != nil {
		return 0, err
	}
	underlying := chain.UnderlyingPrice
	if underlying <= 0 {
		if q, qerr := s.quote(ctx, strings.ToUpper(ticker)); qerr == nil {
			underlying = q.Price()
		}
	}
	// Widest window: tracked strikes may sit outside the analysis band.
	for _, c := range contract.Normalize(*chain, contract.NormalizeOptions{BandPct: 1.0}) {
		if c.Symbol == optionSymbol && c.HasMid {
			return c.Mid, nil
		}
	}
	return 0, errors.Wrapf(errors.ErrNotFound, "contract %s", optionSymbol)
}

// scoreHeadlines is a naive keyword sentiment over recent headlines,
// normalized to -1..1. Context for the response, never a scoring input.
func scoreHeadlines(headlines []string) float64 {
	if len(headlines) == 0 {
		return 0
	}
	positive := []string{"beat", "beats", "surge", "rally", "upgrade", "record", "growth", "strong"}
	negative := []string{"miss", "misses", "plunge", "selloff", "downgrade", "probe", "lawsuit", "weak"}

	var score int
	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, w := range positive {
			if strings.Contains(lower, w) {
				score++
				break
			}
		}
		for _, w := range negative {
			if strings.Contains(lower, w) {
				score--
				break
			}
		}
	}
	return float64(score) / float64(len(headlines))
}
