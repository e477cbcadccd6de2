package marketdata

import (
	"context"
	"time"

	"vega/internal/domain/contract"
)

// Provider is the market data collaborator boundary. Quote and OptionChain
// are the essential feeds; the rest are best-effort supplementary analytics.
type Provider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	OptionChain(ctx context.Context, symbol string) (*contract.ChainSnapshot, error)
	DailyCloses(ctx context.Context, symbol string, days int) ([]float64, error)
	NextEarnings(ctx context.Context, symbol string) (*time.Time, error)
	Headlines(ctx context.Context, symbol string) ([]string, error)
	AnalystRatings(ctx context.Context, symbol string) (*Ratings, error)
}

// Cache deduplicates repeated quote/chain fetches across concurrent requests
// for the same symbol. An optimization only: correctness holds with the
// cache disabled, so misses and cache errors are indistinguishable.
type Cache interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, bool)
	SetQuote(ctx context.Context, symbol string, q *Quote)
	GetChain(ctx context.Context, symbol string) (*contract.ChainSnapshot, bool)
	SetChain(ctx context.Context, symbol string, c *contract.ChainSnapshot)
}

// NopCache satisfies Cache with no storage
type NopCache struct{}

func (NopCache) GetQuote(context.Context, string) (*Quote, bool)                 { return nil, false }
func (NopCache) SetQuote(context.Context, string, *Quote)                        {}
func (NopCache) GetChain(context.Context, string) (*contract.ChainSnapshot, bool) { return nil, false }
func (NopCache) SetChain(context.Context, string, *contract.ChainSnapshot)       {}
