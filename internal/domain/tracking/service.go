package tracking

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vega/internal/domain/confidence"
	"vega/pkg/errors"
	"vega/pkg/logger"
)

// Pricer supplies live prices for valuation: the underlying quote for stock
// positions, the contract mid for option positions.
type Pricer interface {
	StockPrice(ctx context.Context, ticker string) (float64, error)
	OptionMid(ctx context.Context, ticker, optionSymbol string) (float64, error)
}

// Patch is a partial update to a tracked suggestion. Nil fields are left
// untouched. All status transitions here are caller-initiated: the engine
// never closes live risk on its own judgment (expiry excepted).
type Patch struct {
	Status      *Status
	TargetPrice *decimal.Decimal
	StopPrice   *decimal.Decimal
	ClosedPrice *decimal.Decimal
	Strategy    *string
}

// horizons are the calendar-day marks captured for calibration analysis.
var horizons = []int{1, 3, 5, 10, 14}

// Service manages the tracked-suggestion lifecycle and the calibration
// feedback aggregates.
type Service struct {
	repo   Repository
	pricer Pricer
	log    *logger.Logger
	now    func() time.Time
}

// NewService constructs a tracking service
func NewService(repo Repository, pricer Pricer) *Service {
	return &Service{
		repo:   repo,
		pricer: pricer,
		log:    logger.Get(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Track persists a new suggestion for outcome tracking.
func (s *Service) Track(ctx context.Context, t *TrackedSuggestion) error {
	if t == nil || t.Ticker == "" {
		return errors.ErrInvalidInput
	}
	if !t.Kind.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown position kind %q", t.Kind)
	}
	if t.EntryPrice.LessThanOrEqual(decimal.Zero) || t.Quantity <= 0 {
		return errors.Wrap(errors.ErrInvalidInput, "entry price and quantity must be positive")
	}
	if t.Kind == PositionOption && t.Expiration == nil {
		return errors.Wrap(errors.ErrInvalidInput, "option positions require an expiration")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Multiplier <= 0 {
		if t.Kind == PositionOption {
			t.Multiplier = 100
		} else {
			t.Multiplier = 1
		}
	}
	now := s.now()
	t.Status = StatusActive
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.repo.Create(ctx, t); err != nil {
		return errors.Wrap(err, "track suggestion")
	}
	return nil
}

// ApplyPatch applies a caller-supplied partial update as a read-apply-write
// cycle. Last writer wins on plain fields; terminal statuses are never
// downgraded.
func (s *Service) ApplyPatch(ctx context.Context, id uuid.UUID, p Patch) (*TrackedSuggestion, error) {
	if id == uuid.Nil {
		return nil, errors.ErrInvalidInput
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "load tracked suggestion")
	}
	now := s.now()

	if p.Status != nil && *p.Status != t.Status {
		if err := t.TransitionTo(*p.Status, now); err != nil {
			return nil, err
		}
	}
	if p.ClosedPrice != nil {
		if err := t.BackfillClose(*p.ClosedPrice, now); err != nil {
			return nil, err
		}
	}
	if p.TargetPrice != nil {
		t.TargetPrice = *p.TargetPrice
	}
	if p.StopPrice != nil {
		t.StopPrice = *p.StopPrice
	}
	if p.Strategy != nil {
		t.Strategy = *p.Strategy
	}
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, errors.Wrap(err, "update tracked suggestion")
	}
	return t, nil
}

// Delete removes a tracked suggestion.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errors.ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete tracked suggestion")
	}
	return nil
}

// ListValued returns every tracked record enriched with live valuation. This
// is the valuation sweep: it expires dead options, recomputes P&L, and
// lazily backfills multi-horizon return snapshots. Triggered per read, not
// by a scheduler.
func (s *Service) ListValued(ctx context.Context) ([]*Valued, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tracked suggestions")
	}
	now := s.now()

	valued := make([]*Valued, 0, len(records))
	for _, t := range records {
		valued = append(valued, s.value(ctx, t, now))
	}
	return valued, nil
}

func (s *Service) value(ctx context.Context, t *TrackedSuggestion, now time.Time) *Valued {
	expired := false

	// The only engine-triggered transition: a dead option is EXPIRED.
	if dte := t.DTE(now); t.Status == StatusActive && dte == 0 {
		if err := t.TransitionTo(StatusExpired, now); err == nil {
			expired = true
		}
	}

	v := &Valued{TrackedSuggestion: *t, LiveDTE: t.DTE(now)}

	returnsDirty := false
	price, ok := s.livePrice(ctx, t)
	if ok {
		v.CurrentPrice = price
		v.UnrealizedPnL = price.Sub(t.EntryPrice).
			Mul(decimal.NewFromInt(t.Quantity)).
			Mul(decimal.NewFromInt(t.Multiplier))
		if t.EntryPrice.IsPositive() {
			v.UnrealizedPnLPct = price.Sub(t.EntryPrice).Div(t.EntryPrice).Mul(decimal.NewFromInt(100))
		}
		returnsDirty = s.backfillHorizons(t, price, now)
		v.TrackedSuggestion = *t
	}

	// Sweep write-backs are narrow: the expiry swap is conditional on the
	// stored status still being ACTIVE, and the horizon write carries no
	// status. A terminal transition landing mid-sweep is never overwritten.
	if expired {
		swapped, err := s.repo.ExpireIfActive(ctx, t.ID, now)
		if err != nil {
			s.log.Warnf("expiry write-back failed for %s: %v", t.ID, err)
		} else if !swapped {
			s.log.Debugf("expiry write-back skipped for %s: already terminal", t.ID)
		}
	}
	if returnsDirty {
		if err := s.repo.UpdateReturns(ctx, t); err != nil {
			s.log.Warnf("valuation write-back failed for %s: %v", t.ID, err)
		}
	}
	return v
}

func (s *Service) livePrice(ctx context.Context, t *TrackedSuggestion) (decimal.Decimal, bool) {
	var (
		price float64
		err   error
	)
	switch t.Kind {
	case PositionOption:
		price, err = s.pricer.OptionMid(ctx, t.Ticker, t.OptionSymbol)
	default:
		price, err = s.pricer.StockPrice(ctx, t.Ticker)
	}
	if err != nil || price <= 0 {
		if err != nil {
			s.log.Debugf("live price unavailable for %s: %v", t.Ticker, err)
		}
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(price), true
}

// backfillHorizons captures the best-effort return at each elapsed horizon
// that has not been recorded yet. Best-effort by design: the value is the
// return observed on the first valuation pass after the horizon elapses.
func (s *Service) backfillHorizons(t *TrackedSuggestion, price decimal.Decimal, now time.Time) bool {
	if t.EntryPrice.LessThanOrEqual(decimal.Zero) {
		return false
	}
	ageDays := int(now.Sub(t.CreatedAt).Hours() / 24)
	retPct, _ := price.Sub(t.EntryPrice).Div(t.EntryPrice).Mul(decimal.NewFromInt(100)).Float64()

	slots := []**float64{&t.Return1D, &t.Return3D, &t.Return5D, &t.Return10D, &t.Return14D}
	changed := false
	for i, h := range horizons {
		if ageDays >= h && *slots[i] == nil {
			v := retPct
			*slots[i] = &v
			changed = true
		}
	}
	return changed
}

// AggregateRow is one calibration grouping with realized-outcome statistics
type AggregateRow struct {
	Key           string  `json:"key"`
	Count         int     `json:"count"`
	Wins          int     `json:"wins"`
	WinRate       float64 `json:"winRate"`
	MeanReturnPct float64 `json:"meanReturnPct"`
}

// Aggregates is the calibration feedback view, derived on read from the
// current set of terminal records — never stored.
type Aggregates struct {
	ByConfidence []AggregateRow `json:"byConfidence"`
	ByStrategy   []AggregateRow `json:"byStrategy"`
}

// Aggregate groups realized (terminal) suggestions by confidence bucket and
// by strategy label.
func (s *Service) Aggregate(ctx context.Context) (*Aggregates, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tracked suggestions")
	}

	byBucket := map[string][]*TrackedSuggestion{}
	byStrategy := map[string][]*TrackedSuggestion{}
	for _, t := range records {
		if !t.Status.Terminal() {
			continue
		}
		bucket := string(confidence.BucketFor(t.Confidence))
		byBucket[bucket] = append(byBucket[bucket], t)
		label := t.Strategy
		if label == "" {
			label = "unlabeled"
		}
		byStrategy[label] = append(byStrategy[label], t)
	}

	agg := &Aggregates{}
	for _, bucket := range []string{"HIGH", "MED", "LOW", "N/A"} {
		if group, ok := byBucket[bucket]; ok {
			agg.ByConfidence = append(agg.ByConfidence, rowFor(bucket, group))
		}
	}
	labels := make([]string, 0, len(byStrategy))
	for label := range byStrategy {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		agg.ByStrategy = append(agg.ByStrategy, rowFor(label, byStrategy[label]))
	}
	return agg, nil
}

func rowFor(key string, group []*TrackedSuggestion) AggregateRow {
	row := AggregateRow{Key: key, Count: len(group)}
	var retSum float64
	var retN int
	for _, t := range group {
		if t.Won() {
			row.Wins++
		}
		if ret, ok := t.RealizedReturnPct(); ok {
			retSum += ret
			retN++
		}
	}
	if row.Count > 0 {
		row.WinRate = float64(row.Wins) / float64(row.Count)
	}
	if retN > 0 {
		row.MeanReturnPct = retSum / float64(retN)
	}
	return row
}
