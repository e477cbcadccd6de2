package tracking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vega/pkg/errors"
)

// Status is the tracked-suggestion lifecycle state. ACTIVE is the only
// non-terminal state; every terminal state is absorbing.
type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusHitTarget    Status = "HIT_TARGET"
	StatusMissedTarget Status = "MISSED_TARGET"
	StatusStoppedOut   Status = "STOPPED_OUT"
	StatusClosed       Status = "CLOSED"
	StatusExpired      Status = "EXPIRED"
	StatusCanceled     Status = "CANCELED"
)

// Valid checks if the status is known
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusHitTarget, StatusMissedTarget, StatusStoppedOut,
		StatusClosed, StatusExpired, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether the status is absorbing
func (s Status) Terminal() bool {
	return s.Valid() && s != StatusActive
}

// String returns string representation
func (s Status) String() string {
	return string(s)
}

// PositionKind distinguishes stock and option positions
type PositionKind string

const (
	PositionStock  PositionKind = "stock"
	PositionOption PositionKind = "option"
)

// Valid checks if the position kind is known
func (k PositionKind) Valid() bool {
	return k == PositionStock || k == PositionOption
}

// TrackedSuggestion is the persisted superset of an emitted suggestion: the
// entry snapshot plus lifecycle state. Live P&L is recomputed on read, never
// persisted mid-calculation.
type TrackedSuggestion struct {
	ID       uuid.UUID `db:"id"`
	Ticker   string    `db:"ticker"`
	Strategy string    `db:"strategy"`

	Kind         PositionKind `db:"kind"`
	OptionSymbol string       `db:"option_symbol"`
	OptionKind   string       `db:"option_kind"`
	Strike       decimal.Decimal `db:"strike"`
	Expiration   *time.Time      `db:"expiration"`

	EntryPrice  decimal.Decimal `db:"entry_price"`
	TargetPrice decimal.Decimal `db:"target_price"` // zero when unset
	StopPrice   decimal.Decimal `db:"stop_price"`   // zero when unset
	Quantity    int64           `db:"quantity"`     // shares or contracts
	Multiplier  int64           `db:"multiplier"`   // 1 for stock, typically 100 for options

	Confidence         int    `db:"confidence"`
	CalibrationVersion string `db:"calibration_version"`

	Status      Status          `db:"status"`
	ClosedPrice decimal.Decimal `db:"closed_price"` // zero until backfilled

	// Multi-horizon return snapshots (percent), lazily backfilled once the
	// position ages past each horizon. Nil until captured.
	Return1D  *float64 `db:"return_1d"`
	Return3D  *float64 `db:"return_3d"`
	Return5D  *float64 `db:"return_5d"`
	Return10D *float64 `db:"return_10d"`
	Return14D *float64 `db:"return_14d"`

	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	ClosedAt  *time.Time `db:"closed_at"`
}

// DTE returns live days to expiration, floored at zero. Stock positions and
// options without an expiration report -1 (not applicable).
func (t *TrackedSuggestion) DTE(now time.Time) int {
	if t.Kind != PositionOption || t.Expiration == nil {
		return -1
	}
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expDay := time.Date(t.Expiration.Year(), t.Expiration.Month(), t.Expiration.Day(), 0, 0, 0, 0, time.UTC)
	days := int(expDay.Sub(nowDay).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// TransitionTo moves the record to a new status. Terminal states are
// absorbing: any transition out of one is rejected, so live risk is never
// silently reopened or reclassified.
func (t *TrackedSuggestion) TransitionTo(next Status, now time.Time) error {
	if !next.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown status %q", next)
	}
	if t.Status.Terminal() {
		return errors.Wrapf(errors.ErrInvalidTransition, "%s is terminal", t.Status)
	}
	if next == StatusActive {
		return nil // no-op, already active
	}
	t.Status = next
	t.UpdatedAt = now
	if t.ClosedAt == nil {
		closedAt := now
		t.ClosedAt = &closedAt
	}
	return nil
}

// BackfillClose records the closing price on a terminal record. Allowed after
// the terminal transition: the price often arrives later than the decision.
func (t *TrackedSuggestion) BackfillClose(price decimal.Decimal, now time.Time) error {
	if !t.Status.Terminal() {
		return errors.Wrap(errors.ErrInvalidTransition, "close price requires a terminal status")
	}
	t.ClosedPrice = price
	t.UpdatedAt = now
	if t.ClosedAt == nil {
		closedAt := now
		t.ClosedAt = &closedAt
	}
	return nil
}

// RealizedReturnPct is the percent return implied by the closed price, or
// ok=false when entry or close is missing.
func (t *TrackedSuggestion) RealizedReturnPct() (float64, bool) {
	if t.EntryPrice.IsZero() || t.ClosedPrice.IsZero() {
		return 0, false
	}
	ret := t.ClosedPrice.Sub(t.EntryPrice).Div(t.EntryPrice).Mul(decimal.NewFromInt(100))
	f, _ := ret.Float64()
	return f, true
}

// Won reports a winning outcome: target hit, or a positive realized return.
func (t *TrackedSuggestion) Won() bool {
	if t.Status == StatusHitTarget {
		return true
	}
	if ret, ok := t.RealizedReturnPct(); ok {
		return ret > 0
	}
	return false
}

// Valued is a tracked suggestion enriched with live valuation. Computed per
// read, never stored.
type Valued struct {
	TrackedSuggestion

	CurrentPrice     decimal.Decimal `json:"currentPrice"`
	UnrealizedPnL    decimal.Decimal `json:"unrealizedPnl"`
	UnrealizedPnLPct decimal.Decimal `json:"unrealizedPnlPct"`
	LiveDTE          int             `json:"liveDte"`
}
