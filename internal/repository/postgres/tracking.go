package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"vega/internal/domain/tracking"
	"vega/internal/metrics"
	"vega/pkg/errors"
)

// Compile-time check
var _ tracking.Repository = (*TrackingRepository)(nil)

// TrackingRepository implements tracking.Repository using sqlx
type TrackingRepository struct {
	db DBTX
}

// NewTrackingRepository creates a new tracked-suggestion repository
func NewTrackingRepository(db DBTX) *TrackingRepository {
	return &TrackingRepository{db: db}
}

// Create inserts a new tracked suggestion
func (r *TrackingRepository) Create(ctx context.Context, t *tracking.TrackedSuggestion) error {
	start := time.Now()

	query := `
		INSERT INTO tracked_suggestions (
			id, ticker, strategy,
			kind, option_symbol, option_kind, strike, expiration,
			entry_price, target_price, stop_price, quantity, multiplier,
			confidence, calibration_version,
			status, closed_price,
			return_1d, return_3d, return_5d, return_10d, return_14d,
			created_at, updated_at, closed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Ticker, t.Strategy,
		t.Kind, t.OptionSymbol, t.OptionKind, t.Strike, t.Expiration,
		t.EntryPrice, t.TargetPrice, t.StopPrice, t.Quantity, t.Multiplier,
		t.Confidence, t.CalibrationVersion,
		t.Status, t.ClosedPrice,
		t.Return1D, t.Return3D, t.Return5D, t.Return10D, t.Return14D,
		t.CreatedAt, t.UpdatedAt, t.ClosedAt,
	)

	metrics.RecordDBQuery("tracking_create", start, err)
	return err
}

// GetByID retrieves a tracked suggestion by ID
func (r *TrackingRepository) GetByID(ctx context.Context, id uuid.UUID) (*tracking.TrackedSuggestion, error) {
	start := time.Now()
	var t tracking.TrackedSuggestion

	query := `SELECT * FROM tracked_suggestions WHERE id = $1`

	err := r.db.GetContext(ctx, &t, query, id)
	metrics.RecordDBQuery("tracking_get", start, err)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "tracked suggestion %s", id)
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// List retrieves all tracked suggestions, newest first
func (r *TrackingRepository) List(ctx context.Context) ([]*tracking.TrackedSuggestion, error) {
	start := time.Now()
	var items []*tracking.TrackedSuggestion

	query := `SELECT * FROM tracked_suggestions ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &items, query)
	metrics.RecordDBQuery("tracking_list", start, err)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Update writes back a whole record
func (r *TrackingRepository) Update(ctx context.Context, t *tracking.TrackedSuggestion) error {
	start := time.Now()

	query := `
		UPDATE tracked_suggestions SET
			target_price = $2,
			stop_price = $3,
			strategy = $4,
			status = $5,
			closed_price = $6,
			return_1d = $7,
			return_3d = $8,
			return_5d = $9,
			return_10d = $10,
			return_14d = $11,
			closed_at = $12,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TargetPrice, t.StopPrice, t.Strategy,
		t.Status, t.ClosedPrice,
		t.Return1D, t.Return3D, t.Return5D, t.Return10D, t.Return14D,
		t.ClosedAt,
	)
	metrics.RecordDBQuery("tracking_update", start, err)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "tracked suggestion %s", t.ID)
	}

	return nil
}

// ExpireIfActive marks a record EXPIRED only while it is still ACTIVE in the
// store. The status predicate runs inside the UPDATE, so a concurrent
// terminal transition wins and the swap reports false.
func (r *TrackingRepository) ExpireIfActive(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	start := time.Now()

	query := `
		UPDATE tracked_suggestions SET
			status = $2,
			closed_at = $3,
			updated_at = NOW()
		WHERE id = $1 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, id, tracking.StatusExpired, now, tracking.StatusActive)
	metrics.RecordDBQuery("tracking_expire", start, err)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// UpdateReturns writes back the horizon-return snapshots only
func (r *TrackingRepository) UpdateReturns(ctx context.Context, t *tracking.TrackedSuggestion) error {
	start := time.Now()

	query := `
		UPDATE tracked_suggestions SET
			return_1d = $2,
			return_3d = $3,
			return_5d = $4,
			return_10d = $5,
			return_14d = $6,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		t.ID, t.Return1D, t.Return3D, t.Return5D, t.Return10D, t.Return14D)
	metrics.RecordDBQuery("tracking_update_returns", start, err)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "tracked suggestion %s", t.ID)
	}

	return nil
}

// Delete removes a tracked suggestion
func (r *TrackingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	result, err := r.db.ExecContext(ctx, `DELETE FROM tracked_suggestions WHERE id = $1`, id)
	metrics.RecordDBQuery("tracking_delete", start, err)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.Wrapf(errors.ErrNotFound, "tracked suggestion %s", id)
	}

	return nil
}

// CountActive returns the number of ACTIVE tracked suggestions
func (r *TrackingRepository) CountActive(ctx context.Context) (int, error) {
	start := time.Now()
	var count int

	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tracked_suggestions WHERE status = $1`, tracking.StatusActive)
	metrics.RecordDBQuery("tracking_count_active", start, err)
	if err != nil {
		return 0, err
	}

	return count, nil
}
