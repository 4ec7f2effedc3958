package repository

import (
	"context"
	"fmt"
	"time"

	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const savedCouponColumns = `
	id, coupon_id, customer_id, status, expires_at, saved_at, used_at, redemption_id
`

// savedCouponRepository implements the SavedCouponRepository interface using PostgreSQL.
type savedCouponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSavedCouponRepository creates a new PostgreSQL-backed saved-coupon repository.
func NewSavedCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) SavedCouponRepository {
	return &savedCouponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "saved_coupon").Logger(),
	}
}

func scanSavedCoupon(row pgx.Row) (*model.SavedCoupon, error) {
	var s model.SavedCoupon
	err := row.Scan(
		&s.ID, &s.CouponID, &s.CustomerID, &s.Status,
		&s.ExpiresAt, &s.SavedAt, &s.UsedAt, &s.RedemptionID,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new saved coupon.
func (r *savedCouponRepository) Create(ctx context.Context, saved *model.SavedCoupon) error {
	query := `
		INSERT INTO saved_coupons (id, coupon_id, customer_id, status, expires_at, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		saved.ID, saved.CouponID, saved.CustomerID, saved.Status, saved.ExpiresAt, saved.SavedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("coupon_id", saved.CouponID.String()).
			Str("customer_id", saved.CustomerID.String()).
			Msg("failed to create saved coupon")
		return fmt.Errorf("failed to create saved coupon: %w", err)
	}

	r.logger.Debug().Str("saved_coupon_id", saved.ID.String()).Msg("saved coupon created")
	return nil
}

// GetByID retrieves a saved coupon by its ID.
func (r *savedCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SavedCoupon, error) {
	query := `SELECT ` + savedCouponColumns + ` FROM saved_coupons WHERE id = $1`

	saved, err := scanSavedCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("saved_coupon_id", id.String()).Msg("saved coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("saved_coupon_id", id.String()).Msg("failed to query saved coupon")
		return nil, fmt.Errorf("failed to query saved coupon: %w", err)
	}

	return saved, nil
}

// FindActive returns a customer's active claim on a coupon, or nil when
// there is none.
func (r *savedCouponRepository) FindActive(ctx context.Context, couponID, customerID uuid.UUID) (*model.SavedCoupon, error) {
	query := `
		SELECT ` + savedCouponColumns + `
		FROM saved_coupons
		WHERE coupon_id = $1 AND customer_id = $2 AND status = $3
	`

	saved, err := scanSavedCoupon(r.pool.QueryRow(ctx, query, couponID, customerID, model.SavedCouponActive))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("coupon_id", couponID.String()).
			Str("customer_id", customerID.String()).
			Msg("failed to query active saved coupon")
		return nil, fmt.Errorf("failed to query active saved coupon: %w", err)
	}

	return saved, nil
}

// ListByCustomer retrieves a customer's saved coupons, newest first.
func (r *savedCouponRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.SavedCouponStatus) ([]model.SavedCoupon, error) {
	query := `SELECT ` + savedCouponColumns + ` FROM saved_coupons WHERE customer_id = $1`
	args := []any{customerID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY saved_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query saved coupons")
		return nil, fmt.Errorf("failed to query saved coupons: %w", err)
	}
	defer rows.Close()

	var saved []model.SavedCoupon
	for rows.Next() {
		s, err := scanSavedCoupon(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan saved coupon row")
			return nil, fmt.Errorf("failed to scan saved coupon: %w", err)
		}
		saved = append(saved, *s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating saved coupon rows")
		return nil, fmt.Errorf("error iterating saved coupons: %w", err)
	}

	return saved, nil
}

// MarkUsed flips a saved coupon to used within the provided transaction.
// The status guard makes the flip race-safe: a concurrent redemption of
// the same saved coupon affects zero rows.
func (r *savedCouponRepository) MarkUsed(ctx context.Context, tx pgx.Tx, id uuid.UUID, usedAt time.Time, redemptionID uuid.UUID) error {
	query := `
		UPDATE saved_coupons
		SET status = $2, used_at = $3, redemption_id = $4
		WHERE id = $1 AND status = $5
	`

	tag, err := tx.Exec(ctx, query, id, model.SavedCouponUsed, usedAt, redemptionID, model.SavedCouponActive)
	if err != nil {
		r.logger.Error().Err(err).Str("saved_coupon_id", id.String()).Msg("failed to mark saved coupon used")
		return fmt.Errorf("failed to mark saved coupon used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponAlreadyUsed
	}

	return nil
}
