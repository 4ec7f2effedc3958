package repository

import (
	"context"
	"fmt"

	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const couponColumns = `
	id, store_id, name, description, discount_type, discount_value, discount_condition,
	valid_from, valid_until, available_days, available_time_start, available_time_end,
	blackout_dates, total_quantity, daily_limit, per_user_limit, status,
	stats_issued, stats_redeemed, stats_redemption_rate, created_at, updated_at
`

// couponRepository implements the CouponRepository interface using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID, &c.StoreID, &c.Name, &c.Description,
		&c.DiscountType, &c.DiscountValue, &c.DiscountCondition,
		&c.ValidFrom, &c.ValidUntil,
		&c.AvailableDays, &c.AvailableTimeStart, &c.AvailableTimeEnd, &c.BlackoutDates,
		&c.TotalQuantity, &c.DailyLimit, &c.PerUserLimit, &c.Status,
		&c.StatsIssued, &c.StatsRedeemed, &c.StatsRedemptionRate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new coupon.
func (r *couponRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	query := `
		INSERT INTO coupons (
			id, store_id, name, description, discount_type, discount_value, discount_condition,
			valid_from, valid_until, available_days, available_time_start, available_time_end,
			blackout_dates, total_quantity, daily_limit, per_user_limit, status,
			stats_issued, stats_redeemed, stats_redemption_rate, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID, coupon.StoreID, coupon.Name, coupon.Description,
		coupon.DiscountType, coupon.DiscountValue, coupon.DiscountCondition,
		coupon.ValidFrom, coupon.ValidUntil,
		coupon.AvailableDays, coupon.AvailableTimeStart, coupon.AvailableTimeEnd, coupon.BlackoutDates,
		coupon.TotalQuantity, coupon.DailyLimit, coupon.PerUserLimit, coupon.Status,
		coupon.StatsIssued, coupon.StatsRedeemed, coupon.StatsRedemptionRate,
		coupon.CreatedAt, coupon.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", coupon.ID.String()).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Str("coupon_id", coupon.ID.String()).Msg("coupon created successfully")
	return nil
}

// GetByID retrieves a single coupon by its ID.
func (r *couponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("coupon_id", id.String()).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}

	return coupon, nil
}

// ListByStore retrieves a store's coupons, optionally filtered by status.
func (r *couponRepository) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.CouponStatus) ([]model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE store_id = $1`
	args := []any{storeID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", storeID.String()).Msg("failed to query coupons")
		return nil, fmt.Errorf("failed to query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan coupon row")
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating coupon rows")
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}

// UpdateStatus transitions a coupon's lifecycle status.
func (r *couponRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.CouponStatus) error {
	query := `UPDATE coupons SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to update coupon status")
		return fmt.Errorf("failed to update coupon status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	r.logger.Debug().
		Str("coupon_id", id.String()).
		Str("status", string(status)).
		Msg("coupon status updated")
	return nil
}

// IncrementIssued bumps the issued counter when a customer saves the coupon.
func (r *couponRepository) IncrementIssued(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET stats_issued = stats_issued + 1, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to increment issued count")
		return fmt.Errorf("failed to increment issued count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// IncrementRedeemed bumps the redeemed counter and recomputes the redemption
// rate within the provided transaction. The rate divides by the issued count
// as of the same statement; a zero issued count leaves the rate at zero.
func (r *couponRepository) IncrementRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET stats_redeemed = stats_redeemed + 1,
		    stats_redemption_rate = CASE
		        WHEN stats_issued > 0 THEN (stats_redeemed + 1)::float8 / stats_issued
		        ELSE 0
		    END,
		    updated_at = now()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", id.String()).Msg("failed to increment redeemed count")
		return fmt.Errorf("failed to increment redeemed count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}
