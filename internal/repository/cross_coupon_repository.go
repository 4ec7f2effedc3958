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

const crossCouponColumns = `
	id, partnership_id, provider_store_id, name, description,
	discount_type, discount_value, redemption_window,
	available_time_start, available_time_end, daily_limit, is_active,
	stats_selected, stats_redeemed, created_at, updated_at
`

// crossCouponRepository implements the CrossCouponRepository interface using PostgreSQL.
type crossCouponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCrossCouponRepository creates a new PostgreSQL-backed cross-coupon repository.
func NewCrossCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CrossCouponRepository {
	return &crossCouponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cross_coupon").Logger(),
	}
}

func scanCrossCoupon(row pgx.Row) (*model.CrossCoupon, error) {
	var c model.CrossCoupon
	err := row.Scan(
		&c.ID, &c.PartnershipID, &c.ProviderStoreID, &c.Name, &c.Description,
		&c.DiscountType, &c.DiscountValue, &c.RedemptionWindow,
		&c.AvailableTimeStart, &c.AvailableTimeEnd, &c.DailyLimit, &c.IsActive,
		&c.StatsSelected, &c.StatsRedeemed, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new cross coupon.
func (r *crossCouponRepository) Create(ctx context.Context, coupon *model.CrossCoupon) error {
	query := `
		INSERT INTO cross_coupons (
			id, partnership_id, provider_store_id, name, description,
			discount_type, discount_value, redemption_window,
			available_time_start, available_time_end, daily_limit, is_active,
			stats_selected, stats_redeemed, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		coupon.ID, coupon.PartnershipID, coupon.ProviderStoreID, coupon.Name, coupon.Description,
		coupon.DiscountType, coupon.DiscountValue, coupon.RedemptionWindow,
		coupon.AvailableTimeStart, coupon.AvailableTimeEnd, coupon.DailyLimit, coupon.IsActive,
		coupon.StatsSelected, coupon.StatsRedeemed, coupon.CreatedAt, coupon.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cross_coupon_id", coupon.ID.String()).Msg("failed to create cross coupon")
		return fmt.Errorf("failed to create cross coupon: %w", err)
	}

	r.logger.Debug().Str("cross_coupon_id", coupon.ID.String()).Msg("cross coupon created successfully")
	return nil
}

// GetByID retrieves a cross coupon by its ID.
func (r *crossCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CrossCoupon, error) {
	query := `SELECT ` + crossCouponColumns + ` FROM cross_coupons WHERE id = $1`

	c, err := scanCrossCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("cross_coupon_id", id.String()).Msg("cross coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("cross_coupon_id", id.String()).Msg("failed to query cross coupon")
		return nil, fmt.Errorf("failed to query cross coupon: %w", err)
	}

	return c, nil
}

// Update persists edits to a cross coupon's offer fields and active flag.
func (r *crossCouponRepository) Update(ctx context.Context, coupon *model.CrossCoupon) error {
	query := `
		UPDATE cross_coupons
		SET name = $2, description = $3, discount_type = $4, discount_value = $5,
		    redemption_window = $6, available_time_start = $7, available_time_end = $8,
		    daily_limit = $9, is_active = $10, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		coupon.ID, coupon.Name, coupon.Description, coupon.DiscountType, coupon.DiscountValue,
		coupon.RedemptionWindow, coupon.AvailableTimeStart, coupon.AvailableTimeEnd,
		coupon.DailyLimit, coupon.IsActive,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cross_coupon_id", coupon.ID.String()).Msg("failed to update cross coupon")
		return fmt.Errorf("failed to update cross coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCrossCouponNotFound
	}

	return nil
}

// ListByPartnership returns a partnership's cross coupons, oldest first.
func (r *crossCouponRepository) ListByPartnership(ctx context.Context, partnershipID uuid.UUID, activeOnly bool) ([]model.CrossCoupon, error) {
	query := `SELECT ` + crossCouponColumns + ` FROM cross_coupons WHERE partnership_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, partnershipID)
	if err != nil {
		r.logger.Error().Err(err).Str("partnership_id", partnershipID.String()).Msg("failed to query cross coupons")
		return nil, fmt.Errorf("failed to query cross coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.CrossCoupon
	for rows.Next() {
		c, err := scanCrossCoupon(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cross coupon row")
			return nil, fmt.Errorf("failed to scan cross coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cross coupon rows")
		return nil, fmt.Errorf("error iterating cross coupons: %w", err)
	}

	return coupons, nil
}

// CountSelectionsSince counts tokens that selected a cross coupon at or
// after the given instant, within the provided transaction. Backing the
// daily selection cap, it runs inside the selection transaction so two
// concurrent selections serialise on the token row locks.
func (r *crossCouponRepository) CountSelectionsSince(ctx context.Context, tx pgx.Tx, crossCouponID uuid.UUID, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM meal_tokens
		WHERE selected_cross_coupon_id = $1 AND selected_at >= $2
	`

	var count int
	if err := tx.QueryRow(ctx, query, crossCouponID, since).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("cross_coupon_id", crossCouponID.String()).Msg("failed to count selections")
		return 0, fmt.Errorf("failed to count selections: %w", err)
	}

	return count, nil
}

// IncrementSelected bumps the selection counter within the transaction.
func (r *crossCouponRepository) IncrementSelected(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE cross_coupons
		SET stats_selected = stats_selected + 1, updated_at = now()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		r.logger.Error().Err(err).Str("cross_coupon_id", id.String()).Msg("failed to increment selected count")
		return fmt.Errorf("failed to increment selected count: %w", err)
	}

	return nil
}

// IncrementRedeemed bumps the redemption counter within the transaction.
func (r *crossCouponRepository) IncrementRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE cross_coupons
		SET stats_redeemed = stats_redeemed + 1, updated_at = now()
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		r.logger.Error().Err(err).Str("cross_coupon_id", id.String()).Msg("failed to increment redeemed count")
		return fmt.Errorf("failed to increment redeemed count: %w", err)
	}

	return nil
}
