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

const redemptionColumns = `
	id, coupon_id, saved_coupon_id, customer_id, store_id,
	order_amount, discount_amount, final_amount, order_items, redeemed_at
`

// redemptionRepository implements the RedemptionRepository interface using PostgreSQL.
type redemptionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRedemptionRepository creates a new PostgreSQL-backed redemption repository.
func NewRedemptionRepository(pool *pgxpool.Pool, logger zerolog.Logger) RedemptionRepository {
	return &redemptionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "redemption").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *redemptionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a redemption within the provided transaction.
func (r *redemptionRepository) Create(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error {
	query := `
		INSERT INTO redemptions (
			id, coupon_id, saved_coupon_id, customer_id, store_id,
			order_amount, discount_amount, final_amount, order_items, redeemed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		redemption.ID, redemption.CouponID, redemption.SavedCouponID,
		redemption.CustomerID, redemption.StoreID,
		redemption.OrderAmount, redemption.DiscountAmount, redemption.FinalAmount,
		redemption.OrderItems, redemption.RedeemedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("redemption_id", redemption.ID.String()).
			Str("coupon_id", redemption.CouponID.String()).
			Msg("failed to create redemption")
		return fmt.Errorf("failed to create redemption: %w", err)
	}

	r.logger.Debug().Str("redemption_id", redemption.ID.String()).Msg("redemption created successfully")
	return nil
}

// RedemptionCountOn counts redemptions of a coupon since local midnight
// of day's calendar day. The caller supplies the reference instant so an
// evaluation at an injected time counts against that day, not the wall
// clock's.
func (r *redemptionRepository) RedemptionCountOn(ctx context.Context, couponID uuid.UUID, day time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM redemptions
		WHERE coupon_id = $1 AND redeemed_at >= $2
	`

	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var count int
	if err := r.pool.QueryRow(ctx, query, couponID, midnight).Scan(&count); err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to count today's redemptions")
		return 0, fmt.Errorf("failed to count today's redemptions: %w", err)
	}

	return count, nil
}

// CustomerRedemptionCount counts one customer's redemptions of a coupon.
func (r *redemptionRepository) CustomerRedemptionCount(ctx context.Context, couponID, customerID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM redemptions
		WHERE coupon_id = $1 AND customer_id = $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, couponID, customerID).Scan(&count); err != nil {
		r.logger.Error().Err(err).
			Str("coupon_id", couponID.String()).
			Str("customer_id", customerID.String()).
			Msg("failed to count customer redemptions")
		return 0, fmt.Errorf("failed to count customer redemptions: %w", err)
	}

	return count, nil
}

// UpsertDailyStats increments today's stats row for a coupon within the
// provided transaction. The increment happens inside the database so
// concurrent redemptions never lose updates.
func (r *redemptionRepository) UpsertDailyStats(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, day time.Time, discountAmount int64) error {
	query := `
		INSERT INTO coupon_daily_stats (id, coupon_id, date, redeemed_count, total_discount_amount)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (coupon_id, date) DO UPDATE
		SET redeemed_count = coupon_daily_stats.redeemed_count + 1,
		    total_discount_amount = coupon_daily_stats.total_discount_amount + EXCLUDED.total_discount_amount
	`

	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	_, err := tx.Exec(ctx, query, uuid.New(), couponID, date, discountAmount)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_id", couponID.String()).Msg("failed to upsert daily stats")
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}

	return nil
}

// ListByStore returns a store's redemption history, newest first, along
// with the total matching count.
func (r *redemptionRepository) ListByStore(ctx context.Context, storeID uuid.UUID, filter model.RedemptionFilter) ([]model.Redemption, int, error) {
	where := ` WHERE store_id = $1`
	args := []any{storeID}

	if filter.CouponID != nil {
		args = append(args, *filter.CouponID)
		where += fmt.Sprintf(" AND coupon_id = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		where += fmt.Sprintf(" AND redeemed_at >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		where += fmt.Sprintf(" AND redeemed_at <= $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM redemptions` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("store_id", storeID.String()).Msg("failed to count redemptions")
		return nil, 0, fmt.Errorf("failed to count redemptions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT ` + redemptionColumns + ` FROM redemptions` + where +
		fmt.Sprintf(" ORDER BY redeemed_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("store_id", storeID.String()).Msg("failed to query redemptions")
		return nil, 0, fmt.Errorf("failed to query redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []model.Redemption
	for rows.Next() {
		var rec model.Redemption
		err := rows.Scan(
			&rec.ID, &rec.CouponID, &rec.SavedCouponID, &rec.CustomerID, &rec.StoreID,
			&rec.OrderAmount, &rec.DiscountAmount, &rec.FinalAmount, &rec.OrderItems, &rec.RedeemedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan redemption row")
			return nil, 0, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, rec)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating redemption rows")
		return nil, 0, fmt.Errorf("error iterating redemptions: %w", err)
	}

	return redemptions, total, nil
}
