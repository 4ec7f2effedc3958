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

// customerRepository implements the CustomerRepository interface using PostgreSQL.
type customerRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCustomerRepository creates a new PostgreSQL-backed customer repository.
func NewCustomerRepository(pool *pgxpool.Pool, logger zerolog.Logger) CustomerRepository {
	return &customerRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "customer").Logger(),
	}
}

// GetByID retrieves a customer by its ID.
func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	query := `
		SELECT id, nickname, stats_coupons_used, stats_total_saved_amount, created_at
		FROM customers
		WHERE id = $1
	`

	var c model.Customer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Nickname, &c.StatsCouponsUsed, &c.StatsTotalSavedAmount, &c.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("customer_id", id.String()).Msg("customer not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to query customer")
		return nil, fmt.Errorf("failed to query customer: %w", err)
	}

	return &c, nil
}

// IncrementCouponStats bumps a customer's lifetime used-count and
// saved-amount within the provided transaction.
func (r *customerRepository) IncrementCouponStats(ctx context.Context, tx pgx.Tx, id uuid.UUID, savedAmount int64) error {
	query := `
		UPDATE customers
		SET stats_coupons_used = stats_coupons_used + 1,
		    stats_total_saved_amount = stats_total_saved_amount + $2
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, savedAmount)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", id.String()).Msg("failed to increment customer stats")
		return fmt.Errorf("failed to increment customer stats: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCustomerNotFound
	}

	return nil
}
