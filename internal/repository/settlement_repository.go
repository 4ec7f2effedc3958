package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coupon-day/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrDuplicatePeriod signals that another writer created the settlement
// row for the same (partnership, period) first. Callers re-fetch.
var ErrDuplicatePeriod = errors.New("settlement already exists for this period")

const settlementColumns = `
	id, partnership_id, period_start, period_end, total_redemptions,
	total_discount_amount, commission_per_unit, total_commission, status, paid_at, created_at
`

// settlementRepository implements the SettlementRepository interface using PostgreSQL.
type settlementRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSettlementRepository creates a new PostgreSQL-backed settlement repository.
func NewSettlementRepository(pool *pgxpool.Pool, logger zerolog.Logger) SettlementRepository {
	return &settlementRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "settlement").Logger(),
	}
}

func scanSettlement(row pgx.Row) (*model.CrossCouponSettlement, error) {
	var s model.CrossCouponSettlement
	err := row.Scan(
		&s.ID, &s.PartnershipID, &s.PeriodStart, &s.PeriodEnd, &s.TotalRedemptions,
		&s.TotalDiscountAmount, &s.CommissionPerUnit, &s.TotalCommission,
		&s.Status, &s.PaidAt, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a settlement row. A unique violation on
// (partnership_id, period_start) is reported as ErrDuplicatePeriod.
func (r *settlementRepository) Create(ctx context.Context, settlement *model.CrossCouponSettlement) error {
	query := `
		INSERT INTO cross_coupon_settlements (
			id, partnership_id, period_start, period_end, total_redemptions,
			total_discount_amount, commission_per_unit, total_commission, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		settlement.ID, settlement.PartnershipID, settlement.PeriodStart, settlement.PeriodEnd,
		settlement.TotalRedemptions, settlement.TotalDiscountAmount,
		settlement.CommissionPerUnit, settlement.TotalCommission,
		settlement.Status, settlement.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePeriod
		}
		r.logger.Error().Err(err).
			Str("partnership_id", settlement.PartnershipID.String()).
			Msg("failed to create settlement")
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	r.logger.Debug().Str("settlement_id", settlement.ID.String()).Msg("settlement created successfully")
	return nil
}

// GetByID retrieves a settlement by its ID.
func (r *settlementRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CrossCouponSettlement, error) {
	query := `SELECT ` + settlementColumns + ` FROM cross_coupon_settlements WHERE id = $1`

	s, err := scanSettlement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("settlement_id", id.String()).Msg("settlement not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("settlement_id", id.String()).Msg("failed to query settlement")
		return nil, fmt.Errorf("failed to query settlement: %w", err)
	}

	return s, nil
}

// FindByPeriod retrieves a partnership's settlement for the month
// starting at periodStart, or nil when none exists yet.
func (r *settlementRepository) FindByPeriod(ctx context.Context, partnershipID uuid.UUID, periodStart time.Time) (*model.CrossCouponSettlement, error) {
	query := `
		SELECT ` + settlementColumns + `
		FROM cross_coupon_settlements
		WHERE partnership_id = $1 AND period_start = $2
	`

	s, err := scanSettlement(r.pool.QueryRow(ctx, query, partnershipID, periodStart))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Str("partnership_id", partnershipID.String()).
			Msg("failed to query settlement by period")
		return nil, fmt.Errorf("failed to query settlement by period: %w", err)
	}

	return s, nil
}

// UpdateStatus transitions a settlement's status, stamping paidAt when provided.
func (r *settlementRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SettlementStatus, paidAt *time.Time) error {
	query := `
		UPDATE cross_coupon_settlements
		SET status = $2, paid_at = COALESCE($3, paid_at)
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, paidAt)
	if err != nil {
		r.logger.Error().Err(err).Str("settlement_id", id.String()).Msg("failed to update settlement status")
		return fmt.Errorf("failed to update settlement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSettlementNotFound
	}

	r.logger.Debug().
		Str("settlement_id", id.String()).
		Str("status", string(status)).
		Msg("settlement status updated")
	return nil
}
