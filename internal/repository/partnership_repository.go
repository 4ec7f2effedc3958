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

const partnershipColumns = `
	id, distributor_store_id, provider_store_id, status, commission_per_redemption,
	requested_by, requested_at, responded_at, terminated_at
`

// partnershipRepository implements the PartnershipRepository interface using PostgreSQL.
type partnershipRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPartnershipRepository creates a new PostgreSQL-backed partnership repository.
func NewPartnershipRepository(pool *pgxpool.Pool, logger zerolog.Logger) PartnershipRepository {
	return &partnershipRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "partnership").Logger(),
	}
}

func scanPartnership(row pgx.Row) (*model.Partnership, error) {
	var p model.Partnership
	err := row.Scan(
		&p.ID, &p.DistributorStoreID, &p.ProviderStoreID, &p.Status, &p.CommissionPerRedemption,
		&p.RequestedBy, &p.RequestedAt, &p.RespondedAt, &p.TerminatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new partnership request.
func (r *partnershipRepository) Create(ctx context.Context, partnership *model.Partnership) error {
	query := `
		INSERT INTO partnerships (
			id, distributor_store_id, provider_store_id, status, commission_per_redemption,
			requested_by, requested_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		partnership.ID, partnership.DistributorStoreID, partnership.ProviderStoreID,
		partnership.Status, partnership.CommissionPerRedemption,
		partnership.RequestedBy, partnership.RequestedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("partnership_id", partnership.ID.String()).Msg("failed to create partnership")
		return fmt.Errorf("failed to create partnership: %w", err)
	}

	r.logger.Debug().Str("partnership_id", partnership.ID.String()).Msg("partnership created successfully")
	return nil
}

// GetByID retrieves a partnership by its ID.
func (r *partnershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Partnership, error) {
	query := `SELECT ` + partnershipColumns + ` FROM partnerships WHERE id = $1`

	p, err := scanPartnership(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("partnership_id", id.String()).Msg("partnership not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("partnership_id", id.String()).Msg("failed to query partnership")
		return nil, fmt.Errorf("failed to query partnership: %w", err)
	}

	return p, nil
}

// FindBetween returns the partnership edge between two stores in either
// direction, excluding terminated edges, or nil when none exists.
func (r *partnershipRepository) FindBetween(ctx context.Context, storeA, storeB uuid.UUID) (*model.Partnership, error) {
	query := `
		SELECT ` + partnershipColumns + `
		FROM partnerships
		WHERE ((distributor_store_id = $1 AND provider_store_id = $2)
		   OR  (distributor_store_id = $2 AND provider_store_id = $1))
		  AND status <> $3
		LIMIT 1
	`

	p, err := scanPartnership(r.pool.QueryRow(ctx, query, storeA, storeB, model.PartnershipTerminated))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Msg("failed to query partnership between stores")
		return nil, fmt.Errorf("failed to query partnership between stores: %w", err)
	}

	return p, nil
}

// ListByStore returns partnerships a store takes part in, on either side.
func (r *partnershipRepository) ListByStore(ctx context.Context, storeID uuid.UUID, status *model.PartnershipStatus) ([]model.Partnership, error) {
	query := `
		SELECT ` + partnershipColumns + `
		FROM partnerships
		WHERE (distributor_store_id = $1 OR provider_store_id = $1)
	`
	args := []any{storeID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY requested_at DESC`

	return r.list(ctx, query, args...)
}

// ListActive returns all active partnerships.
func (r *partnershipRepository) ListActive(ctx context.Context) ([]model.Partnership, error) {
	query := `
		SELECT ` + partnershipColumns + `
		FROM partnerships
		WHERE status = $1
		ORDER BY requested_at
	`

	return r.list(ctx, query, model.PartnershipActive)
}

func (r *partnershipRepository) list(ctx context.Context, query string, args ...any) ([]model.Partnership, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query partnerships")
		return nil, fmt.Errorf("failed to query partnerships: %w", err)
	}
	defer rows.Close()

	var partnerships []model.Partnership
	for rows.Next() {
		p, err := scanPartnership(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan partnership row")
			return nil, fmt.Errorf("failed to scan partnership: %w", err)
		}
		partnerships = append(partnerships, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating partnership rows")
		return nil, fmt.Errorf("error iterating partnerships: %w", err)
	}

	return partnerships, nil
}

// UpdateStatus records a status transition, stamping respondedAt or
// terminatedAt when provided.
func (r *partnershipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PartnershipStatus, respondedAt, terminatedAt *time.Time) error {
	query := `
		UPDATE partnerships
		SET status = $2,
		    responded_at = COALESCE($3, responded_at),
		    terminated_at = COALESCE($4, terminated_at)
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, respondedAt, terminatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("partnership_id", id.String()).Msg("failed to update partnership status")
		return fmt.Errorf("failed to update partnership status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPartnershipNotFound
	}

	r.logger.Debug().
		Str("partnership_id", id.String()).
		Str("status", string(status)).
		Msg("partnership status updated")
	return nil
}
