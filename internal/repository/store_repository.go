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

// storeRepository implements the StoreRepository interface using PostgreSQL.
type storeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStoreRepository creates a new PostgreSQL-backed store repository.
func NewStoreRepository(pool *pgxpool.Pool, logger zerolog.Logger) StoreRepository {
	return &storeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "store").Logger(),
	}
}

// GetByID retrieves a store by its ID.
func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	query := `
		SELECT id, name, category, address, latitude, longitude, status, created_at
		FROM stores
		WHERE id = $1
	`

	var s model.Store
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Category, &s.Address, &s.Latitude, &s.Longitude, &s.Status, &s.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("store_id", id.String()).Msg("store not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("store_id", id.String()).Msg("failed to query store")
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	return &s, nil
}

// ListActiveExcluding returns active stores outside the given category
// and ID set. Distance and scoring happen in the service layer; the
// query only narrows the candidate pool.
func (r *storeRepository) ListActiveExcluding(ctx context.Context, excludeIDs []uuid.UUID, excludeCategory string, limit int) ([]model.Store, error) {
	query := `
		SELECT id, name, category, address, latitude, longitude, status, created_at
		FROM stores
		WHERE status = $1
		  AND category <> $2
		  AND NOT (id = ANY($3))
		LIMIT $4
	`

	if excludeIDs == nil {
		excludeIDs = []uuid.UUID{}
	}

	rows, err := r.pool.Query(ctx, query, model.StoreActive, excludeCategory, excludeIDs, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query candidate stores")
		return nil, fmt.Errorf("failed to query candidate stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		var s model.Store
		err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Address, &s.Latitude, &s.Longitude, &s.Status, &s.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan store row")
			return nil, fmt.Errorf("failed to scan store: %w", err)
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating store rows")
		return nil, fmt.Errorf("error iterating stores: %w", err)
	}

	return stores, nil
}
