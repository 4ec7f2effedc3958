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

const tokenColumns = `
	id, token_code, partnership_id, distributor_store_id, customer_id,
	selected_cross_coupon_id, status, issued_at, expires_at, selected_at, redeemed_at
`

// tokenRepository implements the TokenRepository interface using PostgreSQL.
type tokenRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTokenRepository creates a new PostgreSQL-backed meal-token repository.
func NewTokenRepository(pool *pgxpool.Pool, logger zerolog.Logger) TokenRepository {
	return &tokenRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "token").Logger(),
	}
}

func scanToken(row pgx.Row) (*model.MealToken, error) {
	var t model.MealToken
	err := row.Scan(
		&t.ID, &t.TokenCode, &t.PartnershipID, &t.DistributorStoreID, &t.CustomerID,
		&t.SelectedCrossCouponID, &t.Status, &t.IssuedAt, &t.ExpiresAt, &t.SelectedAt, &t.RedeemedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// BeginTx starts a new database transaction.
func (r *tokenRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Create inserts a newly issued token.
func (r *tokenRepository) Create(ctx context.Context, token *model.MealToken) error {
	query := `
		INSERT INTO meal_tokens (
			id, token_code, partnership_id, distributor_store_id, customer_id,
			status, issued_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID, token.TokenCode, token.PartnershipID, token.DistributorStoreID,
		token.CustomerID, token.Status, token.IssuedAt, token.ExpiresAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("token_code", token.TokenCode).Msg("failed to create token")
		return fmt.Errorf("failed to create token: %w", err)
	}

	r.logger.Debug().Str("token_code", token.TokenCode).Msg("token created successfully")
	return nil
}

// GetByCode retrieves a token by its 8-character code.
func (r *tokenRepository) GetByCode(ctx context.Context, code string) (*model.MealToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM meal_tokens WHERE token_code = $1`

	token, err := scanToken(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("token_code", code).Msg("token not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("token_code", code).Msg("failed to query token")
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	return token, nil
}

// GetForUpdate re-reads a token inside the transaction with a row lock,
// so status transitions are decided against current state.
func (r *tokenRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.MealToken, error) {
	query := `SELECT ` + tokenColumns + ` FROM meal_tokens WHERE id = $1 FOR UPDATE`

	token, err := scanToken(tx.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("token_id", id.String()).Msg("failed to lock token row")
		return nil, fmt.Errorf("failed to lock token row: %w", err)
	}

	return token, nil
}

// MarkSelected records a cross-coupon selection within the transaction.
func (r *tokenRepository) MarkSelected(ctx context.Context, tx pgx.Tx, id, crossCouponID uuid.UUID, customerID *uuid.UUID, selectedAt time.Time) error {
	query := `
		UPDATE meal_tokens
		SET status = $2,
		    selected_cross_coupon_id = $3,
		    customer_id = COALESCE($4, customer_id),
		    selected_at = $5
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, id, model.TokenSelected, crossCouponID, customerID, selectedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("token_id", id.String()).Msg("failed to mark token selected")
		return fmt.Errorf("failed to mark token selected: %w", err)
	}

	return nil
}

// MarkRedeemed finalises a token within the transaction.
func (r *tokenRepository) MarkRedeemed(ctx context.Context, tx pgx.Tx, id uuid.UUID, redeemedAt time.Time) error {
	query := `
		UPDATE meal_tokens
		SET status = $2, redeemed_at = $3
		WHERE id = $1
	`

	_, err := tx.Exec(ctx, query, id, model.TokenRedeemed, redeemedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("token_id", id.String()).Msg("failed to mark token redeemed")
		return fmt.Errorf("failed to mark token redeemed: %w", err)
	}

	return nil
}

// MarkExpired lazily flips a single token to expired. The status guard
// keeps redeemed tokens immutable.
func (r *tokenRepository) MarkExpired(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE meal_tokens
		SET status = $2
		WHERE id = $1 AND status IN ($3, $4)
	`

	_, err := r.pool.Exec(ctx, query, id, model.TokenExpired, model.TokenIssued, model.TokenSelected)
	if err != nil {
		r.logger.Error().Err(err).Str("token_id", id.String()).Msg("failed to mark token expired")
		return fmt.Errorf("failed to mark token expired: %w", err)
	}

	return nil
}

// ExpireOverdue flips every overdue issued or selected token to expired
// and returns how many rows were affected.
func (r *tokenRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE meal_tokens
		SET status = $1
		WHERE status IN ($2, $3) AND expires_at < $4
	`

	tag, err := r.pool.Exec(ctx, query, model.TokenExpired, model.TokenIssued, model.TokenSelected, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to expire overdue tokens")
		return 0, fmt.Errorf("failed to expire overdue tokens: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ListByCustomer returns a customer's tokens, newest first, with the
// total matching count.
func (r *tokenRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, status *model.TokenStatus, limit, offset int) ([]model.MealToken, int, error) {
	where := ` WHERE customer_id = $1`
	args := []any{customerID}
	if status != nil {
		args = append(args, *status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM meal_tokens` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to count tokens")
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, offset)
	query := `SELECT ` + tokenColumns + ` FROM meal_tokens` + where +
		fmt.Sprintf(" ORDER BY issued_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("customer_id", customerID.String()).Msg("failed to query tokens")
		return nil, 0, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	tokens, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return tokens, total, nil
}

// ListRedeemedInPeriod returns a partnership's tokens redeemed within
// [from, to) that carry a selected cross coupon.
func (r *tokenRepository) ListRedeemedInPeriod(ctx context.Context, partnershipID uuid.UUID, from, to time.Time) ([]model.MealToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM meal_tokens
		WHERE partnership_id = $1
		  AND status = $2
		  AND selected_cross_coupon_id IS NOT NULL
		  AND redeemed_at >= $3 AND redeemed_at < $4
		ORDER BY redeemed_at
	`

	rows, err := r.pool.Query(ctx, query, partnershipID, model.TokenRedeemed, from, to)
	if err != nil {
		r.logger.Error().Err(err).Str("partnership_id", partnershipID.String()).Msg("failed to query redeemed tokens")
		return nil, fmt.Errorf("failed to query redeemed tokens: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *tokenRepository) collect(rows pgx.Rows) ([]model.MealToken, error) {
	var tokens []model.MealToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan token row")
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, *t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating token rows")
		return nil, fmt.Errorf("error iterating tokens: %w", err)
	}

	return tokens, nil
}
