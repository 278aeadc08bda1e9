package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/pkg/errors"
)

type tokenCacheRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTokenCacheRepository creates a new token cache repository
func NewTokenCacheRepository(db *sql.DB, logger *zap.Logger) *tokenCacheRepository {
	return &tokenCacheRepository{
		db:     db,
		logger: logger,
	}
}

func (r *tokenCacheRepository) Get(ctx context.Context, service string) (*domain.CachedToken, error) {
	query := `
		SELECT service, access_token, access_token_expiry, refresh_token,
			refresh_token_expiry, created_at, updated_at
		FROM cached_tokens
		WHERE service = $1
	`

	var token domain.CachedToken
	err := r.db.QueryRowContext(ctx, query, service).Scan(
		&token.Service,
		&token.AccessToken,
		&token.AccessTokenExpiry,
		&token.RefreshToken,
		&token.RefreshTokenExpiry,
		&token.CreatedAt,
		&token.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "cached_token", ID: service}
	}
	if err != nil {
		r.logger.Error("Failed to get cached token", zap.Error(err), zap.String("service", service))
		return nil, err
	}

	return &token, nil
}

func (r *tokenCacheRepository) Upsert(ctx context.Context, token *domain.CachedToken) error {
	query := `
		INSERT INTO cached_tokens (service, access_token, access_token_expiry,
			refresh_token, refresh_token_expiry, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (service) DO UPDATE
		SET access_token = EXCLUDED.access_token,
			access_token_expiry = EXCLUDED.access_token_expiry,
			refresh_token = EXCLUDED.refresh_token,
			refresh_token_expiry = EXCLUDED.refresh_token_expiry,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		token.Service,
		token.AccessToken,
		token.AccessTokenExpiry,
		token.RefreshToken,
		token.RefreshTokenExpiry,
		time.Now(),
	)

	if err != nil {
		r.logger.Error("Failed to upsert cached token", zap.Error(err), zap.String("service", token.Service))
		return err
	}

	return nil
}

func (r *tokenCacheRepository) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cached_tokens WHERE access_token_expiry < $1`,
		time.Now().Add(-retention),
	)
	if err != nil {
		r.logger.Error("Failed to purge expired cached tokens", zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}
