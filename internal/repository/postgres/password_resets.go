package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/pkg/errors"
)

type passwordResetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *sql.DB, logger *zap.Logger) *passwordResetRepository {
	return &passwordResetRepository{
		db:     db,
		logger: logger,
	}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	query := `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if reset.ID == uuid.Nil {
		reset.ID = uuid.New()
	}
	if reset.CreatedAt.IsZero() {
		reset.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		reset.ID,
		reset.UserID,
		reset.TokenHash,
		reset.ExpiresAt,
		reset.Used,
		reset.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create password reset", zap.Error(err))
		return err
	}

	return nil
}

func (r *passwordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, used, created_at
		FROM password_resets
		WHERE token_hash = $1
		LIMIT 1
	`

	var reset domain.PasswordReset
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&reset.ID,
		&reset.UserID,
		&reset.TokenHash,
		&reset.ExpiresAt,
		&reset.Used,
		&reset.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "password_reset", ID: "token"}
	}
	if err != nil {
		r.logger.Error("Failed to get password reset by token hash", zap.Error(err))
		return nil, err
	}

	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_resets SET used = true WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to mark password reset used", zap.Error(err))
		return err
	}
	return nil
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE expires_at < $1`, time.Now())
	if err != nil {
		r.logger.Error("Failed to delete expired password resets", zap.Error(err))
		return 0, err
	}
	return res.RowsAffected()
}
