package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Order:         NewOrderRepository(db, logger),
		OrderItem:     NewOrderItemRepository(db, logger),
		Product:       NewProductRepository(db, logger),
		User:          NewUserRepository(db, logger),
		PasswordReset: NewPasswordResetRepository(db, logger),
		TokenCache:    NewTokenCacheRepository(db, logger),
	}
}
