package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/zahrastore/storeapi/internal/domain"
)

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	// MarkPaid sets paymentStatus=paid, status=processing and resets emailSent.
	MarkPaid(ctx context.Context, id uuid.UUID) error
	SetEmailSent(ctx context.Context, id uuid.UUID, sent bool) error
	SetCheckoutSessionID(ctx context.Context, id uuid.UUID, sessionID string) error
	// SetFulfillmentOrder claims the order for fulfillment: it writes the
	// fulfillment order id/number and clears any recorded fulfillment error,
	// but only if no fulfillment order id is currently set. Returns false
	// when another caller already claimed the order.
	SetFulfillmentOrder(ctx context.Context, id uuid.UUID, fulfillmentOrderID, fulfillmentOrderNumber string) (bool, error)
	SetFulfillmentError(ctx context.Context, id uuid.UUID, message string) error
	UpdateTracking(ctx context.Context, id uuid.UUID, carrier, trackingNumber *string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, at time.Time) error
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
}

// OrderItemRepository defines order line item data access methods
type OrderItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.OrderItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderItem, error)
}

// ProductRepository defines product data access methods
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetByCJProductID(ctx context.Context, cjProductID string) (*domain.Product, error)
	GetByCJVariantID(ctx context.Context, cjVariantID string) (*domain.Product, error)
	GetByCJSKU(ctx context.Context, sku string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	// ApplyProductUpdate overwrites only the given fields and stamps the
	// CJ last-update metadata. Nil pointers leave stored values untouched.
	ApplyProductUpdate(ctx context.Context, id uuid.UUID, upd domain.ProductFieldUpdate) error
	// ApplyStockUpdate sets the absolute stock level (never increments) and
	// the derived inStock flag; warehouseID is recorded when present.
	ApplyStockUpdate(ctx context.Context, id uuid.UUID, stock int, inStock bool, warehouseID *string) error
	List(ctx context.Context, limit, offset int) ([]*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository defines user data access methods
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByAPIKeyLookup(ctx context.Context, lookup string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// PasswordResetRepository defines reset token data access methods
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// TokenCacheRetention is how long a cached token row is kept past its stored
// access token expiry before the boot-time sweep removes it.
const TokenCacheRetention = 48 * time.Hour

// TokenCacheRepository defines cached external token data access methods
type TokenCacheRepository interface {
	Get(ctx context.Context, service string) (*domain.CachedToken, error)
	Upsert(ctx context.Context, token *domain.CachedToken) error
	// PurgeExpired removes entries whose access token expired more than the
	// retention window ago.
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

// Repositories aggregates all repositories
type Repositories struct {
	Order         OrderRepository
	OrderItem     OrderItemRepository
	Product       ProductRepository
	User          UserRepository
	PasswordReset PasswordResetRepository
	TokenCache    TokenCacheRepository
}
