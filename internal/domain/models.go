package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a storefront account. Authentication resolves a bearer
// API key to a user; Role gates the admin surface.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Role         UserRole
	APIKeyHash   string
	APIKeyLookup string // SHA256(apiKey) hex for fast lookup
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Order represents a customer order. Orders are created in pending state at
// checkout initiation, marked paid by payment confirmation, linked to a
// fulfillment order by the reconciler, and updated by provider webhooks.
// Orders are never deleted.
type Order struct {
	ID                     uuid.UUID
	UserID                 uuid.UUID
	Status                 OrderStatus
	PaymentStatus          PaymentStatus
	ShippingAddress        map[string]interface{} // JSONB
	TotalMinor             int64                  // order total in minor currency units
	CheckoutSessionID      *string
	FulfillmentOrderID     *string
	FulfillmentOrderNumber *string
	FulfillmentError       *string
	TrackingNumber         *string
	TrackingCarrier        *string
	ShippedAt              *time.Time
	DeliveredAt            *time.Time
	EstimatedDeliveryAt    *time.Time
	EmailSent              bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// OrderItem is a line item snapshot: unit price and name are copied from the
// product at checkout time so later product edits don't rewrite history.
type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Name      string
	UnitPrice float64
	Quantity  int
	CreatedAt time.Time
}

// Product represents a sellable product. Price is the local, independently
// computed price; it is never taken from client-submitted carts.
// Invariant: Stock <= 0 implies InStock == false.
type Product struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Description string
	Image       *string
	Price       float64
	Stock       int
	InStock     bool
	CJ          *CJData
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CJData links a product to the fulfillment provider's catalog.
type CJData struct {
	ProductID      string
	VariantID      string
	SKU            string
	Variants       []map[string]interface{} // JSONB
	WarehouseID    *string
	LastUpdatedAt  *time.Time
	LastUpdateType *string
}

// PasswordReset stores a one-way hashed reset token. A token is single-use
// and expires: verification requires Used == false and ExpiresAt > now.
type PasswordReset struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// CachedToken is a persisted external bearer token keyed by service name,
// shared across service instances so each one doesn't re-authenticate.
type CachedToken struct {
	Service            string
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
