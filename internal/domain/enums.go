package domain

// UserRole gates access to the admin surface
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderStatus represents the fulfillment state of an order
type OrderStatus string

const (
	// PROCESSING - paid, awaiting fulfillment/shipment
	OrderStatusProcessing OrderStatus = "processing"
	// SHIPPED - fulfillment provider handed the parcel to a carrier
	OrderStatusShipped OrderStatus = "shipped"
	// DELIVERED - carrier confirmed delivery
	OrderStatusDelivered OrderStatus = "delivered"
	// CANCELLED - order cancelled before fulfillment
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}
