package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/pkg/errors"
)

const orderColumns = `
	id, user_id, status, payment_status, shipping_address, total_minor,
	checkout_session_id, fulfillment_order_id, fulfillment_order_number,
	fulfillment_error, tracking_number, tracking_carrier,
	shipped_at, delivered_at, estimated_delivery_at, email_sent,
	created_at, updated_at`

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, status, payment_status, shipping_address, total_minor,
			checkout_session_id, email_sent, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusProcessing
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.PaymentStatusPending
	}

	shippingAddressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		shippingAddressJSON,
		order.TotalMinor,
		order.CheckoutSessionID,
		order.EmailSent,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err), zap.String("order_id", id.String()))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByCheckoutSessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	if sessionID == "" {
		return nil, &errors.ErrNotFound{Resource: "order", ID: "checkout_session_id empty"}
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE checkout_session_id = $1 LIMIT 1`

	order, err := r.scanOrder(r.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: sessionID}
	}
	if err != nil {
		r.logger.Error("Failed to get order by checkout session ID", zap.Error(err), zap.String("session_id", sessionID))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET payment_status = $2, status = $3, email_sent = false, updated_at = $4
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id, domain.PaymentStatusPaid, domain.OrderStatusProcessing, time.Now())
	if err != nil {
		r.logger.Error("Failed to mark order paid", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return r.requireRow(res, id)
}

func (r *orderRepository) SetEmailSent(ctx context.Context, id uuid.UUID, sent bool) error {
	query := `UPDATE orders SET email_sent = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, sent, time.Now())
	if err != nil {
		r.logger.Error("Failed to update email sent flag", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return r.requireRow(res, id)
}

func (r *orderRepository) SetCheckoutSessionID(ctx context.Context, id uuid.UUID, sessionID string) error {
	query := `UPDATE orders SET checkout_session_id = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, sessionID, time.Now())
	if err != nil {
		r.logger.Error("Failed to set checkout session ID", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return r.requireRow(res, id)
}

// requireRow turns an update that matched no row into a not-found error so
// writes against a vanished order never report success.
func (r *orderRepository) requireRow(res sql.Result, id uuid.UUID) error {
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return nil
}

// SetFulfillmentOrder claims the order with a single conditional update so
// concurrent retries cannot both create a downstream fulfillment order.
func (r *orderRepository) SetFulfillmentOrder(ctx context.Context, id uuid.UUID, fulfillmentOrderID, fulfillmentOrderNumber string) (bool, error) {
	query := `
		UPDATE orders
		SET fulfillment_order_id = $2, fulfillment_order_number = $3,
			fulfillment_error = NULL, updated_at = $4
		WHERE id = $1 AND fulfillment_order_id IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, id, fulfillmentOrderID, fulfillmentOrderNumber, time.Now())
	if err != nil {
		r.logger.Error("Failed to set fulfillment order", zap.Error(err), zap.String("order_id", id.String()))
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *orderRepository) SetFulfillmentError(ctx context.Context, id uuid.UUID, message string) error {
	query := `UPDATE orders SET fulfillment_error = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, message, time.Now())
	if err != nil {
		r.logger.Error("Failed to set fulfillment error", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return r.requireRow(res, id)
}

func (r *orderRepository) UpdateTracking(ctx context.Context, id uuid.UUID, carrier, trackingNumber *string) error {
	query := `
		UPDATE orders
		SET tracking_carrier = COALESCE($2, tracking_carrier),
			tracking_number = COALESCE($3, tracking_number),
			updated_at = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, carrier, trackingNumber, time.Now())
	if err != nil {
		r.logger.Error("Failed to update order tracking", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, at time.Time) error {
	var query string
	switch status {
	case domain.OrderStatusShipped:
		query = `UPDATE orders SET status = $2, shipped_at = $3, updated_at = $3 WHERE id = $1`
	case domain.OrderStatusDelivered:
		query = `UPDATE orders SET status = $2, delivered_at = $3, updated_at = $3 WHERE id = $1`
	default:
		query = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`
	}

	_, err := r.db.ExecContext(ctx, query, id, status, at)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err), zap.String("order_id", id.String()))
		return err
	}
	return nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders by user ID", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.collectOrders(rows)
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return r.collectOrders(rows)
}

func (r *orderRepository) collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var shippingAddressJSON []byte
	var checkoutSessionID sql.NullString
	var fulfillmentOrderID sql.NullString
	var fulfillmentOrderNumber sql.NullString
	var fulfillmentError sql.NullString
	var trackingNumber sql.NullString
	var trackingCarrier sql.NullString
	var shippedAt sql.NullTime
	var deliveredAt sql.NullTime
	var estimatedDeliveryAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&shippingAddressJSON,
		&order.TotalMinor,
		&checkoutSessionID,
		&fulfillmentOrderID,
		&fulfillmentOrderNumber,
		&fulfillmentError,
		&trackingNumber,
		&trackingCarrier,
		&shippedAt,
		&deliveredAt,
		&estimatedDeliveryAt,
		&order.EmailSent,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if checkoutSessionID.Valid {
		order.CheckoutSessionID = &checkoutSessionID.String
	}
	if fulfillmentOrderID.Valid {
		order.FulfillmentOrderID = &fulfillmentOrderID.String
	}
	if fulfillmentOrderNumber.Valid {
		order.FulfillmentOrderNumber = &fulfillmentOrderNumber.String
	}
	if fulfillmentError.Valid {
		order.FulfillmentError = &fulfillmentError.String
	}
	if trackingNumber.Valid {
		order.TrackingNumber = &trackingNumber.String
	}
	if trackingCarrier.Valid {
		order.TrackingCarrier = &trackingCarrier.String
	}
	if shippedAt.Valid {
		order.ShippedAt = &shippedAt.Time
	}
	if deliveredAt.Valid {
		order.DeliveredAt = &deliveredAt.Time
	}
	if estimatedDeliveryAt.Valid {
		order.EstimatedDeliveryAt = &estimatedDeliveryAt.Time
	}

	if err := json.Unmarshal(shippingAddressJSON, &order.ShippingAddress); err != nil {
		return nil, err
	}

	return &order, nil
}
