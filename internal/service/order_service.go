package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

// CreateOrderRequest is the payload for creating a pending order.
type CreateOrderRequest struct {
	Items           []CheckoutItem         `json:"items" binding:"required,min=1"`
	ShippingAddress map[string]interface{} `json:"shipping_address" binding:"required"`
	Shipping        ShippingSelection      `json:"shipping"`
}

// OrderWithItems pairs an order with its line item snapshots.
type OrderWithItems struct {
	Order *domain.Order       `json:"order"`
	Items []*domain.OrderItem `json:"items"`
}

type OrderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *OrderService {
	return &OrderService{
		repos:  repos,
		logger: logger,
	}
}

// CreateOrder creates a pending order with line item snapshots. Prices and
// names are copied from the product store at creation time; the client only
// supplies references and quantities.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderWithItems, error) {
	now := time.Now()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          domain.OrderStatusProcessing,
		PaymentStatus:   domain.PaymentStatusPending,
		ShippingAddress: req.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := make([]*domain.OrderItem, 0, len(req.Items))
	var totalMinor int64
	for _, line := range req.Items {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, &errors.ErrValidation{Message: "invalid product_id: " + line.ProductID}
		}

		product, err := s.repos.Product.GetByID(ctx, productID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				return nil, err
			}
			return nil, errors.Internal("failed to load product", err)
		}
		if !product.InStock {
			return nil, &errors.ErrValidation{Message: "product is out of stock: " + product.Slug}
		}

		items = append(items, &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
			CreatedAt: now,
		})
		totalMinor += toMinorUnits(product.Price) * int64(line.Quantity)
	}

	if req.Shipping.Price > 0 {
		totalMinor += toMinorUnits(req.Shipping.Price)
	}
	order.TotalMinor = totalMinor

	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, errors.Internal("failed to create order", err)
	}
	if err := s.repos.OrderItem.CreateBatch(ctx, items); err != nil {
		return nil, errors.Internal("failed to create order items", err)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int64("total_minor", totalMinor),
		zap.Int("items", len(items)),
	)

	return &OrderWithItems{Order: order, Items: items}, nil
}

// GetOrder loads an order with its items. Non-admin callers can only read
// their own orders.
func (s *OrderService) GetOrder(ctx context.Context, caller *domain.User, orderID uuid.UUID) (*OrderWithItems, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != caller.ID && caller.Role != domain.RoleAdmin {
		return nil, &errors.ErrForbidden{Message: "order does not belong to caller"}
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, errors.Internal("failed to load order items", err)
	}

	return &OrderWithItems{Order: order, Items: items}, nil
}

// ListOrders returns the caller's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	orders, err := s.repos.Order.ListByUserID(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, errors.Internal("failed to list orders", err)
	}
	return orders, nil
}

// ListAllOrders returns all orders for the admin surface, newest first.
func (s *OrderService) ListAllOrders(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	orders, err := s.repos.Order.List(ctx, normalizeLimit(limit), offset)
	if err != nil {
		return nil, errors.Internal("failed to list orders", err)
	}
	return orders, nil
}

// UpdateStatus transitions an order's lifecycle status. Shipped and delivered
// timestamps are stamped by the repository at transition time.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	if !status.IsValid() {
		return nil, &errors.ErrValidation{Message: "invalid order status: " + string(status)}
	}

	if _, err := s.repos.Order.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	if err := s.repos.Order.UpdateStatus(ctx, orderID, status, time.Now()); err != nil {
		return nil, errors.Internal("failed to update order status", err)
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(status)),
	)
	return order, nil
}

// UpdateTracking records carrier and tracking number on an order.
func (s *OrderService) UpdateTracking(ctx context.Context, orderID uuid.UUID, carrier, trackingNumber *string) (*domain.Order, error) {
	if _, err := s.repos.Order.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	if err := s.repos.Order.UpdateTracking(ctx, orderID, carrier, trackingNumber); err != nil {
		return nil, errors.Internal("failed to update tracking", err)
	}

	return s.repos.Order.GetByID(ctx, orderID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}
