package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/cj"
	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

// FulfillmentClient is the subset of the provider client the reconciler needs.
type FulfillmentClient interface {
	CreateOrder(ctx context.Context, req cj.OrderRequest) (*cj.OrderResult, error)
}

type FulfillmentService struct {
	repos  *repository.Repositories
	client FulfillmentClient
	logger *zap.Logger
}

// NewFulfillmentService creates a new fulfillment service
func NewFulfillmentService(repos *repository.Repositories, client FulfillmentClient, logger *zap.Logger) *FulfillmentService {
	return &FulfillmentService{
		repos:  repos,
		client: client,
		logger: logger,
	}
}

// CreateFulfillmentOrder places the downstream fulfillment order for a paid
// local order. It is the sole retry path: safe to call repeatedly, and a
// guarded no-op once fulfillment has succeeded.
func (s *FulfillmentService) CreateFulfillmentOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus != domain.PaymentStatusPaid {
		return nil, &errors.ErrValidation{Message: "order is not paid yet"}
	}

	if order.FulfillmentOrderID != nil {
		return nil, &errors.ErrValidation{Message: "fulfillment order already created"}
	}

	items, err := s.repos.OrderItem.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, errors.Internal("failed to load order items", err)
	}
	if len(items) == 0 {
		return nil, &errors.ErrValidation{Message: "order has no items"}
	}

	cjItems := make([]cj.OrderItem, 0, len(items))
	for _, item := range items {
		variantID, err := s.resolveVariantID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		cjItems = append(cjItems, cj.OrderItem{
			VariantID: variantID,
			Quantity:  item.Quantity,
		})
	}

	// No warehouse selection: the provider auto-selects.
	req := cj.OrderRequest{
		OrderNumber:      order.ID.String(),
		ShippingName:     addressField(order.ShippingAddress, "name"),
		ShippingPhone:    addressField(order.ShippingAddress, "phone"),
		ShippingAddress:  addressField(order.ShippingAddress, "street"),
		ShippingCity:     addressField(order.ShippingAddress, "city"),
		ShippingProvince: addressField(order.ShippingAddress, "province"),
		ShippingZip:      addressField(order.ShippingAddress, "postal_code"),
		ShippingCountry:  addressField(order.ShippingAddress, "country"),
		Remark:           fmt.Sprintf("storefront order %s", order.ID),
		Items:            cjItems,
	}

	result, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Error("Fulfillment order creation failed",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		// Best effort: a failure to persist the error must not mask the
		// original failure.
		if persistErr := s.repos.Order.SetFulfillmentError(ctx, orderID, err.Error()); persistErr != nil {
			s.logger.Warn("Failed to persist fulfillment error",
				zap.String("order_id", orderID.String()),
				zap.Error(persistErr))
		}
		return nil, errors.Internal("fulfillment order creation failed", err)
	}

	claimed, err := s.repos.Order.SetFulfillmentOrder(ctx, orderID, result.OrderID, result.OrderNumber)
	if err != nil {
		return nil, errors.Internal("failed to persist fulfillment order", err)
	}
	if !claimed {
		// A concurrent retry won the claim after our precondition check.
		s.logger.Warn("Order was claimed by a concurrent fulfillment attempt",
			zap.String("order_id", orderID.String()),
			zap.String("cj_order_id", result.OrderID))
		return nil, &errors.ErrValidation{Message: "fulfillment order already created"}
	}

	order.FulfillmentOrderID = &result.OrderID
	order.FulfillmentOrderNumber = &result.OrderNumber
	order.FulfillmentError = nil

	s.logger.Info("Fulfillment order created",
		zap.String("order_id", orderID.String()),
		zap.String("cj_order_id", result.OrderID),
		zap.String("cj_order_number", result.OrderNumber),
	)

	return order, nil
}

// resolveVariantID maps a local product to its provider variant. Products
// imported before variant mapping existed fall back to the local product id;
// the provider rejects unknown ids, which surfaces as a recorded fulfillment
// error rather than a silent mis-ship.
func (s *FulfillmentService) resolveVariantID(ctx context.Context, productID uuid.UUID) (string, error) {
	product, err := s.repos.Product.GetByID(ctx, productID)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return "", err
		}
		return "", errors.Internal("failed to load product for fulfillment", err)
	}

	if product.CJ != nil && product.CJ.VariantID != "" {
		return product.CJ.VariantID, nil
	}
	return product.ID.String(), nil
}

func addressField(address map[string]interface{}, key string) string {
	if address == nil {
		return ""
	}
	if v, ok := address[key].(string); ok {
		return v
	}
	return ""
}
