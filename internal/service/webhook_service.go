package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/internal/domain"
	"github.com/zahrastore/storeapi/internal/repository"
	"github.com/zahrastore/storeapi/pkg/errors"
)

// webhookTestSentinel marks the provider's connectivity self-test payloads.
// They must be acknowledged without touching the database.
const webhookTestSentinel = "test"

// ProductUpdateEvent is an inbound product event from the fulfillment
// provider. Nil pointers mean the field was absent from the payload.
type ProductUpdateEvent struct {
	ProductID    string                   `json:"productId"`
	VariantID    string                   `json:"vid"`
	SKU          string                   `json:"sku"`
	ProductName  *string                  `json:"productName"`
	SellPrice    *float64                 `json:"sellPrice"`
	ProductImage *string                  `json:"productImage"`
	Description  *string                  `json:"description"`
	Variants     []map[string]interface{} `json:"variants"`
	Discontinued *bool                    `json:"discontinued"`
	UpdateType   string                   `json:"updateType"`
}

// StockUpdateEvent is an inbound stock event from the fulfillment provider.
type StockUpdateEvent struct {
	ProductID   string  `json:"productId" validate:"required_without_all=VariantID SKU"`
	VariantID   string  `json:"vid" validate:"required_without_all=ProductID SKU"`
	SKU         string  `json:"sku" validate:"required_without_all=ProductID VariantID"`
	Stock       *int    `json:"stock"`
	InStock     *bool   `json:"inStock" validate:"required_without=Stock"`
	WarehouseID *string `json:"warehouseId"`
}

type WebhookService struct {
	repos       *repository.Repositories
	priceMarkup float64
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(repos *repository.Repositories, priceMarkup float64, logger *zap.Logger) *WebhookService {
	return &WebhookService{
		repos:       repos,
		priceMarkup: priceMarkup,
		validate:    validator.New(),
		logger:      logger,
	}
}

// ApplyProductUpdate applies a product event as a field-level overwrite.
// The returned message always describes a handled outcome: events that can't
// be applied are logged and reported as handled so the provider never retries.
func (s *WebhookService) ApplyProductUpdate(ctx context.Context, ev ProductUpdateEvent) string {
	if isTestPayload(ev.ProductID, ev.VariantID, ev.SKU) {
		return "test payload acknowledged"
	}

	product, ok := s.resolveProduct(ctx, ev.ProductID, ev.VariantID, ev.SKU)
	if !ok {
		return "product not matched"
	}

	now := time.Now()
	upd := domain.ProductFieldUpdate{
		Name:        ev.ProductName,
		Description: ev.Description,
		Image:       ev.ProductImage,
		Variants:    ev.Variants,
		UpdateType:  ev.UpdateType,
		UpdatedAt:   now,
	}
	if ev.SellPrice != nil {
		price := applyMarkup(*ev.SellPrice, s.priceMarkup)
		upd.Price = &price
	}
	if ev.Discontinued != nil && *ev.Discontinued {
		upd.Discontinue = true
	}

	if err := s.repos.Product.ApplyProductUpdate(ctx, product.ID, upd); err != nil {
		s.logger.Error("Failed to apply product update webhook",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return "product update could not be applied"
	}

	s.logger.Info("Product update webhook applied",
		zap.String("product_id", product.ID.String()),
		zap.String("update_type", ev.UpdateType),
		zap.Bool("discontinued", upd.Discontinue),
	)
	return "product updated"
}

// ApplyStockUpdate applies a stock event as an absolute set. Invalid payloads
// are reported in the acknowledgement message, never rejected.
func (s *WebhookService) ApplyStockUpdate(ctx context.Context, ev StockUpdateEvent) string {
	if isTestPayload(ev.ProductID, ev.VariantID, ev.SKU) {
		return "test payload acknowledged"
	}

	if err := s.validate.Struct(ev); err != nil {
		msg := formatValidationErrors(err)
		s.logger.Warn("Stock webhook failed validation", zap.String("errors", msg))
		return "stock update ignored: " + msg
	}

	product, ok := s.resolveProduct(ctx, ev.ProductID, ev.VariantID, ev.SKU)
	if !ok {
		return "product not matched"
	}

	stock := product.Stock
	if ev.Stock != nil {
		stock = *ev.Stock
	}
	if stock < 0 {
		stock = 0
	}
	// Out-of-stock signal with no explicit count forces zero.
	if ev.InStock != nil && !*ev.InStock && ev.Stock == nil {
		stock = 0
	}
	inStock := stock > 0
	if ev.InStock != nil && !*ev.InStock {
		inStock = false
	}

	if err := s.repos.Product.ApplyStockUpdate(ctx, product.ID, stock, inStock, ev.WarehouseID); err != nil {
		s.logger.Error("Failed to apply stock update webhook",
			zap.String("product_id", product.ID.String()),
			zap.Error(err))
		return "stock update could not be applied"
	}

	s.logger.Info("Stock update webhook applied",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock", stock),
		zap.Bool("in_stock", inStock),
	)
	return "stock updated"
}

// resolveProduct locates the local product by external product id, then
// variant id, then sku; first match wins.
func (s *WebhookService) resolveProduct(ctx context.Context, productID, variantID, sku string) (*domain.Product, bool) {
	type lookup struct {
		key string
		fn  func(context.Context, string) (*domain.Product, error)
	}
	lookups := []lookup{
		{productID, s.repos.Product.GetByCJProductID},
		{variantID, s.repos.Product.GetByCJVariantID},
		{sku, s.repos.Product.GetByCJSKU},
	}

	for _, l := range lookups {
		if l.key == "" {
			continue
		}
		product, err := l.fn(ctx, l.key)
		if err == nil {
			return product, true
		}
		if _, ok := err.(*errors.ErrNotFound); !ok {
			s.logger.Error("Webhook product lookup failed", zap.String("key", l.key), zap.Error(err))
			return nil, false
		}
	}

	s.logger.Info("Webhook event for unknown product",
		zap.String("cj_product_id", productID),
		zap.String("cj_variant_id", variantID),
		zap.String("cj_sku", sku),
	)
	return nil, false
}

func isTestPayload(ids ...string) bool {
	for _, id := range ids {
		if id == webhookTestSentinel {
			return true
		}
	}
	return false
}

// applyMarkup computes the local price from the provider sell price, rounded
// to 2 decimal places.
func applyMarkup(sellPrice, markup float64) float64 {
	p, _ := decimal.NewFromFloat(sellPrice).
		Mul(decimal.NewFromFloat(markup)).
		Round(2).
		Float64()
	return p
}

func formatValidationErrors(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", ve.Field(), ve.Tag()))
	}
	return strings.Join(parts, "; ")
}
