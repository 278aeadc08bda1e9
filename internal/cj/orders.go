package cj

import (
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"github.com/zahrastore/storeapi/pkg/errors"
)

// OrderItem is one line of a fulfillment order: the provider variant and
// how many units to ship.
type OrderItem struct {
	VariantID string `json:"vid"`
	Quantity  int    `json:"quantity"`
}

// OrderRequest is the payload for creating a fulfillment order. Leaving
// FromCountryCode empty lets the provider auto-select a warehouse.
type OrderRequest struct {
	OrderNumber      string      `json:"orderNumber"`
	ShippingName     string      `json:"shippingCustomerName"`
	ShippingPhone    string      `json:"shippingPhone"`
	ShippingAddress  string      `json:"shippingAddress"`
	ShippingCity     string      `json:"shippingCity"`
	ShippingProvince string      `json:"shippingProvince,omitempty"`
	ShippingZip      string      `json:"shippingZip"`
	ShippingCountry  string      `json:"shippingCountryCode"`
	FromCountryCode  string      `json:"fromCountryCode,omitempty"`
	ShipmentType     string      `json:"logisticName"`
	Remark           string      `json:"remark,omitempty"`
	Items            []OrderItem `json:"products"`
}

// OrderResult is the provider's record of a created fulfillment order.
type OrderResult struct {
	OrderID     string  `json:"orderId"`
	OrderNumber string  `json:"orderNum"`
	Amount      float64 `json:"orderAmount"`
}

// OrderDetail is the provider's view of an existing fulfillment order.
type OrderDetail struct {
	OrderID        string  `json:"orderId"`
	OrderNumber    string  `json:"orderNum"`
	Status         string  `json:"orderStatus"`
	Amount         float64 `json:"orderAmount"`
	TrackingNumber string  `json:"trackNumber"`
	LogisticName   string  `json:"logisticName"`
}

// CreateOrder submits a fulfillment order to the provider. Provider business
// errors and rate limits come back as their taxonomy kinds; a response whose
// data is not a well-formed order object is a protocol violation.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if req.ShipmentType == "" {
		req.ShipmentType = c.shipmentType
	}

	data, err := c.post(ctx, "/shopping/order/createOrder", req, token)
	if err != nil {
		return nil, err
	}

	var result OrderResult
	if err := json.Unmarshal(data, &result); err != nil || result.OrderID == "" {
		return nil, errors.Internal("cj: malformed create order response", err)
	}

	c.logger.Info("CJ fulfillment order created",
		zap.String("order_number", req.OrderNumber),
		zap.String("cj_order_id", result.OrderID),
		zap.Float64("amount", result.Amount),
	)

	return &result, nil
}

// GetOrder fetches the provider's current view of a fulfillment order.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*OrderDetail, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("orderId", orderID)

	data, err := c.get(ctx, "/shopping/order/getOrderDetail", q, token)
	if err != nil {
		return nil, err
	}

	var detail OrderDetail
	if err := json.Unmarshal(data, &detail); err != nil || detail.OrderID == "" {
		return nil, errors.Internal("cj: malformed order detail response", err)
	}

	return &detail, nil
}
