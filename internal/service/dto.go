package service

// CheckoutItem is one client-submitted cart line. Only the product reference
// and quantity are trusted; pricing is recomputed server-side.
type CheckoutItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// ShippingSelection is the client's chosen shipping option. The price is the
// store's own shipping rate for the option, resolved before checkout.
type ShippingSelection struct {
	Label string  `json:"label"`
	Price float64 `json:"price" binding:"min=0"`
}

// CheckoutRequest is the payload for opening a payment session.
type CheckoutRequest struct {
	OrderID  string            `json:"order_id" binding:"required"`
	Items    []CheckoutItem    `json:"items" binding:"required,min=1"`
	Shipping ShippingSelection `json:"shipping"`
}

// CheckoutSessionResponse carries the provider session back to the client.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// ConfirmPaymentRequest identifies the provider session to verify.
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}
