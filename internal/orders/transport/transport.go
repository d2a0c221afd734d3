// Package transport defines the request and response shapes for the orders
// HTTP API.
package transport

import "backoffice_backend/internal/orders/domain"

// CustomerRef identifies the customer an order belongs to. Any of the keys
// may be supplied; resolution follows the customer fallback chain.
type CustomerRef struct {
	ID         int64  `json:"id,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	RUT        string `json:"rut,omitempty"`
	Email      string `json:"email,omitempty"`
}

// LineItemInput is one order line on a create payload.
type LineItemInput struct {
	Name      string  `json:"nombre" validate:"required"`
	Quantity  int     `json:"cantidad" validate:"required,gt=0"`
	UnitPrice float64 `json:"precio" validate:"gte=0"`
	Total     float64 `json:"total"`
	ProductID int64   `json:"producto_id,omitempty"`
}

// CreateOrderRequest creates a canonical order and fans it out to the
// selected storefront sites.
type CreateOrderRequest struct {
	Number        string               `json:"numero,omitempty"`
	Currency      string               `json:"moneda,omitempty"`
	Origin        string               `json:"origen,omitempty"`
	Status        string               `json:"estado,omitempty"`
	PaymentMethod string               `json:"metodo_pago,omitempty"`
	Customer      CustomerRef          `json:"cliente"`
	Items         []LineItemInput      `json:"items" validate:"required,min=1,dive"`
	CouponCode    string               `json:"cupon,omitempty"`
	Tax           float64              `json:"impuesto,omitempty"`
	Shipping      float64              `json:"envio,omitempty"`
	Discount      float64              `json:"descuento,omitempty"`
	Total         float64              `json:"total,omitempty"`
	Billing       *domain.AddressBlock `json:"billing,omitempty"`
	ShippingAddr  *domain.AddressBlock `json:"shipping,omitempty"`
	Platforms     []string             `json:"platforms,omitempty"`
}

// PlatformResult is the per-site outcome of an order fan-out.
type PlatformResult struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ExternalID int64       `json:"external_id,omitempty"`
}

// CreateOrderResponse aggregates the canonical write and per-site results.
type CreateOrderResponse struct {
	Success    bool                      `json:"success"`
	DocumentID string                    `json:"documentId"`
	Order      *domain.Order             `json:"order"`
	Platforms  map[string]PlatformResult `json:"platforms"`
}

// OrderResponse wraps a single stored order.
type OrderResponse struct {
	DocumentID string        `json:"documentId"`
	Order      *domain.Order `json:"order"`
}

// ListOrdersResponse is a paginated listing.
type ListOrdersResponse struct {
	Orders   []OrderResponse `json:"orders"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Total    int             `json:"total"`
}
