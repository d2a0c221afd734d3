package domain

import (
	"time"

	"backoffice_backend/platform/apperr"
)

// Coupon discount types and scopes as stored in the cupones collection.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"

	ScopeCart    = "cart"
	ScopeProduct = "product"
)

// Coupon is a discount code scoped to one origin platform.
type Coupon struct {
	Code      string    `json:"codigo"`
	Origin    string    `json:"origen"`
	Type      string    `json:"tipo"`
	Scope     string    `json:"alcance"`
	Amount    float64   `json:"monto"`
	ExpiresAt time.Time `json:"expira,omitempty"`
}

// ValidateFor checks that the coupon may be applied to an order of the given
// origin at the given time.
func (c *Coupon) ValidateFor(origin string, now time.Time) error {
	if c.Origin != "" && c.Origin != origin {
		return apperr.Validation("coupon " + c.Code + " belongs to a different platform")
	}
	if !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now) {
		return apperr.Validation("coupon " + c.Code + " has expired")
	}
	return nil
}

// Discount computes the coupon's discount for the order. Cart-scoped coupons
// apply to the subtotal, product-scoped ones to the largest single line
// total. The result is clamped to [0, subtotal].
func (c *Coupon) Discount(order *Order) float64 {
	base := order.Subtotal
	if c.Scope == ScopeProduct {
		base = 0
		for _, item := range order.Items {
			if item.Total > base {
				base = item.Total
			}
		}
	}

	var discount float64
	switch c.Type {
	case DiscountPercent:
		discount = base * c.Amount / 100
	case DiscountFixed:
		discount = c.Amount
	default:
		discount = 0
	}

	if discount < 0 {
		return 0
	}
	if discount > order.Subtotal {
		return order.Subtotal
	}
	return discount
}
