// Package domain holds the canonical Order model, its consistency rules and
// the vocabulary canonicalization tables.
package domain

import (
	"fmt"
	"math"
	"strings"

	"backoffice_backend/platform/apperr"
)

// moneyTolerance absorbs floating point noise when cross-checking totals.
const moneyTolerance = 0.01

// LineItem is one order line. Name, quantity, unit price and total are all
// mandatory and cross-validated.
type LineItem struct {
	Name      string  `json:"nombre"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precio"`
	Total     float64 `json:"total"`
	ProductID int64   `json:"producto_id,omitempty"`
}

// AddressBlock is an optional billing or shipping block on an order.
type AddressBlock struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address1  string `json:"address_1,omitempty"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Postcode  string `json:"postcode,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Order is the canonical transaction record stored in the CMS pedidos
// collection.
type Order struct {
	Number        string        `json:"numero,omitempty"`
	Subtotal      float64       `json:"subtotal"`
	Tax           float64       `json:"impuesto"`
	Shipping      float64       `json:"envio"`
	Discount      float64       `json:"descuento"`
	Total         float64       `json:"total"`
	Currency      string        `json:"moneda"`
	Origin        string        `json:"origen"`
	Status        string        `json:"estado"`
	PaymentMethod string        `json:"metodo_pago"`
	Items         []LineItem    `json:"items"`
	CouponCode    string        `json:"cupon,omitempty"`
	Billing       *AddressBlock `json:"billing,omitempty"`
	ShippingAddr  *AddressBlock `json:"shipping,omitempty"`
}

// Validate checks the line items and the totals breakdown. Every failure is
// a validation error carrying a human-readable message.
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return apperr.Validation("an order requires at least one line item")
	}

	itemsTotal := 0.0
	for i, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			return apperr.Validation(fmt.Sprintf("line item %d is missing a name", i+1))
		}
		if item.Quantity <= 0 {
			return apperr.Validation(fmt.Sprintf("line item %q has a non-positive quantity", item.Name))
		}
		if item.UnitPrice < 0 {
			return apperr.Validation(fmt.Sprintf("line item %q has a negative unit price", item.Name))
		}
		expected := item.UnitPrice * float64(item.Quantity)
		if math.Abs(expected-item.Total) >= moneyTolerance {
			return apperr.Validation(fmt.Sprintf(
				"line item %q total %.2f does not match price %.2f x %d",
				item.Name, item.Total, item.UnitPrice, item.Quantity))
		}
		itemsTotal += item.Total
	}

	if o.Total == 0 {
		o.Total = itemsTotal + o.Tax + o.Shipping - o.Discount
	}
	if o.Subtotal == 0 {
		o.Subtotal = itemsTotal
	}

	computed := itemsTotal + o.Tax + o.Shipping - o.Discount
	if math.Abs(computed-o.Total) >= moneyTolerance {
		return apperr.Validation(fmt.Sprintf(
			"order total %.2f does not match items+tax+shipping-discount %.2f",
			o.Total, computed))
	}

	return nil
}

// Canonicalize normalizes the status, payment method and origin vocabulary
// in place. It never fails: unrecognized values fall back to safe defaults.
func (o *Order) Canonicalize() {
	o.Status = CanonicalStatus(o.Status)
	o.PaymentMethod = CanonicalPaymentMethod(o.PaymentMethod)
	o.Origin = CanonicalOrigin(o.Origin)
}
