package domain

import (
	"testing"
	"time"

	"backoffice_backend/platform/apperr"
)

func TestValidateAcceptsConsistentOrder(t *testing.T) {
	order := Order{
		Total: 2000,
		Items: []LineItem{{Name: "Book", Quantity: 2, UnitPrice: 1000, Total: 2000}},
	}
	if err := order.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Subtotal != 2000 {
		t.Fatalf("subtotal not derived: %v", order.Subtotal)
	}
}

func TestValidateRejectsLineItemMismatch(t *testing.T) {
	order := Order{
		Total: 1999,
		Items: []LineItem{{Name: "Book", Quantity: 2, UnitPrice: 1000, Total: 1999}},
	}
	err := order.Validate()
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateRejectsTotalsMismatch(t *testing.T) {
	order := Order{
		Total:    5000,
		Tax:      0,
		Shipping: 0,
		Items:    []LineItem{{Name: "Book", Quantity: 2, UnitPrice: 1000, Total: 2000}},
	}
	err := order.Validate()
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateToleratesFloatNoise(t *testing.T) {
	order := Order{
		Total: 3000.004,
		Items: []LineItem{{Name: "Book", Quantity: 3, UnitPrice: 1000, Total: 3000}},
	}
	if err := order.Validate(); err != nil {
		t.Fatalf("sub-centavo noise must pass: %v", err)
	}
}

func TestValidateRejectsEmptyItems(t *testing.T) {
	order := Order{Total: 100}
	if err := order.Validate(); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCanonicalStatus(t *testing.T) {
	cases := []struct{ in, want string }{
		{"pendiente", "pending"},
		{"pending", "pending"},
		{"  Completado ", "completed"},
		{"on-hold", "on-hold"},
		{"unknown-garbage", "pending"},
		{"", "pending"},
	}
	for _, tc := range cases {
		if got := CanonicalStatus(tc.in); got != tc.want {
			t.Errorf("CanonicalStatus(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalPaymentMethodAndOrigin(t *testing.T) {
	if got := CanonicalPaymentMethod("Transferencia"); got != "bacs" {
		t.Fatalf("payment = %q", got)
	}
	if got := CanonicalPaymentMethod("???"); got != "bacs" {
		t.Fatalf("payment default = %q", got)
	}
	if got := CanonicalOrigin("Teléfono"); got != "phone" {
		t.Fatalf("origin = %q", got)
	}
	if got := CanonicalOrigin(""); got != "web" {
		t.Fatalf("origin default = %q", got)
	}
}

func TestCouponPercentClampsToSubtotal(t *testing.T) {
	order := &Order{Subtotal: 1000}
	coupon := Coupon{Code: "MEGA", Type: DiscountPercent, Scope: ScopeCart, Amount: 150}

	if got := coupon.Discount(order); got != 1000 {
		t.Fatalf("discount = %v, want clamp to 1000", got)
	}
}

func TestCouponFixedNeverNegative(t *testing.T) {
	order := &Order{Subtotal: 1000}
	coupon := Coupon{Code: "NEG", Type: DiscountFixed, Amount: -50}

	if got := coupon.Discount(order); got != 0 {
		t.Fatalf("discount = %v, want 0", got)
	}
}

func TestCouponProductScopeUsesLargestLine(t *testing.T) {
	order := &Order{
		Subtotal: 3000,
		Items: []LineItem{
			{Name: "A", Quantity: 1, UnitPrice: 1000, Total: 1000},
			{Name: "B", Quantity: 1, UnitPrice: 2000, Total: 2000},
		},
	}
	coupon := Coupon{Code: "HALF", Type: DiscountPercent, Scope: ScopeProduct, Amount: 50}

	if got := coupon.Discount(order); got != 1000 {
		t.Fatalf("discount = %v, want 1000", got)
	}
}

func TestCouponValidateFor(t *testing.T) {
	expired := Coupon{Code: "OLD", Origin: "web", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := expired.ValidateFor("web", time.Now()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected expiry rejection, got %v", err)
	}

	foreign := Coupon{Code: "OTHER", Origin: "pos"}
	if err := foreign.ValidateFor("web", time.Now()); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected origin rejection, got %v", err)
	}

	valid := Coupon{Code: "OK", Origin: "web", ExpiresAt: time.Now().Add(time.Hour)}
	if err := valid.ValidateFor("web", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
