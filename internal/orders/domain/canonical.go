package domain

import "strings"

// The canonical vocabularies match what the storefront platforms accept.
// Lookup order: passthrough when already canonical, then the Spanish
// translation table, then the default. An unrecognized value must never
// block order creation.
const (
	DefaultStatus        = "pending"
	DefaultPaymentMethod = "bacs"
	DefaultOrigin        = "web"
)

var validStatuses = map[string]bool{
	"pending":    true,
	"processing": true,
	"on-hold":    true,
	"completed":  true,
	"cancelled":  true,
	"refunded":   true,
	"failed":     true,
}

var statusTranslations = map[string]string{
	"pendiente":   "pending",
	"procesando":  "processing",
	"en proceso":  "processing",
	"en espera":   "on-hold",
	"completado":  "completed",
	"completada":  "completed",
	"cancelado":   "cancelled",
	"cancelada":   "cancelled",
	"reembolsado": "refunded",
	"reembolsada": "refunded",
	"fallido":     "failed",
	"fallida":     "failed",
}

var validPaymentMethods = map[string]bool{
	"bacs":   true,
	"cheque": true,
	"cod":    true,
	"paypal": true,
	"stripe": true,
	"webpay": true,
}

var paymentTranslations = map[string]string{
	"transferencia":          "bacs",
	"transferencia bancaria": "bacs",
	"deposito":               "bacs",
	"depósito":               "bacs",
	"efectivo":               "cod",
	"contra entrega":         "cod",
	"tarjeta":                "webpay",
}

var validOrigins = map[string]bool{
	"web":   true,
	"admin": true,
	"pos":   true,
	"phone": true,
}

var originTranslations = map[string]string{
	"tienda":        "pos",
	"presencial":    "pos",
	"telefono":      "phone",
	"teléfono":      "phone",
	"administrador": "admin",
	"intranet":      "admin",
}

func canonicalize(value string, valid map[string]bool, translations map[string]string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if valid[normalized] {
		return normalized
	}
	if translated, ok := translations[normalized]; ok {
		return translated
	}
	return fallback
}

// CanonicalStatus maps a status in either vocabulary onto the canonical set.
func CanonicalStatus(value string) string {
	return canonicalize(value, validStatuses, statusTranslations, DefaultStatus)
}

// CanonicalPaymentMethod maps a payment method onto the canonical set.
func CanonicalPaymentMethod(value string) string {
	return canonicalize(value, validPaymentMethods, paymentTranslations, DefaultPaymentMethod)
}

// CanonicalOrigin maps an origin tag onto the canonical set.
func CanonicalOrigin(value string) string {
	return canonicalize(value, validOrigins, originTranslations, DefaultOrigin)
}
