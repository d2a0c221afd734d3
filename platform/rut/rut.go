// Package rut provides Chilean tax identifier (RUT) utilities.
// This is part of the platform layer and contains no business logic.
package rut

import (
	"strconv"
	"strings"
)

// Normalize strips periods and hyphens and uppercases the result, so
// "12.345.678-k" becomes "12345678K". Two RUTs identify the same holder
// iff their normalized forms are byte-equal.
func Normalize(input string) string {
	cleaned := strings.NewReplacer(".", "", "-", "", " ", "").Replace(strings.TrimSpace(input))
	return strings.ToUpper(cleaned)
}

// Equal reports whether two RUTs are the same after normalization.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Normalize(a) == Normalize(b)
}

// Format renders a normalized RUT as "12.345.678-9". Input that is too short
// to carry a check digit is returned normalized but unformatted.
func Format(input string) string {
	normalized := Normalize(input)
	if len(normalized) < 2 {
		return normalized
	}

	body := normalized[:len(normalized)-1]
	dv := normalized[len(normalized)-1:]

	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte('-')
	b.WriteString(dv)
	return b.String()
}

// IsValid reports whether the RUT carries a correct modulo-11 check digit.
func IsValid(input string) bool {
	normalized := Normalize(input)
	if len(normalized) < 2 {
		return false
	}

	body := normalized[:len(normalized)-1]
	dv := normalized[len(normalized)-1:]

	if _, err := strconv.Atoi(body); err != nil {
		return false
	}

	return checkDigit(body) == dv
}

// checkDigit computes the modulo-11 verifier for a numeric RUT body.
func checkDigit(body string) string {
	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	switch remainder := 11 - (sum % 11); remainder {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(remainder)
	}
}
