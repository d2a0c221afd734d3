// Package transport defines the request and response shapes for the
// customers HTTP API.
package transport

import "backoffice_backend/internal/customers/domain"

// EmailInput is one email address on an upsert payload.
type EmailInput struct {
	Address  string `json:"email" validate:"required"`
	Category string `json:"categoria,omitempty"`
}

// PhoneInput is one phone number on an upsert payload.
type PhoneInput struct {
	Number   string `json:"telefono" validate:"required"`
	Category string `json:"categoria,omitempty"`
	Primary  bool   `json:"principal,omitempty"`
}

// UpsertCustomerRequest creates or updates a canonical customer and fans it
// out to the selected storefront sites. An empty Platforms list targets every
// configured site.
type UpsertCustomerRequest struct {
	RUT          string        `json:"rut" validate:"required"`
	GivenNames   string        `json:"nombres,omitempty"`
	PaternalName string        `json:"apellido_paterno,omitempty"`
	MaternalName string        `json:"apellido_materno,omitempty"`
	FullName     string        `json:"nombre_completo,omitempty"`
	Emails       []EmailInput  `json:"correos,omitempty" validate:"dive"`
	Phones       []PhoneInput  `json:"telefonos,omitempty" validate:"dive"`
	Billing      *AddressInput `json:"billing,omitempty"`
	Shipping     *AddressInput `json:"shipping,omitempty"`
	Platforms    []string      `json:"platforms,omitempty"`
}

// AddressInput mirrors the storefront billing/shipping block.
type AddressInput struct {
	Address1 string `json:"address_1,omitempty"`
	Address2 string `json:"address_2,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Postcode string `json:"postcode,omitempty"`
	Country  string `json:"country,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// PlatformResult is the per-site outcome of a fan-out.
type PlatformResult struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	ExternalID int64       `json:"external_id,omitempty"`
}

// UpsertCustomerResponse aggregates the canonical write and the per-site
// fan-out results. Success reflects the canonical write only.
type UpsertCustomerResponse struct {
	Success   bool                      `json:"success"`
	Created   bool                      `json:"created"`
	Person    *domain.Person            `json:"person"`
	Platforms map[string]PlatformResult `json:"platforms"`
}

// CustomerResponse wraps a single canonical record.
type CustomerResponse struct {
	Person *domain.Person `json:"person"`
}

// ListCustomersResponse is a paginated listing.
type ListCustomersResponse struct {
	Customers []*domain.Person `json:"customers"`
	Page      int              `json:"page"`
	PageSize  int              `json:"pageSize"`
	Total     int              `json:"total"`
}
