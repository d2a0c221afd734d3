// Package transport defines the request and response shapes for the schools
// HTTP API.
package transport

import "backoffice_backend/internal/schools/domain"

// SchoolInput creates or updates one school.
type SchoolInput struct {
	RBD     string `json:"rbd" validate:"required"`
	Name    string `json:"nombre" validate:"required"`
	Region  string `json:"region,omitempty"`
	Comuna  string `json:"comuna,omitempty"`
	Address string `json:"direccion,omitempty"`
	Phone   string `json:"telefono,omitempty"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
}

// School maps the input onto the domain model.
func (in SchoolInput) School() *domain.School {
	return &domain.School{
		RBD:     in.RBD,
		Name:    in.Name,
		Region:  in.Region,
		Comuna:  in.Comuna,
		Address: in.Address,
		Phone:   in.Phone,
		Email:   in.Email,
	}
}

// ListSchoolsFilters are the accepted query parameters for listing.
type ListSchoolsFilters struct {
	Region   string
	Comuna   string
	Name     string
	RBD      string
	Page     int
	PageSize int
}

// ListSchoolsResponse is a paginated listing.
type ListSchoolsResponse struct {
	Schools  []*domain.School `json:"schools"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
}

// SchoolResponse wraps a single school.
type SchoolResponse struct {
	School *domain.School `json:"school"`
}
