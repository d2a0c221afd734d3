// Package domain holds the School model mirrored from the colegios
// collection.
package domain

import "backoffice_backend/internal/cms"

// School is one educational institution. RBD is the national school
// identifier and the upsert key for imports.
type School struct {
	ID         int64  `json:"id,omitempty"`
	DocumentID string `json:"documentId,omitempty"`
	RBD        string `json:"rbd"`
	Name       string `json:"nombre"`
	Region     string `json:"region,omitempty"`
	Comuna     string `json:"comuna,omitempty"`
	Address    string `json:"direccion,omitempty"`
	Phone      string `json:"telefono,omitempty"`
	Email      string `json:"email,omitempty"`
}

// FromEntry maps a CMS entry onto a School.
func FromEntry(entry *cms.Entry) *School {
	if entry == nil {
		return nil
	}
	return &School{
		ID:         entry.ID,
		DocumentID: entry.DocumentID,
		RBD:        entry.String("rbd"),
		Name:       entry.String("nombre"),
		Region:     entry.String("region"),
		Comuna:     entry.String("comuna"),
		Address:    entry.String("direccion"),
		Phone:      entry.String("telefono"),
		Email:      entry.String("email"),
	}
}

// Data returns the CMS payload for creating or updating the school.
func (s *School) Data() map[string]interface{} {
	data := map[string]interface{}{
		"rbd":    s.RBD,
		"nombre": s.Name,
	}
	if s.Region != "" {
		data["region"] = s.Region
	}
	if s.Comuna != "" {
		data["comuna"] = s.Comuna
	}
	if s.Address != "" {
		data["direccion"] = s.Address
	}
	if s.Phone != "" {
		data["telefono"] = s.Phone
	}
	if s.Email != "" {
		data["email"] = s.Email
	}
	return data
}
