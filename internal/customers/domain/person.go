// Package domain holds the canonical Person model and its derivation rules.
package domain

import (
	"regexp"
	"strings"

	"backoffice_backend/internal/cms"
	"backoffice_backend/platform/phone"
	"backoffice_backend/platform/rut"
)

// emailPattern is deliberately simple: local@domain.tld. The CMS performs no
// validation of its own, so this is the only gate.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// EmailRecord is one email address on a Person.
type EmailRecord struct {
	Address  string `json:"email"`
	Category string `json:"categoria,omitempty"`
}

// PhoneRecord is one phone number on a Person. Normalized carries the E.164
// form when the raw value parses as a Chilean number.
type PhoneRecord struct {
	Raw        string `json:"telefono"`
	Normalized string `json:"telefono_normalizado,omitempty"`
	Category   string `json:"categoria,omitempty"`
	Primary    bool   `json:"principal"`
	Active     bool   `json:"activo"`
}

// Person is the canonical identity stored in the CMS personas collection.
type Person struct {
	ID           int64         `json:"id,omitempty"`
	DocumentID   string        `json:"documentId,omitempty"`
	GivenNames   string        `json:"nombres,omitempty"`
	PaternalName string        `json:"apellido_paterno,omitempty"`
	MaternalName string        `json:"apellido_materno,omitempty"`
	FullName     string        `json:"nombre_completo,omitempty"`
	RUT          string        `json:"rut,omitempty"`
	Emails       []EmailRecord `json:"correos,omitempty"`
	Phones       []PhoneRecord `json:"telefonos,omitempty"`
}

// DeriveFullName joins the name parts with single spaces, skipping empties.
// Applied on creation only; updates never re-derive an existing full name.
func DeriveFullName(given, paternal, maternal string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{given, paternal, maternal} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// SplitDisplayName splits a full name for the storefront platforms: first
// whitespace-delimited token becomes the first name, the remainder the last
// name. This is lossy and intentionally distinct from the canonical
// given/family fields.
func SplitDisplayName(fullName string) (firstName, lastName string) {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}

// ValidEmail reports whether the address matches local@domain.tld.
func ValidEmail(address string) bool {
	return emailPattern.MatchString(strings.TrimSpace(address))
}

// FirstValidEmail returns the first syntactically valid address, or "".
func FirstValidEmail(emails []EmailRecord) string {
	for _, record := range emails {
		if ValidEmail(record.Address) {
			return strings.TrimSpace(record.Address)
		}
	}
	return ""
}

// NormalizePhones fills the Normalized field of each phone record and marks
// records active when unset. The first record becomes primary when none is.
func NormalizePhones(phones []PhoneRecord) []PhoneRecord {
	hasPrimary := false
	for i := range phones {
		phones[i].Raw = strings.TrimSpace(phones[i].Raw)
		phones[i].Normalized = phone.NormalizeE164(phones[i].Raw)
		if phones[i].Primary {
			hasPrimary = true
		}
	}
	if !hasPrimary && len(phones) > 0 {
		phones[0].Primary = true
	}
	return phones
}

// FromEntry maps a CMS entry onto a Person.
func FromEntry(entry *cms.Entry) *Person {
	if entry == nil {
		return nil
	}

	person := &Person{
		ID:           entry.ID,
		DocumentID:   entry.DocumentID,
		GivenNames:   entry.String("nombres"),
		PaternalName: entry.String("apellido_paterno"),
		MaternalName: entry.String("apellido_materno"),
		FullName:     entry.String("nombre_completo"),
		RUT:          entry.String("rut"),
	}

	for _, raw := range entry.Slice("correos") {
		if obj, ok := raw.(map[string]interface{}); ok {
			address, _ := obj["email"].(string)
			category, _ := obj["categoria"].(string)
			person.Emails = append(person.Emails, EmailRecord{Address: address, Category: category})
		}
	}

	for _, raw := range entry.Slice("telefonos") {
		if obj, ok := raw.(map[string]interface{}); ok {
			record := PhoneRecord{}
			record.Raw, _ = obj["telefono"].(string)
			record.Normalized, _ = obj["telefono_normalizado"].(string)
			record.Category, _ = obj["categoria"].(string)
			record.Primary, _ = obj["principal"].(bool)
			record.Active, _ = obj["activo"].(bool)
			person.Phones = append(person.Phones, record)
		}
	}

	return person
}

// NormalizedRUT returns the comparison form of the person's RUT.
func (p *Person) NormalizedRUT() string {
	return rut.Normalize(p.RUT)
}

// PrimaryEmail returns the first valid email, or "".
func (p *Person) PrimaryEmail() string {
	return FirstValidEmail(p.Emails)
}
