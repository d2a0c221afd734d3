package domain

import (
	"testing"

	"backoffice_backend/internal/cms"
)

func TestDeriveFullName(t *testing.T) {
	if got := DeriveFullName("Juan", "Pérez", "Soto"); got != "Juan Pérez Soto" {
		t.Fatalf("DeriveFullName = %q", got)
	}
	if got := DeriveFullName("Juan", "", "Soto"); got != "Juan Soto" {
		t.Fatalf("empty middle part should be skipped, got %q", got)
	}
	if got := DeriveFullName("  Ana  ", "", ""); got != "Ana" {
		t.Fatalf("parts should be trimmed, got %q", got)
	}
	if got := DeriveFullName("", "", ""); got != "" {
		t.Fatalf("all-empty should yield empty, got %q", got)
	}
}

func TestSplitDisplayName(t *testing.T) {
	first, last := SplitDisplayName("Juan Pérez Soto")
	if first != "Juan" || last != "Pérez Soto" {
		t.Fatalf("split = %q / %q", first, last)
	}

	first, last = SplitDisplayName("Madonna")
	if first != "Madonna" || last != "" {
		t.Fatalf("single token split = %q / %q", first, last)
	}

	first, last = SplitDisplayName("")
	if first != "" || last != "" {
		t.Fatalf("empty split = %q / %q", first, last)
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"juan@x.cl", "a.b@dominio.com", " con.espacios@x.cl "}
	for _, address := range valid {
		if !ValidEmail(address) {
			t.Fatalf("expected %q to be valid", address)
		}
	}

	invalid := []string{"", "sin-arroba", "dos@@x.cl", "@x.cl", "juan@sintld"}
	for _, address := range invalid {
		if ValidEmail(address) {
			t.Fatalf("expected %q to be invalid", address)
		}
	}
}

func TestNormalizePhonesMarksPrimary(t *testing.T) {
	phones := NormalizePhones([]PhoneRecord{
		{Raw: "+56 9 8765 4321", Active: true},
		{Raw: "223456789", Active: true},
	})

	if !phones[0].Primary {
		t.Fatal("first phone should become primary when none is marked")
	}
	if phones[1].Primary {
		t.Fatal("second phone should not be primary")
	}
	if phones[0].Normalized != "+56987654321" {
		t.Fatalf("normalized = %q", phones[0].Normalized)
	}
}

func TestFromEntry(t *testing.T) {
	entry := &cms.Entry{
		ID:         3,
		DocumentID: "doc3",
		Attributes: map[string]interface{}{
			"nombres":          "Juan",
			"apellido_paterno": "Pérez",
			"nombre_completo":  "Juan Pérez",
			"rut":              "12.345.678-9",
			"correos": []interface{}{
				map[string]interface{}{"email": "juan@x.cl", "categoria": "personal"},
			},
			"telefonos": []interface{}{
				map[string]interface{}{"telefono": "987654321", "principal": true, "activo": true},
			},
		},
	}

	person := FromEntry(entry)
	if person.DocumentID != "doc3" || person.GivenNames != "Juan" {
		t.Fatalf("person = %+v", person)
	}
	if person.NormalizedRUT() != "123456789" {
		t.Fatalf("normalized rut = %q", person.NormalizedRUT())
	}
	if person.PrimaryEmail() != "juan@x.cl" {
		t.Fatalf("primary email = %q", person.PrimaryEmail())
	}
	if len(person.Phones) != 1 || !person.Phones[0].Primary {
		t.Fatalf("phones = %+v", person.Phones)
	}
}
