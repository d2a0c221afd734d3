package rut

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"12.345.678-9":  "123456789",
		"12345678-9":    "123456789",
		"123456789":     "123456789",
		" 9.876.543-k ": "9876543K",
		"":              "",
	}

	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal("12.345.678-9", "123456789") {
		t.Fatal("dotted and stripped forms should be equal")
	}
	if Equal("", "123456789") {
		t.Fatal("empty RUT should never match")
	}
	if Equal("12345678-9", "12345678-0") {
		t.Fatal("different check digits should not match")
	}
}

func TestFormat(t *testing.T) {
	if got := Format("123456789"); got != "12.345.678-9" {
		t.Fatalf("Format = %q", got)
	}
	if got := Format("9876543k"); got != "9.876.543-K" {
		t.Fatalf("Format = %q", got)
	}
	if got := Format("5"); got != "5" {
		t.Fatalf("short input should pass through, got %q", got)
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"11.111.111-1", "12345678-5", "7.770.003-K"}
	for _, input := range valid {
		if !IsValid(input) {
			t.Fatalf("expected %q to be valid", input)
		}
	}

	invalid := []string{"", "1", "12345678-9", "abc-1", "12.345.678"}
	for _, input := range invalid {
		if IsValid(input) {
			t.Fatalf("expected %q to be invalid", input)
		}
	}
}
