package models

import (
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "pol-123", "POL123"},
		{"internal spaces", "POL 123 456", "POL123456"},
		{"hyphens", "POL-123-456", "POL123456"},
		{"quotes", `"POL'123"`, "POL123"},
		{"surrounding whitespace", "  pol123  ", "POL123"},
		{"already normalized", "POL123", "POL123"},
		{"empty", "", ""},
		{"only separators", ` -"'- `, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.input); got != tt.expected {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	inputs := []string{"pol-123", "  ABC 9 ", `"x'y"`, "PLAIN"}
	for _, in := range inputs {
		once := NormalizeKey(in)
		twice := NormalizeKey(once)
		if once != twice {
			t.Errorf("NormalizeKey not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestIsBlank(t *testing.T) {
	blanks := []string{"", "  ", "null", "NULL", "nan", "NaN", "none", "N/A", "na"}
	for _, v := range blanks {
		if !IsBlank(v) {
			t.Errorf("IsBlank(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"0", "POL123", "-"} {
		if IsBlank(v) {
			t.Errorf("IsBlank(%q) = true, want false", v)
		}
	}
}

func TestFieldTitle(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{FieldPolicyNumber, "Policy Number"},
		{FieldCustomerName, "Customer Name"},
		{FieldTotalPremium, "Total Premium"},
		{"gvw", "Gvw"},
	}
	for _, tt := range tests {
		if got := FieldTitle(tt.field); got != tt.expected {
			t.Errorf("FieldTitle(%q) = %q, want %q", tt.field, got, tt.expected)
		}
	}
}

func TestRowAccessors(t *testing.T) {
	r := Row{"A": "1", "B": ""}

	if v, ok := r.Get("A"); !ok || v != "1" {
		t.Errorf("Get(A) = (%q, %v), want (\"1\", true)", v, ok)
	}
	if v, ok := r.Get("B"); !ok || v != "" {
		t.Errorf("Get(B) = (%q, %v), want (\"\", true)", v, ok)
	}
	if _, ok := r.Get("Z"); ok {
		t.Error("Get(Z) reported a missing column as present")
	}

	if got := r.Value("A"); got != "1" {
		t.Errorf("Value(A) = %q, want %q", got, "1")
	}
	if got := r.Value("Z"); got != "" {
		t.Errorf("Value(Z) = %q, want empty string", got)
	}
}

func TestTableAddColumn(t *testing.T) {
	table := NewTable([]string{"A", "B"})
	table.AddRow(Row{"A": "1", "B": "2"})
	table.AddRow(Row{"A": "3", "B": "4"})

	if err := table.AddColumn("C", []string{"x", "y"}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if !table.HasColumn("C") {
		t.Error("expected column C to exist")
	}
	if got := table.Rows[1].Value("C"); got != "y" {
		t.Errorf("row 1 column C = %q, want %q", got, "y")
	}

	if err := table.AddColumn("D", []string{"only one"}); err == nil {
		t.Error("expected error for mismatched value count")
	}
}

func TestTableSelect(t *testing.T) {
	table := NewTable([]string{"Status"})
	table.AddRow(Row{"Status": "keep"})
	table.AddRow(Row{"Status": "drop"})
	table.AddRow(Row{"Status": "keep"})

	kept := table.Select(func(r Row) bool { return r.Value("Status") == "keep" })
	if kept.Len() != 2 {
		t.Errorf("Select kept %d rows, want 2", kept.Len())
	}
	if table.Len() != 3 {
		t.Errorf("Select mutated the source table: %d rows", table.Len())
	}
}

func TestMatchStatusIsValid(t *testing.T) {
	valid := []MatchStatus{StatusMatch, StatusMismatch, StatusNotFoundInInternal, StatusNotFoundInExternal, StatusInfo}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if MatchStatus("Bogus").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
}
