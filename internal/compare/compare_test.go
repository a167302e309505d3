package compare

import (
	"math"
	"testing"

	"insurance-reconciliation-service/internal/models"
)

func TestKindForField(t *testing.T) {
	tests := []struct {
		field string
		kind  Kind
	}{
		{models.FieldCustomerName, KindName},
		{models.FieldPolicyNumber, KindIdentifier},
		{models.FieldPolicyStartDate, KindDate},
		{models.FieldTotalPremium, KindMoney},
		{models.FieldFuelType, KindFuel},
		{models.FieldVehicleMake, KindDefault},
		{"some_dynamic_field", KindDefault},
	}
	for _, tt := range tests {
		if got := KindForField(tt.field); got != tt.kind {
			t.Errorf("KindForField(%q) = %v, want %v", tt.field, got, tt.kind)
		}
	}
}

func TestCompareNullHandling(t *testing.T) {
	r := Compare("", "", KindName)
	if !r.Match || r.Score != 100 || r.Detail != "Both null" {
		t.Errorf("both null: got %+v", r)
	}

	r = Compare("RAM KUMAR", "", KindName)
	if r.Match || r.Score != 0 {
		t.Errorf("one null: got %+v", r)
	}

	r = Compare("null", "NaN", KindMoney)
	if !r.Match {
		t.Errorf("null tokens should compare as both null: got %+v", r)
	}
}

func TestCompareNames(t *testing.T) {
	tests := []struct {
		name      string
		internal  string
		external  string
		wantMatch bool
	}{
		{"identical", "RAM KUMAR", "RAM KUMAR", true},
		{"case difference", "ram kumar", "RAM KUMAR", true},
		{"extra space", "RAM KUMAR", "RAM  KUMAR", true},
		{"different name", "RAM KUMAR", "RAMESH KUMAR", false},
		{"unrelated", "RAM KUMAR", "SURESH SINGH", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compare(tt.internal, tt.external, KindName)
			if r.Match != tt.wantMatch {
				t.Errorf("Compare(%q, %q) match = %v (score %.1f), want %v",
					tt.internal, tt.external, r.Match, r.Score, tt.wantMatch)
			}
		})
	}
}

func TestSimilarityRatio(t *testing.T) {
	if got := SimilarityRatio("RAM KUMAR", "RAM KUMAR"); got != 100 {
		t.Errorf("identical strings: %v, want 100", got)
	}
	// One edit over twelve characters.
	got := SimilarityRatio("RAM KUMAR", "RAMESH KUMAR")
	if got >= NameMatchThreshold {
		t.Errorf("RAMESH KUMAR should score below threshold, got %v", got)
	}
	if math.Abs(got-75) > 0.01 {
		t.Errorf("RAMESH KUMAR score = %v, want 75", got)
	}
	if got := SimilarityRatio("", ""); got != 100 {
		t.Errorf("two empty strings: %v, want 100", got)
	}
}

func TestCompareIdentifiers(t *testing.T) {
	tests := []struct {
		internal  string
		external  string
		wantMatch bool
	}{
		{"POL-123", "pol 123", true},
		{`"POL123"`, "POL123", true},
		{"POL123", "POL124", false},
	}
	for _, tt := range tests {
		r := Compare(tt.internal, tt.external, KindIdentifier)
		if r.Match != tt.wantMatch {
			t.Errorf("Compare(%q, %q) match = %v, want %v", tt.internal, tt.external, r.Match, tt.wantMatch)
		}
	}
}

func TestCompareDates(t *testing.T) {
	tests := []struct {
		name      string
		internal  string
		external  string
		wantMatch bool
	}{
		{"iso vs dmy", "2024-01-15", "15/01/2024", true},
		{"iso vs compact", "2024-01-15", "20240115", true},
		{"timestamp prefix", "2024-01-15 10:30:00", "2024-01-15", true},
		{"different days", "2024-01-15", "2024-01-16", false},
		{"garbage", "not a date", "2024-01-15", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Compare(tt.internal, tt.external, KindDate)
			if r.Match != tt.wantMatch {
				t.Errorf("Compare(%q, %q) match = %v, want %v", tt.internal, tt.external, r.Match, tt.wantMatch)
			}
		})
	}
}

func TestCompareMoney(t *testing.T) {
	r := Compare("1000.00", "1000.90", KindMoney)
	if !r.Match || r.Score != 100 {
		t.Errorf("within tolerance: got %+v", r)
	}

	r = Compare("1000", "1001", KindMoney)
	if !r.Match {
		t.Errorf("difference of exactly 1 should match: got %+v", r)
	}

	r = Compare("1000.00", "1002.00", KindMoney)
	if r.Match {
		t.Errorf("outside tolerance should mismatch: got %+v", r)
	}
	if math.Abs(r.Score-99.8) > 0.01 {
		t.Errorf("relative score = %v, want 99.8", r.Score)
	}

	r = Compare("1,00,000", "100000", KindMoney)
	if !r.Match {
		t.Errorf("thousands separators: got %+v", r)
	}

	r = Compare("abc", "1000", KindMoney)
	if r.Match || r.Detail != "Invalid numeric values" {
		t.Errorf("unparseable amount: got %+v", r)
	}

	r = Compare("0", "500", KindMoney)
	if r.Match || r.Score != 0 {
		t.Errorf("zero internal amount: got %+v", r)
	}
}

func TestCompareFuel(t *testing.T) {
	tests := []struct {
		internal  string
		external  string
		wantMatch bool
	}{
		{"LPG", "Liquid Petroleum Gas", true},
		{"liquid petrol gas", "LPG", true},
		{"Petrol", "PETROL", true},
		{"Petrol", "Diesel", false},
		{"LPG", "CNG", false},
	}
	for _, tt := range tests {
		r := Compare(tt.internal, tt.external, KindFuel)
		if r.Match != tt.wantMatch {
			t.Errorf("Compare(%q, %q) match = %v, want %v", tt.internal, tt.external, r.Match, tt.wantMatch)
		}
	}
}

func TestCompareDefault(t *testing.T) {
	if r := Compare("Maruti", "MARUTI", KindDefault); !r.Match {
		t.Errorf("case-insensitive default: got %+v", r)
	}
	if r := Compare("Maruti", "Hyundai", KindDefault); r.Match {
		t.Errorf("different values: got %+v", r)
	}
}

func TestCompareSelfAlwaysMatches(t *testing.T) {
	values := map[Kind]string{
		KindName:       "RAM KUMAR",
		KindIdentifier: "POL-123",
		KindDate:       "2024-01-15",
		KindMoney:      "1234.56",
		KindFuel:       "Diesel",
		KindDefault:    "anything",
	}
	for kind, v := range values {
		r := Compare(v, v, kind)
		if !r.Match || r.Score != 100 {
			t.Errorf("self-compare under %v: got %+v", kind, r)
		}
	}
}

func TestStandardizeDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"15/01/2024", "2024-01-15", true},
		{"15-01-2024", "2024-01-15", true},
		{"20240115", "2024-01-15", true},
		{"2024-01-15 10:30:00", "2024-01-15", true},
		{"", "", false},
		{"nonsense", "", false},
	}
	for _, tt := range tests {
		got, ok := StandardizeDate(tt.input)
		if ok != tt.ok || got != tt.want {
			t.Errorf("StandardizeDate(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
