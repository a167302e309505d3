package schema

import (
	"testing"

	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/logger"
)

func testSpecs() map[string]MappingSpec {
	return map[string]MappingSpec{
		"ACME": {
			models.FieldPolicyNumber: Coalesce("POLICY_NUMBER", "Policy_Number"),
			models.FieldCustomerName: Concatenate("First Name", "Last Name"),
			models.FieldTotalPremium: Single("GROSS_PREMIUM"),
			models.FieldFuelType:     Single("FUEL"),
		},
	}
}

func acmeTable() *models.Table {
	table := models.NewTable([]string{"POLICY_NUMBER", "Policy_Number", "First Name", "Last Name", "GROSS_PREMIUM"})
	table.AddRow(models.Row{
		"POLICY_NUMBER": "POL1", "Policy_Number": "",
		"First Name": "Ram", "Last Name": "Kumar", "GROSS_PREMIUM": "1000",
	})
	table.AddRow(models.Row{
		"POLICY_NUMBER": "", "Policy_Number": "POL2",
		"First Name": "Sita", "Last Name": "", "GROSS_PREMIUM": "2000",
	})
	return table
}

func TestResolveSingleColumn(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	table := acmeTable()

	mapping, err := r.Resolve("ACME", table)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res, ok := mapping.Lookup(models.FieldTotalPremium)
	if !ok {
		t.Fatal("expected total_premium to resolve")
	}
	if res.Column != "GROSS_PREMIUM" || res.Tier != TierStatic {
		t.Errorf("total_premium resolved to %+v", res)
	}
}

func TestResolveCoalesce(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	table := acmeTable()

	mapping, err := r.Resolve("ACME", table)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res, ok := mapping.Lookup(models.FieldPolicyNumber)
	if !ok {
		t.Fatal("expected policy_number to resolve")
	}
	if res.Column != SyntheticColumnName(models.FieldPolicyNumber) {
		t.Errorf("expected synthetic column, got %q", res.Column)
	}
	if res.Tier != TierSynthesized || res.Concatenate {
		t.Errorf("unexpected resolution %+v", res)
	}

	// First non-null value wins per row.
	values := table.ColumnValues(res.Column)
	if values[0] != "POL1" || values[1] != "POL2" {
		t.Errorf("coalesced values = %v", values)
	}
}

func TestResolveCoalesceSinglePresent(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	table := models.NewTable([]string{"Policy_Number", "GROSS_PREMIUM"})
	table.AddRow(models.Row{"Policy_Number": "POL9", "GROSS_PREMIUM": "10"})

	mapping, err := r.Resolve("ACME", table)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res, ok := mapping.Lookup(models.FieldPolicyNumber)
	if !ok {
		t.Fatal("expected policy_number to resolve")
	}
	// With one candidate present no synthetic column is needed.
	if res.Column != "Policy_Number" || res.Tier != TierCandidate {
		t.Errorf("resolution = %+v", res)
	}
	if table.HasColumn(SyntheticColumnName(models.FieldPolicyNumber)) {
		t.Error("synthetic column should not be materialized for a single candidate")
	}
}

func TestResolveConcatenate(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	table := acmeTable()

	mapping, err := r.Resolve("ACME", table)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res, ok := mapping.Lookup(models.FieldCustomerName)
	if !ok {
		t.Fatal("expected customer_name to resolve")
	}
	if !res.Concatenate {
		t.Errorf("expected concatenate resolution, got %+v", res)
	}
	values := table.ColumnValues(res.Column)
	if values[0] != "Ram Kumar" {
		t.Errorf("row 0 = %q, want %q", values[0], "Ram Kumar")
	}
	// Blank parts are dropped, not joined as trailing space.
	if values[1] != "Sita" {
		t.Errorf("row 1 = %q, want %q", values[1], "Sita")
	}
}

func TestResolveUnmappedFieldWarns(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	table := acmeTable() // has no FUEL column

	mapping, err := r.Resolve("ACME", table)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if _, ok := mapping.Lookup(models.FieldFuelType); ok {
		t.Error("fuel_type should be unresolved")
	}
	if len(mapping.Warnings) == 0 {
		t.Error("expected a warning for the unresolved field")
	}
}

func TestResolveUnknownCounterparty(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	if _, err := r.Resolve("NOBODY", acmeTable()); err == nil {
		t.Error("expected error for unknown counterparty")
	}
}

func TestResolveCacheRematerializes(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())

	first := acmeTable()
	mapping1, err := r.Resolve("ACME", first)
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}

	// A fresh table with the same schema gets the cached mapping and its
	// synthetic columns rebuilt.
	second := acmeTable()
	mapping2, err := r.Resolve("ACME", second)
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if mapping1 != mapping2 {
		t.Error("expected the cached mapping to be reused")
	}
	synthetic := SyntheticColumnName(models.FieldPolicyNumber)
	if !second.HasColumn(synthetic) {
		t.Error("synthetic column not rebuilt on cache hit")
	}

	r.Invalidate("ACME")
	mapping3, err := r.Resolve("ACME", acmeTable())
	if err != nil {
		t.Fatalf("Resolve after Invalidate failed: %v", err)
	}
	if mapping1 == mapping3 {
		t.Error("expected a fresh mapping after Invalidate")
	}
}

func TestResolveFieldHeuristic(t *testing.T) {
	r := NewResolver(testSpecs(), logger.NewNop())
	table := acmeTable()
	if err := table.AddColumn("Veh Reg No", []string{"KA01AB1234", "KA02CD5678"}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if _, err := r.Resolve("ACME", table); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	res, ok := r.ResolveField("ACME", models.FieldRegistrationNumber, table)
	if !ok {
		t.Fatal("expected heuristic resolution via synonym")
	}
	if res.Column != "Veh Reg No" || res.Tier != TierHeuristic {
		t.Errorf("resolution = %+v", res)
	}

	// The hit is written back and served from the mapping afterwards.
	again, ok := r.ResolveField("ACME", models.FieldRegistrationNumber, table)
	if !ok || again.Column != res.Column {
		t.Errorf("write-back lookup = %+v, ok=%v", again, ok)
	}

	if _, ok := r.ResolveField("ACME", "no_such_field", table); ok {
		t.Error("expected no resolution for an unknown field")
	}
}

func TestFieldSpecValidate(t *testing.T) {
	if err := Single("A").Validate(); err != nil {
		t.Errorf("Single: %v", err)
	}
	if err := Coalesce().Validate(); err == nil {
		t.Error("expected error for empty coalesce list")
	}
	if err := Unmapped().Validate(); err != nil {
		t.Errorf("Unmapped: %v", err)
	}
}
