package filterpipe

import (
	"strings"
	"testing"
	"time"

	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/logger"
)

func buildTable(column string, values ...string) *models.Table {
	table := models.NewTable([]string{column})
	for _, v := range values {
		table.AddRow(models.Row{column: v})
	}
	return table
}

func applyRule(t *testing.T, table *models.Table, rule Rule, opts ...Option) *Result {
	t.Helper()
	opts = append(opts, WithLogger(logger.NewNop()))
	return New([]Rule{rule}, opts...).Apply(table)
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		input string
		want  Predicate
	}{
		{"equals", PredEquals},
		{"not_equals", PredNotEquals},
		{"in", PredIn},
		{"NOT_IN", PredNotIn},
		{"contains", PredContains},
		{"not_contains", PredNotContains},
		{"not_null", PredNotNull},
		{"positive", PredPositive},
		{"not_older_than", PredNotOlderThan},
		{"current_month", PredCurrentMonth},
		{"current_month_only", PredCurrentMonth},
	}
	for _, tt := range tests {
		got, err := ParsePredicate(tt.input)
		if err != nil || got != tt.want {
			t.Errorf("ParsePredicate(%q) = (%v, %v), want %v", tt.input, got, err, tt.want)
		}
	}
	if _, err := ParsePredicate("bogus"); err == nil {
		t.Error("expected error for unknown predicate")
	}
}

func TestEqualsNumericCoercion(t *testing.T) {
	// "0", "0.0" and "000" are the same number; text comparison would
	// treat them as distinct.
	table := buildTable("Endorsement No", "0", "0.0", "000", "1", "abc")
	result := applyRule(t, table, Rule{
		Field: "Endorsement No", Predicate: PredEquals, Values: []string{"0"},
		Description: "Only base policies",
	})
	if result.FilteredCount != 3 {
		t.Errorf("kept %d rows, want 3", result.FilteredCount)
	}
}

func TestNotEqualsRetainsNonNumeric(t *testing.T) {
	table := buildTable("STATUS", "S", "A", "1")
	result := applyRule(t, table, Rule{
		Field: "STATUS", Predicate: PredNotEquals, Values: []string{"S"},
	})
	// Text comparison: only the literal "S" is removed.
	if result.FilteredCount != 2 {
		t.Errorf("kept %d rows, want 2", result.FilteredCount)
	}
}

func TestInAndNotIn(t *testing.T) {
	table := buildTable("Business Type", "New Business", "Renewal", "Cancellation", "Endorsement")

	in := applyRule(t, table, Rule{
		Field: "Business Type", Predicate: PredIn, Values: []string{"New Business", "Renewal"},
	})
	if in.FilteredCount != 2 {
		t.Errorf("in kept %d rows, want 2", in.FilteredCount)
	}

	notIn := applyRule(t, table, Rule{
		Field: "Business Type", Predicate: PredNotIn, Values: []string{"Cancellation", "Endorsement"},
	})
	if notIn.FilteredCount != 2 {
		t.Errorf("not_in kept %d rows, want 2", notIn.FilteredCount)
	}
}

func TestContainsCaseInsensitive(t *testing.T) {
	table := buildTable("LOB", "Motor OD", "MOTOR TP", "Health", "marine")

	result := applyRule(t, table, Rule{
		Field: "LOB", Predicate: PredContains, Values: []string{"motor"},
	})
	if result.FilteredCount != 2 {
		t.Errorf("contains kept %d rows, want 2", result.FilteredCount)
	}

	negated := applyRule(t, table, Rule{
		Field: "LOB", Predicate: PredNotContains, Values: []string{"motor"},
	})
	if negated.FilteredCount != 2 {
		t.Errorf("not_contains kept %d rows, want 2", negated.FilteredCount)
	}
}

func TestNotNull(t *testing.T) {
	table := buildTable("POLICY NO", "POL1", "", "  ", "null", "POL2")
	result := applyRule(t, table, Rule{Field: "POLICY NO", Predicate: PredNotNull})
	if result.FilteredCount != 2 {
		t.Errorf("kept %d rows, want 2", result.FilteredCount)
	}
}

func TestPositive(t *testing.T) {
	table := buildTable("Total", "100.50", "0", "-25", "abc", "1")
	result := applyRule(t, table, Rule{Field: "Total", Predicate: PredPositive})
	if result.FilteredCount != 2 {
		t.Errorf("kept %d rows, want 2", result.FilteredCount)
	}
}

func TestNotOlderThan(t *testing.T) {
	table := models.NewTable([]string{"Effect Date", "Issue Date"})
	table.AddRow(models.Row{"Effect Date": "2024-02-01", "Issue Date": "2024-01-15"}) // keep
	table.AddRow(models.Row{"Effect Date": "2024-01-10", "Issue Date": "2024-01-15"}) // drop
	table.AddRow(models.Row{"Effect Date": "2024-01-15", "Issue Date": "2024-01-15"}) // keep (same day)
	table.AddRow(models.Row{"Effect Date": "garbage", "Issue Date": "2024-01-15"})    // drop

	result := applyRule(t, table, Rule{
		Field: "Effect Date", Predicate: PredNotOlderThan, Reference: "Issue Date",
	})
	if result.FilteredCount != 2 {
		t.Errorf("kept %d rows, want 2", result.FilteredCount)
	}
}

func TestCurrentMonth(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC) }
	table := buildTable("Pol Issue Date", "2024-03-01", "2024-03-31", "2024-02-29", "2023-03-15")

	result := applyRule(t, table, Rule{
		Field: "Pol Issue Date", Predicate: PredCurrentMonth,
	}, WithClock(now))
	if result.FilteredCount != 2 {
		t.Errorf("kept %d rows, want 2", result.FilteredCount)
	}
}

func TestMissingFieldSkipsRuleWithWarning(t *testing.T) {
	table := buildTable("Other", "a", "b")
	result := applyRule(t, table, Rule{
		Field: "Missing", Predicate: PredNotNull, Description: "should be skipped",
	})
	if result.FilteredCount != 2 {
		t.Errorf("skipped rule removed rows: kept %d, want 2", result.FilteredCount)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", result.Warnings)
	}
	if len(result.Applied) != 0 {
		t.Errorf("skipped rule should not appear in the applied list: %v", result.Applied)
	}
}

func TestAppliedAuditStrings(t *testing.T) {
	table := buildTable("Status", "Active", "Cancelled", "Active")
	result := New([]Rule{
		{Field: "Status", Predicate: PredNotContains, Values: []string{"Cancelled"}, Description: "Remove cancelled policies"},
		{Field: "Status", Predicate: PredNotNull, Description: "Require status"},
	}, WithLogger(logger.NewNop())).Apply(table)

	if len(result.Applied) != 2 {
		t.Fatalf("applied = %v, want two entries", result.Applied)
	}
	if !strings.Contains(result.Applied[0], "(removed 1 records)") {
		t.Errorf("first audit string = %q", result.Applied[0])
	}
	if !strings.Contains(result.Applied[1], "(no records removed)") {
		t.Errorf("second audit string = %q", result.Applied[1])
	}
	if result.OriginalCount != 3 || result.FilteredCount != 2 || result.RemovedCount != 1 {
		t.Errorf("counts = %d/%d/%d", result.OriginalCount, result.FilteredCount, result.RemovedCount)
	}
}

func TestRulesComposeInOrder(t *testing.T) {
	table := models.NewTable([]string{"LOB", "Premium"})
	table.AddRow(models.Row{"LOB": "Motor", "Premium": "100"})
	table.AddRow(models.Row{"LOB": "Motor", "Premium": "-5"})
	table.AddRow(models.Row{"LOB": "Health", "Premium": "200"})

	result := New([]Rule{
		{Field: "LOB", Predicate: PredContains, Values: []string{"motor"}},
		{Field: "Premium", Predicate: PredPositive},
	}, WithLogger(logger.NewNop())).Apply(table)

	if result.FilteredCount != 1 {
		t.Errorf("kept %d rows, want 1", result.FilteredCount)
	}
	if got := result.Table.Rows[0].Value("Premium"); got != "100" {
		t.Errorf("surviving row premium = %q", got)
	}
}
