package categorize

import (
	"testing"

	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

func keySet(keys ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"Booked", PriorityBooked},
		{"policy booked offline", PriorityBooked},
		{"BOOKED - manual", PriorityBooked},
		{"New", PriorityPending},
		{"ticket closed duplicate", PriorityPending},
		{"Ticket Closed Duplicate", PriorityPending},
		{"rejected", PriorityOther},
		{"", PriorityOther},
	}
	for _, tt := range tests {
		if got := PriorityFor(tt.label, DefaultPendingLabels); got != tt.want {
			t.Errorf("PriorityFor(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestBuildOfflineRecordsPriorityWins(t *testing.T) {
	table := models.NewTable([]string{"Policy Number", "Status", "Premium"})
	// Lower-priority rows first in both directions; row order must not
	// change the winner.
	table.AddRow(models.Row{"Policy Number": "P1", "Status": "New", "Premium": "10"})
	table.AddRow(models.Row{"Policy Number": "P1", "Status": "Booked", "Premium": "20"})
	table.AddRow(models.Row{"Policy Number": "P2", "Status": "Booked", "Premium": "30"})
	table.AddRow(models.Row{"Policy Number": "P2", "Status": "New", "Premium": "40"})
	table.AddRow(models.Row{"Policy Number": "P3", "Status": "rejected", "Premium": "50"})
	table.AddRow(models.Row{"Policy Number": "P3", "Status": "New", "Premium": "60"})

	records := BuildOfflineRecords(table, DefaultOfflineConfig())
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	byKey := make(map[string]models.OfflineStatusRecord)
	for _, r := range records {
		byKey[r.Key] = r
	}
	if r := byKey["P1"]; r.Priority != PriorityBooked || !r.Premium.Equal(decimal.NewFromInt(20)) {
		t.Errorf("P1 = %+v, want booked row", r)
	}
	if r := byKey["P2"]; r.Priority != PriorityBooked || !r.Premium.Equal(decimal.NewFromInt(30)) {
		t.Errorf("P2 = %+v, want booked row", r)
	}
	if r := byKey["P3"]; r.Priority != PriorityPending {
		t.Errorf("P3 = %+v, want pending row", r)
	}
	// First-seen key order is preserved.
	if records[0].Key != "P1" || records[1].Key != "P2" || records[2].Key != "P3" {
		t.Errorf("record order = %v", []string{records[0].Key, records[1].Key, records[2].Key})
	}
}

func TestBuildOfflineRecordsTieKeepsEarlier(t *testing.T) {
	table := models.NewTable([]string{"Policy Number", "Status", "Premium"})
	table.AddRow(models.Row{"Policy Number": "P1", "Status": "New", "Premium": "10"})
	table.AddRow(models.Row{"Policy Number": "P1", "Status": "New", "Premium": "99"})

	records := BuildOfflineRecords(table, DefaultOfflineConfig())
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if !records[0].Premium.Equal(decimal.NewFromInt(10)) {
		t.Errorf("tie should keep the earlier row, got premium %s", records[0].Premium)
	}
}

func TestPendingKeys(t *testing.T) {
	records := []models.OfflineStatusRecord{
		{Key: "P1", Priority: PriorityBooked},
		{Key: "P2", Priority: PriorityPending},
		{Key: "P3", Priority: PriorityOther},
	}
	keys := PendingKeys(records)
	if len(keys) != 1 {
		t.Fatalf("got %d pending keys, want 1", len(keys))
	}
	if _, ok := keys["P2"]; !ok {
		t.Error("P2 should be pending")
	}
}

func TestCategorizePartition(t *testing.T) {
	c := NewCategorizer(logger.NewNop())
	summary := c.Categorize(Input{
		Counterparty:   "ACME",
		Universe:       []string{"P1", "P2", "P3", "P4"},
		Internal:       keySet("P1", "P3"),
		OfflinePending: keySet("P2", "P3"), // P3 is also internal: Booked wins
	})

	if len(summary.Anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", summary.Anomalies)
	}
	if summary.BookedNOP != 2 || summary.PendingNOP != 1 || summary.UnbookedNOP != 1 {
		t.Errorf("NOP = %d/%d/%d, want 2/1/1", summary.BookedNOP, summary.PendingNOP, summary.UnbookedNOP)
	}
	if summary.TotalNOP != 4 {
		t.Errorf("TotalNOP = %d, want 4", summary.TotalNOP)
	}
	if _, ok := summary.Booked["P3"]; !ok {
		t.Error("P3 must be Booked, not Pending")
	}
	if _, ok := summary.Unbooked["P4"]; !ok {
		t.Error("P4 must be Unbooked")
	}

	// Buckets are pairwise disjoint and cover the universe.
	for key := range summary.Booked {
		if _, ok := summary.Pending[key]; ok {
			t.Errorf("%s in both Booked and Pending", key)
		}
		if _, ok := summary.Unbooked[key]; ok {
			t.Errorf("%s in both Booked and Unbooked", key)
		}
	}
	for key := range summary.Pending {
		if _, ok := summary.Unbooked[key]; ok {
			t.Errorf("%s in both Pending and Unbooked", key)
		}
	}
}

func TestCategorizeBlankKeyFolding(t *testing.T) {
	c := NewCategorizer(logger.NewNop())
	in := Input{
		Counterparty:    "ACME",
		Universe:        []string{"P1"},
		Internal:        keySet("P1"),
		BlankKeyCount:   2,
		BlankKeyPremium: decimal.NewFromInt(500),
	}

	excluded := c.Categorize(in)
	if excluded.UnbookedNOP != 0 || !excluded.UnbookedPremium.IsZero() {
		t.Errorf("blank keys folded despite IncludeBlankKeys=false: %d / %s",
			excluded.UnbookedNOP, excluded.UnbookedPremium)
	}

	in.IncludeBlankKeys = true
	included := c.Categorize(in)
	if included.UnbookedNOP != 2 {
		t.Errorf("UnbookedNOP = %d, want 2 blank-key rows", included.UnbookedNOP)
	}
	if !included.UnbookedPremium.Equal(decimal.NewFromInt(500)) {
		t.Errorf("UnbookedPremium = %s, want 500", included.UnbookedPremium)
	}
	if included.TotalNOP != 3 {
		t.Errorf("TotalNOP = %d, want 3", included.TotalNOP)
	}
}

func TestCategorizeEmptyUniverse(t *testing.T) {
	c := NewCategorizer(logger.NewNop())
	summary := c.Categorize(Input{Counterparty: "ACME"})
	if summary.TotalNOP != 0 || len(summary.Anomalies) != 0 {
		t.Errorf("empty universe: %+v", summary)
	}
}

func TestSumPremium(t *testing.T) {
	table := models.NewTable([]string{"Policy Number", "Premium"})
	table.AddRow(models.Row{"Policy Number": "P1", "Premium": "100.50"})
	table.AddRow(models.Row{"Policy Number": "p-1", "Premium": "999"}) // same key, not double counted
	table.AddRow(models.Row{"Policy Number": "P2", "Premium": "200"})
	table.AddRow(models.Row{"Policy Number": "P3", "Premium": "garbage"})
	table.AddRow(models.Row{"Policy Number": "P4", "Premium": "50"}) // outside key set

	total := SumPremium(table, "Policy Number", "Premium", keySet("P1", "P2", "P3"))
	want := decimal.RequireFromString("300.50")
	if !total.Equal(want) {
		t.Errorf("SumPremium = %s, want %s", total, want)
	}
}

func TestSumPremiumMissingColumns(t *testing.T) {
	table := models.NewTable([]string{"Policy Number"})
	table.AddRow(models.Row{"Policy Number": "P1"})
	if got := SumPremium(table, "Policy Number", "Premium", keySet("P1")); !got.IsZero() {
		t.Errorf("missing premium column should yield zero, got %s", got)
	}
	if got := SumPremium(nil, "Policy Number", "Premium", nil); !got.IsZero() {
		t.Errorf("nil table should yield zero, got %s", got)
	}
}

func TestBlankKeyStats(t *testing.T) {
	table := models.NewTable([]string{"POL_NO", "PREMIUM"})
	table.AddRow(models.Row{"POL_NO": "P1", "PREMIUM": "100"})
	table.AddRow(models.Row{"POL_NO": "", "PREMIUM": "25"})
	table.AddRow(models.Row{"POL_NO": "   ", "PREMIUM": "75"})
	table.AddRow(models.Row{"POL_NO": "", "PREMIUM": "bad"})

	count, premium := BlankKeyStats(table, "POL_NO", "PREMIUM")
	if count != 3 {
		t.Errorf("blank count = %d, want 3", count)
	}
	if !premium.Equal(decimal.NewFromInt(100)) {
		t.Errorf("blank premium = %s, want 100", premium)
	}
}

func TestUniqueKeys(t *testing.T) {
	table := models.NewTable([]string{"POL_NO"})
	for _, v := range []string{"P2", "P1", "p-2", "", "P3", "P1"} {
		table.AddRow(models.Row{"POL_NO": v})
	}
	keys := UniqueKeys(table, "POL_NO")
	want := []string{"P2", "P1", "P3"}
	if len(keys) != len(want) {
		t.Fatalf("UniqueKeys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("UniqueKeys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
