// Package categorize partitions a counterparty's de-duplicated policy
// universe into Booked, Pending and Unbooked using set arithmetic against
// the internal booking set and a priority-resolved offline status source.
package categorize

import (
	"strings"

	"insurance-reconciliation-service/internal/compare"
	"insurance-reconciliation-service/internal/models"
)

// Offline status priority ranks. Lower wins during deduplication.
const (
	PriorityBooked  = 1
	PriorityPending = 2
	PriorityOther   = 3
)

// DefaultPendingLabels are the offline status labels that place a policy
// in the Pending bucket.
var DefaultPendingLabels = []string{"new", "ticket closed duplicate"}

// OfflineConfig describes how to read the offline status table.
type OfflineConfig struct {
	PolicyColumn  string
	StatusColumn  string
	PremiumColumn string
	PendingLabels []string
}

// DefaultOfflineConfig returns the conventional offline table layout.
func DefaultOfflineConfig() *OfflineConfig {
	return &OfflineConfig{
		PolicyColumn:  "Policy Number",
		StatusColumn:  "Status",
		PremiumColumn: "Premium",
		PendingLabels: DefaultPendingLabels,
	}
}

// PriorityFor ranks an offline status label: any label containing "booked"
// outranks the pending set, which outranks everything else.
func PriorityFor(label string, pendingLabels []string) int {
	cleaned := strings.ToLower(strings.TrimSpace(label))
	if strings.Contains(cleaned, "booked") {
		return PriorityBooked
	}
	for _, pending := range pendingLabels {
		if cleaned == strings.ToLower(strings.TrimSpace(pending)) {
			return PriorityPending
		}
	}
	return PriorityOther
}

// BuildOfflineRecords reads the offline status table into records keyed by
// normalized policy number, then deduplicates: for each key the single row
// of lowest priority rank survives, ties broken by original row order.
func BuildOfflineRecords(table *models.Table, cfg *OfflineConfig) []models.OfflineStatusRecord {
	if table == nil || cfg == nil {
		return nil
	}
	if !table.HasColumn(cfg.PolicyColumn) || !table.HasColumn(cfg.StatusColumn) {
		return nil
	}

	best := make(map[string]models.OfflineStatusRecord)
	var order []string

	for _, row := range table.Rows {
		key := models.NormalizeKey(row.Value(cfg.PolicyColumn))
		if key == "" {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(row.Value(cfg.StatusColumn)))
		record := models.OfflineStatusRecord{
			Key:      key,
			Label:    label,
			Priority: PriorityFor(label, cfg.PendingLabels),
		}
		if cfg.PremiumColumn != "" {
			if amount, err := compare.ParseAmount(row.Value(cfg.PremiumColumn)); err == nil {
				record.Premium = amount
			}
		}

		existing, seen := best[key]
		if !seen {
			best[key] = record
			order = append(order, key)
			continue
		}
		// Strictly lower rank replaces; equal rank keeps the earlier row.
		if record.Priority < existing.Priority {
			best[key] = record
		}
	}

	records := make([]models.OfflineStatusRecord, 0, len(order))
	for _, key := range order {
		records = append(records, best[key])
	}
	return records
}

// PendingKeys restricts deduplicated offline records to those whose
// resolved label is in the pending set, returning their keys.
func PendingKeys(records []models.OfflineStatusRecord) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, r := range records {
		if r.Priority == PriorityPending {
			keys[r.Key] = struct{}{}
		}
	}
	return keys
}
