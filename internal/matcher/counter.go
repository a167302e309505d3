package matcher

import (
	"strings"

	"insurance-reconciliation-service/internal/models"
)

// CancellationRule configures the explicit cancellation counter for one
// counterparty: the status column to inspect and the labels that mark a
// cancelled row.
type CancellationRule struct {
	Column string
	Labels []string
}

// AmendmentCount derives the amendment/cancellation instance count from
// raw, pre-filter duplicate policy keys: every repeat of a normalized key
// beyond its first occurrence counts as one instance, independent of any
// explicit status flag.
func AmendmentCount(raw *models.Table, identifierColumn string) int {
	if raw == nil || !raw.HasColumn(identifierColumn) {
		return 0
	}
	unique := make(map[string]struct{}, raw.Len())
	for _, row := range raw.Rows {
		key := models.NormalizeKey(row.Value(identifierColumn))
		if key == "" {
			continue
		}
		unique[key] = struct{}{}
	}
	return raw.Len() - len(unique)
}

// ExplicitCancellationCount counts raw rows whose configured status column
// case-insensitively equals one of the configured cancellation labels.
// Zero when no rule or column is configured for the counterparty.
func ExplicitCancellationCount(raw *models.Table, rule *CancellationRule) int {
	if raw == nil || rule == nil || rule.Column == "" || !raw.HasColumn(rule.Column) {
		return 0
	}
	labels := make(map[string]struct{}, len(rule.Labels))
	for _, label := range rule.Labels {
		labels[strings.ToUpper(strings.TrimSpace(label))] = struct{}{}
	}

	count := 0
	for _, row := range raw.Rows {
		value := strings.ToUpper(strings.TrimSpace(row.Value(rule.Column)))
		if _, ok := labels[value]; ok {
			count++
		}
	}
	return count
}

// UniqueKeyCount returns the number of distinct non-blank normalized keys
// in the given column.
func UniqueKeyCount(table *models.Table, identifierColumn string) int {
	if table == nil || !table.HasColumn(identifierColumn) {
		return 0
	}
	unique := make(map[string]struct{}, table.Len())
	for _, row := range table.Rows {
		if key := models.NormalizeKey(row.Value(identifierColumn)); key != "" {
			unique[key] = struct{}{}
		}
	}
	return len(unique)
}
