// Package parsers loads the collaborator-supplied CSV tables: the internal
// booking table, per-counterparty extracts and the optional offline status
// table. It handles header aliasing, delimiter variations and legacy
// internal header formats, and reports per-file parse statistics.
package parsers

import (
	"fmt"
)

// TableConfig controls how one CSV file is read into a table.
type TableConfig struct {
	// Name labels the table in logs and errors.
	Name string

	// HasHeader indicates the first row carries column names.
	HasHeader bool

	// Delimiter is the field separator, ',' by default.
	Delimiter rune

	// ColumnAliases renames source headers to expected column names,
	// matched case-insensitively after trimming.
	ColumnAliases map[string]string

	// TrimSpace trims whitespace from every cell.
	TrimSpace bool
}

// Validate rejects unusable configurations.
func (c *TableConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("table config requires a name")
	}
	if c.Delimiter == 0 {
		return fmt.Errorf("table config requires a delimiter")
	}
	return nil
}

// InternalTableConfig returns the configuration for the internal booking
// table.
func InternalTableConfig() *TableConfig {
	return &TableConfig{
		Name:      "internal",
		HasHeader: true,
		Delimiter: ',',
		TrimSpace: true,
	}
}

// ExtractTableConfig returns the configuration for one counterparty
// extract. Extract headers are counterparty-specific and unstable, so no
// aliasing happens here; the schema resolver owns column mapping.
func ExtractTableConfig(counterparty string) *TableConfig {
	return &TableConfig{
		Name:      fmt.Sprintf("extract_%s", counterparty),
		HasHeader: true,
		Delimiter: ',',
		TrimSpace: true,
	}
}

// OfflineTableConfig returns the configuration for the offline status
// table.
func OfflineTableConfig() *TableConfig {
	return &TableConfig{
		Name:      "offline",
		HasHeader: true,
		Delimiter: ',',
		TrimSpace: true,
		ColumnAliases: map[string]string{
			"policy no":     "Policy Number",
			"policy number": "Policy Number",
			"status":        "Status",
			"premium":       "Premium",
		},
	}
}

// legacyInternalHeaders maps old internal export headers onto the current
// format. The rename applies only when the legacy marker column is present
// and its replacement is not.
var legacyInternalHeaders = map[string]string{
	"PolicyNumber": "Policy Number",
}

// legacyMarkerColumn identifies an old-format internal export.
const legacyMarkerColumn = "PolicyNumber"
