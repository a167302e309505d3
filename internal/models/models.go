// Package models defines the core data structures shared across the
// reconciliation engine: rectangular tables, policy records, comparison
// outcomes, category buckets and offline status records.
//
// All entities are created fresh per run from caller-supplied tables and
// configuration. The only state that outlives a run is the resolved-mapping
// cache owned by the schema resolver.
package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Canonical field names used across mappings, comparisons and configuration.
// Counterparty extracts map these to whatever column headers they actually
// carry; the internal booking table maps them through the configured
// internal column set.
const (
	FieldPolicyNumber         = "policy_number"
	FieldCustomerName         = "customer_name"
	FieldPolicyStartDate      = "policy_start_date"
	FieldPolicyEndDate        = "policy_end_date"
	FieldRegistrationNumber   = "registration_number"
	FieldEngineNumber         = "engine_number"
	FieldChassisNumber        = "chassis_number"
	FieldTotalPremium         = "total_premium"
	FieldTPPremium            = "tp_premium"
	FieldPreviousPolicyNumber = "previous_policy_number"
	FieldBrokerName           = "broker_name"
	FieldBrokerCode           = "broker_code"
	FieldSumInsured           = "sum_insured"
	FieldVehicleMake          = "vehicle_make"
	FieldVehicleModel         = "vehicle_model"
	FieldFuelType             = "fuel_type"
	FieldSeatingCapacity      = "seating_capacity"
	FieldGrossWeight          = "gvw"
	FieldPolicyType           = "policy_type"
	FieldInsuranceCompany     = "insurance_company"
)

// keyReplacer strips the separators and quoting that counterparties apply
// inconsistently to policy identifiers.
var keyReplacer = strings.NewReplacer(" ", "", "-", "", `"`, "", "'", "")

var quoteReplacer = strings.NewReplacer(`"`, "", "'", "")

// NormalizeKey canonicalizes a policy identifier for use as a join key:
// trimmed, uppercased, with spaces, hyphens and quotes removed. The
// operation is idempotent.
func NormalizeKey(v string) string {
	return keyReplacer.Replace(strings.ToUpper(strings.TrimSpace(v)))
}

// CleanValue trims a value and strips quote characters while preserving
// readability for display and fuzzy comparison.
func CleanValue(v string) string {
	return quoteReplacer.Replace(strings.TrimSpace(v))
}

// blankTokens are cell values that spreadsheet exports use for missing
// data and must be treated as null.
var blankTokens = map[string]struct{}{
	"null": {}, "nan": {}, "none": {}, "n/a": {}, "na": {},
}

// IsBlank reports whether a cell value should be treated as null.
func IsBlank(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := blankTokens[strings.ToLower(v)]
	return ok
}

// FieldTitle converts a canonical field name to its display form,
// e.g. "customer_name" -> "Customer Name".
func FieldTitle(field string) string {
	parts := strings.Split(field, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}

// Row is a single record keyed by column name. Missing columns and blank
// values are both treated as null.
type Row map[string]string

// Get returns the value for a column and whether the column is present.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Value returns the value for a column, or the empty string when absent.
func (r Row) Value(column string) string {
	return r[column]
}

// Table is a rectangular, named-column, row-oriented dataset. Column order
// is preserved from the source so that derived tables and reports remain
// deterministic.
type Table struct {
	Columns []string
	Rows    []Row

	columnSet map[string]struct{}
}

// NewTable creates an empty table with the given column order.
func NewTable(columns []string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.rebuildColumnSet()
	return t
}

func (t *Table) rebuildColumnSet() {
	t.columnSet = make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		t.columnSet[c] = struct{}{}
	}
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	if t.columnSet == nil {
		t.rebuildColumnSet()
	}
	_, ok := t.columnSet[name]
	return ok
}

// AddColumn appends a column, filling existing rows with the supplied
// per-row values. The schema resolver uses this to materialize synthetic
// coalesced and concatenated columns.
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
		t.columnSet[name] = struct{}{}
	}
	for i, row := range t.Rows {
		row[name] = values[i]
	}
	return nil
}

// AddRow appends a row to the table.
func (t *Table) AddRow(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnValues returns the per-row values of one column, with the empty
// string for rows where the column is absent.
func (t *Table) ColumnValues(name string) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[name]
	}
	return values
}

// Select returns a new table sharing this table's columns and containing
// only the rows for which keep reports true.
func (t *Table) Select(keep func(Row) bool) *Table {
	out := NewTable(t.Columns)
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// MatchStatus classifies a single comparison outcome row.
type MatchStatus string

const (
	// StatusMatch indicates the internal and external values agree under
	// the field's comparison policy.
	StatusMatch MatchStatus = "Match"
	// StatusMismatch indicates both values are present but disagree.
	StatusMismatch MatchStatus = "Mismatch"
	// StatusNotFoundInInternal marks an external policy with no internal
	// booking record.
	StatusNotFoundInInternal MatchStatus = "Not Found in Internal"
	// StatusNotFoundInExternal marks an internal booking absent from the
	// counterparty extract.
	StatusNotFoundInExternal MatchStatus = "Not Found in External"
	// StatusInfo carries audit information such as the applied filter
	// summary; it does not describe a field comparison.
	StatusInfo MatchStatus = "Info"
)

// IsValid checks whether the status is one of the defined values.
func (s MatchStatus) IsValid() bool {
	switch s {
	case StatusMatch, StatusMismatch, StatusNotFoundInInternal, StatusNotFoundInExternal, StatusInfo:
		return true
	default:
		return false
	}
}

// ComparisonOutcome is one row of the reconciliation output. Outcomes are
// immutable once emitted by the matcher.
type ComparisonOutcome struct {
	PolicyNumber    string          `json:"policy_number"`
	RequestID       string          `json:"request_id"`
	Field           string          `json:"field"`
	Status          MatchStatus     `json:"status"`
	Score           float64         `json:"score"`
	InternalValue   string          `json:"internal_value"`
	ExternalValue   string          `json:"external_value"`
	Detail          string          `json:"detail"`
	ExternalPremium decimal.Decimal `json:"external_premium"`
}

// String returns a compact representation for logs and debugging.
func (o ComparisonOutcome) String() string {
	return fmt.Sprintf("Outcome{Policy: %s, Field: %s, Status: %s, Score: %.1f}",
		o.PolicyNumber, o.Field, o.Status, o.Score)
}

// CategoryBucket is the three-way partition assigned to each unique
// normalized external policy key.
type CategoryBucket int

const (
	// BucketBooked holds external policies present in the internal set.
	BucketBooked CategoryBucket = iota
	// BucketPending holds external policies awaiting booking per the
	// offline status source.
	BucketPending
	// BucketUnbooked holds the remainder of the external universe.
	BucketUnbooked
)

// String returns the display name of the bucket.
func (b CategoryBucket) String() string {
	switch b {
	case BucketBooked:
		return "Booked"
	case BucketPending:
		return "Pending"
	case BucketUnbooked:
		return "Unbooked"
	default:
		return "Unknown"
	}
}

// OfflineStatusRecord is one deduplicated row of the offline status source.
// At most one record survives per normalized key, chosen by lowest priority
// rank with ties broken by original row order.
type OfflineStatusRecord struct {
	Key      string
	Label    string
	Priority int
	Premium  decimal.Decimal
}
