// Package filterpipe applies an ordered list of per-counterparty predicate
// rules to an extract before matching, stripping amendments, cancellations
// and out-of-domain rows. Rules compose with AND semantics; a rule whose
// field is absent from the extract is skipped with a warning, never fatal.
package filterpipe

import (
	"fmt"
	"strings"
	"time"

	"insurance-reconciliation-service/internal/compare"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Predicate is the closed enumeration of supported rule conditions.
type Predicate int

const (
	// PredEquals keeps rows whose field equals one of the literals.
	// Numeric-aware: when any literal parses as a number the column is
	// coerced to numeric before comparing.
	PredEquals Predicate = iota
	// PredNotEquals is the negation of PredEquals.
	PredNotEquals
	// PredIn keeps rows whose field is a member of the literal set.
	PredIn
	// PredNotIn is the negation of PredIn.
	PredNotIn
	// PredContains keeps rows whose field contains any literal,
	// case-insensitively.
	PredContains
	// PredNotContains is the negation of PredContains.
	PredNotContains
	// PredNotNull keeps rows whose field is non-blank.
	PredNotNull
	// PredPositive keeps rows whose field parses to a number > 0.
	PredPositive
	// PredNotOlderThan keeps rows whose field date is on or after the date
	// in the rule's reference column.
	PredNotOlderThan
	// PredCurrentMonth keeps rows whose field date falls in the run's
	// current calendar month.
	PredCurrentMonth
)

// String returns the configuration name of the predicate.
func (p Predicate) String() string {
	switch p {
	case PredEquals:
		return "equals"
	case PredNotEquals:
		return "not_equals"
	case PredIn:
		return "in"
	case PredNotIn:
		return "not_in"
	case PredContains:
		return "contains"
	case PredNotContains:
		return "not_contains"
	case PredNotNull:
		return "not_null"
	case PredPositive:
		return "positive"
	case PredNotOlderThan:
		return "not_older_than"
	case PredCurrentMonth:
		return "current_month"
	default:
		return "unknown"
	}
}

// ParsePredicate converts a configuration string into a Predicate.
func ParsePredicate(s string) (Predicate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equals":
		return PredEquals, nil
	case "not_equals":
		return PredNotEquals, nil
	case "in":
		return PredIn, nil
	case "not_in":
		return PredNotIn, nil
	case "contains":
		return PredContains, nil
	case "not_contains":
		return PredNotContains, nil
	case "not_null":
		return PredNotNull, nil
	case "positive":
		return PredPositive, nil
	case "not_older_than":
		return PredNotOlderThan, nil
	case "current_month", "current_month_only":
		return PredCurrentMonth, nil
	default:
		return 0, fmt.Errorf("unknown filter predicate %q", s)
	}
}

// Rule is one predicate applied to one extract field.
type Rule struct {
	Field       string
	Predicate   Predicate
	Values      []string
	Reference   string // reference column for PredNotOlderThan
	Description string
}

// Result reports the outcome of applying a pipeline.
type Result struct {
	Table         *models.Table
	OriginalCount int
	FilteredCount int
	RemovedCount  int
	Applied       []string
	Warnings      []string
}

// Pipeline applies an ordered rule list to extracts.
type Pipeline struct {
	rules []Rule
	now   func() time.Time
	log   logger.Logger
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithClock fixes the pipeline's notion of "now"; used by the current-month
// predicate and by tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithLogger sets the pipeline logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a pipeline over the given ordered rules.
func New(rules []Rule, opts ...Option) *Pipeline {
	p := &Pipeline{
		rules: rules,
		now:   time.Now,
		log:   logger.GetGlobalLogger().WithComponent("filter"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply narrows the table through every rule in order and reports per-rule
// removal counts for audit.
func (p *Pipeline) Apply(table *models.Table) *Result {
	result := &Result{
		Table:         table,
		OriginalCount: table.Len(),
	}

	current := table
	for _, rule := range p.rules {
		if !current.HasColumn(rule.Field) {
			warning := fmt.Sprintf("filter field %q not present; rule skipped", rule.Field)
			result.Warnings = append(result.Warnings, warning)
			p.log.WithFields(logger.Fields{
				"field":     rule.Field,
				"predicate": rule.Predicate.String(),
			}).Warn("Filter field not found in extract")
			continue
		}

		before := current.Len()
		current = current.Select(p.mask(rule))
		removed := before - current.Len()

		if removed > 0 {
			result.Applied = append(result.Applied,
				fmt.Sprintf("%s (removed %d records)", rule.Description, removed))
		} else {
			result.Applied = append(result.Applied,
				fmt.Sprintf("%s (no records removed)", rule.Description))
		}
	}

	result.Table = current
	result.FilteredCount = current.Len()
	result.RemovedCount = result.OriginalCount - result.FilteredCount
	return result
}

// mask builds the pure row predicate for one rule.
func (p *Pipeline) mask(rule Rule) func(models.Row) bool {
	switch rule.Predicate {
	case PredEquals:
		return equality(rule.Field, rule.Values, false)
	case PredNotEquals:
		return equality(rule.Field, rule.Values, true)
	case PredIn:
		return textMembership(rule.Field, rule.Values, false)
	case PredNotIn:
		return textMembership(rule.Field, rule.Values, true)
	case PredContains:
		return contains(rule.Field, rule.Values, false)
	case PredNotContains:
		return contains(rule.Field, rule.Values, true)
	case PredNotNull:
		return func(row models.Row) bool {
			return !models.IsBlank(row.Value(rule.Field))
		}
	case PredPositive:
		return func(row models.Row) bool {
			amount, err := compare.ParseAmount(row.Value(rule.Field))
			return err == nil && amount.IsPositive()
		}
	case PredNotOlderThan:
		return notOlderThan(rule.Field, rule.Reference)
	case PredCurrentMonth:
		return currentMonth(rule.Field, p.now)
	default:
		// Unknown predicates keep every row; the configuration layer
		// rejects them before a pipeline is built.
		return func(models.Row) bool { return true }
	}
}

// equality implements equals / not_equals with numeric awareness: when any
// literal parses as a number the column is coerced to numeric before
// comparing, otherwise values compare as text. Rows that fail numeric
// coercion are excluded by the positive form and retained by the negation.
func equality(field string, values []string, negate bool) func(models.Row) bool {
	if anyNumeric(values) {
		set := numericSet(values)
		return func(row models.Row) bool {
			cell, err := compare.ParseAmount(row.Value(field))
			hit := false
			if err == nil {
				for _, d := range set {
					if cell.Equal(d) {
						hit = true
						break
					}
				}
			}
			return hit != negate
		}
	}
	return textMembership(field, values, negate)
}

func contains(field string, values []string, negate bool) func(models.Row) bool {
	lowered := make([]string, len(values))
	for i, v := range values {
		lowered[i] = strings.ToLower(v)
	}
	return func(row models.Row) bool {
		cell := strings.ToLower(row.Value(field))
		hit := false
		for _, needle := range lowered {
			if needle != "" && strings.Contains(cell, needle) {
				hit = true
				break
			}
		}
		return hit != negate
	}
}

func textMembership(field string, values []string, negate bool) func(models.Row) bool {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(row models.Row) bool {
		_, hit := set[row.Value(field)]
		return hit != negate
	}
}

func notOlderThan(field, reference string) func(models.Row) bool {
	return func(row models.Row) bool {
		fieldDate, okField := compare.ParseDate(row.Value(field))
		refDate, okRef := compare.ParseDate(row.Value(reference))
		if !okField || !okRef {
			return false
		}
		return !fieldDate.Before(refDate)
	}
}

func currentMonth(field string, now func() time.Time) func(models.Row) bool {
	return func(row models.Row) bool {
		date, ok := compare.ParseDate(row.Value(field))
		if !ok {
			return false
		}
		runTime := now()
		return date.Month() == runTime.Month() && date.Year() == runTime.Year()
	}
}

// anyNumeric reports whether any literal parses as a number.
func anyNumeric(values []string) bool {
	for _, v := range values {
		if _, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return true
		}
	}
	return false
}

func numericSet(values []string) []decimal.Decimal {
	set := make([]decimal.Decimal, 0, len(values))
	for _, v := range values {
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			set = append(set, d)
		}
	}
	return set
}
