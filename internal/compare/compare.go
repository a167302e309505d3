// Package compare implements the type-aware field comparator. Each
// canonical field is compared under a kind-specific policy that yields a
// match flag, a 0-100 score and a human-readable detail string.
//
// Value-level failures (unparseable dates or numbers) never escape the
// comparator; they resolve to a score-0 mismatch for that single field.
package compare

import (
	"fmt"
	"strings"
	"time"

	"insurance-reconciliation-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Kind selects the comparison policy for a field.
type Kind int

const (
	// KindDefault compares trimmed values case-insensitively.
	KindDefault Kind = iota
	// KindName compares person or organization names by character-level
	// similarity ratio.
	KindName
	// KindIdentifier compares aggressively normalized identifiers exactly.
	KindIdentifier
	// KindDate parses both sides against a fixed format list and compares
	// the normalized ISO forms.
	KindDate
	// KindMoney compares numeric amounts with an absolute tolerance of one
	// unit.
	KindMoney
	// KindFuel treats a fixed synonym set as equivalent before falling
	// back to case-insensitive exact comparison.
	KindFuel
)

// String returns the name of the comparison kind.
func (k Kind) String() string {
	switch k {
	case KindName:
		return "name"
	case KindIdentifier:
		return "identifier"
	case KindDate:
		return "date"
	case KindMoney:
		return "money"
	case KindFuel:
		return "fuel"
	default:
		return "default"
	}
}

// fieldKinds assigns comparison policies to the canonical fields.
var fieldKinds = map[string]Kind{
	models.FieldCustomerName:         KindName,
	models.FieldBrokerName:           KindName,
	models.FieldPolicyNumber:         KindIdentifier,
	models.FieldRegistrationNumber:   KindIdentifier,
	models.FieldEngineNumber:         KindIdentifier,
	models.FieldChassisNumber:        KindIdentifier,
	models.FieldPolicyStartDate:      KindDate,
	models.FieldPolicyEndDate:        KindDate,
	models.FieldTotalPremium:         KindMoney,
	models.FieldTPPremium:            KindMoney,
	models.FieldSumInsured:           KindMoney,
	models.FieldFuelType:             KindFuel,
	models.FieldPreviousPolicyNumber: KindIdentifier,
}

// KindForField returns the comparison kind for a canonical field name,
// falling back to the default policy for unknown fields.
func KindForField(field string) Kind {
	if k, ok := fieldKinds[field]; ok {
		return k
	}
	return KindDefault
}

// Result is the outcome of one field comparison.
type Result struct {
	Match  bool
	Score  float64
	Detail string
}

// NameMatchThreshold is the minimum similarity ratio for a name match.
const NameMatchThreshold = 80.0

// MoneyTolerance is the absolute difference, in currency units, within
// which two amounts are considered equal.
var MoneyTolerance = decimal.NewFromInt(1)

// dateFormats is the fixed, ordered list of accepted date layouts.
var dateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"20060102",
}

// lpgVariations are fuel-type spellings treated as mutually equivalent.
var lpgVariations = map[string]struct{}{
	"LPG":                  {},
	"LIQUID PETROLEUM GAS": {},
	"LIQUID PETROL GAS":    {},
	"LIQUID PETROLEUM":     {},
}

// Compare evaluates an internal value against an external value under the
// policy for the given kind.
func Compare(internal, external string, kind Kind) Result {
	internalBlank := models.IsBlank(internal)
	externalBlank := models.IsBlank(external)

	if internalBlank && externalBlank {
		return Result{Match: true, Score: 100, Detail: "Both null"}
	}
	if internalBlank || externalBlank {
		return Result{Match: false, Score: 0, Detail: "One value is null"}
	}

	switch kind {
	case KindName:
		return compareNames(internal, external)
	case KindIdentifier:
		return compareIdentifiers(internal, external)
	case KindDate:
		return compareDates(internal, external)
	case KindMoney:
		return compareMoney(internal, external)
	case KindFuel:
		return compareFuel(internal, external)
	default:
		return compareDefault(internal, external)
	}
}

func compareNames(internal, external string) Result {
	score := SimilarityRatio(models.CleanValue(internal), models.CleanValue(external))
	return Result{
		Match:  score >= NameMatchThreshold,
		Score:  score,
		Detail: fmt.Sprintf("Fuzzy match score: %.0f%%", score),
	}
}

func compareIdentifiers(internal, external string) Result {
	if models.NormalizeKey(internal) == models.NormalizeKey(external) {
		return Result{Match: true, Score: 100, Detail: "Exact match"}
	}
	return Result{Match: false, Score: 0, Detail: "No match"}
}

func compareDates(internal, external string) Result {
	internalISO, okInternal := StandardizeDate(internal)
	externalISO, okExternal := StandardizeDate(external)
	if okInternal && okExternal && internalISO == externalISO {
		return Result{Match: true, Score: 100, Detail: "Date match"}
	}
	return Result{Match: false, Score: 0, Detail: "Date mismatch"}
}

func compareMoney(internal, external string) Result {
	internalAmount, errInternal := ParseAmount(internal)
	externalAmount, errExternal := ParseAmount(external)
	if errInternal != nil || errExternal != nil {
		return Result{Match: false, Score: 0, Detail: "Invalid numeric values"}
	}

	diff := internalAmount.Sub(externalAmount).Abs()
	if diff.LessThanOrEqual(MoneyTolerance) {
		return Result{
			Match:  true,
			Score:  100,
			Detail: fmt.Sprintf("Difference: %s", diff.StringFixed(2)),
		}
	}

	score := 0.0
	if !internalAmount.IsZero() {
		relPct, _ := diff.Div(internalAmount.Abs()).Mul(decimal.NewFromInt(100)).Float64()
		score = 100 - relPct
		if score < 0 {
			score = 0
		}
	}
	return Result{
		Match:  false,
		Score:  score,
		Detail: fmt.Sprintf("Difference: %s", diff.StringFixed(2)),
	}
}

func compareFuel(internal, external string) Result {
	internalClean := strings.ToUpper(models.CleanValue(internal))
	externalClean := strings.ToUpper(models.CleanValue(external))

	_, internalLPG := lpgVariations[internalClean]
	_, externalLPG := lpgVariations[externalClean]
	if internalLPG && externalLPG {
		return Result{Match: true, Score: 100, Detail: "LPG match"}
	}
	if internalClean == externalClean {
		return Result{Match: true, Score: 100, Detail: "Exact match"}
	}
	return Result{Match: false, Score: 0, Detail: "No match"}
}

func compareDefault(internal, external string) Result {
	if strings.EqualFold(models.CleanValue(internal), models.CleanValue(external)) {
		return Result{Match: true, Score: 100, Detail: "Exact match"}
	}
	return Result{Match: false, Score: 0, Detail: "No match"}
}

// SimilarityRatio computes a 0-100 character-level similarity between two
// strings, case-insensitively, based on edit distance relative to the
// longer string.
func SimilarityRatio(a, b string) float64 {
	upperA := []rune(strings.ToUpper(a))
	upperB := []rune(strings.ToUpper(b))
	if len(upperA) == 0 && len(upperB) == 0 {
		return 100
	}

	maxLen := len(upperA)
	if len(upperB) > maxLen {
		maxLen = len(upperB)
	}

	distance := levenshtein.DistanceForStrings(upperA, upperB, levenshtein.DefaultOptions)
	return (1 - float64(distance)/float64(maxLen)) * 100
}

// StandardizeDate parses a date against the fixed format list and returns
// its ISO form. The second return is false when no format matched.
func StandardizeDate(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	// Timestamps such as "2024-01-15 10:30:00" carry the date up front.
	if len(trimmed) > 10 {
		if t, err := time.Parse("2006-01-02", trimmed[:10]); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// ParseDate parses a date against the fixed format list.
func ParseDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	if len(trimmed) > 10 {
		if t, err := time.Parse("2006-01-02", trimmed[:10]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount parses a monetary amount after stripping thousands
// separators.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	return decimal.NewFromString(cleaned)
}
