package categorize

import (
	"fmt"

	"insurance-reconciliation-service/internal/compare"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/errors"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Input carries one counterparty's sets into the categorizer.
type Input struct {
	Counterparty string

	// Universe is the unique normalized external policy keys in
	// first-seen order.
	Universe []string

	// Internal is the internal booked-key set for this counterparty.
	Internal map[string]struct{}

	// OfflinePending is the priority-resolved offline pending-key set.
	OfflinePending map[string]struct{}

	// BlankKeyCount and BlankKeyPremium describe external rows whose
	// policy identifier is empty or unparseable.
	BlankKeyCount   int
	BlankKeyPremium decimal.Decimal

	// IncludeBlankKeys folds blank-key rows into the Unbooked counts and
	// premium. When false they are excluded from the universe entirely.
	IncludeBlankKeys bool
}

// Summary is the categorization result for one counterparty. The three key
// sets are pairwise disjoint and together cover the universe exactly.
type Summary struct {
	Counterparty string

	Booked   map[string]struct{}
	Pending  map[string]struct{}
	Unbooked map[string]struct{}

	BookedNOP   int
	PendingNOP  int
	UnbookedNOP int
	TotalNOP    int

	BookedPremium   decimal.Decimal
	PendingPremium  decimal.Decimal
	UnbookedPremium decimal.Decimal
	TotalPremium    decimal.Decimal

	// Anomalies records data-integrity violations detected by the
	// post-condition checks. The offending sets are repaired defensively,
	// but the condition is surfaced rather than hidden.
	Anomalies []error
}

// Categorizer assigns every unique external key to exactly one bucket.
type Categorizer struct {
	log logger.Logger
}

// NewCategorizer creates a categorizer.
func NewCategorizer(log logger.Logger) *Categorizer {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Categorizer{log: log.WithComponent("categorize")}
}

// Categorize partitions the universe:
//
//	Booked   = U ∩ Internal
//	Pending  = (U \ Booked) ∩ OfflinePending
//	Unbooked = U \ Booked \ Pending
//
// The partition is verified by explicit post-condition checks; violations
// are repaired by re-intersecting with U and surfaced as anomalies.
func (c *Categorizer) Categorize(in Input) *Summary {
	universe := make(map[string]struct{}, len(in.Universe))
	for _, key := range in.Universe {
		universe[key] = struct{}{}
	}

	summary := &Summary{
		Counterparty: in.Counterparty,
		Booked:       make(map[string]struct{}),
		Pending:      make(map[string]struct{}),
		Unbooked:     make(map[string]struct{}),
	}

	for _, key := range in.Universe {
		if _, booked := in.Internal[key]; booked {
			summary.Booked[key] = struct{}{}
			continue
		}
		if _, pending := in.OfflinePending[key]; pending {
			summary.Pending[key] = struct{}{}
			continue
		}
		summary.Unbooked[key] = struct{}{}
	}

	c.verify(summary, universe)

	summary.BookedNOP = len(summary.Booked)
	summary.PendingNOP = len(summary.Pending)
	summary.UnbookedNOP = len(summary.Unbooked)
	if in.IncludeBlankKeys {
		summary.UnbookedNOP += in.BlankKeyCount
		summary.UnbookedPremium = summary.UnbookedPremium.Add(in.BlankKeyPremium)
	}
	summary.TotalNOP = summary.BookedNOP + summary.PendingNOP + summary.UnbookedNOP

	c.log.WithFields(logger.Fields{
		"counterparty": in.Counterparty,
		"universe":     len(in.Universe),
		"booked":       summary.BookedNOP,
		"pending":      summary.PendingNOP,
		"unbooked":     summary.UnbookedNOP,
	}).Info("Categorized policy universe")

	return summary
}

// verify enforces the partition post-conditions: pairwise disjoint buckets
// whose sizes sum to the universe, and no bucket exceeding the universe.
func (c *Categorizer) verify(summary *Summary, universe map[string]struct{}) {
	if overlap := intersectCount(summary.Booked, summary.Pending); overlap > 0 {
		summary.Anomalies = append(summary.Anomalies, errors.NewIntegrityError(errors.CodeBucketOverlap,
			fmt.Sprintf("%d policies in both Booked and Pending", overlap)))
	}
	if overlap := intersectCount(summary.Booked, summary.Unbooked); overlap > 0 {
		summary.Anomalies = append(summary.Anomalies, errors.NewIntegrityError(errors.CodeBucketOverlap,
			fmt.Sprintf("%d policies in both Booked and Unbooked", overlap)))
	}
	if overlap := intersectCount(summary.Pending, summary.Unbooked); overlap > 0 {
		summary.Anomalies = append(summary.Anomalies, errors.NewIntegrityError(errors.CodeBucketOverlap,
			fmt.Sprintf("%d policies in both Pending and Unbooked", overlap)))
	}
	if len(summary.Booked) > len(universe) {
		summary.Anomalies = append(summary.Anomalies, errors.NewIntegrityError(errors.CodeCountMismatch,
			fmt.Sprintf("Booked (%d) exceeds universe (%d)", len(summary.Booked), len(universe))))
	}
	if total := len(summary.Booked) + len(summary.Pending) + len(summary.Unbooked); total != len(universe) {
		summary.Anomalies = append(summary.Anomalies, errors.NewIntegrityError(errors.CodeCountMismatch,
			fmt.Sprintf("bucket sizes sum to %d, universe has %d", total, len(universe))))
	}

	if len(summary.Anomalies) == 0 {
		return
	}

	// Defensive repair: re-intersect every bucket with the universe and
	// re-assert precedence Booked > Pending > Unbooked. The anomaly stays
	// on the summary for the caller.
	for _, anomaly := range summary.Anomalies {
		c.log.WithError(anomaly).Warn("Bucket integrity violation; repairing defensively")
	}
	summary.Booked = intersect(summary.Booked, universe)
	summary.Pending = subtract(intersect(summary.Pending, universe), summary.Booked)
	summary.Unbooked = subtract(subtract(intersect(summary.Unbooked, universe), summary.Booked), summary.Pending)
}

// SumPremium totals the values of premiumColumn over rows whose normalized
// keyColumn value belongs to keys. Unparseable premiums contribute zero.
func SumPremium(table *models.Table, keyColumn, premiumColumn string, keys map[string]struct{}) decimal.Decimal {
	total := decimal.Zero
	if table == nil || keyColumn == "" || premiumColumn == "" {
		return total
	}
	if !table.HasColumn(keyColumn) || !table.HasColumn(premiumColumn) {
		return total
	}
	counted := make(map[string]struct{}, len(keys))
	for _, row := range table.Rows {
		key := models.NormalizeKey(row.Value(keyColumn))
		if key == "" {
			continue
		}
		if _, ok := keys[key]; !ok {
			continue
		}
		if _, dup := counted[key]; dup {
			continue
		}
		counted[key] = struct{}{}
		if amount, err := compare.ParseAmount(row.Value(premiumColumn)); err == nil {
			total = total.Add(amount)
		}
	}
	return total
}

// BlankKeyStats counts external rows with blank or unparseable policy
// identifiers and sums their premium for the empty-key policy flag.
func BlankKeyStats(table *models.Table, keyColumn, premiumColumn string) (int, decimal.Decimal) {
	count := 0
	total := decimal.Zero
	if table == nil || !table.HasColumn(keyColumn) {
		return 0, total
	}
	for _, row := range table.Rows {
		if models.NormalizeKey(row.Value(keyColumn)) != "" {
			continue
		}
		count++
		if premiumColumn != "" && table.HasColumn(premiumColumn) {
			if amount, err := compare.ParseAmount(row.Value(premiumColumn)); err == nil {
				total = total.Add(amount)
			}
		}
	}
	return count, total
}

// UniqueKeys returns the distinct non-blank normalized keys of a column in
// first-seen order.
func UniqueKeys(table *models.Table, keyColumn string) []string {
	if table == nil || !table.HasColumn(keyColumn) {
		return nil
	}
	seen := make(map[string]struct{}, table.Len())
	var keys []string
	for _, row := range table.Rows {
		key := models.NormalizeKey(row.Value(keyColumn))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func subtract(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func intersectCount(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
