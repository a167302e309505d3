package reconciler

import (
	"context"
	"sort"
	"time"

	"insurance-reconciliation-service/internal/categorize"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/errors"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/google/uuid"
)

// BookingReport is the three-bucket categorization across all
// counterparties with extracts in a run.
type BookingReport struct {
	RunID     string
	Summaries []*categorize.Summary
	// OfflineRecords is the offline status row count after
	// priority-based duplicate resolution.
	OfflineRecords int
	Duration       time.Duration
}

// TotalsByBucket sums NOP counts over all counterparty summaries.
func (r *BookingReport) TotalsByBucket() (booked, pending, unbooked int) {
	for _, s := range r.Summaries {
		booked += s.BookedNOP
		pending += s.PendingNOP
		unbooked += s.UnbookedNOP
	}
	return booked, pending, unbooked
}

// Report categorizes every extract's policy universe into Booked, Pending
// and Unbooked against the internal bookings and the offline status table.
// Extracts are processed in counterparty name order so the report is
// deterministic.
func (s *Service) Report(ctx context.Context, internal, offline *models.Table, extracts map[string]*models.Table) (*BookingReport, error) {
	start := time.Now()
	report := &BookingReport{RunID: uuid.New().String()}
	log := s.log.WithField("run_id", report.RunID)

	records := categorize.BuildOfflineRecords(offline, s.cfg.Offline)
	pendingKeys := categorize.PendingKeys(records)
	report.OfflineRecords = len(records)
	log.WithFields(logger.Fields{
		"offline_records": len(records),
		"pending_keys":    len(pendingKeys),
		"counterparties":  len(extracts),
	}).Info("Starting booking categorization")

	names := make([]string, 0, len(extracts))
	for name := range extracts {
		names = append(names, name)
	}
	sort.Strings(names)

	internalPolicyColumn := s.cfg.Matcher.InternalColumns[models.FieldPolicyNumber]
	internalPremiumColumn := s.cfg.Matcher.InternalColumns[models.FieldTotalPremium]

	for _, name := range names {
		select {
		case <-ctx.Done():
			report.Duration = time.Since(start)
			return report, errors.Wrap(ctx.Err(), errors.CategoryReconciliation,
				errors.CodeRunCancelled, "booking categorization cancelled")
		default:
		}

		summary, err := s.categorizeCounterparty(name, internal, offline, extracts[name],
			pendingKeys, internalPolicyColumn, internalPremiumColumn)
		if err != nil {
			return report, err
		}
		report.Summaries = append(report.Summaries, summary)
	}

	report.Duration = time.Since(start)
	booked, pending, unbooked := report.TotalsByBucket()
	log.WithFields(logger.Fields{
		"booked":   booked,
		"pending":  pending,
		"unbooked": unbooked,
		"duration": report.Duration.String(),
	}).Info("Booking categorization complete")
	return report, nil
}

func (s *Service) categorizeCounterparty(name string, internal, offline, extract *models.Table,
	pendingKeys map[string]struct{}, internalPolicyColumn, internalPremiumColumn string) (*categorize.Summary, error) {

	mapping, err := s.resolver.Resolve(name, extract)
	if err != nil {
		return nil, err
	}
	identifier := mapping.Column(models.FieldPolicyNumber)
	if identifier == "" {
		return nil, errors.NewRunError(errors.CodeIdentifierUnresolved,
			"policy identifier column unresolved for counterparty "+name)
	}
	extractPremiumColumn := mapping.Column(models.FieldTotalPremium)

	universe := categorize.UniqueKeys(extract, identifier)
	internalSubset := s.internalForCounterparty(name, internal)
	internalKeys := make(map[string]struct{}, internalSubset.Len())
	for _, v := range internalSubset.ColumnValues(internalPolicyColumn) {
		if key := models.NormalizeKey(v); key != "" {
			internalKeys[key] = struct{}{}
		}
	}

	blankCount, blankPremium := categorize.BlankKeyStats(extract, identifier, extractPremiumColumn)

	summary := s.categorizer.Categorize(categorize.Input{
		Counterparty:     name,
		Universe:         universe,
		Internal:         internalKeys,
		OfflinePending:   pendingKeys,
		BlankKeyCount:    blankCount,
		BlankKeyPremium:  blankPremium,
		IncludeBlankKeys: s.cfg.IncludeBlankKeys,
	})

	// Premium per bucket comes from the system that owns the bucket: the
	// internal bookings for Booked, the offline table for Pending and the
	// extract itself for Unbooked. Categorize already folded the blank-key
	// premium into Unbooked, so it is added to, not assigned.
	summary.BookedPremium = categorize.SumPremium(internal, internalPolicyColumn, internalPremiumColumn, summary.Booked)
	summary.PendingPremium = categorize.SumPremium(offline, s.cfg.Offline.PolicyColumn, s.cfg.Offline.PremiumColumn, summary.Pending)
	summary.UnbookedPremium = summary.UnbookedPremium.Add(
		categorize.SumPremium(extract, identifier, extractPremiumColumn, summary.Unbooked))
	summary.TotalPremium = summary.BookedPremium.Add(summary.PendingPremium).Add(summary.UnbookedPremium)
	return summary, nil
}
