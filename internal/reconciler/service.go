package reconciler

import (
	"context"
	"fmt"
	"time"

	"insurance-reconciliation-service/internal/categorize"
	"insurance-reconciliation-service/internal/filterpipe"
	"insurance-reconciliation-service/internal/matcher"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/internal/schema"
	"insurance-reconciliation-service/pkg/errors"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/google/uuid"
)

// Service wires the schema resolver, filter pipeline, matching engine and
// categorizer into complete reconciliation runs.
type Service struct {
	cfg         *Config
	resolver    *schema.Resolver
	detector    *Detector
	engine      *matcher.Engine
	categorizer *categorize.Categorizer
	log         logger.Logger
}

// NewService creates a reconciliation service from the given configuration.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigurationError(errors.CodeInvalidConfig, err.Error())
	}
	log := logger.GetGlobalLogger().WithComponent("reconciler")
	return &Service{
		cfg:         cfg,
		resolver:    schema.NewResolver(cfg.MappingSpecs(), log),
		detector:    NewDetector(cfg.Counterparties),
		engine:      matcher.NewEngine(cfg.Matcher),
		categorizer: categorize.NewCategorizer(log),
		log:         log,
	}, nil
}

// Resolver exposes the service's schema resolver, mainly so callers can
// invalidate cached resolutions after configuration changes.
func (s *Service) Resolver() *schema.Resolver { return s.resolver }

// RunResult is the full output of one counterparty reconciliation run.
type RunResult struct {
	RunID        string
	Counterparty string

	Mapping *schema.ResolvedMapping
	Filter  *filterpipe.Result
	Match   *matcher.Result

	// AmendmentCount is rows lost to duplicate-key collapse in the raw
	// extract; CancellationCount is rows carrying an explicit
	// cancellation label.
	AmendmentCount    int
	CancellationCount int

	Warnings []string
	Duration time.Duration
}

// Reconcile runs the full per-counterparty pipeline: resolve the extract
// schema, count duplicates on the raw extract, filter, match against the
// internal rows attributable to the counterparty, and append the filter
// audit row.
func (s *Service) Reconcile(ctx context.Context, counterparty string, internal, extract *models.Table, progress matcher.ProgressFunc) (*RunResult, error) {
	start := time.Now()
	cp, ok := s.cfg.Counterparties[counterparty]
	if !ok {
		return nil, errors.NewConfigurationError(errors.CodeUnknownCounterparty,
			fmt.Sprintf("no configuration registered for counterparty %q", counterparty)).
			WithSuggestion("Register the counterparty in the reconciliation configuration")
	}

	result := &RunResult{
		RunID:        uuid.New().String(),
		Counterparty: counterparty,
	}
	log := s.log.WithFields(logger.Fields{
		"run_id":       result.RunID,
		"counterparty": counterparty,
	})
	log.WithFields(logger.Fields{
		"internal_rows": internal.Len(),
		"extract_rows":  extract.Len(),
	}).Info("Starting reconciliation run")

	mapping, err := s.resolver.Resolve(counterparty, extract)
	if err != nil {
		return nil, err
	}
	result.Mapping = mapping
	result.Warnings = append(result.Warnings, mapping.Warnings...)

	identifier := mapping.Column(models.FieldPolicyNumber)
	if identifier == "" {
		return nil, errors.NewRunError(errors.CodeIdentifierUnresolved,
			fmt.Sprintf("policy identifier column unresolved for counterparty %q", counterparty))
	}

	// Duplicate and cancellation counts come from the raw extract, before
	// any filter removes rows.
	result.AmendmentCount = matcher.AmendmentCount(extract, identifier)
	result.CancellationCount = matcher.ExplicitCancellationCount(extract, cp.Cancellation)

	pipeline := filterpipe.New(cp.Filters, filterpipe.WithLogger(log))
	filtered := pipeline.Apply(extract)
	result.Filter = filtered
	result.Warnings = append(result.Warnings, filtered.Warnings...)

	internalSubset := s.internalForCounterparty(counterparty, internal)
	log.WithFields(logger.Fields{
		"internal_subset": internalSubset.Len(),
		"filtered_rows":   filtered.Table.Len(),
		"removed_rows":    filtered.RemovedCount,
	}).Debug("Inputs prepared")

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "match:" + counterparty,
		Total:     int64(filtered.Table.Len()),
		Logger:    log,
	})
	match, err := s.engine.Match(ctx, internalSubset, filtered.Table, mapping, trackProgress(tracker, filtered.Table.Len(), progress))
	if err != nil {
		tracker.CompleteWithError(err)
	} else {
		tracker.Complete()
	}
	if match != nil {
		match.Outcomes = append(match.Outcomes, filterAuditOutcomes(filtered)...)
		result.Match = match
	}
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	log.WithFields(logger.Fields{
		"outcomes":          len(match.Outcomes),
		"found_in_internal": match.FoundInInternal,
		"amendments":        result.AmendmentCount,
		"cancellations":     result.CancellationCount,
		"duration":          result.Duration.String(),
	}).Info("Reconciliation run complete")
	return result, nil
}

// internalForCounterparty returns the internal rows whose insurance
// company resolves to the given counterparty. When the internal table has
// no company column every row is kept, since the caller then supplies a
// pre-restricted table.
func (s *Service) internalForCounterparty(counterparty string, internal *models.Table) *models.Table {
	column, ok := s.cfg.Matcher.InternalColumns[models.FieldInsuranceCompany]
	if !ok || !internal.HasColumn(column) {
		return internal
	}
	return internal.Select(func(row models.Row) bool {
		return s.detector.Detect(row.Value(column)) == counterparty
	})
}

// trackProgress feeds batch progress into the interval-logged tracker and
// forwards it to the caller's callback when one is set.
func trackProgress(tracker *logger.ProgressTracker, total int, next matcher.ProgressFunc) matcher.ProgressFunc {
	return func(p matcher.Progress) {
		tracker.Update(int64(p.Fraction * float64(total)))
		if next != nil {
			next(p)
		}
	}
}

// filterAuditOutcomes renders the applied filter summary as Info rows so
// the outcome stream carries its own audit trail.
func filterAuditOutcomes(filtered *filterpipe.Result) []models.ComparisonOutcome {
	if filtered == nil || len(filtered.Applied) == 0 {
		return nil
	}
	outcomes := make([]models.ComparisonOutcome, 0, len(filtered.Applied))
	for _, applied := range filtered.Applied {
		outcomes = append(outcomes, models.ComparisonOutcome{
			PolicyNumber: "N/A",
			RequestID:    "N/A",
			Field:        "filter",
			Status:       models.StatusInfo,
			Score:        100,
			Detail:       applied,
		})
	}
	return outcomes
}
