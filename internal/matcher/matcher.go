package matcher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"insurance-reconciliation-service/internal/compare"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/internal/schema"
	"insurance-reconciliation-service/pkg/errors"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Progress is an advisory signal emitted after each completed batch. The
// fraction is strictly non-decreasing across a run.
type Progress struct {
	Fraction float64
	Message  string
}

// ProgressFunc receives progress signals. It has no effect on outcome
// ordering or correctness.
type ProgressFunc func(Progress)

// Result is the complete output of one matching run.
type Result struct {
	Outcomes        []models.ComparisonOutcome
	InternalCount   int
	ExternalCount   int
	FoundInInternal int
	ConsumedKeys    map[string]struct{}
	Batches         int
}

// Engine performs two-way reconciliation between an internal record subset
// and a filtered external record set.
type Engine struct {
	cfg *Config
	log logger.Logger
}

// NewEngine creates a matching engine with the given configuration,
// falling back to defaults when nil.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{
		cfg: cfg,
		log: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// comparableField pairs a canonical field with the internal column it is
// read from.
type comparableField struct {
	field          string
	internalColumn string
}

// batchOutput collects one batch's outcomes and its privately accumulated
// consumed-key set, merged into the shared accumulator only after the
// batch completes.
type batchOutput struct {
	outcomes []models.ComparisonOutcome
	consumed map[string]struct{}
}

// Match reconciles the internal table against the filtered external table
// under the resolved mapping. Internal records are processed in fixed-size
// batches, optionally on parallel workers; outcome rows are appended in
// batch-index order so output is deterministic regardless of scheduling.
// Cancellation is cooperative and observed only between batches.
func (e *Engine) Match(ctx context.Context, internal, external *models.Table, mapping *schema.ResolvedMapping, progress ProgressFunc) (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfiguration, errors.CodeInvalidConfig, "invalid matcher configuration")
	}
	if mapping == nil {
		return nil, errors.NewRunError(errors.CodeMissingMapping, "no resolved mapping supplied").
			WithSuggestion("configure a mapping specification for this counterparty")
	}

	identifier, ok := mapping.Lookup(models.FieldPolicyNumber)
	if !ok || !external.HasColumn(identifier.Column) {
		return nil, errors.NewRunError(errors.CodeIdentifierUnresolved,
			fmt.Sprintf("policy identifier column unresolved for %s", mapping.Counterparty)).
			WithContext("counterparty", mapping.Counterparty)
	}

	lookup, orderedKeys := e.buildExternalLookup(external, identifier.Column)
	fields := e.comparableFields(internal, mapping)

	result := &Result{
		InternalCount: internal.Len(),
		ExternalCount: external.Len(),
		ConsumedKeys:  make(map[string]struct{}),
	}

	batches := splitBatches(internal.Rows, e.cfg.BatchSize)
	result.Batches = len(batches)

	outputs := make([]*batchOutput, len(batches))
	dispatched, cancelErr := e.runBatches(ctx, batches, outputs, lookup, fields, mapping)

	// Merge in batch-index order: deterministic output and monotonic
	// progress regardless of worker scheduling.
	for i := 0; i < dispatched; i++ {
		out := outputs[i]
		if out == nil {
			continue
		}
		result.Outcomes = append(result.Outcomes, out.outcomes...)
		for key := range out.consumed {
			result.ConsumedKeys[key] = struct{}{}
		}
		if progress != nil {
			progress(Progress{
				Fraction: float64(i+1) / float64(len(batches)),
				Message:  fmt.Sprintf("Processed batch %d/%d", i+1, len(batches)),
			})
		}
	}

	if cancelErr != nil {
		e.log.WithField("counterparty", mapping.Counterparty).Warn("Matching cancelled between batches")
		return result, errors.Wrap(cancelErr, errors.CategoryReconciliation, errors.CodeRunCancelled,
			"matching cancelled; outcomes are partial")
	}

	e.appendReverseOutcomes(result, lookup, orderedKeys, identifier.Column, mapping)
	result.FoundInInternal = countFoundInInternal(result.Outcomes)

	if progress != nil {
		progress(Progress{Fraction: 1.0, Message: fmt.Sprintf("Completed: %d outcomes", len(result.Outcomes))})
	}

	e.log.WithFields(logger.Fields{
		"counterparty":      mapping.Counterparty,
		"internal_records":  result.InternalCount,
		"external_records":  result.ExternalCount,
		"outcomes":          len(result.Outcomes),
		"found_in_internal": result.FoundInInternal,
	}).Info("Matching completed")

	return result, nil
}

// runBatches executes batches, sequentially or on a bounded worker pool.
// It returns how many batches were dispatched before cancellation, if any.
func (e *Engine) runBatches(ctx context.Context, batches [][]models.Row, outputs []*batchOutput,
	lookup map[string]models.Row, fields []comparableField, mapping *schema.ResolvedMapping) (int, error) {

	if e.cfg.Workers <= 1 {
		for i, batch := range batches {
			if err := ctx.Err(); err != nil {
				return i, err
			}
			outputs[i] = e.processBatch(batch, lookup, fields, mapping)
		}
		return len(batches), nil
	}

	sem := make(chan struct{}, e.cfg.Workers)
	var wg sync.WaitGroup

	dispatched := 0
	var cancelErr error
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}
		dispatched++
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, rows []models.Row) {
			defer wg.Done()
			defer func() { <-sem }()
			outputs[idx] = e.processBatch(rows, lookup, fields, mapping)
		}(i, batch)
	}
	wg.Wait()
	return dispatched, cancelErr
}

// processBatch compares one batch of internal records. A batch is a single
// uninterruptible unit; it reads the shared lookup without mutating it and
// accumulates consumed keys privately.
func (e *Engine) processBatch(rows []models.Row, lookup map[string]models.Row,
	fields []comparableField, mapping *schema.ResolvedMapping) *batchOutput {

	out := &batchOutput{consumed: make(map[string]struct{})}
	internalPolicyColumn := e.cfg.InternalColumns[models.FieldPolicyNumber]

	for _, row := range rows {
		policyNumber := row.Value(internalPolicyColumn)
		if models.IsBlank(policyNumber) {
			continue
		}
		requestID := row.Value(e.cfg.RequestIDColumn)
		key := models.NormalizeKey(policyNumber)

		externalRow, found := lookup[key]
		if !found {
			out.outcomes = append(out.outcomes, models.ComparisonOutcome{
				PolicyNumber:  policyNumber,
				RequestID:     requestID,
				Field:         models.FieldTitle(models.FieldPolicyNumber),
				Status:        models.StatusNotFoundInExternal,
				Score:         0,
				InternalValue: policyNumber,
				ExternalValue: "Not Found in External",
				Detail:        "Policy from internal data not found in counterparty extract",
			})
			continue
		}
		out.consumed[key] = struct{}{}

		for _, cf := range fields {
			externalColumn := mapping.Column(cf.field)
			if externalColumn == "" {
				continue
			}
			internalValue := row.Value(cf.internalColumn)
			externalValue := externalRow.Value(externalColumn)
			cmp := compare.Compare(internalValue, externalValue, compare.KindForField(cf.field))

			status := models.StatusMismatch
			if cmp.Match {
				status = models.StatusMatch
			}
			out.outcomes = append(out.outcomes, models.ComparisonOutcome{
				PolicyNumber:  policyNumber,
				RequestID:     requestID,
				Field:         models.FieldTitle(cf.field),
				Status:        status,
				Score:         cmp.Score,
				InternalValue: internalValue,
				ExternalValue: externalValue,
				Detail:        cmp.Detail,
			})
		}
	}
	return out
}

// appendReverseOutcomes emits one NotFoundInInternal outcome per external
// key never consumed by the forward pass, carrying the external premium
// for downstream aggregation.
func (e *Engine) appendReverseOutcomes(result *Result, lookup map[string]models.Row,
	orderedKeys []string, identifierColumn string, mapping *schema.ResolvedMapping) {

	premiumColumn := mapping.Column(models.FieldTotalPremium)

	for _, key := range orderedKeys {
		if _, consumed := result.ConsumedKeys[key]; consumed {
			continue
		}
		externalRow := lookup[key]
		policyNumber := externalRow.Value(identifierColumn)

		premium := decimal.Zero
		if premiumColumn != "" {
			if amount, err := compare.ParseAmount(externalRow.Value(premiumColumn)); err == nil {
				premium = amount
			}
		}
		result.Outcomes = append(result.Outcomes, models.ComparisonOutcome{
			PolicyNumber:    policyNumber,
			RequestID:       "N/A",
			Field:           models.FieldTitle(models.FieldPolicyNumber),
			Status:          models.StatusNotFoundInInternal,
			Score:           0,
			InternalValue:   "Not Found in Internal Data",
			ExternalValue:   policyNumber,
			Detail:          "Policy exists in counterparty extract but not in internal data",
			ExternalPremium: premium,
		})
	}
}

// buildExternalLookup indexes external rows by normalized key. When a key
// repeats the last occurrence wins; repeats are counted separately by the
// amendment counter and are not an error here. The first-seen key order is
// preserved for deterministic reverse-pass output.
func (e *Engine) buildExternalLookup(external *models.Table, identifierColumn string) (map[string]models.Row, []string) {
	lookup := make(map[string]models.Row, external.Len())
	var ordered []string
	for _, row := range external.Rows {
		key := models.NormalizeKey(row.Value(identifierColumn))
		if key == "" {
			continue
		}
		if _, seen := lookup[key]; !seen {
			ordered = append(ordered, key)
		}
		lookup[key] = row
	}
	return lookup, ordered
}

// comparableFields builds the ordered union of the canonical field set and
// any resolved dynamic fields, excluding the identifier itself, keeping
// only fields with a findable internal column.
func (e *Engine) comparableFields(internal *models.Table, mapping *schema.ResolvedMapping) []comparableField {
	subset := make(map[string]struct{}, len(e.cfg.CompareFields))
	for _, f := range e.cfg.CompareFields {
		subset[f] = struct{}{}
	}
	include := func(field string) bool {
		if field == models.FieldPolicyNumber {
			return false
		}
		if len(subset) == 0 {
			return true
		}
		_, ok := subset[field]
		return ok
	}

	var fields []comparableField
	seen := make(map[string]struct{})

	for _, field := range canonicalFieldOrder {
		if !include(field) {
			continue
		}
		if _, mapped := mapping.Lookup(field); !mapped {
			continue
		}
		column, ok := e.findInternalColumn(field, internal)
		if !ok {
			continue
		}
		fields = append(fields, comparableField{field: field, internalColumn: column})
		seen[field] = struct{}{}
	}

	// Dynamic fields resolved for the extract but outside the canonical
	// set still compare when a matching internal column exists.
	for _, field := range mapping.Fields() {
		if _, done := seen[field]; done || !include(field) {
			continue
		}
		column, ok := e.findInternalColumn(field, internal)
		if !ok {
			continue
		}
		fields = append(fields, comparableField{field: field, internalColumn: column})
		seen[field] = struct{}{}
		e.log.WithFields(logger.Fields{
			"field":  field,
			"column": column,
		}).Debug("Dynamically added field for comparison")
	}
	return fields
}

// findInternalColumn locates the internal column backing a canonical or
// dynamic field: configured mapping first, then synonyms, then naming-style
// variations, then normalized partial matching.
func (e *Engine) findInternalColumn(field string, internal *models.Table) (string, bool) {
	if column, ok := e.cfg.InternalColumns[field]; ok && internal.HasColumn(column) {
		return column, true
	}
	if column, ok := internalColumnSynonyms[strings.ToLower(strings.TrimSpace(field))]; ok && internal.HasColumn(column) {
		return column, true
	}
	for _, variation := range fieldVariations(field) {
		if internal.HasColumn(variation) {
			return variation, true
		}
	}

	normalized := normalizeColumnName(field)
	for _, column := range internal.Columns {
		candidate := normalizeColumnName(column)
		if candidate == "" {
			continue
		}
		if strings.Contains(candidate, normalized) || strings.Contains(normalized, candidate) {
			return column, true
		}
	}
	return "", false
}

// fieldVariations lists likely column spellings for a snake_case field.
func fieldVariations(field string) []string {
	spaced := strings.ReplaceAll(field, "_", " ")
	return []string{
		models.FieldTitle(field),
		strings.ToUpper(spaced),
		strings.ToLower(spaced),
		strings.ToUpper(field),
		strings.ToLower(field),
		field,
	}
}

func normalizeColumnName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", ".", "").Replace(lowered)
}

// countFoundInInternal counts unique policies with at least one Match or
// Mismatch outcome, i.e. external policies located in the internal data.
func countFoundInInternal(outcomes []models.ComparisonOutcome) int {
	found := make(map[string]struct{})
	for _, o := range outcomes {
		if o.Status == models.StatusMatch || o.Status == models.StatusMismatch {
			found[models.NormalizeKey(o.PolicyNumber)] = struct{}{}
		}
	}
	return len(found)
}

// splitBatches partitions rows into fixed-size batches preserving order.
func splitBatches(rows []models.Row, size int) [][]models.Row {
	if len(rows) == 0 {
		return nil
	}
	var batches [][]models.Row
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
