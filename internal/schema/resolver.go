package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/pkg/logger"
)

// Tier records which resolution mechanism produced a field's column, for
// audit of heuristic resolutions.
type Tier int

const (
	// TierStatic is a direct single-column mapping.
	TierStatic Tier = iota
	// TierCandidate is a candidate-list mapping where exactly one
	// candidate was present.
	TierCandidate
	// TierSynthesized is a coalesced or concatenated synthetic column.
	TierSynthesized
	// TierHeuristic is a last-resort normalized-substring match.
	TierHeuristic
)

// String returns the audit name of the tier.
func (t Tier) String() string {
	switch t {
	case TierStatic:
		return "static"
	case TierCandidate:
		return "candidate"
	case TierSynthesized:
		return "synthesized"
	case TierHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// Resolution is the concrete outcome for one field: the column to read and
// how it was found. Synthetic resolutions keep their source columns so the
// column can be rebuilt on a fresh table with the same schema.
type Resolution struct {
	Column      string
	Tier        Tier
	Sources     []string
	Concatenate bool
}

// Synthetic reports whether the resolved column was generated rather than
// read from the extract.
func (r Resolution) Synthetic() bool {
	return len(r.Sources) > 0
}

// ResolvedMapping is the concrete field-to-column mapping for one
// (counterparty, extract schema) pair.
type ResolvedMapping struct {
	Counterparty string
	fields       map[string]Resolution
	order        []string
	Warnings     []string
}

// Lookup returns the resolution for a field, if any.
func (m *ResolvedMapping) Lookup(field string) (Resolution, bool) {
	r, ok := m.fields[field]
	return r, ok
}

// Column returns the resolved column name for a field, or "" when the
// field is unmapped.
func (m *ResolvedMapping) Column(field string) string {
	return m.fields[field].Column
}

// Fields returns the resolved field names in resolution order.
func (m *ResolvedMapping) Fields() []string {
	return append([]string(nil), m.order...)
}

func (m *ResolvedMapping) put(field string, r Resolution) {
	if _, exists := m.fields[field]; !exists {
		m.order = append(m.order, field)
	}
	m.fields[field] = r
}

// SyntheticColumnName is the name given to a generated column for a field.
func SyntheticColumnName(field string) string {
	return "__generated_" + field
}

// Resolver turns mapping specifications into resolved mappings and caches
// the result per counterparty for the session. The cache is never
// invalidated automatically; callers that change an extract's schema
// between runs must call Invalidate or Reset.
type Resolver struct {
	specs    map[string]MappingSpec
	synonyms map[string][]string
	log      logger.Logger

	mu    sync.Mutex
	cache map[string]*ResolvedMapping
}

// NewResolver creates a resolver over the given per-counterparty mapping
// specifications.
func NewResolver(specs map[string]MappingSpec, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Resolver{
		specs:    specs,
		synonyms: defaultFieldSynonyms,
		log:      log.WithComponent("schema"),
		cache:    make(map[string]*ResolvedMapping),
	}
}

// Invalidate drops the cached mapping for one counterparty.
func (r *Resolver) Invalidate(counterparty string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, counterparty)
}

// Reset drops all cached mappings.
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*ResolvedMapping)
}

// Resolve produces the concrete mapping for a counterparty against the
// given extract, materializing synthetic columns into the table. A cached
// mapping is reused; its synthetic columns are rebuilt when the table does
// not carry them yet.
func (r *Resolver) Resolve(counterparty string, table *models.Table) (*ResolvedMapping, error) {
	spec, ok := r.specs[counterparty]
	if !ok {
		return nil, fmt.Errorf("no mapping specification for counterparty %q", counterparty)
	}

	r.mu.Lock()
	cached, hit := r.cache[counterparty]
	r.mu.Unlock()
	if hit {
		r.materialize(cached, table)
		return cached, nil
	}

	mapping := &ResolvedMapping{
		Counterparty: counterparty,
		fields:       make(map[string]Resolution),
	}

	for _, field := range orderedFields(spec) {
		fieldSpec := spec[field]
		resolution, resolved := r.resolveField(field, fieldSpec, table)
		if !resolved {
			if fieldSpec.Kind != SpecUnmapped {
				warning := fmt.Sprintf("field %q: none of %v present in extract", field, fieldSpec.Columns)
				mapping.Warnings = append(mapping.Warnings, warning)
				r.log.WithFields(logger.Fields{
					"counterparty": counterparty,
					"field":        field,
				}).Warn("Field left unmapped; excluded from comparison")
			}
			continue
		}
		mapping.put(field, resolution)
	}

	r.materialize(mapping, table)

	r.mu.Lock()
	r.cache[counterparty] = mapping
	r.mu.Unlock()

	return mapping, nil
}

func (r *Resolver) resolveField(field string, spec FieldSpec, table *models.Table) (Resolution, bool) {
	switch spec.Kind {
	case SpecUnmapped:
		return Resolution{}, false

	case SpecSingle:
		column := spec.Columns[0]
		if !table.HasColumn(column) {
			return Resolution{}, false
		}
		return Resolution{Column: column, Tier: TierStatic}, true

	case SpecCoalesce:
		present := presentColumns(spec.Columns, table)
		switch len(present) {
		case 0:
			return Resolution{}, false
		case 1:
			return Resolution{Column: present[0], Tier: TierCandidate}, true
		default:
			return Resolution{
				Column:  SyntheticColumnName(field),
				Tier:    TierSynthesized,
				Sources: present,
			}, true
		}

	case SpecConcatenate:
		present := presentColumns(spec.Columns, table)
		if len(present) == 0 {
			return Resolution{}, false
		}
		return Resolution{
			Column:      SyntheticColumnName(field),
			Tier:        TierSynthesized,
			Sources:     present,
			Concatenate: true,
		}, true
	}
	return Resolution{}, false
}

// materialize rebuilds synthetic columns on the given table for every
// synthetic resolution not already present.
func (r *Resolver) materialize(mapping *ResolvedMapping, table *models.Table) {
	for _, field := range mapping.order {
		resolution := mapping.fields[field]
		if !resolution.Synthetic() || table.HasColumn(resolution.Column) {
			continue
		}
		var values []string
		if resolution.Concatenate {
			values = concatenateColumns(table, resolution.Sources)
		} else {
			values = coalesceColumns(table, resolution.Sources)
		}
		if err := table.AddColumn(resolution.Column, values); err != nil {
			r.log.WithError(err).WithField("field", field).Warn("Failed to materialize synthetic column")
			continue
		}
		r.log.WithFields(logger.Fields{
			"counterparty": mapping.Counterparty,
			"field":        field,
			"sources":      resolution.Sources,
			"column":       resolution.Column,
		}).Info("Materialized synthetic column")
	}
}

// coalesceColumns builds per-row values taking the first non-null value
// across the sources in priority order.
func coalesceColumns(table *models.Table, sources []string) []string {
	values := make([]string, table.Len())
	for i, row := range table.Rows {
		for _, col := range sources {
			if v := row.Value(col); !models.IsBlank(v) {
				values[i] = v
				break
			}
		}
	}
	return values
}

// concatenateColumns joins all sources' string forms with single spaces,
// trimming and collapsing blanks, for every row regardless of nulls.
func concatenateColumns(table *models.Table, sources []string) []string {
	values := make([]string, table.Len())
	for i, row := range table.Rows {
		parts := make([]string, 0, len(sources))
		for _, col := range sources {
			if v := strings.TrimSpace(row.Value(col)); v != "" {
				parts = append(parts, v)
			}
		}
		values[i] = strings.Join(parts, " ")
	}
	return values
}

// ResolveField performs ad-hoc resolution for a field absent from the
// cached mapping: normalized substring matching against the extract's
// columns, widened by the synonym table. A hit is written back into the
// cached mapping for reuse within the session.
func (r *Resolver) ResolveField(counterparty, field string, table *models.Table) (Resolution, bool) {
	r.mu.Lock()
	mapping, ok := r.cache[counterparty]
	r.mu.Unlock()
	if ok {
		if resolution, found := mapping.Lookup(field); found {
			return resolution, true
		}
	}

	tokens := []string{normalizeName(field)}
	for _, synonym := range r.synonyms[field] {
		tokens = append(tokens, normalizeName(synonym))
	}

	for _, column := range table.Columns {
		normalized := normalizeName(column)
		for _, token := range tokens {
			if token != "" && strings.Contains(normalized, token) {
				resolution := Resolution{Column: column, Tier: TierHeuristic}
				if mapping != nil {
					r.mu.Lock()
					mapping.put(field, resolution)
					r.mu.Unlock()
				}
				r.log.WithFields(logger.Fields{
					"counterparty": counterparty,
					"field":        field,
					"column":       column,
					"tier":         TierHeuristic.String(),
				}).Info("Heuristically resolved extract column")
				return resolution, true
			}
		}
	}
	return Resolution{}, false
}

// normalizeName lowercases a field or column name and strips separators and
// punctuation so that naming-style differences do not block matching.
func normalizeName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", ".", "", "-", "").Replace(lowered)
}

func presentColumns(candidates []string, table *models.Table) []string {
	var present []string
	for _, c := range candidates {
		if table.HasColumn(c) {
			present = append(present, c)
		}
	}
	return present
}

func orderedFields(spec MappingSpec) []string {
	// Canonical fields first, in their declaration order, then any extra
	// fields alphabetically for determinism.
	canonical := []string{
		models.FieldPolicyNumber,
		models.FieldCustomerName,
		models.FieldPolicyStartDate,
		models.FieldPolicyEndDate,
		models.FieldRegistrationNumber,
		models.FieldEngineNumber,
		models.FieldChassisNumber,
		models.FieldTotalPremium,
		models.FieldTPPremium,
		models.FieldPreviousPolicyNumber,
		models.FieldBrokerName,
		models.FieldBrokerCode,
		models.FieldSumInsured,
		models.FieldVehicleMake,
		models.FieldVehicleModel,
		models.FieldFuelType,
		models.FieldSeatingCapacity,
		models.FieldGrossWeight,
		models.FieldPolicyType,
	}

	seen := make(map[string]struct{}, len(spec))
	var ordered []string
	for _, field := range canonical {
		if _, ok := spec[field]; ok {
			ordered = append(ordered, field)
			seen[field] = struct{}{}
		}
	}

	var extras []string
	for field := range spec {
		if _, ok := seen[field]; !ok {
			extras = append(extras, field)
		}
	}
	sort.Strings(extras)
	return append(ordered, extras...)
}

// defaultFieldSynonyms widens heuristic resolution for aliases commonly
// seen across counterparty extracts.
var defaultFieldSynonyms = map[string][]string{
	models.FieldRegistrationNumber: {"vehicle_number", "veh_reg_no", "reg_no", "vehicle_no"},
	models.FieldCustomerName:       {"insured_name", "client_name", "policy_holder"},
	models.FieldPolicyNumber:       {"policy_no", "pol_num"},
	models.FieldChassisNumber:      {"chasis_number", "chassis_no"},
	models.FieldEngineNumber:       {"engine_no"},
	models.FieldTotalPremium:       {"gross_premium", "net_premium"},
	"vehicle_sub_category": {
		"vehiclesubcategory", "vehicle_sub_type", "veh_sub_type", "sub_category", "vehsubcat",
	},
}
