// Package reconciler orchestrates per-counterparty reconciliation runs:
// schema resolution, filtering, matching, duplicate counting and the
// all-counterparty three-bucket categorization report.
package reconciler

import (
	"fmt"

	"insurance-reconciliation-service/internal/categorize"
	"insurance-reconciliation-service/internal/filterpipe"
	"insurance-reconciliation-service/internal/matcher"
	"insurance-reconciliation-service/internal/schema"
)

// CounterpartyConfig is all static configuration for one counterparty,
// supplied by the configuration collaborator.
type CounterpartyConfig struct {
	// Name is the canonical counterparty identifier.
	Name string

	// Mapping declares how canonical fields map onto this counterparty's
	// extract columns.
	Mapping schema.MappingSpec

	// Filters is the ordered rule list applied to the extract before
	// matching.
	Filters []filterpipe.Rule

	// Cancellation configures the explicit cancellation counter; nil when
	// the counterparty has no such rule.
	Cancellation *matcher.CancellationRule

	// NameVariations are company-name spellings used to attribute
	// internal rows to this counterparty.
	NameVariations []string
}

// Config holds the full reconciliation service configuration.
type Config struct {
	// Counterparties indexes per-counterparty configuration by name.
	Counterparties map[string]*CounterpartyConfig

	// Matcher carries batch size, worker count and the internal column
	// mapping.
	Matcher *matcher.Config

	// Offline describes the offline status table layout.
	Offline *categorize.OfflineConfig

	// IncludeBlankKeys folds extract rows with blank policy identifiers
	// into the Unbooked bucket. Default true.
	IncludeBlankKeys bool
}

// DefaultServiceConfig returns a configuration with defaults applied and
// no counterparties registered.
func DefaultServiceConfig() *Config {
	return &Config{
		Counterparties:   make(map[string]*CounterpartyConfig),
		Matcher:          matcher.DefaultConfig(),
		Offline:          categorize.DefaultOfflineConfig(),
		IncludeBlankKeys: true,
	}
}

// Validate rejects unusable configurations.
func (c *Config) Validate() error {
	if c.Matcher == nil {
		return fmt.Errorf("matcher configuration is required")
	}
	if err := c.Matcher.Validate(); err != nil {
		return fmt.Errorf("matcher configuration: %w", err)
	}
	for name, cp := range c.Counterparties {
		if cp == nil {
			return fmt.Errorf("counterparty %q has nil configuration", name)
		}
		for field, spec := range cp.Mapping {
			if err := spec.Validate(); err != nil {
				return fmt.Errorf("counterparty %q, field %q: %w", name, field, err)
			}
		}
	}
	return nil
}

// MappingSpecs extracts the per-counterparty mapping specifications for
// the schema resolver.
func (c *Config) MappingSpecs() map[string]schema.MappingSpec {
	specs := make(map[string]schema.MappingSpec, len(c.Counterparties))
	for name, cp := range c.Counterparties {
		specs[name] = cp.Mapping
	}
	return specs
}
