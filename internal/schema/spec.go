// Package schema resolves per-counterparty field specifications against the
// columns actually present in an extract, producing a concrete field-to-
// column mapping. Candidate lists are coalesced or concatenated into
// synthetic columns as needed, and a last-resort heuristic tier matches
// unmapped fields by normalized column-name similarity.
package schema

import "fmt"

// SpecKind discriminates the closed set of field specification variants.
type SpecKind int

const (
	// SpecUnmapped marks a field the counterparty does not provide.
	SpecUnmapped SpecKind = iota
	// SpecSingle maps a field to exactly one extract column.
	SpecSingle
	// SpecCoalesce maps a field to a priority-ordered candidate list; the
	// first non-null value per row wins.
	SpecCoalesce
	// SpecConcatenate maps a compound field to several columns joined with
	// single spaces.
	SpecConcatenate
)

// String returns the name of the spec kind.
func (k SpecKind) String() string {
	switch k {
	case SpecSingle:
		return "single"
	case SpecCoalesce:
		return "coalesce"
	case SpecConcatenate:
		return "concatenate"
	default:
		return "unmapped"
	}
}

// FieldSpec declares how one canonical field maps onto a counterparty
// extract.
type FieldSpec struct {
	Kind    SpecKind
	Columns []string
}

// Unmapped returns the spec for a field the counterparty does not carry.
func Unmapped() FieldSpec {
	return FieldSpec{Kind: SpecUnmapped}
}

// Single returns the spec for a field carried in one named column.
func Single(column string) FieldSpec {
	return FieldSpec{Kind: SpecSingle, Columns: []string{column}}
}

// Coalesce returns the spec for a field that may appear under any of the
// given columns, in priority order.
func Coalesce(columns ...string) FieldSpec {
	return FieldSpec{Kind: SpecCoalesce, Columns: columns}
}

// Concatenate returns the spec for a compound field split across the given
// columns.
func Concatenate(columns ...string) FieldSpec {
	return FieldSpec{Kind: SpecConcatenate, Columns: columns}
}

// Validate rejects malformed specs.
func (s FieldSpec) Validate() error {
	switch s.Kind {
	case SpecUnmapped:
		if len(s.Columns) != 0 {
			return fmt.Errorf("unmapped spec must not name columns")
		}
	case SpecSingle:
		if len(s.Columns) != 1 {
			return fmt.Errorf("single spec requires exactly one column, got %d", len(s.Columns))
		}
	case SpecCoalesce, SpecConcatenate:
		if len(s.Columns) == 0 {
			return fmt.Errorf("%s spec requires at least one column", s.Kind)
		}
	default:
		return fmt.Errorf("unknown spec kind %d", s.Kind)
	}
	return nil
}

// MappingSpec is the full per-counterparty field specification.
type MappingSpec map[string]FieldSpec
