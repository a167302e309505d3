package reconciler

import (
	"sort"
	"strings"
)

// Detector attributes free-form company names to configured counterparties
// using their registered name variations.
type Detector struct {
	// variations maps an upper-cased variation substring to the
	// counterparty name it identifies.
	variations map[string]string
	// ordered holds variation keys longest-first so a more specific
	// variation wins over a shorter one it contains.
	ordered []string
}

// NewDetector builds a Detector from the configured counterparties. A
// counterparty's own name always counts as a variation.
func NewDetector(counterparties map[string]*CounterpartyConfig) *Detector {
	d := &Detector{variations: make(map[string]string)}
	for name, cp := range counterparties {
		d.add(name, name)
		if cp == nil {
			continue
		}
		for _, v := range cp.NameVariations {
			d.add(v, name)
		}
	}
	d.ordered = make([]string, 0, len(d.variations))
	for v := range d.variations {
		d.ordered = append(d.ordered, v)
	}
	sort.Slice(d.ordered, func(i, j int) bool {
		if len(d.ordered[i]) != len(d.ordered[j]) {
			return len(d.ordered[i]) > len(d.ordered[j])
		}
		return d.ordered[i] < d.ordered[j]
	})
	return d
}

func (d *Detector) add(variation, counterparty string) {
	v := strings.ToUpper(strings.TrimSpace(variation))
	if v == "" {
		return
	}
	d.variations[v] = counterparty
}

// Detect returns the counterparty whose variation appears in companyName,
// or "" when no variation matches.
func (d *Detector) Detect(companyName string) string {
	upper := strings.ToUpper(strings.TrimSpace(companyName))
	if upper == "" {
		return ""
	}
	for _, v := range d.ordered {
		if strings.Contains(upper, v) {
			return d.variations[v]
		}
	}
	return ""
}
