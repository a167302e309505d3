package reconciler

import "testing"

func TestDetect(t *testing.T) {
	counterparties := map[string]*CounterpartyConfig{
		"HDFC": {Name: "HDFC", NameVariations: []string{"HDFC Ergo General Insurance Company Limited"}},
		"SBI":  {Name: "SBI", NameVariations: []string{"SBI General Insurance"}},
		"TATA": {Name: "TATA"},
	}
	d := NewDetector(counterparties)

	tests := []struct {
		company string
		want    string
	}{
		{"HDFC Ergo General Insurance Company Limited", "HDFC"},
		{"hdfc ergo general insurance company limited", "HDFC"},
		{"Policy issued by HDFC branch", "HDFC"},
		{"SBI General Insurance Co Ltd", "SBI"},
		{"TATA AIG", "TATA"},
		{"Unknown Insurer Ltd", ""},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := d.Detect(tt.company); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.company, got, tt.want)
		}
	}
}

func TestDetectLongerVariationWins(t *testing.T) {
	// A company string containing both a short and a long variation must
	// resolve through the longer, more specific one.
	counterparties := map[string]*CounterpartyConfig{
		"ROYAL":    {Name: "ROYAL"},
		"SUNDARAM": {Name: "SUNDARAM", NameVariations: []string{"Royal Sundaram General Insurance"}},
	}
	d := NewDetector(counterparties)
	if got := d.Detect("Royal Sundaram General Insurance Co"); got != "SUNDARAM" {
		t.Errorf("Detect = %q, want SUNDARAM", got)
	}
}

func TestDetectBlankVariationIgnored(t *testing.T) {
	d := NewDetector(map[string]*CounterpartyConfig{
		"ACME": {Name: "ACME", NameVariations: []string{"  ", ""}},
	})
	if got := d.Detect("random text"); got != "" {
		t.Errorf("blank variations must not match everything, got %q", got)
	}
}
