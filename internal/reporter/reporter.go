// Package reporter renders reconciliation output for people and machines.
//
// Two report families are supported:
//   - Run reports: the per-counterparty comparison outcomes of a
//     reconciliation run, with its duplicate and cancellation counters
//   - Booking reports: the Booked / Pending / Unbooked categorization
//     across all counterparties
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: comma-separated rows for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/internal/reconciler"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported.
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation.
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeMatches controls whether rows with status Match appear in
	// console and CSV output. Mismatches and not-found rows always do.
	IncludeMatches bool `json:"include_matches"`

	// IncludeInfo controls whether audit Info rows appear in the output.
	IncludeInfo bool `json:"include_info"`

	// MaxRows caps the outcome rows printed to the console; zero means
	// no cap. JSON and CSV output is never truncated.
	MaxRows int `json:"max_rows"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration.
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:         FormatConsole,
		IncludeMatches: false,
		IncludeInfo:    true,
		MaxRows:        0,
		CSVDelimiter:   ',',
		CSVHeaders:     true,
	}
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max rows cannot be negative, got %d", c.MaxRows)
	}
	return nil
}

// ReportGenerator renders run and booking reports in the configured format.
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a report generator, falling back to defaults
// when config is nil.
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	return &ReportGenerator{config: config}, nil
}

// GenerateRunReport writes a reconciliation run report to the writer.
func (rg *ReportGenerator) GenerateRunReport(result *reconciler.RunResult, writer io.Writer) error {
	if result == nil {
		return fmt.Errorf("run result cannot be nil")
	}
	switch rg.config.Format {
	case FormatConsole:
		return rg.runConsole(result, writer)
	case FormatJSON:
		return rg.runJSON(result, writer)
	case FormatCSV:
		return rg.runCSV(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) runConsole(result *reconciler.RunResult, writer io.Writer) error {
	fmt.Fprintf(writer, "RECONCILIATION RUN REPORT\n")
	fmt.Fprintf(writer, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(writer, "Counterparty: %s\n", result.Counterparty)
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Duration: %v\n\n", result.Duration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	rg.printRunSummary(result, writer)
	fmt.Fprintf(writer, "\n")

	if counts := statusCounts(result); len(counts) > 0 {
		fmt.Fprintf(writer, "=== STATUS BREAKDOWN ===\n")
		for _, status := range statusOrder {
			if n, ok := counts[status]; ok {
				fmt.Fprintf(writer, "%-25s %d\n", string(status)+":", n)
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	rows := rg.selectOutcomes(result)
	if len(rows) > 0 {
		fmt.Fprintf(writer, "=== OUTCOMES ===\n")
		printed := 0
		for _, o := range rows {
			if rg.config.MaxRows > 0 && printed >= rg.config.MaxRows {
				fmt.Fprintf(writer, "... %d more rows omitted\n", len(rows)-printed)
				break
			}
			fmt.Fprintf(writer, "%-25s %-22s %-22s %6.1f  %s\n",
				o.PolicyNumber, o.Field, o.Status, o.Score, o.Detail)
			printed++
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(writer, "=== WARNINGS ===\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(writer, "- %s\n", w)
		}
	}
	return nil
}

func (rg *ReportGenerator) printRunSummary(result *reconciler.RunResult, writer io.Writer) {
	if m := result.Match; m != nil {
		fmt.Fprintf(writer, "%-28s %d\n", "Internal Records:", m.InternalCount)
		fmt.Fprintf(writer, "%-28s %d\n", "External Records:", m.ExternalCount)
		fmt.Fprintf(writer, "%-28s %d\n", "Found in Internal:", m.FoundInInternal)
		fmt.Fprintf(writer, "%-28s %d\n", "Batches Processed:", m.Batches)
	}
	if f := result.Filter; f != nil {
		fmt.Fprintf(writer, "%-28s %d\n", "Filtered Out:", f.RemovedCount)
	}
	fmt.Fprintf(writer, "%-28s %d\n", "Amendments:", result.AmendmentCount)
	fmt.Fprintf(writer, "%-28s %d\n", "Explicit Cancellations:", result.CancellationCount)
}

func (rg *ReportGenerator) runJSON(result *reconciler.RunResult, writer io.Writer) error {
	payload := struct {
		RunID             string                     `json:"run_id"`
		Counterparty      string                     `json:"counterparty"`
		GeneratedAt       time.Time                  `json:"generated_at"`
		DurationMS        int64                      `json:"duration_ms"`
		AmendmentCount    int                        `json:"amendment_count"`
		CancellationCount int                        `json:"cancellation_count"`
		InternalCount     int                        `json:"internal_count"`
		ExternalCount     int                        `json:"external_count"`
		FoundInInternal   int                        `json:"found_in_internal"`
		Outcomes          []models.ComparisonOutcome `json:"outcomes"`
		Warnings          []string                   `json:"warnings,omitempty"`
	}{
		RunID:             result.RunID,
		Counterparty:      result.Counterparty,
		GeneratedAt:       time.Now().UTC(),
		DurationMS:        result.Duration.Milliseconds(),
		AmendmentCount:    result.AmendmentCount,
		CancellationCount: result.CancellationCount,
		Outcomes:          rg.selectOutcomes(result),
		Warnings:          result.Warnings,
	}
	if m := result.Match; m != nil {
		payload.InternalCount = m.InternalCount
		payload.ExternalCount = m.ExternalCount
		payload.FoundInInternal = m.FoundInInternal
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func (rg *ReportGenerator) runCSV(result *reconciler.RunResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{"Policy_Number", "Request_ID", "Field", "Status", "Score", "Internal_Value", "External_Value", "Detail"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}
	for _, o := range rg.selectOutcomes(result) {
		record := []string{
			o.PolicyNumber,
			o.RequestID,
			o.Field,
			string(o.Status),
			strconv.FormatFloat(o.Score, 'f', 1, 64),
			o.InternalValue,
			o.ExternalValue,
			o.Detail,
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return csvWriter.Error()
}

// selectOutcomes applies the configured status filters without reordering.
func (rg *ReportGenerator) selectOutcomes(result *reconciler.RunResult) []models.ComparisonOutcome {
	if result.Match == nil {
		return nil
	}
	selected := make([]models.ComparisonOutcome, 0, len(result.Match.Outcomes))
	for _, o := range result.Match.Outcomes {
		switch o.Status {
		case models.StatusMatch:
			if !rg.config.IncludeMatches {
				continue
			}
		case models.StatusInfo:
			if !rg.config.IncludeInfo {
				continue
			}
		}
		selected = append(selected, o)
	}
	return selected
}

var statusOrder = []models.MatchStatus{
	models.StatusMatch,
	models.StatusMismatch,
	models.StatusNotFoundInInternal,
	models.StatusNotFoundInExternal,
	models.StatusInfo,
}

func statusCounts(result *reconciler.RunResult) map[models.MatchStatus]int {
	if result.Match == nil {
		return nil
	}
	counts := make(map[models.MatchStatus]int)
	for _, o := range result.Match.Outcomes {
		counts[o.Status]++
	}
	return counts
}
