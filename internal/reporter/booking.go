package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"insurance-reconciliation-service/internal/categorize"
	"insurance-reconciliation-service/internal/reconciler"

	"github.com/shopspring/decimal"
)

// GenerateBookingReport writes a booking categorization report to the
// writer.
func (rg *ReportGenerator) GenerateBookingReport(report *reconciler.BookingReport, writer io.Writer) error {
	if report == nil {
		return fmt.Errorf("booking report cannot be nil")
	}
	switch rg.config.Format {
	case FormatConsole:
		return rg.bookingConsole(report, writer)
	case FormatJSON:
		return rg.bookingJSON(report, writer)
	case FormatCSV:
		return rg.bookingCSV(report, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) bookingConsole(report *reconciler.BookingReport, writer io.Writer) error {
	fmt.Fprintf(writer, "BOOKING CATEGORIZATION REPORT\n")
	fmt.Fprintf(writer, "Run ID: %s\n", report.RunID)
	fmt.Fprintf(writer, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Offline Records: %d\n", report.OfflineRecords)
	fmt.Fprintf(writer, "Duration: %v\n\n", report.Duration)

	fmt.Fprintf(writer, "%-15s %10s %10s %10s %10s %15s %15s %15s %15s\n",
		"Counterparty", "Booked", "Pending", "Unbooked", "Total",
		"Booked Prem", "Pending Prem", "Unbooked Prem", "Total Prem")
	totalPremium := decimal.Zero
	for _, s := range report.Summaries {
		fmt.Fprintf(writer, "%-15s %10d %10d %10d %10d %15s %15s %15s %15s\n",
			s.Counterparty, s.BookedNOP, s.PendingNOP, s.UnbookedNOP, s.TotalNOP,
			s.BookedPremium.StringFixed(2), s.PendingPremium.StringFixed(2),
			s.UnbookedPremium.StringFixed(2), s.TotalPremium.StringFixed(2))
		totalPremium = totalPremium.Add(s.TotalPremium)
	}
	booked, pending, unbooked := report.TotalsByBucket()
	fmt.Fprintf(writer, "%-15s %10d %10d %10d %10d %63s %15s\n\n",
		"TOTAL", booked, pending, unbooked, booked+pending+unbooked, "", totalPremium.StringFixed(2))

	for _, s := range report.Summaries {
		if len(s.Anomalies) == 0 {
			continue
		}
		fmt.Fprintf(writer, "=== ANOMALIES: %s ===\n", s.Counterparty)
		for _, a := range s.Anomalies {
			fmt.Fprintf(writer, "- %v\n", a)
		}
		fmt.Fprintf(writer, "\n")
	}
	return nil
}

// bookingSummaryJSON is the wire shape of one counterparty summary. Key
// sets stay internal; only counts and premiums are published.
type bookingSummaryJSON struct {
	Counterparty    string   `json:"counterparty"`
	BookedNOP       int      `json:"booked_nop"`
	PendingNOP      int      `json:"pending_nop"`
	UnbookedNOP     int      `json:"unbooked_nop"`
	TotalNOP        int      `json:"total_nop"`
	BookedPremium   string   `json:"booked_premium"`
	PendingPremium  string   `json:"pending_premium"`
	UnbookedPremium string   `json:"unbooked_premium"`
	TotalPremium    string   `json:"total_premium"`
	Anomalies       []string `json:"anomalies,omitempty"`
}

func (rg *ReportGenerator) bookingJSON(report *reconciler.BookingReport, writer io.Writer) error {
	summaries := make([]bookingSummaryJSON, 0, len(report.Summaries))
	for _, s := range report.Summaries {
		summaries = append(summaries, toSummaryJSON(s))
	}
	payload := struct {
		RunID          string               `json:"run_id"`
		GeneratedAt    time.Time            `json:"generated_at"`
		OfflineRecords int                  `json:"offline_records"`
		DurationMS     int64                `json:"duration_ms"`
		Summaries      []bookingSummaryJSON `json:"summaries"`
	}{
		RunID:          report.RunID,
		GeneratedAt:    time.Now().UTC(),
		OfflineRecords: report.OfflineRecords,
		DurationMS:     report.Duration.Milliseconds(),
		Summaries:      summaries,
	}
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func toSummaryJSON(s *categorize.Summary) bookingSummaryJSON {
	out := bookingSummaryJSON{
		Counterparty:    s.Counterparty,
		BookedNOP:       s.BookedNOP,
		PendingNOP:      s.PendingNOP,
		UnbookedNOP:     s.UnbookedNOP,
		TotalNOP:        s.TotalNOP,
		BookedPremium:   s.BookedPremium.StringFixed(2),
		PendingPremium:  s.PendingPremium.StringFixed(2),
		UnbookedPremium: s.UnbookedPremium.StringFixed(2),
		TotalPremium:    s.TotalPremium.StringFixed(2),
	}
	for _, a := range s.Anomalies {
		out.Anomalies = append(out.Anomalies, a.Error())
	}
	return out
}

func (rg *ReportGenerator) bookingCSV(report *reconciler.BookingReport, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter
	defer csvWriter.Flush()

	if rg.config.CSVHeaders {
		headers := []string{"Counterparty", "Booked_NOP", "Pending_NOP", "Unbooked_NOP", "Total_NOP",
			"Booked_Premium", "Pending_Premium", "Unbooked_Premium", "Total_Premium", "Anomalies"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}
	for _, s := range report.Summaries {
		record := []string{
			s.Counterparty,
			strconv.Itoa(s.BookedNOP),
			strconv.Itoa(s.PendingNOP),
			strconv.Itoa(s.UnbookedNOP),
			strconv.Itoa(s.TotalNOP),
			s.BookedPremium.StringFixed(2),
			s.PendingPremium.StringFixed(2),
			s.UnbookedPremium.StringFixed(2),
			s.TotalPremium.StringFixed(2),
			strconv.Itoa(len(s.Anomalies)),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return csvWriter.Error()
}
