package cmd

import (
	"fmt"
	"strings"

	"insurance-reconciliation-service/cmd/reconciler/config"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/internal/parsers"
	"insurance-reconciliation-service/internal/reconciler"
	"insurance-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the report command
var (
	reportInternalFile string
	offlineFile        string
	extractFiles       []string
	reportFormat       string
	reportOutputFile   string
	includeBlankKeys   bool
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Categorize extract policies as Booked, Pending or Unbooked",
	Long: `Report builds the booking status view across counterparties. Every
unique policy in each extract is assigned to exactly one bucket:
  Booked   - present in the internal bookings
  Pending  - not booked, but pending per the offline status table
  Unbooked - everything else

Extract files are passed as NAME=path pairs, one per counterparty.

Examples:
  reconciler report --internal-file bookings.csv --offline-file offline.csv \
    --extract-files ICICI=icici.csv,DIGIT=digit.csv

  reconciler report --internal-file bookings.csv --offline-file offline.csv \
    --extract-files SBI=sbi.csv --output-format csv --output-file buckets.csv`,

	PreRunE: validateReportFlags,
	RunE:    runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportInternalFile, "internal-file", "i", "", "path to internal bookings CSV file (required)")
	reportCmd.Flags().StringVar(&offlineFile, "offline-file", "", "path to offline status CSV file (required)")
	reportCmd.Flags().StringSliceVar(&extractFiles, "extract-files", []string{}, "comma-separated NAME=path extract file pairs (required)")

	reportCmd.Flags().StringVarP(&reportFormat, "output-format", "f", "console", "output format: console, json, csv")
	reportCmd.Flags().StringVarP(&reportOutputFile, "output-file", "o", "", "output file path (default: stdout)")
	reportCmd.Flags().BoolVar(&includeBlankKeys, "include-blank-keys", true, "count blank policy numbers as unbooked")

	reportCmd.MarkFlagRequired("internal-file")
	reportCmd.MarkFlagRequired("offline-file")
	reportCmd.MarkFlagRequired("extract-files")

	viper.BindPFlag("report-internal-file", reportCmd.Flags().Lookup("internal-file"))
	viper.BindPFlag("offline-file", reportCmd.Flags().Lookup("offline-file"))
	viper.BindPFlag("extract-files", reportCmd.Flags().Lookup("extract-files"))
	viper.BindPFlag("report-output-format", reportCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("report-output-file", reportCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("include-blank-keys", reportCmd.Flags().Lookup("include-blank-keys"))
}

func validateReportFlags(cmd *cobra.Command, args []string) error {
	reportInternalFile = viper.GetString("report-internal-file")
	offlineFile = viper.GetString("offline-file")
	extractFiles = viper.GetStringSlice("extract-files")
	reportFormat = viper.GetString("report-output-format")
	reportOutputFile = viper.GetString("report-output-file")
	includeBlankKeys = viper.GetBool("include-blank-keys")

	if reportInternalFile == "" {
		return fmt.Errorf("internal-file is required")
	}
	if offlineFile == "" {
		return fmt.Errorf("offline-file is required")
	}
	if len(extractFiles) == 0 {
		return fmt.Errorf("at least one extract file is required")
	}
	if !reporter.OutputFormat(reportFormat).IsValid() {
		return fmt.Errorf("invalid output format %q: must be console, json or csv", reportFormat)
	}
	for _, pair := range extractFiles {
		if !strings.Contains(pair, "=") {
			return fmt.Errorf("extract file %q must be a NAME=path pair", pair)
		}
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.IncludeBlankKeys = includeBlankKeys

	service, err := reconciler.NewService(cfg)
	if err != nil {
		return err
	}

	internal, err := loadTable(parsers.InternalTableConfig(), reportInternalFile)
	if err != nil {
		return err
	}
	offline, err := loadTable(parsers.OfflineTableConfig(), offlineFile)
	if err != nil {
		return err
	}

	extracts := make(map[string]*models.Table, len(extractFiles))
	for _, pair := range extractFiles {
		name, path, _ := strings.Cut(pair, "=")
		name = strings.ToUpper(strings.TrimSpace(name))
		table, err := loadTable(parsers.ExtractTableConfig(name), path)
		if err != nil {
			return err
		}
		extracts[name] = table
	}

	report, err := service.Report(ctx, internal, offline, extracts)
	if err != nil {
		return err
	}

	reportCfg := reporter.DefaultReportConfig()
	reportCfg.Format = reporter.OutputFormat(reportFormat)
	gen, err := reporter.NewReportGenerator(reportCfg)
	if err != nil {
		return err
	}
	out, closeFn, err := openOutput(reportOutputFile)
	if err != nil {
		return err
	}
	defer closeFn()
	return gen.GenerateBookingReport(report, out)
}
