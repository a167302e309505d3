package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"insurance-reconciliation-service/cmd/reconciler/config"
	"insurance-reconciliation-service/internal/matcher"
	"insurance-reconciliation-service/internal/models"
	"insurance-reconciliation-service/internal/parsers"
	"insurance-reconciliation-service/internal/reconciler"
	"insurance-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	counterparty string
	internalFile string
	extractFile  string
	outputFormat string
	outputFile   string
	batchSize    int
	workers      int
	showProgress bool
	showMatches  bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile internal bookings with a counterparty extract",
	Long: `Reconcile compares internal policy bookings with one counterparty's
extract file to identify matches, mismatches and policies missing on
either side.

This command requires:
- The internal bookings file (CSV format)
- The counterparty extract file (CSV format)
- The counterparty name, to select its column mapping and filters

Examples:
  # Basic reconciliation
  reconciler reconcile --counterparty ICICI --internal-file bookings.csv --extract-file icici.csv

  # JSON output to a file
  reconciler reconcile --counterparty DIGIT --internal-file bookings.csv \
    --extract-file digit.csv --output-format json --output-file report.json

  # Larger batches on more workers, with progress
  reconciler reconcile --counterparty SBI --internal-file bookings.csv \
    --extract-file sbi.csv --batch-size 1000 --workers 8 --progress`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&counterparty, "counterparty", "c", "", "counterparty name (required)")
	reconcileCmd.Flags().StringVarP(&internalFile, "internal-file", "i", "", "path to internal bookings CSV file (required)")
	reconcileCmd.Flags().StringVarP(&extractFile, "extract-file", "e", "", "path to counterparty extract CSV file (required)")

	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	reconcileCmd.Flags().IntVar(&batchSize, "batch-size", matcher.DefaultBatchSize, "records per matching batch")
	reconcileCmd.Flags().IntVar(&workers, "workers", 0, "parallel matching workers (0 = number of CPUs)")

	reconcileCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress indicators")
	reconcileCmd.Flags().BoolVar(&showMatches, "show-matches", false, "include matching rows in the output")

	reconcileCmd.MarkFlagRequired("counterparty")
	reconcileCmd.MarkFlagRequired("internal-file")
	reconcileCmd.MarkFlagRequired("extract-file")

	viper.BindPFlag("counterparty", reconcileCmd.Flags().Lookup("counterparty"))
	viper.BindPFlag("internal-file", reconcileCmd.Flags().Lookup("internal-file"))
	viper.BindPFlag("extract-file", reconcileCmd.Flags().Lookup("extract-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("batch-size", reconcileCmd.Flags().Lookup("batch-size"))
	viper.BindPFlag("workers", reconcileCmd.Flags().Lookup("workers"))
	viper.BindPFlag("progress", reconcileCmd.Flags().Lookup("progress"))
	viper.BindPFlag("show-matches", reconcileCmd.Flags().Lookup("show-matches"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	counterparty = strings.ToUpper(strings.TrimSpace(viper.GetString("counterparty")))
	internalFile = viper.GetString("internal-file")
	extractFile = viper.GetString("extract-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	batchSize = viper.GetInt("batch-size")
	workers = viper.GetInt("workers")
	showProgress = viper.GetBool("progress")
	showMatches = viper.GetBool("show-matches")

	if counterparty == "" {
		return fmt.Errorf("counterparty is required")
	}
	if internalFile == "" {
		return fmt.Errorf("internal-file is required")
	}
	if extractFile == "" {
		return fmt.Errorf("extract-file is required")
	}
	if !reporter.OutputFormat(outputFormat).IsValid() {
		return fmt.Errorf("invalid output format %q: must be console, json or csv", outputFormat)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}
	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.Matcher.BatchSize = batchSize
	if workers > 0 {
		cfg.Matcher.Workers = workers
	}

	service, err := reconciler.NewService(cfg)
	if err != nil {
		return err
	}

	internal, err := loadTable(parsers.InternalTableConfig(), internalFile)
	if err != nil {
		return err
	}
	extract, err := loadTable(parsers.ExtractTableConfig(counterparty), extractFile)
	if err != nil {
		return err
	}

	var progress matcher.ProgressFunc
	if showProgress {
		progress = func(p matcher.Progress) {
			fmt.Fprintf(os.Stderr, "\r%-60s %3.0f%%", p.Message, p.Fraction*100)
			if p.Fraction >= 1 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	result, err := service.Reconcile(ctx, counterparty, internal, extract, progress)
	if err != nil {
		return err
	}
	return writeRunReport(result)
}

func writeRunReport(result *reconciler.RunResult) error {
	reportCfg := reporter.DefaultReportConfig()
	reportCfg.Format = reporter.OutputFormat(outputFormat)
	reportCfg.IncludeMatches = showMatches
	gen, err := reporter.NewReportGenerator(reportCfg)
	if err != nil {
		return err
	}

	out, closeFn, err := openOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeFn()
	return gen.GenerateRunReport(result, out)
}

func loadTable(tc *parsers.TableConfig, path string) (*models.Table, error) {
	parser, err := parsers.NewTableParser(tc)
	if err != nil {
		return nil, err
	}
	table, stats, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range stats.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, w)
	}
	return table, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
