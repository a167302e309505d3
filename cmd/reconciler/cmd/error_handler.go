package cmd

import (
	"fmt"
	"os"

	"insurance-reconciliation-service/pkg/errors"
	"insurance-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// Exit codes by failure category.
const (
	exitGeneric       = 1
	exitFile          = 2
	exitParse         = 3
	exitValidation    = 4
	exitConfiguration = 5
	exitRun           = 6
	exitIntegrity     = 7
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError prints a user-friendly message for err and returns the
// process exit code.
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}
	h.logger.WithError(err).Error("Command failed")

	var reconcilerErr *errors.ReconcilerError
	if errors.As(err, &reconcilerErr) {
		return h.handleReconcilerError(reconcilerErr)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitGeneric
}

// handleReconcilerError prints the structured message, context and
// suggestion carried by a ReconcilerError.
func (h *CLIErrorHandler) handleReconcilerError(err *errors.ReconcilerError) int {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}
	if help := categoryHelp(err.Category); help != "" {
		fmt.Fprintf(os.Stderr, "\n%s\n", help)
	}
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}
	return exitCode(err.Category)
}

func exitCode(category errors.ErrorCategory) int {
	switch category {
	case errors.CategoryFile:
		return exitFile
	case errors.CategoryParse:
		return exitParse
	case errors.CategoryValidation:
		return exitValidation
	case errors.CategoryConfiguration:
		return exitConfiguration
	case errors.CategoryReconciliation:
		return exitRun
	case errors.CategoryIntegrity:
		return exitIntegrity
	default:
		return exitGeneric
	}
}

func categoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return "Check that the file exists and is readable."
	case errors.CategoryParse:
		return "Check that the file is valid CSV with the expected header row."
	case errors.CategoryConfiguration:
		return "Check the counterparty name and configuration file. Run with --verbose for details."
	case errors.CategoryReconciliation:
		return "The run did not complete. Re-run with --verbose to see per-batch details."
	case errors.CategoryIntegrity:
		return "The result failed an internal consistency check. The output includes the repaired values."
	default:
		return ""
	}
}
