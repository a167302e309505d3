package cmd

import (
	stderrors "errors"
	"testing"

	"insurance-reconciliation-service/pkg/errors"

	"github.com/spf13/viper"
)

func setReconcileFlags(t *testing.T, values map[string]interface{}) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	for key, value := range values {
		viper.Set(key, value)
	}
}

func TestValidateReconcileFlags(t *testing.T) {
	tests := []struct {
		name        string
		flags       map[string]interface{}
		expectError bool
	}{
		{
			name: "valid flags",
			flags: map[string]interface{}{
				"counterparty":  "icici",
				"internal-file": "bookings.csv",
				"extract-file":  "icici.csv",
				"output-format": "console",
				"batch-size":    500,
			},
			expectError: false,
		},
		{
			name: "missing counterparty",
			flags: map[string]interface{}{
				"internal-file": "bookings.csv",
				"extract-file":  "icici.csv",
				"output-format": "console",
				"batch-size":    500,
			},
			expectError: true,
		},
		{
			name: "missing internal file",
			flags: map[string]interface{}{
				"counterparty":  "ICICI",
				"extract-file":  "icici.csv",
				"output-format": "console",
				"batch-size":    500,
			},
			expectError: true,
		},
		{
			name: "invalid output format",
			flags: map[string]interface{}{
				"counterparty":  "ICICI",
				"internal-file": "bookings.csv",
				"extract-file":  "icici.csv",
				"output-format": "yaml",
				"batch-size":    500,
			},
			expectError: true,
		},
		{
			name: "non-positive batch size",
			flags: map[string]interface{}{
				"counterparty":  "ICICI",
				"internal-file": "bookings.csv",
				"extract-file":  "icici.csv",
				"output-format": "console",
				"batch-size":    0,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setReconcileFlags(t, tt.flags)
			err := validateReconcileFlags(reconcileCmd, nil)
			if tt.expectError && err == nil {
				t.Error("expected validation error")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateReconcileFlagsUppercasesCounterparty(t *testing.T) {
	setReconcileFlags(t, map[string]interface{}{
		"counterparty":  "  icici ",
		"internal-file": "bookings.csv",
		"extract-file":  "icici.csv",
		"output-format": "json",
		"batch-size":    500,
	})
	if err := validateReconcileFlags(reconcileCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counterparty != "ICICI" {
		t.Errorf("counterparty = %q, want trimmed upper-case", counterparty)
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		category errors.ErrorCategory
		want     int
	}{
		{errors.CategoryFile, exitFile},
		{errors.CategoryParse, exitParse},
		{errors.CategoryValidation, exitValidation},
		{errors.CategoryConfiguration, exitConfiguration},
		{errors.CategoryReconciliation, exitRun},
		{errors.CategoryIntegrity, exitIntegrity},
		{errors.CategoryInternal, exitGeneric},
	}
	for _, tt := range tests {
		if got := exitCode(tt.category); got != tt.want {
			t.Errorf("exitCode(%s) = %d, want %d", tt.category, got, tt.want)
		}
	}
}

func TestHandleError(t *testing.T) {
	handler := NewCLIErrorHandler()

	if got := handler.HandleError(nil); got != 0 {
		t.Errorf("nil error exit code = %d, want 0", got)
	}
	if got := handler.HandleError(stderrors.New("plain failure")); got != exitGeneric {
		t.Errorf("plain error exit code = %d, want %d", got, exitGeneric)
	}

	err := errors.New(errors.CategoryFile, errors.CodeFileNotFound, "file not found").
		WithSuggestion("check the path")
	if got := handler.HandleError(err); got != exitFile {
		t.Errorf("file error exit code = %d, want %d", got, exitFile)
	}

	wrapped := errors.Wrap(stderrors.New("root cause"), errors.CategoryReconciliation,
		errors.CodeRunCancelled, "run cancelled")
	if got := handler.HandleError(wrapped); got != exitRun {
		t.Errorf("run error exit code = %d, want %d", got, exitRun)
	}
}

func TestOpenOutputStdout(t *testing.T) {
	f, closeFn, err := openOutput("")
	if err != nil {
		t.Fatalf("openOutput failed: %v", err)
	}
	defer closeFn()
	if f == nil {
		t.Fatal("expected a writable file")
	}
}
