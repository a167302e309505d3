package cmd

import (
	"fmt"
	"os"

	"insurance-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
	version   = "dev"
	commit    = "unknown"
	date      = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Insurance policy reconciliation tool",
	Long: `Reconciler compares internal policy bookings with counterparty extract
files. It resolves each counterparty's column layout, filters out
endorsement and cancellation rows, matches policies field by field, and
categorizes every extract policy as Booked, Pending or Unbooked.

Examples:
  reconciler reconcile --counterparty ICICI --internal-file bookings.csv --extract-file icici.csv
  reconciler reconcile --counterparty DIGIT --internal-file bookings.csv --extract-file digit.csv --output-format json
  reconciler report --internal-file bookings.csv --offline-file offline.csv --extract-files ICICI=icici.csv,DIGIT=digit.csv
  reconciler version`,
	Version: getVersionString(),
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It is called by main.main() and returns the process exit
// code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return NewCLIErrorHandler().HandleError(err)
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig reads in config file and ENV variables, then configures the
// global logger from them.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading config file: %s\n", err)
			os.Exit(1)
		}
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}

	viper.SetEnvPrefix("RECONCILER")
	viper.AutomaticEnv()

	logCfg := logger.DefaultConfig()
	if viper.GetBool("verbose") {
		logCfg.Level = logger.DebugLevel
	}
	if viper.GetString("log-format") == "json" {
		logCfg.Format = logger.JSONFormat
	}
	logger.SetGlobalLogger(logger.New(logCfg))
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
