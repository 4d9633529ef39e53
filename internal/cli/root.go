package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/config"
	"github.com/ndmitriev/docsweep/internal/rules"
	"github.com/ndmitriev/docsweep/internal/storage"
)

const (
	ExitOK           = 0 // Success
	ExitInconsistent = 1 // Scan left unresolved inconsistencies
	ExitInvalidInput = 2 // Bad flags, rules file, or arguments
	ExitRuntimeError = 3 // I/O, storage, or runtime error
)

// version is injected from main at startup.
var version = "dev"

// SetVersion records the build version shown by the version command.
func SetVersion(v string) {
	version = v
}

var (
	// Global config instance
	cfg *config.Config

	// Global flags
	configFile string
	verbose    bool
	debug      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "docsweep",
	Short: "Docsweep - Document consistency scanner and repairer",
	Long: `Docsweep scans schemaless document collections against declarative
per-entity rule sets, repairs what it can, and records what it cannot.

Each scan validates every document of an entity type, applies the safe
repairs (defaults, type conversions, range clamps), deletes irreparable
documents, and persists an immutable report plus a per-entity
consistency status.

Quick start:
  docsweep seed users
  docsweep scan users
  docsweep status users

Other commands:
  docsweep reports --entity users --limit 5
  docsweep cleanup --days 30
  docsweep serve
  docsweep dashboard`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		return nil
	},
}

// exitFunc is swapped out in tests.
var exitFunc = os.Exit

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		exitFunc(HandleError(err))
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ~/docsweep.yaml or ./docsweep.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Docsweep %s\n", version)
		fmt.Println("Document consistency scanner and repairer")
	},
}

// openStore opens the embedded store at the configured data directory.
func openStore() (storage.Store, error) {
	path, err := cfg.DataPath()
	if err != nil {
		return nil, err
	}
	logDebug("opening store at %s", path)
	return storage.OpenBadger(path)
}

// buildRegistry returns the rule registry, merging the configured rules
// file over the built-in rule sets when one is set.
func buildRegistry() (*rules.Registry, error) {
	registry := rules.NewRegistry()
	if cfg.RulesFile != "" {
		logVerbose("loading rules file %s", cfg.RulesFile)
		if err := registry.LoadFile(cfg.RulesFile); err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}
	}
	return registry, nil
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	switch err.(type) {
	case *ValidationError:
		return ExitInvalidInput
	case *InconsistentError:
		return ExitInconsistent
	default:
		return ExitRuntimeError
	}
}

// ValidationError represents bad input: flags, arguments, or rules files
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InconsistentError signals that a scan finished with unresolved issues
type InconsistentError struct {
	EntityType string
	Unresolved int
}

func (e *InconsistentError) Error() string {
	return fmt.Sprintf("entity type %q has %d unresolved inconsistencies", e.EntityType, e.Unresolved)
}

// logVerbose prints a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[INFO] "+format+"\n", args...)
	}
}

// logDebug prints a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// logError prints an error message
func logError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "[ERROR] "+format+"\n", args...)
}
