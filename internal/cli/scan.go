package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/reporter"
	"github.com/ndmitriev/docsweep/internal/scanner"
)

var (
	scanFormat string
	scanStrict bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <entity-type>",
	Short: "Scan an entity type's documents and repair inconsistencies",
	Long: `Scan validates every document of the given entity type against its
rule set, applies the safe repairs, deletes irreparable documents, and
prints the resulting report.

The scan always produces a report; per-document failures are recorded
in it instead of aborting the pass.

Example:
  docsweep scan users
  docsweep scan users --format json
  docsweep scan users --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "",
		"output format: text or json (default: config value)")
	scanCmd.Flags().BoolVar(&scanStrict, "strict", false,
		"exit non-zero when inconsistencies remain unresolved")
}

func runScan(cmd *cobra.Command, args []string) error {
	entityType := args[0]

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	logVerbose("scanning entity type %q", entityType)

	sc := scanner.New(store, registry)
	report, err := sc.Scan(context.Background(), entityType)
	if err != nil {
		if errors.Is(err, scanner.ErrScanInProgress) {
			return fmt.Errorf("scan rejected: %w", err)
		}
		return err
	}

	for _, e := range report.Errors {
		logError("%s", e)
	}

	format := scanFormat
	if format == "" {
		format = cfg.Format
	}

	switch format {
	case "json":
		if err := reporter.NewJSONReporter(os.Stdout, true).Generate(report); err != nil {
			return err
		}
	default:
		if err := reporter.NewTextReporter(os.Stdout).Generate(report); err != nil {
			return err
		}
	}

	if scanStrict && !report.Resolved() {
		unresolved := report.InconsistenciesFound - report.RepairsApplied - report.DocumentsDeleted
		return &InconsistentError{EntityType: entityType, Unresolved: unresolved}
	}

	return nil
}
