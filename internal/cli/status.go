package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/reporter"
	"github.com/ndmitriev/docsweep/internal/storage"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status <entity-type>",
	Short: "Show the consistency status of an entity type",
	Long: `Status prints the binary consistency verdict recorded by the most
recent scan of the given entity type.

Example:
  docsweep status users
  docsweep status users --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "",
		"output format: text or json (default: config value)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	entityType := args[0]

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	status, err := store.GetStatus(context.Background(), entityType)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &ValidationError{
				Message: fmt.Sprintf("no status recorded for entity type %q; run a scan first", entityType),
			}
		}
		return err
	}

	format := statusFormat
	if format == "" {
		format = cfg.Format
	}

	if format == "json" {
		return reporter.NewJSONReporter(os.Stdout, true).GenerateStatus(status)
	}
	return reporter.NewTextReporter(os.Stdout).GenerateStatus(status)
}
