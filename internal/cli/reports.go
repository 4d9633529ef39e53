package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/reporter"
	"github.com/ndmitriev/docsweep/internal/storage"
)

var (
	reportsEntity string
	reportsLimit  int
	reportsFormat string
	reportsFull   bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List past scan reports, newest first",
	Long: `Reports lists persisted scan reports in recency order.

Example:
  docsweep reports
  docsweep reports --entity users --limit 5
  docsweep reports --entity users --limit 1 --full`,
	RunE: runReports,
}

func init() {
	reportsCmd.Flags().StringVar(&reportsEntity, "entity", "",
		"restrict to one entity type")
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 10,
		"maximum number of reports to list (0 for all)")
	reportsCmd.Flags().StringVar(&reportsFormat, "format", "",
		"output format: text or json (default: config value)")
	reportsCmd.Flags().BoolVar(&reportsFull, "full", false,
		"print each report in full instead of one line per report")
}

func runReports(cmd *cobra.Command, args []string) error {
	if reportsLimit < 0 {
		return &ValidationError{Message: "limit cannot be negative"}
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	filter := storage.ReportFilter{EntityType: reportsEntity, Limit: reportsLimit}
	found, err := store.QueryReports(context.Background(), filter)
	if err != nil {
		return err
	}

	reports := make([]models.Report, 0, len(found))
	for _, r := range found {
		reports = append(reports, *r)
	}

	format := reportsFormat
	if format == "" {
		format = cfg.Format
	}

	if format == "json" {
		return reporter.NewJSONReporter(os.Stdout, true).GenerateList(reports)
	}

	text := reporter.NewTextReporter(os.Stdout)
	if reportsFull {
		for i := range reports {
			if err := text.Generate(&reports[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return text.GenerateList(reports)
}
