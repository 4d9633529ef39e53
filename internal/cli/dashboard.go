package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/models"
	"github.com/ndmitriev/docsweep/internal/storage"
	"github.com/ndmitriev/docsweep/internal/tui"
)

var dashboardLimit int

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Browse statuses and scan reports in an interactive terminal UI",
	Long: `Dashboard opens an interactive view of per-entity consistency
statuses and recent scan reports. Reports can be searched, filtered by
entity type, and sorted.

Example:
  docsweep dashboard
  docsweep dashboard --limit 100`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardLimit, "limit", 50,
		"maximum number of reports to load")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var statuses []models.Status
	for _, entityType := range registry.EntityTypes() {
		st, err := store.GetStatus(ctx, entityType)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return err
		}
		statuses = append(statuses, *st)
	}

	found, err := store.QueryReports(ctx, storage.ReportFilter{Limit: dashboardLimit})
	if err != nil {
		return err
	}
	reports := make([]models.Report, 0, len(found))
	for _, r := range found {
		reports = append(reports, *r)
	}

	return tui.Run(statuses, reports)
}
