package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	cleanupDays   int
	cleanupEntity string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete scan reports older than the retention window",
	Long: `Cleanup removes persisted reports whose timestamp is older than the
retention window. Reports are the only scan artifact that is ever
deleted; statuses are overwritten in place.

Example:
  docsweep cleanup
  docsweep cleanup --days 7
  docsweep cleanup --days 7 --entity users`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", -1,
		"retention window in days (default: config value)")
	cleanupCmd.Flags().StringVar(&cleanupEntity, "entity", "",
		"restrict to one entity type")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	days := cleanupDays
	if days < 0 {
		days = cfg.RetentionDays
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	cutoff := time.Now().AddDate(0, 0, -days)
	logVerbose("deleting reports older than %s", cutoff.Format("2006-01-02 15:04:05"))

	deleted, err := store.DeleteReportsOlderThan(context.Background(), cutoff, cleanupEntity)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d report(s) older than %d day(s)\n", deleted, days)
	return nil
}
