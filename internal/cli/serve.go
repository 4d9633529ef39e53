package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/scanner"
	"github.com/ndmitriev/docsweep/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, optionally with scheduled scans",
	Long: `Serve exposes scans, statuses, reports, and seeding over HTTP.

When scan_interval is configured, a scheduler triggers a scan of every
configured entity type at that interval. Overlapping triggers are
skipped; the single-scan guard holds across the API and the scheduler.

Example:
  docsweep serve
  docsweep serve --addr :9090
  DOCSWEEP_SCAN_INTERVAL=5m docsweep serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"listen address (default: config value)")
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	registry, err := buildRegistry()
	if err != nil {
		return err
	}

	log := logrus.New()
	if cfg.Debug {
		log.SetLevel(logrus.DebugLevel)
	} else if cfg.Verbose {
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}

	sc := scanner.New(store, registry)
	srv := server.New(store, registry, sc, log, server.Options{
		Addr:           addr,
		ScanInterval:   cfg.ScanInterval,
		SeedCount:      cfg.SeedCount,
		SeedDefectRate: cfg.SeedDefectRate,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
