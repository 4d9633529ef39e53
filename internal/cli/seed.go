package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndmitriev/docsweep/internal/seed"
)

var (
	seedCount      int
	seedDefectRate float64
	seedRandSeed   int64
)

var seedCmd = &cobra.Command{
	Use:   "seed <entity-type>",
	Short: "Generate sample documents with injected defects",
	Long: `Seed writes generated sample documents into the store so scans have
something to find. A configurable fraction of the documents carries one
injected defect (missing field, invalid value, out-of-range number).

Example:
  docsweep seed users
  docsweep seed users --count 200 --defect-rate 0.5
  docsweep seed users --rand-seed 42`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 0,
		"number of documents to generate (default: config value)")
	seedCmd.Flags().Float64Var(&seedDefectRate, "defect-rate", -1,
		"fraction of documents with an injected defect (default: config value)")
	seedCmd.Flags().Int64Var(&seedRandSeed, "rand-seed", 0,
		"random seed for reproducible batches (0: time-based)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	entityType := args[0]

	count := seedCount
	if count <= 0 {
		count = cfg.SeedCount
	}
	defectRate := seedDefectRate
	if defectRate < 0 {
		defectRate = cfg.SeedDefectRate
	}
	if defectRate > 1 {
		return &ValidationError{Message: "defect-rate must be between 0 and 1"}
	}

	randSeed := seedRandSeed
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	gen := seed.New(randSeed)
	written, err := gen.Populate(context.Background(), store, entityType, count, defectRate)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d %s document(s) (defect rate %.0f%%)\n", written, entityType, defectRate*100)
	return nil
}
