package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/stage"
)

var (
	stageTruncate  bool
	stageBatchSize int

	seedRows      int
	seedSeed      uint64
	seedStart     string
	seedEnd       string
	seedSnapshots int
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Fill the staging_books table",
	Long: `Fill staging_books, the raw landing table read by the load step,
either from a scraped CSV file or with synthetic records.`,
}

var stageImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a scraped books CSV file",
	Long: `Import a CSV file with a header row into staging_books. Columns are
matched by name; unknown columns are ignored and a title column is
required. Sold counts are read from sold_count_numeric, or parsed from
the sold_count text ("Đã bán 2,3k") when sold_count_numeric is empty.
The import is all or nothing: a bad row leaves staging_books unchanged.

Example:
  pgedge-bookdw stage import books.csv --truncate`,
	Args: cobra.ExactArgs(1),
	RunE: runStageImport,
}

var stageSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic staging records",
	Long: `Generate a reproducible catalogue of fictional books and insert
repeated snapshots of it into staging_books.

Example:
  pgedge-bookdw stage seed --rows 10000 --seed 42`,
	Args: cobra.NoArgs,
	RunE: runStageSeed,
}

func init() {
	stageCmd.PersistentFlags().BoolVar(&stageTruncate, "truncate", false,
		"empty staging_books first")
	stageCmd.PersistentFlags().IntVar(&stageBatchSize, "batch-size", 0,
		"rows per COPY batch")

	stageSeedCmd.Flags().IntVar(&seedRows, "rows", 0,
		"number of staging rows to generate")
	stageSeedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed (0 = random)")
	stageSeedCmd.Flags().StringVar(&seedStart, "start-date", "",
		"first collection date (YYYY-MM-DD)")
	stageSeedCmd.Flags().StringVar(&seedEnd, "end-date", "",
		"last collection date (YYYY-MM-DD)")
	stageSeedCmd.Flags().IntVar(&seedSnapshots, "snapshots", 0,
		"collections per book")

	stageCmd.AddCommand(stageImportCmd)
	stageCmd.AddCommand(stageSeedCmd)
}

func applyStageFlags() {
	if stageTruncate {
		cfg.Stage.Truncate = true
	}
	if stageBatchSize > 0 {
		cfg.Stage.BatchSize = stageBatchSize
	}
}

func runStageImport(cmd *cobra.Command, args []string) error {
	applyStageFlags()
	if err := cfg.ValidateStage(); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rows, err := stage.ImportCSV(ctx, pool, f, cfg.Stage)
	if err != nil {
		return err
	}

	logging.Info().
		Str("file", args[0]).
		Int64("rows", rows).
		Msg("Staging import complete")
	return nil
}

func runStageSeed(cmd *cobra.Command, args []string) error {
	applyStageFlags()
	if seedRows > 0 {
		cfg.Seed.Rows = seedRows
	}
	if seedSeed > 0 {
		cfg.Seed.Seed = seedSeed
	}
	if seedStart != "" {
		cfg.Seed.StartDate = seedStart
	}
	if seedEnd != "" {
		cfg.Seed.EndDate = seedEnd
	}
	if seedSnapshots > 0 {
		cfg.Seed.Snapshots = seedSnapshots
	}
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	pool, err := connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	rows, err := stage.Generate(ctx, pool, cfg)
	if err != nil {
		return err
	}

	logging.Info().
		Int64("rows", rows).
		Uint64("seed", cfg.Seed.Seed).
		Msg("Synthetic staging data generated")
	return nil
}
