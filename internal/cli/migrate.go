package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Manage the warehouse schema",
	Long:      `Apply, roll back or list the embedded schema migrations. Defaults to "up".`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	action := "up"
	if len(args) == 1 {
		action = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	pool, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	switch action {
	case "up":
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
	case "down":
		if err := db.MigrateDown(ctx, pool); err != nil {
			return err
		}
	case "status":
		return db.MigrationStatus(ctx, pool)
	}

	v, err := db.SchemaVersion(ctx, pool)
	if err != nil {
		return err
	}
	logging.Info().Int64("version", v).Msg("Schema version")
	return nil
}
