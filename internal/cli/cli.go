//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-bookdw.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-bookdw/internal/config"
	"github.com/pgEdge/pgedge-bookdw/internal/db"
	"github.com/pgEdge/pgedge-bookdw/internal/logging"
	"github.com/pgEdge/pgedge-bookdw/internal/pipeline"
	"github.com/pgEdge/pgedge-bookdw/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	envFile    string
	connection string
	logLevel   string
	noMigrate  bool

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-bookdw",
		Short: "Book sales data warehouse and reporting pipeline",
		Long: `pgedge-bookdw loads scraped book sales records from a staging table
into a PostgreSQL star schema, builds reporting materialized views, and
produces BI extracts, charts and an HTML dashboard.

A typical session:
  pgedge-bookdw stage import books.csv
  pgedge-bookdw run

Steps can also be executed one at a time (load, transform, export,
visualize, report).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./pgedge-bookdw.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"file with DW_* connection variables")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noMigrate, "no-migrate", false,
		"do not apply pending schema migrations on connect")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(runCmd)
	for _, c := range stepCommands() {
		rootCmd.AddCommand(c)
	}
}

func initConfig() error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// connect opens the warehouse pool and, unless disabled, applies pending
// migrations.
func connect(ctx context.Context) (*pgxpool.Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if !noMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return pool, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List available pipeline steps",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available steps:")
		cmd.Println()
		for _, name := range pipeline.List() {
			step, err := pipeline.Get(name)
			if err != nil {
				continue
			}
			cmd.Printf("  %-10s - %s\n", name, step.Description())
		}
		cmd.Println()
		cmd.Printf("Default 'run' order: %v\n", cfg.Pipeline.Steps)
	},
}
