//-------------------------------------------------------------------------
//
// pgEdge Book Sales Warehouse
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-bookdw.
// Configuration is loaded from a YAML config file, DW_* environment
// variables (optionally read from a .env file) and CLI flags. CLI flags take
// precedence over environment variables, which take precedence over the
// config file.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DateLayout is the layout used for date-only settings.
const DateLayout = "2006-01-02"

// Transform modes.
const (
	TransformRebuild = "rebuild"
	TransformRefresh = "refresh"
)

// Config holds all configuration for pgedge-bookdw.
type Config struct {
	// Connection is the PostgreSQL connection string. When empty, one is
	// assembled from Database.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Database holds discrete connection settings.
	Database DatabaseConfig `mapstructure:"database"`

	Stage     StageConfig     `mapstructure:"stage"`
	Seed      SeedConfig      `mapstructure:"seed"`
	Transform TransformConfig `mapstructure:"transform"`
	Export    ExportConfig    `mapstructure:"export"`
	Visualize VisualizeConfig `mapstructure:"visualize"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
}

// DatabaseConfig holds the warehouse connection parameters.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// StageConfig holds configuration for staging ingestion.
type StageConfig struct {
	// BatchSize is the number of rows per COPY batch.
	BatchSize int `mapstructure:"batch_size"`

	// Truncate empties staging_books before importing.
	Truncate bool `mapstructure:"truncate"`
}

// SeedConfig holds configuration for synthetic staging data.
type SeedConfig struct {
	// Rows is the number of staging rows to generate.
	Rows int `mapstructure:"rows"`

	// Seed makes generation reproducible; 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// StartDate and EndDate bound the collection timestamps (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`

	// Snapshots is how many times each book is re-collected.
	Snapshots int `mapstructure:"snapshots"`
}

// TransformConfig holds configuration for the transform step.
type TransformConfig struct {
	// Mode is "rebuild" (drop and recreate views) or "refresh".
	Mode string `mapstructure:"mode"`
}

// ExportConfig holds configuration for BI exports.
type ExportConfig struct {
	// Dir is the output directory for CSV extracts.
	Dir string `mapstructure:"dir"`

	// TopBooks is the number of rows in the top books extract.
	TopBooks int `mapstructure:"top_books"`

	// Workbook also writes an .xlsx workbook with every dataset.
	Workbook bool `mapstructure:"workbook"`

	// Guide writes the BI usage guides next to the extracts.
	Guide bool `mapstructure:"guide"`
}

// VisualizeConfig holds configuration for charts and the dashboard.
type VisualizeConfig struct {
	// Dir is the output directory for charts and the dashboard page.
	Dir string `mapstructure:"dir"`

	// Width and Height are the chart dimensions in inches.
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`

	// Dashboard is the dashboard file name inside Dir.
	Dashboard string `mapstructure:"dashboard"`

	// Title is shown in the dashboard header.
	Title string `mapstructure:"title"`
}

// PipelineConfig holds configuration for the run command.
type PipelineConfig struct {
	// Steps lists the steps executed by "run", in order.
	Steps []string `mapstructure:"steps"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			SSLMode: "prefer",
		},
		Stage: StageConfig{
			BatchSize: 1000,
		},
		Seed: SeedConfig{
			Rows:      5000,
			StartDate: "2025-01-01",
			EndDate:   "2025-06-30",
			Snapshots: 3,
		},
		Transform: TransformConfig{
			Mode: TransformRebuild,
		},
		Export: ExportConfig{
			Dir:      "powerbi_data",
			TopBooks: 50,
			Workbook: true,
			Guide:    true,
		},
		Visualize: VisualizeConfig{
			Dir:       "visualizations",
			Width:     12,
			Height:    8,
			Dashboard: "dashboard.html",
			Title:     "Book Sales Dashboard",
		},
		Pipeline: PipelineConfig{
			Steps: []string{"load", "transform", "export", "visualize"},
		},
	}
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"database.host":     "DW_HOST",
	"database.port":     "DW_PORT",
	"database.user":     "DW_USER",
	"database.password": "DW_PASS",
	"database.name":     "DW_NAME",
	"database.sslmode":  "DW_SSLMODE",
	"connection":        "DW_CONNECTION",
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-bookdw.yaml
// 3. ~/.config/pgedge-bookdw/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-bookdw")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-bookdw"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error. Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading %s: %w", path, err)
	}
	return nil
}

// ConnString returns the effective PostgreSQL connection string.
func (c *Config) ConnString() string {
	if c.Connection != "" {
		return c.Connection
	}
	d := c.Database
	if d.Name == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   d.Host,
		Path:   "/" + d.Name,
	}
	if d.Port > 0 {
		u.Host = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	}
	switch {
	case d.User != "" && d.Password != "":
		u.User = url.UserPassword(d.User, d.Password)
	case d.User != "":
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.ConnString() == "" {
		return fmt.Errorf("connection string or database name is required")
	}
	return nil
}

// ValidateStage checks configuration required for staging imports.
func (c *Config) ValidateStage() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Stage.BatchSize < 1 {
		return fmt.Errorf("stage batch_size must be at least 1")
	}
	return nil
}

// SeedRange parses the configured seed date range.
func (c *Config) SeedRange() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.Seed.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid seed start_date %q: %w", c.Seed.StartDate, err)
	}
	end, err := time.Parse(DateLayout, c.Seed.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid seed end_date %q: %w", c.Seed.EndDate, err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("seed end_date must not be before start_date")
	}
	return start, end, nil
}

// ValidateSeed checks configuration required for synthetic data generation.
func (c *Config) ValidateSeed() error {
	if err := c.ValidateStage(); err != nil {
		return err
	}
	if c.Seed.Rows < 1 {
		return fmt.Errorf("seed rows must be at least 1")
	}
	if c.Seed.Snapshots < 1 {
		return fmt.Errorf("seed snapshots must be at least 1")
	}
	_, _, err := c.SeedRange()
	return err
}

// ValidateTransform checks configuration required for the transform step.
func (c *Config) ValidateTransform() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Transform.Mode != TransformRebuild && c.Transform.Mode != TransformRefresh {
		return fmt.Errorf("transform mode must be '%s' or '%s'", TransformRebuild, TransformRefresh)
	}
	return nil
}

// ValidateExport checks configuration required for the export step.
func (c *Config) ValidateExport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Export.Dir == "" {
		return fmt.Errorf("export dir is required")
	}
	if c.Export.TopBooks < 1 {
		return fmt.Errorf("export top_books must be at least 1")
	}
	return nil
}

// ValidateVisualize checks configuration required for charts.
func (c *Config) ValidateVisualize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Visualize.Dir == "" {
		return fmt.Errorf("visualize dir is required")
	}
	if c.Visualize.Width <= 0 || c.Visualize.Height <= 0 {
		return fmt.Errorf("visualize width and height must be positive")
	}
	if c.Visualize.Dashboard == "" {
		return fmt.Errorf("visualize dashboard file name is required")
	}
	return nil
}

// ValidatePipeline checks configuration required for the run command.
func (c *Config) ValidatePipeline() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Pipeline.Steps) == 0 {
		return fmt.Errorf("pipeline steps must not be empty")
	}
	seen := make(map[string]bool, len(c.Pipeline.Steps))
	for _, s := range c.Pipeline.Steps {
		if seen[s] {
			return fmt.Errorf("pipeline step %q listed more than once", s)
		}
		seen[s] = true
	}
	return nil
}
