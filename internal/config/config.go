//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-etl.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/spf13/viper"
)

// Supported values for enumerated settings.
var (
	Drivers           = []string{"mysql", "postgres", "sqlite"}
	OutputFormats     = []string{"table", "csv", "markdown"}
	ConflictPolicies  = []string{"abort", "recreate", "skip"}
	namespacePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	defaultBanksURL   = "https://web.archive.org/web/20230908091635%20/https://en.wikipedia.org/wiki/List_of_largest_banks"
	defaultRatesURL   = "https://cf-courses-data.s3.us.cloud-object-storage.appdomain.cloud/IBMSkillsNetwork-PY0221EN-Coursera/labs/v2/exchange_rate.csv"
	defaultBerriesURL = "https://pokeapi.co/docs/v2"
)

// Config holds all configuration for pgedge-etl.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Format is the output format for reports: table, csv or markdown.
	Format string `mapstructure:"format"`

	// Timeout bounds a whole pipeline run in seconds (0 = no limit).
	Timeout int `mapstructure:"timeout"`

	// Database holds the connection settings used by the sales pipeline.
	Database DatabaseConfig `mapstructure:"database"`

	// Sales holds configuration for the sales pipeline.
	Sales SalesConfig `mapstructure:"sales"`

	// Banks holds configuration for the banks pipeline.
	Banks BanksConfig `mapstructure:"banks"`

	// Berries holds configuration for the berries pipeline.
	Berries BerriesConfig `mapstructure:"berries"`
}

// DatabaseConfig describes how to reach the target database server.
type DatabaseConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver string `mapstructure:"driver"`

	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`

	// Name is the database (MySQL) or schema (PostgreSQL) the tables live in.
	Name string `mapstructure:"name"`

	// Path is the database file for the sqlite driver (":memory:" allowed).
	Path string `mapstructure:"path"`

	// Params are extra driver parameters appended to the DSN.
	Params map[string]string `mapstructure:"params"`
}

// SalesConfig holds configuration for the sales pipeline.
type SalesConfig struct {
	// OnConflict decides what happens when a table already exists:
	// abort, recreate or skip.
	OnConflict string `mapstructure:"on_conflict"`

	// Seed makes generated data reproducible (0 = seed from the clock).
	Seed uint64 `mapstructure:"seed"`

	// SalesRows is the number of synthetic sales rows.
	SalesRows int `mapstructure:"sales_rows"`

	// ProductRows is the number of product rows; it must equal IDPoolSize.
	ProductRows int `mapstructure:"product_rows"`

	// IDPoolSize is the number of product ids sales rows are drawn from.
	IDPoolSize int `mapstructure:"id_pool_size"`

	// BatchSize is the number of rows per INSERT statement.
	BatchSize int `mapstructure:"batch_size"`

	// MaterializeTopCategories stores the top category report as a table.
	MaterializeTopCategories bool `mapstructure:"materialize_top_categories"`
}

// BanksConfig holds configuration for the banks pipeline.
type BanksConfig struct {
	// URL is the page holding the bank ranking table.
	URL string `mapstructure:"url"`

	// RatesURL is the exchange rate CSV location.
	RatesURL string `mapstructure:"rates_url"`

	// OutputDir receives the CSV stages and the SQLite file.
	OutputDir string `mapstructure:"output_dir"`

	// DatabaseFile is the SQLite file name inside OutputDir.
	DatabaseFile string `mapstructure:"database_file"`

	// HTTPTimeout is the per-request timeout in seconds.
	HTTPTimeout int `mapstructure:"http_timeout"`
}

// BerriesConfig holds configuration for the berries pipeline.
type BerriesConfig struct {
	// DocsURL is the API documentation page listing the berry endpoint.
	DocsURL string `mapstructure:"docs_url"`

	// OutputDir receives the CSV outputs and the progress log.
	OutputDir string `mapstructure:"output_dir"`

	// StatsFile, RawFile and LogFile are file names inside OutputDir.
	StatsFile string `mapstructure:"stats_file"`
	RawFile   string `mapstructure:"raw_file"`
	LogFile   string `mapstructure:"log_file"`

	// MaxItems stops pagination after this many berries (0 = until the API runs out).
	MaxItems int `mapstructure:"max_items"`

	// HTTPTimeout is the per-request timeout in seconds.
	HTTPTimeout int `mapstructure:"http_timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Format:   "table",
		Database: DatabaseConfig{
			Driver: "mysql",
			Host:   "localhost",
			Port:   3306,
			Name:   "sales",
		},
		Sales: SalesConfig{
			OnConflict:               "skip",
			SalesRows:                100,
			ProductRows:              10,
			IDPoolSize:               10,
			BatchSize:                1000,
			MaterializeTopCategories: true,
		},
		Banks: BanksConfig{
			URL:          defaultBanksURL,
			RatesURL:     defaultRatesURL,
			OutputDir:    ".",
			DatabaseFile: "bank_data.db",
			HTTPTimeout:  30,
		},
		Berries: BerriesConfig{
			DocsURL:     defaultBerriesURL,
			OutputDir:   ".",
			StatsFile:   "poke-API_statistics.csv",
			RawFile:     "all_berries_data.csv",
			LogFile:     "log_file.txt",
			HTTPTimeout: 30,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-etl.yaml
// 3. ~/.config/pgedge-etl/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-etl")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-etl"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks settings shared by every pipeline.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Format) {
		return fmt.Errorf("format must be one of %v", OutputFormats)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// ValidateDatabase checks the database connection settings.
func (c *Config) ValidateDatabase() error {
	d := c.Database
	if !slices.Contains(Drivers, d.Driver) {
		return fmt.Errorf("database driver must be one of %v", Drivers)
	}
	if d.Driver == "sqlite" {
		if d.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
		return nil
	}
	if d.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if d.User == "" {
		return fmt.Errorf("database user is required")
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("database port %d is out of range", d.Port)
	}
	if !namespacePattern.MatchString(d.Name) {
		return fmt.Errorf("database name %q must match %s", d.Name, namespacePattern)
	}
	return nil
}

// ValidateSales checks configuration required by the sales pipeline.
func (c *Config) ValidateSales() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	s := c.Sales
	if !slices.Contains(ConflictPolicies, s.OnConflict) {
		return fmt.Errorf("on_conflict must be one of %v", ConflictPolicies)
	}
	if s.SalesRows < 1 {
		return fmt.Errorf("sales_rows must be at least 1")
	}
	if s.IDPoolSize < 1 {
		return fmt.Errorf("id_pool_size must be at least 1")
	}
	// every id in the pool needs its product row
	if s.ProductRows != s.IDPoolSize {
		return fmt.Errorf("product_rows (%d) must equal id_pool_size (%d)", s.ProductRows, s.IDPoolSize)
	}
	if s.SalesRows < s.ProductRows {
		return fmt.Errorf("sales_rows (%d) must be at least product_rows (%d)", s.SalesRows, s.ProductRows)
	}
	if s.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	return nil
}

// ValidateBanks checks configuration required by the banks pipeline.
func (c *Config) ValidateBanks() error {
	if err := c.Validate(); err != nil {
		return err
	}
	b := c.Banks
	if b.URL == "" || b.RatesURL == "" {
		return fmt.Errorf("banks url and rates_url are required")
	}
	if b.DatabaseFile == "" {
		return fmt.Errorf("banks database_file is required")
	}
	if b.HTTPTimeout < 1 {
		return fmt.Errorf("banks http_timeout must be at least 1 second")
	}
	return nil
}

// ValidateBerries checks configuration required by the berries pipeline.
func (c *Config) ValidateBerries() error {
	if err := c.Validate(); err != nil {
		return err
	}
	b := c.Berries
	if b.DocsURL == "" {
		return fmt.Errorf("berries docs_url is required")
	}
	if b.StatsFile == "" || b.RawFile == "" {
		return fmt.Errorf("berries stats_file and raw_file are required")
	}
	if b.MaxItems < 0 {
		return fmt.Errorf("berries max_items must be non-negative")
	}
	if b.HTTPTimeout < 1 {
		return fmt.Errorf("berries http_timeout must be at least 1 second")
	}
	return nil
}
