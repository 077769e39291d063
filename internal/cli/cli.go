//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for pgedge-etl.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/pipelines"
	"github.com/pgEdge/pgedge-etl/pkg/version"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
	format   string
	timeout  int

	// Database flags
	dbDriver   string
	dbHost     string
	dbPort     int
	dbUser     string
	dbPassword string
	dbName     string
	dbPath     string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "pgedge-etl",
		Short: "Small extract, transform and load pipelines",
		Long: `pgedge-etl runs self-contained ETL pipelines end to end.

  sales    provisions sales and product tables on MySQL, PostgreSQL or
           SQLite, seeds them with synthetic rows, runs the analytical
           reports and reloads the rows with revenue tiers.
  banks    scrapes a bank ranking, converts market caps with exchange
           rates and loads the result into a SQLite file.
  berries  reads the berry endpoint from the API docs, crawls every
           berry and writes growth time statistics.

Each run executes every stage once, in order.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
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
		"config file (default: ./pgedge-etl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "",
		"report format (table, csv, markdown)")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0,
		"abort the run after this many seconds (0 = no limit)")

	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "",
		"database driver (mysql, postgres, sqlite)")
	rootCmd.PersistentFlags().StringVar(&dbHost, "host", "",
		"database host")
	rootCmd.PersistentFlags().IntVar(&dbPort, "port", 0,
		"database port")
	rootCmd.PersistentFlags().StringVar(&dbUser, "user", "",
		"database user")
	rootCmd.PersistentFlags().StringVar(&dbPassword, "password", "",
		"database password")
	rootCmd.PersistentFlags().StringVar(&dbName, "database", "",
		"database (MySQL) or schema (PostgreSQL) holding the tables")
	rootCmd.PersistentFlags().StringVar(&dbPath, "path", "",
		"database file for the sqlite driver")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(pipelinesCmd)
}

func initConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if format != "" {
		cfg.Format = format
	}
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	if dbDriver != "" {
		cfg.Database.Driver = dbDriver
	}
	if dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort > 0 {
		cfg.Database.Port = dbPort
	}
	if dbUser != "" {
		cfg.Database.User = dbUser
	}
	// an empty password is a valid override
	if cmd.Flags().Changed("password") {
		cfg.Database.Password = dbPassword
	}
	if dbName != "" {
		cfg.Database.Name = dbName
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List available pipelines",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available pipelines:")
		cmd.Println()
		for _, p := range pipelines.All() {
			cmd.Printf("  %-8s - %s\n", p.Name(), p.Description())
		}
		cmd.Println()
		cmd.Println("Use 'pgedge-etl run <pipeline>' to run one.")
	},
}
