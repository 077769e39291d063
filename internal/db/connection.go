// Package db provides database sessions, dialects and schema management for pgedge-etl.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// database/sql drivers for the supported dialects
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// Session is the database handle shared by every stage of a pipeline run.
// It holds a single connection so statements run strictly in order.
type Session struct {
	DB        *sqlx.DB
	Dialect   Dialect
	Namespace string
}

// Open connects to the configured server, verifies the connection and
// creates the namespace if it does not exist yet.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Session, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := dialect.DSN(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	logging.Debug().
		Str("driver", dialect.Name()).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("Connecting to database")

	conn, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(connMaxLifetime(dialect))

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", Classify(err))
	}

	s := &Session{
		DB:        conn,
		Dialect:   dialect,
		Namespace: dialect.Namespace(cfg),
	}

	if stmt := dialect.CreateNamespaceSQL(s.Namespace); stmt != "" {
		logging.Info().Str("namespace", s.Namespace).Msg("Creating database")
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create namespace %s: %w", s.Namespace, Classify(err))
		}
	}

	logging.Info().
		Str("driver", dialect.Name()).
		Str("namespace", s.Namespace).
		Msg("Connected to database")

	return s, nil
}

// connMaxLifetime returns how long the session connection may be reused.
// A SQLite connection is never recycled: a new connection to ":memory:"
// starts an empty database.
func connMaxLifetime(d Dialect) time.Duration {
	if d.Name() == "sqlite" {
		return 0
	}
	return 30 * time.Minute
}

// OpenSQLite opens a SQLite file (or ":memory:") as a session.
func OpenSQLite(ctx context.Context, path string) (*Session, error) {
	return Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: path})
}

// Close releases the connection.
func (s *Session) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Qualify returns the quoted, namespace-qualified name of a table.
func (s *Session) Qualify(table string) string {
	return s.Dialect.QuoteIdent(s.Namespace) + "." + s.Dialect.QuoteIdent(table)
}

// Quote quotes a bare identifier such as a column name.
func (s *Session) Quote(name string) string {
	return s.Dialect.QuoteIdent(name)
}

// Rebind converts a "?" query to the dialect's bind style.
func (s *Session) Rebind(query string) string {
	return s.DB.Rebind(query)
}

// ExecCommit runs one statement in its own transaction and commits it.
func (s *Session) ExecCommit(ctx context.Context, query string, args ...any) (sql.Result, error) {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit failed: %w", err)
	}
	return res, nil
}
