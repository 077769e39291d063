//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil provides utilities for integration testing.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/pgEdge/pgedge-etl/internal/config"
)

const (
	// PostgresEnv holds a PostgreSQL URL, e.g.
	// postgres://postgres@localhost:5432/postgres
	PostgresEnv = "PGEDGE_ETL_TEST_POSTGRES"

	// MySQLEnv holds a MySQL DSN, e.g. root:secret@tcp(localhost:3306)/
	MySQLEnv = "PGEDGE_ETL_TEST_MYSQL"

	// TestNamePrefix is the prefix for test databases and schemas.
	TestNamePrefix = "etl_test_"
)

// RandomName returns a unique database or schema name for a test.
func RandomName(t *testing.T, label string) string {
	t.Helper()

	randomBytes := make([]byte, 6)
	if _, err := rand.Read(randomBytes); err != nil {
		t.Fatalf("Failed to generate random name: %v", err)
	}
	return TestNamePrefix + label + "_" + hex.EncodeToString(randomBytes)
}

// PostgresAvailable checks if PostgreSQL is available for testing.
// Returns the connection string if available, empty string otherwise.
func PostgresAvailable() string {
	connStr := os.Getenv(PostgresEnv)
	if connStr == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return ""
	}

	return connStr
}

// SkipIfNoPostgres skips the test if PostgreSQL is not available.
func SkipIfNoPostgres(t *testing.T) string {
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skipf("PostgreSQL not available (set %s), skipping integration test", PostgresEnv)
	}
	return connStr
}

// PostgresConfig returns settings for a fresh schema on the test server.
// The schema is dropped when the test finishes.
func PostgresConfig(t *testing.T, label string) config.DatabaseConfig {
	t.Helper()
	connStr := SkipIfNoPostgres(t)

	pc, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}

	schema := RandomName(t, label)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, connStr)
		if err != nil {
			t.Logf("Warning: Failed to connect to drop test schema: %v", err)
			return
		}
		defer pool.Close()

		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)); err != nil {
			t.Logf("Warning: Failed to drop test schema: %v", err)
		}
	})

	cc := pc.ConnConfig
	return config.DatabaseConfig{
		Driver:   "postgres",
		Host:     cc.Host,
		Port:     int(cc.Port),
		User:     cc.User,
		Password: cc.Password,
		Name:     schema,
		Params: map[string]string{
			"dbname":  cc.Database,
			"sslmode": "disable",
		},
	}
}

// MySQLAvailable checks if MySQL is available for testing.
// Returns the DSN if available, empty string otherwise.
func MySQLAvailable() string {
	dsn := os.Getenv(MySQLEnv)
	if dsn == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return ""
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return ""
	}

	return dsn
}

// SkipIfNoMySQL skips the test if MySQL is not available.
func SkipIfNoMySQL(t *testing.T) string {
	dsn := MySQLAvailable()
	if dsn == "" {
		t.Skipf("MySQL not available (set %s), skipping integration test", MySQLEnv)
	}
	return dsn
}

// MySQLConfig returns settings for a fresh database on the test server.
// The database is dropped when the test finishes.
func MySQLConfig(t *testing.T, label string) config.DatabaseConfig {
	t.Helper()
	dsn := SkipIfNoMySQL(t)

	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to parse DSN: %v", err)
	}

	host, portStr, err := net.SplitHostPort(mc.Addr)
	if err != nil {
		t.Fatalf("Failed to parse address %q: %v", mc.Addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Failed to parse port %q: %v", portStr, err)
	}

	name := RandomName(t, label)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		conn, err := sqlx.Open("mysql", dsn)
		if err != nil {
			t.Logf("Warning: Failed to connect to drop test database: %v", err)
			return
		}
		defer conn.Close()

		if _, err := conn.ExecContext(ctx, "DROP DATABASE IF EXISTS `"+name+"`"); err != nil {
			t.Logf("Warning: Failed to drop test database: %v", err)
		}
	})

	return config.DatabaseConfig{
		Driver:   "mysql",
		Host:     host,
		Port:     port,
		User:     mc.User,
		Password: mc.Passwd,
		Name:     name,
	}
}

// SQLiteConfig returns settings for a SQLite file in a temporary directory.
func SQLiteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "etl.db"),
	}
}
