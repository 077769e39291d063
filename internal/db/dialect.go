//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/pgEdge/pgedge-etl/internal/config"
)

// Kind is the logical type of a column.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Dialect captures the SQL differences between the supported servers.
type Dialect interface {
	// Name is the configuration name of the dialect.
	Name() string

	// DriverName is the database/sql driver the dialect opens.
	DriverName() string

	// DSN builds a server-level data source name from the configuration.
	DSN(cfg config.DatabaseConfig) (string, error)

	// Placeholder is the bind variable style for squirrel builders.
	Placeholder() sq.PlaceholderFormat

	// QuoteIdent quotes a single identifier.
	QuoteIdent(name string) string

	// ColumnType renders a column type for DDL.
	ColumnType(kind Kind, size int) string

	// TableOptions is appended to CREATE TABLE statements.
	TableOptions() string

	// Namespace returns the namespace tables are created in.
	Namespace(cfg config.DatabaseConfig) string

	// CreateNamespaceSQL returns the statement that creates the namespace,
	// or "" if the namespace always exists.
	CreateNamespaceSQL(namespace string) string
}

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "mysql":
		return mysqlDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	case "sqlite":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string       { return "mysql" }
func (mysqlDialect) DriverName() string { return "mysql" }

// DSN connects without a default database; tables are always qualified.
func (mysqlDialect) DSN(cfg config.DatabaseConfig) (string, error) {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	if len(cfg.Params) > 0 {
		mc.Params = make(map[string]string, len(cfg.Params))
		for k, v := range cfg.Params {
			mc.Params[k] = v
		}
	}
	return mc.FormatDSN(), nil
}

func (mysqlDialect) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (mysqlDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) ColumnType(kind Kind, size int) string {
	switch kind {
	case KindInt:
		return "INT"
	case KindFloat:
		return "DOUBLE"
	default:
		return fmt.Sprintf("VARCHAR(%d)", varcharSize(size))
	}
}

func (mysqlDialect) TableOptions() string {
	return "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"
}

func (mysqlDialect) Namespace(cfg config.DatabaseConfig) string { return cfg.Name }

func (d mysqlDialect) CreateNamespaceSQL(namespace string) string {
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		d.QuoteIdent(namespace))
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

// DSN connects to the "dbname" param (default postgres); cfg.Name is the schema.
func (postgresDialect) DSN(cfg config.DatabaseConfig) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/postgres",
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else {
		u.User = url.User(cfg.User)
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		if k == "dbname" {
			u.Path = "/" + v
			continue
		}
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (postgresDialect) Placeholder() sq.PlaceholderFormat { return sq.Dollar }

func (postgresDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) ColumnType(kind Kind, size int) string {
	switch kind {
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "DOUBLE PRECISION"
	default:
		return fmt.Sprintf("VARCHAR(%d)", varcharSize(size))
	}
}

func (postgresDialect) TableOptions() string { return "" }

func (postgresDialect) Namespace(cfg config.DatabaseConfig) string { return cfg.Name }

func (d postgresDialect) CreateNamespaceSQL(namespace string) string {
	return "CREATE SCHEMA IF NOT EXISTS " + d.QuoteIdent(namespace)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string       { return "sqlite" }
func (sqliteDialect) DriverName() string { return "sqlite" }

func (sqliteDialect) DSN(cfg config.DatabaseConfig) (string, error) {
	if cfg.Path == "" {
		return "", fmt.Errorf("sqlite driver requires a database path")
	}
	if len(cfg.Params) == 0 {
		return cfg.Path, nil
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	return "file:" + cfg.Path + "?" + q.Encode(), nil
}

func (sqliteDialect) Placeholder() sq.PlaceholderFormat { return sq.Question }

func (sqliteDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) ColumnType(kind Kind, size int) string {
	switch kind {
	case KindInt:
		return "INTEGER"
	case KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func (sqliteDialect) TableOptions() string { return "" }

// Namespace is always the main database of the opened file.
func (sqliteDialect) Namespace(config.DatabaseConfig) string { return "main" }

func (sqliteDialect) CreateNamespaceSQL(string) string { return "" }

func varcharSize(size int) int {
	if size <= 0 {
		return 255
	}
	return size
}
