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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// Column describes one column of a table.
type Column struct {
	Name string
	Kind Kind

	// Size is the VARCHAR length for string columns (0 = 255).
	Size int

	PrimaryKey bool
}

// Table describes a table. All columns are NOT NULL.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateSQL renders the CREATE TABLE statement for the session's dialect.
func (s *Session) CreateSQL(t Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", s.Qualify(t.Name))

	var keys []string
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    %s %s NOT NULL", s.Quote(c.Name), s.Dialect.ColumnType(c.Kind, c.Size))
		if c.PrimaryKey {
			keys = append(keys, s.Quote(c.Name))
		}
	}
	if len(keys) > 0 {
		fmt.Fprintf(&b, ",\n    PRIMARY KEY (%s)", strings.Join(keys, ", "))
	}
	b.WriteString("\n)")
	if opts := s.Dialect.TableOptions(); opts != "" {
		b.WriteString(" " + opts)
	}
	return b.String()
}

// ConflictPolicy decides what happens when a table being created already exists.
type ConflictPolicy string

const (
	// ConflictAbort stops with an error wrapping ErrTableExists.
	ConflictAbort ConflictPolicy = "abort"
	// ConflictRecreate drops the existing table and creates it again.
	ConflictRecreate ConflictPolicy = "recreate"
	// ConflictSkip keeps the existing table and its rows.
	ConflictSkip ConflictPolicy = "skip"
)

// ParseConflictPolicy parses a configuration value.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch p := ConflictPolicy(strings.ToLower(s)); p {
	case ConflictAbort, ConflictRecreate, ConflictSkip:
		return p, nil
	default:
		return "", fmt.Errorf("unknown conflict policy: %q", s)
	}
}

// Outcome reports what provisioning did to a table.
type Outcome string

const (
	Created   Outcome = "created"
	Recreated Outcome = "recreated"
	Kept      Outcome = "kept"
)

// CreateTable creates t, resolving an existing table with policy.
func (s *Session) CreateTable(ctx context.Context, t Table, policy ConflictPolicy) (Outcome, error) {
	return s.provision(ctx, t.Name, policy, func() error {
		_, err := s.ExecCommit(ctx, s.CreateSQL(t))
		return err
	})
}

// CreateTableAs materializes a query result as a new table, resolving an
// existing table with policy.
func (s *Session) CreateTableAs(ctx context.Context, name, query string, args []any, policy ConflictPolicy) (Outcome, error) {
	stmt := fmt.Sprintf("CREATE TABLE %s AS %s", s.Qualify(name), query)
	return s.provision(ctx, name, policy, func() error {
		_, err := s.ExecCommit(ctx, stmt, args...)
		return err
	})
}

// DropTable drops a table if it exists.
func (s *Session) DropTable(ctx context.Context, name string) error {
	_, err := s.ExecCommit(ctx, "DROP TABLE IF EXISTS "+s.Qualify(name))
	if err != nil {
		return fmt.Errorf("failed to drop table %s: %w", name, Classify(err))
	}
	return nil
}

func (s *Session) provision(ctx context.Context, name string, policy ConflictPolicy, create func() error) (Outcome, error) {
	err := create()
	if err == nil {
		logging.Info().Str("table", name).Msg("Created table")
		return Created, nil
	}

	err = Classify(err)
	if !errors.Is(err, ErrTableExists) {
		return "", fmt.Errorf("failed to create table %s: %w", name, err)
	}

	switch policy {
	case ConflictRecreate:
		logging.Warn().Str("table", name).Msg("Table exists, dropping and recreating")
		if err := s.DropTable(ctx, name); err != nil {
			return "", err
		}
		if err := create(); err != nil {
			return "", fmt.Errorf("failed to recreate table %s: %w", name, Classify(err))
		}
		return Recreated, nil
	case ConflictSkip:
		logging.Warn().Str("table", name).Msg("Table exists, keeping existing table")
		return Kept, nil
	default:
		return "", fmt.Errorf("table %s: %w", name, err)
	}
}
