//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package loader writes validated rows into database tables.
package loader

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pgEdge/pgedge-etl/internal/datagen"
	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// Config configures batch insert behavior.
type Config struct {
	// BatchSize is the number of rows per INSERT statement.
	BatchSize int

	// ProgressInterval is how often to log progress (in rows).
	ProgressInterval int64
}

// DefaultConfig returns the default batch insert configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:        1000,
		ProgressInterval: 10000,
	}
}

// Loader bulk-loads rows through a session.
type Loader struct {
	session *db.Session
	cfg     Config
}

// New creates a loader. A non-positive batch size falls back to the default.
func New(s *db.Session, cfg Config) *Loader {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Loader{session: s, cfg: cfg}
}

// Load validates every row against t and then inserts them with
// parameterized multi-row INSERT statements, committing each batch.
// Nothing is sent to the database if any row is invalid. On a database
// error the rows of already committed batches stay loaded and their count is
// returned with the error.
func (l *Loader) Load(ctx context.Context, t db.Table, rows [][]any) (int64, error) {
	if err := t.ValidateRows(rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = l.session.Quote(c.Name)
	}

	progress := datagen.NewProgressReporter(t.Name, int64(len(rows)), l.cfg.ProgressInterval)

	for start := 0; start < len(rows); start += l.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return progress.Rows(), err
		}

		end := min(start+l.cfg.BatchSize, len(rows))

		insert := sq.Insert(l.session.Qualify(t.Name)).
			Columns(columns...).
			PlaceholderFormat(l.session.Dialect.Placeholder())
		for _, row := range rows[start:end] {
			insert = insert.Values(row...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return progress.Rows(), fmt.Errorf("failed to build insert for %s: %w", t.Name, err)
		}

		if _, err := l.session.ExecCommit(ctx, query, args...); err != nil {
			return progress.Rows(), fmt.Errorf("failed to load %s rows %d-%d: %w",
				t.Name, start, end-1, db.Classify(err))
		}

		logging.Debug().
			Str("table", t.Name).
			Int("first_row", start).
			Int("rows", end-start).
			Msg("Committed batch")
		progress.Update(int64(end - start))
	}

	progress.Done()
	return progress.Rows(), nil
}
