//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package banks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/loader"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// Load replaces the SQLite file at path with one holding the converted rows.
func Load(ctx context.Context, path string, c *Converted) (int64, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("failed to remove %s: %w", path, err)
	}

	s, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	t := c.Table()
	if _, err := s.CreateTable(ctx, t, db.ConflictRecreate); err != nil {
		return 0, err
	}

	n, err := loader.New(s, loader.DefaultConfig()).Load(ctx, t, c.Rows)
	if err != nil {
		return n, fmt.Errorf("failed to load %s: %w", t.Name, err)
	}

	meta := map[string]string{
		"rows":       strconv.FormatInt(n, 10),
		"currencies": strconv.Itoa(len(c.Columns) - 1),
	}
	if err := db.SaveMetadata(ctx, s, "banks", meta); err != nil {
		logging.Warn().Err(err).Msg("Failed to save run metadata")
	}

	logging.Info().Str("file", path).Str("table", t.Name).Int64("rows", n).Msg("Loaded bank data")
	return n, nil
}
