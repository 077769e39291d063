//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/pkg/version"
)

const metadataTable = "etl_metadata"

var metadataSchema = Table{
	Name: metadataTable,
	Columns: []Column{
		{Name: "pipeline", Kind: KindString, Size: 64, PrimaryKey: true},
		{Name: "meta_key", Kind: KindString, Size: 64, PrimaryKey: true},
		{Name: "meta_value", Kind: KindString, Size: 255},
	},
}

// SaveMetadata records the outcome of a pipeline run. Previous values for
// the pipeline are replaced. version and completed_at are always written.
func SaveMetadata(ctx context.Context, s *Session, pipeline string, values map[string]string) error {
	if _, err := s.CreateTable(ctx, metadataSchema, ConflictSkip); err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}

	all := map[string]string{
		"version":      version.Short(),
		"completed_at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range values {
		all[k] = v
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	del, delArgs, err := sq.Delete(s.Qualify(metadataTable)).
		Where(sq.Eq{s.Quote("pipeline"): pipeline}).
		PlaceholderFormat(s.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return err
	}

	ins := sq.Insert(s.Qualify(metadataTable)).
		Columns(s.Quote("pipeline"), s.Quote("meta_key"), s.Quote("meta_value")).
		PlaceholderFormat(s.Dialect.Placeholder())
	for _, k := range keys {
		ins = ins.Values(pipeline, k, all[k])
	}
	insSQL, insArgs, err := ins.ToSql()
	if err != nil {
		return err
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", Classify(err))
	}
	if _, err := tx.ExecContext(ctx, insSQL, insArgs...); err != nil {
		return fmt.Errorf("failed to save metadata: %w", Classify(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}

	logging.Debug().
		Str("pipeline", pipeline).
		Int("keys", len(keys)).
		Msg("Saved metadata")

	return nil
}

// GetMetadataValue retrieves a single metadata value.
func GetMetadataValue(ctx context.Context, s *Session, pipeline, key string) (string, error) {
	query, args, err := sq.Select(s.Quote("meta_value")).
		From(s.Qualify(metadataTable)).
		Where(sq.Eq{s.Quote("pipeline"): pipeline, s.Quote("meta_key"): key}).
		PlaceholderFormat(s.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return "", err
	}

	var value string
	if err := s.DB.GetContext(ctx, &value, query, args...); err != nil {
		return "", err
	}
	return value, nil
}

// GetAllMetadata retrieves all metadata of a pipeline as a map.
func GetAllMetadata(ctx context.Context, s *Session, pipeline string) (map[string]string, error) {
	query, args, err := sq.Select(s.Quote("meta_key"), s.Quote("meta_value")).
		From(s.Qualify(metadataTable)).
		Where(sq.Eq{s.Quote("pipeline"): pipeline}).
		PlaceholderFormat(s.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	metadata := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		metadata[key] = value
	}
	return metadata, rows.Err()
}
