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
	"errors"
	"testing"
)

func TestValidateRow(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		wantErr error
		column  string
	}{
		{name: "valid", row: []any{1, "bolt", 0.5}},
		{name: "int in float column", row: []any{1, "bolt", 3}},
		{name: "int64 id", row: []any{int64(7), "bolt", 1.5}},
		{name: "short row", row: []any{1, "bolt"}, wantErr: ErrMissingValue},
		{name: "long row", row: []any{1, "bolt", 0.5, "extra"}, wantErr: ErrMissingValue},
		{name: "nil value", row: []any{1, nil, 0.5}, wantErr: ErrNullValue, column: "label"},
		{name: "number in string column", row: []any{1, 5, 0.5}, wantErr: ErrFieldType, column: "label"},
		{name: "string in int column", row: []any{"1", "bolt", 0.5}, wantErr: ErrFieldType, column: "id"},
		{name: "float in int column", row: []any{1.5, "bolt", 0.5}, wantErr: ErrFieldType, column: "id"},
		{name: "bool", row: []any{1, "bolt", true}, wantErr: ErrFieldType, column: "weight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := widgets.ValidateRow(3, tt.row)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Expected no error, got: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			var rowErr *RowError
			if !errors.As(err, &rowErr) {
				t.Fatalf("Expected *RowError, got %T", err)
			}
			if rowErr.Row != 3 {
				t.Errorf("Row = %d, want 3", rowErr.Row)
			}
			if rowErr.Column != tt.column {
				t.Errorf("Column = %q, want %q", rowErr.Column, tt.column)
			}
			if rowErr.Table != "widgets" {
				t.Errorf("Table = %q, want widgets", rowErr.Table)
			}
		})
	}
}

func TestValidateRowsStopsAtFirstBadRow(t *testing.T) {
	rows := [][]any{
		{1, "bolt", 0.5},
		{2, "nut", 1.0},
		{3, 99, 1.0},
		{4, nil, 1.0},
	}
	err := widgets.ValidateRows(rows)
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("Expected *RowError, got %v", err)
	}
	if rowErr.Row != 2 {
		t.Errorf("first bad row = %d, want 2", rowErr.Row)
	}
	if !errors.Is(err, ErrFieldType) {
		t.Errorf("Expected ErrFieldType, got %v", err)
	}
}

func TestRowErrorMessage(t *testing.T) {
	err := widgets.ValidateRow(0, []any{1, 5, 0.5})
	want := "widgets row 0 column label (5): value does not match the column type: int in string column"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
