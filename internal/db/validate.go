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
	"fmt"
)

// Row validation errors.
var (
	ErrMissingValue = errors.New("row is missing a value")
	ErrFieldType    = errors.New("value does not match the column type")
)

// RowError locates a validation failure.
type RowError struct {
	Table  string
	Row    int
	Column string
	Value  any
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s row %d: %v", e.Table, e.Row, e.Err)
	}
	return fmt.Sprintf("%s row %d column %s (%v): %v", e.Table, e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ValidateRows checks every row against the table's columns.
func (t Table) ValidateRows(rows [][]any) error {
	for i, row := range rows {
		if err := t.ValidateRow(i, row); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRow checks the row length, rejects nil values and checks each
// value's Go type against the column kind. Integers are accepted for float
// columns; nothing but strings is accepted for string columns.
func (t Table) ValidateRow(index int, row []any) error {
	if len(row) != len(t.Columns) {
		return &RowError{
			Table: t.Name,
			Row:   index,
			Err:   fmt.Errorf("%w: got %d values, expected %d", ErrMissingValue, len(row), len(t.Columns)),
		}
	}
	for i, c := range t.Columns {
		v := row[i]
		if v == nil {
			return &RowError{Table: t.Name, Row: index, Column: c.Name, Err: ErrNullValue}
		}
		if !kindAccepts(c.Kind, v) {
			return &RowError{
				Table:  t.Name,
				Row:    index,
				Column: c.Name,
				Value:  v,
				Err:    fmt.Errorf("%w: %T in %s column", ErrFieldType, v, c.Kind),
			}
		}
	}
	return nil
}

func kindAccepts(kind Kind, v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return kind == KindInt || kind == KindFloat
	case float32, float64:
		return kind == KindFloat
	case string:
		return kind == KindString
	default:
		return false
	}
}
