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
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error classes shared by every dialect. Use errors.Is against these.
var (
	ErrUnreachable     = errors.New("server is not reachable")
	ErrAccessDenied    = errors.New("any of the provided credentials is incorrect")
	ErrUnknownDatabase = errors.New("unknown database")
	ErrTableExists     = errors.New("table already exists")
	ErrNullValue       = errors.New("trying to fill a field with an empty value, fields do not accept NULL values")
	ErrTypeMismatch    = errors.New("trying to fill a field with incorrect data type")
)

// ClassifiedError pairs a driver error with its error class.
type ClassifiedError struct {
	Class error
	Err   error
}

func (e *ClassifiedError) Error() string {
	return e.Class.Error() + ": " + e.Err.Error()
}

// Unwrap exposes both the class and the driver error to errors.Is/As.
func (e *ClassifiedError) Unwrap() []error {
	return []error{e.Class, e.Err}
}

// MySQL server error numbers.
const (
	mysqlAccessDenied     = 1045
	mysqlUnknownDatabase  = 1049
	mysqlTableExists      = 1050
	mysqlBadNull          = 1048
	mysqlParseError       = 1064
	mysqlBadField         = 1054
	mysqlTruncatedValue   = 1265
	mysqlIncorrectValue   = 1366
	mysqlConnectionFailed = 2003
	mysqlSocketFailed     = 2002
)

// Classify maps a driver error onto one of the error classes. Errors that
// match no class are returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var already *ClassifiedError
	if errors.As(err, &already) {
		return err
	}
	if class := classOf(err); class != nil {
		return &ClassifiedError{Class: class, Err: err}
	}
	return err
}

func classOf(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlAccessDenied:
			return ErrAccessDenied
		case mysqlUnknownDatabase:
			return ErrUnknownDatabase
		case mysqlTableExists:
			return ErrTableExists
		case mysqlBadNull, mysqlParseError:
			return ErrNullValue
		case mysqlBadField, mysqlTruncatedValue, mysqlIncorrectValue:
			return ErrTypeMismatch
		case mysqlConnectionFailed, mysqlSocketFailed:
			return ErrUnreachable
		}
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return ErrAccessDenied
		case "3D000":
			return ErrUnknownDatabase
		case "42P07":
			return ErrTableExists
		case "23502":
			return ErrNullValue
		case "42703", "22P02", "42804":
			return ErrTypeMismatch
		}
		return nil
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrUnreachable
	}

	// modernc.org/sqlite reports most conditions as SQLITE_ERROR with a message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "already exists"):
		return ErrTableExists
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return ErrNullValue
	case strings.Contains(msg, "datatype mismatch"):
		return ErrTypeMismatch
	}
	return nil
}
