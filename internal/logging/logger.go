//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package logging provides structured logging for pgedge-etl.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Config holds logging configuration.
type Config struct {
	Level      string
	Pretty     bool
	TimeFormat string

	// Output overrides stderr. Tests use it to capture log lines.
	Output io.Writer
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Pretty:     true,
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger with the given configuration.
func Init(cfg Config) {
	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: timeFormat,
		}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	Logger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Debug returns a debug level event.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warning level event.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event.
func Error() *zerolog.Event {
	return Logger.Error()
}

// ProgressTimeFormat is the timestamp layout written by a ProgressLog,
// e.g. 2024-Mar-05-14:07:31.
const ProgressTimeFormat = "2006-Jan-02-15:04:05"

// ProgressLog appends "<timestamp>,<message>" lines to a file and mirrors
// each message to the structured logger.
type ProgressLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewProgressLog returns a ProgressLog writing to path. An empty path
// disables the file sink; messages still reach the logger.
func NewProgressLog(path string) *ProgressLog {
	return &ProgressLog{path: path, now: time.Now}
}

// Log records a stage message.
func (p *ProgressLog) Log(message string) error {
	Info().Msg(message)
	if p == nil || p.path == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open progress log: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s,%s\n", p.now().Format(ProgressTimeFormat), message)
	return err
}

func init() {
	Init(DefaultConfig())
}
