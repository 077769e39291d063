// Package pipelines defines the pipeline interface and registry.
package pipelines

import (
	"context"
	"io"

	"github.com/pgEdge/pgedge-etl/internal/config"
)

// Pipeline defines the interface that all pipelines must implement.
type Pipeline interface {
	// Name returns the pipeline name used on the command line.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// Validate checks the parts of the configuration the pipeline uses.
	Validate(cfg *config.Config) error

	// Run executes every stage of the pipeline once, in order. Reports are
	// rendered to out in cfg.Format.
	Run(ctx context.Context, cfg *config.Config, out io.Writer) error
}
