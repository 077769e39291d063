package berries

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/fetch"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/pipelines"
)

// Stage messages written to the progress log.
const (
	StageRequest   = "Requesting data to pokeAPI"
	StageScrape    = "Performing some web scraping to gather data..."
	StageExtract   = "Extracting juice from berries..."
	StageTransform = "Transforming berries data"
	StageLoad      = "Generating CSV file"
	StageReport    = "Rendering growth time frequency"
)

// Pipeline implements the berries pipeline.
type Pipeline struct{}

// New creates a new berries pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return "berries"
}

// Description returns a human-readable description.
func (p *Pipeline) Description() string {
	return "Berries - reads the berry endpoint from the API docs, crawls every berry " +
		"and writes growth time statistics"
}

// Validate checks the berries settings.
func (p *Pipeline) Validate(cfg *config.Config) error {
	return cfg.ValidateBerries()
}

// Run executes the pipeline.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := p.Validate(cfg); err != nil {
		return err
	}

	b := cfg.Berries
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	var logPath string
	if b.LogFile != "" {
		logPath = filepath.Join(b.OutputDir, b.LogFile)
	}
	progress := logging.NewProgressLog(logPath)
	stage := func(msg string) {
		if err := progress.Log(msg); err != nil {
			logging.Warn().Err(err).Msg("Failed to write progress log")
		}
	}

	client := fetch.New(time.Duration(b.HTTPTimeout) * time.Second)

	stage(StageRequest)
	page, err := client.Document(ctx, b.DocsURL)
	if err != nil {
		return err
	}

	stage(StageScrape)
	docs, err := ParseDocs(page)
	if err != nil {
		return err
	}
	logging.Debug().
		Int("templates", len(docs.Templates)).
		Int("attributes", len(docs.Attributes)).
		Str("berry_url", docs.BerryURL).
		Msg("Parsed API documentation")

	stage(StageExtract)
	berries, err := Crawl(ctx, client, docs.BerryURL, docs.Attributes, b.MaxItems)
	if err != nil {
		return err
	}

	stage(StageTransform)
	stats, err := ComputeStats(berries)
	if err != nil {
		return err
	}

	stage(StageLoad)
	if err := WriteStats(filepath.Join(b.OutputDir, b.StatsFile), stats); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.StatsFile, err)
	}
	if err := WriteBerries(filepath.Join(b.OutputDir, b.RawFile), docs.Attributes, berries); err != nil {
		return fmt.Errorf("failed to write %s: %w", b.RawFile, err)
	}

	stage(StageReport)
	if err := stats.SummaryReport().Render(out, cfg.Format); err != nil {
		return err
	}
	return stats.FrequencyReport().Render(out, cfg.Format)
}

func init() {
	pipelines.Register(New())
}
