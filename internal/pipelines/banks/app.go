package banks

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

// Pipeline implements the banks ETL pipeline.
type Pipeline struct{}

// New creates a new banks pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return "banks"
}

// Description returns a human-readable description.
func (p *Pipeline) Description() string {
	return "Largest banks - scrapes the market cap ranking, converts it with exchange rates " +
		"and loads the result into a SQLite file"
}

// Validate checks the banks settings.
func (p *Pipeline) Validate(cfg *config.Config) error {
	return cfg.ValidateBanks()
}

// Run executes the extract, transform and load stages in order.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := p.Validate(cfg); err != nil {
		return err
	}

	b := cfg.Banks
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := func(name string) string { return filepath.Join(b.OutputDir, name) }

	client := fetch.New(time.Duration(b.HTTPTimeout) * time.Second)

	logging.Info().Str("url", b.URL).Msg("Starting banks pipeline")

	banks, err := FetchBanks(ctx, client, b.URL)
	if err != nil {
		return err
	}
	if err := WriteBanks(path(BanksFile), banks); err != nil {
		return err
	}

	if err := FetchRates(ctx, client, b.RatesURL, path(RatesFile)); err != nil {
		return err
	}

	banks, err = ReadBanks(path(BanksFile))
	if err != nil {
		return err
	}
	rates, err := ReadRates(path(RatesFile))
	if err != nil {
		return err
	}
	converted := Convert(banks, rates)
	if err := WriteConverted(path(TransformedFile), converted); err != nil {
		return fmt.Errorf("failed to write %s: %w", TransformedFile, err)
	}

	if _, err := Load(ctx, path(b.DatabaseFile), converted); err != nil {
		return err
	}

	if err := converted.Report().Render(out, cfg.Format); err != nil {
		return err
	}

	logging.Info().Msg("Banks pipeline complete")
	return nil
}

func init() {
	pipelines.Register(New())
}
