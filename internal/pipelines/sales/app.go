package sales

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/loader"
	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/internal/pipelines"
	"github.com/pgEdge/pgedge-etl/internal/report"
)

// Pipeline implements the sales ETL pipeline.
type Pipeline struct{}

// New creates a new sales pipeline.
func New() *Pipeline {
	return &Pipeline{}
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return "sales"
}

// Description returns a human-readable description.
func (p *Pipeline) Description() string {
	return "Sales ETL - provisions sales and product tables, seeds synthetic rows, " +
		"reports top categories and reloads revenue tiers into transformed_sales"
}

// Validate checks the database and sales settings.
func (p *Pipeline) Validate(cfg *config.Config) error {
	return cfg.ValidateSales()
}

// Run executes the pipeline against the configured database.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if err := p.Validate(cfg); err != nil {
		return err
	}

	s, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer s.Close()

	_, err = RunWithSession(ctx, s, cfg, out)
	return err
}

// Summary reports what a run did.
type Summary struct {
	// Loaded is the number of rows written per table.
	Loaded map[string]int64

	// Failed lists tables whose load failed.
	Failed []string

	Thresholds Thresholds
}

type runner struct {
	session *db.Session
	policy  db.ConflictPolicy
	loader  *loader.Loader
	queries *Queries
	format  string
	out     io.Writer
	summary *Summary
}

// RunWithSession executes every stage on an open session.
func RunWithSession(ctx context.Context, s *db.Session, cfg *config.Config, out io.Writer) (*Summary, error) {
	policy, err := db.ParseConflictPolicy(cfg.Sales.OnConflict)
	if err != nil {
		return nil, err
	}

	r := &runner{
		session: s,
		policy:  policy,
		loader: loader.New(s, loader.Config{
			BatchSize:        cfg.Sales.BatchSize,
			ProgressInterval: loader.DefaultConfig().ProgressInterval,
		}),
		queries: NewQueries(s),
		format:  cfg.Format,
		out:     out,
		summary: &Summary{Loaded: make(map[string]int64)},
	}

	gen := NewGenerator(cfg.Sales.Seed, GeneratorConfig{
		SalesRows:   cfg.Sales.SalesRows,
		ProductRows: cfg.Sales.ProductRows,
		IDPoolSize:  cfg.Sales.IDPoolSize,
	})

	logging.Info().
		Str("namespace", s.Namespace).
		Str("on_conflict", string(policy)).
		Msg("Starting sales pipeline")

	// both data sets are generated before any table is touched
	salesRecords, ids := gen.Sales()
	products, err := gen.Products(ids)
	if err != nil {
		return r.summary, fmt.Errorf("failed to generate products: %w", err)
	}

	// sales
	if err := r.provision(ctx, SalesTable); err != nil {
		return r.summary, err
	}
	r.load(ctx, SalesTable, rowsOf(salesRecords))

	// product
	if err := r.provision(ctx, ProductTable); err != nil {
		return r.summary, err
	}
	r.load(ctx, ProductTable, rowsOf(products))

	if err := r.reports(ctx, cfg.Sales.MaterializeTopCategories); err != nil {
		return r.summary, err
	}

	details, err := r.queries.Extract(ctx)
	if err != nil {
		return r.summary, err
	}
	transformed, th, err := Transform(details)
	if err != nil {
		return r.summary, fmt.Errorf("transform failed: %w", err)
	}
	r.summary.Thresholds = th

	logging.Info().
		Int("rows", len(transformed)).
		Float64("min", th.Min).
		Float64("max", th.Max).
		Float64("lower", th.Lower).
		Float64("upper", th.Upper).
		Msg("Transformed sales data")

	// reload
	if err := r.provision(ctx, TransformedSalesTable); err != nil {
		return r.summary, err
	}
	r.load(ctx, TransformedSalesTable, rowsOf(transformed))

	if err := r.render(TransformedReport(transformed)); err != nil {
		return r.summary, err
	}

	if err := db.SaveMetadata(ctx, s, "sales", r.metadata(cfg)); err != nil {
		logging.Warn().Err(err).Msg("Failed to save run metadata")
	}

	logging.Info().
		Int("failed_loads", len(r.summary.Failed)).
		Msg("Sales pipeline complete")

	return r.summary, nil
}

func (r *runner) provision(ctx context.Context, t db.Table) error {
	outcome, err := r.session.CreateTable(ctx, t, r.policy)
	if err != nil {
		return err
	}
	logging.Info().Str("table", t.Name).Str("outcome", string(outcome)).Msg("Provisioned table")
	return nil
}

// load logs a failed load and lets the pipeline continue.
func (r *runner) load(ctx context.Context, t db.Table, rows [][]any) {
	n, err := r.loader.Load(ctx, t, rows)
	r.summary.Loaded[t.Name] = n
	if err == nil {
		return
	}

	r.summary.Failed = append(r.summary.Failed, t.Name)
	event := logging.Error().Err(err).Str("table", t.Name).Int64("rows_loaded", n)
	switch {
	case errors.Is(err, db.ErrFieldType):
		event.Msg("You are trying to use a number on a string field")
	case errors.Is(err, db.ErrMissingValue):
		event.Int("expected_values", len(t.Columns)).Msg("The row you are trying to populate is missing a value")
	case errors.Is(err, db.ErrNullValue):
		event.Msg("You are trying to fill a field with an empty value")
	case errors.Is(err, db.ErrTypeMismatch):
		event.Msg("You are trying to fill a field with incorrect data type")
	default:
		event.Msg("Failed to load table")
	}
}

func (r *runner) reports(ctx context.Context, materialize bool) error {
	if materialize {
		outcome, err := r.queries.MaterializeTopCategories(ctx, r.policy)
		if err != nil {
			return err
		}
		logging.Info().Str("table", TopCategoriesTableName).Str("outcome", string(outcome)).Msg("Materialized report")
	}

	top, err := r.queries.TopSellCountryCategory(ctx)
	if err != nil {
		return err
	}
	if err := r.render(TopSellCountryCategoryReport(top)); err != nil {
		return err
	}

	specs, err := r.queries.TopProductSpecs(ctx)
	if err != nil {
		return err
	}
	if err := r.render(TopProductSpecsReport(specs)); err != nil {
		return err
	}

	totals, err := r.queries.TotalDistinctProductsSold(ctx)
	if err != nil {
		return err
	}
	if err := r.render(TotalDistinctProductsSoldReport(totals)); err != nil {
		return err
	}

	categories, err := r.queries.MaxSalesCategory(ctx)
	if err != nil {
		return err
	}
	return r.render(MaxSalesCategoryReport(categories))
}

func (r *runner) render(t *report.Table) error {
	return t.Render(r.out, r.format)
}

func (r *runner) metadata(cfg *config.Config) map[string]string {
	m := map[string]string{
		"on_conflict": string(r.policy),
		"seed":        strconv.FormatUint(cfg.Sales.Seed, 10),
		"failed":      strconv.Itoa(len(r.summary.Failed)),
	}
	for table, n := range r.summary.Loaded {
		m["rows_"+table] = strconv.FormatInt(n, 10)
	}
	return m
}

func init() {
	pipelines.Register(New())
}
