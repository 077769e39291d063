//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package sales

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/report"
)

// ProductSpec is a top selling product with one of its sales.
type ProductSpec struct {
	ID         int     `db:"id"`
	Category   string  `db:"category"`
	Capacity   int     `db:"capacity"`
	Color      string  `db:"color"`
	ScreenSize int     `db:"screen_size"`
	Memory     int     `db:"memory"`
	OtherSpecs string  `db:"other_specs"`
	Country    string  `db:"country"`
	FinalSales float64 `db:"final_sales"`
}

// ProductTotal is the number of units sold of one product.
type ProductTotal struct {
	ProductID int   `db:"product_id"`
	TotalSold int64 `db:"total_sold"`
}

// CategoryTotal is the summed final sales of one category.
type CategoryTotal struct {
	Category   string  `db:"category"`
	TotalSales float64 `db:"total_sales"`
}

// Queries runs the read-only reports against a session.
type Queries struct {
	session *db.Session
}

// NewQueries creates a query runner.
func NewQueries(s *db.Session) *Queries {
	return &Queries{session: s}
}

func (q *Queries) table(name string) string {
	return q.session.Qualify(name)
}

// topCategoriesQuery ranks categories per country by summed final sales and
// keeps the first. Ties go to the alphabetically first category; product_id
// is the smallest id of the winning group. The query has no bind arguments
// so it can back CREATE TABLE AS on every dialect.
func (q *Queries) topCategoriesQuery() (string, error) {
	ranked := sq.Select(
		"MIN(product_id) AS product_id",
		"country",
		"category",
		"SUM(final_sales) AS total_sales",
		"ROW_NUMBER() OVER (PARTITION BY country ORDER BY SUM(final_sales) DESC, category) AS category_rank",
	).
		From(q.table(SalesTableName)).
		GroupBy("country", "category")

	query, _, err := sq.Select("product_id", "country", "category", "total_sales").
		FromSelect(ranked, "rank_table").
		Where(sq.Expr("category_rank = 1")).
		ToSql()
	return query, err
}

// TopSellCountryCategory returns the best selling category of every country.
func (q *Queries) TopSellCountryCategory(ctx context.Context) ([]TopSellCategory, error) {
	query, err := q.topCategoriesQuery()
	if err != nil {
		return nil, err
	}

	var result []TopSellCategory
	if err := q.session.DB.SelectContext(ctx, &result, query+" ORDER BY country"); err != nil {
		return nil, fmt.Errorf("top_sell_country_category query failed: %w", db.Classify(err))
	}
	return result, nil
}

// MaterializeTopCategories stores the top category report as a table.
func (q *Queries) MaterializeTopCategories(ctx context.Context, policy db.ConflictPolicy) (db.Outcome, error) {
	query, err := q.topCategoriesQuery()
	if err != nil {
		return "", err
	}
	return q.session.CreateTableAs(ctx, TopCategoriesTableName, query, nil, policy)
}

// TopProductSpecs joins the products of the top categories with their sales.
func (q *Queries) TopProductSpecs(ctx context.Context) ([]ProductSpec, error) {
	top, err := q.topCategoriesQuery()
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Select(
		"p.id", "p.category", "p.capacity", "p.color", "p.screen_size",
		"p.memory", "p.other_specs", "top_category.country", "s.final_sales",
	).
		Prefix("WITH top_category AS (" + top + ")").
		From(q.table(ProductTableName) + " p").
		Join("top_category ON top_category.product_id = p.id").
		Join(q.table(SalesTableName) + " s ON top_category.product_id = s.product_id").
		OrderBy("top_category.country", "p.id", "s.final_sales DESC").
		PlaceholderFormat(q.session.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	var result []ProductSpec
	if err := q.session.DB.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("top_product_specs query failed: %w", db.Classify(err))
	}
	return result, nil
}

// TotalDistinctProductsSold returns the units sold per product id.
func (q *Queries) TotalDistinctProductsSold(ctx context.Context) ([]ProductTotal, error) {
	query, args, err := sq.Select("product_id", "SUM(quantity) AS total_sold").
		From(q.table(SalesTableName)).
		GroupBy("product_id").
		OrderBy("product_id").
		PlaceholderFormat(q.session.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	var result []ProductTotal
	if err := q.session.DB.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("total_distinct_products_sold query failed: %w", db.Classify(err))
	}
	return result, nil
}

// MaxSalesCategory returns the summed final sales per category.
func (q *Queries) MaxSalesCategory(ctx context.Context) ([]CategoryTotal, error) {
	query, args, err := sq.Select("category", "SUM(final_sales) AS total_sales").
		From(q.table(SalesTableName)).
		GroupBy("category").
		OrderBy("category").
		PlaceholderFormat(q.session.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	var result []CategoryTotal
	if err := q.session.DB.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("max_sales_category query failed: %w", db.Classify(err))
	}
	return result, nil
}

// Extract returns every sale joined with its product. The category is the
// product's.
func (q *Queries) Extract(ctx context.Context) ([]SaleDetail, error) {
	query, args, err := sq.Select(
		"s.product_id AS id", "s.country", "p.category", "p.capacity",
		"p.color", "s.quantity", "s.final_sales",
	).
		From(q.table(SalesTableName) + " s").
		Join(q.table(ProductTableName) + " p ON s.product_id = p.id").
		PlaceholderFormat(q.session.Dialect.Placeholder()).
		ToSql()
	if err != nil {
		return nil, err
	}

	var result []SaleDetail
	if err := q.session.DB.SelectContext(ctx, &result, query, args...); err != nil {
		return nil, fmt.Errorf("extract query failed: %w", db.Classify(err))
	}
	return result, nil
}

// TopSellCountryCategoryReport renders the top categories as a table.
func TopSellCountryCategoryReport(rows []TopSellCategory) *report.Table {
	t := &report.Table{
		Title:   "top_sell_country_category",
		Columns: []string{"product_id", "country", "category", "total_sales"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ProductID, r.Country, r.Category, r.TotalSales})
	}
	return t
}

// TopProductSpecsReport renders the top product specs as a table.
func TopProductSpecsReport(rows []ProductSpec) *report.Table {
	t := &report.Table{
		Title: "top_product_specs",
		Columns: []string{"id", "category", "capacity", "color", "screen_size",
			"memory", "other_specs", "country", "final_sales"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ID, r.Category, r.Capacity, r.Color, r.ScreenSize,
			r.Memory, r.OtherSpecs, r.Country, r.FinalSales})
	}
	return t
}

// TotalDistinctProductsSoldReport renders the per product totals as a table.
func TotalDistinctProductsSoldReport(rows []ProductTotal) *report.Table {
	t := &report.Table{
		Title:   "total_distinct_products_sold",
		Columns: []string{"product_id", "total_sold"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.ProductID, r.TotalSold})
	}
	return t
}

// MaxSalesCategoryReport renders the per category totals as a table.
func MaxSalesCategoryReport(rows []CategoryTotal) *report.Table {
	t := &report.Table{
		Title:   "max_sales_category",
		Columns: []string{"category", "total_sales"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Category, r.TotalSales})
	}
	return t
}
