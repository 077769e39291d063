//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package sales implements the sales ETL pipeline: it provisions the sales
// schema, seeds it with synthetic rows, reports on them and reloads a
// revenue-tiered copy of the joined data.
package sales

import (
	"github.com/pgEdge/pgedge-etl/internal/db"
)

// Table names.
const (
	SalesTableName            = "sales"
	ProductTableName          = "product"
	TransformedSalesTableName = "transformed_sales"
	TopCategoriesTableName    = "top_sell_country_category"
)

// SalesTable holds one row per synthetic sale.
var SalesTable = db.Table{
	Name: SalesTableName,
	Columns: []db.Column{
		{Name: "product_id", Kind: db.KindInt},
		{Name: "country", Kind: db.KindString, Size: 256},
		{Name: "category", Kind: db.KindString, Size: 128},
		{Name: "price", Kind: db.KindFloat},
		{Name: "quantity", Kind: db.KindInt},
		{Name: "final_sales", Kind: db.KindFloat},
	},
}

// ProductTable holds one row per product id referenced by sales.
var ProductTable = db.Table{
	Name: ProductTableName,
	Columns: []db.Column{
		{Name: "id", Kind: db.KindInt, PrimaryKey: true},
		{Name: "category", Kind: db.KindString, Size: 128},
		{Name: "capacity", Kind: db.KindInt},
		{Name: "color", Kind: db.KindString, Size: 128},
		{Name: "screen_size", Kind: db.KindInt},
		{Name: "memory", Kind: db.KindInt},
		{Name: "other_specs", Kind: db.KindString, Size: 128},
	},
}

// TransformedSalesTable holds the joined sales with revenue and tier.
var TransformedSalesTable = db.Table{
	Name: TransformedSalesTableName,
	Columns: []db.Column{
		{Name: "id", Kind: db.KindInt},
		{Name: "country", Kind: db.KindString, Size: 128},
		{Name: "category", Kind: db.KindString, Size: 128},
		{Name: "capacity", Kind: db.KindInt},
		{Name: "color", Kind: db.KindString, Size: 128},
		{Name: "quantity", Kind: db.KindInt},
		{Name: "final_sales", Kind: db.KindFloat},
		{Name: "total_revenue", Kind: db.KindFloat},
		{Name: "transact_category", Kind: db.KindString, Size: 128},
	},
}

// SalesRecord is one sale.
type SalesRecord struct {
	ProductID  int
	Country    string
	Category   string
	Price      float64
	Quantity   int
	FinalSales float64
}

// Values returns the record in SalesTable column order.
func (r SalesRecord) Values() []any {
	return []any{r.ProductID, r.Country, r.Category, r.Price, r.Quantity, r.FinalSales}
}

// ProductRecord describes one product.
type ProductRecord struct {
	ID         int
	Category   string
	Capacity   int
	Color      string
	ScreenSize int
	Memory     int
	OtherSpecs string
}

// Values returns the record in ProductTable column order.
func (r ProductRecord) Values() []any {
	return []any{r.ID, r.Category, r.Capacity, r.Color, r.ScreenSize, r.Memory, r.OtherSpecs}
}

// TopSellCategory is the best selling category of a country.
type TopSellCategory struct {
	ProductID  int     `db:"product_id"`
	Country    string  `db:"country"`
	Category   string  `db:"category"`
	TotalSales float64 `db:"total_sales"`
}

// SaleDetail is a sale joined with its product.
type SaleDetail struct {
	ID         int     `db:"id"`
	Country    string  `db:"country"`
	Category   string  `db:"category"`
	Capacity   int     `db:"capacity"`
	Color      string  `db:"color"`
	Quantity   int     `db:"quantity"`
	FinalSales float64 `db:"final_sales"`
}

// TransformedSalesRecord is a SaleDetail with its revenue and tier.
type TransformedSalesRecord struct {
	SaleDetail
	TotalRevenue     float64
	TransactCategory Tier
}

// Values returns the record in TransformedSalesTable column order.
func (r TransformedSalesRecord) Values() []any {
	return []any{
		r.ID, r.Country, r.Category, r.Capacity, r.Color,
		r.Quantity, r.FinalSales, r.TotalRevenue, string(r.TransactCategory),
	}
}

func rowsOf[T interface{ Values() []any }](records []T) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}
	return rows
}
