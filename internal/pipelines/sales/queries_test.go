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
	"errors"
	"testing"

	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/loader"
)

var fixtureSales = []SalesRecord{
	{1, "US", "phone", 100, 1, 500},
	{2, "US", "phone", 100, 2, 300},
	{3, "US", "laptop", 100, 1, 700},
	{1, "Canada", "tablet", 100, 3, 1000},
	{2, "Canada", "phone", 100, 1, 200},
	{3, "Mexico", "laptop", 100, 1, 50},
	{2, "Mexico", "tablet", 100, 1, 50},
}

var fixtureProducts = []ProductRecord{
	{1, "phone", 64, "black", 6, 8, "usb_c"},
	{2, "tablet", 128, "white", 10, 16, "5G"},
	{3, "laptop", 512, "blue", 15, 32, "fast_charge"},
}

func openSession(t *testing.T) *db.Session {
	t.Helper()
	s, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFixture(t *testing.T, s *db.Session) {
	t.Helper()
	ctx := context.Background()
	l := loader.New(s, loader.DefaultConfig())

	for _, tc := range []struct {
		table db.Table
		rows  [][]any
	}{
		{SalesTable, rowsOf(fixtureSales)},
		{ProductTable, rowsOf(fixtureProducts)},
	} {
		if _, err := s.CreateTable(ctx, tc.table, db.ConflictAbort); err != nil {
			t.Fatalf("create %s failed: %v", tc.table.Name, err)
		}
		if _, err := l.Load(ctx, tc.table, tc.rows); err != nil {
			t.Fatalf("load %s failed: %v", tc.table.Name, err)
		}
	}
}

func TestTopSellCountryCategory(t *testing.T) {
	s := openSession(t)
	seedFixture(t, s)

	got, err := NewQueries(s).TopSellCountryCategory(context.Background())
	if err != nil {
		t.Fatalf("TopSellCountryCategory failed: %v", err)
	}

	want := []TopSellCategory{
		{ProductID: 1, Country: "Canada", Category: "tablet", TotalSales: 1000},
		// 50 vs 50: the alphabetically first category wins
		{ProductID: 3, Country: "Mexico", Category: "laptop", TotalSales: 50},
		{ProductID: 1, Country: "US", Category: "phone", TotalSales: 800},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTopSellCountryCategoryIsMaximum(t *testing.T) {
	s := openSession(t)
	ctx := context.Background()

	gen := NewGenerator(7, DefaultGeneratorConfig())
	records, _ := gen.Sales()
	if _, err := s.CreateTable(ctx, SalesTable, db.ConflictAbort); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.New(s, loader.DefaultConfig()).Load(ctx, SalesTable, rowsOf(records)); err != nil {
		t.Fatal(err)
	}

	sums := make(map[string]map[string]float64)
	for _, r := range records {
		if sums[r.Country] == nil {
			sums[r.Country] = make(map[string]float64)
		}
		sums[r.Country][r.Category] += r.FinalSales
	}

	top, err := NewQueries(s).TopSellCountryCategory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != len(sums) {
		t.Fatalf("got %d countries, want %d", len(top), len(sums))
	}
	for _, row := range top {
		var best float64
		for _, total := range sums[row.Country] {
			best = max(best, total)
		}
		if row.TotalSales != best {
			t.Errorf("%s: total %v is not the maximum %v", row.Country, row.TotalSales, best)
		}
		if sums[row.Country][row.Category] != row.TotalSales {
			t.Errorf("%s: category %s sums to %v, reported %v",
				row.Country, row.Category, sums[row.Country][row.Category], row.TotalSales)
		}
	}
}

func TestTopProductSpecs(t *testing.T) {
	s := openSession(t)
	seedFixture(t, s)

	got, err := NewQueries(s).TopProductSpecs(context.Background())
	if err != nil {
		t.Fatalf("TopProductSpecs failed: %v", err)
	}
	// two sales each for product 1 (Canada, US) and product 3 (Mexico)
	if len(got) != 6 {
		t.Fatalf("got %d rows, want 6: %+v", len(got), got)
	}
	first := got[0]
	want := ProductSpec{ID: 1, Category: "phone", Capacity: 64, Color: "black", ScreenSize: 6,
		Memory: 8, OtherSpecs: "usb_c", Country: "Canada", FinalSales: 1000}
	if first != want {
		t.Errorf("first row = %+v, want %+v", first, want)
	}
	for _, row := range got {
		if row.Country == "Mexico" && row.ID != 3 {
			t.Errorf("Mexico row for product %d, want 3", row.ID)
		}
	}
}

func TestTotalDistinctProductsSold(t *testing.T) {
	s := openSession(t)
	seedFixture(t, s)

	got, err := NewQueries(s).TotalDistinctProductsSold(context.Background())
	if err != nil {
		t.Fatalf("TotalDistinctProductsSold failed: %v", err)
	}
	want := []ProductTotal{{1, 4}, {2, 4}, {3, 2}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMaxSalesCategory(t *testing.T) {
	s := openSession(t)
	seedFixture(t, s)

	got, err := NewQueries(s).MaxSalesCategory(context.Background())
	if err != nil {
		t.Fatalf("MaxSalesCategory failed: %v", err)
	}
	want := []CategoryTotal{{"laptop", 750}, {"phone", 1000}, {"tablet", 1050}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractUsesProductCategory(t *testing.T) {
	s := openSession(t)
	seedFixture(t, s)

	got, err := NewQueries(s).Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(got) != len(fixtureSales) {
		t.Fatalf("got %d rows, want %d", len(got), len(fixtureSales))
	}
	for _, d := range got {
		if d.Category != fixtureProducts[d.ID-1].Category {
			t.Errorf("product %d has category %s, want the product's %s",
				d.ID, d.Category, fixtureProducts[d.ID-1].Category)
		}
	}
}

func TestMaterializeTopCategories(t *testing.T) {
	s := openSession(t)
	seedFixture(t, s)
	ctx := context.Background()
	q := NewQueries(s)

	outcome, err := q.MaterializeTopCategories(ctx, db.ConflictAbort)
	if err != nil {
		t.Fatalf("MaterializeTopCategories failed: %v", err)
	}
	if outcome != db.Created {
		t.Errorf("outcome = %s, want created", outcome)
	}

	var n int
	if err := s.DB.Get(&n, "SELECT COUNT(*) FROM "+s.Qualify(TopCategoriesTableName)); err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("materialized %d rows, want 3", n)
	}

	if _, err := q.MaterializeTopCategories(ctx, db.ConflictAbort); !errors.Is(err, db.ErrTableExists) {
		t.Errorf("expected ErrTableExists on second run, got %v", err)
	}
	if outcome, err := q.MaterializeTopCategories(ctx, db.ConflictRecreate); err != nil || outcome != db.Recreated {
		t.Errorf("recreate = %s, %v", outcome, err)
	}
}

func TestReports(t *testing.T) {
	top := TopSellCountryCategoryReport([]TopSellCategory{{1, "US", "phone", 800}})
	if top.Len() != 1 || len(top.Columns) != 4 {
		t.Errorf("unexpected top report shape: %+v", top)
	}
	specs := TopProductSpecsReport([]ProductSpec{{ID: 1}})
	if len(specs.Columns) != len(specs.Rows[0]) {
		t.Error("spec report columns and values differ in length")
	}
	totals := TotalDistinctProductsSoldReport([]ProductTotal{{1, 4}})
	if totals.Column("total_sold")[0] != int64(4) {
		t.Errorf("total_sold = %v", totals.Column("total_sold"))
	}
	cats := MaxSalesCategoryReport([]CategoryTotal{{"phone", 10}})
	if cats.Column("category")[0] != "phone" {
		t.Errorf("category = %v", cats.Column("category"))
	}
}
