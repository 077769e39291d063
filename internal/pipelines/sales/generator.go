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
	"errors"
	"fmt"
	"sort"

	"github.com/pgEdge/pgedge-etl/internal/datagen"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// ErrInsufficientProductIDs is returned when the sales rows reference fewer
// distinct product ids than product rows are requested.
var ErrInsufficientProductIDs = errors.New("not enough distinct product ids in sales data")

// ErrUnmatchedProductIDs is returned when the sales rows reference more
// distinct product ids than product rows are requested.
var ErrUnmatchedProductIDs = errors.New("sales data references more product ids than product rows")

// Reference data
var (
	countries   = []string{"Mexico", "Canada", "US"}
	categories  = []string{"phone", "tablet", "laptop"}
	colors      = []string{"white", "black", "red", "blue", "pink"}
	screenSizes = []int{5, 6, 7, 8, 9, 10, 12, 15, 17}
	otherSpecs  = []string{"fast_charge", "usb_c", "5G"}
)

// Value ranges (inclusive).
const (
	minPrice      = 3000
	maxPrice      = 30000
	minQuantity   = 1
	maxQuantity   = 10
	minFinalSales = 3000
	maxFinalSales = 100000

	// capacity and memory are powers of two up to 2^9 = 512
	maxSizeExponent = 9
)

// GeneratorConfig sizes the generated data.
type GeneratorConfig struct {
	SalesRows   int
	ProductRows int
	IDPoolSize  int
}

// DefaultGeneratorConfig returns 100 sales rows over a pool of 10 product ids.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SalesRows:   100,
		ProductRows: 10,
		IDPoolSize:  10,
	}
}

// Generator generates synthetic sales and product rows.
type Generator struct {
	faker *datagen.Faker
	cfg   GeneratorConfig
}

// NewGenerator creates a generator. A zero seed draws a random one.
func NewGenerator(seed uint64, cfg GeneratorConfig) *Generator {
	return &Generator{
		faker: datagen.NewFakerWithSeed(seed),
		cfg:   cfg,
	}
}

// Sales generates the sales rows and returns them with the sorted set of
// distinct product ids they reference.
func (g *Generator) Sales() ([]SalesRecord, []int) {
	records := make([]SalesRecord, g.cfg.SalesRows)
	seen := make(map[int]struct{}, g.cfg.IDPoolSize)

	for i := range records {
		id := g.faker.Int(1, g.cfg.IDPoolSize)
		seen[id] = struct{}{}

		records[i] = SalesRecord{
			ProductID:  id,
			Country:    datagen.Choose(g.faker, countries),
			Category:   datagen.Choose(g.faker, categories),
			Price:      g.faker.WholeFloat(minPrice, maxPrice),
			Quantity:   g.faker.Int(minQuantity, maxQuantity),
			FinalSales: g.faker.WholeFloat(minFinalSales, maxFinalSales),
		}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	logging.Debug().
		Int("rows", len(records)).
		Int("distinct_ids", len(ids)).
		Msg("Generated sales data")

	return records, ids
}

// Products generates one product row per id. The number of ids must equal
// the configured number of product rows.
func (g *Generator) Products(ids []int) ([]ProductRecord, error) {
	switch {
	case len(ids) < g.cfg.ProductRows:
		return nil, fmt.Errorf("%w: got %d, need %d", ErrInsufficientProductIDs, len(ids), g.cfg.ProductRows)
	case len(ids) > g.cfg.ProductRows:
		return nil, fmt.Errorf("%w: got %d, have %d product rows", ErrUnmatchedProductIDs, len(ids), g.cfg.ProductRows)
	}

	records := make([]ProductRecord, len(ids))
	for i, id := range ids {
		records[i] = ProductRecord{
			ID:         id,
			Category:   datagen.Choose(g.faker, categories),
			Capacity:   g.faker.PowerOfTwo(maxSizeExponent),
			Color:      datagen.Choose(g.faker, colors),
			ScreenSize: datagen.Choose(g.faker, screenSizes),
			Memory:     g.faker.PowerOfTwo(maxSizeExponent),
			OtherSpecs: datagen.Choose(g.faker, otherSpecs),
		}
	}

	logging.Debug().Int("rows", len(records)).Msg("Generated product data")

	return records, nil
}
