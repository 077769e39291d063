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

	"github.com/pgEdge/pgedge-etl/internal/report"
)

// Transform errors.
var (
	ErrEmptyDataset = errors.New("no rows to transform")
	ErrUnbucketed   = errors.New("revenue falls into no tier")
)

// Tier is the revenue class of a transaction.
type Tier string

const (
	High   Tier = "High"
	Medium Tier = "Medium"
	Low    Tier = "Low"
)

// Thresholds splits the revenue range into tiers. Upper and Lower are
// fractions of the range width and are not offset by Min.
type Thresholds struct {
	Min   float64
	Max   float64
	Lower float64
	Upper float64
}

// NewThresholds computes the tier bounds from the global revenue range:
// Upper = 0.625 x (max - min) and Lower = 0.375 x (max - min).
func NewThresholds(revenues []float64) (Thresholds, error) {
	if len(revenues) == 0 {
		return Thresholds{}, ErrEmptyDataset
	}

	lo, hi := revenues[0], revenues[0]
	for _, r := range revenues[1:] {
		lo = min(lo, r)
		hi = max(hi, r)
	}

	half := (hi - lo) / 2
	return Thresholds{
		Min:   lo,
		Max:   hi,
		Upper: half * 1.25,
		Lower: half * 0.75,
	}, nil
}

// Classify assigns a tier:
//
//	High:   Upper <  r <= Max
//	Medium: Lower <= r <= Upper
//	Low:    Min   <= r <  Lower
//
// A revenue outside [Min, Max] that does not land in Medium, or NaN, yields
// ErrUnbucketed.
func (t Thresholds) Classify(r float64) (Tier, error) {
	switch {
	case t.Upper < r && r <= t.Max:
		return High, nil
	case t.Lower <= r && r <= t.Upper:
		return Medium, nil
	case t.Min <= r && r < t.Lower:
		return Low, nil
	default:
		return "", fmt.Errorf("%w: %v not within [%v, %v]", ErrUnbucketed, r, t.Min, t.Max)
	}
}

// Transform adds total_revenue = quantity x final_sales to every row and
// classifies it against thresholds computed over all rows.
func Transform(details []SaleDetail) ([]TransformedSalesRecord, Thresholds, error) {
	revenues := make([]float64, len(details))
	for i, d := range details {
		revenues[i] = float64(d.Quantity) * d.FinalSales
	}

	th, err := NewThresholds(revenues)
	if err != nil {
		return nil, Thresholds{}, err
	}

	records := make([]TransformedSalesRecord, len(details))
	for i, d := range details {
		tier, err := th.Classify(revenues[i])
		if err != nil {
			return nil, th, fmt.Errorf("row %d: %w", i, err)
		}
		records[i] = TransformedSalesRecord{
			SaleDetail:       d,
			TotalRevenue:     revenues[i],
			TransactCategory: tier,
		}
	}
	return records, th, nil
}

// TransformedReport renders the transformed rows as a table.
func TransformedReport(records []TransformedSalesRecord) *report.Table {
	t := &report.Table{
		Title:   "transformed_sales",
		Columns: TransformedSalesTable.ColumnNames(),
	}
	for _, r := range records {
		t.Rows = append(t.Rows, r.Values())
	}
	return t
}
