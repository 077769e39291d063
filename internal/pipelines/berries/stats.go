//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package berries

import (
	"errors"
	"maps"
	"slices"

	"github.com/pgEdge/pgedge-etl/internal/report"
)

// ErrNoBerries is returned when there is nothing to compute statistics over.
var ErrNoBerries = errors.New("no berries to compute statistics over")

// GrowthStats summarizes the growth time of every berry.
type GrowthStats struct {
	Names       []string
	GrowthTimes []int

	Min    int
	Median float64
	Max    int

	// Variance is the population variance.
	Variance float64
	Mean     float64

	// Frequency counts berries per growth time.
	Frequency map[int]int
}

// ComputeStats computes growth time statistics in berry order.
func ComputeStats(berries []Berry) (*GrowthStats, error) {
	if len(berries) == 0 {
		return nil, ErrNoBerries
	}

	s := &GrowthStats{Frequency: make(map[int]int)}
	for _, b := range berries {
		gt, err := b.GrowthTime()
		if err != nil {
			return nil, err
		}
		s.Names = append(s.Names, b.Name())
		s.GrowthTimes = append(s.GrowthTimes, gt)
		s.Frequency[gt]++
	}

	sorted := slices.Sorted(slices.Values(s.GrowthTimes))
	n := len(sorted)
	s.Min = sorted[0]
	s.Max = sorted[n-1]
	if n%2 == 1 {
		s.Median = float64(sorted[n/2])
	} else {
		s.Median = float64(sorted[n/2-1]+sorted[n/2]) / 2
	}

	sum := 0
	for _, v := range sorted {
		sum += v
	}
	s.Mean = float64(sum) / float64(n)

	var sq float64
	for _, v := range sorted {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.Variance = sq / float64(n)

	return s, nil
}

// FrequencyReport lists how many berries share each growth time.
func (s *GrowthStats) FrequencyReport() *report.Table {
	t := &report.Table{
		Title:   "Frequency of growth time",
		Columns: []string{"growth_time", "frequency"},
	}
	for _, gt := range slices.Sorted(maps.Keys(s.Frequency)) {
		t.Rows = append(t.Rows, []any{gt, s.Frequency[gt]})
	}
	return t
}

// SummaryReport lists the scalar statistics.
func (s *GrowthStats) SummaryReport() *report.Table {
	return &report.Table{
		Title:   "Growth time statistics",
		Columns: []string{"berries", "min", "median", "max", "variance", "mean"},
		Rows: [][]any{
			{len(s.Names), s.Min, s.Median, s.Max, s.Variance, s.Mean},
		},
	}
}
