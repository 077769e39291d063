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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
)

// StatsHeader is the header row of the statistics file.
var StatsHeader = []string{
	"berries_names",
	"growth_times",
	"min_growth_time",
	"median_growth_time",
	"max_growth_time",
	"variance_growth_time",
	"mean_growth_time",
	"frequency_growth_time",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFrequency renders the frequency map ordered by growth time,
// e.g. {3: 1, 5: 2}.
func formatFrequency(freq map[int]int) string {
	parts := make([]string, 0, len(freq))
	for _, gt := range slices.Sorted(maps.Keys(freq)) {
		parts = append(parts, fmt.Sprintf("%d: %d", gt, freq[gt]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// StatsRecord returns the statistics as one CSV record.
func (s *GrowthStats) StatsRecord() ([]string, error) {
	names, err := json.Marshal(s.Names)
	if err != nil {
		return nil, err
	}
	times, err := json.Marshal(s.GrowthTimes)
	if err != nil {
		return nil, err
	}
	return []string{
		string(names),
		string(times),
		strconv.Itoa(s.Min),
		formatFloat(s.Median),
		strconv.Itoa(s.Max),
		formatFloat(s.Variance),
		formatFloat(s.Mean),
		formatFrequency(s.Frequency),
	}, nil
}

func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		b, err := json.Marshal(x)
		return string(b), err
	}
}

func writeCSV(path string, header []string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

// WriteStats writes the statistics file.
func WriteStats(path string, s *GrowthStats) error {
	record, err := s.StatsRecord()
	if err != nil {
		return err
	}
	return writeCSV(path, StatsHeader, [][]string{record})
}

// WriteBerries writes one row per berry with the documented attributes as
// columns.
func WriteBerries(path string, attrs []Attribute, berries []Berry) error {
	header := make([]string, len(attrs))
	for i, a := range attrs {
		header[i] = a.Name
	}

	records := make([][]string, 0, len(berries))
	for _, b := range berries {
		record := make([]string, len(attrs))
		for i, a := range attrs {
			v, err := formatValue(b[a.Name])
			if err != nil {
				return fmt.Errorf("berry %q attribute %s: %w", b.Name(), a.Name, err)
			}
			record[i] = v
		}
		records = append(records, record)
	}
	return writeCSV(path, header, records)
}
