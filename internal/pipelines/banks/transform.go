//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package banks

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"

	"github.com/pgEdge/pgedge-etl/internal/db"
	"github.com/pgEdge/pgedge-etl/internal/report"
)

// TableName is the table the transformed rows are loaded into.
const TableName = "transformed_data"

// Converted holds the ranking with one market cap column per currency.
type Converted struct {
	Columns []string
	Rows    [][]any
}

// CurrencyColumn returns the column name for a currency, e.g. MC_EUR_Billion.
func CurrencyColumn(currency string) string {
	return "MC_" + currency + "_Billion"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Convert adds round(usd * rate, 2) for every rate, in rate order.
func Convert(banks []Bank, rates []ExchangeRate) *Converted {
	c := &Converted{Columns: []string{"Name", CurrencyColumn("USD")}}
	for _, r := range rates {
		c.Columns = append(c.Columns, CurrencyColumn(r.Currency))
	}
	for _, b := range banks {
		row := make([]any, 0, len(c.Columns))
		row = append(row, b.Name, b.MCUSDBillion)
		for _, r := range rates {
			row = append(row, round2(b.MCUSDBillion*r.Rate))
		}
		c.Rows = append(c.Rows, row)
	}
	return c
}

// Table describes the SQL table for the converted columns.
func (c *Converted) Table() db.Table {
	t := db.Table{Name: TableName}
	for i, name := range c.Columns {
		kind := db.KindFloat
		if i == 0 {
			kind = db.KindString
		}
		t.Columns = append(t.Columns, db.Column{Name: name, Kind: kind})
	}
	return t
}

// Report returns the converted rows as a report table.
func (c *Converted) Report() *report.Table {
	return &report.Table{
		Title:   "Largest banks by market capitalization (billions)",
		Columns: c.Columns,
		Rows:    c.Rows,
	}
}

// ReadBanks reads a ranking written by WriteBanks.
func ReadBanks(path string) ([]Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var banks []Bank
	if err := csvutil.Unmarshal(data, &banks); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return banks, nil
}

// ReadRates reads an exchange rate file with Currency and Rate columns.
func ReadRates(path string) ([]ExchangeRate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	var rates []ExchangeRate
	for {
		var r ExchangeRate
		if err := dec.Decode(&r); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		rates = append(rates, r)
	}
	return rates, nil
}

// WriteConverted writes the converted rows as CSV.
func WriteConverted(path string, c *Converted) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(c.Columns); err != nil {
		return err
	}
	record := make([]string, len(c.Columns))
	for _, row := range c.Rows {
		for i, v := range row {
			switch x := v.(type) {
			case float64:
				record[i] = strconv.FormatFloat(x, 'f', -1, 64)
			default:
				record[i] = fmt.Sprint(x)
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
