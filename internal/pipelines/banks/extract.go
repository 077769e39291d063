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
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jszwec/csvutil"

	"github.com/pgEdge/pgedge-etl/internal/fetch"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// Stage file names inside the output directory.
const (
	BanksFile       = "List_of_largest_banks.csv"
	RatesFile       = "ex_rate_file.csv"
	TransformedFile = "transformed_data.csv"
)

// ErrNoBankTable is returned when the page has no market cap table.
var ErrNoBankTable = errors.New("no table with a market cap column found")

// Bank is one row of the ranking.
type Bank struct {
	Name         string  `csv:"Name"`
	MCUSDBillion float64 `csv:"MC_USD_Billion"`
}

// ExchangeRate is one row of the exchange rate file.
type ExchangeRate struct {
	Currency string  `csv:"Currency"`
	Rate     float64 `csv:"Rate"`
}

// ExtractBanks reads the first table whose last header mentions the market
// cap. The name comes from the last link of the second cell, the market cap
// from the third cell.
func ExtractBanks(doc *goquery.Document) ([]Bank, error) {
	var body *goquery.Selection
	doc.Find("tbody").EachWithBreak(func(_ int, tb *goquery.Selection) bool {
		if strings.Contains(tb.Find("th").Last().Text(), "Market cap") {
			body = tb
			return false
		}
		return true
	})
	if body == nil {
		return nil, ErrNoBankTable
	}

	var banks []Bank
	var rowErr error
	body.Find("tr").Slice(1, goquery.ToEnd).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return true
		}

		nameCell := cells.Eq(1)
		name := strings.TrimSpace(nameCell.Find("a").Last().Text())
		if name == "" {
			name = strings.TrimSpace(nameCell.Text())
		}

		raw := strings.ReplaceAll(strings.TrimSpace(cells.Eq(2).Text()), ",", "")
		mc, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			rowErr = fmt.Errorf("row %d (%s): invalid market cap %q: %w", i+1, name, raw, err)
			return false
		}

		banks = append(banks, Bank{Name: name, MCUSDBillion: mc})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return banks, nil
}

// FetchBanks downloads and parses the ranking page.
func FetchBanks(ctx context.Context, c *fetch.Client, url string) ([]Bank, error) {
	doc, err := c.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	banks, err := ExtractBanks(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to extract banks from %s: %w", url, err)
	}
	logging.Info().Int("banks", len(banks)).Msg("Extracted bank ranking")
	return banks, nil
}

// WriteBanks writes the ranking as CSV.
func WriteBanks(path string, banks []Bank) error {
	data, err := csvutil.Marshal(banks)
	if err != nil {
		return fmt.Errorf("failed to encode banks: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// FetchRates downloads the exchange rate file and stores it unchanged.
func FetchRates(ctx context.Context, c *fetch.Client, url, path string) error {
	body, err := c.Body(ctx, url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info().Str("file", path).Int("bytes", len(body)).Msg("Saved exchange rates")
	return nil
}
