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
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNoBerryEndpoint is returned when the docs list no berry endpoint.
	ErrNoBerryEndpoint = errors.New("no berry endpoint found in the documentation")

	// ErrNoAttributeTable is returned when no table lists growth_time.
	ErrNoAttributeTable = errors.New("no berry attribute table found in the documentation")
)

// GrowthTimeAttribute is the attribute the statistics are computed over.
const GrowthTimeAttribute = "growth_time"

var placeholderSegment = regexp.MustCompile(`\{[\w ]+\}/`)

// Attribute is one documented field of the berry resource.
type Attribute struct {
	Name        string
	Description string
}

// Docs is what the pipeline needs from the documentation page.
type Docs struct {
	// Templates holds every documented endpoint, e.g.
	// https://pokeapi.co/api/v2/berry/{id or name}/
	Templates []string

	// BerryURL is the berry endpoint with its placeholder removed; ids are
	// appended to it.
	BerryURL string

	Attributes []Attribute
}

// ParseDocs scans the documentation page for endpoint templates and the
// berry attribute table.
func ParseDocs(doc *goquery.Document) (*Docs, error) {
	d := &Docs{}

	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := p.Text()
		if !strings.Contains(text, "GET http") {
			return
		}
		_, rest, ok := strings.Cut(strings.TrimSpace(text), " ")
		if !ok {
			return
		}
		template := strings.TrimSpace(rest)
		d.Templates = append(d.Templates, template)
		if d.BerryURL == "" && strings.Contains(template, "/berry/{") {
			d.BerryURL = placeholderSegment.ReplaceAllString(template, "")
		}
	})
	if d.BerryURL == "" {
		return nil, ErrNoBerryEndpoint
	}
	if !strings.HasSuffix(d.BerryURL, "/") {
		d.BerryURL += "/"
	}

	doc.Find("tbody").EachWithBreak(func(_ int, tb *goquery.Selection) bool {
		var attrs []Attribute
		found := false
		tb.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() < 2 {
				return
			}
			a := Attribute{
				Name:        strings.TrimSpace(cells.Eq(0).Text()),
				Description: strings.TrimSpace(cells.Eq(1).Text()),
			}
			if a.Name == GrowthTimeAttribute {
				found = true
			}
			attrs = append(attrs, a)
		})
		if found {
			d.Attributes = attrs
		}
		return !found
	})
	if d.Attributes == nil {
		return nil, ErrNoAttributeTable
	}

	return d, nil
}
