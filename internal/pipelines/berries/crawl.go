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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/pgEdge/pgedge-etl/internal/fetch"
	"github.com/pgEdge/pgedge-etl/internal/logging"
)

// ErrMissingAttribute is returned when a berry lacks a documented attribute.
var ErrMissingAttribute = errors.New("berry is missing a documented attribute")

// Berry maps attribute names to flattened values.
type Berry map[string]any

// Name returns the berry name.
func (b Berry) Name() string {
	s, _ := b["name"].(string)
	return s
}

// GrowthTime returns the growth time in hours.
func (b Berry) GrowthTime() (int, error) {
	switch v := b[GrowthTimeAttribute].(type) {
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("berry %q: growth_time is %T", b.Name(), v)
	}
}

// attributes holding a named resource reference that is reduced to its name
var namedRefs = map[string]bool{
	"firmness":          true,
	"item":              true,
	"natural_gift_type": true,
}

// Flatten decodes one berry and keeps the documented attributes. Named
// references are reduced to their name and flavors is kept as JSON text.
func Flatten(body []byte, attrs []Attribute) (Berry, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode berry: %w", err)
	}

	b := make(Berry, len(attrs))
	for _, a := range attrs {
		v, ok := raw[a.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAttribute, a.Name)
		}
		switch {
		case namedRefs[a.Name]:
			ref, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("attribute %s is not a named resource", a.Name)
			}
			b[a.Name] = ref["name"]
		case a.Name == "flavors":
			text, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			b[a.Name] = string(text)
		default:
			b[a.Name] = v
		}
	}
	return b, nil
}

// Crawl requests base+id for id = 1, 2, ... until the server answers with
// anything but 200 OK or maxItems berries were read (0 = no limit).
func Crawl(ctx context.Context, c *fetch.Client, base string, attrs []Attribute, maxItems int) ([]Berry, error) {
	var berries []Berry
	for id := 1; maxItems <= 0 || len(berries) < maxItems; id++ {
		url := base + strconv.Itoa(id)
		res, err := c.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		if res.StatusCode() != http.StatusOK {
			logging.Debug().Int("id", id).Int("status", res.StatusCode()).Msg("Berry pagination finished")
			break
		}

		b, err := Flatten(res.Body(), attrs)
		if err != nil {
			return nil, fmt.Errorf("berry %d: %w", id, err)
		}
		berries = append(berries, b)
	}

	logging.Info().Int("berries", len(berries)).Msg("Crawled berries")
	return berries, nil
}
