//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package fetch provides the HTTP client used by the scraping pipelines.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/pgEdge/pgedge-etl/internal/logging"
	"github.com/pgEdge/pgedge-etl/pkg/version"
)

// ErrUnreachable is returned when a server does not answer with 200 OK.
var ErrUnreachable = errors.New("the server is not reachable")

// Client wraps a resty client.
type Client struct {
	http *resty.Client
}

// New creates a client with the given per-request timeout.
func New(timeout time.Duration) *Client {
	c := resty.New()
	c.SetTimeout(timeout)
	c.SetHeader("User-Agent", version.Info())
	return &Client{http: c}
}

// Get requests url and returns the response whatever its status. Only
// transport failures are errors.
func (c *Client) Get(ctx context.Context, url string) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, url, err)
	}
	logging.Debug().
		Str("url", url).
		Int("status", res.StatusCode()).
		Dur("duration", res.Time()).
		Msg("HTTP GET")
	return res, nil
}

// Body requests url and returns the body of a 200 OK response.
func (c *Client) Body(ctx context.Context, url string) ([]byte, error) {
	res, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnreachable, url, res.Status())
	}
	return res.Body(), nil
}

// Document requests url and parses the HTML body.
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.Body(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}
