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
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/fetch"
)

const docsPage = `<html><body>
<h2>Berries</h2>
<p>GET %[1]s/api/v2/berry/{id or name}/</p>
<table><thead><tr><th>Name</th><th>Description</th><th>Type</th></tr></thead><tbody>
<tr><td>id</td><td>The identifier for this resource.</td><td>integer</td></tr>
<tr><td>name</td><td>The name for this resource.</td><td>string</td></tr>
</tbody></table>
<p>GET %[1]s/api/v2/berry-firmness/{id or name}/</p>
<table><tbody>
<tr><td>id</td><td>The identifier for this resource.</td></tr>
<tr><td>name</td><td>The name for this resource.</td><td>string</td></tr>
<tr><td> growth_time </td><td> Time it takes the tree to grow one stage, in hours. </td></tr>
<tr><td>firmness</td><td>The firmness of this berry.</td></tr>
<tr><td>flavors</td><td>A list of references to each flavor a berry can have.</td></tr>
<tr><td>item</td><td>Berries are actually items.</td></tr>
<tr><td>natural_gift_type</td><td>The type inherited by Natural Gift.</td></tr>
</tbody></table>
</body></html>`

var growthTimes = []int{3, 5, 5, 8}

func berryJSON(id int) string {
	return fmt.Sprintf(`{
  "id": %d,
  "name": "berry-%d",
  "growth_time": %d,
  "max_harvest": 5,
  "firmness": {"name": "soft", "url": "https://example.test/berry-firmness/2/"},
  "flavors": [{"potency": 10, "flavor": {"name": "spicy", "url": "https://example.test/flavor/1/"}}],
  "item": {"name": "berry-%d-item", "url": "https://example.test/item/%d/"},
  "natural_gift_type": {"name": "fire", "url": "https://example.test/type/10/"}
}`, id, id, growthTimes[id-1], id, id)
}

type berryServer struct {
	*httptest.Server

	mu        sync.Mutex
	requested []int
}

func newBerryServer(t *testing.T) *berryServer {
	t.Helper()
	bs := &berryServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/docs/v2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, docsPage, bs.URL)
	})
	mux.HandleFunc("/api/v2/berry/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}
		bs.mu.Lock()
		bs.requested = append(bs.requested, id)
		bs.mu.Unlock()
		if id < 1 || id > len(growthTimes) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(berryJSON(id)))
	})
	bs.Server = httptest.NewServer(mux)
	t.Cleanup(bs.Close)
	return bs
}

func (bs *berryServer) ids() []int {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return append([]int(nil), bs.requested...)
}

func parseDocs(t *testing.T, base string) *Docs {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fmt.Sprintf(docsPage, base)))
	require.NoError(t, err)
	d, err := ParseDocs(doc)
	require.NoError(t, err)
	return d
}

func TestParseDocs(t *testing.T) {
	d := parseDocs(t, "https://pokeapi.co")

	require.Equal(t, []string{
		"https://pokeapi.co/api/v2/berry/{id or name}/",
		"https://pokeapi.co/api/v2/berry-firmness/{id or name}/",
	}, d.Templates)
	require.Equal(t, "https://pokeapi.co/api/v2/berry/", d.BerryURL)

	names := make([]string, len(d.Attributes))
	for i, a := range d.Attributes {
		names[i] = a.Name
	}
	require.Equal(t, []string{"id", "name", "growth_time", "firmness", "flavors", "item", "natural_gift_type"}, names)
	require.Equal(t, "Time it takes the tree to grow one stage, in hours.", d.Attributes[2].Description)
}

func TestParseDocsMissingParts(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>GET https://pokeapi.co/api/v2/item/{id or name}/</p>`))
	require.NoError(t, err)
	_, err = ParseDocs(doc)
	require.ErrorIs(t, err, ErrNoBerryEndpoint)

	doc, err = goquery.NewDocumentFromReader(strings.NewReader(
		`<p>GET https://pokeapi.co/api/v2/berry/{id or name}/</p><table><tbody><tr><td>id</td><td>x</td></tr></tbody></table>`))
	require.NoError(t, err)
	_, err = ParseDocs(doc)
	require.ErrorIs(t, err, ErrNoAttributeTable)
}

func TestFlatten(t *testing.T) {
	d := parseDocs(t, "https://pokeapi.co")

	b, err := Flatten([]byte(berryJSON(2)), d.Attributes)
	require.NoError(t, err)

	require.Equal(t, "berry-2", b.Name())
	require.Equal(t, "soft", b["firmness"])
	require.Equal(t, "berry-2-item", b["item"])
	require.Equal(t, "fire", b["natural_gift_type"])
	require.Equal(t, `[{"flavor":{"name":"spicy","url":"https://example.test/flavor/1/"},"potency":10}]`, b["flavors"])
	require.NotContains(t, b, "max_harvest")

	gt, err := b.GrowthTime()
	require.NoError(t, err)
	require.Equal(t, 5, gt)
}

func TestFlattenMissingAttribute(t *testing.T) {
	attrs := []Attribute{{Name: "name"}, {Name: "smoothness"}}
	_, err := Flatten([]byte(berryJSON(1)), attrs)
	require.ErrorIs(t, err, ErrMissingAttribute)
}

func TestCrawlStopsAtFirstNotOK(t *testing.T) {
	bs := newBerryServer(t)
	d := parseDocs(t, bs.URL)

	berries, err := Crawl(context.Background(), fetch.New(5*time.Second), d.BerryURL, d.Attributes, 0)
	require.NoError(t, err)
	require.Len(t, berries, 4)
	require.Equal(t, []int{1, 2, 3, 4, 5}, bs.ids())
}

func TestCrawlMaxItems(t *testing.T) {
	bs := newBerryServer(t)
	d := parseDocs(t, bs.URL)

	berries, err := Crawl(context.Background(), fetch.New(5*time.Second), d.BerryURL, d.Attributes, 2)
	require.NoError(t, err)
	require.Len(t, berries, 2)
	require.Equal(t, []int{1, 2}, bs.ids())
}

func TestComputeStats(t *testing.T) {
	var berries []Berry
	for i, gt := range []int{3, 5, 5, 8} {
		berries = append(berries, Berry{"name": fmt.Sprintf("b%d", i), GrowthTimeAttribute: gt})
	}

	s, err := ComputeStats(berries)
	require.NoError(t, err)
	require.Equal(t, 3, s.Min)
	require.Equal(t, 5.0, s.Median)
	require.Equal(t, 8, s.Max)
	require.InDelta(t, 5.25, s.Mean, 1e-12)
	require.InDelta(t, 3.1875, s.Variance, 1e-12)
	require.Equal(t, map[int]int{3: 1, 5: 2, 8: 1}, s.Frequency)
	require.Equal(t, []string{"b0", "b1", "b2", "b3"}, s.Names)

	record, err := s.StatsRecord()
	require.NoError(t, err)
	require.Equal(t, []string{
		`["b0","b1","b2","b3"]`, "[3,5,5,8]", "3", "5", "8", "3.1875", "5.25", "{3: 1, 5: 2, 8: 1}",
	}, record)
}

func TestComputeStatsOddMedianAndEmpty(t *testing.T) {
	s, err := ComputeStats([]Berry{
		{"name": "a", GrowthTimeAttribute: 12},
		{"name": "b", GrowthTimeAttribute: 2},
		{"name": "c", GrowthTimeAttribute: 4},
	})
	require.NoError(t, err)
	require.Equal(t, 4.0, s.Median)

	_, err = ComputeStats(nil)
	require.ErrorIs(t, err, ErrNoBerries)
}

func TestRun(t *testing.T) {
	bs := newBerryServer(t)
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Format = "csv"
	cfg.Berries.DocsURL = bs.URL + "/docs/v2"
	cfg.Berries.OutputDir = dir
	cfg.Berries.HTTPTimeout = 5

	var out bytes.Buffer
	require.NoError(t, New().Run(context.Background(), cfg, &out))
	require.Contains(t, out.String(), "growth_time,frequency\n3,1\n5,2\n8,1")

	stats, err := os.ReadFile(filepath.Join(dir, cfg.Berries.StatsFile))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(stats), strings.Join(StatsHeader, ",")+"\n"))

	raw, err := os.ReadFile(filepath.Join(dir, cfg.Berries.RawFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, "id,name,growth_time,firmness,flavors,item,natural_gift_type", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "1,berry-1,3,soft,"))

	progress, err := os.ReadFile(filepath.Join(dir, cfg.Berries.LogFile))
	require.NoError(t, err)
	entries := strings.Split(strings.TrimSpace(string(progress)), "\n")
	require.Len(t, entries, 6)
	for i, msg := range []string{StageRequest, StageScrape, StageExtract, StageTransform, StageLoad, StageReport} {
		require.True(t, strings.HasSuffix(entries[i], ","+msg), "entry %d: %s", i, entries[i])
	}
}

func TestRunDocsUnreachable(t *testing.T) {
	bs := newBerryServer(t)
	cfg := config.DefaultConfig()
	cfg.Berries.DocsURL = bs.URL + "/nowhere"
	cfg.Berries.OutputDir = t.TempDir()

	err := New().Run(context.Background(), cfg, &bytes.Buffer{})
	require.ErrorIs(t, err, fetch.ErrUnreachable)
}
