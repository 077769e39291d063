//-------------------------------------------------------------------------
//
// pgEdge ETL Pipelines
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package pipelines_test

import (
	"sort"
	"testing"

	"github.com/pgEdge/pgedge-etl/internal/config"
	"github.com/pgEdge/pgedge-etl/internal/pipelines"
	// Import pipeline packages to trigger their init() functions which register the pipelines
	_ "github.com/pgEdge/pgedge-etl/internal/pipelines/banks"
	_ "github.com/pgEdge/pgedge-etl/internal/pipelines/berries"
	_ "github.com/pgEdge/pgedge-etl/internal/pipelines/sales"
)

var knownPipelines = []string{"banks", "berries", "sales"}

func TestGet(t *testing.T) {
	for _, name := range knownPipelines {
		t.Run(name, func(t *testing.T) {
			p, err := pipelines.Get(name)
			if err != nil {
				t.Fatalf("Failed to get pipeline '%s': %v", name, err)
			}
			if p == nil {
				t.Fatalf("Get('%s') returned nil", name)
			}
			if p.Name() != name {
				t.Errorf("Pipeline name mismatch: expected '%s', got '%s'", name, p.Name())
			}
			if p.Description() == "" {
				t.Error("Pipeline description should not be empty")
			}
		})
	}
}

func TestGetInvalidPipeline(t *testing.T) {
	if _, err := pipelines.Get("nonexistent"); err == nil {
		t.Error("Expected error for nonexistent pipeline, got nil")
	}
	if _, err := pipelines.Get(""); err == nil {
		t.Error("Expected error for empty pipeline name, got nil")
	}
}

func TestList(t *testing.T) {
	names := pipelines.List()
	if !sort.StringsAreSorted(names) {
		t.Errorf("List() should be sorted, got %v", names)
	}
	for _, expected := range knownPipelines {
		found := false
		for _, name := range names {
			if name == expected {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected pipeline '%s' not found in List()", expected)
		}
	}
}

func TestAllMatchesList(t *testing.T) {
	names := pipelines.List()
	all := pipelines.All()
	if len(all) != len(names) {
		t.Fatalf("All() returned %d pipelines, List() %d", len(all), len(names))
	}
	for i, p := range all {
		if p.Name() != names[i] {
			t.Errorf("All()[%d] = %s, want %s", i, p.Name(), names[i])
		}
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Database.User = "root"
	for _, p := range pipelines.All() {
		if err := p.Validate(cfg); err != nil {
			t.Errorf("%s: default config should validate: %v", p.Name(), err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	for i := 0; i < b.N; i++ {
		pipelines.Get("sales")
	}
}
