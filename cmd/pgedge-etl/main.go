// Package main is the entry point for pgedge-etl.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-etl/internal/cli"

	// Register pipelines
	_ "github.com/pgEdge/pgedge-etl/internal/pipelines/banks"
	_ "github.com/pgEdge/pgedge-etl/internal/pipelines/berries"
	_ "github.com/pgEdge/pgedge-etl/internal/pipelines/sales"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
