// Package main is the entry point for pgedge-bookdw.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-bookdw/internal/cli"

	// Register pipeline steps
	_ "github.com/pgEdge/pgedge-bookdw/internal/steps/export"
	_ "github.com/pgEdge/pgedge-bookdw/internal/steps/load"
	_ "github.com/pgEdge/pgedge-bookdw/internal/steps/report"
	_ "github.com/pgEdge/pgedge-bookdw/internal/steps/transform"
	_ "github.com/pgEdge/pgedge-bookdw/internal/steps/visualize"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
