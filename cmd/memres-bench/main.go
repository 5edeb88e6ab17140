// Package main provides the entry point for memres-bench.
//
// memres-bench drives synthetic allocation workloads against the memory
// resources in pkg/memres and reports throughput and leak statistics.
package main

import (
	"fmt"
	"os"

	"github.com/nvalden/memres-go/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
