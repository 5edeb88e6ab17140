// Package command provides CLI command definitions for memres-bench.
//
// It uses urfave/cli/v2 for command parsing. The binary exposes three
// commands:
//
//   - run: execute one allocation workload and print a summary
//   - serve: run workloads continuously with a Prometheus /metrics endpoint
//   - version: print build information
package command
