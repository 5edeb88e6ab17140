// Package main provides the entry point for memres-bench.
//
// The tool exercises memory resources with configurable workloads:
//
//   - Resource selection (heap, arena, slab) with decorator layering
//   - Worker count, request size range, alignment, and residency window
//   - Rate limiting with live retuning from a watched config file
//   - Prometheus metrics in serve mode
//
// Usage:
//
//	memres-bench run --resource slab --workers 8 --max-size 4KiB
//	memres-bench serve --addr :9090 --config bench.yaml
//	memres-bench version
package main
