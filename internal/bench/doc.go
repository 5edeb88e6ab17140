// Package bench drives synthetic allocation workloads against a memory
// resource handle.
//
// A Runner spawns a configurable number of workers. Each worker clones the
// handle, allocates buffers with pseudo-random sizes, holds a bounded window
// of live buffers to simulate realistic residency, and releases its clone on
// exit. An optional rate limiter caps the aggregate allocation rate and can
// be retuned while the workload runs, which the serve command uses for
// config-driven adjustment.
package bench
