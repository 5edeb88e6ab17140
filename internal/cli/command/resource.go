// Package command provides CLI command definitions for memres-bench.
package command

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/nvalden/memres-go/pkg/memres"
	"github.com/nvalden/memres-go/pkg/memres/arena"
	"github.com/nvalden/memres-go/pkg/memres/checked"
	"github.com/nvalden/memres-go/pkg/memres/slab"
	"github.com/nvalden/memres-go/pkg/memres/traced"
)

// ResourceSpec describes which resource to benchmark and how to decorate it.
type ResourceSpec struct {
	// Kind selects the resource: heap, arena, or slab.
	Kind string
	// ChunkSize is the arena chunk size in bytes.
	ChunkSize int
	// MaxCapacity bounds total arena memory. Zero means unbounded.
	MaxCapacity int
	// PoolMaxSize is the largest pooled class size for slab.
	PoolMaxSize int
	// Checked wraps the resource in a live-allocation tracker.
	Checked bool
	// Trace wraps the resource in an hclog tracing decorator.
	Trace bool
}

// resourceFlags returns the flags shared by run and serve.
func resourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "resource",
			Aliases: []string{"r"},
			Usage:   "Resource under test: heap, arena, slab",
			Value:   "slab",
		},
		&cli.StringFlag{
			Name:  "chunk-size",
			Usage: "Arena chunk size (e.g., 64KiB)",
			Value: "64KiB",
		},
		&cli.StringFlag{
			Name:  "max-capacity",
			Usage: "Arena capacity bound (e.g., 256MiB), 0 for unbounded",
			Value: "0",
		},
		&cli.StringFlag{
			Name:  "pool-max-size",
			Usage: "Largest pooled slab class (e.g., 64KiB)",
			Value: "64KiB",
		},
		&cli.BoolFlag{
			Name:  "checked",
			Usage: "Track live allocations and verify deallocation discipline",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every allocation and deallocation at trace level",
		},
	}
}

// parseResourceSpec extracts the resource spec from CLI flags.
func parseResourceSpec(c *cli.Context) (ResourceSpec, error) {
	spec := ResourceSpec{
		Kind:    c.String("resource"),
		Checked: c.Bool("checked"),
		Trace:   c.Bool("trace"),
	}

	for _, f := range []struct {
		flag string
		dst  *int
	}{
		{"chunk-size", &spec.ChunkSize},
		{"max-capacity", &spec.MaxCapacity},
		{"pool-max-size", &spec.PoolMaxSize},
	} {
		n, err := humanize.ParseBytes(c.String(f.flag))
		if err != nil {
			return ResourceSpec{}, fmt.Errorf("invalid %s: %w", f.flag, err)
		}
		*f.dst = int(n)
	}
	return spec, nil
}

// BuildHandle constructs the handle described by spec. Extra decorators are
// applied outermost-last, after the spec's own checked and trace layers. The
// returned handle owns the instance; the caller releases it when done.
func BuildHandle(spec ResourceSpec, log hclog.Logger, decorate ...func(memres.Resource) (memres.Resource, error)) (memres.Handle, error) {
	return memres.MakeShared(func() (memres.Resource, error) {
		var res memres.Resource
		switch spec.Kind {
		case "heap":
			res = memres.Default().Resource()
		case "arena":
			opts := []arena.Option{arena.WithChunkSize(spec.ChunkSize)}
			if spec.MaxCapacity > 0 {
				opts = append(opts, arena.WithMaxCapacity(spec.MaxCapacity))
			}
			res = arena.New(opts...)
		case "slab":
			res = slab.New(slab.WithMaxSize(spec.PoolMaxSize))
		default:
			return nil, fmt.Errorf("unknown resource kind %q", spec.Kind)
		}

		if spec.Checked {
			res = checked.Wrap(res)
		}
		if spec.Trace {
			res = traced.Wrap(res, log)
		}
		for _, d := range decorate {
			wrapped, err := d(res)
			if err != nil {
				return nil, err
			}
			res = wrapped
		}
		return res, nil
	})
}

// findTracker walks the decorator chain looking for the live-allocation
// tracker, if one was layered in.
func findTracker(res memres.Resource) *checked.Tracker {
	for res != nil {
		if tr, ok := res.(*checked.Tracker); ok {
			return tr
		}
		u, ok := res.(interface{ Unwrap() memres.Resource })
		if !ok {
			return nil
		}
		res = u.Unwrap()
	}
	return nil
}
