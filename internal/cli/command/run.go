// Package command provides CLI command definitions for memres-bench.
package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"github.com/nvalden/memres-go/internal/bench"
	"github.com/nvalden/memres-go/internal/telemetry/logger"
)

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Execute one allocation workload and print a summary",
		Flags:  append(workloadFlags(), resourceFlags()...),
		Action: runWorkload,
	}
}

// workloadFlags returns the flags controlling workload shape.
func workloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Concurrent allocating workers",
			Value:   4,
		},
		&cli.IntFlag{
			Name:    "ops",
			Aliases: []string{"n"},
			Usage:   "Allocations per worker",
			Value:   100000,
		},
		&cli.StringFlag{
			Name:  "min-size",
			Usage: "Smallest request size (e.g., 16B)",
			Value: "16B",
		},
		&cli.StringFlag{
			Name:  "max-size",
			Usage: "Largest request size (e.g., 4KiB)",
			Value: "4KiB",
		},
		&cli.IntFlag{
			Name:  "align",
			Usage: "Request alignment, power of two",
			Value: 8,
		},
		&cli.IntFlag{
			Name:  "hold",
			Usage: "Live buffers each worker holds before recycling",
			Value: 16,
		},
		&cli.Float64Flag{
			Name:  "rate",
			Usage: "Aggregate allocations per second, 0 for unlimited",
		},
	}
}

// parseBenchConfig extracts the workload config from CLI flags.
func parseBenchConfig(c *cli.Context) (bench.Config, error) {
	cfg := bench.Config{
		Workers: c.Int("workers"),
		Ops:     c.Int("ops"),
		Align:   c.Int("align"),
		Hold:    c.Int("hold"),
		Rate:    c.Float64("rate"),
	}

	minSize, err := humanize.ParseBytes(c.String("min-size"))
	if err != nil {
		return bench.Config{}, fmt.Errorf("invalid min-size: %w", err)
	}
	maxSize, err := humanize.ParseBytes(c.String("max-size"))
	if err != nil {
		return bench.Config{}, fmt.Errorf("invalid max-size: %w", err)
	}
	cfg.MinSize = int(minSize)
	cfg.MaxSize = int(maxSize)

	return cfg, cfg.Verify()
}

func runWorkload(c *cli.Context) error {
	log := logger.Default()

	cfg, err := parseBenchConfig(c)
	if err != nil {
		return err
	}
	spec, err := parseResourceSpec(c)
	if err != nil {
		return err
	}

	// Arenas are single-owner: bump allocation is not synchronized.
	if spec.Kind == "arena" && cfg.Workers > 1 {
		log.Warn("arena is not thread-safe, forcing a single worker")
		cfg.Workers = 1
	}

	h, err := BuildHandle(spec, traceLogger(c))
	if err != nil {
		return err
	}
	defer h.Release()

	runner, err := bench.NewRunner(h, cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Workload summary (%s)\n", spec.Kind)
	fmt.Printf("  Allocations: %s\n", humanize.Comma(res.Ops))
	fmt.Printf("  Failures:    %s\n", humanize.Comma(res.Failures))
	fmt.Printf("  Requested:   %s\n", humanize.IBytes(uint64(res.Bytes)))
	fmt.Printf("  Elapsed:     %s\n", res.Elapsed)
	fmt.Printf("  Throughput:  %s ops/s\n", humanize.CommafWithDigits(res.Throughput(), 0))

	if spec.Checked && h.NeedsRelease() {
		if tr := findTracker(h.Resource()); tr != nil {
			fmt.Printf("  Leaked:      %d allocations, %s\n",
				tr.Outstanding(), humanize.IBytes(uint64(tr.LiveBytes())))
		}
	}
	return nil
}

// traceLogger builds the hclog logger used by the trace decorator.
func traceLogger(c *cli.Context) hclog.Logger {
	if !c.Bool("trace") {
		return nil
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "memres",
		Level:  hclog.Trace,
		Output: os.Stderr,
	})
}
