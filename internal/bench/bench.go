// Package bench drives synthetic allocation workloads.
package bench

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/nvalden/memres-go/internal/telemetry/logger"
	"github.com/nvalden/memres-go/pkg/memres"
)

// Config controls a workload run.
type Config struct {
	// Workers is the number of concurrent allocating goroutines.
	Workers int
	// Ops is the number of allocations each worker performs.
	Ops int
	// MinSize and MaxSize bound the pseudo-random request sizes.
	MinSize int
	MaxSize int
	// Align is the alignment of every request. Must be a power of two.
	Align int
	// Hold is how many live buffers each worker keeps before recycling
	// the oldest. Zero means allocate-then-free immediately.
	Hold int
	// Rate caps aggregate allocations per second across all workers.
	// Zero or negative means unlimited.
	Rate float64
}

// Verify checks the configuration for usability.
func (c Config) Verify() error {
	if c.Workers <= 0 {
		return fmt.Errorf("bench: workers must be positive, got %d", c.Workers)
	}
	if c.Ops <= 0 {
		return fmt.Errorf("bench: ops must be positive, got %d", c.Ops)
	}
	if c.MinSize < 0 || c.MaxSize < c.MinSize {
		return fmt.Errorf("bench: invalid size range [%d, %d]", c.MinSize, c.MaxSize)
	}
	if c.Align <= 0 || c.Align&(c.Align-1) != 0 {
		return fmt.Errorf("bench: align must be a power of two, got %d", c.Align)
	}
	return nil
}

// Result summarizes a completed workload.
type Result struct {
	// Ops is the number of successful allocations.
	Ops int64
	// Failures is the number of failed allocation requests.
	Failures int64
	// Bytes is the total requested size across successful allocations.
	Bytes int64
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Throughput returns successful allocations per second.
func (r Result) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Elapsed.Seconds()
}

// Runner executes workloads against one resource handle.
type Runner struct {
	handle  memres.Handle
	cfg     Config
	limiter *rate.Limiter
	log     logger.Logger

	ops      atomic.Int64
	failures atomic.Int64
	bytes    atomic.Int64
}

// NewRunner builds a runner for the given handle. The handle is cloned per
// worker during Run; the caller keeps ownership of the one passed in.
func NewRunner(h memres.Handle, cfg Config, log logger.Logger) (*Runner, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers)
	}

	return &Runner{
		handle:  h,
		cfg:     cfg,
		limiter: limiter,
		log:     log,
	}, nil
}

// Rate returns the current aggregate allocation cap in ops per second, or
// 0 when the runner is unlimited.
func (r *Runner) Rate() float64 {
	if r.limiter == nil {
		return 0
	}
	limit := r.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

// SetRate retunes the aggregate allocation rate while a run is in flight.
// A non-positive value lifts the cap for runners built with one.
func (r *Runner) SetRate(opsPerSec float64) {
	if r.limiter == nil {
		return
	}
	limit := rate.Limit(opsPerSec)
	if opsPerSec <= 0 {
		limit = rate.Inf
	}
	r.limiter.SetLimit(limit)
	r.log.Info("workload rate adjusted", "ops_per_sec", opsPerSec)
}

// Run executes the workload and blocks until every worker finishes or ctx
// is canceled. On cancellation the partial result is returned together with
// the context error.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	r.ops.Store(0)
	r.failures.Store(0)
	r.bytes.Store(0)

	r.log.Info("workload starting",
		"workers", r.cfg.Workers,
		"ops_per_worker", r.cfg.Ops,
		"size_range", fmt.Sprintf("[%d, %d]", r.cfg.MinSize, r.cfg.MaxSize),
	)

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < r.cfg.Workers; w++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			r.worker(ctx, seed)
		}(uint64(w + 1))
	}
	wg.Wait()

	res := Result{
		Ops:      r.ops.Load(),
		Failures: r.failures.Load(),
		Bytes:    r.bytes.Load(),
		Elapsed:  time.Since(start),
	}

	r.log.Info("workload finished",
		"ops", res.Ops,
		"failures", res.Failures,
		"elapsed", res.Elapsed.String(),
	)
	return res, ctx.Err()
}

// held is one live buffer awaiting recycling.
type held struct {
	buf  []byte
	size int
}

func (r *Runner) worker(ctx context.Context, seed uint64) {
	h := r.handle.Clone()
	defer h.Release()

	rng := rand.New(rand.NewPCG(seed, seed<<17))
	window := make([]held, 0, r.cfg.Hold)
	release := h.NeedsRelease()

	defer func() {
		if release {
			for _, hb := range window {
				h.Deallocate(hb.buf, hb.size, r.cfg.Align)
			}
		}
	}()

	for i := 0; i < r.cfg.Ops; i++ {
		if ctx.Err() != nil {
			return
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return
			}
		}

		size := r.cfg.MinSize
		if r.cfg.MaxSize > r.cfg.MinSize {
			size += rng.IntN(r.cfg.MaxSize - r.cfg.MinSize + 1)
		}

		buf, err := h.Allocate(size, r.cfg.Align)
		if err != nil {
			r.failures.Add(1)
			continue
		}
		if size > 0 {
			buf[0] = byte(i)
			buf[size-1] = byte(i >> 8)
		}
		r.ops.Add(1)
		r.bytes.Add(int64(size))

		if r.cfg.Hold <= 0 {
			if release {
				h.Deallocate(buf, size, r.cfg.Align)
			}
			continue
		}
		if len(window) == r.cfg.Hold {
			oldest := window[0]
			copy(window, window[1:])
			window = window[:len(window)-1]
			if release {
				h.Deallocate(oldest.buf, oldest.size, r.cfg.Align)
			}
		}
		window = append(window, held{buf: buf, size: size})
	}
}
