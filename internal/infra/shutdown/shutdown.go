// Package shutdown coordinates graceful teardown of the bench tooling.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nvalden/memres-go/internal/telemetry/logger"
)

// Hook is one teardown step. Hooks run newest-first so dependents stop
// before the things they depend on: the metrics listener before the
// workload, the workload before its resource handle is released.
type Hook func(context.Context) error

// Handler waits for a termination signal and runs registered hooks.
type Handler struct {
	timeout time.Duration
	log     logger.Logger

	mu    sync.Mutex
	hooks []Hook
	done  chan struct{}
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used to report shutdown progress.
func WithLogger(log logger.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates a handler. timeout bounds the total time the hooks
// share once a signal arrives.
func NewHandler(timeout time.Duration, opts ...Option) *Handler {
	h := &Handler{
		timeout: timeout,
		log:     logger.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnShutdown registers a teardown hook.
func (h *Handler) OnShutdown(hook Hook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Wait blocks until SIGINT or SIGTERM arrives, then runs the hooks in
// reverse registration order under the configured timeout. Every hook
// runs even when earlier ones fail; the last error wins.
func (h *Handler) Wait() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	signal.Stop(sigCh)

	h.log.Info("shutdown signal received", "signal", sig.String())
	return h.run()
}

// run executes the hooks and closes the done channel.
func (h *Handler) run() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	hooks := make([]Hook, len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	var lastErr error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			h.log.Error("shutdown hook failed", "error", err)
			lastErr = err
		}
	}

	close(h.done)
	if lastErr == nil {
		h.log.Info("shutdown complete")
	}
	return lastErr
}

// Done returns a channel that closes once all hooks have run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
