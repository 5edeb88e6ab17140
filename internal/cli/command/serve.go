// Package command provides CLI command definitions for memres-bench.
package command

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/nvalden/memres-go/internal/bench"
	"github.com/nvalden/memres-go/internal/infra/confloader"
	"github.com/nvalden/memres-go/internal/infra/shutdown"
	"github.com/nvalden/memres-go/internal/telemetry/logger"
	"github.com/nvalden/memres-go/internal/telemetry/metric"
	"github.com/nvalden/memres-go/pkg/memres"
)

// ServeCommand returns the serve command.
func ServeCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Usage: "Listen address for the metrics endpoint",
			Value: ":9090",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file to watch for live workload retuning",
			EnvVars: []string{"MEMRES_CONFIG"},
		},
	}
	flags = append(flags, workloadFlags()...)
	flags = append(flags, resourceFlags()...)

	return &cli.Command{
		Name:   "serve",
		Usage:  "Run workloads continuously and expose Prometheus metrics",
		Flags:  flags,
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	log := logger.Default()

	cfg, err := parseBenchConfig(c)
	if err != nil {
		return err
	}
	spec, err := parseResourceSpec(c)
	if err != nil {
		return err
	}
	if spec.Kind == "arena" && cfg.Workers > 1 {
		log.Warn("arena is not thread-safe, forcing a single worker")
		cfg.Workers = 1
	}

	reg := prometheus.NewRegistry()
	h, err := BuildHandle(spec, traceLogger(c), func(res memres.Resource) (memres.Resource, error) {
		return metric.New(res, spec.Kind, reg)
	})
	if err != nil {
		return err
	}
	defer h.Release()

	runner, err := bench.NewRunner(h, cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Workload loop: repeat the configured run until shutdown.
	workloadDone := make(chan struct{})
	go func() {
		defer close(workloadDone)
		for ctx.Err() == nil {
			if _, err := runner.Run(ctx); err != nil {
				return
			}
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: c.String("addr"), Handler: mux}
	go func() {
		log.Info("metrics endpoint listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	watcher, err := watchConfig(c.String("config"), runner, log)
	if err != nil {
		return err
	}

	handler := shutdown.NewHandler(10 * time.Second)
	handler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down metrics server")
		return srv.Shutdown(ctx)
	})
	handler.OnShutdown(func(context.Context) error {
		cancel()
		<-workloadDone
		return nil
	})
	if watcher != nil {
		handler.OnShutdown(func(context.Context) error {
			return watcher.Stop()
		})
	}

	log.Info("serving, press Ctrl+C to stop")
	return handler.Wait()
}

// watchConfig starts a file watcher that retunes the workload on config
// changes. Returns nil when no config file is given.
func watchConfig(path string, runner *bench.Runner, log logger.Logger) (*confloader.Watcher, error) {
	if path == "" {
		return nil, nil
	}

	watcher, err := confloader.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		applyReload(path, runner, log)
	})
	watcher.Start()
	log.Info("watching config for changes", "path", path)
	return watcher, nil
}

// applyReload re-reads the config file and applies the tunable keys.
// Keys absent from the file leave the running values alone, so touching
// an unrelated file never disturbs the operator's flags.
func applyReload(path string, runner *bench.Runner, log logger.Logger) {
	if log == nil {
		log = logger.Default()
	}
	loader := confloader.NewLoader()
	if err := loader.LoadFile(path); err != nil {
		log.Error("config reload failed", "error", err)
		return
	}
	if loader.Exists("bench.rate") {
		runner.SetRate(float64(loader.GetInt("bench.rate")))
	}
	if level := loader.GetString("log.level"); level != "" {
		logger.SetLevel(level)
		log.Info("log level adjusted", "level", level)
	}
}
