// Package command provides CLI command definitions for memres-bench.
package command

import (
	"github.com/urfave/cli/v2"

	"github.com/nvalden/memres-go/internal/infra/buildinfo"
	"github.com/nvalden/memres-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "memres-bench",
		Usage:   "Allocation workload driver for memory resources",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			ServeCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			log, err := logger.New(logger.Config{
				Level:  c.String("log-level"),
				Format: c.String("log-format"),
			})
			if err != nil {
				return err
			}
			logger.SetDefault(log)
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"MEMRES_LOG_LEVEL"},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "log-format",
			Usage:   "Log format: json, text",
			EnvVars: []string{"MEMRES_LOG_FORMAT"},
			Value:   "text",
		},
	}
}
