// Package command provides CLI command definitions for memres-bench.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nvalden/memres-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			fmt.Printf("memres-bench %s\n", info.Version)
			fmt.Printf("  commit:     %s\n", info.Commit)
			fmt.Printf("  built:      %s\n", info.BuildTime)
			fmt.Printf("  go version: %s\n", info.GoVersion)
			return nil
		},
	}
}
