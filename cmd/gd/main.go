// Package main runs the gd command-line tool.
package main

import (
	"context"
	"flag"
	"os"

	gdcmd "github.com/louisbranch/geometrydash/internal/cmd/gd"
	entrypoint "github.com/louisbranch/geometrydash/internal/platform/cmd"
	"github.com/louisbranch/geometrydash/internal/platform/config"
)

func main() {
	cfg, err := gdcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("%v", err)
	}
	entrypoint.Main("gd", func(ctx context.Context) error {
		return gdcmd.Run(ctx, cfg, os.Stdout)
	})
}
