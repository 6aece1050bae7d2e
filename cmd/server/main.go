// Package main starts the REST server process lifecycle.
package main

import (
	"context"
	"flag"
	"os"

	servercmd "github.com/louisbranch/geometrydash/internal/cmd/server"
	entrypoint "github.com/louisbranch/geometrydash/internal/platform/cmd"
	"github.com/louisbranch/geometrydash/internal/platform/config"
)

func main() {
	cfg, err := servercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	entrypoint.Main("server", func(ctx context.Context) error {
		return servercmd.Run(ctx, cfg)
	})
}
