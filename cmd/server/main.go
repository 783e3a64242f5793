// Package main implements the entry point for the tasklane API server, which
// stores per-user task lists, imports them from CSV and streams their changes.
package main

import (
	"log/slog"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newCLIApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// newCLIApp builds the command tree. Command failures are logged by the exit
// handler and returned from Run.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "tasklane-api",
		Usage:   "task list API with CSV import and live change streams",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				EnvVars: []string{"TASKLANE_CONFIG_FILE"},
				Usage:   "configuration file to use",
			},
		},
		Before: func(cCtx *cli.Context) error {
			if path := cCtx.String("config"); path != "" {
				return os.Setenv("TASKLANE_CONFIG_FILE", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			importCommand(),
			versionCommand(),
		},
		DefaultCommand: "serve",
	}

	app.ExitErrHandler = func(cCtx *cli.Context, err error) {
		if err != nil {
			slog.ErrorContext(cCtx.Context, "command failed", slog.String("error", err.Error()))
		}
	}

	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}
