package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/phrazzld/tasklane-api/internal/config"
	"github.com/phrazzld/tasklane-api/internal/platform/logger"
)

const (
	flagOwnerID = "owner-id"
	flagFile    = "file"
)

// loadConfig loads configuration and installs the default logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Server.Version == "dev" {
		cfg.Server.Version = version
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)
	return cfg, log, nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Action: func(cCtx *cli.Context) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cCtx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return app.startHTTPServer(ctx, app.setupRouter())
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import tasks from a CSV file for a user",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     flagOwnerID,
				Aliases:  []string{"u"},
				Usage:    "id of the user who will own the imported tasks",
				Required: true,
			},
			&cli.StringFlag{
				Name:     flagFile,
				Aliases:  []string{"f"},
				Usage:    "path to the CSV file (use '-' for stdin)",
				Required: true,
			},
		},
		Action: func(cCtx *cli.Context) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := newApplication(cCtx.Context, cfg, log)
			if err != nil {
				return err
			}
			defer app.cleanup()

			ownerID := cCtx.Int64(flagOwnerID)
			if _, err := app.userStore.GetByID(cCtx.Context, ownerID); err != nil {
				return fmt.Errorf("owner %d: %w", ownerID, err)
			}

			in := os.Stdin
			if path := cCtx.String(flagFile); path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				in = f
			}

			res, err := app.taskService.Import(cCtx.Context, ownerID, in)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Fprintf(cCtx.App.Writer, "persisted %d tasks\n", res.Persisted)
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the server version",
		Action: func(cCtx *cli.Context) error {
			fmt.Fprintln(cCtx.App.Writer, version)
			return nil
		},
	}
}
