package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vito/catalog/pkg/catalog"
	"github.com/vito/catalog/pkg/config"
	"github.com/vito/catalog/pkg/gqlserver"
	"github.com/vito/catalog/pkg/ioctx"
)

func serveCmd(globals *Config) *cobra.Command {
	var (
		configPath   string
		listen       string
		noPlayground bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GraphQL endpoint",
		Long: `Starts the GraphQL endpoint and prints its URL as the first line on
stdout. The server runs until interrupted.

Settings come from catalog.toml (searched upward from the working directory
unless --config is given), then CATALOG_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServerConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if noPlayground {
				cfg.Playground = false
			}

			level, err := cfg.Level()
			if err != nil {
				return err
			}
			if globals.Debug {
				level = slog.LevelDebug
			}
			logger := newLogger(cmd.Context(), level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to catalog.toml")
	cmd.Flags().StringVarP(&listen, "listen", "l", gqlserver.DefaultListen, "Address to listen on")
	cmd.Flags().BoolVar(&noPlayground, "no-playground", false, "Disable the in-browser playground")

	return cmd
}

func loadServerConfig(path string) (*config.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path, err = config.Find(cwd)
		if err != nil {
			return nil, err
		}
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// serve runs the endpoint until ctx is done.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store := catalog.NewStore(cfg.Seed)
	books, authors := store.Len()
	logger.Debug("seeded store", "books", books, "authors", authors)

	server, err := gqlserver.StartServer(store, cfg.ServerOptions(logger))
	if err != nil {
		return err
	}

	// first line on stdout is the endpoint
	fmt.Fprintln(ioctx.StdoutFromContext(ctx), server.QueryURL())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	return nil
}
