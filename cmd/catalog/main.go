package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/vito/catalog/pkg/client"
	"github.com/vito/catalog/pkg/ioctx"
)

// Config holds the flags shared by every subcommand
type Config struct {
	Debug    bool
	Endpoint string
}

func main() {
	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, os.Stdout)
	ctx = ioctx.StderrToContext(ctx, os.Stderr)
	if err := fang.Execute(ctx, newRootCmd(),
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "GraphQL endpoint for an in-memory catalog of authors and books",
		Example: `  # Start the endpoint on :5000
  catalog serve

  # List books from a running endpoint
  catalog books

  # Add an author and one of their books
  catalog add-author "Ursula K. Le Guin"
  catalog add-book "A Wizard of Earthsea" --author-id 3

  # Send a raw document
  catalog query '{ authors { name books { name } } }'`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if cfg.Debug {
				level = slog.LevelDebug
			}
			logger := newLogger(cmd.Context(), level)
			slog.SetDefault(logger)
			cmd.SetContext(ioctx.LoggerToContext(cmd.Context(), logger))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.Endpoint, "endpoint", "", "GraphQL endpoint for client commands (default $CATALOG_ENDPOINT or "+client.DefaultEndpoint+")")

	rootCmd.AddCommand(
		serveCmd(&cfg),
		schemaCmd(),
		queryCmd(&cfg),
		booksCmd(&cfg),
		bookCmd(&cfg),
		authorsCmd(&cfg),
		authorCmd(&cfg),
		addAuthorCmd(&cfg),
		addBookCmd(&cfg),
	)

	return rootCmd
}

func newLogger(ctx context.Context, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(ioctx.StderrFromContext(ctx), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler)
}

func newClient(cfg *Config) *client.Client {
	clientCfg := client.LoadConfig()
	if cfg.Endpoint != "" {
		clientCfg.Endpoint = cfg.Endpoint
	}
	return client.New(clientCfg)
}
