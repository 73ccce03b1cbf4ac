package gqlserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/vito/catalog/pkg/catalog"
)

const (
	DefaultListen = ":5000"
	DefaultPath   = "/graphql"
)

// Options configure the HTTP server.
type Options struct {
	// Listen is the TCP address to listen on. Use ":0" for any free port.
	Listen string

	// Path is where the GraphQL endpoint is mounted.
	Path string

	// Playground serves an in-browser IDE at / and for browser GETs on Path.
	Playground bool

	// ReadHeaderTimeout bounds how long a client may take to send headers.
	ReadHeaderTimeout time.Duration

	Schema SchemaOptions
	Logger *slog.Logger
}

type Server struct {
	httpServer *http.Server
	listener   net.Listener
	port       int
	path       string
	logger     *slog.Logger
}

// NewMux builds the HTTP routes for the catalog endpoint.
func NewMux(store *catalog.Store, opts Options) (http.Handler, error) {
	schema, err := NewSchema(store, opts.Schema)
	if err != nil {
		return nil, err
	}

	path := opts.Path
	if path == "" {
		path = DefaultPath
	}

	gql := &Handler{
		Schema: schema,
		Logger: opts.Logger,
	}

	mux := http.NewServeMux()
	if opts.Playground {
		ide := playground.Handler("Catalog playground", path)
		gql.Playground = ide
		if path != "/" {
			mux.Handle("/{$}", ide)
		}
	}
	mux.Handle(path, gql)
	return mux, nil
}

// StartServer starts the catalog endpoint in the background and returns once
// it is listening.
func StartServer(store *catalog.Store, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
		opts.Logger = logger
	}
	if opts.Listen == "" {
		opts.Listen = DefaultListen
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	mux, err := NewMux(store, opts)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port

	httpServer := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	server := &Server{
		httpServer: httpServer,
		listener:   listener,
		port:       port,
		path:       opts.Path,
		logger:     logger,
	}

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("graphql server error", "error", err)
		}
	}()

	logger.Info("server running", "url", server.QueryURL(), "playground", opts.Playground)

	return server, nil
}

// Stop gracefully stops the server, waiting for in-flight requests until ctx
// is done.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(ctx)
}

// URL returns the server's base URL
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// QueryURL returns the GraphQL query endpoint URL
func (s *Server) QueryURL() string {
	return s.URL() + s.path
}
