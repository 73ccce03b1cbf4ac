package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/catalog/pkg/catalog"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `
listen = "127.0.0.1:8080"
playground = false
max_depth = 5
log_level = "debug"
shutdown_timeout = "3s"
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
		assert.Equal(t, "/graphql", cfg.Path)
		assert.False(t, cfg.Playground)
		assert.True(t, cfg.Introspection)
		assert.Equal(t, 5, cfg.MaxDepth)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
		assert.Equal(t, 10*time.Second, cfg.ReadHeaderTimeout)
		assert.Equal(t, catalog.DefaultSeed(), cfg.Seed)

		level, err := cfg.Level()
		require.NoError(t, err)
		assert.Equal(t, slog.LevelDebug, level)
	})

	t.Run("custom seed", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `
[[seed.authors]]
name = "Ursula K. Le Guin"

[[seed.books]]
name = "The Dispossessed"
author_id = 1
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, catalog.Seed{
			Authors: []catalog.SeedAuthor{{Name: "Ursula K. Le Guin"}},
			Books:   []catalog.SeedBook{{Name: "The Dispossessed", AuthorID: 1}},
		}, cfg.Seed)
	})

	t.Run("empty seed table", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "[seed]\n")
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Empty(t, cfg.Seed.Authors)
		assert.Empty(t, cfg.Seed.Books)
	})

	t.Run("unknown key", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `lisen = ":80"`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lisen")
	})

	t.Run("invalid path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `path = "graphql"`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path must start with /")
	})

	t.Run("zero shutdown timeout", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `shutdown_timeout = "0s"`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shutdown_timeout must be positive")
	})

	t.Run("invalid log level", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `log_level = "chatty"`)
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), `listen = `)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), FileName))
		require.Error(t, err)
	})
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	path, err := Find(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	want := writeConfig(t, root, `listen = ":0"`)
	path, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CATALOG_LISTEN", ":9999")
	t.Setenv("CATALOG_PATH", "/query")
	t.Setenv("CATALOG_LOG_LEVEL", "warn")
	t.Setenv("CATALOG_PLAYGROUND", "false")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, "/query", cfg.Path)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Playground)

	t.Setenv("CATALOG_PLAYGROUND", "maybe")
	require.Error(t, Default().ApplyEnv())
}

func TestServerOptions(t *testing.T) {
	cfg := Default()
	cfg.Introspection = false
	cfg.MaxDepth = 3

	opts := cfg.ServerOptions(slog.Default())
	assert.Equal(t, ":5000", opts.Listen)
	assert.Equal(t, "/graphql", opts.Path)
	assert.True(t, opts.Playground)
	assert.True(t, opts.Schema.DisableIntrospection)
	assert.Equal(t, 3, opts.Schema.MaxDepth)
}
