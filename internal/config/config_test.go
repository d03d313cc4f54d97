package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(New())

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 500, cfg.IndexerPageSize)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.IndexerTimeout)
	assert.Equal(t, "github", cfg.HighlightLightStyle)
	assert.Equal(t, "dracula", cfg.HighlightDarkStyle)
	assert.Empty(t, cfg.UpdateToken)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SITUS_LISTEN_ADDR", ":9090")
	t.Setenv("SITUS_DATABASE_DRIVER", "Postgres")
	t.Setenv("SITUS_INDEXER_PAGE_SIZE", "-3")
	t.Setenv("SITUS_UPDATE_TOKEN", "  secret ")
	t.Setenv("SITUS_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SITUS_ROOT_URL", "https://situs.example/")
	t.Setenv("SITUS_INDEXER_TIMEOUT", "2s")
	t.Setenv("SITUS_HIGHLIGHT_DARK_STYLE", "monokai")

	cfg := Load(New())

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 500, cfg.IndexerPageSize, "invalid page size falls back")
	assert.Equal(t, "secret", cfg.UpdateToken)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://situs.example", cfg.RootURL)
	assert.Equal(t, 2*time.Second, cfg.IndexerTimeout)
	assert.Equal(t, "monokai", cfg.HighlightDarkStyle)
}
