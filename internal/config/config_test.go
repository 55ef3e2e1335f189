package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFile(t *testing.T) {
	t.Run("full config", func(t *testing.T) {
		path := writeConfigFile(t, `
base_url    = "https://docs.example.com"
listen_addr = ":9000"
log_level   = "debug"

postgres {
  host   = "db.example.com"
  user   = "registry"
  dbname = "docregistry"
}

storage {
  sharepoint_base_url = "https://graph.microsoft.com/v1.0"
  confluence_base_url = "https://example.atlassian.net"
}

cache {
  brokers = ["kafka-1:9092", "kafka-2:9092"]
  topic   = "document-cache-invalidation"
}
`)

		cfg, err := FromFile(path)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "debug", cfg.LogLevel)

		require.NotNil(t, cfg.Postgres)
		assert.Equal(t, "db.example.com", cfg.Postgres.Host)
		assert.Equal(t, 5432, cfg.Postgres.Port, "port defaults")
		assert.Equal(t, "disable", cfg.Postgres.SSLMode, "sslmode defaults")

		require.NotNil(t, cfg.Cache)
		assert.Len(t, cfg.Cache.Brokers, 2)
	})

	t.Run("defaults fill in", func(t *testing.T) {
		path := writeConfigFile(t, `
sqlite {
  path = "registry.db"
}
`)

		cfg, err := FromFile(path)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())

		assert.Equal(t, ":8000", cfg.ListenAddr)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("unparseable file errors", func(t *testing.T) {
		path := writeConfigFile(t, `listen_addr = `)
		_, err := FromFile(path)
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("requires a database", func(t *testing.T) {
		cfg := Config{}
		cfg.applyDefaults()
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects two databases", func(t *testing.T) {
		cfg := Config{
			Postgres: &Postgres{Host: "h", User: "u", DBName: "d"},
			SQLite:   &SQLite{Path: "p.db"},
		}
		cfg.applyDefaults()
		assert.Error(t, cfg.Validate())
	})

	t.Run("incomplete cache block accumulates all problems", func(t *testing.T) {
		cfg := Config{Cache: &Cache{}}
		cfg.applyDefaults()

		err := cfg.Validate()
		require.Error(t, err)
		// No database, no brokers, no topic.
		assert.Contains(t, err.Error(), "postgres or a sqlite block")
		assert.Contains(t, err.Error(), "broker")
		assert.Contains(t, err.Error(), "topic")
	})
}
