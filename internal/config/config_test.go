package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Defaults fill missing keys", func(t *testing.T) {
		// Given: a config file with only the port set
		path := writeConfig(t, "http-port: \"8081\"\n")

		// When: the config is loaded
		conf, err := Load(path)

		// Then: everything else falls back to defaults
		require.NoError(t, err)
		assert.Equal(t, "8081", conf.HTTPPort)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, BackendRedis, conf.Tally.Backend)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "fourrow.db", conf.SQLiteStoragePath)
	})

	t.Run("Nested keys are read", func(t *testing.T) {
		// Given: a config selecting the sqlite backend
		path := writeConfig(t, "tally:\n  backend: sqlite\nsqlite-storage-path: /tmp/t.db\nredis:\n  host: cache\n  port: \"7000\"\n")

		// When: the config is loaded
		conf, err := Load(path)

		// Then: the nested values are used
		require.NoError(t, err)
		assert.Equal(t, BackendSQLite, conf.Tally.Backend)
		assert.Equal(t, "/tmp/t.db", conf.SQLiteStoragePath)
		assert.Equal(t, "cache:7000", conf.Redis.GetRedisAddr())
	})

	t.Run("Env overrides file", func(t *testing.T) {
		// Given: a file backend overridden by env
		path := writeConfig(t, "tally:\n  backend: redis\n")
		t.Setenv("TALLY_BACKEND", "memory")

		// When: the config is loaded
		conf, err := Load(path)

		// Then: the env value wins
		require.NoError(t, err)
		assert.Equal(t, BackendMemory, conf.Tally.Backend)
	})

	t.Run("Unknown backend", func(t *testing.T) {
		// Given: an unsupported backend
		path := writeConfig(t, "tally:\n  backend: postgres\n")

		// When: the config is loaded
		conf, err := Load(path)

		// Then: ErrUnknownBackend is returned
		require.ErrorIs(t, err, ErrUnknownBackend)
		assert.Nil(t, conf)
	})

	t.Run("Missing file", func(t *testing.T) {
		// When: the file does not exist
		_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))

		// Then: an error is returned
		require.Error(t, err)
	})

	t.Run("MustLoad panics on error", func(t *testing.T) {
		assert.Panics(t, func() {
			MustLoad(filepath.Join(t.TempDir(), "nope.yml"))
		})
	})
}
