package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func setPostgresEnv(t *testing.T) {
	t.Helper()

	t.Setenv("POSTGRES_USER", "user")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_DB", "turnarounds")
}

func TestLoadPath(t *testing.T) {
	setPostgresEnv(t)

	tests := []struct {
		name    string
		body    string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "defaults",
			body: "postgres:\n  host: db\nserver:\n  port: \"9000\"\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "local", cfg.Env)
				assert.Equal(t, "db", cfg.Postgres.Host)
				assert.Equal(t, "9000", cfg.Server.Port)
				assert.Equal(t, "turnaround_changes", cfg.Feed.Channel)
				assert.Equal(t, 10*time.Second, cfg.Feed.MinReconnect)
				assert.Equal(t, time.Minute, cfg.Feed.MaxReconnect)
				assert.Equal(t, 64, cfg.Feed.Buffer)
				assert.True(t, cfg.Aggregator.Enabled)
				assert.Equal(t, "uid", cfg.Visibility.Match)
				assert.False(t, cfg.Store.CompareAndSet)
			},
		},
		{
			name: "overrides",
			body: "env: prod\npostgres:\n  host: db\nserver:\n  port: \"9000\"\n" +
				"visibility:\n  match: triple\nstore:\n  compare_and_set: true\naggregator:\n  enabled: false\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "prod", cfg.Env)
				assert.Equal(t, "triple", cfg.Visibility.Match)
				assert.True(t, cfg.Store.CompareAndSet)
				assert.False(t, cfg.Aggregator.Enabled)
			},
		},
		{
			name:    "unknown visibility mode",
			body:    "postgres:\n  host: db\nvisibility:\n  match: name\n",
			wantErr: "unknown visibility.match",
		},
		{
			name:    "reconnect bounds inverted",
			body:    "postgres:\n  host: db\nfeed:\n  min_reconnect: 2m\n  max_reconnect: 1m\n",
			wantErr: "reconnect",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadPath(writeConfig(t, tt.body))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yml"))

	_, err = Load()
	require.Error(t, err)
	assert.Panics(t, func() { MustLoad() })
}
