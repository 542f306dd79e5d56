package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://127.0.0.1:5000", cfg.Backend.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)

	assert.Equal(t, 5, cfg.Polling.InitialPageAttempts)
	assert.Equal(t, time.Second, cfg.Polling.InitialPageDelay)
	assert.Equal(t, 2*time.Second, cfg.Polling.LoadMoreCooldown)
	assert.Equal(t, 3*time.Second, cfg.Polling.TaskInterval)
	assert.Equal(t, 5*time.Second, cfg.Polling.HighlightInterval)

	assert.Equal(t, 500*time.Millisecond, cfg.Download.ItemDelay)
	assert.Equal(t, 3, cfg.Download.ConcurrentDownloads)
	assert.Equal(t, "./downloads", cfg.Output.BaseDirectory)
	assert.Equal(t, "en", cfg.UI.Language)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IGLOADER_BACKEND_URL", "http://backend.local:8080")
	t.Setenv("IGLOADER_PROXY", "host:1080:user:pass")
	t.Setenv("IGLOADER_TASK_INTERVAL", "10s")
	t.Setenv("IGLOADER_CONCURRENT_DOWNLOADS", "5")
	t.Setenv("IGLOADER_NOTIFICATIONS_ENABLED", "false")
	t.Setenv("IGLOADER_LOG_LEVEL", "debug")
	t.Setenv("IGLOADER_LANGUAGE", "vi")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://backend.local:8080", cfg.Backend.BaseURL)
	assert.Equal(t, "host:1080:user:pass", cfg.Backend.Proxy)
	assert.Equal(t, 10*time.Second, cfg.Polling.TaskInterval)
	assert.Equal(t, 5, cfg.Download.ConcurrentDownloads)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "vi", cfg.UI.Language)

	// untouched values keep their defaults
	assert.Equal(t, 5*time.Second, cfg.Polling.HighlightInterval)
	assert.Equal(t, "./downloads", cfg.Output.BaseDirectory)
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "igloader.yaml")

		testConfig := `
backend:
  base_url: http://10.0.0.2:5000
  timeout: 45s
  doc_id: "1234"

polling:
  initial_page_attempts: 3
  initial_page_delay: 250ms
  task_interval: 1s

output:
  base_directory: /file/output
  create_user_folders: false

download:
  concurrent_downloads: 2
  item_delay: 1s

logging:
  level: warn
  sentry_dsn: https://key@sentry.example.com/1
`
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(configPath))

		assert.Equal(t, "http://10.0.0.2:5000", cfg.Backend.BaseURL)
		assert.Equal(t, 45*time.Second, cfg.Backend.Timeout)
		assert.Equal(t, "1234", cfg.Backend.DocID)
		assert.Equal(t, 3, cfg.Polling.InitialPageAttempts)
		assert.Equal(t, 250*time.Millisecond, cfg.Polling.InitialPageDelay)
		assert.Equal(t, time.Second, cfg.Polling.TaskInterval)
		assert.Equal(t, 5*time.Second, cfg.Polling.HighlightInterval)
		assert.Equal(t, "/file/output", cfg.Output.BaseDirectory)
		assert.False(t, cfg.Output.CreateUserFolders)
		assert.Equal(t, 2, cfg.Download.ConcurrentDownloads)
		assert.Equal(t, time.Second, cfg.Download.ItemDelay)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "https://key@sentry.example.com/1", cfg.Logging.SentryDSN)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("backend:\n  base_url: [broken\n"), 0644))

		err := DefaultConfig().LoadFromFile(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("non-existent file", func(t *testing.T) {
		err := DefaultConfig().LoadFromFile("/non/existent/path/config.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: "backend base URL is required",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "127.0.0.1:5000/api" },
			wantErr: "not an absolute URL",
		},
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Polling.InitialPageAttempts = 0 },
			wantErr: "initial page attempts must be positive",
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Polling.TaskInterval = 0 },
			wantErr: "poll intervals must be positive",
		},
		{
			name:    "too many downloads",
			mutate:  func(c *Config) { c.Download.ConcurrentDownloads = 11 },
			wantErr: "should not exceed 10",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "chatty" },
			wantErr: "invalid log level",
		},
		{
			name:    "unsupported language",
			mutate:  func(c *Config) { c.UI.Language = "fr" },
			wantErr: "unsupported language",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"base-url":              "http://flags:9000",
		"output":                "/flag/out",
		"concurrent":            7,
		"notifications-enabled": false,
		"log-level":             "error",
		"language":              "vi",
		"timeout":               15 * time.Second,
		"unknown":               "ignored",
	})

	assert.Equal(t, "http://flags:9000", cfg.Backend.BaseURL)
	assert.Equal(t, "/flag/out", cfg.Output.BaseDirectory)
	assert.Equal(t, 7, cfg.Download.ConcurrentDownloads)
	assert.False(t, cfg.Notifications.Enabled)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "vi", cfg.UI.Language)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
}

func TestLoadPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
backend:
  base_url: http://file:5000
output:
  base_directory: /from/file
download:
  concurrent_downloads: 2
`), 0644))

	t.Setenv("IGLOADER_OUTPUT_DIR", "/from/env")
	t.Setenv("IGLOADER_CONCURRENT_DOWNLOADS", "4")

	cfg, err := Load(configPath, map[string]interface{}{
		"concurrent": 6,
	})
	require.NoError(t, err)

	assert.Equal(t, "http://file:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "/from/env", cfg.Output.BaseDirectory)
	assert.Equal(t, 6, cfg.Download.ConcurrentDownloads)
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("polling:\n  task_interval: 0s\n"), 0644))

	_, err := Load(configPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend.BaseURL = "http://saved:5000"
	cfg.Polling.HighlightInterval = 7 * time.Second
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "http://saved:5000", loaded.Backend.BaseURL)
	assert.Equal(t, 7*time.Second, loaded.Polling.HighlightInterval)
}
