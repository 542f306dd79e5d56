package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloader/pkg/config"
)

func TestExampleConfigIsValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "igloader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0644))

	cfg, err := config.Load(path, nil)
	require.NoError(t, err)

	defaults := config.DefaultConfig()
	assert.Equal(t, defaults.Polling, cfg.Polling)
	assert.Equal(t, defaults.Download.ItemDelay, cfg.Download.ItemDelay)
	assert.Equal(t, 60*time.Second, cfg.Download.DownloadTimeout)
}

func TestMaskProxy(t *testing.T) {
	assert.Equal(t, "", maskProxy(""))
	assert.Equal(t, "10.0.0.1:8080", maskProxy("10.0.0.1:8080"))
	assert.Equal(t, "10.0.0.1:8080:user:********", maskProxy("10.0.0.1:8080:user:secret"))
}

func TestFlagMap(t *testing.T) {
	t.Cleanup(func() { baseURL, outputDir, noColor = "", "", false })

	assert.Empty(t, flagMap(nil))

	baseURL = "http://backend:5000"
	outputDir = "/tmp/out"
	noColor = true
	flags := flagMap(nil)
	assert.Equal(t, "http://backend:5000", flags["base-url"])
	assert.Equal(t, "/tmp/out", flags["output"])
	assert.Equal(t, true, flags["no-color"])
	assert.NotContains(t, flags, "notifications-enabled")

	cfg := config.DefaultConfig()
	cfg.MergeCommandLineFlags(flags)
	assert.Equal(t, "http://backend:5000", cfg.Backend.BaseURL)
	assert.True(t, cfg.UI.NoColor)
}
