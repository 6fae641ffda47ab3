package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "https://api.vpn.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wg0", cfg.WGInterface)
	assert.Equal(t, 1000, cfg.LogCapacity)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.SpeedTest.PingSamples)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("VPN_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default().APIBaseURL, cfg.APIBaseURL)
}

func TestLoadReadsTOMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VPN_DATA_DIR", dir)

	content := `
api_base_url = "https://api.test.example.com"
wg_interface = "wg7"
log_capacity = 250
request_timeout_seconds = 10

[speedtest]
download_url = "https://speed.test.example.com/down"
ping_samples = 9
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.test.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wg7", cfg.WGInterface)
	assert.Equal(t, 250, cfg.LogCapacity)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "https://speed.test.example.com/down", cfg.SpeedTest.DownloadURL)
	assert.Equal(t, 9, cfg.SpeedTest.PingSamples)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VPN_DATA_DIR", dir)
	t.Setenv("VPN_API_URL", "https://api.env.example.com")
	t.Setenv("VPN_WG_IFACE", "wg9")
	t.Setenv("VPN_LOG_CAPACITY", "42")

	content := `api_base_url = "https://api.file.example.com"`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.env.example.com", cfg.APIBaseURL)
	assert.Equal(t, "wg9", cfg.WGInterface)
	assert.Equal(t, 42, cfg.LogCapacity)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VPN_DATA_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("api_base_url = ["), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestBadLogCapacityEnvIgnored(t *testing.T) {
	t.Setenv("VPN_DATA_DIR", t.TempDir())
	t.Setenv("VPN_LOG_CAPACITY", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.LogCapacity)
}
