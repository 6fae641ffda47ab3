// Package config loads client settings from an optional TOML file with
// environment overrides.
//
// Env:
//
//	VPN_API_URL, VPN_WS_URL, VPN_DATA_DIR, VPN_WG_IFACE, VPN_LOG_CAPACITY
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full client configuration.
type Config struct {
	APIBaseURL     string        `toml:"api_base_url"`
	WSURL          string        `toml:"ws_url"`
	DataDir        string        `toml:"data_dir"`
	WGInterface    string        `toml:"wg_interface"`
	LogCapacity    int           `toml:"log_capacity"`
	RequestTimeout time.Duration `toml:"-"`
	SpeedTest      SpeedTest     `toml:"speedtest"`

	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// SpeedTest holds the speed-test target endpoints.
type SpeedTest struct {
	DownloadURL string `toml:"download_url"`
	UploadURL   string `toml:"upload_url"`
	PingHost    string `toml:"ping_host"`
	PingSamples int    `toml:"ping_samples"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		APIBaseURL:            "https://api.vpn.example.com",
		WSURL:                 "wss://api.vpn.example.com/ws",
		DataDir:               filepath.Join(home, ".config", "vpn-client"),
		WGInterface:           "wg0",
		LogCapacity:           1000,
		RequestTimeout:        30 * time.Second,
		RequestTimeoutSeconds: 30,
		SpeedTest: SpeedTest{
			DownloadURL: "https://speed.vpn.example.com/download",
			UploadURL:   "https://speed.vpn.example.com/upload",
			PingHost:    "speed.vpn.example.com:443",
			PingSamples: 5,
		},
	}
}

// Load reads config.toml from the data dir (when present), then applies env
// overrides. A missing file is not an error.
func Load() (Config, error) {
	_ = loadDotEnv()
	cfg := Default()
	if dir := os.Getenv("VPN_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	path := filepath.Join(cfg.DataDir, "config.toml")
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if cfg.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	}
	if cfg.LogCapacity <= 0 {
		cfg.LogCapacity = 1000
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = getenv("VPN_API_URL", cfg.APIBaseURL)
	cfg.WSURL = getenv("VPN_WS_URL", cfg.WSURL)
	cfg.WGInterface = getenv("VPN_WG_IFACE", cfg.WGInterface)
	if v := os.Getenv("VPN_LOG_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LogCapacity = n
		}
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}
