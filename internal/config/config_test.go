package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at a temp dir and clears overrides from the caller's env.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"DEFAULT_API_URL", "EVENTVIEW_DEFAULT_API_URL", "EVENTVIEW_STATE_DIR",
		"EVENTVIEW_LOG_LEVEL", "EVENTVIEW_LOG_FILE", "EVENTVIEW_AUTH_SCHEME", "EVENTVIEW_REQUEST_TIMEOUT",
		"EVENTVIEW_TOAST_TIMEOUT", "EVENTVIEW_METRICS_ADDR"} {
		t.Setenv(k, "")
		os.Unsetenv(k) //nolint:errcheck
	}
	return home
}

func load(t *testing.T) *Config {
	t.Helper()
	v, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	home := isolate(t)
	cfg := load(t)

	if cfg.DefaultAPIURL != DefaultAPIURL {
		t.Errorf("DefaultAPIURL = %q, want %q", cfg.DefaultAPIURL, DefaultAPIURL)
	}
	wantDir := filepath.Join(home, ".eventview")
	if cfg.StateDir != wantDir {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, wantDir)
	}
	if cfg.LogFile != filepath.Join(wantDir, LogFileName) {
		t.Errorf("LogFile = %q, want file in state dir", cfg.LogFile)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.AuthScheme != "" {
		t.Errorf("AuthScheme = %q, want empty", cfg.AuthScheme)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %s, want 30s", cfg.RequestTimeout)
	}
	if cfg.ToastTimeout != 10*time.Second {
		t.Errorf("ToastTimeout = %s, want 10s", cfg.ToastTimeout)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DEFAULT_API_URL", "https://viewer.example.com")
	t.Setenv("EVENTVIEW_LOG_LEVEL", "debug")
	t.Setenv("EVENTVIEW_AUTH_SCHEME", "Bearer")
	t.Setenv("EVENTVIEW_REQUEST_TIMEOUT", "5s")
	t.Setenv("EVENTVIEW_TOAST_TIMEOUT", "3s")
	t.Setenv("EVENTVIEW_METRICS_ADDR", "127.0.0.1:9100")

	cfg := load(t)
	if cfg.DefaultAPIURL != "https://viewer.example.com" {
		t.Errorf("DefaultAPIURL = %q", cfg.DefaultAPIURL)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.AuthScheme != "Bearer" {
		t.Errorf("AuthScheme = %q, want %q", cfg.AuthScheme, "Bearer")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %s, want 5s", cfg.RequestTimeout)
	}
	if cfg.ToastTimeout != 3*time.Second {
		t.Errorf("ToastTimeout = %s, want 3s", cfg.ToastTimeout)
	}
	if cfg.MetricsAddr != "127.0.0.1:9100" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestPrefixedAPIURLWins(t *testing.T) {
	isolate(t)
	t.Setenv("DEFAULT_API_URL", "http://plain:4000")
	t.Setenv("EVENTVIEW_DEFAULT_API_URL", "http://prefixed:4000")

	cfg := load(t)
	if cfg.DefaultAPIURL != "http://prefixed:4000" {
		t.Errorf("DefaultAPIURL = %q, want prefixed value", cfg.DefaultAPIURL)
	}
}

func TestConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("EVENTVIEW_STATE_DIR", dir)
	yaml := "default_api_url: https://from-file.example\nlog_level: warn\ntoast_timeout: 2s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg := load(t)
	if cfg.StateDir != dir {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, dir)
	}
	if cfg.DefaultAPIURL != "https://from-file.example" {
		t.Errorf("DefaultAPIURL = %q", cfg.DefaultAPIURL)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "warn")
	}
	if cfg.ToastTimeout != 2*time.Second {
		t.Errorf("ToastTimeout = %s, want 2s", cfg.ToastTimeout)
	}
	if cfg.LogFile != filepath.Join(dir, LogFileName) {
		t.Errorf("LogFile = %q", cfg.LogFile)
	}
}

func TestMalformedConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("EVENTVIEW_STATE_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: [unterminated\n"), 0600); err != nil {
		t.Fatal(err)
	}
	v, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Load(v); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		DefaultAPIURL:  DefaultAPIURL,
		StateDir:       "/tmp/ev",
		RequestTimeout: time.Second,
		ToastTimeout:   time.Second,
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no scheme", func(c *Config) { c.DefaultAPIURL = "localhost:4000" }, "default_api_url"},
		{"ftp", func(c *Config) { c.DefaultAPIURL = "ftp://host" }, "default_api_url"},
		{"empty state dir", func(c *Config) { c.StateDir = "" }, "state_dir"},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, "request_timeout"},
		{"negative toast timeout", func(c *Config) { c.ToastTimeout = -time.Second }, "toast_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() err = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
