// Package config loads eventview settings from defaults, an optional
// config.yaml in the state directory and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/naveenspark/eventview/internal/credentials"
)

// EnvPrefix prefixes every environment override (EVENTVIEW_LOG_LEVEL, ...).
const EnvPrefix = "EVENTVIEW"

// Config keys.
const (
	KeyDefaultAPIURL  = "default_api_url"
	KeyStateDir       = "state_dir"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
	KeyAuthScheme     = "auth_scheme"
	KeyRequestTimeout = "request_timeout"
	KeyToastTimeout   = "toast_timeout"
	KeyMetricsAddr    = "metrics_addr"
)

// DefaultAPIURL is the server used until a sign-in stores another one.
const DefaultAPIURL = "http://localhost:4000"

// LogFileName is the log file created in the state directory.
const LogFileName = "eventview.log"

type Config struct {
	DefaultAPIURL  string        `mapstructure:"default_api_url"`
	StateDir       string        `mapstructure:"state_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFile        string        `mapstructure:"log_file"`
	AuthScheme     string        `mapstructure:"auth_scheme"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ToastTimeout   time.Duration `mapstructure:"toast_timeout"`
	MetricsAddr    string        `mapstructure:"metrics_addr"`
}

// New returns a viper instance with defaults and environment bindings set.
// Callers may bind command-line flags on it before calling Load.
func New() (*viper.Viper, error) {
	dir, err := credentials.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("config.New: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyDefaultAPIURL, DefaultAPIURL)
	v.SetDefault(KeyStateDir, dir)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyAuthScheme, "")
	v.SetDefault(KeyRequestTimeout, 30*time.Second)
	v.SetDefault(KeyToastTimeout, 10*time.Second)
	v.SetDefault(KeyMetricsAddr, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// The unprefixed name is what build tooling for the viewer already exports.
	if err := v.BindEnv(KeyDefaultAPIURL, EnvPrefix+"_DEFAULT_API_URL", "DEFAULT_API_URL"); err != nil {
		return nil, fmt.Errorf("config.New: %w", err)
	}
	return v, nil
}

// Load reads config.yaml from the state directory when present and decodes
// the result. A missing config file is not an error.
func Load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(v.GetString(KeyStateDir))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.StateDir, LogFileName)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	u, err := url.Parse(c.DefaultAPIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: %s %q is not an http(s) URL", KeyDefaultAPIURL, c.DefaultAPIURL)
	}
	if c.StateDir == "" {
		return fmt.Errorf("config: %s is empty", KeyStateDir)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %s", KeyRequestTimeout, c.RequestTimeout)
	}
	if c.ToastTimeout <= 0 {
		return fmt.Errorf("config: %s must be positive, got %s", KeyToastTimeout, c.ToastTimeout)
	}
	return nil
}
