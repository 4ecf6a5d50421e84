// Package config loads scenechat settings from defaults, an optional YAML
// file, a .env file and SCENECHAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/scenechat/internal/session"
)

// #region types
// Config is the full process configuration.
type Config struct {
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Session    SessionConfig    `mapstructure:"session"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type DatasetConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

// SessionConfig mirrors session.Config.
type SessionConfig struct {
	ThinkingLabel  string        `mapstructure:"thinking_label"`
	ThinkingPeriod time.Duration `mapstructure:"thinking_period"`
	MinLoading     time.Duration `mapstructure:"min_loading"`
	TypeInterval   time.Duration `mapstructure:"type_interval"`
	UnmatchedText  string        `mapstructure:"unmatched_text"`
	UnpairedText   string        `mapstructure:"unpaired_text"`
}

type ServerConfig struct {
	HTTPAddr  string        `mapstructure:"http_addr"`
	GRPCAddr  string        `mapstructure:"grpc_addr"`
	PageTTL   time.Duration `mapstructure:"page_ttl"`
	StaticDir string        `mapstructure:"static_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// TranscriptConfig enables the sqlite session log when Path is set.
type TranscriptConfig struct {
	Path string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// #endregion types

// #region defaults
// Default returns the built-in settings.
func Default() Config {
	s := session.DefaultConfig()
	return Config{
		Dataset: DatasetConfig{Path: "data/scenes.json"},
		Session: SessionConfig{
			ThinkingLabel:  s.ThinkingLabel,
			ThinkingPeriod: s.ThinkingPeriod,
			MinLoading:     s.MinLoading,
			TypeInterval:   s.TypeInterval,
			UnmatchedText:  s.UnmatchedText,
			UnpairedText:   s.UnpairedText,
		},
		Server: ServerConfig{
			HTTPAddr: ":8080",
			GRPCAddr: ":9090",
			PageTTL:  30 * time.Minute,
		},
		Log:     LogConfig{Level: "info"},
		Tracing: TracingConfig{Endpoint: "localhost:4318"},
	}
}

// ToSession converts to the session package's config.
func (s SessionConfig) ToSession() session.Config {
	return session.Config{
		ThinkingLabel:  s.ThinkingLabel,
		ThinkingPeriod: s.ThinkingPeriod,
		MinLoading:     s.MinLoading,
		TypeInterval:   s.TypeInterval,
		UnmatchedText:  s.UnmatchedText,
		UnpairedText:   s.UnpairedText,
	}
}

// #endregion defaults

// #region validate
// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Dataset.Path == "" {
		errs = append(errs, errors.New("dataset.path is required"))
	}
	if c.Session.ThinkingPeriod <= 0 {
		errs = append(errs, fmt.Errorf("session.thinking_period must be positive, got %s", c.Session.ThinkingPeriod))
	}
	if c.Session.TypeInterval <= 0 {
		errs = append(errs, fmt.Errorf("session.type_interval must be positive, got %s", c.Session.TypeInterval))
	}
	if c.Session.MinLoading < 0 {
		errs = append(errs, fmt.Errorf("session.min_loading must not be negative, got %s", c.Session.MinLoading))
	}
	if c.Server.PageTTL <= 0 {
		errs = append(errs, fmt.Errorf("server.page_ttl must be positive, got %s", c.Server.PageTTL))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	return errors.Join(errs...)
}

// #endregion validate
