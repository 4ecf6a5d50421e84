package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SCENECHAT"

// newViper maps nested keys like "session.min_loading" to
// SCENECHAT_SESSION_MIN_LOADING and seeds every key with its default so
// AutomaticEnv can see it during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("dataset.path", d.Dataset.Path)
	v.SetDefault("dataset.watch", d.Dataset.Watch)
	v.SetDefault("session.thinking_label", d.Session.ThinkingLabel)
	v.SetDefault("session.thinking_period", d.Session.ThinkingPeriod)
	v.SetDefault("session.min_loading", d.Session.MinLoading)
	v.SetDefault("session.type_interval", d.Session.TypeInterval)
	v.SetDefault("session.unmatched_text", d.Session.UnmatchedText)
	v.SetDefault("session.unpaired_text", d.Session.UnpairedText)
	v.SetDefault("server.http_addr", d.Server.HTTPAddr)
	v.SetDefault("server.grpc_addr", d.Server.GRPCAddr)
	v.SetDefault("server.page_ttl", d.Server.PageTTL)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("transcript.path", d.Transcript.Path)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	return v
}

// Load reads .env (if present), then the YAML file at path (if path is not
// empty), then SCENECHAT_* overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
