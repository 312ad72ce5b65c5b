package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"endpointd/internal/common/fsutil"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml and dotenv (.env) files. A leading
// '~' and $VAR references in path are expanded.
func Load(path string) (Config, error) {
	var cfg Config
	path, err := fsutil.ExpandPath(path)
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	if err := fsutil.RequireFile(path); err != nil {
		return cfg, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".env" {
		return loadDotenv(path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// loadDotenv reads KEY=VALUE pairs using the same variable names as the
// process environment.
func loadDotenv(path string) (Config, error) {
	var cfg Config
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := apply(v, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables on top of base. Variables that are
// unset or empty leave the corresponding field untouched.
func FromEnv(base Config) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for _, b := range bindings {
		if err := v.BindEnv(strings.ToLower(b.env), b.env); err != nil {
			return base, err
		}
	}
	cfg := base
	if err := apply(v, &cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

// Resolve is the startup path: optional file, environment overlay,
// defaults, validation.
func Resolve(path string) (Config, error) {
	var cfg Config
	if path != "" {
		c, err := Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg, err := FromEnv(cfg)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func apply(v *viper.Viper, cfg *Config) error {
	for _, b := range bindings {
		key := strings.ToLower(b.env)
		if !v.IsSet(key) {
			continue
		}
		raw := strings.TrimSpace(v.GetString(key))
		if raw == "" {
			continue
		}
		if err := b.set(cfg, raw); err != nil {
			return fmt.Errorf("invalid %s: %q: %w", b.env, raw, err)
		}
	}
	return nil
}
