package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// ModelConfig holds the defaults used when building a model.
type ModelConfig struct {
	WindowLength int    `json:"window_length" yaml:"window_length" env:"CHARKOV_WINDOW_LENGTH"`
	Seed         *int64 `json:"seed,omitempty" yaml:"seed,omitempty" env:"CHARKOV_SEED"`
	Length       int    `json:"length" yaml:"length" env:"CHARKOV_LENGTH"`
	Corpus       string `json:"corpus" yaml:"corpus" env:"CHARKOV_CORPUS"`
}

// ServerConfig holds the configuration for the HTTP API.
type ServerConfig struct {
	Addr         string `json:"addr" yaml:"addr" env:"CHARKOV_SERVER_ADDR"`
	APIKey       string `json:"api_key" yaml:"api_key" env:"CHARKOV_API_KEY"`
	MaxBodyBytes int64  `json:"max_body_bytes" yaml:"max_body_bytes" env:"CHARKOV_MAX_BODY_BYTES"`
	MaxLength    int    `json:"max_length" yaml:"max_length" env:"CHARKOV_MAX_LENGTH"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	LogLevel     string       `json:"log_level" yaml:"log_level" env:"CHARKOV_LOG_LEVEL"`
	DatabasePath string       `json:"database_path" yaml:"database_path" env:"CHARKOV_DATABASE_PATH"`
	HistoryFile  string       `json:"history_file" yaml:"history_file" env:"CHARKOV_HISTORY_FILE"`
	Model        ModelConfig  `json:"model_config" yaml:"model_config"`
	Server       ServerConfig `json:"server_config" yaml:"server_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DatabasePath: "./data/charkov.db",
		HistoryFile:  "./data/.charkov_history",
		Model: ModelConfig{
			WindowLength: 4,
			Length:       300,
		},
		Server: ServerConfig{
			Addr:         ":7280",
			MaxBodyBytes: 16 << 20, // 16MB
			MaxLength:    100_000,
		},
	}
}

// isYAML reports whether path names a YAML config file.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadConfig reads the configuration from a JSON or YAML file at the given
// path, then applies overrides from CHARKOV_* environment variables. If the
// file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err = writeConfig(path, config); err != nil {
			// The defaults are still usable without a file on disk.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	case isYAML(path):
		if err = yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		if err = json.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err = env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if config.Model.WindowLength < 1 {
		return nil, fmt.Errorf("invalid window_length %d: must be at least 1", config.Model.WindowLength)
	}
	return config, nil
}

// writeConfig atomically writes config to path in the format implied by its
// extension.
func writeConfig(path string, config *Config) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}

// parseLogLevel maps the configured level name to a slog.Level, defaulting
// to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
