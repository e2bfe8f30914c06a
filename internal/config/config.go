package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultMaxUploadBytes = 100 * 1024 * 1024

// Config holds all service settings.
type Config struct {
	Host             string   `yaml:"host"`
	Port             int      `yaml:"port"`
	LogLevel         string   `yaml:"log_level"`
	DefaultModel     string   `yaml:"default_model"`
	ModelDir         string   `yaml:"model_dir"`
	WhisperPath      string   `yaml:"whisper_path"`
	MaxUploadBytes   int64    `yaml:"max_upload_bytes"`
	SupportedFormats []string `yaml:"supported_formats"`
	AutoDownload     bool     `yaml:"auto_download"`
}

// Default returns the built-in settings: a local-only listener, the small
// model tier, and the audio/video container formats ffmpeg can sniff.
func Default() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           8000,
		LogLevel:       "info",
		DefaultModel:   "small",
		MaxUploadBytes: DefaultMaxUploadBytes,
		SupportedFormats: []string{
			".mp3", ".wav", ".m4a", ".flac", ".ogg",
			".wma", ".aac", ".mp4", ".mov", ".avi",
		},
		AutoDownload: true,
	}
}

// Load builds the effective config: defaults, then the YAML file at path (if
// it exists), then environment overrides. An empty path skips file loading.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing config file is fine; defaults apply.
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SupportsExtension reports whether a filename extension (with leading dot)
// names an accepted upload format.
func (c *Config) SupportsExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supported := range c.SupportedFormats {
		if ext == supported {
			return true
		}
	}
	return false
}

// SortedFormats returns the supported extensions for user-facing messages.
func (c *Config) SortedFormats() []string {
	formats := make([]string, len(c.SupportedFormats))
	copy(formats, c.SupportedFormats)
	for i := range formats {
		formats[i] = strings.ToLower(formats[i])
	}
	return formats
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCRIBED_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SCRIBED_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCRIBED_PORT must be an integer: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("SCRIBED_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SCRIBED_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("SCRIBED_MODEL_DIR"); v != "" {
		c.ModelDir = v
	}
	if v := os.Getenv("SCRIBED_MAX_UPLOAD_BYTES"); v != "" {
		limit, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SCRIBED_MAX_UPLOAD_BYTES must be an integer: %w", err)
		}
		c.MaxUploadBytes = limit
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d is out of range", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	if len(c.SupportedFormats) == 0 {
		return fmt.Errorf("supported format set must not be empty")
	}
	for _, ext := range c.SupportedFormats {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("supported format %q must start with a dot", ext)
		}
	}
	if c.ModelDir != "" {
		c.ModelDir = filepath.Clean(c.ModelDir)
	}
	return nil
}
