package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DonovanMods/modlist-installer/internal/domain"

	"gopkg.in/yaml.v3"
)

// 7z backends
const (
	SevenZipNative = "native" // Pure Go decoder
	SevenZipSystem = "system" // External 7z binary
)

// Defaults
const (
	DefaultParallelism    = 4
	DefaultRequestTimeout = 30 * time.Second
	DefaultProbeTimeout   = 10 * time.Second
	DefaultProbeRetries   = 1
	DefaultChunkSize      = 8192
)

// Config holds global application settings
type Config struct {
	ModsDir         string        `yaml:"mods_dir"`
	StagingDir      string        `yaml:"staging_dir"`
	Parallelism     int           `yaml:"parallelism"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	ProbeRetries    int           `yaml:"probe_retries"`
	ChunkSize       int           `yaml:"chunk_size"`
	SevenZipBackend string        `yaml:"sevenzip_backend"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Parallelism:     DefaultParallelism,
		RequestTimeout:  DefaultRequestTimeout,
		ProbeTimeout:    DefaultProbeTimeout,
		ProbeRetries:    DefaultProbeRetries,
		ChunkSize:       DefaultChunkSize,
		SevenZipBackend: SevenZipNative,
	}
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the installer cannot run with
func (c *Config) Validate() error {
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be at least 1, got %d", domain.ErrInvalidConfig, c.Parallelism)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("%w: probe_timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.ProbeRetries < 1 {
		return fmt.Errorf("%w: probe_retries must be at least 1", domain.ErrInvalidConfig)
	}
	if c.ChunkSize < 512 {
		return fmt.Errorf("%w: chunk_size must be at least 512 bytes", domain.ErrInvalidConfig)
	}
	switch c.SevenZipBackend {
	case SevenZipNative, SevenZipSystem:
	default:
		return fmt.Errorf("%w: unknown sevenzip_backend %q", domain.ErrInvalidConfig, c.SevenZipBackend)
	}
	return nil
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
