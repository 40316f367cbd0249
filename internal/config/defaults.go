package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	// Manifest defaults
	DefaultManifestsDir = "./manifests"

	// Output defaults
	DefaultOutputFormat = "text"

	// Concurrency defaults
	DefaultWorkers = 4
	DefaultTimeout = 30 * time.Second

	// Cache defaults
	DefaultCacheEnabled  = true
	DefaultCacheTTL      = 24 * time.Hour
	DefaultCacheCompress = true

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"

	// EnvPrefix prefixes environment overrides, e.g. MANIFESTCTL_TARGET_OS
	EnvPrefix = "MANIFESTCTL"
)

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".manifestctl"
	}
	return filepath.Join(home, ".manifestctl")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Manifests: ManifestsConfig{
			Directory: DefaultManifestsDir,
		},
		Output: OutputConfig{
			Format: DefaultOutputFormat,
		},
		Concurrency: ConcurrencyConfig{
			Workers: DefaultWorkers,
			Timeout: DefaultTimeout,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
			Compress:  DefaultCacheCompress,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
