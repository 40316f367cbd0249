package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// LoadFrom loads configuration into v. cfgFile names an explicit config
// file; when empty, config.yaml is searched for in the config directory and
// the working directory, and a missing file is not an error.
func LoadFrom(v *viper.Viper, cfgFile string) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// Config file settings
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Environment variables (MANIFESTCTL_*)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Manifest defaults
	v.SetDefault("manifests.directory", DefaultManifestsDir)
	v.SetDefault("manifests.git_rev", "")

	// Target defaults; an empty OS resolves to the running system
	v.SetDefault("target.os", "")
	v.SetDefault("target.distro", "")
	v.SetDefault("target.distro_version", "")
	v.SetDefault("target.test", false)
	v.SetDefault("target.shared_libs", false)
	v.SetDefault("target.fb", false)

	// Output defaults
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.report", "")

	// Concurrency defaults
	v.SetDefault("concurrency.workers", DefaultWorkers)
	v.SetDefault("concurrency.timeout", DefaultTimeout)

	// Cache defaults
	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())
	v.SetDefault("cache.compress", DefaultCacheCompress)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
