package config

import (
	"strings"
	"time"

	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/manifest"
)

// Config represents the application configuration
type Config struct {
	Manifests   ManifestsConfig   `mapstructure:"manifests" yaml:"manifests"`
	Target      TargetConfig      `mapstructure:"target" yaml:"target"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// ManifestsConfig locates the manifests
type ManifestsConfig struct {
	Directory string `mapstructure:"directory" yaml:"directory"`
	// GitRev reads manifests from this revision of the repository containing
	// Directory instead of the work tree
	GitRev string `mapstructure:"git_rev" yaml:"git_rev"`
}

// TargetConfig is the platform manifests are resolved for
type TargetConfig struct {
	OS            string `mapstructure:"os" yaml:"os"`
	Distro        string `mapstructure:"distro" yaml:"distro"`
	DistroVersion string `mapstructure:"distro_version" yaml:"distro_version"`
	Test          bool   `mapstructure:"test" yaml:"test"`
	SharedLibs    bool   `mapstructure:"shared_libs" yaml:"shared_libs"`
	FB            bool   `mapstructure:"fb" yaml:"fb"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
	// Report is a path the validate command writes a JSON report to
	Report string `mapstructure:"report" yaml:"report"`
}

// ConcurrencyConfig contains concurrency settings
type ConcurrencyConfig struct {
	Workers int           `mapstructure:"workers" yaml:"workers"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CacheConfig contains cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
	Compress  bool          `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Manifests.Directory == "" {
		c.Manifests.Directory = DefaultManifestsDir
	}
	if c.Concurrency.Workers < 1 {
		c.Concurrency.Workers = DefaultWorkers
	}
	if c.Concurrency.Timeout < time.Second {
		c.Concurrency.Timeout = DefaultTimeout
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}

	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	switch c.Output.Format {
	case "":
		c.Output.Format = DefaultOutputFormat
	case "text", "json", "yaml":
	default:
		return domain.NewValidationError("output.format", "must be one of text, json, yaml")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format != "json" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// ResolveTarget returns the resolution context described by the target
// settings. An empty OS means the running system.
func (c *Config) ResolveTarget() manifest.Context {
	os := c.Target.OS
	if os == "" {
		os = manifest.HostOS()
	}
	return manifest.Context{
		OS:            os,
		Distro:        c.Target.Distro,
		DistroVersion: c.Target.DistroVersion,
		FB:            c.Target.FB,
		Test:          c.Target.Test,
		SharedLibs:    c.Target.SharedLibs,
	}
}

// UseGit reports whether manifests are read from a git revision
func (c *Config) UseGit() bool {
	return c.Manifests.GitRev != ""
}
