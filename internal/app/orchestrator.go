package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/quantmind-br/manifestctl/internal/cache"
	"github.com/quantmind-br/manifestctl/internal/config"
	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/git"
	"github.com/quantmind-br/manifestctl/internal/manifest"
	"github.com/quantmind-br/manifestctl/internal/output"
	"github.com/quantmind-br/manifestctl/internal/utils"
)

// ErrCacheUnavailable is returned by cache maintenance when no cache is open
var ErrCacheUnavailable = errors.New("cache is disabled")

// Orchestrator wires the manifest source, the resolved manifest cache and the
// loader from a configuration
type Orchestrator struct {
	config   *config.Config
	source   manifest.Source
	cache    domain.Cache
	loader   *manifest.Loader
	target   manifest.Context
	progress io.Writer
	logger   *utils.Logger
}

// OrchestratorOptions contains options for creating an orchestrator
type OrchestratorOptions struct {
	Config  *config.Config
	Verbose bool
	NoCache bool
	// Progress receives progress bars during validation; nil disables them
	Progress io.Writer
	// Logger overrides the logger built from Config.Logging
	Logger *utils.Logger
	// GitClient overrides the go-git client for git sources
	GitClient git.Client
	// Cache overrides the badger cache
	Cache domain.Cache
}

// NewOrchestrator creates a new orchestrator with the given configuration
func NewOrchestrator(opts OrchestratorOptions) (*Orchestrator, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	st := DetectSource(cfg)
	source := CreateSource(st, cfg, opts.GitClient)

	c := opts.Cache
	if c == nil && cfg.Cache.Enabled && !opts.NoCache {
		dir := cfg.Cache.Directory
		if dir == "" {
			dir = config.CacheDir()
		}
		bc, err := cache.NewBadgerCache(cache.Options{
			Directory: utils.ExpandPath(dir),
			Compress:  cfg.Cache.Compress,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		c = bc
	}

	target := cfg.ResolveTarget()
	logger.Debug().
		Str("source", source.String()).
		Str("type", string(st)).
		Str("target", target.String()).
		Bool("cache", c != nil).
		Msg("Orchestrator ready")

	return &Orchestrator{
		config:   cfg,
		source:   source,
		cache:    c,
		target:   target,
		progress: opts.Progress,
		logger:   logger,
		loader: manifest.NewLoader(manifest.LoaderOptions{
			Source:   source,
			Cache:    c,
			CacheTTL: cfg.Cache.TTL,
			Logger:   logger,
		}),
	}, nil
}

// Target returns the context manifests are resolved for
func (o *Orchestrator) Target() manifest.Context {
	return o.target
}

// Source returns the manifest source
func (o *Orchestrator) Source() manifest.Source {
	return o.source
}

// Resolve loads the named manifest and resolves it for the configured target
func (o *Orchestrator) Resolve(ctx context.Context, name string) (*manifest.Manifest, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Concurrency.Timeout)
	defer cancel()

	m, err := o.loader.LoadResolved(ctx, name, o.target)
	if err != nil {
		return nil, domain.NewManifestError(name, err)
	}
	return m, nil
}

// List returns the manifest names in the source
func (o *Orchestrator) List(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Concurrency.Timeout)
	defer cancel()
	return o.source.List(ctx)
}

// Validate checks the named manifests, or all of them when names is empty.
// The JSON report is written when Config.Output.Report is set.
func (o *Orchestrator) Validate(ctx context.Context, names []string) ([]*domain.ValidationResult, domain.ValidationSummary, error) {
	collector := output.NewReportCollector(output.CollectorOptions{
		Path:    o.config.Output.Report,
		Source:  o.source.String(),
		Target:  o.target.Fingerprint(),
		Enabled: o.config.Output.Report != "",
	})

	v := NewValidator(ValidatorOptions{
		Loader:    o.loader,
		Target:    o.target,
		Workers:   o.config.Concurrency.Workers,
		Progress:  o.progress,
		Collector: collector,
		Logger:    o.logger,
	})
	return v.ValidateAll(ctx, names)
}

type statsCache interface {
	Stats() map[string]interface{}
	Clear() error
}

// CacheStats returns statistics of the open cache
func (o *Orchestrator) CacheStats() (map[string]interface{}, error) {
	sc, ok := o.cache.(statsCache)
	if !ok {
		return nil, ErrCacheUnavailable
	}
	return sc.Stats(), nil
}

// ClearCache drops every cached manifest
func (o *Orchestrator) ClearCache() error {
	sc, ok := o.cache.(statsCache)
	if !ok {
		return ErrCacheUnavailable
	}
	if err := sc.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	o.logger.Info().Msg("Cache cleared")
	return nil
}

// Close releases all resources
func (o *Orchestrator) Close() error {
	if o.cache != nil {
		return o.cache.Close()
	}
	return nil
}
