package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/quantmind-br/manifestctl/internal/cache"
	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/utils"
)

// DefaultCacheTTL is how long resolved manifests stay cached
const DefaultCacheTTL = 24 * time.Hour

// LoaderOptions contains options for creating a Loader
type LoaderOptions struct {
	Source   Source
	Cache    domain.Cache
	CacheTTL time.Duration
	Logger   *utils.Logger
}

// Loader reads manifests from a Source, parses and resolves them. Resolved
// manifests are cached when a Cache is configured.
type Loader struct {
	source   Source
	cache    domain.Cache
	cacheTTL time.Duration
	logger   *utils.Logger
}

// NewLoader creates a new manifest loader
func NewLoader(opts LoaderOptions) *Loader {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	return &Loader{
		source:   opts.Source,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   opts.Logger.WithComponent("loader"),
	}
}

// Source returns the loader's manifest source
func (l *Loader) Source() Source {
	return l.source
}

// Load reads and parses the named manifest without resolving it
func (l *Loader) Load(ctx context.Context, name string) (*RawManifest, error) {
	text, err := l.source.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return l.parse(name, text)
}

// LoadResolved loads the named manifest and resolves it for target
func (l *Loader) LoadResolved(ctx context.Context, name string, target Context) (*Manifest, error) {
	text, err := l.source.Read(ctx, name)
	if err != nil {
		return nil, err
	}

	logger := l.logger.WithManifest(name).WithTarget(target.Fingerprint())

	var key string
	if l.cache != nil {
		key = cache.ResolvedKey(name, text, target.Fingerprint())
		if m, ok := l.fromCache(ctx, key, logger); ok {
			return m, nil
		}
	}

	raw, err := l.parse(name, text)
	if err != nil {
		return nil, err
	}
	m := Resolve(raw, target)

	logger.Debug().
		Int("sections", len(raw.Sections)).
		Int("dependencies", len(m.Dependencies)).
		Int("defines", len(m.CMakeDefines)).
		Msg("Resolved manifest")

	if l.cache != nil {
		l.toCache(ctx, key, m, logger)
	}
	return m, nil
}

func (l *Loader) parse(name string, text []byte) (*RawManifest, error) {
	raw, err := Parse(name, text)
	if err != nil {
		return nil, err
	}
	if got := raw.Name(); got != name {
		return nil, fmt.Errorf("%w: file %s declares %q", ErrNameMismatch, name, got)
	}
	return raw, nil
}

func (l *Loader) fromCache(ctx context.Context, key string, logger *utils.Logger) (*Manifest, bool) {
	data, err := l.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Warn().Err(err).Msg("Cache read failed")
		} else {
			logger.Debug().Msg("Cache miss")
		}
		return nil, false
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn().Err(err).Msg("Discarding undecodable cache entry")
		return nil, false
	}
	if m.CMakeDefines == nil {
		m.CMakeDefines = make(map[string]string)
	}

	logger.Debug().Msg("Cache hit")
	return &m, true
}

func (l *Loader) toCache(ctx context.Context, key string, m *Manifest, logger *utils.Logger) {
	data, err := json.Marshal(m)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to encode manifest for cache")
		return
	}
	if err := l.cache.Set(ctx, key, data, l.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Cache write failed")
	}
}
