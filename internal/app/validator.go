package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/manifest"
	"github.com/quantmind-br/manifestctl/internal/output"
	"github.com/quantmind-br/manifestctl/internal/utils"
)

// Validator checks many manifests concurrently
type Validator struct {
	loader    *manifest.Loader
	target    manifest.Context
	workers   int
	progress  io.Writer
	collector *output.ReportCollector
	logger    *utils.Logger
}

// ValidatorOptions contains options for creating a Validator
type ValidatorOptions struct {
	Loader  *manifest.Loader
	Target  manifest.Context
	Workers int
	// Progress receives a progress bar; nil disables it
	Progress  io.Writer
	Collector *output.ReportCollector
	Logger    *utils.Logger
}

// NewValidator creates a new Validator
func NewValidator(opts ValidatorOptions) *Validator {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.Collector == nil {
		opts.Collector = output.NewReportCollector(output.CollectorOptions{})
	}
	return &Validator{
		loader:    opts.Loader,
		target:    opts.Target,
		workers:   opts.Workers,
		progress:  opts.Progress,
		collector: opts.Collector,
		logger:    opts.Logger.WithComponent("validator").WithTarget(opts.Target.Fingerprint()),
	}
}

// ValidateAll validates the named manifests, or every manifest in the source
// when names is empty. Results are in input order. Invalid manifests are
// reported in their result, not as an error; the error is reserved for
// listing failures and cancellation.
func (v *Validator) ValidateAll(ctx context.Context, names []string) ([]*domain.ValidationResult, domain.ValidationSummary, error) {
	start := time.Now()

	if len(names) == 0 {
		listed, err := v.loader.Source().List(ctx)
		if err != nil {
			return nil, domain.ValidationSummary{}, fmt.Errorf("failed to list manifests: %w", err)
		}
		names = listed
	}

	v.logger.Info().
		Int("manifests", len(names)).
		Int("workers", v.workers).
		Msg("Starting validation")

	var advance func()
	if v.progress != nil {
		bar := utils.NewProgressBarTo(v.progress, len(names), utils.DescValidating)
		defer bar.Finish()
		advance = func() { _ = bar.Add(1) }
	}

	pool := utils.NewPool(v.workers, func(ctx context.Context, name string) (any, error) {
		r := v.validateOne(ctx, name)
		v.collector.Add(r)
		if advance != nil {
			advance()
		}
		return r, nil
	})

	tasks, err := pool.Process(ctx, names)

	results := make([]*domain.ValidationResult, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, task.Result.(*domain.ValidationResult))
	}

	elapsed := time.Since(start)
	summary := domain.Summarize(results, elapsed)

	if flushErr := v.collector.Flush(elapsed); flushErr != nil {
		v.logger.Warn().Err(flushErr).Msg("Failed to write validation report")
	}

	v.logger.Info().
		Int("valid", summary.Valid).
		Int("invalid", summary.Invalid).
		Int("warnings", summary.Warnings).
		Dur("duration", elapsed).
		Msg("Validation completed")

	return results, summary, err
}

func (v *Validator) validateOne(ctx context.Context, name string) *domain.ValidationResult {
	start := time.Now()
	r := &domain.ValidationResult{Name: name}
	defer func() { r.Elapsed = time.Since(start) }()

	raw, err := v.loader.Load(ctx, name)
	if err != nil {
		r.Err = err
		v.logger.WithManifest(name).Debug().Err(err).Msg("Manifest invalid")
		return r
	}
	r.Sections = len(raw.Sections)

	m := manifest.Resolve(raw, v.target)
	r.Builder = string(m.Builder)
	r.Warnings = checkResolved(m)

	for _, w := range r.Warnings {
		v.logger.WithManifest(name).Warn().Msg(w)
	}
	return r
}

// checkResolved reports problems an orchestrator would hit with m that the
// parser cannot reject on its own
func checkResolved(m *manifest.Manifest) []string {
	var warnings []string
	switch {
	case m.Builder == "":
		warnings = append(warnings, "no builder for this target")
	case !m.Builder.IsKnown():
		warnings = append(warnings, fmt.Sprintf("unknown builder %q", m.Builder))
	}
	if m.Builder != manifest.BuilderNop && m.RepoURL == "" && m.DownloadURL == "" {
		warnings = append(warnings, "no [git] repo_url or [download] url for this target")
	}
	if m.DownloadURL != "" && m.DownloadSHA256 == "" {
		warnings = append(warnings, "download url without sha256")
	}
	return warnings
}
