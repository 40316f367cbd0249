package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/utils"
)

// ReportCollector gathers validation results from concurrent workers and
// writes them as a JSON report
type ReportCollector struct {
	mu      sync.RWMutex
	results []*domain.ValidationResult
	source  string
	target  string
	path    string
	enabled bool
}

// CollectorOptions contains options for the report collector
type CollectorOptions struct {
	Path    string
	Source  string
	Target  string
	Enabled bool
}

// NewReportCollector creates a collector. It is disabled without a path.
func NewReportCollector(opts CollectorOptions) *ReportCollector {
	return &ReportCollector{
		results: make([]*domain.ValidationResult, 0),
		source:  opts.Source,
		target:  opts.Target,
		path:    opts.Path,
		enabled: opts.Enabled && opts.Path != "",
	}
}

// Add records a result
func (c *ReportCollector) Add(r *domain.ValidationResult) {
	if !c.enabled || r == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

// Flush writes the report file, creating its directory
func (c *ReportCollector) Flush(elapsed time.Duration) error {
	if !c.enabled {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := json.MarshalIndent(c.buildReport(elapsed), "", "  ")
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(filepath.Dir(c.path)); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}

func (c *ReportCollector) buildReport(elapsed time.Duration) *domain.ValidationReport {
	// Workers finish in any order
	sorted := make([]*domain.ValidationResult, len(c.results))
	copy(sorted, c.results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	entries := make([]domain.ReportEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = r.ToReportEntry()
	}

	return &domain.ValidationReport{
		GeneratedAt: time.Now(),
		Source:      c.source,
		Target:      c.target,
		Summary:     domain.Summarize(c.results, elapsed),
		Results:     entries,
	}
}

// Count returns the number of collected results
func (c *ReportCollector) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// GetReport returns the report as it would be written now
func (c *ReportCollector) GetReport() *domain.ValidationReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buildReport(0)
}

// IsEnabled reports whether the collector will write a report
func (c *ReportCollector) IsEnabled() bool {
	return c.enabled
}
