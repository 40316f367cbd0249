package domain

import "time"

// ValidationResult is the outcome of checking one manifest
type ValidationResult struct {
	Name     string        `json:"name"`
	Builder  string        `json:"builder,omitempty"`
	Sections int           `json:"sections"`
	Warnings []string      `json:"warnings,omitempty"`
	Err      error         `json:"-"`
	Elapsed  time.Duration `json:"elapsed"`
}

// OK reports whether the manifest parsed without error
func (r *ValidationResult) OK() bool {
	return r.Err == nil
}

// ValidationSummary aggregates the results of a batch validation
type ValidationSummary struct {
	Total    int           `json:"total"`
	Valid    int           `json:"valid"`
	Invalid  int           `json:"invalid"`
	Warnings int           `json:"warnings"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Summarize counts the results
func Summarize(results []*ValidationResult, elapsed time.Duration) ValidationSummary {
	s := ValidationSummary{Total: len(results), Elapsed: elapsed}
	for _, r := range results {
		if r.OK() {
			s.Valid++
		} else {
			s.Invalid++
		}
		s.Warnings += len(r.Warnings)
	}
	return s
}

// ReportEntry is one manifest in a validation report
type ReportEntry struct {
	Name     string   `json:"name"`
	Builder  string   `json:"builder,omitempty"`
	Sections int      `json:"sections"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// ValidationReport is the JSON document written for a batch validation
type ValidationReport struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Source      string            `json:"source"`
	Target      string            `json:"target"`
	Summary     ValidationSummary `json:"summary"`
	Results     []ReportEntry     `json:"results"`
}

// ToReportEntry converts a result for inclusion in a report
func (r *ValidationResult) ToReportEntry() ReportEntry {
	e := ReportEntry{
		Name:     r.Name,
		Builder:  r.Builder,
		Sections: r.Sections,
		Warnings: r.Warnings,
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	return e
}
