package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/quantmind-br/manifestctl/internal/manifest"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat indicates an output format other than text, json or yaml
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format selects how values are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. An empty name means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Writer renders command results
type Writer struct {
	out    io.Writer
	format Format
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	Out    io.Writer
	Format Format
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}

	return &Writer{
		out:    opts.Out,
		format: opts.Format,
	}
}

// Format returns the writer's format
func (w *Writer) Format() Format {
	return w.format
}

// WriteManifest writes a resolved manifest
func (w *Writer) WriteManifest(m *manifest.Manifest) error {
	return Render(w.out, m, w.format)
}

// WriteList writes names one per line, or as a JSON/YAML array
func (w *Writer) WriteList(items []string) error {
	if items == nil {
		items = []string{}
	}
	if w.format != FormatText {
		return w.encode(items)
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(w.out, item); err != nil {
			return err
		}
	}
	return nil
}

// WriteDefines writes the cmake defines of m. Text output is one -D
// argument per line, ready to pass to cmake.
func (w *Writer) WriteDefines(m *manifest.Manifest) error {
	if w.format != FormatText {
		return w.encode(m.CMakeDefines)
	}
	return w.WriteList(CMakeArgs(m))
}

// WriteStats writes key/value statistics in key order
func (w *Writer) WriteStats(stats map[string]interface{}) error {
	if w.format != FormatText {
		return w.encode(stats)
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w.out, "%s: %v\n", k, stats[k]); err != nil {
			return err
		}
	}
	return nil
}

// WriteValidation writes per-manifest results followed by the summary
func (w *Writer) WriteValidation(results []*domain.ValidationResult, summary domain.ValidationSummary) error {
	if w.format != FormatText {
		entries := make([]domain.ReportEntry, len(results))
		for i, r := range results {
			entries[i] = r.ToReportEntry()
		}
		return w.encode(struct {
			Summary domain.ValidationSummary `json:"summary" yaml:"summary"`
			Results []domain.ReportEntry     `json:"results" yaml:"results"`
		}{summary, entries})
	}

	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "FAIL"
		}
		if _, err := fmt.Fprintf(w.out, "%-4s %s\n", status, r.Name); err != nil {
			return err
		}
		if r.Err != nil {
			if _, err := fmt.Fprintf(w.out, "     %v\n", r.Err); err != nil {
				return err
			}
		}
		for _, warning := range r.Warnings {
			if _, err := fmt.Fprintf(w.out, "     warning: %s\n", warning); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w.out, "\n%d manifests: %d valid, %d invalid, %d warnings\n",
		summary.Total, summary.Valid, summary.Invalid, summary.Warnings)
	return err
}

func (w *Writer) encode(v any) error {
	switch w.format {
	case FormatJSON:
		return encodeJSON(w.out, v)
	case FormatYAML:
		return encodeYAML(w.out, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, w.format)
	}
}

func encodeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
