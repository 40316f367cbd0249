package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/quantmind-br/manifestctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportCollector(t *testing.T) {
	tests := []struct {
		name    string
		opts    CollectorOptions
		enabled bool
	}{
		{"enabled with path", CollectorOptions{Path: "report.json", Enabled: true}, true},
		{"disabled without path", CollectorOptions{Enabled: true}, false},
		{"disabled by default", CollectorOptions{Path: "report.json"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewReportCollector(tt.opts)
			assert.Equal(t, tt.enabled, c.IsEnabled())
		})
	}
}

func TestReportCollector_Add(t *testing.T) {
	c := NewReportCollector(CollectorOptions{Path: "r.json", Enabled: true})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(&domain.ValidationResult{Name: "m"})
		}()
	}
	wg.Wait()
	c.Add(nil)

	assert.Equal(t, 20, c.Count())

	disabled := NewReportCollector(CollectorOptions{})
	disabled.Add(&domain.ValidationResult{Name: "m"})
	assert.Equal(t, 0, disabled.Count())
}

func TestReportCollector_Flush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "validate.json")
	c := NewReportCollector(CollectorOptions{
		Path:    path,
		Source:  "./manifests",
		Target:  "os=linux",
		Enabled: true,
	})

	c.Add(&domain.ValidationResult{Name: "glog", Builder: "cmake"})
	c.Add(&domain.ValidationResult{Name: "broken", Err: errors.New("bad header")})
	c.Add(&domain.ValidationResult{Name: "folly", Builder: "cmake"})

	require.NoError(t, c.Flush(time.Second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var report domain.ValidationReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "./manifests", report.Source)
	assert.Equal(t, "os=linux", report.Target)
	assert.Equal(t, 3, report.Summary.Total)
	assert.Equal(t, 1, report.Summary.Invalid)
	assert.Equal(t, time.Second, report.Summary.Elapsed)
	assert.False(t, report.GeneratedAt.IsZero())

	require.Len(t, report.Results, 3)
	assert.Equal(t, "broken", report.Results[0].Name)
	assert.Equal(t, "bad header", report.Results[0].Error)
	assert.Equal(t, "folly", report.Results[1].Name)
	assert.Equal(t, "glog", report.Results[2].Name)
}

func TestReportCollector_FlushDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "validate.json")
	c := NewReportCollector(CollectorOptions{Path: path})
	c.Add(&domain.ValidationResult{Name: "folly"})

	require.NoError(t, c.Flush(0))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReportCollector_GetReport(t *testing.T) {
	c := NewReportCollector(CollectorOptions{Path: "r.json", Source: "src", Enabled: true})
	c.Add(&domain.ValidationResult{Name: "folly"})

	report := c.GetReport()
	assert.Equal(t, "src", report.Source)
	assert.Len(t, report.Results, 1)
}
