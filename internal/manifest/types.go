package manifest

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// BuilderKind names the build backend an orchestrator should drive.
type BuilderKind string

const (
	BuilderCMake          BuilderKind = "cmake"
	BuilderCMakeBootstrap BuilderKind = "cmakebootstrap"
	BuilderAutoconf       BuilderKind = "autoconf"
	BuilderMake           BuilderKind = "make"
	BuilderMeson          BuilderKind = "meson"
	BuilderCargo          BuilderKind = "cargo"
	BuilderBoost          BuilderKind = "boost"
	BuilderOpenSSL        BuilderKind = "openssl"
	BuilderSqlite         BuilderKind = "sqlite"
	BuilderPythonWheel    BuilderKind = "python-wheel"
	BuilderNop            BuilderKind = "nop"
)

var knownBuilders = map[BuilderKind]bool{
	BuilderCMake:          true,
	BuilderCMakeBootstrap: true,
	BuilderAutoconf:       true,
	BuilderMake:           true,
	BuilderMeson:          true,
	BuilderCargo:          true,
	BuilderBoost:          true,
	BuilderOpenSSL:        true,
	BuilderSqlite:         true,
	BuilderPythonWheel:    true,
	BuilderNop:            true,
}

// IsKnown reports whether b is one of the builder kinds listed above.
func (b BuilderKind) IsKnown() bool {
	return knownBuilders[b]
}

// PathMapping maps a path in the source tree to its exported location.
type PathMapping struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
}

// Manifest is a manifest resolved for one Context. It is never mutated after
// Resolve returns it.
type Manifest struct {
	Name                string      `json:"name" yaml:"name"`
	FbsourcePath        string      `json:"fbsource_path,omitempty" yaml:"fbsource_path,omitempty"`
	ShipitProject       string      `json:"shipit_project,omitempty" yaml:"shipit_project,omitempty"`
	ShipitFbcodeBuilder bool        `json:"shipit_fbcode_builder,omitempty" yaml:"shipit_fbcode_builder,omitempty"`
	RepoURL             string      `json:"repo_url,omitempty" yaml:"repo_url,omitempty"`
	Rev                 string      `json:"rev,omitempty" yaml:"rev,omitempty"`
	Branch              string      `json:"branch,omitempty" yaml:"branch,omitempty"`
	Depth               int         `json:"depth,omitempty" yaml:"depth,omitempty"`
	DownloadURL         string      `json:"download_url,omitempty" yaml:"download_url,omitempty"`
	DownloadSHA256      string      `json:"download_sha256,omitempty" yaml:"download_sha256,omitempty"`
	Builder             BuilderKind `json:"builder,omitempty" yaml:"builder,omitempty"`
	Subdir              string      `json:"subdir,omitempty" yaml:"subdir,omitempty"`
	BuildInSrcDir       bool        `json:"build_in_src_dir,omitempty" yaml:"build_in_src_dir,omitempty"`
	JobWeightMiB        int         `json:"job_weight_mib,omitempty" yaml:"job_weight_mib,omitempty"`

	Dependencies  []string          `json:"dependencies" yaml:"dependencies"`
	PathMappings  []PathMapping     `json:"path_mappings" yaml:"path_mappings"`
	StripPatterns []string          `json:"strip_patterns" yaml:"strip_patterns"`
	CMakeDefines  map[string]string `json:"cmake_defines" yaml:"cmake_defines"`
	AutoconfArgs  []string          `json:"autoconf_args" yaml:"autoconf_args"`
}

// DefineNames returns the cmake define names in sorted order.
func (m *Manifest) DefineNames() []string {
	names := make([]string, 0, len(m.CMakeDefines))
	for name := range m.CMakeDefines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entry is one line of a section. List sections keep the whole line in Key.
type Entry struct {
	Key   string
	Value string
	Line  int
}

// Section is a parsed section. Condition is nil for base sections.
type Section struct {
	Name      string
	Condition Expr
	Line      int
	Entries   []Entry
}

// Header returns the section header as it would be written in a manifest.
func (s *Section) Header() string {
	if s.Condition == nil {
		return "[" + s.Name + "]"
	}
	return "[" + s.Name + "." + s.Condition.String() + "]"
}

// Get returns the value for key.
func (s *Section) Get(key string) (string, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// RawManifest is the unresolved parse result.
type RawManifest struct {
	// Source is the name the text was parsed under, usually the file name.
	Source   string
	Sections []*Section
}

// Section returns the base (unconditional) section with the given name.
func (r *RawManifest) Section(name string) *Section {
	for _, s := range r.Sections {
		if s.Name == name && s.Condition == nil {
			return s
		}
	}
	return nil
}

// Conditionals returns the conditional sections with the given name in file order.
func (r *RawManifest) Conditionals(name string) []*Section {
	var out []*Section
	for _, s := range r.Sections {
		if s.Name == name && s.Condition != nil {
			out = append(out, s)
		}
	}
	return out
}

// Name returns manifest.name.
func (r *RawManifest) Name() string {
	if s := r.Section(SectionManifest); s != nil {
		v, _ := s.Get("name")
		return v
	}
	return ""
}

// Context is the target a manifest is resolved against.
type Context struct {
	OS            string
	Distro        string
	DistroVersion string
	FB            bool
	FBSource      bool
	Test          bool
	SharedLibs    bool
}

// NewContext creates a Context for the given OS and test mode.
func NewContext(os string, test bool) Context {
	return Context{OS: os, Test: test}
}

// HostContext returns a Context for the running operating system.
func HostContext() Context {
	return NewContext(HostOS(), false)
}

// HostOS returns the OS name manifests use for the running system. Go's
// GOOS values already match the names used in conditions.
func HostOS() string {
	return runtime.GOOS
}

// Get returns the value of a condition variable. Boolean variables are
// reported as "on" or "off".
func (c Context) Get(name string) (string, bool) {
	switch name {
	case VarOS:
		return c.OS, true
	case VarDistro:
		return c.Distro, true
	case VarDistroVersion:
		return c.DistroVersion, true
	case VarFB:
		return onOff(c.FB), true
	case VarFBSource:
		return onOff(c.FBSource), true
	case VarTest:
		return onOff(c.Test), true
	case VarSharedLibs:
		return onOff(c.SharedLibs), true
	}
	return "", false
}

// Fingerprint returns a stable string identifying the context.
func (c Context) Fingerprint() string {
	parts := make([]string, 0, len(conditionVars))
	for _, name := range conditionVars {
		v, _ := c.Get(name)
		parts = append(parts, fmt.Sprintf("%s=%s", name, v))
	}
	return strings.Join(parts, ",")
}

func (c Context) String() string {
	return c.Fingerprint()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
