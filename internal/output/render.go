package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/quantmind-br/manifestctl/internal/manifest"
)

// Render writes m to out in the given format
func Render(out io.Writer, m *manifest.Manifest, format Format) error {
	switch format {
	case FormatText, "":
		_, err := io.WriteString(out, renderText(m))
		return err
	case FormatJSON:
		return encodeJSON(out, m)
	case FormatYAML:
		return encodeYAML(out, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// CMakeArgs returns the cmake defines of m as -DNAME=VALUE arguments
// sorted by name
func CMakeArgs(m *manifest.Manifest) []string {
	names := m.DefineNames()
	args := make([]string, len(names))
	for i, name := range names {
		args[i] = "-D" + name + "=" + m.CMakeDefines[name]
	}
	return args
}

func renderText(m *manifest.Manifest) string {
	var b strings.Builder

	field := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", key, value)
		}
	}
	list := func(key string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", key)
		for _, item := range items {
			fmt.Fprintf(&b, "  %s\n", item)
		}
	}

	field("name", m.Name)
	field("fbsource_path", m.FbsourcePath)
	field("shipit_project", m.ShipitProject)
	if m.ShipitFbcodeBuilder {
		field("shipit_fbcode_builder", "true")
	}
	field("repo_url", m.RepoURL)
	field("rev", m.Rev)
	field("branch", m.Branch)
	if m.Depth > 0 {
		field("depth", fmt.Sprint(m.Depth))
	}
	field("download_url", m.DownloadURL)
	field("download_sha256", m.DownloadSHA256)
	field("builder", string(m.Builder))
	field("subdir", m.Subdir)
	if m.BuildInSrcDir {
		field("build_in_src_dir", "true")
	}
	if m.JobWeightMiB > 0 {
		field("job_weight_mib", fmt.Sprint(m.JobWeightMiB))
	}

	list("dependencies", m.Dependencies)

	mappings := make([]string, len(m.PathMappings))
	for i, pm := range m.PathMappings {
		mappings[i] = pm.Source + " -> " + pm.Dest
	}
	list("path_mappings", mappings)
	list("strip_patterns", m.StripPatterns)

	defines := make([]string, 0, len(m.CMakeDefines))
	for _, name := range m.DefineNames() {
		defines = append(defines, name+"="+m.CMakeDefines[name])
	}
	list("cmake_defines", defines)
	list("autoconf_args", m.AutoconfArgs)

	return b.String()
}
