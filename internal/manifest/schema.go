package manifest

import (
	"sort"
	"strings"
)

// Section names
const (
	SectionManifest      = "manifest"
	SectionGit           = "git"
	SectionDownload      = "download"
	SectionBuild         = "build"
	SectionDependencies  = "dependencies"
	SectionShipitPathmap = "shipit.pathmap"
	SectionShipitStrip   = "shipit.strip"
	SectionCMakeDefines  = "cmake.defines"
	SectionAutoconfArgs  = "autoconf.args"
)

// SectionKind describes how the lines of a section are interpreted.
type SectionKind int

const (
	// FieldSection holds key = value pairs restricted to a fixed field set.
	FieldSection SectionKind = iota
	// MapSection holds arbitrary key = value pairs.
	MapSection
	// ListSection holds bare lines.
	ListSection
)

type fieldType int

const (
	stringField fieldType = iota
	intField
	boolField
)

type sectionSchema struct {
	kind          SectionKind
	fields        map[string]fieldType
	required      []string
	unconditional bool
}

var schema = map[string]sectionSchema{
	SectionManifest: {
		kind: FieldSection,
		fields: map[string]fieldType{
			"name":                  stringField,
			"fbsource_path":         stringField,
			"shipit_project":        stringField,
			"shipit_fbcode_builder": boolField,
		},
		required:      []string{"name"},
		unconditional: true,
	},
	SectionGit: {
		kind: FieldSection,
		fields: map[string]fieldType{
			"repo_url": stringField,
			"rev":      stringField,
			"depth":    intField,
			"branch":   stringField,
		},
	},
	SectionDownload: {
		kind: FieldSection,
		fields: map[string]fieldType{
			"url":    stringField,
			"sha256": stringField,
		},
	},
	SectionBuild: {
		kind: FieldSection,
		fields: map[string]fieldType{
			"builder":          stringField,
			"subdir":           stringField,
			"job_weight_mib":   intField,
			"build_in_src_dir": boolField,
		},
	},
	SectionDependencies:  {kind: ListSection},
	SectionShipitPathmap: {kind: MapSection},
	SectionShipitStrip:   {kind: ListSection},
	SectionCMakeDefines:  {kind: MapSection},
	SectionAutoconfArgs:  {kind: ListSection},
}

// sectionNames is sorted longest first so header matching prefers
// "cmake.defines" over a shorter prefix.
var sectionNames = func() []string {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return names
}()

// KindOf returns the kind of a schema section.
func KindOf(section string) (SectionKind, bool) {
	s, ok := schema[section]
	return s.kind, ok
}

// SectionNames returns the recognized section names in sorted order.
func SectionNames() []string {
	names := append([]string(nil), sectionNames...)
	sort.Strings(names)
	return names
}

// splitHeader splits the text between the brackets of a header into the
// section name and the condition text. ok is false when no schema section
// matches.
func splitHeader(inner string) (name, cond string, ok bool) {
	for _, n := range sectionNames {
		if inner == n {
			return n, "", true
		}
		if strings.HasPrefix(inner, n+".") {
			return n, inner[len(n)+1:], true
		}
	}
	return "", "", false
}
