package manifest

import "strconv"

// Resolve merges the sections of raw that apply to ctx into a Manifest.
//
// Base sections apply first. Matching conditional sections follow in two
// passes: those whose condition does not mention the test variable, then
// those that do. Within a pass, sections apply in file order. A key applied
// later overwrites the same key applied earlier; list sections append,
// skipping entries already present. Conditions that do not match ctx are
// skipped.
func Resolve(raw *RawManifest, ctx Context) *Manifest {
	m := &Manifest{CMakeDefines: make(map[string]string)}
	for _, sec := range applicable(raw, ctx) {
		apply(m, sec)
	}
	return m
}

// ResolveFor resolves raw for an OS and test mode.
func ResolveFor(raw *RawManifest, os string, test bool) *Manifest {
	return Resolve(raw, NewContext(os, test))
}

func applicable(raw *RawManifest, ctx Context) []*Section {
	var base, overlays, testOverlays []*Section
	for _, sec := range raw.Sections {
		switch {
		case sec.Condition == nil:
			base = append(base, sec)
		case !sec.Condition.Eval(ctx):
		case sec.Condition.References(VarTest):
			testOverlays = append(testOverlays, sec)
		default:
			overlays = append(overlays, sec)
		}
	}
	out := make([]*Section, 0, len(base)+len(overlays)+len(testOverlays))
	out = append(out, base...)
	out = append(out, overlays...)
	return append(out, testOverlays...)
}

func apply(m *Manifest, sec *Section) {
	for _, e := range sec.Entries {
		switch sec.Name {
		case SectionDependencies:
			m.Dependencies = appendUnique(m.Dependencies, e.Key)
		case SectionShipitStrip:
			m.StripPatterns = appendUnique(m.StripPatterns, e.Key)
		case SectionAutoconfArgs:
			m.AutoconfArgs = append(m.AutoconfArgs, e.Key)
		case SectionCMakeDefines:
			m.CMakeDefines[e.Key] = e.Value
		case SectionShipitPathmap:
			m.PathMappings = setMapping(m.PathMappings, e.Key, e.Value)
		default:
			setField(m, sec.Name, e.Key, e.Value)
		}
	}
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func setMapping(mappings []PathMapping, src, dest string) []PathMapping {
	for i := range mappings {
		if mappings[i].Source == src {
			mappings[i].Dest = dest
			return mappings
		}
	}
	return append(mappings, PathMapping{Source: src, Dest: dest})
}

// setField assigns a field section entry. Values were type checked by Parse.
func setField(m *Manifest, section, key, value string) {
	switch section + "." + key {
	case "manifest.name":
		m.Name = value
	case "manifest.fbsource_path":
		m.FbsourcePath = value
	case "manifest.shipit_project":
		m.ShipitProject = value
	case "manifest.shipit_fbcode_builder":
		m.ShipitFbcodeBuilder, _ = strconv.ParseBool(value)
	case "git.repo_url":
		m.RepoURL = value
	case "git.rev":
		m.Rev = value
	case "git.branch":
		m.Branch = value
	case "git.depth":
		m.Depth, _ = strconv.Atoi(value)
	case "download.url":
		m.DownloadURL = value
	case "download.sha256":
		m.DownloadSHA256 = value
	case "build.builder":
		m.Builder = BuilderKind(value)
	case "build.subdir":
		m.Subdir = value
	case "build.build_in_src_dir":
		m.BuildInSrcDir, _ = strconv.ParseBool(value)
	case "build.job_weight_mib":
		m.JobWeightMiB, _ = strconv.Atoi(value)
	}
}
