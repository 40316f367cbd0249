package manifest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *RawManifest {
	t.Helper()
	raw, err := Parse("test", []byte(text))
	require.NoError(t, err)
	return raw
}

const overlayManifest = `[manifest]
name = test

[dependencies]
gflags
glog

[dependencies.os=darwin]
openssl

[dependencies.os=windows]
openssl
zlib

[cmake.defines]
BUILD_SHARED_LIBS = OFF
BOOST_LINK_STATIC = ON

[cmake.defines.test=on]
BUILD_TESTS = ON

[cmake.defines.test=off]
BUILD_TESTS = OFF
`

func TestResolve_DependencyOverlay(t *testing.T) {
	raw := mustParse(t, overlayManifest)

	tests := []struct {
		os   string
		want []string
	}{
		{"darwin", []string{"gflags", "glog", "openssl"}},
		{"linux", []string{"gflags", "glog"}},
		{"windows", []string{"gflags", "glog", "openssl", "zlib"}},
		{"freebsd", []string{"gflags", "glog"}},
	}

	for _, tt := range tests {
		t.Run(tt.os, func(t *testing.T) {
			m := ResolveFor(raw, tt.os, false)
			assert.Equal(t, tt.want, m.Dependencies)
		})
	}
}

func TestResolve_DefineOverlay(t *testing.T) {
	raw := mustParse(t, overlayManifest)

	m := ResolveFor(raw, "linux", true)
	assert.Equal(t, map[string]string{
		"BUILD_SHARED_LIBS": "OFF",
		"BOOST_LINK_STATIC": "ON",
		"BUILD_TESTS":       "ON",
	}, m.CMakeDefines)

	m = ResolveFor(raw, "linux", false)
	assert.Equal(t, "OFF", m.CMakeDefines["BUILD_TESTS"])
}

func TestResolve_AbsentOverlayYieldsBase(t *testing.T) {
	raw := mustParse(t, `[manifest]
name = test

[dependencies]
a
b

[dependencies.os=darwin]
c

[dependencies.os=windows]
d
`)

	m := ResolveFor(raw, "freebsd", false)
	assert.Equal(t, []string{"a", "b"}, m.Dependencies)
}

func TestResolve_EmptyAndMissingSections(t *testing.T) {
	raw := mustParse(t, "[manifest]\nname = bare\n\n[dependencies]\n")

	m := ResolveFor(raw, "linux", false)
	assert.Equal(t, "bare", m.Name)
	assert.Empty(t, m.Dependencies)
	assert.NotNil(t, m.CMakeDefines)
	assert.Empty(t, m.CMakeDefines)
	assert.Empty(t, m.PathMappings)
	assert.Zero(t, m.JobWeightMiB)
	assert.Empty(t, m.Builder)
}

func TestResolve_TestOverlayWinsOverOSOverlay(t *testing.T) {
	// The test overlay is written first; it still applies after the OS overlay
	raw := mustParse(t, `[manifest]
name = test

[cmake.defines]
MODE = base

[cmake.defines.test=on]
MODE = test

[cmake.defines.os=linux]
MODE = linux
`)

	assert.Equal(t, "test", ResolveFor(raw, "linux", true).CMakeDefines["MODE"])
	assert.Equal(t, "linux", ResolveFor(raw, "linux", false).CMakeDefines["MODE"])
	assert.Equal(t, "test", ResolveFor(raw, "darwin", true).CMakeDefines["MODE"])
	assert.Equal(t, "base", ResolveFor(raw, "darwin", false).CMakeDefines["MODE"])
}

func TestResolve_CombinatorMentioningTestIsTestOverlay(t *testing.T) {
	raw := mustParse(t, `[manifest]
name = test

[cmake.defines.all(os=linux, test=on)]
MODE = linux-test

[cmake.defines.os=linux]
MODE = linux
`)

	assert.Equal(t, "linux-test", ResolveFor(raw, "linux", true).CMakeDefines["MODE"])
	assert.Equal(t, "linux", ResolveFor(raw, "linux", false).CMakeDefines["MODE"])
}

func TestResolve_FileOrderWithinPass(t *testing.T) {
	raw := mustParse(t, `[manifest]
name = test

[cmake.defines.os=linux]
MODE = first

[cmake.defines.not(os=darwin)]
MODE = second
`)

	assert.Equal(t, "second", ResolveFor(raw, "linux", false).CMakeDefines["MODE"])
}

func TestResolve_Fields(t *testing.T) {
	raw := mustParse(t, `[manifest]
name = lib
fbsource_path = fbcode/lib
shipit_project = lib
shipit_fbcode_builder = true

[git]
repo_url = https://example.com/lib.git
rev = v1.0
branch = main
depth = 1

[download]
url = https://example.com/lib.tar.gz
sha256 = abc

[build]
builder = autoconf
subdir = lib-1.0
job_weight_mib = 2048
build_in_src_dir = true

[build.os=windows]
builder = cmake
job_weight_mib = 4096

[autoconf.args]
--disable-shared
--enable-static

[autoconf.args.os=linux]
--with-pic
`)

	m := ResolveFor(raw, "linux", false)
	assert.Equal(t, &Manifest{
		Name:                "lib",
		FbsourcePath:        "fbcode/lib",
		ShipitProject:       "lib",
		ShipitFbcodeBuilder: true,
		RepoURL:             "https://example.com/lib.git",
		Rev:                 "v1.0",
		Branch:              "main",
		Depth:               1,
		DownloadURL:         "https://example.com/lib.tar.gz",
		DownloadSHA256:      "abc",
		Builder:             BuilderAutoconf,
		Subdir:              "lib-1.0",
		BuildInSrcDir:       true,
		JobWeightMiB:        2048,
		CMakeDefines:        map[string]string{},
		AutoconfArgs:        []string{"--disable-shared", "--enable-static", "--with-pic"},
	}, m)

	win := ResolveFor(raw, "windows", false)
	assert.Equal(t, BuilderCMake, win.Builder)
	assert.Equal(t, 4096, win.JobWeightMiB)
	assert.Equal(t, "lib-1.0", win.Subdir)
}

func TestResolve_ListsDeduplicate(t *testing.T) {
	raw := mustParse(t, `[manifest]
name = test

[dependencies]
glog
openssl

[dependencies.os=darwin]
openssl
zstd

[shipit.strip]
^a$

[shipit.strip.os=darwin]
^a$
^b$

[shipit.pathmap]
src = dst

[shipit.pathmap.os=darwin]
src = mac
other = here
`)

	m := ResolveFor(raw, "darwin", false)
	assert.Equal(t, []string{"glog", "openssl", "zstd"}, m.Dependencies)
	assert.Equal(t, []string{"^a$", "^b$"}, m.StripPatterns)
	assert.Equal(t, []PathMapping{
		{Source: "src", Dest: "mac"},
		{Source: "other", Dest: "here"},
	}, m.PathMappings)
}

func TestResolve_Folly(t *testing.T) {
	raw, err := Parse("folly", readTestdata(t, "folly"))
	require.NoError(t, err)

	m := ResolveFor(raw, "darwin", true)

	assert.Equal(t, "folly", m.Name)
	assert.Equal(t, "https://github.com/facebook/folly.git", m.RepoURL)
	assert.Equal(t, BuilderCMake, m.Builder)
	assert.Equal(t, 1024, m.JobWeightMiB)
	assert.True(t, m.ShipitFbcodeBuilder)
	assert.Equal(t, []string{
		"gflags", "glog", "googletest", "boost", "libevent",
		"double-conversion", "fmt", "lz4", "snappy", "zstd", "openssl",
	}, m.Dependencies)
	assert.Equal(t, []PathMapping{
		{Source: "fbcode/folly/public_tld", Dest: "."},
		{Source: "fbcode/folly", Dest: "folly"},
	}, m.PathMappings)
	assert.Equal(t, []string{
		`^fbcode/folly/folly-config\.h$`,
		`^fbcode/folly/public_tld/build/facebook_.*`,
	}, m.StripPatterns)
	assert.Equal(t, map[string]string{
		"BUILD_SHARED_LIBS": "OFF",
		"BOOST_LINK_STATIC": "ON",
		"BUILD_TESTS":       "ON",
		"BUILD_BENCHMARKS":  "OFF",
	}, m.CMakeDefines)

	freebsd := ResolveFor(raw, "freebsd", false)
	assert.Equal(t, "NO", freebsd.CMakeDefines["LIBDWARF_FOUND"])
	assert.Equal(t, "OFF", freebsd.CMakeDefines["BUILD_TESTS"])
	assert.NotContains(t, freebsd.Dependencies, "openssl")
}

func TestResolve_DeterministicAndIdempotent(t *testing.T) {
	text := readTestdata(t, "folly")
	targets := []Context{
		NewContext("linux", false),
		NewContext("linux", true),
		NewContext("darwin", true),
		NewContext("windows", false),
		{OS: "linux", Distro: "ubuntu", DistroVersion: "22.04", SharedLibs: true},
	}

	for _, target := range targets {
		t.Run(target.String(), func(t *testing.T) {
			raw1, err := Parse("folly", text)
			require.NoError(t, err)
			raw2, err := Parse("folly", text)
			require.NoError(t, err)

			first := Resolve(raw1, target)
			assert.Equal(t, first, Resolve(raw2, target))
			assert.Equal(t, first, Resolve(raw1, target))

			// Resolving does not disturb the raw manifest
			assert.Equal(t, raw2, raw1)
		})
	}
}

func TestResolve_CommentsNeverContribute(t *testing.T) {
	withComments := `# header comment
[manifest]
# inside manifest
name = test

[dependencies]
# gflags
glog

   # openssl
[cmake.defines]
# FOO = BAR
; BAZ = QUX
A = 1
#
`
	without := "[manifest]\nname = test\n[dependencies]\nglog\n[cmake.defines]\nA = 1\n"

	for _, os := range []string{"linux", "darwin"} {
		got := ResolveFor(mustParse(t, withComments), os, false)
		want := ResolveFor(mustParse(t, without), os, false)
		assert.Equal(t, want, got)
		assert.Equal(t, []string{"glog"}, got.Dependencies)
		assert.Equal(t, map[string]string{"A": "1"}, got.CMakeDefines)
	}
}

func TestManifest_JSONRoundTrip(t *testing.T) {
	raw, err := Parse("folly", readTestdata(t, "folly"))
	require.NoError(t, err)

	for _, m := range []*Manifest{
		ResolveFor(raw, "linux", false),
		ResolveFor(mustParse(t, "[manifest]\nname = bare\n"), "linux", false),
	} {
		data, err := json.Marshal(m)
		require.NoError(t, err)

		var decoded Manifest
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, m, &decoded)
	}
}
