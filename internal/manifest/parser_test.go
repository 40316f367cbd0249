package manifest

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParse_Folly(t *testing.T) {
	raw, err := Parse("folly", readTestdata(t, "folly"))
	require.NoError(t, err)

	assert.Equal(t, "folly", raw.Source)
	assert.Equal(t, "folly", raw.Name())

	headers := make([]string, 0, len(raw.Sections))
	for _, s := range raw.Sections {
		headers = append(headers, s.Header())
	}
	assert.Equal(t, []string{
		"[manifest]",
		"[git]",
		"[build]",
		"[dependencies]",
		"[dependencies.os=darwin]",
		"[dependencies.os=windows]",
		"[shipit.pathmap]",
		"[shipit.strip]",
		"[cmake.defines]",
		"[cmake.defines.os=freebsd]",
		"[cmake.defines.test=on]",
		"[cmake.defines.test=off]",
	}, headers)

	deps := raw.Section(SectionDependencies)
	require.NotNil(t, deps)
	assert.Len(t, deps.Entries, 10)
	assert.Equal(t, "gflags", deps.Entries[0].Key)
	assert.Equal(t, 15, deps.Entries[0].Line)

	pathmap := raw.Section(SectionShipitPathmap)
	require.NotNil(t, pathmap)
	v, ok := pathmap.Get("fbcode/folly/public_tld")
	assert.True(t, ok)
	assert.Equal(t, ".", v)

	assert.Len(t, raw.Conditionals(SectionCMakeDefines), 3)
	assert.Len(t, raw.Conditionals(SectionDependencies), 2)
	assert.Empty(t, raw.Conditionals(SectionGit))
}

func TestParse_EntryForms(t *testing.T) {
	text := `
[cmake.defines]
  SPACED   =   value with spaces
TIGHT=1
EMPTY =
URL = http://example.com/?a=b

[dependencies]
  padded
name=with-equals
`
	raw, err := Parse("x", []byte("[manifest]\nname = x\n"+text))
	require.NoError(t, err)

	defines := raw.Section(SectionCMakeDefines)
	require.NotNil(t, defines)
	assert.Equal(t, []Entry{
		{Key: "SPACED", Value: "value with spaces", Line: 5},
		{Key: "TIGHT", Value: "1", Line: 6},
		{Key: "EMPTY", Value: "", Line: 7},
		{Key: "URL", Value: "http://example.com/?a=b", Line: 8},
	}, defines.Entries)

	deps := raw.Section(SectionDependencies)
	require.NotNil(t, deps)
	assert.Equal(t, []Entry{
		{Key: "padded", Line: 11},
		{Key: "name=with-equals", Line: 12},
	}, deps.Entries)
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	text := "# leading comment\n" +
		"\n" +
		"[manifest]\n" +
		"; semicolon comment\n" +
		"name = x\n" +
		"\n" +
		"[dependencies]\n" +
		"# comment inside a list\n" +
		"   # indented comment\n" +
		"\t\n" +
		"a\n" +
		"\r\n" +
		"b\r\n" +
		"# trailing comment"

	raw, err := Parse("x", []byte(text))
	require.NoError(t, err)

	deps := raw.Section(SectionDependencies)
	require.NotNil(t, deps)
	require.Len(t, deps.Entries, 2)
	assert.Equal(t, "a", deps.Entries[0].Key)
	assert.Equal(t, "b", deps.Entries[1].Key)

	manifest := raw.Section(SectionManifest)
	require.NotNil(t, manifest)
	assert.Len(t, manifest.Entries, 1)
}

func TestParse_CombinatorConditions(t *testing.T) {
	text := `[manifest]
name = x

[cmake.defines.all(os=linux, not(test=on))]
A = 1

[build.any(os=darwin,os=freebsd)]
builder = make

[cmake.defines.distro_vers=18.04]
B = 2
`
	raw, err := Parse("x", []byte(text))
	require.NoError(t, err)

	defs := raw.Conditionals(SectionCMakeDefines)
	require.Len(t, defs, 2)
	assert.Equal(t, "all(os=linux, not(test=on))", defs[0].Condition.String())
	assert.True(t, defs[0].Condition.References(VarTest))
	assert.Equal(t, "distro_vers=18.04", defs[1].Condition.String())

	build := raw.Conditionals(SectionBuild)
	require.Len(t, build, 1)
	assert.Equal(t, "[build.any(os=darwin, os=freebsd)]", build[0].Header())
}

func TestParse_Errors(t *testing.T) {
	const head = "[manifest]\nname = x\n"

	tests := []struct {
		name     string
		text     string
		sentinel error
		line     int
	}{
		{
			name:     "header missing bracket",
			text:     head + "[dependencies\n",
			sentinel: ErrMalformedHeader,
			line:     3,
		},
		{
			name:     "empty header",
			text:     head + "[ ]\n",
			sentinel: ErrMalformedHeader,
			line:     3,
		},
		{
			name:     "condition missing value",
			text:     head + "[dependencies.os]\nfoo\n",
			sentinel: ErrMalformedHeader,
			line:     3,
		},
		{
			name:     "condition missing value is also an invalid condition",
			text:     head + "[dependencies.os]\nfoo\n",
			sentinel: ErrInvalidCondition,
			line:     3,
		},
		{
			name:     "trailing dot",
			text:     head + "[dependencies.]\n",
			sentinel: ErrInvalidCondition,
			line:     3,
		},
		{
			name:     "unknown condition variable",
			text:     head + "[dependencies.arch=arm64]\n",
			sentinel: ErrInvalidCondition,
			line:     3,
		},
		{
			name:     "unknown section",
			text:     head + "[install]\n",
			sentinel: ErrUnknownSection,
			line:     3,
		},
		{
			name:     "section name prefix only",
			text:     head + "[gitx]\n",
			sentinel: ErrUnknownSection,
			line:     3,
		},
		{
			name:     "conditional manifest section",
			text:     head + "[manifest.os=linux]\nname = y\n",
			sentinel: ErrMalformedHeader,
			line:     3,
		},
		{
			name:     "duplicate key",
			text:     head + "[cmake.defines]\nA = 1\nA = 2\n",
			sentinel: ErrDuplicateKey,
			line:     5,
		},
		{
			name:     "duplicate list entry",
			text:     head + "[dependencies]\nglog\nglog\n",
			sentinel: ErrDuplicateKey,
			line:     5,
		},
		{
			name:     "duplicate section",
			text:     head + "[cmake.defines.os=linux]\nA = 1\n[cmake.defines.os=linux]\nB = 1\n",
			sentinel: ErrDuplicateSection,
			line:     5,
		},
		{
			name:     "line without equals",
			text:     head + "[git]\nrepo_url\n",
			sentinel: ErrMalformedLine,
			line:     4,
		},
		{
			name:     "empty key",
			text:     head + "[cmake.defines]\n= ON\n",
			sentinel: ErrMalformedLine,
			line:     4,
		},
		{
			name:     "entry before first section",
			text:     "stray\n" + head,
			sentinel: ErrMalformedLine,
			line:     1,
		},
		{
			name:     "unknown field",
			text:     head + "[git]\nurl = https://example.com\n",
			sentinel: ErrUnknownField,
			line:     4,
		},
		{
			name:     "non-integer job weight",
			text:     head + "[build]\njob_weight_mib = lots\n",
			sentinel: ErrInvalidValue,
			line:     4,
		},
		{
			name:     "non-boolean flag",
			text:     head + "[build]\nbuild_in_src_dir = maybe\n",
			sentinel: ErrInvalidValue,
			line:     4,
		},
		{
			name:     "strip pattern does not compile",
			text:     head + "[shipit.strip]\n^fbcode/(unclosed\n",
			sentinel: ErrInvalidValue,
			line:     4,
		},
		{
			name:     "missing manifest section",
			text:     "[dependencies]\nglog\n",
			sentinel: ErrMissingField,
			line:     0,
		},
		{
			name:     "empty manifest name",
			text:     "[manifest]\nname =\n",
			sentinel: ErrMissingField,
			line:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Parse("bad", []byte(tt.text))

			require.Error(t, err)
			assert.Nil(t, raw)
			assert.ErrorIs(t, err, tt.sentinel)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, "bad", pe.Source)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	_, err := Parse("folly", []byte("[manifest]\nname = folly\n[dependencies.os]\n"))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "folly:3:")
	assert.Contains(t, msg, `"[dependencies.os]"`)
	assert.Contains(t, msg, "malformed section header")

	pe := &ParseError{Err: ErrMissingField, Reason: "manifest.name is required"}
	assert.Equal(t, "missing required field: manifest.name is required", pe.Error())

	pe = &ParseError{}
	assert.Equal(t, "parse error", pe.Error())
}

func TestParse_EmptyText(t *testing.T) {
	_, err := Parse("empty", nil)
	assert.ErrorIs(t, err, ErrMissingField)
}
