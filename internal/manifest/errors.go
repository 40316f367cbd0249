package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the manifest package
var (
	// ErrMalformedHeader indicates a section header that cannot be parsed
	ErrMalformedHeader = errors.New("malformed section header")

	// ErrUnknownSection indicates a section name outside the schema
	ErrUnknownSection = errors.New("unknown section")

	// ErrInvalidCondition indicates a section condition that is not a valid expression
	ErrInvalidCondition = errors.New("invalid condition")

	// ErrMalformedLine indicates an entry line that cannot be parsed
	ErrMalformedLine = errors.New("malformed line")

	// ErrDuplicateKey indicates a key repeated within one section
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDuplicateSection indicates a section header repeated in one manifest
	ErrDuplicateSection = errors.New("duplicate section")

	// ErrUnknownField indicates a field the section does not allow
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidValue indicates a field value of the wrong type
	ErrInvalidValue = errors.New("invalid value")

	// ErrMissingField indicates a required field is absent
	ErrMissingField = errors.New("missing required field")

	// ErrManifestNotFound indicates the source has no manifest with the requested name
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrInvalidName indicates a manifest name that cannot address a file
	ErrInvalidName = errors.New("invalid manifest name")

	// ErrNameMismatch indicates manifest.name differs from the name it was loaded under
	ErrNameMismatch = errors.New("manifest name does not match file name")
)

// ParseError describes a failure to parse manifest text. Line is 1-based;
// zero means the error is not tied to a single line.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteByte(':')
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:", e.Line)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("parse error")
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " in %q", e.Text)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(source string, line int, text string, err error, format string, args ...any) *ParseError {
	return &ParseError{
		Source: source,
		Line:   line,
		Text:   text,
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
