package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parse parses manifest text. source names the text in error messages,
// usually the manifest file name. On failure Parse returns a *ParseError and
// no partial result.
func Parse(source string, text []byte) (*RawManifest, error) {
	p := &parser{
		source:  source,
		raw:     &RawManifest{Source: source},
		headers: make(map[string]int),
	}
	if err := p.run(string(text)); err != nil {
		return nil, err
	}
	if err := p.checkRequired(); err != nil {
		return nil, err
	}
	return p.raw, nil
}

type parser struct {
	source  string
	raw     *RawManifest
	cur     *Section
	keys    map[string]bool
	headers map[string]int
}

func (p *parser) run(text string) error {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lineNo := i + 1
		t := strings.TrimSpace(line)
		if isIgnored(t) {
			continue
		}
		if t[0] == '[' {
			if err := p.header(t, lineNo); err != nil {
				return err
			}
			continue
		}
		if err := p.entry(t, lineNo); err != nil {
			return err
		}
	}
	return nil
}

// isIgnored reports whether a trimmed line is blank or a comment.
func isIgnored(t string) bool {
	return t == "" || t[0] == '#' || t[0] == ';'
}

func (p *parser) header(t string, lineNo int) error {
	if !strings.HasSuffix(t, "]") {
		return newParseError(p.source, lineNo, t, ErrMalformedHeader, "missing closing bracket")
	}
	inner := strings.TrimSpace(t[1 : len(t)-1])
	if inner == "" {
		return newParseError(p.source, lineNo, t, ErrMalformedHeader, "empty section name")
	}

	name, condText, ok := splitHeader(inner)
	if !ok {
		return newParseError(p.source, lineNo, t, ErrUnknownSection, "%q is not a recognized section", inner)
	}

	sec := &Section{Name: name, Line: lineNo}
	if condText != "" || strings.HasSuffix(inner, ".") {
		if schema[name].unconditional {
			return newParseError(p.source, lineNo, t, ErrMalformedHeader, "section %q cannot be conditional", name)
		}
		cond, err := ParseExpr(condText)
		if err != nil {
			return &ParseError{
				Source: p.source,
				Line:   lineNo,
				Text:   t,
				Reason: err.Error(),
				Err:    fmt.Errorf("%w: %w", ErrMalformedHeader, ErrInvalidCondition),
			}
		}
		sec.Condition = cond
	}

	key := sec.Header()
	if prev, dup := p.headers[key]; dup {
		return newParseError(p.source, lineNo, t, ErrDuplicateSection, "%s already defined on line %d", key, prev)
	}
	p.headers[key] = lineNo

	p.raw.Sections = append(p.raw.Sections, sec)
	p.cur = sec
	p.keys = make(map[string]bool)
	return nil
}

func (p *parser) entry(t string, lineNo int) error {
	if p.cur == nil {
		return newParseError(p.source, lineNo, t, ErrMalformedLine, "entry before first section header")
	}
	def := schema[p.cur.Name]

	var key, value string
	if def.kind == ListSection {
		key = t
	} else {
		idx := strings.IndexByte(t, '=')
		if idx < 0 {
			return newParseError(p.source, lineNo, t, ErrMalformedLine, "expected \"key = value\" in section %s", p.cur.Header())
		}
		key = strings.TrimSpace(t[:idx])
		value = strings.TrimSpace(t[idx+1:])
		if key == "" {
			return newParseError(p.source, lineNo, t, ErrMalformedLine, "empty key")
		}
	}

	if p.keys[key] {
		return newParseError(p.source, lineNo, t, ErrDuplicateKey, "%q repeated in section %s", key, p.cur.Header())
	}

	if err := p.checkValue(def, key, value); err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Line = lineNo
			pe.Text = t
		}
		return err
	}

	p.keys[key] = true
	p.cur.Entries = append(p.cur.Entries, Entry{Key: key, Value: value, Line: lineNo})
	return nil
}

func (p *parser) checkValue(def sectionSchema, key, value string) error {
	switch def.kind {
	case FieldSection:
		ft, ok := def.fields[key]
		if !ok {
			return newParseError(p.source, 0, "", ErrUnknownField, "%q is not a field of section %s", key, p.cur.Name)
		}
		switch ft {
		case intField:
			if _, err := strconv.Atoi(value); err != nil {
				return newParseError(p.source, 0, "", ErrInvalidValue, "%s.%s must be an integer", p.cur.Name, key)
			}
		case boolField:
			if _, err := strconv.ParseBool(value); err != nil {
				return newParseError(p.source, 0, "", ErrInvalidValue, "%s.%s must be true or false", p.cur.Name, key)
			}
		}
	case ListSection:
		if p.cur.Name == SectionShipitStrip {
			if _, err := regexp.Compile(key); err != nil {
				return newParseError(p.source, 0, "", ErrInvalidValue, "strip pattern does not compile: %v", err)
			}
		}
	}
	return nil
}

func (p *parser) checkRequired() error {
	for _, name := range sectionNames {
		def := schema[name]
		if len(def.required) == 0 {
			continue
		}
		sec := p.raw.Section(name)
		for _, field := range def.required {
			if sec == nil {
				return newParseError(p.source, 0, "", ErrMissingField, "%s.%s is required", name, field)
			}
			if v, ok := sec.Get(field); !ok || v == "" {
				return newParseError(p.source, sec.Line, sec.Header(), ErrMissingField, "%s.%s is required", name, field)
			}
		}
	}
	return nil
}
