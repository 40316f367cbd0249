package manifest

import (
	"fmt"
	"strings"
	"unicode"
)

// Condition variables
const (
	VarOS            = "os"
	VarDistro        = "distro"
	VarDistroVersion = "distro_vers"
	VarFB            = "fb"
	VarFBSource      = "fbsource"
	VarTest          = "test"
	VarSharedLibs    = "shared_libs"
)

// conditionVars lists the variables a condition may reference, in
// fingerprint order.
var conditionVars = []string{
	VarOS,
	VarDistro,
	VarDistroVersion,
	VarFB,
	VarFBSource,
	VarTest,
	VarSharedLibs,
}

func isConditionVar(name string) bool {
	for _, v := range conditionVars {
		if v == name {
			return true
		}
	}
	return false
}

// Expr is a parsed section condition.
type Expr interface {
	// Eval reports whether the condition holds for ctx.
	Eval(ctx Context) bool
	// References reports whether the condition mentions the variable.
	References(name string) bool
	// String returns the canonical text of the condition.
	String() string
}

type equalsExpr struct {
	name  string
	value string
}

func (e *equalsExpr) Eval(ctx Context) bool {
	v, _ := ctx.Get(e.name)
	return v == e.value
}

func (e *equalsExpr) References(name string) bool { return e.name == name }
func (e *equalsExpr) String() string { return e.name + "=" + e.value }

type allExpr struct{ exprs []Expr }

func (e *allExpr) Eval(ctx Context) bool {
	for _, x := range e.exprs {
		if !x.Eval(ctx) {
			return false
		}
	}
	return true
}

func (e *allExpr) References(name string) bool { return anyReferences(e.exprs, name) }
func (e *allExpr) String() string { return joinExprs("all", e.exprs) }

type anyExpr struct{ exprs []Expr }

func (e *anyExpr) Eval(ctx Context) bool {
	for _, x := range e.exprs {
		if x.Eval(ctx) {
			return true
		}
	}
	return false
}

func (e *anyExpr) References(name string) bool { return anyReferences(e.exprs, name) }
func (e *anyExpr) String() string { return joinExprs("any", e.exprs) }

type notExpr struct{ expr Expr }

func (e *notExpr) Eval(ctx Context) bool { return !e.expr.Eval(ctx) }
func (e *notExpr) References(name string) bool { return e.expr.References(name) }
func (e *notExpr) String() string { return "not(" + e.expr.String() + ")" }

func anyReferences(exprs []Expr, name string) bool {
	for _, x := range exprs {
		if x.References(name) {
			return true
		}
	}
	return false
}

func joinExprs(fn string, exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, x := range exprs {
		parts[i] = x.String()
	}
	return fn + "(" + strings.Join(parts, ", ") + ")"
}

// ParseExpr parses a condition such as "os=linux" or
// "all(os=linux, not(test=on))". Errors wrap ErrInvalidCondition.
func ParseExpr(s string) (Expr, error) {
	p := &exprParser{src: s, toks: tokenizeExpr(s)}
	e, err := p.parse()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.errorf("unexpected %q after expression", tok)
	}
	return e, nil
}

type exprParser struct {
	src  string
	toks []string
	pos  int
}

func (p *exprParser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) next() (string, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}
	return tok, ok
}

func (p *exprParser) expect(want string) error {
	tok, ok := p.next()
	if !ok {
		return p.errorf("expected %q, got end of condition", want)
	}
	if tok != want {
		return p.errorf("expected %q, got %q", want, tok)
	}
	return nil
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidCondition, p.src, fmt.Sprintf(format, args...))
}

func (p *exprParser) parse() (Expr, error) {
	tok, ok := p.next()
	if !ok {
		return nil, p.errorf("empty expression")
	}
	if isPunct(tok) {
		return nil, p.errorf("unexpected %q", tok)
	}

	next, _ := p.peek()
	switch next {
	case "(":
		p.pos++
		switch tok {
		case "all", "any":
			exprs, err := p.parseList()
			if err != nil {
				return nil, err
			}
			if tok == "all" {
				return &allExpr{exprs: exprs}, nil
			}
			return &anyExpr{exprs: exprs}, nil
		case "not":
			e, err := p.parse()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return &notExpr{expr: e}, nil
		default:
			return nil, p.errorf("unknown function %q", tok)
		}
	case "=":
		p.pos++
		if !isConditionVar(tok) {
			return nil, p.errorf("unknown variable %q", tok)
		}
		value, ok := p.next()
		if !ok || isPunct(value) {
			return nil, p.errorf("missing value for %q", tok)
		}
		return &equalsExpr{name: tok, value: value}, nil
	default:
		return nil, p.errorf("expected '=' after %q", tok)
	}
}

func (p *exprParser) parseList() ([]Expr, error) {
	var exprs []Expr
	if tok, _ := p.peek(); tok == ")" {
		p.pos++
		return exprs, nil
	}
	for {
		e, err := p.parse()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)

		tok, ok := p.next()
		if !ok {
			return nil, p.errorf("unterminated argument list")
		}
		switch tok {
		case ",":
			continue
		case ")":
			return exprs, nil
		default:
			return nil, p.errorf("expected ',' or ')', got %q", tok)
		}
	}
}

func isPunct(tok string) bool {
	return tok == "(" || tok == ")" || tok == "," || tok == "="
}

func tokenizeExpr(s string) []string {
	var toks []string
	start := -1
	flush := func(end int) {
		if start >= 0 {
			toks = append(toks, s[start:end])
			start = -1
		}
	}
	for i, r := range s {
		switch {
		case r == '(' || r == ')' || r == ',' || r == '=':
			flush(i)
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(s))
	return toks
}
