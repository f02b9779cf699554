package dsl

import (
	"fmt"
	"strings"
)

// Attr is one parsed attribute expression: `name = value` or `name(arg, ...)`.
// Exactly one of Value/Args is meaningful, selected by HasArgs.
type Attr struct {
	Name    string
	Value   string
	Args    []string
	HasArgs bool
}

// parseAttrList tokenizes a field's `hid:"..."` tag body into a sequence of
// attribute expressions. The grammar is fixed and closed (spec.md §4.1):
// each expression is `name = value` or `name(arg, arg, ...)`, expressions are
// comma-separated at the top level, and a paren-enclosed argument list's
// internal commas do not split expressions.
//
// parseAttrList never panics: malformed input yields a non-nil error whose
// text names the offending fragment, letting the caller attach a span.
func parseAttrList(s string) ([]Attr, error) {
	var attrs []Attr
	depth := 0
	start := 0
	flush := func(end int) error {
		tok := strings.TrimSpace(s[start:end])
		if tok == "" {
			return nil
		}
		a, err := parseOneAttr(tok)
		if err != nil {
			return err
		}
		attrs = append(attrs, a)
		return nil
	}
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unmatched ')' at offset %d in %q", i, s)
			}
		case ',':
			if depth == 0 {
				if err := flush(i); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unmatched '(' in %q", s)
	}
	if err := flush(len(s)); err != nil {
		return nil, err
	}
	return attrs, nil
}

func parseOneAttr(tok string) (Attr, error) {
	if i := strings.IndexByte(tok, '('); i >= 0 {
		if !strings.HasSuffix(tok, ")") {
			return Attr{}, fmt.Errorf("missing closing ')' in %q", tok)
		}
		name := strings.TrimSpace(tok[:i])
		if name == "" {
			return Attr{}, fmt.Errorf("empty attribute name in %q", tok)
		}
		inner := tok[i+1 : len(tok)-1]
		var args []string
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				args = append(args, part)
			}
		}
		return Attr{Name: name, Args: args, HasArgs: true}, nil
	}
	if i := strings.IndexByte(tok, '='); i >= 0 {
		name := strings.TrimSpace(tok[:i])
		val := strings.TrimSpace(tok[i+1:])
		if name == "" {
			return Attr{}, fmt.Errorf("empty attribute name in %q", tok)
		}
		return Attr{Name: name, Value: val}, nil
	}
	name := strings.TrimSpace(tok)
	if name == "" {
		return Attr{}, fmt.Errorf("empty attribute expression")
	}
	// Bare name, e.g. "input" before its qualifier list, or "endcollection".
	return Attr{Name: name}, nil
}
