package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmbeddedTemplate is returned when a string mixes template syntax with
// other content. Partial interpolation is unsupported: an expression either
// occupies a string entirely or it is not an expression
var ErrEmbeddedTemplate = errors.New(
	"embedded template expressions are not supported",
)

// CompileTemplate recursively substitutes whole-string template expressions
// inside a JSON-shaped structure. A string matching {{...}} in full is
// replaced by its evaluated value with the value's type preserved; plain
// strings pass through unchanged. Sequences and mappings are compiled
// element-wise, preserving order and keys
func CompileTemplate(tmpl any, ctx *Context) (any, error) {
	switch v := tmpl.(type) {
	case string:
		return compileString(v, ctx)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			res, err := CompileTemplate(elem, ctx)
			if err != nil {
				return nil, err
			}
			out[key] = res
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			res, err := CompileTemplate(elem, ctx)
			if err != nil {
				return nil, err
			}
			out[i] = res
		}
		return out, nil
	default:
		return tmpl, nil
	}
}

func compileString(s string, ctx *Context) (any, error) {
	if expr, ok := wholeExpression(s); ok {
		return Evaluate(expr, ctx)
	}
	if strings.Contains(s, "{{") {
		return nil, fmt.Errorf("%w: %q", ErrEmbeddedTemplate, s)
	}
	return s, nil
}

// wholeExpression reports whether the string is a single whole-string
// template expression and, if so, returns its inner path
func wholeExpression(s string) (string, bool) {
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return "", false
	}
	if len(s) < 5 {
		return "", false
	}
	inner := s[2 : len(s)-2]
	if strings.Contains(inner, "{{") || strings.Contains(inner, "}}") {
		return "", false
	}
	return inner, true
}
