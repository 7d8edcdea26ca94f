package engine

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// pathRoot is the parsed root of a template path. The root is resolved
// explicitly rather than by probing the context, so a step that happens to
// share a reserved root name cannot change what a path means; reserved
// roots always win, and such a step remains addressable via stepsByName
type pathRoot int8

const (
	rootInput pathRoot = iota
	rootSteps
	rootStepsByName
	rootPreviousStep
)

var (
	ErrBadExpression   = errors.New("malformed template expression")
	ErrNullTraversal   = errors.New("cannot traverse null value")
	ErrNotIndexable    = errors.New("value is not indexable")
	ErrUnknownProperty = errors.New("property not found")
)

// Evaluate resolves a single path expression against the execution
// context. The expression may be wrapped in {{ }} delimiters; the path is
// split on dots, with bracket indices exploded into their own segments
// (name[0] becomes name, 0). Evaluation is pure: no caching, no side
// effects
func Evaluate(expr string, ctx *Context) (any, error) {
	segments, err := parsePath(expr)
	if err != nil {
		return nil, err
	}

	value, rest := resolveRoot(segments, ctx)
	return traverse(expr, value, rest)
}

func parsePath(expr string) ([]string, error) {
	path := strings.TrimSpace(expr)
	if strings.HasPrefix(path, "{{") && strings.HasSuffix(path, "}}") {
		path = strings.TrimSpace(path[2 : len(path)-2])
	}
	if path == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadExpression, expr)
	}

	var segments []string
	for _, part := range strings.Split(path, ".") {
		expanded, err := expandBrackets(expr, part)
		if err != nil {
			return nil, err
		}
		segments = append(segments, expanded...)
	}
	return segments, nil
}

// expandBrackets splits a dotted path part into its name and any bracket
// index segments, so greetings[0][1] yields greetings, 0, 1
func expandBrackets(expr, part string) ([]string, error) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		if part == "" || strings.ContainsAny(part, "]{}") {
			return nil, fmt.Errorf("%w: %q", ErrBadExpression, expr)
		}
		return []string{part}, nil
	}

	segments := []string{}
	if open > 0 {
		segments = append(segments, part[:open])
	}

	rest := part[open:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("%w: %q", ErrBadExpression, expr)
		}
		end := strings.IndexByte(rest, ']')
		if end < 1 {
			return nil, fmt.Errorf("%w: %q", ErrBadExpression, expr)
		}
		idx := rest[1:end]
		if idx == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadExpression, expr)
		}
		segments = append(segments, idx)
		rest = rest[end+1:]
	}
	return segments, nil
}

// resolveRoot parses the first segment into a tagged root and returns the
// starting value plus the remaining segments. A first segment that is not
// a reserved root addresses a named step's output directly, so the
// segment itself is retained for the stepsByName lookup
func resolveRoot(segments []string, ctx *Context) (any, []string) {
	switch parseRoot(segments[0]) {
	case rootInput:
		return ctx.Input, segments[1:]
	case rootSteps:
		return stepsValue(ctx), segments[1:]
	case rootPreviousStep:
		return ctx.PreviousStep, segments[1:]
	default:
		if segments[0] == "stepsByName" {
			return stepsByNameValue(ctx), segments[1:]
		}
		return stepsByNameValue(ctx), segments
	}
}

func parseRoot(segment string) pathRoot {
	switch segment {
	case "input":
		return rootInput
	case "steps":
		return rootSteps
	case "previousStep":
		return rootPreviousStep
	default:
		return rootStepsByName
	}
}

func stepsValue(ctx *Context) []any {
	if ctx.Steps == nil {
		return []any{}
	}
	return ctx.Steps
}

func stepsByNameValue(ctx *Context) map[string]any {
	if ctx.StepsByName == nil {
		return map[string]any{}
	}
	return ctx.StepsByName
}

func traverse(expr string, value any, segments []string) (any, error) {
	for _, segment := range segments {
		next, err := index(expr, value, segment)
		if err != nil {
			return nil, err
		}
		value = next
	}
	return value, nil
}

func index(expr string, value any, segment string) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf(
			"%w: at segment %q in %q", ErrNullTraversal, segment, expr,
		)
	case map[string]any:
		res, ok := v[segment]
		if !ok {
			return nil, fmt.Errorf(
				"%w: %q in %q (available: %s)",
				ErrUnknownProperty, segment, expr, availableKeys(v),
			)
		}
		return res, nil
	case []any:
		idx, err := strconv.Atoi(segment)
		if err != nil {
			return nil, fmt.Errorf(
				"%w: sequence index %q in %q",
				ErrNotIndexable, segment, expr,
			)
		}
		if idx < 0 || idx >= len(v) {
			return nil, fmt.Errorf(
				"%w: index %d in %q (available: 0..%d)",
				ErrUnknownProperty, idx, expr, len(v)-1,
			)
		}
		return v[idx], nil
	default:
		return nil, fmt.Errorf(
			"%w: at segment %q in %q (got %T)",
			ErrNotIndexable, segment, expr, value,
		)
	}
}

func availableKeys(m map[string]any) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}
