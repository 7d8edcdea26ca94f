// Package schema compiles the JSON-Schema documents attached to endpoint
// definitions into validator capabilities consumed by the handler registry.
package schema

import (
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator wraps a compiled JSON Schema. A nil *Validator is a valid
// "no schema declared" value and is never produced by Compile
type Validator struct {
	schema *jsonschema.Schema
	name   string
}

var ErrSchemaCompile = errors.New("failed to compile schema")

// Compile builds a validator from a raw JSON-Schema document. Compilation
// failures are startup-fatal for the service, so callers must not ignore
// the error
func Compile(name string, doc map[string]any) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	url := fmt.Sprintf("inline://%s.json", name)
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompile, name, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCompile, name, err)
	}

	return &Validator{
		schema: compiled,
		name:   name,
	}, nil
}

// Validate checks a value against the compiled schema. The returned error
// carries the schema library's structured failure detail
func (v *Validator) Validate(value any) error {
	if err := v.schema.Validate(value); err != nil {
		return fmt.Errorf("schema %s: %w", v.name, err)
	}
	return nil
}
