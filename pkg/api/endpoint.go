package api

import (
	"errors"
	"fmt"
)

type (
	// Name is a string identifier for endpoints and chain steps
	Name string

	// HandlerKind identifies which handler variant backs an endpoint
	HandlerKind string

	// EndpointDef describes a single declarative endpoint. Exactly one of
	// the handler variants must be set; this is enforced by Validate at
	// configuration load, before anything is registered.
	EndpointDef struct {
		Prompt       *PromptSpec    `json:"promptHandler,omitempty" yaml:"promptHandler,omitempty"`
		Script       *ScriptSpec    `json:"scriptHandler,omitempty" yaml:"scriptHandler,omitempty"`
		Query        *QuerySpec     `json:"workiqHandler,omitempty" yaml:"workiqHandler,omitempty"`
		Chain        *ChainSpec     `json:"chainHandler,omitempty" yaml:"chainHandler,omitempty"`
		InputSchema  map[string]any `json:"inputSchema,omitempty" yaml:"inputSchema,omitempty"`
		OutputSchema map[string]any `json:"outputSchema,omitempty" yaml:"outputSchema,omitempty"`
		Name         Name           `json:"name" yaml:"name"`
	}

	// PromptSpec configures a prompt-call endpoint. The prompt text may
	// reference invocation input via {{input.key}} placeholders
	PromptSpec struct {
		Model       string  `json:"model" yaml:"model"`
		Prompt      string  `json:"prompt" yaml:"prompt"`
		MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
		Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	}

	// ScriptSpec configures an embedded script endpoint. The script
	// receives the invocation input bound to a local named "input" and
	// returns a table of outputs
	ScriptSpec struct {
		Script string `json:"script" yaml:"script"`
	}

	// QuerySpec configures a workiq shell-query endpoint. Argument vector
	// elements may carry {{input.key}} placeholders. ResultPath, when
	// present, extracts a field from the command's JSON output
	QuerySpec struct {
		Command    string   `json:"command" yaml:"command"`
		Args       []string `json:"args,omitempty" yaml:"args,omitempty"`
		ResultPath string   `json:"result_path,omitempty" yaml:"result_path,omitempty"`
		TimeoutMs  int64    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	}
)

const (
	KindPrompt HandlerKind = "prompt"
	KindScript HandlerKind = "script"
	KindQuery  HandlerKind = "query"
	KindChain  HandlerKind = "chain"
)

var (
	ErrEndpointNameEmpty = errors.New("endpoint name empty")
	ErrNoHandlerSpec     = errors.New("endpoint declares no handler")
	ErrManyHandlerSpecs  = errors.New("endpoint declares multiple handlers")
	ErrPromptEmpty       = errors.New("prompt text empty")
	ErrScriptEmpty       = errors.New("script source empty")
	ErrQueryCommandEmpty = errors.New("query command empty")
	ErrNegativeMaxTokens = errors.New("max_tokens cannot be negative")
	ErrNegativeTimeout   = errors.New("timeout_ms cannot be negative")
)

// Kind returns the handler variant backing this endpoint. Call only after
// Validate has succeeded
func (d *EndpointDef) Kind() HandlerKind {
	switch {
	case d.Prompt != nil:
		return KindPrompt
	case d.Script != nil:
		return KindScript
	case d.Query != nil:
		return KindQuery
	default:
		return KindChain
	}
}

// IsChain reports whether the endpoint is a chain composition
func (d *EndpointDef) IsChain() bool {
	return d.Chain != nil
}

// Validate checks the definition, enforcing the exactly-one-of handler
// variant rule at construction time
func (d *EndpointDef) Validate() error {
	if d.Name == "" {
		return ErrEndpointNameEmpty
	}

	count := 0
	if d.Prompt != nil {
		count++
	}
	if d.Script != nil {
		count++
	}
	if d.Query != nil {
		count++
	}
	if d.Chain != nil {
		count++
	}

	switch count {
	case 0:
		return fmt.Errorf("%w: %s", ErrNoHandlerSpec, d.Name)
	case 1:
	default:
		return fmt.Errorf("%w: %s", ErrManyHandlerSpecs, d.Name)
	}

	switch d.Kind() {
	case KindPrompt:
		return d.Prompt.validate(d.Name)
	case KindScript:
		return d.Script.validate(d.Name)
	case KindQuery:
		return d.Query.validate(d.Name)
	default:
		return d.Chain.Validate(d.Name)
	}
}

func (p *PromptSpec) validate(name Name) error {
	if p.Prompt == "" {
		return fmt.Errorf("%w: %s", ErrPromptEmpty, name)
	}
	if p.MaxTokens < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeMaxTokens, name)
	}
	return nil
}

func (s *ScriptSpec) validate(name Name) error {
	if s.Script == "" {
		return fmt.Errorf("%w: %s", ErrScriptEmpty, name)
	}
	return nil
}

func (q *QuerySpec) validate(name Name) error {
	if q.Command == "" {
		return fmt.Errorf("%w: %s", ErrQueryCommandEmpty, name)
	}
	if q.TimeoutMs < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeTimeout, name)
	}
	return nil
}
