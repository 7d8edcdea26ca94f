package engine

import "github.com/workiq/weave/pkg/api"

// Context is the per-invocation execution context for a chain run. It
// exposes the original call payload, the ordered outputs of completed
// steps, name-indexed outputs for named steps, and the most recent step's
// output. Each chain execution owns a fresh Context; nothing here is
// shared across concurrent runs
type Context struct {
	Input        any
	PreviousStep any
	StepsByName  map[string]any
	Steps        []any
}

// NewContext creates an execution context for one chain invocation
func NewContext(input any) *Context {
	return &Context{
		Input:       input,
		StepsByName: map[string]any{},
	}
}

// RecordStep appends a completed step's output to the context, making it
// addressable as steps[i], previousStep, and, for named steps, by name
func (c *Context) RecordStep(name api.Name, output any) {
	c.Steps = append(c.Steps, output)
	c.PreviousStep = output
	if name != "" {
		c.StepsByName[string(name)] = output
	}
}
