package handler

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/workiq/weave/internal/engine"
	"github.com/workiq/weave/internal/schema"
	"github.com/workiq/weave/pkg/api"
)

// Deps carries the handler factories the registry builder dispatches on
type Deps struct {
	Prompts *PromptCaller
	Scripts *ScriptEnv
	Queries *QueryRunner
	Events  *engine.Hub
}

// BuildRegistry turns a set of validated endpoint definitions into a
// populated registry and a chain executor bound to it. Leaf endpoints
// are registered first so that chain entries can resolve their steps at
// execution time against a complete registry
func BuildRegistry(
	defs []*api.EndpointDef, deps *Deps,
) (*engine.Registry, *engine.Executor, error) {
	reg := engine.NewRegistry()
	exec := engine.NewExecutor(reg, deps.Events)

	for _, def := range defs {
		if def.IsChain() {
			continue
		}
		entry, err := makeEntry(def, deps)
		if err != nil {
			return nil, nil, err
		}
		reg.Register(entry)
	}

	for _, def := range defs {
		if !def.IsChain() {
			continue
		}
		entry, err := makeChainEntry(def, exec)
		if err != nil {
			return nil, nil, err
		}
		reg.Register(entry)
	}

	return reg, exec, nil
}

func makeEntry(def *api.EndpointDef, deps *Deps) (*engine.Entry, error) {
	var h engine.Handler
	switch def.Kind() {
	case api.KindPrompt:
		h = deps.Prompts.Handler(def.Prompt)
	case api.KindScript:
		var err error
		h, err = deps.Scripts.Handler(def.Script)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", def.Name, err)
		}
	case api.KindQuery:
		h = deps.Queries.Handler(def.Query)
	default:
		return nil, fmt.Errorf("endpoint %s: %w",
			def.Name, api.ErrNoHandlerSpec)
	}
	return attachValidators(def, h)
}

func makeChainEntry(
	def *api.EndpointDef, exec *engine.Executor,
) (*engine.Entry, error) {
	name := def.Name
	spec := def.Chain
	h := func(ctx context.Context, input any) (any, error) {
		return exec.Execute(ctx, uuid.NewString(), name, spec, input)
	}
	return attachValidators(def, h)
}

func attachValidators(
	def *api.EndpointDef, h engine.Handler,
) (*engine.Entry, error) {
	entry := &engine.Entry{
		Name:    def.Name,
		Handler: h,
	}
	if def.InputSchema != nil {
		v, err := schema.Compile(string(def.Name)+".input", def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", def.Name, err)
		}
		entry.Input = v
	}
	if def.OutputSchema != nil {
		v, err := schema.Compile(string(def.Name)+".output", def.OutputSchema)
		if err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", def.Name, err)
		}
		entry.Output = v
	}
	return entry, nil
}
