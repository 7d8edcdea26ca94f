package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workiq/weave/pkg/api"
	"github.com/workiq/weave/pkg/log"
)

type (
	// ChainError is the only way a per-request chain failure surfaces. It
	// identifies the failing step by index, name when declared, and
	// target endpoint, and wraps the underlying cause
	ChainError struct {
		Err       error
		Chain     api.Name
		StepName  api.Name
		Endpoint  api.Name
		StepIndex int
	}

	// Executor runs chain specifications against a handler registry. One
	// Executor serves arbitrarily many concurrent executions; each call
	// to Execute owns a freshly allocated Context and only reads the
	// registry
	Executor struct {
		registry *Registry
		events   *Hub
	}
)

var (
	ErrStepNotRegistered = errors.New("step endpoint not registered")
	ErrInputValidation   = errors.New("step input validation failed")
	ErrOutputValidation  = errors.New("step output validation failed")
	ErrOutputTemplate    = errors.New("chain output template failed")
)

// NewExecutor creates a chain executor over the given registry. The hub
// may be nil when no observer is interested in execution events
func NewExecutor(registry *Registry, events *Hub) *Executor {
	return &Executor{
		registry: registry,
		events:   events,
	}
}

// Execute runs the chain's steps in declaration order, compiling each
// step's input against the accumulated context, validating at both
// boundaries when the target declares schemas, and recording outputs.
// The first failing step halts the chain; accumulated context is simply
// discarded. There is no retry and no rollback. When the chain declares
// an output template it is compiled against the final context; otherwise
// the last step's raw output is returned verbatim
func (x *Executor) Execute(
	ctx context.Context, execID string, chain api.Name,
	spec *api.ChainSpec, input any,
) (any, error) {
	run := NewContext(input)
	x.emit(Event{
		Type:        EventChainStarted,
		ExecutionID: execID,
		Chain:       chain,
	})

	for i, step := range spec.Steps {
		output, err := x.runStep(ctx, run, chain, i, &step)
		if err != nil {
			slog.Error("Chain step failed",
				log.Chain(chain),
				log.ExecutionID(execID),
				log.StepIndex(i),
				log.Endpoint(step.Endpoint),
				log.Error(err))
			x.emit(Event{
				Type:        EventChainFailed,
				ExecutionID: execID,
				Chain:       chain,
				StepIndex:   i,
				StepName:    step.Name,
				Endpoint:    step.Endpoint,
				Error:       err.Error(),
			})
			return nil, err
		}

		run.RecordStep(step.Name, output)
		x.emit(Event{
			Type:        EventStepCompleted,
			ExecutionID: execID,
			Chain:       chain,
			StepIndex:   i,
			StepName:    step.Name,
			Endpoint:    step.Endpoint,
		})
	}

	result := run.PreviousStep
	if spec.Output != nil {
		output, err := CompileTemplate(spec.Output, run)
		if err != nil {
			wrapped := &ChainError{
				Chain:     chain,
				StepIndex: len(spec.Steps),
				Err:       fmt.Errorf("%w: %w", ErrOutputTemplate, err),
			}
			x.emit(Event{
				Type:        EventChainFailed,
				ExecutionID: execID,
				Chain:       chain,
				StepIndex:   len(spec.Steps),
				Error:       wrapped.Error(),
			})
			return nil, wrapped
		}
		result = output
	}

	x.emit(Event{
		Type:        EventChainSucceeded,
		ExecutionID: execID,
		Chain:       chain,
		StepIndex:   len(spec.Steps),
	})
	return result, nil
}

func (x *Executor) runStep(
	ctx context.Context, run *Context, chain api.Name, idx int,
	step *api.Step,
) (any, error) {
	fail := func(err error) error {
		return &ChainError{
			Chain:     chain,
			StepIndex: idx,
			StepName:  step.Name,
			Endpoint:  step.Endpoint,
			Err:       err,
		}
	}

	// Defensive re-check; the analyzer verified references at startup
	entry, ok := x.registry.Lookup(step.Endpoint)
	if !ok {
		return nil, fail(ErrStepNotRegistered)
	}

	input, err := CompileTemplate(step.Input, run)
	if err != nil {
		return nil, fail(err)
	}

	if entry.Input != nil {
		if err := entry.Input.Validate(input); err != nil {
			return nil, fail(fmt.Errorf("%w: %w", ErrInputValidation, err))
		}
	}

	output, err := entry.Handler(ctx, input)
	if err != nil {
		return nil, fail(err)
	}

	if entry.Output != nil {
		if err := entry.Output.Validate(output); err != nil {
			return nil, fail(fmt.Errorf("%w: %w", ErrOutputValidation, err))
		}
	}
	return output, nil
}

func (x *Executor) emit(ev Event) {
	if x.events == nil {
		return
	}
	ev.At = time.Now().UTC()
	x.events.Publish(ev)
}

func (e *ChainError) Error() string {
	target := ""
	if e.Endpoint != "" {
		target = fmt.Sprintf(" endpoint %s", e.Endpoint)
	}
	if e.StepName != "" {
		return fmt.Sprintf("chain %s step %d (%s)%s: %v",
			e.Chain, e.StepIndex, e.StepName, target, e.Err)
	}
	return fmt.Sprintf("chain %s step %d%s: %v",
		e.Chain, e.StepIndex, target, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}
