package api

import (
	"errors"
	"fmt"
)

type (
	// ChainSpec composes other endpoints into a sequential workflow. When
	// Output is nil the chain's result is the last step's raw output
	ChainSpec struct {
		Output any    `json:"output,omitempty" yaml:"output,omitempty"`
		Steps  []Step `json:"steps" yaml:"steps"`
	}

	// Step is one invocation unit within a chain. Input is a JSON-shaped
	// template structure compiled against the execution context per
	// invocation. Name, when present, makes the step's output addressable
	// as {{<name>.<path>}} by later steps
	Step struct {
		Input    any  `json:"input" yaml:"input"`
		Name     Name `json:"name,omitempty" yaml:"name,omitempty"`
		Endpoint Name `json:"endpoint" yaml:"endpoint"`
	}
)

var (
	ErrChainNoSteps      = errors.New("chain has no steps")
	ErrStepEndpointEmpty = errors.New("step endpoint empty")
	ErrStepInputMissing  = errors.New("step input missing")
	ErrDuplicateStepName = errors.New("duplicate step name")
)

// Validate checks the chain's structural invariants. Referential integrity
// against the rest of the configuration is the dependency analyzer's job
func (c *ChainSpec) Validate(chain Name) error {
	if len(c.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrChainNoSteps, chain)
	}

	seen := map[Name]struct{}{}
	for i, step := range c.Steps {
		if step.Endpoint == "" {
			return fmt.Errorf("%w: %s step %d", ErrStepEndpointEmpty, chain, i)
		}
		if step.Input == nil {
			return fmt.Errorf("%w: %s step %d", ErrStepInputMissing, chain, i)
		}
		if step.Name == "" {
			continue
		}
		if _, ok := seen[step.Name]; ok {
			return fmt.Errorf(
				"%w: %s in chain %s", ErrDuplicateStepName, step.Name, chain,
			)
		}
		seen[step.Name] = struct{}{}
	}
	return nil
}

// Referenced returns the endpoint names this chain's steps target, in
// declaration order, without deduplication
func (c *ChainSpec) Referenced() []Name {
	refs := make([]Name, len(c.Steps))
	for i, step := range c.Steps {
		refs[i] = step.Endpoint
	}
	return refs
}
