package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/workiq/weave/pkg/api"
	"github.com/workiq/weave/pkg/util"
)

var (
	ErrUnknownEndpoint    = errors.New("chain references unknown endpoint")
	ErrCircularDependency = errors.New("circular dependency detected")
)

// analyzer performs depth-first traversal with three-color marking over
// the chain reference graph: absent from both sets is unvisited, onPath is
// the grey in-progress set, done is black
type analyzer struct {
	defs   map[api.Name]*api.EndpointDef
	onPath util.Set[api.Name]
	done   util.Set[api.Name]
	stack  []api.Name
}

// Analyze validates the chain reference graph of a loaded configuration.
// It first checks referential integrity, then detects cycles from every
// chain node so any cycle is found regardless of entry point. Chains may
// reference other chains; non-chain endpoints are leaves. Any error here
// must prevent the server from starting. The traversal order is stable,
// so re-running over an unchanged configuration yields an identical
// verdict and identical cycle path
func Analyze(defs []*api.EndpointDef) error {
	a := &analyzer{
		defs:   make(map[api.Name]*api.EndpointDef, len(defs)),
		onPath: util.Set[api.Name]{},
		done:   util.Set[api.Name]{},
	}
	for _, def := range defs {
		a.defs[def.Name] = def
	}

	chains := a.chainNames()
	for _, name := range chains {
		if err := a.checkReferences(name); err != nil {
			return err
		}
	}
	for _, name := range chains {
		if err := a.visit(name); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) chainNames() []api.Name {
	var names []api.Name
	for name, def := range a.defs {
		if def.IsChain() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (a *analyzer) checkReferences(chain api.Name) error {
	for _, ref := range a.defs[chain].Chain.Referenced() {
		if _, ok := a.defs[ref]; !ok {
			return fmt.Errorf(
				"%w: %s (referenced by chain %s)",
				ErrUnknownEndpoint, ref, chain,
			)
		}
	}
	return nil
}

func (a *analyzer) visit(name api.Name) error {
	if a.done.Contains(name) {
		return nil
	}
	if a.onPath.Contains(name) {
		return fmt.Errorf(
			"%w: %s", ErrCircularDependency, a.cyclePath(name),
		)
	}

	def := a.defs[name]
	if !def.IsChain() {
		a.done.Add(name)
		return nil
	}

	a.onPath.Add(name)
	a.stack = append(a.stack, name)

	for _, ref := range def.Chain.Referenced() {
		if err := a.visit(ref); err != nil {
			return err
		}
	}

	a.stack = a.stack[:len(a.stack)-1]
	a.onPath.Remove(name)
	a.done.Add(name)
	return nil
}

// cyclePath reports the full cycle in traversal order, e.g. "a -> b -> a"
func (a *analyzer) cyclePath(repeat api.Name) string {
	start := slices.Index(a.stack, repeat)
	nodes := append(slices.Clone(a.stack[start:]), repeat)

	parts := make([]string, len(nodes))
	for i, node := range nodes {
		parts[i] = string(node)
	}
	return strings.Join(parts, " -> ")
}
