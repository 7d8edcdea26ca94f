// Package engine implements the chain orchestration core: the template
// expression evaluator and compiler, the endpoint handler registry, the
// startup dependency-graph analyzer, and the sequential chain executor.
//
// Everything here is synchronous, pure computation except the executor's
// handler invocations, which suspend on whatever network or process call
// the target handler performs. The registry is treated as immutable while
// serving; its only mutation window is the startup build.
package engine
