// Package weave is a declarative endpoint service. Operators describe REST
// endpoints in configuration; an endpoint is backed by a prompt call, an
// embedded script, a workiq shell query, or a chain that composes other
// endpoints into a sequential workflow.
package weave

const (
	// Name is the service identifier used in logs and health responses
	Name = "weave"

	// Version is the service version reported at startup
	Version = "0.4.0"
)
