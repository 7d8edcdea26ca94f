// Package api defines the wire-level types shared between the endpoint
// configuration, the orchestration engine, and the HTTP server: endpoint
// definitions with their handler-kind variants, chain specifications, and
// request/response message shapes.
package api
