// Package handler constructs the executable capabilities behind non-chain
// endpoints (prompt calls, embedded scripts, workiq shell queries) and
// populates the handler registry from a loaded configuration.
package handler
