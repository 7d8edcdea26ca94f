// Package server implements the HTTP API for the gateway
//
// This package provides REST endpoints for invoking configured endpoints,
// browsing the catalog and execution history, and a WebSocket stream of
// chain execution events
package server
