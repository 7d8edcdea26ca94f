package api

import "time"

type (
	// ExecutionStatus tracks an invocation through its lifecycle
	ExecutionStatus string

	// ExecutionRecord captures one endpoint invocation for the history
	// store. The record is bookkeeping only; it never feeds back into
	// request handling
	ExecutionRecord struct {
		Input       any             `json:"input"`
		Output      any             `json:"output,omitempty"`
		ID          string          `json:"id"`
		Endpoint    Name            `json:"endpoint"`
		Status      ExecutionStatus `json:"status"`
		Error       string          `json:"error,omitempty"`
		StartedAt   time.Time       `json:"started_at"`
		CompletedAt time.Time       `json:"completed_at,omitzero"`
	}
)

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionSucceeded ExecutionStatus = "succeeded"
	ExecutionFailed    ExecutionStatus = "failed"
)
