package store

import (
	"context"
	"errors"

	"github.com/workiq/weave/pkg/api"
)

// Store persists execution records for the history endpoints. Records
// are kept most-recent-first up to a configured limit
type Store interface {
	Save(ctx context.Context, rec *api.ExecutionRecord) error
	Get(ctx context.Context, id string) (*api.ExecutionRecord, error)
	List(ctx context.Context) ([]*api.ExecutionRecord, error)
}

var ErrExecutionNotFound = errors.New("execution not found")
