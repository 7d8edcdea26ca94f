package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workiq/weave/internal/store"
	"github.com/workiq/weave/pkg/api"
)

func makeRecord(id string, ep api.Name) *api.ExecutionRecord {
	return &api.ExecutionRecord{
		ID:        id,
		Endpoint:  ep,
		Status:    api.ExecutionSucceeded,
		Input:     map[string]any{"n": float64(1)},
		Output:    map[string]any{"ok": true},
		StartedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(10)

	rec := makeRecord("exec-1", "greet")
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrExecutionNotFound)
}

func TestMemoryStoreOrdering(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(10)

	for i := range 3 {
		id := fmt.Sprintf("exec-%d", i)
		require.NoError(t, s.Save(ctx, makeRecord(id, "greet")))
	}

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "exec-2", recs[0].ID)
	assert.Equal(t, "exec-0", recs[2].ID)
}

func TestMemoryStoreLimit(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(2)

	for i := range 5 {
		id := fmt.Sprintf("exec-%d", i)
		require.NoError(t, s.Save(ctx, makeRecord(id, "greet")))
	}

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "exec-4", recs[0].ID)
	assert.Equal(t, "exec-3", recs[1].ID)

	_, err = s.Get(ctx, "exec-0")
	assert.ErrorIs(t, err, store.ErrExecutionNotFound)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore(10)

	rec := makeRecord("exec-1", "greet")
	rec.Status = api.ExecutionPending
	require.NoError(t, s.Save(ctx, rec))

	done := makeRecord("exec-1", "greet")
	require.NoError(t, s.Save(ctx, done))

	recs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, api.ExecutionSucceeded, recs[0].Status)
}
