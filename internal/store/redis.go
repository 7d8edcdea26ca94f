package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/workiq/weave/pkg/api"
)

// RedisStore keeps execution history in Redis so that it survives
// restarts and is shared across replicas. Records live under
// <prefix>:exec:<id> with a most-recent-first index list at
// <prefix>:index, trimmed to the history limit
type RedisStore struct {
	client *redis.Client
	prefix string
	limit  int
}

func NewRedisStore(client *redis.Client, prefix string, limit int) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		limit:  limit,
	}
}

func (s *RedisStore) Save(ctx context.Context, rec *api.ExecutionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := s.recordKey(rec.ID)
	fresh, err := s.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return err
	}
	if !fresh {
		// Record updates (pending -> terminal) keep their index slot
		return s.client.Set(ctx, key, data, 0).Err()
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.indexKey(), rec.ID)
	pipe.LTrim(ctx, s.indexKey(), 0, int64(s.limit-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(
	ctx context.Context, id string,
) (*api.ExecutionRecord, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var rec api.ExecutionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) List(ctx context.Context) ([]*api.ExecutionRecord, error) {
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	res := make([]*api.ExecutionRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if errors.Is(err, ErrExecutionNotFound) {
			// Trimmed or expired behind the index; skip it
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, nil
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + ":exec:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":index"
}
