package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/tagdex/internal/db"
)

// Get returns the raw value at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case err == nil:
		return data, nil
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	default:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
}

// IncrBy atomically adds val to the integer counter at key, creating it at 0.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.do(ctx, s.b().Incrby().Key(key).Increment(val).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return nil
}

// Expire sets a TTL on key, rounded up to whole seconds. With onlyIfUnset
// the TTL is applied only when the key has none yet (EXPIRE ... NX), so
// repeated calls never extend a running window.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, onlyIfUnset bool) error {
	if ttl <= 0 {
		return &db.Error{Op: db.OpExpire, Err: fmt.Errorf("ttl must be positive, got %s", ttl)}
	}
	secs := int64((ttl + time.Second - 1) / time.Second)

	var cmd rueidis.Completed
	if onlyIfUnset {
		cmd = s.b().Expire().Key(key).Seconds(secs).Nx().Build()
	} else {
		cmd = s.b().Expire().Key(key).Seconds(secs).Build()
	}
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}
