package bolt

import (
	"context"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/tagdex/internal/db"
)

// countersBucket holds every counter. Bolt has no key expiry, so counters
// live until removed by hand; callers put the period in the key.
var countersBucket = []byte("counters")

// Get returns the decimal value of counter key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(countersBucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpBoltView, Err: err}
	}
	if out == nil {
		return nil, db.ErrKeyNotFound
	}
	return out, nil
}

// IncrBy adds val to counter key inside one write transaction.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(countersBucket)
		if err != nil {
			return fmt.Errorf("create counters bucket: %w", err)
		}

		var cur int64
		if v := b.Get([]byte(key)); v != nil {
			cur, err = strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("counter %s: %w", key, db.ErrCorruptEntry)
			}
		}
		return b.Put([]byte(key), []byte(strconv.FormatInt(cur+val, 10)))
	})
	if err != nil {
		return &db.Error{Op: db.OpBoltPut, Err: err}
	}
	return nil
}
