// Package bolt implements db.Store on an embedded bbolt file.
// Each sequenced list is a bucket keyed by big-endian uint64 sequence numbers,
// so cursor order is append order.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/tagdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds bbolt settings.
type Config struct {
	Path        string
	LockTimeout time.Duration // wait for the file lock held by another process
}

// Store implements db.Store via bbolt.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the bolt file at cfg.Path.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	bdb, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: cfg.LockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &Store{db: bdb}, nil
}

// Ping verifies the database is open.
func (s *Store) Ping(_ context.Context) error {
	if err := s.db.View(func(*bbolt.Tx) error { return nil }); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the file lock.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: the file is usable once opened.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// AppendSeq stores data in bucket key under the next sequence number.
func (s *Store) AppendSeq(ctx context.Context, key string, data []byte) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var seq int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", key, err)
		}

		seq = 1
		if last, _ := b.Cursor().Last(); last != nil {
			prev, err := decodeSeq(last)
			if err != nil {
				return err
			}
			seq = prev + 1
		}

		return b.Put(encodeSeq(seq), data)
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpBoltPut, Err: err}
	}
	return seq, nil
}

// ListSeq returns every entry of bucket key in sequence order.
// A missing bucket is an empty list.
func (s *Store) ListSeq(ctx context.Context, key string) ([]db.SeqEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []db.SeqEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(key))
		if b == nil {
			return nil
		}
		entries = make([]db.SeqEntry, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			seq, err := decodeSeq(k)
			if err != nil {
				return err
			}
			// v is only valid inside the transaction.
			data := make([]byte, len(v))
			copy(data, v)
			entries = append(entries, db.SeqEntry{Seq: seq, Data: data})
			return nil
		})
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpBoltView, Err: err}
	}
	if entries == nil {
		entries = []db.SeqEntry{}
	}
	return entries, nil
}

func encodeSeq(seq int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(seq))
	return k
}

func decodeSeq(k []byte) (int64, error) {
	if len(k) != 8 {
		return 0, fmt.Errorf("key length %d: %w", len(k), db.ErrCorruptEntry)
	}
	return int64(binary.BigEndian.Uint64(k)), nil
}
