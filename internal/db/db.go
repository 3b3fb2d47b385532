package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	SeqListStore
	CounterStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SeqEntry is one element of a sequenced list.
type SeqEntry struct {
	Seq  int64
	Data []byte
}

// SeqListStore is an append-only list whose entries carry a sequence number.
// The sequence of a new entry is the sequence of the last entry plus one
// (1 for an empty list), assigned atomically by the backend.
type SeqListStore interface {
	AppendSeq(ctx context.Context, key string, data []byte) (int64, error)
	ListSeq(ctx context.Context, key string) ([]SeqEntry, error)
}

// CounterStore holds integer counters stored as decimal strings.
// Get returns ErrKeyNotFound for a counter that was never incremented.
type CounterStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
}

// Expirer sets a TTL on a key. When nx is true an existing TTL is kept.
type Expirer interface {
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
