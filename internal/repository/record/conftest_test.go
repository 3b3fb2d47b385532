package record

import (
	"context"

	"github.com/kailas-cloud/tagdex/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	appendSeqFn func(ctx context.Context, key string, data []byte) (int64, error)
	listSeqFn   func(ctx context.Context, key string) ([]db.SeqEntry, error)
}

func (m *mockStore) AppendSeq(ctx context.Context, key string, data []byte) (int64, error) {
	if m.appendSeqFn != nil {
		return m.appendSeqFn(ctx, key, data)
	}
	return 1, nil
}

func (m *mockStore) ListSeq(ctx context.Context, key string) ([]db.SeqEntry, error) {
	if m.listSeqFn != nil {
		return m.listSeqFn(ctx, key)
	}
	return []db.SeqEntry{}, nil
}
