package record

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/tagdex/internal/db"
	"github.com/kailas-cloud/tagdex/internal/domain"
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
)

// store is the consumer interface for records (ISP).
type store interface {
	AppendSeq(ctx context.Context, key string, data []byte) (int64, error)
	ListSeq(ctx context.Context, key string) ([]db.SeqEntry, error)
}

// Repo stores records in a sequenced list (redis, valkey or bolt backends).
// The list sequence number is the record ID.
type Repo struct {
	store store
	key   string
}

// New creates a record repository. keyPrefix namespaces the list key.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, key: keyPrefix + "records"}
}

// ReadAll returns all records in insertion order.
func (r *Repo) ReadAll(ctx context.Context) ([]domrec.Record, error) {
	entries, err := r.store.ListSeq(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w: %w", r.key, domain.ErrStoreRead, err)
	}

	out := make([]domrec.Record, 0, len(entries))
	for _, e := range entries {
		var dto entryDTO
		if err := json.Unmarshal(e.Data, &dto); err != nil {
			return nil, fmt.Errorf("decode record %d: %w: %w", e.Seq, domain.ErrStoreRead, err)
		}
		out = append(out, dto.toDomain(e.Seq))
	}
	return out, nil
}

// Append persists c under the next ID (last ID + 1, or 1 when empty).
func (r *Repo) Append(ctx context.Context, c domrec.Candidate) (domrec.Record, error) {
	data, err := json.Marshal(entryFromCandidate(c))
	if err != nil {
		return domrec.Record{}, fmt.Errorf("marshal record: %w", err)
	}

	id, err := r.store.AppendSeq(ctx, r.key, data)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("append %s: %w: %w", r.key, domain.ErrStoreWrite, err)
	}
	return domrec.FromCandidate(id, c), nil
}
