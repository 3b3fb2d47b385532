package search

import (
	"context"

	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
)

// RecordReader loads the full record snapshot to rank.
type RecordReader interface {
	ReadAll(ctx context.Context) ([]domrec.Record, error)
}
