package record

import (
	"context"

	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
)

// Repository defines the storage contract for records.
type Repository interface {
	ReadAll(ctx context.Context) ([]domrec.Record, error)
	Append(ctx context.Context, c domrec.Candidate) (domrec.Record, error)
}
