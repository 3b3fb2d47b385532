package upload

import (
	"context"
	"io"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// BlobStore persists uploaded bytes and returns their public path.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
}

// Tagger proposes a description and tags for a file.
type Tagger interface {
	Propose(ctx context.Context, in domain.TaggingInput) (domain.TaggingResult, error)
}
