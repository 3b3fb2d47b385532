package tagdex

import "github.com/kailas-cloud/tagdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRecord = domain.ErrInvalidRecord
	ErrInvalidQuery  = domain.ErrInvalidQuery
	ErrStoreRead     = domain.ErrStoreRead
	ErrStoreWrite    = domain.ErrStoreWrite
)
