package tagging

import (
	"context"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// Tagger proposes a description and tags for a file.
type Tagger interface {
	Propose(ctx context.Context, in domain.TaggingInput) (domain.TaggingResult, error)
}

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}
