package tagging

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
	"github.com/kailas-cloud/tagdex/internal/metrics"
)

// BudgetedTagger wraps a Tagger with token budget enforcement.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai;
// this layer owns the budget gauges.
type BudgetedTagger struct {
	inner  Tagger
	model  string
	budget BudgetChecker
	logger *zap.Logger
}

// NewBudgetedTagger wraps inner. A nil budget disables enforcement.
func NewBudgetedTagger(inner Tagger, model string, budget BudgetChecker, logger *zap.Logger) *BudgetedTagger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetedTagger{inner: inner, model: model, budget: budget, logger: logger}
}

// Propose checks the budget, delegates to the inner tagger and records usage.
func (t *BudgetedTagger) Propose(ctx context.Context, in domain.TaggingInput) (domain.TaggingResult, error) {
	if t.budget != nil {
		if err := t.budget.Check(ctx); err != nil {
			metrics.TaggingBudgetRejectedTotal.WithLabelValues(t.model).Inc()
			t.logger.Warn("Tagging budget exceeded",
				zap.String("model", t.model),
				zap.String("filename", in.Filename),
				zap.Error(err),
			)
			return domain.TaggingResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	result, err := t.inner.Propose(ctx, in)
	if err != nil {
		return domain.TaggingResult{}, err
	}

	if t.budget != nil && result.TotalTokens > 0 {
		t.budget.Record(int64(result.TotalTokens))
		remaining := metrics.TaggingBudgetTokensRemaining
		remaining.WithLabelValues(t.model, "daily").Set(float64(t.budget.RemainingDaily()))
		remaining.WithLabelValues(t.model, "monthly").Set(float64(t.budget.RemainingMonthly()))
	}

	return result, nil
}
