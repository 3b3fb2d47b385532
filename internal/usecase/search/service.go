package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
	"github.com/kailas-cloud/tagdex/internal/domain/search/rank"
	"github.com/kailas-cloud/tagdex/internal/logger"
	"github.com/kailas-cloud/tagdex/internal/metrics"
)

// Service ranks stored records against free-text queries.
type Service struct {
	records  RecordReader
	ranker   *rank.Ranker
	defaultK int
	maxK     int
}

// New creates a search service. A nil ranker uses the default tokenizer.
func New(records RecordReader, ranker *rank.Ranker) *Service {
	if ranker == nil {
		ranker = rank.New(nil)
	}
	return &Service{
		records:  records,
		ranker:   ranker,
		defaultK: rank.DefaultK,
		maxK:     100,
	}
}

// WithLimits configures the default and maximum result size.
func (s *Service) WithLimits(defaultK, maxK int) *Service {
	if defaultK > 0 {
		s.defaultK = defaultK
	}
	if maxK > 0 {
		s.maxK = maxK
	}
	return s
}

// Search returns up to k hits for query. k <= 0 selects the default; k above
// the maximum is clamped. A blank query is rejected with domain.ErrInvalidQuery.
func (s *Service) Search(ctx context.Context, query string, k int) ([]rank.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("message required: %w", domain.ErrInvalidQuery)
	}

	if k <= 0 {
		k = s.defaultK
	}
	if k > s.maxK {
		k = s.maxK
	}

	start := time.Now()

	records, err := s.records.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	hits := s.ranker.Rank(query, records, k)

	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())
	metrics.SearchHits.Observe(float64(len(hits)))

	logger.FromContext(ctx).Debug("search",
		zap.Int("records", len(records)),
		zap.Int("hits", len(hits)),
		zap.Int("k", k),
		zap.Duration("elapsed", elapsed),
	)
	return hits, nil
}
