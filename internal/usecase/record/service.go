package record

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
	"github.com/kailas-cloud/tagdex/internal/logger"
	"github.com/kailas-cloud/tagdex/internal/metrics"
)

// Service saves confirmed proposals as records and lists them.
type Service struct {
	repo            Repository
	defaultPageSize int
	maxPageSize     int
}

// New creates a record service.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Save validates the payload and appends it under the next ID.
func (s *Service) Save(ctx context.Context, description string, tags []string, path string) (domrec.Record, error) {
	c, err := domrec.NewCandidate(description, tags, path)
	if err != nil {
		return domrec.Record{}, err
	}

	rec, err := s.repo.Append(ctx, c)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("append record: %w", err)
	}
	metrics.RecordsAppendedTotal.Inc()

	logger.FromContext(ctx).Info("record saved",
		zap.Int64("id", rec.ID()),
		zap.Int("tags", len(rec.Tags())),
	)
	return rec, nil
}

// List returns one page of records in insertion order. The cursor is the
// offset of the first record; nextCursor is empty on the last page.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]domrec.Record, string, error) {
	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidQuery)
		}
		offset = n
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	all, err := s.repo.ReadAll(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read records: %w", err)
	}

	if offset >= len(all) {
		return []domrec.Record{}, "", nil
	}
	end := min(offset+limit, len(all))

	next := ""
	if end < len(all) {
		next = strconv.Itoa(end)
	}
	return all[offset:end], next, nil
}
