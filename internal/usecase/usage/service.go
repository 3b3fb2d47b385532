package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/tagdex/internal/domain/usage"
)

// Service handles tagging usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (unlimited mode, no tracking).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetReport builds a usage report for the given period (UTC boundaries).
// Anything other than month reports the current day.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()

	var (
		start, end time.Time
		c          counters
	)
	switch period {
	case domusage.PeriodMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		c = s.monthly()
	default:
		period = domusage.PeriodDay
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
		c = s.daily()
	}

	b := domusage.NewBudget(c.limit, c.remaining, end.UnixMilli())
	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), c.used, b)
}

// counters is one period's snapshot. remaining is -1 when unlimited.
type counters struct {
	limit, used, remaining int64
}

var unlimited = counters{remaining: -1}

func (s *Service) daily() counters {
	if s.br == nil {
		return unlimited
	}
	return counters{limit: s.br.DailyLimit(), used: s.br.DailyUsed(), remaining: s.br.RemainingDaily()}
}

func (s *Service) monthly() counters {
	if s.br == nil {
		return unlimited
	}
	return counters{limit: s.br.MonthlyLimit(), used: s.br.MonthlyUsed(), remaining: s.br.RemainingMonthly()}
}
