package tagging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)}
}

func TestBudgetTracker_Reject(t *testing.T) {
	tests := []struct {
		name    string
		daily   int64
		monthly int64
		record  int64
		wantErr bool
	}{
		{"daily exhausted", 100, 0, 100, true},
		{"monthly exhausted", 0, 500, 500, true},
		{"below limits", 1000, 10000, 500, false},
		{"unlimited", 0, 0, 999999999, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			bt := NewBudgetTracker("gpt-4o-mini", tc.daily, tc.monthly, BudgetActionReject, zap.NewNop())
			bt.Record(tc.record)

			err := bt.Check(context.Background())
			if tc.wantErr && !errors.Is(err, domain.ErrTaggingQuotaExceeded) {
				t.Fatalf("expected ErrTaggingQuotaExceeded, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBudgetTracker_WarnLogsAndAllows(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	bt := NewBudgetTracker("gpt-4o-mini", 100, 0, BudgetActionWarn, zap.New(core))

	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
	if logs.FilterMessage("Token budget exceeded").Len() != 1 {
		t.Error("expected a budget warning")
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("m", 1000, 10000, BudgetActionWarn, nil)
	bt.Record(300)

	if got := bt.RemainingDaily(); got != 700 {
		t.Errorf("RemainingDaily = %d, want 700", got)
	}
	if got := bt.RemainingMonthly(); got != 9700 {
		t.Errorf("RemainingMonthly = %d, want 9700", got)
	}

	bt.Record(5000)
	if got := bt.RemainingDaily(); got != 0 {
		t.Errorf("RemainingDaily after overrun = %d, want 0", got)
	}

	unlimited := NewBudgetTracker("m", 0, 0, BudgetActionWarn, nil)
	if unlimited.RemainingDaily() != -1 || unlimited.RemainingMonthly() != -1 {
		t.Error("expected -1 for unlimited budget")
	}
}

func TestBudgetTracker_ResetsOnRollover(t *testing.T) {
	clock := newClock()
	bt := NewBudgetTracker("m", 100, 1000, BudgetActionReject, nil).WithClock(clock.Now)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected daily budget to be exhausted")
	}

	clock.Set(time.Date(2026, 10, 19, 0, 0, 1, 0, time.UTC))
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("daily budget should reset at midnight UTC: %v", err)
	}
	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 100 {
		t.Errorf("used = %d/%d, want 0/100", bt.DailyUsed(), bt.MonthlyUsed())
	}

	clock.Set(time.Date(2026, 11, 1, 0, 0, 1, 0, time.UTC))
	if bt.MonthlyUsed() != 0 {
		t.Errorf("monthly used = %d after rollover, want 0", bt.MonthlyUsed())
	}
}

// --- Mock BudgetStore ---

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func (m *mockBudgetStore) value(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// --- Persistence tests ---

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()
	store.data["tagdex:budget:m:daily:2026-10-18"] = 300
	store.data["tagdex:budget:m:monthly:2026-10"] = 5000

	bt := NewBudgetTracker("m", 1000, 10000, BudgetActionReject, nil).
		WithClock(newClock().Now).
		WithStore(context.Background(), store, "tagdex:")

	if bt.DailyUsed() != 300 {
		t.Errorf("DailyUsed = %d, want 300", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("MonthlyUsed = %d, want 5000", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("m", 10000, 100000, BudgetActionWarn, nil).
		WithClock(newClock().Now).
		WithStore(context.Background(), store, "tagdex:")

	bt.Record(100)
	bt.Record(200)

	if got := store.value("tagdex:budget:m:daily:2026-10-18"); got != 300 {
		t.Errorf("stored daily = %d, want 300", got)
	}
	if got := store.value("tagdex:budget:m:monthly:2026-10"); got != 300 {
		t.Errorf("stored monthly = %d, want 300", got)
	}
}

func TestBudgetTracker_StoreErrors(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	core, logs := observer.New(zap.WarnLevel)
	bt := NewBudgetTracker("m", 1000, 10000, BudgetActionReject, zap.New(core)).
		WithStore(context.Background(), store, "")

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected zero usage on load error, got %d/%d", bt.DailyUsed(), bt.MonthlyUsed())
	}

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)
	if bt.DailyUsed() != 50 {
		t.Errorf("in-memory usage must survive store errors, got %d", bt.DailyUsed())
	}
	if logs.FilterMessage("Failed to persist daily budget").Len() != 1 {
		t.Error("expected a persist warning")
	}
}

func TestBudgetTracker_ConcurrentRecord(t *testing.T) {
	bt := NewBudgetTracker("m", 0, 0, BudgetActionWarn, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bt.Record(10)
			_ = bt.Check(context.Background())
		}()
	}
	wg.Wait()

	if bt.DailyUsed() != 500 {
		t.Errorf("DailyUsed = %d, want 500", bt.DailyUsed())
	}
}
