package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/tagdex/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Errorf("expected db.Error with op %s, got %v", db.OpPing, err)
	}
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addrs")
	}
}

// --- list.go tests ---

func TestAppendSeq(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EVAL", appendSeqScript, "1", "tagdex:records", `{"description":"d"}`)).
		Return(mock.Result(mock.RedisInt64(4)))

	s := NewStoreForTest(c)
	seq, err := s.AppendSeq(context.Background(), "tagdex:records", []byte(`{"description":"d"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seq != 4 {
		t.Errorf("seq = %d, want 4", seq)
	}
}

func TestAppendSeq_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return len(cmd) > 0 && cmd[0] == "EVAL"
		})).
		Return(mock.ErrorResult(errors.New("OOM")))

	s := NewStoreForTest(c)
	_, err := s.AppendSeq(context.Background(), "k", []byte("{}"))
	if err == nil {
		t.Fatal("expected error")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpAppendSeq {
		t.Errorf("expected db.Error with op %s, got %v", db.OpAppendSeq, err)
	}
}

func TestListSeq(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LRANGE", "tagdex:records", "0", "-1")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`1:{"description":"a"}`),
			mock.RedisString(`2:{"description":"b:c"}`),
		)))

	s := NewStoreForTest(c)
	entries, err := s.ListSeq(context.Background(), "tagdex:records")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].Seq != 1 || string(entries[0].Data) != `{"description":"a"}` {
		t.Errorf("entry[0] = %d %s", entries[0].Seq, entries[0].Data)
	}
	if entries[1].Seq != 2 || string(entries[1].Data) != `{"description":"b:c"}` {
		t.Errorf("entry[1] = %d %s", entries[1].Seq, entries[1].Data)
	}
}

func TestListSeq_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LRANGE", "missing", "0", "-1")).
		Return(mock.Result(mock.RedisArray()))

	s := NewStoreForTest(c)
	entries, err := s.ListSeq(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}
}

func TestListSeq_CorruptEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LRANGE", "k", "0", "-1")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("garbage"))))

	s := NewStoreForTest(c)
	_, err := s.ListSeq(context.Background(), "k")
	if !errors.Is(err, db.ErrCorruptEntry) {
		t.Fatalf("expected ErrCorruptEntry, got %v", err)
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		in      string
		wantSeq int64
		wantErr bool
	}{
		{"1:{}", 1, false},
		{"42:", 42, false},
		{"0:{}", 0, true},
		{"-1:{}", 0, true},
		{"x:{}", 0, true},
		{"nocolon", 0, true},
	}
	for _, tc := range tests {
		e, err := parseEntry(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseEntry(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseEntry(%q): %v", tc.in, err)
			continue
		}
		if e.Seq != tc.wantSeq {
			t.Errorf("parseEntry(%q).Seq = %d, want %d", tc.in, e.Seq, tc.wantSeq)
		}
	}
}

// --- kv.go tests ---

func TestGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "tagdex:budget:daily:2026-10-18")).
		Return(mock.Result(mock.RedisString("1200")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "tagdex:budget:daily:2026-10-18")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "1200" {
		t.Errorf("data = %q, want 1200", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestIncrBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCRBY", "k", "42")).
		Return(mock.Result(mock.RedisInt64(42)))

	s := NewStoreForTest(c)
	if err := s.IncrBy(context.Background(), "k", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "k", "172800", "NX")).
		Return(mock.Result(mock.RedisInt64(1)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "k", "60")).
		Return(mock.ErrorResult(errors.New("READONLY")))

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "k", 48*time.Hour, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := s.Expire(context.Background(), "k", time.Minute, false)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpExpire {
		t.Errorf("expected db.Error with op %s, got %v", db.OpExpire, err)
	}
}

func TestExpire_RoundsUpAndRejectsZero(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "k", "2")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "k", 1500*time.Millisecond, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Expire(context.Background(), "k", 0, true); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
