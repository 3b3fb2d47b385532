package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/tagdex/internal/db"
)

// Entries are stored as "<seq>:<data>". The script reads the tail entry and
// pushes the next one in a single atomic step, so concurrent writers never
// reuse a sequence number.
const appendSeqScript = `local last = redis.call('LINDEX', KEYS[1], -1)
local seq = 1
if last then
  local prev = tonumber(string.match(last, '^(%d+):'))
  if not prev then
    return redis.error_reply('corrupt tail entry')
  end
  seq = prev + 1
end
redis.call('RPUSH', KEYS[1], seq .. ':' .. ARGV[1])
return seq`

// AppendSeq pushes data to the list at key and returns its sequence number.
func (s *Store) AppendSeq(ctx context.Context, key string, data []byte) (int64, error) {
	cmd := s.b().Eval().Script(appendSeqScript).Numkeys(1).Key(key).Arg(string(data)).Build()
	seq, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpAppendSeq, Err: err}
	}
	return seq, nil
}

// ListSeq returns every entry of the list at key in append order.
// A missing key is an empty list.
func (s *Store) ListSeq(ctx context.Context, key string) ([]db.SeqEntry, error) {
	cmd := s.b().Lrange().Key(key).Start(0).Stop(-1).Build()
	raw, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpListSeq, Err: err}
	}

	entries := make([]db.SeqEntry, 0, len(raw))
	for i, item := range raw {
		e, err := parseEntry(item)
		if err != nil {
			return nil, &db.Error{Op: db.OpListSeq, Err: fmt.Errorf("%s[%d]: %w", key, i, err)}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func parseEntry(item string) (db.SeqEntry, error) {
	seqStr, data, ok := strings.Cut(item, ":")
	if !ok {
		return db.SeqEntry{}, db.ErrCorruptEntry
	}
	seq, err := strconv.ParseInt(seqStr, 10, 64)
	if err != nil || seq <= 0 {
		return db.SeqEntry{}, db.ErrCorruptEntry
	}
	return db.SeqEntry{Seq: seq, Data: []byte(data)}, nil
}
