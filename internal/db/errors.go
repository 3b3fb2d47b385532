package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound  = errors.New("db: key not found")
	ErrCorruptEntry = errors.New("db: corrupt list entry")
)

// Op constants name the backend operation for error context.
const (
	OpPing      = "PING"
	OpAppendSeq = "EVAL append_seq"
	OpListSeq   = "LRANGE"
	OpGet       = "GET"
	OpIncrBy    = "INCRBY"
	OpExpire    = "EXPIRE"
	OpBoltPut   = "bolt.Put"
	OpBoltView  = "bolt.View"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
