package record

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/kailas-cloud/tagdex/internal/domain"
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
)

// FileRepo stores all records as one pretty-printed JSON array.
// Appends rewrite the whole file through a temp file and rename.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a JSON file repository at path. The file is created on first append.
func NewFile(path string) *FileRepo {
	return &FileRepo{path: path}
}

// Ping checks that the data directory is reachable.
func (r *FileRepo) Ping(_ context.Context) error {
	dir := filepath.Dir(r.path)
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Created on first append.
			return nil
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (r *FileRepo) Close() {}

// ReadAll returns all records in file order. A missing or blank file is an empty store;
// a top-level JSON value other than an array is also treated as empty.
func (r *FileRepo) ReadAll(ctx context.Context) ([]domrec.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dtos, err := r.readLocked()
	if err != nil {
		return nil, err
	}

	out := make([]domrec.Record, len(dtos))
	for i, d := range dtos {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Append assigns last ID + 1 (1 when empty) and rewrites the file.
func (r *FileRepo) Append(ctx context.Context, c domrec.Candidate) (domrec.Record, error) {
	if err := ctx.Err(); err != nil {
		return domrec.Record{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.readLocked()
	if err != nil {
		return domrec.Record{}, err
	}

	var nextID int64 = 1
	if len(all) > 0 {
		nextID = all[len(all)-1].ID + 1
	}

	rec := domrec.FromCandidate(nextID, c)
	all = append(all, fileRecordFromDomain(&rec))

	if err := r.writeLocked(all); err != nil {
		return domrec.Record{}, fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	return rec, nil
}

func (r *FileRepo) readLocked() ([]fileRecordDTO, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []fileRecordDTO{}, nil
		}
		return nil, fmt.Errorf("read %s: %w: %w", r.path, domain.ErrStoreRead, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		if len(data) > 0 && !json.Valid(data) {
			return nil, fmt.Errorf("parse %s: %w: invalid JSON", r.path, domain.ErrStoreRead)
		}
		return []fileRecordDTO{}, nil
	}

	var dtos []fileRecordDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", r.path, domain.ErrStoreRead, err)
	}
	return dtos, nil
}

func (r *FileRepo) writeLocked(all []fileRecordDTO) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("rename to %s: %w", r.path, err)
	}
	return nil
}
