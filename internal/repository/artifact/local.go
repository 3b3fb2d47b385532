package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// LocalStore keeps artifacts in a directory on the local file system.
type LocalStore struct {
	dir string
}

// NewLocal prepares dir for writing. When dir cannot be created, fallback is
// used instead and a warning is logged; an empty fallback disables that.
func NewLocal(dir, fallback string, logger *zap.Logger) (*LocalStore, error) {
	err := os.MkdirAll(dir, 0o750)
	if err == nil {
		return &LocalStore{dir: dir}, nil
	}
	if fallback == "" {
		return nil, fmt.Errorf("create uploads dir %s: %w", dir, err)
	}

	logger.Warn("uploads dir unavailable, using fallback",
		zap.String("dir", dir),
		zap.String("fallback", fallback),
		zap.Error(err),
	)
	if ferr := os.MkdirAll(fallback, 0o750); ferr != nil {
		return nil, fmt.Errorf("create fallback uploads dir %s: %w", fallback, ferr)
	}
	return &LocalStore{dir: fallback}, nil
}

// Dir returns the directory in use.
func (s *LocalStore) Dir() string { return s.dir }

// Put writes r to <dir>/<name> and returns the public path.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !validName(name) {
		return "", fmt.Errorf("%w: invalid name %q", domain.ErrArtifactStore, name)
	}

	f, err := os.CreateTemp(s.dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrArtifactStore, err)
	}
	tmpName := f.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%w: write %s: %w", domain.ErrArtifactStore, name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", domain.ErrArtifactStore, name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrArtifactStore, err)
	}
	return PublicPath(name), nil
}

// Open opens a stored artifact. Unknown or malformed names yield domain.ErrNotFound.
func (s *LocalStore) Open(_ context.Context, name string) (*Object, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactStore, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactStore, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, domain.ErrNotFound
	}

	return &Object{
		Content:     f,
		Size:        info.Size(),
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		ModTime:     info.ModTime(),
	}, nil
}

// Ping checks that the directory is still there.
func (s *LocalStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", s.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
