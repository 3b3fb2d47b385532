package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
	"github.com/kailas-cloud/tagdex/internal/logger"
	"github.com/kailas-cloud/tagdex/internal/repository/artifact"
)

const (
	defaultPreviewMaxBytes = 512 * 1024
	defaultPreviewMaxRunes = 4000
)

// File is one uploaded file. Size is -1 when unknown.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Service stores uploads and asks the tagger for a proposal.
type Service struct {
	blobs           BlobStore
	tagger          Tagger
	now             func() time.Time
	previewMaxBytes int64
	previewMaxRunes int
}

// New creates an upload service.
func New(blobs BlobStore, tagger Tagger) *Service {
	return &Service{
		blobs:           blobs,
		tagger:          tagger,
		now:             time.Now,
		previewMaxBytes: defaultPreviewMaxBytes,
		previewMaxRunes: defaultPreviewMaxRunes,
	}
}

// WithPreviewLimits overrides the text preview limits. Non-positive values keep the defaults.
func (s *Service) WithPreviewLimits(maxBytes int64, maxRunes int) *Service {
	if maxBytes > 0 {
		s.previewMaxBytes = maxBytes
	}
	if maxRunes > 0 {
		s.previewMaxRunes = maxRunes
	}
	return s
}

// WithClock replaces the time source used for storage names.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upload stores f under a safe name and returns the tagger's proposal for it.
// The file stays stored even when tagging fails.
func (s *Service) Upload(ctx context.Context, f File) (domain.Proposal, error) {
	if f.Content == nil {
		return domain.Proposal{}, fmt.Errorf("%w: no file", domain.ErrUploadInvalid)
	}

	filename := f.Filename
	if strings.TrimSpace(filename) == "" {
		filename = "upload.bin"
	}
	name := artifact.SafeName(filename, s.now())

	body, preview, size, err := s.readPreview(f)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("%w: read %s: %w", domain.ErrUploadInvalid, filename, err)
	}

	path, err := s.blobs.Put(ctx, name, body, size, f.ContentType)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("store upload: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Debug("upload stored",
		zap.String("name", name),
		zap.Int64("size", size),
		zap.Bool("preview", preview != ""),
	)

	res, err := s.tagger.Propose(ctx, domain.TaggingInput{
		Filename:    filename,
		ContentType: f.ContentType,
		Size:        size,
		Preview:     preview,
	})
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("propose tags for %s: %w", name, err)
	}

	tags := res.Tags
	if tags == nil {
		tags = []string{}
	}
	return domain.Proposal{Description: res.Description, Tags: tags, Path: path}, nil
}

// readPreview buffers small text bodies to build a preview. It returns the
// reader to store (with any consumed bytes put back) and the best known size.
func (s *Service) readPreview(f File) (io.Reader, string, int64, error) {
	if !isText(f.ContentType) || f.Size > s.previewMaxBytes {
		return f.Content, "", f.Size, nil
	}

	buf, err := io.ReadAll(io.LimitReader(f.Content, s.previewMaxBytes+1))
	if err != nil {
		return nil, "", 0, err
	}
	if int64(len(buf)) > s.previewMaxBytes {
		// Size was unknown and the body is too large for a preview.
		return io.MultiReader(bytes.NewReader(buf), f.Content), "", f.Size, nil
	}

	return bytes.NewReader(buf), truncateRunes(strings.ToValidUTF8(string(buf), "�"), s.previewMaxRunes), int64(len(buf)), nil
}

// isText reports whether a MIME type gets a content preview: text/* or application/json.
func isText(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mt, "text/") || mt == "application/json"
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
