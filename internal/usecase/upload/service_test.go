package upload

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// --- Mocks ---

type mockBlobStore struct {
	putFn func(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)

	name string
	body string
	size int64
}

func (m *mockBlobStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if m.putFn != nil {
		return m.putFn(ctx, name, r, size, contentType)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.name, m.body, m.size = name, string(b), size
	return "/uploads/" + name, nil
}

type mockTagger struct {
	proposeFn func(ctx context.Context, in domain.TaggingInput) (domain.TaggingResult, error)

	got domain.TaggingInput
}

func (m *mockTagger) Propose(ctx context.Context, in domain.TaggingInput) (domain.TaggingResult, error) {
	m.got = in
	if m.proposeFn != nil {
		return m.proposeFn(ctx, in)
	}
	return domain.TaggingResult{Description: "This file is a test.", Tags: []string{"test"}}, nil
}

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func newTestService(blobs *mockBlobStore, tagger *mockTagger) *Service {
	return New(blobs, tagger).WithClock(fixedNow)
}

// --- Tests ---

func TestUpload_TextFile(t *testing.T) {
	blobs, tagger := &mockBlobStore{}, &mockTagger{}
	svc := newTestService(blobs, tagger)

	p, err := svc.Upload(context.Background(), File{
		Filename:    "network spec.md",
		ContentType: "text/markdown; charset=utf-8",
		Size:        14,
		Content:     strings.NewReader("# Network spec"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if blobs.name != "network_spec_1700000000000.md" {
		t.Errorf("stored name = %q", blobs.name)
	}
	if blobs.body != "# Network spec" {
		t.Errorf("stored body = %q", blobs.body)
	}
	if p.Path != "/uploads/network_spec_1700000000000.md" {
		t.Errorf("path = %q", p.Path)
	}
	if p.Description != "This file is a test." || len(p.Tags) != 1 {
		t.Errorf("proposal = %+v", p)
	}

	if tagger.got.Filename != "network spec.md" {
		t.Errorf("tagger filename = %q", tagger.got.Filename)
	}
	if tagger.got.Preview != "# Network spec" {
		t.Errorf("preview = %q", tagger.got.Preview)
	}
	if tagger.got.Size != 14 {
		t.Errorf("size = %d", tagger.got.Size)
	}
}

func TestUpload_PreviewRules(t *testing.T) {
	long := strings.Repeat("あ", 5000)

	tests := []struct {
		name        string
		contentType string
		size        int64
		body        string
		wantPreview string
	}{
		{"json", "application/json", 7, `{"a":1}`, `{"a":1}`},
		{"binary", "application/pdf", 4, "%PDF", ""},
		{"no type", "", 3, "abc", ""},
		{"truncated to 4000 runes", "text/plain", int64(len(long)), long, strings.Repeat("あ", 4000)},
		{"declared too large", "text/plain", 512*1024 + 1, "small", ""},
		{"unknown size, small", "text/plain", -1, "hello", "hello"},
		{"invalid utf-8", "text/plain", 3, "a\xffb", "a�b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blobs, tagger := &mockBlobStore{}, &mockTagger{}
			_, err := newTestService(blobs, tagger).Upload(context.Background(), File{
				Filename: "f", ContentType: tc.contentType, Size: tc.size, Content: strings.NewReader(tc.body),
			})
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if tagger.got.Preview != tc.wantPreview {
				t.Errorf("preview = %.40q..., want %.40q...", tagger.got.Preview, tc.wantPreview)
			}
			if blobs.body != tc.body {
				t.Error("stored body differs from upload")
			}
		})
	}
}

func TestUpload_UnknownSizeTooLargeKeepsWholeBody(t *testing.T) {
	blobs, tagger := &mockBlobStore{}, &mockTagger{}
	svc := newTestService(blobs, tagger).WithPreviewLimits(8, 0)

	body := "0123456789abcdef"
	if _, err := svc.Upload(context.Background(), File{
		Filename: "big.txt", ContentType: "text/plain", Size: -1, Content: strings.NewReader(body),
	}); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if tagger.got.Preview != "" {
		t.Errorf("preview = %q, want none", tagger.got.Preview)
	}
	if blobs.body != body {
		t.Errorf("stored body = %q, want %q", blobs.body, body)
	}
	if blobs.size != -1 {
		t.Errorf("size = %d, want -1", blobs.size)
	}
}

func TestUpload_EmptyFilename(t *testing.T) {
	blobs, tagger := &mockBlobStore{}, &mockTagger{}
	_, err := newTestService(blobs, tagger).Upload(context.Background(), File{
		ContentType: "application/octet-stream", Size: 1, Content: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if blobs.name != "upload_1700000000000.bin" {
		t.Errorf("stored name = %q", blobs.name)
	}
	if tagger.got.Filename != "upload.bin" {
		t.Errorf("tagger filename = %q", tagger.got.Filename)
	}
}

func TestUpload_NoFile(t *testing.T) {
	_, err := newTestService(&mockBlobStore{}, &mockTagger{}).Upload(context.Background(), File{Filename: "a"})
	if !errors.Is(err, domain.ErrUploadInvalid) {
		t.Fatalf("expected ErrUploadInvalid, got %v", err)
	}
}

func TestUpload_StoreError(t *testing.T) {
	blobs := &mockBlobStore{
		putFn: func(context.Context, string, io.Reader, int64, string) (string, error) {
			return "", domain.ErrArtifactStore
		},
	}
	tagger := &mockTagger{}

	_, err := newTestService(blobs, tagger).Upload(context.Background(), File{
		Filename: "a.txt", ContentType: "text/plain", Size: 1, Content: strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrArtifactStore) {
		t.Fatalf("expected ErrArtifactStore, got %v", err)
	}
	if tagger.got.Filename != "" {
		t.Error("tagger must not be called when storing fails")
	}
}

func TestUpload_TaggerError(t *testing.T) {
	blobs := &mockBlobStore{}
	tagger := &mockTagger{
		proposeFn: func(context.Context, domain.TaggingInput) (domain.TaggingResult, error) {
			return domain.TaggingResult{}, domain.ErrTaggerUnavailable
		},
	}

	_, err := newTestService(blobs, tagger).Upload(context.Background(), File{
		Filename: "a.txt", ContentType: "text/plain", Size: 1, Content: strings.NewReader("x"),
	})
	if !errors.Is(err, domain.ErrTaggerUnavailable) {
		t.Fatalf("expected ErrTaggerUnavailable, got %v", err)
	}
	if blobs.name == "" {
		t.Error("file should be stored before tagging")
	}
}

func TestUpload_NilTagsBecomeEmpty(t *testing.T) {
	tagger := &mockTagger{
		proposeFn: func(context.Context, domain.TaggingInput) (domain.TaggingResult, error) {
			return domain.TaggingResult{Description: "d"}, nil
		},
	}
	p, err := newTestService(&mockBlobStore{}, tagger).Upload(context.Background(), File{
		Filename: "a", Size: 1, Content: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if p.Tags == nil {
		t.Error("Tags should be an empty slice, not nil")
	}
}

func TestIsText(t *testing.T) {
	tests := map[string]bool{
		"text/plain":                      true,
		"text/csv; charset=shift_jis":     true,
		"application/json":                true,
		"Application/JSON":                true,
		"application/json; charset=utf-8": true,
		"application/jsonl":               false,
		"image/png":                       false,
		"":                                false,
		"garbage;;":                       false,
	}
	for ct, want := range tests {
		if got := isText(ct); got != want {
			t.Errorf("isText(%q) = %v, want %v", ct, got, want)
		}
	}
}
