package record

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

// MaxTags is the maximum number of tags on a newly created record.
const MaxTags = 10

// Record is a stored document description (immutable value object).
type Record struct {
	id          int64
	description string
	tags        []string
	path        string
}

// Candidate is a record that has not been assigned an ID yet.
type Candidate struct {
	Description string
	Tags        []string
	Path        string
}

// NewCandidate validates user input for a record about to be saved.
// Description and path must be non-blank, every tag non-blank, at most MaxTags tags.
// Surrounding whitespace is trimmed.
func NewCandidate(description string, tags []string, path string) (Candidate, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Candidate{}, fmt.Errorf("description is required: %w", domain.ErrInvalidRecord)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Candidate{}, fmt.Errorf("path is required: %w", domain.ErrInvalidRecord)
	}
	if tags == nil {
		return Candidate{}, fmt.Errorf("tags must be a list: %w", domain.ErrInvalidRecord)
	}
	if len(tags) > MaxTags {
		return Candidate{}, fmt.Errorf("too many tags (max %d, got %d): %w", MaxTags, len(tags), domain.ErrInvalidRecord)
	}

	cleaned := make([]string, len(tags))
	for i, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			return Candidate{}, fmt.Errorf("tag %d is empty: %w", i, domain.ErrInvalidRecord)
		}
		cleaned[i] = t
	}

	return Candidate{Description: description, Tags: cleaned, Path: path}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id int64, description string, tags []string, path string) Record {
	return Record{id: id, description: description, tags: tags, path: path}
}

// FromCandidate binds a store-assigned ID to a candidate.
func FromCandidate(id int64, c Candidate) Record {
	return Record{id: id, description: c.Description, tags: cloneTags(c.Tags), path: c.Path}
}

// ID returns the store-assigned identifier.
func (r *Record) ID() int64 { return r.id }

// Description returns the free-text description.
func (r *Record) Description() string { return r.description }

// Tags returns the ordered tag list. Callers must not modify it.
func (r *Record) Tags() []string { return r.tags }

// Path returns the artifact location.
func (r *Record) Path() string { return r.path }

func cloneTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	c := make([]string, len(tags))
	copy(c, tags)
	return c
}
