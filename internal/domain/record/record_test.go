package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/tagdex/internal/domain"
)

func TestNewCandidate_Valid(t *testing.T) {
	c, err := NewCandidate("  quarterly report ", []string{" budget", "finance "}, "/uploads/q3.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Description != "quarterly report" {
		t.Errorf("Description = %q", c.Description)
	}
	if c.Tags[0] != "budget" || c.Tags[1] != "finance" {
		t.Errorf("Tags = %v", c.Tags)
	}
	if c.Path != "/uploads/q3.pdf" {
		t.Errorf("Path = %q", c.Path)
	}
}

func TestNewCandidate_EmptyTagsAllowed(t *testing.T) {
	c, err := NewCandidate("report", []string{}, "/uploads/a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Tags) != 0 {
		t.Errorf("Tags = %v, want empty", c.Tags)
	}
}

func TestNewCandidate_Invalid(t *testing.T) {
	tooMany := make([]string, MaxTags+1)
	for i := range tooMany {
		tooMany[i] = "t"
	}

	tests := []struct {
		name        string
		description string
		tags        []string
		path        string
		wantSubstr  string
	}{
		{"empty description", "", []string{}, "/p", "description"},
		{"blank description", "   ", []string{}, "/p", "description"},
		{"empty path", "d", []string{}, "", "path"},
		{"nil tags", "d", nil, "/p", "tags"},
		{"blank tag", "d", []string{"ok", " "}, "/p", "tag 1"},
		{"too many tags", "d", tooMany, "/p", "too many tags"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCandidate(tc.description, tc.tags, tc.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrInvalidRecord) {
				t.Errorf("expected ErrInvalidRecord, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantSubstr) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantSubstr)
			}
		})
	}
}

func TestNewCandidate_MaxTagsBoundary(t *testing.T) {
	tags := make([]string, MaxTags)
	for i := range tags {
		tags[i] = "t"
	}
	if _, err := NewCandidate("d", tags, "/p"); err != nil {
		t.Fatalf("exactly %d tags should be accepted: %v", MaxTags, err)
	}
}

func TestFromCandidate_CopiesTags(t *testing.T) {
	c := Candidate{Description: "d", Tags: []string{"a"}, Path: "/p"}
	r := FromCandidate(7, c)
	c.Tags[0] = "mutated"

	if r.ID() != 7 {
		t.Errorf("ID() = %d", r.ID())
	}
	if r.Tags()[0] != "a" {
		t.Error("candidate mutation leaked into record")
	}
}

func TestFromCandidate_NilTags(t *testing.T) {
	r := FromCandidate(1, Candidate{Description: "d", Path: "/p"})
	if r.Tags() == nil {
		t.Error("Tags() should be an empty slice, not nil")
	}
}

func TestReconstruct(t *testing.T) {
	r := Reconstruct(3, "desc", []string{"x"}, "/uploads/x")
	if r.ID() != 3 || r.Description() != "desc" || r.Path() != "/uploads/x" || r.Tags()[0] != "x" {
		t.Errorf("unexpected record: %+v", r)
	}
}
