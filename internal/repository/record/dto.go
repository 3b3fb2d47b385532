package record

import (
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
)

// entryDTO is the payload of one sequenced list entry; the ID is the sequence number.
type entryDTO struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

// fileRecordDTO is one element of the JSON array in the file store.
type fileRecordDTO struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

func entryFromCandidate(c domrec.Candidate) entryDTO {
	return entryDTO{Description: c.Description, Tags: nonNilTags(c.Tags), Path: c.Path}
}

func (e entryDTO) toDomain(id int64) domrec.Record {
	return domrec.Reconstruct(id, e.Description, nonNilTags(e.Tags), e.Path)
}

func fileRecordFromDomain(r *domrec.Record) fileRecordDTO {
	return fileRecordDTO{ID: r.ID(), Description: r.Description(), Tags: nonNilTags(r.Tags()), Path: r.Path()}
}

func (f fileRecordDTO) toDomain() domrec.Record {
	return domrec.Reconstruct(f.ID, f.Description, nonNilTags(f.Tags), f.Path)
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
