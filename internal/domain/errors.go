package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRecord signals a record payload that fails validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidQuery signals an empty or oversized search request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUploadInvalid signals a missing or unreadable upload.
	ErrUploadInvalid = errors.New("invalid upload")
	// ErrStoreRead signals that stored records could not be read or decoded.
	ErrStoreRead = errors.New("record store read failed")
	// ErrStoreWrite signals that a record could not be persisted.
	ErrStoreWrite = errors.New("record store write failed")
	// ErrArtifactStore signals an artifact (uploaded file) storage failure.
	ErrArtifactStore = errors.New("artifact store failed")
	// ErrTaggerUnavailable signals a tagging provider failure.
	ErrTaggerUnavailable = errors.New("tagger unavailable")
	// ErrTaggingQuotaExceeded signals an exhausted tagging token budget.
	ErrTaggingQuotaExceeded = errors.New("tagging token budget exceeded")
)
