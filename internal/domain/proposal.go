package domain

// Proposal is the AI-suggested description and tags for an uploaded file.
// The user edits it before it is saved as a record.
type Proposal struct {
	Description string
	Tags        []string
	Path        string
}

// TaggingInput describes an uploaded file to the tagger.
type TaggingInput struct {
	Filename    string
	ContentType string
	Size        int64
	Preview     string // empty for binary or oversized files
}

// TaggingResult carries the tagger's suggestion and token usage.
type TaggingResult struct {
	Description      string
	Tags             []string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
