package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
	"github.com/kailas-cloud/tagdex/internal/metrics"
)

const (
	// DefaultModel is used when the config leaves the model empty.
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature matches the sampling used for proposals.
	DefaultTemperature = 0.3

	maxTags = 10
)

const systemPrompt = `You are a librarian for internal company documents. From the file information below, produce:
(1) description: what this document is (100 to 200 characters)
(2) tags: up to 10 tags, mostly nouns
Reply with a JSON object containing only the fields "description" and "tags".
If the file cannot be read, set description to "Unreadable file, please describe it manually."
Start the description with "This file is" and write nothing besides the explanation.`

// Tagger proposes a description and tags for an uploaded file through an
// OpenAI-compatible chat completion API.
type Tagger struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

// Config holds the chat completion settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewTagger creates a tagger. Empty BaseURL keeps the client default.
func NewTagger(cfg *Config) *Tagger {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tagger{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Propose asks the model for a description and tags. Unusable model output
// degrades to a placeholder description with no tags; only API failures are errors.
func (t *Tagger) Propose(ctx context.Context, in domain.TaggingInput) (domain.TaggingResult, error) {
	req := openai.ChatCompletionRequest{
		Model:       t.model,
		Temperature: t.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(in)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.TaggingRequestsTotal.WithLabelValues(t.model, "error").Inc()
		return domain.TaggingResult{}, parseAPIError(err)
	}
	metrics.TaggingRequestDuration.WithLabelValues(t.model).Observe(duration.Seconds())

	if u := resp.Usage; u.TotalTokens > 0 {
		metrics.TaggingTokensTotal.WithLabelValues(t.model, "prompt").Add(float64(u.PromptTokens))
		metrics.TaggingTokensTotal.WithLabelValues(t.model, "completion").Add(float64(u.CompletionTokens))
		metrics.TaggingTokensTotal.WithLabelValues(t.model, "total").Add(float64(u.TotalTokens))
	}

	var content string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	description, tags, ok := parseProposal(content)
	status := "success"
	if !ok {
		status = "fallback"
		t.logger.Warn("tagging response unusable, using placeholder",
			zap.String("filename", in.Filename),
			zap.Int("content_len", len(content)),
		)
	}
	if description == "" {
		description = FallbackDescription(in.Filename)
	}
	metrics.TaggingRequestsTotal.WithLabelValues(t.model, status).Inc()

	return domain.TaggingResult{
		Description:      description,
		Tags:             tags,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (t *Tagger) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// FallbackDescription is the placeholder used when the model gives no description.
func FallbackDescription(filename string) string {
	return strconv.Quote(filename) + " description (AI proposal)"
}

func userPrompt(in domain.TaggingInput) string {
	mimeType := in.ContentType
	if mimeType == "" {
		mimeType = "unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Filename: %s\nMIME: %s\nSize: %d bytes", in.Filename, mimeType, in.Size)
	if in.Preview != "" {
		b.WriteString("\nPreview:\n")
		b.WriteString(in.Preview)
	} else {
		b.WriteString("\n(binary file, no content preview)")
	}
	return b.String()
}

// parseProposal extracts description and tags from the model's JSON object.
// ok is false when the content is not a JSON object or has no description.
// Tags are trimmed, blanks and non-strings dropped, at most maxTags kept; never nil.
func parseProposal(content string) (description string, tags []string, ok bool) {
	tags = []string{}

	var raw struct {
		Description any `json:"description"`
		Tags        any `json:"tags"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return "", tags, false
	}

	if s, isStr := raw.Description.(string); isStr {
		description = strings.TrimSpace(s)
	}

	if list, isList := raw.Tags.([]any); isList {
		for _, v := range list {
			s, isStr := v.(string)
			if !isStr {
				continue
			}
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			tags = append(tags, s)
			if len(tags) == maxTags {
				break
			}
		}
	}

	return description, tags, description != ""
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrTaggerUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrTaggerUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("tagging API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("tagging API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("tagging API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("tagging request aborted: %w: %w", wrap, err)
	}
	return fmt.Errorf("tagging request failed: %w", wrap)
}

// extractDetail reads the "detail" field some OpenAI-compatible providers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
