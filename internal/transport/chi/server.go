// Package chi exposes the HTTP API on a chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/tagdex/internal/domain"
	domrec "github.com/kailas-cloud/tagdex/internal/domain/record"
	"github.com/kailas-cloud/tagdex/internal/domain/search/rank"
	domusage "github.com/kailas-cloud/tagdex/internal/domain/usage"
	"github.com/kailas-cloud/tagdex/internal/repository/artifact"
	healthuc "github.com/kailas-cloud/tagdex/internal/usecase/health"
	uploaduc "github.com/kailas-cloud/tagdex/internal/usecase/upload"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// Uploader stores a file and proposes its description and tags.
type Uploader interface {
	Upload(ctx context.Context, f uploaduc.File) (domain.Proposal, error)
}

// Records saves and lists records.
type Records interface {
	Save(ctx context.Context, description string, tags []string, path string) (domrec.Record, error)
	List(ctx context.Context, cursor string, limit int) ([]domrec.Record, string, error)
}

// Searcher ranks records against a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]rank.Hit, error)
}

// Artifacts opens stored uploads for download.
type Artifacts interface {
	Open(ctx context.Context, name string) (*artifact.Object, error)
}

// UsageReporter reports tagging token usage.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server serves the tagdex HTTP API.
type Server struct {
	uploads        Uploader
	records        Records
	search         Searcher
	artifacts      Artifacts
	usage          UsageReporter
	health         HealthChecker
	maxUploadBytes int64
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	uploads Uploader,
	records Records,
	search Searcher,
	artifacts Artifacts,
	usage UsageReporter,
	health HealthChecker,
	maxUploadBytes int64,
) *Server {
	return &Server{
		uploads:        uploads,
		records:        records,
		search:         search,
		artifacts:      artifacts,
		usage:          usage,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		errorHandlers:  defaultErrorHandlers(),
	}
}

// Routes registers all endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.Upload)
		r.Post("/save", s.Save)
		r.Post("/chat", s.Chat)
		r.Get("/records", s.ListRecords)
		r.Get("/usage", s.GetUsage)
	})

	r.Get(artifact.PublicPrefix+"*", s.ServeArtifact)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// --- DTOs ---

type recordDTO struct {
	ID          int64    `json:"id"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

type hitDTO struct {
	recordDTO
	Score float64 `json:"score"`
}

type proposalDTO struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

type uploadResponse struct {
	Proposal proposalDTO `json:"proposal"`
}

type saveRequest struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Path        string   `json:"path"`
}

type saveResponse struct {
	OK    bool      `json:"ok"`
	Saved recordDTO `json:"saved"`
}

type chatRequest struct {
	Message any  `json:"message"`
	K       *int `json:"k"`
}

type chatResponse struct {
	Hits []hitDTO `json:"hits"`
}

type recordListResponse struct {
	Items      []recordDTO `json:"items"`
	HasMore    bool        `json:"has_more"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

type budgetDTO struct {
	TokensLimit     int64  `json:"tokens_limit"`
	TokensRemaining int64  `json:"tokens_remaining"`
	IsExhausted     bool   `json:"is_exhausted"`
	ResetsAt        string `json:"resets_at"`
}

type usageResponse struct {
	Period      string    `json:"period"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	TokensUsed  int64     `json:"tokens_used"`
	Budget      budgetDTO `json:"budget"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// --- Handlers ---

// Upload handles POST /api/upload.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, CodeNoFile, "No file")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeNoFile, "No file")
		return
	}
	defer file.Close()

	proposal, err := s.uploads.Upload(r.Context(), uploaduc.File{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Proposal: proposalDTO(proposal)})
}

// Save handles POST /api/save.
func (s *Server) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidPayload, "invalid payload")
		return
	}

	rec, err := s.records.Save(r.Context(), req.Description, req.Tags, req.Path)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saveResponse{OK: true, Saved: recordToDTO(&rec)})
}

// Chat handles POST /api/chat: ranks stored records against a free-text message.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeMessageRequired, "message required")
		return
	}
	message, ok := req.Message.(string)
	if !ok || strings.TrimSpace(message) == "" {
		writeError(w, http.StatusBadRequest, CodeMessageRequired, "message required")
		return
	}

	k := 0
	if req.K != nil {
		k = *req.K
	}

	hits, err := s.search.Search(r.Context(), message, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out := make([]hitDTO, len(hits))
	for i := range hits {
		out[i] = hitDTO{recordDTO: recordToDTO(&hits[i].Record), Score: hits[i].Score}
	}
	writeJSON(w, http.StatusOK, chatResponse{Hits: out})
}

// ListRecords handles GET /api/records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, next, err := s.records.List(r.Context(), q.Get("cursor"), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := recordListResponse{Items: make([]recordDTO, len(recs)), HasMore: next != ""}
	for i := range recs {
		resp.Items[i] = recordToDTO(&recs[i])
	}
	if next != "" {
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUsage handles GET /api/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "period must be day or month")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	b := report.Budget()
	writeJSON(w, http.StatusOK, usageResponse{
		Period:      string(report.Period()),
		PeriodStart: millisToISO(report.PeriodStart()),
		PeriodEnd:   millisToISO(report.PeriodEnd()),
		TokensUsed:  report.TokensUsed(),
		Budget: budgetDTO{
			TokensLimit:     b.Limit(),
			TokensRemaining: b.Remaining(),
			IsExhausted:     b.IsExhausted(),
			ResetsAt:        millisToISO(b.ResetsAt()),
		},
	})
}

// ServeArtifact handles GET /uploads/*.
func (s *Server) ServeArtifact(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")

	obj, err := s.artifacts.Open(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	defer obj.Content.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, name, obj.ModTime, obj.Content)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func millisToISO(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

func recordToDTO(r *domrec.Record) recordDTO {
	tags := r.Tags()
	if tags == nil {
		tags = []string{}
	}
	return recordDTO{ID: r.ID(), Description: r.Description(), Tags: tags, Path: r.Path()}
}
