package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tagdex/internal/domain"
	"github.com/kailas-cloud/tagdex/internal/logger"
)

// Error codes returned in the "code" field of error responses.
const (
	CodeBadRequest         = "bad_request"
	CodeNoFile             = "no_file"
	CodeInvalidPayload     = "invalid_payload"
	CodeMessageRequired    = "message_required"
	CodeInvalidQuery       = "invalid_query"
	CodeNotFound           = "not_found"
	CodeUnauthorized       = "unauthorized"
	CodePayloadTooLarge    = "payload_too_large"
	CodeTaggerUnavailable  = "tagger_unavailable"
	CodeQuotaExceeded      = "quota_exceeded"
	CodeStorageUnavailable = "storage_unavailable"
	CodeInternalError      = "internal_error"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidRecord, http.StatusBadRequest, CodeInvalidPayload, "invalid payload"),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, CodeInvalidQuery, ""),
		sentinelHandler(domain.ErrUploadInvalid, http.StatusBadRequest, CodeNoFile, "No file"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound, ""),
		sentinelHandler(domain.ErrTaggingQuotaExceeded, http.StatusTooManyRequests, CodeQuotaExceeded, ""),
		sentinelHandler(domain.ErrTaggerUnavailable, http.StatusBadGateway, CodeTaggerUnavailable, ""),
		sentinelHandler(domain.ErrArtifactStore, http.StatusInternalServerError, CodeStorageUnavailable, ""),
		sentinelHandler(domain.ErrStoreRead, http.StatusInternalServerError, CodeStorageUnavailable, ""),
		sentinelHandler(domain.ErrStoreWrite, http.StatusInternalServerError, CodeStorageUnavailable, ""),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// sentinelHandler matches a single sentinel error. An empty message falls back
// to the sentinel's own text so internals never reach the client.
func sentinelHandler(sentinel error, status int, code, message string) errorHandler {
	if message == "" {
		message = sentinel.Error()
	}
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
