package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"

	"github.com/go-chi/chi/v5"
)

// MaxUploadSize bounds the size of an uploaded document.
const MaxUploadSize = 64 << 20

// Extractor processes a document stored at path.
type Extractor interface {
	Process(ctx context.Context, path string) (*exam.Paper, error)
}

type Handler struct {
	extractor Extractor
	book      *ledger.Book

	logger *slog.Logger
}

func New(extractor Extractor, book *ledger.Book, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		extractor: extractor,
		book:      book,

		logger: logger,
	}
}

func (h *Handler) Attach(r chi.Router) {
	r.Post("/extractions", h.handleExtraction)
	r.Get("/runs", h.handleRuns)
}

func (h *Handler) writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, code int, err error) {
	if code >= 500 {
		h.logger.Error("server error", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	errorType := "invalid_request_error"

	if code == http.StatusUnauthorized {
		errorType = "authentication_error"
	} else if code == http.StatusNotFound {
		errorType = "not_found_error"
	} else if code == http.StatusRequestEntityTooLarge {
		errorType = "request_too_large"
	} else if code >= 500 {
		errorType = "api_error"
	}

	resp := ErrorResponse{
		Error: Error{
			Type:    errorType,
			Message: err.Error(),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(resp)
}
