package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog/store"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/logger"
)

// Uploader is satisfied by *publisher.Publisher.
type Uploader interface {
	Upload(ctx context.Context, name string, body []byte, snap *catalog.Snapshot) (*ingestion.UploadResponse, error)
}

// DocumentGetter is satisfied by *store.Store.
type DocumentGetter interface {
	Get(ctx context.Context, id string) (store.Record, error)
}

// UploadRecorder observes upload outcomes.
type UploadRecorder interface {
	Uploaded(status string)
}

type Handler struct {
	uploader Uploader
	docs     DocumentGetter
	maxBytes int64
	recorder UploadRecorder
	logger   *slog.Logger
}

func New(uploader Uploader, docs DocumentGetter, maxBytes int64, recorder UploadRecorder) *Handler {
	return &Handler{
		uploader: uploader,
		docs:     docs,
		maxBytes: maxBytes,
		recorder: recorder,
		logger:   slog.Default().With("component", "ingestion-handler"),
	}
}

// Upload accepts a raw catalog document as the request body. The optional
// name query parameter labels it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)
	name := r.URL.Query().Get("name")

	reader := io.Reader(r.Body)
	if h.maxBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.record("rejected")
			h.writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error": "document too large",
				"limit": tooLarge.Limit,
			})
			return
		}
		h.record("failed")
		h.writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}

	snap, err := validator.ValidateUpload(name, body, h.maxBytes)
	if err != nil {
		h.record("rejected")
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.uploader.Upload(ctx, name, body, snap)
	if err != nil {
		h.record("failed")
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("upload failed", "error", err, "status_code", statusCode)
		h.writeError(w, statusCode, "upload failed")
		return
	}

	status := http.StatusCreated
	outcome := "created"
	if resp.Duplicate {
		status = http.StatusOK
		outcome = "duplicate"
	}
	h.record(outcome)
	log.Info("document uploaded",
		"doc_id", resp.DocumentID,
		"status", resp.Status,
		"duplicate", resp.Duplicate,
		"definitions", resp.Definitions,
	)
	h.writeJSON(w, status, resp)
}

// Get returns the metadata of a stored document.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := h.docs.Get(r.Context(), id)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(r.Context()).Error("document lookup failed", "doc_id", id, "error", err)
		}
		h.writeError(w, status, http.StatusText(status))
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) record(outcome string) {
	if h.recorder != nil {
		h.recorder.Uploaded(outcome)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
