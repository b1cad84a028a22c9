// Package handler serves the search API: queries, selection resolution, the
// category tree and the shared cache controls.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/dialog"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/internal/searcher/engine"
	apperrors "github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/userdef-search/pkg/middleware"
)

// EventTracker is satisfied by *analytics.Collector.
type EventTracker interface {
	Track(event any)
}

// SelectionRecorder observes resolved selections.
type SelectionRecorder interface {
	Selected(kind string)
}

type Handler struct {
	searcher *Searcher
	cache    *cache.QueryCache
	tracker  EventTracker
	recorder SelectionRecorder
	logger   *slog.Logger
}

// New builds the handler. queryCache, tracker and recorder may be nil.
func New(searcher *Searcher, queryCache *cache.QueryCache, tracker EventTracker, recorder SelectionRecorder) *Handler {
	return &Handler{
		searcher: searcher,
		cache:    queryCache,
		tracker:  tracker,
		recorder: recorder,
		logger:   logger.WithComponent("search-handler"),
	}
}

// Search answers GET /api/v1/search?q=. An empty q yields the prompt status.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	query := r.URL.Query().Get("q")
	snap := h.searcher.Snapshot()

	var (
		resp     engine.Response
		cacheHit bool
	)
	if h.cache != nil {
		var err error
		resp, cacheHit, err = h.cache.GetOrCompute(ctx, snap.Fingerprint(), query, func() (engine.Response, error) {
			return h.searcher.Search(snap, query), nil
		})
		if err != nil {
			log.Error("search failed", "query", query, "error", err)
			h.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
	} else {
		resp = h.searcher.Search(snap, query)
	}

	latency := time.Since(start)
	log.Info("search completed",
		"query", query,
		"status", resp.Status,
		"returned", len(resp.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	if h.tracker != nil {
		counts := resp.Counts()
		h.tracker.Track(analytics.SearchEvent{
			Type:        analytics.EventSearch,
			Query:       query,
			Status:      string(resp.Status),
			Categories:  counts[engine.KindCategory.String()],
			Definitions: counts[engine.KindDefinition.String()],
			Content:     counts[engine.KindContent.String()],
			Returned:    len(resp.Results),
			CacheHit:    cacheHit,
			Fingerprint: snap.Fingerprint(),
			LatencyMs:   latency.Milliseconds(),
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type selectRequest struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// SelectResponse is the definition a committed selection opens.
type SelectResponse struct {
	Selection     dialog.Selection     `json:"selection"`
	Definition    catalog.Definition   `json:"definition"`
	CategoryLabel string               `json:"categoryLabel"`
	Content       *catalog.ContentEntry `json:"content,omitempty"`
}

// Select answers POST /api/v1/select. A category opens its first definition
// and a content match opens its definition.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeAppError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid JSON body"))
		return
	}
	kind, err := engine.ParseKind(req.Kind)
	if err != nil || req.ID == "" {
		h.writeAppError(w, apperrors.ErrInvalidInput)
		return
	}

	sel := dialog.Selection{Kind: kind.Target(), ID: req.ID}
	snap := h.searcher.Snapshot()
	def, ok := dialog.Resolve(snap, sel)
	if !ok {
		h.writeAppError(w, apperrors.Newf(apperrors.ErrDefinitionNotFound, http.StatusNotFound,
			"nothing to open for %s %q", sel.Kind, sel.ID))
		return
	}

	resp := SelectResponse{
		Selection:     sel,
		Definition:    def,
		CategoryLabel: snap.CategoryLabel(def.CategoryID),
	}
	if entry, ok := snap.Content(def.DefinitionID); ok {
		resp.Content = &entry
	}
	if h.recorder != nil {
		h.recorder.Selected(sel.Kind.String())
	}
	if h.tracker != nil {
		h.tracker.Track(analytics.SelectEvent{
			Type:         analytics.EventSelect,
			Kind:         sel.Kind.String(),
			ID:           sel.ID,
			DefinitionID: def.DefinitionID,
			Timestamp:    time.Now().UTC(),
			RequestID:    middleware.GetRequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type treeNode struct {
	Category    catalog.Category     `json:"category"`
	Label       string               `json:"label"`
	Definitions []catalog.Definition `json:"definitions"`
}

// Tree answers GET /api/v1/tree with every category and its definitions.
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	snap := h.searcher.Snapshot()
	nodes := snap.Tree()
	out := make([]treeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, treeNode{Category: n.Category, Label: n.Category.Label(), Definitions: n.Definitions})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"fingerprint": snap.Fingerprint(),
		"categories":  out,
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
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

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
}
