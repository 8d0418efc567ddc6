package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/storage"
)

// Handler holds API route handlers over the converted archive.
type Handler struct {
	archive index.Archive
	store   storage.Provider // rooted at the archive output directory
}

// NewHandler creates a new Handler.
func NewHandler(archive index.Archive, store storage.Provider) *Handler {
	return &Handler{archive: archive, store: store}
}

// logPath extracts the document path from the URL (everything after /logs/).
// Supports encoded slashes (e.g. general%2F2019-10-31.md).
func logPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListChannels handles GET /channels: one summary per channel in the archive.
func (h *Handler) ListChannels(w http.ResponseWriter, _ *http.Request) {
	channels, err := h.archive.Channels()
	if err != nil {
		slog.Error("list channels failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if channels == nil {
		channels = []index.ChannelInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

// ListDocuments handles GET /channels/{channel}/documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	channel := chi.URLParam(r, "channel")
	docs, err := h.archive.Documents(channel)
	if err != nil {
		slog.Error("list documents failed", slog.String("channel", channel), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if docs == nil {
		docs = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// GetLog handles GET /logs/*: returns the raw Markdown of one document.
func (h *Handler) GetLog(w http.ResponseWriter, r *http.Request) {
	path := logPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	data, err := h.store.Read(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Search handles GET /search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	results, err := h.archive.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
