package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/arlberg/slack2md/internal/index"
	"github.com/arlberg/slack2md/internal/storage"
)

// NewRouter creates a chi router with all archive routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(archive index.Archive, store storage.Provider, authEnabled bool, token string) chi.Router {
	h := NewHandler(archive, store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/channels", h.ListChannels)
	r.Get("/channels/{channel}/documents", h.ListDocuments)
	r.Get("/logs/*", h.GetLog)
	r.Get("/search", h.Search)

	return r
}
