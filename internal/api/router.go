package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/todostore"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events and mcpHandler at /mcp,
// both behind auth.
func NewRouter(store *todostore.Store, authEnabled bool, token string, sseHandler, mcpHandler http.Handler) chi.Router {
	h := NewHandler(store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/todos", func(r chi.Router) {
		r.Get("/", h.ListTodos)
		r.Post("/", h.CreateTodo)
		r.Delete("/", h.DeleteTodos)
		r.Post("/reorder", h.ReorderTodos)
		r.Post("/selection", h.ToggleSelection)
		r.Delete("/selection", h.DeleteSelected)
		r.Get("/{id}", h.GetTodo)
		r.Patch("/{id}", h.UpdateTodo)
	})

	r.Route("/draft", func(r chi.Router) {
		r.Get("/", h.GetDraft)
		r.Patch("/", h.UpdateDraft)
		r.Delete("/", h.ResetDraft)
		r.Post("/open/{id}", h.OpenDraft)
		r.Post("/save", h.SaveDraft)
		r.Post("/new", h.NewDraft)
	})

	r.Get("/tags", h.ListTags)
	r.Post("/tags/reorder", h.ReorderTags)
	r.Get("/board", h.Board)
	r.Post("/board/items", h.SaveItem)
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}
	if mcpHandler != nil {
		r.Handle("/mcp", mcpHandler)
	}

	return r
}
