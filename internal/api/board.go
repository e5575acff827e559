package api

import (
	"net/http"
	"strconv"
)

// ListTags handles GET /api/tags.
//
//	@Summary		List the tag catalog in board order
//	@Tags			tags
//	@Produce		json
//	@Param			selectable	query		bool	false	"Leave out NoTag"
//	@Success		200			{object}	TagsResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	selectable, _ := strconv.ParseBool(r.URL.Query().Get("selectable"))
	tags := h.store.Tags()
	if selectable {
		tags = h.store.SelectableTags()
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: tags})
}

// ReorderTags handles POST /api/tags/reorder.
//
//	@Summary		Move one tag in the catalog
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReorderRequest	true	"from/to positions or fromId/toId"
//	@Success		200		{object}	TagsResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags/reorder [post]
func (h *Handler) ReorderTags(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.store.ReorderTags(r.Context(), req.Move()); err != nil {
		writeError(w, "reorder tags", err)
		return
	}
	writeJSON(w, http.StatusOK, TagsResponse{Tags: h.store.Tags()})
}

// Board handles GET /api/board.
//
//	@Summary		Board columns with their todos
//	@Tags			board
//	@Produce		json
//	@Success		200	{object}	BoardResponse
//	@Security		BearerAuth
//	@Router			/board [get]
func (h *Handler) Board(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, BoardResponse{Columns: h.store.Board()})
}

// SaveItem handles POST /api/board/items.
//
//	@Summary		Add a todo from the board with a title and tag
//	@Tags			board
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SaveItemRequest	true	"Title and tags"
//	@Success		201		{object}	models.Todo
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/board/items [post]
func (h *Handler) SaveItem(w http.ResponseWriter, r *http.Request) {
	var req SaveItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	id, err := h.store.SaveItem(r.Context(), req.Title, req.Tags)
	if err != nil {
		writeError(w, "save item", err)
		return
	}
	todo, err := h.store.GetTodo(r.Context(), id)
	if err != nil {
		writeError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across titles and content
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.store.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
