package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/todostore"
)

// Handler holds API route handlers.
type Handler struct {
	store *todostore.Store
}

// NewHandler creates a new Handler.
func NewHandler(store *todostore.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) listResponse() TodoListResponse {
	selected := h.store.SelectedIDs()
	if selected == nil {
		selected = []string{}
	}
	return TodoListResponse{
		Todos:    h.store.FilteredTodos(),
		Filter:   h.store.Filter(),
		Selected: selected,
	}
}

// ListTodos handles GET /api/todos.
//
//	@Summary		List todos visible under a tag filter
//	@Description	Passing tag switches the active filter and clears the selection.
//	@Tags			todos
//	@Produce		json
//	@Param			tag	query		string	false	"Tag id, or * for all"
//	@Success		200	{object}	TodoListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos [get]
func (h *Handler) ListTodos(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); q.Has("tag") {
		if err := h.store.SetFilter(q.Get("tag")); err != nil {
			writeError(w, "set filter", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.listResponse())
}

// CreateTodo handles POST /api/todos.
//
//	@Summary		Create a todo
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTodoRequest	true	"Todo to create"
//	@Success		201		{object}	models.Todo
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos [post]
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	id, err := h.store.SaveTodo(r.Context(), req.draft())
	if err != nil {
		writeError(w, "create todo", err)
		return
	}
	todo, err := h.store.GetTodo(r.Context(), id)
	if err != nil {
		writeError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// GetTodo handles GET /api/todos/{id}.
//
//	@Summary		Get a todo with its content
//	@Tags			todos
//	@Produce		json
//	@Param			id	path		string	true	"Todo id"
//	@Success		200	{object}	models.Todo
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/{id} [get]
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	todo, err := h.store.GetTodo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// UpdateTodo handles PATCH /api/todos/{id}.
//
//	@Summary		Partially update a todo
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Todo id"
//	@Param			body	body		models.TodoPatch	true	"Fields to change"
//	@Success		200		{object}	models.Todo
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/{id} [patch]
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch models.TodoPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := h.store.UpdateTodo(r.Context(), id, patch); err != nil {
		writeError(w, "update todo", err)
		return
	}
	todo, err := h.store.GetTodo(r.Context(), id)
	if err != nil {
		writeError(w, "get todo", err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// DeleteTodos handles DELETE /api/todos.
//
//	@Summary		Delete a batch of todos, all or nothing
//	@Tags			todos
//	@Accept			json
//	@Param			body	body	DeleteTodosRequest	true	"Ids to delete"
//	@Success		204		"Todos deleted"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos [delete]
func (h *Handler) DeleteTodos(w http.ResponseWriter, r *http.Request) {
	var req DeleteTodosRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.store.DeleteTodos(r.Context(), req.IDs); err != nil {
		writeError(w, "delete todos", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderTodos handles POST /api/todos/reorder.
//
//	@Summary		Move one todo; positions refer to the filtered view
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReorderRequest	true	"from/to positions or fromId/toId"
//	@Success		200		{object}	TodoListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/reorder [post]
func (h *Handler) ReorderTodos(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := h.store.ReorderTodos(r.Context(), req.Move()); err != nil {
		writeError(w, "reorder todos", err)
		return
	}
	writeJSON(w, http.StatusOK, h.listResponse())
}

// ToggleSelection handles POST /api/todos/selection.
//
//	@Summary		Select or deselect every todo in the filtered view
//	@Tags			todos
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SelectionRequest	true	"Selection status"
//	@Success		200		{object}	SelectionResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/todos/selection [post]
func (h *Handler) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.store.ToggleAllSelected(req.Status)
	selected := h.store.SelectedIDs()
	if selected == nil {
		selected = []string{}
	}
	writeJSON(w, http.StatusOK, SelectionResponse{Selected: selected})
}

// DeleteSelected handles DELETE /api/todos/selection.
//
//	@Summary		Delete every selected todo
//	@Tags			todos
//	@Produce		json
//	@Success		200	{object}	models.Result
//	@Failure		422	{object}	models.Result
//	@Security		BearerAuth
//	@Router			/todos/selection [delete]
func (h *Handler) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.store.DeleteSelected(r.Context()))
}
