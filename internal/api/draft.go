package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/jera/internal/models"
)

// GetDraft handles GET /api/draft.
//
//	@Summary		Current draft buffer
//	@Tags			draft
//	@Produce		json
//	@Success		200	{object}	models.TempTodo
//	@Security		BearerAuth
//	@Router			/draft [get]
func (h *Handler) GetDraft(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Draft())
}

// UpdateDraft handles PATCH /api/draft. Edits stay in memory until saved.
//
//	@Summary		Edit the draft buffer
//	@Tags			draft
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.DraftPatch	true	"Fields to change"
//	@Success		200		{object}	models.TempTodo
//	@Security		BearerAuth
//	@Router			/draft [patch]
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var patch models.DraftPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	h.store.UpdateDraft(patch)
	writeJSON(w, http.StatusOK, h.store.Draft())
}

// OpenDraft handles POST /api/draft/open/{id}.
//
//	@Summary		Open a todo in the draft buffer, saving unsaved edits first
//	@Tags			draft
//	@Produce		json
//	@Param			id	path		string	true	"Todo id"
//	@Success		200	{object}	models.Result
//	@Failure		422	{object}	models.Result
//	@Security		BearerAuth
//	@Router			/draft/open/{id} [post]
func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.store.ChangeDraft(r.Context(), chi.URLParam(r, "id")))
}

// SaveDraft handles POST /api/draft/save.
//
//	@Summary		Save the draft, creating a todo on first save
//	@Tags			draft
//	@Produce		json
//	@Success		200	{object}	models.Result
//	@Failure		422	{object}	models.Result
//	@Security		BearerAuth
//	@Router			/draft/save [post]
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.store.SaveDraft(r.Context()))
}

// NewDraft handles POST /api/draft/new.
//
//	@Summary		Save unsaved edits, then start an empty draft
//	@Tags			draft
//	@Produce		json
//	@Success		200	{object}	models.Result
//	@Failure		422	{object}	models.Result
//	@Security		BearerAuth
//	@Router			/draft/new [post]
func (h *Handler) NewDraft(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.store.CreateDraft(r.Context()))
}

// ResetDraft handles DELETE /api/draft.
//
//	@Summary		Discard the draft buffer
//	@Tags			draft
//	@Success		204
//	@Security		BearerAuth
//	@Router			/draft [delete]
func (h *Handler) ResetDraft(w http.ResponseWriter, _ *http.Request) {
	h.store.ResetDraft()
	w.WriteHeader(http.StatusNoContent)
}
