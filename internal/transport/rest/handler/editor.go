package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pinot/internal/editor"
	"pinot/internal/service"
)

// EditorHandler exposes the event editing session
type EditorHandler struct {
	editorSvc *service.EditorService
}

// NewEditorHandler creates a new editor handler
func NewEditorHandler(editorSvc *service.EditorService) *EditorHandler {
	return &EditorHandler{editorSvc: editorSvc}
}

// LabelRequest is the request body for adding or renaming a label
type LabelRequest struct {
	Name string `json:"name"`
}

// CardRequest is the request body for assigning a card
type CardRequest struct {
	CardID string `json:"cardId"`
}

func (h *EditorHandler) respond(w http.ResponseWriter, state *editor.State, err error) {
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Get handles GET /v1/events/{eventId}/editor
func (h *EditorHandler) Get(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorSvc.Load(r.Context(), mux.Vars(r)["eventId"])
	h.respond(w, state, err)
}

// Reset handles DELETE /v1/events/{eventId}/editor
func (h *EditorHandler) Reset(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorSvc.Reset(r.Context(), mux.Vars(r)["eventId"])
	h.respond(w, state, err)
}

// AddLabel handles POST /v1/events/{eventId}/editor/labels
func (h *EditorHandler) AddLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.editorSvc.AddLabel(r.Context(), mux.Vars(r)["eventId"], req.Name)
	h.respond(w, state, err)
}

// RenameLabel handles PUT /v1/events/{eventId}/editor/labels/{labelId}
func (h *EditorHandler) RenameLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	state, err := h.editorSvc.RenameLabel(r.Context(), vars["eventId"], vars["labelId"], req.Name)
	h.respond(w, state, err)
}

// RemoveLabel handles DELETE /v1/events/{eventId}/editor/labels/{labelId}
func (h *EditorHandler) RemoveLabel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.editorSvc.RemoveLabel(r.Context(), vars["eventId"], vars["labelId"])
	h.respond(w, state, err)
}

// AddCard handles POST /v1/events/{eventId}/editor/cards
func (h *EditorHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := h.editorSvc.AddCard(r.Context(), mux.Vars(r)["eventId"], req.CardID)
	h.respond(w, state, err)
}

// SuggestCards handles POST /v1/events/{eventId}/editor/cards/suggest
func (h *EditorHandler) SuggestCards(w http.ResponseWriter, r *http.Request) {
	state, err := h.editorSvc.SuggestCards(r.Context(), mux.Vars(r)["eventId"])
	h.respond(w, state, err)
}

// RemoveCard handles DELETE /v1/events/{eventId}/editor/cards/{cardId}
func (h *EditorHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	state, err := h.editorSvc.RemoveCard(r.Context(), vars["eventId"], vars["cardId"])
	h.respond(w, state, err)
}

// Save handles POST /v1/events/{eventId}/editor/save
// @Summary Save labels (replace-all) and the card assignment
// @Tags editor
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /events/{eventId}/editor/save [post]
func (h *EditorHandler) Save(w http.ResponseWriter, r *http.Request) {
	labels, err := h.editorSvc.Save(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"labels": labels})
}
