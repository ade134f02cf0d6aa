package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pinot/internal/service"
)

// ParticipantHandler handles the host's participant registry endpoints
type ParticipantHandler struct {
	registry *service.RegistryService
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(registry *service.RegistryService) *ParticipantHandler {
	return &ParticipantHandler{registry: registry}
}

// ParticipantRequest is the request body for adding or renaming a participant
type ParticipantRequest struct {
	Name string `json:"name"`
}

// List handles GET /v1/events/{eventId}/participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	participants, err := h.registry.ListParticipants(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"participants": participants})
}

// Add handles POST /v1/events/{eventId}/participants
// @Summary Register a participant
// @Tags participants
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param body body ParticipantRequest true "Participant"
// @Success 201 {object} model.Participant
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /events/{eventId}/participants [post]
func (h *ParticipantHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.registry.AddParticipant(r.Context(), mux.Vars(r)["eventId"], req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

// Update handles PUT /v1/events/{eventId}/participants/{participantId}
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.inEvent(w, r, vars["eventId"], vars["participantId"]) {
		return
	}

	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.registry.UpdateParticipant(r.Context(), vars["participantId"], req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /v1/events/{eventId}/participants/{participantId}
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.inEvent(w, r, vars["eventId"], vars["participantId"]) {
		return
	}

	if err := h.registry.DeleteParticipant(r.Context(), vars["participantId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// inEvent rejects participant ids that belong to another event
func (h *ParticipantHandler) inEvent(w http.ResponseWriter, r *http.Request, eventID, participantID string) bool {
	if _, err := h.registry.GetEventParticipant(r.Context(), eventID, participantID); err != nil {
		writeServiceError(w, err)
		return false
	}
	return true
}
