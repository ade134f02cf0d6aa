package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"pinot/internal/model"
	"pinot/internal/service"
)

// AdminHandler handles the admin panel endpoints
type AdminHandler struct {
	adminSvc *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminSvc *service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ListEvents handles GET /v1/admin/events
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.adminSvc.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// GetEvent handles GET /v1/admin/events/{eventId}
func (h *AdminHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.adminSvc.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PATCH /v1/admin/events/{eventId}
func (h *AdminHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.adminSvc.UpdateEvent(r.Context(), mux.Vars(r)["eventId"], req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /v1/admin/events/{eventId}
// @Summary Delete an event with its participants, labels and selections
// @Tags admin
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security AdminSession
// @Router /admin/events/{eventId} [delete]
func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.adminSvc.DeleteEvent(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListParticipants handles GET /v1/admin/events/{eventId}/participants
func (h *AdminHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.adminSvc.ListParticipants(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"participants": participants})
}

// UpdateParticipant handles PUT /v1/admin/participants/{participantId}
func (h *AdminHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req ParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.adminSvc.UpdateParticipant(r.Context(), mux.Vars(r)["participantId"], req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// DeleteParticipant handles DELETE /v1/admin/participants/{participantId}
func (h *AdminHandler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	if err := h.adminSvc.DeleteParticipant(r.Context(), mux.Vars(r)["participantId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLabels handles GET /v1/admin/events/{eventId}/labels
func (h *AdminHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.adminSvc.ListLabels(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"labels": labels})
}

// ListSelections handles GET /v1/admin/events/{eventId}/selections
func (h *AdminHandler) ListSelections(w http.ResponseWriter, r *http.Request) {
	selections, err := h.adminSvc.ListSelections(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"selections": selections})
}

// DeleteSelection handles DELETE /v1/admin/events/{eventId}/selections/{participantId}
func (h *AdminHandler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.adminSvc.DeleteSelection(r.Context(), vars["eventId"], vars["participantId"]); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListLogs handles GET /v1/admin/logs?collection=&documentId=&limit=
// @Summary Changelog viewer
// @Tags admin
// @Produce json
// @Param collection query string false "Collection name"
// @Param documentId query string false "Document ID"
// @Param limit query int false "Max entries (default 100)"
// @Success 200 {object} map[string]interface{}
// @Security AdminSession
// @Router /admin/logs [get]
func (h *AdminHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.LogFilter{
		Collection: q.Get("collection"),
		DocumentID: q.Get("documentId"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if n, err := strconv.ParseInt(limitStr, 10, 64); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	logs, err := h.adminSvc.ListLogs(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}
