package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pinot/internal/model"
	"pinot/internal/service"
	"pinot/internal/transport/rest/middleware"
)

// SelectionHandler handles participant endpoints
type SelectionHandler struct {
	selectionSvc *service.SelectionService
	resolverSvc  *service.ResolverService
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(selectionSvc *service.SelectionService, resolverSvc *service.ResolverService) *SelectionHandler {
	return &SelectionHandler{
		selectionSvc: selectionSvc,
		resolverSvc:  resolverSvc,
	}
}

// JoinRequest is the request body for joining an event
type JoinRequest struct {
	PIN  string `json:"pin"`
	Name string `json:"name"`
}

// Join handles POST /v1/join
// @Summary Join an event by PIN
// @Tags participants
// @Accept json
// @Produce json
// @Param body body JoinRequest true "PIN and display name"
// @Success 200 {object} model.ParticipantJoinResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /join [post]
func (h *SelectionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.PIN == "" {
		writeError(w, http.StatusBadRequest, "pin is required")
		return
	}

	resp, err := h.selectionSvc.Join(r.Context(), req.PIN, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// View handles GET /v1/events/{eventId}/me
func (h *SelectionHandler) View(w http.ResponseWriter, r *http.Request) {
	view, err := h.selectionSvc.View(r.Context(), mux.Vars(r)["eventId"], middleware.GetParticipantID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Submit handles PUT /v1/events/{eventId}/me/selection
// @Summary Submit label to card choices
// @Tags participants
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param body body model.SelectionRequest true "Choices by label id"
// @Success 200 {object} model.Selection
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /events/{eventId}/me/selection [put]
func (h *SelectionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel, err := h.selectionSvc.Submit(r.Context(), mux.Vars(r)["eventId"], middleware.GetParticipantID(r.Context()), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sel)
}

// Get handles GET /v1/events/{eventId}/me/selection
func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selectionSvc.Get(r.Context(), mux.Vars(r)["eventId"], middleware.GetParticipantID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sel)
}

// Results handles GET /v1/events/{eventId}/me/results
func (h *SelectionHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.resolverSvc.Results(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}
