package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"pinot/internal/model"
	"pinot/internal/service"
	"pinot/internal/transport/rest/middleware"
)

// EventHandler handles host event endpoints
type EventHandler struct {
	eventSvc    *service.EventService
	registry    *service.RegistryService
	resolverSvc *service.ResolverService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventSvc *service.EventService, registry *service.RegistryService, resolverSvc *service.ResolverService) *EventHandler {
	return &EventHandler{
		eventSvc:    eventSvc,
		registry:    registry,
		resolverSvc: resolverSvc,
	}
}

// CreateEventRequest is the request body for creating an event
type CreateEventRequest struct {
	Name string `json:"name"`
}

// Create handles POST /v1/events
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param body body CreateEventRequest true "Event"
// @Success 201 {object} model.Event
// @Security BearerAuth
// @Router /events [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.eventSvc.Create(r.Context(), hostID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// List handles GET /v1/events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventSvc.ListByHost(r.Context(), middleware.GetHostID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Get handles GET /v1/events/{eventId}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventSvc.Get(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Update handles PATCH /v1/events/{eventId}
// @Summary Rename an event or open/close it for joining
// @Tags events
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param body body model.EventUpdate true "Fields to change"
// @Success 200 {object} model.Event
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /events/{eventId} [patch]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	hostID := middleware.GetHostID(r.Context())

	var req model.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		event *model.Event
		err   error
	)
	if req.Name != nil {
		if event, err = h.eventSvc.Rename(r.Context(), eventID, hostID, *req.Name); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Active != nil {
		if event, err = h.eventSvc.SetActive(r.Context(), eventID, hostID, *req.Active); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if event == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Finalize handles POST /v1/events/{eventId}/finalize
// @Summary Resolve the event by plurality vote
// @Tags events
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} model.EventResults
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /events/{eventId}/finalize [post]
func (h *EventHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	results, err := h.resolverSvc.Finalize(r.Context(), mux.Vars(r)["eventId"], middleware.GetHostID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// Results handles GET /v1/events/{eventId}/results
func (h *EventHandler) Results(w http.ResponseWriter, r *http.Request) {
	results, err := h.resolverSvc.Results(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// ListLabels handles GET /v1/events/{eventId}/labels
func (h *EventHandler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.registry.ListLabels(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"labels": labels})
}

// Deck handles GET /v1/cards
func Deck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"cards": model.Deck})
}
