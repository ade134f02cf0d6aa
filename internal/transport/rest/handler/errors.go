package handler

import (
	"errors"
	"log"
	"net/http"

	"pinot/internal/editor"
	"pinot/internal/service"
)

var statusByError = []struct {
	err    error
	status int
}{
	// validation
	{service.ErrNoEvent, http.StatusBadRequest},
	{service.ErrEmptyName, http.StatusBadRequest},
	{service.ErrUnknownLabel, http.StatusBadRequest},
	{service.ErrCardNotInGame, http.StatusBadRequest},
	{service.ErrInvalidEmail, http.StatusBadRequest},
	{service.ErrWeakPassword, http.StatusBadRequest},
	{editor.ErrEmptyName, http.StatusBadRequest},
	{editor.ErrUnknownCard, http.StatusBadRequest},
	{editor.ErrNoLabels, http.StatusBadRequest},

	// not found
	{service.ErrEventNotFound, http.StatusNotFound},
	{service.ErrParticipantNotFound, http.StatusNotFound},
	{service.ErrSelectionNotFound, http.StatusNotFound},
	{editor.ErrLabelNotFound, http.StatusNotFound},

	// auth
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrNotEventHost, http.StatusForbidden},
	{service.ErrEventNotFinalized, http.StatusForbidden},
	{service.ErrAdminDisabled, http.StatusServiceUnavailable},

	// conflict
	{service.ErrDuplicateName, http.StatusConflict},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrEventFinalized, http.StatusConflict},
	{service.ErrEventClosed, http.StatusConflict},
	{service.ErrLabelsLocked, http.StatusConflict},
	{editor.ErrCapacity, http.StatusConflict},
	{editor.ErrDuplicateCard, http.StatusConflict},
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	for _, e := range statusByError {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	writeError(w, status, err.Error())
}
