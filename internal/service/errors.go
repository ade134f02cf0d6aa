package service

import "errors"

// Validation errors are returned before any I/O happens.
var (
	ErrNoEvent       = errors.New("no event selected")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrUnknownLabel  = errors.New("unknown label")
	ErrCardNotInGame = errors.New("card not assigned to this event")
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSelectionNotFound   = errors.New("selection not found")
	ErrNotEventHost        = errors.New("unauthorized: not event host")
	ErrDuplicateName       = errors.New("name already registered in this event")
	ErrEventFinalized      = errors.New("event already finalized")
	ErrEventNotFinalized   = errors.New("results are hidden until the event is finalized")
	ErrEventClosed         = errors.New("event is not accepting participants")
	ErrLabelsLocked        = errors.New("labels cannot change once selections exist")
)
