package model

import "time"

type EventState string

const (
	EventActive    EventState = "active"
	EventFinalized EventState = "finalized"
)

// CardAssignment is a deck card chosen for an event
type CardAssignment struct {
	CardID   string `json:"cardId" bson:"cardId"`
	CardName string `json:"cardName" bson:"cardName"`
}

// Event is one hosted tasting session
type Event struct {
	ID              string            `json:"id" bson:"_id,omitempty"`
	Name            string            `json:"name" bson:"name"`
	Slug            string            `json:"slug" bson:"slug"`
	PIN             string            `json:"pin" bson:"pin"`
	HostID          string            `json:"hostId" bson:"hostId"`
	Active          bool              `json:"active" bson:"active"`
	State           EventState        `json:"state" bson:"state"`
	CardAssignments []CardAssignment  `json:"cardAssignments" bson:"cardAssignments"`
	Solution        map[string]string `json:"solution,omitempty" bson:"solution,omitempty"` // labelId -> cardId
	CreatedAt       time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt" bson:"updatedAt"`
	FinalizedAt     *time.Time        `json:"finalizedAt,omitempty" bson:"finalizedAt,omitempty"`
}

// IsFinalized reports whether the resolver has already run
func (e *Event) IsFinalized() bool {
	return e.State == EventFinalized
}

// HasCard reports whether cardID is in the event's assignment list
func (e *Event) HasCard(cardID string) bool {
	for _, c := range e.CardAssignments {
		if c.CardID == cardID {
			return true
		}
	}
	return false
}

// EventUpdate carries admin edits; nil fields are left untouched
type EventUpdate struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}
