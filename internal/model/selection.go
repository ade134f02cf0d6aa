package model

import "time"

// Selection holds one participant's per-label card choices
type Selection struct {
	ID            string            `json:"id" bson:"_id,omitempty"`
	EventID       string            `json:"eventId" bson:"eventId"`
	ParticipantID string            `json:"participantId" bson:"participantId"`
	Selections    map[string]string `json:"selections" bson:"selections"` // labelId -> cardId
	Finalized     bool              `json:"finalized" bson:"finalized"`
	UpdatedAt     time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// SelectionRequest is the body of a participant's submission
type SelectionRequest struct {
	Selections map[string]string `json:"selections"`
	Finalized  bool              `json:"finalized"`
}

// EventView is what a participant sees while the event is running:
// the labels to match and the cards in play, without the solution
type EventView struct {
	EventID   string           `json:"eventId"`
	EventName string           `json:"eventName"`
	State     EventState       `json:"state"`
	Labels    []LabelDraft     `json:"labels"`
	Cards     []CardAssignment `json:"cards"`
	Selection *Selection       `json:"selection,omitempty"`
}
