package model

import "time"

type ParticipantType string

const (
	ParticipantEphemeral ParticipantType = "ephemeral"
	ParticipantPermanent ParticipantType = "permanent"
	ParticipantMember    ParticipantType = "member"
)

// Participant is a taster registered in an event
type Participant struct {
	ID       string          `json:"id" bson:"_id,omitempty"`
	EventID  string          `json:"eventId" bson:"eventId"`
	Name     string          `json:"name" bson:"name"`
	Type     ParticipantType `json:"type" bson:"type"`
	UserID   string          `json:"userId,omitempty" bson:"userId,omitempty"`
	Alias    string          `json:"alias,omitempty" bson:"alias,omitempty"`
	FullName string          `json:"fullName,omitempty" bson:"fullName,omitempty"`
	Email    string          `json:"email,omitempty" bson:"email,omitempty"`
	Phone    string          `json:"phone,omitempty" bson:"phone,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// ParticipantJoinResponse is returned when a participant joins by PIN
type ParticipantJoinResponse struct {
	ParticipantID string `json:"participantId"`
	EventID       string `json:"eventId"`
	EventName     string `json:"eventName"`
	Token         string `json:"token"`
}
