package service

import "pinot/internal/model"

// Live update message types
const (
	MsgParticipantJoined  = "participant_joined"
	MsgParticipantLeft    = "participant_left"
	MsgLabelsSaved        = "labels_saved"
	MsgSelectionSubmitted = "selection_submitted"
	MsgEventFinalized     = "event_finalized"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToHost(eventID string, msgType string, payload interface{})
	BroadcastToParticipant(eventID, participantID string, msgType string, payload interface{})
	BroadcastToAll(eventID string, msgType string, payload interface{})
	DisconnectEvent(eventID string)
}

// Auditor receives changelog entries; implementations must not block
type Auditor interface {
	Record(entry *model.AdminLog)
}

type nopBroadcaster struct{}

func (nopBroadcaster) BroadcastToHost(string, string, interface{})                {}
func (nopBroadcaster) BroadcastToParticipant(string, string, string, interface{}) {}
func (nopBroadcaster) BroadcastToAll(string, string, interface{})                 {}
func (nopBroadcaster) DisconnectEvent(string)                                     {}

type nopAuditor struct{}

func (nopAuditor) Record(*model.AdminLog) {}
