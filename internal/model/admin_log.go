package model

import "time"

type AdminAction string

const (
	ActionCreate AdminAction = "create"
	ActionUpdate AdminAction = "update"
	ActionDelete AdminAction = "delete"
)

// AdminLog is an append-only audit record written by every mutation
type AdminLog struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	Action      AdminAction `json:"action" bson:"action"`
	Collection  string      `json:"collection" bson:"collection"`
	DocumentID  string      `json:"documentId" bson:"documentId"`
	Before      interface{} `json:"before,omitempty" bson:"before,omitempty"`
	After       interface{} `json:"after,omitempty" bson:"after,omitempty"`
	Description string      `json:"description" bson:"description"`
	User        string      `json:"user" bson:"user"`
	Timestamp   time.Time   `json:"timestamp" bson:"timestamp"`
}

// LogFilter narrows the changelog viewer
type LogFilter struct {
	Collection string
	DocumentID string
	Limit      int64
}
