package model

import "time"

// LabelResult is one revealed label with its vote breakdown
type LabelResult struct {
	LabelID   string         `json:"labelId"`
	LabelName string         `json:"labelName"`
	Order     int            `json:"order"`
	CardID    string         `json:"cardId"`
	CardName  string         `json:"cardName"`
	Votes     map[string]int `json:"votes"` // cardId -> count
}

// ScoreEntry ranks a participant by matches against the solution
type ScoreEntry struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Matches       int    `json:"matches"`
	Rank          int    `json:"rank"`
}

// EventResults is the revealed outcome of a finalized event
type EventResults struct {
	EventID     string            `json:"eventId"`
	EventName   string            `json:"eventName"`
	FinalizedAt *time.Time        `json:"finalizedAt,omitempty"`
	Solution    map[string]string `json:"solution"`
	Labels      []LabelResult     `json:"labels"`
	Scoreboard  []ScoreEntry      `json:"scoreboard"`
	Selections  int               `json:"selections"`
}
