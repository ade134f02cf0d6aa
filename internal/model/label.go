package model

// Label is a named slot (one per wine) to be matched against a card
type Label struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	EventID   string `json:"eventId" bson:"eventId"`
	LabelID   string `json:"labelId" bson:"labelId"` // e.g., "ETQ-1"
	LabelName string `json:"labelName" bson:"labelName"`
	CardID    string `json:"cardId" bson:"cardId"`     // Empty until revealed
	CardName  string `json:"cardName" bson:"cardName"` // Empty until revealed
	Order     int    `json:"order" bson:"order"`       // 1-based, dense
}

// LabelDraft is a label in the working set before it is saved
type LabelDraft struct {
	LabelID   string `json:"labelId"`
	LabelName string `json:"labelName"`
}
