// Package editor holds the working state of one event-editing session:
// the label list before it is saved and the cards chosen for the event.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"pinot/internal/model"
)

var (
	ErrEmptyName     = errors.New("label name must not be empty")
	ErrLabelNotFound = errors.New("label not found")
	ErrNoLabels      = errors.New("load labels before assigning cards")
	ErrCapacity      = errors.New("every label already has a card assigned")
	ErrDuplicateCard = errors.New("card already assigned")
	ErrUnknownCard   = errors.New("card not in deck")
)

// State is the editable label and card set of an event. It is owned by a
// single editing session and never shared between events.
type State struct {
	EventID string                 `json:"eventId"`
	Labels  []model.LabelDraft     `json:"labels"`
	Cards   []model.CardAssignment `json:"cards"`
}

// New builds a session from the persisted labels (in order) and card assignments
func New(eventID string, labels []*model.Label, cards []model.CardAssignment) *State {
	s := &State{
		EventID: eventID,
		Labels:  make([]model.LabelDraft, 0, len(labels)),
		Cards:   append([]model.CardAssignment{}, cards...),
	}
	for _, l := range labels {
		s.Labels = append(s.Labels, model.LabelDraft{LabelName: l.LabelName})
	}
	s.renumber()
	return s
}

func labelKey(n int) string {
	return fmt.Sprintf("ETQ-%d", n)
}

// renumber keeps keys dense: ETQ-1..ETQ-n in list order
func (s *State) renumber() {
	for i := range s.Labels {
		s.Labels[i].LabelID = labelKey(i + 1)
	}
}

// Capacity is the maximum number of assignable cards
func (s *State) Capacity() int {
	return len(s.Labels)
}

// AddLabel appends a label with the next sequential key
func (s *State) AddLabel(name string) (model.LabelDraft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.LabelDraft{}, ErrEmptyName
	}
	draft := model.LabelDraft{
		LabelID:   labelKey(len(s.Labels) + 1),
		LabelName: name,
	}
	s.Labels = append(s.Labels, draft)
	return draft, nil
}

// RenameLabel changes the display name of a label
func (s *State) RenameLabel(labelID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	i := s.labelIndex(labelID)
	if i < 0 {
		return ErrLabelNotFound
	}
	s.Labels[i].LabelName = name
	return nil
}

// RemoveLabel deletes a label and renumbers the rest. If the lower capacity
// no longer fits the assigned cards, the last assigned cards are dropped.
func (s *State) RemoveLabel(labelID string) error {
	i := s.labelIndex(labelID)
	if i < 0 {
		return ErrLabelNotFound
	}
	s.Labels = append(s.Labels[:i], s.Labels[i+1:]...)
	s.renumber()
	if len(s.Cards) > s.Capacity() {
		s.Cards = s.Cards[:s.Capacity()]
	}
	return nil
}

func (s *State) labelIndex(labelID string) int {
	for i, l := range s.Labels {
		if l.LabelID == labelID {
			return i
		}
	}
	return -1
}

func (s *State) hasCard(cardID string) bool {
	for _, c := range s.Cards {
		if c.CardID == cardID {
			return true
		}
	}
	return false
}

// AddCard assigns one deck card to the event
func (s *State) AddCard(cardID string) (model.CardAssignment, error) {
	if len(s.Labels) == 0 {
		return model.CardAssignment{}, ErrNoLabels
	}
	if len(s.Cards) >= s.Capacity() {
		return model.CardAssignment{}, ErrCapacity
	}
	if s.hasCard(cardID) {
		return model.CardAssignment{}, ErrDuplicateCard
	}
	card, ok := model.CardByID(cardID)
	if !ok {
		return model.CardAssignment{}, ErrUnknownCard
	}
	a := model.CardAssignment{CardID: card.ID, CardName: card.Name}
	s.Cards = append(s.Cards, a)
	return a, nil
}

// SuggestCards fills the free slots with the next unassigned cards in deck
// order and returns the ones it added.
func (s *State) SuggestCards() ([]model.CardAssignment, error) {
	if len(s.Labels) == 0 {
		return nil, ErrNoLabels
	}
	remaining := s.Capacity() - len(s.Cards)
	added := []model.CardAssignment{}
	for _, card := range model.Deck {
		if remaining <= 0 {
			break
		}
		if s.hasCard(card.ID) {
			continue
		}
		a := model.CardAssignment{CardID: card.ID, CardName: card.Name}
		s.Cards = append(s.Cards, a)
		added = append(added, a)
		remaining--
	}
	return added, nil
}

// RemoveCard unassigns a card; unknown ids are ignored
func (s *State) RemoveCard(cardID string) {
	kept := s.Cards[:0]
	for _, c := range s.Cards {
		if c.CardID != cardID {
			kept = append(kept, c)
		}
	}
	s.Cards = kept
}
