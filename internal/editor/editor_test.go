package editor

import (
	"errors"
	"testing"

	"pinot/internal/model"
)

func stateWithLabels(t *testing.T, names ...string) *State {
	t.Helper()
	s := New("evt-1", nil, nil)
	for _, n := range names {
		if _, err := s.AddLabel(n); err != nil {
			t.Fatalf("AddLabel(%q) failed: %v", n, err)
		}
	}
	return s
}

func TestAddLabel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr error
		expectKey string
	}{
		{"first label", "Malbec", nil, "ETQ-1"},
		{"empty name", "", ErrEmptyName, ""},
		{"whitespace only", "   ", ErrEmptyName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("evt-1", nil, nil)
			draft, err := s.AddLabel(tt.input)
			if !errors.Is(err, tt.expectErr) {
				t.Fatalf("Expected error %v, got %v", tt.expectErr, err)
			}
			if tt.expectErr != nil {
				if len(s.Labels) != 0 {
					t.Errorf("Expected registry unchanged, got %d labels", len(s.Labels))
				}
				return
			}
			if draft.LabelID != tt.expectKey {
				t.Errorf("Expected key %s, got %s", tt.expectKey, draft.LabelID)
			}
		})
	}
}

func TestRemoveLabelKeepsKeysDense(t *testing.T) {
	s := stateWithLabels(t, "A", "B", "C")

	if err := s.RemoveLabel("ETQ-2"); err != nil {
		t.Fatalf("RemoveLabel failed: %v", err)
	}
	if len(s.Labels) != 2 {
		t.Fatalf("Expected 2 labels, got %d", len(s.Labels))
	}
	if s.Labels[0].LabelID != "ETQ-1" || s.Labels[1].LabelID != "ETQ-2" {
		t.Errorf("Expected dense keys, got %s, %s", s.Labels[0].LabelID, s.Labels[1].LabelID)
	}
	if s.Labels[1].LabelName != "C" {
		t.Errorf("Expected C to move up, got %s", s.Labels[1].LabelName)
	}

	draft, _ := s.AddLabel("D")
	if draft.LabelID != "ETQ-3" {
		t.Errorf("Expected next key ETQ-3, got %s", draft.LabelID)
	}

	if err := s.RemoveLabel("ETQ-9"); !errors.Is(err, ErrLabelNotFound) {
		t.Errorf("Expected ErrLabelNotFound, got %v", err)
	}
}

func TestRemoveLabelTrimsCards(t *testing.T) {
	s := stateWithLabels(t, "A", "B")
	s.SuggestCards()

	s.RemoveLabel("ETQ-1")

	if len(s.Cards) != 1 {
		t.Fatalf("Expected cards trimmed to 1, got %d", len(s.Cards))
	}
	if s.Cards[0].CardID != model.Deck[0].ID {
		t.Errorf("Expected first card kept, got %s", s.Cards[0].CardID)
	}
}

func TestRenameLabel(t *testing.T) {
	s := stateWithLabels(t, "A")

	if err := s.RenameLabel("ETQ-1", "  Syrah "); err != nil {
		t.Fatalf("RenameLabel failed: %v", err)
	}
	if s.Labels[0].LabelName != "Syrah" {
		t.Errorf("Expected Syrah, got %q", s.Labels[0].LabelName)
	}
	if err := s.RenameLabel("ETQ-1", ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("Expected ErrEmptyName, got %v", err)
	}
}

func TestAddCard(t *testing.T) {
	t.Run("no labels", func(t *testing.T) {
		s := New("evt-1", nil, nil)
		if _, err := s.AddCard("oros-1"); !errors.Is(err, ErrNoLabels) {
			t.Errorf("Expected ErrNoLabels, got %v", err)
		}
	})

	t.Run("capacity equals label count", func(t *testing.T) {
		s := stateWithLabels(t, "A", "B")
		if _, err := s.AddCard("oros-1"); err != nil {
			t.Fatalf("AddCard failed: %v", err)
		}
		if _, err := s.AddCard("copas-3"); err != nil {
			t.Fatalf("AddCard failed: %v", err)
		}
		if _, err := s.AddCard("bastos-12"); !errors.Is(err, ErrCapacity) {
			t.Errorf("Expected ErrCapacity, got %v", err)
		}
	})

	t.Run("duplicate card", func(t *testing.T) {
		s := stateWithLabels(t, "A", "B")
		s.AddCard("oros-1")
		if _, err := s.AddCard("oros-1"); !errors.Is(err, ErrDuplicateCard) {
			t.Errorf("Expected ErrDuplicateCard, got %v", err)
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		s := stateWithLabels(t, "A")
		if _, err := s.AddCard("joker"); !errors.Is(err, ErrUnknownCard) {
			t.Errorf("Expected ErrUnknownCard, got %v", err)
		}
	})

	t.Run("name from deck", func(t *testing.T) {
		s := stateWithLabels(t, "A")
		a, err := s.AddCard("espadas-1")
		if err != nil {
			t.Fatalf("AddCard failed: %v", err)
		}
		if a.CardName != "As de Espadas" {
			t.Errorf("Expected As de Espadas, got %s", a.CardName)
		}
	})
}

func TestSuggestCards(t *testing.T) {
	s := stateWithLabels(t, "A", "B", "C", "D")
	s.AddCard(model.Deck[1].ID)

	added, err := s.SuggestCards()
	if err != nil {
		t.Fatalf("SuggestCards failed: %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("Expected 3 suggested cards, got %d", len(added))
	}

	expected := []string{model.Deck[1].ID, model.Deck[0].ID, model.Deck[2].ID, model.Deck[3].ID}
	for i, c := range s.Cards {
		if c.CardID != expected[i] {
			t.Errorf("Card %d: expected %s, got %s", i, expected[i], c.CardID)
		}
	}

	seen := map[string]bool{}
	for _, c := range s.Cards {
		if seen[c.CardID] {
			t.Errorf("Card %s assigned twice", c.CardID)
		}
		seen[c.CardID] = true
	}

	again, _ := s.SuggestCards()
	if len(again) != 0 {
		t.Errorf("Expected nothing to suggest at capacity, got %d", len(again))
	}
}

func TestSuggestCardsBoundedByDeck(t *testing.T) {
	s := New("evt-1", nil, nil)
	for i := 0; i < len(model.Deck)+5; i++ {
		s.AddLabel("L")
	}

	added, _ := s.SuggestCards()
	if len(added) != len(model.Deck) {
		t.Errorf("Expected %d cards, got %d", len(model.Deck), len(added))
	}
}

func TestRemoveCard(t *testing.T) {
	s := stateWithLabels(t, "A", "B")
	s.SuggestCards()

	s.RemoveCard(model.Deck[0].ID)
	s.RemoveCard("not-assigned")

	if len(s.Cards) != 1 || s.Cards[0].CardID != model.Deck[1].ID {
		t.Errorf("Unexpected cards after removal: %+v", s.Cards)
	}
}

func TestNewRenumbersPersistedLabels(t *testing.T) {
	labels := []*model.Label{
		{LabelID: "ETQ-1", LabelName: "A", Order: 1},
		{LabelID: "ETQ-4", LabelName: "B", Order: 2},
	}
	s := New("evt-1", labels, []model.CardAssignment{{CardID: "oros-1", CardName: "As de Oros"}})

	if s.Labels[1].LabelID != "ETQ-2" {
		t.Errorf("Expected ETQ-2, got %s", s.Labels[1].LabelID)
	}
	if len(s.Cards) != 1 {
		t.Errorf("Expected 1 card, got %d", len(s.Cards))
	}
}
