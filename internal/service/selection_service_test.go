package service

import (
	"context"
	"errors"
	"testing"

	"pinot/internal/model"
)

func TestJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec")

	resp, err := f.selection.Join(ctx, event.PIN, "Ana")
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if resp.EventID != event.ID || resp.Token == "" {
		t.Errorf("Unexpected join response: %+v", resp)
	}

	claims, err := f.auth.ValidateParticipantToken(resp.Token)
	if err != nil {
		t.Fatalf("Expected a valid participant token, got %v", err)
	}
	if claims.ParticipantID != resp.ParticipantID || claims.EventID != event.ID {
		t.Errorf("Token claims do not match: %+v", claims)
	}

	tests := []struct {
		name      string
		pin       string
		input     string
		expectErr error
	}{
		{"duplicate name", event.PIN, "Ana", ErrDuplicateName},
		{"empty name", event.PIN, " ", ErrEmptyName},
		{"unknown pin", "99999x", "Bea", ErrEventNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.selection.Join(ctx, tt.pin, tt.input); !errors.Is(err, tt.expectErr) {
				t.Errorf("Expected %v, got %v", tt.expectErr, err)
			}
		})
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec", "Syrah")
	p, _ := f.registry.AddParticipant(ctx, event.ID, "Ana")
	inGame := event.CardAssignments[0].CardID

	tests := []struct {
		name      string
		choices   map[string]string
		expectErr error
	}{
		{"valid", map[string]string{"ETQ-1": inGame}, nil},
		{"unknown label", map[string]string{"ETQ-9": inGame}, ErrUnknownLabel},
		{"card not in game", map[string]string{"ETQ-1": "bastos-12"}, ErrCardNotInGame},
		{"blank choice dropped", map[string]string{"ETQ-1": inGame, "ETQ-2": ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := f.selection.Submit(ctx, event.ID, p.ID, &model.SelectionRequest{Selections: tt.choices})
			if !errors.Is(err, tt.expectErr) {
				t.Fatalf("Expected %v, got %v", tt.expectErr, err)
			}
			if err != nil {
				return
			}
			if _, ok := sel.Selections["ETQ-2"]; ok {
				t.Error("Expected blank choice dropped")
			}
		})
	}

	sel, err := f.selection.Get(ctx, event.ID, p.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sel.Selections["ETQ-1"] != inGame {
		t.Errorf("Expected last valid submission stored, got %v", sel.Selections)
	}
	if len(f.store.Selections) != 1 {
		t.Errorf("Expected one selection document per participant, got %d", len(f.store.Selections))
	}
}

func TestSubmitRequiresRegisteredParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec")
	other := f.setupEvent(t, "Syrah")
	card := event.CardAssignments[0].CardID
	p, _ := f.registry.AddParticipant(ctx, event.ID, "Ana")
	stranger, _ := f.registry.AddParticipant(ctx, other.ID, "Bea")

	if err := f.registry.DeleteParticipant(ctx, p.ID); err != nil {
		t.Fatalf("DeleteParticipant failed: %v", err)
	}

	tests := []struct {
		name          string
		participantID string
	}{
		{"deleted participant", p.ID},
		{"participant of another event", stranger.ID},
		{"unknown participant", "ghost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.selection.Submit(ctx, event.ID, tt.participantID, &model.SelectionRequest{
				Selections: map[string]string{"ETQ-1": card},
			})
			if !errors.Is(err, ErrParticipantNotFound) {
				t.Errorf("Expected ErrParticipantNotFound, got %v", err)
			}
			if _, err := f.selection.View(ctx, event.ID, tt.participantID); !errors.Is(err, ErrParticipantNotFound) {
				t.Errorf("Expected ErrParticipantNotFound from View, got %v", err)
			}
		})
	}

	if len(f.store.Selections) != 0 {
		t.Errorf("Expected no selections stored, got %d", len(f.store.Selections))
	}
	results, err := f.resolver.Finalize(ctx, event.ID, testHost)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if len(results.Solution) != 0 {
		t.Errorf("Expected empty solution, got %v", results.Solution)
	}
}

func TestSubmitAfterFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec")
	p, _ := f.registry.AddParticipant(ctx, event.ID, "Ana")
	f.resolver.Finalize(ctx, event.ID, testHost)

	_, err := f.selection.Submit(ctx, event.ID, p.ID, &model.SelectionRequest{
		Selections: map[string]string{"ETQ-1": event.CardAssignments[0].CardID},
	})
	if !errors.Is(err, ErrEventFinalized) {
		t.Errorf("Expected ErrEventFinalized, got %v", err)
	}
}

func TestView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec", "Syrah")
	p, _ := f.registry.AddParticipant(ctx, event.ID, "Ana")

	view, err := f.selection.View(ctx, event.ID, p.ID)
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if len(view.Labels) != 2 || len(view.Cards) != 2 {
		t.Errorf("Expected 2 labels and 2 cards, got %d and %d", len(view.Labels), len(view.Cards))
	}
	if view.Selection != nil {
		t.Error("Expected no selection before submitting")
	}
}

func TestGetSelectionNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.selection.Get(context.Background(), "evt", "p"); !errors.Is(err, ErrSelectionNotFound) {
		t.Errorf("Expected ErrSelectionNotFound, got %v", err)
	}
}
