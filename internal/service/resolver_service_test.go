package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"pinot/internal/model"
)

type fakeArchiver struct {
	results []*model.EventResults
	err     error
}

func (a *fakeArchiver) Archive(_ context.Context, results *model.EventResults) error {
	a.results = append(a.results, results)
	return a.err
}

func TestFinalizePluralityExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec", "Syrah", "Merlot")
	cardA := event.CardAssignments[0].CardID
	cardB := event.CardAssignments[1].CardID
	cardC := event.CardAssignments[2].CardID

	names := []string{"Ana", "Bea", "Carla", "Dani"}
	choices := []map[string]string{
		{"ETQ-1": cardA},
		{"ETQ-1": cardA},
		{"ETQ-1": cardB},
		{"ETQ-2": cardC},
	}
	for i, name := range names {
		p, err := f.registry.AddParticipant(ctx, event.ID, name)
		if err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
		f.submit(t, event.ID, p.ID, choices[i])
	}

	archiver := &fakeArchiver{}
	f.resolver.SetArchiver(archiver)

	results, err := f.resolver.Finalize(ctx, event.ID, testHost)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	expected := map[string]string{"ETQ-1": cardA, "ETQ-2": cardC}
	if !reflect.DeepEqual(results.Solution, expected) {
		t.Errorf("Expected solution %v, got %v", expected, results.Solution)
	}
	if results.Selections != 4 {
		t.Errorf("Expected 4 selections counted, got %d", results.Selections)
	}
	if results.Labels[0].Votes[cardA] != 2 || results.Labels[0].Votes[cardB] != 1 {
		t.Errorf("Unexpected ETQ-1 votes: %v", results.Labels[0].Votes)
	}
	if results.Labels[2].CardID != "" {
		t.Errorf("Expected ETQ-3 without votes to stay unresolved, got %s", results.Labels[2].CardID)
	}

	stored, _ := f.events.Get(ctx, event.ID)
	if !stored.IsFinalized() || stored.Active || stored.FinalizedAt == nil {
		t.Errorf("Expected finalized, inactive event with timestamp, got %+v", stored)
	}
	if _, ok := f.store.PINs[event.PIN]; ok {
		t.Error("Expected PIN released from index")
	}

	labels, _ := f.registry.ListLabels(ctx, event.ID)
	if labels[0].CardID != cardA || labels[0].CardName == "" {
		t.Errorf("Expected ETQ-1 revealed as %s, got %q %q", cardA, labels[0].CardID, labels[0].CardName)
	}

	if len(archiver.results) != 1 {
		t.Errorf("Expected results archived once, got %d", len(archiver.results))
	}
	types := f.broadcaster.Types()
	if types[len(types)-1] != MsgEventFinalized {
		t.Errorf("Expected %s broadcast last, got %v", MsgEventFinalized, types)
	}
}

func TestFinalizeEmptySelections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec")

	results, err := f.resolver.Finalize(ctx, event.ID, testHost)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if len(results.Solution) != 0 {
		t.Errorf("Expected empty solution, got %v", results.Solution)
	}
	stored, _ := f.events.Get(ctx, event.ID)
	if !stored.IsFinalized() {
		t.Error("Expected event finalized with no selections")
	}
}

func TestFinalizeErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec")

	if _, err := f.resolver.Finalize(ctx, "", testHost); !errors.Is(err, ErrNoEvent) {
		t.Errorf("Expected ErrNoEvent, got %v", err)
	}
	if _, err := f.resolver.Finalize(ctx, "missing", testHost); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
	if _, err := f.resolver.Finalize(ctx, event.ID, "someone-else"); !errors.Is(err, ErrNotEventHost) {
		t.Errorf("Expected ErrNotEventHost, got %v", err)
	}
	if _, err := f.resolver.Finalize(ctx, event.ID, testHost); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if _, err := f.resolver.Finalize(ctx, event.ID, testHost); !errors.Is(err, ErrEventFinalized) {
		t.Errorf("Expected ErrEventFinalized on second run, got %v", err)
	}
}

func TestFinalizeArchiveFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	event := f.setupEvent(t, "Malbec")
	f.resolver.SetArchiver(&fakeArchiver{err: errors.New("bucket unavailable")})

	if _, err := f.resolver.Finalize(context.Background(), event.ID, testHost); err != nil {
		t.Errorf("Expected archive failure to be swallowed, got %v", err)
	}
}

func TestFinalizeReturnsSolutionWhenResultsFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec")
	card := event.CardAssignments[0].CardID
	p, _ := f.registry.AddParticipant(ctx, event.ID, "Ana")
	f.submit(t, event.ID, p.ID, map[string]string{"ETQ-1": card})

	f.store.FailListParticipants = true
	results, err := f.resolver.Finalize(ctx, event.ID, testHost)
	if err != nil {
		t.Fatalf("Expected finalize to succeed once committed, got %v", err)
	}
	if results.Solution["ETQ-1"] != card {
		t.Errorf("Expected ETQ-1 resolved to %s, got %v", card, results.Solution)
	}
	if results.Selections != 1 {
		t.Errorf("Expected 1 selection counted, got %d", results.Selections)
	}

	stored, _ := f.events.Get(ctx, event.ID)
	if !stored.IsFinalized() {
		t.Error("Expected event finalized")
	}
	if _, err := f.resolver.Finalize(ctx, event.ID, testHost); !errors.Is(err, ErrEventFinalized) {
		t.Errorf("Expected ErrEventFinalized on retry, got %v", err)
	}
}

func TestResultsSealedUntilFinalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.setupEvent(t, "Malbec", "Syrah")

	if _, err := f.resolver.Results(ctx, event.ID); !errors.Is(err, ErrEventNotFinalized) {
		t.Errorf("Expected ErrEventNotFinalized, got %v", err)
	}

	f.resolver.Finalize(ctx, event.ID, testHost)
	results, err := f.resolver.Results(ctx, event.ID)
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if len(results.Labels) != 2 {
		t.Errorf("Expected 2 labels, got %d", len(results.Labels))
	}
}

func TestScoreboard(t *testing.T) {
	participants := []*model.Participant{
		{ID: "p1", Name: "Carla"},
		{ID: "p2", Name: "Ana"},
		{ID: "p3", Name: "Bea"},
		{ID: "p4", Name: "Dani"},
	}
	selections := []*model.Selection{
		{ParticipantID: "p1", Selections: map[string]string{"ETQ-1": "oros-1", "ETQ-2": "oros-2"}},
		{ParticipantID: "p2", Selections: map[string]string{"ETQ-1": "oros-1"}},
		{ParticipantID: "p3", Selections: map[string]string{"ETQ-1": "oros-1", "ETQ-2": "copas-1"}},
	}
	solution := map[string]string{"ETQ-1": "oros-1", "ETQ-2": "oros-2"}

	board := scoreboard(participants, selections, solution)

	expected := []model.ScoreEntry{
		{ParticipantID: "p1", Name: "Carla", Matches: 2, Rank: 1},
		{ParticipantID: "p2", Name: "Ana", Matches: 1, Rank: 2},
		{ParticipantID: "p3", Name: "Bea", Matches: 1, Rank: 2},
		{ParticipantID: "p4", Name: "Dani", Matches: 0, Rank: 4},
	}
	if !reflect.DeepEqual(board, expected) {
		t.Errorf("Expected %+v, got %+v", expected, board)
	}
}
