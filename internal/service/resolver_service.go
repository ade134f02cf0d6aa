package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"pinot/internal/cache"
	"pinot/internal/model"
	"pinot/internal/repository"
	"pinot/internal/tally"
)

// Archiver stores the results of a finalized event
type Archiver interface {
	Archive(ctx context.Context, results *model.EventResults) error
}

// ResolverService finalizes events by plurality vote and reveals results
type ResolverService struct {
	eventRepo       repository.EventRepo
	participantRepo repository.ParticipantRepo
	labelRepo       repository.LabelRepo
	selectionRepo   repository.SelectionRepo
	eventCache      cache.EventCache
	editorCache     cache.EditorCache
	auditor         Auditor
	archiver        Archiver
	broadcaster     Broadcaster
	now             func() time.Time
}

// NewResolverService creates a new resolver service
func NewResolverService(
	eventRepo repository.EventRepo,
	participantRepo repository.ParticipantRepo,
	labelRepo repository.LabelRepo,
	selectionRepo repository.SelectionRepo,
	eventCache cache.EventCache,
	editorCache cache.EditorCache,
	auditor Auditor,
) *ResolverService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &ResolverService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		labelRepo:       labelRepo,
		selectionRepo:   selectionRepo,
		eventCache:      eventCache,
		editorCache:     editorCache,
		auditor:         auditor,
		broadcaster:     nopBroadcaster{},
		now:             time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ResolverService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetArchiver enables uploading results after finalization
func (s *ResolverService) SetArchiver(a Archiver) {
	s.archiver = a
}

// Finalize tallies every selection of the event, stores the winning card of
// each label as the solution and moves the event to the finalized state.
// Only the owning host may finalize, and only once.
func (s *ResolverService) Finalize(ctx context.Context, eventID, hostID string) (*model.EventResults, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.HostID != hostID {
		return nil, ErrNotEventHost
	}
	if event.IsFinalized() {
		return nil, ErrEventFinalized
	}

	selections, err := s.selectionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	solution := tally.Resolve(tally.Count(selections))

	at := s.now()
	if err := s.eventRepo.Finalize(ctx, eventID, solution, at); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, ErrEventFinalized
		}
		return nil, fmt.Errorf("failed to finalize event: %w", err)
	}
	before := *event
	event.Solution = solution
	event.State = model.EventFinalized
	event.Active = false
	event.FinalizedAt = &at

	// The event is finalized from here on; remaining steps are best-effort
	reveal := make(map[string]model.CardAssignment, len(solution))
	for labelID, cardID := range solution {
		reveal[labelID] = model.CardAssignment{CardID: cardID, CardName: cardName(event, cardID)}
	}
	if err := s.labelRepo.RevealCards(ctx, eventID, reveal); err != nil {
		log.Printf("Failed to reveal cards for event %s: %v", eventID, err)
	}
	if err := s.eventCache.DeletePIN(ctx, event.PIN); err != nil {
		log.Printf("Failed to release PIN %s: %v", event.PIN, err)
	}
	if err := s.editorCache.Delete(ctx, eventID); err != nil {
		log.Printf("Failed to drop editor session of event %s: %v", eventID, err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionUpdate,
		Collection:  repository.CollectionEvents,
		DocumentID:  eventID,
		Before:      &before,
		After:       event,
		Description: fmt.Sprintf("event %q finalized (%d selections, %d labels resolved)", event.Name, len(selections), len(solution)),
		User:        ActorFrom(ctx),
	})

	results, err := s.buildResults(ctx, event, selections)
	if err != nil {
		log.Printf("Failed to build results of event %s: %v", eventID, err)
		results = &model.EventResults{
			EventID:     event.ID,
			EventName:   event.Name,
			FinalizedAt: event.FinalizedAt,
			Solution:    solution,
			Labels:      []model.LabelResult{},
			Scoreboard:  []model.ScoreEntry{},
			Selections:  len(selections),
		}
	}

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, results); err != nil {
			log.Printf("Failed to archive results of event %s: %v", eventID, err)
		}
	}

	s.broadcaster.BroadcastToAll(eventID, MsgEventFinalized, results)
	log.Printf("Event %s finalized: %d selections, %d labels resolved", eventID, len(selections), len(solution))
	return results, nil
}

// Results returns the revealed outcome of a finalized event
func (s *ResolverService) Results(ctx context.Context, eventID string) (*model.EventResults, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !event.IsFinalized() {
		return nil, ErrEventNotFinalized
	}

	selections, err := s.selectionRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	return s.buildResults(ctx, event, selections)
}

func (s *ResolverService) buildResults(ctx context.Context, event *model.Event, selections []*model.Selection) (*model.EventResults, error) {
	labels, err := s.labelRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	participants, err := s.participantRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	solution := event.Solution
	if solution == nil {
		solution = map[string]string{}
	}
	votes := tally.Count(selections)

	results := &model.EventResults{
		EventID:     event.ID,
		EventName:   event.Name,
		FinalizedAt: event.FinalizedAt,
		Solution:    solution,
		Labels:      make([]model.LabelResult, 0, len(labels)),
		Scoreboard:  scoreboard(participants, selections, solution),
		Selections:  len(selections),
	}
	for _, l := range labels {
		lr := model.LabelResult{
			LabelID:   l.LabelID,
			LabelName: l.LabelName,
			Order:     l.Order,
			Votes:     votes[l.LabelID],
		}
		if lr.Votes == nil {
			lr.Votes = map[string]int{}
		}
		if cardID, ok := solution[l.LabelID]; ok {
			lr.CardID = cardID
			lr.CardName = cardName(event, cardID)
		}
		results.Labels = append(results.Labels, lr)
	}
	return results, nil
}

// scoreboard ranks participants by matches, descending. Equal scores share
// a rank and are listed by name.
func scoreboard(participants []*model.Participant, selections []*model.Selection, solution map[string]string) []model.ScoreEntry {
	byParticipant := make(map[string]*model.Selection, len(selections))
	for _, sel := range selections {
		byParticipant[sel.ParticipantID] = sel
	}

	entries := make([]model.ScoreEntry, 0, len(participants))
	for _, p := range participants {
		entry := model.ScoreEntry{ParticipantID: p.ID, Name: p.Name}
		if sel := byParticipant[p.ID]; sel != nil {
			entry.Matches = tally.Matches(sel, solution)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Matches != entries[j].Matches {
			return entries[i].Matches > entries[j].Matches
		}
		return entries[i].Name < entries[j].Name
	})
	for i := range entries {
		if i > 0 && entries[i].Matches == entries[i-1].Matches {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

// cardName prefers the name stored with the event's assignment, then the deck
func cardName(event *model.Event, cardID string) string {
	for _, c := range event.CardAssignments {
		if c.CardID == cardID {
			return c.CardName
		}
	}
	if card, ok := model.CardByID(cardID); ok {
		return card.Name
	}
	return cardID
}
