package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pinot/internal/model"
	"pinot/internal/repository"
)

// SelectionService handles participants joining events and submitting guesses
type SelectionService struct {
	eventSvc      *EventService
	registry      *RegistryService
	authSvc       *AuthService
	labelRepo     repository.LabelRepo
	selectionRepo repository.SelectionRepo
	broadcaster   Broadcaster
}

// NewSelectionService creates a new selection service
func NewSelectionService(
	eventSvc *EventService,
	registry *RegistryService,
	authSvc *AuthService,
	labelRepo repository.LabelRepo,
	selectionRepo repository.SelectionRepo,
) *SelectionService {
	return &SelectionService{
		eventSvc:      eventSvc,
		registry:      registry,
		authSvc:       authSvc,
		labelRepo:     labelRepo,
		selectionRepo: selectionRepo,
		broadcaster:   nopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *SelectionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Join registers a participant in the active event behind pin
func (s *SelectionService) Join(ctx context.Context, pin, name string) (*model.ParticipantJoinResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	event, err := s.eventSvc.GetByPIN(ctx, pin)
	if err != nil {
		return nil, err
	}
	if !event.Active {
		return nil, ErrEventClosed
	}

	p, err := s.registry.AddParticipant(ctx, event.ID, name)
	if err != nil {
		return nil, err
	}

	token, err := s.authSvc.GenerateParticipantToken(event.ID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.ParticipantJoinResponse{
		ParticipantID: p.ID,
		EventID:       event.ID,
		EventName:     event.Name,
		Token:         token,
	}, nil
}

// View returns the labels and cards a participant chooses from
func (s *SelectionService) View(ctx context.Context, eventID, participantID string) (*model.EventView, error) {
	event, err := s.eventSvc.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.registry.GetEventParticipant(ctx, eventID, participantID); err != nil {
		return nil, err
	}
	labels, err := s.labelRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	selection, err := s.selectionRepo.Get(ctx, eventID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}

	view := &model.EventView{
		EventID:   event.ID,
		EventName: event.Name,
		State:     event.State,
		Labels:    make([]model.LabelDraft, 0, len(labels)),
		Cards:     event.CardAssignments,
		Selection: selection,
	}
	for _, l := range labels {
		view.Labels = append(view.Labels, model.LabelDraft{LabelID: l.LabelID, LabelName: l.LabelName})
	}
	return view, nil
}

// Submit stores a participant's label -> card choices. Label ids must belong
// to the event and cards must be among its assigned cards; blank choices
// are dropped.
func (s *SelectionService) Submit(ctx context.Context, eventID, participantID string, req *model.SelectionRequest) (*model.Selection, error) {
	event, err := s.eventSvc.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.IsFinalized() {
		return nil, ErrEventFinalized
	}
	if _, err := s.registry.GetEventParticipant(ctx, eventID, participantID); err != nil {
		return nil, err
	}

	labels, err := s.labelRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l.LabelID] = true
	}

	choices := make(map[string]string, len(req.Selections))
	for labelID, cardID := range req.Selections {
		if !known[labelID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownLabel, labelID)
		}
		if cardID == "" {
			continue
		}
		if !event.HasCard(cardID) {
			return nil, fmt.Errorf("%w: %s", ErrCardNotInGame, cardID)
		}
		choices[labelID] = cardID
	}

	selection := &model.Selection{
		EventID:       eventID,
		ParticipantID: participantID,
		Selections:    choices,
		Finalized:     req.Finalized,
		UpdatedAt:     time.Now(),
	}
	if err := s.selectionRepo.Upsert(ctx, selection); err != nil {
		return nil, fmt.Errorf("failed to save selection: %w", err)
	}

	s.broadcaster.BroadcastToHost(eventID, MsgSelectionSubmitted, map[string]interface{}{
		"participantId": participantID,
		"count":         len(choices),
		"finalized":     selection.Finalized,
	})
	return selection, nil
}

// Get returns a participant's selection
func (s *SelectionService) Get(ctx context.Context, eventID, participantID string) (*model.Selection, error) {
	selection, err := s.selectionRepo.Get(ctx, eventID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get selection: %w", err)
	}
	if selection == nil {
		return nil, ErrSelectionNotFound
	}
	return selection, nil
}
