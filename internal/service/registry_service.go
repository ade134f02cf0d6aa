package service

import (
	"context"
	"fmt"
	"strings"

	"pinot/internal/model"
	"pinot/internal/repository"
)

// RegistryService manages the participants and labels attached to an event
type RegistryService struct {
	eventRepo       repository.EventRepo
	participantRepo repository.ParticipantRepo
	labelRepo       repository.LabelRepo
	selectionRepo   repository.SelectionRepo
	auditor         Auditor
	broadcaster     Broadcaster
}

// NewRegistryService creates a new registry service
func NewRegistryService(
	eventRepo repository.EventRepo,
	participantRepo repository.ParticipantRepo,
	labelRepo repository.LabelRepo,
	selectionRepo repository.SelectionRepo,
	auditor Auditor,
) *RegistryService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &RegistryService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		labelRepo:       labelRepo,
		selectionRepo:   selectionRepo,
		auditor:         auditor,
		broadcaster:     nopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *RegistryService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// editableEvent loads an event that still accepts changes
func (s *RegistryService) editableEvent(ctx context.Context, eventID string) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.IsFinalized() {
		return nil, ErrEventFinalized
	}
	return event, nil
}

// AddParticipant registers an ephemeral participant in an event
func (s *RegistryService) AddParticipant(ctx context.Context, eventID, name string) (*model.Participant, error) {
	return s.RegisterParticipant(ctx, &model.Participant{
		EventID: eventID,
		Name:    name,
		Type:    model.ParticipantEphemeral,
	})
}

// RegisterParticipant validates and stores a participant of any type.
// Names are unique per event (exact, case-sensitive match).
func (s *RegistryService) RegisterParticipant(ctx context.Context, p *model.Participant) (*model.Participant, error) {
	if p.EventID == "" {
		return nil, ErrNoEvent
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, ErrEmptyName
	}
	if p.Type == "" {
		p.Type = model.ParticipantEphemeral
	}

	if _, err := s.editableEvent(ctx, p.EventID); err != nil {
		return nil, err
	}

	existing, err := s.participantRepo.FindByName(ctx, p.EventID, p.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check participant name: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateName
	}

	if err := s.participantRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionCreate,
		Collection:  repository.CollectionParticipants,
		DocumentID:  p.ID,
		After:       p,
		Description: fmt.Sprintf("participant %q added", p.Name),
		User:        ActorFrom(ctx),
	})
	s.broadcaster.BroadcastToHost(p.EventID, MsgParticipantJoined, p)
	return p, nil
}

// UpdateParticipant renames a participant
func (s *RegistryService) UpdateParticipant(ctx context.Context, id, name string) (*model.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	if _, err := s.editableEvent(ctx, p.EventID); err != nil {
		return nil, err
	}

	existing, err := s.participantRepo.FindByName(ctx, p.EventID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check participant name: %w", err)
	}
	if existing != nil && existing.ID != p.ID {
		return nil, ErrDuplicateName
	}

	before := *p
	p.Name = name
	if err := s.participantRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update participant: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionUpdate,
		Collection:  repository.CollectionParticipants,
		DocumentID:  p.ID,
		Before:      &before,
		After:       p,
		Description: fmt.Sprintf("participant %q renamed to %q", before.Name, p.Name),
		User:        ActorFrom(ctx),
	})
	return p, nil
}

// DeleteParticipant removes a participant and their selection
func (s *RegistryService) DeleteParticipant(ctx context.Context, id string) error {
	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get participant: %w", err)
	}
	if p == nil {
		return ErrParticipantNotFound
	}
	if _, err := s.editableEvent(ctx, p.EventID); err != nil {
		return err
	}

	if err := s.participantRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	if err := s.selectionRepo.DeleteByParticipant(ctx, id); err != nil {
		return fmt.Errorf("failed to delete participant selections: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionDelete,
		Collection:  repository.CollectionParticipants,
		DocumentID:  p.ID,
		Before:      p,
		Description: fmt.Sprintf("participant %q deleted", p.Name),
		User:        ActorFrom(ctx),
	})
	s.broadcaster.BroadcastToHost(p.EventID, MsgParticipantLeft, map[string]string{"participantId": p.ID})
	return nil
}

// GetEventParticipant retrieves a participant that belongs to eventID
func (s *RegistryService) GetEventParticipant(ctx context.Context, eventID, participantID string) (*model.Participant, error) {
	p, err := s.GetParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.EventID != eventID {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

// GetParticipant retrieves a participant by id
func (s *RegistryService) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	p, err := s.participantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if p == nil {
		return nil, ErrParticipantNotFound
	}
	return p, nil
}

// ListParticipants returns an event's participants in join order
func (s *RegistryService) ListParticipants(ctx context.Context, eventID string) ([]*model.Participant, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	return s.participantRepo.ListByEvent(ctx, eventID)
}

// SaveLabelConfiguration replaces every label of the event with the given
// list. Order is the 1-based position and card fields stay blank until the
// event is finalized. Callers must pass the complete desired set.
func (s *RegistryService) SaveLabelConfiguration(ctx context.Context, eventID string, drafts []model.LabelDraft) ([]*model.Label, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	labels := make([]*model.Label, 0, len(drafts))
	for i, d := range drafts {
		name := strings.TrimSpace(d.LabelName)
		if name == "" {
			return nil, ErrEmptyName
		}
		labels = append(labels, &model.Label{
			EventID:   eventID,
			LabelID:   fmt.Sprintf("ETQ-%d", i+1),
			LabelName: name,
			Order:     i + 1,
		})
	}

	if _, err := s.editableEvent(ctx, eventID); err != nil {
		return nil, err
	}

	previous, err := s.labelRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	if labelsChanged(previous, labels) {
		selections, err := s.selectionRepo.ListByEvent(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to list selections: %w", err)
		}
		// Selections are keyed by label id, renumbering would move votes
		if len(selections) > 0 {
			return nil, ErrLabelsLocked
		}
	}
	if err := s.labelRepo.ReplaceAll(ctx, eventID, labels); err != nil {
		return nil, fmt.Errorf("failed to save labels: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionUpdate,
		Collection:  repository.CollectionLabels,
		DocumentID:  eventID,
		Before:      previous,
		After:       labels,
		Description: fmt.Sprintf("label configuration replaced (%d labels)", len(labels)),
		User:        ActorFrom(ctx),
	})
	return labels, nil
}

func labelsChanged(previous, next []*model.Label) bool {
	if len(previous) != len(next) {
		return true
	}
	for i := range previous {
		if previous[i].LabelID != next[i].LabelID || previous[i].LabelName != next[i].LabelName {
			return true
		}
	}
	return false
}

// ListLabels returns an event's labels by order
func (s *RegistryService) ListLabels(ctx context.Context, eventID string) ([]*model.Label, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	return s.labelRepo.ListByEvent(ctx, eventID)
}
