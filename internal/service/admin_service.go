package service

import (
	"context"
	"fmt"
	"log"

	"pinot/internal/cache"
	"pinot/internal/model"
	"pinot/internal/repository"
)

const adminListLimit = 200

// AdminService backs the admin panel: CRUD over stored documents and the
// changelog viewer
type AdminService struct {
	eventSvc      *EventService
	registry      *RegistryService
	eventRepo     repository.EventRepo
	participants  repository.ParticipantRepo
	labelRepo     repository.LabelRepo
	selectionRepo repository.SelectionRepo
	logRepo       repository.LogRepo
	eventCache    cache.EventCache
	editorCache   cache.EditorCache
	auditor       Auditor
	broadcaster   Broadcaster
}

// NewAdminService creates a new admin service
func NewAdminService(
	eventSvc *EventService,
	registry *RegistryService,
	eventRepo repository.EventRepo,
	participants repository.ParticipantRepo,
	labelRepo repository.LabelRepo,
	selectionRepo repository.SelectionRepo,
	logRepo repository.LogRepo,
	eventCache cache.EventCache,
	editorCache cache.EditorCache,
	auditor Auditor,
) *AdminService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &AdminService{
		eventSvc:      eventSvc,
		registry:      registry,
		eventRepo:     eventRepo,
		participants:  participants,
		labelRepo:     labelRepo,
		selectionRepo: selectionRepo,
		logRepo:       logRepo,
		eventCache:    eventCache,
		editorCache:   editorCache,
		auditor:       auditor,
		broadcaster:   nopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AdminService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// ListEvents returns the most recent events
func (s *AdminService) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.eventRepo.List(ctx, adminListLimit)
}

// GetEvent retrieves any event
func (s *AdminService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.eventSvc.Get(ctx, id)
}

// UpdateEvent edits an event regardless of owner
func (s *AdminService) UpdateEvent(ctx context.Context, id string, update model.EventUpdate) (*model.Event, error) {
	return s.eventSvc.Update(ctx, id, update)
}

// DeleteEvent removes an event and everything attached to it
func (s *AdminService) DeleteEvent(ctx context.Context, id string) error {
	event, err := s.eventSvc.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.selectionRepo.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete selections: %w", err)
	}
	if err := s.labelRepo.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete labels: %w", err)
	}
	if err := s.participants.DeleteByEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if event.Active {
		if err := s.eventCache.DeletePIN(ctx, event.PIN); err != nil {
			log.Printf("Failed to release PIN %s: %v", event.PIN, err)
		}
	}
	if err := s.editorCache.Delete(ctx, id); err != nil {
		log.Printf("Failed to drop editor session of event %s: %v", id, err)
	}
	s.broadcaster.DisconnectEvent(id)

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionDelete,
		Collection:  repository.CollectionEvents,
		DocumentID:  id,
		Before:      event,
		Description: fmt.Sprintf("event %q deleted with its participants, labels and selections", event.Name),
		User:        ActorFrom(ctx),
	})
	return nil
}

// ListParticipants returns an event's participants
func (s *AdminService) ListParticipants(ctx context.Context, eventID string) ([]*model.Participant, error) {
	return s.registry.ListParticipants(ctx, eventID)
}

// UpdateParticipant renames a participant
func (s *AdminService) UpdateParticipant(ctx context.Context, id, name string) (*model.Participant, error) {
	return s.registry.UpdateParticipant(ctx, id, name)
}

// DeleteParticipant removes a participant
func (s *AdminService) DeleteParticipant(ctx context.Context, id string) error {
	return s.registry.DeleteParticipant(ctx, id)
}

// ListLabels returns an event's labels
func (s *AdminService) ListLabels(ctx context.Context, eventID string) ([]*model.Label, error) {
	return s.registry.ListLabels(ctx, eventID)
}

// ListSelections returns every selection of an event
func (s *AdminService) ListSelections(ctx context.Context, eventID string) ([]*model.Selection, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	return s.selectionRepo.ListByEvent(ctx, eventID)
}

// DeleteSelection removes one participant's selection
func (s *AdminService) DeleteSelection(ctx context.Context, eventID, participantID string) error {
	selection, err := s.selectionRepo.Get(ctx, eventID, participantID)
	if err != nil {
		return fmt.Errorf("failed to get selection: %w", err)
	}
	if selection == nil {
		return ErrSelectionNotFound
	}
	if err := s.selectionRepo.Delete(ctx, selection.ID); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionDelete,
		Collection:  repository.CollectionSelections,
		DocumentID:  selection.ID,
		Before:      selection,
		Description: "selection deleted",
		User:        ActorFrom(ctx),
	})
	return nil
}

// ListLogs returns changelog entries, newest first
func (s *AdminService) ListLogs(ctx context.Context, filter model.LogFilter) ([]*model.AdminLog, error) {
	return s.logRepo.List(ctx, filter)
}
