package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"github.com/gosimple/slug"

	"pinot/internal/cache"
	"pinot/internal/model"
	"pinot/internal/repository"
)

const (
	pinDigits   = 5
	pinAttempts = 10
)

// EventService handles event lifecycle operations
type EventService struct {
	eventRepo  repository.EventRepo
	eventCache cache.EventCache
	auditor    Auditor
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepo, eventCache cache.EventCache, auditor Auditor) *EventService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &EventService{
		eventRepo:  eventRepo,
		eventCache: eventCache,
		auditor:    auditor,
	}
}

// Create creates a new active event with a fresh PIN
func (s *EventService) Create(ctx context.Context, hostID, name string) (*model.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	pin, err := s.generatePIN(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate event PIN: %w", err)
	}

	event := &model.Event{
		Name:            name,
		Slug:            slug.MakeLang(name, "es"),
		PIN:             pin,
		HostID:          hostID,
		Active:          true,
		State:           model.EventActive,
		CardAssignments: []model.CardAssignment{},
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	if err := s.eventCache.SetPIN(ctx, pin, event.ID); err != nil {
		return nil, fmt.Errorf("failed to index event PIN: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionCreate,
		Collection:  repository.CollectionEvents,
		DocumentID:  event.ID,
		After:       event,
		Description: fmt.Sprintf("event %q created with PIN %s", event.Name, event.PIN),
		User:        ActorFrom(ctx),
	})
	return event, nil
}

// Get retrieves an event by id
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, ErrNoEvent
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// GetOwned retrieves an event and checks that hostID owns it
func (s *EventService) GetOwned(ctx context.Context, id, hostID string) (*model.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.HostID != hostID {
		return nil, ErrNotEventHost
	}
	return event, nil
}

// GetByPIN resolves an active event from its PIN, through the Redis index
func (s *EventService) GetByPIN(ctx context.Context, pin string) (*model.Event, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return nil, ErrNoEvent
	}

	eventID, err := s.eventCache.GetEventID(ctx, pin)
	if err != nil {
		log.Printf("PIN index lookup failed for %s: %v", pin, err)
	}
	if eventID != "" {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get event: %w", err)
		}
		if event != nil && event.Active && event.PIN == pin {
			return event, nil
		}
	}

	// Index miss or stale entry
	event, err := s.eventRepo.GetActiveByPIN(ctx, pin)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if err := s.eventCache.SetPIN(ctx, pin, event.ID); err != nil {
		log.Printf("Failed to re-index PIN %s: %v", pin, err)
	}
	return event, nil
}

// ListByHost returns a host's events, newest first
func (s *EventService) ListByHost(ctx context.Context, hostID string) ([]*model.Event, error) {
	return s.eventRepo.ListByHost(ctx, hostID)
}

// Rename changes the display name of a host's event
func (s *EventService) Rename(ctx context.Context, id, hostID, name string) (*model.Event, error) {
	if _, err := s.GetOwned(ctx, id, hostID); err != nil {
		return nil, err
	}
	return s.Update(ctx, id, model.EventUpdate{Name: &name})
}

// SetActive opens or closes a host's event for joining
func (s *EventService) SetActive(ctx context.Context, id, hostID string, active bool) (*model.Event, error) {
	if _, err := s.GetOwned(ctx, id, hostID); err != nil {
		return nil, err
	}
	return s.Update(ctx, id, model.EventUpdate{Active: &active})
}

// Update applies an edit without ownership checks (admin panel)
func (s *EventService) Update(ctx context.Context, id string, update model.EventUpdate) (*model.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *event

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrEmptyName
		}
		event.Name = name
		event.Slug = slug.MakeLang(name, "es")
	}
	if update.Active != nil && *update.Active != event.Active {
		if *update.Active && event.IsFinalized() {
			return nil, ErrEventFinalized
		}
		if *update.Active {
			other, err := s.eventRepo.GetActiveByPIN(ctx, event.PIN)
			if err != nil {
				return nil, fmt.Errorf("failed to check PIN: %w", err)
			}
			if other != nil && other.ID != event.ID {
				// PIN was reused while the event was closed
				pin, err := s.generatePIN(ctx)
				if err != nil {
					return nil, fmt.Errorf("failed to generate event PIN: %w", err)
				}
				event.PIN = pin
			}
		}
		event.Active = *update.Active
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, ErrEventFinalized
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	if event.Active {
		err = s.eventCache.SetPIN(ctx, event.PIN, event.ID)
	} else {
		err = s.eventCache.DeletePIN(ctx, before.PIN)
	}
	if err != nil {
		log.Printf("Failed to update PIN index for event %s: %v", event.ID, err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionUpdate,
		Collection:  repository.CollectionEvents,
		DocumentID:  event.ID,
		Before:      &before,
		After:       event,
		Description: fmt.Sprintf("event %q updated", event.Name),
		User:        ActorFrom(ctx),
	})
	return event, nil
}

// ReindexPINs writes the PIN of every active event into the index
func (s *EventService) ReindexPINs(ctx context.Context) (int, error) {
	events, err := s.eventRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active events: %w", err)
	}
	n := 0
	for _, e := range events {
		if err := s.eventCache.SetPIN(ctx, e.PIN, e.ID); err != nil {
			return n, fmt.Errorf("failed to index PIN %s: %w", e.PIN, err)
		}
		n++
	}
	return n, nil
}

// generatePIN creates a 5-digit numeric PIN not used by an active event
func (s *EventService) generatePIN(ctx context.Context) (string, error) {
	limit := big.NewInt(100000)

	for attempts := 0; attempts < pinAttempts; attempts++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		pin := fmt.Sprintf("%0*d", pinDigits, n.Int64())

		// Check uniqueness
		exists, err := s.eventCache.PINExists(ctx, pin)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}
		other, err := s.eventRepo.GetActiveByPIN(ctx, pin)
		if err != nil {
			return "", err
		}
		if other == nil {
			return pin, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique event PIN")
}
