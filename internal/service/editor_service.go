package service

import (
	"context"
	"fmt"

	"pinot/internal/cache"
	"pinot/internal/editor"
	"pinot/internal/model"
	"pinot/internal/repository"
)

// EditorService drives the per-event editing session: the working label
// list and the card assignment, held in Redis until Save commits them.
type EditorService struct {
	eventRepo   repository.EventRepo
	labelRepo   repository.LabelRepo
	editorCache cache.EditorCache
	registry    *RegistryService
	auditor     Auditor
	broadcaster Broadcaster
}

// NewEditorService creates a new editor service
func NewEditorService(
	eventRepo repository.EventRepo,
	labelRepo repository.LabelRepo,
	editorCache cache.EditorCache,
	registry *RegistryService,
	auditor Auditor,
) *EditorService {
	if auditor == nil {
		auditor = nopAuditor{}
	}
	return &EditorService{
		eventRepo:   eventRepo,
		labelRepo:   labelRepo,
		editorCache: editorCache,
		registry:    registry,
		auditor:     auditor,
		broadcaster: nopBroadcaster{},
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *EditorService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Load returns the editing session, starting one from the saved labels and
// cards if none is open
func (s *EditorService) Load(ctx context.Context, eventID string) (*editor.State, error) {
	if eventID == "" {
		return nil, ErrNoEvent
	}
	state, err := s.editorCache.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load editor session: %w", err)
	}
	if state != nil {
		return state, nil
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return s.fromStore(ctx, event)
}

func (s *EditorService) fromStore(ctx context.Context, event *model.Event) (*editor.State, error) {
	labels, err := s.labelRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return editor.New(event.ID, labels, event.CardAssignments), nil
}

// Reset discards unsaved changes
func (s *EditorService) Reset(ctx context.Context, eventID string) (*editor.State, error) {
	if err := s.editorCache.Delete(ctx, eventID); err != nil {
		return nil, fmt.Errorf("failed to discard editor session: %w", err)
	}
	return s.Load(ctx, eventID)
}

// mutate applies fn to the session of an editable event and stores the result
func (s *EditorService) mutate(ctx context.Context, eventID string, fn func(*editor.State) error) (*editor.State, error) {
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
	if event.IsFinalized() {
		return nil, ErrEventFinalized
	}

	state, err := s.editorCache.Get(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load editor session: %w", err)
	}
	if state == nil {
		if state, err = s.fromStore(ctx, event); err != nil {
			return nil, err
		}
	}

	if err := fn(state); err != nil {
		return nil, err
	}
	if err := s.editorCache.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to store editor session: %w", err)
	}
	return state, nil
}

// AddLabel appends a label to the working set
func (s *EditorService) AddLabel(ctx context.Context, eventID, name string) (*editor.State, error) {
	return s.mutate(ctx, eventID, func(st *editor.State) error {
		_, err := st.AddLabel(name)
		return err
	})
}

// RenameLabel renames a label in the working set
func (s *EditorService) RenameLabel(ctx context.Context, eventID, labelID, name string) (*editor.State, error) {
	return s.mutate(ctx, eventID, func(st *editor.State) error {
		return st.RenameLabel(labelID, name)
	})
}

// RemoveLabel removes a label from the working set
func (s *EditorService) RemoveLabel(ctx context.Context, eventID, labelID string) (*editor.State, error) {
	return s.mutate(ctx, eventID, func(st *editor.State) error {
		return st.RemoveLabel(labelID)
	})
}

// AddCard assigns a deck card to the event
func (s *EditorService) AddCard(ctx context.Context, eventID, cardID string) (*editor.State, error) {
	return s.mutate(ctx, eventID, func(st *editor.State) error {
		_, err := st.AddCard(cardID)
		return err
	})
}

// SuggestCards fills the free card slots in deck order
func (s *EditorService) SuggestCards(ctx context.Context, eventID string) (*editor.State, error) {
	return s.mutate(ctx, eventID, func(st *editor.State) error {
		_, err := st.SuggestCards()
		return err
	})
}

// RemoveCard unassigns a card
func (s *EditorService) RemoveCard(ctx context.Context, eventID, cardID string) (*editor.State, error) {
	return s.mutate(ctx, eventID, func(st *editor.State) error {
		st.RemoveCard(cardID)
		return nil
	})
}

// Save commits the session: labels are replaced wholesale and the card list
// becomes the event's card assignment. The session is closed afterwards.
func (s *EditorService) Save(ctx context.Context, eventID string) ([]*model.Label, error) {
	state, err := s.mutate(ctx, eventID, func(*editor.State) error { return nil })
	if err != nil {
		return nil, err
	}

	labels, err := s.registry.SaveLabelConfiguration(ctx, eventID, state.Labels)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.UpdateCards(ctx, eventID, state.Cards); err != nil {
		return nil, fmt.Errorf("failed to save card assignment: %w", err)
	}

	s.auditor.Record(&model.AdminLog{
		Action:      model.ActionUpdate,
		Collection:  repository.CollectionEvents,
		DocumentID:  eventID,
		After:       state.Cards,
		Description: fmt.Sprintf("card assignment saved (%d cards)", len(state.Cards)),
		User:        ActorFrom(ctx),
	})

	if err := s.editorCache.Delete(ctx, eventID); err != nil {
		return nil, fmt.Errorf("failed to close editor session: %w", err)
	}

	s.broadcaster.BroadcastToAll(eventID, MsgLabelsSaved, map[string]interface{}{
		"labels": labels,
		"cards":  state.Cards,
	})
	return labels, nil
}

// Discard drops the session without saving
func (s *EditorService) Discard(ctx context.Context, eventID string) error {
	return s.editorCache.Delete(ctx, eventID)
}
