package service

import (
	"context"
	"testing"
	"time"

	"pinot/internal/config"
	"pinot/internal/model"
	"pinot/internal/testutil"
)

const testHost = "host_0001"

type fixture struct {
	store       *testutil.Store
	auditor     *testutil.Auditor
	broadcaster *testutil.Broadcaster

	auth      *AuthService
	events    *EventService
	registry  *RegistryService
	editor    *EditorService
	resolver  *ResolverService
	selection *SelectionService
	admin     *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := testutil.NewStore()
	auditor := &testutil.Auditor{}
	broadcaster := &testutil.Broadcaster{}

	cfg := &config.Config{
		JWTSecret:       "test-secret",
		AdminUser:       "admin",
		AdminSessionTTL: time.Hour,
	}

	f := &fixture{store: store, auditor: auditor, broadcaster: broadcaster}
	f.auth = NewAuthService(store.HostRepo(), store.SessionCache(), cfg)
	f.events = NewEventService(store.EventRepo(), store.EventCache(), auditor)
	f.registry = NewRegistryService(store.EventRepo(), store.ParticipantRepo(), store.LabelRepo(), store.SelectionRepo(), auditor)
	f.editor = NewEditorService(store.EventRepo(), store.LabelRepo(), store.EditorCache(), f.registry, auditor)
	f.resolver = NewResolverService(store.EventRepo(), store.ParticipantRepo(), store.LabelRepo(), store.SelectionRepo(),
		store.EventCache(), store.EditorCache(), auditor)
	f.selection = NewSelectionService(f.events, f.registry, f.auth, store.LabelRepo(), store.SelectionRepo())
	f.admin = NewAdminService(f.events, f.registry, store.EventRepo(), store.ParticipantRepo(), store.LabelRepo(),
		store.SelectionRepo(), store.LogRepo(), store.EventCache(), store.EditorCache(), auditor)

	f.registry.SetBroadcaster(broadcaster)
	f.editor.SetBroadcaster(broadcaster)
	f.resolver.SetBroadcaster(broadcaster)
	f.selection.SetBroadcaster(broadcaster)
	f.admin.SetBroadcaster(broadcaster)
	return f
}

func (f *fixture) createEvent(t *testing.T, name string) *model.Event {
	t.Helper()
	event, err := f.events.Create(context.Background(), testHost, name)
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	return event
}

// setupEvent creates an event with saved labels and cards
func (f *fixture) setupEvent(t *testing.T, labels ...string) *model.Event {
	t.Helper()
	ctx := context.Background()
	event := f.createEvent(t, "Cata de Tintos")
	for _, l := range labels {
		if _, err := f.editor.AddLabel(ctx, event.ID, l); err != nil {
			t.Fatalf("AddLabel failed: %v", err)
		}
	}
	if _, err := f.editor.SuggestCards(ctx, event.ID); err != nil {
		t.Fatalf("SuggestCards failed: %v", err)
	}
	if _, err := f.editor.Save(ctx, event.ID); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	saved, err := f.events.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	return saved
}

func (f *fixture) submit(t *testing.T, eventID, participantID string, choices map[string]string) {
	t.Helper()
	_, err := f.selection.Submit(context.Background(), eventID, participantID, &model.SelectionRequest{Selections: choices})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
}
