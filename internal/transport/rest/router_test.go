package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pinot/internal/config"
	"pinot/internal/model"
	"pinot/internal/service"
	"pinot/internal/testutil"
	"pinot/internal/transport/rest/middleware"
	"pinot/internal/transport/ws"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	store   *testutil.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	hash, err := service.HashPassword("admin-pass")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	cfg := &config.Config{
		JWTSecret:         "test-secret",
		AdminUser:         "admin",
		AdminPasswordHash: hash,
		AdminSessionTTL:   time.Hour,
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization, X-Admin-Session",
		},
	}

	store := testutil.NewStore()
	auditor := &testutil.Auditor{}

	authSvc := service.NewAuthService(store.HostRepo(), store.SessionCache(), cfg)
	eventSvc := service.NewEventService(store.EventRepo(), store.EventCache(), auditor)
	registrySvc := service.NewRegistryService(store.EventRepo(), store.ParticipantRepo(), store.LabelRepo(), store.SelectionRepo(), auditor)
	editorSvc := service.NewEditorService(store.EventRepo(), store.LabelRepo(), store.EditorCache(), registrySvc, auditor)
	resolverSvc := service.NewResolverService(store.EventRepo(), store.ParticipantRepo(), store.LabelRepo(), store.SelectionRepo(),
		store.EventCache(), store.EditorCache(), auditor)
	selectionSvc := service.NewSelectionService(eventSvc, registrySvc, authSvc, store.LabelRepo(), store.SelectionRepo())
	adminSvc := service.NewAdminService(eventSvc, registrySvc, store.EventRepo(), store.ParticipantRepo(), store.LabelRepo(),
		store.SelectionRepo(), store.LogRepo(), store.EventCache(), store.EditorCache(), auditor)

	hub := ws.NewHub()
	t.Cleanup(hub.Stop)

	h := NewRouter(&Container{
		AuthService:      authSvc,
		EventService:     eventSvc,
		RegistryService:  registrySvc,
		EditorService:    editorSvc,
		ResolverService:  resolverSvc,
		SelectionService: selectionSvc,
		AdminService:     adminSvc,
		WSHub:            hub,
		CORS:             cfg.CORS,
	})
	return &testServer{t: t, handler: h, store: store}
}

// do sends a request; auth is a bearer token, or an admin session when
// prefixed with "admin:"
func (s *testServer) do(method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if len(auth) > 6 && auth[:6] == "admin:" {
		req.Header.Set(middleware.AdminSessionHeader, auth[6:])
	} else if auth != "" {
		req.Header.Set("Authorization", "Bearer "+auth)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) expect(rec *httptest.ResponseRecorder, status int, out interface{}) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("Expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if out != nil {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			s.t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	var resp model.LoginResponse
	s.expect(s.do("POST", "/v1/auth/register", "", model.RegisterRequest{
		Email:    email,
		Name:     "Host",
		Password: "password123",
	}), http.StatusCreated, &resp)
	return resp.Token
}

func (s *testServer) createEvent(token, name string) *model.Event {
	s.t.Helper()
	var event model.Event
	s.expect(s.do("POST", "/v1/events", token, map[string]string{"name": name}), http.StatusCreated, &event)
	return &event
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)
	s.expect(s.do("GET", "/health", "", nil), http.StatusOK, nil)
	s.expect(s.do("GET", "/v1/docs/doc.json", "", nil), http.StatusOK, nil)
}

func TestRouter_Preflight(t *testing.T) {
	s := newTestServer(t)
	rec := s.do("OPTIONS", "/v1/events", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected *, got %q", got)
	}
}

func TestRouter_EventOwnership(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner@example.com")
	other := s.register("other@example.com")
	event := s.createEvent(owner, "Cata de Blancos")

	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"owner", owner, "/v1/events/" + event.ID, http.StatusOK},
		{"other host", other, "/v1/events/" + event.ID, http.StatusForbidden},
		{"unknown event", owner, "/v1/events/evt_missing", http.StatusNotFound},
		{"no token", "", "/v1/events/" + event.ID, http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", "/v1/events", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do("GET", tt.path, tt.token, nil)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestRouter_TastingFlow(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com")
	event := s.createEvent(host, "Cata de Tintos")
	base := "/v1/events/" + event.ID

	// Configure two labels and let the editor pick cards
	for _, name := range []string{"Rioja", "Ribera"} {
		s.expect(s.do("POST", base+"/editor/labels", host, map[string]string{"name": name}), http.StatusOK, nil)
	}
	s.expect(s.do("POST", base+"/editor/cards/suggest", host, nil), http.StatusOK, nil)
	s.expect(s.do("POST", base+"/editor/save", host, nil), http.StatusOK, nil)

	var saved model.Event
	s.expect(s.do("GET", base, host, nil), http.StatusOK, &saved)
	if len(saved.CardAssignments) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(saved.CardAssignments))
	}

	// Participant joins by PIN
	var joined model.ParticipantJoinResponse
	s.expect(s.do("POST", "/v1/join", "", map[string]string{"pin": event.PIN, "name": "Lucía"}), http.StatusOK, &joined)
	if joined.EventID != event.ID {
		t.Errorf("Expected event %s, got %s", event.ID, joined.EventID)
	}

	// Same name again is rejected
	s.expect(s.do("POST", "/v1/join", "", map[string]string{"pin": event.PIN, "name": "Lucía"}), http.StatusConflict, nil)

	// Host tokens are not participant tokens
	s.expect(s.do("GET", base+"/me", host, nil), http.StatusUnauthorized, nil)

	var view model.EventView
	s.expect(s.do("GET", base+"/me", joined.Token, nil), http.StatusOK, &view)
	if len(view.Labels) != 2 {
		t.Errorf("Expected 2 labels, got %d", len(view.Labels))
	}

	choices := map[string]string{
		"ETQ-1": saved.CardAssignments[0].CardID,
		"ETQ-2": saved.CardAssignments[1].CardID,
	}
	s.expect(s.do("PUT", base+"/me/selection", joined.Token, model.SelectionRequest{Selections: choices}), http.StatusOK, nil)
	s.expect(s.do("PUT", base+"/me/selection", joined.Token,
		model.SelectionRequest{Selections: map[string]string{"ETQ-7": saved.CardAssignments[0].CardID}}), http.StatusBadRequest, nil)

	// Results stay sealed until the host finalizes
	s.expect(s.do("GET", base+"/me/results", joined.Token, nil), http.StatusForbidden, nil)

	var results model.EventResults
	s.expect(s.do("POST", base+"/finalize", host, nil), http.StatusOK, &results)
	if len(results.Scoreboard) != 1 || results.Scoreboard[0].Matches != 2 {
		t.Errorf("Expected one participant with 2 matches, got %+v", results.Scoreboard)
	}
	if results.Solution["ETQ-1"] != choices["ETQ-1"] {
		t.Errorf("Expected ETQ-1 -> %s, got %s", choices["ETQ-1"], results.Solution["ETQ-1"])
	}

	s.expect(s.do("GET", base+"/me/results", joined.Token, nil), http.StatusOK, nil)
	s.expect(s.do("POST", base+"/finalize", host, nil), http.StatusConflict, nil)
	s.expect(s.do("PUT", base+"/me/selection", joined.Token, model.SelectionRequest{Selections: choices}), http.StatusConflict, nil)
	s.expect(s.do("POST", base+"/participants", host, map[string]string{"name": "Tarde"}), http.StatusConflict, nil)
}

func TestRouter_ParticipantTokenScopedToEvent(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com")
	first := s.createEvent(host, "Primera")
	second := s.createEvent(host, "Segunda")

	var joined model.ParticipantJoinResponse
	s.expect(s.do("POST", "/v1/join", "", map[string]string{"pin": first.PIN, "name": "Irene"}), http.StatusOK, &joined)

	s.expect(s.do("GET", "/v1/events/"+second.ID+"/me", joined.Token, nil), http.StatusForbidden, nil)
	s.expect(s.do("GET", "/v1/events/"+first.ID+"/me?token="+joined.Token, "", nil), http.StatusOK, nil)
}

func TestRouter_ParticipantRegistry(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com")
	event := s.createEvent(host, "Cata")
	other := s.createEvent(host, "Otra")
	base := "/v1/events/" + event.ID

	var p model.Participant
	s.expect(s.do("POST", base+"/participants", host, map[string]string{"name": "  Marcos "}), http.StatusCreated, &p)
	if p.Name != "Marcos" {
		t.Errorf("Expected trimmed name, got %q", p.Name)
	}
	s.expect(s.do("POST", base+"/participants", host, map[string]string{"name": "   "}), http.StatusBadRequest, nil)

	// Participant ids are only reachable through their own event
	s.expect(s.do("PUT", "/v1/events/"+other.ID+"/participants/"+p.ID, host, map[string]string{"name": "X"}), http.StatusNotFound, nil)

	s.expect(s.do("PUT", base+"/participants/"+p.ID, host, map[string]string{"name": "Marcos R."}), http.StatusOK, nil)
	s.expect(s.do("DELETE", base+"/participants/"+p.ID, host, nil), http.StatusNoContent, nil)

	var list struct {
		Participants []model.Participant `json:"participants"`
	}
	s.expect(s.do("GET", base+"/participants", host, nil), http.StatusOK, &list)
	if len(list.Participants) != 0 {
		t.Errorf("Expected no participants, got %d", len(list.Participants))
	}
}

func TestRouter_DeletedParticipantLosesAccess(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com")
	event := s.createEvent(host, "Cata")
	base := "/v1/events/" + event.ID

	var joined model.ParticipantJoinResponse
	s.expect(s.do("POST", "/v1/join", "", map[string]string{"pin": event.PIN, "name": "Irene"}), http.StatusOK, &joined)
	s.expect(s.do("GET", base+"/me", joined.Token, nil), http.StatusOK, nil)

	s.expect(s.do("DELETE", base+"/participants/"+joined.ParticipantID, host, nil), http.StatusNoContent, nil)

	s.expect(s.do("GET", base+"/me", joined.Token, nil), http.StatusNotFound, nil)
	s.expect(s.do("PUT", base+"/me/selection", joined.Token, map[string]interface{}{
		"selections": map[string]string{},
	}), http.StatusNotFound, nil)
	s.expect(s.do("GET", "/v1/ws/events/"+event.ID+"/participant?token="+joined.Token, "", nil), http.StatusForbidden, nil)
}

func TestRouter_Admin(t *testing.T) {
	s := newTestServer(t)
	host := s.register("host@example.com")
	event := s.createEvent(host, "Cata")

	s.expect(s.do("GET", "/v1/admin/events", "", nil), http.StatusUnauthorized, nil)
	s.expect(s.do("POST", "/v1/admin/login", "", model.AdminLoginRequest{User: "admin", Password: "wrong"}), http.StatusUnauthorized, nil)

	var session model.AdminSession
	s.expect(s.do("POST", "/v1/admin/login", "", model.AdminLoginRequest{User: "admin", Password: "admin-pass"}), http.StatusOK, &session)
	admin := "admin:" + session.ID

	var list struct {
		Events []model.Event `json:"events"`
	}
	s.expect(s.do("GET", "/v1/admin/events", admin, nil), http.StatusOK, &list)
	if len(list.Events) != 1 {
		t.Errorf("Expected 1 event, got %d", len(list.Events))
	}

	name := "Renombrada"
	var updated model.Event
	s.expect(s.do("PATCH", "/v1/admin/events/"+event.ID, admin, model.EventUpdate{Name: &name}), http.StatusOK, &updated)
	if updated.Name != name {
		t.Errorf("Expected %q, got %q", name, updated.Name)
	}

	s.expect(s.do("DELETE", "/v1/admin/events/"+event.ID, admin, nil), http.StatusNoContent, nil)
	s.expect(s.do("GET", "/v1/admin/events/"+event.ID, admin, nil), http.StatusNotFound, nil)
	s.expect(s.do("GET", "/v1/admin/logs?collection=events", admin, nil), http.StatusOK, nil)

	s.expect(s.do("POST", "/v1/admin/logout", admin, nil), http.StatusNoContent, nil)
	s.expect(s.do("GET", "/v1/admin/events", admin, nil), http.StatusUnauthorized, nil)
}
