package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	"pinot/internal/config"
	"pinot/internal/service"
	"pinot/internal/transport/rest/handler"
	"pinot/internal/transport/rest/middleware"
	"pinot/internal/transport/ws"

	_ "pinot/docs"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService      *service.AuthService
	EventService     *service.EventService
	RegistryService  *service.RegistryService
	EditorService    *service.EditorService
	ResolverService  *service.ResolverService
	SelectionService *service.SelectionService
	AdminService     *service.AdminService
	WSHub            *ws.Hub
	CORS             config.CORSConfig
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	eventHandler := handler.NewEventHandler(c.EventService, c.RegistryService, c.ResolverService)
	participantHandler := handler.NewParticipantHandler(c.RegistryService)
	editorHandler := handler.NewEditorHandler(c.EditorService)
	selectionHandler := handler.NewSelectionHandler(c.SelectionService, c.ResolverService)
	adminHandler := handler.NewAdminHandler(c.AdminService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService, c.EventService)

	// CORS middleware (apply first)
	r.Use(middleware.CORS(c.CORS))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/admin/login", authHandler.AdminLogin).Methods("POST", "OPTIONS")
	v1.HandleFunc("/join", selectionHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/cards", handler.Deck).Methods("GET", "OPTIONS")

	// WebSocket routes (public with token in query param)
	if c.WSHub != nil {
		wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.EventService, c.RegistryService)
		v1.HandleFunc("/ws/events/{eventId}/host", wsHandler.HostWS).Methods("GET")
		v1.HandleFunc("/ws/events/{eventId}/participant", wsHandler.ParticipantWS).Methods("GET")
	}

	// API docs
	v1.HandleFunc("/docs/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, `{"error":"docs not available"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Host routes (require host auth)
	hostRoutes := v1.NewRoute().Subrouter()
	hostRoutes.Use(authMW.RequireHost)

	hostRoutes.HandleFunc("/events", eventHandler.Create).Methods("POST", "OPTIONS")
	hostRoutes.HandleFunc("/events", eventHandler.List).Methods("GET", "OPTIONS")

	// Event routes (require the host to own the event)
	ownerRoutes := v1.NewRoute().Subrouter()
	ownerRoutes.Use(authMW.RequireHost, authMW.RequireEventOwner)

	ownerRoutes.HandleFunc("/events/{eventId}", eventHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}", eventHandler.Update).Methods("PATCH", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/finalize", eventHandler.Finalize).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/results", eventHandler.Results).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/labels", eventHandler.ListLabels).Methods("GET", "OPTIONS")

	ownerRoutes.HandleFunc("/events/{eventId}/participants", participantHandler.List).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/participants", participantHandler.Add).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/participants/{participantId}", participantHandler.Update).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/participants/{participantId}", participantHandler.Delete).Methods("DELETE", "OPTIONS")

	ownerRoutes.HandleFunc("/events/{eventId}/editor", editorHandler.Get).Methods("GET", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor", editorHandler.Reset).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/labels", editorHandler.AddLabel).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/labels/{labelId}", editorHandler.RenameLabel).Methods("PUT", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/labels/{labelId}", editorHandler.RemoveLabel).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/cards", editorHandler.AddCard).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/cards/suggest", editorHandler.SuggestCards).Methods("POST", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/cards/{cardId}", editorHandler.RemoveCard).Methods("DELETE", "OPTIONS")
	ownerRoutes.HandleFunc("/events/{eventId}/editor/save", editorHandler.Save).Methods("POST", "OPTIONS")

	// Participant routes (require participant auth)
	participantRoutes := v1.NewRoute().Subrouter()
	participantRoutes.Use(authMW.RequireParticipant)

	participantRoutes.HandleFunc("/events/{eventId}/me", selectionHandler.View).Methods("GET", "OPTIONS")
	participantRoutes.HandleFunc("/events/{eventId}/me/selection", selectionHandler.Get).Methods("GET", "OPTIONS")
	participantRoutes.HandleFunc("/events/{eventId}/me/selection", selectionHandler.Submit).Methods("PUT", "OPTIONS")
	participantRoutes.HandleFunc("/events/{eventId}/me/results", selectionHandler.Results).Methods("GET", "OPTIONS")

	// Admin panel routes (require admin session)
	adminRoutes := v1.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/logout", authHandler.AdminLogout).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/events", adminHandler.ListEvents).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}", adminHandler.GetEvent).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}", adminHandler.UpdateEvent).Methods("PATCH", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}", adminHandler.DeleteEvent).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}/participants", adminHandler.ListParticipants).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}/labels", adminHandler.ListLabels).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}/selections", adminHandler.ListSelections).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/events/{eventId}/selections/{participantId}", adminHandler.DeleteSelection).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/participants/{participantId}", adminHandler.UpdateParticipant).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/participants/{participantId}", adminHandler.DeleteParticipant).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/logs", adminHandler.ListLogs).Methods("GET", "OPTIONS")

	return r
}
