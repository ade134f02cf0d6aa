package ws

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"pinot/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *Hub
	authSvc  *service.AuthService
	eventSvc *service.EventService
	registry *service.RegistryService
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, eventSvc *service.EventService, registry *service.RegistryService) *Handler {
	return &Handler{
		hub:      hub,
		authSvc:  authSvc,
		eventSvc: eventSvc,
		registry: registry,
	}
}

// HostWS handles GET /v1/ws/events/{eventId}/host
func (h *Handler) HostWS(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateHostToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if _, err := h.eventSvc.GetOwned(r.Context(), eventID, claims.HostID); err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			http.Error(w, "event not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotEventHost):
			http.Error(w, "not the event host", http.StatusForbidden)
		default:
			log.Printf("WebSocket event lookup error: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.serve(w, r, &Connection{
		EventID: eventID,
		IsHost:  true,
		Send:    make(chan []byte, 256),
		Hub:     h.hub,
	})

	log.Printf("Host %s connected to event %s via WebSocket", claims.HostID, eventID)
}

// ParticipantWS handles GET /v1/ws/events/{eventId}/participant
func (h *Handler) ParticipantWS(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateParticipantToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if claims.EventID != eventID {
		http.Error(w, "token not valid for this event", http.StatusForbidden)
		return
	}

	if _, err := h.registry.GetEventParticipant(r.Context(), eventID, claims.ParticipantID); err != nil {
		if errors.Is(err, service.ErrParticipantNotFound) {
			http.Error(w, "participant not registered", http.StatusForbidden)
			return
		}
		log.Printf("WebSocket participant lookup error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.serve(w, r, &Connection{
		EventID:       eventID,
		ParticipantID: claims.ParticipantID,
		Send:          make(chan []byte, 256),
		Hub:           h.hub,
	})

	log.Printf("Participant %s connected to event %s via WebSocket", claims.ParticipantID, eventID)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, conn *Connection) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Clients only receive; anything they send is discarded
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
