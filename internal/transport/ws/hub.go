package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Connection presence, sent to the host
const (
	MsgParticipantConnected    MessageType = "participant_connected"
	MsgParticipantDisconnected MessageType = "participant_disconnected"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages WebSocket connections for events
type Hub struct {
	// Event -> connections
	hostConns        map[string]*Connection
	participantConns map[string]map[string]*Connection // eventID -> participantID -> conn

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}
}

// Connection represents a WebSocket connection
type Connection struct {
	EventID       string
	ParticipantID string // Empty for host connections
	IsHost        bool
	Send          chan []byte
	Hub           *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	EventID       string
	ToHost        bool
	ToAll         bool   // Host and every participant
	ParticipantID string // Empty means all participants, specific ID means one participant
	Message       *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		hostConns:        make(map[string]*Connection),
		participantConns: make(map[string]map[string]*Connection),
		register:         make(chan *Connection),
		unregister:       make(chan *Connection),
		broadcast:        make(chan *BroadcastMessage, 256),
		disconnect:       make(chan string, 16),
		done:             make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if conn.IsHost {
				if old, ok := h.hostConns[conn.EventID]; ok {
					close(old.Send)
				}
				h.hostConns[conn.EventID] = conn
				log.Printf("Host connected to event %s", conn.EventID)
			} else {
				if h.participantConns[conn.EventID] == nil {
					h.participantConns[conn.EventID] = make(map[string]*Connection)
				}
				if old, ok := h.participantConns[conn.EventID][conn.ParticipantID]; ok {
					close(old.Send)
				}
				h.participantConns[conn.EventID][conn.ParticipantID] = conn
				log.Printf("Participant %s connected to event %s", conn.ParticipantID, conn.EventID)

				// Notify host
				h.notifyHost(conn.EventID, MsgParticipantConnected, conn.ParticipantID)
			}
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conn.IsHost {
				if existing, ok := h.hostConns[conn.EventID]; ok && existing == conn {
					delete(h.hostConns, conn.EventID)
					close(conn.Send)
					log.Printf("Host disconnected from event %s", conn.EventID)
				}
			} else {
				if participants, ok := h.participantConns[conn.EventID]; ok {
					if existing, ok := participants[conn.ParticipantID]; ok && existing == conn {
						delete(participants, conn.ParticipantID)
						close(conn.Send)
						log.Printf("Participant %s disconnected from event %s", conn.ParticipantID, conn.EventID)

						// Notify host
						h.notifyHost(conn.EventID, MsgParticipantDisconnected, conn.ParticipantID)
					}
				}
			}
			h.mu.Unlock()

		case eventID := <-h.disconnect:
			h.mu.Lock()
			if conn, ok := h.hostConns[eventID]; ok {
				close(conn.Send)
				delete(h.hostConns, eventID)
			}
			for _, conn := range h.participantConns[eventID] {
				close(conn.Send)
			}
			delete(h.participantConns, eventID)
			h.mu.Unlock()
			log.Printf("Closed all connections of event %s", eventID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)

			if msg.ToHost || msg.ToAll {
				if conn, ok := h.hostConns[msg.EventID]; ok {
					send(conn, data)
				}
			}
			if !msg.ToHost {
				if participants, ok := h.participantConns[msg.EventID]; ok {
					if msg.ParticipantID != "" {
						// Send to specific participant
						if conn, ok := participants[msg.ParticipantID]; ok {
							send(conn, data)
						}
					} else {
						for _, conn := range participants {
							send(conn, data)
						}
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// send drops the message if the connection buffer is full
func send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, conn := range h.hostConns {
		close(conn.Send)
		delete(h.hostConns, id)
	}
	for id, participants := range h.participantConns {
		for _, conn := range participants {
			close(conn.Send)
		}
		delete(h.participantConns, id)
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Stop closes every connection and stops the hub loop
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) enqueue(msg *BroadcastMessage, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode %s message: %v", msgType, err)
		return
	}
	msg.Message = &Message{Type: MessageType(msgType), Payload: data}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// BroadcastToHost sends a message to the event host (implements service.Broadcaster)
func (h *Hub) BroadcastToHost(eventID string, msgType string, payload interface{}) {
	h.enqueue(&BroadcastMessage{EventID: eventID, ToHost: true}, msgType, payload)
}

// BroadcastToParticipant sends a message to a specific participant (implements service.Broadcaster)
func (h *Hub) BroadcastToParticipant(eventID, participantID string, msgType string, payload interface{}) {
	h.enqueue(&BroadcastMessage{EventID: eventID, ParticipantID: participantID}, msgType, payload)
}

// BroadcastToAll sends a message to the host and all participants (implements service.Broadcaster)
func (h *Hub) BroadcastToAll(eventID string, msgType string, payload interface{}) {
	h.enqueue(&BroadcastMessage{EventID: eventID, ToAll: true}, msgType, payload)
}

// DisconnectEvent closes every connection of an event (implements service.Broadcaster)
func (h *Hub) DisconnectEvent(eventID string) {
	select {
	case h.disconnect <- eventID:
	case <-h.done:
	}
}

func (h *Hub) notifyHost(eventID string, msgType MessageType, participantID string) {
	if conn, ok := h.hostConns[eventID]; ok {
		payload, _ := json.Marshal(map[string]string{"participantId": participantID})
		data, _ := json.Marshal(&Message{
			Type:    msgType,
			Payload: payload,
		})
		send(conn, data)
	}
}
