package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"pinot/internal/cache"
	"pinot/internal/editor"
	"pinot/internal/model"
)

// EventCache returns the store as a cache.EventCache
func (s *Store) EventCache() cache.EventCache { return eventCache{s} }

// SessionCache returns the store as a cache.SessionCache
func (s *Store) SessionCache() cache.SessionCache { return sessionCache{s} }

// EditorCache returns the store as a cache.EditorCache
func (s *Store) EditorCache() cache.EditorCache { return editorCache{s} }

type eventCache struct{ s *Store }

func (c eventCache) SetPIN(_ context.Context, pin, eventID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.PINs[pin] = eventID
	return nil
}

func (c eventCache) GetEventID(_ context.Context, pin string) (string, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.s.PINs[pin], nil
}

func (c eventCache) DeletePIN(_ context.Context, pin string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.PINs, pin)
	return nil
}

func (c eventCache) PINExists(_ context.Context, pin string) (bool, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	_, ok := c.s.PINs[pin]
	return ok, nil
}

type sessionCache struct{ s *Store }

func (c sessionCache) Set(_ context.Context, session *model.AdminSession) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cp := *session
	c.s.Sessions[session.ID] = &cp
	return nil
}

func (c sessionCache) Get(_ context.Context, id string) (*model.AdminSession, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if sess, ok := c.s.Sessions[id]; ok {
		cp := *sess
		return &cp, nil
	}
	return nil, nil
}

func (c sessionCache) Delete(_ context.Context, id string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.Sessions, id)
	return nil
}

// editorCache round-trips through JSON like the Redis implementation
type editorCache struct{ s *Store }

func (c editorCache) Set(_ context.Context, state *editor.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	var cp editor.State
	if err := json.Unmarshal(data, &cp); err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.Editors[state.EventID] = &cp
	return nil
}

func (c editorCache) Get(_ context.Context, eventID string) (*editor.State, error) {
	c.s.mu.Lock()
	st, ok := c.s.Editors[eventID]
	c.s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	var cp editor.State
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (c editorCache) Delete(_ context.Context, eventID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.Editors, eventID)
	return nil
}

// Auditor collects audit entries synchronously
type Auditor struct {
	mu      sync.Mutex
	Entries []*model.AdminLog
}

func (a *Auditor) Record(entry *model.AdminLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
}

// Count returns the number of recorded entries
func (a *Auditor) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.Entries)
}

// Message is one broadcast captured by Broadcaster
type Message struct {
	EventID       string
	ParticipantID string
	Target        string // host, participant, all
	Type          string
	Payload       interface{}
}

// Broadcaster records broadcasts instead of sending them
type Broadcaster struct {
	mu           sync.Mutex
	Messages     []Message
	Disconnected []string
}

func (b *Broadcaster) add(m Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, m)
}

func (b *Broadcaster) BroadcastToHost(eventID string, msgType string, payload interface{}) {
	b.add(Message{EventID: eventID, Target: "host", Type: msgType, Payload: payload})
}

func (b *Broadcaster) BroadcastToParticipant(eventID, participantID string, msgType string, payload interface{}) {
	b.add(Message{EventID: eventID, ParticipantID: participantID, Target: "participant", Type: msgType, Payload: payload})
}

func (b *Broadcaster) BroadcastToAll(eventID string, msgType string, payload interface{}) {
	b.add(Message{EventID: eventID, Target: "all", Type: msgType, Payload: payload})
}

func (b *Broadcaster) DisconnectEvent(eventID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Disconnected = append(b.Disconnected, eventID)
}

// Types returns the message types in send order
func (b *Broadcaster) Types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.Messages))
	for _, m := range b.Messages {
		types = append(types, m.Type)
	}
	return types
}
