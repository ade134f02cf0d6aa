package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func newConn(h *Hub, eventID, participantID string) *Connection {
	return &Connection{
		EventID:       eventID,
		ParticipantID: participantID,
		IsHost:        participantID == "",
		Send:          make(chan []byte, 16),
		Hub:           h,
	}
}

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data, ok := <-conn.Send:
		if !ok {
			t.Fatal("Expected message, got closed channel")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for message")
	}
	return Message{}
}

func expectSilent(t *testing.T, conn *Connection) {
	t.Helper()
	select {
	case data := <-conn.Send:
		t.Errorf("Expected no message, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_Routing(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	host := newConn(h, "evt1", "")
	alice := newConn(h, "evt1", "p1")
	bob := newConn(h, "evt1", "p2")
	other := newConn(h, "evt2", "p3")

	h.Register(host)
	h.Register(alice)
	h.Register(bob)
	h.Register(other)

	// Host hears about both participants of its own event
	for _, want := range []string{"p1", "p2"} {
		msg := receive(t, host)
		if msg.Type != MsgParticipantConnected {
			t.Errorf("Expected %s, got %s", MsgParticipantConnected, msg.Type)
		}
		var payload map[string]string
		json.Unmarshal(msg.Payload, &payload)
		if payload["participantId"] != want {
			t.Errorf("Expected participant %s, got %s", want, payload["participantId"])
		}
	}

	t.Run("to host", func(t *testing.T) {
		h.BroadcastToHost("evt1", "selection_submitted", map[string]string{"participantId": "p1"})
		if msg := receive(t, host); msg.Type != "selection_submitted" {
			t.Errorf("Expected selection_submitted, got %s", msg.Type)
		}
		expectSilent(t, alice)
	})

	t.Run("to participant", func(t *testing.T) {
		h.BroadcastToParticipant("evt1", "p2", "ping", nil)
		if msg := receive(t, bob); msg.Type != "ping" {
			t.Errorf("Expected ping, got %s", msg.Type)
		}
		expectSilent(t, alice)
		expectSilent(t, host)
	})

	t.Run("to all", func(t *testing.T) {
		h.BroadcastToAll("evt1", "event_finalized", map[string]string{"eventId": "evt1"})
		for _, conn := range []*Connection{host, alice, bob} {
			if msg := receive(t, conn); msg.Type != "event_finalized" {
				t.Errorf("Expected event_finalized, got %s", msg.Type)
			}
		}
		expectSilent(t, other)
	})
}

func TestHub_UnregisterNotifiesHost(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	host := newConn(h, "evt1", "")
	alice := newConn(h, "evt1", "p1")
	h.Register(host)
	h.Register(alice)
	receive(t, host)

	h.Unregister(alice)
	if msg := receive(t, host); msg.Type != MsgParticipantDisconnected {
		t.Errorf("Expected %s, got %s", MsgParticipantDisconnected, msg.Type)
	}
	if _, ok := <-alice.Send; ok {
		t.Error("Expected participant channel to be closed")
	}
}

func TestHub_DisconnectEvent(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	host := newConn(h, "evt1", "")
	alice := newConn(h, "evt1", "p1")
	other := newConn(h, "evt2", "p2")
	h.Register(host)
	h.Register(alice)
	h.Register(other)
	receive(t, host)

	h.DisconnectEvent("evt1")

	for _, conn := range []*Connection{host, alice} {
		select {
		case _, ok := <-conn.Send:
			if ok {
				t.Error("Expected channel to be closed")
			}
		case <-time.After(time.Second):
			t.Fatal("Timed out waiting for close")
		}
	}

	h.BroadcastToAll("evt2", "labels_saved", nil)
	if msg := receive(t, other); msg.Type != "labels_saved" {
		t.Errorf("Expected labels_saved, got %s", msg.Type)
	}
}

func TestHub_ReplacesDuplicateConnection(t *testing.T) {
	h := NewHub()
	defer h.Stop()

	first := newConn(h, "evt1", "p1")
	second := newConn(h, "evt1", "p1")
	h.Register(first)
	h.Register(second)

	// Late unregister of the replaced connection must not drop the new one
	h.Unregister(first)
	h.BroadcastToParticipant("evt1", "p1", "ping", nil)
	if msg := receive(t, second); msg.Type != "ping" {
		t.Errorf("Expected ping, got %s", msg.Type)
	}
}
