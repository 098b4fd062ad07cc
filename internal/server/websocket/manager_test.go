package websocket

import (
	"sync"
	"testing"
)

func TestRegisterAndCount(t *testing.T) {
	m := NewManager()

	a := m.Register("session-1", "player-a", nil)
	b := m.Register("session-1", "player-b", nil)
	c := m.Register("session-2", "player-c", nil)

	if a.ConnID == b.ConnID {
		t.Error("Expected distinct connection ids")
	}
	if m.ConnectionCount("session-1") != 2 {
		t.Errorf("Expected 2 connections in session-1, got %d", m.ConnectionCount("session-1"))
	}
	if m.ConnectionCount("session-2") != 1 {
		t.Errorf("Expected 1 connection in session-2, got %d", m.ConnectionCount("session-2"))
	}
	if len(a.Send) != 0 || len(b.Send) != 0 || len(c.Send) != 0 {
		t.Error("Expected registration to send nothing")
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	m := NewManager()
	client := m.Register("session-1", "player-a", nil)

	m.Unregister(client)
	if m.ConnectionCount("session-1") != 0 {
		t.Errorf("Expected 0 connections, got %d", m.ConnectionCount("session-1"))
	}

	// Second removal of the same client must not panic or double-close.
	m.Unregister(client)
}

func TestBroadcastReachesSessionOnly(t *testing.T) {
	m := NewManager()
	a := m.Register("session-1", "player-a", nil)
	b := m.Register("session-1", "player-b", nil)
	other := m.Register("session-2", "player-c", nil)

	m.Broadcast("session-1", []byte("hello"))

	for _, client := range []*Client{a, b} {
		select {
		case msg := <-client.Send:
			if string(msg) != "hello" {
				t.Errorf("Expected hello, got %s", msg)
			}
		default:
			t.Errorf("Expected message for %s", client.PlayerID)
		}
	}
	select {
	case <-other.Send:
		t.Error("Expected no message for other session")
	default:
	}
}

func TestBroadcastPrunesSlowClients(t *testing.T) {
	m := NewManager()
	client := m.Register("session-1", "player-a", nil)

	// Fill the buffer so the next delivery cannot be accepted.
	for i := 0; i < cap(client.Send); i++ {
		client.Send <- []byte("x")
	}

	m.Broadcast("session-1", []byte("overflow"))

	if m.ConnectionCount("session-1") != 0 {
		t.Errorf("Expected slow client pruned, got %d connections", m.ConnectionCount("session-1"))
	}
}

func TestSendTo(t *testing.T) {
	m := NewManager()
	client := m.Register("session-1", "player-a", nil)

	if !m.SendTo(client, []byte("direct")) {
		t.Fatal("Expected delivery to succeed")
	}
	msg := <-client.Send
	if string(msg) != "direct" {
		t.Errorf("Expected direct, got %s", msg)
	}

	m.Unregister(client)
	if m.SendTo(client, []byte("late")) {
		t.Error("Expected delivery to fail after unregister")
	}
}

func TestSendToDuringUnregister(t *testing.T) {
	// SendTo must never write to a channel Unregister has closed.
	for i := 0; i < 1000; i++ {
		m := NewManager()
		client := m.Register("session-1", "player-a", nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.SendTo(client, []byte("racing"))
		}()
		go func() {
			defer wg.Done()
			m.Unregister(client)
		}()
		wg.Wait()
	}
}
