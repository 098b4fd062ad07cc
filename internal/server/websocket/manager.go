package websocket

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Manager tracks live connections grouped by session. Registration and
// broadcast never touch game state: a connect or disconnect on its own
// changes nothing about the game.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*Client
}

// NewManager creates an empty connection registry.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]map[string]*Client),
	}
}

// Register creates a client for the connection and adds it to the session's
// pool. Nothing is sent to the new connection here.
func (m *Manager) Register(sessionID, playerID string, conn *websocket.Conn) *Client {
	client := &Client{
		ConnID:    uuid.New().String(),
		SessionID: sessionID,
		PlayerID:  playerID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
	}

	m.mu.Lock()
	pool, ok := m.sessions[sessionID]
	if !ok {
		pool = make(map[string]*Client)
		m.sessions[sessionID] = pool
	}
	pool[client.ConnID] = client
	m.mu.Unlock()

	return client
}

// Unregister removes the client from the registry. Idempotent.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool, ok := m.sessions[c.SessionID]
	if !ok {
		return
	}
	if _, ok := pool[c.ConnID]; !ok {
		return
	}
	delete(pool, c.ConnID)
	close(c.Send)
	if len(pool) == 0 {
		delete(m.sessions, c.SessionID)
	}
}

// Broadcast delivers the message to every connection in the session.
// Clients whose send buffer is full are dropped from the pool.
func (m *Manager) Broadcast(sessionID string, message []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	for connID, client := range pool {
		select {
		case client.Send <- message:
		default:
			log.Printf("[WS] dropping slow connection %s in session %s", connID, sessionID)
			delete(pool, connID)
			close(client.Send)
		}
	}
	if len(pool) == 0 {
		delete(m.sessions, sessionID)
	}
}

// SendTo delivers the message to one connection. Returns false when the
// client is gone or its buffer is full. The send happens under the
// registry lock so the channel cannot be closed out from under it.
func (m *Manager) SendTo(c *Client, message []byte) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pool, ok := m.sessions[c.SessionID]
	if ok {
		_, ok = pool[c.ConnID]
	}
	if !ok {
		return false
	}

	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// ConnectionCount reports how many connections a session has.
func (m *Manager) ConnectionCount(sessionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[sessionID])
}
