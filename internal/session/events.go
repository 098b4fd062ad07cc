package session

import (
	"time"

	"thirteen-platform/backend/engine"
)

// EventType labels entries in the per-session event stream.
type EventType string

const (
	EventInit      EventType = "INIT"
	EventPlay      EventType = "PLAY"
	EventPass      EventType = "PASS"
	EventJoin      EventType = "JOIN"
	EventLeave     EventType = "LEAVE"
	EventStart     EventType = "START"
	EventFinish    EventType = "FINISH"
	EventStateSync EventType = "STATE_SYNC"
)

// Event is one append-only record of the session stream. Sequence numbers
// are strictly increasing per session and totally order all mutations.
type Event struct {
	ID       string           `json:"id"`
	Sequence int64            `json:"seq"`
	Turn     int              `json:"turn"`
	Type     EventType        `json:"type"`
	Payload  *engine.Snapshot `json:"payload"`
	Ts       time.Time        `json:"ts"`
	GameID   string           `json:"game_id"`
}

// StateSync is the canonical full-state message, both broadcast after every
// mutation and sent directly in answer to a resync request. GameState is
// always the public serialization: bot hands are masked.
type StateSync struct {
	Type      string          `json:"type"`
	Seq       int64           `json:"seq"`
	Turn      int             `json:"turn"`
	Ts        time.Time       `json:"ts"`
	SessionID string          `json:"session_id"`
	GameState engine.Snapshot `json:"game_state"`
}

// NewStateSync builds the message for the given sequence and public snapshot.
func NewStateSync(sessionID string, seq int64, public engine.Snapshot) StateSync {
	return StateSync{
		Type:      "STATE_SYNC",
		Seq:       seq,
		Turn:      public.TurnNumber,
		Ts:        time.Now().UTC(),
		SessionID: sessionID,
		GameState: public,
	}
}
