package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"thirteen-platform/backend/engine"
	"thirteen-platform/backend/internal/redis"
)

// ErrSessionNotFound means the cache holds no snapshot or sequencer for the
// session: it never existed, or its keys expired.
var ErrSessionNotFound = errors.New("session not found")

// stateTTL bounds how long an abandoned session lingers in the cache.
const stateTTL = 24 * time.Hour

// Store is the cache repository for session state. Per session it keeps a
// JSON snapshot blob, an atomically incremented sequence counter and an
// append-only event list (newest first).
type Store struct {
	rdb *redis.Client
}

// NewStore creates a store backed by the given Redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func stateKey(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

func sequencerKey(sessionID string) string {
	return fmt.Sprintf("session:%s:seq", sessionID)
}

func eventsKey(sessionID string) string {
	return fmt.Sprintf("session:%s:events", sessionID)
}

// SetState persists the full snapshot under a 24h TTL. An unacknowledged
// write is an error: callers must treat the mutation as failed.
func (s *Store) SetState(ctx context.Context, sessionID string, snap engine.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	if err := s.rdb.Set(ctx, stateKey(sessionID), data, stateTTL).Err(); err != nil {
		return fmt.Errorf("set session state: %w", err)
	}
	return nil
}

// GetState loads and decodes the current snapshot.
func (s *Store) GetState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	data, err := s.rdb.Get(ctx, stateKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session state: %w", err)
	}
	var snap engine.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrCorruptState, err)
	}
	return &snap, nil
}

// InitSequencer sets the per-session counter to zero with the state TTL.
// Called once at session creation.
func (s *Store) InitSequencer(ctx context.Context, sessionID string) error {
	if err := s.rdb.Set(ctx, sequencerKey(sessionID), 0, stateTTL).Err(); err != nil {
		return fmt.Errorf("init session sequencer: %w", err)
	}
	return nil
}

// IncrementSequencer atomically bumps the counter and returns the new value.
func (s *Store) IncrementSequencer(ctx context.Context, sessionID string) (int64, error) {
	seq, err := s.rdb.Incr(ctx, sequencerKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("increment session sequencer: %w", err)
	}
	return seq, nil
}

// GetSequencer returns the current counter value.
func (s *Store) GetSequencer(ctx context.Context, sessionID string) (int64, error) {
	val, err := s.rdb.Get(ctx, sequencerKey(sessionID)).Int64()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("get session sequencer: %w", err)
	}
	return val, nil
}

// PushEvent prepends the event to the session's append-only list.
func (s *Store) PushEvent(ctx context.Context, sessionID string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal session event: %w", err)
	}
	if err := s.rdb.LPush(ctx, eventsKey(sessionID), data).Err(); err != nil {
		return fmt.Errorf("push session event: %w", err)
	}
	return nil
}

// LoadGame rehydrates the game aggregate from the cached snapshot and
// returns it together with the current sequence number.
func (s *Store) LoadGame(ctx context.Context, sessionID string) (*engine.Game, int64, error) {
	snap, err := s.GetState(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	seq, err := s.GetSequencer(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	game, err := engine.Rehydrate(*snap)
	if err != nil {
		return nil, 0, err
	}
	return game, seq, nil
}
