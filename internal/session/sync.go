package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"thirteen-platform/backend/engine"
	"thirteen-platform/backend/internal/models"
	gamemodels "thirteen-platform/backend/models"
)

// stateStore is the slice of Store the sync pipeline needs.
type stateStore interface {
	SetState(ctx context.Context, sessionID string, snap engine.Snapshot) error
	IncrementSequencer(ctx context.Context, sessionID string) (int64, error)
	PushEvent(ctx context.Context, sessionID string, event Event) error
}

// Broadcaster fans a message out to every connection in a session.
type Broadcaster interface {
	Broadcast(sessionID string, message []byte)
}

// EventRecorder mirrors events into durable storage. Failures are logged,
// never surfaced: the cache is the source of truth for live sessions.
type EventRecorder interface {
	RecordEvent(ctx context.Context, sessionID string, event Event) error
}

// Sync runs the persist-then-broadcast pipeline after every state mutation.
// Order is fixed: increment the sequencer, write the snapshot and the event,
// and only then notify clients. A failed cache write aborts the broadcast so
// clients never see a sequence number the cache cannot back.
type Sync struct {
	store    stateStore
	hub      Broadcaster
	recorder EventRecorder
}

// NewSync wires the pipeline. recorder may be nil.
func NewSync(store stateStore, hub Broadcaster, recorder EventRecorder) *Sync {
	return &Sync{store: store, hub: hub, recorder: recorder}
}

// PersistAndBroadcast records the mutation that just happened on game and
// pushes the resulting state to all connected clients. play carries the
// cards for a play mutation; nil means a pass. Returns the sequence number
// assigned to the mutation.
func (s *Sync) PersistAndBroadcast(ctx context.Context, game *engine.Game, play *gamemodels.Play) (int64, error) {
	seq, err := s.store.IncrementSequencer(ctx, game.ID)
	if err != nil {
		return 0, err
	}

	eventType := EventPass
	if play != nil {
		eventType = EventPlay
	}
	full := game.ToFull()
	event := Event{
		ID:       uuid.New().String(),
		Sequence: seq,
		Turn:     game.State.TurnNumber,
		Type:     eventType,
		Payload:  &full,
		Ts:       time.Now().UTC(),
		GameID:   game.ID,
	}

	var wg sync.WaitGroup
	var stateErr, eventErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		stateErr = s.store.SetState(ctx, game.ID, full)
	}()
	go func() {
		defer wg.Done()
		eventErr = s.store.PushEvent(ctx, game.ID, event)
	}()
	wg.Wait()
	if stateErr != nil {
		return 0, fmt.Errorf("persist session %s: %w", game.ID, stateErr)
	}
	if eventErr != nil {
		return 0, fmt.Errorf("persist session %s: %w", game.ID, eventErr)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordEvent(ctx, game.ID, event); err != nil {
			log.Printf("[SYNC] failed to mirror event %d for session %s: %v", seq, game.ID, err)
		}
	}

	msg := NewStateSync(game.ID, seq, game.ToPublic())
	data, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("marshal state sync: %w", err)
	}
	s.hub.Broadcast(game.ID, data)
	return seq, nil
}

// PersistFinish appends the terminal event for a session. The event takes
// its own sequence number from the sequencer so replay order stays total
// even when a FINISH lands right after a play or pass.
func (s *Sync) PersistFinish(ctx context.Context, game *engine.Game) (int64, error) {
	seq, err := s.store.IncrementSequencer(ctx, game.ID)
	if err != nil {
		return 0, err
	}

	event := Event{
		ID:       uuid.New().String(),
		Sequence: seq,
		Turn:     game.State.TurnNumber,
		Type:     EventFinish,
		Ts:       time.Now().UTC(),
		GameID:   game.ID,
	}
	if err := s.store.PushEvent(ctx, game.ID, event); err != nil {
		return 0, fmt.Errorf("persist session %s: %w", game.ID, err)
	}

	if s.recorder != nil {
		if err := s.recorder.RecordEvent(ctx, game.ID, event); err != nil {
			log.Printf("[SYNC] failed to mirror event %d for session %s: %v", seq, game.ID, err)
		}
	}
	return seq, nil
}

// GormRecorder mirrors session events into the game_events table.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder creates a recorder writing through the given database.
func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

// RecordEvent inserts one row per event, payload as JSON.
func (r *GormRecorder) RecordEvent(ctx context.Context, sessionID string, event Event) error {
	row := models.GameEvent{
		GameID: sessionID,
		Seq:    event.Sequence,
		Turn:   event.Turn,
		Type:   string(event.Type),
		Ts:     event.Ts,
	}
	if event.Payload != nil {
		data, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		payload := string(data)
		row.Payload = &payload
	}
	return r.db.WithContext(ctx).Create(&row).Error
}
