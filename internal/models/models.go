package models

import (
	"time"
)

// GameStatus is the lifecycle of a session row.
type GameStatus string

const (
	StatusCreated    GameStatus = "created"
	StatusInProgress GameStatus = "in_progress"
	StatusCompleted  GameStatus = "completed"
	StatusCancelled  GameStatus = "cancelled"
)

// GameSession records one game session: written at creation and updated once
// at completion. Live state lives in the cache, not here.
type GameSession struct {
	ID         string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Status     GameStatus `gorm:"column:status;type:varchar(20);not null;default:created" json:"status"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	StartedAt  *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt    *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
	Placements *string    `gorm:"column:placements;type:json" json:"placements,omitempty"`
}

// TableName specifies the table name for GameSession model
func (GameSession) TableName() string {
	return "game_sessions"
}

// Player is a per-seat identity row (human or bot).
type Player struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(50);not null" json:"name"`
	IsBot     bool      `gorm:"column:is_bot;not null;default:false" json:"is_bot"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for Player model
func (Player) TableName() string {
	return "players"
}

// GamePlayer joins a player to a session with a fixed seat number.
type GamePlayer struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GameID     string    `gorm:"column:game_id;type:varchar(36);not null;index:idx_game_seat" json:"game_id"`
	PlayerID   string    `gorm:"column:player_id;type:varchar(36);not null" json:"player_id"`
	SeatNumber int       `gorm:"column:seat_number;not null;index:idx_game_seat" json:"seat_number"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GamePlayer model
func (GamePlayer) TableName() string {
	return "game_players"
}

// GameEvent is the append-only audit mirror of the cache event stream.
type GameEvent struct {
	ID      int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	GameID  string    `gorm:"column:game_id;type:varchar(36);not null;index:idx_game_seq" json:"game_id"`
	Seq     int64     `gorm:"column:seq;not null;index:idx_game_seq" json:"seq"`
	Turn    int       `gorm:"column:turn;not null" json:"turn"`
	Type    string    `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Payload *string   `gorm:"column:payload;type:json" json:"payload,omitempty"`
	Ts      time.Time `gorm:"column:ts;not null" json:"ts"`
}

// TableName specifies the table name for GameEvent model
func (GameEvent) TableName() string {
	return "game_events"
}
