package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"thirteen-platform/backend/engine"
	"thirteen-platform/backend/internal/auth"
	"thirteen-platform/backend/internal/db"
	dbmodels "thirteen-platform/backend/internal/models"
	"thirteen-platform/backend/internal/session"
	"thirteen-platform/backend/internal/validation"
	"thirteen-platform/backend/models"
)

// HandleCreateSession starts a new game session: deals the game, records the
// session and seat identities in the database, seeds the cache with the
// initial snapshot and sequencer, and returns the human seat's credentials.
func HandleCreateSession(
	c *gin.Context,
	database *db.DB,
	store *session.Store,
	authService *auth.Service,
) {
	cfg := models.DefaultGameConfig
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&cfg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}
	if err := validation.ValidateGameConfig(cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := engine.NewGame(cfg)
	if err != nil {
		log.Printf("[SESSION] failed to create game: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	now := time.Now().UTC()
	err = database.Transaction(func(tx *gorm.DB) error {
		row := dbmodels.GameSession{
			ID:        game.ID,
			Status:    dbmodels.StatusInProgress,
			StartedAt: &now,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		for _, p := range game.State.Players {
			player := dbmodels.Player{
				ID:    p.ID,
				Name:  p.Name,
				IsBot: p.IsBot,
			}
			if err := tx.Create(&player).Error; err != nil {
				return err
			}
			seat := dbmodels.GamePlayer{
				GameID:     game.ID,
				PlayerID:   p.ID,
				SeatNumber: p.SeatIndex,
			}
			if err := tx.Create(&seat).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[SESSION] failed to record session %s: %v", game.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	ctx := c.Request.Context()
	full := game.ToFull()
	if err := store.SetState(ctx, game.ID, full); err != nil {
		log.Printf("[SESSION] failed to cache session %s: %v", game.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := store.InitSequencer(ctx, game.ID); err != nil {
		log.Printf("[SESSION] failed to init sequencer for %s: %v", game.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	initEvent := session.Event{
		ID:       uuid.New().String(),
		Sequence: 0,
		Turn:     game.State.TurnNumber,
		Type:     session.EventInit,
		Payload:  &full,
		Ts:       now,
		GameID:   game.ID,
	}
	if err := store.PushEvent(ctx, game.ID, initEvent); err != nil {
		log.Printf("[SESSION] failed to push init event for %s: %v", game.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	humanID := game.State.Players[0].ID
	token, err := authService.GenerateSeatToken(game.ID, humanID)
	if err != nil {
		log.Printf("[SESSION] failed to sign seat token for %s: %v", game.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	log.Printf("[SESSION] created session %s (%d players)", game.ID, cfg.PlayersCount)
	c.JSON(http.StatusCreated, gin.H{
		"session_id": game.ID,
		"player_id":  humanID,
		"token":      token,
	})
}
