package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"thirteen-platform/backend/engine"
	"thirteen-platform/backend/internal/auth"
	"thirteen-platform/backend/internal/bot"
	"thirteen-platform/backend/internal/db"
	dbmodels "thirteen-platform/backend/internal/models"
	"thirteen-platform/backend/internal/session"
	"thirteen-platform/backend/internal/server/websocket"
	"thirteen-platform/backend/internal/validation"
	"thirteen-platform/backend/models"
)

// Upgrader configures the WebSocket upgrader
var Upgrader = gorillaws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SocketDeps bundles everything the real-time channel needs.
type SocketDeps struct {
	Database *db.DB
	Store    *session.Store
	Sync     *session.Sync
	Manager  *websocket.Manager
	Bots     *bot.Runner
	Auth     *auth.Service
}

// HandleWebSocket upgrades the connection for one (session, player) pair,
// sends the current state and serves the message loop until the client
// disconnects or violates the protocol.
func HandleWebSocket(c *gin.Context, deps SocketDeps) {
	sessionID := c.Param("session_id")
	playerID := c.Param("player_id")
	if validation.ValidateUUID(sessionID) != nil || validation.ValidateUUID(playerID) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid identifier"})
		return
	}
	token := c.Query("token")
	if err := deps.Auth.ValidateSeatToken(token, sessionID, playerID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	client := deps.Manager.Register(sessionID, playerID, conn)
	go client.WritePump()

	ctx := c.Request.Context()
	game, seq, err := deps.Store.LoadGame(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			deps.Manager.Unregister(client)
			client.CloseWithCode(gorillaws.ClosePolicyViolation, "session not found")
			return
		}
		log.Printf("[WS] failed to load session %s: %v", sessionID, err)
		deps.Manager.Unregister(client)
		client.CloseWithCode(gorillaws.CloseInternalServerErr, "internal error")
		return
	}

	initial, err := json.Marshal(session.NewStateSync(sessionID, seq, game.ToPublic()))
	if err == nil {
		deps.Manager.SendTo(client, initial)
	}

	client.ReadPump(deps.Manager.Unregister, func(cl *websocket.Client, msg websocket.ClientMessage) bool {
		return handleClientMessage(deps, cl, msg)
	})
}

func handleClientMessage(deps SocketDeps, client *websocket.Client, msg websocket.ClientMessage) bool {
	ctx := context.Background()

	switch msg.Type {
	case "PLAY":
		var cards []models.Card
		if err := json.Unmarshal(msg.Cards, &cards); err != nil || len(cards) == 0 {
			sendError(deps, client, "invalid cards payload")
			return true
		}
		handleAction(deps, client, &cards)
		return true

	case "PASS":
		handleAction(deps, client, nil)
		return true

	case "READY":
		game, _, err := deps.Store.LoadGame(ctx, client.SessionID)
		if err != nil {
			sendError(deps, client, "session unavailable")
			return true
		}
		go runBots(deps, game)
		return true

	case "PING":
		data, _ := json.Marshal(map[string]string{"type": "PONG"})
		deps.Manager.SendTo(client, data)
		return true

	case "RESYNC_REQUEST":
		game, seq, err := deps.Store.LoadGame(ctx, client.SessionID)
		if err != nil {
			sendError(deps, client, "session unavailable")
			return true
		}
		data, err := json.Marshal(session.NewStateSync(client.SessionID, seq, game.ToPublic()))
		if err == nil {
			deps.Manager.SendTo(client, data)
		}
		return true

	case "JOIN", "LEAVE":
		return true

	case "FINISH":
		completeSession(deps, client)
		return true

	default:
		log.Printf("[WS] unknown message type %q from %s", msg.Type, client.PlayerID)
		deps.Manager.Unregister(client)
		client.CloseWithCode(gorillaws.CloseProtocolError, "unknown message type")
		return false
	}
}

// handleAction applies a play (cards != nil) or a pass for the client's
// seat. The mutation is rejected unless the seat is the one to act and, for
// plays, the submitted cards match one of the seat's legal plays.
func handleAction(deps SocketDeps, client *websocket.Client, cards *[]models.Card) {
	ctx := context.Background()

	game, _, err := deps.Store.LoadGame(ctx, client.SessionID)
	if err != nil {
		sendError(deps, client, "session unavailable")
		return
	}
	seat, ok := game.FindSeatByPlayerID(client.PlayerID)
	if !ok {
		sendError(deps, client, "not seated in this session")
		return
	}
	if game.CurrentSeat() != seat {
		sendError(deps, client, "not your turn")
		return
	}

	var play *models.Play
	if cards != nil {
		legal, err := game.Rules().ValidPlays(seat)
		if err != nil {
			log.Printf("[WS] rules failure in session %s: %v", client.SessionID, err)
			sendError(deps, client, "internal error")
			return
		}
		play = matchPlay(legal, *cards)
		if play == nil {
			sendError(deps, client, "illegal play")
			return
		}
		if err := game.ApplyPlay(seat, *play); err != nil {
			sendError(deps, client, "illegal play")
			return
		}
	} else {
		if game.State.PassedPlayers[seat] {
			sendError(deps, client, "already passed")
			return
		}
		if err := game.ApplyPass(seat); err != nil {
			sendError(deps, client, "cannot pass")
			return
		}
	}

	if _, err := deps.Sync.PersistAndBroadcast(ctx, game, play); err != nil {
		log.Printf("[WS] persist failure in session %s: %v", client.SessionID, err)
		sendError(deps, client, "internal error")
		return
	}

	go runBots(deps, game)
}

// runBots drives bot seats forward. Detached from the connection's request
// context so a disconnect cannot abort moves already committed.
func runBots(deps SocketDeps, game *engine.Game) {
	if deps.Bots == nil {
		return
	}
	if err := deps.Bots.RunUntilHuman(context.Background(), game); err != nil {
		log.Printf("[BOT] loop stopped for session %s: %v", game.ID, err)
	}
}

// matchPlay finds the legal play whose card set equals the submitted one.
func matchPlay(legal []models.Play, cards []models.Card) *models.Play {
	want := sortedCards(cards)
	for i := range legal {
		got := sortedCards(legal[i].Cards)
		if equalCards(want, got) {
			return &legal[i]
		}
	}
	return nil
}

func sortedCards(cards []models.Card) []models.Card {
	out := make([]models.Card, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool { return out[i].Strength() < out[j].Strength() })
	return out
}

func equalCards(a, b []models.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// completeSession marks the session row finished and records the FINISH
// event. The cache keys are left to expire on their own.
func completeSession(deps SocketDeps, client *websocket.Client) {
	ctx := context.Background()

	game, _, err := deps.Store.LoadGame(ctx, client.SessionID)
	if err != nil {
		sendError(deps, client, "session unavailable")
		return
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":   dbmodels.StatusCompleted,
		"ended_at": &now,
	}
	if placements := placementsJSON(game); placements != nil {
		updates["placements"] = placements
	}
	if err := deps.Database.Model(&dbmodels.GameSession{}).
		Where("id = ?", client.SessionID).
		Updates(updates).Error; err != nil {
		log.Printf("[SESSION] failed to complete session %s: %v", client.SessionID, err)
	}

	if _, err := deps.Sync.PersistFinish(ctx, game); err != nil {
		log.Printf("[SESSION] failed to push finish event for %s: %v", client.SessionID, err)
	}
	log.Printf("[SESSION] session %s completed", client.SessionID)
}

func placementsJSON(game *engine.Game) *string {
	byPlayer := make(map[string][]int, len(game.State.Players))
	for _, p := range game.State.Players {
		byPlayer[p.ID] = p.Placements
	}
	data, err := json.Marshal(byPlayer)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

func sendError(deps SocketDeps, client *websocket.Client, message string) {
	data, err := json.Marshal(map[string]string{
		"type":    "ERROR",
		"message": message,
	})
	if err != nil {
		return
	}
	deps.Manager.SendTo(client, data)
}
