package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	"thirteen-platform/backend/engine"
	"thirteen-platform/backend/models"
)

// Publisher persists a mutation and broadcasts the resulting state.
type Publisher interface {
	PersistAndBroadcast(ctx context.Context, game *engine.Game, play *models.Play) (int64, error)
}

// Runner drives bot seats between human actions. The policy is greedy:
// among the legal plays a bot always picks the one with the highest
// strongest card, and passes only when it has no legal play.
type Runner struct {
	publisher Publisher
	delay     time.Duration
}

// NewRunner creates a runner pacing bot actions by delay.
func NewRunner(publisher Publisher, delay time.Duration) *Runner {
	return &Runner{publisher: publisher, delay: delay}
}

// RunUntilHuman advances the game one seat at a time until the current seat
// belongs to a human who can still act this trick, persisting every step.
// A human seat that has already passed is auto-passed so the trick keeps
// moving.
func (r *Runner) RunUntilHuman(ctx context.Context, game *engine.Game) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		seat := game.CurrentSeat()
		player := game.State.Players[seat]

		if !player.IsBot {
			if !game.State.PassedPlayers[seat] {
				return nil
			}
			// Locked out until a new lead starts.
			if err := game.ApplyPass(seat); err != nil {
				return fmt.Errorf("auto-pass seat %d: %w", seat, err)
			}
			if _, err := r.publisher.PersistAndBroadcast(ctx, game, nil); err != nil {
				return err
			}
			continue
		}

		if r.delay > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		play, err := r.decide(game, seat)
		if err != nil {
			return err
		}
		if play == nil {
			if err := game.ApplyPass(seat); err != nil {
				return fmt.Errorf("bot pass seat %d: %w", seat, err)
			}
			if _, err := r.publisher.PersistAndBroadcast(ctx, game, nil); err != nil {
				return err
			}
			continue
		}

		if err := game.ApplyPlay(seat, *play); err != nil {
			return fmt.Errorf("bot play seat %d: %w", seat, err)
		}
		log.Printf("[BOT] seat %d played %s (%d cards)", seat, play.PlayType, len(play.Cards))
		if _, err := r.publisher.PersistAndBroadcast(ctx, game, play); err != nil {
			return err
		}
	}
}

// decide picks the candidate whose strongest card is highest, nil for pass.
func (r *Runner) decide(game *engine.Game, seat int) (*models.Play, error) {
	plays, err := game.Rules().ValidPlays(seat)
	if err != nil {
		return nil, err
	}
	if len(plays) == 0 {
		return nil, nil
	}

	best := 0
	bestStrength := -1
	for i, play := range plays {
		strength := -1
		for _, card := range play.Cards {
			if s := card.Strength(); s > strength {
				strength = s
			}
		}
		if strength > bestStrength {
			bestStrength = strength
			best = i
		}
	}
	return &plays[best], nil
}
