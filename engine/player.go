package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"thirteen-platform/backend/models"
)

// Player is a seat entity. Human and bot seats share the type; serialization
// branches on IsBot to mask concealed hands in the public view.
type Player struct {
	SeatIndex   int
	ID          string
	Name        string
	IsBot       bool
	Hand        []models.Card
	Placements  []int
	Score       int
	BombsPlayed int
}

// NewPlayer creates a fresh seat with a generated identity.
func NewPlayer(seat int, isBot bool) *Player {
	name := "Human"
	if isBot {
		name = botName(seat)
	}
	return &Player{
		SeatIndex: seat,
		ID:        uuid.New().String(),
		Name:      name,
		IsBot:     isBot,
	}
}

func botName(seat int) string {
	return fmt.Sprintf("BOT_%d", seat)
}

// SortHand orders the hand by ascending strength for deterministic
// candidate generation and a stable client display.
func (p *Player) SortHand() {
	sort.Slice(p.Hand, func(i, j int) bool {
		return p.Hand[i].Strength() < p.Hand[j].Strength()
	})
}

// RemoveCards takes the given cards out of the hand. If any card is not
// present the hand is left untouched and false is returned: that signals a
// corrupted client/server state mismatch, fatal to the request.
func (p *Player) RemoveCards(cards []models.Card) bool {
	next := make([]models.Card, len(p.Hand))
	copy(next, p.Hand)
	for _, want := range cards {
		found := -1
		for i, held := range next {
			if held == want {
				found = i
				break
			}
		}
		if found < 0 {
			return false
		}
		next = append(next[:found], next[found+1:]...)
	}
	p.Hand = next
	return true
}

// HasCard reports whether the hand holds the exact card.
func (p *Player) HasCard(card models.Card) bool {
	for _, held := range p.Hand {
		if held == card {
			return true
		}
	}
	return false
}

// PlayerState is the serialized form of a seat. In the public view a bot's
// Hand is omitted and only HandCount is exposed.
type PlayerState struct {
	ID          string        `json:"id"`
	Seat        int           `json:"player"`
	Name        string        `json:"name"`
	IsBot       bool          `json:"isBot"`
	Hand        []models.Card `json:"hand,omitempty"`
	HandCount   int           `json:"handCount"`
	Placements  []int         `json:"placements"`
	Score       int           `json:"score"`
	BombsPlayed int           `json:"bombsPlayed"`
}

func (p *Player) toState(maskBotHand bool) PlayerState {
	s := PlayerState{
		ID:          p.ID,
		Seat:        p.SeatIndex,
		Name:        p.Name,
		IsBot:       p.IsBot,
		HandCount:   len(p.Hand),
		Placements:  append([]int(nil), p.Placements...),
		Score:       p.Score,
		BombsPlayed: p.BombsPlayed,
	}
	if !maskBotHand || !p.IsBot {
		s.Hand = append([]models.Card(nil), p.Hand...)
	}
	return s
}

func playerFromState(s PlayerState) *Player {
	return &Player{
		SeatIndex:   s.Seat,
		ID:          s.ID,
		Name:        s.Name,
		IsBot:       s.IsBot,
		Hand:        append([]models.Card(nil), s.Hand...),
		Placements:  append([]int(nil), s.Placements...),
		Score:       s.Score,
		BombsPlayed: s.BombsPlayed,
	}
}
