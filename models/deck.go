package models

import (
	"math/rand"
	"time"
)

// Deck holds deckCount x 52 cards in dealing order.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck builds and shuffles a deck according to cfg.
func NewDeck(cfg GameConfig) *Deck {
	return newDeck(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSeededDeck builds a deck with a fixed rng seed for reproducible games.
func NewSeededDeck(cfg GameConfig, seed int64) *Deck {
	return newDeck(cfg, rand.New(rand.NewSource(seed)))
}

func newDeck(cfg GameConfig, rng *rand.Rand) *Deck {
	deckCount := cfg.DeckCount
	if deckCount < 1 {
		deckCount = 1
	}
	d := &Deck{
		cards: make([]Card, 0, deckCount*52),
		rng:   rng,
	}
	for i := 0; i < deckCount; i++ {
		for _, suit := range SuitOrder {
			for _, rank := range RankOrder {
				d.cards = append(d.cards, Card{Suit: suit, Rank: rank})
			}
		}
	}
	d.Shuffle(cfg.TimesShuffled)
	return d
}

// Shuffle permutes the deck. At least one pass always runs, even when the
// configured count is zero or negative.
func (d *Deck) Shuffle(times int) {
	if times < 1 {
		times = 1
	}
	for i := 0; i < times; i++ {
		d.rng.Shuffle(len(d.cards), func(a, b int) {
			d.cards[a], d.cards[b] = d.cards[b], d.cards[a]
		})
	}
}

// Deal removes floor(len/players) cards per seat, round-robin from the top,
// and returns one hand per seat. The remainder stays in the deck.
func (d *Deck) Deal(players int) [][]Card {
	hands := make([][]Card, players)
	if players < 1 {
		return hands
	}
	perPlayer := len(d.cards) / players
	for i := range hands {
		hands[i] = make([]Card, 0, perPlayer)
	}
	for i := 0; i < perPlayer; i++ {
		for p := 0; p < players; p++ {
			last := len(d.cards) - 1
			hands[p] = append(hands[p], d.cards[last])
			d.cards = d.cards[:last]
		}
	}
	return hands
}

// Cards exposes the remaining cards, top of the deck last.
func (d *Deck) Cards() []Card {
	return d.cards
}

// Remaining reports how many cards are still undealt.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
