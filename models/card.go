package models

import (
	"encoding/json"
	"fmt"
)

type Suit string
type Rank string

// Suit order is Diamonds (weakest) to Spades (strongest).
const (
	Diamonds Suit = "D"
	Clubs    Suit = "C"
	Hearts   Suit = "H"
	Spades   Suit = "S"
)

// Rank order is 3 (low) .. 2 (high).
const (
	Three Rank = "3"
	Four  Rank = "4"
	Five  Rank = "5"
	Six   Rank = "6"
	Seven Rank = "7"
	Eight Rank = "8"
	Nine  Rank = "9"
	Ten   Rank = "10"
	Jack  Rank = "J"
	Queen Rank = "Q"
	King  Rank = "K"
	Ace   Rank = "A"
	Two   Rank = "2"
)

// SuitOrder and RankOrder define the total order used for card strength.
var (
	SuitOrder = []Suit{Diamonds, Clubs, Hearts, Spades}
	RankOrder = []Rank{Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace, Two}
)

var suitNames = map[Suit]string{
	Diamonds: "Diamonds",
	Clubs:    "Clubs",
	Hearts:   "Hearts",
	Spades:   "Spades",
}

var rankNames = map[Rank]string{
	Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7",
	Eight: "8", Nine: "9", Ten: "10", Jack: "Jack", Queen: "Queen",
	King: "King", Ace: "Ace", Two: "2",
}

// Card is an immutable playing card value.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard validates the suit and rank against the fixed enumerations.
func NewCard(suit Suit, rank Rank) (Card, error) {
	if _, ok := suitNames[suit]; !ok {
		return Card{}, fmt.Errorf("unknown suit %q", suit)
	}
	if _, ok := rankNames[rank]; !ok {
		return Card{}, fmt.Errorf("unknown rank %q", rank)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// RankIndex returns the 0-based position of r in RankOrder, or -1.
func RankIndex(r Rank) int {
	for i, v := range RankOrder {
		if v == r {
			return i
		}
	}
	return -1
}

// SuitIndex returns the 0-based position of s in SuitOrder, or -1.
func SuitIndex(s Suit) int {
	for i, v := range SuitOrder {
		if v == s {
			return i
		}
	}
	return -1
}

// Strength maps the card onto the dense 0..51 total order:
// rank blocks of four, suit breaking ties inside each block.
// 3D is 0, 2S is 51. No two cards share a strength.
func (c Card) Strength() int {
	return RankIndex(c.Rank)*4 + SuitIndex(c.Suit)
}

// Valid reports whether both fields belong to the enumerations.
func (c Card) Valid() bool {
	_, sok := suitNames[c.Suit]
	_, rok := rankNames[c.Rank]
	return sok && rok
}

// String returns the compact code used by the client assets, e.g. "JD" or "10S".
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// SuitName returns the long suit name, e.g. "Diamonds".
func (c Card) SuitName() string {
	return suitNames[c.Suit]
}

// RankName returns the long rank name, e.g. "Jack".
func (c Card) RankName() string {
	return rankNames[c.Rank]
}

// FullName returns e.g. "Jack of Diamonds".
func (c Card) FullName() string {
	return fmt.Sprintf("%s of %s", c.RankName(), c.SuitName())
}

// cardJSON is the wire shape expected by clients. Snapshot decoding only
// needs suit and rank; the rest is derived.
type cardJSON struct {
	Rank            Rank   `json:"rank"`
	RankString      string `json:"rankString"`
	Suit            Suit   `json:"suit"`
	SuitString      string `json:"suitString"`
	FullName        string `json:"fullName"`
	ComparableValue [2]int `json:"comparableValue"`
	CardURL         string `json:"cardUrl"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{
		Rank:            c.Rank,
		RankString:      c.RankName(),
		Suit:            c.Suit,
		SuitString:      c.SuitName(),
		FullName:        c.FullName(),
		ComparableValue: [2]int{RankIndex(c.Rank) + 1, SuitIndex(c.Suit) + 1},
		CardURL:         c.String(),
	})
}

func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	card, err := NewCard(raw.Suit, raw.Rank)
	if err != nil {
		return err
	}
	*c = card
	return nil
}
