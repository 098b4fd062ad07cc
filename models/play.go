package models

// PlayType identifies the shape of a combination on the table.
type PlayType string

const (
	// PlayOpen is a pseudo-type: the pile is empty and any combination may lead.
	PlayOpen           PlayType = "open"
	PlaySingle         PlayType = "single"
	PlayPair           PlayType = "pair"
	PlayTriplet        PlayType = "triplet"
	PlayQuartet        PlayType = "quartet"
	PlaySequence       PlayType = "sequence"
	PlayDoubleSequence PlayType = "double_sequence"
)

// ValidPlayType reports whether t is a known play type (PlayOpen included).
func ValidPlayType(t PlayType) bool {
	switch t {
	case PlayOpen, PlaySingle, PlayPair, PlayTriplet, PlayQuartet, PlaySequence, PlayDoubleSequence:
		return true
	}
	return false
}

// Play is a concrete combination of cards placed on the pile.
type Play struct {
	Cards    []Card   `json:"cards"`
	PlayType PlayType `json:"playType"`
}

// GameConfig drives deck construction and seating.
type GameConfig struct {
	TimesShuffled int `json:"times_shuffled"`
	DeckCount     int `json:"deck_count"`
	PlayersCount  int `json:"players_count"`
}

// DefaultGameConfig mirrors the standard four-seat single-deck game.
var DefaultGameConfig = GameConfig{
	TimesShuffled: 5,
	DeckCount:     1,
	PlayersCount:  4,
}
