package engine

import (
	"sort"

	"thirteen-platform/backend/models"
)

// Classify maps a set of cards to its play type and a comparable strength.
// Strength is the maximum card strength of the set, so "A beats B" reduces
// to an integer comparison once both sides classify to the same type.
// Returns ok=false when the cards form no legal combination shape.
//
// Double sequences are checked before sequences: six or more cards holding
// exactly two of each rank would otherwise pass the sequence check after
// deduplication never happens.
func Classify(cards []models.Card) (models.PlayType, int, bool) {
	for _, fn := range classifiers {
		if t, strength, ok := fn(cards); ok {
			return t, strength, true
		}
	}
	return "", 0, false
}

type classifierFunc func([]models.Card) (models.PlayType, int, bool)

var classifiers = []classifierFunc{
	classifySingle,
	classifyPair,
	classifyTriplet,
	classifyQuartet,
	classifyDoubleSequence, // must run before classifySequence
	classifySequence,
}

func classifySingle(cards []models.Card) (models.PlayType, int, bool) {
	if len(cards) != 1 {
		return "", 0, false
	}
	return models.PlaySingle, cards[0].Strength(), true
}

func classifyPair(cards []models.Card) (models.PlayType, int, bool) {
	if len(cards) != 2 || cards[0].Rank != cards[1].Rank {
		return "", 0, false
	}
	return models.PlayPair, maxStrength(cards), true
}

func classifyTriplet(cards []models.Card) (models.PlayType, int, bool) {
	if len(cards) != 3 || !allSameRank(cards) {
		return "", 0, false
	}
	return models.PlayTriplet, maxStrength(cards), true
}

func classifyQuartet(cards []models.Card) (models.PlayType, int, bool) {
	if len(cards) != 4 || !allSameRank(cards) {
		return "", 0, false
	}
	return models.PlayQuartet, maxStrength(cards), true
}

// classifyDoubleSequence matches >=6 cards forming exactly two cards per
// rank across a run of consecutive ranks.
func classifyDoubleSequence(cards []models.Card) (models.PlayType, int, bool) {
	if len(cards) < 6 || len(cards)%2 != 0 {
		return "", 0, false
	}
	byRank := make(map[models.Rank][]models.Card)
	for _, c := range cards {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	idxs := make([]int, 0, len(byRank))
	for rank, group := range byRank {
		if len(group) != 2 {
			return "", 0, false
		}
		idxs = append(idxs, models.RankIndex(rank))
	}
	if !consecutive(idxs) {
		return "", 0, false
	}
	return models.PlayDoubleSequence, maxStrength(cards), true
}

// classifySequence matches >=3 cards of distinct, rank-consecutive values.
func classifySequence(cards []models.Card) (models.PlayType, int, bool) {
	if len(cards) < 3 {
		return "", 0, false
	}
	idxs := make([]int, len(cards))
	for i, c := range cards {
		idxs[i] = models.RankIndex(c.Rank)
	}
	sort.Ints(idxs)
	for i := 1; i < len(idxs); i++ {
		if idxs[i] != idxs[i-1]+1 {
			return "", 0, false
		}
	}
	return models.PlaySequence, maxStrength(cards), true
}

func allSameRank(cards []models.Card) bool {
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards {
		if c.Rank != cards[0].Rank {
			return false
		}
	}
	return true
}

func maxStrength(cards []models.Card) int {
	max := -1
	for _, c := range cards {
		if s := c.Strength(); s > max {
			max = s
		}
	}
	return max
}

func consecutive(idxs []int) bool {
	sort.Ints(idxs)
	for i := 1; i < len(idxs); i++ {
		if idxs[i] != idxs[i-1]+1 {
			return false
		}
	}
	return true
}
