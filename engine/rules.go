package engine

import (
	"fmt"
	"sort"

	"thirteen-platform/backend/models"
)

// Rules enumerates every play a seat may legally make against the current
// pile. It is a view over the game aggregate and holds no state of its own.
type Rules struct {
	game *Game
}

// Rules returns the rules view for this game.
func (g *Game) Rules() *Rules {
	return &Rules{game: g}
}

// ValidPlays returns every legal play for the seat given the table's current
// play type and last play. A seat that has passed this trick gets nothing:
// it cannot re-enter until a new lead resets the pile. When a last play
// exists, only candidates that strictly outrank it survive.
func (r *Rules) ValidPlays(seat int) ([]models.Play, error) {
	s := r.game.State
	if seat < 0 || seat >= len(s.Players) {
		return nil, fmt.Errorf("%w: %d", ErrSeatOutOfRange, seat)
	}
	if s.PassedPlayers[seat] {
		return nil, nil
	}

	hand := s.Players[seat].Hand
	current := s.CurrentPlayType
	last := s.LastPlay

	if !canPlay(hand, current, last) {
		return nil, nil
	}

	var plays []models.Play
	switch current {
	case models.PlayOpen:
		if r.game.IsFirstGameTurn() {
			plays = determineFirstTurnOpen(hand)
		} else {
			plays = determineOpen(hand)
		}
	case models.PlaySingle:
		plays = determineSingles(hand)
	case models.PlayPair:
		plays = determineOfAKind(hand, 2, models.PlayPair)
	case models.PlayTriplet:
		plays = determineOfAKind(hand, 3, models.PlayTriplet)
	case models.PlayQuartet:
		plays = determineOfAKind(hand, 4, models.PlayQuartet)
	case models.PlaySequence:
		length := 0
		if last != nil {
			length = len(last.Cards)
		}
		plays = determineSequences(hand, length)
	case models.PlayDoubleSequence:
		count := 0
		if last != nil {
			count = len(last.Cards)
		}
		plays = determineDoubleSequences(hand, count)
	default:
		return nil, fmt.Errorf("%w: unknown play type %q", ErrCorruptState, current)
	}

	if last != nil && current != models.PlayOpen {
		_, lastStrength, ok := Classify(last.Cards)
		if !ok {
			return nil, fmt.Errorf("%w: stored last play does not classify", ErrCorruptState)
		}
		kept := plays[:0]
		for _, play := range plays {
			if _, strength, ok := Classify(play.Cards); ok && strength > lastStrength {
				kept = append(kept, play)
			}
		}
		plays = kept
	}
	return plays, nil
}

// canPlay is the cheap shape-feasibility gate run before any enumeration.
func canPlay(hand []models.Card, current models.PlayType, last *models.Play) bool {
	switch current {
	case models.PlayOpen:
		return true
	case models.PlaySingle:
		return len(hand) >= 1
	case models.PlayPair:
		return len(hand) >= 2
	case models.PlayTriplet:
		return len(hand) >= 3
	case models.PlayQuartet:
		return len(hand) >= 4
	case models.PlaySequence, models.PlayDoubleSequence:
		// no combination could possibly match the required length otherwise
		return last != nil && len(hand) >= len(last.Cards)
	}
	return false
}

func determineSingles(hand []models.Card) []models.Play {
	plays := make([]models.Play, 0, len(hand))
	for _, c := range sortedByStrength(hand) {
		plays = append(plays, models.Play{Cards: []models.Card{c}, PlayType: models.PlaySingle})
	}
	return plays
}

// determineOfAKind returns every same-rank combination of exactly size cards,
// one play per k-subset of each rank bucket.
func determineOfAKind(hand []models.Card, size int, playType models.PlayType) []models.Play {
	var plays []models.Play
	for _, bucket := range rankBuckets(hand) {
		if len(bucket) < size {
			continue
		}
		for _, combo := range combinations(bucket, size) {
			plays = append(plays, models.Play{Cards: combo, PlayType: playType})
		}
	}
	return plays
}

// determineSequences builds runs of consecutive ranks, choosing the single
// weakest-suited card per rank as the deterministic representative. With
// length > 0 only runs of exactly that length are produced; otherwise every
// run of three or more ranks is.
func determineSequences(hand []models.Card, length int) []models.Play {
	reps := weakestPerRank(hand, 1)
	return runsToPlays(reps, 1, length, models.PlaySequence)
}

// determineDoubleSequences builds runs of consecutive ranks where the hand
// holds at least two cards of each rank, taking the two weakest per rank.
// cardCount, when > 0, fixes the total number of cards.
func determineDoubleSequences(hand []models.Card, cardCount int) []models.Play {
	reps := weakestPerRank(hand, 2)
	length := 0
	if cardCount > 0 {
		if cardCount%2 != 0 {
			return nil
		}
		length = cardCount / 2
	}
	return runsToPlays(reps, 2, length, models.PlayDoubleSequence)
}

// determineOpen returns the union of every legal combination in hand; any
// shape may lead an open pile.
func determineOpen(hand []models.Card) []models.Play {
	var plays []models.Play
	plays = append(plays, determineSingles(hand)...)
	plays = append(plays, determineOfAKind(hand, 2, models.PlayPair)...)
	plays = append(plays, determineOfAKind(hand, 3, models.PlayTriplet)...)
	plays = append(plays, determineOfAKind(hand, 4, models.PlayQuartet)...)
	plays = append(plays, determineSequences(hand, 0)...)
	plays = append(plays, determineDoubleSequences(hand, 0)...)
	return plays
}

// determineFirstTurnOpen constrains the opening lead of the game to
// combinations that contain the 3D card.
func determineFirstTurnOpen(hand []models.Card) []models.Play {
	threeD := models.Card{Suit: models.Diamonds, Rank: models.Three}
	all := determineOpen(hand)
	kept := all[:0]
	for _, play := range all {
		for _, c := range play.Cards {
			if c == threeD {
				kept = append(kept, play)
				break
			}
		}
	}
	return kept
}

// rankBuckets groups the hand by rank, buckets and their contents ordered by
// ascending strength.
func rankBuckets(hand []models.Card) [][]models.Card {
	byRank := make(map[models.Rank][]models.Card)
	for _, c := range sortedByStrength(hand) {
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	ranks := make([]models.Rank, 0, len(byRank))
	for rank := range byRank {
		ranks = append(ranks, rank)
	}
	sort.Slice(ranks, func(i, j int) bool {
		return models.RankIndex(ranks[i]) < models.RankIndex(ranks[j])
	})
	buckets := make([][]models.Card, 0, len(ranks))
	for _, rank := range ranks {
		buckets = append(buckets, byRank[rank])
	}
	return buckets
}

// weakestPerRank maps rank index -> the `take` weakest-suited cards of that
// rank, for ranks holding at least `take` cards.
func weakestPerRank(hand []models.Card, take int) map[int][]models.Card {
	reps := make(map[int][]models.Card)
	for _, bucket := range rankBuckets(hand) {
		if len(bucket) < take {
			continue
		}
		reps[models.RankIndex(bucket[0].Rank)] = bucket[:take]
	}
	return reps
}

// runsToPlays emits one play per run of consecutive rank indices present in
// reps. perRank cards are taken per rank. length fixes the run length in
// ranks; zero means every length from three up to the maximal run.
func runsToPlays(reps map[int][]models.Card, perRank, length int, playType models.PlayType) []models.Play {
	var plays []models.Play
	for start := 0; start < len(models.RankOrder); start++ {
		if _, ok := reps[start]; !ok {
			continue
		}
		if _, ok := reps[start-1]; ok {
			continue // not the head of a run
		}
		runLen := 0
		for _, ok := reps[start+runLen]; ok; _, ok = reps[start+runLen] {
			runLen++
		}
		for from := start; from < start+runLen; from++ {
			for l := 3; from+l <= start+runLen; l++ {
				if length > 0 && l != length {
					continue
				}
				cards := make([]models.Card, 0, l*perRank)
				for idx := from; idx < from+l; idx++ {
					cards = append(cards, reps[idx]...)
				}
				plays = append(plays, models.Play{Cards: cards, PlayType: playType})
			}
		}
	}
	return plays
}

// combinations returns every k-subset of cards, preserving order.
func combinations(cards []models.Card, k int) [][]models.Card {
	if k <= 0 || k > len(cards) {
		return nil
	}
	var out [][]models.Card
	combo := make([]models.Card, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			out = append(out, append([]models.Card(nil), combo...))
			return
		}
		for i := start; i <= len(cards)-(k-depth); i++ {
			combo[depth] = cards[i]
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}

func sortedByStrength(cards []models.Card) []models.Card {
	out := append([]models.Card(nil), cards...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Strength() < out[j].Strength()
	})
	return out
}
