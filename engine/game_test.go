package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"thirteen-platform/backend/models"
)

func seededGame(t *testing.T, seed int64) *Game {
	t.Helper()
	g, err := NewSeededGame(models.DefaultGameConfig, seed)
	if err != nil {
		t.Fatalf("NewSeededGame failed: %v", err)
	}
	return g
}

func TestNewGameSetup(t *testing.T) {
	g := seededGame(t, 1)

	if len(g.State.Players) != 4 {
		t.Fatalf("Expected 4 players, got %d", len(g.State.Players))
	}
	if g.State.Players[0].IsBot {
		t.Error("Expected seat 0 to be human")
	}
	for i := 1; i < 4; i++ {
		if !g.State.Players[i].IsBot {
			t.Errorf("Expected seat %d to be a bot", i)
		}
	}
	for i, p := range g.State.Players {
		if len(p.Hand) != 13 {
			t.Errorf("Expected 13 cards at seat %d, got %d", i, len(p.Hand))
		}
	}
	if g.State.TurnNumber != 1 || g.State.HandNumber != 1 {
		t.Errorf("Expected turn 1 hand 1, got turn %d hand %d", g.State.TurnNumber, g.State.HandNumber)
	}
	if !g.IsFirstGameTurn() {
		t.Error("Expected first game turn")
	}
	if g.State.CurrentLeader != g.State.TurnOrder[0] {
		t.Errorf("Expected leader %d, got %d", g.State.TurnOrder[0], g.State.CurrentLeader)
	}
}

func TestTurnOrderStartsAtThreeOfDiamonds(t *testing.T) {
	g := seededGame(t, 2)

	threeD := models.Card{Suit: models.Diamonds, Rank: models.Three}
	holder := -1
	for i, p := range g.State.Players {
		if p.HasCard(threeD) {
			holder = i
			break
		}
	}
	if holder < 0 {
		t.Fatal("No seat holds 3D with a single deck")
	}
	if g.State.TurnOrder[0] != holder {
		t.Errorf("Expected turn order to start at seat %d, got %d", holder, g.State.TurnOrder[0])
	}
	for i := 1; i < len(g.State.TurnOrder); i++ {
		expected := (holder + i) % 4
		if g.State.TurnOrder[i] != expected {
			t.Errorf("Expected seat %d at position %d, got %d", expected, i, g.State.TurnOrder[i])
		}
	}
}

func TestApplyPlayMutatesState(t *testing.T) {
	g := seededGame(t, 3)
	seat := g.CurrentSeat()

	plays, err := g.Rules().ValidPlays(seat)
	if err != nil {
		t.Fatalf("ValidPlays failed: %v", err)
	}
	if len(plays) == 0 {
		t.Fatal("Expected opening plays")
	}
	play := plays[0]
	handBefore := len(g.State.Players[seat].Hand)

	if err := g.ApplyPlay(seat, play); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}

	if got := len(g.State.Players[seat].Hand); got != handBefore-len(play.Cards) {
		t.Errorf("Expected hand to shrink by %d, got %d -> %d", len(play.Cards), handBefore, got)
	}
	if g.State.CurrentPlayType != play.PlayType {
		t.Errorf("Expected pile type %s, got %s", play.PlayType, g.State.CurrentPlayType)
	}
	if len(g.State.CurrentPlayPile) != len(play.Cards) {
		t.Errorf("Expected %d cards in pile, got %d", len(play.Cards), len(g.State.CurrentPlayPile))
	}
	if g.State.TurnNumber != 2 {
		t.Errorf("Expected turn number 2, got %d", g.State.TurnNumber)
	}
	if g.State.LastPlay == nil || g.State.LastPlaySeat != seat {
		t.Error("Expected last play to be recorded")
	}
	if g.CurrentSeat() == seat {
		t.Error("Expected turn to advance past the acting seat")
	}
	if g.IsFirstGameTurn() {
		t.Error("Expected first game turn to be over")
	}
}

func TestApplyPlayCardNotInHand(t *testing.T) {
	g := seededGame(t, 4)
	seat := g.CurrentSeat()
	handBefore := append([]models.Card(nil), g.State.Players[seat].Hand...)

	// A specific card the seat cannot hold twice.
	foreign := g.State.Players[(seat+1)%4].Hand[0]
	err := g.ApplyPlay(seat, models.Play{
		Cards:    []models.Card{foreign},
		PlayType: models.PlaySingle,
	})
	if !errors.Is(err, ErrCardNotInHand) {
		t.Fatalf("Expected ErrCardNotInHand, got %v", err)
	}
	if len(g.State.Players[seat].Hand) != len(handBefore) {
		t.Error("Expected hand untouched after rejected play")
	}
	if g.State.TurnNumber != 1 {
		t.Errorf("Expected turn number unchanged, got %d", g.State.TurnNumber)
	}
}

func TestApplyPassEstablishesNewLead(t *testing.T) {
	g := seededGame(t, 5)
	leader := g.CurrentSeat()

	plays, err := g.Rules().ValidPlays(leader)
	if err != nil || len(plays) == 0 {
		t.Fatalf("Expected opening plays, err=%v", err)
	}
	if err := g.ApplyPlay(leader, plays[0]); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}

	// Everyone else passes.
	for i := 0; i < 3; i++ {
		seat := g.CurrentSeat()
		if err := g.ApplyPass(seat); err != nil {
			t.Fatalf("ApplyPass failed for seat %d: %v", seat, err)
		}
	}

	if g.State.CurrentPlayType != models.PlayOpen {
		t.Errorf("Expected open pile after all-pass, got %s", g.State.CurrentPlayType)
	}
	if len(g.State.PassedPlayers) != 0 {
		t.Errorf("Expected passed set cleared, got %d entries", len(g.State.PassedPlayers))
	}
	if g.State.CurrentPlayPile != nil {
		t.Error("Expected pile cleared")
	}
	if g.State.LastPlay != nil {
		t.Error("Expected last play cleared")
	}
	if g.State.CurrentLeader != leader {
		t.Errorf("Expected leadership back at seat %d, got %d", leader, g.State.CurrentLeader)
	}
	if g.CurrentSeat() != leader {
		t.Errorf("Expected seat %d to lead the new trick, got %d", leader, g.CurrentSeat())
	}
}

func TestPassedSeatStaysLockedOut(t *testing.T) {
	g := seededGame(t, 6)
	leader := g.CurrentSeat()

	plays, _ := g.Rules().ValidPlays(leader)
	if err := g.ApplyPlay(leader, plays[0]); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}

	passer := g.CurrentSeat()
	if err := g.ApplyPass(passer); err != nil {
		t.Fatalf("ApplyPass failed: %v", err)
	}

	locked, err := g.Rules().ValidPlays(passer)
	if err != nil {
		t.Fatalf("ValidPlays failed: %v", err)
	}
	if locked != nil {
		t.Errorf("Expected passed seat locked out, got %d plays", len(locked))
	}
}

func TestGoOutRecordsPlacement(t *testing.T) {
	g := ruleGame(t, [][]models.Card{
		{card(t, models.Hearts, models.Ace)},
		{card(t, models.Clubs, models.Six), card(t, models.Clubs, models.Seven)},
		{card(t, models.Diamonds, models.Six), card(t, models.Diamonds, models.Seven)},
	}, models.PlayOpen, nil)

	if err := g.ApplyPlay(0, models.Play{
		Cards:    []models.Card{card(t, models.Hearts, models.Ace)},
		PlayType: models.PlaySingle,
	}); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}

	if len(g.State.PlacementsThisHand) != 1 || g.State.PlacementsThisHand[0] != 0 {
		t.Errorf("Expected seat 0 placed first, got %v", g.State.PlacementsThisHand)
	}
	if len(g.State.Players[0].Placements) != 1 || g.State.Players[0].Placements[0] != 1 {
		t.Errorf("Expected placement rank 1, got %v", g.State.Players[0].Placements)
	}
	for _, seat := range g.State.TurnOrder {
		if seat == 0 {
			t.Error("Expected seat 0 removed from turn order")
		}
	}
	if len(g.State.TurnOrder) != 2 {
		t.Errorf("Expected 2 seats remaining, got %d", len(g.State.TurnOrder))
	}
}

func TestLastSeatAutoFinishStartsNewHand(t *testing.T) {
	g := ruleGame(t, [][]models.Card{
		{card(t, models.Hearts, models.Ace)},
		{card(t, models.Clubs, models.Six), card(t, models.Clubs, models.Seven)},
	}, models.PlayOpen, nil)
	handBefore := g.State.HandNumber

	if err := g.ApplyPlay(0, models.Play{
		Cards:    []models.Card{card(t, models.Hearts, models.Ace)},
		PlayType: models.PlaySingle,
	}); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}

	if g.State.HandNumber != handBefore+1 {
		t.Errorf("Expected hand number %d, got %d", handBefore+1, g.State.HandNumber)
	}
	if len(g.State.Players[1].Placements) != 1 || g.State.Players[1].Placements[0] != 2 {
		t.Errorf("Expected remaining seat placed second, got %v", g.State.Players[1].Placements)
	}
	if len(g.State.TurnOrder) != 2 {
		t.Errorf("Expected full rotation after redeal, got %d seats", len(g.State.TurnOrder))
	}
	if g.State.CurrentPlayType != models.PlayOpen {
		t.Errorf("Expected open pile in new hand, got %s", g.State.CurrentPlayType)
	}
	if g.State.PlacementsThisHand != nil {
		t.Errorf("Expected placements reset, got %v", g.State.PlacementsThisHand)
	}
	for i, p := range g.State.Players {
		if len(p.Hand) == 0 {
			t.Errorf("Expected seat %d redealt, hand empty", i)
		}
	}
}

func TestPublicSnapshotMasksBotHands(t *testing.T) {
	g := seededGame(t, 7)
	snap := g.ToPublic()

	for _, ps := range snap.PlayersState {
		if ps.IsBot {
			if ps.Hand != nil {
				t.Errorf("Expected bot hand masked at seat %d", ps.Seat)
			}
		} else {
			if len(ps.Hand) != 13 {
				t.Errorf("Expected human hand visible, got %d cards", len(ps.Hand))
			}
		}
		if ps.HandCount != 13 {
			t.Errorf("Expected hand count 13 at seat %d, got %d", ps.Seat, ps.HandCount)
		}
	}
}

func TestRehydrateRoundTrip(t *testing.T) {
	g := seededGame(t, 8)
	seat := g.CurrentSeat()
	plays, _ := g.Rules().ValidPlays(seat)
	if err := g.ApplyPlay(seat, plays[0]); err != nil {
		t.Fatalf("ApplyPlay failed: %v", err)
	}
	if err := g.ApplyPass(g.CurrentSeat()); err != nil {
		t.Fatalf("ApplyPass failed: %v", err)
	}

	original, err := json.Marshal(g.ToFull())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(original, &snap); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	restored, err := Rehydrate(snap)
	if err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}

	roundTripped, err := json.Marshal(restored.ToFull())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(original) != string(roundTripped) {
		t.Errorf("Snapshot changed across rehydration:\n%s\nvs\n%s", original, roundTripped)
	}
}

func TestRehydrateRejectsCorruptSnapshots(t *testing.T) {
	g := seededGame(t, 9)
	base := g.ToFull()

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"no players", func(s *Snapshot) { s.PlayersState = nil }},
		{"player count mismatch", func(s *Snapshot) { s.Config.PlayersCount = 3 }},
		{"turn index out of range", func(s *Snapshot) { s.CurrentTurnIndex = 9 }},
		{"unknown play type", func(s *Snapshot) { s.CurrentPlayType = "flush" }},
		{"seat misordered", func(s *Snapshot) {
			s.PlayersState[0].Seat, s.PlayersState[1].Seat = 1, 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := base
			snap.PlayersState = append([]PlayerState(nil), base.PlayersState...)
			tt.mutate(&snap)
			if _, err := Rehydrate(snap); !errors.Is(err, ErrCorruptState) {
				t.Errorf("Expected ErrCorruptState, got %v", err)
			}
		})
	}
}
