package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"thirteen-platform/backend/models"
)

var (
	// ErrSeatOutOfRange is a validation failure: the seat index does not exist.
	ErrSeatOutOfRange = errors.New("seat index out of range")
	// ErrCardNotInHand is an integrity failure: the acting seat does not hold
	// every card of the submitted play. Nothing is mutated when it occurs.
	ErrCardNotInHand = errors.New("card not present in hand")
	// ErrCorruptState indicates a malformed stored snapshot.
	ErrCorruptState = errors.New("corrupt game state")
)

// GameState is the mutable aggregate for one session.
type GameState struct {
	Players            []*Player
	TurnOrder          []int
	TurnIndex          int
	TurnNumber         int
	HandNumber         int
	CurrentLeader      int // seat index, -1 when absent
	CurrentPlayType    models.PlayType
	CurrentPlayPile    []models.Card
	PassedPlayers      map[int]bool
	PlacementsThisHand []int
	LastPlay           *models.Play
	LastPlaySeat       int // seat index, -1 when absent
}

// Game bundles identity, config and state. The deck is ephemeral: it exists
// only between shuffling and dealing, and is omitted from snapshots.
type Game struct {
	ID     string
	Config models.GameConfig
	State  *GameState

	seed   int64
	seeded bool
}

// NewGame creates a fresh game: new id, shuffled deck, dealt hands and turn
// order starting at the 3D holder. Seat 0 is the human; the rest are bots.
func NewGame(cfg models.GameConfig) (*Game, error) {
	g := &Game{ID: uuid.New().String(), Config: cfg}
	return g, g.start()
}

// NewSeededGame is NewGame with a reproducible shuffle, for tests.
func NewSeededGame(cfg models.GameConfig, seed int64) (*Game, error) {
	g := &Game{ID: uuid.New().String(), Config: cfg, seed: seed, seeded: true}
	return g, g.start()
}

func (g *Game) start() error {
	if g.Config.PlayersCount < 2 {
		return fmt.Errorf("players_count must be at least 2, got %d", g.Config.PlayersCount)
	}
	players := make([]*Player, g.Config.PlayersCount)
	for i := range players {
		players[i] = NewPlayer(i, i != 0)
	}
	g.State = &GameState{
		Players:       players,
		TurnNumber:    1,
		HandNumber:    1,
		CurrentLeader: -1,
		LastPlaySeat:  -1,
		PassedPlayers: make(map[int]bool),
	}
	g.dealNewHand()
	g.State.CurrentLeader = g.State.TurnOrder[0]
	return nil
}

// dealNewHand shuffles a fresh deck, deals it out and recomputes the turn
// order as a clockwise rotation starting at the 3D holder.
func (g *Game) dealNewHand() {
	var deck *models.Deck
	if g.seeded {
		deck = models.NewSeededDeck(g.Config, g.seed+int64(g.State.HandNumber))
	} else {
		deck = models.NewDeck(g.Config)
	}
	hands := deck.Deal(g.Config.PlayersCount)
	for i, p := range g.State.Players {
		p.Hand = hands[i]
		p.SortHand()
	}
	g.State.TurnOrder = g.initialTurnOrder()
	g.State.TurnIndex = 0
	g.State.CurrentPlayType = models.PlayOpen
}

// initialTurnOrder rotates the seats so the 3D holder goes first. If no
// seat holds 3D (possible with multiple decks) the rotation starts at 0.
func (g *Game) initialTurnOrder() []int {
	start := 0
	threeD := models.Card{Suit: models.Diamonds, Rank: models.Three}
	for i, p := range g.State.Players {
		if p.HasCard(threeD) {
			start = i
			break
		}
	}
	order := make([]int, g.Config.PlayersCount)
	for i := range order {
		order[i] = (start + i) % g.Config.PlayersCount
	}
	return order
}

// CurrentSeat returns the seat whose turn it is now.
func (g *Game) CurrentSeat() int {
	return g.State.TurnOrder[g.State.TurnIndex]
}

// IsFirstGameTurn reports whether no action has been taken yet; the opening
// lead of the game must contain the 3D card.
func (g *Game) IsFirstGameTurn() bool {
	return g.State.TurnNumber == 1 && g.State.HandNumber == 1
}

func (g *Game) checkSeat(seat int) (*Player, error) {
	if seat < 0 || seat >= len(g.State.Players) {
		return nil, fmt.Errorf("%w: %d", ErrSeatOutOfRange, seat)
	}
	return g.State.Players[seat], nil
}

// ApplyPlay removes the played cards from the acting seat's hand, locks the
// pile type on a lead, records the play and advances the turn. Failing to
// remove any card aborts the mutation with ErrCardNotInHand.
func (g *Game) ApplyPlay(seat int, play models.Play) error {
	p, err := g.checkSeat(seat)
	if err != nil {
		return err
	}
	if !p.RemoveCards(play.Cards) {
		return fmt.Errorf("%w: seat %d", ErrCardNotInHand, seat)
	}

	s := g.State
	if s.CurrentLeader < 0 {
		s.CurrentLeader = seat
	}
	if s.CurrentPlayType == models.PlayOpen {
		s.CurrentPlayType = play.PlayType
	}
	s.CurrentPlayPile = append(s.CurrentPlayPile, play.Cards...)
	played := models.Play{
		Cards:    append([]models.Card(nil), play.Cards...),
		PlayType: play.PlayType,
	}
	s.LastPlay = &played
	s.LastPlaySeat = seat
	if play.PlayType == models.PlayQuartet || play.PlayType == models.PlayDoubleSequence {
		p.BombsPlayed++
	}

	s.TurnNumber++
	if g.goOutCheck(seat) {
		return nil
	}
	s.TurnIndex = g.orderIndex(g.nextActiveSeat(seat))
	return nil
}

// ApplyPass records the seat in the passed set. Once every other active seat
// has passed, a new lead is established: the seat that made the last accepted
// play (or its next active successor) leads an open pile.
func (g *Game) ApplyPass(seat int) error {
	if _, err := g.checkSeat(seat); err != nil {
		return err
	}

	s := g.State
	s.PassedPlayers[seat] = true
	s.TurnNumber++

	active := 0
	for _, idx := range s.TurnOrder {
		if !s.PassedPlayers[idx] {
			active++
		}
	}
	if active <= 1 {
		leader := g.newLeader()
		s.CurrentLeader = leader
		s.PassedPlayers = make(map[int]bool)
		s.CurrentPlayPile = nil
		s.CurrentPlayType = models.PlayOpen
		s.LastPlay = nil
		s.LastPlaySeat = -1
		if g.goOutCheck(seat) {
			return nil
		}
		s.TurnIndex = g.orderIndex(leader)
		return nil
	}

	if g.goOutCheck(seat) {
		return nil
	}
	s.TurnIndex = g.orderIndex(g.nextActiveSeat(seat))
	return nil
}

// newLeader picks the seat that made the last accepted play; if that seat
// has already gone out, leadership falls to its next active successor.
func (g *Game) newLeader() int {
	s := g.State
	from := s.LastPlaySeat
	if from < 0 {
		from = g.CurrentSeat()
	}
	if g.inTurnOrder(from) {
		return from
	}
	return g.nextActiveSeat(from)
}

// goOutCheck records a seat whose hand just emptied: placement bookkeeping,
// removal from the turn rotation, and, when only one seat remains, the
// automatic finish of that seat plus the start of a new hand. Returns true
// when a new hand began.
func (g *Game) goOutCheck(seat int) bool {
	s := g.State
	p := s.Players[seat]
	if len(p.Hand) != 0 || g.placedThisHand(seat) {
		return false
	}

	s.PlacementsThisHand = append(s.PlacementsThisHand, seat)
	p.Placements = append(p.Placements, len(s.PlacementsThisHand))
	g.removeFromTurnOrder(seat)
	delete(s.PassedPlayers, seat)

	if len(s.TurnOrder) == 1 {
		last := s.TurnOrder[0]
		s.PlacementsThisHand = append(s.PlacementsThisHand, last)
		s.Players[last].Placements = append(s.Players[last].Placements, len(s.PlacementsThisHand))
		g.startNewHand()
		return true
	}
	return false
}

func (g *Game) startNewHand() {
	s := g.State
	s.HandNumber++
	s.PassedPlayers = make(map[int]bool)
	s.CurrentPlayPile = nil
	s.LastPlay = nil
	s.LastPlaySeat = -1
	s.CurrentLeader = -1
	s.PlacementsThisHand = nil
	g.dealNewHand()
	s.CurrentLeader = s.TurnOrder[0]
}

func (g *Game) placedThisHand(seat int) bool {
	for _, v := range g.State.PlacementsThisHand {
		if v == seat {
			return true
		}
	}
	return false
}

func (g *Game) inTurnOrder(seat int) bool {
	for _, v := range g.State.TurnOrder {
		if v == seat {
			return true
		}
	}
	return false
}

func (g *Game) removeFromTurnOrder(seat int) {
	s := g.State
	for i, v := range s.TurnOrder {
		if v == seat {
			s.TurnOrder = append(s.TurnOrder[:i], s.TurnOrder[i+1:]...)
			if s.TurnIndex > i || s.TurnIndex >= len(s.TurnOrder) {
				if s.TurnIndex > 0 {
					s.TurnIndex--
				}
			}
			return
		}
	}
}

// nextActiveSeat walks clockwise from the given seat and returns the first
// seat still in the turn rotation.
func (g *Game) nextActiveSeat(from int) int {
	n := g.Config.PlayersCount
	for i := 1; i <= n; i++ {
		cand := (from + i) % n
		if g.inTurnOrder(cand) {
			return cand
		}
	}
	return g.State.TurnOrder[0]
}

func (g *Game) orderIndex(seat int) int {
	for i, v := range g.State.TurnOrder {
		if v == seat {
			return i
		}
	}
	return 0
}

// FindSeatByPlayerID resolves a player identity to its seat index.
func (g *Game) FindSeatByPlayerID(playerID string) (int, bool) {
	for _, p := range g.State.Players {
		if p.ID == playerID {
			return p.SeatIndex, true
		}
	}
	return -1, false
}

// Snapshot is the serialized form of a game. ToFull includes every hand and
// is used only for server-internal persistence and audit; ToPublic masks
// bot hands so observers never see concealed information.
type Snapshot struct {
	ID                 string            `json:"id"`
	Config             models.GameConfig `json:"config"`
	PlayersState       []PlayerState     `json:"playersState"`
	CurrentTurnOrder   []int             `json:"currentTurnOrder"`
	CurrentTurnIndex   int               `json:"currentTurnIndex"`
	TurnNumber         int               `json:"turnNumber"`
	HandNumber         int               `json:"handNumber"`
	WhoHasPower        *int              `json:"whoHasPower"`
	CurrentPlayType    models.PlayType   `json:"currentPlayType"`
	CurrentPlayPile    []models.Card     `json:"currentPlayPile"`
	PassedPlayers      []int             `json:"passedPlayers"`
	PlacementsThisHand []int             `json:"placementsThisHand"`
	LastPlay           *models.Play      `json:"lastPlay"`
	LastPlaySeat       *int              `json:"lastPlaySeat"`
}

func (g *Game) snapshot(maskBotHands bool) Snapshot {
	s := g.State
	players := make([]PlayerState, len(s.Players))
	for i, p := range s.Players {
		players[i] = p.toState(maskBotHands)
	}
	passed := make([]int, 0, len(s.PassedPlayers))
	for seat := range s.PassedPlayers {
		passed = append(passed, seat)
	}
	sort.Ints(passed)

	snap := Snapshot{
		ID:                 g.ID,
		Config:             g.Config,
		PlayersState:       players,
		CurrentTurnOrder:   append([]int(nil), s.TurnOrder...),
		CurrentTurnIndex:   s.TurnIndex,
		TurnNumber:         s.TurnNumber,
		HandNumber:         s.HandNumber,
		CurrentPlayType:    s.CurrentPlayType,
		CurrentPlayPile:    append([]models.Card(nil), s.CurrentPlayPile...),
		PassedPlayers:      passed,
		PlacementsThisHand: append([]int(nil), s.PlacementsThisHand...),
	}
	if s.CurrentLeader >= 0 {
		leader := s.CurrentLeader
		snap.WhoHasPower = &leader
	}
	if s.LastPlay != nil {
		play := models.Play{
			Cards:    append([]models.Card(nil), s.LastPlay.Cards...),
			PlayType: s.LastPlay.PlayType,
		}
		snap.LastPlay = &play
	}
	if s.LastPlaySeat >= 0 {
		seat := s.LastPlaySeat
		snap.LastPlaySeat = &seat
	}
	return snap
}

// ToFull serializes everything, bot hands included.
func (g *Game) ToFull() Snapshot {
	return g.snapshot(false)
}

// ToPublic serializes the observer view: bot hands reduced to a count.
func (g *Game) ToPublic() Snapshot {
	return g.snapshot(true)
}

// Rehydrate rebuilds a game from a previously serialized full snapshot
// without reshuffling or redealing. The result reproduces identities, hands
// and every state field exactly as serialized.
func Rehydrate(snap Snapshot) (*Game, error) {
	if len(snap.PlayersState) == 0 {
		return nil, fmt.Errorf("%w: no players", ErrCorruptState)
	}
	if snap.Config.PlayersCount != len(snap.PlayersState) {
		return nil, fmt.Errorf("%w: players_count %d does not match %d serialized seats",
			ErrCorruptState, snap.Config.PlayersCount, len(snap.PlayersState))
	}
	if len(snap.CurrentTurnOrder) == 0 || snap.CurrentTurnIndex < 0 ||
		snap.CurrentTurnIndex >= len(snap.CurrentTurnOrder) {
		return nil, fmt.Errorf("%w: turn rotation", ErrCorruptState)
	}
	if !models.ValidPlayType(snap.CurrentPlayType) {
		return nil, fmt.Errorf("%w: play type %q", ErrCorruptState, snap.CurrentPlayType)
	}

	players := make([]*Player, len(snap.PlayersState))
	for i, ps := range snap.PlayersState {
		if ps.Seat != i {
			return nil, fmt.Errorf("%w: seat %d serialized at position %d", ErrCorruptState, ps.Seat, i)
		}
		for _, c := range ps.Hand {
			if !c.Valid() {
				return nil, fmt.Errorf("%w: invalid card %v in hand of seat %d", ErrCorruptState, c, i)
			}
		}
		players[i] = playerFromState(ps)
	}

	passed := make(map[int]bool, len(snap.PassedPlayers))
	for _, seat := range snap.PassedPlayers {
		passed[seat] = true
	}

	state := &GameState{
		Players:            players,
		TurnOrder:          append([]int(nil), snap.CurrentTurnOrder...),
		TurnIndex:          snap.CurrentTurnIndex,
		TurnNumber:         snap.TurnNumber,
		HandNumber:         snap.HandNumber,
		CurrentLeader:      -1,
		CurrentPlayType:    snap.CurrentPlayType,
		CurrentPlayPile:    append([]models.Card(nil), snap.CurrentPlayPile...),
		PassedPlayers:      passed,
		PlacementsThisHand: append([]int(nil), snap.PlacementsThisHand...),
		LastPlaySeat:       -1,
	}
	if snap.WhoHasPower != nil {
		state.CurrentLeader = *snap.WhoHasPower
	}
	if snap.LastPlaySeat != nil {
		state.LastPlaySeat = *snap.LastPlaySeat
	}
	if snap.LastPlay != nil {
		play := models.Play{
			Cards:    append([]models.Card(nil), snap.LastPlay.Cards...),
			PlayType: snap.LastPlay.PlayType,
		}
		state.LastPlay = &play
	}

	return &Game{ID: snap.ID, Config: snap.Config, State: state}, nil
}
