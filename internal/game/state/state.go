package state

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
)

// Rules holds the numeric tunables of a game. Defaults match the base game;
// the server config may override them.
type Rules struct {
	HandSize             int
	PlanetsPerPlayer     int
	ShipsPerPlanet       int
	ForeignColoniesToWin int
	HomeColoniesForPower int
	MaxShipsInGate       int
	MaxAllyShips         int
	DealTimer            time.Duration
}

// DefaultRules returns the base-game configuration.
func DefaultRules() Rules {
	return Rules{
		HandSize:             8,
		PlanetsPerPlayer:     5,
		ShipsPerPlanet:       4,
		ForeignColoniesToWin: 5,
		HomeColoniesForPower: 3,
		MaxShipsInGate:       4,
		MaxAllyShips:         4,
		DealTimer:            60 * time.Second,
	}
}

// PowerState is the per-player private state used by power implementations.
// Each field is owned by the powers that need it; everything here is typed so
// access is checked at compile time.
type PowerState struct {
	Zapped      bool // suppressed for the rest of the current encounter
	FlarePlayed bool // at most one flare per player per encounter

	Tokens        int            // warrior experience, tick-tock, chrysalis
	TokensBy      map[string]int // grudge tokens per player
	Prediction    string         // mind's declared card name
	ChosenTotal   int            // chosen's declared winning total
	Form          int            // pentaform's current form
	Hoard         []string       // miser's set-aside cards
	Forbidden     []string       // dictator's banned responders
	HatedEnemyID  string         // hate's designated target
	PeekedCardID  string         // oracle's view of the defense card
	ColonyShield  bool           // citadel's one-per-turn protection
	DoubleStakes  bool           // gambler/will face-up declaration
	Transformed   bool           // reincarnator has already flipped
	UsedThisTurn  bool           // generic once-per-turn latch (cudgel, citadel)
}

// ClearEncounterFlags resets the flags that only live for one encounter.
func (ps *PowerState) ClearEncounterFlags() {
	ps.Zapped = false
	ps.FlarePlayed = false
	ps.Prediction = ""
	ps.ChosenTotal = 0
	ps.PeekedCardID = ""
	ps.DoubleStakes = false
}

// Colony is a (color, ships) pair on a planet. Ships is always > 0; empty
// colonies are pruned immediately.
type Colony struct {
	Color cards.Color
	Ships int
}

// PlanetState is one planet of a player's home system.
type PlanetState struct {
	ID       string
	Owner    cards.Color
	Colonies []Colony
}

// ColonyOf returns the ship count of the given color's colony, 0 if absent.
func (p *PlanetState) ColonyOf(color cards.Color) int {
	for _, c := range p.Colonies {
		if c.Color == color {
			return c.Ships
		}
	}
	return 0
}

// AddShips lands ships of a color on the planet, merging into an existing
// colony if present.
func (p *PlanetState) AddShips(color cards.Color, n int) {
	if n <= 0 {
		return
	}
	for i := range p.Colonies {
		if p.Colonies[i].Color == color {
			p.Colonies[i].Ships += n
			return
		}
	}
	p.Colonies = append(p.Colonies, Colony{Color: color, Ships: n})
}

// RemoveShips lifts up to n ships of a color off the planet, pruning the
// colony when it empties. Returns the number actually removed.
func (p *PlanetState) RemoveShips(color cards.Color, n int) int {
	for i := range p.Colonies {
		if p.Colonies[i].Color != color {
			continue
		}
		taken := n
		if taken > p.Colonies[i].Ships {
			taken = p.Colonies[i].Ships
		}
		p.Colonies[i].Ships -= taken
		if p.Colonies[i].Ships == 0 {
			p.Colonies = append(p.Colonies[:i], p.Colonies[i+1:]...)
		}
		return taken
	}
	return 0
}

// ShipSource records where committed ships were lifted from, so a canceled
// encounter can put them back.
type ShipSource struct {
	PlanetID string
	Count    int
}

// AllyCommitment is one ally's stake in the encounter.
type AllyCommitment struct {
	Ships   int
	Sources []ShipSource
}

// EncounterState exists from target selection in the launch phase until the
// encounter fully resolves. It captures everything later phases need so they
// never re-derive it.
type EncounterState struct {
	DefenseID       string
	TargetColor     cards.Color
	TargetPlanetID  string
	OffenseShips    int
	OffenseSources  []ShipSource
	OffensiveAllies map[string]*AllyCommitment
	DefensiveAllies map[string]*AllyCommitment
	OffenseCardID   string
	DefenseCardID   string
}

// PlayerState is one seated player.
type PlayerState struct {
	ID              string
	Name            string
	Color           cards.Color
	Power           cards.PowerID
	PowerActive     bool // derived: home colonies at or above the threshold
	Hand            []string
	Planets         []*PlanetState
	HomeColonies    int
	ForeignColonies int
	PowerState      PowerState
}

// HasCard reports whether the card id is in the player's hand.
func (p *PlayerState) HasCard(id string) bool {
	for _, c := range p.Hand {
		if c == id {
			return true
		}
	}
	return false
}

// RemoveCard takes the card id out of the hand. Returns false if absent.
func (p *PlayerState) RemoveCard(id string) bool {
	for i, c := range p.Hand {
		if c == id {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// HasEncounterCard reports whether any encounter card remains in hand.
func (p *PlayerState) HasEncounterCard(all map[string]cards.Card) bool {
	for _, id := range p.Hand {
		if all[id].IsEncounterCard() {
			return true
		}
	}
	return false
}

// LogEntry is one human-readable line of the append-only game log.
type LogEntry struct {
	Message   string
	Timestamp time.Time
}

// GameState is the single mutable aggregate for one room. It is owned
// exclusively by one engine instance; callers serialize access per room.
type GameState struct {
	ID              string
	Rules           Rules
	Players         map[string]*PlayerState
	TurnOrder       []string
	ActivePlayerID  string
	PhaseData       PhaseData
	Encounter       *EncounterState
	EncounterNumber int
	TurnNumber      int

	AllCards   map[string]cards.Card
	AllDestiny map[string]cards.DestinyCard
	Cosmic     cards.Pile
	Destiny    cards.Pile

	Warp    map[cards.Color]int
	Removed map[cards.Color]int // ships removed from the game entirely

	Winners []string
	GameLog []LogEntry

	Rand *rand.Rand
}

// Phase returns the current phase, derived from the phase payload.
func (g *GameState) Phase() Phase {
	return g.PhaseData.Phase()
}

// Player returns the player or an error for unknown ids.
func (g *GameState) Player(id string) (*PlayerState, error) {
	p, ok := g.Players[id]
	if !ok {
		return nil, fmt.Errorf("unknown player %q", id)
	}
	return p, nil
}

// PlayerByColor returns the player seated at the given color.
func (g *GameState) PlayerByColor(color cards.Color) *PlayerState {
	for _, p := range g.Players {
		if p.Color == color {
			return p
		}
	}
	return nil
}

// PlanetByID scans all home systems for the planet.
func (g *GameState) PlanetByID(id string) *PlanetState {
	for _, p := range g.Players {
		for _, planet := range p.Planets {
			if planet.ID == id {
				return planet
			}
		}
	}
	return nil
}

// Offense returns the active player.
func (g *GameState) Offense() *PlayerState {
	return g.Players[g.ActivePlayerID]
}

// Defense returns the defending main player, nil outside an encounter.
func (g *GameState) Defense() *PlayerState {
	if g.Encounter == nil {
		return nil
	}
	return g.Players[g.Encounter.DefenseID]
}

// IsOffense reports whether the player is the current offense.
func (g *GameState) IsOffense(id string) bool {
	return id == g.ActivePlayerID
}

// IsDefense reports whether the player is the current defense.
func (g *GameState) IsDefense(id string) bool {
	return g.Encounter != nil && g.Encounter.DefenseID == id
}

// IsMainPlayer reports whether the player is offense or defense.
func (g *GameState) IsMainPlayer(id string) bool {
	return g.IsOffense(id) || g.IsDefense(id)
}

// IsAlly reports whether the player has committed ships to either side.
func (g *GameState) IsAlly(id string) bool {
	if g.Encounter == nil {
		return false
	}
	if _, ok := g.Encounter.OffensiveAllies[id]; ok {
		return true
	}
	_, ok := g.Encounter.DefensiveAllies[id]
	return ok
}

// AllySide returns which side the player allied with.
func (g *GameState) AllySide(id string) (Side, bool) {
	if g.Encounter == nil {
		return SideOffense, false
	}
	if _, ok := g.Encounter.OffensiveAllies[id]; ok {
		return SideOffense, true
	}
	if _, ok := g.Encounter.DefensiveAllies[id]; ok {
		return SideDefense, true
	}
	return SideOffense, false
}

// Finished reports whether the win condition has triggered.
func (g *GameState) Finished() bool {
	return len(g.Winners) > 0
}

// AddLog appends one line to the game log.
func (g *GameState) AddLog(format string, args ...any) {
	g.GameLog = append(g.GameLog, LogEntry{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
	})
}

// RecalculateColonies refreshes every player's home/foreign colony counts and
// the derived power-active flag. Call after any board mutation.
func (g *GameState) RecalculateColonies() {
	for _, p := range g.Players {
		home, foreign := 0, 0
		for _, owner := range g.Players {
			for _, planet := range owner.Planets {
				if planet.ColonyOf(p.Color) == 0 {
					continue
				}
				if planet.Owner == p.Color {
					home++
				} else {
					foreign++
				}
			}
		}
		p.HomeColonies = home
		p.ForeignColonies = foreign
		p.PowerActive = p.Power != "" && home >= g.Rules.HomeColoniesForPower
	}
}

// CheckWin sets Winners for every player at or above the foreign-colony
// threshold. Must run inside the same action that changed the board.
func (g *GameState) CheckWin() []string {
	if g.Finished() {
		return g.Winners
	}
	var winners []string
	for _, id := range g.TurnOrder {
		if g.Players[id].ForeignColonies >= g.Rules.ForeignColoniesToWin {
			winners = append(winners, id)
		}
	}
	g.Winners = winners
	return winners
}

// ShipsToWarp moves n ships of a color into the warp.
func (g *GameState) ShipsToWarp(color cards.Color, n int) {
	if n > 0 {
		g.Warp[color] += n
	}
}

// RetrieveFromWarp takes up to n ships of a color out of the warp and returns
// how many were actually retrieved.
func (g *GameState) RetrieveFromWarp(color cards.Color, n int) int {
	if n > g.Warp[color] {
		n = g.Warp[color]
	}
	if n < 0 {
		n = 0
	}
	g.Warp[color] -= n
	return n
}

// FirstHomeColony returns the first home planet holding the player's own
// colony, or nil. Used as the default destination for returned ships.
func (g *GameState) FirstHomeColony(p *PlayerState) *PlanetState {
	for _, planet := range p.Planets {
		if planet.ColonyOf(p.Color) > 0 {
			return planet
		}
	}
	return nil
}

// DrawCosmic draws one card id, reshuffling the discard when needed.
func (g *GameState) DrawCosmic() (string, bool) {
	return g.Cosmic.DrawCard(g.Rand)
}

// DealCards draws n cards into the player's hand and returns how many were
// actually dealt.
func (g *GameState) DealCards(p *PlayerState, n int) int {
	dealt := 0
	for i := 0; i < n; i++ {
		id, ok := g.DrawCosmic()
		if !ok {
			break
		}
		p.Hand = append(p.Hand, id)
		dealt++
	}
	return dealt
}

// DiscardHand moves the player's entire hand to the cosmic discard.
func (g *GameState) DiscardHand(p *PlayerState) int {
	n := len(p.Hand)
	for _, id := range p.Hand {
		g.Cosmic.ToDiscard(id)
	}
	p.Hand = nil
	return n
}
