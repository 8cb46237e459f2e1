package game

import (
	"fmt"
	"math/rand"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// setupGame builds the initial board: seats, colors, powers, planets, ships,
// both decks and the opening hands.
func (e *Engine) setupGame(lobby []LobbyPlayer, rules state.Rules, seed int64) (*state.GameState, error) {
	if len(lobby) < 2 || len(lobby) > len(cards.AllColors) {
		return nil, fmt.Errorf("player count %d out of range 2-%d", len(lobby), len(cards.AllColors))
	}
	seen := make(map[string]bool, len(lobby))
	for _, lp := range lobby {
		if lp.ID == "" {
			return nil, fmt.Errorf("lobby player without id")
		}
		if seen[lp.ID] {
			return nil, fmt.Errorf("duplicate player id %q", lp.ID)
		}
		seen[lp.ID] = true
	}

	rng := rand.New(rand.NewSource(seed))
	chosen, err := e.assignPowers(lobby, rng)
	if err != nil {
		return nil, err
	}

	g := &state.GameState{
		ID:         newGameID(),
		Rules:      rules,
		Players:    make(map[string]*state.PlayerState, len(lobby)),
		TurnOrder:  make([]string, 0, len(lobby)),
		Warp:       make(map[cards.Color]int),
		Removed:    make(map[cards.Color]int),
		TurnNumber: 1,
		Rand:       rng,
	}

	colors := make([]cards.Color, 0, len(lobby))
	for i, lp := range lobby {
		color := cards.AllColors[i]
		colors = append(colors, color)
		p := &state.PlayerState{
			ID:    lp.ID,
			Name:  lp.Name,
			Color: color,
			Power: chosen[i],
		}
		for n := 0; n < rules.PlanetsPerPlayer; n++ {
			p.Planets = append(p.Planets, &state.PlanetState{
				ID:       fmt.Sprintf("%s-planet-%d", lp.ID, n),
				Owner:    color,
				Colonies: []state.Colony{{Color: color, Ships: rules.ShipsPerPlanet}},
			})
		}
		e.registry.InitPowerState(p)
		g.Players[lp.ID] = p
		g.TurnOrder = append(g.TurnOrder, lp.ID)
	}

	all, cosmic, err := e.comp.BuildCosmicDeck(chosen, e.registry.UnusedIDs(chosen), rng)
	if err != nil {
		return nil, fmt.Errorf("build cosmic deck: %w", err)
	}
	allDestiny, destiny, err := e.comp.BuildDestinyDeck(colors, rng)
	if err != nil {
		return nil, fmt.Errorf("build destiny deck: %w", err)
	}
	g.AllCards = all
	g.Cosmic = *cosmic
	g.AllDestiny = allDestiny
	g.Destiny = *destiny

	for _, id := range g.TurnOrder {
		dealOpeningHand(g, g.Players[id])
	}

	g.ActivePlayerID = g.TurnOrder[rng.Intn(len(g.TurnOrder))]
	g.RecalculateColonies()
	g.AddLog("the cosmos takes shape: %d players, %s opens", len(lobby), g.Offense().Name)
	return g, nil
}

// assignPowers honors explicit lobby picks and deals random distinct powers
// to everyone else.
func (e *Engine) assignPowers(lobby []LobbyPlayer, rng *rand.Rand) ([]cards.PowerID, error) {
	taken := make(map[cards.PowerID]bool, len(lobby))
	chosen := make([]cards.PowerID, len(lobby))
	for i, lp := range lobby {
		if lp.Power == "" {
			continue
		}
		if _, ok := e.registry.Definition(lp.Power); !ok {
			return nil, fmt.Errorf("player %s picked unknown power %q", lp.ID, lp.Power)
		}
		if taken[lp.Power] {
			return nil, fmt.Errorf("power %s picked twice", lp.Power)
		}
		taken[lp.Power] = true
		chosen[i] = lp.Power
	}

	pool := e.registry.AllIDs()
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	next := 0
	for i := range chosen {
		if chosen[i] != "" {
			continue
		}
		for taken[pool[next]] {
			next++
		}
		chosen[i] = pool[next]
		taken[pool[next]] = true
		next++
	}
	return chosen, nil
}

// dealOpeningHand deals a full hand, mulliganing any hand with no encounter
// card in it.
func dealOpeningHand(g *state.GameState, p *state.PlayerState) {
	g.DealCards(p, g.Rules.HandSize)
	for !p.HasEncounterCard(g.AllCards) && g.Cosmic.Size() > 0 {
		g.DiscardHand(p)
		if g.DealCards(p, g.Rules.HandSize) == 0 {
			break
		}
	}
}
