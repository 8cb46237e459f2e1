package game

import (
	"fmt"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// setPhase swaps the phase payload and announces the transition. Phase-start
// hooks are dispatched separately because some phases only become meaningful
// after a follow-up choice (launch needs a target first).
func (e *Engine) setPhase(g *state.GameState, bus *state.Bus, data state.PhaseData) {
	if g.PhaseData != nil {
		e.registry.DispatchPhaseEnd(g, bus, g.Phase())
	}
	g.PhaseData = data
	ev := state.NewEvent(state.EventPhaseChanged, g.ActivePlayerID, data.Phase().String())
	bus.Publish(ev)
}

// enterPhase is setPhase plus the phase-start power dispatch.
func (e *Engine) enterPhase(g *state.GameState, bus *state.Bus, data state.PhaseData) {
	e.setPhase(g, bus, data)
	e.registry.DispatchPhaseStart(g, bus, data.Phase())
}

// drawCards deals n cards to the player and lets draw-reactive powers see it.
func (e *Engine) drawCards(g *state.GameState, bus *state.Bus, p *state.PlayerState, n int) int {
	dealt := g.DealCards(p, n)
	if dealt > 0 {
		e.registry.DispatchCardsDrawn(g, bus, p.ID, dealt)
	}
	return dealt
}

// warpShips routes a warp delivery through the power layer: a veto means some
// power already disposed of the ships itself.
func (e *Engine) warpShips(g *state.GameState, bus *state.Bus, color cards.Color, count int) {
	if count <= 0 {
		return
	}
	if !e.registry.CanShipsGoToWarp(g, bus, color, count) {
		return
	}
	g.ShipsToWarp(color, count)
	ev := state.NewEvent(state.EventShipsToWarp, "", fmt.Sprintf("%d %s ship(s) sent to the warp", count, color))
	ev.Color = color
	ev.Amount = count
	bus.Publish(ev)
	e.registry.DispatchShipsToWarp(g, bus, color, count)
}

// landShips puts n ships back on the player's first surviving home colony.
func landShips(g *state.GameState, p *state.PlayerState, n int) {
	if n <= 0 {
		return
	}
	if planet := g.FirstHomeColony(p); planet != nil {
		planet.AddShips(p.Color, n)
		return
	}
	if len(p.Planets) > 0 {
		p.Planets[0].AddShips(p.Color, n)
	}
}

// liftShips removes up to n of the player's ships from their colonies,
// emptying the fullest colonies first, and records where they came from.
func liftShips(g *state.GameState, p *state.PlayerState, n int) ([]state.ShipSource, int) {
	var sources []state.ShipSource
	lifted := 0
	for lifted < n {
		var best *state.PlanetState
		for _, owner := range g.Players {
			for _, planet := range owner.Planets {
				if best == nil || planet.ColonyOf(p.Color) > best.ColonyOf(p.Color) {
					if planet.ColonyOf(p.Color) > 0 {
						best = planet
					}
				}
			}
		}
		if best == nil {
			break
		}
		take := n - lifted
		got := best.RemoveShips(p.Color, take)
		sources = append(sources, state.ShipSource{PlanetID: best.ID, Count: got})
		lifted += got
	}
	return sources, lifted
}

// shipsOnColonies counts the color's ships across every planet on the board.
func shipsOnColonies(g *state.GameState, color cards.Color) int {
	total := 0
	for _, owner := range g.Players {
		for _, planet := range owner.Planets {
			total += planet.ColonyOf(color)
		}
	}
	return total
}

// returnToSources puts committed ships back where they were lifted from.
func returnToSources(g *state.GameState, color cards.Color, sources []state.ShipSource) {
	for _, src := range sources {
		if planet := g.PlanetByID(src.PlanetID); planet != nil {
			planet.AddShips(color, src.Count)
		}
	}
}

// checkStartTurnHand mulligans an offense hand with no encounter card, then
// moves the turn along to regroup.
func (e *Engine) checkStartTurnHand(g *state.GameState, bus *state.Bus) {
	offense := g.Offense()
	if !offense.HasEncounterCard(g.AllCards) {
		sd, _ := g.PhaseData.(*state.StartTurnData)
		n := g.DiscardHand(offense)
		e.drawCards(g, bus, offense, g.Rules.HandSize)
		if sd != nil {
			sd.MustDrawNewHand = true
		}
		g.AddLog("%s had no encounter card: %d card(s) discarded for a fresh hand", offense.Name, n)
	}
	e.enterRegroup(g, bus)
}

// enterRegroup opens the regroup phase, skipping straight to destiny when the
// offense has nothing in the warp.
func (e *Engine) enterRegroup(g *state.GameState, bus *state.Bus) {
	e.enterPhase(g, bus, &state.RegroupData{})
	if g.Finished() {
		return
	}
	if g.Warp[g.Offense().Color] == 0 {
		e.enterPhase(g, bus, &state.DestinyData{})
	}
}

func (e *Engine) regroupRetrieve(g *state.GameState, bus *state.Bus, playerID string) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense retrieves during regroup")
	}
	rd, ok := g.PhaseData.(*state.RegroupData)
	if !ok || rd.RetrievedShips > 0 {
		return fmt.Errorf("retrieval already done")
	}
	offense := g.Offense()
	count := e.registry.ModifyRegroupCount(g, bus)
	n := g.RetrieveFromWarp(offense.Color, count)
	landShips(g, offense, n)
	rd.RetrievedShips = n
	if n > 0 {
		ev := state.NewEvent(state.EventShipsRetrieved, playerID,
			fmt.Sprintf("%s retrieves %d ship(s) from the warp", offense.Name, n))
		ev.Color = offense.Color
		ev.Amount = n
		bus.Publish(ev)
		e.registry.DispatchShipsRetrieved(g, bus, offense.Color, n)
	}
	e.enterPhase(g, bus, &state.DestinyData{})
	return nil
}

func (e *Engine) destinyDraw(g *state.GameState, bus *state.Bus, playerID string) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense draws destiny")
	}
	dd, ok := g.PhaseData.(*state.DestinyData)
	if !ok || dd.DrawnCardID != "" {
		return fmt.Errorf("destiny already drawn")
	}
	id, ok := g.Destiny.DrawDestiny(g.Rand)
	if !ok {
		return fmt.Errorf("destiny deck exhausted")
	}
	g.Destiny.ToDiscard(id)
	card := g.AllDestiny[id]
	dd.DrawnCardID = id
	offense := g.Offense()

	ev := state.NewEvent(state.EventDestinyDrawn, playerID, card.Name())
	ev.CardID = id
	bus.Publish(ev)

	switch card.Type {
	case cards.DestinyColor:
		dd.TargetColor = card.Color
		dd.Hazard = card.Hazard
		if card.Hazard {
			g.AddLog("hazard warning on the destiny draw")
		}
		if card.Color == offense.Color {
			e.fillHomeSystemOptions(g, dd, offense)
		} else if target := g.PlayerByColor(card.Color); target != nil {
			dd.DefenseID = target.ID
		} else {
			// Color not seated in this game: redraw.
			dd.MustRedraw = true
		}
	case cards.DestinyWild, cards.DestinySpecial:
		// The offense picks any opponent on accept.
	}
	return nil
}

// fillHomeSystemOptions sets the choices opened by drawing your own color:
// redraw, drive an intruder out, or recolonize an empty home planet.
func (e *Engine) fillHomeSystemOptions(g *state.GameState, dd *state.DestinyData, offense *state.PlayerState) {
	dd.MustRedraw = true
	for _, planet := range offense.Planets {
		if len(planet.Colonies) == 0 {
			dd.CanRecolonize = true
			dd.EmptyHomePlanets = append(dd.EmptyHomePlanets, planet.ID)
		}
		for _, colony := range planet.Colonies {
			if colony.Color != offense.Color {
				dd.CanDriveOut = true
			}
		}
	}
}

func (e *Engine) destinyRedraw(g *state.GameState, bus *state.Bus, playerID string) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense redraws destiny")
	}
	dd, ok := g.PhaseData.(*state.DestinyData)
	if !ok || !dd.MustRedraw {
		return fmt.Errorf("no redraw available")
	}
	g.PhaseData = &state.DestinyData{}
	return e.destinyDraw(g, bus, playerID)
}

func (e *Engine) destinyAccept(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense accepts destiny")
	}
	dd, ok := g.PhaseData.(*state.DestinyData)
	if !ok || dd.DrawnCardID == "" {
		return fmt.Errorf("draw destiny first")
	}
	card := g.AllDestiny[dd.DrawnCardID]

	defenseID := dd.DefenseID
	if card.Type != cards.DestinyColor {
		target, err := g.Player(a.TargetID)
		if err != nil {
			return fmt.Errorf("wild destiny needs a target: %w", err)
		}
		if target.ID == playerID {
			return fmt.Errorf("cannot target yourself on a wild destiny")
		}
		defenseID = target.ID
	}
	if defenseID == "" {
		return fmt.Errorf("this destiny card offers no encounter; redraw")
	}

	defense := g.Players[defenseID]
	g.Encounter = &state.EncounterState{
		DefenseID:       defenseID,
		TargetColor:     defense.Color,
		OffensiveAllies: make(map[string]*state.AllyCommitment),
		DefensiveAllies: make(map[string]*state.AllyCommitment),
	}
	g.AddLog("%s will encounter %s", g.Offense().Name, defense.Name)
	e.setPhase(g, bus, &state.LaunchData{DefenseID: defenseID, TargetColor: defense.Color})
	return nil
}

func (e *Engine) destinyDriveOut(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense chooses")
	}
	dd, ok := g.PhaseData.(*state.DestinyData)
	if !ok || !dd.CanDriveOut {
		return fmt.Errorf("no intruders to drive out")
	}
	offense := g.Offense()
	planet := g.PlanetByID(a.PlanetID)
	if planet == nil || planet.Owner != offense.Color {
		return fmt.Errorf("planet %q is not in your home system", a.PlanetID)
	}
	target, err := g.Player(a.TargetID)
	if err != nil {
		return err
	}
	if planet.ColonyOf(target.Color) == 0 {
		return fmt.Errorf("%s has no colony on that planet", target.Name)
	}

	g.Encounter = &state.EncounterState{
		DefenseID:       target.ID,
		TargetColor:     target.Color,
		TargetPlanetID:  planet.ID,
		OffensiveAllies: make(map[string]*state.AllyCommitment),
		DefensiveAllies: make(map[string]*state.AllyCommitment),
	}
	g.AddLog("%s moves to drive %s out of the home system", offense.Name, target.Name)
	e.enterPhase(g, bus, &state.LaunchData{
		DefenseID:      target.ID,
		TargetColor:    target.Color,
		TargetPlanetID: planet.ID,
	})
	return nil
}

func (e *Engine) destinyRecolonize(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense chooses")
	}
	dd, ok := g.PhaseData.(*state.DestinyData)
	if !ok || !dd.CanRecolonize {
		return fmt.Errorf("no empty home planet to recolonize")
	}
	valid := false
	for _, id := range dd.EmptyHomePlanets {
		if id == a.PlanetID {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("planet %q is not an empty home planet", a.PlanetID)
	}
	offense := g.Offense()
	_, lifted := liftShips(g, offense, 1)
	if lifted == 0 {
		return fmt.Errorf("no ship available to move")
	}
	planet := g.PlanetByID(a.PlanetID)
	planet.AddShips(offense.Color, 1)
	g.AddLog("%s recolonizes %s", offense.Name, planet.ID)
	ev := state.NewEvent(state.EventColonyEstablished, playerID, "home planet recolonized")
	ev.Color = offense.Color
	bus.Publish(ev)
	e.registry.DispatchColonyGained(g, bus, playerID, planet.ID)
	e.endTurn(g, bus)
	return nil
}

func (e *Engine) launchAim(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense aims the gate")
	}
	ld, ok := g.PhaseData.(*state.LaunchData)
	if !ok || g.Encounter == nil {
		return fmt.Errorf("no encounter in progress")
	}
	if ld.TargetPlanetID != "" {
		return fmt.Errorf("target already chosen")
	}
	planet := g.PlanetByID(a.PlanetID)
	defense := g.Defense()
	if planet == nil || planet.Owner != defense.Color {
		return fmt.Errorf("planet %q is not in the defense's home system", a.PlanetID)
	}
	ld.TargetPlanetID = planet.ID
	g.Encounter.TargetPlanetID = planet.ID
	g.AddLog("the gate turns toward %s", planet.ID)
	// Launch hooks run now, with the target visible to them.
	e.registry.DispatchPhaseStart(g, bus, state.PhaseLaunch)
	return nil
}

func (e *Engine) launchCommit(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense commits ships")
	}
	ld, ok := g.PhaseData.(*state.LaunchData)
	if !ok || g.Encounter == nil || ld.TargetPlanetID == "" {
		return fmt.Errorf("aim at a planet first")
	}
	if ld.ShipsCommitted {
		return fmt.Errorf("ships already committed")
	}
	max := e.registry.ModifyMaxShipsInGate(g, bus)
	if a.Ships < 1 || a.Ships > max {
		return fmt.Errorf("ship count must be between 1 and %d", max)
	}
	offense := g.Offense()
	if available := shipsOnColonies(g, offense.Color); a.Ships > available {
		return fmt.Errorf("only %d ship(s) available to launch", available)
	}
	sources, lifted := liftShips(g, offense, a.Ships)
	if lifted == 0 {
		return fmt.Errorf("no ships available")
	}
	g.Encounter.OffenseShips = lifted
	g.Encounter.OffenseSources = sources
	ld.ShipsCommitted = true
	ld.TotalShipsOnGate = lifted

	ev := state.NewEvent(state.EventShipsCommitted, playerID,
		fmt.Sprintf("%s puts %d ship(s) through the gate", offense.Name, lifted))
	ev.Color = offense.Color
	ev.Amount = lifted
	bus.Publish(ev)

	e.enterPhase(g, bus, &state.AllianceData{Responses: make(map[string]state.AllianceResponse)})
	return nil
}
