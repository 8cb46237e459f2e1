package game

import (
	"fmt"
	"time"

	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// enterResolution installs the outcome, gives resolution powers their chance
// to rewrite it and then applies whatever survived.
func (e *Engine) enterResolution(g *state.GameState, bus *state.Bus, outcome state.Outcome) {
	rd := &state.ResolutionData{Outcome: outcome}
	e.enterPhase(g, bus, rd)

	prevented := e.registry.DispatchCombatResolved(g, bus, rd.Outcome)

	switch o := rd.Outcome.(type) {
	case state.OffenseWins:
		if !prevented {
			e.applyOffenseWin(g, bus)
		}
		e.afterDisposition(g, bus, rd, true)
	case state.DefenseWins:
		if !prevented {
			e.applyDefenseWin(g, bus)
		}
		e.afterDisposition(g, bus, rd, false)
	case state.AttackVsNegotiate:
		offenseWon := o.Winner == state.SideOffense
		if !prevented {
			if offenseWon {
				e.applyOffenseWin(g, bus)
			} else {
				e.applyDefenseWin(g, bus)
			}
			e.payCompensation(g, bus, o)
			rd.CompensationShips = o.CompensationShips
			rd.CompensationResolved = true
		}
		e.afterDisposition(g, bus, rd, offenseWon)
	case state.DealMaking:
		rd.DealInProgress = true
		rd.DealDeadline = time.Now().Add(g.Rules.DealTimer)
		g.AddLog("both sides want to talk: a deal must close before the deadline")
	}
}

// afterDisposition routes to the second-encounter decision or ends the turn.
func (e *Engine) afterDisposition(g *state.GameState, bus *state.Bus, rd *state.ResolutionData, offenseWon bool) {
	g.RecalculateColonies()
	if len(g.CheckWin()) > 0 {
		return
	}
	if offenseWon && g.EncounterNumber == 1 {
		rd.CanHaveSecondEncounter = true
		return
	}
	e.endTurn(g, bus)
}

// applyOffenseWin clears the targeted planet and lands the winning side.
func (e *Engine) applyOffenseWin(g *state.GameState, bus *state.Bus) {
	enc := g.Encounter
	offense := g.Offense()
	defense := g.Defense()
	planet := g.PlanetByID(enc.TargetPlanetID)
	if planet == nil {
		return
	}

	if defense != nil {
		if defense.PowerState.ColonyShield {
			defense.PowerState.ColonyShield = false
			g.AddLog("%s's colony weathers the assault", defense.Name)
		} else if n := planet.RemoveShips(defense.Color, planet.ColonyOf(defense.Color)); n > 0 {
			e.warpShips(g, bus, defense.Color, n)
			ev := state.NewEvent(state.EventColonyLost, defense.ID, fmt.Sprintf("%s loses the colony on %s", defense.Name, planet.ID))
			ev.Color = defense.Color
			bus.Publish(ev)
			e.registry.DispatchColonyLost(g, bus, defense.ID, planet.ID)
		}
	}
	for id, ally := range enc.DefensiveAllies {
		e.warpShips(g, bus, g.Players[id].Color, ally.Ships)
		ally.Ships = 0
	}

	planet.AddShips(offense.Color, enc.OffenseShips)
	enc.OffenseShips = 0
	ev := state.NewEvent(state.EventColonyEstablished, offense.ID,
		fmt.Sprintf("%s establishes a colony on %s", offense.Name, planet.ID))
	ev.Color = offense.Color
	bus.Publish(ev)
	e.registry.DispatchColonyGained(g, bus, offense.ID, planet.ID)

	for id, ally := range enc.OffensiveAllies {
		p := g.Players[id]
		planet.AddShips(p.Color, ally.Ships)
		ally.Ships = 0
		allyEv := state.NewEvent(state.EventColonyEstablished, id,
			fmt.Sprintf("%s lands alongside the offense on %s", p.Name, planet.ID))
		allyEv.Color = p.Color
		bus.Publish(allyEv)
		e.registry.DispatchColonyGained(g, bus, id, planet.ID)
	}
}

// applyDefenseWin warps the attacking side and rewards the defenders' allies.
func (e *Engine) applyDefenseWin(g *state.GameState, bus *state.Bus) {
	enc := g.Encounter
	offense := g.Offense()

	e.warpShips(g, bus, offense.Color, enc.OffenseShips)
	enc.OffenseShips = 0
	for id, ally := range enc.OffensiveAllies {
		e.warpShips(g, bus, g.Players[id].Color, ally.Ships)
		ally.Ships = 0
	}

	// Defensive allies go home with a reward per committed ship: a ship back
	// from the warp when one is there, a card otherwise.
	for id, ally := range enc.DefensiveAllies {
		p := g.Players[id]
		returnToSources(g, p.Color, ally.Sources)
		retrieved, carded := 0, 0
		for i := 0; i < ally.Ships; i++ {
			if g.RetrieveFromWarp(p.Color, 1) == 1 {
				landShips(g, p, 1)
				retrieved++
			} else if e.drawCards(g, bus, p, 1) == 1 {
				carded++
			}
		}
		ally.Ships = 0
		if retrieved > 0 || carded > 0 {
			g.AddLog("%s collects defender rewards: %d ship(s), %d card(s)", p.Name, retrieved, carded)
		}
		e.registry.DispatchDefenderReward(g, bus, id)
	}
}

// payCompensation hands the negotiating loser random cards from the winner.
func (e *Engine) payCompensation(g *state.GameState, bus *state.Bus, o state.AttackVsNegotiate) {
	if o.CompensationShips <= 0 {
		return
	}
	winner, loser := g.Offense(), g.Defense()
	if o.Winner == state.SideDefense {
		winner, loser = loser, winner
	}
	if winner == nil || loser == nil {
		return
	}
	if e.registry.DispatchCompensation(g, bus, loser.ID, winner.ID, o.CompensationShips) {
		return
	}
	taken := 0
	for i := 0; i < o.CompensationShips && len(winner.Hand) > 0; i++ {
		j := g.Rand.Intn(len(winner.Hand))
		id := winner.Hand[j]
		winner.Hand = append(winner.Hand[:j], winner.Hand[j+1:]...)
		loser.Hand = append(loser.Hand, id)
		taken++
	}
	ev := state.NewEvent(state.EventCompensationPaid, loser.ID,
		fmt.Sprintf("%s collects %d card(s) in compensation from %s", loser.Name, taken, winner.Name))
	ev.Amount = taken
	bus.Publish(ev)
}

func (e *Engine) dealPropose(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	rd, ok := g.PhaseData.(*state.ResolutionData)
	if !ok || !rd.DealInProgress {
		return fmt.Errorf("no deal on the table")
	}
	if !g.IsMainPlayer(playerID) {
		return fmt.Errorf("only main players negotiate")
	}
	if a.Proposal == nil {
		return fmt.Errorf("empty proposal")
	}
	p := g.Players[playerID]
	for _, id := range a.Proposal.CardsToOther {
		if !p.HasCard(id) {
			return fmt.Errorf("offered card %q is not in your hand", id)
		}
	}
	other := e.otherMain(g, playerID)
	for _, id := range a.Proposal.CardsToMe {
		if !other.HasCard(id) {
			return fmt.Errorf("requested card %q is not in %s's hand", id, other.Name)
		}
	}
	if a.Proposal.ColonyForMe != "" {
		if planet := g.PlanetByID(a.Proposal.ColonyForMe); planet == nil || planet.Owner != other.Color {
			return fmt.Errorf("colony grant must name one of %s's home planets", other.Name)
		}
	}
	if a.Proposal.ColonyForOther != "" {
		if planet := g.PlanetByID(a.Proposal.ColonyForOther); planet == nil || planet.Owner != p.Color {
			return fmt.Errorf("colony grant must name one of your home planets")
		}
	}

	proposal := *a.Proposal
	proposal.ProposerID = playerID
	rd.DealProposal = &proposal
	e.registry.DispatchDealProposed(g, bus, rd.DealProposal)
	ev := state.NewEvent(state.EventDealProposed, playerID, fmt.Sprintf("%s puts a deal on the table", p.Name))
	bus.Publish(ev)
	return nil
}

func (e *Engine) dealAccept(g *state.GameState, bus *state.Bus, playerID string) error {
	rd, ok := g.PhaseData.(*state.ResolutionData)
	if !ok || !rd.DealInProgress || rd.DealProposal == nil {
		return fmt.Errorf("no proposal to accept")
	}
	if !g.IsMainPlayer(playerID) || playerID == rd.DealProposal.ProposerID {
		return fmt.Errorf("only the other main player accepts")
	}

	proposal := rd.DealProposal
	proposer := g.Players[proposal.ProposerID]
	other := g.Players[playerID]

	for _, id := range proposal.CardsToOther {
		if proposer.RemoveCard(id) {
			other.Hand = append(other.Hand, id)
		}
	}
	for _, id := range proposal.CardsToMe {
		if other.RemoveCard(id) {
			proposer.Hand = append(proposer.Hand, id)
		}
	}
	e.grantDealColony(g, bus, proposer, proposal.ColonyForMe)
	e.grantDealColony(g, bus, other, proposal.ColonyForOther)

	rd.Outcome = state.DealSuccess{}
	rd.DealInProgress = false
	bus.Publish(state.NewEvent(state.EventDealResult, playerID,
		fmt.Sprintf("%s and %s close the deal", proposer.Name, other.Name)))
	// A closed deal counts as a successful encounter for the offense, so the
	// second-encounter offer stays on the table.
	e.afterDisposition(g, bus, rd, true)
	return nil
}

// grantDealColony moves one of the player's ships onto the granted planet.
func (e *Engine) grantDealColony(g *state.GameState, bus *state.Bus, p *state.PlayerState, planetID string) {
	if planetID == "" {
		return
	}
	planet := g.PlanetByID(planetID)
	if planet == nil {
		return
	}
	if _, lifted := liftShips(g, p, 1); lifted == 0 {
		return
	}
	planet.AddShips(p.Color, 1)
	ev := state.NewEvent(state.EventColonyEstablished, p.ID,
		fmt.Sprintf("%s gains a colony on %s by agreement", p.Name, planetID))
	ev.Color = p.Color
	bus.Publish(ev)
	e.registry.DispatchColonyGained(g, bus, p.ID, planetID)
}

func (e *Engine) dealReject(g *state.GameState, bus *state.Bus, playerID string) error {
	rd, ok := g.PhaseData.(*state.ResolutionData)
	if !ok || !rd.DealInProgress {
		return fmt.Errorf("no deal on the table")
	}
	if !g.IsMainPlayer(playerID) {
		return fmt.Errorf("only main players negotiate")
	}
	e.failDeal(g, bus, rd, fmt.Sprintf("%s walks away from the table", g.Players[playerID].Name))
	return nil
}

func (e *Engine) dealTimeout(g *state.GameState, bus *state.Bus) error {
	rd, ok := g.PhaseData.(*state.ResolutionData)
	if !ok || !rd.DealInProgress {
		return fmt.Errorf("no deal on the table")
	}
	if time.Now().Before(rd.DealDeadline) {
		return fmt.Errorf("the deadline has not passed")
	}
	e.failDeal(g, bus, rd, "the deal deadline expires")
	return nil
}

// failDeal punishes both main players: three ships each to the warp.
func (e *Engine) failDeal(g *state.GameState, bus *state.Bus, rd *state.ResolutionData, reason string) {
	rd.Outcome = state.DealFailed{}
	rd.DealInProgress = false
	g.AddLog("%s", reason)
	for _, p := range []*state.PlayerState{g.Offense(), g.Defense()} {
		if p == nil {
			continue
		}
		if _, lifted := liftShips(g, p, 3); lifted > 0 {
			e.warpShips(g, bus, p.Color, lifted)
		}
	}
	bus.Publish(state.NewEvent(state.EventDealResult, g.ActivePlayerID, "the deal failed: both sides pay in ships"))
	e.afterDisposition(g, bus, rd, false)
}

func (e *Engine) secondEncounter(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	rd, ok := g.PhaseData.(*state.ResolutionData)
	if !ok || !rd.CanHaveSecondEncounter || rd.SecondEncounterDecided {
		return fmt.Errorf("no second encounter on offer")
	}
	if !g.IsOffense(playerID) {
		return fmt.Errorf("only the offense decides")
	}
	rd.SecondEncounterDecided = true
	if !a.Accept {
		e.endTurn(g, bus)
		return nil
	}
	g.EncounterNumber = 2
	e.clearEncounter(g)
	bus.Publish(state.NewEvent(state.EventSecondEncounter, playerID,
		fmt.Sprintf("%s presses on to a second encounter", g.Offense().Name)))
	// The second encounter runs the full cycle again, regroup included.
	e.enterRegroup(g, bus)
	return nil
}

// clearEncounter drops the encounter state and per-encounter power flags.
// Ships still committed to the gate (deals leave them there) go back where
// they were lifted from.
func (e *Engine) clearEncounter(g *state.GameState) {
	if enc := g.Encounter; enc != nil {
		if enc.OffenseShips > 0 {
			returnToSources(g, g.Offense().Color, enc.OffenseSources)
			enc.OffenseShips = 0
		}
		for id, ally := range enc.OffensiveAllies {
			if ally.Ships > 0 {
				returnToSources(g, g.Players[id].Color, ally.Sources)
				ally.Ships = 0
			}
		}
		for id, ally := range enc.DefensiveAllies {
			if ally.Ships > 0 {
				returnToSources(g, g.Players[id].Color, ally.Sources)
				ally.Ships = 0
			}
		}
	}
	g.Encounter = nil
	for _, p := range g.Players {
		p.PowerState.ClearEncounterFlags()
	}
}

// otherMain returns the main player opposite the given one.
func (e *Engine) otherMain(g *state.GameState, playerID string) *state.PlayerState {
	if g.IsOffense(playerID) {
		return g.Defense()
	}
	return g.Offense()
}

// endTurn closes the encounter, rotates the offense and opens the next turn.
func (e *Engine) endTurn(g *state.GameState, bus *state.Bus) {
	e.clearEncounter(g)
	for _, p := range g.Players {
		p.PowerState.UsedThisTurn = false
	}
	bus.Publish(state.NewEvent(state.EventTurnEnded, g.ActivePlayerID,
		fmt.Sprintf("%s's turn ends", g.Offense().Name)))

	for i, id := range g.TurnOrder {
		if id == g.ActivePlayerID {
			g.ActivePlayerID = g.TurnOrder[(i+1)%len(g.TurnOrder)]
			break
		}
	}
	g.TurnNumber++
	g.EncounterNumber = 1
	g.RecalculateColonies()
	if g.Finished() {
		return
	}
	e.enterPhase(g, bus, &state.StartTurnData{})
	e.checkStartTurnHand(g, bus)
}
