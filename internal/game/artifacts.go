package game

import (
	"fmt"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// playArtifact validates the whole play first and only then mutates state, so
// a rejected artifact leaves no trace.
func (e *Engine) playArtifact(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	p := g.Players[playerID]
	if !p.HasCard(a.CardID) {
		return fmt.Errorf("card %q is not in your hand", a.CardID)
	}
	card := g.AllCards[a.CardID]
	if card.Type != cards.TypeArtifact {
		return fmt.Errorf("%s is not an artifact", card.Name())
	}
	rule, ok := e.artifacts[card.Artifact]
	if !ok {
		return fmt.Errorf("%s cannot be played", card.Name())
	}
	phaseOK := false
	for _, name := range rule.Phases {
		if name == g.Phase().String() {
			phaseOK = true
		}
	}
	if !phaseOK {
		return fmt.Errorf("%s cannot be played during %s", card.Name(), g.Phase())
	}
	if rule.MainOnly && !g.IsMainPlayer(playerID) {
		return fmt.Errorf("only a main player may play %s", card.Name())
	}

	apply, err := e.artifactEffect(g, bus, p, card, a)
	if err != nil {
		return err
	}

	p.RemoveCard(a.CardID)
	g.Cosmic.ToDiscard(a.CardID)
	ev := state.NewEvent(state.EventArtifactPlayed, playerID, card.Name())
	ev.CardID = a.CardID
	bus.Publish(ev)
	apply()
	return nil
}

// artifactEffect finishes validation for one artifact kind and returns the
// deferred application.
func (e *Engine) artifactEffect(g *state.GameState, bus *state.Bus, p *state.PlayerState, card cards.Card, a Action) (func(), error) {
	switch card.Artifact {
	case cards.ArtifactCosmicZap:
		target, err := g.Player(a.TargetID)
		if err != nil {
			return nil, err
		}
		if target.Power == "" || target.PowerState.Zapped {
			return nil, fmt.Errorf("%s has no power worth zapping", target.Name)
		}
		return func() {
			target.PowerState.Zapped = true
			ev := state.NewEvent(state.EventPowerZapped, p.ID,
				fmt.Sprintf("%s zaps %s's power for the encounter", p.Name, target.Name))
			ev.TargetID = target.ID
			ev.Power = target.Power
			bus.Publish(ev)
		}, nil

	case cards.ArtifactCardZap:
		rd, ok := g.PhaseData.(*state.RevealData)
		if !ok || len(rd.Reinforcements) == 0 {
			return nil, fmt.Errorf("no side card to negate")
		}
		return func() {
			last := rd.Reinforcements[len(rd.Reinforcements)-1]
			rd.Reinforcements = rd.Reinforcements[:len(rd.Reinforcements)-1]
			g.AddLog("%s negates %s's %s", p.Name,
				g.Players[last.PlayerID].Name, g.AllCards[last.CardID].Name())
		}, nil

	case cards.ArtifactMobiusTubes:
		if g.Warp[p.Color] == 0 {
			return nil, fmt.Errorf("you have no ships in the warp")
		}
		return func() {
			n := g.RetrieveFromWarp(p.Color, g.Warp[p.Color])
			landShips(g, p, n)
			ev := state.NewEvent(state.EventShipsRetrieved, p.ID,
				fmt.Sprintf("%s frees %d ship(s) from the warp", p.Name, n))
			ev.Color = p.Color
			ev.Amount = n
			bus.Publish(ev)
			e.registry.DispatchShipsRetrieved(g, bus, p.Color, n)
		}, nil

	case cards.ArtifactPlague:
		target, err := g.Player(a.TargetID)
		if err != nil {
			return nil, err
		}
		return func() {
			n := g.DiscardHand(target)
			e.drawCards(g, bus, target, g.Rules.HandSize)
			g.AddLog("plague strikes %s: %d card(s) discarded for a forced redraw", target.Name, n)
		}, nil

	case cards.ArtifactForceField:
		if g.Encounter == nil {
			return nil, fmt.Errorf("no alliances to dissolve")
		}
		return func() {
			enc := g.Encounter
			for id, ally := range enc.OffensiveAllies {
				returnToSources(g, g.Players[id].Color, ally.Sources)
			}
			for id, ally := range enc.DefensiveAllies {
				returnToSources(g, g.Players[id].Color, ally.Sources)
			}
			enc.OffensiveAllies = make(map[string]*state.AllyCommitment)
			enc.DefensiveAllies = make(map[string]*state.AllyCommitment)
			g.AddLog("%s raises a force field: every alliance dissolves", p.Name)
		}, nil

	case cards.ArtifactEmotionControl:
		pd, ok := g.PhaseData.(*state.PlanningData)
		if !ok {
			return nil, fmt.Errorf("emotions can only be controlled during planning")
		}
		target, err := g.Player(a.TargetID)
		if err != nil {
			return nil, err
		}
		if !g.IsMainPlayer(target.ID) {
			return nil, fmt.Errorf("only a main player's card can be swapped")
		}
		if (g.IsOffense(target.ID) && !pd.OffenseReady) || (g.IsDefense(target.ID) && !pd.DefenseReady) {
			return nil, fmt.Errorf("%s has no card locked in", target.Name)
		}
		return func() {
			var negID string
			for _, id := range target.Hand {
				if g.AllCards[id].Type == cards.TypeNegotiate {
					negID = id
					break
				}
			}
			if negID == "" {
				g.AddLog("%s holds no negotiate: the emotion control has nothing to swap in", target.Name)
				return
			}
			target.RemoveCard(negID)
			slot := &pd.OffenseCardID
			if g.IsDefense(target.ID) {
				slot = &pd.DefenseCardID
			}
			target.Hand = append(target.Hand, *slot)
			*slot = negID
			if g.Encounter != nil {
				if g.IsOffense(target.ID) {
					g.Encounter.OffenseCardID = negID
				} else {
					g.Encounter.DefenseCardID = negID
				}
			}
			g.AddLog("%s swaps %s's chosen card for a negotiate", p.Name, target.Name)
		}, nil

	case cards.ArtifactIonicGas:
		if g.Encounter == nil {
			return nil, fmt.Errorf("no encounter to cancel")
		}
		return func() {
			e.cancelEncounter(g, bus, p)
		}, nil

	case cards.ArtifactQuash:
		rd, ok := g.PhaseData.(*state.ResolutionData)
		if !ok || !rd.DealInProgress {
			return nil, fmt.Errorf("there is no deal to quash")
		}
		return func() {
			e.failDeal(g, bus, rd, fmt.Sprintf("%s quashes the deal", p.Name))
		}, nil
	}
	return nil, fmt.Errorf("%s has no effect", card.Name())
}

// cancelEncounter sends every committed ship home and ends the turn without a
// resolution.
func (e *Engine) cancelEncounter(g *state.GameState, bus *state.Bus, by *state.PlayerState) {
	enc := g.Encounter
	offense := g.Offense()
	returnToSources(g, offense.Color, enc.OffenseSources)
	enc.OffenseShips = 0
	for id, ally := range enc.OffensiveAllies {
		returnToSources(g, g.Players[id].Color, ally.Sources)
	}
	for id, ally := range enc.DefensiveAllies {
		returnToSources(g, g.Players[id].Color, ally.Sources)
	}
	// Selected encounter cards go back to their owners' hands.
	if pd, ok := g.PhaseData.(*state.PlanningData); ok {
		if pd.OffenseCardID != "" {
			offense.Hand = append(offense.Hand, pd.OffenseCardID)
		}
		if pd.DefenseCardID != "" && g.Defense() != nil {
			g.Defense().Hand = append(g.Defense().Hand, pd.DefenseCardID)
		}
	}
	bus.Publish(state.NewEvent(state.EventEncounterCanceled, by.ID,
		fmt.Sprintf("%s floods the encounter with ionic gas", by.Name)))
	e.endTurn(g, bus)
}
