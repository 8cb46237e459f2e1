package game

import (
	"fmt"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Alliance, planning and reveal handling.

func (e *Engine) allianceInvite(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	ad, ok := g.PhaseData.(*state.AllianceData)
	if !ok || !g.IsMainPlayer(playerID) {
		return fmt.Errorf("only main players issue invitations")
	}
	if (g.IsOffense(playerID) && ad.OffenseInviteDone) || (g.IsDefense(playerID) && ad.DefenseInviteDone) {
		return fmt.Errorf("invitations already sent")
	}
	for _, id := range a.Invitees {
		if _, err := g.Player(id); err != nil {
			return err
		}
		if g.IsMainPlayer(id) {
			return fmt.Errorf("main players cannot be invited")
		}
	}
	if g.IsOffense(playerID) {
		ad.OffenseInvited = append([]string(nil), a.Invitees...)
		ad.OffenseInviteDone = true
	} else {
		ad.DefenseInvited = append([]string(nil), a.Invitees...)
		ad.DefenseInviteDone = true
	}
	if !ad.OffenseInviteDone || !ad.DefenseInviteDone {
		return nil
	}

	e.registry.DispatchAllianceInvitation(g, bus)
	e.advanceResponder(g, bus, ad)
	return nil
}

// invitedSides reports which sides invited the player.
func invitedSides(ad *state.AllianceData, id string) (offense, defense bool) {
	for _, x := range ad.OffenseInvited {
		if x == id {
			offense = true
		}
	}
	for _, x := range ad.DefenseInvited {
		if x == id {
			defense = true
		}
	}
	return offense, defense
}

// advanceResponder points CurrentResponderID at the next invited player who
// has not answered, clockwise from the offense, and closes the phase when
// everyone has.
func (e *Engine) advanceResponder(g *state.GameState, bus *state.Bus, ad *state.AllianceData) {
	start := 0
	for i, id := range g.TurnOrder {
		if id == g.ActivePlayerID {
			start = i
			break
		}
	}
	for i := 1; i <= len(g.TurnOrder); i++ {
		id := g.TurnOrder[(start+i)%len(g.TurnOrder)]
		if g.IsMainPlayer(id) {
			continue
		}
		off, def := invitedSides(ad, id)
		if !off && !def {
			continue
		}
		if _, answered := ad.Responses[id]; answered {
			continue
		}
		ad.CurrentResponderID = id
		return
	}
	ad.CurrentResponderID = ""
	e.enterPlanning(g, bus)
}

func (e *Engine) allianceRespond(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	ad, ok := g.PhaseData.(*state.AllianceData)
	if !ok || ad.CurrentResponderID != playerID {
		return fmt.Errorf("it is not your moment to respond")
	}
	resp := state.AllianceResponse{Joined: a.Side, Ships: a.Ships, Decline: a.Decline}
	p := g.Players[playerID]

	if !resp.Decline {
		off, def := invitedSides(ad, playerID)
		if (resp.Joined == state.SideOffense && !off) || (resp.Joined == state.SideDefense && !def) {
			return fmt.Errorf("you were not invited to that side")
		}
		if resp.Ships < 1 || resp.Ships > g.Rules.MaxAllyShips {
			return fmt.Errorf("ally ships must be between 1 and %d", g.Rules.MaxAllyShips)
		}
		if e.registry.DispatchAllianceResponse(g, bus, playerID, resp) {
			resp = state.AllianceResponse{Decline: true}
			g.AddLog("%s is barred from the alliance and must stand aside", p.Name)
		}
	}

	if !resp.Decline {
		sources, lifted := liftShips(g, p, resp.Ships)
		if lifted == 0 {
			return fmt.Errorf("no ships available to commit")
		}
		resp.Ships = lifted
		commitment := &state.AllyCommitment{Ships: lifted, Sources: sources}
		if resp.Joined == state.SideOffense {
			g.Encounter.OffensiveAllies[playerID] = commitment
		} else {
			g.Encounter.DefensiveAllies[playerID] = commitment
		}
		ev := state.NewEvent(state.EventAllianceFormed, playerID,
			fmt.Sprintf("%s joins the %s with %d ship(s)", p.Name, resp.Joined, lifted))
		ev.Color = p.Color
		ev.Amount = lifted
		bus.Publish(ev)
	} else {
		g.AddLog("%s stays out of the encounter", p.Name)
	}

	ad.Responses[playerID] = resp
	e.advanceResponder(g, bus, ad)
	return nil
}

// enterPlanning opens planning and redraws the defense's hand if it holds no
// encounter card.
func (e *Engine) enterPlanning(g *state.GameState, bus *state.Bus) {
	pd := &state.PlanningData{}
	e.enterPhase(g, bus, pd)
	e.registry.DispatchPlanningStart(g, bus)

	defense := g.Defense()
	if defense != nil && !defense.HasEncounterCard(g.AllCards) {
		g.DiscardHand(defense)
		e.drawCards(g, bus, defense, g.Rules.HandSize)
		pd.DefenseRedrew = true
		g.AddLog("%s held no encounter card and draws a fresh hand", defense.Name)
	}
}

func (e *Engine) planningSelect(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	pd, ok := g.PhaseData.(*state.PlanningData)
	if !ok || !g.IsMainPlayer(playerID) {
		return fmt.Errorf("only main players select encounter cards")
	}
	if (g.IsOffense(playerID) && pd.OffenseReady) || (g.IsDefense(playerID) && pd.DefenseReady) {
		return fmt.Errorf("card already selected")
	}
	p := g.Players[playerID]
	if !p.HasCard(a.CardID) {
		return fmt.Errorf("card %q is not in your hand", a.CardID)
	}
	if !g.AllCards[a.CardID].IsEncounterCard() {
		return fmt.Errorf("%s is not an encounter card", g.AllCards[a.CardID].Name())
	}

	p.RemoveCard(a.CardID)
	if g.IsOffense(playerID) {
		pd.OffenseCardID = a.CardID
		pd.OffenseReady = true
		g.Encounter.OffenseCardID = a.CardID
	} else {
		pd.DefenseCardID = a.CardID
		pd.DefenseReady = true
		g.Encounter.DefenseCardID = a.CardID
	}
	g.AddLog("%s locks in an encounter card", p.Name)
	e.registry.DispatchPlanningCardSelected(g, bus, playerID, a.CardID)

	if pd.OffenseReady && pd.DefenseReady {
		e.enterReveal(g, bus, pd)
	}
	return nil
}

// enterReveal publishes both cards, lets reveal-time powers act, computes the
// ship counts and either opens the reinforcement window or resolves at once.
func (e *Engine) enterReveal(g *state.GameState, bus *state.Bus, pd *state.PlanningData) {
	rd := &state.RevealData{
		OffenseCardID: pd.OffenseCardID,
		DefenseCardID: pd.DefenseCardID,
	}
	e.enterPhase(g, bus, rd)

	for _, cardID := range []string{rd.OffenseCardID, rd.DefenseCardID} {
		ev := state.NewEvent(state.EventCardRevealed, "", g.AllCards[cardID].Name())
		ev.CardID = cardID
		bus.Publish(ev)
	}
	e.registry.DispatchCardsRevealed(g, bus, g.AllCards[rd.OffenseCardID], g.AllCards[rd.DefenseCardID])

	// Reveal powers and card swaps may have moved things: read back from the
	// encounter before counting ships.
	enc := g.Encounter
	rd.OffenseCardID = enc.OffenseCardID
	rd.DefenseCardID = enc.DefenseCardID
	rd.OffenseShips = enc.OffenseShips
	for _, ally := range enc.OffensiveAllies {
		rd.OffenseShips += ally.Ships
	}
	defense := g.Defense()
	if planet := g.PlanetByID(enc.TargetPlanetID); planet != nil && defense != nil {
		rd.DefenseShips = planet.ColonyOf(defense.Color)
	}
	for _, ally := range enc.DefensiveAllies {
		rd.DefenseShips += ally.Ships
	}

	offCard, defCard := effectiveCards(g, rd)
	if offCard.Type == cards.TypeAttack && defCard.Type == cards.TypeAttack {
		return // reinforcement window stays open
	}
	e.finalizeReveal(g, bus, rd)
}

// effectiveCards resolves morphs into the two cards the encounter is actually
// fought with.
func effectiveCards(g *state.GameState, rd *state.RevealData) (cards.Card, cards.Card) {
	off := g.AllCards[rd.OffenseCardID]
	def := g.AllCards[rd.DefenseCardID]
	// A morph copies the opposing card. Two morphs collapse to a zero attack.
	if off.Type == cards.TypeMorph && def.Type == cards.TypeMorph {
		off.Type, off.Value = cards.TypeAttack, 0
		def.Type, def.Value = cards.TypeAttack, 0
		return off, def
	}
	if off.Type == cards.TypeMorph {
		off.Type, off.Value = def.Type, def.Value
	} else if def.Type == cards.TypeMorph {
		def.Type, def.Value = off.Type, off.Value
	}
	return off, def
}

func (e *Engine) revealReinforce(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	rd, ok := g.PhaseData.(*state.RevealData)
	if !ok {
		return fmt.Errorf("not in the reveal phase")
	}
	if !g.IsMainPlayer(playerID) && !g.IsAlly(playerID) {
		return fmt.Errorf("only encounter participants play reinforcements")
	}
	offCard, defCard := effectiveCards(g, rd)
	if offCard.Type != cards.TypeAttack || defCard.Type != cards.TypeAttack {
		return fmt.Errorf("reinforcements only matter in an attack against an attack")
	}
	p := g.Players[playerID]
	if !p.HasCard(a.CardID) {
		return fmt.Errorf("card %q is not in your hand", a.CardID)
	}
	card := g.AllCards[a.CardID]
	if card.Type != cards.TypeReinforcement {
		return fmt.Errorf("%s is not a reinforcement", card.Name())
	}

	p.RemoveCard(a.CardID)
	g.Cosmic.ToDiscard(a.CardID)
	side := state.SideDefense
	if g.IsOffense(playerID) {
		side = state.SideOffense
	} else if s, ok := g.AllySide(playerID); ok {
		side = s
	}
	rd.Reinforcements = append(rd.Reinforcements, state.ReinforcementPlay{
		PlayerID: playerID,
		CardID:   a.CardID,
		Side:     side,
		Value:    card.Value,
	})
	// A new side card reopens the window for everyone.
	rd.Passed = nil

	ev := state.NewEvent(state.EventReinforcement, playerID,
		fmt.Sprintf("%s adds %s to the %s side", p.Name, card.Name(), side))
	ev.CardID = a.CardID
	bus.Publish(ev)
	return nil
}

func (e *Engine) revealPass(g *state.GameState, bus *state.Bus, playerID string) error {
	rd, ok := g.PhaseData.(*state.RevealData)
	if !ok {
		return fmt.Errorf("not in the reveal phase")
	}
	if !g.IsMainPlayer(playerID) && !g.IsAlly(playerID) {
		return fmt.Errorf("only encounter participants pass")
	}
	if rd.Passed == nil {
		rd.Passed = make(map[string]bool)
	}
	rd.Passed[playerID] = true
	for _, id := range revealParticipants(g) {
		if !rd.Passed[id] {
			return nil
		}
	}
	e.finalizeReveal(g, bus, rd)
	return nil
}

// revealParticipants lists everyone with a say in the reinforcement window, in
// turn order.
func revealParticipants(g *state.GameState) []string {
	ids := make([]string, 0, len(g.TurnOrder))
	for _, id := range g.TurnOrder {
		if g.IsMainPlayer(id) || g.IsAlly(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// finalizeReveal computes the two totals, threads them through the power
// layer and hands the outcome to resolution.
func (e *Engine) finalizeReveal(g *state.GameState, bus *state.Bus, rd *state.RevealData) {
	offCard, defCard := effectiveCards(g, rd)

	offTotal := 0
	if offCard.Type == cards.TypeAttack {
		offTotal = rd.OffenseShips + offCard.Value + reinforcementSum(rd, state.SideOffense)
		offTotal = e.registry.ModifyAttackTotal(g, bus, state.SideOffense, offTotal, rd.OffenseShips, offCard.Value)
	}
	defTotal := 0
	if defCard.Type == cards.TypeAttack {
		defTotal = rd.DefenseShips + defCard.Value + reinforcementSum(rd, state.SideDefense)
		defTotal = e.registry.ModifyAttackTotal(g, bus, state.SideDefense, defTotal, rd.DefenseShips, defCard.Value)
	}
	rd.OffenseTotal = offTotal
	rd.DefenseTotal = defTotal

	// Compensation counts only the main player's own ships, not ally ships.
	offMain, defMain := 0, 0
	if enc := g.Encounter; enc != nil {
		offMain = enc.OffenseShips
		if defense := g.Defense(); defense != nil {
			if planet := g.PlanetByID(enc.TargetPlanetID); planet != nil {
				defMain = planet.ColonyOf(defense.Color)
			}
		}
	}
	outcome := resolveOutcome(offCard, defCard, offTotal, defTotal, offMain, defMain)
	g.AddLog("reveal: %s %d against %d", outcome, offTotal, defTotal)

	// Encounter cards hit the discard before resolution hooks run, so powers
	// that fish cards back out of the discard can.
	g.Cosmic.ToDiscard(rd.OffenseCardID)
	g.Cosmic.ToDiscard(rd.DefenseCardID)

	e.enterResolution(g, bus, outcome)
}

func reinforcementSum(rd *state.RevealData, side state.Side) int {
	sum := 0
	for _, play := range rd.Reinforcements {
		if play.Side == side {
			sum += play.Value
		}
	}
	return sum
}

// resolveOutcome is the pure comparison of the two effective cards. Ties go
// to the defense.
func resolveOutcome(offCard, defCard cards.Card, offTotal, defTotal, offShips, defShips int) state.Outcome {
	offAttack := offCard.Type == cards.TypeAttack
	defAttack := defCard.Type == cards.TypeAttack
	switch {
	case offAttack && defAttack:
		if offTotal > defTotal {
			return state.OffenseWins{}
		}
		return state.DefenseWins{}
	case offAttack && !defAttack:
		return state.AttackVsNegotiate{Winner: state.SideOffense, CompensationShips: defShips}
	case !offAttack && defAttack:
		return state.AttackVsNegotiate{Winner: state.SideDefense, CompensationShips: offShips}
	default:
		return state.DealMaking{}
	}
}
