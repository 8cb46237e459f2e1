package powers

import (
	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Powers that rewrite or react to the computed encounter outcome. Rewrites go
// through the resolution payload so the engine applies the final form.

func flipAttackOutcome(ctx *Context, reason string) {
	rd := resolutionData(ctx)
	if rd == nil {
		return
	}
	switch rd.Outcome.(type) {
	case state.OffenseWins:
		rd.Outcome = state.DefenseWins{}
	case state.DefenseWins:
		rd.Outcome = state.OffenseWins{}
	default:
		return
	}
	ctx.PowerUsed("%s", reason)
}

var antiMatterHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		if !ctx.IsMainPlayer() {
			return nil
		}
		flipAttackOutcome(ctx, ctx.Owner().Name+" inverts the totals, the lower side wins (Anti-Matter)")
		return nil
	},
}

var loserHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		if !ctx.IsMainPlayer() {
			return nil
		}
		flipAttackOutcome(ctx, ctx.Owner().Name+" declares the loser the winner (Loser)")
		return nil
	},
}

// Pacifist turns an attack-versus-negotiate loss into a win when the owner
// played the negotiate.
var pacifistHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		side, main := ownerSide(ctx)
		if rd == nil || !main {
			return nil
		}
		avn, ok := rd.Outcome.(state.AttackVsNegotiate)
		if !ok || avn.Winner == side {
			return nil
		}
		if side == state.SideOffense {
			rd.Outcome = state.OffenseWins{}
		} else {
			rd.Outcome = state.DefenseWins{}
		}
		ctx.PowerUsed("%s wins by refusing to fight (Pacifist)", ctx.Owner().Name)
		return nil
	},
}

// Mind wins for the defense when its declared prediction names the card the
// offense actually revealed.
var mindHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		enc := ctx.State.Encounter
		if rd == nil || enc == nil || !ctx.IsDefense() {
			return nil
		}
		prediction := ctx.Owner().PowerState.Prediction
		if prediction == "" {
			return nil
		}
		revealed := cardIdentifier(ctx.State.AllCards[enc.OffenseCardID])
		if prediction != revealed {
			ctx.Log("%s predicted %s but %s was revealed", ctx.Owner().Name, prediction, revealed)
			return nil
		}
		rd.Outcome = state.DefenseWins{}
		ctx.PowerUsed("%s predicted %s exactly and wins the encounter (Mind)", ctx.Owner().Name, revealed)
		return nil
	},
	RequiresDecision: func(ctx *Context) bool {
		return ctx.IsDefense() && ctx.State.Phase() == state.PhasePlanning
	},
}

// Mutant converts losses into card draws, one per lost ship.
var mutantHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		enc := ctx.State.Encounter
		if rd == nil || enc == nil || !lostEncounter(ctx, rd.Outcome) {
			return nil
		}
		lost := enc.OffenseShips
		if ctx.IsDefense() {
			if planet := ctx.State.PlanetByID(enc.TargetPlanetID); planet != nil {
				lost = planet.ColonyOf(ctx.Owner().Color)
			}
		}
		if lost < 1 {
			lost = 1
		}
		drawn := 0
		for i := 0; i < lost; i++ {
			if _, ok := ctx.DrawCard(); ok {
				drawn++
			}
		}
		ctx.PowerUsed("%s draws %d card(s) from defeat (Mutant)", ctx.Owner().Name, drawn)
		return nil
	},
}

var gamblerHooks = Hooks{
	OnPlanningStart: func(ctx *Context) {
		if !ctx.IsMainPlayer() {
			return
		}
		ctx.Owner().PowerState.DoubleStakes = true
		ctx.PowerUsed("%s plays face up for double stakes (Gambler)", ctx.Owner().Name)
	},
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		if rd == nil || !ctx.Owner().PowerState.DoubleStakes {
			return nil
		}
		if !wonEncounter(ctx, rd.Outcome) {
			return nil
		}
		for i := 0; i < 2; i++ {
			ctx.DrawCard()
		}
		ctx.Log("%s collects two cards on the wager", ctx.Owner().Name)
		return nil
	},
}

var willHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseReveal || !ctx.IsMainPlayer() {
			return
		}
		ctx.Owner().PowerState.DoubleStakes = true
		ctx.PowerUsed("%s declares double or nothing (Will)", ctx.Owner().Name)
	},
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		if rd == nil || !ctx.Owner().PowerState.DoubleStakes {
			return nil
		}
		if !wonEncounter(ctx, rd.Outcome) {
			return nil
		}
		for i := 0; i < 2; i++ {
			ctx.DrawCard()
		}
		ctx.Log("%s doubles the reward", ctx.Owner().Name)
		return nil
	},
}

// Kamikaze destroys every ship on both sides and takes over the whole ship
// disposition, so the engine skips the normal win handling.
var kamikazeHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		enc := ctx.State.Encounter
		if enc == nil || !ctx.IsMainPlayer() {
			return nil
		}
		g := ctx.State
		offense := g.Offense()
		defense := g.Defense()

		total := enc.OffenseShips
		g.ShipsToWarp(offense.Color, enc.OffenseShips)
		enc.OffenseShips = 0

		for id, ally := range enc.OffensiveAllies {
			g.ShipsToWarp(g.Players[id].Color, ally.Ships)
			total += ally.Ships
			ally.Ships = 0
		}
		for id, ally := range enc.DefensiveAllies {
			g.ShipsToWarp(g.Players[id].Color, ally.Ships)
			total += ally.Ships
			ally.Ships = 0
		}
		if defense != nil {
			if planet := g.PlanetByID(enc.TargetPlanetID); planet != nil {
				n := planet.RemoveShips(defense.Color, planet.ColonyOf(defense.Color))
				g.ShipsToWarp(defense.Color, n)
				total += n
			}
		}
		ctx.PowerUsed("%s destroys all %d ship(s) in the encounter (Kamikaze)", ctx.Owner().Name, total)
		return &Result{PreventDefault: true}
	},
}

// Clone retrieves the owner's winning encounter card from the discard.
var cloneHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		enc := ctx.State.Encounter
		if rd == nil || enc == nil || !wonEncounter(ctx, rd.Outcome) {
			return nil
		}
		cardID := enc.OffenseCardID
		if ctx.IsDefense() {
			cardID = enc.DefenseCardID
		}
		if !ctx.State.Cosmic.RemoveFromDiscard(cardID) {
			return nil
		}
		owner := ctx.Owner()
		owner.Hand = append(owner.Hand, cardID)
		ctx.PowerUsed("%s returns %s to hand (Clone)", owner.Name, ctx.State.AllCards[cardID].Name())
		return nil
	},
}

// Trader swaps hands with the defense after winning as the offense.
var traderHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		if rd == nil || !ctx.IsOffense() || !wonEncounter(ctx, rd.Outcome) {
			return nil
		}
		defense := ctx.State.Defense()
		if defense == nil {
			return nil
		}
		owner := ctx.Owner()
		owner.Hand, defense.Hand = defense.Hand, owner.Hand
		ctx.PowerUsed("%s trades hands with %s (Trader)", owner.Name, defense.Name)
		return nil
	},
}

var filchHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		target := richestOpponent(ctx)
		if target == nil {
			return nil
		}
		if _, ok := takeRandomCard(ctx, target, ctx.Owner()); ok {
			ctx.PowerUsed("%s filches a card from %s", ctx.Owner().Name, target.Name)
		}
		return nil
	},
}

// Observer profits from defensive wins it took no part in.
var observerHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		if rd == nil || ctx.IsMainPlayer() || ctx.IsAlly() {
			return nil
		}
		if _, ok := rd.Outcome.(state.DefenseWins); !ok {
			return nil
		}
		if _, ok := ctx.DrawCard(); ok {
			ctx.PowerUsed("%s draws a card for staying out of it (Observer)", ctx.Owner().Name)
		}
		return nil
	},
}

// Hacker collects defensive compensation in situations that pay nothing by
// default.
var hackerHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		if rd == nil || !ctx.IsDefense() {
			return nil
		}
		offense := ctx.State.Offense()
		owner := ctx.Owner()
		switch rd.Outcome.(type) {
		case state.DealSuccess, state.DealFailed:
			taken := 0
			for i := 0; i < 2; i++ {
				if _, ok := takeRandomCard(ctx, offense, owner); ok {
					taken++
				}
			}
			if taken > 0 {
				ctx.PowerUsed("%s hacks %d card(s) out of %s", owner.Name, taken, offense.Name)
			}
		case state.OffenseWins:
			n := ctx.State.Encounter.OffenseShips
			if n > 4 {
				n = 4
			}
			drawn := 0
			for i := 0; i < n; i++ {
				if _, ok := ctx.DrawCard(); ok {
					drawn++
				}
			}
			if drawn > 0 {
				ctx.PowerUsed("%s draws %d card(s) in compensation (Hacker)", owner.Name, drawn)
			}
		}
		return nil
	},
}

// Grudge tokens tax future card draws of whoever beats the owner.
var grudgeHooks = Hooks{
	InitState: func(ps *state.PowerState) { ps.TokensBy = make(map[string]int) },
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		if rd == nil || !lostEncounter(ctx, rd.Outcome) {
			return nil
		}
		beaterID := ctx.State.ActivePlayerID
		if ctx.IsOffense() {
			beaterID = ctx.State.Encounter.DefenseID
		}
		ps := &ctx.Owner().PowerState
		if ps.TokensBy == nil {
			ps.TokensBy = make(map[string]int)
		}
		ps.TokensBy[beaterID]++
		ctx.PowerUsed("%s places a grudge token on %s", ctx.Owner().Name, ctx.State.Players[beaterID].Name)
		return nil
	},
	OnCardsDrawn: func(ctx *Context, playerID string, count int) {
		if playerID == ctx.OwnerID {
			return
		}
		ps := &ctx.Owner().PowerState
		tokens := ps.TokensBy[playerID]
		if tokens == 0 {
			return
		}
		debtor := ctx.State.Players[playerID]
		paid := discardRandomCards(ctx, debtor, tokens)
		if paid > 0 {
			delete(ps.TokensBy, playerID)
			ctx.PowerUsed("%s collects %d card(s) on the grudge against %s", ctx.Owner().Name, paid, debtor.Name)
		}
	},
}

// Citadel shields the defense's colony from one lost encounter per turn. The
// engine consults ColonyShield before removing the colony.
var citadelHooks = Hooks{
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		rd := resolutionData(ctx)
		ps := &ctx.Owner().PowerState
		if rd == nil || !ctx.IsDefense() || ps.UsedThisTurn {
			return nil
		}
		if _, ok := rd.Outcome.(state.OffenseWins); !ok {
			return nil
		}
		ps.ColonyShield = true
		ps.UsedThisTurn = true
		ctx.PowerUsed("%s's citadel holds, the colony survives", ctx.Owner().Name)
		return nil
	},
}

// Fury exacts a price whenever its owner loses a home colony.
var furyHooks = Hooks{
	OnColonyLost: func(ctx *Context, playerID, planetID string) {
		if playerID != ctx.OwnerID {
			return
		}
		owner := ctx.Owner()
		planet := ctx.State.PlanetByID(planetID)
		if planet == nil || planet.Owner != owner.Color {
			return
		}
		offense := ctx.State.Offense()
		if offense == nil || offense.ID == owner.ID {
			return
		}
		if home := ctx.State.FirstHomeColony(offense); home != nil {
			n := home.RemoveShips(offense.Color, 1)
			ctx.State.ShipsToWarp(offense.Color, n)
			if n > 0 {
				ctx.PowerUsed("%s takes revenge: %s loses a ship to the warp (Fury)", owner.Name, offense.Name)
			}
		}
	},
}

// Shadow captures one ship from each opposing warp delivery, removing it from
// the game.
var shadowHooks = Hooks{
	OnShipsToWarp: func(ctx *Context, color cards.Color, count int) *Result {
		owner := ctx.Owner()
		if color == owner.Color || count <= 0 {
			return nil
		}
		if ctx.State.RetrieveFromWarp(color, 1) == 0 {
			return nil
		}
		ctx.State.Removed[color]++
		victim := ctx.State.PlayerByColor(color)
		if victim != nil {
			ctx.PowerUsed("%s's shadow swallows one of %s's ships", owner.Name, victim.Name)
		}
		return nil
	},
}
