package powers

import (
	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Total-modifying powers. All of these thread the reveal accumulator, so each
// sees the value produced by the powers dispatched before it.

var macronHooks = Hooks{
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		ownSide, main := ownerSide(ctx)
		if !main || side != ownSide {
			return total
		}
		ctx.PowerUsed("%s's ships each count four (Macron)", ctx.Owner().Name)
		return total - ships + ships*4
	},
}

var virusHooks = Hooks{
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		ownSide, main := ownerSide(ctx)
		if !main || side != ownSide {
			return total
		}
		reinforcements := total - ships - cardValue
		ctx.PowerUsed("%s multiplies ships by card value (Virus)", ctx.Owner().Name)
		return ships*cardValue + reinforcements
	},
}

var triplerHooks = Hooks{
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		ownSide, main := ownerSide(ctx)
		if !main || side != ownSide {
			return total
		}
		reinforcements := total - ships - cardValue
		ctx.PowerUsed("%s triples the card value (Tripler)", ctx.Owner().Name)
		return cardValue*3 + ships + reinforcements
	},
}

// Mirror rewrites the opponent's card value to its reverse on the 0-40 scale.
var mirrorHooks = Hooks{
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		ownSide, main := ownerSide(ctx)
		if !main || side == ownSide {
			return total
		}
		reversed := 40 - cardValue
		ctx.PowerUsed("%s reverses the opposing card from %d to %d (Mirror)",
			ctx.Owner().Name, cardValue, reversed)
		return total + reversed - cardValue
	},
}

var chosenHooks = Hooks{
	OnPlanningStart: func(ctx *Context) {
		if !ctx.IsOffense() {
			return
		}
		enc := ctx.State.Encounter
		if enc == nil {
			return
		}
		defense := ctx.State.Defense()
		if defense == nil {
			return
		}
		// Declare a total slightly above the expected opposition.
		declared := enc.OffenseShips + ownColonyShips(ctx.State, defense) + 8
		ctx.Owner().PowerState.ChosenTotal = declared
		ctx.PowerUsed("%s declares a winning total of %d (Chosen)", ctx.Owner().Name, declared)
	},
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		if !ctx.IsOffense() || side != state.SideOffense {
			return total
		}
		if declared := ctx.Owner().PowerState.ChosenTotal; declared > 0 {
			return declared
		}
		return total
	},
}

var warriorHooks = Hooks{
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		ownSide, main := ownerSide(ctx)
		if !main || side != ownSide {
			return total
		}
		tokens := ctx.Owner().PowerState.Tokens
		if tokens == 0 {
			return total
		}
		ctx.PowerUsed("%s adds %d experience token(s) (Warrior)", ctx.Owner().Name, tokens)
		return total + tokens
	},
	OnCombatResolved: func(ctx *Context, outcome state.Outcome) *Result {
		if ctx.IsMainPlayer() {
			ctx.Owner().PowerState.Tokens++
		}
		return nil
	},
	OnFlareWild: func(ctx *Context, playerID string) *Result {
		ctx.Owner().PowerState.Tokens++
		ctx.Log("%s gains an experience token from the Warrior flare", ctx.Owner().Name)
		return nil
	},
	OnFlareSuper: func(ctx *Context, playerID string) *Result {
		ctx.Owner().PowerState.Tokens += 2
		ctx.Log("%s gains two experience tokens from the super Warrior flare", ctx.Owner().Name)
		return nil
	},
}

// Fodder counts the owner's warp ships toward their side's total.
var fodderHooks = Hooks{
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		ownSide, main := ownerSide(ctx)
		if !main || side != ownSide {
			return total
		}
		warped := ctx.State.Warp[ctx.Owner().Color]
		if warped == 0 {
			return total
		}
		ctx.PowerUsed("%s counts %d warp ship(s) toward the total (Fodder)", ctx.Owner().Name, warped)
		return total + warped
	},
}

var pentaformHooks = Hooks{
	InitState: func(ps *state.PowerState) { ps.Form = 1 },
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseStartTurn || ctx.OwnerID != ctx.State.ActivePlayerID {
			return
		}
		owner := ctx.Owner()
		owner.PowerState.Form = owner.PowerState.Form%5 + 1
		ctx.PowerUsed("%s shifts to form %d (Pentaform)", owner.Name, owner.PowerState.Form)

		switch owner.PowerState.Form {
		case 2:
			for i := 0; i < 2; i++ {
				ctx.DrawCard()
			}
			ctx.Log("%s draws two extra cards", owner.Name)
		case 3:
			retrieved := ctx.State.RetrieveFromWarp(owner.Color, 2)
			returnShipsHome(ctx, owner, retrieved)
			if retrieved > 0 {
				ctx.Log("%s retrieves %d ship(s) from the warp", owner.Name, retrieved)
			}
		case 5:
			if target := richestOpponent(ctx); target != nil {
				if _, ok := takeRandomCard(ctx, target, owner); ok {
					ctx.Log("%s steals a card from %s", owner.Name, target.Name)
				}
			}
		}
	},
	ModifyAttackTotal: func(ctx *Context, side state.Side, total, ships, cardValue int) int {
		if ctx.Owner().PowerState.Form != 1 {
			return total
		}
		ownSide, main := ownerSide(ctx)
		if !main || side != ownSide {
			return total
		}
		return total + 4
	},
}

// Sorcerer swaps the two encounter cards once both are revealed, before
// totals are computed.
var sorcererHooks = Hooks{
	OnCardsRevealed: func(ctx *Context, offense, defense cards.Card) {
		if !ctx.IsMainPlayer() {
			return
		}
		enc := ctx.State.Encounter
		rd, ok := ctx.State.PhaseData.(*state.RevealData)
		if enc == nil || !ok {
			return
		}
		enc.OffenseCardID, enc.DefenseCardID = enc.DefenseCardID, enc.OffenseCardID
		rd.OffenseCardID, rd.DefenseCardID = rd.DefenseCardID, rd.OffenseCardID
		ctx.PowerUsed("%s swaps the two encounter cards (Sorcerer)", ctx.Owner().Name)
	},
}
