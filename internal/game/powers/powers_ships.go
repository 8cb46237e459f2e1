package powers

import (
	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Ship-economy powers: warp traffic, regroup retrieval and gate limits.

// Zombie's ships never enter the warp. The veto hook lands them back on a
// colony itself, so the engine skips the warp transfer entirely.
var zombieHooks = Hooks{
	CanShipsGoToWarp: func(ctx *Context, color cards.Color, count int) bool {
		owner := ctx.Owner()
		if color != owner.Color {
			return true
		}
		returnShipsHome(ctx, owner, count)
		ctx.PowerUsed("%s cannot die: %d ship(s) return home instead of warping (Zombie)", owner.Name, count)
		return false
	},
	OnFlareWild: func(ctx *Context, playerID string) *Result {
		owner := ctx.Owner()
		n := ctx.State.RetrieveFromWarp(owner.Color, 1)
		returnShipsHome(ctx, owner, n)
		if n > 0 {
			ctx.Log("%s raises a ship from the warp (Zombie flare)", owner.Name)
		}
		return nil
	},
	OnFlareSuper: func(ctx *Context, playerID string) *Result {
		owner := ctx.Owner()
		n := ctx.State.RetrieveFromWarp(owner.Color, ctx.State.Warp[owner.Color])
		returnShipsHome(ctx, owner, n)
		if n > 0 {
			ctx.Log("%s empties the warp of %d ship(s) (super Zombie flare)", owner.Name, n)
		}
		return nil
	},
}

// Void removes ships it defeats from the game instead of warping them.
var voidHooks = Hooks{
	CanShipsGoToWarp: func(ctx *Context, color cards.Color, count int) bool {
		owner := ctx.Owner()
		if !ctx.IsDefense() || color == owner.Color {
			return true
		}
		ctx.State.Removed[color] += count
		victim := ctx.State.PlayerByColor(color)
		if victim != nil {
			ctx.PowerUsed("%s erases %d of %s's ship(s) from existence (Void)", owner.Name, count, victim.Name)
		}
		return false
	},
}

// Healer returns one of another player's warped ships to their colonies.
var healerHooks = Hooks{
	OnShipsToWarp: func(ctx *Context, color cards.Color, count int) *Result {
		owner := ctx.Owner()
		if color == owner.Color || count <= 0 {
			return nil
		}
		patient := ctx.State.PlayerByColor(color)
		if patient == nil {
			return nil
		}
		n := ctx.State.RetrieveFromWarp(color, 1)
		if n == 0 {
			return nil
		}
		returnShipsHome(ctx, patient, n)
		ctx.PowerUsed("%s heals one of %s's ships back from the warp", owner.Name, patient.Name)
		return nil
	},
	OnFlareWild: func(ctx *Context, playerID string) *Result {
		owner := ctx.Owner()
		n := ctx.State.RetrieveFromWarp(owner.Color, 1)
		returnShipsHome(ctx, owner, n)
		if n > 0 {
			ctx.Log("%s heals one of their own ships (Healer flare)", owner.Name)
		}
		return nil
	},
	OnFlareSuper: func(ctx *Context, playerID string) *Result {
		owner := ctx.Owner()
		n := ctx.State.RetrieveFromWarp(owner.Color, 3)
		returnShipsHome(ctx, owner, n)
		if n > 0 {
			ctx.Log("%s heals %d ship(s) back from the warp (super Healer flare)", owner.Name, n)
		}
		return nil
	},
}

// Vacuum drags defending ships from the rest of the home system onto the
// targeted planet, one ship per planet up to three.
var vacuumHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		enc := ctx.State.Encounter
		if phase != state.PhaseLaunch || !ctx.IsOffense() || enc == nil || enc.TargetPlanetID == "" {
			return
		}
		defense := ctx.State.Defense()
		target := ctx.State.PlanetByID(enc.TargetPlanetID)
		if defense == nil || target == nil {
			return
		}
		pulled := 0
		for _, planet := range defense.Planets {
			if pulled == 3 || planet.ID == target.ID {
				continue
			}
			if planet.ColonyOf(defense.Color) > 1 {
				pulled += planet.RemoveShips(defense.Color, 1)
			}
		}
		if pulled > 0 {
			target.AddShips(defense.Color, pulled)
			ctx.PowerUsed("%s drags %d of %s's ship(s) onto the targeted planet (Vacuum)",
				ctx.Owner().Name, pulled, defense.Name)
		}
	},
}

// Fido fetches every warped ship during regroup instead of one.
var fidoHooks = Hooks{
	ModifyRegroupCount: func(ctx *Context) int {
		owner := ctx.Owner()
		n := ctx.State.Warp[owner.Color]
		if n > 1 {
			ctx.PowerUsed("%s fetches all %d ship(s) from the warp (Fido)", owner.Name, n)
		}
		return n
	},
}

// Warpish retrieves one extra ship per foreign colony held.
var warpishHooks = Hooks{
	ModifyRegroupCount: func(ctx *Context) int {
		bonus := ctx.Owner().ForeignColonies
		if bonus < 1 {
			bonus = 1
		}
		return 1 + bonus
	},
}

// Reserve pours extra ally ships into the encounter during reveal, leaving at
// least one ship behind on every colony tapped.
var reserveHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		enc := ctx.State.Encounter
		if phase != state.PhaseReveal || enc == nil {
			return
		}
		commitment, ok := enc.OffensiveAllies[ctx.OwnerID]
		if !ok {
			return
		}
		owner := ctx.Owner()
		sent := 0
		for _, planet := range owner.Planets {
			if sent == 4 {
				break
			}
			for planet.ColonyOf(owner.Color) > 1 && sent < 4 {
				planet.RemoveShips(owner.Color, 1)
				commitment.Sources = append(commitment.Sources, state.ShipSource{PlanetID: planet.ID, Count: 1})
				sent++
			}
		}
		if sent > 0 {
			commitment.Ships += sent
			ctx.PowerUsed("%s commits %d reserve ship(s) to the encounter", owner.Name, sent)
		}
	},
}

// Amoeba oozes: no practical gate limit.
var amoebaHooks = Hooks{
	ModifyMaxShipsInGate: func(ctx *Context) int {
		ctx.PowerUsed("%s oozes through the gate without limit (Amoeba)", ctx.Owner().Name)
		return 20
	},
}

var humanHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseAlliance || !ctx.IsMainPlayer() {
			return
		}
		if _, ok := ctx.DrawCard(); ok {
			ctx.PowerUsed("%s draws a card for diplomacy (Human)", ctx.Owner().Name)
		}
	},
	ModifyMaxShipsInGate: func(ctx *Context) int {
		return ctx.State.Rules.MaxShipsInGate + 1
	},
	OnFlareWild: func(ctx *Context, playerID string) *Result {
		if _, ok := ctx.DrawCard(); ok {
			ctx.Log("%s draws a card (Human flare)", ctx.Owner().Name)
		}
		return nil
	},
	OnFlareSuper: func(ctx *Context, playerID string) *Result {
		drawn := 0
		for i := 0; i < 2; i++ {
			if _, ok := ctx.DrawCard(); ok {
				drawn++
			}
		}
		if drawn > 0 {
			ctx.Log("%s draws %d card(s) (super Human flare)", ctx.Owner().Name, drawn)
		}
		return nil
	},
}

// Hate marks its first victim and presses harder against them forever after.
var hateHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		enc := ctx.State.Encounter
		if phase != state.PhaseLaunch || !ctx.IsOffense() || enc == nil {
			return
		}
		ps := &ctx.Owner().PowerState
		if ps.HatedEnemyID == "" {
			ps.HatedEnemyID = enc.DefenseID
			ctx.PowerUsed("%s declares %s the hated enemy", ctx.Owner().Name, ctx.State.Players[enc.DefenseID].Name)
		}
	},
	ModifyMaxShipsInGate: func(ctx *Context) int {
		enc := ctx.State.Encounter
		ps := ctx.Owner().PowerState
		if enc != nil && ps.HatedEnemyID != "" && enc.DefenseID == ps.HatedEnemyID {
			return ctx.State.Rules.MaxShipsInGate + 2
		}
		return ctx.State.Rules.MaxShipsInGate
	},
}

// Spiff announces the daring leap; the crash landing itself is part of the
// normal loss handling.
var spiffHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseLaunch || !ctx.IsOffense() {
			return
		}
		ctx.Log("%s lines up a daring leap (Spiff)", ctx.Owner().Name)
	},
}

// Tick-Tock wins by attrition: one token per regroup on its own turns.
var tickTockHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseRegroup || ctx.OwnerID != ctx.State.ActivePlayerID {
			return
		}
		owner := ctx.Owner()
		owner.PowerState.Tokens++
		goal := len(ctx.State.TurnOrder) + 3
		ctx.PowerUsed("%s's clock advances to %d of %d (Tick-Tock)", owner.Name, owner.PowerState.Tokens, goal)
		if owner.PowerState.Tokens >= goal && !ctx.State.Finished() {
			ctx.State.Winners = []string{owner.ID}
			ev := state.NewEvent(state.EventGameOver, owner.ID, owner.Name+" wins as the clock runs out")
			ev.Power = owner.Power
			ctx.Events.Publish(ev)
		}
	},
}
