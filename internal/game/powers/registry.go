package powers

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Power ids. Every id has a catalog entry and a Hooks implementation.
const (
	Amoeba         cards.PowerID = "AMOEBA"
	AntiMatter     cards.PowerID = "ANTI_MATTER"
	Chosen         cards.PowerID = "CHOSEN"
	Chrysalis      cards.PowerID = "CHRYSALIS"
	Citadel        cards.PowerID = "CITADEL"
	Clone          cards.PowerID = "CLONE"
	Cudgel         cards.PowerID = "CUDGEL"
	Dictator       cards.PowerID = "DICTATOR"
	Ethic          cards.PowerID = "ETHIC"
	Fido           cards.PowerID = "FIDO"
	Filch          cards.PowerID = "FILCH"
	Fodder         cards.PowerID = "FODDER"
	Fury           cards.PowerID = "FURY"
	Gambler        cards.PowerID = "GAMBLER"
	Grudge         cards.PowerID = "GRUDGE"
	Hacker         cards.PowerID = "HACKER"
	Hate           cards.PowerID = "HATE"
	Healer         cards.PowerID = "HEALER"
	Human          cards.PowerID = "HUMAN"
	Kamikaze       cards.PowerID = "KAMIKAZE"
	Loser          cards.PowerID = "LOSER"
	Macron         cards.PowerID = "MACRON"
	Mind           cards.PowerID = "MIND"
	Mirror         cards.PowerID = "MIRROR"
	Miser          cards.PowerID = "MISER"
	Mutant         cards.PowerID = "MUTANT"
	Observer       cards.PowerID = "OBSERVER"
	Oracle         cards.PowerID = "ORACLE"
	Pacifist       cards.PowerID = "PACIFIST"
	Parasite       cards.PowerID = "PARASITE"
	Pentaform      cards.PowerID = "PENTAFORM"
	Philanthropist cards.PowerID = "PHILANTHROPIST"
	Pickpocket     cards.PowerID = "PICKPOCKET"
	Reincarnator   cards.PowerID = "REINCARNATOR"
	Remora         cards.PowerID = "REMORA"
	Reserve        cards.PowerID = "RESERVE"
	Seeker         cards.PowerID = "SEEKER"
	Shadow         cards.PowerID = "SHADOW"
	Sorcerer       cards.PowerID = "SORCERER"
	Spiff          cards.PowerID = "SPIFF"
	TickTock       cards.PowerID = "TICK_TOCK"
	Trader         cards.PowerID = "TRADER"
	Tripler        cards.PowerID = "TRIPLER"
	Vacuum         cards.PowerID = "VACUUM"
	Virus          cards.PowerID = "VIRUS"
	Void           cards.PowerID = "VOID"
	Warpish        cards.PowerID = "WARPISH"
	Warrior        cards.PowerID = "WARRIOR"
	Will           cards.PowerID = "WILL"
	Zombie         cards.PowerID = "ZOMBIE"
)

// Registry holds one Hooks implementation per power id plus the static
// catalog, and implements the dispatch rules.
type Registry struct {
	logger *zap.Logger
	defs   map[cards.PowerID]Definition
	impls  map[cards.PowerID]*Hooks
}

// NewRegistry loads the catalog and registers every power implementation.
// Catalog entries and implementations must match one to one.
func NewRegistry(logger *zap.Logger) (*Registry, error) {
	defs, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	r := &Registry{
		logger: logger,
		defs:   defs,
		impls:  make(map[cards.PowerID]*Hooks, len(defs)),
	}
	r.registerAll()

	for id := range r.impls {
		if _, ok := defs[id]; !ok {
			return nil, fmt.Errorf("power %s implemented but missing from catalog", id)
		}
	}
	for id := range defs {
		if _, ok := r.impls[id]; !ok {
			return nil, fmt.Errorf("power %s in catalog but not implemented", id)
		}
	}
	return r, nil
}

func (r *Registry) register(id cards.PowerID, h *Hooks) {
	r.impls[id] = h
}

// Definition returns the catalog entry for a power.
func (r *Registry) Definition(id cards.PowerID) (Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// AllIDs returns every registered power id in a stable order.
func (r *Registry) AllIDs() []cards.PowerID {
	ids := make([]cards.PowerID, 0, len(r.defs))
	for id := range r.defs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// UnusedIDs returns the powers not in the chosen set, for flare completion.
func (r *Registry) UnusedIDs(chosen []cards.PowerID) []cards.PowerID {
	taken := make(map[cards.PowerID]bool, len(chosen))
	for _, id := range chosen {
		taken[id] = true
	}
	var unused []cards.PowerID
	for _, id := range r.AllIDs() {
		if !taken[id] {
			unused = append(unused, id)
		}
	}
	return unused
}

// InitPowerState seeds a player's private power state at game start.
func (r *Registry) InitPowerState(p *state.PlayerState) {
	if impl, ok := r.impls[p.Power]; ok && impl.InitState != nil {
		impl.InitState(&p.PowerState)
	}
}

// hookOrder is the broadcast order: offense first, then defense if distinct,
// then the remaining players clockwise from the offense. This ordering
// changes game outcomes and must not vary.
func (r *Registry) hookOrder(g *state.GameState) []string {
	order := make([]string, 0, len(g.TurnOrder))
	seen := make(map[string]bool, len(g.TurnOrder))

	add := func(id string) {
		if id != "" && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}

	add(g.ActivePlayerID)
	if g.Encounter != nil {
		add(g.Encounter.DefenseID)
	}
	start := 0
	for i, id := range g.TurnOrder {
		if id == g.ActivePlayerID {
			start = i
			break
		}
	}
	for i := 1; i <= len(g.TurnOrder); i++ {
		add(g.TurnOrder[(start+i)%len(g.TurnOrder)])
	}
	return order
}

// eligible returns the player's hooks if the power can act at all: a power is
// silenced by not being selected, by the zap suppression flag, or by the
// home-colony threshold.
func (r *Registry) eligible(g *state.GameState, id string) (*Hooks, Definition, bool) {
	p := g.Players[id]
	if p == nil || p.Power == "" || !p.PowerActive || p.PowerState.Zapped {
		return nil, Definition{}, false
	}
	impl, ok := r.impls[p.Power]
	if !ok {
		return nil, Definition{}, false
	}
	return impl, r.defs[p.Power], true
}

func (r *Registry) meetsPrereq(g *state.GameState, id string, prereq Prerequisite) bool {
	switch prereq {
	case PrereqAnyPlayer:
		return true
	case PrereqOffense:
		return g.IsOffense(id)
	case PrereqDefenseOnly:
		return g.IsDefense(id)
	case PrereqMainPlayer:
		return g.IsMainPlayer(id)
	case PrereqNotMainPlayer:
		return !g.IsMainPlayer(id)
	case PrereqAlly:
		return g.IsAlly(id)
	case PrereqOffensiveAlly:
		side, ok := g.AllySide(id)
		return ok && side == state.SideOffense
	case PrereqDefensiveAlly:
		side, ok := g.AllySide(id)
		return ok && side == state.SideDefense
	default:
		return false
	}
}

func (r *Registry) ctx(g *state.GameState, bus *state.Bus, ownerID string) *Context {
	return &Context{State: g, OwnerID: ownerID, Events: bus, Logger: r.logger}
}

// visit walks the hook order applying eligibility and prerequisite filters,
// invoking fn for each power that passes. fn returns false to stop the walk.
func (r *Registry) visit(g *state.GameState, bus *state.Bus, fn func(ctx *Context, impl *Hooks) bool) {
	for _, id := range r.hookOrder(g) {
		impl, def, ok := r.eligible(g, id)
		if !ok {
			continue
		}
		if !r.meetsPrereq(g, id, def.Prerequisite) {
			continue
		}
		if !fn(r.ctx(g, bus, id), impl) {
			return
		}
	}
}

// DispatchPhaseStart fires OnPhaseStart for powers whose catalog entry lists
// the phase as active.
func (r *Registry) DispatchPhaseStart(g *state.GameState, bus *state.Bus, phase state.Phase) {
	for _, id := range r.hookOrder(g) {
		impl, def, ok := r.eligible(g, id)
		if !ok || impl.OnPhaseStart == nil || !def.Phases[phase] {
			continue
		}
		if !r.meetsPrereq(g, id, def.Prerequisite) {
			continue
		}
		impl.OnPhaseStart(r.ctx(g, bus, id), phase)
	}
}

// DispatchPhaseEnd fires OnPhaseEnd with the same gating as DispatchPhaseStart.
func (r *Registry) DispatchPhaseEnd(g *state.GameState, bus *state.Bus, phase state.Phase) {
	for _, id := range r.hookOrder(g) {
		impl, def, ok := r.eligible(g, id)
		if !ok || impl.OnPhaseEnd == nil || !def.Phases[phase] {
			continue
		}
		if !r.meetsPrereq(g, id, def.Prerequisite) {
			continue
		}
		impl.OnPhaseEnd(r.ctx(g, bus, id), phase)
	}
}

// DispatchPlanningStart fires when the planning phase opens.
func (r *Registry) DispatchPlanningStart(g *state.GameState, bus *state.Bus) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnPlanningStart != nil {
			impl.OnPlanningStart(ctx)
		}
		return true
	})
}

// DispatchPlanningCardSelected fires when a main player locks in a card.
func (r *Registry) DispatchPlanningCardSelected(g *state.GameState, bus *state.Bus, byID, cardID string) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnPlanningCardSelected != nil {
			impl.OnPlanningCardSelected(ctx, byID, cardID)
		}
		return true
	})
}

// DispatchCardsRevealed fires after both encounter cards are published.
func (r *Registry) DispatchCardsRevealed(g *state.GameState, bus *state.Bus, offense, defense cards.Card) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnCardsRevealed != nil {
			impl.OnCardsRevealed(ctx, offense, defense)
		}
		return true
	})
}

// ModifyAttackTotal threads the side's total through every eligible power.
// Powers later in the order see (and may overwrite) earlier results.
func (r *Registry) ModifyAttackTotal(g *state.GameState, bus *state.Bus, side state.Side, total, ships, cardValue int) int {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.ModifyAttackTotal != nil {
			total = impl.ModifyAttackTotal(ctx, side, total, ships, cardValue)
		}
		return true
	})
	return total
}

// DispatchCombatResolved fires after the outcome is computed but before the
// engine applies it. Hooks may rewrite the outcome stored in the resolution
// phase data. Returns true when a hook claimed the whole ship disposition via
// PreventDefault, which stops the walk.
func (r *Registry) DispatchCombatResolved(g *state.GameState, bus *state.Bus, outcome state.Outcome) bool {
	prevented := false
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnCombatResolved == nil {
			return true
		}
		if res := impl.OnCombatResolved(ctx, outcome); res != nil && res.PreventDefault {
			prevented = true
			return false
		}
		return true
	})
	return prevented
}

// CanShipsGoToWarp asks every eligible power whether the ships may be warped.
// Any veto wins; vetoing powers handle the ships themselves.
func (r *Registry) CanShipsGoToWarp(g *state.GameState, bus *state.Bus, color cards.Color, count int) bool {
	allowed := true
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.CanShipsGoToWarp != nil && !impl.CanShipsGoToWarp(ctx, color, count) {
			allowed = false
		}
		return true
	})
	return allowed
}

// DispatchShipsToWarp fires after ships land in the warp. Returns true when a
// hook claimed the ships via PreventDefault, which stops the walk.
func (r *Registry) DispatchShipsToWarp(g *state.GameState, bus *state.Bus, color cards.Color, count int) bool {
	prevented := false
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnShipsToWarp == nil {
			return true
		}
		if res := impl.OnShipsToWarp(ctx, color, count); res != nil && res.PreventDefault {
			prevented = true
			return false
		}
		return true
	})
	return prevented
}

// DispatchShipsRetrieved fires after warp ships return to a colony.
func (r *Registry) DispatchShipsRetrieved(g *state.GameState, bus *state.Bus, color cards.Color, count int) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnShipsRetrieved != nil {
			impl.OnShipsRetrieved(ctx, color, count)
		}
		return true
	})
}

// DispatchColonyGained fires after a colony is established.
func (r *Registry) DispatchColonyGained(g *state.GameState, bus *state.Bus, playerID, planetID string) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnColonyGained != nil {
			impl.OnColonyGained(ctx, playerID, planetID)
		}
		return true
	})
}

// DispatchColonyLost fires after a colony is removed.
func (r *Registry) DispatchColonyLost(g *state.GameState, bus *state.Bus, playerID, planetID string) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnColonyLost != nil {
			impl.OnColonyLost(ctx, playerID, planetID)
		}
		return true
	})
}

// DispatchCardsDrawn fires after a player draws cards.
func (r *Registry) DispatchCardsDrawn(g *state.GameState, bus *state.Bus, playerID string, count int) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnCardsDrawn != nil {
			impl.OnCardsDrawn(ctx, playerID, count)
		}
		return true
	})
}

// DispatchAllianceInvitation fires once both invite lists are declared.
func (r *Registry) DispatchAllianceInvitation(g *state.GameState, bus *state.Bus) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnAllianceInvitation != nil {
			impl.OnAllianceInvitation(ctx)
		}
		return true
	})
}

// DispatchAllianceResponse fires on each response. Returns true when a hook
// canceled the response (the responder is forced to decline).
func (r *Registry) DispatchAllianceResponse(g *state.GameState, bus *state.Bus, playerID string, resp state.AllianceResponse) bool {
	canceled := false
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnAllianceResponse == nil {
			return true
		}
		if res := impl.OnAllianceResponse(ctx, playerID, resp); res != nil && res.Canceled {
			canceled = true
			return false
		}
		return true
	})
	return canceled
}

// ModifyRegroupCount is a single-target dispatch: only the offense's power is
// asked. Default retrieval is one ship.
func (r *Registry) ModifyRegroupCount(g *state.GameState, bus *state.Bus) int {
	count := 1
	id := g.ActivePlayerID
	impl, def, ok := r.eligible(g, id)
	if ok && impl.ModifyRegroupCount != nil && r.meetsPrereq(g, id, def.Prerequisite) {
		count = impl.ModifyRegroupCount(r.ctx(g, bus, id))
	}
	if count < 1 {
		count = 1
	}
	return count
}

// ModifyMaxShipsInGate is a single-target dispatch applied to the offense.
func (r *Registry) ModifyMaxShipsInGate(g *state.GameState, bus *state.Bus) int {
	max := g.Rules.MaxShipsInGate
	id := g.ActivePlayerID
	impl, def, ok := r.eligible(g, id)
	if ok && impl.ModifyMaxShipsInGate != nil && r.meetsPrereq(g, id, def.Prerequisite) {
		max = impl.ModifyMaxShipsInGate(r.ctx(g, bus, id))
	}
	if max < 1 {
		max = 1
	}
	return max
}

// DispatchCompensation fires before compensation cards change hands. Returns
// true when a hook claimed the transfer via PreventDefault.
func (r *Registry) DispatchCompensation(g *state.GameState, bus *state.Bus, receiverID, giverID string, count int) bool {
	prevented := false
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnCompensation == nil {
			return true
		}
		if res := impl.OnCompensation(ctx, receiverID, giverID, count); res != nil && res.PreventDefault {
			prevented = true
			return false
		}
		return true
	})
	return prevented
}

// DispatchDefenderReward fires for each defensive ally collecting a reward.
func (r *Registry) DispatchDefenderReward(g *state.GameState, bus *state.Bus, allyID string) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnDefenderReward != nil {
			impl.OnDefenderReward(ctx, allyID)
		}
		return true
	})
}

// DispatchDealProposed fires when a deal proposal is put on the table.
func (r *Registry) DispatchDealProposed(g *state.GameState, bus *state.Bus, proposal *state.DealProposal) {
	r.visit(g, bus, func(ctx *Context, impl *Hooks) bool {
		if impl.OnDealProposed != nil {
			impl.OnDealProposed(ctx, proposal)
		}
		return true
	})
}

// HasFlareEffect reports whether the power's flare card does anything when
// played as its wild or super half.
func (r *Registry) HasFlareEffect(power cards.PowerID, super bool) bool {
	impl, ok := r.impls[power]
	if !ok {
		return false
	}
	if super {
		return impl.OnFlareSuper != nil
	}
	return impl.OnFlareWild != nil
}

// FlareWild invokes the weak flare effect bound to the given power, on behalf
// of playerID. The flare's own power need not be in play for its card to be.
func (r *Registry) FlareWild(g *state.GameState, bus *state.Bus, power cards.PowerID, playerID string) *Result {
	impl, ok := r.impls[power]
	if !ok || impl.OnFlareWild == nil {
		return nil
	}
	return impl.OnFlareWild(r.ctx(g, bus, playerID), playerID)
}

// FlareSuper invokes the strong flare effect; the engine validates that the
// player owns the matching power before calling.
func (r *Registry) FlareSuper(g *state.GameState, bus *state.Bus, power cards.PowerID, playerID string) *Result {
	impl, ok := r.impls[power]
	if !ok || impl.OnFlareSuper == nil {
		return nil
	}
	return impl.OnFlareSuper(r.ctx(g, bus, playerID), playerID)
}
