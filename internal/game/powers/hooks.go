// Package powers implements the alien-power plugin layer: a fixed hook
// contract, a registry of one implementation per power id, and the dispatcher
// that invokes hooks in the order the rules require.
package powers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Context is handed to every hook invocation. Hooks get direct write access
// to the shared game state; the engine must not assume they are side-effect
// free.
type Context struct {
	State   *state.GameState
	OwnerID string // the player this power belongs to
	Events  *state.Bus
	Logger  *zap.Logger
}

// Owner returns the power owner's player state.
func (c *Context) Owner() *state.PlayerState {
	return c.State.Players[c.OwnerID]
}

// IsOffense reports whether the owner is the current offense.
func (c *Context) IsOffense() bool { return c.State.IsOffense(c.OwnerID) }

// IsDefense reports whether the owner is the current defense.
func (c *Context) IsDefense() bool { return c.State.IsDefense(c.OwnerID) }

// IsMainPlayer reports whether the owner is offense or defense.
func (c *Context) IsMainPlayer() bool { return c.State.IsMainPlayer(c.OwnerID) }

// IsAlly reports whether the owner committed ships to either side.
func (c *Context) IsAlly() bool { return c.State.IsAlly(c.OwnerID) }

// DrawCard draws one card into the owner's hand.
func (c *Context) DrawCard() (cards.Card, bool) {
	id, ok := c.State.DrawCosmic()
	if !ok {
		return cards.Card{}, false
	}
	owner := c.Owner()
	owner.Hand = append(owner.Hand, id)
	return c.State.AllCards[id], true
}

// Log writes one game-log line and mirrors it to the structured logger.
func (c *Context) Log(format string, args ...any) {
	c.State.AddLog(format, args...)
	if c.Logger != nil {
		c.Logger.Debug("power log",
			zap.String("game_id", c.State.ID),
			zap.String("owner_id", c.OwnerID),
			zap.String("message", fmt.Sprintf(format, args...)),
		)
	}
}

// PowerUsed publishes an ALIEN_POWER_USED event and logs it.
func (c *Context) PowerUsed(format string, args ...any) {
	desc := fmt.Sprintf(format, args...)
	ev := state.NewEvent(state.EventPowerUsed, c.OwnerID, desc)
	ev.Power = c.Owner().Power
	c.Events.Publish(ev)
	c.State.AddLog("%s", desc)
}

// Result lets a hook veto the triggering action or suppress its default
// handling. A nil result means "continue normally".
type Result struct {
	Canceled       bool // reject the triggering action entirely
	PreventDefault bool // the hook handled the effect itself
}

// Hooks is the full extension-point contract. Powers implement any subset;
// nil fields are no-ops. Treat each implementation as a strategy-table row,
// not a hand-rolled subclass.
type Hooks struct {
	// InitState seeds the owner's private power state at game start.
	InitState func(ps *state.PowerState)

	// Phase boundaries. OnPhaseStart is additionally gated by the catalog's
	// active-phases list for the power.
	OnPhaseStart func(ctx *Context, phase state.Phase)
	OnPhaseEnd   func(ctx *Context, phase state.Phase)

	// Planning.
	OnPlanningStart        func(ctx *Context)
	OnPlanningCardSelected func(ctx *Context, byID, cardID string)

	// Reveal.
	OnCardsRevealed func(ctx *Context, offense, defense cards.Card)
	// ModifyAttackTotal threads an accumulator: each power sees the total
	// produced by every power dispatched before it.
	ModifyAttackTotal func(ctx *Context, side state.Side, total, ships, cardValue int) int

	// Resolution.
	OnCombatResolved func(ctx *Context, outcome state.Outcome) *Result
	CanShipsGoToWarp func(ctx *Context, color cards.Color, count int) bool
	OnShipsToWarp    func(ctx *Context, color cards.Color, count int) *Result
	OnShipsRetrieved func(ctx *Context, color cards.Color, count int)
	OnColonyGained   func(ctx *Context, playerID, planetID string)
	OnColonyLost     func(ctx *Context, playerID, planetID string)
	OnCompensation   func(ctx *Context, receiverID, giverID string, count int) *Result
	OnDefenderReward func(ctx *Context, allyID string)
	OnDealProposed   func(ctx *Context, proposal *state.DealProposal)

	// Cards.
	OnCardsDrawn func(ctx *Context, playerID string, count int)

	// Alliance.
	OnAllianceInvitation func(ctx *Context)
	OnAllianceResponse   func(ctx *Context, playerID string, resp state.AllianceResponse) *Result

	// Single-target dispatches, applied to the offense only.
	ModifyRegroupCount   func(ctx *Context) int
	ModifyMaxShipsInGate func(ctx *Context) int

	// Flares.
	OnFlareWild  func(ctx *Context, playerID string) *Result
	OnFlareSuper func(ctx *Context, playerID string) *Result

	// RequiresDecision marks powers whose use needs an explicit player
	// choice; the view layer surfaces a prompt for them.
	RequiresDecision func(ctx *Context) bool
}
