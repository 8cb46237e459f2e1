package powers

import (
	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Card-economy and table-politics powers.

// Remora feeds on every draw made by another player.
var remoraHooks = Hooks{
	OnCardsDrawn: func(ctx *Context, playerID string, count int) {
		if playerID == ctx.OwnerID || count <= 0 {
			return
		}
		if _, ok := ctx.DrawCard(); ok {
			ctx.PowerUsed("%s latches on and draws a card too (Remora)", ctx.Owner().Name)
		}
	},
}

// Philanthropist gives away its weakest attack card after drawing.
var philanthropistHooks = Hooks{
	OnCardsDrawn: func(ctx *Context, playerID string, count int) {
		if playerID != ctx.OwnerID || count <= 0 {
			return
		}
		owner := ctx.Owner()
		target := poorestOpponent(ctx)
		if target == nil {
			return
		}
		giftID := ""
		lowest := 0
		for _, id := range owner.Hand {
			c := ctx.State.AllCards[id]
			if c.Type != cards.TypeAttack {
				continue
			}
			if giftID == "" || c.Value < lowest {
				giftID = id
				lowest = c.Value
			}
		}
		if giftID == "" {
			return
		}
		owner.RemoveCard(giftID)
		target.Hand = append(target.Hand, giftID)
		ctx.PowerUsed("%s gives a card to %s (Philanthropist)", owner.Name, target.Name)
	},
}

// Pickpocket diverts compensation owed to someone else into its own hand.
var pickpocketHooks = Hooks{
	OnCompensation: func(ctx *Context, receiverID, giverID string, count int) *Result {
		if receiverID == ctx.OwnerID || giverID == ctx.OwnerID {
			return nil
		}
		giver := ctx.State.Players[giverID]
		owner := ctx.Owner()
		taken := 0
		for i := 0; i < count; i++ {
			if _, ok := takeRandomCard(ctx, giver, owner); ok {
				taken++
			}
		}
		if taken == 0 {
			return nil
		}
		ctx.PowerUsed("%s pockets %d card(s) of compensation meant for %s",
			owner.Name, taken, ctx.State.Players[receiverID].Name)
		return &Result{PreventDefault: true}
	},
}

// Miser sets aside half its hand as a hoard on the first turn, then draws one
// hoarded card back at the start of each later turn.
var miserHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseStartTurn || ctx.OwnerID != ctx.State.ActivePlayerID {
			return
		}
		owner := ctx.Owner()
		ps := &owner.PowerState
		if ps.Hoard == nil {
			n := len(owner.Hand) / 2
			ps.Hoard = make([]string, 0, n)
			for i := 0; i < n; i++ {
				j := ctx.State.Rand.Intn(len(owner.Hand))
				ps.Hoard = append(ps.Hoard, owner.Hand[j])
				owner.Hand = append(owner.Hand[:j], owner.Hand[j+1:]...)
			}
			ctx.PowerUsed("%s sets aside a hoard of %d card(s) (Miser)", owner.Name, n)
			return
		}
		if len(ps.Hoard) == 0 {
			return
		}
		id := ps.Hoard[len(ps.Hoard)-1]
		ps.Hoard = ps.Hoard[:len(ps.Hoard)-1]
		owner.Hand = append(owner.Hand, id)
		ctx.PowerUsed("%s takes a card from the hoard (Miser)", owner.Name)
	},
}

// Cudgel batters the largest hand at the start of its turns.
var cudgelHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseStartTurn || ctx.OwnerID != ctx.State.ActivePlayerID {
			return
		}
		ps := &ctx.Owner().PowerState
		if ps.UsedThisTurn {
			return
		}
		target := richestOpponent(ctx)
		if target == nil {
			return
		}
		ps.UsedThisTurn = true
		n := discardRandomCards(ctx, target, 2)
		ctx.PowerUsed("%s forces %s to discard %d card(s) (Cudgel)", ctx.Owner().Name, target.Name, n)
	},
}

// Oracle sees the defense's encounter card the moment it is locked in.
var oracleHooks = Hooks{
	OnPlanningCardSelected: func(ctx *Context, byID, cardID string) {
		if !ctx.IsOffense() || !ctx.State.IsDefense(byID) {
			return
		}
		ctx.Owner().PowerState.PeekedCardID = cardID
		ctx.PowerUsed("%s foresees the defense's card (Oracle)", ctx.Owner().Name)
	},
}

var seekerHooks = Hooks{
	OnPlanningStart: func(ctx *Context) {
		if !ctx.IsMainPlayer() {
			return
		}
		ctx.PowerUsed("%s demands the truth about the coming card (Seeker)", ctx.Owner().Name)
	},
	RequiresDecision: func(ctx *Context) bool {
		return ctx.IsMainPlayer() && ctx.State.Phase() == state.PhasePlanning
	},
}

var ethicHooks = Hooks{
	OnPlanningStart: func(ctx *Context) {
		if !ctx.IsMainPlayer() {
			return
		}
		ctx.PowerUsed("%s calls for a peaceful settlement (Ethic)", ctx.Owner().Name)
	},
}

// Parasite invites itself to the offense's side when left off both lists.
var parasiteHooks = Hooks{
	OnAllianceInvitation: func(ctx *Context) {
		if ctx.IsMainPlayer() {
			return
		}
		ad, ok := ctx.State.PhaseData.(*state.AllianceData)
		if !ok {
			return
		}
		for _, id := range ad.OffenseInvited {
			if id == ctx.OwnerID {
				return
			}
		}
		for _, id := range ad.DefenseInvited {
			if id == ctx.OwnerID {
				return
			}
		}
		ad.OffenseInvited = append(ad.OffenseInvited, ctx.OwnerID)
		ctx.PowerUsed("%s attaches to the offense uninvited (Parasite)", ctx.Owner().Name)
	},
}

// Dictator bans the next two bystanders in turn order from allying, and
// converts their attempted joins into declines.
var dictatorHooks = Hooks{
	OnAllianceInvitation: func(ctx *Context) {
		if !ctx.IsMainPlayer() {
			return
		}
		ps := &ctx.Owner().PowerState
		ps.Forbidden = ps.Forbidden[:0]
		for _, id := range ctx.State.TurnOrder {
			if len(ps.Forbidden) == 2 {
				break
			}
			if ctx.State.IsMainPlayer(id) {
				continue
			}
			ps.Forbidden = append(ps.Forbidden, id)
		}
		for _, id := range ps.Forbidden {
			ctx.PowerUsed("%s forbids %s from allying (Dictator)", ctx.Owner().Name, ctx.State.Players[id].Name)
		}
	},
	OnAllianceResponse: func(ctx *Context, playerID string, resp state.AllianceResponse) *Result {
		if resp.Decline {
			return nil
		}
		for _, id := range ctx.Owner().PowerState.Forbidden {
			if id == playerID {
				ctx.Log("%s's decree stands: %s may not join", ctx.Owner().Name, ctx.State.Players[playerID].Name)
				return &Result{Canceled: true}
			}
		}
		return nil
	},
}

// Reincarnator is reborn instead of crippled when its home system falls.
var reincarnatorHooks = Hooks{
	OnColonyLost: func(ctx *Context, playerID, planetID string) {
		if playerID != ctx.OwnerID {
			return
		}
		owner := ctx.Owner()
		if owner.PowerState.Transformed || owner.HomeColonies > 0 {
			return
		}
		owner.PowerState.Transformed = true
		ctx.PowerUsed("%s dies and is reborn (Reincarnator)", owner.Name)
	},
}

// Chrysalis incubates a token per turn and hatches at five.
var chrysalisHooks = Hooks{
	OnPhaseStart: func(ctx *Context, phase state.Phase) {
		if phase != state.PhaseStartTurn || ctx.OwnerID != ctx.State.ActivePlayerID {
			return
		}
		owner := ctx.Owner()
		ps := &owner.PowerState
		if ps.Transformed {
			return
		}
		ps.Tokens++
		ctx.PowerUsed("%s's chrysalis grows to %d of 5", owner.Name, ps.Tokens)
		if ps.Tokens < 5 {
			return
		}
		ps.Transformed = true
		for i := 0; i < 2; i++ {
			ctx.DrawCard()
		}
		ctx.Log("%s emerges transformed and draws two cards", owner.Name)
	},
}
