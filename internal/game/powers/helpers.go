package powers

import (
	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// ownerSide returns the side the owner is fighting on, false for bystanders.
func ownerSide(ctx *Context) (state.Side, bool) {
	if ctx.IsOffense() {
		return state.SideOffense, true
	}
	if ctx.IsDefense() {
		return state.SideDefense, true
	}
	return state.SideOffense, false
}

// resolutionData returns the resolution payload, nil in any other phase.
func resolutionData(ctx *Context) *state.ResolutionData {
	rd, _ := ctx.State.PhaseData.(*state.ResolutionData)
	return rd
}

// wonEncounter reports whether the owner's side won the given outcome.
func wonEncounter(ctx *Context, outcome state.Outcome) bool {
	side, main := ownerSide(ctx)
	if !main {
		return false
	}
	switch o := outcome.(type) {
	case state.OffenseWins:
		return side == state.SideOffense
	case state.DefenseWins:
		return side == state.SideDefense
	case state.AttackVsNegotiate:
		return o.Winner == side
	default:
		return false
	}
}

// lostEncounter reports whether the owner's side lost the given outcome.
func lostEncounter(ctx *Context, outcome state.Outcome) bool {
	side, main := ownerSide(ctx)
	if !main {
		return false
	}
	switch o := outcome.(type) {
	case state.OffenseWins:
		return side == state.SideDefense
	case state.DefenseWins:
		return side == state.SideOffense
	case state.AttackVsNegotiate:
		return o.Winner != side
	default:
		return false
	}
}

// richestOpponent returns the non-owner player holding the most cards.
func richestOpponent(ctx *Context) *state.PlayerState {
	var target *state.PlayerState
	for _, id := range ctx.State.TurnOrder {
		if id == ctx.OwnerID {
			continue
		}
		p := ctx.State.Players[id]
		if target == nil || len(p.Hand) > len(target.Hand) {
			target = p
		}
	}
	if target == nil || len(target.Hand) == 0 {
		return nil
	}
	return target
}

// poorestOpponent returns the non-owner player holding the fewest cards.
func poorestOpponent(ctx *Context) *state.PlayerState {
	var target *state.PlayerState
	for _, id := range ctx.State.TurnOrder {
		if id == ctx.OwnerID {
			continue
		}
		p := ctx.State.Players[id]
		if target == nil || len(p.Hand) < len(target.Hand) {
			target = p
		}
	}
	return target
}

// takeRandomCard moves one random card from one hand to another.
func takeRandomCard(ctx *Context, from, to *state.PlayerState) (string, bool) {
	if len(from.Hand) == 0 {
		return "", false
	}
	i := ctx.State.Rand.Intn(len(from.Hand))
	id := from.Hand[i]
	from.Hand = append(from.Hand[:i], from.Hand[i+1:]...)
	to.Hand = append(to.Hand, id)
	return id, true
}

// discardRandomCards discards up to n random cards from the player's hand.
func discardRandomCards(ctx *Context, from *state.PlayerState, n int) int {
	discarded := 0
	for discarded < n && len(from.Hand) > 0 {
		i := ctx.State.Rand.Intn(len(from.Hand))
		id := from.Hand[i]
		from.Hand = append(from.Hand[:i], from.Hand[i+1:]...)
		ctx.State.Cosmic.ToDiscard(id)
		discarded++
	}
	return discarded
}

// returnShipsHome lands n ships on the player's first surviving home colony,
// falling back to the first home planet when every colony is gone.
func returnShipsHome(ctx *Context, p *state.PlayerState, n int) {
	if n <= 0 {
		return
	}
	if planet := ctx.State.FirstHomeColony(p); planet != nil {
		planet.AddShips(p.Color, n)
		return
	}
	if len(p.Planets) > 0 {
		p.Planets[0].AddShips(p.Color, n)
	}
}

// ownColonyShips counts the player's ships across all of their own colonies.
func ownColonyShips(g *state.GameState, p *state.PlayerState) int {
	total := 0
	for _, owner := range g.Players {
		for _, planet := range owner.Planets {
			total += planet.ColonyOf(p.Color)
		}
	}
	return total
}

// cardIdentifier names a card the way predictions reference it.
func cardIdentifier(c cards.Card) string {
	switch c.Type {
	case cards.TypeAttack:
		return c.Name()
	case cards.TypeNegotiate:
		return "Negotiate"
	default:
		return c.Type.String()
	}
}
