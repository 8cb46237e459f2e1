package game

import (
	"fmt"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// playFlare plays a flare card's wild or super half and discards it.
func (e *Engine) playFlare(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	p := g.Players[playerID]
	if !p.HasCard(a.CardID) {
		return fmt.Errorf("card %q is not in your hand", a.CardID)
	}
	card := g.AllCards[a.CardID]
	if card.Type != cards.TypeFlare {
		return fmt.Errorf("%s is not a flare", card.Name())
	}
	if p.PowerState.FlarePlayed {
		return fmt.Errorf("you already played a flare this encounter")
	}
	if a.Super {
		if p.Power != card.Flare {
			return fmt.Errorf("the super half needs the matching power")
		}
		if !p.PowerActive || p.PowerState.Zapped {
			return fmt.Errorf("your power cannot act right now")
		}
	}
	if !e.registry.HasFlareEffect(card.Flare, a.Super) {
		return fmt.Errorf("%s has no playable effect right now", card.Name())
	}

	p.PowerState.FlarePlayed = true
	p.RemoveCard(a.CardID)
	g.Cosmic.ToDiscard(a.CardID)
	half := "wild"
	if a.Super {
		half = "super"
	}
	ev := state.NewEvent(state.EventFlarePlayed, playerID,
		fmt.Sprintf("%s plays the %s half of %s", p.Name, half, card.Name()))
	ev.CardID = a.CardID
	ev.Power = card.Flare
	bus.Publish(ev)

	if a.Super {
		e.registry.FlareSuper(g, bus, card.Flare, playerID)
	} else {
		e.registry.FlareWild(g, bus, card.Flare, playerID)
	}
	return nil
}
