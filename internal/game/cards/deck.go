package cards

import "math/rand"

// Pile is a draw pile paired with its discard pile. Both hold card ids only;
// the id to card mapping is owned by the game state. Drawing from an empty
// pile automatically reshuffles the discard back in.
type Pile struct {
	Draw    []string
	Discard []string
}

// Shuffle randomizes the draw pile in place using the supplied source.
func (p *Pile) Shuffle(rng *rand.Rand) {
	for i := len(p.Draw) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p.Draw[i], p.Draw[j] = p.Draw[j], p.Draw[i]
	}
}

// DrawCard removes and returns the top card id. When the draw pile is empty
// the discard is reshuffled in first. Returns false only when both piles are
// exhausted.
func (p *Pile) DrawCard(rng *rand.Rand) (string, bool) {
	if len(p.Draw) == 0 {
		if len(p.Discard) == 0 {
			return "", false
		}
		p.reshuffleDiscard(rng)
	}
	id := p.Draw[0]
	p.Draw = p.Draw[1:]
	return id, true
}

// DrawDestiny draws like DrawCard but reshuffles one card early: the last
// remaining destiny card must never be exposed as a legal draw, since a lone
// card would make the next destiny fully predictable.
func (p *Pile) DrawDestiny(rng *rand.Rand) (string, bool) {
	if len(p.Draw) <= 1 && len(p.Discard) > 0 {
		p.reshuffleDiscard(rng)
	}
	if len(p.Draw) == 0 {
		return "", false
	}
	id := p.Draw[0]
	p.Draw = p.Draw[1:]
	return id, true
}

// ToDiscard places a card id on top of the discard pile.
func (p *Pile) ToDiscard(id string) {
	p.Discard = append(p.Discard, id)
}

// RemoveFromDiscard removes the given id from the discard pile if present.
// Used when a played card must be returned to its owner's hand.
func (p *Pile) RemoveFromDiscard(id string) bool {
	for i, d := range p.Discard {
		if d == id {
			p.Discard = append(p.Discard[:i], p.Discard[i+1:]...)
			return true
		}
	}
	return false
}

// Size returns the number of cards remaining in the draw pile.
func (p *Pile) Size() int {
	return len(p.Draw)
}

func (p *Pile) reshuffleDiscard(rng *rand.Rand) {
	p.Draw = append(p.Draw, p.Discard...)
	p.Discard = nil
	p.Shuffle(rng)
}
