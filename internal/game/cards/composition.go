package cards

import (
	_ "embed"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed composition.yaml
var compositionYAML []byte

type valueCount struct {
	Value int `yaml:"value"`
	Count int `yaml:"count"`
}

type artifactSpec struct {
	Kind     string   `yaml:"kind"`
	Count    int      `yaml:"count"`
	Phases   []string `yaml:"phases"`
	MainOnly bool     `yaml:"main_only"`
}

type destinySpec struct {
	PerColor         int         `yaml:"per_color"`
	Wild             int         `yaml:"wild"`
	SpecialByPlayers map[int]int `yaml:"special_by_players"`
}

// Composition is the parsed deck composition table.
type Composition struct {
	Attack         []valueCount   `yaml:"attack"`
	Negotiate      int            `yaml:"negotiate"`
	Morph          int            `yaml:"morph"`
	Reinforcements []valueCount   `yaml:"reinforcements"`
	Artifacts      []artifactSpec `yaml:"artifacts"`
	FlareCount     int            `yaml:"flare_count"`
	Destiny        destinySpec    `yaml:"destiny"`
}

// ArtifactRule is the play-legality row for one artifact kind.
type ArtifactRule struct {
	Phases   []string // phase names the card may be played in
	MainOnly bool     // only the offense or defense may play it
}

// LoadComposition parses the embedded composition table.
func LoadComposition() (*Composition, error) {
	var c Composition
	if err := yaml.Unmarshal(compositionYAML, &c); err != nil {
		return nil, fmt.Errorf("parse deck composition: %w", err)
	}
	if len(c.Attack) == 0 || c.Negotiate <= 0 {
		return nil, fmt.Errorf("deck composition incomplete")
	}
	return &c, nil
}

// ArtifactRules returns the play-legality table keyed by artifact kind.
func (c *Composition) ArtifactRules() (map[ArtifactKind]ArtifactRule, error) {
	rules := make(map[ArtifactKind]ArtifactRule, len(c.Artifacts))
	for _, spec := range c.Artifacts {
		kind, ok := artifactKindFromName(spec.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown artifact kind %q", spec.Kind)
		}
		rules[kind] = ArtifactRule{Phases: spec.Phases, MainOnly: spec.MainOnly}
	}
	return rules, nil
}

// BuildCosmicDeck constructs the shuffled cosmic deck for one game.
// chosen are the powers selected by the seated players; unused supplies the
// extra flares needed to reach the fixed flare count. The returned map owns
// every card for the lifetime of the game.
func (c *Composition) BuildCosmicDeck(chosen, unused []PowerID, rng *rand.Rand) (map[string]Card, *Pile, error) {
	all := make(map[string]Card)
	pile := &Pile{}

	add := func(card Card) {
		card.ID = uuid.NewString()
		all[card.ID] = card
		pile.Draw = append(pile.Draw, card.ID)
	}

	for _, vc := range c.Attack {
		for i := 0; i < vc.Count; i++ {
			add(Card{Type: TypeAttack, Value: vc.Value})
		}
	}
	for i := 0; i < c.Negotiate; i++ {
		add(Card{Type: TypeNegotiate})
	}
	for i := 0; i < c.Morph; i++ {
		add(Card{Type: TypeMorph})
	}
	for _, vc := range c.Reinforcements {
		for i := 0; i < vc.Count; i++ {
			add(Card{Type: TypeReinforcement, Value: vc.Value})
		}
	}
	for _, spec := range c.Artifacts {
		kind, ok := artifactKindFromName(spec.Kind)
		if !ok {
			return nil, nil, fmt.Errorf("unknown artifact kind %q", spec.Kind)
		}
		for i := 0; i < spec.Count; i++ {
			add(Card{Type: TypeArtifact, Artifact: kind})
		}
	}

	for _, flare := range flareSelection(chosen, unused, c.FlareCount, rng) {
		add(Card{Type: TypeFlare, Flare: flare})
	}

	pile.Shuffle(rng)
	return all, pile, nil
}

// flareSelection returns the chosen powers' flares plus random unused-power
// flares until the target count is reached (or the unused pool runs dry).
func flareSelection(chosen, unused []PowerID, target int, rng *rand.Rand) []PowerID {
	flares := make([]PowerID, 0, target)
	flares = append(flares, chosen...)

	pool := make([]PowerID, len(unused))
	copy(pool, unused)
	for len(flares) < target && len(pool) > 0 {
		i := rng.Intn(len(pool))
		flares = append(flares, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	if len(flares) > target {
		flares = flares[:target]
	}
	return flares
}

// BuildDestinyDeck constructs the shuffled destiny deck for the active colors.
func (c *Composition) BuildDestinyDeck(colors []Color, rng *rand.Rand) (map[string]DestinyCard, *Pile, error) {
	players := len(colors)
	special, ok := c.Destiny.SpecialByPlayers[players]
	if !ok {
		return nil, nil, fmt.Errorf("no destiny composition for %d players", players)
	}

	all := make(map[string]DestinyCard)
	pile := &Pile{}

	add := func(card DestinyCard) {
		card.ID = uuid.NewString()
		all[card.ID] = card
		pile.Draw = append(pile.Draw, card.ID)
	}

	for _, color := range colors {
		for i := 0; i < c.Destiny.PerColor; i++ {
			// The second copy of each color warns of a hazard.
			add(DestinyCard{Type: DestinyColor, Color: color, Hazard: i == 1})
		}
	}
	for i := 0; i < c.Destiny.Wild; i++ {
		add(DestinyCard{Type: DestinyWild})
	}
	for i := 0; i < special; i++ {
		add(DestinyCard{Type: DestinySpecial})
	}

	pile.Shuffle(rng)
	return all, pile, nil
}
