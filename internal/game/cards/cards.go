package cards

import "fmt"

// Color identifies a player and their home system. Destiny cards point at
// systems by color, so the type lives here rather than in the state model.
type Color string

const (
	ColorRed    Color = "RED"
	ColorBlue   Color = "BLUE"
	ColorGreen  Color = "GREEN"
	ColorYellow Color = "YELLOW"
	ColorPurple Color = "PURPLE"
)

// AllColors is the fixed seating palette, in seat order.
var AllColors = []Color{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple}

// PowerID names one alien power. Flare cards are bound to a power, which is
// why the identifier is defined alongside the card model.
type PowerID string

// Type enumerates the card categories in the cosmic deck.
type Type int

const (
	TypeAttack Type = iota
	TypeNegotiate
	TypeMorph
	TypeReinforcement
	TypeArtifact
	TypeFlare
)

var typeNames = map[Type]string{
	TypeAttack:        "ATTACK",
	TypeNegotiate:     "NEGOTIATE",
	TypeMorph:         "MORPH",
	TypeReinforcement: "REINFORCEMENT",
	TypeArtifact:      "ARTIFACT",
	TypeFlare:         "FLARE",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TYPE_%d", int(t))
}

// ArtifactKind enumerates the one-shot artifact effects.
type ArtifactKind int

const (
	ArtifactNone ArtifactKind = iota
	ArtifactCosmicZap
	ArtifactCardZap
	ArtifactMobiusTubes
	ArtifactPlague
	ArtifactForceField
	ArtifactEmotionControl
	ArtifactIonicGas
	// ArtifactQuash exists in the card set but is never dealt; the deck
	// composition table carries a zero count for it.
	ArtifactQuash
)

var artifactNames = map[ArtifactKind]string{
	ArtifactNone:           "NONE",
	ArtifactCosmicZap:      "COSMIC_ZAP",
	ArtifactCardZap:        "CARD_ZAP",
	ArtifactMobiusTubes:    "MOBIUS_TUBES",
	ArtifactPlague:         "PLAGUE",
	ArtifactForceField:     "FORCE_FIELD",
	ArtifactEmotionControl: "EMOTION_CONTROL",
	ArtifactIonicGas:       "IONIC_GAS",
	ArtifactQuash:          "QUASH",
}

func (k ArtifactKind) String() string {
	if name, ok := artifactNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ARTIFACT_%d", int(k))
}

func artifactKindFromName(name string) (ArtifactKind, bool) {
	for k, n := range artifactNames {
		if n == name {
			return k, true
		}
	}
	return ArtifactNone, false
}

// Card is one immutable cosmic-deck card. Cards are created once during deck
// construction and move between deck, hands and discard; they are never
// destroyed, so reshuffling the discard back into the deck is always safe.
type Card struct {
	ID       string
	Type     Type
	Value    int          // attack value or reinforcement bonus
	Artifact ArtifactKind // set when Type == TypeArtifact
	Flare    PowerID      // set when Type == TypeFlare
}

// IsEncounterCard reports whether the card may be selected during planning.
func (c Card) IsEncounterCard() bool {
	switch c.Type {
	case TypeAttack, TypeNegotiate, TypeMorph:
		return true
	default:
		return false
	}
}

// Name returns the display name used in the game log.
func (c Card) Name() string {
	switch c.Type {
	case TypeAttack:
		return fmt.Sprintf("Attack %02d", c.Value)
	case TypeNegotiate:
		return "Negotiate"
	case TypeMorph:
		return "Morph"
	case TypeReinforcement:
		return fmt.Sprintf("Reinforcement +%d", c.Value)
	case TypeArtifact:
		return c.Artifact.String()
	case TypeFlare:
		return fmt.Sprintf("Flare: %s", string(c.Flare))
	default:
		return "Unknown"
	}
}

// DestinyType enumerates the destiny-deck card categories.
type DestinyType int

const (
	DestinyColor DestinyType = iota
	DestinyWild
	DestinySpecial
)

var destinyNames = map[DestinyType]string{
	DestinyColor:   "COLOR",
	DestinyWild:    "WILD",
	DestinySpecial: "SPECIAL",
}

func (t DestinyType) String() string {
	if name, ok := destinyNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DESTINY_%d", int(t))
}

// DestinyCard is one card of the destiny deck. The second copy of each color
// carries a hazard warning, which some powers and house rules key off.
type DestinyCard struct {
	ID     string
	Type   DestinyType
	Color  Color // set when Type == DestinyColor
	Hazard bool
}

// Name returns the display name used in the game log.
func (d DestinyCard) Name() string {
	switch d.Type {
	case DestinyColor:
		if d.Hazard {
			return fmt.Sprintf("Destiny: %s (hazard)", string(d.Color))
		}
		return fmt.Sprintf("Destiny: %s", string(d.Color))
	case DestinyWild:
		return "Destiny: Wild"
	case DestinySpecial:
		return "Destiny: Special"
	default:
		return "Destiny: Unknown"
	}
}
