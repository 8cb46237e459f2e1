package powers

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Prerequisite is the role a power's owner must hold for broadcast hooks to
// reach it.
type Prerequisite int

const (
	PrereqAnyPlayer Prerequisite = iota
	PrereqOffense
	PrereqDefenseOnly
	PrereqMainPlayer
	PrereqNotMainPlayer
	PrereqAlly
	PrereqOffensiveAlly
	PrereqDefensiveAlly
)

var prereqNames = map[Prerequisite]string{
	PrereqAnyPlayer:     "ANY_PLAYER",
	PrereqOffense:       "OFFENSE",
	PrereqDefenseOnly:   "DEFENSE_ONLY",
	PrereqMainPlayer:    "MAIN_PLAYER",
	PrereqNotMainPlayer: "NOT_MAIN_PLAYER",
	PrereqAlly:          "ALLY",
	PrereqOffensiveAlly: "OFFENSIVE_ALLY",
	PrereqDefensiveAlly: "DEFENSIVE_ALLY",
}

func (p Prerequisite) String() string {
	if name, ok := prereqNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PREREQ_%d", int(p))
}

func prereqFromName(name string) (Prerequisite, bool) {
	for p, n := range prereqNames {
		if n == name {
			return p, true
		}
	}
	return PrereqAnyPlayer, false
}

var phaseByName = map[string]state.Phase{
	"START_TURN": state.PhaseStartTurn,
	"REGROUP":    state.PhaseRegroup,
	"DESTINY":    state.PhaseDestiny,
	"LAUNCH":     state.PhaseLaunch,
	"ALLIANCE":   state.PhaseAlliance,
	"PLANNING":   state.PhasePlanning,
	"REVEAL":     state.PhaseReveal,
	"RESOLUTION": state.PhaseResolution,
}

// phaseList accepts either an explicit phase-name list or the ALL_PHASES
// shorthand.
type phaseList []string

func (p *phaseList) UnmarshalYAML(value *yaml.Node) error {
	var single string
	if err := value.Decode(&single); err == nil {
		if single != "ALL_PHASES" {
			return fmt.Errorf("unknown phase shorthand %q", single)
		}
		for name := range phaseByName {
			*p = append(*p, name)
		}
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*p = list
	return nil
}

type catalogEntry struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Text         string    `yaml:"text"`
	Mandatory    bool      `yaml:"mandatory"`
	Prerequisite string    `yaml:"prerequisite"`
	Phases       phaseList `yaml:"phases"`
}

type catalogFile struct {
	Powers []catalogEntry `yaml:"powers"`
}

// Definition is the static description of one power.
type Definition struct {
	ID           cards.PowerID
	Name         string
	Text         string
	Mandatory    bool
	Prerequisite Prerequisite
	Phases       map[state.Phase]bool
}

// loadCatalog parses the embedded power catalog.
func loadCatalog() (map[cards.PowerID]Definition, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("parse power catalog: %w", err)
	}
	defs := make(map[cards.PowerID]Definition, len(file.Powers))
	for _, entry := range file.Powers {
		prereq, ok := prereqFromName(entry.Prerequisite)
		if !ok {
			return nil, fmt.Errorf("power %s: unknown prerequisite %q", entry.ID, entry.Prerequisite)
		}
		phases := make(map[state.Phase]bool, len(entry.Phases))
		for _, name := range entry.Phases {
			phase, ok := phaseByName[name]
			if !ok {
				return nil, fmt.Errorf("power %s: unknown phase %q", entry.ID, name)
			}
			phases[phase] = true
		}
		id := cards.PowerID(entry.ID)
		if _, dup := defs[id]; dup {
			return nil, fmt.Errorf("duplicate power id %s", id)
		}
		defs[id] = Definition{
			ID:           id,
			Name:         entry.Name,
			Text:         entry.Text,
			Mandatory:    entry.Mandatory,
			Prerequisite: prereq,
			Phases:       phases,
		}
	}
	return defs, nil
}
