package game

import (
	"time"

	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// GameView is the redacted snapshot sent to one player: only the viewer's own
// hand is visible, everyone else shows a count.
type GameView struct {
	GameID          string         `json:"game_id"`
	Phase           string         `json:"phase"`
	TurnNumber      int            `json:"turn"`
	EncounterNumber int            `json:"encounter"`
	ActivePlayerID  string         `json:"active_player_id"`
	DefenseID       string         `json:"defense_id,omitempty"`
	TargetPlanetID  string         `json:"target_planet_id,omitempty"`
	PhaseData       *PhaseView     `json:"phase_data,omitempty"`
	Players         []PlayerView   `json:"players"`
	Hand            []CardView     `json:"hand"`
	Warp            map[string]int `json:"warp"`
	DeckSize        int            `json:"deck_size"`
	DiscardSize     int            `json:"discard_size"`
	Winners         []string       `json:"winners,omitempty"`
	Log             []string       `json:"log"`
}

// PlayerView is one seat as everyone sees it.
type PlayerView struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Color           string       `json:"color"`
	Power           string       `json:"power"`
	PowerName       string       `json:"power_name"`
	PowerActive     bool         `json:"power_active"`
	Zapped          bool         `json:"zapped"`
	HandCount       int          `json:"hand_count"`
	HomeColonies    int          `json:"home_colonies"`
	ForeignColonies int          `json:"foreign_colonies"`
	Planets         []PlanetView `json:"planets"`
}

// PlanetView is one planet and its colonies.
type PlanetView struct {
	ID       string       `json:"id"`
	Owner    string       `json:"owner"`
	Colonies []ColonyView `json:"colonies"`
}

// ColonyView is a (color, ships) pair.
type ColonyView struct {
	Color string `json:"color"`
	Ships int    `json:"ships"`
}

// CardView names a card in the viewer's hand.
type CardView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// PhaseView is the redacted slice of the current phase's data. Hidden planning
// selections collapse to a yes/no flag; revealed cards and totals are public.
type PhaseView struct {
	DestinyCard      string     `json:"destiny_card,omitempty"`
	Hazard           bool       `json:"hazard,omitempty"`
	CanRedraw        bool       `json:"can_redraw,omitempty"`
	CanDriveOut      bool       `json:"can_drive_out,omitempty"`
	CanRecolonize    bool       `json:"can_recolonize,omitempty"`
	ShipsOnGate      int        `json:"ships_on_gate,omitempty"`
	CurrentResponder string     `json:"current_responder,omitempty"`
	OffenseSelected  bool       `json:"offense_selected,omitempty"`
	DefenseSelected  bool       `json:"defense_selected,omitempty"`
	OffenseCard      string     `json:"offense_card,omitempty"`
	DefenseCard      string     `json:"defense_card,omitempty"`
	OffenseTotal     int        `json:"offense_total,omitempty"`
	DefenseTotal     int        `json:"defense_total,omitempty"`
	Reinforcements   []string   `json:"reinforcements,omitempty"`
	Outcome          string     `json:"outcome,omitempty"`
	DealOnTable      bool       `json:"deal_on_table,omitempty"`
	DealProposed     bool       `json:"deal_proposed,omitempty"`
	DealDeadline     *time.Time `json:"deal_deadline,omitempty"`
	SecondEncounter  bool       `json:"second_encounter_available,omitempty"`
}

// buildPhaseView projects the phase payload into what every player may see.
func buildPhaseView(g *state.GameState) *PhaseView {
	pv := &PhaseView{}
	switch d := g.PhaseData.(type) {
	case *state.DestinyData:
		if d.DrawnCardID != "" {
			pv.DestinyCard = g.AllDestiny[d.DrawnCardID].Name()
		}
		pv.Hazard = d.Hazard
		pv.CanRedraw = d.MustRedraw
		pv.CanDriveOut = d.CanDriveOut
		pv.CanRecolonize = d.CanRecolonize
	case *state.LaunchData:
		pv.ShipsOnGate = d.TotalShipsOnGate
	case *state.AllianceData:
		pv.CurrentResponder = d.CurrentResponderID
	case *state.PlanningData:
		pv.OffenseSelected = d.OffenseReady
		pv.DefenseSelected = d.DefenseReady
	case *state.RevealData:
		pv.OffenseCard = g.AllCards[d.OffenseCardID].Name()
		pv.DefenseCard = g.AllCards[d.DefenseCardID].Name()
		pv.OffenseTotal = d.OffenseTotal
		pv.DefenseTotal = d.DefenseTotal
		for _, play := range d.Reinforcements {
			pv.Reinforcements = append(pv.Reinforcements, g.AllCards[play.CardID].Name())
		}
	case *state.ResolutionData:
		if d.Outcome != nil {
			pv.Outcome = d.Outcome.String()
		}
		pv.DealOnTable = d.DealInProgress
		pv.DealProposed = d.DealProposal != nil
		if d.DealInProgress {
			deadline := d.DealDeadline
			pv.DealDeadline = &deadline
		}
		pv.SecondEncounter = d.CanHaveSecondEncounter
	}
	return pv
}

const viewLogTail = 20

func (e *Engine) buildView(g *state.GameState, viewerID string) *GameView {
	v := &GameView{
		GameID:          g.ID,
		Phase:           g.Phase().String(),
		TurnNumber:      g.TurnNumber,
		EncounterNumber: g.EncounterNumber,
		ActivePlayerID:  g.ActivePlayerID,
		Warp:            make(map[string]int, len(g.Warp)),
		DeckSize:        len(g.Cosmic.Draw),
		DiscardSize:     len(g.Cosmic.Discard),
		Winners:         append([]string(nil), g.Winners...),
	}
	if g.Encounter != nil {
		v.DefenseID = g.Encounter.DefenseID
		v.TargetPlanetID = g.Encounter.TargetPlanetID
	}
	if g.PhaseData != nil {
		v.PhaseData = buildPhaseView(g)
	}
	for color, n := range g.Warp {
		v.Warp[string(color)] = n
	}

	for _, id := range g.TurnOrder {
		p := g.Players[id]
		pv := PlayerView{
			ID:              p.ID,
			Name:            p.Name,
			Color:           string(p.Color),
			Power:           string(p.Power),
			PowerActive:     p.PowerActive,
			Zapped:          p.PowerState.Zapped,
			HandCount:       len(p.Hand),
			HomeColonies:    p.HomeColonies,
			ForeignColonies: p.ForeignColonies,
		}
		if def, ok := e.registry.Definition(p.Power); ok {
			pv.PowerName = def.Name
		}
		for _, planet := range p.Planets {
			plv := PlanetView{ID: planet.ID, Owner: string(planet.Owner)}
			for _, c := range planet.Colonies {
				plv.Colonies = append(plv.Colonies, ColonyView{Color: string(c.Color), Ships: c.Ships})
			}
			pv.Planets = append(pv.Planets, plv)
		}
		v.Players = append(v.Players, pv)
	}

	if viewer, ok := g.Players[viewerID]; ok {
		for _, cardID := range viewer.Hand {
			card := g.AllCards[cardID]
			v.Hand = append(v.Hand, CardView{ID: cardID, Name: card.Name(), Type: card.Type.String()})
		}
	}

	start := len(g.GameLog) - viewLogTail
	if start < 0 {
		start = 0
	}
	for _, entry := range g.GameLog[start:] {
		v.Log = append(v.Log, entry.Message)
	}
	return v
}
