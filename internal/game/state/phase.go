package state

import (
	"fmt"
	"time"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
)

// Phase enumerates the eight phases of a turn.
type Phase int

const (
	PhaseStartTurn Phase = iota
	PhaseRegroup
	PhaseDestiny
	PhaseLaunch
	PhaseAlliance
	PhasePlanning
	PhaseReveal
	PhaseResolution
)

var phaseNames = map[Phase]string{
	PhaseStartTurn:  "START_TURN",
	PhaseRegroup:    "REGROUP",
	PhaseDestiny:    "DESTINY",
	PhaseLaunch:     "LAUNCH",
	PhaseAlliance:   "ALLIANCE",
	PhasePlanning:   "PLANNING",
	PhaseReveal:     "REVEAL",
	PhaseResolution: "RESOLUTION",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// PhaseData is the per-phase payload. The phase tag is derived from the
// payload variant itself, so the two can never disagree: changing phase means
// installing the matching variant.
type PhaseData interface {
	Phase() Phase
}

// StartTurnData is the payload while the active player's turn begins.
type StartTurnData struct {
	MustDrawNewHand bool // set when the whole hand was discarded and redrawn
}

func (*StartTurnData) Phase() Phase { return PhaseStartTurn }

// RegroupData tracks the offense's warp retrieval.
type RegroupData struct {
	RetrievedShips int
}

func (*RegroupData) Phase() Phase { return PhaseRegroup }

// DestinyData carries the drawn destiny card and the choices it opened.
type DestinyData struct {
	DrawnCardID      string
	DefenseID        string
	TargetColor      cards.Color
	Hazard           bool
	MustRedraw       bool     // same-color draw, offense may redraw
	CanDriveOut      bool     // same-color draw, offense may attack a foreign colony at home
	CanRecolonize    bool     // same-color draw with an empty home planet
	EmptyHomePlanets []string // planet ids eligible for recolonization
}

func (*DestinyData) Phase() Phase { return PhaseDestiny }

// LaunchData tracks planet targeting and the ship commitment to the gate.
type LaunchData struct {
	DefenseID        string
	TargetColor      cards.Color
	TargetPlanetID   string
	ShipsCommitted   bool
	TotalShipsOnGate int
}

func (*LaunchData) Phase() Phase { return PhaseLaunch }

// AllianceResponse is one invited player's answer.
type AllianceResponse struct {
	Joined  Side
	Ships   int
	Decline bool
}

// AllianceData tracks invitations and the clockwise polling of responders.
type AllianceData struct {
	OffenseInvited     []string
	DefenseInvited     []string
	OffenseInviteDone  bool
	DefenseInviteDone  bool
	Responses          map[string]AllianceResponse
	CurrentResponderID string
}

func (*AllianceData) Phase() Phase { return PhaseAlliance }

// PlanningData tracks the two hidden encounter-card selections.
type PlanningData struct {
	OffenseCardID string
	DefenseCardID string
	OffenseReady  bool
	DefenseReady  bool
	DefenseRedrew bool // defense held no encounter card and redrew
}

func (*PlanningData) Phase() Phase { return PhasePlanning }

// ReinforcementPlay records one side card added during the reveal window.
type ReinforcementPlay struct {
	PlayerID string
	CardID   string
	Side     Side
	Value    int
}

// RevealData carries the published cards, reinforcements and running totals.
type RevealData struct {
	OffenseCardID  string
	DefenseCardID  string
	Reinforcements []ReinforcementPlay
	Passed         map[string]bool // who passed since the last side card
	OffenseShips   int
	DefenseShips   int
	OffenseTotal   int
	DefenseTotal   int
}

func (*RevealData) Phase() Phase { return PhaseReveal }

// DealProposal is an offer on the table during mutual negotiation.
type DealProposal struct {
	ProposerID     string
	CardsToOther   []string // card ids leaving the proposer's hand
	CardsToMe      []string // card ids requested from the other main player
	ColonyForMe    string   // planet id granted to the proposer, if any
	ColonyForOther string   // planet id granted to the other main player, if any
}

// ResolutionData carries the computed outcome and its follow-up flows.
type ResolutionData struct {
	Outcome                Outcome
	DealInProgress         bool
	DealProposal           *DealProposal
	DealDeadline           time.Time // wall-clock deadline; enforced by a timeout action
	CompensationShips      int
	CompensationResolved   bool
	CanHaveSecondEncounter bool
	SecondEncounterDecided bool
}

func (*ResolutionData) Phase() Phase { return PhaseResolution }
