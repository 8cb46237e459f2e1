package game

import (
	"fmt"

	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// ActionType names one player action. The websocket gateway maps request
// payloads onto these one to one.
type ActionType string

const (
	ActionRegroupRetrieve   ActionType = "REGROUP_RETRIEVE"
	ActionDestinyDraw       ActionType = "DESTINY_DRAW"
	ActionDestinyRedraw     ActionType = "DESTINY_REDRAW"
	ActionDestinyAccept     ActionType = "DESTINY_ACCEPT"
	ActionDestinyDriveOut   ActionType = "DESTINY_DRIVE_OUT"
	ActionDestinyRecolonize ActionType = "DESTINY_RECOLONIZE"
	ActionLaunchAim         ActionType = "LAUNCH_AIM"
	ActionLaunchCommit      ActionType = "LAUNCH_COMMIT"
	ActionAllianceInvite    ActionType = "ALLIANCE_INVITE"
	ActionAllianceRespond   ActionType = "ALLIANCE_RESPOND"
	ActionPlanningSelect    ActionType = "PLANNING_SELECT"
	ActionPredict           ActionType = "POWER_PREDICT"
	ActionRevealReinforce   ActionType = "REVEAL_REINFORCE"
	ActionRevealPass        ActionType = "REVEAL_PASS"
	ActionDealPropose       ActionType = "DEAL_PROPOSE"
	ActionDealAccept        ActionType = "DEAL_ACCEPT"
	ActionDealReject        ActionType = "DEAL_REJECT"
	ActionDealTimeout       ActionType = "DEAL_TIMEOUT"
	ActionSecondEncounter   ActionType = "SECOND_ENCOUNTER"
	ActionPlayArtifact      ActionType = "PLAY_ARTIFACT"
	ActionPlayFlare         ActionType = "PLAY_FLARE"
)

// Action is one request against a running game. Only the fields the action
// type needs are read; the rest stay zero.
type Action struct {
	Type ActionType

	CardID   string
	PlanetID string
	TargetID string // another player, where the action needs one
	Ships    int
	Side     state.Side
	Decline  bool
	Accept   bool
	Invitees []string
	Text     string // free-form input, e.g. a predicted card name
	Proposal *state.DealProposal
	Super    bool // play the flare's strong half
}

// handleAction validates and applies one action. Validation happens fully
// before any state is touched.
func (e *Engine) handleAction(g *state.GameState, bus *state.Bus, playerID string, a Action) error {
	switch a.Type {
	case ActionPlayArtifact:
		return e.playArtifact(g, bus, playerID, a)
	case ActionPlayFlare:
		return e.playFlare(g, bus, playerID, a)
	case ActionPredict:
		return e.predict(g, playerID, a)
	}

	switch g.Phase() {
	case state.PhaseRegroup:
		if a.Type == ActionRegroupRetrieve {
			return e.regroupRetrieve(g, bus, playerID)
		}
	case state.PhaseDestiny:
		switch a.Type {
		case ActionDestinyDraw:
			return e.destinyDraw(g, bus, playerID)
		case ActionDestinyRedraw:
			return e.destinyRedraw(g, bus, playerID)
		case ActionDestinyAccept:
			return e.destinyAccept(g, bus, playerID, a)
		case ActionDestinyDriveOut:
			return e.destinyDriveOut(g, bus, playerID, a)
		case ActionDestinyRecolonize:
			return e.destinyRecolonize(g, bus, playerID, a)
		}
	case state.PhaseLaunch:
		switch a.Type {
		case ActionLaunchAim:
			return e.launchAim(g, bus, playerID, a)
		case ActionLaunchCommit:
			return e.launchCommit(g, bus, playerID, a)
		}
	case state.PhaseAlliance:
		switch a.Type {
		case ActionAllianceInvite:
			return e.allianceInvite(g, bus, playerID, a)
		case ActionAllianceRespond:
			return e.allianceRespond(g, bus, playerID, a)
		}
	case state.PhasePlanning:
		if a.Type == ActionPlanningSelect {
			return e.planningSelect(g, bus, playerID, a)
		}
	case state.PhaseReveal:
		switch a.Type {
		case ActionRevealReinforce:
			return e.revealReinforce(g, bus, playerID, a)
		case ActionRevealPass:
			return e.revealPass(g, bus, playerID)
		}
	case state.PhaseResolution:
		switch a.Type {
		case ActionDealPropose:
			return e.dealPropose(g, bus, playerID, a)
		case ActionDealAccept:
			return e.dealAccept(g, bus, playerID)
		case ActionDealReject:
			return e.dealReject(g, bus, playerID)
		case ActionDealTimeout:
			return e.dealTimeout(g, bus)
		case ActionSecondEncounter:
			return e.secondEncounter(g, bus, playerID, a)
		}
	}
	return fmt.Errorf("action %s not legal in phase %s", a.Type, g.Phase())
}

// predict records the defense's card prediction during planning. Only a power
// that reads predictions makes this meaningful; anyone else gets an error.
func (e *Engine) predict(g *state.GameState, playerID string, a Action) error {
	if g.Phase() != state.PhasePlanning {
		return fmt.Errorf("predictions are made during planning")
	}
	if !g.IsDefense(playerID) {
		return fmt.Errorf("only the defense predicts")
	}
	p := g.Players[playerID]
	if !p.PowerActive || p.PowerState.Zapped {
		return fmt.Errorf("your power cannot act right now")
	}
	if a.Text == "" {
		return fmt.Errorf("empty prediction")
	}
	p.PowerState.Prediction = a.Text
	g.AddLog("%s commits to a prediction", p.Name)
	return nil
}
