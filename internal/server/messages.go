package server

import (
	"encoding/json"
	"fmt"

	"github.com/cosmicgames/cosmic-server-go/internal/game"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// Envelope is the frame every websocket message travels in, both directions.
// Data carries the type-specific payload.
type Envelope struct {
	Type     string          `json:"type"`
	LobbyID  string          `json:"lobby_id,omitempty"`
	GameID   string          `json:"game_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// Client-to-server message types.
const (
	msgHello       = "hello"
	msgCreateLobby = "create_lobby"
	msgJoinLobby   = "join_lobby"
	msgStartGame   = "start_game"
	msgAction      = "action"
	msgView        = "view"
)

// Server-to-client message types.
const (
	msgWelcome    = "welcome"
	msgLobbyState = "lobby_state"
	msgGameState  = "game_state"
	msgEvent      = "event"
	msgError      = "error"
)

type helloPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type seatPayload struct {
	Power string `json:"power,omitempty"`
}

type startPayload struct {
	Seed int64 `json:"seed,omitempty"`
}

type lobbyStatePayload struct {
	LobbyID string     `json:"lobby_id"`
	HostID  string     `json:"host_id"`
	Seats   []seatInfo `json:"seats"`
	GameID  string     `json:"game_id,omitempty"`
}

type seatInfo struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Power    string `json:"power,omitempty"`
}

type dealPayload struct {
	CardsToOther   []string `json:"cards_to_other,omitempty"`
	CardsToMe      []string `json:"cards_to_me,omitempty"`
	ColonyForMe    string   `json:"colony_for_me,omitempty"`
	ColonyForOther string   `json:"colony_for_other,omitempty"`
}

// actionPayload mirrors game.Action field for field, with wire-friendly names.
type actionPayload struct {
	Type     string       `json:"type"`
	CardID   string       `json:"card_id,omitempty"`
	PlanetID string       `json:"planet_id,omitempty"`
	TargetID string       `json:"target_id,omitempty"`
	Ships    int          `json:"ships,omitempty"`
	Side     string       `json:"side,omitempty"`
	Decline  bool         `json:"decline,omitempty"`
	Accept   bool         `json:"accept,omitempty"`
	Invitees []string     `json:"invitees,omitempty"`
	Text     string       `json:"text,omitempty"`
	Super    bool         `json:"super,omitempty"`
	Proposal *dealPayload `json:"proposal,omitempty"`
}

type eventPayload struct {
	Type        string `json:"type"`
	PlayerID    string `json:"player_id,omitempty"`
	CardID      string `json:"card_id,omitempty"`
	Power       string `json:"power,omitempty"`
	Color       string `json:"color,omitempty"`
	Amount      int    `json:"amount,omitempty"`
	Description string `json:"description"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func parseSide(s string) (state.Side, error) {
	switch s {
	case "", "OFFENSE":
		return state.SideOffense, nil
	case "DEFENSE":
		return state.SideDefense, nil
	default:
		return state.SideOffense, fmt.Errorf("unknown side %q", s)
	}
}

// toAction converts the wire payload into an engine action.
func (a actionPayload) toAction() (game.Action, error) {
	side, err := parseSide(a.Side)
	if err != nil {
		return game.Action{}, err
	}
	act := game.Action{
		Type:     game.ActionType(a.Type),
		CardID:   a.CardID,
		PlanetID: a.PlanetID,
		TargetID: a.TargetID,
		Ships:    a.Ships,
		Side:     side,
		Decline:  a.Decline,
		Accept:   a.Accept,
		Invitees: a.Invitees,
		Text:     a.Text,
		Super:    a.Super,
	}
	if a.Proposal != nil {
		act.Proposal = &state.DealProposal{
			CardsToOther:   a.Proposal.CardsToOther,
			CardsToMe:      a.Proposal.CardsToMe,
			ColonyForMe:    a.Proposal.ColonyForMe,
			ColonyForOther: a.Proposal.ColonyForOther,
		}
	}
	return act, nil
}

func eventToPayload(ev state.Event) eventPayload {
	return eventPayload{
		Type:        string(ev.Type),
		PlayerID:    ev.PlayerID,
		CardID:      ev.CardID,
		Power:       string(ev.Power),
		Color:       string(ev.Color),
		Amount:      ev.Amount,
		Description: ev.Description,
	}
}

func marshalEnvelope(msgType, lobbyID, gameID string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	out, _ := json.Marshal(Envelope{Type: msgType, LobbyID: lobbyID, GameID: gameID, Data: raw})
	return out
}
