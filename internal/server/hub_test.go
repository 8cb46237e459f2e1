package server

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	var h *Hub
	engine, err := game.NewEngine(zap.NewNop(), func(gameID string, ev state.Event) {
		if h != nil {
			h.Notify(gameID, ev)
		}
	})
	require.NoError(t, err)
	h = NewHub(engine, state.DefaultRules(), zap.NewNop())
	go h.Run()
	t.Cleanup(h.Close)
	return h
}

func testClient() *Client {
	return &Client{send: make(chan []byte, 64), closed: make(chan struct{})}
}

// recv drains messages until one of the wanted type arrives.
func recv(t *testing.T, c *Client, msgType string) Envelope {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case raw := <-c.send:
			var env Envelope
			require.NoError(t, json.Unmarshal(raw, &env))
			if env.Type == msgType {
				return env
			}
		case <-deadline:
			t.Fatalf("no %s message arrived", msgType)
		}
	}
}

func say(h *Hub, c *Client, msgType, lobbyID, gameID string, data any) {
	var raw json.RawMessage
	if data != nil {
		raw, _ = json.Marshal(data)
	}
	h.handleMessage(c, Envelope{Type: msgType, LobbyID: lobbyID, GameID: gameID, Data: raw})
}

func TestHelloThenLobbyFlow(t *testing.T) {
	h := testHub(t)
	host, guest := testClient(), testClient()
	h.register(host)
	h.register(guest)

	say(h, host, msgCreateLobby, "", "", nil)
	recv(t, host, msgError) // no hello yet

	say(h, host, msgHello, "", "", helloPayload{PlayerID: "host", Name: "Hope"})
	recv(t, host, msgWelcome)
	say(h, guest, msgHello, "", "", helloPayload{PlayerID: "guest", Name: "Gus"})
	recv(t, guest, msgWelcome)

	say(h, host, msgCreateLobby, "", "", nil)
	ls := recv(t, host, msgLobbyState)
	var lobbyState lobbyStatePayload
	require.NoError(t, json.Unmarshal(ls.Data, &lobbyState))
	require.Equal(t, "host", lobbyState.HostID)
	require.Len(t, lobbyState.Seats, 1)

	say(h, guest, msgJoinLobby, lobbyState.LobbyID, "", nil)
	ls = recv(t, guest, msgLobbyState)
	require.NoError(t, json.Unmarshal(ls.Data, &lobbyState))
	require.Len(t, lobbyState.Seats, 2)

	// Joining twice is rejected.
	say(h, guest, msgJoinLobby, lobbyState.LobbyID, "", nil)
	recv(t, guest, msgError)

	// Only the host starts the game.
	say(h, guest, msgStartGame, lobbyState.LobbyID, "", nil)
	recv(t, guest, msgError)

	say(h, host, msgStartGame, lobbyState.LobbyID, "", startPayload{Seed: 5})
	gs := recv(t, host, msgGameState)
	require.NotEmpty(t, gs.GameID)

	var view game.GameView
	require.NoError(t, json.Unmarshal(gs.Data, &view))
	require.Len(t, view.Players, 2)
	require.Equal(t, "DESTINY", view.Phase)

	// Both clients are now bound to the game.
	require.Equal(t, gs.GameID, host.gameID)
	require.Equal(t, gs.GameID, guest.gameID)
}

func TestActionFlowsThroughTheEngine(t *testing.T) {
	h := testHub(t)
	host, guest := testClient(), testClient()
	h.register(host)
	h.register(guest)

	say(h, host, msgHello, "", "", helloPayload{PlayerID: "host", Name: "Hope"})
	say(h, guest, msgHello, "", "", helloPayload{PlayerID: "guest", Name: "Gus"})
	say(h, host, msgCreateLobby, "", "", nil)
	ls := recv(t, host, msgLobbyState)
	var lobbyState lobbyStatePayload
	require.NoError(t, json.Unmarshal(ls.Data, &lobbyState))
	say(h, guest, msgJoinLobby, lobbyState.LobbyID, "", nil)
	say(h, host, msgStartGame, lobbyState.LobbyID, "", startPayload{Seed: 9})

	gs := recv(t, host, msgGameState)
	var view game.GameView
	require.NoError(t, json.Unmarshal(gs.Data, &view))

	active, other := host, guest
	if view.ActivePlayerID == "guest" {
		active, other = guest, host
	}

	// The wrong player acting is rejected without touching the game.
	say(h, other, msgAction, "", gs.GameID, actionPayload{Type: "DESTINY_DRAW"})
	recv(t, other, msgError)

	say(h, active, msgAction, "", gs.GameID, actionPayload{Type: "DESTINY_DRAW"})
	ev := recv(t, active, msgEvent)
	var payload eventPayload
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	require.Equal(t, string(state.EventDestinyDrawn), payload.Type)

	// The refreshed view reaches both seats.
	recv(t, active, msgGameState)
	recv(t, other, msgGameState)
}

func TestViewRequestIsRedacted(t *testing.T) {
	h := testHub(t)
	host, guest := testClient(), testClient()
	h.register(host)
	h.register(guest)

	say(h, host, msgHello, "", "", helloPayload{PlayerID: "host", Name: "Hope"})
	say(h, guest, msgHello, "", "", helloPayload{PlayerID: "guest", Name: "Gus"})
	say(h, host, msgCreateLobby, "", "", nil)
	ls := recv(t, host, msgLobbyState)
	var lobbyState lobbyStatePayload
	require.NoError(t, json.Unmarshal(ls.Data, &lobbyState))
	say(h, guest, msgJoinLobby, lobbyState.LobbyID, "", nil)
	say(h, host, msgStartGame, lobbyState.LobbyID, "", nil)
	gs := recv(t, guest, msgGameState)

	say(h, host, msgView, "", gs.GameID, nil)
	hostView := recv(t, host, msgGameState)
	var view game.GameView
	require.NoError(t, json.Unmarshal(hostView.Data, &view))
	require.NotEmpty(t, view.Hand)
	for _, p := range view.Players {
		if p.ID == "guest" {
			require.Positive(t, p.HandCount)
		}
	}
}

func TestActionPayloadMapping(t *testing.T) {
	p := actionPayload{
		Type:     "ALLIANCE_RESPOND",
		Side:     "DEFENSE",
		Ships:    2,
		Invitees: []string{"a", "b"},
		Proposal: &dealPayload{CardsToOther: []string{"c1"}, ColonyForMe: "x-planet-0"},
	}
	act, err := p.toAction()
	require.NoError(t, err)
	require.Equal(t, game.ActionAllianceRespond, act.Type)
	require.Equal(t, state.SideDefense, act.Side)
	require.Equal(t, 2, act.Ships)
	require.NotNil(t, act.Proposal)
	require.Equal(t, []string{"c1"}, act.Proposal.CardsToOther)

	_, err = actionPayload{Type: "X", Side: "SIDEWAYS"}.toAction()
	require.Error(t, err)
}
