package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game"
	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// lobby is a game being assembled: seats fill up until the host starts it.
type lobby struct {
	ID     string
	HostID string
	Seats  []game.LobbyPlayer
	GameID string
}

// Hub routes websocket traffic between connected clients and the engine. One
// hub serves every lobby and game in the process.
type Hub struct {
	logger *zap.Logger
	engine *game.Engine
	rules  state.Rules

	mu      sync.RWMutex
	clients map[*Client]bool
	lobbies map[string]*lobby

	// refresh queues game ids whose views must be re-pushed. The engine
	// notifies from inside its room lock, so views are built asynchronously.
	refresh chan string
	done    chan struct{}
}

// NewHub wires a hub to the engine. Call Run in a goroutine before serving.
func NewHub(engine *game.Engine, rules state.Rules, logger *zap.Logger) *Hub {
	return &Hub{
		logger:  logger,
		engine:  engine,
		rules:   rules,
		clients: make(map[*Client]bool),
		lobbies: make(map[string]*lobby),
		refresh: make(chan string, 64),
		done:    make(chan struct{}),
	}
}

// Run pushes refreshed views until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case gameID := <-h.refresh:
			h.pushViews(gameID)
		case <-h.done:
			return
		}
	}
}

// Close stops the run loop.
func (h *Hub) Close() {
	close(h.done)
}

// Notify is the engine's notification handler. It runs inside the engine's
// room lock, so it only forwards the event and queues a view refresh.
func (h *Hub) Notify(gameID string, ev state.Event) {
	msg := marshalEnvelope(msgEvent, "", gameID, eventToPayload(ev))
	h.mu.RLock()
	for c := range h.clients {
		if c.gameID == gameID {
			c.trySend(msg)
		}
	}
	h.mu.RUnlock()

	select {
	case h.refresh <- gameID:
	default:
		// A refresh is already queued; views are rebuilt from scratch anyway.
	}
}

// pushViews sends each seated client its own redacted view of the game.
func (h *Hub) pushViews(gameID string) {
	h.mu.RLock()
	targets := make([]*Client, 0, 8)
	for c := range h.clients {
		if c.gameID == gameID {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		view, err := h.engine.View(gameID, c.playerID)
		if err != nil {
			continue
		}
		c.trySend(marshalEnvelope(msgGameState, "", gameID, view))
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	h.logger.Debug("client disconnected", zap.String("player_id", c.playerID))
}

// handleMessage dispatches one decoded envelope from a client.
func (h *Hub) handleMessage(c *Client, env Envelope) {
	switch env.Type {
	case msgHello:
		var p helloPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.PlayerID == "" {
			c.sendError("hello needs a player_id")
			return
		}
		c.playerID = p.PlayerID
		c.name = p.Name
		if c.name == "" {
			c.name = p.PlayerID
		}
		c.trySend(marshalEnvelope(msgWelcome, "", "", helloPayload{PlayerID: c.playerID, Name: c.name}))

	case msgCreateLobby:
		h.createLobby(c, env)
	case msgJoinLobby:
		h.joinLobby(c, env)
	case msgStartGame:
		h.startGame(c, env)
	case msgAction:
		h.applyAction(c, env)
	case msgView:
		h.sendView(c, env.GameID)

	default:
		c.sendError(fmt.Sprintf("unknown message type %q", env.Type))
	}
}

func (h *Hub) createLobby(c *Client, env Envelope) {
	if c.playerID == "" {
		c.sendError("say hello first")
		return
	}
	var seat seatPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &seat); err != nil {
			c.sendError("bad seat payload")
			return
		}
	}
	l := &lobby{
		ID:     uuid.NewString(),
		HostID: c.playerID,
		Seats: []game.LobbyPlayer{{
			ID:    c.playerID,
			Name:  c.name,
			Power: cards.PowerID(seat.Power),
		}},
	}
	h.mu.Lock()
	h.lobbies[l.ID] = l
	h.mu.Unlock()

	h.logger.Info("lobby created",
		zap.String("lobby_id", l.ID),
		zap.String("host", c.playerID),
	)
	h.broadcastLobby(l)
}

func (h *Hub) joinLobby(c *Client, env Envelope) {
	if c.playerID == "" {
		c.sendError("say hello first")
		return
	}
	var seat seatPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &seat); err != nil {
			c.sendError("bad seat payload")
			return
		}
	}
	h.mu.Lock()
	l, ok := h.lobbies[env.LobbyID]
	if ok && l.GameID == "" {
		for _, s := range l.Seats {
			if s.ID == c.playerID {
				ok = false
			}
		}
	}
	if ok && l.GameID == "" {
		l.Seats = append(l.Seats, game.LobbyPlayer{
			ID:    c.playerID,
			Name:  c.name,
			Power: cards.PowerID(seat.Power),
		})
	}
	h.mu.Unlock()

	if !ok || l == nil || l.GameID != "" {
		c.sendError("lobby unavailable")
		return
	}
	h.broadcastLobby(l)
}

func (h *Hub) startGame(c *Client, env Envelope) {
	var p startPayload
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.sendError("bad start payload")
			return
		}
	}
	h.mu.Lock()
	l, ok := h.lobbies[env.LobbyID]
	h.mu.Unlock()
	if !ok {
		c.sendError("unknown lobby")
		return
	}
	if l.HostID != c.playerID {
		c.sendError("only the host starts the game")
		return
	}
	if l.GameID != "" {
		c.sendError("game already started")
		return
	}

	gameID, err := h.engine.CreateGame(l.Seats, h.rules, p.Seed)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	h.mu.Lock()
	l.GameID = gameID
	seated := make(map[string]bool, len(l.Seats))
	for _, s := range l.Seats {
		seated[s.ID] = true
	}
	for cl := range h.clients {
		if seated[cl.playerID] {
			cl.gameID = gameID
		}
	}
	h.mu.Unlock()

	h.logger.Info("game started from lobby",
		zap.String("lobby_id", l.ID),
		zap.String("game_id", gameID),
		zap.Int("players", len(l.Seats)),
	)
	h.broadcastLobby(l)
	h.pushViews(gameID)
}

func (h *Hub) applyAction(c *Client, env Envelope) {
	if c.playerID == "" || env.GameID == "" {
		c.sendError("action needs a player and a game")
		return
	}
	var p actionPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		c.sendError("bad action payload")
		return
	}
	act, err := p.toAction()
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if err := h.engine.Submit(env.GameID, c.playerID, act); err != nil {
		c.sendError(err.Error())
		return
	}
	// Submit published events already; make sure views follow even when an
	// action produced none.
	select {
	case h.refresh <- env.GameID:
	default:
	}
}

func (h *Hub) sendView(c *Client, gameID string) {
	if gameID == "" {
		gameID = c.gameID
	}
	view, err := h.engine.View(gameID, c.playerID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.trySend(marshalEnvelope(msgGameState, "", gameID, view))
}

// broadcastLobby sends the lobby roster to every seated client.
func (h *Hub) broadcastLobby(l *lobby) {
	payload := lobbyStatePayload{LobbyID: l.ID, HostID: l.HostID, GameID: l.GameID}
	seated := make(map[string]bool, len(l.Seats))
	for _, s := range l.Seats {
		payload.Seats = append(payload.Seats, seatInfo{PlayerID: s.ID, Name: s.Name, Power: string(s.Power)})
		seated[s.ID] = true
	}
	msg := marshalEnvelope(msgLobbyState, l.ID, l.GameID, payload)

	h.mu.RLock()
	for c := range h.clients {
		if seated[c.playerID] {
			c.trySend(msg)
		}
	}
	h.mu.RUnlock()
}
