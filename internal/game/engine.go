// Package game implements the turn engine: room management, the eight-phase
// encounter cycle, alien power dispatch and win detection.
package game

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/powers"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// NotificationHandler receives every event a game publishes, tagged with the
// game id. The server layer fans these out to connected clients.
type NotificationHandler func(gameID string, ev state.Event)

// LobbyPlayer is one seat request from the lobby. An empty Power means the
// engine assigns a random one.
type LobbyPlayer struct {
	ID    string
	Name  string
	Power cards.PowerID
}

// room pairs one game's state with its event bus. All access goes through the
// room mutex; games never share state.
type room struct {
	mu     sync.Mutex
	g      *state.GameState
	bus    *state.Bus
	replay *Replay
}

// Engine owns every running game.
type Engine struct {
	logger    *zap.Logger
	registry  *powers.Registry
	comp      *cards.Composition
	artifacts map[cards.ArtifactKind]cards.ArtifactRule

	mu     sync.RWMutex
	rooms  map[string]*room
	notify NotificationHandler
}

// NewEngine builds an engine with the full power registry and the standard
// deck composition loaded.
func NewEngine(logger *zap.Logger, notify NotificationHandler) (*Engine, error) {
	registry, err := powers.NewRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("load power registry: %w", err)
	}
	comp, err := cards.LoadComposition()
	if err != nil {
		return nil, fmt.Errorf("load deck composition: %w", err)
	}
	artifacts, err := comp.ArtifactRules()
	if err != nil {
		return nil, fmt.Errorf("load artifact rules: %w", err)
	}
	if notify == nil {
		notify = func(string, state.Event) {}
	}
	return &Engine{
		logger:    logger,
		registry:  registry,
		comp:      comp,
		artifacts: artifacts,
		rooms:     make(map[string]*room),
		notify:    notify,
	}, nil
}

// Registry exposes the power catalog for lobby listings.
func (e *Engine) Registry() *powers.Registry { return e.registry }

// CreateGame seats the lobby players, builds the decks and opens the first
// turn. Returns the new game id.
func (e *Engine) CreateGame(lobby []LobbyPlayer, rules state.Rules, seed int64) (string, error) {
	g, err := e.setupGame(lobby, rules, seed)
	if err != nil {
		return "", err
	}

	bus := state.NewBus()
	gameID := g.ID
	bus.Subscribe(func(ev state.Event) { e.notify(gameID, ev) })

	r := &room{g: g, bus: bus, replay: newReplay(gameID, seed, rules, lobby)}
	e.mu.Lock()
	e.rooms[gameID] = r
	e.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	bus.Publish(state.NewEvent(state.EventGameStarted, g.ActivePlayerID,
		fmt.Sprintf("game started with %d players", len(lobby))))
	e.enterPhase(g, bus, &state.StartTurnData{})
	e.checkStartTurnHand(g, bus)

	e.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.Int("players", len(lobby)),
		zap.Int64("seed", seed),
	)
	return gameID, nil
}

// Submit applies one player action to a game. Errors leave the game state
// untouched for validation failures; rule effects are applied atomically under
// the room lock.
func (e *Engine) Submit(gameID, playerID string, a Action) error {
	r, err := e.room(gameID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.g.Finished() {
		return fmt.Errorf("game %s is over", gameID)
	}
	if _, err := r.g.Player(playerID); err != nil {
		return err
	}
	if err := e.handleAction(r.g, r.bus, playerID, a); err != nil {
		e.logger.Debug("action rejected",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.String("action", string(a.Type)),
			zap.Error(err),
		)
		return err
	}
	r.replay.record(playerID, a)
	e.afterAction(r.g, r.bus)
	return nil
}

// View renders the game as seen by one player, with hidden zones redacted.
func (e *Engine) View(gameID, viewerID string) (*GameView, error) {
	r, err := e.room(gameID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return e.buildView(r.g, viewerID), nil
}

// GameIDs lists the running games.
func (e *Engine) GameIDs() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	ids := make([]string, 0, len(e.rooms))
	for id := range e.rooms {
		ids = append(ids, id)
	}
	return ids
}

// RemoveGame drops a finished or abandoned game.
func (e *Engine) RemoveGame(gameID string) {
	e.mu.Lock()
	delete(e.rooms, gameID)
	e.mu.Unlock()
}

func (e *Engine) room(gameID string) (*room, error) {
	e.mu.RLock()
	r, ok := e.rooms[gameID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown game %q", gameID)
	}
	return r, nil
}

// afterAction runs the bookkeeping every action shares: refresh colony counts
// and announce a finished game exactly once.
func (e *Engine) afterAction(g *state.GameState, bus *state.Bus) {
	g.RecalculateColonies()
	if winners := g.CheckWin(); len(winners) > 0 {
		names := ""
		for i, id := range winners {
			if i > 0 {
				names += " and "
			}
			names += g.Players[id].Name
		}
		bus.Publish(state.NewEvent(state.EventGameOver, winners[0], names+" won the game"))
		e.logger.Info("game over",
			zap.String("game_id", g.ID),
			zap.Strings("winners", winners),
		)
	}
}

func newGameID() string { return uuid.NewString() }
