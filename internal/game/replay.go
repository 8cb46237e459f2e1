package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

// RecordedAction is one accepted action with its submitter.
type RecordedAction struct {
	PlayerID string
	Action   Action
	At       time.Time
}

// Replay captures everything needed to reproduce a game: the seating, the
// rules, the rng seed and every accepted action in order. Rejected actions
// are not recorded; replaying the list against a fresh game with the same
// seed rebuilds the exact same state.
type Replay struct {
	GameID  string
	Seed    int64
	Rules   state.Rules
	Seats   []LobbyPlayer
	Actions []RecordedAction

	mu sync.Mutex
}

func newReplay(gameID string, seed int64, rules state.Rules, seats []LobbyPlayer) *Replay {
	return &Replay{
		GameID: gameID,
		Seed:   seed,
		Rules:  rules,
		Seats:  append([]LobbyPlayer(nil), seats...),
	}
}

func (r *Replay) record(playerID string, a Action) {
	r.mu.Lock()
	r.Actions = append(r.Actions, RecordedAction{PlayerID: playerID, Action: a, At: time.Now()})
	r.mu.Unlock()
}

// snapshot returns a copy safe to hand outside the engine.
func (r *Replay) snapshot() *Replay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Replay{
		GameID:  r.GameID,
		Seed:    r.Seed,
		Rules:   r.Rules,
		Seats:   append([]LobbyPlayer(nil), r.Seats...),
		Actions: append([]RecordedAction(nil), r.Actions...),
	}
}

// Replay returns the action record of a running or finished game.
func (e *Engine) Replay(gameID string) (*Replay, error) {
	r, err := e.room(gameID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replay == nil {
		return nil, fmt.Errorf("game %s has no replay record", gameID)
	}
	return r.replay.snapshot(), nil
}

// ReplayGame rebuilds a game from a replay record and returns the new game
// id. The replay stops at the first action the fresh game rejects; a clean
// record replays fully because the rng is seeded identically.
func (e *Engine) ReplayGame(rec *Replay) (string, error) {
	gameID, err := e.CreateGame(rec.Seats, rec.Rules, rec.Seed)
	if err != nil {
		return "", fmt.Errorf("replay setup: %w", err)
	}
	for i, ra := range rec.Actions {
		if err := e.Submit(gameID, ra.PlayerID, ra.Action); err != nil {
			return gameID, fmt.Errorf("replay diverged at action %d (%s by %s): %w",
				i, ra.Action.Type, ra.PlayerID, err)
		}
	}
	return gameID, nil
}

// SaveReplay writes the record to dir as a gzipped gob file named after the
// game id, and returns the path.
func SaveReplay(rec *Replay, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create replay dir: %w", err)
	}
	path := filepath.Join(dir, rec.GameID+".replay.gz")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create replay file: %w", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if err := gob.NewEncoder(zw).Encode(rec.snapshot()); err != nil {
		zw.Close()
		return "", fmt.Errorf("encode replay: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flush replay: %w", err)
	}
	return path, nil
}

// LoadReplay reads a record written by SaveReplay.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read replay: %w", err)
	}
	defer zr.Close()

	var rec Replay
	if err := gob.NewDecoder(zr).Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode replay: %w", err)
	}
	return &rec, nil
}
