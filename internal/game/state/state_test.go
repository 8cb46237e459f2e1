package state

import (
	"math/rand"
	"testing"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
)

func twoPlayerBoard() *GameState {
	g := &GameState{
		ID:    "g1",
		Rules: DefaultRules(),
		Players: map[string]*PlayerState{
			"p1": {ID: "p1", Name: "Ada", Color: cards.ColorRed, Power: "ZOMBIE"},
			"p2": {ID: "p2", Name: "Lin", Color: cards.ColorBlue, Power: "VIRUS"},
		},
		TurnOrder:      []string{"p1", "p2"},
		ActivePlayerID: "p1",
		PhaseData:      &StartTurnData{},
		Warp:           map[cards.Color]int{},
		Removed:        map[cards.Color]int{},
		Rand:           rand.New(rand.NewSource(1)),
	}
	for _, p := range g.Players {
		for i := 0; i < g.Rules.PlanetsPerPlayer; i++ {
			planet := &PlanetState{
				ID:    string(p.Color) + "_" + string(rune('1'+i)),
				Owner: p.Color,
			}
			planet.AddShips(p.Color, g.Rules.ShipsPerPlanet)
			p.Planets = append(p.Planets, planet)
		}
	}
	g.RecalculateColonies()
	return g
}

func TestPhaseDerivedFromPayload(t *testing.T) {
	g := twoPlayerBoard()
	if g.Phase() != PhaseStartTurn {
		t.Fatalf("phase = %v, want START_TURN", g.Phase())
	}
	g.PhaseData = &RevealData{}
	if g.Phase() != PhaseReveal {
		t.Fatalf("phase = %v, want REVEAL", g.Phase())
	}
}

func TestColonyRecalcAndPowerActivation(t *testing.T) {
	g := twoPlayerBoard()
	p1 := g.Players["p1"]
	if p1.HomeColonies != 5 || p1.ForeignColonies != 0 {
		t.Fatalf("initial colonies = %d/%d, want 5/0", p1.HomeColonies, p1.ForeignColonies)
	}
	if !p1.PowerActive {
		t.Fatalf("power should start active")
	}

	// Strip p1 down to two home colonies; the power must deactivate.
	for i := 0; i < 3; i++ {
		planet := p1.Planets[i]
		g.ShipsToWarp(p1.Color, planet.RemoveShips(p1.Color, 4))
	}
	g.RecalculateColonies()
	if p1.HomeColonies != 2 {
		t.Fatalf("home colonies = %d, want 2", p1.HomeColonies)
	}
	if p1.PowerActive {
		t.Fatalf("power should be inactive below the threshold")
	}
}

func TestZeroShipColoniesArePruned(t *testing.T) {
	g := twoPlayerBoard()
	planet := g.Players["p1"].Planets[0]
	planet.AddShips(cards.ColorBlue, 2)
	if got := planet.RemoveShips(cards.ColorBlue, 5); got != 2 {
		t.Fatalf("removed %d, want 2", got)
	}
	if planet.ColonyOf(cards.ColorBlue) != 0 {
		t.Fatalf("blue colony should be gone")
	}
	for _, c := range planet.Colonies {
		if c.Ships == 0 {
			t.Fatalf("zero-ship colony left on planet")
		}
	}
}

func TestShipConservation(t *testing.T) {
	g := twoPlayerBoard()
	p1 := g.Players["p1"]
	start := g.Rules.PlanetsPerPlayer * g.Rules.ShipsPerPlanet

	g.ShipsToWarp(p1.Color, p1.Planets[0].RemoveShips(p1.Color, 3))
	got := g.RetrieveFromWarp(p1.Color, 1)
	p1.Planets[1].AddShips(p1.Color, got)

	total := g.Warp[p1.Color] + g.Removed[p1.Color]
	for _, owner := range g.Players {
		for _, planet := range owner.Planets {
			total += planet.ColonyOf(p1.Color)
		}
	}
	if total != start {
		t.Fatalf("ship conservation broken: have %d, want %d", total, start)
	}
}

func TestWinTrigger(t *testing.T) {
	g := twoPlayerBoard()
	p1 := g.Players["p1"]
	for i, planet := range g.Players["p2"].Planets {
		if i >= g.Rules.ForeignColoniesToWin {
			break
		}
		planet.AddShips(p1.Color, 1)
	}
	g.RecalculateColonies()
	winners := g.CheckWin()
	if len(winners) != 1 || winners[0] != "p1" {
		t.Fatalf("winners = %v, want [p1]", winners)
	}
	if !g.Finished() {
		t.Fatalf("game should be finished")
	}
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(ev Event) { got = append(got, "all:"+string(ev.Type)) })
	bus.SubscribeType(EventTurnEnded, func(ev Event) { got = append(got, "typed") })

	bus.Publish(NewEvent(EventTurnEnded, "p1", "turn over"))
	bus.Publish(NewEvent(EventPhaseChanged, "p1", "next phase"))

	want := []string{"all:TURN_ENDED", "typed", "all:PHASE_CHANGED"}
	if len(got) != len(want) {
		t.Fatalf("deliveries = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery %d = %s, want %s", i, got[i], want[i])
		}
	}
}
