package powers

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(zap.NewNop())
	require.NoError(t, err)
	return r
}

// fourPlayerGame seats p1..p4 with p1 on offense against p3. Each player gets
// one home planet with four own ships so powers stay active.
func fourPlayerGame(t *testing.T) *state.GameState {
	t.Helper()
	g := &state.GameState{
		ID:        "g1",
		Rules:     state.DefaultRules(),
		Players:   make(map[string]*state.PlayerState),
		TurnOrder: []string{"p1", "p2", "p3", "p4"},
		AllCards:  make(map[string]cards.Card),
		Warp:      make(map[cards.Color]int),
		Removed:   make(map[cards.Color]int),
		Rand:      rand.New(rand.NewSource(7)),
	}
	g.Rules.HomeColoniesForPower = 1
	colors := []cards.Color{cards.ColorRed, cards.ColorBlue, cards.ColorGreen, cards.ColorYellow}
	for i, id := range g.TurnOrder {
		p := &state.PlayerState{ID: id, Name: id, Color: colors[i]}
		p.Planets = []*state.PlanetState{{
			ID:       id + "-planet-0",
			Owner:    p.Color,
			Colonies: []state.Colony{{Color: p.Color, Ships: 4}},
		}}
		g.Players[id] = p
	}
	g.ActivePlayerID = "p1"
	g.Encounter = &state.EncounterState{
		DefenseID:       "p3",
		TargetColor:     cards.ColorGreen,
		TargetPlanetID:  "p3-planet-0",
		OffenseShips:    3,
		OffensiveAllies: make(map[string]*state.AllyCommitment),
		DefensiveAllies: make(map[string]*state.AllyCommitment),
	}
	g.PhaseData = &state.RevealData{}
	g.RecalculateColonies()
	return g
}

func givePower(g *state.GameState, playerID string, power cards.PowerID) {
	p := g.Players[playerID]
	p.Power = power
	p.PowerActive = true
}

func TestCatalogMatchesImplementations(t *testing.T) {
	r := testRegistry(t)
	require.Len(t, r.AllIDs(), 50)
	for _, id := range r.AllIDs() {
		def, ok := r.Definition(id)
		require.True(t, ok, "missing definition for %s", id)
		require.NotEmpty(t, def.Name)
		require.NotEmpty(t, def.Phases, "power %s has no active phases", id)
	}
}

func TestHookOrderOffenseDefenseClockwise(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)

	got := r.hookOrder(g)
	want := []string{"p1", "p3", "p2", "p4"}
	require.Equal(t, want, got)

	// With a different offense the clockwise tail rotates with it.
	g.ActivePlayerID = "p2"
	g.Encounter.DefenseID = "p4"
	got = r.hookOrder(g)
	require.Equal(t, []string{"p2", "p4", "p3", "p1"}, got)
}

func TestModifyAttackTotalThreadsAccumulator(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Macron)

	// 3 ships and a card value of 8: Macron turns 11 into 3*4+8 = 20.
	total := r.ModifyAttackTotal(g, bus, state.SideOffense, 11, 3, 8)
	if total != 20 {
		t.Fatalf("offense total = %d, want 20", total)
	}

	// The defense side is untouched by an offense-side power.
	total = r.ModifyAttackTotal(g, bus, state.SideDefense, 10, 2, 8)
	if total != 10 {
		t.Fatalf("defense total = %d, want 10", total)
	}
}

func TestZappedPowerIsSilenced(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Macron)
	g.Players["p1"].PowerState.Zapped = true

	total := r.ModifyAttackTotal(g, bus, state.SideOffense, 11, 3, 8)
	if total != 11 {
		t.Fatalf("zapped Macron changed the total to %d", total)
	}
}

func TestInactivePowerIsSilenced(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Macron)
	g.Players["p1"].PowerActive = false

	total := r.ModifyAttackTotal(g, bus, state.SideOffense, 11, 3, 8)
	if total != 11 {
		t.Fatalf("inactive Macron changed the total to %d", total)
	}
}

func TestPrerequisiteFiltersBystanders(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	// Mirror requires a main-player role; p2 is a bystander.
	givePower(g, "p2", Mirror)

	total := r.ModifyAttackTotal(g, bus, state.SideOffense, 11, 3, 8)
	if total != 11 {
		t.Fatalf("bystander Mirror changed the total to %d", total)
	}
}

func TestMirrorReversesOpposingCard(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p3", Mirror)

	// Defense owns Mirror, so the offense's card of 6 becomes 34.
	total := r.ModifyAttackTotal(g, bus, state.SideOffense, 9, 3, 6)
	if total != 9-6+34 {
		t.Fatalf("mirrored total = %d, want %d", total, 9-6+34)
	}
}

func TestAntiMatterFlipsAttackOutcome(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p3", AntiMatter)

	rd := &state.ResolutionData{Outcome: state.OffenseWins{}}
	g.PhaseData = rd
	prevented := r.DispatchCombatResolved(g, bus, rd.Outcome)
	require.False(t, prevented)
	require.IsType(t, state.DefenseWins{}, rd.Outcome)
}

func TestZombieVetoReturnsShipsHome(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Zombie)

	home := g.Players["p1"].Planets[0]
	before := home.ColonyOf(cards.ColorRed)
	allowed := r.CanShipsGoToWarp(g, bus, cards.ColorRed, 3)
	require.False(t, allowed)
	if got := home.ColonyOf(cards.ColorRed); got != before+3 {
		t.Fatalf("home colony has %d ships, want %d", got, before+3)
	}
	if g.Warp[cards.ColorRed] != 0 {
		t.Fatalf("warp holds %d red ships, want 0", g.Warp[cards.ColorRed])
	}
}

func TestVoidRemovesDefeatedShips(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p3", Void)

	allowed := r.CanShipsGoToWarp(g, bus, cards.ColorRed, 2)
	require.False(t, allowed)
	require.Equal(t, 2, g.Removed[cards.ColorRed])
}

func TestKamikazePreventsDefaultDisposition(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Kamikaze)

	rd := &state.ResolutionData{Outcome: state.OffenseWins{}}
	g.PhaseData = rd
	prevented := r.DispatchCombatResolved(g, bus, rd.Outcome)
	require.True(t, prevented)
	require.Equal(t, 0, g.Encounter.OffenseShips)
	require.Equal(t, 3, g.Warp[cards.ColorRed])
	// The defending colony burned with them.
	require.Equal(t, 4, g.Warp[cards.ColorGreen])
}

func TestDictatorCancelsForbiddenJoin(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Dictator)
	g.PhaseData = &state.AllianceData{Responses: make(map[string]state.AllianceResponse)}

	r.DispatchAllianceInvitation(g, bus)
	forbidden := g.Players["p1"].PowerState.Forbidden
	require.Len(t, forbidden, 2)

	canceled := r.DispatchAllianceResponse(g, bus, forbidden[0], state.AllianceResponse{Joined: state.SideOffense, Ships: 2})
	require.True(t, canceled)

	// Declines always stand.
	canceled = r.DispatchAllianceResponse(g, bus, forbidden[0], state.AllianceResponse{Decline: true})
	require.False(t, canceled)
}

func TestFidoRetrievesWholeWarp(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p1", Fido)
	g.Warp[cards.ColorRed] = 3

	require.Equal(t, 3, r.ModifyRegroupCount(g, bus))

	// Regroup count is a single-target dispatch: another player's Fido is
	// never consulted.
	g.Players["p1"].Power = ""
	givePower(g, "p2", Fido)
	require.Equal(t, 1, r.ModifyRegroupCount(g, bus))
}

func TestAmoebaLiftsGateLimit(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	require.Equal(t, 4, r.ModifyMaxShipsInGate(g, bus))

	givePower(g, "p1", Amoeba)
	require.Equal(t, 20, r.ModifyMaxShipsInGate(g, bus))
}

func TestGrudgeCollectsOnLaterDraws(t *testing.T) {
	r := testRegistry(t)
	g := fourPlayerGame(t)
	bus := state.NewBus()
	givePower(g, "p2", Grudge)
	r.InitPowerState(g.Players["p2"])

	// p2 loses to p1: a grudge token lands on p1.
	g.Players["p2"].PowerState.TokensBy["p1"] = 1

	for i := 0; i < 3; i++ {
		id := cards.Card{ID: "atk-" + string(rune('a'+i)), Type: cards.TypeAttack, Value: 4}
		g.AllCards[id.ID] = id
		g.Players["p1"].Hand = append(g.Players["p1"].Hand, id.ID)
	}
	r.DispatchCardsDrawn(g, bus, "p1", 1)

	require.Len(t, g.Players["p1"].Hand, 2)
	require.Empty(t, g.Players["p2"].PowerState.TokensBy)
}

func TestUnusedIDsExcludesChosenPowers(t *testing.T) {
	r := testRegistry(t)
	unused := r.UnusedIDs([]cards.PowerID{Zombie, Macron})
	require.Len(t, unused, 48)
	for _, id := range unused {
		require.NotEqual(t, Zombie, id)
		require.NotEqual(t, Macron, id)
	}
}
