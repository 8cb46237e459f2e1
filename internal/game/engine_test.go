package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cosmicgames/cosmic-server-go/internal/game/cards"
	"github.com/cosmicgames/cosmic-server-go/internal/game/powers"
	"github.com/cosmicgames/cosmic-server-go/internal/game/state"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(zap.NewNop(), nil)
	require.NoError(t, err)
	return e
}

// encounterFixture builds a two-player board frozen at the planning phase of
// an encounter: p1 attacks p2's first planet with 3 ships.
func encounterFixture(t *testing.T) (*state.GameState, *state.Bus) {
	t.Helper()
	g := &state.GameState{
		ID:              "test",
		Rules:           state.DefaultRules(),
		Players:         make(map[string]*state.PlayerState),
		TurnOrder:       []string{"p1", "p2"},
		AllCards:        make(map[string]cards.Card),
		AllDestiny:      make(map[string]cards.DestinyCard),
		Warp:            make(map[cards.Color]int),
		Removed:         make(map[cards.Color]int),
		TurnNumber:      1,
		EncounterNumber: 1,
		Rand:            rand.New(rand.NewSource(42)),
	}
	colors := []cards.Color{cards.ColorRed, cards.ColorBlue}
	for i, id := range g.TurnOrder {
		p := &state.PlayerState{ID: id, Name: id, Color: colors[i]}
		for n := 0; n < 2; n++ {
			p.Planets = append(p.Planets, &state.PlanetState{
				ID:       id + "-planet-" + string(rune('0'+n)),
				Owner:    p.Color,
				Colonies: []state.Colony{{Color: p.Color, Ships: 4}},
			})
		}
		g.Players[id] = p
	}
	g.ActivePlayerID = "p1"

	// Three offense ships are already through the gate.
	g.Players["p1"].Planets[1].RemoveShips(cards.ColorRed, 3)
	g.Encounter = &state.EncounterState{
		DefenseID:       "p2",
		TargetColor:     cards.ColorBlue,
		TargetPlanetID:  "p2-planet-0",
		OffenseShips:    3,
		OffenseSources:  []state.ShipSource{{PlanetID: "p1-planet-1", Count: 3}},
		OffensiveAllies: make(map[string]*state.AllyCommitment),
		DefensiveAllies: make(map[string]*state.AllyCommitment),
	}
	g.PhaseData = &state.PlanningData{}
	g.RecalculateColonies()
	return g, state.NewBus()
}

func addCard(g *state.GameState, playerID string, card cards.Card) string {
	if card.ID == "" {
		card.ID = playerID + "-" + card.Name()
	}
	g.AllCards[card.ID] = card
	g.Players[playerID].Hand = append(g.Players[playerID].Hand, card.ID)
	return card.ID
}

func TestCreateGameSetsUpBoard(t *testing.T) {
	e := testEngine(t)
	lobby := []LobbyPlayer{
		{ID: "a", Name: "Ada"},
		{ID: "b", Name: "Ben"},
		{ID: "c", Name: "Cho"},
		{ID: "d", Name: "Dee"},
	}
	id, err := e.CreateGame(lobby, state.DefaultRules(), 11)
	require.NoError(t, err)

	v, err := e.View(id, "a")
	require.NoError(t, err)
	require.Len(t, v.Players, 4)
	// The warp is empty at game start, so regroup was skipped.
	require.Equal(t, "DESTINY", v.Phase)

	seen := make(map[string]bool)
	for _, p := range v.Players {
		require.Len(t, p.Planets, 5)
		require.NotEmpty(t, p.Power)
		require.False(t, seen[p.Power], "power %s assigned twice", p.Power)
		seen[p.Power] = true
		require.Equal(t, 5, p.HomeColonies)
	}
	// Only the viewer's own hand is visible.
	require.NotEmpty(t, v.Hand)
	other, err := e.View(id, "b")
	require.NoError(t, err)
	require.NotEqual(t, v.Hand, other.Hand)
}

func TestCreateGameRejectsBadLobbies(t *testing.T) {
	e := testEngine(t)
	_, err := e.CreateGame([]LobbyPlayer{{ID: "solo", Name: "Solo"}}, state.DefaultRules(), 1)
	require.Error(t, err)

	_, err = e.CreateGame([]LobbyPlayer{
		{ID: "a", Name: "A", Power: powers.Zombie},
		{ID: "b", Name: "B", Power: powers.Zombie},
	}, state.DefaultRules(), 1)
	require.Error(t, err)
}

func TestSubmitRejectsUnknownGameAndPlayer(t *testing.T) {
	e := testEngine(t)
	err := e.Submit("nope", "a", Action{Type: ActionDestinyDraw})
	require.Error(t, err)

	id, err := e.CreateGame([]LobbyPlayer{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, state.DefaultRules(), 3)
	require.NoError(t, err)
	err = e.Submit(id, "ghost", Action{Type: ActionDestinyDraw})
	require.Error(t, err)
}

func TestAttackAgainstAttackOffenseWins(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))

	rd, ok := g.PhaseData.(*state.RevealData)
	require.True(t, ok, "expected the reinforcement window to open")
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	res, ok := g.PhaseData.(*state.ResolutionData)
	require.True(t, ok)
	require.IsType(t, state.OffenseWins{}, res.Outcome)
	require.Equal(t, 13, rd.OffenseTotal) // 3 ships + card 10
	require.Equal(t, 12, rd.DefenseTotal) // 4 ships + card 8

	planet := g.PlanetByID("p2-planet-0")
	require.Equal(t, 3, planet.ColonyOf(cards.ColorRed))
	require.Equal(t, 0, planet.ColonyOf(cards.ColorBlue))
	require.Equal(t, 4, g.Warp[cards.ColorBlue])
	require.True(t, res.CanHaveSecondEncounter)
}

func TestTieGoesToTheDefense(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 9})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	// 12 against 12: the offense warps and the turn passes.
	require.Equal(t, 3, g.Warp[cards.ColorRed])
	require.Equal(t, "p2", g.ActivePlayerID)
	require.Equal(t, state.PhaseDestiny, g.Phase())
}

func TestAttackAgainstNegotiatePaysCompensation(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 4})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeNegotiate})
	for i := 0; i < 6; i++ {
		addCard(g, "p1", cards.Card{ID: "fill-" + string(rune('a'+i)), Type: cards.TypeAttack, Value: i})
	}

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))

	res, ok := g.PhaseData.(*state.ResolutionData)
	require.True(t, ok, "negotiate against attack resolves without a reinforcement window")
	avn, ok := res.Outcome.(state.AttackVsNegotiate)
	require.True(t, ok)
	require.Equal(t, state.SideOffense, avn.Winner)

	// The defense lost 4 colony ships and collects 4 cards from the offense.
	require.Equal(t, 4, res.CompensationShips)
	require.Len(t, g.Players["p2"].Hand, 4)
	require.Len(t, g.Players["p1"].Hand, 2)
	require.Equal(t, 4, g.Warp[cards.ColorBlue])
}

func TestNegotiateAgainstNegotiateDealSucceeds(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeNegotiate})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeNegotiate})
	gift := addCard(g, "p1", cards.Card{ID: "gift", Type: cards.TypeAttack, Value: 12})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))

	res, ok := g.PhaseData.(*state.ResolutionData)
	require.True(t, ok)
	require.IsType(t, state.DealMaking{}, res.Outcome)
	require.True(t, res.DealInProgress)

	err := e.dealPropose(g, bus, "p1", Action{Type: ActionDealPropose, Proposal: &state.DealProposal{
		CardsToOther: []string{gift},
		ColonyForMe:  "p2-planet-1",
	}})
	require.NoError(t, err)
	require.NoError(t, e.dealAccept(g, bus, "p2"))

	require.IsType(t, state.DealSuccess{}, res.Outcome)
	require.True(t, g.Players["p2"].HasCard(gift))
	planet := g.PlanetByID("p2-planet-1")
	require.Equal(t, 1, planet.ColonyOf(cards.ColorRed))
	// A closed deal leaves the second encounter on offer.
	require.True(t, res.CanHaveSecondEncounter)
}

func TestFailedDealCostsBothSidesThreeShips(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeNegotiate})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeNegotiate})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))
	require.NoError(t, e.dealReject(g, bus, "p2"))

	require.Equal(t, 3, g.Warp[cards.ColorRed])
	require.Equal(t, 3, g.Warp[cards.ColorBlue])
	// The failed deal ends the turn.
	require.Equal(t, "p2", g.ActivePlayerID)
}

func TestZappedPowerDoesNotShapeTheTotals(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	g.Players["p1"].Power = powers.Macron
	g.Players["p1"].PowerActive = true
	g.Players["p1"].PowerState.Zapped = true
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))
	rd := g.PhaseData.(*state.RevealData)
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	require.Equal(t, 13, rd.OffenseTotal)
}

func TestReinforcementsShiftTheTotals(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	// Without the reinforcement the offense wins 13 to 12.
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})
	boost := addCard(g, "p2", cards.Card{ID: "boost", Type: cards.TypeReinforcement, Value: 3})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))

	require.NoError(t, e.revealReinforce(g, bus, "p2", Action{Type: ActionRevealReinforce, CardID: boost}))
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	rd := g.PhaseData.(*state.ResolutionData)
	require.IsType(t, state.DefenseWins{}, rd.Outcome)
	// The reinforcement is spent.
	require.False(t, g.Players["p2"].HasCard(boost))
}

func TestMorphCopiesTheOpposingCard(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 6})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeMorph})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	// Morph copies Attack 6: 4 ships + 6 beats 3 ships + 6.
	require.Equal(t, 3, g.Warp[cards.ColorRed])
	require.Equal(t, 0, g.Warp[cards.ColorBlue])
}

func TestCosmicZapValidatesBeforeApplying(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	zapID := addCard(g, "p2", cards.Card{ID: "zap", Type: cards.TypeArtifact, Artifact: cards.ArtifactCosmicZap})

	// p1 has no power: the zap is rejected and the card stays in hand.
	err := e.playArtifact(g, bus, "p2", Action{Type: ActionPlayArtifact, CardID: zapID, TargetID: "p1"})
	require.Error(t, err)
	require.True(t, g.Players["p2"].HasCard(zapID))

	g.Players["p1"].Power = powers.Macron
	g.Players["p1"].PowerActive = true
	require.NoError(t, e.playArtifact(g, bus, "p2", Action{Type: ActionPlayArtifact, CardID: zapID, TargetID: "p1"}))
	require.True(t, g.Players["p1"].PowerState.Zapped)
	require.False(t, g.Players["p2"].HasCard(zapID))
}

func TestSuperFlareNeedsTheMatchingPower(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	flare := addCard(g, "p1", cards.Card{ID: "flare-z", Type: cards.TypeFlare, Flare: powers.Zombie})

	err := e.playFlare(g, bus, "p1", Action{Type: ActionPlayFlare, CardID: flare, Super: true})
	require.Error(t, err)

	g.Players["p1"].Power = powers.Zombie
	g.Players["p1"].PowerActive = true
	g.Warp[cards.ColorRed] = 2
	require.NoError(t, e.playFlare(g, bus, "p1", Action{Type: ActionPlayFlare, CardID: flare, Super: true}))
	require.Equal(t, 0, g.Warp[cards.ColorRed])
	require.True(t, g.Players["p1"].PowerState.FlarePlayed)

	// The spent flare is discarded, not kept for later encounters.
	require.False(t, g.Players["p1"].HasCard(flare))
	require.Contains(t, g.Cosmic.Discard, flare)

	// One flare per encounter, even holding a second one.
	second := addCard(g, "p1", cards.Card{ID: "flare-h", Type: cards.TypeFlare, Flare: powers.Human})
	err = e.playFlare(g, bus, "p1", Action{Type: ActionPlayFlare, CardID: second})
	require.Error(t, err)
	require.True(t, g.Players["p1"].HasCard(second))
}

func TestSecondEncounterReturnsToRegroup(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 20})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 1})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	// The offense has warp ships to retrieve, so the full cycle restarts.
	g.Warp[cards.ColorRed] = 2
	require.NoError(t, e.secondEncounter(g, bus, "p1", Action{Type: ActionSecondEncounter, Accept: true}))
	require.Equal(t, 2, g.EncounterNumber)
	require.Equal(t, "p1", g.ActivePlayerID)
	require.Equal(t, state.PhaseRegroup, g.Phase())
	require.Nil(t, g.Encounter)

	require.NoError(t, e.regroupRetrieve(g, bus, "p1"))
	require.Equal(t, 0, g.Warp[cards.ColorRed])
	require.Equal(t, state.PhaseDestiny, g.Phase())
}

func TestRevealWaitsForEveryParticipant(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))

	// One player passing twice is not the whole table passing.
	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p1"))
	_, open := g.PhaseData.(*state.RevealData)
	require.True(t, open, "the window must wait for the defense")

	require.NoError(t, e.revealPass(g, bus, "p2"))
	_, resolved := g.PhaseData.(*state.ResolutionData)
	require.True(t, resolved)
}

func TestMobiusTubesFreesOnlyYourShips(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	g.PhaseData = &state.ResolutionData{}
	g.Warp[cards.ColorRed] = 2
	g.Warp[cards.ColorBlue] = 3
	tubes := addCard(g, "p1", cards.Card{ID: "tubes", Type: cards.TypeArtifact, Artifact: cards.ArtifactMobiusTubes})

	require.NoError(t, e.playArtifact(g, bus, "p1", Action{Type: ActionPlayArtifact, CardID: tubes}))
	require.Equal(t, 0, g.Warp[cards.ColorRed])
	require.Equal(t, 3, g.Warp[cards.ColorBlue])
}

func TestEmotionControlSwapsForNegotiate(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	neg := addCard(g, "p1", cards.Card{ID: "neg", Type: cards.TypeNegotiate})
	ec := addCard(g, "p2", cards.Card{ID: "ec", Type: cards.TypeArtifact, Artifact: cards.ArtifactEmotionControl})

	// Nothing locked in yet: the play is rejected and the card stays.
	err := e.playArtifact(g, bus, "p2", Action{Type: ActionPlayArtifact, CardID: ec, TargetID: "p1"})
	require.Error(t, err)
	require.True(t, g.Players["p2"].HasCard(ec))

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.playArtifact(g, bus, "p2", Action{Type: ActionPlayArtifact, CardID: ec, TargetID: "p1"}))

	pd := g.PhaseData.(*state.PlanningData)
	require.Equal(t, neg, pd.OffenseCardID)
	require.Equal(t, neg, g.Encounter.OffenseCardID)
	require.True(t, g.Players["p1"].HasCard(off), "the swapped-out card goes back to hand")
}

func TestCardZapNegatesAReinforcement(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})
	boost := addCard(g, "p2", cards.Card{ID: "boost", Type: cards.TypeReinforcement, Value: 3})
	zap := addCard(g, "p1", cards.Card{ID: "card-zap", Type: cards.TypeArtifact, Artifact: cards.ArtifactCardZap})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))
	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))
	require.NoError(t, e.revealReinforce(g, bus, "p2", Action{Type: ActionRevealReinforce, CardID: boost}))
	require.NoError(t, e.playArtifact(g, bus, "p1", Action{Type: ActionPlayArtifact, CardID: zap}))

	require.NoError(t, e.revealPass(g, bus, "p1"))
	require.NoError(t, e.revealPass(g, bus, "p2"))

	// With the +3 negated the offense wins 13 to 12.
	rd := g.PhaseData.(*state.ResolutionData)
	require.IsType(t, state.OffenseWins{}, rd.Outcome)
}

func TestViewCarriesRedactedPhaseData(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	off := addCard(g, "p1", cards.Card{Type: cards.TypeAttack, Value: 10})
	def := addCard(g, "p2", cards.Card{Type: cards.TypeAttack, Value: 8})

	require.NoError(t, e.planningSelect(g, bus, "p1", Action{Type: ActionPlanningSelect, CardID: off}))

	// Planning selections show as yes/no only, even to the opponent.
	v := e.buildView(g, "p2")
	require.NotNil(t, v.PhaseData)
	require.True(t, v.PhaseData.OffenseSelected)
	require.False(t, v.PhaseData.DefenseSelected)
	require.Empty(t, v.PhaseData.OffenseCard)

	require.NoError(t, e.planningSelect(g, bus, "p2", Action{Type: ActionPlanningSelect, CardID: def}))

	// Once revealed the cards are public.
	v = e.buildView(g, "p2")
	require.NotNil(t, v.PhaseData)
	require.NotEmpty(t, v.PhaseData.OffenseCard)
	require.NotEmpty(t, v.PhaseData.DefenseCard)
}

func TestLaunchRejectsOverCommit(t *testing.T) {
	e := testEngine(t)
	g, bus := encounterFixture(t)
	// Rebuild the board at the launch decision with only two red ships left.
	g.Encounter.OffenseShips = 0
	g.Encounter.OffenseSources = nil
	p1 := g.Players["p1"]
	p1.Planets[0].RemoveShips(cards.ColorRed, 3)
	g.PhaseData = &state.LaunchData{
		DefenseID:      "p2",
		TargetColor:    cards.ColorBlue,
		TargetPlanetID: "p2-planet-0",
	}

	err := e.launchCommit(g, bus, "p1", Action{Type: ActionLaunchCommit, Ships: 3})
	require.Error(t, err)
	require.Equal(t, 0, g.Encounter.OffenseShips, "a rejected commit moves nothing")

	require.NoError(t, e.launchCommit(g, bus, "p1", Action{Type: ActionLaunchCommit, Ships: 2}))
	require.Equal(t, 2, g.Encounter.OffenseShips)
}
