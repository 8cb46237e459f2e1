package cards

import (
	"math/rand"
	"testing"
)

func TestLoadComposition(t *testing.T) {
	c, err := LoadComposition()
	if err != nil {
		t.Fatalf("LoadComposition: %v", err)
	}
	if c.Negotiate != 15 || c.Morph != 1 || c.FlareCount != 10 {
		t.Fatalf("unexpected composition: negotiate=%d morph=%d flares=%d",
			c.Negotiate, c.Morph, c.FlareCount)
	}

	rules, err := c.ArtifactRules()
	if err != nil {
		t.Fatalf("ArtifactRules: %v", err)
	}
	if !rules[ArtifactPlague].MainOnly {
		t.Fatalf("plague should be restricted to main players")
	}
	if rules[ArtifactMobiusTubes].MainOnly {
		t.Fatalf("mobius tubes should be playable by anyone")
	}
}

func TestBuildCosmicDeckCounts(t *testing.T) {
	c, err := LoadComposition()
	if err != nil {
		t.Fatalf("LoadComposition: %v", err)
	}
	rng := rand.New(rand.NewSource(42))
	chosen := []PowerID{"ZOMBIE", "VIRUS", "MACRON", "LOSER"}
	unused := []PowerID{"ORACLE", "MIND", "CLONE", "TRADER", "FILCH", "REMORA", "HUMAN", "VOID"}

	all, pile, err := c.BuildCosmicDeck(chosen, unused, rng)
	if err != nil {
		t.Fatalf("BuildCosmicDeck: %v", err)
	}
	if len(all) != pile.Size() {
		t.Fatalf("card map size %d != pile size %d", len(all), pile.Size())
	}

	byType := map[Type]int{}
	flares := map[PowerID]bool{}
	for _, card := range all {
		byType[card.Type]++
		if card.Type == TypeFlare {
			flares[card.Flare] = true
		}
	}
	if byType[TypeNegotiate] != 15 {
		t.Fatalf("negotiate count = %d, want 15", byType[TypeNegotiate])
	}
	if byType[TypeMorph] != 1 {
		t.Fatalf("morph count = %d, want 1", byType[TypeMorph])
	}
	if byType[TypeReinforcement] != 7 {
		t.Fatalf("reinforcement count = %d, want 7", byType[TypeReinforcement])
	}
	if byType[TypeArtifact] != 10 {
		t.Fatalf("artifact count = %d, want 10", byType[TypeArtifact])
	}
	if byType[TypeFlare] != 10 {
		t.Fatalf("flare count = %d, want 10", byType[TypeFlare])
	}
	for _, p := range chosen {
		if !flares[p] {
			t.Fatalf("missing flare for chosen power %s", p)
		}
	}
}

func TestBuildDestinyDeckCounts(t *testing.T) {
	c, err := LoadComposition()
	if err != nil {
		t.Fatalf("LoadComposition: %v", err)
	}

	for players, wantSpecial := range map[int]int{2: 1, 3: 1, 4: 2, 5: 2} {
		colors := AllColors[:players]
		all, pile, err := c.BuildDestinyDeck(colors, rand.New(rand.NewSource(3)))
		if err != nil {
			t.Fatalf("%d players: BuildDestinyDeck: %v", players, err)
		}
		want := players*2 + 2 + wantSpecial
		if pile.Size() != want {
			t.Fatalf("%d players: deck size = %d, want %d", players, pile.Size(), want)
		}

		hazards := 0
		for _, card := range all {
			if card.Hazard {
				hazards++
			}
		}
		if hazards != players {
			t.Fatalf("%d players: hazard count = %d, want one per color", players, hazards)
		}
	}
}
