package powers

import "github.com/cosmicgames/cosmic-server-go/internal/game/cards"

// registerAll binds every power id to its hooks. NewRegistry verifies this
// table against the catalog one to one.
func (r *Registry) registerAll() {
	for id, h := range map[cards.PowerID]*Hooks{
		Amoeba:         &amoebaHooks,
		AntiMatter:     &antiMatterHooks,
		Chosen:         &chosenHooks,
		Chrysalis:      &chrysalisHooks,
		Citadel:        &citadelHooks,
		Clone:          &cloneHooks,
		Cudgel:         &cudgelHooks,
		Dictator:       &dictatorHooks,
		Ethic:          &ethicHooks,
		Fido:           &fidoHooks,
		Filch:          &filchHooks,
		Fodder:         &fodderHooks,
		Fury:           &furyHooks,
		Gambler:        &gamblerHooks,
		Grudge:         &grudgeHooks,
		Hacker:         &hackerHooks,
		Hate:           &hateHooks,
		Healer:         &healerHooks,
		Human:          &humanHooks,
		Kamikaze:       &kamikazeHooks,
		Loser:          &loserHooks,
		Macron:         &macronHooks,
		Mind:           &mindHooks,
		Mirror:         &mirrorHooks,
		Miser:          &miserHooks,
		Mutant:         &mutantHooks,
		Observer:       &observerHooks,
		Oracle:         &oracleHooks,
		Pacifist:       &pacifistHooks,
		Parasite:       &parasiteHooks,
		Pentaform:      &pentaformHooks,
		Philanthropist: &philanthropistHooks,
		Pickpocket:     &pickpocketHooks,
		Reincarnator:   &reincarnatorHooks,
		Remora:         &remoraHooks,
		Reserve:        &reserveHooks,
		Seeker:         &seekerHooks,
		Shadow:         &shadowHooks,
		Sorcerer:       &sorcererHooks,
		Spiff:          &spiffHooks,
		TickTock:       &tickTockHooks,
		Trader:         &traderHooks,
		Tripler:        &triplerHooks,
		Vacuum:         &vacuumHooks,
		Virus:          &virusHooks,
		Void:           &voidHooks,
		Warpish:        &warpishHooks,
		Warrior:        &warriorHooks,
		Will:           &willHooks,
		Zombie:         &zombieHooks,
	} {
		r.register(id, h)
	}
}
