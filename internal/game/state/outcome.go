package state

import "fmt"

// Side distinguishes the two main-player roles in an encounter.
type Side int

const (
	SideOffense Side = iota
	SideDefense
)

func (s Side) String() string {
	if s == SideOffense {
		return "OFFENSE"
	}
	return "DEFENSE"
}

// Outcome is the result of comparing the two revealed encounter cards.
// It is a closed sum: the resolver returns exactly one variant and the
// resolution phase switches over all of them exhaustively.
type Outcome interface {
	outcome()
	fmt.Stringer
}

// OffenseWins is an attack-vs-attack result in the offense's favor.
type OffenseWins struct{}

func (OffenseWins) outcome()       {}
func (OffenseWins) String() string { return "OFFENSE_WINS" }

// DefenseWins is an attack-vs-attack result in the defense's favor,
// including ties.
type DefenseWins struct{}

func (DefenseWins) outcome()       {}
func (DefenseWins) String() string { return "DEFENSE_WINS" }

// AttackVsNegotiate is an attack card beating a negotiate card. The loser is
// owed compensation: one card per ship they lost.
type AttackVsNegotiate struct {
	Winner            Side
	CompensationShips int
}

func (AttackVsNegotiate) outcome()       {}
func (AttackVsNegotiate) String() string { return "ATTACK_VS_NEGOTIATE" }

// DealMaking means both main players revealed negotiate cards and must now
// agree on a deal before the deadline.
type DealMaking struct{}

func (DealMaking) outcome()       {}
func (DealMaking) String() string { return "DEAL_MAKING" }

// DealSuccess records an accepted deal.
type DealSuccess struct{}

func (DealSuccess) outcome()       {}
func (DealSuccess) String() string { return "DEAL_SUCCESS" }

// DealFailed records a rejected or timed-out deal; both main players lose
// three ships to the warp.
type DealFailed struct{}

func (DealFailed) outcome()       {}
func (DealFailed) String() string { return "DEAL_FAILED" }
