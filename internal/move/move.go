package move

import (
	"fmt"
	"math/rand"

	"hpfold/internal/lattice"
)

// Kind tags the VSHD move variants.
type Kind int

const (
	End Kind = iota
	Corner
	Crankshaft
	Pull
)

var kindNames = [...]string{
	End:        "end",
	Corner:     "corner",
	Crankshaft: "crankshaft",
	Pull:       "pull",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists every move kind in a stable order.
func Kinds() []Kind {
	return []Kind{End, Corner, Crankshaft, Pull}
}

// Move is a candidate repositioning. Residues and Targets are parallel and
// are applied in order, each target being empty when its residue moves.
type Move struct {
	Kind     Kind
	Residues []int
	Targets  []lattice.Point
	Valid    bool
}

func invalid(kind Kind, residue int) Move {
	return Move{Kind: kind, Residues: []int{residue}}
}

func (m Move) String() string {
	if !m.Valid {
		return fmt.Sprintf("%s move of %v (invalid)", m.Kind, m.Residues)
	}
	return fmt.Sprintf("%s move of %v to %v", m.Kind, m.Residues, m.Targets)
}

// Generate computes a move of the given kind for residue i without touching
// the lattice.
func Generate(kind Kind, l *lattice.Lattice, i int, rng *rand.Rand) Move {
	switch kind {
	case End:
		return EndMove(l, i, rng)
	case Corner:
		return CornerMove(l, i)
	case Crankshaft:
		return CrankshaftMove(l, i)
	case Pull:
		return PullMove(l, i, rng)
	default:
		panic(fmt.Sprintf("move: unknown kind %d", int(kind)))
	}
}

// Candidates returns the valid moves available to residue i: an end move for
// chain ends, otherwise a pull move plus corner and crankshaft moves when the
// residue sits on a corner.
func Candidates(l *lattice.Lattice, i int, rng *rand.Rand) []Move {
	var kinds []Kind
	if l.Chain().IsEnd(i) {
		kinds = []Kind{End}
	} else if l.IsCorner(i) {
		kinds = []Kind{Corner, Crankshaft, Pull}
	} else {
		kinds = []Kind{Pull}
	}

	out := make([]Move, 0, len(kinds))
	for _, kind := range kinds {
		if m := Generate(kind, l, i, rng); m.Valid {
			out = append(out, m)
		}
	}
	return out
}

// Apply performs m in place and returns the exact energy change together with
// the previous positions needed by Revert.
func Apply(l *lattice.Lattice, m Move) (int, []lattice.Point) {
	if !m.Valid {
		panic(fmt.Sprintf("move: applying invalid %s move", m.Kind))
	}
	previous := make([]lattice.Point, len(m.Residues))
	delta := 0
	for k, residue := range m.Residues {
		previous[k] = l.MustPosition(residue)
		delta += l.EnergyDelta(residue, m.Targets[k])
		l.Move(residue, m.Targets[k])
	}
	return delta, previous
}

// Revert undoes Apply by replaying the moves backwards.
func Revert(l *lattice.Lattice, m Move, previous []lattice.Point) {
	for k := len(m.Residues) - 1; k >= 0; k-- {
		l.Move(m.Residues[k], previous[k])
	}
}
