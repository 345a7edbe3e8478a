package move

import (
	"math/rand"

	"hpfold/internal/lattice"
)

// EndMove swings a chain end to a random free cell around its only neighbor.
func EndMove(l *lattice.Lattice, i int, rng *rand.Rand) Move {
	neighbors := l.Chain().Neighbors(i)
	if len(neighbors) != 1 {
		return invalid(End, i)
	}
	free := l.EmptyNeighbors(l.MustPosition(neighbors[0]))
	if len(free) == 0 {
		return invalid(End, i)
	}
	target := free[rng.Intn(len(free))]
	return Move{Kind: End, Residues: []int{i}, Targets: []lattice.Point{target}, Valid: true}
}

// CornerMove flips a corner residue to the opposite cell of the square formed
// with its two chain neighbors.
func CornerMove(l *lattice.Lattice, i int) Move {
	if len(l.Chain().Neighbors(i)) != 2 || !l.IsCorner(i) {
		return invalid(Corner, i)
	}
	a := l.MustPosition(i - 1)
	b := l.MustPosition(i + 1)
	target := a.Add(b).Sub(l.MustPosition(i))
	if !l.IsEmpty(target) {
		return invalid(Corner, i)
	}
	return Move{Kind: Corner, Residues: []int{i}, Targets: []lattice.Point{target}, Valid: true}
}

// CrankshaftMove rotates the bottom of a U-shaped fragment around the axis
// through its two corners. Residue i and the residue two positions further
// along move together.
func CrankshaftMove(l *lattice.Lattice, i int) Move {
	chain := l.Chain()
	if len(chain.Neighbors(i)) != 2 {
		return invalid(Crankshaft, i)
	}
	branches := [2][3]int{
		{i - 1, i + 2, i + 1},
		{i + 1, i - 2, i - 1},
	}
	for _, br := range branches {
		cornerA, cornerB, other := br[0], br[1], br[2]
		if !chain.Has(cornerA) || !chain.Has(cornerB) {
			continue
		}
		if !l.IsCorner(cornerA) || !l.IsCorner(cornerB) {
			continue
		}
		pa, pb := l.MustPosition(cornerA), l.MustPosition(cornerB)
		if !l.AreNeighbors(pa, pb) {
			continue
		}
		targetI := l.MustPosition(i).Reflect(pa)
		targetOther := l.MustPosition(other).Reflect(pb)
		if l.IsEmpty(targetI) && l.IsEmpty(targetOther) {
			return Move{
				Kind:     Crankshaft,
				Residues: []int{i, other},
				Targets:  []lattice.Point{targetI, targetOther},
				Valid:    true,
			}
		}
	}
	return invalid(Crankshaft, i)
}

// PullMove moves residue i next to one chain neighbor (the anchor) and drags
// the rest of the chain on the opposite side along until it is connected
// again. Every anchor/side combination is tried and one valid option is drawn
// uniformly.
func PullMove(l *lattice.Lattice, i int, rng *rand.Rand) Move {
	chain := l.Chain()
	if len(chain.Neighbors(i)) != 2 {
		return invalid(Pull, i)
	}
	pi := l.MustPosition(i)

	var options []Move
	for _, s := range [2]int{1, -1} {
		pa := l.MustPosition(i + s)
		sideA, sideB := pa.Sub(pi).Orthogonal()
		for _, side := range [2]lattice.Point{sideA, sideB} {
			far := pa.Add(side)
			near := pi.Add(side)
			if !l.IsEmpty(far) || !l.IsEmpty(near) {
				continue
			}
			m := Move{
				Kind:     Pull,
				Residues: []int{i, i - s},
				Targets:  []lattice.Point{far, near},
				Valid:    true,
			}
			last := near
			for k := i - 2*s; chain.Has(k); k -= s {
				pk := l.MustPosition(k)
				if pk.Adjacent(last) {
					break
				}
				last = l.MustPosition(k + 2*s)
				m.Residues = append(m.Residues, k)
				m.Targets = append(m.Targets, last)
			}
			options = append(options, m)
		}
	}
	if len(options) == 0 {
		return invalid(Pull, i)
	}
	return options[rng.Intn(len(options))]
}
