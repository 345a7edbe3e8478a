package lattice

import (
	"fmt"
	"math/rand"
)

// fillLinear lays the chain along one row, centered in the grid.
func (l *Lattice) fillLinear() {
	n := l.chain.Len()
	row := l.size / 2
	col := l.size/2 - n/2
	for i := 0; i < n; i++ {
		l.Place(i, Point{Row: row, Col: col + i})
	}
}

type walkFrame struct {
	pos   Point
	tried []Point
}

func (f *walkFrame) hasTried(p Point) bool {
	for _, q := range f.tried {
		if q == p {
			return true
		}
	}
	return false
}

// fillRandom grows a self-avoiding walk from the grid center. Frames record
// the cells already tried from their position, so a dead end is never entered
// twice from the same parent.
func (l *Lattice) fillRandom(rng *rand.Rand, maxBacktracks int) error {
	n := l.chain.Len()
	center := Point{Row: l.size / 2, Col: l.size / 2}
	l.Place(0, center)

	stack := make([]walkFrame, 1, n)
	stack[0] = walkFrame{pos: center}
	backtracks := 0
	candidates := make([]Point, 0, len(directions))
	for len(stack) < n {
		top := &stack[len(stack)-1]
		candidates = candidates[:0]
		for _, q := range l.EmptyNeighbors(top.pos) {
			if !top.hasTried(q) {
				candidates = append(candidates, q)
			}
		}

		if len(candidates) == 0 {
			if len(stack) == 1 || backtracks >= maxBacktracks {
				l.clear()
				return fmt.Errorf("random walk of %d residues on %dx%d grid after %d backtracks: %w", n, l.size, l.size, backtracks, ErrNoConformation)
			}
			backtracks++
			l.Remove(top.pos)
			stack = stack[:len(stack)-1]
			continue
		}

		next := candidates[rng.Intn(len(candidates))]
		top.tried = append(top.tried, next)
		l.Place(len(stack), next)
		stack = append(stack, walkFrame{pos: next})
	}
	return nil
}

func (l *Lattice) clear() {
	for i := range l.cells {
		l.cells[i] = 0
	}
	for i := range l.placed {
		l.placed[i] = false
	}
}
