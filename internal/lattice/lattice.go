package lattice

import (
	"errors"
	"fmt"
	"math/rand"

	"hpfold/internal/protein"
)

type Mode string

const (
	ModeLinear Mode = "linear"
	ModeRandom Mode = "random"
)

const (
	minSize              = 3
	defaultMaxBacktracks = 1 << 20
)

var ErrNoConformation = errors.New("no self-avoiding conformation found")

func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModeLinear:
		return ModeLinear, nil
	case ModeRandom:
		return ModeRandom, nil
	default:
		return "", fmt.Errorf("unsupported placement mode: %s", name)
	}
}

type Config struct {
	Mode Mode
	// Size is the grid side length; zero selects twice the chain length.
	Size int
	// Rand drives the random walk fill and is required for ModeRandom.
	Rand *rand.Rand
	// MaxBacktracks bounds the random walk; zero selects a large default.
	MaxBacktracks int
}

// Lattice is a square grid holding one chain. Cells store residue index+1 so
// that the zero value marks an empty cell.
type Lattice struct {
	chain     *protein.Chain
	size      int
	cells     []int
	positions []Point
	placed    []bool
}

// New creates a lattice for chain and fills it according to cfg.Mode.
func New(chain *protein.Chain, cfg Config) (*Lattice, error) {
	if chain == nil {
		return nil, fmt.Errorf("chain is required")
	}
	size := cfg.Size
	if size <= 0 {
		size = 2 * chain.Len()
	}
	if size < minSize {
		size = minSize
	}
	l := NewEmpty(chain, size)

	switch cfg.Mode {
	case "", ModeLinear:
		if size < chain.Len() {
			return nil, fmt.Errorf("linear placement of %d residues on %dx%d grid: %w", chain.Len(), size, size, ErrNoConformation)
		}
		l.fillLinear()
	case ModeRandom:
		if cfg.Rand == nil {
			return nil, fmt.Errorf("random placement requires a random source")
		}
		if size*size < chain.Len() {
			return nil, fmt.Errorf("random placement of %d residues on %dx%d grid: %w", chain.Len(), size, size, ErrNoConformation)
		}
		maxBacktracks := cfg.MaxBacktracks
		if maxBacktracks <= 0 {
			maxBacktracks = defaultMaxBacktracks
		}
		if err := l.fillRandom(cfg.Rand, maxBacktracks); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported placement mode: %s", cfg.Mode)
	}
	return l, nil
}

// NewEmpty returns a lattice with no residue placed.
func NewEmpty(chain *protein.Chain, size int) *Lattice {
	return &Lattice{
		chain:     chain,
		size:      size,
		cells:     make([]int, size*size),
		positions: make([]Point, chain.Len()),
		placed:    make([]bool, chain.Len()),
	}
}

// FromPositions rebuilds a lattice from a stored conformation.
func FromPositions(chain *protein.Chain, size int, positions []Point) (*Lattice, error) {
	if len(positions) != chain.Len() {
		return nil, fmt.Errorf("conformation mismatch: got=%d positions want=%d", len(positions), chain.Len())
	}
	if size <= 0 {
		size = 2 * chain.Len()
	}
	if size < minSize {
		size = minSize
	}
	l := NewEmpty(chain, size)
	if err := l.Restore(positions); err != nil {
		return nil, err
	}
	if !l.IsValid() {
		return nil, fmt.Errorf("conformation is not a connected self-avoiding walk")
	}
	return l, nil
}

func (l *Lattice) Chain() *protein.Chain {
	return l.chain
}

func (l *Lattice) Size() int {
	return l.size
}

func (l *Lattice) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < l.size && p.Col >= 0 && p.Col < l.size
}

// IsEmpty reports whether p is inside the grid and unoccupied.
func (l *Lattice) IsEmpty(p Point) bool {
	return l.InBounds(p) && l.cells[l.offset(p)] == 0
}

// Residue returns the index of the residue occupying p.
func (l *Lattice) Residue(p Point) (int, bool) {
	if !l.InBounds(p) {
		return 0, false
	}
	v := l.cells[l.offset(p)]
	return v - 1, v != 0
}

// Position returns the cell of residue i and whether it is placed.
func (l *Lattice) Position(i int) (Point, bool) {
	l.mustIndex(i)
	return l.positions[i], l.placed[i]
}

// MustPosition returns the cell of a placed residue.
func (l *Lattice) MustPosition(i int) Point {
	p, ok := l.Position(i)
	if !ok {
		panic(fmt.Sprintf("lattice: residue %d is not placed", i))
	}
	return p
}

// Place puts residue i into the empty cell p.
func (l *Lattice) Place(i int, p Point) {
	l.mustIndex(i)
	if !l.InBounds(p) {
		panic(fmt.Sprintf("lattice: cell %s outside %dx%d grid", p, l.size, l.size))
	}
	if l.placed[i] {
		panic(fmt.Sprintf("lattice: residue %d already placed at %s", i, l.positions[i]))
	}
	off := l.offset(p)
	if l.cells[off] != 0 {
		panic(fmt.Sprintf("lattice: cell %s already holds residue %d", p, l.cells[off]-1))
	}
	l.cells[off] = i + 1
	l.positions[i] = p
	l.placed[i] = true
}

// Remove clears cell p. Removing an empty cell is a no-op.
func (l *Lattice) Remove(p Point) {
	if !l.InBounds(p) {
		return
	}
	off := l.offset(p)
	if v := l.cells[off]; v != 0 {
		l.placed[v-1] = false
		l.cells[off] = 0
	}
}

// Move relocates residue i to p.
func (l *Lattice) Move(i int, p Point) {
	l.Remove(l.MustPosition(i))
	l.Place(i, p)
}

// Neighbors returns the orthogonal neighbors of p inside the grid.
func (l *Lattice) Neighbors(p Point) []Point {
	out := make([]Point, 0, len(directions))
	for _, d := range directions {
		q := p.Add(d)
		if l.InBounds(q) {
			out = append(out, q)
		}
	}
	return out
}

func (l *Lattice) EmptyNeighbors(p Point) []Point {
	out := make([]Point, 0, len(directions))
	for _, d := range directions {
		q := p.Add(d)
		if l.IsEmpty(q) {
			out = append(out, q)
		}
	}
	return out
}

// OccupiedNeighbors returns the indices of the residues adjacent to p.
func (l *Lattice) OccupiedNeighbors(p Point) []int {
	out := make([]int, 0, len(directions))
	for _, d := range directions {
		if j, ok := l.Residue(p.Add(d)); ok {
			out = append(out, j)
		}
	}
	return out
}

func (l *Lattice) AreNeighbors(a, b Point) bool {
	return l.InBounds(a) && l.InBounds(b) && a.Adjacent(b)
}

// IsCorner reports whether residue i sits on an L-shaped bend of the chain.
func (l *Lattice) IsCorner(i int) bool {
	l.mustIndex(i)
	if i == 0 || i == l.chain.Len()-1 {
		return false
	}
	a, okA := l.Position(i - 1)
	b, okB := l.Position(i + 1)
	if !okA || !okB {
		return false
	}
	return abs(a.Row-b.Row) == 1 && abs(a.Col-b.Col) == 1
}

// IsValid reports whether every residue is placed and consecutive residues
// occupy adjacent cells.
func (l *Lattice) IsValid() bool {
	for i := range l.placed {
		if !l.placed[i] {
			return false
		}
		if i > 0 && !l.positions[i-1].Adjacent(l.positions[i]) {
			return false
		}
	}
	return true
}

// Positions returns a copy of every residue position in chain order.
func (l *Lattice) Positions() []Point {
	return append([]Point(nil), l.positions...)
}

// Restore clears the grid and places every residue at positions[i].
func (l *Lattice) Restore(positions []Point) error {
	if len(positions) != len(l.positions) {
		return fmt.Errorf("conformation mismatch: got=%d positions want=%d", len(positions), len(l.positions))
	}
	l.clear()
	for i, p := range positions {
		if !l.InBounds(p) {
			return fmt.Errorf("residue %d at %s outside %dx%d grid", i, p, l.size, l.size)
		}
		if j, ok := l.Residue(p); ok {
			return fmt.Errorf("residue %d collides with residue %d at %s", i, j, p)
		}
		l.Place(i, p)
	}
	return nil
}

func (l *Lattice) Clone() *Lattice {
	return &Lattice{
		chain:     l.chain,
		size:      l.size,
		cells:     append([]int(nil), l.cells...),
		positions: append([]Point(nil), l.positions...),
		placed:    append([]bool(nil), l.placed...),
	}
}

// Bounds returns the bounding box of the placed residues.
func (l *Lattice) Bounds() (minP, maxP Point, ok bool) {
	for i, p := range l.positions {
		if !l.placed[i] {
			continue
		}
		if !ok {
			minP, maxP, ok = p, p, true
			continue
		}
		minP.Row = min(minP.Row, p.Row)
		minP.Col = min(minP.Col, p.Col)
		maxP.Row = max(maxP.Row, p.Row)
		maxP.Col = max(maxP.Col, p.Col)
	}
	return minP, maxP, ok
}

func (l *Lattice) offset(p Point) int {
	return p.Row*l.size + p.Col
}

func (l *Lattice) mustIndex(i int) {
	if i < 0 || i >= len(l.positions) {
		panic(fmt.Sprintf("lattice: residue index %d out of range [0,%d)", i, len(l.positions)))
	}
}
