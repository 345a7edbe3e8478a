package protein

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptySequence  = errors.New("sequence is empty")
	ErrInvalidResidue = errors.New("invalid residue")
)

// Kind classifies a residue under the HP model.
type Kind byte

const (
	Hydrophobic Kind = 'H'
	Polar       Kind = 'P'
)

func (k Kind) String() string {
	return string(k)
}

// Residue is a chain element. Its position is owned by the lattice it sits on.
type Residue struct {
	Index int
	Kind  Kind
}

func (r Residue) IsHydrophobic() bool {
	return r.Kind == Hydrophobic
}

// Chain is an immutable HP sequence. It is safe to share between lattices.
type Chain struct {
	residues    []Residue
	hydrophobic []int
}

// NewChain builds a chain from a literal H/P string. Letters are case
// insensitive and whitespace is ignored.
func NewChain(sequence string) (*Chain, error) {
	kinds := make([]Kind, 0, len(sequence))
	for pos, r := range sequence {
		switch {
		case r == 'H' || r == 'h':
			kinds = append(kinds, Hydrophobic)
		case r == 'P' || r == 'p':
			kinds = append(kinds, Polar)
		case isSpace(r):
		default:
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidResidue, r, pos)
		}
	}
	return fromKinds(kinds)
}

func fromKinds(kinds []Kind) (*Chain, error) {
	if len(kinds) == 0 {
		return nil, ErrEmptySequence
	}
	c := &Chain{residues: make([]Residue, len(kinds))}
	for i, kind := range kinds {
		c.residues[i] = Residue{Index: i, Kind: kind}
		if kind == Hydrophobic {
			c.hydrophobic = append(c.hydrophobic, i)
		}
	}
	return c, nil
}

func (c *Chain) Len() int {
	return len(c.residues)
}

// Residue returns residue i. An index outside [0, Len()) is a programming
// error and panics.
func (c *Chain) Residue(i int) Residue {
	c.mustIndex(i)
	return c.residues[i]
}

func (c *Chain) Has(i int) bool {
	return i >= 0 && i < len(c.residues)
}

func (c *Chain) Residues() []Residue {
	return append([]Residue(nil), c.residues...)
}

// Hydrophobic returns the indices of the H residues in chain order.
func (c *Chain) Hydrophobic() []int {
	return append([]int(nil), c.hydrophobic...)
}

func (c *Chain) IsHydrophobic(i int) bool {
	c.mustIndex(i)
	return c.residues[i].Kind == Hydrophobic
}

// Neighbors returns the chain neighbors of residue i: one at the ends, two
// inside the chain and none for a single-residue chain.
func (c *Chain) Neighbors(i int) []int {
	c.mustIndex(i)
	out := make([]int, 0, 2)
	if i > 0 {
		out = append(out, i-1)
	}
	if i < len(c.residues)-1 {
		out = append(out, i+1)
	}
	return out
}

func (c *Chain) IsEnd(i int) bool {
	c.mustIndex(i)
	return i == 0 || i == len(c.residues)-1
}

func (c *Chain) AreConsecutive(i, j int) bool {
	return i-j == 1 || j-i == 1
}

func (c *Chain) String() string {
	var b strings.Builder
	b.Grow(len(c.residues))
	for _, r := range c.residues {
		b.WriteByte(byte(r.Kind))
	}
	return b.String()
}

func (c *Chain) mustIndex(i int) {
	if i < 0 || i >= len(c.residues) {
		panic(fmt.Sprintf("protein: residue index %d out of range [0,%d)", i, len(c.residues)))
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
