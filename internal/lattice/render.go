package lattice

import (
	"bufio"
	"io"
	"strings"
)

// Render draws the chain cropped to its bounding box with a one cell margin.
// Residues print as their HP letter, bonds as '-' and '|'.
func (l *Lattice) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	minP, maxP, ok := l.Bounds()
	if !ok {
		_, err := bw.WriteString("(empty lattice)\n")
		if err != nil {
			return err
		}
		return bw.Flush()
	}
	minP = minP.Sub(Point{Row: 1, Col: 1})
	maxP = maxP.Add(Point{Row: 1, Col: 1})
	width := 2*(maxP.Col-minP.Col) + 1

	border := "+" + strings.Repeat("-", width+2) + "+\n"
	bw.WriteString(border)
	for r := minP.Row; r <= maxP.Row; r++ {
		var cells, bonds strings.Builder
		for c := minP.Col; c <= maxP.Col; c++ {
			p := Point{Row: r, Col: c}
			i, occupied := l.Residue(p)
			if occupied {
				cells.WriteByte(byte(l.chain.Residue(i).Kind))
			} else {
				cells.WriteByte(' ')
			}
			if c < maxP.Col {
				if occupied && l.bonded(i, p.Add(Point{Col: 1})) {
					cells.WriteByte('-')
				} else {
					cells.WriteByte(' ')
				}
			}
			if occupied && l.bonded(i, p.Add(Point{Row: 1})) {
				bonds.WriteByte('|')
			} else {
				bonds.WriteByte(' ')
			}
			if c < maxP.Col {
				bonds.WriteByte(' ')
			}
		}
		bw.WriteString("| " + cells.String() + " |\n")
		if r < maxP.Row {
			bw.WriteString("| " + bonds.String() + " |\n")
		}
	}
	bw.WriteString(border)
	return bw.Flush()
}

func (l *Lattice) bonded(i int, q Point) bool {
	j, ok := l.Residue(q)
	return ok && l.chain.AreConsecutive(i, j)
}
