// Package export writes folded conformations in formats other tools read.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"hpfold/internal/model"
)

// BondLength is the C-alpha spacing in angstroms used for one lattice unit.
const BondLength = 3.8

const (
	hydrophobicResidue = "LEU"
	polarResidue       = "SER"
	chainID            = 'A'
)

// WritePDB writes the conformation as a C-alpha trace in the z=0 plane. The
// first residue sits at the origin, columns grow along x and rows grow along
// -y so the picture matches the terminal rendering. Hydrophobic residues carry
// a temperature factor of 1.00 and polar ones 0.00.
func WritePDB(w io.Writer, conf model.Conformation) error {
	seq := strings.ToUpper(conf.Sequence)
	if len(seq) == 0 {
		return fmt.Errorf("conformation has no sequence")
	}
	if len(seq) != len(conf.Positions) {
		return fmt.Errorf("sequence length %d does not match %d positions", len(seq), len(conf.Positions))
	}
	if len(seq) > 9999 {
		return fmt.Errorf("chain of %d residues exceeds the pdb residue numbering", len(seq))
	}

	bw := bufio.NewWriter(w)
	if conf.RunID != "" {
		fmt.Fprintf(bw, "REMARK   1 RUN %s\n", conf.RunID)
	}
	fmt.Fprintf(bw, "REMARK   2 HP ENERGY %d\n", conf.Energy)

	origin := conf.Positions[0]
	for i, pos := range conf.Positions {
		name, factor := polarResidue, 0.0
		switch seq[i] {
		case 'H':
			name, factor = hydrophobicResidue, 1.0
		case 'P':
		default:
			return fmt.Errorf("residue %d: unknown kind %q", i, seq[i])
		}
		x := float64(pos.Col-origin.Col) * BondLength
		y := float64(origin.Row-pos.Row) * BondLength
		fmt.Fprintf(bw, "ATOM  %5d  CA  %3s %c%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s\n",
			i+1, name, chainID, i+1, x, y, 0.0, 1.0, factor, "C")
	}
	n := len(conf.Positions)
	fmt.Fprintf(bw, "TER   %5d      %3s %c%4d\n", n+1, residueName(seq[n-1]), chainID, n)
	for i := 1; i < n; i++ {
		fmt.Fprintf(bw, "CONECT%5d%5d\n", i, i+1)
	}
	fmt.Fprintln(bw, "END")
	return bw.Flush()
}

func WritePDBFile(path string, conf model.Conformation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDB(f, conf); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func residueName(kind byte) string {
	if kind == 'H' {
		return hydrophobicResidue
	}
	return polarResidue
}
