package export

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"hpfold/internal/model"
)

func square() model.Conformation {
	return model.Conformation{
		RunID:     "run-1",
		Sequence:  "HPPH",
		GridSize:  8,
		Energy:    -1,
		Positions: []model.Position{{Row: 4, Col: 3}, {Row: 4, Col: 4}, {Row: 5, Col: 4}, {Row: 5, Col: 3}},
	}
}

func TestWritePDBLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDB(&buf, square()); err != nil {
		t.Fatalf("write pdb: %v", err)
	}

	var atoms []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "ATOM") {
			atoms = append(atoms, line)
		}
	}
	if len(atoms) != 4 {
		t.Fatalf("expected 4 atom records, got %d:\n%s", len(atoms), buf.String())
	}
	for _, line := range atoms {
		if len(line) != 78 {
			t.Fatalf("atom record must be 78 columns, got %d: %q", len(line), line)
		}
		if line[12:16] != " CA " || line[21] != 'A' {
			t.Fatalf("unexpected atom name or chain: %q", line)
		}
	}

	coord := func(line string, lo, hi int) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(line[lo:hi]), 64)
		if err != nil {
			t.Fatalf("parse coordinate %q: %v", line[lo:hi], err)
		}
		return v
	}
	if coord(atoms[0], 30, 38) != 0 || coord(atoms[0], 38, 46) != 0 {
		t.Fatalf("first residue must sit at the origin: %q", atoms[0])
	}
	if coord(atoms[1], 30, 38) != BondLength {
		t.Fatalf("unexpected x for residue 2: %q", atoms[1])
	}
	if coord(atoms[2], 38, 46) != -BondLength {
		t.Fatalf("unexpected y for residue 3: %q", atoms[2])
	}
	if atoms[0][17:20] != "LEU" || atoms[1][17:20] != "SER" {
		t.Fatalf("unexpected residue names: %q %q", atoms[0][17:20], atoms[1][17:20])
	}
	if coord(atoms[0], 60, 66) != 1 || coord(atoms[1], 60, 66) != 0 {
		t.Fatalf("hydrophobicity must be stored in the temperature factor")
	}

	out := buf.String()
	if !strings.Contains(out, "CONECT    3    4\n") || !strings.HasSuffix(out, "END\n") {
		t.Fatalf("missing connectivity or end record:\n%s", out)
	}
	if !strings.Contains(out, "HP ENERGY -1") {
		t.Fatalf("missing energy remark:\n%s", out)
	}
}

func TestWritePDBRejectsMismatchedConformation(t *testing.T) {
	conf := square()
	conf.Positions = conf.Positions[:3]
	if err := WritePDB(&bytes.Buffer{}, conf); err == nil {
		t.Fatal("expected length mismatch error")
	}
	if err := WritePDB(&bytes.Buffer{}, model.Conformation{}); err == nil {
		t.Fatal("expected empty conformation error")
	}
	conf = square()
	conf.Sequence = "HPXH"
	if err := WritePDB(&bytes.Buffer{}, conf); err == nil {
		t.Fatal("expected unknown residue error")
	}
}
