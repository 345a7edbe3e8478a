package lattice

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"hpfold/internal/protein"
)

const benchmarkSequence = "PHPPHPHPHPPHPPHPPHPHPPHPPHPHPPHP"

func mustChain(t *testing.T, seq string) *protein.Chain {
	t.Helper()
	c, err := protein.NewChain(seq)
	if err != nil {
		t.Fatalf("new chain %q: %v", seq, err)
	}
	return c
}

func assertConsistent(t *testing.T, l *Lattice) {
	t.Helper()
	for i := 0; i < l.Chain().Len(); i++ {
		p, ok := l.Position(i)
		if !ok {
			continue
		}
		j, occupied := l.Residue(p)
		if !occupied || j != i {
			t.Fatalf("residue %d records %s but cell holds %d (occupied=%v)", i, p, j, occupied)
		}
	}
	count := 0
	for r := 0; r < l.Size(); r++ {
		for c := 0; c < l.Size(); c++ {
			j, ok := l.Residue(Point{Row: r, Col: c})
			if !ok {
				continue
			}
			count++
			if p, placed := l.Position(j); !placed || p != (Point{Row: r, Col: c}) {
				t.Fatalf("cell (%d,%d) holds residue %d positioned at %s (placed=%v)", r, c, j, p, placed)
			}
		}
	}
	placed := 0
	for i := 0; i < l.Chain().Len(); i++ {
		if _, ok := l.Position(i); ok {
			placed++
		}
	}
	if count != placed {
		t.Fatalf("occupied cells=%d placed residues=%d", count, placed)
	}
}

func TestPlaceRemoveMoveKeepOccupancyConsistent(t *testing.T) {
	l := NewEmpty(mustChain(t, "HPH"), 6)
	l.Place(0, Point{Row: 2, Col: 2})
	assertConsistent(t, l)
	l.Place(1, Point{Row: 2, Col: 3})
	assertConsistent(t, l)
	l.Place(2, Point{Row: 3, Col: 3})
	assertConsistent(t, l)

	l.Move(2, Point{Row: 1, Col: 3})
	assertConsistent(t, l)
	if !l.IsEmpty(Point{Row: 3, Col: 3}) {
		t.Fatal("expected previous cell to be empty after move")
	}
	if p := l.MustPosition(2); p != (Point{Row: 1, Col: 3}) {
		t.Fatalf("unexpected position after move: %s", p)
	}

	l.Remove(Point{Row: 2, Col: 3})
	assertConsistent(t, l)
	if _, ok := l.Position(1); ok {
		t.Fatal("expected removed residue to be unplaced")
	}
	if l.IsValid() {
		t.Fatal("expected lattice with an unplaced residue to be invalid")
	}
}

func TestPlaceOnOccupiedCellPanics(t *testing.T) {
	l := NewEmpty(mustChain(t, "HP"), 4)
	l.Place(0, Point{Row: 1, Col: 1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic placing onto an occupied cell")
		}
	}()
	l.Place(1, Point{Row: 1, Col: 1})
}

func TestNeighbors(t *testing.T) {
	l := NewEmpty(mustChain(t, "HPH"), 4)
	if got := l.Neighbors(Point{Row: 0, Col: 0}); len(got) != 2 {
		t.Fatalf("expected 2 neighbors in grid corner, got %v", got)
	}
	if got := l.Neighbors(Point{Row: 1, Col: 1}); len(got) != 4 {
		t.Fatalf("expected 4 interior neighbors, got %v", got)
	}

	l.Place(0, Point{Row: 1, Col: 1})
	l.Place(1, Point{Row: 1, Col: 2})
	if got := l.EmptyNeighbors(Point{Row: 1, Col: 1}); len(got) != 3 {
		t.Fatalf("expected 3 empty neighbors, got %v", got)
	}
	if got := l.OccupiedNeighbors(Point{Row: 1, Col: 1}); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected occupied neighbors: %v", got)
	}

	a, b := Point{Row: 1, Col: 1}, Point{Row: 2, Col: 1}
	if !l.AreNeighbors(a, b) || !l.AreNeighbors(b, a) {
		t.Fatal("expected symmetric adjacency")
	}
	if l.AreNeighbors(a, Point{Row: 2, Col: 2}) {
		t.Fatal("diagonal cells are not neighbors")
	}
	if l.IsEmpty(Point{Row: -1, Col: 0}) {
		t.Fatal("out of range cells must never be empty")
	}
}

func TestEnergyExcludesChainNeighbors(t *testing.T) {
	l, err := New(mustChain(t, "HH"), Config{Mode: ModeLinear})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	if e := l.Energy(); e != 0 {
		t.Fatalf("expected energy 0 for consecutive H residues, got %d", e)
	}
}

func TestEnergyCountsTopologicalContactOnce(t *testing.T) {
	l := NewEmpty(mustChain(t, "HPPH"), 4)
	l.Place(0, Point{Row: 0, Col: 0})
	l.Place(1, Point{Row: 0, Col: 1})
	l.Place(2, Point{Row: 1, Col: 1})
	l.Place(3, Point{Row: 1, Col: 0})
	if !l.IsValid() {
		t.Fatal("expected valid U conformation")
	}
	if e := l.Energy(); e != -1 {
		t.Fatalf("expected energy -1, got %d", e)
	}
}

func TestEnergyDeltaMatchesRecomputation(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		l, err := New(chain, Config{Mode: ModeRandom, Rand: rng})
		if err != nil {
			t.Fatalf("new lattice: %v", err)
		}
		for i := 0; i < chain.Len(); i++ {
			from := l.MustPosition(i)
			for _, to := range l.EmptyNeighbors(from) {
				before := l.Energy()
				delta := l.EnergyDelta(i, to)
				l.Move(i, to)
				after := l.Energy()
				l.Move(i, from)
				if after-before != delta {
					t.Fatalf("residue %d %s->%s: delta=%d recomputed=%d", i, from, to, delta, after-before)
				}
			}
		}
	}
}

func TestLinearFill(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	l, err := New(chain, Config{Mode: ModeLinear})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	if l.Size() != 2*chain.Len() {
		t.Fatalf("unexpected default size: %d", l.Size())
	}
	if !l.IsValid() {
		t.Fatal("expected valid linear conformation")
	}
	assertConsistent(t, l)
	first := l.MustPosition(0)
	for i := 1; i < chain.Len(); i++ {
		p := l.MustPosition(i)
		if p.Row != first.Row || p.Col != first.Col+i {
			t.Fatalf("residue %d not on the starting row: %s", i, p)
		}
	}
	if e := l.Energy(); e != 0 {
		t.Fatalf("expected linear energy 0, got %d", e)
	}
}

func TestRandomFillProducesSelfAvoidingWalks(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		l, err := New(chain, Config{Mode: ModeRandom, Rand: rng})
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if !l.IsValid() {
			t.Fatalf("trial %d: invalid conformation", trial)
		}
		assertConsistent(t, l)
		if e := l.Energy(); e > 0 {
			t.Fatalf("trial %d: positive energy %d", trial, e)
		}
	}
}

func TestRandomFillIsReproducible(t *testing.T) {
	chain := mustChain(t, benchmarkSequence)
	a, err := New(chain, Config{Mode: ModeRandom, Rand: rand.New(rand.NewSource(99))})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	b, err := New(chain, Config{Mode: ModeRandom, Rand: rand.New(rand.NewSource(99))})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	pa, pb := a.Positions(), b.Positions()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("residue %d differs: %s vs %s", i, pa[i], pb[i])
		}
	}
}

func TestRandomFillBacktracksOnTightGrids(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, tc := range []struct {
		seq  string
		size int
	}{
		{seq: "HPHPHPHPH", size: 3},
		{seq: "HPHPHPHPHPHPHPHP", size: 4},
	} {
		chain := mustChain(t, tc.seq)
		for trial := 0; trial < 20; trial++ {
			l, err := New(chain, Config{Mode: ModeRandom, Size: tc.size, Rand: rng})
			if err != nil {
				t.Fatalf("%d residues on %dx%d grid: %v", chain.Len(), tc.size, tc.size, err)
			}
			if !l.IsValid() {
				t.Fatalf("%d residues on %dx%d grid: invalid conformation", chain.Len(), tc.size, tc.size)
			}
			assertConsistent(t, l)
		}
	}
}

func TestFillReportsUndersizedGrid(t *testing.T) {
	chain := mustChain(t, "HPHPHPHPHP")
	_, err := New(chain, Config{Mode: ModeRandom, Size: 3, Rand: rand.New(rand.NewSource(3))})
	if !errors.Is(err, ErrNoConformation) {
		t.Fatalf("expected no conformation error for random fill, got %v", err)
	}
	_, err = New(chain, Config{Mode: ModeLinear, Size: 5})
	if !errors.Is(err, ErrNoConformation) {
		t.Fatalf("expected no conformation error for linear fill, got %v", err)
	}
}

func TestRandomFillRequiresRandomSource(t *testing.T) {
	if _, err := New(mustChain(t, "HPH"), Config{Mode: ModeRandom}); err == nil {
		t.Fatal("expected error without random source")
	}
	if _, err := New(mustChain(t, "HPH"), Config{Mode: "spiral"}); err == nil {
		t.Fatal("expected unsupported mode error")
	}
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{"": ModeLinear, "linear": ModeLinear, "random": ModeRandom} {
		got, err := ParseMode(name)
		if err != nil || got != want {
			t.Fatalf("parse %q: got=%q err=%v", name, got, err)
		}
	}
	if _, err := ParseMode("zigzag"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIsCorner(t *testing.T) {
	l := NewEmpty(mustChain(t, "HPPH"), 5)
	l.Place(0, Point{Row: 1, Col: 1})
	l.Place(1, Point{Row: 1, Col: 2})
	l.Place(2, Point{Row: 1, Col: 3})
	l.Place(3, Point{Row: 2, Col: 3})
	if l.IsCorner(0) || l.IsCorner(3) {
		t.Fatal("chain ends are never corners")
	}
	if l.IsCorner(1) {
		t.Fatal("straight residue reported as corner")
	}
	if !l.IsCorner(2) {
		t.Fatal("expected residue 2 to be a corner")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l, err := New(mustChain(t, "HPPH"), Config{Mode: ModeLinear})
	if err != nil {
		t.Fatalf("new lattice: %v", err)
	}
	clone := l.Clone()
	p := clone.MustPosition(3)
	clone.Move(3, p.Add(Point{Row: 1}))
	if l.MustPosition(3) != p {
		t.Fatal("moving a residue on the clone changed the original")
	}
	assertConsistent(t, l)
	assertConsistent(t, clone)
}

func TestFromPositions(t *testing.T) {
	chain := mustChain(t, "HPPH")
	positions := []Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 1, Col: 0}}
	l, err := FromPositions(chain, 8, positions)
	if err != nil {
		t.Fatalf("from positions: %v", err)
	}
	if e := l.Energy(); e != -1 {
		t.Fatalf("unexpected energy: %d", e)
	}

	broken := []Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 2, Col: 1}, {Row: 2, Col: 0}}
	if _, err := FromPositions(chain, 8, broken); err == nil {
		t.Fatal("expected disconnected conformation to be rejected")
	}
	colliding := []Point{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 0}, {Row: 1, Col: 0}}
	if _, err := FromPositions(chain, 8, colliding); err == nil {
		t.Fatal("expected colliding conformation to be rejected")
	}
}

func TestRender(t *testing.T) {
	chain := mustChain(t, "HPPH")
	l, err := FromPositions(chain, 8, []Point{{Row: 3, Col: 3}, {Row: 3, Col: 4}, {Row: 4, Col: 4}, {Row: 4, Col: 3}})
	if err != nil {
		t.Fatalf("from positions: %v", err)
	}
	var buf bytes.Buffer
	if err := l.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "H-P") {
		t.Fatalf("expected horizontal bond in render:\n%s", out)
	}
	if !strings.Contains(out, "\n|     |   |\n") {
		t.Fatalf("expected vertical bonds in render:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for _, line := range lines {
		if len(line) != len(lines[0]) {
			t.Fatalf("ragged render output:\n%s", out)
		}
	}
}
