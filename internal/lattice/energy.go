package lattice

// Energy returns the HP contact energy: -1 for every pair of lattice-adjacent
// hydrophobic residues that are not chain neighbors.
func (l *Lattice) Energy() int {
	raw := 0
	for _, i := range l.chain.Hydrophobic() {
		if !l.placed[i] {
			continue
		}
		raw += l.contacts(i, l.positions[i])
	}
	// every contact is seen from both ends
	return -raw / 2
}

// EnergyDelta returns the energy change of moving residue i to p, leaving all
// other residues in place. The lattice is not modified.
func (l *Lattice) EnergyDelta(i int, p Point) int {
	l.mustIndex(i)
	if !l.chain.IsHydrophobic(i) || !l.placed[i] {
		return 0
	}
	return l.contacts(i, l.positions[i]) - l.contacts(i, p)
}

// contacts counts the H residues around p that would bond with residue i.
func (l *Lattice) contacts(i int, p Point) int {
	n := 0
	for _, d := range directions {
		j, ok := l.Residue(p.Add(d))
		if !ok || j == i || l.chain.AreConsecutive(i, j) {
			continue
		}
		if l.chain.IsHydrophobic(j) {
			n++
		}
	}
	return n
}
