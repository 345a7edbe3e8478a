package protein

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// HydrophobicAlphabet lists the one-letter amino-acid codes mapped to H.
const HydrophobicAlphabet = "ACFILMVW"

const aminoAcidAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// FromAminoAcids reduces a one-letter amino-acid sequence to an HP chain.
func FromAminoAcids(sequence string) (*Chain, error) {
	kinds := make([]Kind, 0, len(sequence))
	for pos, r := range strings.ToUpper(sequence) {
		if isSpace(r) {
			continue
		}
		if !strings.ContainsRune(aminoAcidAlphabet, r) {
			return nil, fmt.Errorf("%w: %q at offset %d is not an amino acid", ErrInvalidResidue, r, pos)
		}
		if strings.ContainsRune(HydrophobicAlphabet, r) {
			kinds = append(kinds, Hydrophobic)
		} else {
			kinds = append(kinds, Polar)
		}
	}
	return fromKinds(kinds)
}

// ReadSequence reads a raw or FASTA formatted sequence. Only the first FASTA
// record is returned; comment lines starting with ';' are skipped.
func ReadSequence(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	var b strings.Builder
	headers := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			headers++
			if headers > 1 {
				break
			}
			continue
		}
		b.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "", ErrEmptySequence
	}
	return b.String(), nil
}

// Parse builds a chain from either a literal HP string or, when aminoAcids is
// set, an amino-acid sequence.
func Parse(sequence string, aminoAcids bool) (*Chain, error) {
	if aminoAcids {
		return FromAminoAcids(sequence)
	}
	return NewChain(sequence)
}
