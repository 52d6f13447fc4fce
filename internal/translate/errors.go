package translate

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrBadNucleotide    = errors.New("bad nucleotide")
	ErrInvalidAminoAcid = errors.New("invalid amino acid")
)

// BadNucleotideError reports a codon containing a character outside the
// accepted base alphabet.
type BadNucleotideError struct {
	Codon    string  // the codon as read from the sequence
	Lanes    [3]Lane // resolved lanes, NoLane where mapping failed
	Position int     // codon ordinal within the reading frame (0-based)
}

func (e *BadNucleotideError) Error() string {
	return fmt.Sprintf("bad nucleotide in codon %q at codon %d (lanes %v)", e.Codon, e.Position, e.Lanes[:])
}

func (e *BadNucleotideError) Unwrap() error {
	return ErrBadNucleotide
}

// Offending returns the characters of the codon that did not map to a lane.
func (e *BadNucleotideError) Offending() []byte {
	var bad []byte
	for i, l := range e.Lanes {
		if l == NoLane && i < len(e.Codon) {
			bad = append(bad, e.Codon[i])
		}
	}
	return bad
}

// InvalidAminoAcidError reports a residue code with no three-letter name.
type InvalidAminoAcidError struct {
	Residue byte
}

func (e *InvalidAminoAcidError) Error() string {
	return fmt.Sprintf("invalid amino acid %q", e.Residue)
}

func (e *InvalidAminoAcidError) Unwrap() error {
	return ErrInvalidAminoAcid
}
