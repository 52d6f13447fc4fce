package translate

import "strings"

// NCBI translation table 11 (bacterial, archaeal and plant plastid code).
// Both tables are indexed by CodonIndex: T=0, C=1, A=2, G=3 and
// index = 16*first + 4*second + third, so TTT=0, TTC=1 ... GGG=63.
const (
	geneticCode = "FFLLSSSSYY**CC*WLLLLPPPPHHQQRRRRIIIMTTTTNNKKSSRRVVVVAAAADDEEGGGG"
	startCodons = "---M---------------M------------MMMM---------------M------------"
)

// startMarker flags a valid alternative start codon in startCodons.
const startMarker = 'M'

// CodonCount is the number of distinct codons.
const CodonCount = 64

// CodonIndex returns the table index of three resolved lanes.
func CodonIndex(b0, b1, b2 Lane) int {
	return 16*int(b0) + 4*int(b1) + int(b2)
}

// Standard returns the table 11 residue for a codon index.
func Standard(index int) byte {
	return geneticCode[index]
}

// IsStart reports whether the codon index is a valid start codon.
func IsStart(index int) bool {
	return startCodons[index] == startMarker
}

// Translator converts codons into single-letter residue codes.
// The zero value uses the strict base alphabet.
type Translator struct {
	policy BasePolicy
}

// NewTranslator creates a translator using the given base policy.
func NewTranslator(policy BasePolicy) *Translator {
	return &Translator{policy: policy}
}

// Policy returns the base policy in use.
func (t *Translator) Policy() BasePolicy {
	return t.policy
}

// TranslateCodon translates one uppercase codon. position is the codon's
// ordinal within the reading frame; at position 0 a start codon is read as
// Methionine whatever its standard meaning.
func (t *Translator) TranslateCodon(codon string, position int) (byte, error) {
	lanes := [3]Lane{NoLane, NoLane, NoLane}
	ok := len(codon) == 3
	for i := 0; i < len(codon) && i < 3; i++ {
		l, valid := LaneOf(codon[i], t.policy)
		lanes[i] = l
		ok = ok && valid
	}
	if !ok {
		return 0, &BadNucleotideError{Codon: codon, Lanes: lanes, Position: position}
	}

	idx := CodonIndex(lanes[0], lanes[1], lanes[2])
	if position == 0 && IsStart(idx) {
		return 'M', nil
	}
	return Standard(idx), nil
}

// TranslateSequence translates a reading frame starting at the first base.
// A trailing partial codon is dropped. The first untranslatable codon
// aborts the whole translation.
func (t *Translator) TranslateSequence(seq string) (string, error) {
	n := len(seq) / 3

	var result strings.Builder
	result.Grow(n)

	for i := 0; i < n; i++ {
		aa, err := t.TranslateCodon(seq[i*3:i*3+3], i)
		if err != nil {
			return "", err
		}
		result.WriteByte(aa)
	}

	return result.String(), nil
}
