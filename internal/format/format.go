// Package format renders a coding sequence and its translation as
// line-numbered text blocks.
package format

import (
	"fmt"
	"strings"

	"github.com/inodb/gbtranslate/internal/translate"
)

// LineWidth is the number of columns per rendered line.
const LineWidth = 72

// Formatter paginates a nucleotide sequence alongside its peptide.
type Formatter struct {
	translator *translate.Translator
	oneLetter  bool
}

// New creates a formatter. When oneLetter is false residues are rendered
// with their three-letter mnemonics.
func New(t *translate.Translator, oneLetter bool) *Formatter {
	if t == nil {
		t = translate.NewTranslator(translate.Strict)
	}
	return &Formatter{translator: t, oneLetter: oneLetter}
}

// OneLetter reports whether residues are rendered as single letters.
func (f *Formatter) OneLetter() bool {
	return f.oneLetter
}

// Translator returns the translator used for codon lookup.
func (f *Formatter) Translator() *translate.Translator {
	return f.translator
}

// Peptide translates seq and builds the display peptide, in which each
// residue occupies the three columns of its codon.
func (f *Formatter) Peptide(seq string) (residues, display string, err error) {
	residues, err = f.translator.TranslateSequence(seq)
	if err != nil {
		return "", "", err
	}

	var b strings.Builder
	b.Grow(len(residues) * 3)
	for i := 0; i < len(residues); i++ {
		if f.oneLetter {
			b.WriteByte(' ')
			b.WriteByte(residues[i])
			b.WriteByte(' ')
			continue
		}
		name, err := translate.Name(residues[i])
		if err != nil {
			return "", "", err
		}
		b.WriteString(name)
	}
	return residues, b.String(), nil
}

// Format renders seq as alternating peptide and DNA lines, each block
// followed by a blank line. Any translation failure aborts the whole
// rendering.
func (f *Formatter) Format(seq string) ([]string, error) {
	_, peptide, err := f.Peptide(seq)
	if err != nil {
		return nil, err
	}
	return Lines(seq, peptide), nil
}

// Lines interleaves a nucleotide string with an already built display
// peptide. Both are cut into LineWidth columns independently; peptide lines
// are numbered by residue ordinal, DNA lines by base position.
func Lines(seq, peptide string) []string {
	width := CountDigits(len(seq))
	dnaLines := LineCount(len(seq))
	pepLines := LineCount(len(peptide))

	lines := make([]string, 0, dnaLines*2+pepLines)
	for i := 0; i < dnaLines; i++ {
		start := i * LineWidth

		if i < pepLines {
			lines = append(lines, numbered(start/3+1, width, slice(peptide, start)))
		}
		lines = append(lines, numbered(start+1, width, slice(seq, start)))
		lines = append(lines, "")
	}
	return lines
}

// LineCount returns the number of LineWidth lines needed for n columns.
func LineCount(n int) int {
	return (n + LineWidth - 1) / LineWidth
}

// CountDigits returns the number of decimal digits in n; 0 has one digit.
func CountDigits(n int) int {
	digits := 1
	for n >= 10 {
		n /= 10
		digits++
	}
	return digits
}

func slice(s string, start int) string {
	end := start + LineWidth
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

func numbered(n, width int, line string) string {
	return fmt.Sprintf("%0*d %s", width, n, line)
}
