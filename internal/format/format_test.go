package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gbtranslate/internal/translate"
)

func repeatCodon(codon string, n int) string {
	return strings.Repeat(codon, n)
}

func TestFormat_ShortGene(t *testing.T) {
	f := New(nil, false)

	lines, err := f.Format("ATGTTTTAG")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1 MetPhe***",
		"1 ATGTTTTAG",
		"",
	}, lines)
}

func TestFormat_OneLetter(t *testing.T) {
	f := New(translate.NewTranslator(translate.Strict), true)

	lines, err := f.Format("ATGTTTTAG")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1  M  F  * ",
		"1 ATGTTTTAG",
		"",
	}, lines)
}

func TestFormat_GTGStartOverride(t *testing.T) {
	f := New(nil, true)

	_, peptide, err := f.Peptide("GTGTTTTAG")
	require.NoError(t, err)
	assert.Equal(t, " M  F  * ", peptide)

	residues, _, err := f.Peptide("TTTGTGTAG")
	require.NoError(t, err)
	assert.Equal(t, "FV*", residues)
}

func TestFormat_PartialCodonKeepsDNA(t *testing.T) {
	f := New(nil, false)

	lines, err := f.Format("ATGTTTTAGC")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"01 MetPhe***",
		"01 ATGTTTTAGC",
		"",
	}, lines)
}

func TestFormat_MultiLine(t *testing.T) {
	// 50 codons = 150 bases: DNA lines of 72, 72, 6
	seq := "ATG" + repeatCodon("GCT", 48) + "TAA"
	require.Len(t, seq, 150)

	f := New(nil, true)
	lines, err := f.Format(seq)
	require.NoError(t, err)

	// 3 blocks of peptide + DNA + blank
	require.Len(t, lines, 9)

	assert.True(t, strings.HasPrefix(lines[0], "001  M  A "))
	assert.True(t, strings.HasPrefix(lines[1], "001 ATGGCT"))
	assert.Equal(t, "", lines[2])

	// second block: DNA position 73, residue 25
	assert.True(t, strings.HasPrefix(lines[3], "025 "))
	assert.True(t, strings.HasPrefix(lines[4], "073 "))

	// third block: DNA position 145, residue 49
	assert.Equal(t, "049  A  * ", lines[6])
	assert.Equal(t, "145 GCTTAA", lines[7])
}

func TestFormat_ThreeLetterNumbering(t *testing.T) {
	seq := "ATG" + repeatCodon("AAA", 30) // 93 bases, 31 residues
	f := New(nil, false)

	lines, err := f.Format(seq)
	require.NoError(t, err)
	require.Len(t, lines, 6)

	assert.Equal(t, "01 Met"+strings.Repeat("Lys", 23), lines[0])
	assert.Equal(t, "25 "+strings.Repeat("Lys", 7), lines[3])
	assert.Equal(t, "73 "+strings.Repeat("AAA", 7), lines[4])
}

func TestFormat_DNAHasMoreLinesThanPeptide(t *testing.T) {
	// 73 bases: peptide is 24 residues (72 columns, one line), DNA is two lines.
	seq := repeatCodon("GCT", 24) + "A"
	f := New(nil, true)

	lines, err := f.Format(seq)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"01 " + repeatCodon(" A ", 24),
		"01 " + repeatCodon("GCT", 24),
		"",
		"73 A",
		"",
	}, lines)
}

func TestFormat_PaginationRoundTrip(t *testing.T) {
	f := New(nil, true)

	for _, n := range []int{1, 2, 3, 71, 72, 73, 144, 145, 1000} {
		seq := strings.Repeat("C", n)
		lines, err := f.Format(seq)
		require.NoError(t, err)

		var dna []string
		var joined strings.Builder
		for i, line := range lines {
			// DNA lines sit immediately before each blank separator
			if line == "" {
				dna = append(dna, lines[i-1])
				_, body, ok := strings.Cut(lines[i-1], " ")
				require.True(t, ok)
				joined.WriteString(body)
			}
		}
		assert.Len(t, dna, LineCount(n), "length %d", n)
		assert.Equal(t, seq, joined.String(), "length %d", n)
	}
}

func TestFormat_OneLetterAlignment(t *testing.T) {
	seq := repeatCodon("CTG", 40)
	f := New(nil, true)

	residues, peptide, err := f.Peptide(seq)
	require.NoError(t, err)
	assert.Equal(t, 3*len(residues), len(peptide))
	assert.Equal(t, len(seq), len(peptide))
}

func TestFormat_Empty(t *testing.T) {
	lines, err := New(nil, false).Format("")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestFormat_BadNucleotideAborts(t *testing.T) {
	f := New(nil, false)

	lines, err := f.Format("ATGTTTXAG")
	require.Error(t, err)
	assert.Nil(t, lines)
	assert.True(t, errors.Is(err, translate.ErrBadNucleotide))
}

func TestFormat_PermissivePolicy(t *testing.T) {
	f := New(translate.NewTranslator(translate.Permissive), false)

	lines, err := f.Format("ATGNNNTAG")
	require.NoError(t, err)
	assert.Equal(t, "1 MetLys***", lines[0])
}

func TestCountDigits(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1},
		{1, 1},
		{9, 1},
		{10, 2},
		{99, 2},
		{100, 3},
		{65535, 5},
		{100000, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountDigits(tt.n), "CountDigits(%d)", tt.n)
	}
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 0, LineCount(0))
	assert.Equal(t, 1, LineCount(1))
	assert.Equal(t, 1, LineCount(72))
	assert.Equal(t, 2, LineCount(73))
	assert.Equal(t, 3, LineCount(150))
}
