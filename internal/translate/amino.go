package translate

// UnknownName is the three-letter placeholder for IUPAC letters that do not
// denote a single amino acid (B, J, X, Z).
const UnknownName = "???"

// StopName is the three-letter rendering of the stop residue.
const StopName = "***"

// threeLetter holds the mnemonics for A..Z in alphabetical order.
var threeLetter = [26]string{
	"Ala",       // A
	UnknownName, // B
	"Cys",       // C
	"Asp",       // D
	"Glu",       // E
	"Phe",       // F
	"Gly",       // G
	"His",       // H
	"Ile",       // I
	UnknownName, // J
	"Lys",       // K
	"Leu",       // L
	"Met",       // M
	"Asn",       // N
	"Pyr",       // O
	"Pro",       // P
	"Gln",       // Q
	"Arg",       // R
	"Ser",       // S
	"Thr",       // T
	"Sel",       // U
	"Val",       // V
	"Trp",       // W
	UnknownName, // X
	"Tyr",       // Y
	UnknownName, // Z
}

// Name returns the three-letter mnemonic for a single-letter residue code.
// Only uppercase letters and '*' are accepted.
func Name(residue byte) (string, error) {
	switch {
	case residue == '*':
		return StopName, nil
	case residue >= 'A' && residue <= 'Z':
		return threeLetter[residue-'A'], nil
	}
	return "", &InvalidAminoAcidError{Residue: residue}
}
