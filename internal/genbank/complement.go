package genbank

var complement [256]byte

func init() {
	pairs := []struct{ a, b byte }{
		{'A', 'T'}, {'C', 'G'},
		{'R', 'Y'}, {'K', 'M'},
		{'B', 'V'}, {'D', 'H'},
		{'S', 'S'}, {'W', 'W'}, {'N', 'N'},
	}
	for _, p := range pairs {
		complement[p.a], complement[p.b] = p.b, p.a
		complement[p.a+'a'-'A'], complement[p.b+'a'-'A'] = p.b+'a'-'A', p.a+'a'-'A'
	}
}

// complementBase returns the IUPAC complement of a base, preserving case.
// Unknown characters complement to N.
func complementBase(base byte) byte {
	if c := complement[base]; c != 0 {
		return c
	}
	return 'N'
}

// ReverseComplement returns the reverse complement of seq.
func ReverseComplement(seq []byte) []byte {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = complementBase(seq[n-1-i])
	}
	return out
}
