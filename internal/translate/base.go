// Package translate converts nucleotide sequences into amino acid residues
// using NCBI translation table 11.
package translate

// Lane is the 2-bit index of a nucleotide in the canonical T, C, A, G order.
type Lane int8

// Lane values. NoLane marks a base that could not be mapped.
const (
	LaneT  Lane = 0
	LaneC  Lane = 1
	LaneA  Lane = 2
	LaneG  Lane = 3
	NoLane Lane = -1
)

// BasePolicy controls which characters are accepted as bases.
type BasePolicy int

const (
	// Strict accepts only T, C, A and G.
	Strict BasePolicy = iota
	// Permissive additionally accepts the ambiguity code N and maps it to
	// the lane of A.
	Permissive
)

// String returns the configuration name of the policy.
func (p BasePolicy) String() string {
	if p == Permissive {
		return "permissive"
	}
	return "strict"
}

// LaneOf maps an uppercase base to its lane. The second return value is
// false for anything outside the alphabet accepted by the policy.
func LaneOf(base byte, policy BasePolicy) (Lane, bool) {
	switch base {
	case 'T':
		return LaneT, true
	case 'C':
		return LaneC, true
	case 'A':
		return LaneA, true
	case 'G':
		return LaneG, true
	case 'N':
		if policy == Permissive {
			return LaneA, true
		}
	}
	return NoLane, false
}
