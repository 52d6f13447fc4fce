// Package genbank reads GenBank flat-file records and extracts the
// nucleotides covered by feature locations.
package genbank

// Record is one LOCUS ... // entry of a GenBank file.
type Record struct {
	Name       string     // LOCUS name (e.g., NC_005816)
	Length     int        // Sequence length declared on the LOCUS line
	Topology   string     // "linear" or "circular", empty if not declared
	Definition string     // DEFINITION text
	Accession  string     // Primary accession
	Version    string     // Accession.version
	Features   []*Feature // Features in file order
	Sequence   []byte     // ORIGIN bases, case preserved
}

// Len returns the number of bases in the record.
func (r *Record) Len() int {
	if len(r.Sequence) > 0 {
		return len(r.Sequence)
	}
	return r.Length
}

// IsCircular returns true if the LOCUS line declares a circular molecule.
func (r *Record) IsCircular() bool {
	return r.Topology == "circular"
}

// Qualifier is a single /key=value pair on a feature.
type Qualifier struct {
	Key   string
	Value string
}

// Feature is one entry of the feature table.
type Feature struct {
	Kind        string    // Feature key (e.g., CDS, gene, source)
	RawLocation string    // Location as written in the file
	Location    *Location // Parsed location
	Qualifiers  []Qualifier
}

// Values returns all qualifier values for key in file order.
func (f *Feature) Values(key string) []string {
	var vals []string
	for _, q := range f.Qualifiers {
		if q.Key == key {
			vals = append(vals, q.Value)
		}
	}
	return vals
}

// First returns the first value for key.
func (f *Feature) First(key string) (string, bool) {
	for _, q := range f.Qualifiers {
		if q.Key == key {
			return q.Value, true
		}
	}
	return "", false
}
