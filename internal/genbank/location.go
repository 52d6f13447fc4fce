package genbank

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationKind identifies the shape of a feature location.
type LocationKind int

const (
	// Span covers Start..End inclusive; a single base has Start == End.
	Span LocationKind = iota
	// Between is a site between two adjacent bases (N^M).
	Between
	// Complement is the reverse complement of its single child.
	Complement
	// Join concatenates its children.
	Join
	// Order lists children without asserting they are contiguous.
	Order
)

// Location is a parsed GenBank feature location. Positions are 1-based.
type Location struct {
	Kind         LocationKind
	Start        int
	End          int
	PartialStart bool   // "<" before the start position
	PartialEnd   bool   // ">" before the end position
	Remote       string // accession for references into another record
	Children     []*Location
}

// LocationError reports a malformed or unresolvable location.
type LocationError struct {
	Location string
	Message  string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("location %q: %s", e.Location, e.Message)
}

// ParseLocation parses a GenBank location string. Whitespace is ignored.
func ParseLocation(s string) (*Location, error) {
	p := &locationParser{src: strings.Join(strings.Fields(s), "")}
	loc, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q at offset %d", p.src[p.pos:], p.pos)
	}
	return loc, nil
}

type locationParser struct {
	src string
	pos int
}

func (p *locationParser) errorf(format string, args ...any) error {
	return &LocationError{Location: p.src, Message: fmt.Sprintf(format, args...)}
}

func (p *locationParser) consume(prefix string) bool {
	if strings.HasPrefix(p.src[p.pos:], prefix) {
		p.pos += len(prefix)
		return true
	}
	return false
}

func (p *locationParser) parse() (*Location, error) {
	switch {
	case p.consume("complement("):
		child, err := p.parse()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, p.errorf("unclosed complement")
		}
		return &Location{Kind: Complement, Children: []*Location{child}}, nil
	case p.consume("join("):
		return p.parseList(Join)
	case p.consume("order("):
		return p.parseList(Order)
	}
	return p.parseSpan()
}

func (p *locationParser) parseList(kind LocationKind) (*Location, error) {
	loc := &Location{Kind: kind}
	for {
		child, err := p.parse()
		if err != nil {
			return nil, err
		}
		loc.Children = append(loc.Children, child)
		if p.consume(",") {
			continue
		}
		if p.consume(")") {
			return loc, nil
		}
		return nil, p.errorf("expected ',' or ')' at offset %d", p.pos)
	}
}

func (p *locationParser) parseSpan() (*Location, error) {
	loc := &Location{Kind: Span}

	// Remote reference: ACCESSION.VERSION:span
	if i := strings.IndexByte(p.src[p.pos:], ':'); i > 0 {
		end := strings.IndexAny(p.src[p.pos:], ",)")
		if end < 0 || i < end {
			loc.Remote = p.src[p.pos : p.pos+i]
			p.pos += i + 1
		}
	}

	var err error
	loc.PartialStart = p.consume("<") || p.consume(">")
	if loc.Start, err = p.parseInt(); err != nil {
		return nil, err
	}

	switch {
	case p.consume(".."):
		loc.PartialEnd = p.consume(">") || p.consume("<")
		if loc.End, err = p.parseInt(); err != nil {
			return nil, err
		}
	case p.consume("^"):
		loc.Kind = Between
		if loc.End, err = p.parseInt(); err != nil {
			return nil, err
		}
	default:
		loc.End = loc.Start
	}
	return loc, nil
}

func (p *locationParser) parseInt() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected position at offset %d", start)
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return 0, p.errorf("bad position %q", p.src[start:p.pos])
	}
	return n, nil
}

// String formats the location back into GenBank syntax.
func (l *Location) String() string {
	switch l.Kind {
	case Complement:
		return "complement(" + l.Children[0].String() + ")"
	case Join, Order:
		parts := make([]string, len(l.Children))
		for i, c := range l.Children {
			parts[i] = c.String()
		}
		name := "join"
		if l.Kind == Order {
			name = "order"
		}
		return name + "(" + strings.Join(parts, ",") + ")"
	}

	var b strings.Builder
	if l.Remote != "" {
		b.WriteString(l.Remote)
		b.WriteByte(':')
	}
	if l.PartialStart {
		b.WriteByte('<')
	}
	b.WriteString(strconv.Itoa(l.Start))
	switch {
	case l.Kind == Between:
		b.WriteByte('^')
		b.WriteString(strconv.Itoa(l.End))
	case l.End != l.Start || l.PartialEnd:
		b.WriteString("..")
		if l.PartialEnd {
			b.WriteByte('>')
		}
		b.WriteString(strconv.Itoa(l.End))
	}
	return b.String()
}

// IsReverse returns true if the location reads the minus strand.
func (l *Location) IsReverse() bool {
	if l.Kind == Complement {
		return true
	}
	if (l.Kind == Join || l.Kind == Order) && len(l.Children) > 0 {
		for _, c := range l.Children {
			if !c.IsReverse() {
				return false
			}
		}
		return true
	}
	return false
}

// Extract returns the bases covered by loc, reverse complementing
// complement() spans and concatenating join() and order() parts.
func (r *Record) Extract(loc *Location) ([]byte, error) {
	if loc == nil {
		return nil, &LocationError{Message: "no location"}
	}

	switch loc.Kind {
	case Complement:
		if len(loc.Children) != 1 {
			return nil, &LocationError{Location: loc.String(), Message: "complement needs exactly one part"}
		}
		inner, err := r.Extract(loc.Children[0])
		if err != nil {
			return nil, err
		}
		return ReverseComplement(inner), nil
	case Join, Order:
		var out []byte
		for _, c := range loc.Children {
			part, err := r.Extract(c)
			if err != nil {
				return nil, err
			}
			out = append(out, part...)
		}
		return out, nil
	case Between:
		return []byte{}, nil
	}

	if loc.Remote != "" {
		return nil, &LocationError{Location: loc.String(), Message: "references another record"}
	}

	n := len(r.Sequence)
	if loc.Start < 1 || loc.Start > n || loc.End < 1 || loc.End > n {
		return nil, &LocationError{
			Location: loc.String(),
			Message:  fmt.Sprintf("outside sequence of length %d", n),
		}
	}

	if loc.Start > loc.End {
		if !r.IsCircular() {
			return nil, &LocationError{Location: loc.String(), Message: "start after end on linear sequence"}
		}
		// Span crosses the origin of a circular molecule.
		out := make([]byte, 0, n-loc.Start+1+loc.End)
		out = append(out, r.Sequence[loc.Start-1:]...)
		return append(out, r.Sequence[:loc.End]...), nil
	}

	out := make([]byte, loc.End-loc.Start+1)
	copy(out, r.Sequence[loc.Start-1:loc.End])
	return out, nil
}
