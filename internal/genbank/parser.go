package genbank

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/pgzip"
)

const (
	// Header continuation lines are indented by twelve spaces.
	headerIndent = 12
	// Feature keys start at column 6, qualifiers and locations at column 22.
	featureKeyIndent = 5
	qualifierIndent  = 21
)

// Reader reads GenBank records one at a time.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *pgzip.Reader
	lineNumber int
	pending    string
	hasPending bool
}

// Open opens a GenBank file for reading. Gzip-compressed input is detected
// from its magic bytes. Use "-" to read from stdin.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return NewReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open genbank file: %w", err)
	}

	r, err := NewReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	r.file = file
	return r, nil
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	gr := &Reader{reader: br}

	// Check for gzip magic number (0x1f, 0x8b)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gr.gzipReader, err = pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		gr.reader = bufio.NewReader(gr.gzipReader)
	}

	return gr, nil
}

// Close releases the underlying file and decompressor.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ReadAll reads every record from path.
func ReadAll(path string) ([]*Record, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return r.Records()
}

// Records reads all remaining records.
func (r *Reader) Records() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return records, nil
		}
		records = append(records, rec)
	}
}

func (r *Reader) readLine() (string, error) {
	if r.hasPending {
		r.hasPending = false
		r.lineNumber++
		return r.pending, nil
	}

	line, err := r.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	r.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *Reader) unread(line string) {
	r.pending = line
	r.hasPending = true
	r.lineNumber--
}

// Next reads the next record.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() (*Record, error) {
	var locus string
	for {
		line, err := r.readLine()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, r.readError(err)
		}
		// Release file headers precede the first LOCUS line.
		if strings.HasPrefix(line, "LOCUS") {
			locus = line
			break
		}
	}

	rec, err := r.parseLocus(locus)
	if err != nil {
		return nil, err
	}

	for {
		line, err := r.readLine()
		if err == io.EOF {
			return nil, &ParseError{Line: r.lineNumber, Message: "unexpected end of input, missing //"}
		}
		if err != nil {
			return nil, r.readError(err)
		}

		if strings.HasPrefix(line, "//") {
			if rec.Length == 0 {
				rec.Length = len(rec.Sequence)
			}
			return rec, nil
		}

		keyword, value := splitKeyword(line)
		switch keyword {
		case "DEFINITION":
			if rec.Definition, err = r.readContinued(value); err != nil {
				return nil, err
			}
		case "ACCESSION":
			if rec.Accession, err = r.readContinued(value); err != nil {
				return nil, err
			}
			if fields := strings.Fields(rec.Accession); len(fields) > 0 {
				rec.Accession = fields[0]
			}
		case "VERSION":
			if fields := strings.Fields(value); len(fields) > 0 {
				rec.Version = fields[0]
			}
		case "FEATURES":
			if err := r.parseFeatures(rec); err != nil {
				return nil, err
			}
		case "ORIGIN":
			if err := r.parseOrigin(rec); err != nil {
				return nil, err
			}
		}
	}
}

// parseLocus reads the name, length and topology from a LOCUS line:
// LOCUS       NC_005816               9609 bp    DNA     circular CON 10-JUN-2013
func (r *Reader) parseLocus(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil, &ParseError{Line: r.lineNumber, Message: "LOCUS line without a name"}
	}

	rec := &Record{Name: fields[1]}
	for i := 2; i < len(fields); i++ {
		switch fields[i] {
		case "bp", "aa":
			if n, err := strconv.Atoi(fields[i-1]); err == nil {
				rec.Length = n
			}
		case "linear", "circular":
			rec.Topology = fields[i]
		}
	}
	return rec, nil
}

// readContinued appends header continuation lines to value.
func (r *Reader) readContinued(value string) (string, error) {
	parts := []string{strings.TrimSpace(value)}
	for {
		line, err := r.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", r.readError(err)
		}
		if !strings.HasPrefix(line, strings.Repeat(" ", headerIndent)) {
			r.unread(line)
			break
		}
		parts = append(parts, strings.TrimSpace(line))
	}
	return strings.Join(parts, " "), nil
}

// qualifierBuilder accumulates a qualifier spread across lines.
type qualifierBuilder struct {
	key   string
	value strings.Builder
	quote bool
}

// open reports whether a quoted value is still missing its closing quote.
func (q *qualifierBuilder) open() bool {
	if !q.quote {
		return false
	}
	return strings.Count(q.value.String(), `"`)%2 == 1
}

func (q *qualifierBuilder) add(text string) {
	// Protein translations wrap without a separating space.
	if q.value.Len() > 0 && q.key != "translation" {
		q.value.WriteByte(' ')
	}
	q.value.WriteString(text)
}

func (q *qualifierBuilder) finish() Qualifier {
	v := q.value.String()
	if q.quote {
		v = strings.TrimPrefix(v, `"`)
		v = strings.TrimSuffix(v, `"`)
		v = strings.ReplaceAll(v, `""`, `"`)
	}
	return Qualifier{Key: q.key, Value: v}
}

func newQualifier(text string) *qualifierBuilder {
	text = strings.TrimPrefix(text, "/")
	key, value, hasValue := strings.Cut(text, "=")
	q := &qualifierBuilder{key: key}
	if hasValue {
		q.quote = strings.HasPrefix(value, `"`)
		q.value.WriteString(value)
	}
	return q
}

// parseFeatures reads the feature table up to the next section keyword.
func (r *Reader) parseFeatures(rec *Record) error {
	var (
		cur      *Feature
		loc      strings.Builder
		locLine  int
		inLoc    bool
		qual     *qualifierBuilder
		keyLead  = strings.Repeat(" ", featureKeyIndent)
		qualLead = strings.Repeat(" ", qualifierIndent)
	)

	finish := func() error {
		if cur == nil {
			return nil
		}
		if qual != nil {
			cur.Qualifiers = append(cur.Qualifiers, qual.finish())
			qual = nil
		}
		cur.RawLocation = loc.String()
		parsed, err := ParseLocation(cur.RawLocation)
		if err != nil {
			return &ParseError{Line: locLine, Message: fmt.Sprintf("%s feature: %v", cur.Kind, err)}
		}
		cur.Location = parsed
		rec.Features = append(rec.Features, cur)
		cur = nil
		return nil
	}

	for {
		line, err := r.readLine()
		if err == io.EOF {
			return finish()
		}
		if err != nil {
			return r.readError(err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] != ' ' {
			r.unread(line)
			return finish()
		}

		// New feature key in columns 6-21.
		if strings.HasPrefix(line, keyLead) && len(line) > featureKeyIndent && line[featureKeyIndent] != ' ' {
			if err := finish(); err != nil {
				return err
			}
			fields := strings.Fields(line)
			cur = &Feature{Kind: fields[0]}
			loc.Reset()
			loc.WriteString(strings.Join(fields[1:], ""))
			locLine = r.lineNumber
			inLoc = true
			continue
		}

		if cur == nil || !strings.HasPrefix(line, qualLead) {
			return &ParseError{Line: r.lineNumber, Message: "feature table line outside a feature"}
		}

		text := strings.TrimSpace(line)
		switch {
		case qual != nil && qual.open():
			qual.add(text)
		case strings.HasPrefix(text, "/"):
			if qual != nil {
				cur.Qualifiers = append(cur.Qualifiers, qual.finish())
			}
			qual = newQualifier(text)
			inLoc = false
		case inLoc:
			loc.WriteString(text)
		case qual != nil:
			qual.add(text)
		}
	}
}

// parseOrigin collects sequence letters up to the record terminator.
func (r *Reader) parseOrigin(rec *Record) error {
	for {
		line, err := r.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return r.readError(err)
		}
		if strings.HasPrefix(line, "//") {
			r.unread(line)
			return nil
		}
		for i := 0; i < len(line); i++ {
			c := line[i]
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
				rec.Sequence = append(rec.Sequence, c)
			}
		}
	}
}

// splitKeyword splits a header line into its keyword and value.
func splitKeyword(line string) (string, string) {
	if line == "" || line[0] == ' ' {
		return "", line
	}
	keyword, value, _ := strings.Cut(line, " ")
	return keyword, strings.TrimSpace(value)
}

// readError wraps an I/O failure with the line it occurred on.
func (r *Reader) readError(err error) error {
	return fmt.Errorf("read genbank at line %d: %w", r.lineNumber+1, err)
}

// ParseError represents an error during GenBank parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("genbank parse error at line %d: %s", e.Line, e.Message)
}
