package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/inodb/gbtranslate/internal/catalog"
	"github.com/inodb/gbtranslate/internal/render"
)

// TextWriter writes gene translations as numbered text blocks.
type TextWriter struct {
	w      *bufio.Writer
	header *color.Color
}

// NewTextWriter creates a new text report writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// SetHeaderColor highlights the "<id>: <description>" line. nil disables it.
func (tw *TextWriter) SetHeaderColor(c *color.Color) {
	tw.header = c
}

// Write writes one gene: header, peptide/DNA blocks, then length summary.
func (tw *TextWriter) Write(rep *render.Report) error {
	var err error
	if tw.header != nil {
		_, err = tw.header.Fprintf(tw.w, "%s: %s", rep.Gene.ID, rep.Gene.Description)
		if err == nil {
			_, err = tw.w.WriteString("\n")
		}
	} else {
		_, err = fmt.Fprintf(tw.w, "%s: %s\n", rep.Gene.ID, rep.Gene.Description)
	}
	if err != nil {
		return err
	}

	for _, line := range rep.Lines {
		if _, err := tw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(tw.w, "DNA:     %d bases\nProtein: %d amino acids (including stop)\n\n",
		len(rep.DNA), rep.Codons())
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TextWriter) Flush() error {
	return tw.w.Flush()
}

// WriteRecordSummary writes the record header, feature tally and the
// numbered gene list shown before a selection prompt.
func WriteRecordSummary(w io.Writer, c *catalog.Catalog) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Record name: %s\n", c.Record.Name)
	fmt.Fprintf(bw, "Sequence length: %d\n", c.Record.Len())
	fmt.Fprintf(bw, "\nFound %d features, including %d genes.\n", c.Tally.Total(), c.Len())

	width := c.Tally.MaxWidth()
	for _, kind := range c.Tally.Kinds() {
		fmt.Fprintf(bw, "  %-*s %d\n", width, kind, c.Tally.Count(kind))
	}
	if c.Len() > 0 {
		bw.WriteString("\n")
	}
	for i, g := range c.Genes {
		fmt.Fprintf(bw, "%d) %s: %s\n", i, g.ID, g.Description)
	}

	return bw.Flush()
}
