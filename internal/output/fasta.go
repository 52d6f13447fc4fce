package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/gbtranslate/internal/render"
)

// FASTALineWidth is the number of residues per FASTA sequence line.
const FASTALineWidth = 60

// FASTAWriter writes translated proteins in FASTA format.
type FASTAWriter struct {
	w *bufio.Writer
}

// NewFASTAWriter creates a new protein FASTA writer.
func NewFASTAWriter(w io.Writer) *FASTAWriter {
	return &FASTAWriter{w: bufio.NewWriter(w)}
}

// Write writes ">protein_id product" followed by the residues. A single
// terminal stop is not written.
func (fw *FASTAWriter) Write(rep *render.Report) error {
	header := strings.TrimSpace(rep.Gene.ID + " " + rep.Gene.Description)
	if _, err := fmt.Fprintf(fw.w, ">%s\n", header); err != nil {
		return err
	}

	seq := strings.TrimSuffix(rep.Residues, "*")
	for start := 0; start < len(seq); start += FASTALineWidth {
		end := start + FASTALineWidth
		if end > len(seq) {
			end = len(seq)
		}
		if _, err := fw.w.WriteString(seq[start:end] + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (fw *FASTAWriter) Flush() error {
	return fw.w.Flush()
}
