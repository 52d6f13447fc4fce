// Package render turns catalog genes into formatted translation reports.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/gbtranslate/internal/catalog"
	"github.com/inodb/gbtranslate/internal/format"
)

// Report is the rendered translation of one gene.
type Report struct {
	Record   string       // record name
	Index    int          // gene index within the catalog
	Gene     catalog.Gene // selected gene
	DNA      string       // uppercase nucleotides
	Residues string       // one-letter residues, stop included
	Lines    []string     // peptide/DNA display lines
}

// Codons returns the number of complete codons translated.
func (r *Report) Codons() int {
	return len(r.Residues)
}

// Renderer renders genes with a fixed formatter.
type Renderer struct {
	formatter *format.Formatter
	logger    *zap.Logger
}

// NewRenderer creates a renderer using f.
func NewRenderer(f *format.Formatter) *Renderer {
	return &Renderer{
		formatter: f,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for debug and warning messages.
func (r *Renderer) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Render extracts, translates and formats gene i of c.
func (r *Renderer) Render(c *catalog.Catalog, i int) (*Report, error) {
	gene, err := c.Gene(i)
	if err != nil {
		return nil, err
	}

	dna, err := c.Sequence(i)
	if err != nil {
		return nil, err
	}

	residues, peptide, err := r.formatter.Peptide(dna)
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", gene.ID, err)
	}

	r.logger.Debug("rendered gene",
		zap.String("protein_id", gene.ID),
		zap.Int("bases", len(dna)),
		zap.Int("residues", len(residues)))

	return &Report{
		Record:   c.Record.Name,
		Index:    i,
		Gene:     gene,
		DNA:      dna,
		Residues: residues,
		Lines:    format.Lines(dna, peptide),
	}, nil
}
