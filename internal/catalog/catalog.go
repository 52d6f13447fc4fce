// Package catalog collects the protein-coding genes of a GenBank record.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/gbtranslate/internal/genbank"
)

// Feature kind and qualifier keys used to build the catalog.
const (
	KindCDS      = "CDS"
	KeyProteinID = "protein_id"
	KeyProduct   = "product"
)

// ErrSelectionOutOfRange is returned for a gene index outside the catalog.
var ErrSelectionOutOfRange = errors.New("selection out of range")

// MissingQualifierError reports a CDS feature without a required qualifier.
type MissingQualifierError struct {
	Qualifier string
	Location  string
}

func (e *MissingQualifierError) Error() string {
	return fmt.Sprintf("CDS at %s has no /%s qualifier", e.Location, e.Qualifier)
}

// Gene is a CDS feature selected for translation.
type Gene struct {
	ID          string            // protein_id
	Description string            // product
	Location    *genbank.Location // opaque to rendering, used for extraction
}

// Catalog holds the genes and feature tally of one record.
type Catalog struct {
	Record *genbank.Record
	Genes  []Gene
	Tally  *FeatureTally
}

// Options controls catalog construction.
type Options struct {
	// SkipIncomplete drops CDS features lacking protein_id or product
	// instead of failing.
	SkipIncomplete bool
	Logger         *zap.Logger
}

// Build scans the features of rec in order.
func Build(rec *genbank.Record, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Catalog{Record: rec, Tally: NewFeatureTally()}
	for _, f := range rec.Features {
		c.Tally.Add(f.Kind)
		if f.Kind != KindCDS {
			continue
		}

		gene, err := geneFromFeature(f)
		if err != nil {
			if opts.SkipIncomplete {
				logger.Warn("skipping incomplete CDS",
					zap.String("record", rec.Name),
					zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("record %s: %w", rec.Name, err)
		}
		c.Genes = append(c.Genes, gene)
	}

	logger.Debug("built gene catalog",
		zap.String("record", rec.Name),
		zap.Int("features", c.Tally.Total()),
		zap.Int("genes", len(c.Genes)))

	return c, nil
}

func geneFromFeature(f *genbank.Feature) (Gene, error) {
	id, ok := f.First(KeyProteinID)
	if !ok {
		return Gene{}, &MissingQualifierError{Qualifier: KeyProteinID, Location: f.RawLocation}
	}
	desc, ok := f.First(KeyProduct)
	if !ok {
		return Gene{}, &MissingQualifierError{Qualifier: KeyProduct, Location: f.RawLocation}
	}
	return Gene{
		ID:          stripNewlines(id),
		Description: stripNewlines(desc),
		Location:    f.Location,
	}, nil
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// Len returns the number of genes.
func (c *Catalog) Len() int {
	return len(c.Genes)
}

// Gene returns the gene at index i.
func (c *Catalog) Gene(i int) (Gene, error) {
	if i < 0 || i >= len(c.Genes) {
		return Gene{}, fmt.Errorf("%w: %d not in [0, %d]", ErrSelectionOutOfRange, i, len(c.Genes)-1)
	}
	return c.Genes[i], nil
}

// Sequence extracts the uppercase nucleotides of gene i.
func (c *Catalog) Sequence(i int) (string, error) {
	g, err := c.Gene(i)
	if err != nil {
		return "", err
	}
	raw, err := c.Record.Extract(g.Location)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", g.ID, err)
	}
	return string(bytes.ToUpper(raw)), nil
}

// FindByID returns the index of the gene with the given protein_id.
func (c *Catalog) FindByID(id string) (int, bool) {
	for i, g := range c.Genes {
		if g.ID == id {
			return i, true
		}
	}
	return -1, false
}
