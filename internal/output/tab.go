// Package output provides writers for gene listings and translations.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gbtranslate/internal/catalog"
)

// TabWriter writes the gene catalog in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Record",
			"Index",
			"Protein_id",
			"Product",
			"Location",
			"Strand",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes one row per gene of the catalog.
func (tw *TabWriter) Write(c *catalog.Catalog) error {
	for i, g := range c.Genes {
		strand := "+"
		location := ""
		if g.Location != nil {
			location = g.Location.String()
			if g.Location.IsReverse() {
				strand = "-"
			}
		}
		if err := tw.WriteRow(c.Record.Name, i, g.ID, g.Description, location, strand); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes a single listing row. Empty values are written as "-".
func (tw *TabWriter) WriteRow(record string, index int, proteinID, product, location, strand string) error {
	values := []string{
		record,
		strconv.Itoa(index),
		proteinID,
		// Tabs inside values would shift columns
		strings.ReplaceAll(product, "\t", " "),
		location,
		strand,
	}
	for i, v := range values {
		if v == "" {
			values[i] = "-"
		}
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
