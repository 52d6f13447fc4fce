package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/gbtranslate/internal/render"
)

// Translation is one stored gene translation.
type Translation struct {
	Record        string
	GeneIndex     int64
	ProteinID     string
	Product       string
	Location      string
	Strand        string
	DNALength     int64
	ProteinLength int64
	Protein       string // one-letter residues, stop included
	DNA           string
}

// FromReport converts a rendered gene into a Translation row.
func FromReport(rep *render.Report) Translation {
	location, strand := "", "+"
	if loc := rep.Gene.Location; loc != nil {
		location = loc.String()
		if loc.IsReverse() {
			strand = "-"
		}
	}
	return Translation{
		Record:        rep.Record,
		GeneIndex:     int64(rep.Index),
		ProteinID:     rep.Gene.ID,
		Product:       rep.Gene.Description,
		Location:      location,
		Strand:        strand,
		DNALength:     int64(len(rep.DNA)),
		ProteinLength: int64(len(rep.Residues)),
		Protein:       rep.Residues,
		DNA:           rep.DNA,
	}
}

// translationKey is the composite key for deduplicating rows before writing.
type translationKey struct {
	record, proteinID string
}

// WriteTranslations batch-inserts translations using the Appender API.
// Duplicate (record, protein_id) entries keep the first occurrence.
func (s *Store) WriteTranslations(rows []Translation) error {
	if len(rows) == 0 {
		return nil
	}

	seen := make(map[translationKey]bool, len(rows))
	deduped := make([]Translation, 0, len(rows))
	for _, r := range rows {
		k := translationKey{r.Record, r.ProteinID}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "translations")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			r.Record, r.GeneIndex, r.ProteinID, r.Product, r.Location, r.Strand,
			r.DNALength, r.ProteinLength, r.Protein, r.DNA,
		); err != nil {
			return fmt.Errorf("append translation: %w", err)
		}
	}

	return appender.Flush()
}

// DeleteRecord removes all translations of a record.
func (s *Store) DeleteRecord(record string) error {
	_, err := s.db.Exec("DELETE FROM translations WHERE record=?", record)
	return err
}

// Clear removes all stored translations.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM translations")
	return err
}

// Count returns the number of stored translations.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM translations").Scan(&n); err != nil {
		return 0, fmt.Errorf("count translations: %w", err)
	}
	return n, nil
}

const selectTranslations = `SELECT
		record, gene_index, protein_id, product, location, strand,
		dna_length, protein_length, protein, dna
		FROM translations`

// LookupProtein returns the translations stored under a protein_id.
func (s *Store) LookupProtein(proteinID string) ([]Translation, error) {
	rows, err := s.db.Query(selectTranslations+`
		WHERE protein_id=?
		ORDER BY record`, proteinID)
	if err != nil {
		return nil, fmt.Errorf("query protein: %w", err)
	}
	defer rows.Close()

	return scanTranslations(rows)
}

// SearchByProduct returns translations whose product contains term,
// ignoring case.
func (s *Store) SearchByProduct(term string) ([]Translation, error) {
	rows, err := s.db.Query(selectTranslations+`
		WHERE product ILIKE ?
		ORDER BY record, gene_index`, "%"+term+"%")
	if err != nil {
		return nil, fmt.Errorf("query by product: %w", err)
	}
	defer rows.Close()

	return scanTranslations(rows)
}

// scanTranslations scans rows into Translation slices.
func scanTranslations(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Translation, error) {
	var results []Translation
	for rows.Next() {
		var t Translation
		if err := rows.Scan(
			&t.Record, &t.GeneIndex, &t.ProteinID, &t.Product, &t.Location, &t.Strand,
			&t.DNALength, &t.ProteinLength, &t.Protein, &t.DNA,
		); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return results, nil
}
