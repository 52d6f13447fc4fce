package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/gbtranslate/internal/catalog"
	"github.com/inodb/gbtranslate/internal/duckdb"
	"github.com/inodb/gbtranslate/internal/output"
	"github.com/inodb/gbtranslate/internal/render"
)

// createFASTA opens the FASTA output file.
var createFASTA = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func newExportCmd() *cobra.Command {
	var (
		dbPath    string
		fastaPath string
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Translate every gene and export to DuckDB and/or protein FASTA",
		Long: `Translate every CDS of a GenBank file and store the results.

--db writes a DuckDB table "translations" keyed by (record, protein_id).
Rows of records already in the database are replaced.
--fasta writes one-letter protein sequences without the terminal stop.`,
		Example: `  gbtranslate export --db genes.duckdb nc_005816.gb
  gbtranslate export --fasta proteins.faa --skip-incomplete genome.gb.gz
  gbtranslate export --fasta - nc_005816.gb`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" && fastaPath == "" {
				return &usageError{errors.New("at least one of --db or --fasta is required")}
			}
			if err := bindFlags(cmd, loadBindings); err != nil {
				return err
			}
			if err := bindFlags(cmd, renderBindings); err != nil {
				return err
			}
			return runExport(cmd.OutOrStdout(), inputPath(args), dbPath, fastaPath, loadOptions(cmd.InOrStdin()))
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database to write translations to")
	cmd.Flags().StringVar(&fastaPath, "fasta", "", "Protein FASTA file to write ('-' for stdout)")
	addLoadFlags(cmd)
	addRenderFlags(cmd)

	return cmd
}

func runExport(stdout io.Writer, path, dbPath, fastaPath string, opts options) error {
	catalogs, err := loadCatalogs(path, opts)
	if err != nil {
		return err
	}

	r := render.NewRenderer(opts.formatter())
	r.SetLogger(logger)

	var (
		fw *output.FASTAWriter
		fc io.Closer
	)
	if fastaPath != "" {
		w := stdout
		if fastaPath != "-" {
			f, err := createFASTA(fastaPath)
			if err != nil {
				return fmt.Errorf("create FASTA output: %w", err)
			}
			defer func() {
				if fc != nil {
					fc.Close()
				}
			}()
			fc, w = f, f
		}
		fw = output.NewFASTAWriter(w)
	}

	var rows []duckdb.Translation
	total, failed := 0, 0
	err = r.RenderAll(catalogs, opts.workers, func(res render.WorkResult) error {
		total++
		if res.Err != nil {
			failed++
			return nil
		}
		if dbPath != "" {
			rows = append(rows, duckdb.FromReport(res.Report))
		}
		if fw != nil {
			return fw.Write(res.Report)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if fw != nil {
		if err := fw.Flush(); err != nil {
			return fmt.Errorf("write FASTA output: %w", err)
		}
	}
	if fc != nil {
		err := fc.Close()
		fc = nil
		if err != nil {
			return fmt.Errorf("close FASTA output: %w", err)
		}
	}

	if dbPath != "" {
		if err := storeTranslations(dbPath, catalogRecords(catalogs), rows); err != nil {
			return err
		}
		logger.Info("exported translations",
			zap.String("db", dbPath),
			zap.Int("rows", len(rows)))
		if fastaPath != "-" {
			fmt.Fprintf(stdout, "Exported %d translations to %s\n", len(rows), dbPath)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d genes failed to translate", failed, total)
	}
	return nil
}

// storeTranslations replaces the rows of records with rows.
func storeTranslations(dbPath string, records []string, rows []duckdb.Translation) error {
	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, name := range records {
		if err := store.DeleteRecord(name); err != nil {
			return fmt.Errorf("replace record %s: %w", name, err)
		}
	}
	if err := store.WriteTranslations(rows); err != nil {
		return fmt.Errorf("write translations: %w", err)
	}
	return nil
}

func catalogRecords(catalogs []*catalog.Catalog) []string {
	names := make([]string, len(catalogs))
	for i, c := range catalogs {
		names[i] = c.Record.Name
	}
	return names
}
