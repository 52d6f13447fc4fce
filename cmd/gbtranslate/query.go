package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/gbtranslate/internal/duckdb"
	"github.com/inodb/gbtranslate/internal/output"
)

func newQueryCmd() *cobra.Command {
	var (
		dbPath    string
		proteinID string
		product   string
		sequence  bool
	)

	cmd := &cobra.Command{
		Use:   "query --db <file> (--protein <id> | --product <term>)",
		Short: "Look up exported translations",
		Example: `  gbtranslate query --db genes.duckdb --protein NP_995567.1
  gbtranslate query --db genes.duckdb --product "replication"`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return &usageError{errors.New("--db is required")}
			}
			if (proteinID == "") == (product == "") {
				return &usageError{errors.New("exactly one of --protein or --product is required")}
			}

			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			store, err := duckdb.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			var found []duckdb.Translation
			if proteinID != "" {
				found, err = store.LookupProtein(proteinID)
			} else {
				found, err = store.SearchByProduct(product)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if sequence {
				for _, t := range found {
					fmt.Fprintf(out, "%s\t%s\t%s\n", t.Record, t.ProteinID, t.Protein)
				}
				return nil
			}

			tw := output.NewTabWriter(out)
			if err := tw.WriteHeader(); err != nil {
				return err
			}
			for _, t := range found {
				if err := tw.WriteRow(t.Record, int(t.GeneIndex), t.ProteinID, t.Product, t.Location, t.Strand); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB database written by export")
	cmd.Flags().StringVar(&proteinID, "protein", "", "protein_id to look up")
	cmd.Flags().StringVar(&product, "product", "", "Case-insensitive substring of the product")
	cmd.Flags().BoolVar(&sequence, "sequence", false, "Print record, protein_id and protein sequence instead")

	return cmd
}
