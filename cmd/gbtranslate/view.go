package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/inodb/gbtranslate/internal/catalog"
	"github.com/inodb/gbtranslate/internal/output"
	"github.com/inodb/gbtranslate/internal/render"
)

func newViewCmd() *cobra.Command {
	var (
		gene      int
		proteinID string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "List a record's genes and translate a selected one",
		Long: `Read a GenBank file, print each record's feature summary and numbered
gene list, then show the selected gene's DNA with its translation above it.
The gene is prompted for unless --gene, --id or --all is given.

The file defaults to ` + defaultInput + ` and may be gzip compressed
or '-' for stdin. With stdin input the gene must be chosen by flag.`,
		Example: `  gbtranslate view
  gbtranslate view --gene 2 nc_005816.gb
  gbtranslate view --id NP_995567.1 --one-letter nc_005816.gb
  gbtranslate view --all --workers 4 nc_005816.gb.gz`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, loadBindings); err != nil {
				return err
			}
			if err := bindFlags(cmd, renderBindings); err != nil {
				return err
			}
			if all && (gene >= 0 || proteinID != "") {
				return &usageError{errors.New("--all cannot be combined with --gene or --id")}
			}
			if gene >= 0 && proteinID != "" {
				return &usageError{errors.New("--gene and --id are mutually exclusive")}
			}
			// The selection prompt reads stdin too.
			if inputPath(args) == "-" && !all && gene < 0 && proteinID == "" {
				return &usageError{errors.New("reading from stdin requires --gene, --id or --all")}
			}

			v := &viewer{
				out:       cmd.OutOrStdout(),
				in:        bufio.NewReader(cmd.InOrStdin()),
				opts:      loadOptions(cmd.InOrStdin()),
				gene:      gene,
				proteinID: proteinID,
			}
			if all {
				return v.viewAll(inputPath(args))
			}
			return v.view(inputPath(args))
		},
	}

	cmd.Flags().IntVarP(&gene, "gene", "g", -1, "Index of the gene to view (prompted when not set)")
	cmd.Flags().StringVar(&proteinID, "id", "", "protein_id of the gene to view")
	cmd.Flags().BoolVar(&all, "all", false, "Translate every gene of every record")
	addLoadFlags(cmd)
	addRenderFlags(cmd)

	return cmd
}

// viewer drives the interactive view of one file.
type viewer struct {
	out       io.Writer
	in        *bufio.Reader
	opts      options
	gene      int
	proteinID string
}

func (v *viewer) setup(path string) ([]*catalog.Catalog, *render.Renderer, *output.TextWriter, error) {
	fmt.Fprintf(v.out, "\nReading records from file '%s'...\n", path)

	catalogs, err := loadCatalogs(path, v.opts)
	if err != nil {
		return nil, nil, nil, err
	}

	r := render.NewRenderer(v.opts.formatter())
	r.SetLogger(logger)

	tw := output.NewTextWriter(v.out)
	if !color.NoColor {
		tw.SetHeaderColor(color.New(color.FgCyan, color.Bold))
	}
	return catalogs, r, tw, nil
}

func (v *viewer) view(path string) error {
	catalogs, r, tw, err := v.setup(path)
	if err != nil {
		return err
	}

	found := false
	for _, c := range catalogs {
		if err := output.WriteRecordSummary(v.out, c); err != nil {
			return err
		}
		if c.Len() == 0 {
			continue
		}

		i, ok, err := v.selection(c)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		found = true
		fmt.Fprintf(v.out, "You selected: %d\n\n", i)

		rep, err := r.Render(c, i)
		if err != nil {
			return err
		}
		if err := tw.Write(rep); err != nil {
			return err
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if v.proteinID != "" && !found {
		return fmt.Errorf("protein_id %q not found in %s", v.proteinID, path)
	}
	return nil
}

// selection picks the gene of c to render. ok is false when --id names a
// gene of another record.
func (v *viewer) selection(c *catalog.Catalog) (i int, ok bool, err error) {
	switch {
	case v.proteinID != "":
		i, ok = c.FindByID(v.proteinID)
		return i, ok, nil
	case v.gene >= 0:
		if _, err := c.Gene(v.gene); err != nil {
			return 0, false, err
		}
		return v.gene, true, nil
	}

	fmt.Fprintf(v.out, "\nWhich would you like to view [0-%d]: ", c.Len()-1)
	line, err := v.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, false, fmt.Errorf("reading selection: %w", err)
	}

	answer := strings.TrimSpace(line)
	i, err = strconv.Atoi(answer)
	if err != nil || i < 0 {
		return 0, false, fmt.Errorf("invalid input: '%s'", answer)
	}
	if _, err := c.Gene(i); err != nil {
		return 0, false, err
	}
	return i, true, nil
}

// viewAll renders every gene on the worker pool. Genes that fail are
// logged and skipped; the run then reports how many failed.
func (v *viewer) viewAll(path string) error {
	catalogs, r, tw, err := v.setup(path)
	if err != nil {
		return err
	}

	total := 0
	for _, c := range catalogs {
		if err := output.WriteRecordSummary(v.out, c); err != nil {
			return err
		}
		total += c.Len()
	}
	fmt.Fprintln(v.out)

	failed := 0
	err = r.RenderAll(catalogs, v.opts.workers, func(res render.WorkResult) error {
		if res.Err != nil {
			failed++
			return nil
		}
		return tw.Write(res.Report)
	})
	if ferr := tw.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d genes failed to render", failed, total)
	}
	return nil
}
