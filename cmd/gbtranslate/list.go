package main

import (
	"github.com/spf13/cobra"

	"github.com/inodb/gbtranslate/internal/output"
)

func newListCmd() *cobra.Command {
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "list [file]",
		Short: "List the coding sequences of a GenBank file as tab-delimited text",
		Example: `  gbtranslate list nc_005816.gb
  gbtranslate list --no-header --skip-incomplete genome.gb.gz | cut -f3`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd, loadBindings); err != nil {
				return err
			}

			catalogs, err := loadCatalogs(inputPath(args), loadOptions(cmd.InOrStdin()))
			if err != nil {
				return err
			}

			tw := output.NewTabWriter(cmd.OutOrStdout())
			if !noHeader {
				if err := tw.WriteHeader(); err != nil {
					return err
				}
			}
			for _, c := range catalogs {
				if err := tw.Write(c); err != nil {
					return err
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the header line")
	addLoadFlags(cmd)

	return cmd
}
