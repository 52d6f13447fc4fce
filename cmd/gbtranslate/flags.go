package main

import "github.com/spf13/cobra"

// Flag to config key bindings shared by commands that read GenBank files.
var loadBindings = map[string]string{
	keySkipIncomplete: "skip-incomplete",
	keyCacheEnabled:   "cache",
}

// Flag to config key bindings shared by commands that translate genes.
var renderBindings = map[string]string{
	keyPermissive: "permissive",
	keyOneLetter:  "one-letter",
	keyWorkers:    "workers",
}

func addLoadFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("skip-incomplete", false, "Skip CDS features without protein_id or product instead of failing")
	cmd.Flags().Bool("cache", false, "Cache parsed records (see cache.dir)")
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("permissive", false, "Read N as A instead of rejecting it")
	cmd.Flags().Bool("one-letter", false, "Show one-letter instead of three-letter amino acid codes")
	cmd.Flags().Int("workers", 0, "Worker goroutines for multi-gene rendering (0 = all CPUs)")
}
