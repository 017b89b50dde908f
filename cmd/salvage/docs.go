package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var (
	docsOut    string
	docsFormat string
)

var docsCmd = &cobra.Command{
	Use:    "gen-docs",
	Short:  "Generate salvage reference documentation",
	Hidden: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := os.MkdirAll(docsOut, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		root := cmd.Root()
		switch docsFormat {
		case "markdown":
			return doc.GenMarkdownTree(root, docsOut)
		case "man":
			return doc.GenManTree(root, &doc.GenManHeader{
				Title:   "SALVAGE",
				Section: "1",
				Source:  "salvage " + version,
			}, docsOut)
		}
		return fmt.Errorf("unknown format %q (use markdown or man)", docsFormat)
	},
}

func init() {
	docsCmd.Flags().StringVar(&docsOut, "out", "docs", "directory to write generated files into")
	docsCmd.Flags().StringVar(&docsFormat, "format", "markdown", "markdown or man")
}
