package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/runnercheck/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the endpoints that a scan probes",
	Run: func(cmd *cobra.Command, args []string) {
		printCatalog(cmd, catalog.Default())
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func printCatalog(cmd *cobra.Command, cat catalog.Catalog) {
	out := cmd.OutOrStdout()
	for _, c := range cat {
		fmt.Fprintf(out, "%s\n", c.Name)
		for _, p := range c.Patterns {
			if !p.IsWildcard() {
				fmt.Fprintf(out, "  %s\n", p)
				continue
			}
			fmt.Fprintf(out, "  %s -> %s\n", p, strings.Join(catalog.Expand(p), ", "))
		}
	}
	fmt.Fprintf(out, "\n%d hosts in %d categories\n", cat.HostCount(), len(cat))
}
