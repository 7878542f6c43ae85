package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var tableTo string

func init() {
	tableCmd.Flags().StringVar(&tableTo, "to", "", "Target version the table converts into, e.g. 3-7a")
	rootCmd.AddCommand(tableCmd)
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the conversion table into one version",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseVersionFlag(tableTo)
		if err != nil {
			return err
		}
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		engine, err := cat.Versioning()
		if err != nil {
			return err
		}

		table, ok := engine.Table(target)
		if !ok {
			return fmt.Errorf("no conversion table into %s", target)
		}
		sources := make([]string, 0, len(table))
		for source := range table {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		out := cmd.OutOrStdout()
		for _, source := range sources {
			entry := table[source]
			fmt.Fprintf(out, "%s  ops=%s", source, entry.Operations)
			if entry.Target != "" {
				fmt.Fprintf(out, " target=%s", entry.Target)
			}
			if entry.OldAssignment != "" || entry.NewAssignment != "" {
				fmt.Fprintf(out, " assignment=%s->%s", entry.OldAssignment, entry.NewAssignment)
			}
			if entry.DeleteAssignment {
				fmt.Fprint(out, " assignment-deleted")
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}
