package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlabs/vis/internal/gmod"
)

var (
	pathVersion string
	pathFull    bool
)

func init() {
	pathCmd.Flags().StringVarP(&pathVersion, "version", "v", "", "Standard version, e.g. 3-7a")
	pathCmd.Flags().BoolVar(&pathFull, "full", false, "Parse as a fully-qualified path")
	rootCmd.AddCommand(pathCmd)
}

var pathCmd = &cobra.Command{
	Use:   "path <path-string>",
	Short: "Parse and validate a path, printing its individualizable sets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := parseVersionFlag(pathVersion)
		if err != nil {
			return err
		}
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		g, err := cat.Gmod(version)
		if err != nil {
			return err
		}

		var path gmod.GmodPath
		var issues gmod.ParseErrors
		if pathFull {
			path, issues = gmod.ParseFullPathReport(g, args[0])
		} else {
			path, issues = gmod.ParsePathReport(g, args[0])
		}
		if len(issues) > 0 {
			for _, issue := range issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", issue)
			}
			return fmt.Errorf("%q is not a valid path in %s", args[0], version)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path:  %s\n", path)
		fmt.Fprintf(out, "full:  %s\n", path.FullPathString())

		sets, err := path.IndividualizableSets()
		if err != nil {
			return err
		}
		for _, set := range sets {
			loc := "-"
			if set.HasLocation() {
				loc = set.Location.String()
			}
			codes := make([]string, 0, set.End-set.Start+1)
			for _, n := range set.Nodes() {
				codes = append(codes, n.Code())
			}
			fmt.Fprintf(out, "set %s: nodes=%v location=%s\n", set.Key(), codes, loc)
		}
		return nil
	},
}
