package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harborlabs/vis/internal/gmod"
)

var (
	convertFrom string
	convertTo   string
	convertFull bool
)

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Source version, e.g. 3-6a")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Target version, e.g. 3-7a")
	convertCmd.Flags().BoolVar(&convertFull, "full", false, "Parse the input as a fully-qualified path")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <path-string>",
	Short: "Migrate a path from one version of the standard to another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := parseVersionFlag(convertFrom)
		if err != nil {
			return err
		}
		target, err := parseVersionFlag(convertTo)
		if err != nil {
			return err
		}
		cat, err := openCatalog()
		if err != nil {
			return err
		}
		g, err := cat.Gmod(source)
		if err != nil {
			return err
		}

		var path gmod.GmodPath
		if convertFull {
			path, err = gmod.ParseFullPath(g, args[0])
		} else {
			path, err = gmod.ParsePath(g, args[0])
		}
		if err != nil {
			return fmt.Errorf("parse %q in %s: %w", args[0], source, err)
		}

		converted, ok, err := cat.ConvertPath(source, path, target)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%q has no representation in %s", args[0], target)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", converted.FullPathString())
		return nil
	},
}
