package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harborlabs/vis/internal/gmod"
)

var (
	treeVersion string
	treeDepth   int
	treeFrom    string
)

func init() {
	treeCmd.Flags().StringVarP(&treeVersion, "version", "v", "", "Standard version, e.g. 3-7a")
	treeCmd.Flags().IntVarP(&treeDepth, "depth", "d", 0, "Limit printed depth (0 = unlimited)")
	treeCmd.Flags().StringVar(&treeFrom, "from", "", "Start at this node code instead of the root")
	rootCmd.AddCommand(treeCmd)
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the classification tree of one version",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := parseVersionFlag(treeVersion)
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

		start := g.Root()
		if treeFrom != "" {
			start, err = g.Node(treeFrom)
			if err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		g.TraverseFrom(start, func(parents []*gmod.GmodNode, node *gmod.GmodNode) gmod.TraversalStatus {
			depth := len(parents)
			if treeDepth > 0 && depth >= treeDepth {
				return gmod.TraverseSkipSubtree
			}
			fmt.Fprintf(out, "%s%s  %s\n", strings.Repeat("  ", depth), node.Code(), node.Metadata().Name)
			return gmod.TraverseContinue
		})
		return nil
	},
}
