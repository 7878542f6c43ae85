package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/resources"
	"github.com/harborlabs/vis/internal/vis"
)

var (
	packJSONDir string
	packOut     string
)

func init() {
	packCmd.Flags().StringVar(&packJSONDir, "json", "", "Directory of JSON packs to bundle")
	packCmd.Flags().StringVar(&packOut, "out", "", "Output sqlite pack file")
	rootCmd.AddCommand(packCmd)
}

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Bundle a directory of JSON packs into one sqlite pack file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if packJSONDir == "" || packOut == "" {
			return fmt.Errorf("--json and --out are required")
		}
		source := resources.NewFSSource(osfs.New(filepath.Clean(packJSONDir)), ".")

		var gmods []*api.GmodPack
		var conversions []*api.ConversionPack
		for _, v := range vis.All() {
			gmodPack, err := source.GmodPack(v)
			if errors.Is(err, resources.ErrPackNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			gmods = append(gmods, gmodPack)

			conversionPack, err := source.ConversionPack(v)
			if errors.Is(err, resources.ErrPackNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			conversions = append(conversions, conversionPack)
		}
		if len(gmods) == 0 {
			return fmt.Errorf("no gmod packs found under %s", packJSONDir)
		}

		if err := resources.WriteDB(packOut, gmods, conversions); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d gmod packs and %d conversion packs to %s\n",
			len(gmods), len(conversions), packOut)
		return nil
	},
}
