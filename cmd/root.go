package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/harborlabs/vis/internal/catalog"
	"github.com/harborlabs/vis/internal/resources"
	"github.com/harborlabs/vis/internal/vis"
)

var packPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&packPath, "pack", "p", "",
		"Path to a sqlite pack file or a directory of JSON packs")
}

var rootCmd = &cobra.Command{
	Use:   "vis",
	Short: "Inspect and convert VIS generic product model data",
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openCatalog resolves --pack into a catalog: a directory becomes a JSON
// pack source, a file a sqlite pack source.
func openCatalog() (*catalog.Catalog, error) {
	if packPath == "" {
		return nil, fmt.Errorf("--pack is required")
	}
	info, err := os.Stat(packPath)
	if err != nil {
		return nil, fmt.Errorf("stat pack: %w", err)
	}

	var source catalog.Source
	if info.IsDir() {
		source = resources.NewFSSource(osfs.New(filepath.Clean(packPath)), ".")
	} else {
		db, err := resources.NewDBSource(packPath)
		if err != nil {
			return nil, err
		}
		source = db
	}
	return catalog.New(source)
}

func parseVersionFlag(s string) (vis.Version, error) {
	v, err := vis.ParseVersion(s)
	if err != nil {
		return 0, fmt.Errorf("%w (known: %s..%s)", err, vis.All()[0], vis.Latest())
	}
	return v, nil
}
