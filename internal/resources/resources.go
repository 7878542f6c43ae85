// Package resources loads published version data packs: the per-version node
// and relation tables and the per-target-version conversion tables. Two pack
// forms exist, a directory of JSON files and a single sqlite file holding the
// same JSON documents as rows.
package resources

import (
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/ohler55/ojg/oj"

	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/vis"
)

// ErrPackNotFound is returned when a version has no published pack. Missing
// conversion packs are expected for the earliest version and are not fatal.
var ErrPackNotFound = errors.New("pack not found")

// FSSource reads packs from a directory: "gmod-<version>.json" and
// "conversion-<version>.json". Any billy filesystem works; tests use memfs.
type FSSource struct {
	fs  billy.Filesystem
	dir string
}

func NewFSSource(fsys billy.Filesystem, dir string) *FSSource {
	return &FSSource{fs: fsys, dir: dir}
}

// GmodPack reads and decodes the node/relation table for one version.
func (s *FSSource) GmodPack(v vis.Version) (*api.GmodPack, error) {
	var pack api.GmodPack
	if err := s.readJSON(fmt.Sprintf("gmod-%s.json", v), &pack); err != nil {
		return nil, err
	}
	if pack.VisVersion != v.String() {
		return nil, fmt.Errorf("gmod pack for %s declares version %q", v, pack.VisVersion)
	}
	return &pack, nil
}

// ConversionPack reads and decodes the conversion table into one target
// version.
func (s *FSSource) ConversionPack(target vis.Version) (*api.ConversionPack, error) {
	var pack api.ConversionPack
	if err := s.readJSON(fmt.Sprintf("conversion-%s.json", target), &pack); err != nil {
		return nil, err
	}
	if pack.VisVersion != target.String() {
		return nil, fmt.Errorf("conversion pack for %s declares version %q", target, pack.VisVersion)
	}
	return &pack, nil
}

func (s *FSSource) readJSON(name string, out any) error {
	full := path.Join(s.dir, name)
	f, err := s.fs.Open(full)
	if err != nil {
		return fmt.Errorf("%s: %w", full, ErrPackNotFound)
	}
	defer func() { _ = f.Close() }() // safe to ignore

	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", full, err)
	}
	if err := oj.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", full, err)
	}
	return nil
}
