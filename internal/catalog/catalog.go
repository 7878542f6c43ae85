// Package catalog is the explicit per-process registry of built version
// artifacts. It replaces any notion of global caches: construct one Catalog,
// share it by reference, and every consumer reads through it.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/gmod"
	"github.com/harborlabs/vis/internal/gmodversioning"
	"github.com/harborlabs/vis/internal/resources"
	"github.com/harborlabs/vis/internal/vis"
)

// Source supplies published pack data per version. The resource layer
// implements it for JSON directories and sqlite files; tests implement it
// over in-memory fixtures.
type Source interface {
	GmodPack(v vis.Version) (*api.GmodPack, error)
	ConversionPack(target vis.Version) (*api.ConversionPack, error)
}

// Catalog builds trees and the conversion engine on first use and caches
// them. Built artifacts are immutable, so concurrent readers share them
// freely; only construction is synchronized.
type Catalog struct {
	source Source
	gmods  *lru.Cache[vis.Version, *gmod.Gmod]

	mu         sync.Mutex
	versioning *gmodversioning.Versioning
}

// New creates a catalog over the given source.
func New(source Source) (*Catalog, error) {
	cache, err := lru.New[vis.Version, *gmod.Gmod](len(vis.All()))
	if err != nil {
		return nil, err
	}
	return &Catalog{source: source, gmods: cache}, nil
}

// Gmod returns the built tree for a version, loading and building it on
// first use.
func (c *Catalog) Gmod(v vis.Version) (*gmod.Gmod, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("invalid vis version %d", int(v))
	}
	if g, ok := c.gmods.Get(v); ok {
		return g, nil
	}
	pack, err := c.source.GmodPack(v)
	if err != nil {
		return nil, fmt.Errorf("load gmod %s: %w", v, err)
	}
	g, err := gmod.New(v, pack)
	if err != nil {
		return nil, err
	}
	// Concurrent first builds may race; both results are equivalent and
	// immutable, so last-write-wins is fine.
	c.gmods.Add(v, g)
	return g, nil
}

// Versioning returns the conversion engine, loading every published
// conversion pack on first use. Versions without a pack convert with
// unchanged codes.
func (c *Catalog) Versioning() (*gmodversioning.Versioning, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versioning != nil {
		return c.versioning, nil
	}

	var packs []*api.ConversionPack
	for _, v := range vis.All()[1:] {
		pack, err := c.source.ConversionPack(v)
		if errors.Is(err, resources.ErrPackNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load conversion pack %s: %w", v, err)
		}
		packs = append(packs, pack)
	}

	engine, err := gmodversioning.New(c, packs)
	if err != nil {
		return nil, err
	}
	c.versioning = engine
	return engine, nil
}

// ConvertNode migrates a node between versions through the cached engine.
func (c *Catalog) ConvertNode(source vis.Version, node gmod.GmodNode, target vis.Version) (gmod.GmodNode, bool, error) {
	engine, err := c.Versioning()
	if err != nil {
		return gmod.GmodNode{}, false, err
	}
	return engine.ConvertNode(source, node, target)
}

// ConvertPath migrates a path between versions through the cached engine.
func (c *Catalog) ConvertPath(source vis.Version, path gmod.GmodPath, target vis.Version) (gmod.GmodPath, bool, error) {
	engine, err := c.Versioning()
	if err != nil {
		return gmod.GmodPath{}, false, err
	}
	return engine.ConvertPath(source, path, target)
}
