// Package gmod implements the generic product model: the per-version
// classification tree, its nodes, and the path representation used to name a
// concrete piece of equipment on board.
package gmod

import (
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/vis"
)

// rootCode is the designated root of every version's tree.
const rootCode = "VE"

// arenaEntry is one slot of the node arena. Link data lives here rather than
// on GmodNode so that location-bearing node copies stay cheap values; all
// parent/child references are arena indices resolved through the owning Gmod.
type arenaEntry struct {
	node      GmodNode
	parentIdx []uint32
	childIdx  []uint32
	childSet  *roaring.Bitmap
}

// Gmod owns every canonical node of one standard version. It is built once
// from a published pack and immutable afterward, so concurrent reads need no
// locking.
type Gmod struct {
	version vis.Version
	arena   []arenaEntry
	index   map[string]uint32
	rootIdx uint32
}

// New builds the tree for one version from its flat node list and relation
// list. Any relation naming an unknown code, a duplicate node code, or the
// absence of the root code is a fatal load-time error.
func New(version vis.Version, pack *api.GmodPack) (*Gmod, error) {
	g := &Gmod{
		version: version,
		arena:   make([]arenaEntry, 0, len(pack.Items)),
		// Full key set is known up front: size once, no rehashing.
		index: make(map[string]uint32, len(pack.Items)),
	}

	for _, rec := range pack.Items {
		if rec.Code == "" {
			return nil, invariantf("gmod %s: node record without a code", version)
		}
		if _, dup := g.index[rec.Code]; dup {
			return nil, invariantf("gmod %s: duplicate node code %q", version, rec.Code)
		}
		idx := uint32(len(g.arena))
		g.arena = append(g.arena, arenaEntry{node: GmodNode{
			gmod:     g,
			idx:      idx,
			code:     rec.Code,
			metadata: newNodeMetadata(rec),
		}})
		g.index[rec.Code] = idx
	}

	for _, rel := range pack.Relations {
		if len(rel) != 2 {
			return nil, invariantf("gmod %s: relation %v is not a pair", version, rel)
		}
		parentIdx, ok := g.index[rel[0]]
		if !ok {
			return nil, invariantf("gmod %s: relation parent %q is not a known node", version, rel[0])
		}
		childIdx, ok := g.index[rel[1]]
		if !ok {
			return nil, invariantf("gmod %s: relation child %q is not a known node", version, rel[1])
		}
		g.arena[parentIdx].childIdx = append(g.arena[parentIdx].childIdx, childIdx)
		g.arena[childIdx].parentIdx = append(g.arena[childIdx].parentIdx, parentIdx)
	}

	rootIdx, ok := g.index[rootCode]
	if !ok {
		return nil, invariantf("gmod %s: root node %q missing", version, rootCode)
	}
	g.rootIdx = rootIdx

	g.trim()
	return g, nil
}

// trim finalizes the child-lookup acceleration structures. Runs exactly once,
// at the end of construction.
func (g *Gmod) trim() {
	for i := range g.arena {
		set := roaring.New()
		for _, c := range g.arena[i].childIdx {
			set.Add(c)
		}
		g.arena[i].childSet = set
	}
}

// Version returns the standard version this tree belongs to.
func (g *Gmod) Version() vis.Version { return g.version }

// Root returns the designated root node.
func (g *Gmod) Root() *GmodNode { return &g.arena[g.rootIdx].node }

// Len returns the number of canonical nodes in the arena.
func (g *Gmod) Len() int { return len(g.arena) }

// Node looks a node up by code in O(1). A missing code is the recoverable
// tier: ErrNodeNotFound, never a panic.
func (g *Gmod) Node(code string) (*GmodNode, error) {
	idx, ok := g.index[code]
	if !ok {
		return nil, fmt.Errorf("gmod %s: %q: %w", g.version, code, ErrNodeNotFound)
	}
	return &g.arena[idx].node, nil
}

// TryNode is the ok-form of Node.
func (g *Gmod) TryNode(code string) (*GmodNode, bool) {
	idx, ok := g.index[code]
	if !ok {
		return nil, false
	}
	return &g.arena[idx].node, true
}

func (g *Gmod) at(i uint32) *GmodNode { return &g.arena[i].node }

func (g *Gmod) resolve(idx []uint32) []*GmodNode {
	if len(idx) == 0 {
		return nil
	}
	nodes := make([]*GmodNode, len(idx))
	for i, j := range idx {
		nodes[i] = &g.arena[j].node
	}
	return nodes
}

// IsPotentialParent reports whether a node type may anchor an
// individualization set.
func IsPotentialParent(nodeType string) bool {
	switch nodeType {
	case "SELECTION", "GROUP", "LEAF":
		return true
	}
	return false
}

// IsProductTypeAssignment reports whether the pair forms a function node's
// normal assignment to a product type.
func IsProductTypeAssignment(parent, child *GmodNode) bool {
	if parent == nil || child == nil {
		return false
	}
	if !strings.Contains(parent.metadata.Category, "FUNCTION") {
		return false
	}
	return child.metadata.Category == "PRODUCT" && child.metadata.Type == "TYPE"
}

// IsProductSelectionAssignment reports whether the pair forms a function
// node's assignment to a product selection.
func IsProductSelectionAssignment(parent, child *GmodNode) bool {
	if parent == nil || child == nil {
		return false
	}
	if !strings.Contains(parent.metadata.Category, "FUNCTION") {
		return false
	}
	return strings.Contains(child.metadata.Category, "PRODUCT") && child.metadata.Type == "SELECTION"
}

// PathExistsBetween looks for a connecting chain from the deepest candidate
// ancestor down to `to`. On success it returns the nodes between the
// candidates and the target, in order, that a caller must splice in to make
// the path structurally valid. Only the conversion engine uses this.
func (g *Gmod) PathExistsBetween(fromPath []GmodNode, to GmodNode) (bool, []GmodNode) {
	start := g.Root()
	for i := len(fromPath) - 1; i >= 0; i-- {
		if fromPath[i].IsAssetFunctionNode() {
			if canonical, ok := g.TryNode(fromPath[i].code); ok {
				start = canonical
			}
			break
		}
	}

	fromCodes := make(map[string]struct{}, len(fromPath))
	for _, n := range fromPath {
		fromCodes[n.code] = struct{}{}
	}

	var remaining []GmodNode
	found := false
	g.TraverseFrom(start, func(parents []*GmodNode, node *GmodNode) TraversalStatus {
		if node.code != to.code {
			return TraverseContinue
		}

		// Complete the chain upward to the root along single-parent links.
		chain := make([]*GmodNode, 0, len(parents)+4)
		chain = append(chain, parents...)
		for len(chain) > 0 && !chain[0].IsRoot() {
			ps := chain[0].Parents()
			if len(ps) != 1 {
				// Ambiguous prefix for this occurrence; keep searching.
				return TraverseContinue
			}
			chain = append([]*GmodNode{ps[0]}, chain...)
		}

		// Every candidate ancestor must lie on the chain.
		onChain := make(map[string]struct{}, len(chain))
		for _, n := range chain {
			onChain[n.code] = struct{}{}
		}
		for code := range fromCodes {
			if _, ok := onChain[code]; !ok {
				return TraverseContinue
			}
		}

		remaining = remaining[:0]
		for _, n := range chain {
			if _, inFrom := fromCodes[n.code]; !inFrom {
				remaining = append(remaining, *n)
			}
		}
		found = true
		return TraverseStop
	})

	return found, remaining
}
