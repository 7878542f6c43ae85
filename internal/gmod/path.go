package gmod

import (
	"strings"

	"github.com/harborlabs/vis/internal/location"
)

// GmodPath names one piece of equipment: the ordered ancestor chain from the
// tree root plus the target node. Nodes may carry location overlays, subject
// to the individualization-set rules.
type GmodPath struct {
	gmod    *Gmod
	parents []GmodNode
	node    GmodNode
}

// NewPath builds a path from an ancestor chain and target. With skipVerify
// set, the structural and location checks are bypassed for callers that have
// already established validity (parsing, conversion).
func NewPath(g *Gmod, parents []GmodNode, node GmodNode, skipVerify bool) (GmodPath, error) {
	p := GmodPath{gmod: g, parents: parents, node: node}
	if skipVerify {
		return p, nil
	}
	if !isStructurallyValid(parents, node) {
		return GmodPath{}, invariantf("gmod %s: ancestor chain to %s is not a valid parent-child sequence",
			g.Version(), node.code)
	}
	if err := verifyLocations(parents, node); err != nil {
		return GmodPath{}, err
	}
	return p, nil
}

// isStructurallyValid checks invariant 1: consecutive entries form
// parent-child edges and the chain starts at the root. A root-only path
// (no parents, target is the root) is valid.
func isStructurallyValid(parents []GmodNode, node GmodNode) bool {
	if len(parents) == 0 {
		return node.IsRoot()
	}
	if !parents[0].IsRoot() {
		return false
	}
	for i := 0; i+1 < len(parents); i++ {
		if !parents[i].IsChild(parents[i+1]) {
			return false
		}
	}
	return parents[len(parents)-1].IsChild(node)
}

// IsValidSequence reports whether an ancestor chain and target satisfy the
// structural path invariant. The conversion engine uses it to test candidate
// reconstructions.
func IsValidSequence(parents []GmodNode, node GmodNode) bool {
	return isStructurallyValid(parents, node)
}

// verifyLocations re-derives the individualization sets and checks that the
// given locations agree with them: every location-bearing node sits in a set
// and every set carries one consistent value.
func verifyLocations(parents []GmodNode, node GmodNode) error {
	sets, err := detectSets(parents, node)
	if err != nil {
		return err
	}
	scratch := make([]GmodNode, len(parents))
	copy(scratch, parents)
	normalized, err := applySets(sets, scratch, node)
	if err != nil {
		return err
	}
	for i := range scratch {
		if scratch[i].location != parents[i].location {
			return invariantf("node %s location %s disagrees with its individualization set",
				parents[i].code, parents[i].location)
		}
	}
	if normalized.location != node.location {
		return invariantf("node %s location %s disagrees with its individualization set",
			node.code, node.location)
	}
	return nil
}

// Gmod returns the owning tree.
func (p GmodPath) Gmod() *Gmod { return p.gmod }

// Node returns the target node.
func (p GmodPath) Node() GmodNode { return p.node }

// Parents returns the ancestor chain, root first. The slice is shared; do
// not mutate it.
func (p GmodPath) Parents() []GmodNode { return p.parents }

// Len is the number of nodes including the target.
func (p GmodPath) Len() int { return len(p.parents) + 1 }

// NodeAt returns the node at depth: parents first, the target last.
func (p GmodPath) NodeAt(depth int) GmodNode {
	return nodeAt(depth, p.parents, p.node)
}

// GetFullPath returns every node root-inclusive, target last.
func (p GmodPath) GetFullPath() []GmodNode {
	full := make([]GmodNode, 0, p.Len())
	full = append(full, p.parents...)
	full = append(full, p.node)
	return full
}

// Equals compares node-by-node, by (code, location).
func (p GmodPath) Equals(other GmodPath) bool {
	if len(p.parents) != len(other.parents) {
		return false
	}
	for i := range p.parents {
		if !p.parents[i].Equals(other.parents[i]) {
			return false
		}
	}
	return p.node.Equals(other.node)
}

// String renders the short form: leaf-node parents and the target,
// slash-delimited, each "code" or "code-location". The short parser
// rebuilds everything above the first segment along unique parent links,
// so when a multi-parent node sits above the first leaf segment its own
// parent is kept too, anchoring the search below the fork.
func (p GmodPath) String() string {
	keep := make([]bool, p.Len())
	keep[len(p.parents)] = true
	for i, parent := range p.parents {
		if parent.IsLeafNode() {
			keep[i] = true
		}
	}
	first := 0
	for !keep[first] {
		first++
	}
	for depth := 1; depth <= first; depth++ {
		if len(p.NodeAt(depth).Parents()) > 1 {
			keep[depth-1] = true
			break
		}
	}

	var sb strings.Builder
	for i := 0; i < p.Len(); i++ {
		if !keep[i] {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(p.NodeAt(i).String())
	}
	return sb.String()
}

// FullPathString renders the fully-qualified form, every node from the root.
func (p GmodPath) FullPathString() string {
	var sb strings.Builder
	for _, parent := range p.parents {
		sb.WriteString(parent.String())
		sb.WriteByte('/')
	}
	sb.WriteString(p.node.String())
	return sb.String()
}

// IndividualizableSet is one contiguous range of a valid path that is jointly
// individualized: its nodes carry the same (possibly absent) location.
type IndividualizableSet struct {
	Start    int
	End      int
	Location location.Location

	path GmodPath
}

// HasLocation reports whether the set carries a location.
func (s IndividualizableSet) HasLocation() bool { return !s.Location.IsZero() }

// Key identifies the set by the last node's code in the range.
func (s IndividualizableSet) Key() string { return s.path.NodeAt(s.End).code }

// Nodes returns the path nodes in the range.
func (s IndividualizableSet) Nodes() []GmodNode {
	nodes := make([]GmodNode, 0, s.End-s.Start+1)
	for i := s.Start; i <= s.End; i++ {
		nodes = append(nodes, s.path.NodeAt(i))
	}
	return nodes
}

// IndividualizableSets re-derives the jointly-individualized ranges of an
// already-valid path. Downstream query and versioning code reads locations
// through this accessor rather than re-running the scan itself.
func (p GmodPath) IndividualizableSets() ([]IndividualizableSet, error) {
	sets, err := detectSets(p.parents, p.node)
	if err != nil {
		return nil, err
	}
	out := make([]IndividualizableSet, len(sets))
	for i, set := range sets {
		out[i] = IndividualizableSet{Start: set.start, End: set.end, Location: set.loc, path: p}
	}
	return out, nil
}

// GetNormalAssignmentName resolves the remapped assignment display name for
// the node at nodeDepth against the deepest path node it names.
func (p GmodPath) GetNormalAssignmentName(nodeDepth int) (string, bool) {
	names := p.NodeAt(nodeDepth).metadata.NormalAssignmentNames
	if len(names) == 0 {
		return "", false
	}
	for i := p.Len() - 1; i >= 0; i-- {
		if name, ok := names[p.NodeAt(i).code]; ok {
			return name, true
		}
	}
	return "", false
}

// CommonName is a human-facing name at one path depth.
type CommonName struct {
	Depth int
	Name  string
}

// CommonNames lists the display names of the path's function leaf nodes and
// target, applying any ancestor's assignment-name remapping.
func (p GmodPath) CommonNames() []CommonName {
	var out []CommonName
	for depth := 0; depth < p.Len(); depth++ {
		node := p.NodeAt(depth)
		isTarget := depth == len(p.parents)
		if !node.IsFunctionNode() || (!node.IsLeafNode() && !isTarget) {
			continue
		}
		name := node.metadata.Name
		if node.metadata.CommonName != nil {
			name = *node.metadata.CommonName
		}
		for j := depth - 1; j >= 0; j-- {
			if mapped, ok := p.NodeAt(j).metadata.NormalAssignmentNames[node.code]; ok {
				name = mapped
				break
			}
		}
		out = append(out, CommonName{Depth: depth, Name: name})
	}
	return out
}
