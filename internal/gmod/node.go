package gmod

import (
	"strings"

	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/location"
)

// NodeMetadata is the shared descriptive data of a node. Classification
// flags are resolved once from the category/type strings when the metadata
// is built; the predicates on GmodNode just read them.
type NodeMetadata struct {
	Category              string
	Type                  string
	Name                  string
	CommonName            *string
	Definition            *string
	CommonDefinition      *string
	InstallSubstructure   *bool
	NormalAssignmentNames map[string]string

	fullType            string
	leaf                bool
	functionNode        bool
	assetFunction       bool
	asset               bool
	productType         bool
	productSelection    bool
	functionComposition bool
}

func newNodeMetadata(rec api.GmodNodeRecord) NodeMetadata {
	m := NodeMetadata{
		Category:              rec.Category,
		Type:                  rec.Type,
		Name:                  rec.Name,
		CommonName:            rec.CommonName,
		Definition:            rec.Definition,
		CommonDefinition:      rec.CommonDefinition,
		InstallSubstructure:   rec.InstallSubstructure,
		NormalAssignmentNames: rec.NormalAssignmentNames,
	}
	m.fullType = m.Category + " " + m.Type
	m.leaf = m.fullType == "ASSET FUNCTION LEAF" || m.fullType == "PRODUCT FUNCTION LEAF"
	m.functionNode = m.Category != "PRODUCT" && m.Category != "ASSET"
	m.assetFunction = m.Category == "ASSET FUNCTION"
	m.asset = m.Category == "ASSET"
	m.productType = m.Category == "PRODUCT" && m.Type == "TYPE"
	m.productSelection = m.Category == "PRODUCT" && m.Type == "SELECTION"
	m.functionComposition = (m.Category == "ASSET FUNCTION" || m.Category == "PRODUCT FUNCTION") &&
		m.Type == "COMPOSITION"
	return m
}

// FullType is the category and type joined, e.g. "ASSET FUNCTION LEAF".
func (m NodeMetadata) FullType() string { return m.fullType }

// GmodNode is one entry of the classification tree. Canonical nodes live in
// the owning Gmod's arena for the container's lifetime; copies produced by
// WithLocation are transient values. Two nodes are equal when they share a
// code and a location, regardless of which copy they are.
type GmodNode struct {
	gmod     *Gmod
	idx      uint32
	code     string
	metadata NodeMetadata
	location location.Location
}

func (n GmodNode) Code() string           { return n.code }
func (n GmodNode) Metadata() NodeMetadata { return n.metadata }

// Location returns the location overlay, if any. Canonical arena nodes
// never carry one.
func (n GmodNode) Location() (location.Location, bool) {
	return n.location, !n.location.IsZero()
}

// Equals compares by (code, location), the node identity within a version.
func (n GmodNode) Equals(other GmodNode) bool {
	return n.code == other.code && n.location == other.location
}

// WithLocation returns a value copy of n carrying loc. The canonical node
// is never mutated.
func (n GmodNode) WithLocation(loc location.Location) GmodNode {
	n.location = loc
	return n
}

// WithoutLocation returns a value copy of n with no location overlay.
func (n GmodNode) WithoutLocation() GmodNode {
	n.location = location.Location{}
	return n
}

// TryWithLocationString parses s and applies it, or returns n unchanged
// when s is not a valid location.
func (n GmodNode) TryWithLocationString(s string) GmodNode {
	if loc, ok := location.TryParse(s); ok {
		return n.WithLocation(loc)
	}
	return n
}

// String renders the node the way it appears in a path segment:
// "code" or "code-location".
func (n GmodNode) String() string {
	if n.location.IsZero() {
		return n.code
	}
	return n.code + "-" + n.location.String()
}

// IsRoot reports whether this is the tree root.
func (n GmodNode) IsRoot() bool { return n.code == rootCode }

func (n GmodNode) IsLeafNode() bool            { return n.metadata.leaf }
func (n GmodNode) IsFunctionNode() bool        { return n.metadata.functionNode }
func (n GmodNode) IsAssetFunctionNode() bool   { return n.metadata.assetFunction }
func (n GmodNode) IsAsset() bool               { return n.metadata.asset }
func (n GmodNode) IsProductType() bool         { return n.metadata.productType }
func (n GmodNode) IsProductSelection() bool    { return n.metadata.productSelection }
func (n GmodNode) IsFunctionComposition() bool { return n.metadata.functionComposition }

// IsMappable reports whether the node can anchor an identifier mapping.
// Nodes with an assignment child, selections, assets, and the grouping codes
// ending in 'a' or 's' are not mappable.
func (n GmodNode) IsMappable() bool {
	if _, ok := n.ProductType(); ok {
		return false
	}
	if _, ok := n.ProductSelection(); ok {
		return false
	}
	if n.metadata.productSelection || n.metadata.asset {
		return false
	}
	switch n.code[len(n.code)-1] {
	case 'a', 's':
		return false
	}
	return true
}

// IsIndividualizable reports whether this node may carry a location.
// Eligibility depends on the node category, on whether the node is the path
// target, and on whether it sits inside a detected individualization set.
func (n GmodNode) IsIndividualizable(isTargetNode, isInSet bool) bool {
	switch {
	case n.metadata.Type == "GROUP":
		return false
	case n.metadata.Type == "SELECTION":
		return false
	case n.metadata.productType:
		return false
	case n.metadata.asset && n.metadata.Type == "TYPE":
		return false
	case n.metadata.functionComposition:
		return n.code[len(n.code)-1] == 'i' || isTargetNode || isInSet
	}
	return true
}

// Parents returns the canonical parent nodes in the owning tree.
func (n GmodNode) Parents() []*GmodNode {
	if n.gmod == nil {
		return nil
	}
	return n.gmod.resolve(n.gmod.arena[n.idx].parentIdx)
}

// Children returns the canonical child nodes in the owning tree.
func (n GmodNode) Children() []*GmodNode {
	if n.gmod == nil {
		return nil
	}
	return n.gmod.resolve(n.gmod.arena[n.idx].childIdx)
}

// IsChild reports whether other is a direct child of n, using the membership
// bitmap finalized at construction time.
func (n GmodNode) IsChild(other GmodNode) bool {
	if n.gmod == nil || other.gmod != n.gmod {
		return false
	}
	set := n.gmod.arena[n.idx].childSet
	return set != nil && set.Contains(other.idx)
}

// ProductType returns the single product-type child when this function node
// has exactly one, the "normal assignment" relation.
func (n GmodNode) ProductType() (*GmodNode, bool) {
	if n.gmod == nil || !strings.Contains(n.metadata.Category, "FUNCTION") {
		return nil, false
	}
	children := n.gmod.arena[n.idx].childIdx
	if len(children) != 1 {
		return nil, false
	}
	child := n.gmod.at(children[0])
	if child.metadata.Category != "PRODUCT" || child.metadata.Type != "TYPE" {
		return nil, false
	}
	return child, true
}

// ProductSelection returns the single product-selection child when this
// function node has exactly one.
func (n GmodNode) ProductSelection() (*GmodNode, bool) {
	if n.gmod == nil || !strings.Contains(n.metadata.Category, "FUNCTION") {
		return nil, false
	}
	children := n.gmod.arena[n.idx].childIdx
	if len(children) != 1 {
		return nil, false
	}
	child := n.gmod.at(children[0])
	if !strings.Contains(child.metadata.Category, "PRODUCT") || child.metadata.Type != "SELECTION" {
		return nil, false
	}
	return child, true
}
