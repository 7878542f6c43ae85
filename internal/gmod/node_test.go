package gmod

import (
	"testing"

	"github.com/harborlabs/vis/internal/location"
)

func mustLoc(t *testing.T, s string) location.Location {
	t.Helper()
	loc, ok := location.TryParse(s)
	if !ok {
		t.Fatalf("invalid location %q", s)
	}
	return loc
}

func node(t *testing.T, g *Gmod, code string) GmodNode {
	t.Helper()
	n, ok := g.TryNode(code)
	if !ok {
		t.Fatalf("node %q missing from fixture", code)
	}
	return *n
}

func TestNodePredicates(t *testing.T) {
	g := testGmod(t)
	cases := []struct {
		code                                 string
		leaf, function, assetFunction        bool
		productType, selection, composition  bool
	}{
		{code: "VE", function: true, assetFunction: true},
		{code: "400a", function: true, assetFunction: true},
		{code: "411.1", leaf: true, function: true, assetFunction: true},
		{code: "C101", productType: true},
		{code: "C101.3", leaf: true, function: true},
		{code: "412i", function: true, assetFunction: true, composition: true},
		{code: "CS1", selection: true},
	}
	for _, tc := range cases {
		n := node(t, g, tc.code)
		if n.IsLeafNode() != tc.leaf {
			t.Errorf("%s: IsLeafNode = %v, want %v", tc.code, n.IsLeafNode(), tc.leaf)
		}
		if n.IsFunctionNode() != tc.function {
			t.Errorf("%s: IsFunctionNode = %v, want %v", tc.code, n.IsFunctionNode(), tc.function)
		}
		if n.IsAssetFunctionNode() != tc.assetFunction {
			t.Errorf("%s: IsAssetFunctionNode = %v, want %v", tc.code, n.IsAssetFunctionNode(), tc.assetFunction)
		}
		if n.IsProductType() != tc.productType {
			t.Errorf("%s: IsProductType = %v, want %v", tc.code, n.IsProductType(), tc.productType)
		}
		if n.IsProductSelection() != tc.selection {
			t.Errorf("%s: IsProductSelection = %v, want %v", tc.code, n.IsProductSelection(), tc.selection)
		}
		if n.IsFunctionComposition() != tc.composition {
			t.Errorf("%s: IsFunctionComposition = %v, want %v", tc.code, n.IsFunctionComposition(), tc.composition)
		}
	}
}

func TestIsIndividualizable(t *testing.T) {
	g := testGmod(t)

	if node(t, g, "411").IsIndividualizable(false, false) {
		t.Error("groups are never individualizable")
	}
	if node(t, g, "CS1").IsIndividualizable(true, true) {
		t.Error("selections are never individualizable")
	}
	if node(t, g, "C101").IsIndividualizable(true, true) {
		t.Error("product types are never individualizable")
	}
	if !node(t, g, "411.1").IsIndividualizable(false, false) {
		t.Error("function leaves are individualizable")
	}
	if !node(t, g, "412i").IsIndividualizable(false, false) {
		t.Error("compositions with an 'i' code are individualizable on their own")
	}

	// A composition without the 'i' code suffix needs target or set context.
	comp := GmodNode{code: "412x", metadata: newNodeMetadata(rec("ASSET FUNCTION", "COMPOSITION", "412x", ""))}
	if comp.IsIndividualizable(false, false) {
		t.Error("plain composition alone should not be individualizable")
	}
	if !comp.IsIndividualizable(true, false) {
		t.Error("plain composition as target should be individualizable")
	}
	if !comp.IsIndividualizable(false, true) {
		t.Error("plain composition inside a set should be individualizable")
	}
}

func TestIsMappable(t *testing.T) {
	g := testGmod(t)
	cases := map[string]bool{
		"400a":   false, // grouping code
		"411.1":  false, // has a product type assignment
		"413":    false,
		"414":    false, // has a product selection assignment
		"CS1":    false,
		"421":    true,
		"C101.3": true,
	}
	for code, want := range cases {
		if got := node(t, g, code).IsMappable(); got != want {
			t.Errorf("%s: IsMappable = %v, want %v", code, got, want)
		}
	}
}

func TestWithLocationIsCopyOnWrite(t *testing.T) {
	g := testGmod(t)
	loc := mustLoc(t, "P")

	n := node(t, g, "411.1")
	located := n.WithLocation(loc)

	if _, has := n.Location(); has {
		t.Error("WithLocation must not touch the receiver")
	}
	canonical := node(t, g, "411.1")
	if _, has := canonical.Location(); has {
		t.Error("canonical arena node must never carry a location")
	}

	got, has := located.Location()
	if !has || got != loc {
		t.Errorf("located node location = %v (%v), want %v", got, has, loc)
	}
	if located.String() != "411.1-P" {
		t.Errorf("String = %q, want 411.1-P", located.String())
	}
	if located.Equals(canonical) {
		t.Error("located copy must not equal the unlocated node")
	}
	if !located.WithoutLocation().Equals(canonical) {
		t.Error("stripping the location must restore equality")
	}
}

func TestTryWithLocationString(t *testing.T) {
	g := testGmod(t)
	n := node(t, g, "411.1")

	located := n.TryWithLocationString("2S")
	if located.String() != "411.1-2S" {
		t.Errorf("String = %q, want 411.1-2S", located.String())
	}

	unchanged := n.TryWithLocationString("bogus")
	if !unchanged.Equals(n) {
		t.Error("invalid location string must leave the node unchanged")
	}
}

func TestNodeEquality(t *testing.T) {
	g := testGmod(t)
	loc := mustLoc(t, "2P")

	a := node(t, g, "412.1").WithLocation(loc)
	b := node(t, g, "412.1").WithLocation(loc)
	if !a.Equals(b) {
		t.Error("same code and location must be equal")
	}
	if a.Equals(node(t, g, "412.1")) {
		t.Error("location must participate in equality")
	}
	if a.Equals(node(t, g, "411.1").WithLocation(loc)) {
		t.Error("code must participate in equality")
	}
}

func TestParentsAndChildren(t *testing.T) {
	g := testGmod(t)

	children := node(t, g, "411").Children()
	codes := make([]string, len(children))
	for i, c := range children {
		codes[i] = c.Code()
	}
	if len(codes) != 2 || codes[0] != "411.1" || codes[1] != "421" {
		t.Errorf("children of 411 = %v, want [411.1 421]", codes)
	}

	parents := node(t, g, "421").Parents()
	if len(parents) != 2 {
		t.Fatalf("421 should have two parents, got %d", len(parents))
	}

	p := node(t, g, "411")
	if !p.IsChild(node(t, g, "411.1")) {
		t.Error("411.1 is a child of 411")
	}
	if p.IsChild(node(t, g, "412.1")) {
		t.Error("412.1 is not a child of 411")
	}
}

func TestIsChildAcrossTrees(t *testing.T) {
	g1 := testGmod(t)
	g2 := testGmod(t)
	if node(t, g1, "411").IsChild(node(t, g2, "411.1")) {
		t.Error("membership must not cross tree instances")
	}
}

func TestProductTypeAccessor(t *testing.T) {
	g := testGmod(t)

	pt, ok := node(t, g, "411.1").ProductType()
	if !ok || pt.Code() != "C101" {
		t.Errorf("ProductType(411.1) = %v, %v; want C101", pt, ok)
	}
	if _, ok := node(t, g, "411").ProductType(); ok {
		t.Error("411 has no product type assignment")
	}
	if _, ok := node(t, g, "414").ProductType(); ok {
		t.Error("a selection child is not a product type assignment")
	}

	sel, ok := node(t, g, "414").ProductSelection()
	if !ok || sel.Code() != "CS1" {
		t.Errorf("ProductSelection(414) = %v, %v; want CS1", sel, ok)
	}
	if _, ok := node(t, g, "411.1").ProductSelection(); ok {
		t.Error("a type child is not a product selection assignment")
	}
}
