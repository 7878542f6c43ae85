package gmod

import (
	"errors"
	"testing"
)

func mustParseFull(t *testing.T, g *Gmod, s string) GmodPath {
	t.Helper()
	path, err := ParseFullPath(g, s)
	if err != nil {
		t.Fatalf("ParseFullPath(%q) returned error: %v", s, err)
	}
	return path
}

func mustParseShort(t *testing.T, g *Gmod, s string) GmodPath {
	t.Helper()
	path, err := ParsePath(g, s)
	if err != nil {
		t.Fatalf("ParsePath(%q) returned error: %v", s, err)
	}
	return path
}

func TestParseFullPath_Basic(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/411/411.1")

	if path.Len() != 4 {
		t.Fatalf("Len = %d, want 4", path.Len())
	}
	if path.Node().Code() != "411.1" {
		t.Errorf("target = %s, want 411.1", path.Node().Code())
	}
	if got := path.FullPathString(); got != "VE/400a/411/411.1" {
		t.Errorf("FullPathString = %q", got)
	}
	if got := path.String(); got != "411.1" {
		t.Errorf("short form = %q, want 411.1", got)
	}
}

func TestParseFullPath_TrailingLocation(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/411/411.1-P")

	loc, has := path.Node().Location()
	if !has || loc.String() != "P" {
		t.Fatalf("target location = %v (%v), want P", loc, has)
	}
	for _, parent := range path.Parents() {
		if _, has := parent.Location(); has {
			t.Errorf("parent %s should not carry the target's location", parent.Code())
		}
	}

	sets, err := path.IndividualizableSets()
	if err != nil {
		t.Fatalf("IndividualizableSets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("sets = %d, want 1", len(sets))
	}
	set := sets[0]
	if !set.HasLocation() || set.Location.String() != "P" {
		t.Errorf("set location = %v, want P", set.Location)
	}
	if set.Key() != "411.1" {
		t.Errorf("set key = %q, want 411.1", set.Key())
	}
	nodes := set.Nodes()
	if len(nodes) != 1 || nodes[0].Code() != "411.1" {
		t.Errorf("set nodes = %v, want [411.1]", nodes)
	}
}

func TestParseFullPath_NoLocationMeansNoLocatedSets(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/411/411.1")

	sets, err := path.IndividualizableSets()
	if err != nil {
		t.Fatalf("IndividualizableSets: %v", err)
	}
	for _, set := range sets {
		if set.HasLocation() {
			t.Errorf("set ending at %s unexpectedly carries a location", set.Key())
		}
	}
}

func TestParseFullPath_LocationSpreadsOverCompositionSet(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/412/412i/412.1-P")

	if got := path.FullPathString(); got != "VE/400a/412/412i-P/412.1-P" {
		t.Fatalf("FullPathString = %q, want the location on both set members", got)
	}
	sets, err := path.IndividualizableSets()
	if err != nil {
		t.Fatalf("IndividualizableSets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("sets = %d, want 1", len(sets))
	}
	if sets[0].Start == sets[0].End {
		t.Error("the composition and its leaf should share one set")
	}
	if sets[0].Key() != "412.1" {
		t.Errorf("set key = %q, want 412.1", sets[0].Key())
	}
}

func TestParseFullPath_ConflictingLocationsInOneSet(t *testing.T) {
	g := testGmod(t)
	_, errs := ParseFullPathReport(g, "VE/400a/412/412i-P/412.1-S")
	if len(errs) == 0 {
		t.Fatal("conflicting locations in one set must fail")
	}
	if errs[0].Stage != StageLocationSets {
		t.Errorf("stage = %v, want %v", errs[0].Stage, StageLocationSets)
	}
}

func TestNormalizeLocations_GapInsideSetIsFatal(t *testing.T) {
	synth := func(category, typ, code string) GmodNode {
		return GmodNode{code: code, metadata: newNodeMetadata(rec(category, typ, code, ""))}
	}
	// A product-type node wedged between two individualizable members splits
	// the candidate run; such a sequence cannot form one set.
	parents := []GmodNode{
		synth("ASSET FUNCTION", "LEAF", "650.1"),
		synth("ASSET FUNCTION", "COMPOSITION", "650x"),
		synth("PRODUCT", "TYPE", "C601"),
	}
	target := synth("ASSET FUNCTION", "LEAF", "650.2")

	_, _, err := NormalizeLocations(parents, target)
	if !errors.Is(err, ErrInvariantViolated) {
		t.Fatalf("err = %v, want ErrInvariantViolated", err)
	}
}

func TestParseFullPath_LocationOutsideAnySet(t *testing.T) {
	g := testGmod(t)
	_, errs := ParseFullPathReport(g, "VE/400a-P/411/411.1")
	if len(errs) == 0 {
		t.Fatal("a location on a group node must fail")
	}
	if errs[0].Stage != StageLocationSets {
		t.Errorf("stage = %v, want %v", errs[0].Stage, StageLocationSets)
	}
}

func TestParseFullPath_Diagnostics(t *testing.T) {
	g := testGmod(t)

	_, errs := ParseFullPathReport(g, "VE/400a/999")
	if len(errs) != 1 || errs[0].Stage != StageNodeLookup {
		t.Errorf("unknown code: errs = %v", errs)
	}

	_, errs = ParseFullPathReport(g, "VE/411/411.1")
	if len(errs) == 0 || errs[0].Stage != StageStructure {
		t.Errorf("broken edge: errs = %v", errs)
	}

	_, errs = ParseFullPathReport(g, "400a/411/411.1")
	if len(errs) == 0 || errs[0].Stage != StageStructure {
		t.Errorf("non-root start: errs = %v", errs)
	}

	_, errs = ParseFullPathReport(g, "")
	if len(errs) == 0 || errs[0].Stage != StageSegment {
		t.Errorf("empty input: errs = %v", errs)
	}

	_, errs = ParseFullPathReport(g, "VE/400a/411/411.1-0X")
	if len(errs) == 0 || errs[0].Stage != StageLocation {
		t.Errorf("bad location: errs = %v", errs)
	}
}

func TestParseFullPath_AccumulatesMultipleIssues(t *testing.T) {
	g := testGmod(t)
	_, errs := ParseFullPathReport(g, "VE/998/999")
	if len(errs) != 2 {
		t.Fatalf("errs = %v, want both unknown codes reported", errs)
	}
}

func TestParsePath_ReconstructsPrefix(t *testing.T) {
	g := testGmod(t)
	path := mustParseShort(t, g, "411.1")
	if got := path.FullPathString(); got != "VE/400a/411/411.1" {
		t.Errorf("FullPathString = %q", got)
	}
}

func TestParsePath_DescendsFromBase(t *testing.T) {
	g := testGmod(t)
	path := mustParseShort(t, g, "411.1/C101.3")
	if got := path.FullPathString(); got != "VE/400a/411/411.1/C101/C101.3" {
		t.Errorf("FullPathString = %q", got)
	}
	if got := path.String(); got != "411.1/C101.3" {
		t.Errorf("short form = %q", got)
	}
}

func TestParsePath_LocationsSpreadAfterAssembly(t *testing.T) {
	g := testGmod(t)
	path := mustParseShort(t, g, "411.1-P/C101.3-2")
	if got := path.FullPathString(); got != "VE/400a/411/411.1-P/C101/C101.3-2" {
		t.Errorf("FullPathString = %q", got)
	}

	path = mustParseShort(t, g, "412.1-P")
	if got := path.FullPathString(); got != "VE/400a/412/412i-P/412.1-P" {
		t.Errorf("FullPathString = %q", got)
	}
	if got := path.String(); got != "412.1-P" {
		t.Errorf("short form = %q", got)
	}
}

func TestParsePath_AmbiguousPrefix(t *testing.T) {
	g := testGmod(t)
	_, errs := ParsePathReport(g, "421")
	if len(errs) == 0 || errs[0].Stage != StageStructure {
		t.Fatalf("two-parent prefix must be ambiguous, errs = %v", errs)
	}

	// Anchoring the search above the fork disambiguates it.
	path := mustParseShort(t, g, "412/421")
	if got := path.FullPathString(); got != "VE/400a/412/421" {
		t.Errorf("FullPathString = %q", got)
	}
	if got := path.String(); got != "412/421" {
		t.Errorf("short form = %q, want the parent above the fork retained", got)
	}
}

func TestParsePath_StopsAtUnmatchedLeaf(t *testing.T) {
	g := testGmod(t)
	// C101.31 sits below the leaf C101.3, whose subtree is pruned when the
	// segment does not match it.
	_, errs := ParsePathReport(g, "411.1/C101.31")
	if len(errs) == 0 || errs[0].Stage != StageNodeLookup {
		t.Fatalf("errs = %v, want no-match at lookup stage", errs)
	}
}

func TestParsePath_RoundTripsShortForm(t *testing.T) {
	g := testGmod(t)
	for _, s := range []string{"411.1", "411.1-P/C101.3", "412.1-2S", "412/421"} {
		path := mustParseShort(t, g, s)
		again := mustParseShort(t, g, path.String())
		if !path.Equals(again) {
			t.Errorf("%q: short form round trip diverged: %q", s, path.String())
		}
	}
}

func TestNewPath_Verification(t *testing.T) {
	g := testGmod(t)

	parents := []GmodNode{node(t, g, "VE"), node(t, g, "400a"), node(t, g, "411")}
	if _, err := NewPath(g, parents, node(t, g, "411.1"), false); err != nil {
		t.Fatalf("valid chain rejected: %v", err)
	}

	broken := []GmodNode{node(t, g, "VE"), node(t, g, "411")}
	if _, err := NewPath(g, broken, node(t, g, "411.1"), false); !errors.Is(err, ErrInvariantViolated) {
		t.Errorf("broken chain: err = %v, want ErrInvariantViolated", err)
	}

	mislocated := []GmodNode{node(t, g, "VE"), node(t, g, "400a").WithLocation(mustLoc(t, "P")), node(t, g, "411")}
	if _, err := NewPath(g, mislocated, node(t, g, "411.1"), false); !errors.Is(err, ErrInvariantViolated) {
		t.Errorf("mislocated chain: err = %v, want ErrInvariantViolated", err)
	}

	// skipVerify is for callers that already established validity.
	if _, err := NewPath(g, broken, node(t, g, "411.1"), true); err != nil {
		t.Errorf("skipVerify must bypass the checks, got %v", err)
	}
}

func TestPathEquals(t *testing.T) {
	g := testGmod(t)
	a := mustParseFull(t, g, "VE/400a/411/411.1-P")
	b := mustParseShort(t, g, "411.1-P")
	c := mustParseFull(t, g, "VE/400a/411/411.1-S")

	if !a.Equals(b) {
		t.Error("both forms must parse to the same path")
	}
	if a.Equals(c) {
		t.Error("locations participate in path equality")
	}
}

func TestGetFullPathAndNodeAt(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/411/411.1")

	full := path.GetFullPath()
	want := []string{"VE", "400a", "411", "411.1"}
	if len(full) != len(want) {
		t.Fatalf("GetFullPath len = %d, want %d", len(full), len(want))
	}
	for i, code := range want {
		if full[i].Code() != code {
			t.Errorf("full[%d] = %s, want %s", i, full[i].Code(), code)
		}
		if path.NodeAt(i).Code() != code {
			t.Errorf("NodeAt(%d) = %s, want %s", i, path.NodeAt(i).Code(), code)
		}
	}
}

func TestGetNormalAssignmentName(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/411/411.1/C101")

	name, ok := path.GetNormalAssignmentName(3)
	if !ok || name != "main diesel engine" {
		t.Errorf("GetNormalAssignmentName(3) = %q, %v", name, ok)
	}
	if _, ok := path.GetNormalAssignmentName(2); ok {
		t.Error("411 has no assignment names")
	}

	// Without the assignment child on the path there is nothing to resolve.
	short := mustParseFull(t, g, "VE/400a/411/411.1")
	if _, ok := short.GetNormalAssignmentName(3); ok {
		t.Error("no deeper node matches the assignment name table")
	}
}

func TestCommonNames(t *testing.T) {
	g := testGmod(t)
	path := mustParseFull(t, g, "VE/400a/411/411.1/C101/C101.3")

	names := path.CommonNames()
	if len(names) != 2 {
		t.Fatalf("CommonNames = %v, want two entries", names)
	}
	if names[0].Depth != 3 || names[0].Name != "Propulsion engine" {
		t.Errorf("names[0] = %+v, want the common name of 411.1", names[0])
	}
	if names[1].Depth != 5 || names[1].Name != "Starting system" {
		t.Errorf("names[1] = %+v, want the name of C101.3", names[1])
	}
}
