package gmod

import (
	"strings"

	"github.com/harborlabs/vis/internal/location"
)

// pathSegment is one "code" or "code-location" element of a path string.
type pathSegment struct {
	code   string
	loc    location.Location
	hasLoc bool
}

// splitSegments parses a slash-delimited path string into segments,
// collecting anomalies instead of stopping at the first.
func splitSegments(s string, errs *ParseErrors) []pathSegment {
	if strings.TrimSpace(s) == "" {
		errs.add(StageSegment, "path string is empty")
		return nil
	}
	raw := strings.Split(strings.Trim(s, "/"), "/")
	segments := make([]pathSegment, 0, len(raw))
	for _, part := range raw {
		if part == "" {
			errs.add(StageSegment, "empty segment in %q", s)
			continue
		}
		code, locStr, dashed := strings.Cut(part, "-")
		seg := pathSegment{code: code}
		if dashed {
			loc, locErrs := location.ParseAll(locStr)
			if len(locErrs) > 0 {
				errs.add(StageLocation, "segment %q: %s", part, locErrs)
			} else {
				seg.loc = loc
				seg.hasLoc = true
			}
		}
		segments = append(segments, seg)
	}
	return segments
}

// ParseFullPath parses the fully-qualified form: every node from the root,
// resolved segment-by-segment with no tree search.
func ParseFullPath(g *Gmod, s string) (GmodPath, error) {
	path, errs := ParseFullPathReport(g, s)
	if len(errs) > 0 {
		return GmodPath{}, errs
	}
	return path, nil
}

// TryParseFullPath is the best-effort form of ParseFullPath.
func TryParseFullPath(g *Gmod, s string) (GmodPath, bool) {
	path, errs := ParseFullPathReport(g, s)
	return path, len(errs) == 0
}

// ParseFullPathReport parses the fully-qualified form, collecting one
// (stage, message) pair per anomaly for callers that want diagnostics.
func ParseFullPathReport(g *Gmod, s string) (GmodPath, ParseErrors) {
	var errs ParseErrors
	segments := splitSegments(s, &errs)
	if len(errs) > 0 || len(segments) == 0 {
		return GmodPath{}, errs
	}

	nodes := make([]GmodNode, 0, len(segments))
	for _, seg := range segments {
		node, ok := g.TryNode(seg.code)
		if !ok {
			errs.add(StageNodeLookup, "unknown node code %q", seg.code)
			continue
		}
		resolved := *node
		if seg.hasLoc {
			resolved = resolved.WithLocation(seg.loc)
		}
		nodes = append(nodes, resolved)
	}
	if len(errs) > 0 {
		return GmodPath{}, errs
	}

	if !nodes[0].IsRoot() {
		errs.add(StageStructure, "full path must start at the root, got %q", nodes[0].code)
		return GmodPath{}, errs
	}
	for i := 0; i+1 < len(nodes); i++ {
		if !nodes[i].IsChild(nodes[i+1]) {
			errs.add(StageStructure, "%q is not a child of %q", nodes[i+1].code, nodes[i].code)
		}
	}
	if len(errs) > 0 {
		return GmodPath{}, errs
	}

	parents, target := nodes[:len(nodes)-1], nodes[len(nodes)-1]
	target, ok := normalizeLocations(parents, target, &errs)
	if !ok {
		return GmodPath{}, errs
	}
	path, err := NewPath(g, parents, target, true)
	if err != nil {
		errs.add(StageStructure, "%s", err)
		return GmodPath{}, errs
	}
	return path, nil
}

// ParsePath parses the short form: a tree search from the first segment's
// node, matching the remaining segments in traversal order, then
// reconstructing the missing prefix up to the root.
func ParsePath(g *Gmod, s string) (GmodPath, error) {
	path, errs := ParsePathReport(g, s)
	if len(errs) > 0 {
		return GmodPath{}, errs
	}
	return path, nil
}

// TryParsePath is the best-effort form of ParsePath.
func TryParsePath(g *Gmod, s string) (GmodPath, bool) {
	path, errs := ParsePathReport(g, s)
	return path, len(errs) == 0
}

// ParsePathReport parses the short form with full diagnostics.
func ParsePathReport(g *Gmod, s string) (GmodPath, ParseErrors) {
	var errs ParseErrors
	segments := splitSegments(s, &errs)
	if len(errs) > 0 || len(segments) == 0 {
		return GmodPath{}, errs
	}

	base, ok := g.TryNode(segments[0].code)
	if !ok {
		errs.add(StageNodeLookup, "unknown node code %q", segments[0].code)
		return GmodPath{}, errs
	}

	// Explicitly-located segments are seeded into a side table by code and
	// distributed over their sets after assembly.
	located := make(map[string]location.Location, len(segments))
	for _, seg := range segments {
		if seg.hasLoc {
			located[seg.code] = seg.loc
		}
	}

	cursor := 0
	var assembled []GmodNode
	g.TraverseFrom(base, func(parents []*GmodNode, node *GmodNode) TraversalStatus {
		if node.code != segments[cursor].code {
			if node.IsLeafNode() {
				return TraverseSkipSubtree
			}
			return TraverseContinue
		}
		cursor++
		if cursor < len(segments) {
			return TraverseContinue
		}
		assembled = make([]GmodNode, 0, len(parents)+1)
		for _, p := range parents {
			assembled = append(assembled, *p)
		}
		assembled = append(assembled, *node)
		return TraverseStop
	})
	if assembled == nil {
		errs.add(StageNodeLookup, "no path through the tree matches %q", s)
		return GmodPath{}, errs
	}

	// Walk upward from the matched start to the root. Any node outside the
	// matched set with several parents makes the prefix ambiguous.
	for !assembled[0].IsRoot() {
		ps := assembled[0].Parents()
		if len(ps) != 1 {
			errs.add(StageStructure, "prefix of %q is ambiguous: %q has %d parents",
				s, assembled[0].code, len(ps))
			return GmodPath{}, errs
		}
		assembled = append([]GmodNode{*ps[0]}, assembled...)
	}

	for i, node := range assembled {
		if loc, hit := located[node.code]; hit {
			assembled[i] = node.WithLocation(loc)
		}
	}

	parents, target := assembled[:len(assembled)-1], assembled[len(assembled)-1]
	target, ok = normalizeLocations(parents, target, &errs)
	if !ok {
		return GmodPath{}, errs
	}
	path, err := NewPath(g, parents, target, true)
	if err != nil {
		errs.add(StageStructure, "%s", err)
		return GmodPath{}, errs
	}
	return path, nil
}

// normalizeLocations runs the individualization scan over the assembled
// sequence and spreads each detected set's location across its range.
func normalizeLocations(parents []GmodNode, target GmodNode, errs *ParseErrors) (GmodNode, bool) {
	sets, err := detectSets(parents, target)
	if err != nil {
		errs.add(StageLocationSets, "%s", err)
		return target, false
	}
	target, err = applySets(sets, parents, target)
	if err != nil {
		errs.add(StageLocationSets, "%s", err)
		return target, false
	}
	return target, true
}
