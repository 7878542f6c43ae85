package gmod

import "github.com/harborlabs/vis/internal/location"

// nodeSet is one detected individualization range over a candidate sequence:
// the nodes [start, end] must share the single location loc (zero = none).
// Indices address parents first, then the target at index len(parents).
type nodeSet struct {
	start, end int
	loc        location.Location
}

// locationSetVisitor is the single left-to-right scan that partitions a
// candidate node sequence into maximal runs sharing one location assignment.
// The only state is the index where the current potential-parent run began.
// Path parsing (both forms) and version conversion all run the same scan.
type locationSetVisitor struct {
	currentParentStart int
}

func newLocationSetVisitor() locationSetVisitor {
	return locationSetVisitor{currentParentStart: -1}
}

func nodeAt(i int, parents []GmodNode, target GmodNode) GmodNode {
	if i < len(parents) {
		return parents[i]
	}
	return target
}

// visit feeds the node at index i to the scan. It yields a completed set when
// one closes at this index, nil otherwise. Inconsistent locations inside one
// set and skips after accumulation are the fatal tier.
func (v *locationSetVisitor) visit(node GmodNode, i int, parents []GmodNode, target GmodNode) (*nodeSet, error) {
	isParent := IsPotentialParent(node.metadata.Type)
	isTargetNode := i == len(parents)

	if v.currentParentStart == -1 {
		if isParent {
			v.currentParentStart = i
		}
		if node.IsIndividualizable(isTargetNode, false) {
			return &nodeSet{start: i, end: i, loc: node.location}, nil
		}
		return nil, nil
	}

	if !isParent && !isTargetNode {
		return nil, nil
	}

	var set *nodeSet
	var loc location.Location
	if v.currentParentStart+1 == i {
		if node.IsIndividualizable(isTargetNode, false) {
			set = &nodeSet{start: i, end: i}
			loc = node.location
		}
	} else {
		skipped := false
		hasComposition := false
		for j := v.currentParentStart + 1; j <= i; j++ {
			setNode := nodeAt(j, parents, target)
			if !setNode.IsIndividualizable(j == len(parents), true) {
				if set != nil {
					skipped = true
				}
				continue
			}
			if !loc.IsZero() && !setNode.location.IsZero() && loc != setNode.location {
				return nil, invariantf("different locations %s and %s in the same node set",
					loc, setNode.location)
			}
			if loc.IsZero() {
				loc = setNode.location
			}
			if skipped {
				return nil, invariantf("cannot skip %s inside an individualizable set", setNode.code)
			}
			if setNode.IsFunctionComposition() {
				hasComposition = true
			}
			if set == nil {
				set = &nodeSet{start: j, end: j}
			} else {
				set.end = j
			}
		}
		// A composition node may not stand alone as a set.
		if set != nil && set.start == set.end && hasComposition {
			set = nil
		}
	}

	v.currentParentStart = i
	if set == nil {
		return nil, nil
	}
	set.loc = loc

	// A set must reach a leaf node or the sequence's final position.
	for j := set.start; j <= set.end; j++ {
		if nodeAt(j, parents, target).IsLeafNode() || j == len(parents) {
			return set, nil
		}
	}
	return nil, nil
}

// detectSets runs the full scan over parents+target and returns every valid
// set in order.
func detectSets(parents []GmodNode, target GmodNode) ([]nodeSet, error) {
	visitor := newLocationSetVisitor()
	var sets []nodeSet
	for i := 0; i <= len(parents); i++ {
		set, err := visitor.visit(nodeAt(i, parents, target), i, parents, target)
		if err != nil {
			return nil, err
		}
		if set != nil {
			sets = append(sets, *set)
		}
	}
	return sets, nil
}

// NormalizeLocations re-runs the individualization scan over a candidate
// sequence and spreads each detected set's location uniformly across its
// range, returning normalized copies. The inputs are not modified.
func NormalizeLocations(parents []GmodNode, target GmodNode) ([]GmodNode, GmodNode, error) {
	sets, err := detectSets(parents, target)
	if err != nil {
		return nil, target, err
	}
	out := make([]GmodNode, len(parents))
	copy(out, parents)
	target, err = applySets(sets, out, target)
	if err != nil {
		return nil, target, err
	}
	return out, target, nil
}

// applySets writes each set's location uniformly onto its node range and
// verifies no location survives outside a detected set. parents and target
// are modified in place; target is returned.
func applySets(sets []nodeSet, parents []GmodNode, target GmodNode) (GmodNode, error) {
	covered := make(map[int]struct{})
	for _, set := range sets {
		for j := set.start; j <= set.end; j++ {
			covered[j] = struct{}{}
			if j < len(parents) {
				if set.loc.IsZero() {
					parents[j] = parents[j].WithoutLocation()
				} else {
					parents[j] = parents[j].WithLocation(set.loc)
				}
			} else {
				if set.loc.IsZero() {
					target = target.WithoutLocation()
				} else {
					target = target.WithLocation(set.loc)
				}
			}
		}
	}
	for i := 0; i <= len(parents); i++ {
		if _, ok := covered[i]; ok {
			continue
		}
		n := nodeAt(i, parents, target)
		if _, has := n.Location(); has {
			return target, invariantf("node %s carries a location but is outside every individualizable set", n.code)
		}
	}
	return target, nil
}
