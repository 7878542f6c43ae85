// Package gmodversioning migrates classification nodes and paths across
// revisions of the standard. Conversion tables are published per target
// version and only describe one revision step; longer jumps chain steps.
package gmodversioning

import (
	"fmt"
	"strings"

	"github.com/harborlabs/vis/api"
	"github.com/harborlabs/vis/internal/gmod"
	"github.com/harborlabs/vis/internal/vis"
)

// OperationKind is a bit set of the change kinds recorded for one node.
type OperationKind uint8

const (
	OperationChangeCode OperationKind = 1 << iota
	OperationMerge
	OperationMove
	OperationAssignmentChange
	OperationAssignmentDelete
)

func parseOperations(names []string) (OperationKind, error) {
	var ops OperationKind
	for _, name := range names {
		switch name {
		case "changeCode":
			ops |= OperationChangeCode
		case "merge":
			ops |= OperationMerge
		case "move":
			ops |= OperationMove
		case "assignmentChange":
			ops |= OperationAssignmentChange
		case "assignmentDelete":
			ops |= OperationAssignmentDelete
		default:
			return 0, fmt.Errorf("unknown conversion operation %q", name)
		}
	}
	return ops, nil
}

// String lists the set members in declaration order, comma separated.
func (k OperationKind) String() string {
	names := []struct {
		bit  OperationKind
		name string
	}{
		{OperationChangeCode, "changeCode"},
		{OperationMerge, "merge"},
		{OperationMove, "move"},
		{OperationAssignmentChange, "assignmentChange"},
		{OperationAssignmentDelete, "assignmentDelete"},
	}
	var out []string
	for _, n := range names {
		if k&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ",")
}

// NodeConversion is one source node's migration instructions into the
// table's target version.
type NodeConversion struct {
	Operations       OperationKind
	Source           string
	Target           string
	OldAssignment    string
	NewAssignment    string
	DeleteAssignment bool
}

// GmodProvider supplies the built tree for a version. The registry layer
// implements it; tests implement it over fixtures.
type GmodProvider interface {
	Gmod(v vis.Version) (*gmod.Gmod, error)
}

// Versioning holds one read-only conversion table per target version and
// drives node and path conversion between any two versions.
type Versioning struct {
	provider GmodProvider
	tables   map[vis.Version]map[string]NodeConversion
}

// New builds the engine from the published conversion packs. Each pack is
// keyed by the version it converts into.
func New(provider GmodProvider, packs []*api.ConversionPack) (*Versioning, error) {
	e := &Versioning{
		provider: provider,
		tables:   make(map[vis.Version]map[string]NodeConversion, len(packs)),
	}
	for _, pack := range packs {
		target, err := vis.ParseVersion(pack.VisVersion)
		if err != nil {
			return nil, fmt.Errorf("conversion pack: %w", err)
		}
		if _, dup := e.tables[target]; dup {
			return nil, fmt.Errorf("conversion pack for %s given twice", target)
		}
		table := make(map[string]NodeConversion, len(pack.Items))
		for source, rec := range pack.Items {
			ops, err := parseOperations(rec.Operations)
			if err != nil {
				return nil, fmt.Errorf("conversion pack %s, node %s: %w", target, source, err)
			}
			table[source] = NodeConversion{
				Operations:       ops,
				Source:           rec.Source,
				Target:           rec.Target,
				OldAssignment:    rec.OldAssignment,
				NewAssignment:    rec.NewAssignment,
				DeleteAssignment: rec.DeleteAssignment,
			}
		}
		e.tables[target] = table
	}
	return e, nil
}

// Table returns the conversion table keyed by target version, for
// inspection tooling.
func (e *Versioning) Table(target vis.Version) (map[string]NodeConversion, bool) {
	t, ok := e.tables[target]
	return t, ok
}

// ConvertNode migrates a node from source to target version, chaining
// single revision steps. Identity conversions return the input unchanged.
// A node with no representation in the target version is the recoverable
// tier: (zero, false, nil).
func (e *Versioning) ConvertNode(source vis.Version, node gmod.GmodNode, target vis.Version) (gmod.GmodNode, bool, error) {
	if !source.IsValid() || !target.IsValid() {
		return gmod.GmodNode{}, false, fmt.Errorf("invalid conversion versions %s -> %s", source, target)
	}
	if source == target {
		return node, true, nil
	}
	if target < source {
		// Tables are published per ascending step only.
		return gmod.GmodNode{}, false, nil
	}
	current := node
	for v := source; v < target; v++ {
		next, ok, err := e.convertNodeInternal(current, v+1)
		if err != nil || !ok {
			return gmod.GmodNode{}, false, err
		}
		current = next
	}
	return current, true, nil
}

// convertNodeInternal performs one revision step. The target code comes from
// the table entry when one exists, else the code is carried unchanged; the
// code is then resolved in the target tree.
func (e *Versioning) convertNodeInternal(node gmod.GmodNode, target vis.Version) (gmod.GmodNode, bool, error) {
	code := node.Code()
	if entry, ok := e.tables[target][code]; ok && entry.Target != "" {
		code = entry.Target
	}

	targetGmod, err := e.provider.Gmod(target)
	if err != nil {
		return gmod.GmodNode{}, false, err
	}
	canonical, ok := targetGmod.TryNode(code)
	if !ok {
		return gmod.GmodNode{}, false, nil
	}

	result := *canonical
	if loc, has := node.Location(); has {
		// Canonical target nodes are never mutated; the location rides on a copy.
		result = result.WithLocation(loc)
		if got, _ := result.Location(); got != loc {
			return gmod.GmodNode{}, false, invariantf("node %s lost its location %s during conversion to %s",
				node.Code(), loc, target)
		}
	}
	return result, true, nil
}

// ConvertPath migrates a whole path from source to target version, chaining
// single-step path conversions.
func (e *Versioning) ConvertPath(source vis.Version, path gmod.GmodPath, target vis.Version) (gmod.GmodPath, bool, error) {
	if !source.IsValid() || !target.IsValid() {
		return gmod.GmodPath{}, false, fmt.Errorf("invalid conversion versions %s -> %s", source, target)
	}
	if source == target {
		return path, true, nil
	}
	if target < source {
		return gmod.GmodPath{}, false, nil
	}
	current := path
	for v := source; v < target; v++ {
		next, ok, err := e.convertPathInternal(current, v+1)
		if err != nil || !ok {
			return gmod.GmodPath{}, false, err
		}
		current = next
	}
	return current, true, nil
}

type qualifiedNode struct {
	source    gmod.GmodNode
	converted gmod.GmodNode
}

// convertPathInternal rebuilds a path across one revision step. The common
// case, where the lineage survived the revision intact, is a direct validity
// test; otherwise the chain is reconstructed incrementally, repairing merges,
// assignment changes, and structural breakage.
func (e *Versioning) convertPathInternal(path gmod.GmodPath, target vis.Version) (gmod.GmodPath, bool, error) {
	targetGmod, err := e.provider.Gmod(target)
	if err != nil {
		return gmod.GmodPath{}, false, err
	}

	endConverted, ok, err := e.convertNodeInternal(path.Node(), target)
	if err != nil {
		return gmod.GmodPath{}, false, err
	}
	if !ok {
		return gmod.GmodPath{}, false, nil
	}
	if endConverted.IsRoot() {
		rooted, err := gmod.NewPath(targetGmod, nil, endConverted, true)
		return rooted, err == nil, err
	}

	full := path.GetFullPath()
	qualified := make([]qualifiedNode, 0, len(full))
	for _, n := range full {
		converted, ok, err := e.convertNodeInternal(n, target)
		if err != nil {
			return gmod.GmodPath{}, false, err
		}
		if !ok {
			return gmod.GmodPath{}, false, invariantf("node %s of path %s has no representation in %s",
				n.Code(), path, target)
		}
		qualified = append(qualified, qualifiedNode{source: n, converted: converted})
	}

	// Fast path: the revision did not restructure this lineage.
	candidates := make([]gmod.GmodNode, len(qualified)-1)
	for i := range candidates {
		candidates[i] = qualified[i].converted
	}
	if gmod.IsValidSequence(candidates, endConverted) {
		return finishPath(targetGmod, candidates, endConverted)
	}

	newPath, err := e.reconstruct(targetGmod, path, qualified, endConverted)
	if err != nil {
		return gmod.GmodPath{}, false, err
	}

	end := newPath[len(newPath)-1]
	parents := newPath[:len(newPath)-1]
	return finishPath(targetGmod, parents, end)
}

// finishPath re-runs the individualization scan over the candidate sequence
// and validates structure. Failure here is the fatal tier: the source path
// has no valid representation in the target version.
func finishPath(targetGmod *gmod.Gmod, parents []gmod.GmodNode, end gmod.GmodNode) (gmod.GmodPath, bool, error) {
	parents, end, err := gmod.NormalizeLocations(parents, end)
	if err != nil {
		return gmod.GmodPath{}, false, err
	}
	if !gmod.IsValidSequence(parents, end) {
		return gmod.GmodPath{}, false, invariantf("reconstructed path to %s is structurally invalid in %s",
			end.Code(), targetGmod.Version())
	}
	converted, err := gmod.NewPath(targetGmod, parents, end, true)
	return converted, err == nil, err
}

// reconstruct is the slow path: rebuild the ancestor chain pair by pair,
// reconciling merges and repairing assignment changes, stopping early once
// the target end node is placed.
func (e *Versioning) reconstruct(targetGmod *gmod.Gmod, sourcePath gmod.GmodPath, qualified []qualifiedNode, endConverted gmod.GmodNode) ([]gmod.GmodNode, error) {
	endSourceCode := sourcePath.Node().Code()
	var newPath []gmod.GmodNode

	for i := 0; i < len(qualified); i++ {
		qn := qualified[i]

		if i > 0 && qn.converted.Code() == qualified[i-1].converted.Code() {
			if err := reconcileMerge(newPath, qn); err != nil {
				return nil, err
			}
			if newPath[len(newPath)-1].Code() == endConverted.Code() {
				break
			}
			continue
		}

		sourceAssign, sourceHasAssign := qn.source.ProductType()
		targetAssign, targetHasAssign := qn.converted.ProductType()
		assignChanged := sourceHasAssign != targetHasAssign ||
			(sourceHasAssign && targetHasAssign && sourceAssign.Code() != targetAssign.Code())
		if entry, tabled := e.tables[targetGmod.Version()][qn.source.Code()]; tabled {
			// The pack states which changes apply to a tabled node. A merged
			// or renamed node is not an assignment change just because the
			// node it lands on carries one.
			assignChanged = entry.Operations&(OperationAssignmentChange|OperationAssignmentDelete) != 0
		}

		switch {
		case assignChanged && !targetHasAssign:
			// Assignment deleted: the node stays, its stale product-type
			// child disappears from the path.
			if err := addToPath(targetGmod, &newPath, qn.converted); err != nil {
				return nil, err
			}
			if sourceHasAssign && i+1 < len(qualified) && qualified[i+1].source.Code() == sourceAssign.Code() {
				if qualified[i+1].source.Code() == endSourceCode {
					return nil, invariantf("conversion to %s deletes the path's end node %s",
						targetGmod.Version(), endSourceCode)
				}
				i++
			}
		case assignChanged:
			if err := addToPath(targetGmod, &newPath, qn.converted); err != nil {
				return nil, err
			}
			newAssign := *targetAssign
			if sourceHasAssign {
				// The next qualifying node must be the stale assignment child.
				if i+1 >= len(qualified) || qualified[i+1].source.Code() != sourceAssign.Code() {
					return nil, invariantf("expected stale assignment %s after %s in path %s",
						sourceAssign.Code(), qn.source.Code(), sourcePath)
				}
				stale := qualified[i+1].source
				if loc, has := stale.Location(); has && newAssign.IsIndividualizable(stale.Code() == endSourceCode, false) {
					newAssign = newAssign.WithLocation(loc)
				}
				i++
			}
			if err := addToPath(targetGmod, &newPath, newAssign); err != nil {
				return nil, err
			}
		default:
			if err := addToPath(targetGmod, &newPath, qn.converted); err != nil {
				return nil, err
			}
		}

		if len(newPath) > 0 && newPath[len(newPath)-1].Code() == endConverted.Code() {
			break
		}
	}

	if len(newPath) == 0 {
		return nil, invariantf("conversion to %s left path %s empty", targetGmod.Version(), sourcePath)
	}
	return newPath, nil
}

// reconcileMerge merges location information into the earlier occurrence of
// a node that two source nodes collapsed onto.
func reconcileMerge(newPath []gmod.GmodNode, qn qualifiedNode) error {
	idx := -1
	for j := len(newPath) - 1; j >= 0; j-- {
		if newPath[j].Code() == qn.converted.Code() {
			idx = j
			break
		}
	}
	if idx < 0 {
		return invariantf("merged node %s missing from the reconstructed path", qn.converted.Code())
	}
	srcLoc, srcHas := qn.source.Location()
	if !srcHas {
		return nil
	}
	existing := newPath[idx]
	if exLoc, exHas := existing.Location(); exHas {
		if exLoc != srcLoc {
			return invariantf("merge of %s carries conflicting locations %s and %s",
				qn.converted.Code(), exLoc, srcLoc)
		}
		return nil
	}
	if !existing.IsIndividualizable(false, true) {
		return invariantf("merge target %s cannot carry location %s", existing.Code(), srcLoc)
	}
	newPath[idx] = existing.WithLocation(srcLoc)
	return nil
}

// addToPath appends node, splicing in connecting intermediates when the
// current tail is not its parent. Tail candidates with no connection are
// popped, except the last remaining asset-function anchor.
func addToPath(targetGmod *gmod.Gmod, path *[]gmod.GmodNode, node gmod.GmodNode) error {
	for len(*path) > 0 {
		last := (*path)[len(*path)-1]
		if last.IsChild(node) {
			*path = append(*path, node)
			return nil
		}

		exists, chain := targetGmod.PathExistsBetween(*path, node)
		if !exists {
			if last.IsAssetFunctionNode() && countAssetFunctions(*path) == 1 {
				return invariantf("tried to remove the last asset function node %s from the path", last.Code())
			}
			*path = (*path)[:len(*path)-1]
			continue
		}

		loc, hasLoc := node.Location()
		for _, intermediate := range chain {
			if containsCode(*path, intermediate.Code()) {
				continue
			}
			spliced := intermediate
			if hasLoc && spliced.IsIndividualizable(false, true) {
				spliced = spliced.WithLocation(loc)
			}
			*path = append(*path, spliced)
		}
		*path = append(*path, node)
		return nil
	}
	*path = append(*path, node)
	return nil
}

func countAssetFunctions(path []gmod.GmodNode) int {
	n := 0
	for _, node := range path {
		if node.IsAssetFunctionNode() {
			n++
		}
	}
	return n
}

func containsCode(path []gmod.GmodNode, code string) bool {
	for _, node := range path {
		if node.Code() == code {
			return true
		}
	}
	return false
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gmod.ErrInvariantViolated, fmt.Sprintf(format, args...))
}

// Reference bundles the paths and metadata tags of one equipment identifier.
// Converting it converts the paths and re-attaches the tags unchanged.
type Reference struct {
	Primary   gmod.GmodPath
	Secondary *gmod.GmodPath
	Tags      map[string]string
}

// ConvertReference migrates a reference between versions. Tags ride along
// untouched; only the paths are converted.
func (e *Versioning) ConvertReference(source vis.Version, ref Reference, target vis.Version) (Reference, bool, error) {
	primary, ok, err := e.ConvertPath(source, ref.Primary, target)
	if err != nil || !ok {
		return Reference{}, false, err
	}
	out := Reference{Primary: primary, Tags: ref.Tags}
	if ref.Secondary != nil {
		secondary, ok, err := e.ConvertPath(source, *ref.Secondary, target)
		if err != nil || !ok {
			return Reference{}, false, err
		}
		out.Secondary = &secondary
	}
	return out, true, nil
}
