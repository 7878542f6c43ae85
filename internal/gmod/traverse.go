package gmod

import "github.com/RoaringBitmap/roaring"

// TraversalStatus is the handler's verdict for each visited node.
type TraversalStatus int

const (
	// TraverseContinue descends into the node's subtree.
	TraverseContinue TraversalStatus = iota
	// TraverseSkipSubtree moves on to the node's siblings.
	TraverseSkipSubtree
	// TraverseStop aborts the whole traversal.
	TraverseStop
)

// TraverseHandler is called for every visited node with the chain of parents
// from the traversal start (exclusive of node). Handlers accumulate state by
// closing over it; there is no global traversal state.
type TraverseHandler func(parents []*GmodNode, node *GmodNode) TraversalStatus

// Traverse walks the tree depth-first from the root. It returns true when the
// traversal ran to completion, false when the handler stopped it.
func (g *Gmod) Traverse(handler TraverseHandler) bool {
	return g.TraverseFrom(g.Root(), handler)
}

// TraverseFrom walks depth-first from start. Children are visited in relation
// order. A node reachable through several parents is visited once per distinct
// path; a node already on the current chain is not re-entered, which bounds
// the walk even on defective (cyclic) input.
func (g *Gmod) TraverseFrom(start *GmodNode, handler TraverseHandler) bool {
	ctx := &traversalContext{
		handler: handler,
		parents: make([]*GmodNode, 0, 16),
		onChain: roaring.New(),
	}
	return g.traverseNode(ctx, start) != TraverseStop
}

type traversalContext struct {
	handler TraverseHandler
	parents []*GmodNode
	onChain *roaring.Bitmap
}

func (g *Gmod) traverseNode(ctx *traversalContext, node *GmodNode) TraversalStatus {
	if ctx.onChain.Contains(node.idx) {
		return TraverseContinue
	}

	status := ctx.handler(ctx.parents, node)
	if status == TraverseStop {
		return TraverseStop
	}
	if status == TraverseSkipSubtree {
		return TraverseContinue
	}

	ctx.parents = append(ctx.parents, node)
	ctx.onChain.Add(node.idx)
	for _, childIdx := range g.arena[node.idx].childIdx {
		if g.traverseNode(ctx, &g.arena[childIdx].node) == TraverseStop {
			return TraverseStop
		}
	}
	ctx.parents = ctx.parents[:len(ctx.parents)-1]
	ctx.onChain.Remove(node.idx)

	return TraverseContinue
}
