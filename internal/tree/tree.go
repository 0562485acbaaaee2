// Package tree builds parent-indexed forests from flat record lists for
// collapsible hierarchical views.
package tree

// Record is one flat row with a self-referential parent pointer. Kind is a
// free-form discriminator (e.g. "organization", "prefix") carried through to
// the node; Payload is the caller's original record for rendering.
type Record struct {
	ID       int64
	Kind     string
	Name     string
	ParentID *int64
	Payload  any
}

// Node is one vertex of the assembled forest. Children preserve input
// record order; callers wanting sorted display sort the records before
// calling BuildForest. Expand/collapse state lives outside the tree.
type Node struct {
	ID       int64   `json:"id"`
	Kind     string  `json:"kind"`
	Name     string  `json:"name"`
	Record   Record  `json:"-"`
	Children []*Node `json:"children,omitempty"`
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// BuildForest groups records by parent id and assembles one tree per root.
// A record is a root when it has no parent or its parent is not in the
// supplied set (common with paginated or filtered record sets). Parent
// cycles are cut rather than recursed: a record whose id is already on the
// current ancestor path is not expanded again, and records reachable only
// through a cycle are emitted as their own roots. Every input record
// appears in exactly one node across the returned forest.
//
// The forest is rebuilt from scratch on every call; no state is shared
// between calls, so concurrent builds over the same records are safe.
func BuildForest(records []Record) []*Node {
	present := make(map[int64]bool, len(records))
	byParent := make(map[int64][]Record)
	for _, r := range records {
		present[r.ID] = true
	}
	for _, r := range records {
		if r.ParentID != nil && present[*r.ParentID] {
			byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
		}
	}

	placed := make(map[int64]bool, len(records))
	var forest []*Node

	for _, r := range records {
		if r.ParentID == nil || !present[*r.ParentID] {
			forest = append(forest, expand(r, byParent, map[int64]bool{}, placed))
		}
	}

	// Records whose ancestor chain cycles back on itself are never reached
	// from a natural root; sweep them in input order as cycle-cut roots.
	for _, r := range records {
		if !placed[r.ID] {
			forest = append(forest, expand(r, byParent, map[int64]bool{}, placed))
		}
	}

	return forest
}

// expand builds the subtree rooted at r. ancestors is the per-branch id set
// guarding against parent cycles; placed tracks which records already have a
// node anywhere in the forest.
func expand(r Record, byParent map[int64][]Record, ancestors map[int64]bool, placed map[int64]bool) *Node {
	placed[r.ID] = true
	ancestors[r.ID] = true
	defer delete(ancestors, r.ID)

	node := &Node{
		ID:     r.ID,
		Kind:   r.Kind,
		Name:   r.Name,
		Record: r,
	}
	for _, child := range byParent[r.ID] {
		if ancestors[child.ID] || placed[child.ID] {
			// Cycle cut: the child is already rendered on this path (or
			// elsewhere in the forest); expanding it again would recurse
			// forever or duplicate it.
			continue
		}
		node.Children = append(node.Children, expand(child, byParent, ancestors, placed))
	}
	return node
}
