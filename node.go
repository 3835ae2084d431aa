// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

import "github.com/bits-and-blooms/bitset"

// Node is a single taxonomy concept: a labeled position in the tree,
// together with every annotation the ParGenFS pipeline computes for it.
//
// Node is created once by a taxonomy parser (see internal/ingest) and
// mutated in place by the pipeline stages in the order [Run] applies
// them. Ownership flows root to children; Parent is a plain pointer
// rather than a weak reference, since Go's garbage collector reclaims
// cyclic structures on its own.
type Node struct {
	Index    string  // dotted path, e.g. "1.2.3"; a trailing dot from the source ("1.2.3.") is kept
	Name     string  // human-readable label
	Parent   *Node   // nil at the root
	Children []*Node // ordered, owned

	E int // layer (depth) number, set by EnumerateLayers

	Score float64 // raw, non-normalized membership
	U     float64 // current membership weight

	GapV float64 // node's own gap importance (= parent.U at SetParameters time; 1.0 at root); spec's lowercase "v"
	V    float64 // cumulative gap importance, Σ g.GapV for g in G; spec's uppercase "V", the lift-cost multiplier

	G []*Node // gap descendants, de-duplicated by name, first-seen order
	H []*Node // head-subject set attached to this node
	L []*Node // loss set: gaps absorbed when this node is lifted

	P float64 // accumulated ParGenFS penalty

	initialized bool // set once the init step has visited this node
	Offshoot    bool // set on a leaf whose parent has no head

	leafOrdinal int  // stable leaf index, assigned by indexLeaves; -1 on internal nodes
	hasOrdinal  bool
}

// NewNode constructs a node with the given index, name, parent and
// children. A nil children slice is treated as "no children yet" (a
// leaf); callers append to Children directly when building a tree
// incrementally, as internal/ingest's parser does.
func NewNode(index, name string, parent *Node, children []*Node) *Node {
	return &Node{
		Index:       index,
		Name:        name,
		Parent:      parent,
		Children:    children,
		leafOrdinal: -1,
	}
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsInternal reports whether n has at least one child.
func (n *Node) IsInternal() bool {
	return len(n.Children) > 0
}

// IsRoot reports whether n has no parent.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Degree returns the number of direct children of n.
func (n *Node) Degree() int {
	return len(n.Children)
}

// Tree is the annotated taxonomy: a single rooted tree owned exclusively
// by one pipeline run, from ingestion through result extraction.
//
// Tree is not safe for concurrent use — nothing in this package is;
// see the package doc and spec.md's Non-goals.
type Tree struct {
	Root *Node

	leaves       []*Node
	leavesCached bool

	survivors *bitset.BitSet // set by PropagateToInternals; see SurvivingLeaves
}

// NewTree wraps root as a [Tree].
func NewTree(root *Node) *Tree {
	return &Tree{Root: root}
}

// Leaves returns every leaf of the tree, in left-to-right document
// order, computing and caching the list on first use. The cache is
// only ever valid for the topology at the time it was built: pruning
// (see [Tree.Prune]) invalidates it, and callers must not call Leaves
// after Prune and expect pre-pruning leaves back.
func (t *Tree) Leaves() []*Node {
	if t.leavesCached {
		return t.leaves
	}
	var leaves []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	t.leaves = leaves
	t.leavesCached = true
	return leaves
}

// invalidateLeaves drops the memoized leaf list; called whenever the
// topology changes (pruning collapses subtrees).
func (t *Tree) invalidateLeaves() {
	t.leaves = nil
	t.leavesCached = false
}
