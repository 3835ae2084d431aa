// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

// Prune walks the tree post-order and collapses every internal node
// whose U is still 0 after truncation: its children are discarded
// (the storage they owned is released), turning it into a leaf. If
// every one of its children was itself childless (a degenerate
// "internal node over plain leaves" subtree), the collapsed node is
// retained as its own single gap marker (G = [node]) — a whole missing
// sub-branch becomes representable as one gap instead of many.
//
// Prune invalidates the tree's cached leaf list.
func (t *Tree) Prune() {
	pruneNode(t.Root)
	t.invalidateLeaves()
}

func pruneNode(n *Node) {
	if !n.IsInternal() {
		return
	}
	for _, c := range n.Children {
		pruneNode(c)
	}
	if n.U != 0 {
		return
	}

	allGrandchildrenAbsent := true
	for _, c := range n.Children {
		if len(c.Children) > 0 {
			allGrandchildrenAbsent = false
			break
		}
	}
	n.Children = nil

	if allGrandchildrenAbsent {
		n.G = []*Node{n}
	}
}

// SetGaps walks the tree pre-order. For every node, any direct child
// with U == 0 is a gap of that node — unless Prune already assigned G
// (the whole-subtree-collapsed case), in which case the prior
// assignment is kept.
func (t *Tree) SetGaps() {
	setGapsNode(t.Root)
}

func setGapsNode(n *Node) {
	if len(n.G) == 0 {
		var gaps []*Node
		for _, c := range n.Children {
			if c.U == 0 {
				gaps = append(gaps, c)
			}
		}
		n.G = gaps
	}
	for _, c := range n.Children {
		setGapsNode(c)
	}
}

// SetParameters walks the tree post-order, computing the final G, GapV
// ("v" in the spec — a node's own gap importance) and V ("V" in the
// spec — the node's cumulative gap importance) annotations:
//
//   - G becomes the union of the node's own G with every child's G,
//     de-duplicated by name (not identity — two distinct nodes sharing
//     a name collapse to the first one seen), preserving first-occurrence
//     order.
//   - GapV is set to parent.U, or 1.0 at the root.
//   - V is Σ g.GapV over the final G set.
func (t *Tree) SetParameters() {
	setParametersNode(t.Root)
}

func setParametersNode(n *Node) {
	for _, c := range n.Children {
		setParametersNode(c)
	}

	seen := make(map[string]struct{}, len(n.G))
	merged := make([]*Node, 0, len(n.G))
	appendDedup := func(gaps []*Node) {
		for _, g := range gaps {
			if _, ok := seen[g.Name]; ok {
				continue
			}
			seen[g.Name] = struct{}{}
			merged = append(merged, g)
		}
	}
	appendDedup(n.G)
	for _, c := range n.Children {
		appendDedup(c.G)
	}
	n.G = merged

	if n.Parent != nil {
		n.GapV = n.Parent.U
	} else {
		n.GapV = 1.0
	}

	v := 0.0
	for _, g := range n.G {
		v += g.GapV
	}
	n.V = v
}
