// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

import "github.com/bits-and-blooms/bitset"

// InitStep seeds the ParGenFS dynamic program at every leaf: a leaf
// with positive membership becomes its own (singleton) head subject at
// cost gamma*U; a leaf with zero membership costs nothing and heads
// nothing. Internal nodes are only visited to reach their leaves — they
// are left un-initialized ([Node.initialized] stays false) for
// [Tree.RecursiveStep] to fill in bottom-up.
func (t *Tree) InitStep(gamma float64) {
	initStepNode(t.Root, gamma)
}

func initStepNode(n *Node, gamma float64) {
	if n.IsInternal() {
		for _, c := range n.Children {
			initStepNode(c, gamma)
		}
		return
	}

	if n.U > 0 {
		n.H = []*Node{n}
		n.L = nil
		n.P = gamma * n.U
	} else {
		n.H = nil
		n.L = nil
		n.P = 0
	}
	n.initialized = true
}

// RecursiveStep is the core ParGenFS decision. For every internal node
// n with children c1..ck, it compares two local choices:
//
//   - LIFT: replace the children's combined head-set with n itself, at
//     cost n.U + lambda*n.V (n's own weight plus the importance of
//     every gap the lift would subsume).
//   - KEEP: retain the concatenation of the children's own H/L/P.
//
// Ties go to KEEP (strict "<" — cheaper to preserve granularity when
// the two choices cost the same). The comparison and assignment happen
// post-order, so a child's P is always final before its parent reads
// it; the DP is exact because the penalty is additive across disjoint
// subtrees.
func (t *Tree) RecursiveStep(gamma, lambda float64) {
	recursiveStepNode(t.Root, gamma, lambda)
}

func recursiveStepNode(n *Node, gamma, lambda float64) {
	if !n.IsInternal() {
		return
	}
	for _, c := range n.Children {
		recursiveStepNode(c, gamma, lambda)
	}
	if n.initialized {
		return
	}

	sumChildrenP := 0.0
	for _, c := range n.Children {
		sumChildrenP += c.P
	}

	liftCost := n.U + lambda*n.V
	if liftCost < sumChildrenP {
		n.H = []*Node{n}
		n.L = n.G
		n.P = liftCost
		return
	}

	var h, l []*Node
	for _, c := range n.Children {
		h = append(h, c.H...)
		l = append(l, c.L...)
	}
	n.H = h
	n.L = l
	n.P = sumChildrenP
}

// MarkOffshoots walks the tree post-order and sets Offshoot on every
// leaf whose parent ended up with an empty head set — a leaf that no
// head subject covers. The leaf's own U is not checked.
func (t *Tree) MarkOffshoots() {
	markOffshootsNode(t.Root)
}

func markOffshootsNode(n *Node) {
	if n.IsInternal() {
		for _, c := range n.Children {
			markOffshootsNode(c)
		}
		return
	}
	if n.Parent != nil && len(n.Parent.H) == 0 {
		n.Offshoot = true
	}
}

// VerifyHeadCoverage checks invariant 5 — every leaf that survived
// truncation is covered by some node in the root's head-subject set,
// either directly or as a descendant of a lifted internal head — by
// comparing the leaf-survival bitset [Tree.PropagateToInternals] built
// against a bitset of the leaves reachable from root.H. This is the
// same "union the bitsets, then test set membership" shape the teacher
// uses in overlaps.go, applied here to head-subject coverage instead
// of prefix overlap.
//
// It panics on violation, matching the teacher's treatment of a
// structural impossibility (bartnode.go's "logic error, wrong node
// type") rather than returning an error: a surviving leaf left
// uncovered means RecursiveStep or MarkOffshoots has a bug, not that
// the caller passed bad input.
func (t *Tree) VerifyHeadCoverage() {
	if t.survivors == nil {
		return
	}

	covered := bitset.New(t.survivors.Len())
	var mark func(*Node)
	mark = func(n *Node) {
		if n.hasOrdinal {
			covered.Set(uint(n.leafOrdinal))
			return
		}
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, h := range t.Root.H {
		mark(h)
	}

	if !covered.IsSuperSet(t.survivors) {
		panic("pargenfs: invariant violation: a surviving leaf is not covered by any head subject")
	}
}
