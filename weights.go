// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

import (
	"math"

	"github.com/bits-and-blooms/bitset"
)

// LeafWeight pairs a leaf's current membership with its name, the shape
// [Tree.Normalize] and [Tree.Truncate] report for logging/diagnostics.
type LeafWeight struct {
	U    float64
	Name string
}

// Annotate assigns leaf memberships from cluster (missing names default
// to 0, matching internal/ingest's SelectCluster default — a missing leaf name is
// not an error at either layer) and zeroes every internal node's score
// and U. It also assigns each leaf a stable ordinal used later by the
// survival bitset, via an index pass.
//
// Annotate returns the unnormalized sum of squared leaf memberships.
func (t *Tree) Annotate(cluster map[string]float64) float64 {
	t.indexLeaves()
	var walk func(*Node) float64
	walk = func(n *Node) float64 {
		sum := 0.0
		if n.IsLeaf() {
			membership := cluster[n.Name]
			n.Score = membership
			n.U = membership
			sum += membership * membership
		} else {
			n.Score = 0
			n.U = 0
		}
		for _, c := range n.Children {
			sum += walk(c)
		}
		return sum
	}
	return walk(t.Root)
}

// indexLeaves assigns each leaf a 0-based ordinal in document order,
// used as the bit position in the survival bitset. Internal nodes get
// hasOrdinal = false.
func (t *Tree) indexLeaves() {
	i := 0
	for _, leaf := range t.Leaves() {
		leaf.leafOrdinal = i
		leaf.hasOrdinal = true
		i++
	}
}

// Normalize divides every leaf's U by √sum, leaving internal U at 0
// (propagation happens later, in [Tree.PropagateToInternals]). It
// returns the (U, name) pairs for every leaf, for reporting only.
func (t *Tree) Normalize(sum float64) []LeafWeight {
	root := math.Sqrt(sum)
	var weights []LeafWeight
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			n.U /= root
			weights = append(weights, LeafWeight{U: n.U, Name: n.Name})
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root)
	return weights
}

// Truncate zeros every leaf weight below theta and returns the sum of
// the squares of the weights that survive. A leaf zeroed here becomes a
// gap of its parent in [Tree.SetGaps], unless [Tree.Prune] has collapsed
// that parent and discarded the leaf.
func (t *Tree) Truncate(theta float64) float64 {
	var walk func(*Node) float64
	walk = func(n *Node) float64 {
		sum := 0.0
		if n.IsLeaf() {
			if n.U < theta {
				n.U = 0
			} else {
				sum += n.U * n.U
			}
		}
		for _, c := range n.Children {
			sum += walk(c)
		}
		return sum
	}
	return walk(t.Root)
}

// PropagateToInternals sets every internal node's U to √(Σ child.U²),
// post-order, so that afterwards n.U² = Σ c.U² for every internal n.
// It also builds the leaf-survival bitset returned by
// [Tree.SurvivingLeaves]: bit i is set iff the leaf with ordinal i has
// U > 0 after truncation. [Tree.VerifyHeadCoverage] later tests this
// bitset against head-subject coverage to confirm invariant 5 holds.
func (t *Tree) PropagateToInternals() *bitset.BitSet {
	survivors := bitset.New(uint(len(t.Leaves())))
	var walk func(*Node) float64
	walk = func(n *Node) float64 {
		if n.IsLeaf() {
			if n.U < 0 {
				panic("pargenfs: invariant violation: negative membership on leaf " + n.Name)
			}
			if n.hasOrdinal && n.U > 0 {
				survivors.Set(uint(n.leafOrdinal))
			}
			return n.U * n.U
		}
		sum := 0.0
		for _, c := range n.Children {
			sum += walk(c)
		}
		n.U = math.Sqrt(sum)
		return sum
	}
	walk(t.Root)
	t.survivors = survivors
	return survivors
}

// SurvivingLeaves returns the bitset of leaf ordinals with U > 0 as of
// the last [Tree.PropagateToInternals] call, or nil if propagation
// hasn't run yet. The ordinals refer to leaf position at the time
// [Tree.Annotate] indexed the tree — pruning does not renumber them.
func (t *Tree) SurvivingLeaves() *bitset.BitSet {
	return t.survivors
}
