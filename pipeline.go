// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

// Result is everything one [Run] produces for a single cluster: the
// result table and serialized tree spec.md §6 names as the two output
// artifacts, plus the intermediate leaf-weight listings the reference
// implementation prints along the way (kept here instead of printed,
// so callers — e.g. cmd/pargenfs — decide whether and how to log them).
type Result struct {
	LeafWeights          []LeafWeight // after the first normalization, before truncation
	TruncatedLeafWeights []LeafWeight // after truncation and re-normalization
	RootU                float64      // root membership after propagation

	Table      [][]string
	Serialized string
}

// Run drives every pipeline stage over tree for a single cluster, in
// the fixed order spec.md §2 and §4 specify:
//
//	depth bookkeeping -> weight assignment -> truncation -> propagation
//	-> pruning & gaps -> ParGenFS DP -> result extraction
//
// It returns [ErrThresholdTooLarge] (and no [Result]) if cfg.Theta
// zeroed every leaf's membership weight.
func Run(tree *Tree, cluster map[string]float64, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tree.EnumerateLayers()

	sum := tree.Annotate(cluster)
	leafWeights := tree.Normalize(sum)

	sumAfterTrunc := tree.Truncate(cfg.Theta)
	if sumAfterTrunc == 0 {
		return nil, ErrThresholdTooLarge
	}
	truncatedWeights := tree.Normalize(sumAfterTrunc)

	tree.PropagateToInternals()
	rootU := tree.Root.U

	tree.Prune()
	tree.SetGaps()
	tree.SetParameters()
	tree.ReduceEdges()

	tree.InitStep(cfg.Gamma)
	tree.RecursiveStep(cfg.Gamma, cfg.Lambda)
	tree.MarkOffshoots()
	tree.VerifyHeadCoverage()

	return &Result{
		LeafWeights:          leafWeights,
		TruncatedLeafWeights: truncatedWeights,
		RootU:                rootU,
		Table:                tree.ResultTable(),
		Serialized:           tree.SerializedTree(true),
	}, nil
}
