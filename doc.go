// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package pargenfs implements the ParGenFS lifting algorithm: given a
// rooted, labeled taxonomy and a fuzzy membership vector over its
// leaves, it produces a parsimonious set of internal nodes — "head
// subjects" — that together describe what the membership vector "is
// about" in terms of the taxonomy's own concepts.
//
// The pipeline runs over an in-memory [Tree] in six strictly ordered,
// single-threaded stages:
//
//   - depth bookkeeping ([Tree.EnumerateLayers] first; [Tree.ReduceEdges] runs after the gap bookkeeping)
//   - weight assignment and normalization ([Tree.Annotate], [Tree.Normalize])
//   - threshold truncation and re-normalization ([Tree.Truncate])
//   - propagation of leaf weights to internal nodes ([Tree.PropagateToInternals])
//   - pruning of zero-weight subtrees and gap bookkeeping ([Tree.Prune], [Tree.SetGaps], [Tree.SetParameters])
//   - the ParGenFS dynamic program itself ([Tree.InitStep], [Tree.RecursiveStep], [Tree.MarkOffshoots])
//
// [Run] drives all six stages for a single cluster and returns the
// result table and serialized tree description consumed by downstream
// reporting and rendering tools.
package pargenfs
