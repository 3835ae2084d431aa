// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ingest

import "github.com/dmitsf/pargenfs"

// SelectCluster builds the leaf-name-to-weight map for cluster k: the
// k-th column of matrix, keyed by names, restricted to the names that
// actually occur among leaves. A leaf whose name has no corresponding
// row in names gets weight 0, matching the original tool's silent
// defaulting.
func SelectCluster(leaves []*pargenfs.Node, names []string, matrix [][]float64, k int) map[string]float64 {
	nameToWeight := make(map[string]float64, len(names))
	for i, name := range names {
		if i >= len(matrix) {
			break
		}
		if k < 0 || k >= len(matrix[i]) {
			continue
		}
		nameToWeight[name] = matrix[i][k]
	}

	cluster := make(map[string]float64, len(leaves))
	for _, leaf := range leaves {
		cluster[leaf.Name] = nameToWeight[leaf.Name]
	}
	return cluster
}
