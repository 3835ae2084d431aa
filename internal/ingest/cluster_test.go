// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ingest

import (
	"testing"

	"github.com/dmitsf/pargenfs"
)

func TestSelectClusterBuildsWeightMapForColumnK(t *testing.T) {
	t.Parallel()

	leaves := []*pargenfs.Node{
		pargenfs.NewNode("1.1", "dog", nil, nil),
		pargenfs.NewNode("1.2", "cat", nil, nil),
		pargenfs.NewNode("1.3", "bird", nil, nil), // absent from names: defaults to 0
	}
	names := []string{"dog", "cat"}
	matrix := [][]float64{
		{0.1, 0.9},
		{0.8, 0.2},
	}

	cluster := SelectCluster(leaves, names, matrix, 1)
	if cluster["dog"] != 0.9 || cluster["cat"] != 0.2 {
		t.Fatalf("cluster = %v, want dog=0.9 cat=0.2", cluster)
	}
	if cluster["bird"] != 0 {
		t.Fatalf("cluster[bird] = %v, want 0 (no matching row)", cluster["bird"])
	}
}
