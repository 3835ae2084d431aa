// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command pargenfs lifts a cluster over a taxonomy using the ParGenFS
// algorithm, reading a flat-view taxonomy, a leaf-name listing and a
// cluster membership table, and writing a result table and a
// serialized tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/dmitsf/pargenfs"
	"github.com/dmitsf/pargenfs/internal/ingest"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("pargenfs: ")

	defaults := pargenfs.DefaultConfig()
	theta := flag.Float64("theta", defaults.Theta, "membership threshold; leaf weights below theta are zeroed")
	gamma := flag.Float64("gamma", defaults.Gamma, "leaf penalty coefficient")
	lambda := flag.Float64("lambda", defaults.Lambda, "lift-cost coefficient")
	tablePath := flag.String("table", "table.csv", "path to write the result table (tab-separated)")
	treePath := flag.String("tree", "tree.nhx", "path to write the serialized NHX tree")
	verbose := flag.Bool("v", false, "print leaf weight listings before and after truncation")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 4 {
		flag.Usage()
		os.Exit(2)
	}

	taxonomyFile := flag.Arg(0)
	leavesFile := flag.Arg(1)
	clustersFile := flag.Arg(2)

	var clusterNumber int
	if _, err := fmt.Sscanf(flag.Arg(3), "%d", &clusterNumber); err != nil {
		log.Fatalf("cluster_number %q is not an integer: %v", flag.Arg(3), err)
	}

	if err := run(taxonomyFile, leavesFile, clustersFile, clusterNumber, pargenfs.Config{
		Theta:  *theta,
		Gamma:  *gamma,
		Lambda: *lambda,
	}, *tablePath, *treePath, *verbose); err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] taxonomy_file leaves_file clusters_file cluster_number\n", os.Args[0])
	flag.PrintDefaults()
}

func run(taxonomyFile, leavesFile, clustersFile string, clusterNumber int, cfg pargenfs.Config, tablePath, treePath string, verbose bool) error {
	tree, err := parseTaxonomy(taxonomyFile)
	if err != nil {
		return fmt.Errorf("reading taxonomy: %w", err)
	}

	cluster, err := readCluster(leavesFile, clustersFile, clusterNumber, tree)
	if err != nil {
		return err
	}

	result, err := pargenfs.Run(tree, cluster, cfg)
	if err != nil {
		return fmt.Errorf("running pargenfs: %w", err)
	}

	if verbose {
		log.Printf("leaves before truncation: %d", len(result.LeafWeights))
		printWeights(result.LeafWeights)
		log.Printf("leaves after truncation: %d", len(result.TruncatedLeafWeights))
		printWeights(result.TruncatedLeafWeights)
		log.Printf("membership in root: %.5f", result.RootU)
	}

	if err := writeTable(tablePath, result.Table); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	log.Printf("table saved in the file: %s", tablePath)

	if err := os.WriteFile(treePath, []byte(result.Serialized), 0o644); err != nil {
		return fmt.Errorf("writing serialized tree: %w", err)
	}
	log.Printf("tree saved in the file: %s", treePath)

	return nil
}

func parseTaxonomy(path string) (*pargenfs.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ParseTaxonomy(f)
}

func readCluster(leavesFile, clustersFile string, clusterNumber int, tree *pargenfs.Tree) (map[string]float64, error) {
	leavesF, err := os.Open(leavesFile)
	if err != nil {
		return nil, fmt.Errorf("reading leaf names: %w", err)
	}
	defer leavesF.Close()
	names, err := ingest.ReadLeafNames(leavesF)
	if err != nil {
		return nil, fmt.Errorf("reading leaf names: %w", err)
	}

	clustersF, err := os.Open(clustersFile)
	if err != nil {
		return nil, fmt.Errorf("reading membership matrix: %w", err)
	}
	defer clustersF.Close()
	matrix, err := ingest.ReadMembershipMatrix(clustersF)
	if err != nil {
		return nil, fmt.Errorf("reading membership matrix: %w", err)
	}

	return ingest.SelectCluster(tree.Leaves(), names, matrix, clusterNumber), nil
}

func writeTable(path string, table [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, row := range table {
		if _, err := fmt.Fprintln(f, joinTab(row)); err != nil {
			return err
		}
	}
	return nil
}

func joinTab(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += "\t" + f
	}
	return out
}

func printWeights(weights []pargenfs.LeafWeight) {
	sorted := append([]pargenfs.LeafWeight(nil), weights...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].U > sorted[j].U })
	for _, w := range sorted {
		if w.U == 0 {
			break
		}
		log.Printf("%-60s %.5f", w.Name, w.U)
	}
}
