// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package pargenfs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ResultTableHeader is the fixed header row every [Tree.ResultTable]
// output is prefixed with.
var ResultTableHeader = []string{"index", "name", "u", "p", "V", "G", "H", "L"}

// ResultTable produces one row per node: (index without a trailing dot,
// name, U, P, V rounded to 3 decimals, and the formatted G/H/L sets),
// where a formatted set is its members joined by "; ", each rendered
// as "index name". Rows are sorted lexicographically (every data row
// has the same column count, so the spec's "(row length, row tuple)"
// sort key reduces to plain lexicographic order over the rows) and
// prefixed with [ResultTableHeader].
func (t *Tree) ResultTable() [][]string {
	var rows [][]string
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			walk(c)
		}
		rows = append(rows, []string{
			strings.TrimRight(n.Index, "."),
			n.Name,
			formatRound3(n.U),
			formatRound3(n.P),
			formatRound3(n.V),
			formatNodeSet(n.G),
			formatNodeSet(n.H),
			formatNodeSet(n.L),
		})
	}
	walk(t.Root)

	sort.Slice(rows, func(i, j int) bool {
		return lessRow(rows[i], rows[j])
	})

	out := make([][]string, 0, len(rows)+1)
	out = append(out, ResultTableHeader)
	out = append(out, rows...)
	return out
}

func lessRow(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func formatNodeSet(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.Index + " " + n.Name
	}
	return strings.Join(parts, "; ")
}

func formatRound3(v float64) string {
	return strconv.FormatFloat(round3(v), 'f', -1, 64)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// SerializedTreeRaw renders the plain, unannotated topology of the
// tree as a nested Newick-like expression: "(child,child,...)name;".
// Unlike [Tree.SerializedTree] it carries no weights or DP annotations
// and performs no sorting or elision — it is useful for sanity-checking
// taxonomy ingestion before any cluster has been lifted over it.
func SerializedTreeRaw(root *Node) string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsInternal() {
			b.WriteByte('(')
			for i, c := range n.Children {
				if i > 0 {
					b.WriteByte(',')
				}
				walk(c)
			}
			b.WriteByte(')')
		}
		b.WriteString(n.Name)
	}
	walk(root)
	b.WriteByte(';')
	return b.String()
}

// SerializedTree renders the annotated tree in the nested, attributed
// form consumed (verbatim) by the external renderer. printAll controls
// whether nodes with U == 0 still get an attribute block emitted
// (true reproduces every node; false omits the weightless ones).
//
//   - Children are emitted in ascending-U order.
//   - A run of two or more leading zero-U children is collapsed into a
//     single synthetic sibling labeled "first. last" (exactly two) or
//     "first...last N items" (three or more) — first/last by name,
//     rendered by recursing into a copy of the last node of the run
//     that carries the synthetic name; the tree is not modified. A single
//     (unpaired) leading zero-U child is emitted as itself.
//   - Every emitted node carries an NHX attribute block: p, e, H-names,
//     u, v, G-names, L-names, Hd (1 iff the node's index is in the
//     root's head-subject set), Ch (1 iff internal), and Sq (1 iff this
//     node or an ancestor is a head subject).
func (t *Tree) SerializedTree(printAll bool) string {
	headSubjects := make(map[string]struct{}, len(t.Root.H))
	for _, h := range t.Root.H {
		headSubjects[h.Index] = struct{}{}
	}

	var b strings.Builder

	var rec func(n *Node, headSubject bool)
	rec = func(n *Node, headSubject bool) {
		if _, ok := headSubjects[n.Index]; ok {
			headSubject = true
		}

		if n.IsInternal() {
			sorted := append([]*Node(nil), n.Children...)
			sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].U < sorted[j].U })

			j := 0
			for j < len(sorted) && sorted[j].U == 0 {
				j++
			}

			b.WriteByte('(')
			if j > 0 {
				displayName := sorted[j-1].Name
				switch {
				case j == 2:
					displayName = sorted[0].Name + ". " + sorted[j-1].Name
				case j > 2:
					displayName = sorted[0].Name + "..." + sorted[j-1].Name + " " + strconv.Itoa(j) + " items"
				}
				rec(renamed(sorted[j-1], displayName), headSubject)
				b.WriteByte(',')
			}

			rest := sorted[j:]
			for k, c := range rest {
				rec(c, headSubject)
				if k < len(rest)-1 {
					b.WriteByte(',')
				}
			}
			b.WriteByte(')')
		}

		if n.U > 0 || printAll {
			b.WriteString(n.Name)
			writeNHX(&b, n, headSubjects, headSubject)
		}
	}

	rec(t.Root, false)
	b.WriteByte(';')
	return b.String()
}

// renamed returns a shallow copy of n with Name replaced; used only to
// drive [Tree.SerializedTree]'s recursion into a synthetic elided-run
// label without mutating the real tree.
func renamed(n *Node, name string) *Node {
	cp := *n
	cp.Name = name
	return &cp
}

func writeNHX(b *strings.Builder, n *Node, headSubjects map[string]struct{}, headSubject bool) {
	_, isHead := headSubjects[n.Index]

	fmt.Fprintf(b, "[&&NHX:p=%s:e=%d:H={%s}:u=%s:v=%s:G={%s}:L={%s}:Hd=%s:Ch=%s:Sq=%s]",
		formatRound3(n.P),
		n.E,
		truncatedNames(n.H),
		formatRound3(n.U),
		formatRound3(n.GapV),
		truncatedNames(n.G),
		truncatedNames(n.L),
		boolFlag(isHead),
		boolFlag(n.IsInternal()),
		boolFlag(headSubject),
	)
}

// truncatedNames joins a set's member names with ";", collapsing to
// "first;...;last" once the set has three or more members, so labels
// stay readable regardless of gap/head/loss-set size.
func truncatedNames(nodes []*Node) string {
	if len(nodes) < 3 {
		names := make([]string, len(nodes))
		for i, n := range nodes {
			names[i] = n.Name
		}
		return strings.Join(names, ";")
	}
	return nodes[0].Name + ";...;" + nodes[len(nodes)-1].Name
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
