// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ingest

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitsf/pargenfs"
)

// ErrNoTaxonomyNodes is returned by [ParseTaxonomy] when a source has no
// line matching either the comma or the space flat-view record shape.
var ErrNoTaxonomyNodes = errors.New("ingest: no recognizable taxonomy index/name pairs")

// The flat-view taxonomy representation (FVTR) puts a dotted index at
// the start of a line, followed by either ", Name," or " Name" — the
// comma form is tried first, the space-separated form is the fallback.
// A name is a run of Unicode letters, spaces, hyphens and apostrophes.
var (
	indexCommaRe = regexp.MustCompile(`^[.\d]+[*, ]`)
	nameCommaRe  = regexp.MustCompile(`,([\p{L} \-']+),?`)
	indexSpaceRe = regexp.MustCompile(`[.\d]+.? `)
	nameSpaceRe  = regexp.MustCompile(` ([\p{L} \-']+),?`)
)

type rawNode struct {
	index string // matched index token, including its trailing separator
	name  string // matched name token, including its leading separator
}

// indexAndName mirrors the original format's index/name extraction: the
// index drops its trailing separator character, and the name drops its
// leading separator and, if present, a trailing comma.
func indexAndName(n rawNode) (index, name string) {
	index = n.index[:len(n.index)-1]

	last, lastSize := utf8.DecodeLastRuneInString(n.name)
	if unicode.IsLetter(last) || last == '\'' {
		name = n.name[1:]
	} else {
		name = n.name[1 : len(n.name)-lastSize]
	}
	return index, strings.ToLower(name)
}

// ParseTaxonomy reads a taxonomy description in flat-view taxonomy
// representation (FVTR) from r and builds the corresponding
// [pargenfs.Tree].
//
// Each line is matched against the comma record shape
// ("1.2.3,Some Name,"); only when a line's index doesn't start right at
// column zero does parsing fall back to the space-separated shape
// ("1.2.3 Some Name"). Lines matching neither are skipped. If every
// subsequent index has the first line's index as a (string) prefix, the
// first line becomes the root; otherwise a synthetic root named "root"
// is created to hold every parsed node.
//
// Tree construction walks the parsed nodes in file order, climbing back
// up the most recently created node's ancestor chain until it finds one
// whose index is contained in the next node's index — this assumes the
// source file lists nodes in depth-first order, exactly as the FVTR
// format intends.
func ParseTaxonomy(r io.Reader) (*pargenfs.Tree, error) {
	var nodes []rawNode

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		idx := indexCommaRe.FindString(line)
		var name string
		if idx != "" {
			name = nameCommaRe.FindString(line)
		} else {
			idx = indexSpaceRe.FindString(line)
			name = nameSpaceRe.FindString(line)
		}
		if idx != "" && name != "" {
			nodes = append(nodes, rawNode{index: idx, name: name})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, ErrNoTaxonomyNodes
	}

	rootIndex := nodes[0].index[:len(nodes[0].index)-1]
	rootFound := true
	for _, n := range nodes[1:] {
		if !strings.HasPrefix(n.index[:len(n.index)-1], rootIndex) {
			rootFound = false
			break
		}
	}

	var root *pargenfs.Node
	if rootFound {
		index, name := indexAndName(nodes[0])
		root = pargenfs.NewNode(index, name, nil, nil)
		nodes = nodes[1:]
	} else {
		root = pargenfs.NewNode("", "root", nil, nil)
	}

	currParent := root
	for _, n := range nodes {
		index, name := indexAndName(n)
		for !strings.Contains(index, currParent.Index) {
			if currParent.Parent == nil {
				break
			}
			currParent = currParent.Parent
		}

		current := pargenfs.NewNode(index, name, currParent, nil)
		currParent.Children = append(currParent.Children, current)
		currParent = current
	}

	return pargenfs.NewTree(root), nil
}
