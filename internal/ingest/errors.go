// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package ingest reads the three flat-file inputs the ParGenFS pipeline
// consumes: a taxonomy in flat-view taxonomy representation (FVTR), a
// leaf-name list, and a cluster membership matrix. None of the parsers
// here know anything about the pipeline itself; they only produce the
// [github.com/dmitsf/pargenfs.Tree] and the cluster map that [pargenfs.Run]
// takes as input.
package ingest

import "fmt"

// ParseError reports a malformed line encountered while reading a
// membership matrix. Line is 1-indexed.
type ParseError struct {
	Line  int
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ingest: line %d: token %q: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
