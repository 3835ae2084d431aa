// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package ingest

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ReadMembershipMatrix reads a cluster membership table: one row per
// node name, one column per cluster, values separated by tabs. Rows
// that fail to parse as tab-separated floats fall back to
// space-separated parsing, matching clusters files produced by either
// convention. A row that parses under neither separator yields a
// [ParseError] naming the offending line and field.
func ReadMembershipMatrix(r io.Reader) ([][]float64, error) {
	var matrix [][]float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		row, err := parseFloatRow(strings.Split(line, "\t"))
		if err != nil {
			row, err = parseFloatRow(strings.Fields(line))
			if err != nil {
				return nil, &ParseError{Line: lineNo, Token: line, Err: err}
			}
		}
		matrix = append(matrix, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return matrix, nil
}

func parseFloatRow(fields []string) ([]float64, error) {
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}
