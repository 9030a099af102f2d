// Package fileio extracts tabular data from uploaded spreadsheet files:
// the literal header row the mapper resolves, plus the data rows the
// value validators inspect.
package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ReadTable picks a parser by extension and returns the header row
// (1-based headerRow) and all rows below it keyed by header.
func ReadTable(r io.Reader, filename string, headerRow int) ([]string, []map[string]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return readXLSX(r, headerRow)
	case ".xls":
		return readXLS(r, headerRow)
	case ".csv":
		return readCSV(r, headerRow)
	default:
		return nil, nil, fmt.Errorf("unsupported file type: %s", filename)
	}
}

// pickHeader extracts the header row, substituting "Column N" for blank
// cells so every column stays addressable.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	src := rows[idx]
	headers := make([]string, len(src))
	for i, v := range src {
		v = strings.TrimSpace(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		headers[i] = v
	}
	return headers
}

// rowsToMaps converts the raw grid into one map per data row, skipping
// rows that are entirely empty.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	var out []map[string]string
	for r := headerRow; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c, h := range headers {
			var v string
			if c < len(rec) {
				v = rec[c]
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			m[h] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}
