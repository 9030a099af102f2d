package fileio

import (
	"bytes"
	"errors"
	"io"
	"strings"

	xls "github.com/extrame/xls"
)

// readXLS parses a legacy .xls workbook. The sheet width is probed
// explicitly instead of trusting Row.LastCol, which under-reports on
// sheets with sparse trailing cells.
func readXLS(r io.Reader, headerRow int) ([]string, []map[string]string, error) {
	if headerRow <= 0 {
		return nil, nil, errors.New("headerRow must be 1-based and >= 1")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}

	// legacy exports disagree about encoding; try the usual suspects
	var wb *xls.WorkBook
	var lastErr error
	for _, charset := range []string{"utf-8", "windows-1251", "koi8-r"} {
		wb, err = xls.OpenReader(bytes.NewReader(b), charset)
		if err == nil && wb != nil {
			lastErr = nil
			break
		}
		lastErr = err
	}
	if wb == nil {
		if lastErr == nil {
			lastErr = errors.New("xls: failed to open workbook")
		}
		return nil, nil, lastErr
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil, nil
	}

	maxCols := probeWidth(sheet, headerRow)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, maxCols)
		if row != nil {
			for j := 0; j < maxCols; j++ {
				cols[j] = strings.TrimSpace(row.Col(j))
			}
		}
		rows = append(rows, cols)
	}

	headers := pickHeader(rows, headerRow)
	return headers, rowsToMaps(rows, headers, headerRow), nil
}

// probeWidth scans every row for the right-most non-empty cell, with the
// header row checked first since it is usually the widest.
func probeWidth(sheet *xls.WorkSheet, headerRow int) int {
	const probeMax = 512
	maxCols := 0

	check := func(i int) {
		if i < 0 || i > int(sheet.MaxRow) {
			return
		}
		row := sheet.Row(i)
		if row == nil {
			return
		}
		for j := 0; j < probeMax; j++ {
			if strings.TrimSpace(row.Col(j)) != "" && j+1 > maxCols {
				maxCols = j + 1
			}
		}
	}

	check(headerRow - 1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		check(i)
	}
	if maxCols == 0 {
		maxCols = 1
	}
	return maxCols
}
