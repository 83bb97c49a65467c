package extract

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hyperjump/datadetector/internal/grid"
	"github.com/xuri/excelize/v2"
)

func parseXLSX(content []byte, opts Options) ([]grid.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]grid.Sheet, 0, len(names))
	for i, name := range names {
		g, err := readXLSXSheet(f, name, opts)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, grid.Sheet{Index: i, Name: name, Grid: g})
	}
	return sheets, nil
}

func readXLSXSheet(f *excelize.File, sheet string, opts Options) (grid.Grid, error) {
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var g grid.Grid
	for rows.Next() && !opts.limitReached(len(g)) {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		row := make(grid.Row, len(cols))
		for c, v := range cols {
			row[c] = xlsxCellValue(f, sheet, c+1, len(g)+1, v)
		}
		g = append(g, row)
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}
	return g, nil
}

// xlsxCellValue renders numeric cells the same way as XLS numbers so the two workbook
// formats agree on the text of a value. Text cells are returned as stored.
func xlsxCellValue(f *excelize.File, sheet string, col, row int, raw string) string {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return raw
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return raw
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return grid.Stringify(n)
	default:
		return raw
	}
}
