// Package grid provides the in-memory model of one spreadsheet sheet: rows of cell strings,
// possibly ragged, with a derived column-major view.
package grid

// Row is an ordered sequence of cells. Rows of the same grid may differ in length.
type Row []string

// Grid is one sheet's rows of cells.
type Grid []Row

// Sheet is a named grid at its position in the source workbook.
type Sheet struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Grid  Grid   `json:"-"`
}

// Rows returns the rows of g as-is, ragged shape included.
func (g Grid) Rows() []Row {
	return g
}

// Columns returns the column-major view of g. Column c holds row[c] for every row,
// with "" standing in for rows shorter than c+1. The number of columns equals the
// length of the longest row, so a grid without cells has no columns.
func (g Grid) Columns() []Row {
	width := g.Width()
	cols := make([]Row, width)
	for c := 0; c < width; c++ {
		col := make(Row, len(g))
		for r, row := range g {
			if c < len(row) {
				col[r] = row[c]
			}
		}
		cols[c] = col
	}
	return cols
}

// Lines returns the rows of g followed by its columns.
func (g Grid) Lines() []Row {
	cols := g.Columns()
	lines := make([]Row, 0, len(g)+len(cols))
	lines = append(lines, g...)
	return append(lines, cols...)
}

// Width returns the length of the longest row.
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Truncate returns the first n rows of g. n <= 0 returns g unchanged.
func (g Grid) Truncate(n int) Grid {
	if n <= 0 || len(g) <= n {
		return g
	}
	return g[:n]
}

// MapCells applies transform to every cell of g and returns the result as a new grid
// with the same ragged shape. g is not modified.
func MapCells(transform func(string) string, g Grid) Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		mapped := make(Row, len(row))
		for j, cell := range row {
			mapped[j] = transform(cell)
		}
		out[i] = mapped
	}
	return out
}
