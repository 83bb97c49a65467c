package features

import (
	"unicode"
	"unicode/utf8"

	"github.com/hyperjump/datadetector/internal/grid"
	"github.com/hyperjump/datadetector/internal/normalize"
	"github.com/hyperjump/datadetector/internal/numval"
)

// Share of numeric cells a line needs to count as few-, half- or most-numerical.
// A line can meet several thresholds at once.
const (
	FewThreshold  = 0.25
	HalfThreshold = 0.50
	MostThreshold = 0.75
)

// Extract normalizes every cell of g and computes its feature vector. g is not modified.
func Extract(g grid.Grid) Vector {
	normalized := grid.MapCells(normalize.Cell, g)
	var v Vector
	independent(normalized, &v)
	dependent(normalized, &v)
	return v
}

// independent fills the per-cell and per-character features. Cell order does not matter.
func independent(g grid.Grid, v *Vector) {
	var cells, numeric, natural, unit int
	var chars, digits, zeros int
	literals := make(map[string]struct{})

	for _, row := range g {
		for _, cell := range row {
			if cell == "" {
				continue
			}
			cells++
			if numval.HasUnit(cell) {
				unit++
			}
			if literal, ok := numval.Extract(cell); ok {
				numeric++
				literals[literal] = struct{}{}
				if numval.LooksNatural(literal) {
					natural++
				}
			}
			chars += utf8.RuneCountInString(cell)
			for _, r := range cell {
				if unicode.IsDigit(r) {
					digits++
				}
				if r == '0' {
					zeros++
				}
			}
		}
	}

	v.CellNumvalNum = numeric
	v.CellNumvalFrac = frac(numeric, cells)
	v.CellNaturalNum = natural
	v.CellNaturalFrac = frac(natural, cells)
	// Distinct values are measured against all non-empty cells, not numeric cells.
	v.CellUniqNumvalNum = len(literals)
	v.CellUniqNumvalFrac = frac(len(literals), cells)
	v.CellUnitNum = unit
	v.CellUnitFrac = frac(unit, cells)
	v.CharNumNum = digits
	v.CharNumFrac = frac(digits, chars)
	v.CharZeroNum = zeros
	v.CharZeroFrac = frac(zeros, chars)
}

// dependent fills the per-line and per-adjacent-pair features. Rows and columns form
// a single population of lines.
func dependent(g grid.Grid, v *Vector) {
	var lines, few, half, most int
	var diffs int
	uniqDiffs := make(map[float64]struct{})

	for _, line := range g.Lines() {
		nonEmpty := 0
		var values []float64
		for _, cell := range line {
			if cell == "" {
				continue
			}
			nonEmpty++
			if literal, ok := numval.Extract(cell); ok {
				values = append(values, numval.Value(literal))
			}
		}
		if nonEmpty == 0 {
			continue
		}
		lines++
		share := float64(len(values)) / float64(nonEmpty)
		if share >= FewThreshold {
			few++
		}
		if share >= HalfThreshold {
			half++
		}
		if share >= MostThreshold {
			most++
		}
		// Adjacency is among the numeric values of the line, skipping other cells.
		for i := 1; i < len(values); i++ {
			uniqDiffs[values[i]-values[i-1]] = struct{}{}
			diffs++
		}
	}

	v.LineFewNumericalNum = few
	v.LineFewNumericalFrac = frac(few, lines)
	v.LineHalfNumericalNum = half
	v.LineHalfNumericalFrac = frac(half, lines)
	v.LineMostNumericalNum = most
	v.LineMostNumericalFrac = frac(most, lines)
	v.UniqAdjDiffNum = len(uniqDiffs)
	v.UniqAdjDiffFrac = frac(len(uniqDiffs), diffs)
}
