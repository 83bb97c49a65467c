package features

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/datadetector/internal/grid"
)

func TestExtract_emptyGrids(t *testing.T) {
	tests := []struct {
		name string
		g    grid.Grid
	}{
		{"nil", nil},
		{"no cells", grid.Grid{{}, {}}},
		{"blank after normalization", grid.Grid{{" ", "-", "ー"}, {"\t", "", "　"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract(tt.g).Map()
			require.Len(t, m, len(Names()))
			for name, value := range m {
				assert.Zero(t, value, name)
			}
		})
	}
}

func TestExtract_singleColumn(t *testing.T) {
	v := Extract(grid.Grid{{"1"}, {"2"}, {"3"}})

	assert.Equal(t, 3, v.CellNumvalNum)
	assert.Equal(t, 1.0, v.CellNumvalFrac)
	assert.Equal(t, 3, v.CellNaturalNum)
	assert.Equal(t, 3, v.CellUniqNumvalNum)
	assert.Equal(t, 1.0, v.CellUniqNumvalFrac)
	assert.Equal(t, 3, v.CharNumNum)
	assert.Equal(t, 0, v.CharZeroNum)

	// three single-cell rows and one column
	assert.Equal(t, 4, v.LineMostNumericalNum)
	assert.Equal(t, 1.0, v.LineMostNumericalFrac)

	// 2-1 and 3-2 are the same difference
	assert.Equal(t, 1, v.UniqAdjDiffNum)
	assert.Equal(t, 0.5, v.UniqAdjDiffFrac)
}

func TestExtract_otherScriptDigits(t *testing.T) {
	v := Extract(grid.Grid{{"١"}, {"٢"}, {"٣"}})

	assert.Equal(t, 3, v.CellNumvalNum)
	assert.Equal(t, 3, v.CellNaturalNum)
	assert.Equal(t, 3, v.CharNumNum)
	assert.Equal(t, 1, v.UniqAdjDiffNum)
}

func TestExtract_leadingMinusStaysWithNumber(t *testing.T) {
	v := Extract(grid.Grid{{"-5"}, {"5"}, {"-3"}})

	assert.Equal(t, 1, v.CellNaturalNum)
	assert.Equal(t, 3, v.CellUniqNumvalNum)
}

func TestExtract_headerText(t *testing.T) {
	v := Extract(grid.Grid{
		{"Name", "Address", "Remarks"},
		{"Prefecture", "City", "Notes"},
	})
	assert.Equal(t, 0, v.CellNumvalNum)
	assert.Zero(t, v.CellNumvalFrac)
	assert.Zero(t, v.CellNaturalFrac)
	assert.Zero(t, v.CellUniqNumvalFrac)
	assert.Zero(t, v.CellUnitFrac)
	assert.Zero(t, v.CharNumFrac)
	assert.Zero(t, v.CharZeroFrac)
	assert.Zero(t, v.LineFewNumericalFrac)
	assert.Zero(t, v.LineHalfNumericalFrac)
	assert.Zero(t, v.LineMostNumericalFrac)
	assert.Zero(t, v.UniqAdjDiffFrac)
}

func TestExtract_distinctIntegerBlock(t *testing.T) {
	g := make(grid.Grid, 10)
	for r := range g {
		g[r] = make(grid.Row, 3)
		for c := range g[r] {
			g[r][c] = strconv.Itoa(r*3 + c + 1)
		}
	}
	v := Extract(g)

	assert.Equal(t, 30, v.CellNumvalNum)
	assert.Equal(t, 30, v.CellUniqNumvalNum)
	assert.Equal(t, 1.0, v.CellUniqNumvalFrac)

	// 10 rows and 3 columns, all fully numeric
	assert.Equal(t, 13, v.LineMostNumericalNum)
	assert.Equal(t, 1.0, v.LineFewNumericalFrac)
	assert.Equal(t, 1.0, v.LineHalfNumericalFrac)
	assert.Equal(t, 1.0, v.LineMostNumericalFrac)

	// rows step by 1 (20 pairs), columns step by 3 (27 pairs)
	assert.Equal(t, 2, v.UniqAdjDiffNum)
	assert.InDelta(t, 2.0/47.0, v.UniqAdjDiffFrac, 1e-12)
}

func TestExtract_lineThresholdsOverlap(t *testing.T) {
	v := Extract(grid.Grid{{"a", "1", "b", "c"}})

	// the row is 1/4 numeric; of the four columns only the "1" column is numeric
	assert.Equal(t, 2, v.LineFewNumericalNum)
	assert.Equal(t, 1, v.LineHalfNumericalNum)
	assert.Equal(t, 1, v.LineMostNumericalNum)
	assert.InDelta(t, 0.4, v.LineFewNumericalFrac, 1e-12)
	assert.InDelta(t, 0.2, v.LineHalfNumericalFrac, 1e-12)
	assert.InDelta(t, 0.2, v.LineMostNumericalFrac, 1e-12)
}

func TestExtract_normalizesCells(t *testing.T) {
	v := Extract(grid.Grid{{"１０", "-"}, {"ー", "２０"}})

	assert.Equal(t, 2, v.CellNumvalNum)
	assert.Equal(t, 1.0, v.CellNumvalFrac)
	assert.Equal(t, 4, v.CharNumNum)
	assert.Equal(t, 2, v.CharZeroNum)
	assert.Equal(t, 0.5, v.CharZeroFrac)
}

func TestExtract_unitsAndNaturals(t *testing.T) {
	v := Extract(grid.Grid{
		{"10%", "5kg", "abc"},
		{"1", "-2", "3.5", "$4"},
	})

	assert.Equal(t, 2, v.CellUnitNum)
	assert.InDelta(t, 2.0/7.0, v.CellUnitFrac, 1e-12)

	// "10%", "1", "-2", "3.5" and "$4" are numeric; "5kg" has a two-character suffix
	assert.Equal(t, 5, v.CellNumvalNum)
	assert.Equal(t, 3, v.CellNaturalNum)
	assert.Equal(t, 5, v.CellUniqNumvalNum)
}

func TestExtract_uniqueLiteralsAgainstAllCells(t *testing.T) {
	v := Extract(grid.Grid{{"7", "7", "7", "x"}})

	assert.Equal(t, 3, v.CellNumvalNum)
	assert.Equal(t, 1, v.CellUniqNumvalNum)
	assert.Equal(t, 0.25, v.CellUniqNumvalFrac)
}

func TestExtract_adjacencySkipsNonNumeric(t *testing.T) {
	v := Extract(grid.Grid{{"1", "x", "3"}})

	assert.Equal(t, 1, v.UniqAdjDiffNum)
	assert.Equal(t, 1.0, v.UniqAdjDiffFrac)
}

func TestExtract_doesNotModifyInput(t *testing.T) {
	g := grid.Grid{{" １ ", "ー"}}
	_ = Extract(g)
	assert.Equal(t, grid.Grid{{" １ ", "ー"}}, g)
}

func TestExtract_fractionsInRange(t *testing.T) {
	v := Extract(grid.Grid{
		{"Item", "Q1", "Q2", "Total"},
		{"Apples", "1,200", "980", "2,180"},
		{"Pears", "-", "15%", "x"},
		{"", "", "13:00", "090-1111-2222"},
	})
	for _, name := range Names() {
		value := v.Map()[name]
		if len(name) > 5 && name[len(name)-5:] == "_frac" {
			assert.GreaterOrEqual(t, value, 0.0, name)
			assert.LessOrEqual(t, value, 1.0, name)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	require.Len(t, names, 20)
	assert.Equal(t, CellNumvalNum, names[0])
	assert.Equal(t, UniqAdjDiffFrac, names[19])

	names[0] = "mutated"
	assert.Equal(t, CellNumvalNum, Names()[0])

	m := Vector{}.Map()
	for _, name := range Names() {
		_, ok := m[name]
		assert.True(t, ok, name)
	}
}
