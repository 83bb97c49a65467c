// Package features computes the fixed set of statistics a sheet is classified on:
// cell-level and character-level counts taken over every cell independently, and
// line-level and adjacency counts taken over rows and columns.
package features

// Vector is the feature vector of one sheet. Counts are whole numbers and every
// fraction lies in [0, 1]; a fraction whose population is empty is 0.
type Vector struct {
	// per cell
	CellNumvalNum      int     `json:"cell_numval_num" yaml:"cell_numval_num"`
	CellNumvalFrac     float64 `json:"cell_numval_frac" yaml:"cell_numval_frac"`
	CellNaturalNum     int     `json:"cell_natural_num" yaml:"cell_natural_num"`
	CellNaturalFrac    float64 `json:"cell_natural_frac" yaml:"cell_natural_frac"`
	CellUniqNumvalNum  int     `json:"cell_uniq_numval_num" yaml:"cell_uniq_numval_num"`
	CellUniqNumvalFrac float64 `json:"cell_uniq_numval_frac" yaml:"cell_uniq_numval_frac"`
	CellUnitNum        int     `json:"cell_unit_num" yaml:"cell_unit_num"`
	CellUnitFrac       float64 `json:"cell_unit_frac" yaml:"cell_unit_frac"`

	// per character
	CharNumNum   int     `json:"char_num_num" yaml:"char_num_num"`
	CharNumFrac  float64 `json:"char_num_frac" yaml:"char_num_frac"`
	CharZeroNum  int     `json:"char_zero_num" yaml:"char_zero_num"`
	CharZeroFrac float64 `json:"char_zero_frac" yaml:"char_zero_frac"`

	// per line
	LineFewNumericalNum   int     `json:"line_few_numerical_num" yaml:"line_few_numerical_num"`
	LineFewNumericalFrac  float64 `json:"line_few_numerical_frac" yaml:"line_few_numerical_frac"`
	LineHalfNumericalNum  int     `json:"line_half_numerical_num" yaml:"line_half_numerical_num"`
	LineHalfNumericalFrac float64 `json:"line_half_numerical_frac" yaml:"line_half_numerical_frac"`
	LineMostNumericalNum  int     `json:"line_most_numerical_num" yaml:"line_most_numerical_num"`
	LineMostNumericalFrac float64 `json:"line_most_numerical_frac" yaml:"line_most_numerical_frac"`

	// per adjacent pair
	UniqAdjDiffNum  int     `json:"uniq_adj_diff_num" yaml:"uniq_adj_diff_num"`
	UniqAdjDiffFrac float64 `json:"uniq_adj_diff_frac" yaml:"uniq_adj_diff_frac"`
}

// Feature names, in the order Names returns them.
const (
	CellNumvalNum         = "cell_numval_num"
	CellNumvalFrac        = "cell_numval_frac"
	CellNaturalNum        = "cell_natural_num"
	CellNaturalFrac       = "cell_natural_frac"
	CellUniqNumvalNum     = "cell_uniq_numval_num"
	CellUniqNumvalFrac    = "cell_uniq_numval_frac"
	CellUnitNum           = "cell_unit_num"
	CellUnitFrac          = "cell_unit_frac"
	CharNumNum            = "char_num_num"
	CharNumFrac           = "char_num_frac"
	CharZeroNum           = "char_zero_num"
	CharZeroFrac          = "char_zero_frac"
	LineFewNumericalNum   = "line_few_numerical_num"
	LineFewNumericalFrac  = "line_few_numerical_frac"
	LineHalfNumericalNum  = "line_half_numerical_num"
	LineHalfNumericalFrac = "line_half_numerical_frac"
	LineMostNumericalNum  = "line_most_numerical_num"
	LineMostNumericalFrac = "line_most_numerical_frac"
	UniqAdjDiffNum        = "uniq_adj_diff_num"
	UniqAdjDiffFrac       = "uniq_adj_diff_frac"
)

var names = []string{
	CellNumvalNum, CellNumvalFrac,
	CellNaturalNum, CellNaturalFrac,
	CellUniqNumvalNum, CellUniqNumvalFrac,
	CellUnitNum, CellUnitFrac,
	CharNumNum, CharNumFrac,
	CharZeroNum, CharZeroFrac,
	LineFewNumericalNum, LineFewNumericalFrac,
	LineHalfNumericalNum, LineHalfNumericalFrac,
	LineMostNumericalNum, LineMostNumericalFrac,
	UniqAdjDiffNum, UniqAdjDiffFrac,
}

// Names returns the names of all features in their canonical order.
func Names() []string {
	return append([]string(nil), names...)
}

// Map returns v keyed by feature name. Every name from Names is present.
func (v Vector) Map() map[string]float64 {
	return map[string]float64{
		CellNumvalNum:         float64(v.CellNumvalNum),
		CellNumvalFrac:        v.CellNumvalFrac,
		CellNaturalNum:        float64(v.CellNaturalNum),
		CellNaturalFrac:       v.CellNaturalFrac,
		CellUniqNumvalNum:     float64(v.CellUniqNumvalNum),
		CellUniqNumvalFrac:    v.CellUniqNumvalFrac,
		CellUnitNum:           float64(v.CellUnitNum),
		CellUnitFrac:          v.CellUnitFrac,
		CharNumNum:            float64(v.CharNumNum),
		CharNumFrac:           v.CharNumFrac,
		CharZeroNum:           float64(v.CharZeroNum),
		CharZeroFrac:          v.CharZeroFrac,
		LineFewNumericalNum:   float64(v.LineFewNumericalNum),
		LineFewNumericalFrac:  v.LineFewNumericalFrac,
		LineHalfNumericalNum:  float64(v.LineHalfNumericalNum),
		LineHalfNumericalFrac: v.LineHalfNumericalFrac,
		LineMostNumericalNum:  float64(v.LineMostNumericalNum),
		LineMostNumericalFrac: v.LineMostNumericalFrac,
		UniqAdjDiffNum:        float64(v.UniqAdjDiffNum),
		UniqAdjDiffFrac:       v.UniqAdjDiffFrac,
	}
}

// frac returns n/d, or 0 when d is 0.
func frac(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
