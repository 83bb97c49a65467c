// Package cli provides output formatting for the datadetector command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/datadetector/internal/features"
	"github.com/hyperjump/datadetector/internal/models"
	"github.com/hyperjump/datadetector/pkg/utils"
)

// OutputFormat is the format for detection output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one tab-separated line per sheet.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// maxNameLen bounds sheet names in text output.
const maxNameLen = 32

// ParseOutputFormat validates a format name given on the command line.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// fileOutput is the JSON shape of one detected file.
type fileOutput struct {
	*models.FileResult
	Probabilities []float64 `json:"probabilities"`
}

// WriteFileResults writes detection results to w in the given format. Unknown formats
// are written as text.
func WriteFileResults(w io.Writer, results []*models.FileResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		out := make([]fileOutput, len(results))
		for i, r := range results {
			out[i] = fileOutput{FileResult: r, Probabilities: r.Probabilities()}
		}
		return encodeJSON(w, out)
	case OutputCompact:
		for _, r := range results {
			for _, s := range r.Sheets {
				fmt.Fprintf(w, "%s\t%d\t%s\t%.4f\t%s\n", source(r), s.Index, s.Name, s.Probability, verdict(s))
			}
		}
		return nil
	default:
		for _, r := range results {
			writeFileText(w, r)
		}
		return nil
	}
}

func writeFileText(w io.Writer, r *models.FileResult) {
	fmt.Fprintf(w, "%s (%s, %d sheet(s), %d data)\n", source(r), r.ContentType, len(r.Sheets), r.DataSheets())
	for _, s := range r.Sheets {
		fmt.Fprintf(w, "  [%d] %-*s  %.4f  %s\n", s.Index, maxNameLen+3, utils.Truncate(s.Name, maxNameLen), s.Probability, verdict(s))
	}
}

// sheetOutput is the JSON shape of one sheet's features.
type sheetOutput struct {
	Index    int                `json:"index"`
	Name     string             `json:"name"`
	Features map[string]float64 `json:"features"`
}

// WriteFeatures writes the feature vectors of sheets to w. Text output lists features in
// their canonical order.
func WriteFeatures(w io.Writer, sheets []models.SheetResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		out := make([]sheetOutput, len(sheets))
		for i, s := range sheets {
			out[i] = sheetOutput{Index: s.Index, Name: s.Name, Features: s.Features.Map()}
		}
		return encodeJSON(w, out)
	case OutputCompact:
		names := features.Names()
		for _, s := range sheets {
			m := s.Features.Map()
			fields := make([]string, len(names))
			for i, n := range names {
				fields[i] = fmt.Sprintf("%s=%s", n, formatValue(m[n]))
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.Index, s.Name, strings.Join(fields, " "))
		}
		return nil
	default:
		names := features.Names()
		for _, s := range sheets {
			fmt.Fprintf(w, "[%d] %s\n", s.Index, utils.Truncate(s.Name, maxNameLen))
			m := s.Features.Map()
			for _, n := range names {
				fmt.Fprintf(w, "  %-26s %s\n", n, formatValue(m[n]))
			}
		}
		return nil
	}
}

// Summary is the outcome of a directory scan.
type Summary struct {
	Root      string `json:"root"`
	Detected  int    `json:"detected"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
}

// WriteSummary writes a scan summary to w.
func WriteSummary(w io.Writer, s Summary, format OutputFormat) error {
	if format == OutputJSON {
		return encodeJSON(w, s)
	}
	fmt.Fprintf(w, "Scanned %s: %d detected, %d unchanged, %d failed\n", s.Root, s.Detected, s.Unchanged, s.Failed)
	return nil
}

func source(r *models.FileResult) string {
	if r.Path != "" {
		return r.Path
	}
	return r.ID
}

func verdict(s models.SheetResult) string {
	if s.IsData {
		return "data"
	}
	return "-"
}

// formatValue prints counts without a fraction and fractions with four decimals.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.4f", v)
}

func encodeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
