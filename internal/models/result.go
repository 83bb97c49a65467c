// Package models defines the detection results shared by storage, server and CLI.
package models

import (
	"time"

	"github.com/hyperjump/datadetector/internal/features"
)

// SheetResult is the outcome for one sheet, in workbook order.
type SheetResult struct {
	Index       int             `json:"index"`
	Name        string          `json:"name"`
	Probability float64         `json:"probability"`
	IsData      bool            `json:"is_data"`
	Features    features.Vector `json:"features"`
}

// FileResult is the outcome for one input. Path is empty for uploads, which are keyed
// by a generated ID instead.
type FileResult struct {
	ID           string        `json:"id"`
	Path         string        `json:"path,omitempty"`
	ContentType  string        `json:"content_type"`
	Size         int64         `json:"size"`
	ModTime      time.Time     `json:"mod_time,omitempty"`
	TruncateRows int           `json:"truncate_rows,omitempty"`
	Sheets       []SheetResult `json:"sheets"`
	DetectedAt   time.Time     `json:"detected_at"`
}

// Probabilities returns the per-sheet probabilities in sheet order.
func (r *FileResult) Probabilities() []float64 {
	out := make([]float64, len(r.Sheets))
	for i, s := range r.Sheets {
		out[i] = s.Probability
	}
	return out
}

// DataSheets returns how many sheets were judged to hold data.
func (r *FileResult) DataSheets() int {
	n := 0
	for _, s := range r.Sheets {
		if s.IsData {
			n++
		}
	}
	return n
}
