package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/hyperjump/datadetector/internal/grid"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(content []byte, opts Options) ([]grid.Sheet, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var g grid.Grid
	for !opts.limitReached(len(g)) {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV: %w", err)
		}
		g = append(g, grid.Row(rec))
	}
	return []grid.Sheet{{Index: 0, Name: opts.Name, Grid: g}}, nil
}
