// Package extract reads the cell values of CSV, XLS and XLSX inputs into grids, one per sheet.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/datadetector/internal/grid"
	"go.uber.org/zap"
)

// ContentType names an input format.
type ContentType string

const (
	// XLS is the legacy binary workbook format (BIFF in an OLE2 container).
	XLS ContentType = "xls"
	// XLSX is the XML workbook format (Office Open XML in a ZIP container).
	XLSX ContentType = "xlsx"
	// CSV is comma-separated values; it always yields exactly one sheet.
	CSV ContentType = "csv"
)

// ParseContentType validates s as a content type. The match is case-insensitive and a
// leading dot is accepted, so file extensions can be passed directly.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); ct {
	case XLS, XLSX, CSV:
		return ct, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidContentType, s)
	}
}

// IsWorkbook reports whether ct is a workbook format.
func (ct ContentType) IsWorkbook() bool {
	return ct == XLS || ct == XLSX
}

// ContentTypeFromPath returns the content type implied by a file name. Files ending in
// .csv are CSV; anything else is read as a workbook, with the exact format sniffed later.
func ContentTypeFromPath(path string) ContentType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV
	case ".xls":
		return XLS
	default:
		return XLSX
	}
}

var (
	ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	zipMagic  = []byte{'P', 'K', 0x03, 0x04}
)

// sniffWorkbook returns the workbook format found in content's header, or declared when
// the header is not recognized.
func sniffWorkbook(content []byte, declared ContentType) ContentType {
	switch {
	case bytes.HasPrefix(content, ole2Magic):
		return XLS
	case bytes.HasPrefix(content, zipMagic):
		return XLSX
	default:
		return declared
	}
}

// Options control how rows are collected.
type Options struct {
	// TruncateRows stops collecting rows of every sheet once this many rows have been
	// gathered. Zero or negative means no limit.
	TruncateRows int
	// Name is used as the sheet name of CSV input.
	Name string
}

// Parser reads spreadsheets into grids.
type Parser struct {
	logger *zap.Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLogger sets a logger for debug output (sheets read, formats sniffed).
func WithLogger(l *zap.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

// NewParser returns a new Parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads the file at path and returns its sheets. When ct is empty the content
// type is derived from the file name.
func (p *Parser) ParseFile(path string, ct ContentType, opts Options) ([]grid.Sheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if ct == "" {
		ct = ContentTypeFromPath(path)
	}
	if opts.Name == "" {
		opts.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p.ParseBytes(content, ct, opts)
}

// ParseBytes parses content as ct and returns its sheets in stored order. Workbook content
// is sniffed, so XLS and XLSX may be used interchangeably. Parse failures are returned as
// *UnreadableError.
func (p *Parser) ParseBytes(content []byte, ct ContentType, opts Options) ([]grid.Sheet, error) {
	if _, err := ParseContentType(string(ct)); err != nil {
		return nil, err
	}
	if ct.IsWorkbook() {
		if sniffed := sniffWorkbook(content, ct); sniffed != ct {
			p.logger.Debug("workbook format sniffed", zap.String("declared", string(ct)), zap.String("sniffed", string(sniffed)))
			ct = sniffed
		}
	}
	var (
		sheets []grid.Sheet
		err    error
	)
	switch ct {
	case CSV:
		sheets, err = parseCSV(content, opts)
	case XLSX:
		sheets, err = parseXLSX(content, opts)
	case XLS:
		sheets, err = parseXLS(content, opts)
	}
	if err != nil {
		return nil, unreadable(ct, err)
	}
	p.logger.Debug("spreadsheet parsed", zap.String("content_type", string(ct)), zap.Int("sheets", len(sheets)))
	return sheets, nil
}

// limitReached reports whether a sheet holding n rows is full under opts.
func (o Options) limitReached(n int) bool {
	return o.TruncateRows > 0 && n >= o.TruncateRows
}
