package extract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hyperjump/datadetector/internal/grid"
	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding"
)

// ErrEncryptedWorkbook indicates an XLS workbook protected by a password.
var ErrEncryptedWorkbook = errors.New("workbook is encrypted")

// xlsBook holds the workbook globals needed to read its worksheets.
type xlsBook struct {
	stream  []byte
	biff8   bool
	decoder *encoding.Decoder
	sst     []string
	sheets  []boundSheet
}

type boundSheet struct {
	name   string
	offset int
}

// parseXLS reads a BIFF5 or BIFF8 workbook. Numbers are read raw and formula cells
// yield their cached results, so cell formats never change the text of a value.
func parseXLS(content []byte, opts Options) ([]grid.Sheet, error) {
	stream, err := workbookStream(content)
	if err != nil {
		return nil, err
	}
	b := &xlsBook{stream: stream, decoder: codePageDecoder(0)}
	if err := b.readGlobals(); err != nil {
		return nil, err
	}
	sheets := make([]grid.Sheet, 0, len(b.sheets))
	for _, bs := range b.sheets {
		g, err := b.readSheet(bs.offset, opts)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", bs.name, err)
		}
		sheets = append(sheets, grid.Sheet{Index: len(sheets), Name: bs.name, Grid: g})
	}
	return sheets, nil
}

// workbookStream returns the BIFF stream of content. OLE2 files hold it in a stream
// named Workbook (BIFF8) or Book (BIFF5); anything else is taken as a bare stream.
func workbookStream(content []byte) ([]byte, error) {
	if !bytes.HasPrefix(content, ole2Magic) {
		return content, nil
	}
	doc, err := mscfb.New(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open OLE2 container: %w", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		if len(entry.Path) > 0 || !(strings.EqualFold(entry.Name, "Workbook") || strings.EqualFold(entry.Name, "Book")) {
			continue
		}
		buf := make([]byte, entry.Size)
		if _, err := io.ReadFull(entry, buf); err != nil {
			return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
		}
		return buf, nil
	}
	return nil, errors.New("no Workbook stream in OLE2 container")
}

func (b *xlsBook) readGlobals() error {
	r := &recordReader{b: b.stream}
	bof, err := r.next()
	if err != nil {
		return err
	}
	if bof.typ != recBOF || len(bof.data) < 4 {
		return fmt.Errorf("expected BOF record, found 0x%04X", bof.typ)
	}
	switch v := binary.LittleEndian.Uint16(bof.data); v {
	case biff8Version:
		b.biff8 = true
	case biff5Version:
	default:
		return fmt.Errorf("unsupported BIFF version 0x%04X", v)
	}
	if dt := binary.LittleEndian.Uint16(bof.data[2:]); dt != bofWorkbookGlobals {
		return fmt.Errorf("expected workbook globals, found substream type 0x%04X", dt)
	}

	for {
		rec, err := r.next()
		if err != nil {
			return err
		}
		switch rec.typ {
		case recEOF:
			return nil
		case recFilePass:
			return ErrEncryptedWorkbook
		case recCodePage:
			if len(rec.data) >= 2 && !b.biff8 {
				b.decoder = codePageDecoder(binary.LittleEndian.Uint16(rec.data))
			}
		case recBoundSheet:
			if err := b.addBoundSheet(rec.data); err != nil {
				return err
			}
		case recSST:
			segs, err := r.continued(rec.data)
			if err != nil {
				return err
			}
			if b.sst, err = readSST(segs); err != nil {
				return err
			}
		}
	}
}

// addBoundSheet records a worksheet entry. Chart, macro and module sheets are skipped.
func (b *xlsBook) addBoundSheet(d []byte) error {
	if len(d) < 8 {
		return fmt.Errorf("BOUNDSHEET: %w", errShortRecord)
	}
	offset := int(binary.LittleEndian.Uint32(d))
	if d[5] != 0 {
		return nil
	}
	s := newSegmentReader(d[6:])
	n, err := s.u8()
	if err != nil {
		return fmt.Errorf("BOUNDSHEET: %w", err)
	}
	name, err := b.text(s, int(n))
	if err != nil {
		return fmt.Errorf("BOUNDSHEET: %w", err)
	}
	b.sheets = append(b.sheets, boundSheet{name: name, offset: offset})
	return nil
}

// text reads n characters: a flagged BIFF8 string or code page bytes in BIFF5.
func (b *xlsBook) text(s *segmentReader, n int) (string, error) {
	if b.biff8 {
		flags, err := s.u8()
		if err != nil {
			return "", err
		}
		return s.chars(n, flags)
	}
	raw, err := s.read(n)
	if err != nil {
		return "", err
	}
	out, err := b.decoder.Bytes(raw)
	if err != nil {
		return string(raw), nil
	}
	return string(out), nil
}

// longText reads a string prefixed with a 16-bit length, as held by LABEL and STRING.
func (b *xlsBook) longText(s *segmentReader) (string, error) {
	n, err := s.u16()
	if err != nil {
		return "", err
	}
	return b.text(s, int(n))
}

func (b *xlsBook) readSheet(offset int, opts Options) (grid.Grid, error) {
	if offset < 0 || offset >= len(b.stream) {
		return nil, fmt.Errorf("sheet offset %d outside stream", offset)
	}
	r := &recordReader{b: b.stream, pos: offset}
	bof, err := r.next()
	if err != nil {
		return nil, err
	}
	if bof.typ != recBOF {
		return nil, fmt.Errorf("expected BOF record, found 0x%04X", bof.typ)
	}
	cells := &cellGrid{limit: opts.TruncateRows}
	// Embedded charts open nested substreams.
	depth := 1
	for depth > 0 {
		rec, err := r.next()
		if err != nil {
			return nil, err
		}
		switch {
		case rec.typ == recBOF:
			depth++
		case rec.typ == recEOF:
			depth--
		case depth == 1:
			if err := b.readCell(r, rec, cells); err != nil {
				return nil, err
			}
		}
	}
	return cells.rows, nil
}

func (b *xlsBook) readCell(r *recordReader, rec record, cells *cellGrid) error {
	d := rec.data
	if len(d) < 6 {
		switch rec.typ {
		case recNumber, recRK, recMulRK, recLabelSST, recLabel, recRString, recBoolErr, recFormula:
			return fmt.Errorf("record 0x%04X: %w", rec.typ, errShortRecord)
		}
		return nil
	}
	row := int(binary.LittleEndian.Uint16(d))
	col := int(binary.LittleEndian.Uint16(d[2:]))

	switch rec.typ {
	case recNumber:
		if len(d) < 14 {
			return fmt.Errorf("NUMBER: %w", errShortRecord)
		}
		cells.set(row, col, grid.Stringify(math.Float64frombits(binary.LittleEndian.Uint64(d[6:]))))
	case recRK:
		if len(d) < 10 {
			return fmt.Errorf("RK: %w", errShortRecord)
		}
		cells.set(row, col, grid.Stringify(rkValue(binary.LittleEndian.Uint32(d[6:]))))
	case recMulRK:
		// Each entry is an XF index and an RK value; the last column closes the record.
		for i := 0; 4+6*i+6 <= len(d)-2; i++ {
			rk := binary.LittleEndian.Uint32(d[4+6*i+2:])
			cells.set(row, col+i, grid.Stringify(rkValue(rk)))
		}
	case recLabelSST:
		if len(d) < 10 {
			return fmt.Errorf("LABELSST: %w", errShortRecord)
		}
		i := int(binary.LittleEndian.Uint32(d[6:]))
		if i >= len(b.sst) {
			return fmt.Errorf("LABELSST: shared string %d of %d", i, len(b.sst))
		}
		cells.set(row, col, b.sst[i])
	case recLabel, recRString:
		s, err := b.longText(newSegmentReader(d[6:]))
		if err != nil {
			return fmt.Errorf("LABEL: %w", err)
		}
		cells.set(row, col, s)
	case recBoolErr:
		if len(d) < 8 {
			return fmt.Errorf("BOOLERR: %w", errShortRecord)
		}
		if d[7] != 0 {
			cells.set(row, col, errorText(d[6]))
		} else {
			cells.set(row, col, grid.Stringify(d[6] != 0))
		}
	case recFormula:
		if len(d) < 20 {
			return fmt.Errorf("FORMULA: %w", errShortRecord)
		}
		v, err := b.formulaResult(r, d[6:14])
		if err != nil {
			return fmt.Errorf("FORMULA: %w", err)
		}
		cells.set(row, col, v)
	}
	return nil
}

// formulaResult returns the cached result of a formula. Results whose top two bytes are
// 0xFFFF are not numbers: byte 0 tells string, boolean, error or empty string apart.
func (b *xlsBook) formulaResult(r *recordReader, res []byte) (string, error) {
	if res[6] != 0xFF || res[7] != 0xFF {
		return grid.Stringify(math.Float64frombits(binary.LittleEndian.Uint64(res))), nil
	}
	switch res[0] {
	case 0x00:
		return b.formulaString(r)
	case 0x01:
		return grid.Stringify(res[2] != 0), nil
	case 0x02:
		return errorText(res[2]), nil
	default:
		return "", nil
	}
}

// formulaString reads the STRING record that follows a formula with a text result.
// Shared and array formula definitions may sit in between.
func (b *xlsBook) formulaString(r *recordReader) (string, error) {
	for {
		pos := r.pos
		rec, err := r.next()
		if err != nil {
			return "", err
		}
		switch rec.typ {
		case recShrFmla, recArray, recTable:
			continue
		case recString:
			segs, err := r.continued(rec.data)
			if err != nil {
				return "", err
			}
			return b.longText(newSegmentReader(segs...))
		default:
			r.pos = pos
			return "", nil
		}
	}
}

// cellGrid collects sparse cells into rows. Missing rows stay empty and cells before
// the first populated column of a row are blank.
type cellGrid struct {
	limit int
	rows  grid.Grid
}

func (g *cellGrid) set(row, col int, v string) {
	if g.limit > 0 && row >= g.limit {
		return
	}
	for len(g.rows) <= row {
		g.rows = append(g.rows, grid.Row{})
	}
	r := g.rows[row]
	for len(r) <= col {
		r = append(r, "")
	}
	r[col] = v
	g.rows[row] = r
}
