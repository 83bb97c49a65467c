package extract

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// BIFF record types read by the XLS parser.
const (
	recFormula    = 0x0006
	recEOF        = 0x000A
	recFilePass   = 0x002F
	recContinue   = 0x003C
	recCodePage   = 0x0042
	recBoundSheet = 0x0085
	recMulRK      = 0x00BD
	recRString    = 0x00D6
	recSST        = 0x00FC
	recLabelSST   = 0x00FD
	recNumber     = 0x0203
	recLabel      = 0x0204
	recBoolErr    = 0x0205
	recString     = 0x0207
	recArray      = 0x0221
	recTable      = 0x0236
	recRK         = 0x027E
	recShrFmla    = 0x04BC
	recBOF        = 0x0809
)

const (
	biff5Version = 0x0500
	biff8Version = 0x0600

	bofWorkbookGlobals = 0x0005
)

var errShortRecord = errors.New("record too short")

type record struct {
	typ  uint16
	data []byte
}

// recordReader walks the records of a BIFF stream.
type recordReader struct {
	b   []byte
	pos int
}

func (r *recordReader) next() (record, error) {
	if r.pos+4 > len(r.b) {
		return record{}, fmt.Errorf("record header at %d: %w", r.pos, io.ErrUnexpectedEOF)
	}
	typ := binary.LittleEndian.Uint16(r.b[r.pos:])
	n := int(binary.LittleEndian.Uint16(r.b[r.pos+2:]))
	start := r.pos + 4
	if start+n > len(r.b) {
		return record{}, fmt.Errorf("record 0x%04X at %d: %w", typ, r.pos, io.ErrUnexpectedEOF)
	}
	r.pos = start + n
	return record{typ: typ, data: r.b[start : start+n]}, nil
}

// peek returns the type of the next record, or 0 at the end of the stream.
func (r *recordReader) peek() uint16 {
	if r.pos+4 > len(r.b) {
		return 0
	}
	return binary.LittleEndian.Uint16(r.b[r.pos:])
}

// continued returns first followed by the payloads of the CONTINUE records after it.
func (r *recordReader) continued(first []byte) ([][]byte, error) {
	segs := [][]byte{first}
	for r.peek() == recContinue {
		rec, err := r.next()
		if err != nil {
			return nil, err
		}
		segs = append(segs, rec.data)
	}
	return segs, nil
}

// segmentReader reads values that may be split over a record and its CONTINUE records.
type segmentReader struct {
	segs [][]byte
	seg  int
	pos  int
}

func newSegmentReader(segs ...[]byte) *segmentReader {
	return &segmentReader{segs: segs}
}

// advance moves past exhausted segments and reports whether data remains.
func (s *segmentReader) advance() bool {
	for s.seg < len(s.segs) && s.pos == len(s.segs[s.seg]) {
		s.seg++
		s.pos = 0
	}
	return s.seg < len(s.segs)
}

func (s *segmentReader) read(n int) ([]byte, error) {
	out := make([]byte, 0, n)
	for len(out) < n {
		if !s.advance() {
			return nil, io.ErrUnexpectedEOF
		}
		k := min(n-len(out), len(s.segs[s.seg])-s.pos)
		out = append(out, s.segs[s.seg][s.pos:s.pos+k]...)
		s.pos += k
	}
	return out, nil
}

func (s *segmentReader) skip(n int) error {
	for n > 0 {
		if !s.advance() {
			return io.ErrUnexpectedEOF
		}
		k := min(n, len(s.segs[s.seg])-s.pos)
		s.pos += k
		n -= k
	}
	return nil
}

func (s *segmentReader) u8() (byte, error) {
	b, err := s.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (s *segmentReader) u16() (uint16, error) {
	b, err := s.read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (s *segmentReader) u32() (uint32, error) {
	b, err := s.read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// chars reads n characters of a BIFF8 string. Bit 0 of flags selects UTF-16 over
// compressed (Latin-1) characters. A string split over a CONTINUE record restates that
// flag in the first byte of the continuation.
func (s *segmentReader) chars(n int, flags byte) (string, error) {
	wide := flags&0x01 != 0
	units := make([]uint16, 0, n)
	for n > 0 {
		if s.seg >= len(s.segs) {
			return "", io.ErrUnexpectedEOF
		}
		if s.pos == len(s.segs[s.seg]) {
			s.seg++
			s.pos = 0
			if s.seg >= len(s.segs) || len(s.segs[s.seg]) == 0 {
				return "", io.ErrUnexpectedEOF
			}
			wide = s.segs[s.seg][0]&0x01 != 0
			s.pos = 1
			continue
		}
		seg := s.segs[s.seg][s.pos:]
		if wide {
			k := min(n, len(seg)/2)
			if k == 0 {
				return "", io.ErrUnexpectedEOF
			}
			for i := 0; i < k; i++ {
				units = append(units, binary.LittleEndian.Uint16(seg[2*i:]))
			}
			s.pos += 2 * k
			n -= k
		} else {
			k := min(n, len(seg))
			for i := 0; i < k; i++ {
				units = append(units, uint16(seg[i]))
			}
			s.pos += k
			n -= k
		}
	}
	return string(utf16.Decode(units)), nil
}

// richString reads one shared string table entry: a 16-bit length, option flags, the
// optional rich text and phonetic block sizes, the characters, then those blocks.
func (s *segmentReader) richString() (string, error) {
	n, err := s.u16()
	if err != nil {
		return "", err
	}
	flags, err := s.u8()
	if err != nil {
		return "", err
	}
	var runs, ext int
	if flags&0x08 != 0 {
		r, err := s.u16()
		if err != nil {
			return "", err
		}
		runs = int(r)
	}
	if flags&0x04 != 0 {
		e, err := s.u32()
		if err != nil {
			return "", err
		}
		ext = int(e)
	}
	str, err := s.chars(int(n), flags)
	if err != nil {
		return "", err
	}
	if err := s.skip(4*runs + ext); err != nil {
		return "", err
	}
	return str, nil
}

// readSST decodes the shared string table held by an SST record and its continuations.
func readSST(segs [][]byte) ([]string, error) {
	s := newSegmentReader(segs...)
	if _, err := s.u32(); err != nil {
		return nil, fmt.Errorf("shared strings: %w", err)
	}
	n, err := s.u32()
	if err != nil {
		return nil, fmt.Errorf("shared strings: %w", err)
	}
	strs := make([]string, 0, min(int(n), 1<<16))
	for i := 0; i < int(n); i++ {
		str, err := s.richString()
		if err != nil {
			return nil, fmt.Errorf("shared string %d: %w", i, err)
		}
		strs = append(strs, str)
	}
	return strs, nil
}

// rkValue decodes an RK number: a 30-bit signed integer or the high 30 bits of a
// float64, optionally divided by 100.
func rkValue(rk uint32) float64 {
	var v float64
	if rk&0x02 != 0 {
		v = float64(int32(rk) >> 2)
	} else {
		v = math.Float64frombits(uint64(rk&^0x03) << 32)
	}
	if rk&0x01 != 0 {
		v /= 100
	}
	return v
}

var cellErrors = map[byte]string{
	0x00: "#NULL!",
	0x07: "#DIV/0!",
	0x0F: "#VALUE!",
	0x17: "#REF!",
	0x1D: "#NAME?",
	0x24: "#NUM!",
	0x2A: "#N/A",
}

func errorText(code byte) string {
	if s, ok := cellErrors[code]; ok {
		return s
	}
	return "#N/A"
}

// codePageDecoder returns the decoder for byte strings of a BIFF5 workbook.
func codePageDecoder(cp uint16) *encoding.Decoder {
	switch cp {
	case 932:
		return japanese.ShiftJIS.NewDecoder()
	case 936:
		return simplifiedchinese.GBK.NewDecoder()
	case 949:
		return korean.EUCKR.NewDecoder()
	case 950:
		return traditionalchinese.Big5.NewDecoder()
	case 1250:
		return charmap.Windows1250.NewDecoder()
	case 1251:
		return charmap.Windows1251.NewDecoder()
	case 1253:
		return charmap.Windows1253.NewDecoder()
	case 1254:
		return charmap.Windows1254.NewDecoder()
	case 1255:
		return charmap.Windows1255.NewDecoder()
	case 1256:
		return charmap.Windows1256.NewDecoder()
	case 1257:
		return charmap.Windows1257.NewDecoder()
	case 1258:
		return charmap.Windows1258.NewDecoder()
	case 10000, 32768:
		return charmap.Macintosh.NewDecoder()
	default:
		return charmap.Windows1252.NewDecoder()
	}
}
