package extract

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/datadetector/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func xlsxFixture(t *testing.T, build func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.Bytes()
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in   string
		want ContentType
		ok   bool
	}{
		{"xls", XLS, true},
		{"XLSX", XLSX, true},
		{".csv", CSV, true},
		{" csv ", CSV, true},
		{"pdf", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseContentType(tt.in)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrInvalidContentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentTypeFromPath(t *testing.T) {
	assert.Equal(t, CSV, ContentTypeFromPath("/data/report.CSV"))
	assert.Equal(t, XLS, ContentTypeFromPath("old.xls"))
	assert.Equal(t, XLSX, ContentTypeFromPath("book.xlsx"))
	assert.Equal(t, XLSX, ContentTypeFromPath("book.xlsm"))
	assert.Equal(t, XLSX, ContentTypeFromPath("noext"))
}

func TestParseBytes_csv(t *testing.T) {
	p := NewParser()
	content := []byte("\xEF\xBB\xBFname,qty\nbolt,10\nnut,20,extra\n")
	sheets, err := p.ParseBytes(content, CSV, Options{Name: "parts"})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "parts", sheets[0].Name)
	assert.Equal(t, 0, sheets[0].Index)
	assert.Equal(t, grid.Grid{
		{"name", "qty"},
		{"bolt", "10"},
		{"nut", "20", "extra"},
	}, sheets[0].Grid)
}

func TestParseBytes_csvTruncate(t *testing.T) {
	p := NewParser()
	content := []byte("1\n2\n3\n4\n5\n")
	sheets, err := p.ParseBytes(content, CSV, Options{TruncateRows: 3})
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{{"1"}, {"2"}, {"3"}}, sheets[0].Grid)

	sheets, err = p.ParseBytes(content, CSV, Options{TruncateRows: 0})
	require.NoError(t, err)
	assert.Len(t, sheets[0].Grid, 5)
}

func TestParseBytes_csvEmpty(t *testing.T) {
	sheets, err := NewParser().ParseBytes(nil, CSV, Options{})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Empty(t, sheets[0].Grid)
}

func TestParseBytes_csvLenientQuotes(t *testing.T) {
	sheets, err := NewParser().ParseBytes([]byte("5\"3,x\n\"open,1\n"), CSV, Options{})
	require.NoError(t, err)
	assert.Equal(t, grid.Row{"5\"3", "x"}, sheets[0].Grid[0])
}

func TestUnreadableError(t *testing.T) {
	cause := errors.New("bad header")
	err := error(&UnreadableError{Format: XLS, Err: cause})
	assert.ErrorIs(t, err, ErrUnreadableInput)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "unreadable xls input: bad header", err.Error())

	var ue *UnreadableError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, XLS, ue.Format)
}

func TestParseBytes_xlsx(t *testing.T) {
	content := xlsxFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "Title")
		f.SetCellValue("Sheet1", "A2", 3)
		f.SetCellValue("Sheet1", "B2", 2.5)
		f.SetCellValue("Sheet1", "C3", "007")
		f.NewSheet("Notes")
		f.SetCellValue("Notes", "A1", "hello")
	})

	sheets, err := NewParser().ParseBytes(content, XLSX, Options{})
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	assert.Equal(t, "Sheet1", sheets[0].Name)
	assert.Equal(t, 0, sheets[0].Index)
	assert.Equal(t, grid.Grid{
		{"Title"},
		{"3", "2.5"},
		{"", "", "007"},
	}, sheets[0].Grid)

	assert.Equal(t, "Notes", sheets[1].Name)
	assert.Equal(t, 1, sheets[1].Index)
	assert.Equal(t, grid.Grid{{"hello"}}, sheets[1].Grid)
}

func TestParseBytes_xlsxTruncate(t *testing.T) {
	content := xlsxFixture(t, func(f *excelize.File) {
		for r := 1; r <= 10; r++ {
			cell, _ := excelize.CoordinatesToCellName(1, r)
			f.SetCellValue("Sheet1", cell, r)
		}
	})
	sheets, err := NewParser().ParseBytes(content, XLSX, Options{TruncateRows: 4})
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{{"1"}, {"2"}, {"3"}, {"4"}}, sheets[0].Grid)
}

func TestParseBytes_workbookSniffed(t *testing.T) {
	content := xlsxFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "x")
	})
	sheets, err := NewParser().ParseBytes(content, XLS, Options{})
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{{"x"}}, sheets[0].Grid)
}

func TestParseBytes_unreadableWorkbook(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		ct      ContentType
	}{
		{"garbage xlsx", []byte("definitely not a workbook"), XLSX},
		{"truncated zip", []byte{'P', 'K', 0x03, 0x04, 0x00}, XLSX},
		{"truncated ole2", append(append([]byte{}, ole2Magic...), 0x00, 0x01), XLS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseBytes(tt.content, tt.ct, Options{})
			assert.ErrorIs(t, err, ErrUnreadableInput)
		})
	}
}

func TestParseBytes_invalidContentType(t *testing.T) {
	_, err := NewParser().ParseBytes([]byte("a,b"), ContentType("pdf"), Options{})
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,1\nb,2\n"), 0600))

	sheets, err := NewParser().ParseFile(path, "", Options{})
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "stock", sheets[0].Name)
	assert.Equal(t, grid.Grid{{"a", "1"}, {"b", "2"}}, sheets[0].Grid)
}

func TestParseFile_xlsx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.xlsx")
	require.NoError(t, os.WriteFile(path, xlsxFixture(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "B1", 42)
	}), 0600))

	sheets, err := NewParser().ParseFile(path, "", Options{})
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{{"", "42"}}, sheets[0].Grid)
}

func TestParseFile_missing(t *testing.T) {
	_, err := NewParser().ParseFile(filepath.Join(t.TempDir(), "nope.csv"), "", Options{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnreadableInput))
}
