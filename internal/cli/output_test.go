package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/datadetector/internal/features"
	"github.com/hyperjump/datadetector/internal/models"
)

func sampleResult() *models.FileResult {
	return &models.FileResult{
		ID:          "file:abc",
		Path:        "/data/report.xlsx",
		ContentType: "xlsx",
		Size:        2048,
		Sheets: []models.SheetResult{
			{Index: 0, Name: "Cover", Probability: 0.1},
			{Index: 1, Name: "Figures", Probability: 0.93, IsData: true,
				Features: features.Vector{CellNumvalNum: 12, CellNumvalFrac: 0.75}},
		},
		DetectedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v; want %q, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestWriteFileResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, []*models.FileResult{sampleResult()}, OutputJSON); err != nil {
		t.Fatalf("WriteFileResults(json): %v", err)
	}
	var decoded []struct {
		ID            string               `json:"id"`
		Path          string               `json:"path"`
		Probabilities []float64            `json:"probabilities"`
		Sheets        []models.SheetResult `json:"sheets"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded) != 1 || decoded[0].Path != "/data/report.xlsx" {
		t.Fatalf("decoded: %+v", decoded)
	}
	if len(decoded[0].Probabilities) != 2 || decoded[0].Probabilities[1] != 0.93 {
		t.Errorf("probabilities: got %v", decoded[0].Probabilities)
	}
	if decoded[0].Sheets[1].Features.CellNumvalNum != 12 {
		t.Errorf("features not carried: %+v", decoded[0].Sheets[1].Features)
	}
}

func TestWriteFileResults_JSON_empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty results should encode as [], got %q", buf.String())
	}
}

func TestWriteFileResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, []*models.FileResult{sampleResult()}, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, sub := range []string{"/data/report.xlsx", "xlsx", "2 sheet(s), 1 data", "[0] Cover", "0.1000", "[1] Figures", "0.9300  data"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteFileResults_textUsesIDForUploads(t *testing.T) {
	r := sampleResult()
	r.Path = ""
	r.ID = "upload:1234"
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, []*models.FileResult{r}, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "upload:1234 ") {
		t.Errorf("expected the id as source, got %q", buf.String())
	}
}

func TestWriteFileResults_textTruncatesLongNames(t *testing.T) {
	r := sampleResult()
	r.Sheets[0].Name = strings.Repeat("n", 50)
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, []*models.FileResult{r}, OutputText); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), strings.Repeat("n", 33)) {
		t.Errorf("long sheet name should be truncated:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), strings.Repeat("n", 32)+"...") {
		t.Errorf("truncated name should end with an ellipsis:\n%s", buf.String())
	}
}

func TestWriteFileResults_compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, []*models.FileResult{sampleResult()}, OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("compact output should have one line per sheet, got %d:\n%s", len(lines), buf.String())
	}
	if lines[1] != "/data/report.xlsx\t1\tFigures\t0.9300\tdata" {
		t.Errorf("compact line: got %q", lines[1])
	}
}

func TestWriteFileResults_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFileResults(&buf, []*models.FileResult{sampleResult()}, OutputFormat("unknown")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "sheet(s)") {
		t.Errorf("unknown format should fall back to text; got %q", buf.String())
	}
}

func TestWriteFeatures(t *testing.T) {
	sheets := sampleResult().Sheets

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteFeatures(&buf, sheets, OutputText); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "[1] Figures") {
			t.Errorf("missing sheet header:\n%s", out)
		}
		if !strings.Contains(out, features.CellNumvalNum) || !strings.Contains(out, "0.7500") {
			t.Errorf("missing feature values:\n%s", out)
		}
		first := strings.Index(out, features.CellNumvalNum)
		last := strings.Index(out, features.UniqAdjDiffFrac)
		if first < 0 || last < first {
			t.Errorf("features should be listed in canonical order:\n%s", out)
		}
	})

	t.Run("compact", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteFeatures(&buf, sheets, OutputCompact); err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("want 2 lines, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[1], "1\tFigures\tcell_numval_num=12 cell_numval_frac=0.7500 ") {
			t.Errorf("compact line: got %q", lines[1])
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteFeatures(&buf, sheets, OutputJSON); err != nil {
			t.Fatal(err)
		}
		var decoded []struct {
			Name     string             `json:"name"`
			Features map[string]float64 `json:"features"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatal(err)
		}
		if len(decoded) != 2 || len(decoded[1].Features) != len(features.Names()) {
			t.Fatalf("decoded: %+v", decoded)
		}
		if decoded[1].Features[features.CellNumvalNum] != 12 {
			t.Errorf("cell_numval_num: got %v", decoded[1].Features[features.CellNumvalNum])
		}
	})
}

func TestWriteSummary(t *testing.T) {
	s := Summary{Root: "/data", Detected: 3, Unchanged: 2, Failed: 1}
	var buf bytes.Buffer
	if err := WriteSummary(&buf, s, OutputText); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "Scanned /data: 3 detected, 2 unchanged, 1 failed\n" {
		t.Errorf("text summary: got %q", got)
	}
	buf.Reset()
	if err := WriteSummary(&buf, s, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != s {
		t.Errorf("json summary: got %+v", decoded)
	}
}
