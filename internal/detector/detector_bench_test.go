package detector

import (
	"bytes"
	"context"
	"strconv"
	"testing"
)

func benchCSV(rows int) []byte {
	var buf bytes.Buffer
	buf.WriteString("date,region,units,price\n")
	for r := 0; r < rows; r++ {
		buf.WriteString("2024-01-" + strconv.Itoa(r%28+1) + ",north," + strconv.Itoa(r) + "," + strconv.Itoa(r*3) + ".50\n")
	}
	return buf.Bytes()
}

func BenchmarkDetectReader_csv(b *testing.B) {
	d := New(&stubScorer{})
	content := benchCSV(500)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.DetectReader(ctx, bytes.NewReader(content), WithContentType("csv"))
	}
}

func BenchmarkDetectReader_cached(b *testing.B) {
	d := New(&stubScorer{}, WithCache(8))
	content := benchCSV(500)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = d.DetectReader(ctx, bytes.NewReader(content), WithContentType("csv"))
	}
}
