package models

import (
	"testing"
)

func TestFileResult_Probabilities(t *testing.T) {
	r := &FileResult{Sheets: []SheetResult{
		{Index: 0, Probability: 0.9, IsData: true},
		{Index: 1, Probability: 0.1},
		{Index: 2, Probability: 0.6, IsData: true},
	}}
	got := r.Probabilities()
	want := []float64{0.9, 0.1, 0.6}
	if len(got) != len(want) {
		t.Fatalf("Probabilities() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Probabilities()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if n := r.DataSheets(); n != 2 {
		t.Errorf("DataSheets() = %d, want 2", n)
	}
}

func TestFileResult_empty(t *testing.T) {
	r := &FileResult{}
	if got := r.Probabilities(); got == nil || len(got) != 0 {
		t.Errorf("Probabilities() = %v, want empty non-nil", got)
	}
	if n := r.DataSheets(); n != 0 {
		t.Errorf("DataSheets() = %d, want 0", n)
	}
}
