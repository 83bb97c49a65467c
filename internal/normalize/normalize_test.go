package normalize

import "testing"

func TestCell(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "abc", "abc"},
		{"full-width digits", "１２３", "123"},
		{"full-width latin and punctuation", "ＡＢｃ（１）", "ABc(1)"},
		{"full-width percent", "５０％", "50%"},
		{"kana untouched", "データ", "デ-タ"},
		{"katakana untouched", "カタカナ", "カタカナ"},
		{"hiragana untouched", "ひらがな", "ひらがな"},
		{"em dash", "1—2", "1-2"},
		{"minus sign", "−5", "-5"},
		{"halfwidth prolonged mark", "ｰ", ""},
		{"full-width hyphen-minus", "－", ""},
		{"ascii hyphen alone", "-", ""},
		{"japanese hyphen alone", "ー", ""},
		{"hyphen with spaces", "  -  ", ""},
		{"internal whitespace", " 1 2\t3\n", "123"},
		{"ideographic space", "東京　都", "東京都"},
		{"no-break space", "1 000", "1000"},
		{"double hyphen kept", "--", "--"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Cell(tt.in); got != tt.want {
				t.Errorf("Cell(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCell_idempotent(t *testing.T) {
	inputs := []string{
		"", "-", "ー", " １，２３４．５ ", "データ", "ＡＢＣ－１２３", "\t\n", "13:00",
		"−", "—", "abc def", "３．５ｍ²", "１０％", "－－",
	}
	for _, in := range inputs {
		once := Cell(in)
		if twice := Cell(once); twice != once {
			t.Errorf("Cell(Cell(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestNarrow(t *testing.T) {
	tests := []struct {
		in, want rune
	}{
		{'Ａ', 'A'},
		{'９', '9'},
		{'＄', '$'},
		{'　', ' '},
		{'ｱ', 'ｱ'},
		{'ア', 'ア'},
		{'東', '東'},
		{'a', 'a'},
	}
	for _, tt := range tests {
		if got := narrow(tt.in); got != tt.want {
			t.Errorf("narrow(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
