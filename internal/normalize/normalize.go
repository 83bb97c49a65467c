// Package normalize canonicalizes spreadsheet cell text so that cells written with
// full-width characters, assorted dash glyphs or stray whitespace compare equal.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// hyphens are the glyphs folded into an ASCII hyphen-minus. Spreadsheets from Japanese
// sources use the katakana prolonged sound mark and its half-width form as dashes.
var hyphens = map[rune]bool{
	'-':      true,
	'\u2014': true, // em dash
	'\u30fc': true, // katakana-hiragana prolonged sound mark
	'\u2212': true, // minus sign
	'\uff70': true, // halfwidth katakana prolonged sound mark
}

// Cell returns the normalized form of a cell's text. Full-width Latin letters, digits and
// punctuation become half-width (kana is left alone), hyphen-like glyphs become "-",
// all whitespace is removed, and a cell consisting of a lone hyphen becomes empty.
func Cell(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		r = narrow(r)
		if unicode.IsSpace(r) {
			continue
		}
		if hyphens[r] {
			r = '-'
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "-" {
		return ""
	}
	return out
}

func narrow(r rune) rune {
	p := width.LookupRune(r)
	if p.Kind() != width.EastAsianFullwidth {
		return r
	}
	if n := p.Narrow(); n != 0 {
		return n
	}
	return r
}
