// Package numval recognizes cells holding a single numeric value, optionally followed by
// a metric unit.
package numval

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numberPattern is an optionally negative number with comma grouping and a decimal part.
// Digits of any script count.
const numberPattern = `(-?\p{Nd}[\p{Nd},]*(\.\p{Nd}+)?)`

// unitPattern lists the unit symbols recognized after a number, with an optional
// dimension exponent. Symbols are matched against lower-cased cells.
const unitPattern = `(%|mm|cm|m|km|mg|g|kg|t|°c|m²|ha|km²|ml|cm³|l|m³|n|` +
	`s|h|sec|seconds|min|minutes|hours|` +
	`kpa|w|kw|kj|kwh|a|j|hpa|pa)[23]?`

var (
	// One non-digit character is allowed on either side, e.g. "$-10.5" or "10.5*".
	// "111-222", "AB4352" and "13:00" do not match. The prefix is lazy so that a
	// leading minus stays with the number.
	numericValue = regexp.MustCompile(`^\P{Nd}??` + numberPattern + `\P{Nd}?$`)
	numericUnit  = regexp.MustCompile(`^` + numberPattern + unitPattern + `([·/]` + unitPattern + `)?$`)
)

// Extract returns the numeric literal held by a normalized cell, with grouping commas
// removed, and whether the cell is a single numeric value.
func Extract(cell string) (string, bool) {
	m := numericValue.FindStringSubmatch(cell)
	if m == nil {
		return "", false
	}
	literal := strings.ReplaceAll(m[1], ",", "")
	f, err := strconv.ParseFloat(asciiDigits(literal), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	return literal, true
}

// Value returns the float value of a literal returned by Extract.
func Value(literal string) float64 {
	f, _ := strconv.ParseFloat(asciiDigits(literal), 64)
	return f
}

// asciiDigits rewrites the decimal digits of other scripts as ASCII digits.
func asciiDigits(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r > unicode.MaxASCII }) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsDigit(r) {
			return '0' + digitValue(r)
		}
		return r
	}, s)
}

// digitValue returns the value of a decimal digit. Unicode assigns decimal digits in
// contiguous runs that start at zero.
func digitValue(r rune) rune {
	zero := r
	for unicode.IsDigit(zero - 1) {
		zero--
	}
	return (r - zero) % 10
}

// HasUnit reports whether a normalized cell is a number followed by a unit symbol,
// such as "10%", "5kg", "3.5m²" or "20km/h".
func HasUnit(cell string) bool {
	return numericUnit.MatchString(strings.ToLower(cell))
}

// LooksNatural reports whether a literal returned by Extract is written as a natural
// number: no decimal point and no minus sign.
func LooksNatural(literal string) bool {
	return !strings.Contains(literal, ".") && !strings.HasPrefix(literal, "-")
}
