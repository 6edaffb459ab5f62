package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// NumberMarker replaces every number when number normalization is on
	NumberMarker = "<NUM>"
	// lowerNumberMarker is emitted instead when the text is being lowercased,
	// so the output stays uniformly folded
	lowerNumberMarker = "<num>"
)

func numberMarker(lowercased bool) string {
	if lowercased {
		return lowerNumberMarker
	}
	return NumberMarker
}

// replaceNumbers substitutes marker for digit runs joined by single '.' or ','
// separators. A number must not touch a letter, mark, digit or underscore on
// either side, so "fatura123", "café3" and ordinals such as "1º" are kept.
// When the full run is glued to a word on the right, the longest shorter
// prefix that ends on a boundary is taken instead ("1.5a" gives "<NUM>.5a").
// A '-' is not a separator, so dates become one marker per component
func replaceNumbers(text, marker string) string {
	var b strings.Builder
	copied := 0
	prevWord := false

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsDigit(r) && !prevWord {
			if end := numberEnd(text, i); end > i {
				b.WriteString(text[copied:i])
				b.WriteString(marker)
				copied, i = end, end
				prevWord = true
				continue
			}
		}
		prevWord = isWordRune(r)
		i += size
	}

	if copied == 0 {
		return text
	}
	b.WriteString(text[copied:])
	return b.String()
}

// numberEnd returns the end of the longest number starting at start that is
// followed by a non-word rune or the end of text, or -1 when there is none
func numberEnd(text string, start int) int {
	end := -1
	i := digitsEnd(text, start)
	for {
		if !wordRuneAt(text, i) {
			end = i
		}
		if i >= len(text) || (text[i] != '.' && text[i] != ',') {
			return end
		}
		next := digitsEnd(text, i+1)
		if next == i+1 {
			return end
		}
		i = next
	}
}

func digitsEnd(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	return i
}

func wordRuneAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

// isWordRune reports whether r belongs to [\p{L}\p{M}\p{N}_]
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}
