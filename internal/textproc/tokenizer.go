package textproc

import "regexp"

// tokenPattern lists what counts as a token, most specific first: the number
// marker (with an optional percent sign), a separated number, a word. Anything
// else separates tokens and is dropped
var tokenPattern = regexp.MustCompile(`(?i)<num>%?|\d+(?:[.,]\d+)*|[\p{L}\p{M}\p{N}_]+`)

func tokenize(text string) []string {
	tokens := tokenPattern.FindAllString(text, -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}
