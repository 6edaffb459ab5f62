package textproc

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// suffixRule rewrites a word ending in suffix. minLen is the minimum word
// length in runes; a word that also ends in except is left alone
type suffixRule struct {
	suffix  string
	replace string
	minLen  int
	except  string
}

func (r suffixRule) apply(word string) (string, bool) {
	if !strings.HasSuffix(word, r.suffix) {
		return word, false
	}
	if utf8.RuneCountInString(word) < r.minLen {
		return word, false
	}
	if r.except != "" && strings.HasSuffix(word, r.except) {
		return word, false
	}
	return strings.TrimSuffix(word, r.suffix) + r.replace, true
}

// lemmaRules is keyed by language code; within a language the first matching
// rule wins, so more specific suffixes come first
var lemmaRules = map[string][]suffixRule{
	"pt": {
		{suffix: "ães", replace: "ão"},
		{suffix: "es", minLen: 4},
		{suffix: "s", minLen: 4, except: "es"},
	},
}

var (
	nonSpaceRun = regexp.MustCompile(`\S+`)
	wordAndTail = regexp.MustCompile(`^([\p{L}\p{M}\p{N}_]+)([^\p{L}\p{M}\p{N}_]*)$`)
)

// hasLemmaRules reports whether lemmatization does anything for lang
func hasLemmaRules(lang string) bool {
	_, ok := lemmaRules[strings.ToLower(lang)]
	return ok
}

func applyRules(rules []suffixRule, word string) string {
	for _, rule := range rules {
		if out, ok := rule.apply(word); ok {
			return out
		}
	}
	return word
}

// lemmatize rewrites each whitespace-delimited token, keeping trailing
// punctuation and the whitespace between tokens
func lemmatize(text, lang string) string {
	rules, ok := lemmaRules[lang]
	if !ok {
		return text
	}

	return nonSpaceRun.ReplaceAllStringFunc(text, func(token string) string {
		m := wordAndTail.FindStringSubmatch(token)
		if m == nil {
			return token
		}
		return applyRules(rules, m[1]) + m[2]
	})
}
