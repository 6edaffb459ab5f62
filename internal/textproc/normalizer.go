// Package textproc implements the deterministic normalization pipeline applied
// to extracted email text before it is sent to a language model.
//
// The pipeline stages run in a fixed order:
//
//	lowercase → control characters → whitespace → numbers → stopwords → lemmatize → tokenize
//
// The first three stages always run (lowercasing can be switched off); the rest
// are guarded by Options. The order is part of the contract and cannot be
// changed by callers
package textproc

import (
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLang is the language used when Options.Lang is empty
const DefaultLang = "pt"

// Options controls the optional stages of the pipeline
type Options struct {
	Lowercase        bool   `json:"lowercase"`
	RemoveStopwords  bool   `json:"remove_stopwords"`
	Lemmatize        bool   `json:"lemmatize"`
	NormalizeNumbers bool   `json:"normalize_numbers"`
	Lang             string `json:"lang"`
}

// DefaultOptions returns the default option set: lowercasing on, every other
// optional stage off, Portuguese tables
func DefaultOptions() Options {
	return Options{
		Lowercase: true,
		Lang:      DefaultLang,
	}
}

func (o Options) lang() string {
	if o.Lang == "" {
		return DefaultLang
	}
	return strings.ToLower(o.Lang)
}

// UnsupportedStages names the enabled stages that have no table for the
// language and will therefore leave the text unchanged
func (o Options) UnsupportedStages() []string {
	var stages []string
	if o.RemoveStopwords && !hasStopwords(o.lang()) {
		stages = append(stages, "stopwords")
	}
	if o.Lemmatize && !hasLemmaRules(o.lang()) {
		stages = append(stages, "lemmatize")
	}
	return stages
}

// Output is the result of Preprocess. Exactly one of Text or Tokens is
// meaningful, as indicated by Tokenized
type Output struct {
	Text      string   `json:"text"`
	Tokens    []string `json:"tokens"`
	Tokenized bool     `json:"tokenized"`
}

// MarshalJSON writes only the meaningful field. A tokenized output always
// carries a tokens array, empty when nothing survived the pipeline
func (o Output) MarshalJSON() ([]byte, error) {
	if o.Tokenized {
		tokens := o.Tokens
		if tokens == nil {
			tokens = []string{}
		}
		return json.Marshal(struct {
			Tokens    []string `json:"tokens"`
			Tokenized bool     `json:"tokenized"`
		}{tokens, true})
	}
	return json.Marshal(struct {
		Text      string `json:"text"`
		Tokenized bool   `json:"tokenized"`
	}{o.Text, false})
}

var spaceRun = regexp.MustCompile(`[ \t]+`)

// Normalize runs the pipeline without tokenization. A nil text yields ""
func Normalize(text *string, opts Options) string {
	if text == nil {
		return ""
	}
	return normalize(*text, opts)
}

// NormalizeString is Normalize for a plain string
func NormalizeString(text string, opts Options) string {
	return normalize(text, opts)
}

// Tokenize runs the pipeline and splits the result into tokens. The returned
// slice is never nil; a nil text or a text that empties out yields an empty slice
func Tokenize(text *string, opts Options) []string {
	if text == nil {
		return []string{}
	}
	return tokenize(normalize(*text, opts))
}

// TokenizeString is Tokenize for a plain string
func TokenizeString(text string, opts Options) []string {
	return tokenize(normalize(text, opts))
}

// Preprocess is the dynamically shaped entry point for callers that only know
// at runtime whether tokens are wanted
func Preprocess(text *string, opts Options, wantTokens bool) Output {
	if wantTokens {
		return Output{Tokens: Tokenize(text, opts), Tokenized: true}
	}
	return Output{Text: Normalize(text, opts)}
}

func normalize(text string, opts Options) string {
	if text == "" {
		return ""
	}

	if opts.Lowercase {
		text = lowercase(text, opts.lang())
	}
	text = removeControlChars(text)
	text = normalizeWhitespace(text)

	if opts.NormalizeNumbers {
		text = replaceNumbers(text, numberMarker(opts.Lowercase))
	}
	if opts.RemoveStopwords {
		text = removeStopwords(text, opts.lang())
	}
	if opts.Lemmatize {
		text = lemmatize(text, opts.lang())
	}

	return text
}

// lowercase folds case with the language's rules. A Caser keeps state, so one
// is built per call
func lowercase(text, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return cases.Lower(tag).String(text)
}

// removeControlChars drops C0 control characters except tab, line feed and
// carriage return, and drops DEL
func removeControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		if r == 0x7f {
			return -1
		}
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, text)
}

// normalizeWhitespace collapses runs of spaces and tabs and trims the ends.
// Newlines inside the text are kept
func normalizeWhitespace(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// Normalizer binds a fixed option set so the normalizer can be injected where a
// single-method dependency is expected
type Normalizer struct {
	opts Options
}

// NewNormalizer creates a Normalizer using opts
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Options returns the options the normalizer was built with
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize runs the pipeline on text
func (n *Normalizer) Normalize(text string) string {
	return normalize(text, n.opts)
}

// Tokens runs the pipeline on text and tokenizes the result
func (n *Normalizer) Tokens(text string) []string {
	return tokenize(normalize(text, n.opts))
}
