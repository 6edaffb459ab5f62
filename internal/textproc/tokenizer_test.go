package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	raw := Options{Lang: "pt"}

	tests := []struct {
		name     string
		input    string
		opts     Options
		expected []string
	}{
		{
			name:     "words and punctuation",
			input:    "Olá mundo, tudo bem?",
			opts:     DefaultOptions(),
			expected: []string{"olá", "mundo", "tudo", "bem"},
		},
		{
			name:     "percent is dropped from plain numbers",
			input:    "A taxa de juros é 15%.",
			opts:     raw,
			expected: []string{"A", "taxa", "de", "juros", "é", "15"},
		},
		{
			name:     "currency amount stays one token",
			input:    "O valor é R$ 100,00.",
			opts:     raw,
			expected: []string{"O", "valor", "é", "R", "100,00"},
		},
		{
			name:     "number markers keep percent",
			input:    "Processando tokens como <NUM> e <NUM>%.",
			opts:     raw,
			expected: []string{"Processando", "tokens", "como", "<NUM>", "e", "<NUM>%"},
		},
		{
			name:     "punctuation separates words",
			input:    "apenas.pontuação!",
			opts:     raw,
			expected: []string{"apenas", "pontuação"},
		},
		{
			name:     "hyphen separates words",
			input:    "palavras-hifenizadas",
			opts:     raw,
			expected: []string{"palavras", "hifenizadas"},
		},
		{
			name:     "newlines separate words",
			input:    "linha um\nlinha dois",
			opts:     raw,
			expected: []string{"linha", "um", "linha", "dois"},
		},
		{
			name:     "lowercased markers",
			input:    "Total 15% de 300",
			opts:     Options{Lowercase: true, NormalizeNumbers: true, Lang: "pt"},
			expected: []string{"total", "<num>%", "de", "<num>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TokenizeString(tt.input, tt.opts))
		})
	}
}

func TestTokenize_Empty(t *testing.T) {
	for _, in := range []string{"", "   \n\t ", ".,;!?-..."} {
		tokens := TokenizeString(in, DefaultOptions())
		require.NotNil(t, tokens, "input %q", in)
		assert.Empty(t, tokens, "input %q", in)
	}

	tokens := Tokenize(nil, DefaultOptions())
	require.NotNil(t, tokens)
	assert.Empty(t, tokens)
}

func TestTokenize_NoWhitespaceOrEmptyTokens(t *testing.T) {
	in := "  Prezados,\n\nsegue   o relatório (v2) de 10/05 -- 98,5% concluído!  "
	for _, tok := range TokenizeString(in, DefaultOptions()) {
		assert.NotEmpty(t, tok)
		assert.NotRegexp(t, `\s`, tok)
	}
}

func TestLanguageTables(t *testing.T) {
	assert.True(t, hasStopwords("PT"))
	assert.True(t, hasStopwords("en"))
	assert.False(t, hasStopwords("de"))

	assert.True(t, hasLemmaRules("pt"))
	assert.False(t, hasLemmaRules("en"))

	assert.Empty(t, Options{RemoveStopwords: true, Lemmatize: true}.UnsupportedStages())
	assert.Empty(t, Options{Lang: "de"}.UnsupportedStages())
	assert.Equal(t, []string{"lemmatize"}, Options{RemoveStopwords: true, Lemmatize: true, Lang: "EN"}.UnsupportedStages())
	assert.Equal(t, []string{"stopwords", "lemmatize"}, Options{RemoveStopwords: true, Lemmatize: true, Lang: "de"}.UnsupportedStages())

	assert.Equal(t, "limão", lemmatize("limães", "pt"))
	assert.Equal(t, "carros", lemmatize("carros", "en"))
	assert.True(t, stopwordTables["pt"].has("foi"))
	assert.False(t, stopwordTables["pt"].has("não"))
	assert.False(t, stopwordTables["pt"].has("valor"))
}
