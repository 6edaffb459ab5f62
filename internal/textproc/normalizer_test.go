package textproc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNormalize_NilAndEmpty(t *testing.T) {
	assert.Equal(t, "", Normalize(nil, DefaultOptions()))
	assert.Equal(t, "", Normalize(ptr(""), DefaultOptions()))
	assert.Equal(t, "", NormalizeString("   \t \n ", DefaultOptions()))
}

func TestNormalize_DefaultPipeline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "removes control characters",
			input:    "texto\x08com\x01controle",
			expected: "textocomcontrole",
		},
		{
			name:     "keeps newlines and collapses spaces",
			input:    "primeira linha\n\n  segunda linha com espaços",
			expected: "primeira linha\n\n segunda linha com espaços",
		},
		{
			name:     "combined problems",
			input:    "  \tUM TEXTO\n\n\nCOM\x0cMÚLTIPLOS\x08 PROBLEMAS  \n",
			expected: "um texto\n\n\ncommúltiplos problemas",
		},
		{
			name:     "drops DEL",
			input:    "abc\x7fdef",
			expected: "abcdef",
		},
		{
			name:     "tabs become single spaces",
			input:    "a\t\tb \t c",
			expected: "a b c",
		},
		{
			name:     "numbers untouched by default",
			input:    "Fatura 1.234,56 vence em 2024-01-10",
			expected: "fatura 1.234,56 vence em 2024-01-10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeString(tt.input, DefaultOptions()))
		})
	}
}

func TestNormalize_LowercaseDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.Lowercase = false

	assert.Equal(t, "Olá MUNDO", NormalizeString("  Olá   MUNDO ", opts))
}

func TestNormalize_NoControlCharactersSurvive(t *testing.T) {
	var b strings.Builder
	for r := rune(0); r < 0x20; r++ {
		b.WriteString("x")
		b.WriteRune(r)
	}
	b.WriteRune(0x7f)

	out := NormalizeString(b.String(), DefaultOptions())
	for _, r := range out {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		assert.False(t, r < 0x20 || r == 0x7f, "control character %q survived", r)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"  \tUM TEXTO\n\n\nCOM\x0cMÚLTIPLOS\x08 PROBLEMAS  \n",
		"O VALOR de R$ 1.234,56 foi APROVADO para estas casas.",
		"Olá &amp; Mundo",
		"",
	}
	optionSets := []Options{
		DefaultOptions(),
		{Lowercase: false, Lang: "pt"},
		{Lowercase: true, NormalizeNumbers: true, Lang: "pt"},
	}

	for _, opts := range optionSets {
		for _, in := range inputs {
			once := NormalizeString(in, opts)
			assert.Equal(t, once, NormalizeString(once, opts), "input %q", in)
		}
	}
}

func TestNormalize_NumberMarkers(t *testing.T) {
	opts := Options{NormalizeNumbers: true, Lang: "pt"}

	tests := []struct {
		input    string
		expected string
	}{
		{"O valor é 100.", "O valor é <NUM>."},
		{"Custa 25.50 para cada.", "Custa <NUM> para cada."},
		{"1.000", "<NUM>"},
		{"1,000", "<NUM>"},
		{"10,50", "<NUM>"},
		{"1.234,56", "<NUM>"},
		{"1,234.56", "<NUM>"},
		{"A taxa é 15%.", "A taxa é <NUM>%."},
		{"Total: R$ 100,00.", "Total: R$ <NUM>."},
		{"Paid $200.00.", "Paid $<NUM>."},
		{"42", "<NUM>"},
		{"Em 2024-01-10.", "Em <NUM>-<NUM>-<NUM>."},
		{"fatura123", "fatura123"},
		{"café3", "café3"},
		{"ação7 pendente", "ação7 pendente"},
		{"1º lugar", "1º lugar"},
		{"2ª via do boleto", "2ª via do boleto"},
		{"3_itens", "3_itens"},
		{"nota 1.5a", "nota <NUM>.5a"},
		{"(10)", "(<NUM>)"},
		{"ítem 7.", "ítem <NUM>."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeString(tt.input, opts))
		})
	}
}

func TestNormalize_NumberMarkerFollowsCase(t *testing.T) {
	opts := Options{Lowercase: true, NormalizeNumbers: true, Lang: "pt"}
	assert.Equal(t, "total <num>", NormalizeString("TOTAL 300", opts))
}

func TestNormalize_NoDigitsSurviveNumberStage(t *testing.T) {
	opts := Options{NormalizeNumbers: true, Lang: "pt"}
	out := NormalizeString("Pedido 12, lote 3.456,78 em 01/02/2024 às 10:30", opts)
	assert.NotRegexp(t, `(^|[^\p{L}\p{N}_])\d`, out)
}

func TestNormalize_StopwordRemoval(t *testing.T) {
	opts := Options{Lowercase: true, RemoveStopwords: true, Lang: "pt"}

	assert.Equal(t,
		"gostaria notificado sobre série serviço",
		NormalizeString("Gostaria de ser notificado sobre a série e o serviço", opts))
}

func TestNormalize_StopwordUnknownLanguageIsNoop(t *testing.T) {
	opts := Options{Lowercase: true, RemoveStopwords: true, Lemmatize: true, Lang: "xx"}
	assert.Equal(t, "o carros de casas", NormalizeString("O carros de casas", opts))
}

func TestNormalize_EnglishStopwords(t *testing.T) {
	opts := Options{Lowercase: true, RemoveStopwords: true, Lang: "en"}
	assert.Equal(t, "invoice attached", NormalizeString("The invoice is attached", opts))
}

func TestNormalize_Lemmatize(t *testing.T) {
	opts := Options{Lowercase: true, Lemmatize: true, Lang: "pt"}

	tests := []struct {
		input    string
		expected string
	}{
		{"CARROS", "carro"},
		{"pães", "pão"},
		{"flores", "flor"},
		{"mes", "mes"},
		{"gás", "gás"},
		{"casas.", "casa."},
		{"e-mails", "e-mails"},
		{"carros\ncasas", "carro\ncasa"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeString(tt.input, opts))
		})
	}
}

func TestNormalize_ComposedPipeline(t *testing.T) {
	opts := Options{
		Lowercase:        true,
		RemoveStopwords:  true,
		Lemmatize:        true,
		NormalizeNumbers: true,
		Lang:             "pt",
	}

	in := "  O VALOR de R$ 1.234,56 foi APROVADO para estas casas."
	assert.Equal(t, "valor r$ <num> aprovado casa.", Normalize(&in, opts))
}

func TestPreprocess(t *testing.T) {
	in := "Um texto de exemplo."

	text := Preprocess(&in, DefaultOptions(), false)
	assert.False(t, text.Tokenized)
	assert.Equal(t, "um texto de exemplo.", text.Text)
	assert.Nil(t, text.Tokens)

	tokens := Preprocess(&in, DefaultOptions(), true)
	assert.True(t, tokens.Tokenized)
	assert.Equal(t, []string{"um", "texto", "de", "exemplo"}, tokens.Tokens)
	assert.Empty(t, tokens.Text)

	empty := Preprocess(nil, DefaultOptions(), true)
	require.NotNil(t, empty.Tokens)
	assert.Empty(t, empty.Tokens)
}

func TestOutput_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		out      Output
		expected string
	}{
		{"text", Preprocess(ptr("Bom dia"), DefaultOptions(), false), `{"text":"bom dia","tokenized":false}`},
		{"empty text", Preprocess(nil, DefaultOptions(), false), `{"text":"","tokenized":false}`},
		{"tokens", Preprocess(ptr("Bom dia"), DefaultOptions(), true), `{"tokens":["bom","dia"],"tokenized":true}`},
		{"tokens emptied out", Preprocess(ptr(" -- !! "), DefaultOptions(), true), `{"tokens":[],"tokenized":true}`},
		{"nil tokens", Output{Tokenized: true}, `{"tokens":[],"tokenized":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.out)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestNormalizer(t *testing.T) {
	opts := Options{Lowercase: true, RemoveStopwords: true, Lang: "pt"}
	p := NewNormalizer(opts)

	assert.Equal(t, opts, p.Options())
	assert.Equal(t, "reunião amanhã", p.Normalize("A reunião é amanhã"))
	assert.Equal(t, []string{"reunião", "amanhã"}, p.Tokens("A reunião é amanhã"))
}
