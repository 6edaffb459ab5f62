package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mikey/email-triage/internal/textproc"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := RootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExtractCommand(t *testing.T) {
	out, err := execute(t, "", "extract", "<p>Olá &amp; bem-vindo</p>")
	require.NoError(t, err)
	assert.Equal(t, "Olá & bem-vindo\n", out)

	path := filepath.Join(t.TempDir(), "email.txt")
	require.NoError(t, os.WriteFile(path, []byte("Segue o <b>relatório</b>."), 0o600))
	out, err = execute(t, "", "extract", path)
	require.NoError(t, err)
	assert.Equal(t, "Segue o relatório.\n", out)

	out, err = execute(t, "<div>via stdin</div>\n", "extract")
	require.NoError(t, err)
	assert.Equal(t, "via stdin\n", out)
}

func TestExtractCommandEmpty(t *testing.T) {
	_, err := execute(t, "", "extract", filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "no text could be extracted")
}

func TestNormalizeCommand(t *testing.T) {
	out, err := execute(t, "", "normalize", "--stopwords", "--lemmatize", "--numbers",
		"O valor de R$ 1.500,00 foi aprovado para as casas.")
	require.NoError(t, err)
	assert.Equal(t, "valor r$ <num> aprovado casa.\n", out)

	out, err = execute(t, "", "normalize", "--no-lowercase", "Olá   Mundo")
	require.NoError(t, err)
	assert.Equal(t, "Olá Mundo\n", out)

	out, err = execute(t, "", "normalize", "--tokens", "Bom dia, equipe!")
	require.NoError(t, err)
	assert.Equal(t, "bom\ndia\nequipe\n", out)
}

func TestNormalizeCommandWarnsOnUnsupportedLanguage(t *testing.T) {
	root := RootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"normalize", "--lang", "de", "--stopwords", "Die Rechnung"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "die rechnung\n", stdout.String())
	assert.Contains(t, stderr.String(), `no stopwords table for language "de"`)

	stderr.Reset()
	stdout.Reset()
	root = RootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"normalize", "--stopwords", "O carro"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "carro\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestNormalizeCommandJSONEmptyTokens(t *testing.T) {
	out, err := execute(t, "-- !!\n", "normalize", "--tokens", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"tokens":[],"tokenized":true}`, out)
}

func TestNormalizeCommandJSON(t *testing.T) {
	out, err := execute(t, "Pagamento de 20%\n", "normalize", "--numbers", "--tokens", "--json")
	require.NoError(t, err)

	var got textproc.Output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Tokenized)
	assert.Equal(t, []string{"pagamento", "de", "<num>%"}, got.Tokens)
}

func TestTriageCommandValidatesInputBeforeBuildingContainer(t *testing.T) {
	_, err := execute(t, "", "triage", "--eml", filepath.Join(t.TempDir(), "missing.eml"))
	assert.ErrorContains(t, err, "failed to open input file")

	_, err = execute(t, "", "triage", "--eml", "-", "inline content")
	assert.ErrorContains(t, err, "cannot be combined")

	_, err = execute(t, "not an email", "triage", "--eml", "-")
	assert.ErrorContains(t, err, "failed to parse email message")
}

func TestTriageRequestFromEML(t *testing.T) {
	tf := &triageFlags{emlPath: "-"}
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("From: Ana <ana@example.com>\r\nSubject: Oi\r\n\r\nPreciso de ajuda.\r\n"))

	req, email, err := tf.request(cmd, nil)
	require.NoError(t, err)
	assert.True(t, req.Inline)
	assert.Equal(t, "ana@example.com", req.Sender)
	assert.Equal(t, "Preciso de ajuda.\r\n", *req.Content)
	assert.Equal(t, "Oi", email.Subject)
}
