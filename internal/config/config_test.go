package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "gemini", cfg.GetLLM().Provider)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "memory", cache.Type)
	assert.Equal(t, 24*time.Hour, cache.TTL)

	server, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, int64(5<<20), server.MaxUploadBytes)

	pre := cfg.GetPreprocess()
	assert.True(t, pre.Lowercase)
	assert.True(t, pre.RemoveStopwords)
	assert.True(t, pre.Lemmatize)
	assert.Equal(t, "pt", pre.Lang)

	resp := cfg.GetResponder()
	assert.Equal(t, float32(0.2), resp.Temperature)
	assert.Equal(t, int32(40), resp.TopK)
	assert.Equal(t, 2500, resp.MaxTokens)

	assert.Equal(t, "X-Triage-Category", cfg.GetIntake().CategoryHeader)
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: openai
cache:
  type: redis
  ttl: 90m
triage:
  trusted_domains:
    - example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("EMAIL_TRIAGE_OPENAI_MODEL_NAME", "gpt-4o")

	cfg, err := NewWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, "gpt-4o", cfg.GetOpenAI().ModelName)
	assert.Equal(t, []string{"example.com"}, cfg.GetTrustedDomains())

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, 90*time.Minute, cache.TTL)
}

func TestGetDuration_Invalid(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("cache.ttl", "soon")

	_, err := cfg.GetCache()
	assert.Error(t, err)
}
