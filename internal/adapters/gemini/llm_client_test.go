package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockContent struct {
	mock.Mock
}

func (m *mockContent) GenerateContent(ctx context.Context, modelName string, cfg genai.GenerationConfig, prompt string) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, modelName, cfg, prompt)
	resp, _ := args.Get(0).(*genai.GenerateContentResponse)
	return resp, args.Error(1)
}

func newTestClient(api ContentAPI, maxBodySize int) *GeminiClient {
	return newClient(api, "gemini-1.5-flash", maxBodySize, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))
}

func textResponse(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: "model", Parts: parts}}},
	}
}

func TestGenerateText_JSONMode(t *testing.T) {
	api := new(mockContent)
	api.On("GenerateContent", mock.Anything, "gemini-1.5-flash", mock.MatchedBy(func(cfg genai.GenerationConfig) bool {
		return cfg.ResponseMIMEType == "application/json" &&
			cfg.Temperature != nil && *cfg.Temperature == 0 &&
			cfg.MaxOutputTokens != nil && *cfg.MaxOutputTokens == 256 &&
			cfg.TopP == nil && cfg.TopK == nil
	}), "classifique: reunião").
		Return(textResponse(genai.Text(`{"category": `), genai.Text(`"Produtivo"}`)), nil)

	c := newTestClient(api, 0)
	text, err := c.GenerateText(context.Background(), core.GenerationRequest{
		Prompt:    "classifique: reunião",
		MaxTokens: 256,
		JSON:      true,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"category": "Produtivo"}`, text)
	assert.Equal(t, "gemini-1.5-flash", c.ModelName())
	api.AssertExpectations(t)
}

func TestGenerateText_SamplingSettings(t *testing.T) {
	api := new(mockContent)
	api.On("GenerateContent", mock.Anything, mock.Anything, mock.MatchedBy(func(cfg genai.GenerationConfig) bool {
		return cfg.ResponseMIMEType == "" &&
			*cfg.Temperature == float32(0.2) &&
			*cfg.TopP == float32(0.8) &&
			*cfg.TopK == 40 &&
			*cfg.MaxOutputTokens == 2500
	}), mock.Anything).
		Return(textResponse(genai.Text("Obrigado pelo contato.")), nil)

	c := newTestClient(api, 0)
	text, err := c.GenerateText(context.Background(), core.GenerationRequest{
		Prompt:      "responda",
		Temperature: 0.2,
		TopP:        0.8,
		TopK:        40,
		MaxTokens:   2500,
	})

	require.NoError(t, err)
	assert.Equal(t, "Obrigado pelo contato.", text)
	api.AssertExpectations(t)
}

func TestGenerateText_TruncatesPrompt(t *testing.T) {
	api := new(mockContent)
	api.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.HasPrefix(prompt, "abcdefghij") &&
			!strings.Contains(prompt, "k") &&
			strings.HasSuffix(prompt, utils.TruncationNotice)
	})).Return(textResponse(genai.Text("ok")), nil)

	c := newTestClient(api, 10)
	_, err := c.GenerateText(context.Background(), core.GenerationRequest{Prompt: "abcdefghijklmnop"})

	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestGenerateText_SkipsNonTextParts(t *testing.T) {
	api := new(mockContent)
	api.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(textResponse(genai.Text("Segue "), genai.Blob{MIMEType: "image/png", Data: []byte{1}}, genai.Text("o texto")), nil)

	text, err := newTestClient(api, 0).GenerateText(context.Background(), core.GenerationRequest{Prompt: "x"})

	require.NoError(t, err)
	assert.Equal(t, "Segue o texto", text)
}

func TestGenerateText_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		err  error
	}{
		{"request failure", nil, errors.New("googleapi: Error 503: overloaded")},
		{"no candidates", &genai.GenerateContentResponse{}, nil},
		{"candidate without content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockContent)
			api.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			_, err := newTestClient(api, 0).GenerateText(context.Background(), core.GenerationRequest{Prompt: "x"})

			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrUpstream)
		})
	}
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "gemini-1.5-flash", 0, zap.NewNop(), utils.NewTextProcessor(zap.NewNop()))
	assert.ErrorContains(t, err, "api key")
}

func TestClose_WithoutSDKClient(t *testing.T) {
	assert.NoError(t, newTestClient(new(mockContent), 0).Close())
}
