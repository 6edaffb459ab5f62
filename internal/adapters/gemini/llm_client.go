package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ContentAPI sends one prompt to a named model with the given sampling settings
type ContentAPI interface {
	GenerateContent(ctx context.Context, modelName string, cfg genai.GenerationConfig, prompt string) (*genai.GenerateContentResponse, error)
}

// sdkContent is the ContentAPI backed by the Gemini SDK
type sdkContent struct {
	client *genai.Client
}

// GenerateContent builds a model handle per call because sampling settings
// differ between classification and replies
func (s sdkContent) GenerateContent(ctx context.Context, modelName string, cfg genai.GenerationConfig, prompt string) (*genai.GenerateContentResponse, error) {
	model := s.client.GenerativeModel(modelName)
	model.GenerationConfig = cfg
	return model.GenerateContent(ctx, genai.Text(prompt))
}

// GeminiClient is an implementation of the TextGenerator interface using Google Gemini
type GeminiClient struct {
	api           ContentAPI
	client        *genai.Client
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := newClient(sdkContent{client: client}, modelName, maxBodySize, logger, textProcessor)
	c.client = client
	return c, nil
}

func newClient(
	api ContentAPI,
	modelName string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *GeminiClient {
	return &GeminiClient{
		api:           api,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelName returns the configured model name
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// GenerateText sends the prompt to Gemini
func (c *GeminiClient) GenerateText(ctx context.Context, req core.GenerationRequest) (string, error) {
	prompt := c.textProcessor.ProcessText(req.Prompt, c.maxBodySize)

	resp, err := c.api.GenerateContent(ctx, c.modelName, generationConfig(req), prompt)
	if err != nil {
		return "", fmt.Errorf("%w: failed to generate content with Gemini: %v", core.ErrUpstream, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: empty response from Gemini", core.ErrUpstream)
	}

	text := responseText(resp.Candidates[0].Content.Parts)
	c.logger.Debug("Gemini response received",
		zap.String("model", c.modelName),
		zap.Int("prompt_size", len(prompt)),
		zap.Int("response_size", len(text)))

	return text, nil
}

// generationConfig maps a request onto Gemini sampling settings; zero values
// leave the model defaults in place
func generationConfig(req core.GenerationRequest) genai.GenerationConfig {
	var cfg genai.GenerationConfig
	cfg.SetTemperature(req.Temperature)
	if req.TopP > 0 {
		cfg.SetTopP(req.TopP)
	}
	if req.TopK > 0 {
		cfg.SetTopK(req.TopK)
	}
	if req.MaxTokens > 0 {
		cfg.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

// responseText concatenates the text parts of a candidate
func responseText(parts []genai.Part) string {
	var b strings.Builder
	for _, part := range parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
