package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = "You are an email triage assistant for a corporate inbox. Follow the instructions in the user message exactly."

// OpenAIClient is an implementation of the TextGenerator interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client. A non-empty baseURL points the
// client at an OpenAI-compatible endpoint.
func NewOpenAIClient(
	apiKey string,
	baseURL string,
	modelName string,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is not configured")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:        openai.NewClientWithConfig(clientConfig),
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// ModelName returns the configured model name
func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

// GenerateText sends the prompt as a chat completion
func (c *OpenAIClient) GenerateText(ctx context.Context, req core.GenerationRequest) (string, error) {
	prompt := c.textProcessor.ProcessText(req.Prompt, c.maxBodySize)

	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create chat completion with OpenAI: %v", core.ErrUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response from OpenAI", core.ErrUpstream)
	}

	c.logger.Debug("OpenAI response received",
		zap.String("model", c.modelName),
		zap.String("id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}
