package factory

import (
	"context"
	"fmt"

	"github.com/mikey/email-triage/internal/adapters/bedrock"
	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"go.uber.org/zap"
)

// LLMFactory creates text generators for the configured provider
type LLMFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *LLMFactory {
	return &LLMFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTextGenerator creates a text generator based on the configuration
func (f *LLMFactory) CreateTextGenerator() (core.TextGenerator, error) {
	provider := f.cfg.GetLLM().Provider

	f.logger.Info("Creating LLM client", zap.String("provider", provider))

	switch provider {
	case "gemini":
		gcfg := f.cfg.GetGemini()
		return gemini.NewGeminiClient(
			context.Background(),
			gcfg.APIKey,
			gcfg.ModelName,
			gcfg.MaxBodySize,
			f.logger,
			f.textProcessor,
		)
	case "openai":
		ocfg := f.cfg.GetOpenAI()
		return openai.NewOpenAIClient(
			ocfg.APIKey,
			ocfg.BaseURL,
			ocfg.ModelName,
			ocfg.MaxBodySize,
			f.logger,
			f.textProcessor,
		)
	case "bedrock":
		return bedrock.NewFromConfig(context.Background(), f.cfg.GetBedrock(), f.logger, f.textProcessor)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
