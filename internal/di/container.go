package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/intake"
	"github.com/mikey/email-triage/internal/adapters/web"
	"github.com/mikey/email-triage/internal/allowlist"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/extract"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
	"github.com/mikey/email-triage/internal/metrics"
	"github.com/mikey/email-triage/internal/ports"
	"github.com/mikey/email-triage/internal/prompts"
	"github.com/mikey/email-triage/internal/textproc"
	"github.com/mikey/email-triage/internal/utils"
)

// Options adjusts how the container is built
type Options struct {
	// ConfigPath selects a config file; empty searches the default locations
	ConfigPath string

	// Logger replaces the logger built from the logging config
	Logger *zap.Logger
}

// BuildContainer creates and configures a dependency injection container
func BuildContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		// Configuration and logging
		func() (*config.Config, error) {
			return config.NewWithFile(opts.ConfigPath)
		},
		func(cfg *config.Config) (*zap.Logger, error) {
			if opts.Logger != nil {
				return opts.Logger, nil
			}
			return logging.InitLogger(cfg.GetLogging())
		},

		// Factories
		utils.NewTextProcessor,
		factory.NewLLMFactory,
		factory.NewCacheFactory,

		// Adapters
		func(f *factory.LLMFactory) (core.TextGenerator, error) {
			return f.CreateTextGenerator()
		},
		provideCache,
		func(cfg *config.Config, logger *zap.Logger) core.SenderPolicy {
			return allowlist.NewChecker(cfg.GetTrustedDomains(), logger)
		},
		metrics.NewRecorder,
		func(cfg *config.Config, recorder *metrics.Recorder) core.MetricsRecorder {
			if !cfg.GetBool("metrics.enabled") {
				return core.NopMetrics{}
			}
			return recorder
		},

		// Text pipeline
		func(logger *zap.Logger) core.ContentExtractor {
			return extract.NewExtractor(logger)
		},
		func(cfg *config.Config, logger *zap.Logger) core.TextNormalizer {
			opts := cfg.GetPreprocess()
			for _, stage := range opts.UnsupportedStages() {
				logger.Warn("Normalization stage has no table for the configured language",
					zap.String("stage", stage),
					zap.String("lang", opts.Lang))
			}
			return textproc.NewNormalizer(opts)
		},

		// Language model services
		provideClassifier,
		provideResponder,

		// Triage service
		provideTriageService,
		func(s *core.TriageService) ports.Triager { return s },

		// Inbound surfaces
		provideWebServer,
		func(cfg *config.Config, service ports.Triager, logger *zap.Logger) *intake.Server {
			return intake.NewServer(service, cfg.GetIntake(), logger)
		},
		provideListeners,
	}

	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, err
		}
	}
	return container, nil
}

// provideCache returns nil when caching is disabled; the triage service
// accepts a nil repository.
func provideCache(f *factory.CacheFactory) (core.CacheRepository, error) {
	if !f.IsCacheEnabled() {
		return nil, nil
	}
	return f.CreateCacheRepository(context.Background())
}

func provideClassifier(
	cfg *config.Config,
	generator core.TextGenerator,
	recorder core.MetricsRecorder,
	logger *zap.Logger,
) (core.Classifier, error) {
	ccfg := cfg.GetClassifier()
	template, err := prompts.Classifier(ccfg.PromptFile)
	if err != nil {
		return nil, err
	}
	return core.NewLLMClassifier(generator, template, ccfg.Temperature, ccfg.MaxTokens, recorder, logger), nil
}

func provideResponder(
	cfg *config.Config,
	generator core.TextGenerator,
	recorder core.MetricsRecorder,
	logger *zap.Logger,
) (core.Responder, error) {
	rcfg := cfg.GetResponder()
	template, err := prompts.Responder(rcfg.PromptFile)
	if err != nil {
		return nil, err
	}
	settings := core.ResponderSettings{
		Temperature: rcfg.Temperature,
		TopP:        rcfg.TopP,
		TopK:        rcfg.TopK,
		MaxTokens:   rcfg.MaxTokens,
	}
	return core.NewLLMResponder(generator, template, settings, recorder, logger), nil
}

type triageParams struct {
	dig.In

	Extractor  core.ContentExtractor
	Normalizer core.TextNormalizer
	Classifier core.Classifier
	Responder  core.Responder
	Cache      core.CacheRepository
	Senders    core.SenderPolicy
	Metrics    core.MetricsRecorder
	Logger     *zap.Logger
	Factory    *factory.CacheFactory
}

func provideTriageService(p triageParams) (*core.TriageService, error) {
	ttl, err := p.Factory.GetCacheTTL()
	if err != nil {
		return nil, err
	}
	return core.NewTriageService(
		p.Extractor,
		p.Normalizer,
		p.Classifier,
		p.Responder,
		p.Cache,
		p.Senders,
		p.Metrics,
		p.Logger,
		p.Cache != nil,
		ttl,
	), nil
}

func provideWebServer(
	cfg *config.Config,
	service ports.Triager,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) (*web.Server, error) {
	scfg, err := cfg.GetServer()
	if err != nil {
		return nil, err
	}

	metricsHandler := recorder.Handler()
	if !cfg.GetBool("metrics.enabled") {
		metricsHandler = nil
	}
	return web.NewServer(service, metricsHandler, scfg, logger)
}

// provideListeners returns the inbound surfaces enabled in the configuration
func provideListeners(cfg *config.Config, httpServer *web.Server, smtpServer *intake.Server) []ports.Listener {
	listeners := []ports.Listener{httpServer}
	if cfg.GetIntake().Enabled {
		listeners = append(listeners, smtpServer)
	}
	return listeners
}
