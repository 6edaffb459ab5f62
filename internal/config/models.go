package config

import (
	"time"

	"github.com/mikey/email-triage/internal/textproc"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxBodySize int
}

// ClassifierConfig holds the sampling settings for classification calls
type ClassifierConfig struct {
	Temperature float32
	MaxTokens   int
	PromptFile  string
}

// ResponderConfig holds the sampling settings for reply generation
type ResponderConfig struct {
	Temperature float32
	TopP        float32
	TopK        int32
	MaxTokens   int
	PromptFile  string
}

// CacheConfig represents the classification cache configuration
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	RedisKeyPrefix   string
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress  string
	Mode           string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// IntakeConfig represents the SMTP intake configuration
type IntakeConfig struct {
	Enabled          bool
	ListenAddress    string
	Domain           string
	MaxMessageBytes  int64
	RelayEnabled     bool
	RelayAddress     string
	CategoryHeader   string
	ConfidenceHeader string
	ReasonHeader     string
	ErrorHeader      string
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetClassifier returns the classification call settings
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Temperature: float32(c.GetFloat64("classifier.temperature")),
		MaxTokens:   c.GetInt("classifier.max_tokens"),
		PromptFile:  c.GetString("classifier.prompt_file"),
	}
}

// GetResponder returns the reply generation settings
func (c *Config) GetResponder() ResponderConfig {
	return ResponderConfig{
		Temperature: float32(c.GetFloat64("responder.temperature")),
		TopP:        float32(c.GetFloat64("responder.top_p")),
		TopK:        int32(c.GetInt("responder.top_k")),
		MaxTokens:   c.GetInt("responder.max_tokens"),
		PromptFile:  c.GetString("responder.prompt_file"),
	}
}

// GetPreprocess returns the normalization options applied before classification
func (c *Config) GetPreprocess() textproc.Options {
	return textproc.Options{
		Lowercase:        c.GetBool("preprocess.lowercase"),
		RemoveStopwords:  c.GetBool("preprocess.remove_stopwords"),
		Lemmatize:        c.GetBool("preprocess.lemmatize"),
		NormalizeNumbers: c.GetBool("preprocess.normalize_numbers"),
		Lang:             c.GetString("preprocess.lang"),
	}
}

// GetTrustedDomains returns the sender domains that bypass classification
func (c *Config) GetTrustedDomains() []string {
	return c.GetStringSlice("triage.trusted_domains")
}

// GetCache returns the cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}

	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddr:        c.GetString("cache.redis.addr"),
		RedisPassword:    c.GetString("cache.redis.password"),
		RedisDB:          c.GetInt("cache.redis.db"),
		RedisKeyPrefix:   c.GetString("cache.redis.key_prefix"),
	}, nil
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	read, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	write, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, err
	}

	return ServerConfig{
		ListenAddress:  c.GetString("server.listen_address"),
		Mode:           c.GetString("server.mode"),
		MaxUploadBytes: c.GetInt64("server.max_upload_bytes"),
		ReadTimeout:    read,
		WriteTimeout:   write,
	}, nil
}

// GetIntake returns the SMTP intake configuration
func (c *Config) GetIntake() IntakeConfig {
	return IntakeConfig{
		Enabled:          c.GetBool("intake.enabled"),
		ListenAddress:    c.GetString("intake.listen_address"),
		Domain:           c.GetString("intake.domain"),
		MaxMessageBytes:  c.GetInt64("intake.max_message_bytes"),
		RelayEnabled:     c.GetBool("intake.relay.enabled"),
		RelayAddress:     c.GetString("intake.relay.address"),
		CategoryHeader:   c.GetString("intake.headers.category"),
		ConfidenceHeader: c.GetString("intake.headers.confidence"),
		ReasonHeader:     c.GetString("intake.headers.reason"),
		ErrorHeader:      c.GetString("intake.headers.error"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:      c.GetString("logging.level"),
		Format:     c.GetString("logging.format"),
		File:       c.GetString("logging.file"),
		MaxSizeMB:  c.GetInt("logging.max_size_mb"),
		MaxBackups: c.GetInt("logging.max_backups"),
		MaxAgeDays: c.GetInt("logging.max_age_days"),
		Compress:   c.GetBool("logging.compress"),
	}
}
