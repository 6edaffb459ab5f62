package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/email-triage/internal/adapters/cache"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration
func (f *CacheFactory) CreateCacheRepository(ctx context.Context) (core.CacheRepository, error) {
	ccfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}

	f.logger.Info("Creating classification cache", zap.String("type", ccfg.Type))

	switch ccfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger, ccfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(ccfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(ccfg.SQLitePath, f.logger, ccfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(ccfg.MySQLDSN, f.logger, ccfg.CleanupFrequency)
	case "redis":
		return cache.NewRedisCache(ctx, ccfg.RedisAddr, ccfg.RedisPassword, ccfg.RedisDB, ccfg.RedisKeyPrefix, f.logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", ccfg.Type)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	ccfg, err := f.cfg.GetCache()
	if err != nil {
		return 0, err
	}
	return ccfg.TTL, nil
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
