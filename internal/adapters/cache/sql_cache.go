package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// sqlDialect holds the statements that differ between SQL backends.
// Timestamps are stored as Unix seconds so expiry checks need no date functions.
type sqlDialect struct {
	name    string
	schema  []string
	upsert  string
	sel     string
	del     string
	cleanup string
}

// sqlCache implements the CacheRepository interface on database/sql
type sqlCache struct {
	db          *sql.DB
	dialect     sqlDialect
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
}

func newSQLCache(db *sql.DB, dialect sqlDialect, logger *zap.Logger, cleanupFreq time.Duration) (*sqlCache, error) {
	for _, stmt := range dialect.schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("failed to create %s schema: %w", dialect.name, err)
		}
	}

	c := &sqlCache{
		db:          db,
		dialect:     dialect,
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	// Start background cleanup
	if cleanupFreq > 0 {
		go c.startCleanupTask()
	} else {
		close(c.doneCh)
	}

	return c, nil
}

// Get retrieves a cached entry by key
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var (
		category, reason, model string
		confidence              float64
		createdAt, expiresAt    int64
	)

	err := c.db.QueryRowContext(ctx, c.dialect.sel, key, time.Now().Unix()).
		Scan(&category, &confidence, &reason, &model, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	return &core.CacheEntry{
		Key:        key,
		Category:   core.Category(category),
		Confidence: confidence,
		Reason:     reason,
		ModelUsed:  model,
		CreatedAt:  time.Unix(createdAt, 0),
		ExpiresAt:  time.Unix(expiresAt, 0),
	}, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, c.dialect.upsert,
		entry.Key,
		string(entry.Category),
		entry.Confidence,
		entry.Reason,
		entry.ModelUsed,
		entry.CreatedAt.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, c.dialect.del, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, c.dialect.cleanup, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("backend", c.dialect.name),
			zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *sqlCache) startCleanupTask() {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	close(c.stopCh)
	<-c.doneCh
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close database", zap.String("backend", c.dialect.name), zap.Error(err))
	}
}
