package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = sqlDialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS classification_cache (
			cache_key TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			confidence REAL NOT NULL,
			reason TEXT NOT NULL,
			model_used TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_classification_expires_at ON classification_cache(expires_at)`,
	},
	upsert: `INSERT OR REPLACE INTO classification_cache
		(cache_key, category, confidence, reason, model_used, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
	sel: `SELECT category, confidence, reason, model_used, created_at, expires_at
		FROM classification_cache
		WHERE cache_key = ? AND expires_at > ?`,
	del:     `DELETE FROM classification_cache WHERE cache_key = ?`,
	cleanup: `DELETE FROM classification_cache WHERE expires_at <= ?`,
}

// SQLiteCache is a SQLite implementation of the CacheRepository interface
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	c, err := newSQLCache(db, sqliteDialect, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteCache{sqlCache: c}, nil
}
