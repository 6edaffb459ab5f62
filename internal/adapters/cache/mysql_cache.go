package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = sqlDialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS classification_cache (
			cache_key CHAR(64) PRIMARY KEY,
			category VARCHAR(32) NOT NULL,
			confidence DOUBLE NOT NULL,
			reason TEXT NOT NULL,
			model_used VARCHAR(255) NOT NULL,
			created_at BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_classification_expires_at (expires_at)
		)`,
	},
	upsert: `INSERT INTO classification_cache
		(cache_key, category, confidence, reason, model_used, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			category = VALUES(category),
			confidence = VALUES(confidence),
			reason = VALUES(reason),
			model_used = VALUES(model_used),
			created_at = VALUES(created_at),
			expires_at = VALUES(expires_at)`,
	sel: `SELECT category, confidence, reason, model_used, created_at, expires_at
		FROM classification_cache
		WHERE cache_key = ? AND expires_at > ?`,
	del:     `DELETE FROM classification_cache WHERE cache_key = ?`,
	cleanup: `DELETE FROM classification_cache WHERE expires_at <= ?`,
}

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	c, err := newSQLCache(db, mysqlDialect, logger, cleanupFreq)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &MySQLCache{sqlCache: c}, nil
}
