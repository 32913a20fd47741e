package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	logger "github.com/sirupsen/logrus"

	"github.com/kurihiro0119/repo-concierge/internal/cache"
)

// postgresCache implements cache.Cache on PostgreSQL so several API
// replicas share one cache window
type postgresCache struct {
	db         *sql.DB
	defaultTTL time.Duration
	now        func() time.Time
}

// NewCache connects to PostgreSQL and ensures the cache table exists
func NewCache(connStr string, defaultTTL time.Duration) (cache.Cache, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if defaultTTL <= 0 {
		defaultTTL = cache.DefaultTTL
	}
	c := &postgresCache{db: db, defaultTTL: defaultTTL, now: time.Now}
	if err := c.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Migrate creates the cache table
func (c *postgresCache) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
	`

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

func (c *postgresCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	var expiresAt time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = $1`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warnf("[cache] postgres read of %q failed: %v", key, err)
		}
		return nil, false
	}

	if !c.now().Before(expiresAt) {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key); err != nil {
			logger.Warnf("[cache] postgres delete of expired %q failed: %v", key, err)
		}
		return nil, false
	}
	return value, true
}

func (c *postgresCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if value == nil {
		value = []byte{}
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`, key, value, c.now().Add(ttl))
	return err
}

func (c *postgresCache) Del(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
	return err
}

func (c *postgresCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `TRUNCATE cache_entries`)
	return err
}

func (c *postgresCache) Close() error {
	return c.db.Close()
}
