package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	logger "github.com/sirupsen/logrus"

	"github.com/kurihiro0119/repo-concierge/internal/cache"
)

// sqliteCache implements cache.Cache on top of a SQLite table
type sqliteCache struct {
	db         *sql.DB
	defaultTTL time.Duration
	now        func() time.Time
	closed     chan struct{}
	closeOnce  sync.Once
}

// NewCache opens (or creates) the cache table at dsn. The default DSN is a
// shared in-memory database, so nothing outlives the process.
func NewCache(dsn string, defaultTTL time.Duration) (cache.Cache, error) {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite3", dsn+sep+"_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// a single connection keeps in-memory databases alive and serializes writers
	db.SetMaxOpenConns(1)

	if defaultTTL <= 0 {
		defaultTTL = cache.DefaultTTL
	}
	c := &sqliteCache{db: db, defaultTTL: defaultTTL, now: time.Now, closed: make(chan struct{})}
	if err := c.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Migrate creates the cache table
func (c *sqliteCache) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
	`

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

func (c *sqliteCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Warnf("[cache] sqlite read of %q failed: %v", key, err)
		}
		return nil, false
	}

	if c.now().UnixMilli() >= expiresAt {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
			logger.Warnf("[cache] sqlite delete of expired %q failed: %v", key, err)
		}
		return nil, false
	}
	return value, true
}

func (c *sqliteCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if value == nil {
		value = []byte{}
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, c.now().Add(ttl).UnixMilli())
	return err
}

func (c *sqliteCache) Del(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

func (c *sqliteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}

// Sweep deletes every expired row
func (c *sqliteCache) Sweep(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, c.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartJanitor sweeps expired rows every interval until ctx is done or the
// cache is closed
func (c *sqliteCache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-c.closed:
				return
			case <-ticker.C:
				removed, err := c.Sweep(ctx)
				if err != nil {
					logger.Warnf("[cache] sqlite sweep failed: %v", err)
					continue
				}
				if removed > 0 {
					logger.Debugf("[cache] swept %d expired rows", removed)
				}
			}
		}
	}()
}

func (c *sqliteCache) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.db.Close()
}
