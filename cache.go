package inkpress

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// RenderCache is a SQLite-backed cache of rendered Markdown fragments keyed
// by content hash. It only speeds up rebuilds: a cold cache and a warm cache
// must produce byte-identical output.
type RenderCache struct {
	db *sql.DB
}

// OpenRenderCache opens (or creates) the cache database at path, ensures the
// cache directory exists, and runs schema setup.
func OpenRenderCache(path string) (*RenderCache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL plus a busy timeout so a concurrent serve rebuild waits instead of
	// failing with SQLITE_BUSY. synchronous=NORMAL is safe with WAL and this
	// is a throwaway cache anyway.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	c := &RenderCache{db: db}
	if err := c.ensureSchema(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *RenderCache) Close() error {
	return c.db.Close()
}

func (c *RenderCache) ensureSchema() error {
	_, err := c.db.Exec(`
CREATE TABLE IF NOT EXISTS fragments (
    hash TEXT PRIMARY KEY,
    html TEXT NOT NULL,
    rendered_at TEXT NOT NULL
);
`)
	return err
}

// Get returns the cached HTML fragment for hash, if present.
func (c *RenderCache) Get(hash string) (string, bool, error) {
	var html string
	err := c.db.QueryRow(`SELECT html FROM fragments WHERE hash = ?`, hash).Scan(&html)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return html, true, nil
}

// Put stores a rendered fragment under hash.
func (c *RenderCache) Put(hash, html string) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO fragments (hash, html, rendered_at) VALUES (?, ?, ?)`,
		hash, html, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Prune deletes every fragment whose hash is not in keep, so the cache does
// not grow without bound as posts are edited.
func (c *RenderCache) Prune(keep map[string]bool) error {
	rows, err := c.db.Query(`SELECT hash FROM fragments`)
	if err != nil {
		return err
	}
	var stale []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			rows.Close()
			return err
		}
		if !keep[h] {
			stale = append(stale, h)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, h := range stale {
		if _, err := c.db.Exec(`DELETE FROM fragments WHERE hash = ?`, h); err != nil {
			return err
		}
	}
	return nil
}

// ContentHash returns the cache key for a post body.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}
