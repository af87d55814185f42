package crawl

import (
	"database/sql"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// PageCache stores fetched page bodies in SQLite so an interrupted scrape
// resumes without refetching thousands of species pages.
type PageCache struct {
	db *sql.DB
}

// OpenPageCache opens (or creates) the cache database at path.
func OpenPageCache(path string) (*PageCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "pagecache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "pagecache: exec %s", pragma)
		}
	}
	const migration = `
CREATE TABLE IF NOT EXISTS pages (
	url        TEXT PRIMARY KEY,
	body       BLOB NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);`
	if _, err := db.Exec(migration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "pagecache: migrate")
	}
	return &PageCache{db: db}, nil
}

// Get returns the cached body for url, if any.
func (c *PageCache) Get(url string) ([]byte, bool, error) {
	var body []byte
	err := c.db.QueryRow("SELECT body FROM pages WHERE url = ?", url).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "pagecache: get %s", url)
	}
	return body, true, nil
}

// Put stores the body for url, replacing any previous entry.
func (c *PageCache) Put(url string, body []byte) error {
	_, err := c.db.Exec(
		"INSERT INTO pages (url, body) VALUES (?, ?) ON CONFLICT(url) DO UPDATE SET body = excluded.body, fetched_at = datetime('now')",
		url, body,
	)
	return eris.Wrapf(err, "pagecache: put %s", url)
}

// Close closes the underlying database.
func (c *PageCache) Close() error {
	return c.db.Close()
}
