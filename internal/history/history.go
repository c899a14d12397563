// Package history records completed downloads in a sqlite database so they
// can be listed and fetched again later.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	_ "modernc.org/sqlite"

	"lulu/internal/media"
)

const schema = `
CREATE TABLE IF NOT EXISTS downloads (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	url           TEXT    NOT NULL,
	title         TEXT    NOT NULL,
	ext           TEXT    NOT NULL DEFAULT '',
	size          INTEGER NOT NULL DEFAULT 0,
	path          TEXT    NOT NULL DEFAULT '',
	downloaded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS downloads_downloaded_at ON downloads (downloaded_at);
`

// Entry is one recorded download.
type Entry struct {
	ID    int64
	URL   string
	Title string
	Ext   string
	Size  int64
	Path  string
	Time  time.Time
}

// Store is the download history database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	// sqlite allows one writer; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a completed download.
func (s *Store) Record(d media.Download) error {
	_, err := s.db.Exec(
		`INSERT INTO downloads (url, title, ext, size, path, downloaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		d.URL, d.Title, d.Ext, d.Size, d.Path, s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("recording download: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := s.db.Query(
		`SELECT id, url, title, ext, size, path, downloaded_at FROM downloads ORDER BY downloaded_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &e.Ext, &e.Size, &e.Path, &ts); err != nil {
			return nil, fmt.Errorf("reading history: %w", err)
		}
		e.Time = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return entries, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM downloads`); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	return nil
}

// FormatForDisplay creates display strings for fzf selection from history entries.
func FormatForDisplay(entries []Entry) []string {
	var items []string
	for _, e := range entries {
		name := e.Title
		if e.Ext != "" {
			name += "." + e.Ext
		}
		display := fmt.Sprintf("%s  %s", e.Time.Format("2006-01-02 15:04"), name)
		if e.Size > 0 && e.Size != media.InfiniteSize {
			display += fmt.Sprintf(" [%s]", humanize.IBytes(uint64(e.Size)))
		}
		items = append(items, display+"  "+e.URL)
	}
	return items
}
