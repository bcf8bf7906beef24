package analytics

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps read counts in their own SQLite database.
type Store struct {
	db   *sql.DB
	salt string
}

// NewStore opens the analytics database at path and loads (or creates) the
// installation's hash salt.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.loadSalt(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS article_reads (
			slug TEXT NOT NULL,
			day TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			PRIMARY KEY (slug, day, visitor_id)
		);
		CREATE INDEX IF NOT EXISTS idx_article_reads_day ON article_reads(day);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

func (s *Store) loadSalt() error {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'hash_salt'`).Scan(&v)
	if err == nil {
		s.salt = v
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("read hash salt: %w", err)
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	v = hex.EncodeToString(b)
	if _, err := s.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES ('hash_salt', ?)`, v); err != nil {
		return fmt.Errorf("store hash salt: %w", err)
	}
	// another process may have won the insert
	return s.db.QueryRow(`SELECT value FROM settings WHERE key = 'hash_salt'`).Scan(&s.salt)
}

// RecordRead counts one read of slug. Bots and repeat reads by the same
// visitor on the same day are ignored; counted reports whether it was new.
func (s *Store) RecordRead(slug, ip, userAgent string, at time.Time) (counted bool, err error) {
	if slug == "" || IsBot(userAgent) {
		return false, nil
	}
	at = at.UTC()
	res, err := s.db.Exec(`INSERT OR IGNORE INTO article_reads (slug, day, visitor_id) VALUES (?, ?, ?)`,
		slug, at.Format(dayLayout), VisitorID(s.salt, ip, userAgent, at))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// TopArticles returns the most read articles since the given time.
func (s *Store) TopArticles(since time.Time, limit int) ([]ArticleReads, error) {
	rows, err := s.db.Query(`
		SELECT slug, COUNT(*) AS reads FROM article_reads
		WHERE day >= ?
		GROUP BY slug ORDER BY reads DESC, slug ASC LIMIT ?`,
		since.UTC().Format(dayLayout), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ArticleReads{}
	for rows.Next() {
		var r ArticleReads
		if err := rows.Scan(&r.Slug, &r.Reads); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CleanupOldReads removes reads older than the retention period.
func (s *Store) CleanupOldReads(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Format(dayLayout)
	if _, err := s.db.Exec(`DELETE FROM article_reads WHERE day < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup article_reads: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration, logf func(format string, args ...interface{})) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldReads(retentionDays); err != nil {
					logf("analytics cleanup: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
