package blog

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested comment does not exist.
var ErrNotFound = sql.ErrNoRows

// Store wraps a SQLite database holding reader comments and newsletter
// subscribers. Articles themselves live in the CMS.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets page renders read comments while a submission is written;
	// busy_timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    message TEXT NOT NULL,
    created_at TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS comments_slug ON comments (slug, approved, created_at);
CREATE TABLE IF NOT EXISTS subscribers (
    email TEXT PRIMARY KEY,
    created_at TEXT NOT NULL
);
`)
	return err
}

// SaveComment inserts c as a new, unapproved comment and returns it with its
// ID and timestamp set.
func (s *Store) SaveComment(c Comment) (Comment, error) {
	c.ID = uuid.NewString()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.Approved = false
	_, err := s.db.Exec(`INSERT INTO comments (id, slug, name, email, message, created_at, approved) VALUES (?, ?, ?, ?, ?, ?, 0)`,
		c.ID, c.Slug, c.Name, c.Email, c.Message, c.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

// ListApprovedComments returns the approved comments on slug, oldest first.
func (s *Store) ListApprovedComments(slug string) ([]Comment, error) {
	return s.queryComments(`SELECT id, slug, name, email, message, created_at, approved FROM comments WHERE slug = ? AND approved = 1 ORDER BY created_at ASC`, slug)
}

// ListPendingComments returns every comment awaiting moderation, newest first.
func (s *Store) ListPendingComments() ([]Comment, error) {
	return s.queryComments(`SELECT id, slug, name, email, message, created_at, approved FROM comments WHERE approved = 0 ORDER BY created_at DESC`)
}

func (s *Store) queryComments(query string, args ...any) ([]Comment, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		var created string
		var approved int
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Email, &c.Message, &created, &approved); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		c.Approved = approved == 1
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ApproveComment publishes a pending comment.
func (s *Store) ApproveComment(id string) error {
	res, err := s.db.Exec(`UPDATE comments SET approved = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeleteComment removes a comment by ID.
func (s *Store) DeleteComment(id string) error {
	res, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Subscribe records a newsletter sign-up. Subscribing twice is not an error;
// created reports whether the address was new.
func (s *Store) Subscribe(email string) (created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.db.Exec(`INSERT OR IGNORE INTO subscribers (email, created_at) VALUES (?, ?)`,
		email, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountSubscribers returns the number of newsletter sign-ups.
func (s *Store) CountSubscribers() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&n)
	return n, err
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
