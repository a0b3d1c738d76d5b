// internal/history/store.go
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adrg/xdg"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultLimit is the number of entries kept per profile
const DefaultLimit = 500

// Store persists executed searches
type Store struct {
	db    *sql.DB
	limit int
}

// NewStore opens the history database in the XDG data directory
func NewStore(limit int) (*Store, error) {
	dbPath, err := xdg.DataFile("gamedash/history.db")
	if err != nil {
		return nil, err
	}
	return Open(dbPath, limit)
}

// Open opens (and migrates) the history database at path
func Open(path string, limit int) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			profile_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			entity_key TEXT NOT NULL,
			entity_label TEXT NOT NULL DEFAULT '',
			column_name TEXT NOT NULL DEFAULT '',
			term TEXT NOT NULL DEFAULT '',
			page INTEGER NOT NULL DEFAULT 1,
			total_pages INTEGER NOT NULL DEFAULT 0,
			row_count INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_search_history_profile ON search_history(profile_name);
		CREATE INDEX IF NOT EXISTS idx_search_history_executed_at ON search_history(executed_at);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{db: db, limit: limit}
	// a failed cleanup leaves old rows behind, nothing worse
	_ = store.cleanup(context.Background())
	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `id, profile_name, kind, entity_key, entity_label, column_name, term,
	page, total_pages, row_count, duration_ms, status, error_message, executed_at`

// Add inserts a new execution into history and prunes the profile down to
// the store's limit
func (s *Store) Add(ctx context.Context, e *Entry) error {
	if e.ProfileName == "" || e.Kind == "" || e.EntityKey == "" {
		return errors.New("history: profile, kind and entity are required")
	}
	if e.Status == "" {
		e.Status = StatusSuccess
	}
	if e.ExecutedAt.IsZero() {
		e.ExecutedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (profile_name, kind, entity_key, entity_label, column_name, term,
			page, total_pages, row_count, duration_ms, status, error_message, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ProfileName, e.Kind, e.EntityKey, e.EntityLabel, e.Column, e.Term,
		e.Page, e.TotalPages, e.RowCount, e.DurationMs, e.Status, e.ErrorMessage, e.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("history: insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id

	return s.enforceLimit(ctx, e.ProfileName, s.limit)
}

// enforceLimit keeps only the most recent N entries per profile
func (s *Store) enforceLimit(ctx context.Context, profileName string, limit int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE profile_name = ?
		AND id NOT IN (
			SELECT id FROM search_history
			WHERE profile_name = ?
			ORDER BY executed_at DESC, id DESC
			LIMIT ?
		)
	`, profileName, profileName, limit)
	return err
}

// List returns paginated history entries for a profile, newest first
func (s *Store) List(ctx context.Context, profileName string, limit, offset int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM search_history
		WHERE profile_name = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, profileName, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Search finds entries whose entity, column or term contains substr
func (s *Store) Search(ctx context.Context, profileName, substr string, limit int) ([]Entry, error) {
	pattern := "%" + substr + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM search_history
		WHERE profile_name = ?
		AND (entity_key LIKE ? OR entity_label LIKE ? OR column_name LIKE ? OR term LIKE ?)
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`, profileName, pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Delete removes a history entry by ID
func (s *Store) Delete(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM search_history WHERE id = ?", id)
	return err
}

// Count returns the total number of history entries for a profile
func (s *Store) Count(ctx context.Context, profileName string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM search_history WHERE profile_name = ?
	`, profileName).Scan(&count)
	return count, err
}

// cleanup removes history entries older than 90 days
func (s *Store) cleanup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM search_history
		WHERE executed_at < datetime('now', '-90 days')
	`)
	return err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProfileName, &e.Kind, &e.EntityKey, &e.EntityLabel,
			&e.Column, &e.Term, &e.Page, &e.TotalPages, &e.RowCount, &e.DurationMs,
			&e.Status, &e.ErrorMessage, &e.ExecutedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
