// Package db persists the filesystem index in SQLite: the entries table
// with its transient seen flag, and the derived tags / entry_tags tables.
package db

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/kpetrov/mediadex/internal/entry"
)

const upsertEntrySQL = `
INSERT INTO entries (path, parent, is_dir, size, mtime, seen)
VALUES (?, ?, ?, ?, ?, 1)
ON CONFLICT(path) DO UPDATE SET
    parent = excluded.parent,
    is_dir = excluded.is_dir,
    size = excluded.size,
    mtime = excluded.mtime,
    seen = 1
`

const insertTagSQL = `INSERT INTO tags (name, display_name) VALUES (?, ?)`
const insertAssocSQL = `INSERT INTO entry_tags (entry_path, tag_name) VALUES (?, ?)`

// Store owns the database handle. Mutations are serialized through mu;
// reads run directly against the handle and may overlap with writes
// thanks to WAL mode.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if necessary) the index database at path.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite", "file:"+path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := initSchema(database); err != nil {
		database.Close()
		return nil, err
	}

	return &Store{db: database}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ResetSeen clears the seen flag on every row. Called once at the start of
// a crawl so that rows not re-visited during the pass read as stale.
func (s *Store) ResetSeen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`UPDATE entries SET seen = 0`); err != nil {
		return fmt.Errorf("reset seen flags: %w", err)
	}
	return nil
}

// UpsertEntries inserts or updates a batch of entries in one transaction,
// marking each row seen. The batch applies all-or-nothing.
func (s *Store) UpsertEntries(entries []entry.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin entry transaction: %w", err)
	}

	stmt, err := tx.Prepare(upsertEntrySQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare entry statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		var size any
		if !e.IsDir {
			size = e.Size
		}
		if _, err := stmt.Exec(e.Path, e.Parent, boolToInt(e.IsDir), size, e.Mtime); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert entry %q: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit entry transaction: %w", err)
	}
	return nil
}

// DeleteUnseen removes every row still unseen after a crawl. These are the
// filesystem objects that disappeared since the previous run.
func (s *Store) DeleteUnseen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM entries WHERE seen = 0`); err != nil {
		return fmt.Errorf("delete unseen entries: %w", err)
	}
	return nil
}

// ReplaceTags swaps the tag tables wholesale: delete-all then bulk-insert,
// in one transaction. Callers pass tags and associations pre-sorted for
// deterministic row order.
func (s *Store) ReplaceTags(tags []entry.Tag, assocs []entry.TagAssoc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tag transaction: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM entry_tags`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear entry_tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tags`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear tags: %w", err)
	}

	tagStmt, err := tx.Prepare(insertTagSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare tag statement: %w", err)
	}
	defer tagStmt.Close()

	for _, t := range tags {
		if _, err := tagStmt.Exec(t.Name, t.DisplayName); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert tag %q: %w", t.Name, err)
		}
	}

	assocStmt, err := tx.Prepare(insertAssocSQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare association statement: %w", err)
	}
	defer assocStmt.Close()

	for _, a := range assocs {
		if _, err := assocStmt.Exec(a.DirPath, a.TagName); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert association %s -> %s: %w", a.TagName, a.DirPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tag transaction: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
