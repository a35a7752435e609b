package db

import (
	"database/sql"
	"fmt"

	"github.com/kpetrov/mediadex/internal/entry"
)

const selectEntryColumns = `SELECT path, parent, is_dir, size, mtime FROM entries`

// ListChildren returns the direct children of a directory, directories
// first, then lexicographically by path.
func (s *Store) ListChildren(parent string) ([]entry.Entry, error) {
	rows, err := s.db.Query(selectEntryColumns+` WHERE parent = ? ORDER BY is_dir DESC, path`, parent)
	if err != nil {
		return nil, fmt.Errorf("list children of %q: %w", parent, err)
	}
	defer rows.Close()

	var entries []entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// EntryRows streams entries from the index one row at a time so very large
// trees never need to be materialized in memory. Callers must Close it.
type EntryRows struct {
	rows *sql.Rows
	cur  entry.Entry
	err  error
}

// Next advances to the next entry; it returns false at the end of the set
// or on error (check Err afterwards).
func (r *EntryRows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		return false
	}
	r.cur, r.err = scanEntry(r.rows)
	return r.err == nil
}

// Entry returns the row the last successful Next positioned on.
func (r *EntryRows) Entry() entry.Entry { return r.cur }

func (r *EntryRows) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *EntryRows) Close() error { return r.rows.Close() }

// ListAll returns a streaming view over every entry, ordered by path.
func (s *Store) ListAll() (*EntryRows, error) {
	rows, err := s.db.Query(selectEntryColumns + ` ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	return &EntryRows{rows: rows}, nil
}

// ListDirectories returns the paths of all indexed directories, ordered.
func (s *Store) ListDirectories() ([]string, error) {
	rows, err := s.db.Query(`SELECT path FROM entries WHERE is_dir = 1 ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list directories: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan directory row: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ListTags returns every tag with its directory count, busiest tags first.
func (s *Store) ListTags() ([]entry.TagCount, error) {
	rows, err := s.db.Query(`
		SELECT t.name, t.display_name, COUNT(et.entry_path) AS dirs
		FROM tags t
		LEFT JOIN entry_tags et ON et.tag_name = t.name
		GROUP BY t.name, t.display_name
		ORDER BY dirs DESC, t.display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []entry.TagCount
	for rows.Next() {
		var tc entry.TagCount
		if err := rows.Scan(&tc.Name, &tc.DisplayName, &tc.DirCount); err != nil {
			return nil, fmt.Errorf("scan tag row: %w", err)
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

// ListDirectoriesByTag returns the directories associated with a tag,
// ordered lexicographically.
func (s *Store) ListDirectoriesByTag(tagName string) ([]string, error) {
	rows, err := s.db.Query(`SELECT entry_path FROM entry_tags WHERE tag_name = ? ORDER BY entry_path`, tagName)
	if err != nil {
		return nil, fmt.Errorf("list directories for tag %q: %w", tagName, err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan association row: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Stats summarizes the indexed tree.
type Stats struct {
	Entries    int64
	Dirs       int64
	Files      int64
	TotalBytes int64
}

// Stats aggregates entry counts and total file bytes.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(is_dir), 0),
		       COALESCE(SUM(CASE WHEN is_dir = 0 THEN size END), 0)
		FROM entries
	`).Scan(&st.Entries, &st.Dirs, &st.TotalBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	st.Files = st.Entries - st.Dirs
	return st, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (entry.Entry, error) {
	var e entry.Entry
	var isDir int
	var size sql.NullInt64
	if err := row.Scan(&e.Path, &e.Parent, &isDir, &size, &e.Mtime); err != nil {
		return entry.Entry{}, fmt.Errorf("scan entry row: %w", err)
	}
	e.IsDir = isDir != 0
	if size.Valid {
		e.Size = size.Int64
	}
	return e, nil
}
