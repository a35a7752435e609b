package db

import (
	"database/sql"
	"fmt"
)

const entriesTableDDL = `
CREATE TABLE IF NOT EXISTS entries (
    path TEXT PRIMARY KEY,
    parent TEXT NOT NULL,
    is_dir INTEGER NOT NULL,
    size INTEGER,
    mtime REAL NOT NULL,
    seen INTEGER NOT NULL DEFAULT 0
);
`

const tagsTableDDL = `
CREATE TABLE IF NOT EXISTS tags (
    name TEXT PRIMARY KEY,
    display_name TEXT NOT NULL
);
`

const entryTagsTableDDL = `
CREATE TABLE IF NOT EXISTS entry_tags (
    entry_path TEXT NOT NULL REFERENCES entries(path) ON DELETE CASCADE,
    tag_name TEXT NOT NULL REFERENCES tags(name) ON DELETE CASCADE,
    PRIMARY KEY (entry_path, tag_name)
);
`

const entriesParentIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entries_parent ON entries(parent);`
const entryTagsTagIndexDDL = `CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag_name);`

func initSchema(db *sql.DB) error {
	ddls := []string{
		entriesTableDDL,
		tagsTableDDL,
		entryTagsTableDDL,
		entriesParentIndexDDL,
		entryTagsTagIndexDDL,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// dsnPragmas configures SQLite so a single writer can stream batches while
// readers observe a consistent recent snapshot. Riding the DSN applies them
// to every pooled connection, which Exec-ing a PRAGMA would not.
const dsnPragmas = "?_pragma=journal_mode(WAL)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=temp_store(MEMORY)" +
	"&_pragma=locking_mode(NORMAL)" +
	"&_pragma=foreign_keys(ON)" +
	"&_pragma=busy_timeout(5000)"
