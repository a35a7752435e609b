// Package index ties the store, the crawl, and the tag builder into the
// indexing façade that front-ends consume.
package index

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kpetrov/mediadex/internal/db"
	"github.com/kpetrov/mediadex/internal/entry"
	"github.com/kpetrov/mediadex/internal/pathutil"
	"github.com/kpetrov/mediadex/internal/scan"
	"github.com/kpetrov/mediadex/internal/tags"
)

// Indexer maintains the persistent index of one directory tree.
//
// BuildIndex may be called repeatedly: it is idempotent against an
// unchanged filesystem and convergent against a changed one. The symlink
// policy is fixed at construction.
type Indexer struct {
	root           string
	dbPath         string
	followSymlinks bool
	ignore         map[string]struct{}
	store          *db.Store
	log            zerolog.Logger
}

// New opens (creating if necessary) the index database and prepares an
// indexer for root, which must be an existing directory. The database file
// and its WAL side files are excluded from indexing automatically.
func New(root, dbPath string, followSymlinks bool) (*Indexer, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}
	absRoot = pathutil.Normalize(absRoot)

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", absRoot)
	}
	// Canonicalize so followed symlink targets inside the root
	// relativize correctly.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	absDB, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	absDB = pathutil.Normalize(absDB)
	if dbDir, err := filepath.EvalSymlinks(filepath.Dir(absDB)); err == nil {
		absDB = filepath.Join(dbDir, filepath.Base(absDB))
	}

	store, err := db.Open(absDB)
	if err != nil {
		return nil, err
	}

	return &Indexer{
		root:           absRoot,
		dbPath:         absDB,
		followSymlinks: followSymlinks,
		ignore: map[string]struct{}{
			absDB:          {},
			absDB + "-wal": {},
			absDB + "-shm": {},
		},
		store: store,
		log:   zerolog.Nop(),
	}, nil
}

// SetLogger installs the logger used for crawl lifecycle and scan warnings.
func (ix *Indexer) SetLogger(log zerolog.Logger) {
	ix.log = log
}

// Root returns the canonical root directory being indexed.
func (ix *Indexer) Root() string { return ix.root }

// Close releases the database handle.
func (ix *Indexer) Close() error {
	return ix.store.Close()
}

// BuildIndex crawls the filesystem and reconciles the on-disk index:
// seen flags reset, tree traversed and upserted in batches, vanished
// entries swept, tag index rebuilt. A nil opts uses defaults.
//
// A failed traversal aborts before the sweep, so a crash or store error
// can never delete entries the pass did not get to reconcile.
func (ix *Indexer) BuildIndex(opts *scan.Options) error {
	if opts == nil {
		opts = scan.DefaultOptions()
	}
	crawlOpts := opts.Normalized()
	crawlOpts.FollowSymlinks = ix.followSymlinks

	crawlID := uuid.NewString()
	log := ix.log.With().Str("crawl_id", crawlID).Logger()
	log.Info().
		Str("root", ix.root).
		Int("workers", crawlOpts.Workers).
		Int("batch_size", crawlOpts.BatchSize).
		Msg("crawl started")

	sc := scan.NewScanner(ix.root, ix.store, ix.ignore, log, &crawlOpts)
	if err := sc.Run(); err != nil {
		return fmt.Errorf("traverse %s: %w", ix.root, err)
	}

	if err := ix.store.DeleteUnseen(); err != nil {
		return err
	}

	builder := tags.NewBuilder(ix.store, log)
	if err := builder.Rebuild(crawlOpts.MinTagFrequency); err != nil {
		return fmt.Errorf("rebuild tags: %w", err)
	}

	log.Info().Str("root", ix.root).Msg("crawl complete")
	return nil
}

// ListChildren returns the indexed children of a directory, directories
// first. Pass "." for the root.
func (ix *Indexer) ListChildren(relativePath string) ([]entry.Entry, error) {
	return ix.store.ListChildren(relativePath)
}

// ListAll streams every indexed entry ordered by path.
func (ix *Indexer) ListAll() (*db.EntryRows, error) {
	return ix.store.ListAll()
}

// ListTags returns all tags with their directory counts.
func (ix *Indexer) ListTags() ([]entry.TagCount, error) {
	return ix.store.ListTags()
}

// ListDirectoriesByTag returns the directories carrying a tag.
func (ix *Indexer) ListDirectoriesByTag(tagName string) ([]string, error) {
	return ix.store.ListDirectoriesByTag(tagName)
}

// Stats summarizes the indexed tree.
func (ix *Indexer) Stats() (db.Stats, error) {
	return ix.store.Stats()
}
