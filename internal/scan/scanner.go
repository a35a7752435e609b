// Package scan implements the concurrent crawl: a pool of directory
// scanner workers feeding a single database writer.
package scan

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/kpetrov/mediadex/internal/db"
	"github.com/kpetrov/mediadex/internal/entry"
)

// Scanner coordinates one traversal pass over the tree rooted at root.
//
// Termination is a queue-depletion barrier: inFlight counts directories
// that are queued or being scanned, and the worker that drops it to zero
// closes the queue. Workers then drain out, the entry channel closes, and
// the writer performs its final flush. Nothing is cancelled mid-flight.
type Scanner struct {
	opts   Options
	root   string
	store  *db.Store
	ignore map[string]struct{}
	log    zerolog.Logger

	dirQueue chan dirWork
	entryCh  chan entry.Entry

	inFlight  int64
	closeOnce sync.Once
}

// NewScanner creates a scanner for root. The ignore set holds absolute
// paths that must never be indexed (the database and its side files).
func NewScanner(root string, store *db.Store, ignore map[string]struct{}, log zerolog.Logger, opts *Options) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	n := opts.Normalized()

	queueSize := n.Workers * 256
	if queueSize < 1024 {
		queueSize = 1024
	}
	entryChSize := n.BatchSize * 4
	if entryChSize < 4096 {
		entryChSize = 4096
	}

	return &Scanner{
		opts:     n,
		root:     root,
		store:    store,
		ignore:   ignore,
		log:      log,
		dirQueue: make(chan dirWork, queueSize),
		entryCh:  make(chan entry.Entry, entryChSize),
	}
}

// Run executes the traversal: reset seen flags, upsert the synthetic root
// entry, crawl with the worker pool, and wait for the writer to flush
// everything. The sweep is the caller's next step; it must not run unless
// Run returns nil.
func (s *Scanner) Run() error {
	rootInfo, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("stat root: %w", err)
	}

	if err := s.store.ResetSeen(); err != nil {
		return err
	}

	rootEntry := entry.Entry{
		Path:   ".",
		Parent: "",
		IsDir:  true,
		Mtime:  entry.EpochSeconds(rootInfo.ModTime()),
	}
	if err := s.store.UpsertEntries([]entry.Entry{rootEntry}); err != nil {
		return fmt.Errorf("upsert root entry: %w", err)
	}

	ing := db.NewIngester(s.store, s.entryCh, s.opts.BatchSize)
	ingDone := make(chan error, 1)
	go func() {
		ingDone <- ing.Run()
	}()

	p := pool.New().WithMaxGoroutines(s.opts.Workers)
	for i := 0; i < s.opts.Workers; i++ {
		w := &worker{scanner: s}
		p.Go(w.run)
	}

	// Seed the queue with the root.
	s.startOne()
	s.dirQueue <- dirWork{abs: s.root, rel: "."}

	p.Wait()
	close(s.entryCh)

	if err := <-ingDone; err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	return nil
}

func (s *Scanner) startOne() {
	atomic.AddInt64(&s.inFlight, 1)
}

func (s *Scanner) finishOne() {
	if atomic.AddInt64(&s.inFlight, -1) == 0 {
		// Queue empty with no scans in progress: traversal is complete.
		s.closeOnce.Do(func() { close(s.dirQueue) })
	}
}

func (s *Scanner) isIgnored(abs string) bool {
	_, ok := s.ignore[abs]
	return ok
}
