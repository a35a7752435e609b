package db

import (
	"github.com/kpetrov/mediadex/internal/entry"
)

// Ingester is the crawl's single writer. It drains scanned entries from a
// channel, buffers them, and flushes a batch to the store whenever the
// buffer reaches batchSize, plus one final partial flush when the channel
// closes.
type Ingester struct {
	store     *Store
	entryCh   <-chan entry.Entry
	batchSize int
	batch     []entry.Entry
}

// NewIngester creates an ingester reading from entryCh.
func NewIngester(store *Store, entryCh <-chan entry.Entry, batchSize int) *Ingester {
	return &Ingester{
		store:     store,
		entryCh:   entryCh,
		batchSize: batchSize,
		batch:     make([]entry.Entry, 0, batchSize),
	}
}

// Run consumes entries until the channel is closed and returns the first
// store error, if any. After a failure it keeps draining the channel
// without writing so that scanners never block on a dead writer.
func (ing *Ingester) Run() error {
	var firstErr error
	for e := range ing.entryCh {
		if firstErr != nil {
			continue
		}
		ing.batch = append(ing.batch, e)
		if len(ing.batch) >= ing.batchSize {
			firstErr = ing.flush()
		}
	}
	if firstErr != nil {
		return firstErr
	}
	return ing.flush()
}

func (ing *Ingester) flush() error {
	if len(ing.batch) == 0 {
		return nil
	}
	if err := ing.store.UpsertEntries(ing.batch); err != nil {
		return err
	}
	ing.batch = ing.batch[:0]
	return nil
}
