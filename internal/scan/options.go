package scan

import "runtime"

const (
	// DefaultBatchSize is the number of entries buffered before a flush.
	DefaultBatchSize = 512
	// MinBatchSize is the smallest batch the writer will accept.
	MinBatchSize = 32
	// DefaultMinTagFrequency is the directory count a token must reach
	// to become a tag.
	DefaultMinTagFrequency = 2
	// MinWorkers is the smallest worker pool used when deriving the
	// count from available parallelism.
	MinWorkers = 4
)

// Options configures one crawl.
type Options struct {
	// Workers is the number of concurrent directory scanners.
	// Zero derives the count from the CPU count.
	Workers int

	// BatchSize is the number of entries buffered before flushing to
	// the store.
	BatchSize int

	// MinTagFrequency is the minimum number of distinct directories a
	// token must match to be retained as a tag.
	MinTagFrequency int

	// FollowSymlinks enables traversal through symbolic links. Off by
	// default to avoid cycles from self-referential links.
	FollowSymlinks bool
}

// DefaultOptions returns sensible defaults for indexing.
func DefaultOptions() *Options {
	return &Options{
		Workers:         defaultWorkers(),
		BatchSize:       DefaultBatchSize,
		MinTagFrequency: DefaultMinTagFrequency,
	}
}

// WithWorkers sets the number of workers.
func (o *Options) WithWorkers(n int) *Options {
	o.Workers = n
	return o
}

// WithBatchSize sets the write batch size.
func (o *Options) WithBatchSize(n int) *Options {
	o.BatchSize = n
	return o
}

// WithMinTagFrequency sets the tag retention threshold.
func (o *Options) WithMinTagFrequency(n int) *Options {
	o.MinTagFrequency = n
	return o
}

// WithFollowSymlinks sets the symlink policy.
func (o *Options) WithFollowSymlinks(follow bool) *Options {
	o.FollowSymlinks = follow
	return o
}

// Normalized returns a copy with defaults applied and floors enforced:
// unset workers derive from the CPU count, batch size never drops below
// MinBatchSize, and the tag threshold never drops below one.
func (o *Options) Normalized() Options {
	n := *o
	if n.Workers <= 0 {
		n.Workers = defaultWorkers()
	}
	if n.BatchSize <= 0 {
		n.BatchSize = DefaultBatchSize
	}
	if n.BatchSize < MinBatchSize {
		n.BatchSize = MinBatchSize
	}
	if n.MinTagFrequency <= 0 {
		n.MinTagFrequency = DefaultMinTagFrequency
	}
	return n
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < MinWorkers {
		n = MinWorkers
	}
	return n
}
