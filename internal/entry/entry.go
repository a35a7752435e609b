package entry

import "time"

// Entry represents one indexed filesystem object. Paths are POSIX-style and
// relative to the indexed root; "." denotes the root itself. Entries whose
// resolved location escapes the root keep an absolute slash path instead.
type Entry struct {
	Path   string
	Parent string
	IsDir  bool
	Size   int64   // byte count; stored as NULL for directories
	Mtime  float64 // seconds since epoch
}

// Tag is a token derived from directory base names.
type Tag struct {
	Name        string
	DisplayName string
}

// TagAssoc links a tag to one directory that matched it.
type TagAssoc struct {
	TagName string
	DirPath string
}

// TagCount pairs a tag with the number of directories it matched.
type TagCount struct {
	Name        string
	DisplayName string
	DirCount    int
}

// EpochSeconds converts a timestamp to the REAL representation stored
// in the index.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
