package scan

import (
	"os"
	"path/filepath"

	"github.com/kpetrov/mediadex/internal/entry"
	"github.com/kpetrov/mediadex/internal/pathutil"
)

// dirWork is one directory pending a scan: its absolute location on disk
// and its root-relative index path.
type dirWork struct {
	abs string
	rel string
}

// worker pulls directories off the shared queue, scans them, emits the
// children to the writer, and enqueues discovered sub-directories.
type worker struct {
	scanner *Scanner
	stack   []dirWork
}

// run processes directory work until the queue is closed. Work parked on
// the local stack (queue-full overflow) is always drained first.
func (w *worker) run() {
	for {
		if len(w.stack) > 0 {
			work := w.stack[len(w.stack)-1]
			w.stack = w.stack[:len(w.stack)-1]
			w.process(work)
			continue
		}

		work, ok := <-w.scanner.dirQueue
		if !ok {
			return
		}
		w.process(work)
	}
}

func (w *worker) process(work dirWork) {
	w.scanDirectory(work)
	w.scanner.finishOne()
}

// scanDirectory lists one directory's immediate children and classifies
// them. Failures are contained: an unreadable child is skipped, an
// unreadable directory contributes nothing and prunes its branch.
func (w *worker) scanDirectory(work dirWork) {
	s := w.scanner

	children, err := os.ReadDir(work.abs)
	if err != nil {
		s.log.Warn().Err(err).Str("path", work.abs).Msg("cannot read directory")
		return
	}

	for _, de := range children {
		childAbs := filepath.Join(work.abs, de.Name())
		if s.isIgnored(childAbs) {
			continue
		}

		isLink := de.Type()&os.ModeSymlink != 0
		if isLink && !s.opts.FollowSymlinks {
			continue
		}

		var info os.FileInfo
		if s.opts.FollowSymlinks {
			info, err = os.Stat(childAbs)
		} else {
			info, err = de.Info()
		}
		if err != nil {
			s.log.Warn().Err(err).Str("path", childAbs).Msg("cannot stat entry")
			continue
		}

		isDir := info.IsDir()
		rel := s.relativize(childAbs, isLink)

		e := entry.Entry{
			Path:   rel,
			Parent: work.rel,
			IsDir:  isDir,
			Mtime:  entry.EpochSeconds(info.ModTime()),
		}
		if !isDir {
			e.Size = info.Size()
		}
		s.entryCh <- e

		if isDir {
			w.enqueueOrStack(dirWork{abs: childAbs, rel: rel})
		}
	}
}

func (w *worker) enqueueOrStack(work dirWork) {
	w.scanner.startOne()
	select {
	case w.scanner.dirQueue <- work:
	default:
		// Queue full: keep the work local to avoid deadlock.
		w.stack = append(w.stack, work)
	}
}

// relativize maps a child's location to its index path. Followed symlinks
// are resolved first so targets outside the root fall back to their
// absolute representation.
func (s *Scanner) relativize(abs string, isLink bool) string {
	target := abs
	if isLink {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			target = resolved
		}
	}
	return pathutil.Relativize(s.root, target)
}
