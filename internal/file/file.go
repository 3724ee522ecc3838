// Package file implements the File component: a uniform view over a
// growing or static content source, maintaining a line-offset index.
// Four tagged variants share the Backend capability set: StreamFile (a
// growing pipe/fd/subprocess output), MappedFile (a read-only memory map
// of an on-disk file), ProgressFile (a form-feed-delimited status page
// stream, only the latest page retained), and ControlledFile (an
// in-memory buffer a caller appends to directly).
package file

import (
	"sync"
)

// Backend is the capability set the rest of the pager programs against,
// regardless of which variant backs a given file (spec.md design note:
// "Polymorphic file backends... implement as tagged variants rather than
// deep hierarchies").
type Backend interface {
	// ID is the dense, small integer identity assigned at creation.
	ID() int
	// Title is the display name (usually a path or "stdin").
	Title() string
	// Lines returns the number of fully indexed lines.
	Lines() int
	// LineBytes returns the raw bytes of line i (excluding its trailing
	// newline). Valid for 0 <= i < Lines().
	LineBytes(i int) []byte
	// NeededLines ensures lines up to (and including) index upTo are
	// indexed, if the data for them has arrived. It does not block.
	NeededLines(upTo int)
	// WaitingForData reports whether the file may still produce more
	// lines (it has not reached end-of-stream and has no fatal error).
	WaitingForData() bool
	// Changed returns a channel that receives a value whenever new lines
	// are indexed or the file reaches end-of-stream or error. Sends are
	// coalesced: a consumer that drains slowly still observes "something
	// changed," not every individual change.
	Changed() <-chan struct{}
	// Err returns any fatal read/open error recorded on the file.
	Err() error
	// Close releases the backend's resources (descriptors, mmaps,
	// reader goroutines).
	Close()
}

// changeSignal is a coalescing "something changed" notifier: many
// producer-side notify() calls collapse into at most one pending receive.
type changeSignal struct {
	ch chan struct{}
}

func newChangeSignal() *changeSignal {
	return &changeSignal{ch: make(chan struct{}, 1)}
}

func (s *changeSignal) notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

func (s *changeSignal) C() <-chan struct{} { return s.ch }

// lineIndex is the sorted vector of line-start offsets shared by every
// variant that indexes lines incrementally as bytes arrive. Offset 0 is
// implicit; starts[i] is the start of line i+1 (i.e. the position right
// after the i-th newline). Grounded on the teacher's textPagerSource
// (internal/ui/pager/text_source.go): appendLine/readChunk build exactly
// this kind of incremental offset list while tolerating a not-yet-
// terminated final line.
type lineIndex struct {
	mu      sync.Mutex
	starts  []int64 // starts[0] == 0 is NOT stored; starts holds line 1..N starts
	ends    []int64 // ends[i] is the end offset (exclusive of newline) of line i
	scanned int64   // bytes already scanned for newlines, relative to buffer start
}

// scanFor appends newly discovered line boundaries found in data (which
// begins at absolute offset `base` in the underlying source). It must be
// called with monotonically increasing, contiguous (base, data) pairs.
func (ix *lineIndex) scanFor(data []byte, base int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i, b := range data {
		if b != '\n' {
			continue
		}
		pos := base + int64(i)
		ix.ends = append(ix.ends, pos)
		ix.starts = append(ix.starts, pos+1)
	}
	ix.scanned = base + int64(len(data))
}

// finalize records the last, possibly newline-less, line once the source
// reaches end-of-stream.
func (ix *lineIndex) finalize(total int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	start := int64(0)
	if len(ix.starts) > 0 {
		start = ix.starts[len(ix.starts)-1]
	} else if len(ix.ends) > 0 {
		start = ix.ends[0]
	}
	if total > start || (total == start && len(ix.ends) == 0 && total > 0) {
		ix.ends = append(ix.ends, total)
		ix.starts = append(ix.starts, total)
	}
}

func (ix *lineIndex) count() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.ends)
}

func (ix *lineIndex) lineRange(i int) (start, end int64, ok bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if i < 0 || i >= len(ix.ends) {
		return 0, 0, false
	}
	if i == 0 {
		start = 0
	} else {
		start = ix.starts[i-1]
	}
	end = ix.ends[i]
	return start, end, true
}

func (ix *lineIndex) reset() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.starts = nil
	ix.ends = nil
	ix.scanned = 0
}
