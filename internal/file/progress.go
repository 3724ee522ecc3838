package file

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"
)

// ProgressFile backs a status/progress stream whose pages are delimited
// by form-feed (\f) bytes; only the most recently completed page is
// retained for display (spec.md S5). Bytes of a page not yet terminated by
// a form-feed are held aside and never shown. CSI sequences that
// move the cursor or clear the screen are stripped rather than
// interpreted, since a progress page is redrawn wholesale, not patched.
type ProgressFile struct {
	id    int
	title string

	mu      sync.Mutex
	page    []byte // the retained page's raw bytes; index is rebuilt whenever it changes
	index   lineIndex
	pending []byte // bytes of the page currently being accumulated

	sig  *changeSignal
	err  atomic.Value // error
	done chan struct{}
}

// NewProgressFile starts a reader goroutine that splits r on form-feed
// bytes, keeping only the latest complete page plus whatever partial page
// follows it.
func NewProgressFile(id int, title string, r io.Reader) *ProgressFile {
	f := &ProgressFile{
		id:    id,
		title: title,
		sig:   newChangeSignal(),
		done:  make(chan struct{}),
	}
	go f.run(r)
	return f
}

func (f *ProgressFile) run(r io.Reader) {
	defer f.sig.notify()
	defer close(f.done)

	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			f.consume(buf[:n])
			f.sig.notify()
		}
		if err != nil {
			if err != io.EOF {
				f.err.Store(err)
			}
			// A partial page (never terminated by a form-feed) never
			// replaces the retained page, even at end of stream (spec.md
			// S5: "D" without a trailing form-feed does not replace "C").
			return
		}
	}
}

// consume appends data to the pending page, cutting a new retained page
// each time a form-feed is seen.
func (f *ProgressFile) consume(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		i := bytes.IndexByte(data, '\f')
		if i < 0 {
			f.pending = append(f.pending, data...)
			return
		}
		f.pending = append(f.pending, data[:i]...)
		f.setPage(stripCursorControls(f.pending))
		f.pending = nil
		data = data[i+1:]
	}
}

// setPage replaces the retained page and rebuilds its line index. Must be
// called with mu held.
func (f *ProgressFile) setPage(page []byte) {
	f.page = page
	f.index.reset()
	f.index.scanFor(page, 0)
	f.index.finalize(int64(len(page)))
}

// stripCursorControls discards CSI sequences that move the cursor or
// clear the screen (e.g. "\x1b[2J", "\x1b[H"), since a progress page
// replaces its predecessor wholesale rather than being patched in place.
func stripCursorControls(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] == 0x1b && i+1 < len(data) && data[i+1] == '[' {
			j := i + 2
			for j < len(data) && (data[j] < 0x40 || data[j] > 0x7e) {
				j++
			}
			if j < len(data) {
				j++
			}
			i = j
			continue
		}
		out = append(out, data[i])
		i++
	}
	return out
}

func (f *ProgressFile) ID() int      { return f.id }
func (f *ProgressFile) Title() string { return f.title }

func (f *ProgressFile) Lines() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index.count()
}

func (f *ProgressFile) LineBytes(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, end, ok := f.index.lineRange(i)
	if !ok || start < 0 || end > int64(len(f.page)) {
		return nil
	}
	return trimCR(f.page[start:end])
}

func (f *ProgressFile) NeededLines(upTo int) { _ = upTo }

func (f *ProgressFile) WaitingForData() bool {
	if f.err.Load() != nil {
		return false
	}
	select {
	case <-f.done:
		return false
	default:
		return true
	}
}

func (f *ProgressFile) Changed() <-chan struct{} { return f.sig.C() }

func (f *ProgressFile) Err() error {
	if e, ok := f.err.Load().(error); ok {
		return e
	}
	return nil
}

func (f *ProgressFile) Close() {}
