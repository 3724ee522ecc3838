package file

import (
	"io"
	"sync/atomic"

	"github.com/streampager/streampager/internal/streambuf"
)

// StreamFile backs a growing byte stream (pipe, fd, subprocess stdout)
// with a Fillable Buffer and an incrementally built line index. Grounded
// on the teacher's textPagerSource reader loop
// (internal/ui/pager/text_source.go: readChunk/appendLine), generalized
// from chunked ReadAt over an on-disk file to a blocking io.Reader.
type StreamFile struct {
	id    int
	title string

	buf   *streambuf.Buffer
	index lineIndex
	sig   *changeSignal

	readPos int64
	err     atomic.Value // error
	done    chan struct{}
}

// NewStreamFile starts a reader goroutine that copies r into an internal
// buffer, indexing newlines as they arrive, until r is exhausted or
// returns an error.
func NewStreamFile(id int, title string, r io.Reader) *StreamFile {
	f := &StreamFile{
		id:    id,
		title: title,
		buf:   streambuf.New(streambuf.PageSize),
		sig:   newChangeSignal(),
		done:  make(chan struct{}),
	}
	go f.run(r)
	return f
}

func (f *StreamFile) run(r io.Reader) {
	defer close(f.done)
	defer f.sig.notify()
	defer f.buf.MarkEnd()

	for {
		n, err := f.buf.AppendFrom(r)
		if n > 0 {
			f.scanNew()
			f.sig.notify()
		}
		if err != nil {
			f.err.Store(err)
			return
		}
		if n == 0 {
			// AppendFrom translates io.EOF into (0, nil); reaching here
			// with n == 0 and no error means end of stream. Record a final
			// line that has no trailing newline.
			f.index.finalize(f.readPos)
			return
		}
	}
}

func (f *StreamFile) scanNew() {
	avail := f.buf.Available()
	if avail <= f.readPos {
		return
	}
	data := f.buf.Read(f.readPos, int(avail-f.readPos), streambuf.NonBlocking)
	f.index.scanFor(data, f.readPos)
	f.readPos += int64(len(data))
}

func (f *StreamFile) ID() int      { return f.id }
func (f *StreamFile) Title() string { return f.title }

func (f *StreamFile) Lines() int { return f.index.count() }

func (f *StreamFile) LineBytes(i int) []byte {
	start, end, ok := f.index.lineRange(i)
	if !ok {
		return nil
	}
	data := f.buf.Read(start, int(end-start), streambuf.NonBlocking)
	return trimCR(data)
}

func (f *StreamFile) NeededLines(upTo int) {
	// Indexing happens on the reader goroutine as bytes arrive; there is
	// nothing to pull on demand beyond waiting for Changed().
	_ = upTo
}

func (f *StreamFile) WaitingForData() bool {
	if f.err.Load() != nil {
		return false
	}
	return !f.buf.AtEnd()
}

func (f *StreamFile) Changed() <-chan struct{} { return f.sig.C() }

func (f *StreamFile) Err() error {
	if e, ok := f.err.Load().(error); ok {
		return e
	}
	return nil
}

func (f *StreamFile) Close() {
	// The reader goroutine exits on its own once r is exhausted; there is
	// no descriptor owned directly by StreamFile to release here (the
	// caller owns r's lifetime).
}

func trimCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		return data[:len(data)-1]
	}
	return data
}
