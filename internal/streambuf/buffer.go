// Package streambuf implements the Fillable Buffer: an append-only,
// zero-copy-readable byte buffer that producers fill while a renderer
// reads concurrently.
package streambuf

import (
	"io"
	"sync"
)

// PageSize is the default page allocation size. Pages are allocated on
// demand as the buffer grows past its current capacity.
const PageSize = 1 << 20 // 1 MiB

// ReadMode selects how Read behaves when the requested range isn't fully
// available yet.
type ReadMode int

const (
	// NonBlocking returns whatever bytes are currently available,
	// possibly zero.
	NonBlocking ReadMode = iota
	// Blocking waits until at least one byte past the offset is
	// available, or until end-of-stream.
	Blocking
)

// Buffer is a page-oriented, append-only byte buffer. Bytes once written at
// an offset are immutable; pages are never reallocated once allocated, so a
// slice returned from Read remains valid for as long as the caller holds
// the Buffer.
type Buffer struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pages    [][]byte
	pageSize int
	written  int64
	atEnd    bool
	err      error
}

// New creates an empty Buffer with the given page size. A pageSize <= 0
// uses PageSize.
func New(pageSize int) *Buffer {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	b := &Buffer{pageSize: pageSize}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Available returns the number of bytes written so far. Monotonic.
func (b *Buffer) Available() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written
}

// AtEnd reports whether the stream has reached end-of-stream.
func (b *Buffer) AtEnd() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.atEnd
}

// Err returns the terminal I/O error recorded on the buffer, if any.
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// Read returns a slice of up to maxLen bytes starting at offset. In
// NonBlocking mode it returns immediately with whatever is available
// (possibly empty). In Blocking mode it waits until at least one byte past
// offset is available or end-of-stream is reached.
//
// When the range lies within one page, the returned slice aliases
// buffer-owned memory; a range spanning pages is copied into a new slice.
// Either way it remains valid and unchanged for the life of the Buffer:
// pages are never reallocated once allocated.
func (b *Buffer) Read(offset int64, maxLen int, mode ReadMode) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if mode == Blocking {
		for offset >= b.written && !b.atEnd {
			b.cond.Wait()
		}
	}

	if offset >= b.written || offset < 0 {
		return nil
	}

	avail := b.written - offset
	n := int64(maxLen)
	if n <= 0 || n > avail {
		n = avail
	}

	return b.readLocked(offset, n)
}

func (b *Buffer) readLocked(offset, n int64) []byte {
	pageIdx := int(offset / int64(b.pageSize))
	pageOff := int(offset % int64(b.pageSize))

	if pageIdx < len(b.pages) && int64(pageOff)+n <= int64(len(b.pages[pageIdx])) {
		end := pageOff + int(n)
		return b.pages[pageIdx][pageOff:end:end]
	}

	out := make([]byte, 0, n)
	for n > 0 && pageIdx < len(b.pages) {
		page := b.pages[pageIdx]
		avail := len(page) - pageOff
		if int64(avail) > n {
			avail = int(n)
		}
		out = append(out, page[pageOff:pageOff+avail]...)
		n -= int64(avail)
		pageIdx++
		pageOff = 0
	}
	return out
}

// AppendFrom reads a single chunk from r into a fresh page (or the tail of
// the current page, if room remains), advances the write cursor, and wakes
// any blocked readers. It returns the number of bytes read and any error
// other than io.EOF; io.EOF is translated into a nil error with n == 0 and
// does not itself mark end-of-stream (callers call MarkEnd explicitly once
// they know no more data will arrive).
func (b *Buffer) AppendFrom(r io.Reader) (int, error) {
	chunk := make([]byte, b.pageSize)
	n, err := r.Read(chunk)
	if n > 0 {
		b.append(chunk[:n])
	}
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		b.mu.Lock()
		b.err = err
		b.mu.Unlock()
	}
	return n, err
}

func (b *Buffer) append(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(data) > 0 {
		var tail []byte
		if n := len(b.pages); n > 0 {
			tail = b.pages[n-1]
		}
		if tail == nil || len(tail) == cap(tail) {
			tail = make([]byte, 0, b.pageSize)
			b.pages = append(b.pages, tail)
		}
		room := cap(tail) - len(tail)
		take := len(data)
		if take > room {
			take = room
		}
		tail = append(tail, data[:take]...)
		b.pages[len(b.pages)-1] = tail
		data = data[take:]
		b.written += int64(take)
	}
	b.cond.Broadcast()
}

// MarkEnd sets the end-of-stream flag and wakes all waiters.
func (b *Buffer) MarkEnd() {
	b.mu.Lock()
	b.atEnd = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// MarkError records a terminal I/O error on the buffer and marks end of
// stream, waking all waiters.
func (b *Buffer) MarkError(err error) {
	b.mu.Lock()
	b.err = err
	b.atEnd = true
	b.cond.Broadcast()
	b.mu.Unlock()
}
