package file

import "sync"

// ControlledFile is an in-memory buffer a caller appends to directly
// (e.g. output generated by the pager itself, such as a help page or a
// synthesized banner), rather than one fed by a background reader
// goroutine.
type ControlledFile struct {
	id    int
	title string

	mu   sync.Mutex
	data []byte
	index lineIndex
	ended bool
	err   error

	sig *changeSignal
}

// NewControlledFile creates an empty ControlledFile. Callers drive it
// with Append and Finish.
func NewControlledFile(id int, title string) *ControlledFile {
	return &ControlledFile{
		id:    id,
		title: title,
		sig:   newChangeSignal(),
	}
}

// Append adds more bytes to the file and re-indexes them.
func (f *ControlledFile) Append(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return
	}
	base := int64(len(f.data))
	f.data = append(f.data, data...)
	f.index.scanFor(data, base)
	f.sig.notify()
}

// Finish marks the file complete, recording any trailing partial line.
func (f *ControlledFile) Finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return
	}
	f.ended = true
	f.index.finalize(int64(len(f.data)))
	f.sig.notify()
}

// Fail marks the file as ended with a fatal error.
func (f *ControlledFile) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return
	}
	f.ended = true
	f.err = err
	f.sig.notify()
}

func (f *ControlledFile) ID() int      { return f.id }
func (f *ControlledFile) Title() string { return f.title }

func (f *ControlledFile) Lines() int { return f.index.count() }

func (f *ControlledFile) LineBytes(i int) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	start, end, ok := f.index.lineRange(i)
	if !ok || start < 0 || end > int64(len(f.data)) {
		return nil
	}
	return trimCR(f.data[start:end])
}

func (f *ControlledFile) NeededLines(upTo int) { _ = upTo }

func (f *ControlledFile) WaitingForData() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.ended
}

func (f *ControlledFile) Changed() <-chan struct{} { return f.sig.C() }

func (f *ControlledFile) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *ControlledFile) Close() {}
