package file

import (
	"io"
	"strings"
	"testing"
	"time"
)

func waitChanged(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Changed()")
	}
}

func TestStreamFileIndexesLinesAsTheyArrive(t *testing.T) {
	pr, pw := io.Pipe()
	f := NewStreamFile(1, "pipe", pr)

	go func() {
		io.WriteString(pw, "alpha\nbeta\n")
		pw.Close()
	}()

	for f.Lines() < 2 {
		waitChanged(t, f.Changed())
	}
	if got := string(f.LineBytes(0)); got != "alpha" {
		t.Fatalf("line 0 = %q, want alpha", got)
	}
	if got := string(f.LineBytes(1)); got != "beta" {
		t.Fatalf("line 1 = %q, want beta", got)
	}
	for f.WaitingForData() {
		waitChanged(t, f.Changed())
	}
}

func TestStreamFileFinalPartialLineIndexedAtEOF(t *testing.T) {
	f := NewStreamFile(1, "r", strings.NewReader("only line, no newline"))
	for f.WaitingForData() {
		waitChanged(t, f.Changed())
	}
	if f.Lines() != 1 {
		t.Fatalf("Lines()=%d want 1", f.Lines())
	}
	if got := string(f.LineBytes(0)); got != "only line, no newline" {
		t.Fatalf("line 0 = %q", got)
	}
}

func TestStreamFileTrimsTrailingCR(t *testing.T) {
	f := NewStreamFile(1, "r", strings.NewReader("crlf\r\nnext\n"))
	for f.WaitingForData() {
		waitChanged(t, f.Changed())
	}
	if got := string(f.LineBytes(0)); got != "crlf" {
		t.Fatalf("line 0 = %q, want crlf (CR trimmed)", got)
	}
}
