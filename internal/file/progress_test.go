package file

import (
	"io"
	"testing"
	"time"
)

func TestProgressFileRetainsOnlyLatestCompletePage(t *testing.T) {
	pr, pw := io.Pipe()
	f := NewProgressFile(1, "progress", pr)

	go func() {
		io.WriteString(pw, "A\fB\fC\f")
		io.WriteString(pw, "D") // no trailing form-feed: still pending
		pw.Close()
	}()

	// Wait until the page settles on "C" (the last complete page before
	// the still-open "D" partial arrives and the pipe is closed).
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		page := string(f.page)
		f.mu.Unlock()
		if page == "C" {
			break
		}
		select {
		case <-f.Changed():
		case <-deadline:
			t.Fatalf("page never settled on C, last seen %q", page)
		}
	}

	for f.WaitingForData() {
		select {
		case <-f.Changed():
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for stream end")
		}
	}

	// Per spec.md S5: "D" without a trailing form-feed does not replace
	// "C" as the retained page.
	f.mu.Lock()
	page := string(f.page)
	f.mu.Unlock()
	if page != "C" {
		t.Fatalf("retained page = %q, want C (trailing partial D should not replace it)", page)
	}
}

func TestProgressFileStripsCursorControls(t *testing.T) {
	out := stripCursorControls([]byte("\x1b[2Jhello\x1b[Hworld"))
	if string(out) != "helloworld" {
		t.Fatalf("stripCursorControls = %q", out)
	}
}
