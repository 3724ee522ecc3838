package screenview

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/streampager/streampager/internal/file"
	"github.com/streampager/streampager/internal/line"
	"github.com/streampager/streampager/internal/linecache"
	"github.com/streampager/streampager/internal/search"
)

func newTestFile(t *testing.T, content string) file.Backend {
	t.Helper()
	f := file.NewStreamFile(1, "test", strings.NewReader(content))
	for f.WaitingForData() {
		<-f.Changed()
	}
	return f
}

func TestScrollClampsToFileBounds(t *testing.T) {
	f := newTestFile(t, "a\nb\nc\n")
	s := New(1, f, linecache.New(10))
	s.SetSize(3, 80)

	s.ScrollLines(-5)
	if s.Top != 0 {
		t.Fatalf("Top = %d, want 0 (clamped)", s.Top)
	}
	s.ScrollLines(100)
	if s.Top != 2 {
		t.Fatalf("Top = %d, want 2 (last line)", s.Top)
	}
}

func TestCycleWrapModeZerosColumnOffset(t *testing.T) {
	f := newTestFile(t, "hello world\n")
	s := New(1, f, linecache.New(10))
	s.SetSize(3, 80)
	s.ScrollColumns(5)
	if s.ColOffset != 5 {
		t.Fatalf("ColOffset = %d, want 5", s.ColOffset)
	}
	s.CycleWrapMode()
	if s.ColOffset != 0 {
		t.Fatalf("ColOffset = %d after wrap change, want 0", s.ColOffset)
	}
	if s.Wrap != line.WrapChar {
		t.Fatalf("Wrap = %v, want WrapChar", s.Wrap)
	}
}

func TestRenderProducesBodyRowsAndStatus(t *testing.T) {
	f := newTestFile(t, "one\ntwo\nthree\n")
	s := New(1, f, linecache.New(10))
	s.SetSize(3, 80) // 2 body rows + 1 status row

	frame := s.Render()
	if len(frame.Body) != 2 {
		t.Fatalf("Body rows = %d, want 2", len(frame.Body))
	}
	if frame.Status == "" {
		t.Fatal("expected non-empty status line")
	}
}

func TestNavigateFirstScrollsToMatch(t *testing.T) {
	f := newTestFile(t, "nope\nnope\nhit here\nnope\n")
	s := New(1, f, linecache.New(10))
	s.SetSize(5, 80)

	sr := search.NewSearcher()
	srch := sr.Start(f, regexp.MustCompile("hit"), 0, search.Forward, nil)
	deadline := time.After(2 * time.Second)
	for srch.Poll().State == search.Running {
		select {
		case <-deadline:
			t.Fatal("search never completed")
		case <-time.After(2 * time.Millisecond):
		}
	}
	s.AttachSearch(srch)

	m, ok := s.NavigateFirst()
	if !ok || m.Line != 2 {
		t.Fatalf("NavigateFirst = %+v, ok=%v", m, ok)
	}
	if s.Top != 2 {
		t.Fatalf("Top = %d, want 2", s.Top)
	}
}

func TestNavigateNextCyclesMatchesAndWrapsToFirst(t *testing.T) {
	// spec.md S4's five-line fixture (["alpha","beta","gamma",
	// "alphabet","beta"], search /a): repeatedly pressing "." must walk
	// every match in ascending (line, column) order and wrap back to the
	// first match once the last one is passed.
	f := newTestFile(t, "alpha\nbeta\ngamma\nalphabet\nbeta\n")
	s := New(1, f, linecache.New(10))
	s.SetSize(6, 80)

	sr := search.NewSearcher()
	srch := sr.Start(f, regexp.MustCompile("a"), 0, search.Forward, nil)
	deadline := time.After(2 * time.Second)
	for srch.Poll().State == search.Running {
		select {
		case <-deadline:
			t.Fatal("search never completed")
		case <-time.After(2 * time.Millisecond):
		}
	}
	s.AttachSearch(srch)

	want := []struct{ line, col int }{
		{0, 0}, {0, 4}, // alpha
		{1, 3},         // beta
		{2, 1}, {2, 4}, // gamma
		{3, 0}, {3, 4}, // alphabet
		{4, 3},         // beta
	}
	for i, w := range want {
		m, ok := s.NavigateNext()
		if !ok || m.Line != w.line || m.Start != w.col {
			t.Fatalf("step %d: NavigateNext = %+v, ok=%v; want line %d col %d", i, m, ok, w.line, w.col)
		}
	}

	// One more press wraps back to the very first match.
	m, ok := s.NavigateNext()
	if !ok || m.Line != want[0].line || m.Start != want[0].col {
		t.Fatalf("wrap NavigateNext = %+v, ok=%v; want line %d col %d", m, ok, want[0].line, want[0].col)
	}
}

func TestErrorOverlayShowsLastLinesOnly(t *testing.T) {
	f := newTestFile(t, "body\n")
	var errLines []string
	for i := 0; i < 12; i++ {
		errLines = append(errLines, "err-line")
	}
	errFile := newTestFile(t, strings.Join(errLines, "\n")+"\n")

	s := New(1, f, linecache.New(10))
	s.SetSize(3, 80)
	s.ErrorFile = errFile

	frame := s.Render()
	if len(frame.ErrorOverlay) != errorOverlayLines {
		t.Fatalf("ErrorOverlay rows = %d, want %d", len(frame.ErrorOverlay), errorOverlayLines)
	}
}
