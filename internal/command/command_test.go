package command

import (
	"strings"
	"testing"

	"github.com/streampager/streampager/internal/file"
	"github.com/streampager/streampager/internal/linecache"
	"github.com/streampager/streampager/internal/screenview"
)

func newScreen(t *testing.T, content string) *screenview.Screen {
	t.Helper()
	f := file.NewStreamFile(1, "t", strings.NewReader(content))
	for f.WaitingForData() {
		<-f.Changed()
	}
	s := screenview.New(1, f, linecache.New(10))
	s.SetSize(5, 80)
	return s
}

func TestScrollCommandsMoveScreen(t *testing.T) {
	s := newScreen(t, "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n")
	target := &Target{Screen: s}

	Execute("ScrollDownLines", 3, target)
	if s.Top != 3 {
		t.Fatalf("Top = %d, want 3", s.Top)
	}
	Execute("ScrollUpLines", 1, target)
	if s.Top != 2 {
		t.Fatalf("Top = %d, want 2", s.Top)
	}
	Execute("ScrollToTop", 0, target)
	if s.Top != 0 {
		t.Fatalf("Top = %d, want 0", s.Top)
	}
}

func TestQuitCallbackInvoked(t *testing.T) {
	s := newScreen(t, "a\n")
	called := false
	target := &Target{Screen: s, RequestQuit: func() { called = true }}
	Execute("Quit", 0, target)
	if !called {
		t.Fatal("expected RequestQuit to be called")
	}
}

func TestUnknownCommandIsNoOp(t *testing.T) {
	s := newScreen(t, "a\nb\n")
	target := &Target{Screen: s}
	Execute("NotARealCommand", 0, target)
	if s.Top != 0 {
		t.Fatalf("Top = %d, want unchanged 0", s.Top)
	}
}
