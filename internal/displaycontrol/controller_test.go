package displaycontrol

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/streampager/streampager/internal/file"
	"github.com/streampager/streampager/internal/keymap"
)

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func newLoadedFile(t *testing.T, content string) file.Backend {
	t.Helper()
	f := file.NewStreamFile(1, "test", strings.NewReader(content))
	for f.WaitingForData() {
		<-f.Changed()
	}
	return f
}

func TestControllerQuitsOnKeymapQuit(t *testing.T) {
	screen := newTestScreen(t)
	f := newLoadedFile(t, "one\ntwo\nthree\n")

	c := New(screen, keymap.Default())
	c.AddFile(f, nil)

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not quit on q")
	}
}

func TestControllerAttachProgressRendersAtBottom(t *testing.T) {
	screen := newTestScreen(t)
	f := newLoadedFile(t, "one\ntwo\nthree\n")
	progress := newLoadedFile(t, "42%\n")

	c := New(screen, keymap.Default())
	idx := c.AddFile(f, nil)
	c.AttachProgress(idx, progress)
	c.currentScreen().SetSize(24, 80)

	if c.currentScreen().ProgressFile == nil {
		t.Fatal("expected ProgressFile to be attached")
	}
	frame := c.currentScreen().Render()
	if len(frame.Progress) == 0 {
		t.Fatal("expected a non-empty progress overlay")
	}
}

func TestControllerScrollDownMovesTop(t *testing.T) {
	screen := newTestScreen(t)
	lines := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		lines = append(lines, "line")
	}
	f := newLoadedFile(t, strings.Join(lines, "\n")+"\n")

	c := New(screen, keymap.Default())
	c.AddFile(f, nil)

	done := make(chan error, 1)
	go func() { done <- c.Run() }()

	screen.InjectKey(tcell.KeyRune, 'j', tcell.ModNone)
	time.Sleep(50 * time.Millisecond)
	if c.currentScreen().Top == 0 {
		t.Fatal("expected Top to move after j keypress")
	}

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not quit")
	}
}
