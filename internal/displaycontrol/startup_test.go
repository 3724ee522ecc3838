package displaycontrol

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/streampager/streampager/internal/config"
	"github.com/streampager/streampager/internal/file"
)

func TestDecideStartupShortCompleteInputStaysInline(t *testing.T) {
	f := file.NewStreamFile(1, "r", strings.NewReader("abc\ndef\n"))
	for f.WaitingForData() {
		<-f.Changed()
	}
	if DecideStartup(f, 24, config.Delayed, 2*time.Second) {
		t.Fatal("expected inline (no fullscreen) for short, complete input")
	}
}

func TestDecideStartupOverflowTriggersFullscreen(t *testing.T) {
	pr, pw := io.Pipe()
	f := file.NewStreamFile(1, "r", pr)
	go func() {
		for i := 0; i < 200; i++ {
			pw.Write([]byte("line N\n"))
		}
		pw.Close()
	}()
	if !DecideStartup(f, 24, config.Delayed, 2*time.Second) {
		t.Fatal("expected fullscreen once lines exceed body rows")
	}
}

func TestDecideStartupDirectModeNeverFullscreens(t *testing.T) {
	pr, pw := io.Pipe()
	f := file.NewStreamFile(1, "r", pr)
	go func() {
		for i := 0; i < 200; i++ {
			pw.Write([]byte("line N\n"))
		}
		pw.Close()
	}()
	for f.WaitingForData() {
		<-f.Changed()
	}
	if DecideStartup(f, 24, config.Direct, 2*time.Second) {
		t.Fatal("direct mode must never request fullscreen")
	}
}

func TestRunInlineWritesEachLine(t *testing.T) {
	f := file.NewStreamFile(1, "r", strings.NewReader("abc\ndef\n"))
	var buf bytes.Buffer
	if err := RunInline(f, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "abc\ndef\n" {
		t.Fatalf("buf = %q", buf.String())
	}
}
