package line

import (
	"strings"
	"testing"

	"github.com/streampager/streampager/internal/overstrike"
)

func cellText(cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.Text)
	}
	return b.String()
}

func TestWrapRowsAtLeastOne(t *testing.T) {
	modes := []WrapMode{WrapNone, WrapChar, WrapWord}
	for _, mode := range modes {
		l := New(0, 0, []byte("hello world"))
		if got := l.WrapRows(5, mode); got < 1 {
			t.Fatalf("mode %v: WrapRows=%d want >=1", mode, got)
		}
		empty := New(0, 0, nil)
		if got := empty.WrapRows(5, mode); got < 1 {
			t.Fatalf("mode %v: WrapRows(empty)=%d want >=1", mode, got)
		}
	}
}

func TestWrapRowsConcatenationCoversLine(t *testing.T) {
	l := New(0, 0, []byte("the quick brown fox jumps"))
	width := 8
	n := l.WrapRows(width, WrapChar)
	var rebuilt strings.Builder
	for row := 0; row < n; row++ {
		cells := l.Render(width, 0, WrapChar, row, RenderFlags{SelectedMatch: -1})
		for _, c := range cells {
			rebuilt.WriteString(c.Text)
		}
	}
	full := cellText(l.cellSlice())
	if rebuilt.String() != full {
		t.Fatalf("wrapped rows concatenation = %q want %q", rebuilt.String(), full)
	}
}

func TestWordWrapBreaksAtWhitespace(t *testing.T) {
	l := New(0, 0, []byte("aaa bbb ccc"))
	n := l.WrapRows(7, WrapWord)
	if n < 2 {
		t.Fatalf("expected wrapping, got %d rows", n)
	}
	row0 := l.Render(7, 0, WrapWord, 0, RenderFlags{SelectedMatch: -1})
	text := cellText(row0)
	if strings.TrimRight(text, " ") != "aaa" && strings.TrimRight(text, " ") != "aaa bbb" {
		t.Fatalf("unexpected first wrapped row: %q", text)
	}
}

func TestWordWrapFallsBackToCharOnLongToken(t *testing.T) {
	l := New(0, 0, []byte("supercalifragilistic"))
	n := l.WrapRows(5, WrapWord)
	if n < 2 {
		t.Fatalf("expected multiple rows for a long token, got %d", n)
	}
}

func TestOverstrikeDecodedBeforeParse(t *testing.T) {
	l := New(0, 0, []byte("H\bHi"))
	cells := l.cellSlice()
	text := cellText(cells)
	if text != "Hi" {
		t.Fatalf("decoded text = %q want Hi", text)
	}
	decoded := overstrike.Decode([]byte("H\bHi"))
	if string(decoded) == "H\bHi" {
		t.Fatalf("overstrike.Decode did not change input")
	}
}

func TestRenderLineNumberGutterFirstRowOnly(t *testing.T) {
	l := New(0, 41, []byte("hello world this line wraps across rows"))
	flags := RenderFlags{ShowLineNumber: true, GutterWidth: 5, SelectedMatch: -1}
	n := l.WrapRows(10, WrapChar)
	if n < 2 {
		t.Fatalf("expected wrap, got %d rows", n)
	}
	row0 := l.Render(10, 0, WrapChar, 0, flags)
	row1 := l.Render(10, 0, WrapChar, 1, flags)

	gutter0 := cellText(row0[:5])
	gutter1 := cellText(row1[:5])
	if strings.TrimSpace(gutter0) != "42" {
		t.Fatalf("first row gutter = %q want 42", gutter0)
	}
	if strings.TrimSpace(gutter1) != "" {
		t.Fatalf("continuation row gutter = %q want blank", gutter1)
	}
}

func TestMatchOverlayHighlightsByteRange(t *testing.T) {
	l := New(0, 0, []byte("find the needle here"))
	idx := strings.Index("find the needle here", "needle")
	start := idx
	end := idx + len("needle")

	rendered := l.Render(100, 0, WrapNone, 0, RenderFlags{
		Matches:       []ByteRange{{Start: start, End: end}},
		SelectedMatch: 0,
	})

	for _, c := range rendered {
		if c.ByteStart >= start && c.ByteStart < end {
			if c.Style != selectedStyle {
				t.Fatalf("matched cell %q has style %v, want selected style", c.Text, c.Style)
			}
		}
	}
}

func TestClipHorizontalTruncatesWideRuneAtEdge(t *testing.T) {
	l := New(0, 0, []byte("a中中b")) // a + 2 wide CJK + b
	cells := l.Render(2, 1, WrapNone, 0, RenderFlags{SelectedMatch: -1})
	total := 0
	for _, c := range cells {
		total += c.Width
	}
	if total > 2 {
		t.Fatalf("clipped row width = %d want <= 2", total)
	}
}
