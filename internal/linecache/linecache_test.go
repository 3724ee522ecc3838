package linecache

import (
	"testing"

	"github.com/streampager/streampager/internal/line"
)

func loaderFor(content map[Key]string) Loader {
	return func(key Key) (*line.Line, bool) {
		text, ok := content[key]
		if !ok {
			return nil, false
		}
		return line.New(key.FileID, key.Index, []byte(text)), true
	}
}

func TestGetMissConstructsAndCachesFurtherHits(t *testing.T) {
	calls := 0
	content := map[Key]string{{0, 0}: "hello"}
	load := func(key Key) (*line.Line, bool) {
		calls++
		text, ok := content[key]
		if !ok {
			return nil, false
		}
		return line.New(key.FileID, key.Index, []byte(text)), true
	}

	c := New(10)
	l1, ok := c.Get(Key{0, 0}, load)
	if !ok || l1 == nil {
		t.Fatal("expected hit")
	}
	l2, ok := c.Get(Key{0, 0}, load)
	if !ok || l2 != l1 {
		t.Fatal("expected same cached Line pointer")
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

func TestEvictionDoesNotChangeRenderedOutput(t *testing.T) {
	content := map[Key]string{
		{0, 0}: "line zero",
		{0, 1}: "line one",
		{0, 2}: "line two",
	}
	load := loaderFor(content)

	c := New(2)
	l0, _ := c.Get(Key{0, 0}, load)
	before := string(l0.Render(80, 0, line.WrapNone, 0, line.RenderFlags{SelectedMatch: -1})[0].Text)

	// Force eviction of key {0,0} by touching two more keys.
	c.Get(Key{0, 1}, load)
	c.Get(Key{0, 2}, load)
	if c.Len() > 2 {
		t.Fatalf("cache grew past capacity: %d", c.Len())
	}

	l0Again, ok := c.Get(Key{0, 0}, load)
	if !ok {
		t.Fatal("expected reconstructable miss after eviction")
	}
	after := string(l0Again.Render(80, 0, line.WrapNone, 0, line.RenderFlags{SelectedMatch: -1})[0].Text)
	if before != after {
		t.Fatalf("rendered output changed across eviction: %q vs %q", before, after)
	}
}

func TestInvalidateFileOnlyDropsThatFile(t *testing.T) {
	content := map[Key]string{
		{0, 0}: "a",
		{1, 0}: "b",
	}
	load := loaderFor(content)
	c := New(10)
	c.Get(Key{0, 0}, load)
	c.Get(Key{1, 0}, load)

	c.InvalidateFile(0)
	if c.Len() != 1 {
		t.Fatalf("Len()=%d want 1", c.Len())
	}
	if _, ok := c.entries[Key{1, 0}]; !ok {
		t.Fatal("file 1 entry should remain")
	}
}
