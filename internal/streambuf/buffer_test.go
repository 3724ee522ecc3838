package streambuf

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestAppendFromAndRead(t *testing.T) {
	b := New(8) // small page size to force multiple pages
	r := strings.NewReader("abcdefghijklmnop")

	for {
		n, err := b.AppendFrom(r)
		if n == 0 && err == nil {
			break
		}
		if err != nil {
			t.Fatalf("AppendFrom: %v", err)
		}
	}
	b.MarkEnd()

	if got := b.Available(); got != 16 {
		t.Fatalf("Available()=%d want 16", got)
	}
	if !b.AtEnd() {
		t.Fatalf("AtEnd()=false want true")
	}

	got := b.Read(0, 16, NonBlocking)
	if string(got) != "abcdefghijklmnop" {
		t.Fatalf("Read(0,16)=%q", got)
	}

	got = b.Read(4, 4, NonBlocking)
	if string(got) != "efgh" {
		t.Fatalf("Read(4,4)=%q", got)
	}
}

func TestReadNonBlockingPastAvailable(t *testing.T) {
	b := New(64)
	b.append([]byte("hi"))

	got := b.Read(10, 10, NonBlocking)
	if got != nil {
		t.Fatalf("Read past available = %q want nil", got)
	}
}

func TestReadBlockingWakesOnAppend(t *testing.T) {
	b := New(64)
	done := make(chan []byte, 1)

	go func() {
		done <- b.Read(0, 5, Blocking)
	}()

	time.Sleep(10 * time.Millisecond)
	b.append([]byte("hello"))

	select {
	case got := <-done:
		if string(got) != "hello" {
			t.Fatalf("blocking read = %q want hello", got)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking read never woke")
	}
}

func TestReadBlockingWakesOnEnd(t *testing.T) {
	b := New(64)
	done := make(chan []byte, 1)

	go func() {
		done <- b.Read(0, 5, Blocking)
	}()

	time.Sleep(10 * time.Millisecond)
	b.MarkEnd()

	select {
	case got := <-done:
		if got != nil {
			t.Fatalf("blocking read on empty+end = %q want nil", got)
		}
	case <-time.After(time.Second):
		t.Fatal("blocking read never woke on end")
	}
}

func TestBytesImmutableAcrossAppends(t *testing.T) {
	b := New(64)
	b.append([]byte("first"))
	first := b.Read(0, 5, NonBlocking)

	b.append([]byte("second"))
	if !bytes.Equal(first, []byte("first")) {
		t.Fatalf("earlier read mutated: %q", first)
	}
}

func TestMarkErrorEndsWaiters(t *testing.T) {
	b := New(64)
	done := make(chan []byte, 1)
	go func() {
		done <- b.Read(0, 5, Blocking)
	}()

	time.Sleep(10 * time.Millisecond)
	b.MarkError(bytes.ErrTooLarge)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blocking read never woke on error")
	}
	if b.Err() != bytes.ErrTooLarge {
		t.Fatalf("Err()=%v want ErrTooLarge", b.Err())
	}
}
