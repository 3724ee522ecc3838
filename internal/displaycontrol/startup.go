package displaycontrol

import (
	"bufio"
	"io"
	"time"

	"github.com/streampager/streampager/internal/config"
	"github.com/streampager/streampager/internal/file"
)

// DecideStartup resolves the interface-mode heuristics from spec.md 6 and
// 9 (the supplemented direct/no-alternate mode) into a single decision:
// whether the pager must switch to the terminal's alternate screen, or
// whether the content can simply be printed inline and the process can
// exit. rows is the terminal's height (so body capacity is rows-1, the
// status line's row). Grounded on the original's InterfaceMode handling
// (original_source/src/config.rs) and the startup race it describes
// between "more lines arrived" and "end of stream reached".
func DecideStartup(f file.Backend, rows int, mode config.InterfaceMode, delay time.Duration) bool {
	bodyRows := rows - 1
	if bodyRows < 1 {
		bodyRows = 1
	}

	switch mode {
	case config.Direct:
		return false
	case config.Fullscreen:
		return true
	}

	var deadline <-chan time.Time
	if mode == config.Delayed {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		if f.Lines() > bodyRows {
			return true
		}
		if !f.WaitingForData() {
			return false
		}
		select {
		case <-f.Changed():
			continue
		case <-deadline:
			return true
		}
	}
}

// RunInline copies every line of f to w as it becomes available, until
// end-of-stream. Each line is written as LineBytes returns it (a carriage
// return before the newline is dropped) followed by a '\n', including a
// final line that had no trailing newline in the source. Used for spec.md S1: content that fits and
// finishes before the interface-mode decision ever needs the alternate
// screen.
func RunInline(f file.Backend, w io.Writer) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	i := 0
	for {
		if i >= f.Lines() {
			if !f.WaitingForData() {
				if err := f.Err(); err != nil {
					return err
				}
				return nil
			}
			<-f.Changed()
			continue
		}
		if _, err := bw.Write(f.LineBytes(i)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		i++
	}
}
