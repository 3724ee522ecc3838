// Package search implements the Search component: an async, cancellable
// scan of a file's lines against a compiled regular expression, reporting
// incremental progress so the UI can update before the scan completes.
package search

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/streampager/streampager/internal/file"
)

// Direction is the order lines are scanned in.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// State is a Search's lifecycle state.
type State int

const (
	Running State = iota
	Complete
	Cancelled
	Error
)

// Match is one regex match: the line it was found on and its byte range
// within that line's raw bytes (as returned by LineBytes).
type Match struct {
	Line  int
	Start int
	End   int
}

// Progress is a snapshot of how far a Search has scanned.
type Progress struct {
	LinesScanned int
	MatchCount   int
	State        State
}

// flushEvery and flushInterval bound how often a running Search notifies
// its caller of new matches (spec.md 4.F: "every K matches or every T
// milliseconds, whichever first").
const (
	flushEvery    = 32
	flushInterval = 100 * time.Millisecond
)

// Search is one scan in progress (or finished) against a single file.
// Grounded on the teacher's GlobalSearcher.SearchRecursiveAsync
// (internal/search/global_search_async.go): a background goroutine walks
// input sequentially, appends to a results buffer under a mutex, and
// flushes periodically via a callback; cancellation uses a generation
// token rather than relying solely on context cancellation, so a stale
// goroutine's late writes are recognizable and ignorable.
type Search struct {
	FileID    int
	Regex     *regexp.Regexp
	FromLine  int
	Direction Direction

	mu      sync.Mutex
	matches []Match
	scanned int
	state   State
	err     error
}

func (s *Search) snapshot() ([]Match, Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Match, len(s.matches))
	copy(out, s.matches)
	return out, Progress{LinesScanned: s.scanned, MatchCount: len(s.matches), State: s.state}
}

// Matches returns a copy of the current match list, ordered by line index
// then byte offset (spec.md 3: "Matches are kept in line-index order").
func (s *Search) Matches() []Match {
	m, _ := s.snapshot()
	return sortMatches(m)
}

// Poll reports scan progress so far.
func (s *Search) Poll() Progress {
	_, p := s.snapshot()
	return p
}

// Err returns the error that ended the search, if State is Error.
func (s *Search) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Search) appendMatch(m Match) {
	s.mu.Lock()
	s.matches = append(s.matches, m)
	s.mu.Unlock()
}

func (s *Search) setState(st State, err error) {
	s.mu.Lock()
	s.state = st
	s.err = err
	s.mu.Unlock()
}

func (s *Search) bumpScanned() {
	s.mu.Lock()
	s.scanned++
	s.mu.Unlock()
}

// Searcher owns at most one in-flight Search at a time and cancels the
// previous one whenever a new one starts, per spec.md 4.F's start
// contract.
type Searcher struct {
	cancelMu sync.Mutex
	cancel   context.CancelFunc
	token    int
}

// NewSearcher creates an idle Searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// Start cancels any in-flight search and begins a new one over f, walking
// lines from fromLine in dir, notifying onProgress (which may be nil)
// whenever new matches are flushed or the search ends.
func (sr *Searcher) Start(f file.Backend, re *regexp.Regexp, fromLine int, dir Direction, onProgress func()) *Search {
	sr.cancelMu.Lock()
	if sr.cancel != nil {
		sr.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	sr.cancel = cancel
	sr.token++
	myToken := sr.token
	sr.cancelMu.Unlock()

	s := &Search{FileID: f.ID(), Regex: re, FromLine: fromLine, Direction: dir, state: Running}
	go sr.run(ctx, myToken, s, f, onProgress)
	return s
}

// Cancel stops whatever search is currently in flight, if any.
func (sr *Searcher) Cancel() {
	sr.cancelMu.Lock()
	defer sr.cancelMu.Unlock()
	if sr.cancel != nil {
		sr.cancel()
		sr.cancel = nil
	}
}

func (sr *Searcher) isCurrent(token int) bool {
	sr.cancelMu.Lock()
	defer sr.cancelMu.Unlock()
	return sr.token == token
}

func (sr *Searcher) run(ctx context.Context, token int, s *Search, f file.Backend, onProgress func()) {
	defer func() {
		if onProgress != nil {
			onProgress()
		}
	}()

	line := s.FromLine
	step := 1
	if s.Direction == Backward {
		step = -1
	}

	lastFlush := time.Now()
	sinceFlush := 0

	for {
		select {
		case <-ctx.Done():
			s.setState(Cancelled, nil)
			return
		default:
		}

		if line < 0 {
			break
		}
		if line >= f.Lines() {
			if f.WaitingForData() {
				select {
				case <-ctx.Done():
					s.setState(Cancelled, nil)
					return
				case <-f.Changed():
					continue
				}
			}
			break
		}

		// Matched byte offsets are reported as indices into the line's
		// raw bytes (f.LineBytes), so matching runs against those raw
		// bytes directly rather than any normalized copy of them.
		text := f.LineBytes(line)
		for _, loc := range s.Regex.FindAllIndex(text, -1) {
			s.appendMatch(Match{Line: line, Start: loc[0], End: loc[1]})
			sinceFlush++
		}
		s.bumpScanned()
		line += step

		if sinceFlush >= flushEvery || time.Since(lastFlush) >= flushInterval {
			if !sr.isCurrent(token) {
				s.setState(Cancelled, nil)
				return
			}
			if onProgress != nil {
				onProgress()
			}
			sinceFlush = 0
			lastFlush = time.Now()
		}
	}

	if !sr.isCurrent(token) {
		s.setState(Cancelled, nil)
		return
	}
	s.setState(Complete, nil)
}

// sortMatches returns matches ordered by (line, byte-offset), the tie-
// break the navigation helpers rely on.
func sortMatches(matches []Match) []Match {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Line != matches[j].Line {
			return matches[i].Line < matches[j].Line
		}
		return matches[i].Start < matches[j].Start
	})
	return matches
}

// First returns the earliest match, if any.
func First(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	matches = sortMatches(append([]Match(nil), matches...))
	return matches[0], true
}

// Last returns the latest match, if any.
func Last(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	matches = sortMatches(append([]Match(nil), matches...))
	return matches[len(matches)-1], true
}

// NextAfter returns the first match strictly after (line, col).
func NextAfter(matches []Match, line, col int) (Match, bool) {
	matches = sortMatches(append([]Match(nil), matches...))
	for _, m := range matches {
		if m.Line > line || (m.Line == line && m.Start > col) {
			return m, true
		}
	}
	return Match{}, false
}

// PreviousBefore returns the last match strictly before (line, col).
func PreviousBefore(matches []Match, line, col int) (Match, bool) {
	matches = sortMatches(append([]Match(nil), matches...))
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m.Line < line || (m.Line == line && m.Start < col) {
			return m, true
		}
	}
	return Match{}, false
}

// NextLineWithMatch returns the first match on a line strictly after line.
func NextLineWithMatch(matches []Match, line int) (Match, bool) {
	matches = sortMatches(append([]Match(nil), matches...))
	for _, m := range matches {
		if m.Line > line {
			return m, true
		}
	}
	return Match{}, false
}

// PreviousLineWithMatch returns the last match on a line strictly before line.
func PreviousLineWithMatch(matches []Match, line int) (Match, bool) {
	matches = sortMatches(append([]Match(nil), matches...))
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Line < line {
			return matches[i], true
		}
	}
	return Match{}, false
}
