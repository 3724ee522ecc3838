// Package refresh implements the Refresh Set: the record of which parts
// of a screen's frame are dirty and must be redrawn on the next render.
package refresh

import "sort"

// Flag identifies one of the non-body regions of a frame.
type Flag int

const (
	Status Flag = iota
	Progress
	Overlay
)

// Set tracks dirty screen rows plus flags for non-body regions. A "full"
// mark dominates individual row marks (spec.md 3: "a 'full' flag
// dominates individual entries"). Grounded on the original's Refresh
// enum (refresh.rs: None/Range/Lines/All), re-expressed as a single
// mutable set rather than a sum type, since Go has no compact tagged
// union and the set already degrades to "nothing marked" when empty.
type Set struct {
	full  bool
	rows  map[int]struct{}
	flags map[Flag]bool
}

// New returns an empty Set.
func New() *Set {
	return &Set{rows: make(map[int]struct{}), flags: make(map[Flag]bool)}
}

// MarkRow marks a single row dirty.
func (s *Set) MarkRow(row int) {
	if s.full {
		return
	}
	s.rows[row] = struct{}{}
}

// MarkRange marks rows [start, end) dirty.
func (s *Set) MarkRange(start, end int) {
	if s.full {
		return
	}
	for r := start; r < end; r++ {
		s.rows[r] = struct{}{}
	}
}

// MarkFlag marks a non-body region dirty.
func (s *Set) MarkFlag(f Flag) {
	s.flags[f] = true
}

// MarkAll marks the entire screen dirty, dominating any row-level marks.
func (s *Set) MarkAll() {
	s.full = true
	for f := range s.flags {
		s.flags[f] = true
	}
	s.flags[Status] = true
	s.flags[Progress] = true
	s.flags[Overlay] = true
}

// IsFull reports whether the whole screen is marked dirty.
func (s *Set) IsFull() bool { return s.full }

// HasFlag reports whether a non-body region is dirty.
func (s *Set) HasFlag(f Flag) bool { return s.flags[f] }

// DirtyRows returns the sorted list of individually dirty rows. It is
// meaningless (and returns nil) when IsFull is true; callers must check
// IsFull first and redraw every row themselves in that case.
func (s *Set) DirtyRows() []int {
	if s.full {
		return nil
	}
	rows := make([]int, 0, len(s.rows))
	for r := range s.rows {
		rows = append(rows, r)
	}
	sort.Ints(rows)
	return rows
}

// Clear discards all marks.
func (s *Set) Clear() {
	s.full = false
	s.rows = make(map[int]struct{})
	s.flags = make(map[Flag]bool)
}

// Union merges other's marks into s, the dominant combinator the display
// controller uses to fold per-frame inputs before rendering once.
func (s *Set) Union(other *Set) {
	if other == nil {
		return
	}
	if other.full {
		s.MarkAll()
		return
	}
	for r := range other.rows {
		s.MarkRow(r)
	}
	for f, v := range other.flags {
		if v {
			s.MarkFlag(f)
		}
	}
}

// RotateUp shifts every dirty row toward 0 by step, dropping rows that
// roll past 0. Used when the viewport scrolls down by step lines and the
// renderer can reuse already-drawn rows instead of redrawing the whole
// body. Grounded on the original's Refresh::rotate_range_up.
func (s *Set) RotateUp(step int) {
	if s.full || step <= 0 {
		return
	}
	shifted := make(map[int]struct{}, len(s.rows))
	for r := range s.rows {
		if r >= step {
			shifted[r-step] = struct{}{}
		}
	}
	s.rows = shifted
}

// RotateDown shifts every dirty row away from 0 by step. Grounded on the
// original's Refresh::rotate_range_down.
func (s *Set) RotateDown(step int) {
	if s.full || step <= 0 {
		return
	}
	shifted := make(map[int]struct{}, len(s.rows))
	for r := range s.rows {
		shifted[r+step] = struct{}{}
	}
	s.rows = shifted
}
