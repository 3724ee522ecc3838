// Package line implements the Line component: one logical line of a file,
// lazily parsed into styled, width-measured terminal cells, with support
// for wrapping, a line-number gutter, and search-match overlays.
package line

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/streampager/streampager/internal/overstrike"
)

// WrapMode selects how a logical line is split across terminal rows.
type WrapMode int

const (
	// WrapNone truncates a line at the viewport width; horizontal
	// scrolling reveals the rest.
	WrapNone WrapMode = iota
	// WrapChar breaks at any cell boundary once a row is full.
	WrapChar
	// WrapWord prefers to break at whitespace, falling back to
	// character wrap when a single token exceeds a row's width.
	WrapWord
)

// ByteRange is a [Start, End) byte range within a line's decoded bytes,
// used to describe a search match to highlight.
type ByteRange struct {
	Start, End int
}

// Cell is one grapheme cluster with its display width and style.
type Cell struct {
	Text      string
	Width     int
	Style     tcell.Style
	ByteStart int
	ByteEnd   int
}

// RenderFlags controls one Render call.
type RenderFlags struct {
	ShowLineNumber bool
	GutterWidth    int // 0 selects a minimal width for this line's own number
	Matches        []ByteRange
	SelectedMatch  int // index into Matches, -1 for none
}

var (
	matchStyle    = tcell.StyleDefault.Reverse(true)
	selectedStyle = tcell.StyleDefault.Reverse(true).Bold(true)
)

// Line is one newline-delimited record of a file. It is immutable once
// constructed except for the lazily computed, memoized cell parse.
type Line struct {
	FileID int
	Index  int // 0-based line index within the file

	raw []byte

	once     sync.Once
	cells    []Cell
	rowCache map[rowCacheKey][]wrapRowSpan
	rowMu    sync.Mutex
}

type rowCacheKey struct {
	width int
	mode  WrapMode
}

// New constructs a Line over raw bytes (the line's content, excluding the
// trailing newline).
func New(fileID, index int, raw []byte) *Line {
	return &Line{FileID: fileID, Index: index, raw: raw}
}

// Raw returns the line's original, undecoded bytes.
func (l *Line) Raw() []byte { return l.raw }

func (l *Line) cellSlice() []Cell {
	l.once.Do(func() {
		l.cells = parseCells(l.decodedBytes())
	})
	return l.cells
}

func (l *Line) decodedBytes() []byte {
	for _, b := range l.raw {
		if b == '\b' {
			return overstrike.Decode(l.raw)
		}
	}
	return l.raw
}

// WrapRows returns the number of display rows this line occupies at the
// given width and wrap mode. Always at least 1.
func (l *Line) WrapRows(width int, mode WrapMode) int {
	return len(l.wrapSpans(width, mode))
}

func (l *Line) wrapSpans(width int, mode WrapMode) []wrapRowSpan {
	key := rowCacheKey{width: width, mode: mode}
	l.rowMu.Lock()
	defer l.rowMu.Unlock()
	if l.rowCache == nil {
		l.rowCache = make(map[rowCacheKey][]wrapRowSpan)
	}
	if spans, ok := l.rowCache[key]; ok {
		return spans
	}
	spans := computeWrapRows(l.cellSlice(), width, mode)
	l.rowCache[key] = spans
	return spans
}

type wrapRowSpan struct{ start, end int } // cell index range [start, end)

func computeWrapRows(cells []Cell, width int, mode WrapMode) []wrapRowSpan {
	if width <= 0 || mode == WrapNone || len(cells) == 0 {
		return []wrapRowSpan{{0, len(cells)}}
	}

	var rows []wrapRowSpan
	i := 0
	for i < len(cells) {
		col := 0
		end := i
		lastSpace := -1
		for end < len(cells) {
			w := cells[end].Width
			if col+w > width {
				break
			}
			col += w
			if mode == WrapWord && isBlank(cells[end].Text) {
				lastSpace = end
			}
			end++
		}
		if end == i {
			// A single cell wider than the row; still make progress.
			end = i + 1
		}
		if mode == WrapWord && end < len(cells) && lastSpace >= i && lastSpace+1 < end {
			end = lastSpace + 1
		}
		rows = append(rows, wrapRowSpan{i, end})
		i = end
	}
	if len(rows) == 0 {
		rows = append(rows, wrapRowSpan{0, 0})
	}
	return rows
}

func isBlank(s string) bool {
	return s == " " || s == "\t"
}

// Render produces one terminal row's worth of styled cells: wrap row
// wrapRow of this line, clipped to width content columns starting
// at horizontal offset startCol (startCol applies only under WrapNone;
// other modes ignore it since every row already starts at column 0).
func (l *Line) Render(width, startCol int, mode WrapMode, wrapRow int, flags RenderFlags) []Cell {
	cells := l.cellSlice()
	spans := l.wrapSpans(width, mode)
	if wrapRow < 0 || wrapRow >= len(spans) {
		return l.gutter(flags, false, nil)
	}
	span := spans[wrapRow]
	rowCells := cells[span.start:span.end]

	if mode == WrapNone {
		rowCells = clipHorizontal(rowCells, startCol, width)
	}

	rowCells = applyMatchOverlay(rowCells, flags.Matches, flags.SelectedMatch)

	out := l.gutter(flags, wrapRow == 0, nil)
	out = append(out, rowCells...)
	return out
}

func (l *Line) gutter(flags RenderFlags, showNumber bool, out []Cell) []Cell {
	if !flags.ShowLineNumber {
		return out
	}
	gw := flags.GutterWidth
	if gw <= 0 {
		gw = len(strconv.Itoa(l.Index+1)) + 1
	}
	if !showNumber {
		out = append(out, Cell{Text: " ", Width: 1})
		return append(out, padCells(gw-1)...)
	}
	label := fmt.Sprintf("%*d ", gw-1, l.Index+1)
	for _, r := range label {
		out = append(out, Cell{Text: string(r), Width: 1})
	}
	return out
}

func padCells(n int) []Cell {
	if n <= 0 {
		return nil
	}
	out := make([]Cell, n)
	for i := range out {
		out[i] = Cell{Text: " ", Width: 1}
	}
	return out
}

// clipHorizontal drops cells up to column startCol and truncates at width
// content columns, replacing any cell that would straddle either edge with
// a single blank column.
func clipHorizontal(cells []Cell, startCol, width int) []Cell {
	if startCol <= 0 && width <= 0 {
		return cells
	}
	var out []Cell
	col := 0
	for _, c := range cells {
		nextCol := col + c.Width
		switch {
		case nextCol <= startCol:
			// entirely before the window
		case col < startCol && nextCol > startCol:
			// straddles the left edge
			out = append(out, Cell{Text: " ", Width: nextCol - startCol, Style: c.Style, ByteStart: c.ByteStart, ByteEnd: c.ByteEnd})
		default:
			out = append(out, c)
		}
		col = nextCol
		if width > 0 && col-startCol >= width {
			break
		}
	}
	if width > 0 {
		out = clipTrailing(out, width)
	}
	return out
}

func clipTrailing(cells []Cell, width int) []Cell {
	col := 0
	for i, c := range cells {
		if col+c.Width > width {
			remaining := width - col
			if remaining <= 0 {
				return cells[:i]
			}
			trimmed := append([]Cell{}, cells[:i]...)
			trimmed = append(trimmed, Cell{Text: " ", Width: remaining, Style: c.Style, ByteStart: c.ByteStart, ByteEnd: c.ByteEnd})
			return trimmed
		}
		col += c.Width
	}
	return cells
}

func applyMatchOverlay(cells []Cell, ranges []ByteRange, selected int) []Cell {
	if len(ranges) == 0 {
		return cells
	}
	out := make([]Cell, len(cells))
	copy(out, cells)
	for i := range out {
		for ri, r := range ranges {
			if out[i].ByteStart >= r.Start && out[i].ByteStart < r.End {
				if ri == selected {
					out[i].Style = selectedStyle
				} else {
					out[i].Style = matchStyle
				}
				break
			}
		}
	}
	return out
}

func parseCells(data []byte) []Cell {
	text := string(data)
	var cells []Cell
	style := tcell.StyleDefault

	for i := 0; i < len(text); {
		if text[i] == '\x1b' {
			consumed, newStyle, applied := parseEscape(text[i:], style)
			if applied {
				style = newStyle
			}
			i += consumed
			continue
		}

		g := uniseg.NewGraphemes(text[i:])
		if !g.Next() {
			break
		}
		cluster := g.Str()
		w := runewidth.StringWidth(cluster)
		if w <= 0 {
			w = 1
		}
		cells = append(cells, Cell{
			Text:      cluster,
			Width:     w,
			Style:     style,
			ByteStart: i,
			ByteEnd:   i + len(cluster),
		})
		i += len(cluster)
	}
	return cells
}

// parseEscape recognizes a CSI SGR sequence, an OSC sequence (discarded
// whole), or any other escape sequence (discarded as a single unit), and
// returns how many bytes of text it consumed.
func parseEscape(text string, style tcell.Style) (consumed int, newStyle tcell.Style, applied bool) {
	if len(text) < 2 {
		return len(text), style, false
	}
	switch text[1] {
	case '[':
		j := 2
		for j < len(text) {
			c := text[j]
			if c >= 0x40 && c <= 0x7e {
				j++
				break
			}
			j++
		}
		if j > len(text) {
			j = len(text)
		}
		if j >= 3 && text[j-1] == 'm' {
			params := parseSGRParams(text[2 : j-1])
			return j, applySGR(style, params), true
		}
		return j, style, false
	case ']':
		j := 2
		for j < len(text) {
			if text[j] == 0x07 {
				j++
				break
			}
			if text[j] == 0x1b && j+1 < len(text) && text[j+1] == '\\' {
				j += 2
				break
			}
			j++
		}
		return j, style, false
	default:
		return 2, style, false
	}
}

func parseSGRParams(s string) []int {
	if s == "" {
		return []int{0}
	}
	parts := strings.Split(s, ";")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			out = append(out, 0)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}

func applySGR(style tcell.Style, params []int) tcell.Style {
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			style = tcell.StyleDefault
		case p == 1:
			style = style.Bold(true)
		case p == 4:
			style = style.Underline(true)
		case p == 7:
			style = style.Reverse(true)
		case p == 22:
			style = style.Bold(false)
		case p == 24:
			style = style.Underline(false)
		case p == 27:
			style = style.Reverse(false)
		case p == 39:
			style = style.Foreground(tcell.ColorDefault)
		case p == 49:
			style = style.Background(tcell.ColorDefault)
		case p >= 30 && p <= 37:
			style = style.Foreground(tcell.PaletteColor(p - 30))
		case p >= 40 && p <= 47:
			style = style.Background(tcell.PaletteColor(p - 40))
		case p >= 90 && p <= 97:
			style = style.Foreground(tcell.PaletteColor(p - 90 + 8))
		case p >= 100 && p <= 107:
			style = style.Background(tcell.PaletteColor(p - 100 + 8))
		case p == 38 || p == 48:
			var col tcell.Color
			var ok bool
			i, col, ok = parseExtendedColor(params, i)
			if ok {
				if p == 38 {
					style = style.Foreground(col)
				} else {
					style = style.Background(col)
				}
			}
		}
	}
	return style
}

// parseExtendedColor parses a 256-color (38/48;5;N) or truecolor
// (38/48;2;R;G;B) SGR parameter sequence starting at params[i] (the 38/48
// itself), returning the updated index to continue scanning from.
func parseExtendedColor(params []int, i int) (int, tcell.Color, bool) {
	if i+1 >= len(params) {
		return i, tcell.ColorDefault, false
	}
	switch params[i+1] {
	case 5:
		if i+2 >= len(params) {
			return i, tcell.ColorDefault, false
		}
		return i + 2, tcell.PaletteColor(params[i+2]), true
	case 2:
		if i+4 >= len(params) {
			return i, tcell.ColorDefault, false
		}
		r, g, b := params[i+2], params[i+3], params[i+4]
		return i + 4, tcell.NewRGBColor(int32(r), int32(g), int32(b)), true
	default:
		return i, tcell.ColorDefault, false
	}
}
