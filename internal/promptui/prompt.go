// Package promptui implements the modal line editor used for search,
// goto, and command prompts (spec.md 4.I).
package promptui

import "unicode/utf8"

// Kind identifies what a prompt's accepted text means.
type Kind int

const (
	None Kind = iota
	GoToLine
	SearchFromStart
	SearchForwards
	SearchBackwards
)

// Prompt is a single-line, rune-addressable text editor with a fixed
// display prefix (e.g. "/", ":", "Goto: ").
type Prompt struct {
	Kind   Kind
	Prefix string

	runes  []rune
	cursor int // index into runes, 0..len(runes)
}

// Open resets the prompt to an empty line for the given kind.
func (p *Prompt) Open(kind Kind, prefix string) {
	p.Kind = kind
	p.Prefix = prefix
	p.runes = p.runes[:0]
	p.cursor = 0
}

// Active reports whether a prompt is currently open.
func (p *Prompt) Active() bool { return p.Kind != None }

// Text returns the current entered text.
func (p *Prompt) Text() string { return string(p.runes) }

// Cursor returns the cursor's rune index.
func (p *Prompt) Cursor() int { return p.cursor }

// Insert adds a printable rune at the cursor.
func (p *Prompt) Insert(r rune) {
	if r == utf8.RuneError {
		return
	}
	p.runes = append(p.runes, 0)
	copy(p.runes[p.cursor+1:], p.runes[p.cursor:])
	p.runes[p.cursor] = r
	p.cursor++
}

// Backspace deletes the rune before the cursor.
func (p *Prompt) Backspace() {
	if p.cursor == 0 {
		return
	}
	p.runes = append(p.runes[:p.cursor-1], p.runes[p.cursor:]...)
	p.cursor--
}

// DeleteWordBack deletes the word before the cursor, stopping at the
// first preceding run of non-space characters.
func (p *Prompt) DeleteWordBack() {
	i := p.cursor
	for i > 0 && p.runes[i-1] == ' ' {
		i--
	}
	for i > 0 && p.runes[i-1] != ' ' {
		i--
	}
	p.runes = append(p.runes[:i], p.runes[p.cursor:]...)
	p.cursor = i
}

// SetText replaces the line with text, placing the cursor at its end.
// Used to recall a history entry into an open prompt.
func (p *Prompt) SetText(text string) {
	p.runes = []rune(text)
	p.cursor = len(p.runes)
}

// CursorLeft moves the cursor one rune left, clamped at 0.
func (p *Prompt) CursorLeft() {
	if p.cursor > 0 {
		p.cursor--
	}
}

// CursorRight moves the cursor one rune right, clamped at len(runes).
func (p *Prompt) CursorRight() {
	if p.cursor < len(p.runes) {
		p.cursor++
	}
}

// Accept closes the prompt and returns its final text.
func (p *Prompt) Accept() string {
	text := p.Text()
	p.Kind = None
	return text
}

// Cancel closes the prompt, discarding its text.
func (p *Prompt) Cancel() {
	p.Kind = None
	p.runes = p.runes[:0]
	p.cursor = 0
}
