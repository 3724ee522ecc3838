// Package keymap holds the resolved (context, key-sequence) -> command
// mapping the core pager consumes. Parsing an external keymap file's
// grammar is explicitly out of scope (spec.md 9: "out of scope"); this
// package only defines the resolved table shape and the built-in
// default, grounded on the original's keymaps/default.rs.
package keymap

import "github.com/gdamore/tcell/v2"

// Context is one of the three input-routing states a Screen can be in.
type Context string

const (
	Normal Context = "normal"
	PromptCtx Context = "prompt"
	HelpCtx Context = "help"
)

// Binding is a resolved command plus its numeric argument, if any (e.g.
// "scroll up 1 line" vs "scroll up 1/4 screen").
type Binding struct {
	Command string
	Arg     int
}

// Map is a fully-resolved (context, key-sequence) -> Binding table.
// Unmapped keys produce no effect (spec.md 4.I).
type Map map[Context]map[string]Binding

// Lookup returns the binding for a key sequence in a context, if any.
func (m Map) Lookup(ctx Context, seq string) (Binding, bool) {
	b, ok := m[ctx][seq]
	return b, ok
}

// KeySequence canonicalizes a tcell key event into the string form used
// as Map keys.
func KeySequence(ev *tcell.EventKey) string {
	mod := ""
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		mod = "Ctrl+"
	} else if ev.Modifiers()&tcell.ModShift != 0 {
		mod = "Shift+"
	}

	if ev.Key() == tcell.KeyRune {
		return mod + string(ev.Rune())
	}

	if name, ok := namedKeys[ev.Key()]; ok {
		return mod + name
	}
	return mod + "Unknown"
}

var namedKeys = map[tcell.Key]string{
	tcell.KeyUp:        "Up",
	tcell.KeyDown:      "Down",
	tcell.KeyLeft:      "Left",
	tcell.KeyRight:     "Right",
	tcell.KeyHome:      "Home",
	tcell.KeyEnd:       "End",
	tcell.KeyPgUp:      "PageUp",
	tcell.KeyPgDn:      "PageDown",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyEscape:    "Escape",
	tcell.KeyEnter:     "Enter",
	tcell.KeyDelete:    "Delete",
	tcell.KeyTab:       "Tab",
	tcell.KeyCtrlC:     "Ctrl+C",
	tcell.KeyCtrlU:     "Ctrl+U",
	tcell.KeyCtrlD:     "Ctrl+D",
	tcell.KeyCtrlB:     "Ctrl+B",
	tcell.KeyCtrlF:     "Ctrl+F",
}

// Default returns the built-in keymap, the Go transcription of the
// original's default keymap (keymaps/default.rs).
func Default() Map {
	normal := map[string]Binding{
		"Ctrl+C": {Command: "Quit"},
		"q":      {Command: "Quit"},
		"Escape": {Command: "Cancel"},

		"Up":         {Command: "ScrollUpLines", Arg: 1},
		"k":          {Command: "ScrollUpLines", Arg: 1},
		"Down":       {Command: "ScrollDownLines", Arg: 1},
		"j":          {Command: "ScrollDownLines", Arg: 1},
		"Shift+Up":   {Command: "ScrollUpScreenFraction", Arg: 4},
		"Shift+Down": {Command: "ScrollDownScreenFraction", Arg: 4},
		"Ctrl+U":     {Command: "ScrollUpScreenFraction", Arg: 2},
		"Ctrl+D":     {Command: "ScrollDownScreenFraction", Arg: 2},
		"PageUp":     {Command: "ScrollUpScreenFraction", Arg: 1},
		"Backspace":  {Command: "ScrollUpScreenFraction", Arg: 1},
		"b":          {Command: "ScrollUpScreenFraction", Arg: 1},
		"Ctrl+B":     {Command: "ScrollUpScreenFraction", Arg: 1},
		"PageDown":   {Command: "ScrollDownScreenFraction", Arg: 1},
		" ":          {Command: "ScrollDownScreenFraction", Arg: 1},
		"f":          {Command: "ScrollDownScreenFraction", Arg: 1},
		"Ctrl+F":     {Command: "ScrollDownScreenFraction", Arg: 1},
		"Home":       {Command: "ScrollToTop"},
		"g":          {Command: "ScrollToTop"},
		"End":        {Command: "ScrollToBottom"},
		"G":          {Command: "ScrollToBottom"},

		"Left":        {Command: "ScrollLeftColumns", Arg: 4},
		"Right":       {Command: "ScrollRightColumns", Arg: 4},
		"Shift+Left":  {Command: "ScrollLeftScreenFraction", Arg: 4},
		"Shift+Right": {Command: "ScrollRightScreenFraction", Arg: 4},

		"[": {Command: "PreviousFile"},
		"]": {Command: "NextFile"},
		"?": {Command: "Help"},
		"#": {Command: "ToggleLineNumbers"},
		`\`: {Command: "ToggleLineWrapping"},
		":": {Command: "PromptGoToLine"},
		"/": {Command: "PromptSearchFromStart"},
		">": {Command: "PromptSearchForwards"},
		"<": {Command: "PromptSearchBackwards"},
		",": {Command: "PreviousMatch"},
		".": {Command: "NextMatch"},
		"p": {Command: "PreviousMatchLine"},
		"N": {Command: "PreviousMatchLine"},
		"n": {Command: "NextMatchLine"},
		"(": {Command: "FirstMatch"},
		")": {Command: "LastMatch"},
	}

	prompt := map[string]Binding{
		"Enter":     {Command: "PromptAccept"},
		"Escape":    {Command: "PromptCancel"},
		"Backspace": {Command: "PromptBackspace"},
		"Left":      {Command: "PromptCursorLeft"},
		"Right":     {Command: "PromptCursorRight"},
		"Up":        {Command: "PromptHistoryPrevious"},
		"Down":      {Command: "PromptHistoryNext"},
	}

	help := map[string]Binding{
		"Escape": {Command: "HelpDismiss"},
		"q":      {Command: "HelpDismiss"},
		"?":      {Command: "HelpDismiss"},
	}

	return Map{Normal: normal, PromptCtx: prompt, HelpCtx: help}
}
