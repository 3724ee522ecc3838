// Package displaycontrol implements the Display Controller: the
// top-level event loop that multiplexes terminal input, file-changed
// notifications, search progress, resize, and timer events across the
// Screens it owns (spec.md 4.J).
package displaycontrol

import (
	"regexp"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/streampager/streampager/internal/command"
	"github.com/streampager/streampager/internal/file"
	"github.com/streampager/streampager/internal/keymap"
	"github.com/streampager/streampager/internal/line"
	"github.com/streampager/streampager/internal/linecache"
	"github.com/streampager/streampager/internal/promptui"
	"github.com/streampager/streampager/internal/screenview"
	"github.com/streampager/streampager/internal/search"
)

const spinnerInterval = 150 * time.Millisecond

// Controller owns every Screen in the program and drives the tcell event
// loop. Grounded on the teacher's Application.Run (internal/app/loop.go):
// a goroutine feeds screen.PollEvent() into a channel, the main loop
// selects over that plus timers, and a render is issued whenever state
// changes. Generalized from a single-panel file browser to N per-file
// Screens with file-changed and search-progress as additional event
// sources.
type Controller struct {
	screen tcell.Screen
	cache  *linecache.Cache
	keymap keymap.Map

	files   []file.Backend
	screens []*screenview.Screen
	current int

	prompt      promptui.Prompt
	promptKind  promptui.Kind
	promptErr   string
	helpVisible bool
	history     map[promptui.Kind]*promptui.History

	searcher *search.Searcher
	redrawCh chan struct{}
	quit     bool
}

// New creates a Controller bound to an initialized tcell.Screen.
func New(screen tcell.Screen, km keymap.Map) *Controller {
	return &Controller{
		screen:   screen,
		cache:    linecache.New(4096),
		keymap:   km,
		history:  make(map[promptui.Kind]*promptui.History),
		searcher: search.NewSearcher(),
		redrawCh: make(chan struct{}, 1),
	}
}

// AddFile registers a file (and its optional error-companion file) as a
// new Screen, returning the screen's index.
func (c *Controller) AddFile(f file.Backend, errFile file.Backend) int {
	idx := len(c.files)
	c.files = append(c.files, f)
	s := screenview.New(idx, f, c.cache)
	s.ErrorFile = errFile
	c.screens = append(c.screens, s)
	return idx
}

// AttachProgress attaches a progress-page file to the Screen at idx, so
// its latest page renders at the bottom of that Screen's frame (spec.md
// 4.G: "optionally the most recent progress page at the very bottom").
func (c *Controller) AttachProgress(idx int, progressFile file.Backend) {
	if idx < 0 || idx >= len(c.screens) {
		return
	}
	c.screens[idx].ProgressFile = progressFile
	c.files = append(c.files, progressFile)
}

func (c *Controller) currentScreen() *screenview.Screen {
	return c.screens[c.current]
}

func (c *Controller) requestRedraw() {
	select {
	case c.redrawCh <- struct{}{}:
	default:
	}
}

// Run drives the event loop until a quit command is issued, restoring
// nothing on its own: the caller is responsible for tearing the tcell
// screen down afterward (spec.md 7: terminal restoration happens at the
// controller boundary, on the way out).
func (c *Controller) Run() error {
	w, h := c.screen.Size()
	for _, s := range c.screens {
		s.SetSize(h, w)
	}
	c.draw()

	eventCh := make(chan tcell.Event)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			eventCh <- ev
		}
	}()

	changed := c.watchFiles()

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for !c.quit {
		select {
		case ev := <-eventCh:
			c.handleEvent(ev)
		case <-changed:
			c.draw()
		case <-c.redrawCh:
			c.draw()
		case <-ticker.C:
			if c.anyFileWaiting() {
				for _, s := range c.screens {
					s.Tick()
				}
				c.draw()
			}
		}
	}
	return nil
}

func (c *Controller) anyFileWaiting() bool {
	for _, f := range c.files {
		if f.WaitingForData() {
			return true
		}
	}
	return false
}

// watchFiles forwards every file's Changed() signal onto one coalesced
// channel the event loop selects on.
func (c *Controller) watchFiles() <-chan struct{} {
	out := make(chan struct{}, 1)
	notify := func() {
		select {
		case out <- struct{}{}:
		default:
		}
	}
	for _, f := range c.files {
		go func(f file.Backend) {
			for range f.Changed() {
				notify()
			}
		}(f)
	}
	return out
}

func (c *Controller) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		for _, s := range c.screens {
			s.SetSize(h, w)
		}
		c.draw()
	case *tcell.EventKey:
		c.handleKey(ev)
		c.draw()
	}
}

func (c *Controller) context() keymap.Context {
	switch {
	case c.helpVisible:
		return keymap.HelpCtx
	case c.prompt.Active():
		return keymap.PromptCtx
	default:
		return keymap.Normal
	}
}

func (c *Controller) handleKey(ev *tcell.EventKey) {
	ctx := c.context()

	if ctx == keymap.PromptCtx && ev.Key() == tcell.KeyRune {
		c.prompt.Insert(ev.Rune())
		return
	}

	seq := keymap.KeySequence(ev)
	b, ok := c.keymap.Lookup(ctx, seq)
	if !ok {
		return
	}

	switch ctx {
	case keymap.PromptCtx:
		c.handlePromptCommand(b.Command)
	case keymap.HelpCtx:
		if b.Command == "HelpDismiss" {
			c.helpVisible = false
		}
	default:
		command.Execute(b.Command, b.Arg, c.target())
	}
}

func (c *Controller) handlePromptCommand(cmd string) {
	switch cmd {
	case "PromptAccept":
		kind := c.promptKind
		text := c.prompt.Accept()
		c.historyFor(kind).Record(text)
		c.onPromptAccept(kind, text)
	case "PromptCancel":
		c.prompt.Cancel()
	case "PromptBackspace":
		c.prompt.Backspace()
	case "PromptCursorLeft":
		c.prompt.CursorLeft()
	case "PromptCursorRight":
		c.prompt.CursorRight()
	case "PromptHistoryPrevious":
		if text, ok := c.historyFor(c.promptKind).Previous(c.prompt.Text()); ok {
			c.prompt.SetText(text)
		}
	case "PromptHistoryNext":
		if text, ok := c.historyFor(c.promptKind).Next(); ok {
			c.prompt.SetText(text)
		}
	}
}

// historyFor returns the in-session recall ring buffer for kind,
// creating it on first use (spec.md's Non-goals exclude persisting
// history across sessions; nothing here is written to disk).
func (c *Controller) historyFor(kind promptui.Kind) *promptui.History {
	h, ok := c.history[kind]
	if !ok {
		h = promptui.NewHistory()
		c.history[kind] = h
	}
	return h
}

func (c *Controller) openPrompt(kind promptui.Kind, prefix string) {
	c.promptKind = kind
	c.promptErr = ""
	c.prompt.Open(kind, prefix)
	c.historyFor(kind).Reset()
}

func (c *Controller) onPromptAccept(kind promptui.Kind, text string) {
	switch kind {
	case promptui.GoToLine:
		if n, err := strconv.Atoi(text); err == nil {
			c.currentScreen().GoToLine(n - 1)
		}
	case promptui.SearchFromStart, promptui.SearchForwards, promptui.SearchBackwards:
		c.startSearch(kind, text)
	}
}

func (c *Controller) startSearch(kind promptui.Kind, pattern string) {
	// Normalize the typed pattern to NFC before compiling, so an IME or
	// terminal that delivers a decomposed accented character still
	// compiles the same regex a precomposed one would (teacher:
	// internal/state/load.go's normalize-before-compare texture). This
	// only touches the pattern text, never a matched line's bytes, so it
	// can't disturb the byte offsets matches are reported at.
	re, err := regexp.Compile(norm.NFC.String(pattern))
	if err != nil {
		// Regex errors are reported without changing screen state
		// (spec.md 7): keep the diagnostic, leave navigation untouched.
		c.promptErr = err.Error()
		return
	}

	s := c.currentScreen()
	from := 0
	dir := search.Forward
	switch kind {
	case promptui.SearchForwards:
		from = s.Top
	case promptui.SearchBackwards:
		from = s.Top
		dir = search.Backward
	}

	srch := c.searcher.Start(c.files[c.current], re, from, dir, c.requestRedraw)
	s.AttachSearch(srch)
}

func (c *Controller) target() *command.Target {
	return &command.Target{
		Screen: c.currentScreen(),
		RequestQuit: func() {
			c.quit = true
		},
		RequestHelp: func() {
			c.helpVisible = true
		},
		RequestCancel: func() {
			c.searcher.Cancel()
		},
		RequestPreviousFile: func() {
			c.cycleFile(-1)
		},
		RequestNextFile: func() {
			c.cycleFile(1)
		},
		RequestPromptGoTo: func() {
			c.openPrompt(promptui.GoToLine, "Goto: ")
		},
		RequestPromptSearch: func(forwards, fromStart bool) {
			switch {
			case fromStart:
				c.openPrompt(promptui.SearchFromStart, "/")
			case forwards:
				c.openPrompt(promptui.SearchForwards, ">")
			default:
				c.openPrompt(promptui.SearchBackwards, "<")
			}
		},
	}
}

func (c *Controller) cycleFile(step int) {
	n := len(c.screens)
	if n == 0 {
		return
	}
	c.current = ((c.current+step)%n + n) % n
}

// draw composes the current screen's frame and writes it to the tcell
// screen. Grounded on the teacher's width-aware cell-drawing helpers
// (internal/ui/render/text.go: drawTextLine), generalized from plain
// strings to pre-measured styled Cells so combining/wide glyphs need no
// re-measurement at draw time.
func (c *Controller) draw() {
	c.screen.Clear()
	s := c.currentScreen()
	frame := s.Render()

	for row, cells := range frame.Body {
		drawRow(c.screen, row, cells)
	}

	// Progress and error overlays stack directly above the status row,
	// progress closest to the status row and the error tail above that.
	progressStart := s.Rows - 1 - len(frame.Progress)
	for i, cells := range frame.Progress {
		drawRow(c.screen, progressStart+i, cells)
	}

	overlayStart := progressStart - len(frame.ErrorOverlay)
	for i, cells := range frame.ErrorOverlay {
		drawRow(c.screen, overlayStart+i, cells)
	}

	drawStatus(c.screen, s.Rows-1, s.Cols, frame.Status)
	if c.prompt.Active() {
		drawStatus(c.screen, s.Rows-1, s.Cols, c.prompt.Prefix+c.prompt.Text())
	} else if c.promptErr != "" {
		drawStatus(c.screen, s.Rows-1, s.Cols, "search error: "+c.promptErr)
	}

	c.screen.Show()
}

func drawRow(screen tcell.Screen, row int, cells []line.Cell) {
	x := 0
	for _, cell := range cells {
		runes := []rune(cell.Text)
		mainc := ' '
		var combc []rune
		if len(runes) > 0 {
			mainc = runes[0]
			combc = runes[1:]
		}
		screen.SetContent(x, row, mainc, combc, cell.Style)
		width := cell.Width
		if width < 1 {
			width = 1
		}
		x += width
	}
}

func drawStatus(screen tcell.Screen, row, cols int, text string) {
	style := tcell.StyleDefault.Reverse(true)
	x := 0
	for _, r := range text {
		if x >= cols {
			break
		}
		screen.SetContent(x, row, r, nil, style)
		x++
	}
	for ; x < cols; x++ {
		screen.SetContent(x, row, ' ', nil, style)
	}
}
