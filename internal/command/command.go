// Package command implements named actions dispatched from a resolved
// keymap binding onto a Screen or the display controller (spec.md 4.I).
package command

import "github.com/streampager/streampager/internal/screenview"

// Target bundles the Screen a binding applies to plus the controller-
// level callbacks for actions that reach beyond a single screen (quit,
// switch file, open the help screen, open a prompt).
type Target struct {
	Screen *screenview.Screen

	RequestQuit         func()
	RequestHelp         func()
	RequestCancel       func()
	RequestPreviousFile func()
	RequestNextFile     func()
	RequestPromptGoTo   func()
	RequestPromptSearch func(forwards, fromStart bool)
}

// Execute runs the named command (with its optional numeric argument)
// against t. Unknown command names are ignored, matching the keymap
// contract that unmapped keys produce no effect.
func Execute(command string, arg int, t *Target) {
	switch command {
	case "Quit":
		call(t.RequestQuit)
	case "Help":
		call(t.RequestHelp)
	case "Cancel":
		call(t.RequestCancel)
	case "PreviousFile":
		call(t.RequestPreviousFile)
	case "NextFile":
		call(t.RequestNextFile)

	case "ScrollUpLines":
		t.Screen.ScrollLines(-arg)
	case "ScrollDownLines":
		t.Screen.ScrollLines(arg)
	case "ScrollUpScreenFraction":
		t.Screen.ScrollLines(-fraction(t.Screen.Rows, arg))
	case "ScrollDownScreenFraction":
		t.Screen.ScrollLines(fraction(t.Screen.Rows, arg))
	case "ScrollToTop":
		t.Screen.Home()
	case "ScrollToBottom":
		t.Screen.End()

	case "ScrollLeftColumns":
		t.Screen.ScrollColumns(-arg)
	case "ScrollRightColumns":
		t.Screen.ScrollColumns(arg)
	case "ScrollLeftScreenFraction":
		t.Screen.ScrollColumns(-fraction(t.Screen.Cols, arg))
	case "ScrollRightScreenFraction":
		t.Screen.ScrollColumns(fraction(t.Screen.Cols, arg))

	case "ToggleLineNumbers":
		t.Screen.ToggleLineNumbers()
	case "ToggleLineWrapping":
		t.Screen.CycleWrapMode()

	case "PromptGoToLine":
		call(t.RequestPromptGoTo)
	case "PromptSearchFromStart":
		if t.RequestPromptSearch != nil {
			t.RequestPromptSearch(true, true)
		}
	case "PromptSearchForwards":
		if t.RequestPromptSearch != nil {
			t.RequestPromptSearch(true, false)
		}
	case "PromptSearchBackwards":
		if t.RequestPromptSearch != nil {
			t.RequestPromptSearch(false, false)
		}

	case "PreviousMatch":
		t.Screen.NavigatePrevious()
	case "NextMatch":
		t.Screen.NavigateNext()
	// PreviousMatchLine and NextMatchLine step one match at a time, the
	// same as PreviousMatch and NextMatch; other matches on the current
	// line are not skipped.
	case "PreviousMatchLine":
		t.Screen.NavigatePrevious()
	case "NextMatchLine":
		t.Screen.NavigateNext()
	case "FirstMatch":
		t.Screen.NavigateFirst()
	case "LastMatch":
		t.Screen.NavigateLast()
	}
}

func call(f func()) {
	if f != nil {
		f()
	}
}

// fraction computes rows/n (or cols/n) floored, with a minimum of 1 so a
// screen-fraction scroll always makes visible progress.
func fraction(extent, n int) int {
	if n <= 0 {
		n = 1
	}
	f := extent / n
	if f < 1 {
		f = 1
	}
	return f
}
