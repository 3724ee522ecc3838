// Package cli parses the pager's command-line surface (spec.md 6).
// Grounded on the teacher's hand-rolled os.Args parsing (cmd/rdir/main.go)
// rather than a flag-parsing library, since the teacher never imports one
// and the surface (repeatable options, optional "FD=TITLE" values) does
// not map cleanly onto the standard library's flag package either.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/streampager/streampager/internal/pagererr"
)

// FD describes a `--fd`/`--error-fd` style option: a file descriptor
// number plus an optional display title.
type FD struct {
	Num   int
	Title string
}

// Args is the parsed command-line.
type Args struct {
	Paths []string

	Fullscreen  bool
	Delayed     bool
	DelaySecs   int
	NoAlternate bool
	Force       bool
	Help        bool
	Version     bool

	Commands []string

	PrimaryFDs  []FD
	ErrorFDs    map[int]int // primary fd index -> error fd number
	ProgressFDs []int
}

// Parse parses argv (excluding the program name).
func Parse(argv []string) (Args, error) {
	var a Args
	a.ErrorFDs = make(map[int]int)

	lastPrimaryIndex := -1

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--help" || arg == "-h":
			a.Help = true
			return a, nil
		case arg == "--version":
			a.Version = true
			return a, nil
		case arg == "--fullscreen" || arg == "-F":
			a.Fullscreen = true
		case arg == "--no-alternate" || arg == "-X":
			a.NoAlternate = true
		case arg == "--force":
			a.Force = true
		case arg == "--delayed" || arg == "-D":
			a.Delayed = true
			i++
			secs, err := requireInt(argv, i, "--delayed")
			if err != nil {
				return a, err
			}
			a.DelaySecs = secs
		case arg == "--command" || arg == "-c":
			i++
			val, err := requireArg(argv, i, "--command")
			if err != nil {
				return a, err
			}
			a.Commands = append(a.Commands, val)
		case strings.HasPrefix(arg, "--fd"):
			val, err := flagValue(argv, &i, arg, "--fd")
			if err != nil {
				return a, err
			}
			fd, err := parseFD(val)
			if err != nil {
				return a, err
			}
			a.PrimaryFDs = append(a.PrimaryFDs, fd)
			lastPrimaryIndex = len(a.PrimaryFDs) - 1
		case strings.HasPrefix(arg, "--error-fd"):
			val, err := flagValue(argv, &i, arg, "--error-fd")
			if err != nil {
				return a, err
			}
			fd, err := parseFD(val)
			if err != nil {
				return a, err
			}
			if lastPrimaryIndex < 0 {
				return a, pagererr.New(pagererr.KindArgument, "parse args",
					fmt.Errorf("--error-fd must follow a --fd"))
			}
			a.ErrorFDs[lastPrimaryIndex] = fd.Num
		case strings.HasPrefix(arg, "--progress-fd"):
			val, err := flagValue(argv, &i, arg, "--progress-fd")
			if err != nil {
				return a, err
			}
			n, err := strconv.Atoi(val)
			if err != nil {
				return a, pagererr.New(pagererr.KindArgument, "parse args", fmt.Errorf("--progress-fd: %w", err))
			}
			a.ProgressFDs = append(a.ProgressFDs, n)
		case strings.HasPrefix(arg, "-"):
			return a, pagererr.New(pagererr.KindArgument, "parse args", fmt.Errorf("unrecognized option %q", arg))
		default:
			a.Paths = append(a.Paths, arg)
		}
	}
	return a, nil
}

func requireArg(argv []string, i int, flag string) (string, error) {
	if i >= len(argv) {
		return "", pagererr.New(pagererr.KindArgument, "parse args", fmt.Errorf("%s requires a value", flag))
	}
	return argv[i], nil
}

func requireInt(argv []string, i int, flag string) (int, error) {
	val, err := requireArg(argv, i, flag)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, pagererr.New(pagererr.KindArgument, "parse args", fmt.Errorf("%s: %w", flag, err))
	}
	return n, nil
}

// flagValue extracts a value from either "--flag=value" or a following
// "--flag value" argument, advancing *i past whichever form was used.
func flagValue(argv []string, i *int, arg, flag string) (string, error) {
	if strings.HasPrefix(arg, flag+"=") {
		return strings.TrimPrefix(arg, flag+"="), nil
	}
	if arg != flag {
		return "", pagererr.New(pagererr.KindArgument, "parse args", fmt.Errorf("unrecognized option %q", arg))
	}
	*i++
	return requireArg(argv, *i, flag)
}

// parseFD parses "FD" or "FD=TITLE".
func parseFD(val string) (FD, error) {
	num, title, _ := strings.Cut(val, "=")
	n, err := strconv.Atoi(num)
	if err != nil {
		return FD{}, pagererr.New(pagererr.KindArgument, "parse args", fmt.Errorf("invalid fd %q: %w", num, err))
	}
	return FD{Num: n, Title: title}, nil
}
