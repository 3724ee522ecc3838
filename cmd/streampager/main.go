// Command streampager is a terminal pager for files and for streams that
// may still be growing when it starts.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/streampager/streampager/internal/cli"
	"github.com/streampager/streampager/internal/config"
	"github.com/streampager/streampager/internal/displaycontrol"
	"github.com/streampager/streampager/internal/file"
	"github.com/streampager/streampager/internal/keymap"
)

const (
	exitSuccess  = 0
	exitInternal = 1
	exitArgument = 2
)

func printHelp() {
	fmt.Print(`streampager - page files and growing streams

USAGE:
    streampager [OPTIONS] [FILE...]

OPTIONS:
    -F, --fullscreen        Enter the alternate screen immediately
    -D, --delayed SECONDS   Decide between inline and fullscreen after SECONDS
    -X, --no-alternate      Never use the alternate screen
    -c, --command STR       Run STR as a shell command and page its output (repeatable)
        --fd FD[=TITLE]     Page an additional file descriptor
        --error-fd FD[=TITLE] Attach an error stream to the last --fd
        --progress-fd FD    Attach a progress stream to the next screen
        --force             Page even if stdin/stdout is not a terminal
    -h, --help              Show this help message and exit
        --version           Show version and exit
`)
}

func main() {
	os.Exit(run())
}

func run() int {
	args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitArgument
	}
	if args.Help {
		printHelp()
		return exitSuccess
	}
	if args.Version {
		fmt.Println("streampager (Go reimplementation)")
		return exitSuccess
	}

	cfg := config.Default()
	if path, pathErr := config.DefaultPath(); pathErr == nil {
		cfg, err = config.Load(path, func(msg string) { fmt.Fprintln(os.Stderr, msg) })
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitArgument
		}
	}
	if args.NoAlternate {
		cfg.InterfaceMode = config.Direct
	} else if args.Fullscreen {
		cfg.InterfaceMode = config.Fullscreen
	} else if args.Delayed {
		cfg.InterfaceMode = config.Delayed
	}

	primaries, errFiles, progressFiles, cleanup := openSources(args)
	defer cleanup()

	if len(primaries) == 0 {
		primaries = append(primaries, file.NewStreamFile(0, "stdin", os.Stdin))
		errFiles = append(errFiles, nil)
	}

	delay := time.Duration(args.DelaySecs) * time.Second
	if delay <= 0 {
		delay = 2 * time.Second
	}

	if cfg.InterfaceMode != config.Fullscreen && len(primaries) == 1 {
		rows := probeRows()
		if !displaycontrol.DecideStartup(primaries[0], rows, cfg.InterfaceMode, delay) {
			if err := displaycontrol.RunInline(primaries[0], os.Stdout); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return exitInternal
			}
			return exitSuccess
		}
	}

	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInternal
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInternal
	}
	defer screen.Fini()

	km := keymap.Default()
	controller := displaycontrol.New(screen, km)
	for i, primary := range primaries {
		idx := controller.AddFile(primary, errFiles[i])
		if i < len(progressFiles) && progressFiles[i] != nil {
			controller.AttachProgress(idx, progressFiles[i])
		}
	}

	if err := controller.Run(); err != nil {
		return exitInternal
	}
	return exitSuccess
}

// probeRows briefly initializes a screen to read the real terminal
// height before deciding between inline and fullscreen display, then
// tears it down again so the decision doesn't itself force the
// alternate screen open.
func probeRows() int {
	screen, err := tcell.NewScreen()
	if err != nil {
		return 24
	}
	if err := screen.Init(); err != nil {
		return 24
	}
	_, h := screen.Size()
	screen.Fini()
	if h <= 0 {
		return 24
	}
	return h
}

// openSources resolves every primary source named on the command line,
// in the order: positional paths, --command shell commands, --fd
// descriptors. Error-fds attach to the most recently declared --fd
// primary (spec.md 6); progress-fds pair positionally with primaries.
func openSources(args cli.Args) (primaries []file.Backend, errFiles []file.Backend, progressFiles []file.Backend, cleanup func()) {
	var closers []func()
	cleanup = func() {
		for _, c := range closers {
			c()
		}
	}

	nextID := 0
	for _, path := range args.Paths {
		mf, err := file.OpenMapped(nextID, path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitArgument)
		}
		primaries = append(primaries, mf)
		errFiles = append(errFiles, nil)
		closers = append(closers, mf.Close)
		nextID++
	}

	for _, cmdline := range args.Commands {
		cmd := exec.Command("sh", "-c", cmdline)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitArgument)
		}
		if err := cmd.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitArgument)
		}
		primaries = append(primaries, file.NewStreamFile(nextID, cmdline, stdout))
		errFiles = append(errFiles, nil)
		closers = append(closers, func() { _ = cmd.Wait() })
		nextID++
	}

	fdBase := len(primaries)
	for i, fd := range args.PrimaryFDs {
		title := fd.Title
		if title == "" {
			title = "fd " + strconv.Itoa(fd.Num)
		}
		f := os.NewFile(uintptr(fd.Num), title)
		primaries = append(primaries, file.NewStreamFile(nextID, title, f))
		errFiles = append(errFiles, nil)
		nextID++

		if errFD, ok := args.ErrorFDs[i]; ok {
			ef := os.NewFile(uintptr(errFD), title+" (errors)")
			errFiles[fdBase+i] = file.NewStreamFile(nextID, title+" (errors)", ef)
			nextID++
		}
	}

	for i, fd := range args.ProgressFDs {
		f := os.NewFile(uintptr(fd), "progress")
		pf := file.NewProgressFile(nextID, "progress", f)
		nextID++
		for len(progressFiles) <= i {
			progressFiles = append(progressFiles, nil)
		}
		progressFiles[i] = pf
	}

	return primaries, errFiles, progressFiles, cleanup
}
