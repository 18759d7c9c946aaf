// Command promptline-repl is an interactive prompt driven by the promptline
// controller. It reads raw terminal input, shows suggestions as you type,
// interprets the directory and alias builtins, and writes a TOML record of
// every executed command to stdout.
//
// Usage:
//
//	./promptline-repl             # interactive, TOML on screen
//	./promptline-repl > log.toml  # prompt on screen, TOML to file
//	./promptline-repl -daemon     # suggestions from a running promptlined
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/history"
	"github.com/Paranoid-AF/promptline/prompt"
	"github.com/Paranoid-AF/promptline/suggest"
)

const promptStr = "> "

// Version is set at build time via -ldflags.
var Version = "dev"

// backend is where suggestions come from and executed commands go.
type backend struct {
	source  prompt.Source
	history *history.Log
	record  func(cmd string)
	close   func()
}

func (b *backend) Record(cmd string) {
	b.record(cmd)
}

// localBackend serves suggestions from an in-process engine.
func localBackend(cfg *promptline.Config) *backend {
	engine := suggest.NewEngine(cfg)
	return &backend{
		source:  engine,
		history: engine.History(),
		record:  engine.Record,
		close:   engine.Close,
	}
}

// daemonBackend asks promptlined for suggestions and keeps a local history
// log for navigation.
func daemonBackend(cfg *promptline.Config) *backend {
	client := &suggest.Client{SocketPath: promptline.ResolveSocketPath(cfg)}
	log := history.NewLog(cfg.History.MaxEntries)
	if promptline.ImportShellHistory(cfg) {
		path := promptline.ResolveHistoryFile(cfg)
		if path == "" {
			path = history.ResolveShellHistoryFile()
		}
		if path != "" {
			if _, err := log.Import(path, cfg.History.MaxEntries); err != nil {
				slog.Warn("history import failed", "error", err)
			}
		}
	}
	return &backend{
		source:  client,
		history: log,
		record: func(cmd string) {
			log.Append(cmd)
			if err := client.Record(context.Background(), cmd); err != nil {
				slog.Warn("record failed", "error", err)
			}
		},
		close: func() {},
	}
}

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	verbose := flag.Bool("verbose", false, "log suggestion requests to stderr")
	useDaemon := flag.Bool("daemon", false, "fetch suggestions from promptlined instead of in-process")
	flag.Parse()

	if *showVersion {
		fmt.Println("promptline-repl", Version)
		os.Exit(0)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := promptline.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot determine cwd: %v\n", err)
		os.Exit(1)
	}

	var b *backend
	if *useDaemon {
		b = daemonBackend(cfg)
	} else {
		b = localBackend(cfg)
	}
	defer b.close()

	t, err := OpenTerminal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer t.Close()

	tty := t.Tty()
	fmt.Fprintf(tty, "promptline repl\r\n")
	fmt.Fprintf(tty, "cwd: %s\r\n", cwd)
	fmt.Fprintf(tty, "keys: tab accept, up/down highlight or history, ctrl-w delete word, alt-. last argument, ctrl-d quit\r\n\r\n")

	// stdout writer: converts \n → \r\n when stdout is a terminal (raw mode),
	// passes \n through unchanged when redirected to a file.
	out := termWriter(os.Stdout)

	keys := make(chan Key)
	go func() {
		defer close(keys)
		for {
			k, err := t.ReadKey()
			if err != nil {
				if err != io.EOF {
					slog.Warn("read error", "error", err)
				}
				return
			}
			keys <- k
		}
	}()

	repl := &session{
		shell:   NewShell(cwd, os.Environ()),
		backend: b,
		cfg:     cfg,
		out:     out,
		tty:     tty,
		width:   t.Width,
	}
	repl.run(keys)
}

// session runs one prompt after another until the user quits.
type session struct {
	shell   *Shell
	backend *backend
	cfg     *promptline.Config
	out     io.Writer
	tty     io.Writer
	width   func() int

	prompts int
}

func (s *session) newPrompt(dirty chan<- struct{}) (*prompt.Controller, *job) {
	s.prompts++
	j := newJob(s.shell, s.backend)
	ctrl := prompt.New(j, prompt.Options{
		Source:             s.backend.source,
		History:            s.backend.history,
		Environment:        s.shell,
		SessionID:          "repl-" + strconv.Itoa(os.Getpid()),
		MaxCandidates:      s.cfg.Suggest.MaxCandidates,
		DropStaleResponses: promptline.DropStaleResponses(s.cfg),
		OnUpdate: func(prompt.Snapshot) {
			select {
			case dirty <- struct{}{}:
			default:
			}
		},
	})
	j.ctrl = ctrl
	ctrl.SetFocused(true)
	return ctrl, j
}

func (s *session) run(keys <-chan Key) {
	dirty := make(chan struct{}, 1)

	for {
		ctrl, j := s.newPrompt(dirty)
		quit := s.edit(ctrl, j, keys, dirty)
		ctrl.SetFocused(false)
		render(s.tty, promptStr, ctrl.Snapshot(), s.width())
		fmt.Fprintf(s.tty, "\r\n")
		ctrl.Close()
		if e := j.Result(); e != nil {
			writeEntry(s.out, *e)
		}
		if quit {
			return
		}
	}
}

// edit feeds keys to ctrl until its job ran or the user quits.
func (s *session) edit(ctrl *prompt.Controller, j *job, keys <-chan Key, dirty <-chan struct{}) (quit bool) {
	render(s.tty, promptStr, ctrl.Snapshot(), s.width())
	for {
		select {
		case k, ok := <-keys:
			if !ok {
				return true
			}
			if dispatch(ctrl, k) {
				return true
			}
			if !j.Status().Editable() {
				return false
			}
		case <-dirty:
		}
		render(s.tty, promptStr, ctrl.Snapshot(), s.width())
	}
}
