package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/prompt"
	"github.com/Paranoid-AF/promptline/scan"
)

var errNotParsed = errors.New("syntax error")

// Shell is the session state the REPL keeps between prompts. It understands
// the builtins that change that state (cd, pushd, popd, alias, unalias,
// export) and does not run other commands.
type Shell struct {
	mu      sync.Mutex
	cwd     string
	dirs    []string // previously visited directories, most recent last
	aliases map[string]string
	env     map[string]string
}

// NewShell creates a session rooted at cwd with the given environment.
func NewShell(cwd string, environ []string) *Shell {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	env["PWD"] = cwd
	return &Shell{cwd: cwd, aliases: make(map[string]string), env: env}
}

// Environment implements prompt.Environment.
func (s *Shell) Environment() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.env)
}

// DirectoryStack implements prompt.Environment.
func (s *Shell) DirectoryStack() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dirs...)
}

// Aliases implements prompt.Environment.
func (s *Shell) Aliases() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.aliases)
}

// Cwd returns the working directory.
func (s *Shell) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// Run interprets the builtins of cmd. Simple commands other than builtins
// are accepted and ignored.
func (s *Shell) Run(cmd string) error {
	prog := scan.Parse(cmd)
	if prog == nil {
		return errNotParsed
	}

	var runErr error
	syntax.Walk(prog, func(node syntax.Node) bool {
		if runErr != nil {
			return false
		}
		switch n := node.(type) {
		case *syntax.CallExpr:
			args, err := s.fields(n.Args)
			if err != nil {
				runErr = err
			} else if len(args) > 0 {
				runErr = s.builtin(args[0], args[1:])
			}
			return false
		case *syntax.DeclClause:
			if n.Variant == nil || n.Variant.Value != "export" {
				return false
			}
			args := make([]string, 0, len(n.Args))
			for _, a := range n.Args {
				if a.Name == nil {
					continue
				}
				val := ""
				if a.Value != nil {
					lits, err := s.fields([]*syntax.Word{a.Value})
					if err != nil {
						runErr = err
						return false
					}
					val = lits[0]
				}
				args = append(args, a.Name.Value+"="+val)
			}
			runErr = s.builtin("export", args)
			return false
		}
		return true
	})
	return runErr
}

func (s *Shell) fields(words []*syntax.Word) ([]string, error) {
	s.mu.Lock()
	env := make([]string, 0, len(s.env))
	for k, v := range s.env {
		env = append(env, k+"="+v)
	}
	s.mu.Unlock()

	cfg := &expand.Config{Env: expand.ListEnviron(env...)}
	out := make([]string, 0, len(words))
	for _, w := range words {
		lit, err := expand.Literal(cfg, w)
		if err != nil {
			return nil, fmt.Errorf("expand: %w", err)
		}
		out = append(out, lit)
	}
	return out, nil
}

func (s *Shell) builtin(name string, args []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "cd", "pushd":
		target := s.env["HOME"]
		if len(args) > 0 {
			target = args[0]
		}
		if target == "-" && len(s.dirs) > 0 {
			target = s.dirs[len(s.dirs)-1]
		}
		return s.chdirLocked(target)
	case "popd":
		if len(s.dirs) == 0 {
			return errors.New("popd: directory stack empty")
		}
		last := s.dirs[len(s.dirs)-1]
		s.dirs = s.dirs[:len(s.dirs)-1]
		s.cwd = last
		s.env["PWD"] = last
	case "alias":
		for _, a := range args {
			k, v, ok := strings.Cut(a, "=")
			if !ok || k == "" {
				continue
			}
			s.aliases[k] = v
		}
	case "unalias":
		for _, a := range args {
			delete(s.aliases, a)
		}
	case "export":
		for _, a := range args {
			if k, v, ok := strings.Cut(a, "="); ok && k != "" {
				s.env[k] = v
			}
		}
	}
	return nil
}

func (s *Shell) chdirLocked(target string) error {
	if target == "" {
		return errors.New("cd: no directory")
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.cwd, target)
	}
	target = filepath.Clean(target)
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("cd: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cd: not a directory: %s", target)
	}
	if target != s.cwd {
		s.dirs = append(s.dirs, s.cwd)
		s.cwd = target
		s.env["PWD"] = target
	}
	return nil
}

// Recorder learns executed commands.
type Recorder interface {
	Record(cmd string)
}

// job is the command a single prompt belongs to. Execute interprets the
// prompt text in the shell and records it.
type job struct {
	shell    *Shell
	recorder Recorder

	ctrl *prompt.Controller

	mu     sync.Mutex
	status promptline.Status
	result *entry
}

func newJob(shell *Shell, recorder Recorder) *job {
	return &job{shell: shell, recorder: recorder}
}

// Result returns the record of the executed command, or nil before Execute.
func (j *job) Result() *entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// Status implements prompt.Job.
func (j *job) Status() promptline.Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *job) setStatus(s promptline.Status) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = s
}

// Execute implements prompt.Job.
func (j *job) Execute() {
	if j.Status() != promptline.StatusNotStarted {
		return
	}
	j.setStatus(promptline.StatusInProgress)

	cmd := strings.TrimSpace(j.ctrl.Value())
	e := entry{
		Timestamp: time.Now(),
		Command:   cmd,
		Cwd:       j.shell.Cwd(),
	}

	status := promptline.StatusSuccess
	if err := j.shell.Run(cmd); err != nil {
		status = promptline.StatusFailed
		e.Error = err.Error()
	}
	if j.recorder != nil {
		j.recorder.Record(cmd)
	}
	e.Status = status.String()

	j.mu.Lock()
	j.result = &e
	j.status = status
	j.mu.Unlock()
}
