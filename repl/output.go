package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/prompt"
)

// termWriter wraps a file and converts \n to \r\n when the file is a terminal
// (needed because raw mode disables the kernel's NL→CRNL translation).
// When the file is redirected, \n passes through unchanged.
func termWriter(f *os.File) io.Writer {
	if term.IsTerminal(int(f.Fd())) {
		return &crlfWriter{w: f}
	}
	return f
}

type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	replaced := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	_, err := c.w.Write(replaced)
	return len(p), err // report original length to caller
}

// entry is the TOML record written for every executed command.
type entry struct {
	Timestamp time.Time `toml:"timestamp"`
	Command   string    `toml:"command"`
	Cwd       string    `toml:"cwd"`
	Status    string    `toml:"status"`
	Error     string    `toml:"error,omitempty"`
}

// writeEntry appends e to w as a [[command]] table.
func writeEntry(w io.Writer, e entry) {
	doc := struct {
		Command []entry `toml:"command"`
	}{Command: []entry{e}}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		slog.Warn("failed to encode entry", "error", err)
		return
	}
	buf.WriteByte('\n')
	w.Write(buf.Bytes())
}

const (
	ansiClearBelow = "\x1b[J"
	ansiDim        = "\x1b[2m"
	ansiReverse    = "\x1b[7m"
	ansiReset      = "\x1b[0m"
)

// render redraws the prompt line, the inline preview, and the suggestion
// list below it, then puts the cursor back at the caret.
func render(w io.Writer, promptStr string, snap prompt.Snapshot, width int) {
	var b strings.Builder
	b.WriteString("\r" + ansiClearBelow)
	b.WriteString(promptStr)
	b.WriteString(snap.Text)

	tail := strings.TrimPrefix(snap.Preview, snap.Text)
	if snap.Preview != "" && tail != snap.Preview {
		b.WriteString(ansiDim + tail + ansiReset)
	}

	lines := 0
	if snap.ShowSuggestions {
		for i, s := range snap.Suggestions {
			label := truncate(s.Display(), width-4)
			b.WriteString("\r\n  ")
			if i == snap.Highlighted {
				b.WriteString(ansiReverse + label + ansiReset)
			} else {
				b.WriteString(label)
			}
			lines++
		}
	}

	if lines > 0 {
		fmt.Fprintf(&b, "\x1b[%dA", lines)
	}
	b.WriteString("\r")
	if col := caretColumn(promptStr, snap); col > 0 {
		fmt.Fprintf(&b, "\x1b[%dC", col)
	}
	io.WriteString(w, b.String())
}

// caretColumn returns the screen column of the caret. Wide characters take
// two columns.
func caretColumn(promptStr string, snap prompt.Snapshot) int {
	at := promptline.ByteOffset(snap.Text, snap.Caret)
	return runewidth.StringWidth(promptStr) + runewidth.StringWidth(snap.Text[:at])
}

func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
