// Package history keeps the ordered log of commands run from a prompt and the
// navigation cursor used by up/down history browsing.
package history

import (
	"strings"
	"sync"
)

// Log is an append-only ordered sequence of past commands with a browsing
// cursor. It is safe for concurrent use.
type Log struct {
	mu         sync.RWMutex
	entries    []string
	maxEntries int
	// cursor indexes entries; len(entries) means "past the newest entry".
	cursor int
}

// NewLog creates an empty log that keeps at most maxEntries commands.
// maxEntries <= 0 means unbounded.
func NewLog(maxEntries int) *Log {
	return &Log{maxEntries: maxEntries}
}

// Append records a command and resets the cursor past the newest entry.
// Blank commands and immediate repeats are not recorded.
func (l *Log) Append(cmd string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cmd = strings.TrimSpace(cmd)
	if cmd != "" && (len(l.entries) == 0 || l.entries[len(l.entries)-1] != cmd) {
		l.entries = append(l.entries, cmd)
		if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
			l.entries = append([]string(nil), l.entries[len(l.entries)-l.maxEntries:]...)
		}
	}
	l.cursor = len(l.entries)
}

// Len returns the number of recorded commands.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Latest returns the newest command.
func (l *Log) Latest() (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return "", false
	}
	return l.entries[len(l.entries)-1], true
}

// Previous moves the cursor one entry back and returns it. The oldest entry
// is returned again once the cursor reaches it.
func (l *Log) Previous() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return "", false
	}
	if l.cursor > 0 {
		l.cursor--
	}
	return l.entries[l.cursor], true
}

// Next moves the cursor one entry forward. Moving past the newest entry
// returns the empty string, which clears the prompt.
func (l *Log) Next() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return "", false
	}
	if l.cursor < len(l.entries) {
		l.cursor++
	}
	if l.cursor == len(l.entries) {
		return "", true
	}
	return l.entries[l.cursor], true
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.entries...)
}
