// Package promptline defines the types shared between the prompt controller,
// its suggestion sources, and the suggestion daemon.
// Daemon messages are JSON-encoded and sent over a Unix domain socket, one per line.
package promptline

import "mvdan.cc/sh/v3/syntax"

// Request describes the prompt state a suggestion source completes against.
type Request struct {
	// RequestID is a per-session incrementing identifier assigned by the client.
	// The daemon echoes it back in the response.
	RequestID int `json:"request_id"`
	// SessionID identifies the prompt the request originates from.
	SessionID string `json:"session_id,omitempty"`
	// CurrentText is the command text at the time of the request.
	CurrentText string `json:"current_text"`
	// CurrentCaretPosition is the caret offset in UTF-16 code units.
	CurrentCaretPosition int `json:"caret_position"`
	// Ast is the parsed form of CurrentText. It is nil when the text does not
	// parse and is never sent over the wire.
	Ast *syntax.File `json:"-"`
	// Environment holds the job's environment variables.
	Environment map[string]string `json:"environment,omitempty"`
	// HistoricalPresentDirectoriesStack lists previously visited directories,
	// most recent last.
	HistoricalPresentDirectoriesStack []string `json:"directory_stack,omitempty"`
	// Aliases maps alias names to their expansion.
	Aliases map[string]string `json:"aliases,omitempty"`
	// MaxCandidates limits the number of suggestions returned.
	MaxCandidates int `json:"max_candidates,omitempty"`
}

// SerializeContext is passed to Suggestion.Serialize.
type SerializeContext struct {
	Ast           *syntax.File
	CaretPosition int
	// Text is the buffer value the caret position refers to.
	Text       string
	Suggestion Suggestion
}

// Suggestion is a single autocomplete candidate. Consumers only call its
// methods; the concrete type belongs to the source that produced it.
type Suggestion interface {
	// Serialize returns the prompt text that results from accepting the suggestion.
	Serialize(ctx SerializeContext) string
	// Display returns the label shown in a suggestion list.
	Display() string
}

// Candidate is the wire form of a suggestion.
type Candidate struct {
	// Completion is the replacement text. For kind "line" it is the full
	// command line; the word kinds replace the word at the caret.
	Completion string `json:"completion"`
	// Display is an optional label; Completion is shown when empty.
	Display string `json:"display,omitempty"`
	// Kind is "line", "word", or "word-nospace".
	Kind string `json:"kind"`
}

// Candidate kinds.
const (
	KindLine        = "line"
	KindWord        = "word"
	KindWordNoSpace = "word-nospace"
)

// Response is sent from the daemon back to the client.
type Response struct {
	// RequestID is echoed from the request.
	RequestID int `json:"request_id"`
	// Candidates is the ordered list of suggestions.
	Candidates []Candidate `json:"candidates"`
	// Error is set when the daemon cannot fulfill the request.
	Error *Error `json:"error,omitempty"`
}

// Error describes a daemon-side error returned to the client.
type Error struct {
	// Code is a machine-readable error identifier (e.g. "invalid_request").
	Code string `json:"code"`
	// Message is a human-readable error description.
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

// RecordRequest is sent from a client after a command ran, so the daemon's
// history-based suggestions include it.
type RecordRequest struct {
	// Type is always "record".
	Type string `json:"type"`
	// Command is the executed command line.
	Command string `json:"command"`
}

// RecordResponse is sent from the daemon in response to a RecordRequest.
type RecordResponse struct {
	// OK is true when the command was recorded.
	OK bool `json:"ok"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}

// ConfigRequest is sent from a client for configuration operations.
type ConfigRequest struct {
	// Action is the config operation: "get", "defaults", or "validate".
	Action string `json:"action"`
}

// ConfigResponse is sent from the daemon in response to a ConfigRequest.
type ConfigResponse struct {
	// Config is the current configuration (for "get" and "defaults" actions).
	Config *Config `json:"config,omitempty"`
	// Warnings contains configuration warnings (for "validate" action).
	Warnings []string `json:"warnings,omitempty"`
	// Error is set when the operation fails.
	Error *Error `json:"error,omitempty"`
}

// Status is the execution status of the job that owns a prompt.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusCancelled
	StatusFailed
	StatusInterrupted
	StatusSuccess
)

var statusNames = [...]string{
	StatusNotStarted:  "not-started",
	StatusInProgress:  "in-progress",
	StatusCancelled:   "cancelled",
	StatusFailed:      "failed",
	StatusInterrupted: "interrupted",
	StatusSuccess:     "success",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Editable reports whether the prompt text may still change.
func (s Status) Editable() bool {
	return s == StatusNotStarted
}

// KeyCode identifies a decoded key press. Values follow the DOM keyCode numbering.
type KeyCode int

const (
	KeyNone           KeyCode = 0
	KeyBackspace      KeyCode = 8
	KeyTab            KeyCode = 9
	KeyCarriageReturn KeyCode = 13
	KeyEscape         KeyCode = 27
	KeySpace          KeyCode = 32
	KeyEnd            KeyCode = 35
	KeyHome           KeyCode = 36
	KeyLeft           KeyCode = 37
	KeyUp             KeyCode = 38
	KeyRight          KeyCode = 39
	KeyDown           KeyCode = 40
	KeyDelete         KeyCode = 46
	KeyPrintable      KeyCode = 65
)

// SuppressedKeyCodes are keys whose own meaning must not also open the
// suggestion list.
var SuppressedKeyCodes = []KeyCode{KeyCarriageReturn, KeyEscape, KeyUp, KeyDown}
