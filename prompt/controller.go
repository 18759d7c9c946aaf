// Package prompt implements the editing core of a shell prompt: the command
// buffer and its caret, word deletion, history browsing, and the
// autocomplete session fed by an asynchronous suggestion source.
//
// A Controller is driven by a UI adapter that has already decoded raw input
// into method calls. After every change the Controller reports a Snapshot
// through Options.OnUpdate.
package prompt

import (
	"context"
	"log/slog"
	"sync"

	"mvdan.cc/sh/v3/syntax"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/scan"
)

// Source fetches suggestions for a prompt state.
type Source interface {
	Suggest(ctx context.Context, req *promptline.Request) ([]promptline.Suggestion, error)
}

// Parser builds the AST of command text. Parse returns nil for text that
// does not parse.
type Parser interface {
	Parse(text string) *syntax.File
}

// Job is the command the prompt belongs to.
type Job interface {
	// Execute starts running the current prompt text.
	Execute()
	Status() promptline.Status
}

// Environment supplies the shell session state sent with suggestion requests.
type Environment interface {
	Environment() map[string]string
	DirectoryStack() []string
	Aliases() map[string]string
}

// Options configures a Controller. Zero values are usable: without a Source
// no suggestions are fetched, without a History navigation is a no-op, and
// Parser and Scanner default to the bash implementations in package scan.
type Options struct {
	Source      Source
	History     History
	Scanner     Scanner
	Parser      Parser
	Environment Environment

	// SessionID is copied into every suggestion request.
	SessionID string
	// MaxCandidates is copied into every suggestion request.
	MaxCandidates int
	// DropStaleResponses discards a suggestion response when a response to a
	// newer request was already applied, or when the text was replaced
	// programmatically after the request was issued. When false, responses
	// are applied in completion order, whichever request they answer.
	DropStaleResponses bool

	// OnUpdate receives a snapshot after every change. It runs with the
	// controller locked and must not call back into the Controller.
	OnUpdate func(Snapshot)
	// OnFocusClaim is called when an editable prompt gains focus, so the UI
	// can move keyboard focus to it.
	OnFocusClaim func()
}

// Snapshot is the view state of a prompt.
type Snapshot struct {
	Text            string
	Caret           int
	Suggestions     []promptline.Suggestion
	Highlighted     int
	ShowSuggestions bool
	// Preview is the inline completion for the highlighted suggestion, if any.
	Preview  string
	Editable bool
	Focused  bool
}

// Controller keeps the buffer, the suggestion session, and the history
// cursor of one prompt consistent. It is safe for concurrent use; suggestion
// responses arrive on their own goroutines.
type Controller struct {
	job  Job
	opts Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	buffer     Buffer
	session    *Session
	history    *HistoryCursor
	focused    bool
	lastKey    promptline.KeyCode
	savedCaret int
	closed     bool

	issued int // sequence number of the newest request
	minSeq int // responses to older requests are stale
}

// New creates a Controller for job. A nil job is always editable and never runs.
func New(job Job, opts Options) *Controller {
	if opts.Parser == nil {
		opts.Parser = scan.Shell{}
	}
	if opts.Scanner == nil {
		opts.Scanner = scan.Shell{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		job:     job,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		session: NewSession(),
		history: NewHistoryCursor(opts.History),
		lastKey: promptline.KeyEscape,
	}
}

// Close cancels in-flight suggestion requests and waits for them to return.
// Responses arriving after Close are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Value returns the prompt text.
func (c *Controller) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Value()
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Execute replaces the text and runs the job unless the text is blank.
func (c *Controller) Execute(text string) {
	c.mu.Lock()
	c.setTextLocked(text)
	run := !c.buffer.IsEmpty()
	c.notifyLocked()
	c.mu.Unlock()

	if run && c.job != nil {
		c.job.Execute()
	}
}

// AppendText adds text at the end of the prompt, as for a dropped file path.
func (c *Controller) AppendText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setTextLocked(c.buffer.Value() + text)
	c.notifyLocked()
}

// Clear empties the prompt.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setTextLocked("")
	c.notifyLocked()
}

// ApplySuggestion replaces the text with the highlighted suggestion and
// fetches suggestions for the result. It does nothing without suggestions.
func (c *Controller) ApplySuggestion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Len() == 0 || !c.editableLocked() {
		return
	}
	value := c.session.CurrentSerializedValue(c.serializeContextLocked())
	caret := promptline.UTF16Len(value)
	c.buffer.SetValue(value, caret)
	c.savedCaret = caret
	c.fetchLocked()
	c.notifyLocked()
}

// DeleteWord deletes the word before the caret.
func (c *Controller) DeleteWord() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return
	}
	before := c.buffer.Value()
	DeleteWord(&c.buffer, c.buffer.Caret())
	if c.buffer.Value() == before {
		return
	}
	c.savedCaret = c.buffer.Caret()
	c.textReplacedLocked()
	c.notifyLocked()
}

// AppendLastArgumentOfPreviousCommand appends the last word of the newest
// history entry. It does nothing when the history is empty.
func (c *Controller) AppendLastArgumentOfPreviousCommand() {
	c.mu.Lock()
	defer c.mu.Unlock()
	arg, ok := c.history.LastArgument(c.opts.Scanner)
	if !ok {
		return
	}
	c.setTextLocked(c.buffer.Value() + arg)
	c.notifyLocked()
}

// HandleInput installs text typed by the user and fetches suggestions for it.
// It is ignored once the job has started.
func (c *Controller) HandleInput(text string, caret int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return
	}
	c.buffer.SetValue(text, caret)
	c.session.Clear()
	c.fetchLocked()
	c.notifyLocked()
}

// HandleKey records the last key pressed. Submit, escape, up, and down hide
// the suggestion list until another key is pressed.
func (c *Controller) HandleKey(code promptline.KeyCode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastKey = code
	c.notifyLocked()
}

// SetPreviousHistoryItem replaces the text with the previous history entry.
func (c *Controller) SetPreviousHistoryItem() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := c.history.Previous(); ok {
		c.setTextLocked(text)
		c.notifyLocked()
	}
}

// SetNextHistoryItem replaces the text with the next history entry.
func (c *Controller) SetNextHistoryItem() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := c.history.Next(); ok {
		c.setTextLocked(text)
		c.notifyLocked()
	}
}

// HighlightPrevious moves the suggestion highlight up.
func (c *Controller) HighlightPrevious() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.HighlightPrevious()
	c.notifyLocked()
}

// HighlightNext moves the suggestion highlight down.
func (c *Controller) HighlightNext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.HighlightNext()
	c.notifyLocked()
}

// Highlight selects suggestion i, as when the pointer hovers over it.
func (c *Controller) Highlight(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.Highlight(i)
	c.notifyLocked()
}

// SetCaret moves the caret without changing the text.
func (c *Controller) SetCaret(caret int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer.SetCaret(caret)
	c.notifyLocked()
}

// SetFocused reports a focus change. Losing focus remembers the caret and
// gaining it restores the caret. An editable prompt that gains focus claims
// keyboard focus through Options.OnFocusClaim.
func (c *Controller) SetFocused(focused bool) {
	c.mu.Lock()
	was := c.focused
	c.focused = focused
	claim := false
	switch {
	case was && !focused:
		c.savedCaret = c.buffer.Caret()
	case !was && focused:
		c.buffer.SetCaret(c.savedCaret)
		claim = c.editableLocked()
	}
	c.notifyLocked()
	c.mu.Unlock()

	if claim && c.opts.OnFocusClaim != nil {
		c.opts.OnFocusClaim()
	}
}

func (c *Controller) editableLocked() bool {
	return c.job == nil || c.job.Status().Editable()
}

// setTextLocked writes text programmatically with the caret at its end.
func (c *Controller) setTextLocked(text string) {
	caret := promptline.UTF16Len(text)
	c.buffer.SetValue(text, caret)
	c.savedCaret = caret
	c.textReplacedLocked()
}

func (c *Controller) textReplacedLocked() {
	c.session.Clear()
	if c.opts.DropStaleResponses {
		c.minSeq = c.issued + 1
	}
}

func (c *Controller) serializeContextLocked() promptline.SerializeContext {
	text := c.buffer.Value()
	return promptline.SerializeContext{
		Ast:           c.opts.Parser.Parse(text),
		CaretPosition: c.buffer.Caret(),
		Text:          text,
	}
}

// fetchLocked issues a suggestion request for the current text. Responses
// are applied in the order they complete.
func (c *Controller) fetchLocked() {
	if c.opts.Source == nil || c.closed {
		return
	}

	c.issued++
	seq := c.issued
	text := c.buffer.Value()
	req := &promptline.Request{
		RequestID:            seq,
		SessionID:            c.opts.SessionID,
		CurrentText:          text,
		CurrentCaretPosition: c.buffer.Caret(),
		Ast:                  c.opts.Parser.Parse(text),
		MaxCandidates:        c.opts.MaxCandidates,
	}
	if env := c.opts.Environment; env != nil {
		req.Environment = env.Environment()
		req.HistoricalPresentDirectoriesStack = env.DirectoryStack()
		req.Aliases = env.Aliases()
	}

	slog.Debug("fetching suggestions", "request_id", seq, "text", scan.Redact(text), "caret", req.CurrentCaretPosition)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		suggestions, err := c.opts.Source.Suggest(c.ctx, req)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return
		}
		if err != nil {
			slog.Warn("suggestion fetch failed", "request_id", seq, "error", err)
			return
		}
		if c.opts.DropStaleResponses && seq < c.minSeq {
			slog.Debug("dropping stale suggestions", "request_id", seq, "min_request_id", c.minSeq)
			return
		}
		c.minSeq = seq
		c.session.Refresh(suggestions)
		c.notifyLocked()
	}()
}

func (c *Controller) snapshotLocked() Snapshot {
	editable := c.editableLocked()
	snap := Snapshot{
		Text:        c.buffer.Value(),
		Caret:       c.buffer.Caret(),
		Suggestions: c.session.Suggestions(),
		Highlighted: c.session.Highlighted(),
		Editable:    editable,
		Focused:     c.focused,
	}
	snap.ShowSuggestions = c.session.ShouldShow(c.focused, c.buffer.IsEmpty(), editable, c.lastKey, promptline.SuppressedKeyCodes)
	if snap.ShowSuggestions {
		snap.Preview = c.session.Preview(c.serializeContextLocked(), snap.Text)
	}
	return snap
}

func (c *Controller) notifyLocked() {
	if c.opts.OnUpdate != nil {
		c.opts.OnUpdate(c.snapshotLocked())
	}
}
