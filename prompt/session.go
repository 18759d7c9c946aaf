package prompt

import (
	"errors"
	"slices"
	"strings"

	"github.com/Paranoid-AF/promptline"
)

// ErrInvalidHighlight is the panic value of Session.CurrentSerializedValue on
// an empty session. Callers must check Len first.
var ErrInvalidHighlight = errors.New("prompt: no highlighted suggestion")

// Session is the state of one autocomplete interaction: the candidate list
// and the highlighted entry. Highlighted is -1 exactly when the list is empty.
type Session struct {
	suggestions []promptline.Suggestion
	highlighted int
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{highlighted: -1}
}

// Refresh replaces the suggestions and highlights the first one.
func (s *Session) Refresh(suggestions []promptline.Suggestion) {
	s.suggestions = slices.Clone(suggestions)
	if len(s.suggestions) == 0 {
		s.highlighted = -1
		return
	}
	s.highlighted = 0
}

// Clear empties the session.
func (s *Session) Clear() {
	s.Refresh(nil)
}

// Len returns the number of suggestions.
func (s *Session) Len() int {
	return len(s.suggestions)
}

// Suggestions returns a copy of the current suggestions.
func (s *Session) Suggestions() []promptline.Suggestion {
	return slices.Clone(s.suggestions)
}

// Highlighted returns the highlighted index, or -1 for an empty session.
func (s *Session) Highlighted() int {
	return s.highlighted
}

// HighlightPrevious moves the highlight up, stopping at the first entry.
func (s *Session) HighlightPrevious() {
	s.Highlight(s.highlighted - 1)
}

// HighlightNext moves the highlight down, stopping at the last entry.
func (s *Session) HighlightNext() {
	s.Highlight(s.highlighted + 1)
}

// Highlight selects index i, clamped to the list.
func (s *Session) Highlight(i int) {
	if len(s.suggestions) == 0 {
		return
	}
	s.highlighted = clamp(i, 0, len(s.suggestions)-1)
}

// CurrentSerializedValue returns the prompt text that accepting the
// highlighted suggestion would produce. It panics with ErrInvalidHighlight
// when the session is empty.
func (s *Session) CurrentSerializedValue(ctx promptline.SerializeContext) string {
	if len(s.suggestions) == 0 {
		panic(ErrInvalidHighlight)
	}
	suggestion := s.suggestions[s.highlighted]
	ctx.Suggestion = suggestion
	return suggestion.Serialize(ctx)
}

// Preview returns the completed text to show inline after value, or "" when
// the highlighted suggestion does not extend value.
func (s *Session) Preview(ctx promptline.SerializeContext, value string) string {
	if len(s.suggestions) == 0 {
		return ""
	}
	completed := s.CurrentSerializedValue(ctx)
	if strings.TrimSpace(completed) != value && strings.HasPrefix(completed, value) {
		return completed
	}
	return ""
}

// ShouldShow decides whether the suggestion list is visible.
func (s *Session) ShouldShow(isFocused, bufferIsEmpty, editingAllowed bool, lastKeyCode promptline.KeyCode, suppressed []promptline.KeyCode) bool {
	return isFocused &&
		!bufferIsEmpty &&
		editingAllowed &&
		len(s.suggestions) > 0 &&
		!slices.Contains(suppressed, lastKeyCode)
}
