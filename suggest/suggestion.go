// Package suggest provides suggestion sources for the prompt controller:
// history lines, word completion, a TTL cache, and a client for the
// promptlined daemon.
package suggest

import (
	"strings"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/scan"
)

// Line is a suggestion that replaces the whole command line.
type Line struct {
	Text  string
	Label string
}

// Serialize implements promptline.Suggestion.
func (l Line) Serialize(promptline.SerializeContext) string {
	return l.Text
}

// Display implements promptline.Suggestion.
func (l Line) Display() string {
	if l.Label != "" {
		return l.Label
	}
	return l.Text
}

// Candidate returns the wire form of l.
func (l Line) Candidate() promptline.Candidate {
	return promptline.Candidate{Completion: l.Text, Display: l.Label, Kind: promptline.KindLine}
}

// Word is a suggestion that replaces the shell word under the caret.
type Word struct {
	Value string
	Label string
	// NoSpace suppresses the space normally appended after the word, as for
	// a directory that will be extended further.
	NoSpace bool
}

// Serialize implements promptline.Suggestion. The word spanning the caret is
// located with the AST when one is available.
func (w Word) Serialize(ctx promptline.SerializeContext) string {
	offset := promptline.ByteOffset(ctx.Text, ctx.CaretPosition)
	start, end := scan.WordAt(ctx.Ast, ctx.Text, offset)
	rest := ctx.Text[end:]
	suffix := " "
	if w.NoSpace || strings.HasPrefix(rest, " ") {
		suffix = ""
	}
	return ctx.Text[:start] + w.Value + suffix + rest
}

// Display implements promptline.Suggestion.
func (w Word) Display() string {
	if w.Label != "" {
		return w.Label
	}
	return w.Value
}

// Candidate returns the wire form of w.
func (w Word) Candidate() promptline.Candidate {
	c := promptline.Candidate{Completion: w.Value, Display: w.Label, Kind: promptline.KindWord}
	if w.NoSpace {
		c.Kind = promptline.KindWordNoSpace
	}
	return c
}

// FromCandidate converts a wire candidate back into a suggestion.
func FromCandidate(c promptline.Candidate) promptline.Suggestion {
	switch c.Kind {
	case promptline.KindWord:
		return Word{Value: c.Completion, Label: c.Display}
	case promptline.KindWordNoSpace:
		return Word{Value: c.Completion, Label: c.Display, NoSpace: true}
	default:
		return Line{Text: c.Completion, Label: c.Display}
	}
}

// ToCandidate converts a suggestion into its wire form. Suggestions of
// foreign types are sent as the line their Display text names.
func ToCandidate(s promptline.Suggestion) promptline.Candidate {
	if c, ok := s.(interface{ Candidate() promptline.Candidate }); ok {
		return c.Candidate()
	}
	return promptline.Candidate{Completion: s.Display(), Kind: promptline.KindLine}
}
