package prompt

import (
	"strings"
	"unicode"

	"github.com/Paranoid-AF/promptline"
)

// Buffer holds the command text of a prompt and its caret. The caret is a
// UTF-16 offset and always lies within [0, UTF16Len(text)].
type Buffer struct {
	text  string
	caret int
}

// Value returns the current text.
func (b *Buffer) Value() string {
	return b.text
}

// Caret returns the caret offset in UTF-16 code units.
func (b *Buffer) Caret() int {
	return b.caret
}

// Len returns the text length in UTF-16 code units.
func (b *Buffer) Len() int {
	return promptline.UTF16Len(b.text)
}

// SetValue replaces the text and places the caret at caret. Callers writing
// text programmatically usually pass UTF16Len(text).
func (b *Buffer) SetValue(text string, caret int) {
	b.text = text
	b.SetCaret(caret)
}

// SetCaret moves the caret, clamping it to the text.
func (b *Buffer) SetCaret(caret int) {
	b.caret = clamp(caret, 0, b.Len())
}

// InsertAtCaret inserts s at the caret and moves the caret past it.
func (b *Buffer) InsertAtCaret(s string) {
	at := promptline.ByteOffset(b.text, b.caret)
	b.text = b.text[:at] + s + b.text[at:]
	b.caret = promptline.UTF16Offset(b.text, at+len(s))
}

// DeleteRange removes the UTF-16 range [from, to). The caret keeps its place
// relative to the surrounding text.
func (b *Buffer) DeleteRange(from, to int) {
	if from > to {
		from, to = to, from
	}
	from = clamp(from, 0, b.Len())
	to = clamp(to, 0, b.Len())
	if from == to {
		return
	}
	start := promptline.ByteOffset(b.text, from)
	end := promptline.ByteOffset(b.text, to)
	b.text = b.text[:start] + b.text[end:]

	switch {
	case b.caret >= to:
		b.caret -= to - from
	case b.caret > from:
		b.caret = from
	}
	b.SetCaret(b.caret)
}

// IsEmpty reports whether the text contains nothing but whitespace.
func (b *Buffer) IsEmpty() bool {
	return strings.IndexFunc(b.text, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

func clamp(v, low, high int) int {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
