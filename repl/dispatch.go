package main

import (
	"unicode/utf8"

	"github.com/Paranoid-AF/promptline"
	"github.com/Paranoid-AF/promptline/prompt"
)

// dispatch applies one key press to the prompt. It reports whether the user
// asked to leave the REPL.
//
// Arrow keys move the suggestion highlight while the list is shown and browse
// history otherwise; a key consumed by the list is not reported to the
// controller, so the list stays open.
func dispatch(c *prompt.Controller, k Key) (quit bool) {
	snap := c.Snapshot()

	switch k.Action {
	case ActUp:
		if snap.ShowSuggestions {
			c.HighlightPrevious()
			return false
		}
	case ActDown:
		if snap.ShowSuggestions {
			c.HighlightNext()
			return false
		}
	case ActTab:
		if !snap.ShowSuggestions {
			return false
		}
	}

	c.HandleKey(k.Code())

	var b prompt.Buffer
	b.SetValue(snap.Text, snap.Caret)

	switch k.Action {
	case ActInsert:
		b.InsertAtCaret(string(k.Rune))
		c.HandleInput(b.Value(), b.Caret())
	case ActBackspace:
		if n := unitsBefore(snap.Text, snap.Caret); n > 0 {
			b.DeleteRange(snap.Caret-n, snap.Caret)
			c.HandleInput(b.Value(), b.Caret())
		}
	case ActDelete:
		if n := unitsAfter(snap.Text, snap.Caret); n > 0 {
			b.DeleteRange(snap.Caret, snap.Caret+n)
			c.HandleInput(b.Value(), b.Caret())
		}
	case ActLeft:
		c.SetCaret(snap.Caret - unitsBefore(snap.Text, snap.Caret))
	case ActRight:
		c.SetCaret(snap.Caret + unitsAfter(snap.Text, snap.Caret))
	case ActHome:
		c.SetCaret(0)
	case ActEnd:
		c.SetCaret(promptline.UTF16Len(snap.Text))
	case ActUp:
		c.SetPreviousHistoryItem()
	case ActDown:
		c.SetNextHistoryItem()
	case ActTab:
		c.ApplySuggestion()
	case ActEnter:
		c.Execute(snap.Text)
	case ActDeleteWord:
		c.DeleteWord()
	case ActLastArgument:
		c.AppendLastArgumentOfPreviousCommand()
	case ActClearLine:
		c.Clear()
	case ActEOF:
		return snap.Text == ""
	case ActInterrupt:
		return true
	}
	return false
}

// unitsBefore returns the UTF-16 width of the character before caret.
func unitsBefore(text string, caret int) int {
	at := promptline.ByteOffset(text, caret)
	if at == 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(text[:at])
	return promptline.UTF16Len(text[at-size : at])
}

// unitsAfter returns the UTF-16 width of the character after caret.
func unitsAfter(text string, caret int) int {
	at := promptline.ByteOffset(text, caret)
	if at >= len(text) {
		return 0
	}
	_, size := utf8.DecodeRuneInString(text[at:])
	return promptline.UTF16Len(text[at : at+size])
}
