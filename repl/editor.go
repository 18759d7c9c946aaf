package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/Paranoid-AF/promptline"
)

// ErrInterrupt is returned when the user presses Ctrl-C.
var ErrInterrupt = errors.New("interrupted")

// Terminal is the controlling tty switched to raw mode.
// It reads from /dev/tty so it works even when stdout is redirected.
type Terminal struct {
	tty      *os.File
	oldState *term.State
	keys     *bufio.Reader
}

// OpenTerminal opens /dev/tty and switches to raw mode.
func OpenTerminal() (*Terminal, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/tty: %w", err)
	}

	old, err := term.MakeRaw(int(tty.Fd()))
	if err != nil {
		tty.Close()
		return nil, fmt.Errorf("raw mode: %w", err)
	}

	return &Terminal{tty: tty, oldState: old, keys: bufio.NewReader(tty)}, nil
}

// Close restores terminal state and closes the tty fd.
func (t *Terminal) Close() {
	term.Restore(int(t.tty.Fd()), t.oldState)
	t.tty.Close()
}

// Tty returns the tty file for writing prompts.
func (t *Terminal) Tty() *os.File {
	return t.tty
}

// Width returns the terminal width in columns, or 80 when unknown.
func (t *Terminal) Width() int {
	w, _, err := term.GetSize(int(t.tty.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// ReadKey blocks for the next key press.
func (t *Terminal) ReadKey() (Key, error) {
	return ReadKey(t.keys)
}

// Action is an editing command decoded from key input.
type Action int

const (
	ActNone Action = iota
	ActInsert
	ActBackspace
	ActDelete
	ActLeft
	ActRight
	ActHome
	ActEnd
	ActUp
	ActDown
	ActTab
	ActEnter
	ActEscape
	ActDeleteWord
	ActLastArgument
	ActClearLine
	ActEOF
	ActInterrupt
)

// Key is one decoded key press.
type Key struct {
	Action Action
	// Rune is the typed character for ActInsert.
	Rune rune
}

// Code returns the key code reported to the prompt controller.
func (k Key) Code() promptline.KeyCode {
	switch k.Action {
	case ActInsert:
		if k.Rune == ' ' {
			return promptline.KeySpace
		}
		return promptline.KeyPrintable
	case ActBackspace:
		return promptline.KeyBackspace
	case ActDelete:
		return promptline.KeyDelete
	case ActLeft:
		return promptline.KeyLeft
	case ActRight:
		return promptline.KeyRight
	case ActHome:
		return promptline.KeyHome
	case ActEnd:
		return promptline.KeyEnd
	case ActUp:
		return promptline.KeyUp
	case ActDown:
		return promptline.KeyDown
	case ActTab:
		return promptline.KeyTab
	case ActEnter:
		return promptline.KeyCarriageReturn
	case ActEscape:
		return promptline.KeyEscape
	}
	return promptline.KeyNone
}

// ReadKey decodes one key press from raw terminal input. Escape sequences
// for arrows, Home/End, and Delete are recognized in both CSI and SS3 form;
// Alt-. and Alt-_ insert the last argument, Alt-Backspace deletes a word.
// A lone ESC is reported as ActEscape when no further input is buffered.
func ReadKey(r *bufio.Reader) (Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return Key{}, err
	}

	switch b {
	case 3: // Ctrl-C
		return Key{Action: ActInterrupt}, nil
	case 4: // Ctrl-D
		return Key{Action: ActEOF}, nil
	case 13, 10: // Enter
		return Key{Action: ActEnter}, nil
	case 127, 8: // Backspace / Ctrl-H
		return Key{Action: ActBackspace}, nil
	case 9:
		return Key{Action: ActTab}, nil
	case 1: // Ctrl-A
		return Key{Action: ActHome}, nil
	case 5: // Ctrl-E
		return Key{Action: ActEnd}, nil
	case 2: // Ctrl-B
		return Key{Action: ActLeft}, nil
	case 6: // Ctrl-F
		return Key{Action: ActRight}, nil
	case 16: // Ctrl-P
		return Key{Action: ActUp}, nil
	case 14: // Ctrl-N
		return Key{Action: ActDown}, nil
	case 21: // Ctrl-U
		return Key{Action: ActClearLine}, nil
	case 23: // Ctrl-W
		return Key{Action: ActDeleteWord}, nil
	case 27:
		return readEscape(r)
	}

	if b < 32 {
		return Key{Action: ActNone}, nil
	}
	if b < utf8.RuneSelf {
		return Key{Action: ActInsert, Rune: rune(b)}, nil
	}
	if err := r.UnreadByte(); err != nil {
		return Key{}, err
	}
	ch, _, err := r.ReadRune()
	if err != nil {
		return Key{}, err
	}
	return Key{Action: ActInsert, Rune: ch}, nil
}

func readEscape(r *bufio.Reader) (Key, error) {
	if r.Buffered() == 0 {
		return Key{Action: ActEscape}, nil
	}
	b, err := r.ReadByte()
	if err != nil {
		return Key{Action: ActEscape}, nil
	}

	switch b {
	case '[':
		return readCSI(r)
	case 'O':
		final, err := r.ReadByte()
		if err != nil {
			return Key{Action: ActEscape}, nil
		}
		return Key{Action: finalAction(final)}, nil
	case '.', '_':
		return Key{Action: ActLastArgument}, nil
	case 127, 8:
		return Key{Action: ActDeleteWord}, nil
	}
	return Key{Action: ActNone}, nil
}

// readCSI consumes a control sequence up to its final byte.
func readCSI(r *bufio.Reader) (Key, error) {
	var params []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return Key{Action: ActNone}, nil
		}
		if b >= 0x40 && b <= 0x7e {
			if b != '~' {
				return Key{Action: finalAction(b)}, nil
			}
			switch string(params) {
			case "3":
				return Key{Action: ActDelete}, nil
			case "1", "7":
				return Key{Action: ActHome}, nil
			case "4", "8":
				return Key{Action: ActEnd}, nil
			}
			return Key{Action: ActNone}, nil
		}
		params = append(params, b)
	}
}

func finalAction(b byte) Action {
	switch b {
	case 'A':
		return ActUp
	case 'B':
		return ActDown
	case 'C':
		return ActRight
	case 'D':
		return ActLeft
	case 'H':
		return ActHome
	case 'F':
		return ActEnd
	}
	return ActNone
}
