package main

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/Paranoid-AF/promptline"
)

func TestReadKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Key
	}{
		{"letter", "a", Key{Action: ActInsert, Rune: 'a'}},
		{"multibyte", "é", Key{Action: ActInsert, Rune: 'é'}},
		{"non-BMP", "😀", Key{Action: ActInsert, Rune: '😀'}},
		{"enter CR", "\r", Key{Action: ActEnter}},
		{"enter LF", "\n", Key{Action: ActEnter}},
		{"backspace DEL", "\x7f", Key{Action: ActBackspace}},
		{"backspace ctrl-h", "\x08", Key{Action: ActBackspace}},
		{"tab", "\t", Key{Action: ActTab}},
		{"ctrl-c", "\x03", Key{Action: ActInterrupt}},
		{"ctrl-d", "\x04", Key{Action: ActEOF}},
		{"ctrl-w", "\x17", Key{Action: ActDeleteWord}},
		{"ctrl-u", "\x15", Key{Action: ActClearLine}},
		{"ctrl-a", "\x01", Key{Action: ActHome}},
		{"ctrl-e", "\x05", Key{Action: ActEnd}},
		{"ctrl-p", "\x10", Key{Action: ActUp}},
		{"ctrl-n", "\x0e", Key{Action: ActDown}},
		{"up", "\x1b[A", Key{Action: ActUp}},
		{"down", "\x1b[B", Key{Action: ActDown}},
		{"right", "\x1b[C", Key{Action: ActRight}},
		{"left", "\x1b[D", Key{Action: ActLeft}},
		{"ss3 up", "\x1bOA", Key{Action: ActUp}},
		{"home", "\x1b[H", Key{Action: ActHome}},
		{"end", "\x1b[F", Key{Action: ActEnd}},
		{"home tilde", "\x1b[1~", Key{Action: ActHome}},
		{"end tilde", "\x1b[4~", Key{Action: ActEnd}},
		{"delete", "\x1b[3~", Key{Action: ActDelete}},
		{"ctrl-right", "\x1b[1;5C", Key{Action: ActRight}},
		{"page up ignored", "\x1b[5~", Key{Action: ActNone}},
		{"alt-dot", "\x1b.", Key{Action: ActLastArgument}},
		{"alt-underscore", "\x1b_", Key{Action: ActLastArgument}},
		{"alt-backspace", "\x1b\x7f", Key{Action: ActDeleteWord}},
		{"lone escape", "\x1b", Key{Action: ActEscape}},
		{"other control", "\x07", Key{Action: ActNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadKey(bufio.NewReader(strings.NewReader(tt.input)))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ReadKey(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestReadKeySequence(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("l\x1b[Ds\r"))
	want := []Key{
		{Action: ActInsert, Rune: 'l'},
		{Action: ActLeft},
		{Action: ActInsert, Rune: 's'},
		{Action: ActEnter},
	}
	for i, w := range want {
		got, err := ReadKey(r)
		if err != nil {
			t.Fatalf("key %d: %v", i, err)
		}
		if got != w {
			t.Errorf("key %d: got %+v, want %+v", i, got, w)
		}
	}
	if _, err := ReadKey(r); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF at end of input, got %v", err)
	}
}

func TestKeyCode(t *testing.T) {
	tests := []struct {
		key  Key
		want promptline.KeyCode
	}{
		{Key{Action: ActInsert, Rune: 'x'}, promptline.KeyPrintable},
		{Key{Action: ActInsert, Rune: ' '}, promptline.KeySpace},
		{Key{Action: ActEnter}, promptline.KeyCarriageReturn},
		{Key{Action: ActEscape}, promptline.KeyEscape},
		{Key{Action: ActUp}, promptline.KeyUp},
		{Key{Action: ActDown}, promptline.KeyDown},
		{Key{Action: ActTab}, promptline.KeyTab},
		{Key{Action: ActBackspace}, promptline.KeyBackspace},
		{Key{Action: ActDeleteWord}, promptline.KeyNone},
	}
	for _, tt := range tests {
		if got := tt.key.Code(); got != tt.want {
			t.Errorf("%+v.Code() = %d, want %d", tt.key, got, tt.want)
		}
	}
}
